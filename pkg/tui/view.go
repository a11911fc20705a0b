package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tmkro/check-open-files/pkg/nagios"
)

var (
	bannerOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	bannerWarning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	bannerCritical = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	bannerUnknown = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func bannerStyle(s nagios.Status) lipgloss.Style {
	switch s {
	case nagios.StatusOK:
		return bannerOK
	case nagios.StatusWarning:
		return bannerWarning
	case nagios.StatusCritical:
		return bannerCritical
	default:
		return bannerUnknown
	}
}

// View renders the watch screen.
func (m Model) View() string {
	if !m.ran {
		return "running first check..."
	}

	var b strings.Builder

	result := m.outcome.Result
	b.WriteString(bannerStyle(result.Status).Render(result.Status.String()))
	b.WriteString(" ")
	b.WriteString(result.Message)
	b.WriteString("\n")
	if len(result.Perfdata) > 0 {
		b.WriteString(dimStyle.Render(result.Perfdata[0].String()))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("last run %s, every %s",
		m.lastRun.Format("15:04:05"), m.interval)))
	b.WriteString("\n")

	if len(m.outcome.Records) > 0 {
		b.WriteString(paneStyle.Render(m.records.View()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("r refresh · q quit"))
	return b.String()
}
