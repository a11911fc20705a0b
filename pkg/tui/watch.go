// Package tui implements the watch mode: the one-shot check pipeline
// re-run on an interval with a live status banner and record table.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tmkro/check-open-files/pkg/check"
	"github.com/tmkro/check-open-files/pkg/snapshot"
)

// displayColumns are the snapshot columns shown in the table, in order.
var displayColumns = []string{"USER", "CMD", "PID", "FD", "R/W", "MOUNT"}

// Model is the root Bubble Tea model for watch mode.
type Model struct {
	checker  *check.Checker
	interval time.Duration

	outcome check.Outcome
	lastRun time.Time
	ran     bool

	records table.Model
	width   int
	height  int
}

// New creates a watch model around a configured checker.
func New(checker *check.Checker, interval time.Duration) Model {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	columns := make([]table.Column, len(displayColumns))
	for i, c := range displayColumns {
		columns[i] = table.Column{Title: c, Width: 12}
	}
	records := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
	)

	return Model{checker: checker, interval: interval, records: records}
}

// Init runs the first check immediately.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		runCheckCmd(m.checker),
		tea.SetWindowTitle("check-open-files"),
	)
}

// tickMsg triggers the next periodic check.
type tickMsg time.Time

// outcomeMsg carries one finished check run.
type outcomeMsg struct {
	outcome check.Outcome
	at      time.Time
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func runCheckCmd(c *check.Checker) tea.Cmd {
	return func() tea.Msg {
		out := c.Run(context.Background())
		return outcomeMsg{outcome: out, at: time.Now()}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, runCheckCmd(m.checker)
		}

	case tickMsg:
		return m, runCheckCmd(m.checker)

	case outcomeMsg:
		m.outcome = msg.outcome
		m.lastRun = msg.at
		m.ran = true
		m.records.SetRows(recordRows(msg.outcome.Records))
		return m, tickCmd(m.interval)
	}

	var cmd tea.Cmd
	m.records, cmd = m.records.Update(msg)
	return m, cmd
}

func recordRows(records []snapshot.Record) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		row := make(table.Row, len(displayColumns))
		for i, col := range displayColumns {
			row[i] = rec[col]
		}
		rows = append(rows, row)
	}
	return rows
}

func (m *Model) resizeTable() {
	if m.width == 0 {
		return
	}
	w := (m.width - 6) / len(displayColumns)
	if w < 6 {
		w = 6
	}
	columns := make([]table.Column, len(displayColumns))
	for i, c := range displayColumns {
		columns[i] = table.Column{Title: c, Width: w}
	}
	m.records.SetColumns(columns)
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	m.records.SetHeight(h)
}
