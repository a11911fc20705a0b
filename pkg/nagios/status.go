package nagios

import (
	"fmt"
	"strings"
)

// Status is a plugin status. The numeric value doubles as the process
// exit code expected by the monitoring supervisor.
type Status int

const (
	StatusOK       Status = 0
	StatusWarning  Status = 1
	StatusCritical Status = 2
	StatusUnknown  Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the conventional plugin exit code for s.
func (s Status) ExitCode() int {
	if s < StatusOK || s > StatusUnknown {
		return int(StatusUnknown)
	}
	return int(s)
}

// Perfdatum is one performance-data token: label=value<uom>;warn;crit.
// Warn and Crit carry the original range spec strings so the supervisor
// sees exactly what was configured.
type Perfdatum struct {
	Label string
	Value int
	UOM   string
	Warn  string
	Crit  string
}

func (p Perfdatum) String() string {
	return fmt.Sprintf("%s=%d%s;%s;%s", p.Label, p.Value, p.UOM, p.Warn, p.Crit)
}

// Result is the terminal artifact of one probe run.
type Result struct {
	Status   Status
	Message  string
	Perfdata []Perfdatum
}

// Line renders the single status line written to stdout.
func (r Result) Line() string {
	var b strings.Builder
	b.WriteString(r.Status.String())
	b.WriteString(": ")
	b.WriteString(r.Message)
	if len(r.Perfdata) > 0 {
		b.WriteString(" | ")
		for i, p := range r.Perfdata {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(p.String())
		}
	}
	return b.String()
}

// Unknownf builds an UNKNOWN result from a format string.
func Unknownf(format string, args ...any) Result {
	return Result{Status: StatusUnknown, Message: fmt.Sprintf(format, args...)}
}
