package check

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tmkro/check-open-files/pkg/filter"
	"github.com/tmkro/check-open-files/pkg/nagios"
)

const sampleSnapshot = `USER CMD PID FD MODE SZ|DV R/W INUM MOUNT
root syslogd 215 3 inode 1024 r 42 /var
root cron 300 4 inode 512 rw 77 /
www nginx 512 7 inode 4096 r 99 /
`

// cannedSource returns fixed bytes or an error, standing in for the
// snapshot command.
type cannedSource struct {
	raw []byte
	err error
}

func (s cannedSource) Acquire(_ context.Context) ([]byte, error) {
	return s.raw, s.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newChecker(t *testing.T, opts Options, src cannedSource) *Checker {
	t.Helper()
	c, err := New(opts, filter.Default(), discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.source = src
	return c
}

func TestRunFilteredCount(t *testing.T) {
	c := newChecker(t,
		Options{Warning: "800", Critical: "1000", Filter: "user:root"},
		cannedSource{raw: []byte(sampleSnapshot)})
	out := c.Run(context.Background())

	if out.Result.Status != nagios.StatusOK {
		t.Errorf("status: got %s, want OK", out.Result.Status)
	}
	if out.Count != 2 {
		t.Errorf("count: got %d, want 2", out.Count)
	}
	if out.Result.Message != "2 open files with user root" {
		t.Errorf("message: got %q", out.Result.Message)
	}
	if len(out.Records) != 2 || out.Records[1]["CMD"] != "cron" {
		t.Errorf("matched records: got %v", out.Records)
	}
}

func TestRunNoFilter(t *testing.T) {
	c := newChecker(t,
		Options{Warning: "800", Critical: "1000"},
		cannedSource{raw: []byte(sampleSnapshot)})
	out := c.Run(context.Background())

	if out.Count != 3 {
		t.Errorf("count: got %d, want 3", out.Count)
	}
	if out.Result.Message != "3 open files" {
		t.Errorf("message: got %q", out.Result.Message)
	}
}

func TestRunPerfdataLine(t *testing.T) {
	c := newChecker(t,
		Options{Warning: "800", Critical: "1000", Filter: "user:root"},
		cannedSource{raw: []byte(sampleSnapshot)})
	out := c.Run(context.Background())

	want := "OK: 2 open files with user root | open_files=2files;800;1000"
	if got := out.Result.Line(); got != want {
		t.Errorf("line: got %q, want %q", got, want)
	}
}

func TestRunThresholdClassification(t *testing.T) {
	many := strings.Builder{}
	many.WriteString("USER CMD\n")
	for i := 0; i < 900; i++ {
		many.WriteString("root x\n")
	}
	c := newChecker(t,
		Options{Warning: "800", Critical: "1000"},
		cannedSource{raw: []byte(many.String())})
	out := c.Run(context.Background())

	if out.Result.Status != nagios.StatusWarning {
		t.Errorf("status: got %s, want WARNING", out.Result.Status)
	}
}

func TestRunSnapshotFailureIsUnknown(t *testing.T) {
	c := newChecker(t,
		Options{Warning: "800", Critical: "1000"},
		cannedSource{err: errors.New("exec format error")})
	out := c.Run(context.Background())

	if out.Result.Status != nagios.StatusUnknown {
		t.Errorf("status: got %s, want UNKNOWN", out.Result.Status)
	}
	if len(out.Result.Perfdata) != 0 {
		t.Errorf("no perfdata expected on failure, got %v", out.Result.Perfdata)
	}
}

func TestRunHeaderOnlyIsUnknown(t *testing.T) {
	c := newChecker(t,
		Options{Warning: "800", Critical: "1000"},
		cannedSource{raw: []byte("USER CMD PID\n")})
	out := c.Run(context.Background())

	if out.Result.Status != nagios.StatusUnknown {
		t.Errorf("status: got %s, want UNKNOWN", out.Result.Status)
	}
	if !strings.Contains(out.Result.Message, "no usable data") {
		t.Errorf("message: got %q", out.Result.Message)
	}
}

func TestRunDeadlineIsUnknownTimeout(t *testing.T) {
	c := newChecker(t,
		Options{Warning: "800", Critical: "1000", Timeout: 50 * time.Millisecond},
		cannedSource{})
	c.source = slowSource{}
	out := c.Run(context.Background())

	if out.Result.Status != nagios.StatusUnknown {
		t.Errorf("status: got %s, want UNKNOWN", out.Result.Status)
	}
	if !strings.Contains(out.Result.Message, "timed out") {
		t.Errorf("message: got %q", out.Result.Message)
	}
}

type slowSource struct{}

func (slowSource) Acquire(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestNewRejectsBadThreshold(t *testing.T) {
	_, err := New(Options{Warning: "20:10", Critical: "1000"}, filter.Default(), discard())
	if err == nil {
		t.Error("expected construction error for malformed warning range")
	}
}

func TestNewRejectsBadFilter(t *testing.T) {
	_, err := New(Options{Warning: "800", Critical: "1000", Filter: "bogus"}, filter.Default(), discard())
	if !errors.Is(err, filter.ErrMalformedFilter) {
		t.Errorf("got %v, want ErrMalformedFilter", err)
	}
}

func TestNewCustomLabel(t *testing.T) {
	c := newChecker(t,
		Options{Warning: "800", Critical: "1000", Label: "fds"},
		cannedSource{raw: []byte("USER CMD\nroot x\n")})
	out := c.Run(context.Background())
	if got := out.Result.Perfdata[0].Label; got != "fds" {
		t.Errorf("label: got %q", got)
	}
}
