package snapshot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakestat")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAcquireMissingCommand(t *testing.T) {
	p, err := NewProvider("/nonexistent/fstat", discard())
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Acquire(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestAcquireNotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("not a program"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := NewProvider(path, discard())
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Acquire(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestAcquireNotRegularFile(t *testing.T) {
	p, err := NewProvider(t.TempDir(), discard())
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Acquire(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestAcquireCapturesOutput(t *testing.T) {
	path := writeScript(t, `printf 'USER CMD\nroot syslogd\n'`)
	p, err := NewProvider(path, discard())
	if err != nil {
		t.Fatal(err)
	}
	out, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if string(out) != "USER CMD\nroot syslogd\n" {
		t.Errorf("output: got %q", out)
	}
}

func TestAcquireNonZeroExit(t *testing.T) {
	path := writeScript(t, "exit 2")
	p, err := NewProvider(path, discard())
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Acquire(context.Background())
	if !errors.Is(err, ErrExecFailed) {
		t.Errorf("got %v, want ErrExecFailed", err)
	}
}

func TestAcquireEmptyOutput(t *testing.T) {
	path := writeScript(t, "exit 0")
	p, err := NewProvider(path, discard())
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Acquire(context.Background())
	if !errors.Is(err, ErrExecFailed) {
		t.Errorf("got %v, want ErrExecFailed", err)
	}
}

func TestAcquireDeadline(t *testing.T) {
	path := writeScript(t, "sleep 10")
	p, err := NewProvider(path, discard())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestNewProviderArgsSplitting(t *testing.T) {
	p, err := NewProvider(`/usr/bin/lsof -w -F "a b"`, discard())
	if err != nil {
		t.Fatal(err)
	}
	if p.path != "/usr/bin/lsof" {
		t.Errorf("path: got %q", p.path)
	}
	if len(p.args) != 3 || p.args[2] != "a b" {
		t.Errorf("args: got %v", p.args)
	}
}

func TestNewProviderEmptyCommand(t *testing.T) {
	if _, err := NewProvider("   ", discard()); err == nil {
		t.Error("expected error for empty command")
	}
}
