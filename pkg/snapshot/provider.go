package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/google/shlex"
)

// DefaultCommand is the snapshot command used when none is configured.
const DefaultCommand = "/usr/bin/fstat"

var (
	// ErrUnavailable means the snapshot binary is missing, not a
	// regular file, or not executable.
	ErrUnavailable = errors.New("snapshot command unavailable")
	// ErrExecFailed means the command ran but exited non-zero or
	// produced no output.
	ErrExecFailed = errors.New("snapshot command failed")
)

// Source produces the raw open-file listing. Satisfied by Provider;
// tests substitute a canned implementation.
type Source interface {
	Acquire(ctx context.Context) ([]byte, error)
}

// Provider runs the configured snapshot command and buffers its whole
// stdout before any parsing happens.
type Provider struct {
	path   string
	args   []string
	logger *slog.Logger
}

// NewProvider builds a provider from a command string, split into argv
// with shell-style quoting rules.
func NewProvider(command string, logger *slog.Logger) (*Provider, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty snapshot command")
	}
	return &Provider{path: argv[0], args: argv[1:], logger: logger}, nil
}

// Acquire validates the binary, runs it under the context deadline, and
// returns its stdout.
func (p *Provider) Acquire(ctx context.Context) ([]byte, error) {
	if err := checkExecutable(p.path); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.path, p.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debug("running snapshot command", "path", p.path, "args", p.args)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			p.logger.Debug("snapshot command stderr", "output", string(msg))
		}
		return nil, fmt.Errorf("%w: %v", ErrExecFailed, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: no output", ErrExecFailed)
	}
	return stdout.Bytes(), nil
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrUnavailable, path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s is not executable", ErrUnavailable, path)
	}
	return nil
}
