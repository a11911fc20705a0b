// Package check runs the open-files probe: acquire a snapshot, parse
// it, count records matching the filter, and classify the count
// against the configured thresholds. One linear pass per invocation;
// every failure folds into an UNKNOWN result.
package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmkro/check-open-files/pkg/filter"
	"github.com/tmkro/check-open-files/pkg/nagios"
	"github.com/tmkro/check-open-files/pkg/snapshot"
)

// DefaultTimeout bounds the whole pipeline when none is configured.
const DefaultTimeout = 10 * time.Second

// Options configures one probe run.
type Options struct {
	Command  string        // snapshot command line; DefaultCommand if empty
	Filter   string        // optional "key:value" predicate
	Warning  string        // warning range spec (required)
	Critical string        // critical range spec (required)
	Timeout  time.Duration // wall-clock bound for the whole run
	Label    string        // perfdata label; "open_files" if empty
}

// Checker is a configured probe. Thresholds, the filter expression,
// and the snapshot command are all validated at construction so
// configuration errors surface before anything executes.
type Checker struct {
	source    snapshot.Source
	expr      *filter.Expression
	filterKey string
	threshold nagios.Threshold
	warnSpec  string
	critSpec  string
	timeout   time.Duration
	label     string
	logger    *slog.Logger
}

// Outcome is the result of one run plus the matched records, which the
// watch view renders.
type Outcome struct {
	Result  nagios.Result
	Count   int
	Records []snapshot.Record
}

// New validates opts against the registry and builds a Checker.
func New(opts Options, reg filter.Registry, logger *slog.Logger) (*Checker, error) {
	threshold, err := nagios.ParseThreshold(opts.Warning, opts.Critical)
	if err != nil {
		return nil, err
	}

	expr, err := filter.Parse(opts.Filter, reg)
	if err != nil {
		return nil, err
	}

	command := opts.Command
	if command == "" {
		command = snapshot.DefaultCommand
	}
	source, err := snapshot.NewProvider(command, logger)
	if err != nil {
		return nil, err
	}

	c := &Checker{
		source:    source,
		expr:      expr,
		threshold: threshold,
		timeout:   opts.Timeout,
		label:     opts.Label,
		logger:    logger,
	}
	if expr != nil {
		c.filterKey = expr.Field.Name
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.label == "" {
		c.label = "open_files"
	}
	c.warnSpec = opts.Warning
	c.critSpec = opts.Critical
	return c, nil
}

// Run executes the pipeline once. It never returns an error; failures
// become UNKNOWN results for the supervisor.
func (c *Checker) Run(ctx context.Context) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.source.Acquire(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Outcome{Result: nagios.Unknownf("timed out after %s", c.timeout)}
		}
		return Outcome{Result: nagios.Unknownf("%s", err)}
	}

	records, err := snapshot.Parse(raw)
	if err != nil {
		return Outcome{Result: nagios.Unknownf("%s", err)}
	}
	c.logger.Debug("snapshot parsed", "records", len(records))

	matched := filter.Match(records, c.expr)
	count := len(matched)

	result := nagios.Result{
		Status:  c.threshold.Evaluate(float64(count)),
		Message: c.message(count),
		Perfdata: []nagios.Perfdatum{{
			Label: c.label,
			Value: count,
			UOM:   "files",
			Warn:  c.warnSpec,
			Crit:  c.critSpec,
		}},
	}
	return Outcome{Result: result, Count: count, Records: matched}
}

func (c *Checker) message(count int) string {
	if c.expr == nil {
		return fmt.Sprintf("%d open files", count)
	}
	return fmt.Sprintf("%d open files with %s %s", count, c.filterKey, c.expr.Value)
}
