package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tmkro/check-open-files/internal/buildinfo"
	"github.com/tmkro/check-open-files/internal/logging"
	"github.com/tmkro/check-open-files/pkg/check"
	"github.com/tmkro/check-open-files/pkg/config"
	"github.com/tmkro/check-open-files/pkg/filter"
	"github.com/tmkro/check-open-files/pkg/nagios"
	"github.com/tmkro/check-open-files/pkg/snapshot"
	"github.com/tmkro/check-open-files/pkg/tui"
)

var (
	flagWarning  string
	flagCritical string
	flagFilter   string
	flagCommand  string
	flagConfig   string
	flagLabel    string
	flagTimeout  time.Duration
	flagVerbose  bool
	flagJournal  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// A usage or configuration error must still speak the plugin
		// protocol: one UNKNOWN line, exit 3.
		fmt.Println(nagios.Unknownf("%v", err).Line())
		os.Exit(nagios.StatusUnknown.ExitCode())
	}
}

var rootCmd = &cobra.Command{
	Use:   "check-open-files",
	Short: "Monitoring probe counting open file handles",
	Long: "check-open-files runs the system's open-file listing command (fstat/lsof style),\n" +
		"optionally filters the records by one key:value predicate, and reports the count\n" +
		"against warning/critical threshold ranges using the standard plugin exit protocol.\n\n" +
		"Available filter fields:\n" + filter.Default().Describe(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.RunE = runCheck
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagWarning, "warning", "w", "", "warning threshold range (required)")
	pf.StringVarP(&flagCritical, "critical", "c", "", "critical threshold range (required)")
	pf.StringVarP(&flagFilter, "filter", "f", "", "count only records matching KEY:VALUE")
	pf.StringVar(&flagCommand, "command", "", "snapshot command line (default "+snapshot.DefaultCommand+")")
	pf.StringVar(&flagConfig, "config", "", "config file path (default "+config.DefaultPath+" if present)")
	pf.StringVar(&flagLabel, "label", "", "perfdata label (default open_files)")
	pf.DurationVarP(&flagTimeout, "timeout", "t", 0, "overall deadline (default 10s)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging on stderr")
	pf.BoolVar(&flagJournal, "journal", false, "log to systemd-journald instead of stderr")

	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// --- Root: run the check once ---

func runCheck(_ *cobra.Command, _ []string) error {
	logger := newLogger()

	checker, err := buildChecker(logger)
	if err != nil {
		return err
	}

	outcome := checker.Run(context.Background())
	fmt.Println(outcome.Result.Line())
	os.Exit(outcome.Result.Status.ExitCode())
	return nil
}

// --- Fields ---

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the filterable fields and their accepted values",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), filter.Default().Describe())
	},
}

// --- Watch ---

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the check on an interval in a live view",
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := newLogger()
		checker, err := buildChecker(logger)
		if err != nil {
			return err
		}
		p := tea.NewProgram(tui.New(checker, watchInterval), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "time between checks")
}

// --- Version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "check-open-files %s (%s) built %s\n",
			buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	},
}

// --- Wiring helpers ---

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	if flagJournal && logging.JournalAvailable() {
		return slog.New(logging.NewJournalHandler(level))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildChecker merges config-file defaults with flags (flags win) and
// validates everything up front.
func buildChecker(logger *slog.Logger) (*check.Checker, error) {
	opts, err := mergeOptions(logger)
	if err != nil {
		return nil, err
	}
	return check.New(opts, filter.Default(), logger)
}

func mergeOptions(logger *slog.Logger) (check.Options, error) {
	opts := check.Options{
		Command:  flagCommand,
		Filter:   flagFilter,
		Warning:  flagWarning,
		Critical: flagCritical,
		Timeout:  flagTimeout,
		Label:    flagLabel,
	}

	cfg, err := loadConfig(logger)
	if err != nil {
		return check.Options{}, err
	}
	if cfg != nil {
		if errs := config.Validate(cfg); len(errs) > 0 {
			return check.Options{}, fmt.Errorf("config: %v", errors.Join(errs...))
		}
		flags := rootCmd.PersistentFlags()
		if !flags.Changed("command") && cfg.Command != "" {
			opts.Command = cfg.Command
		}
		if !flags.Changed("filter") && cfg.Filter != "" {
			opts.Filter = cfg.Filter
		}
		if !flags.Changed("warning") && cfg.Warning != "" {
			opts.Warning = cfg.Warning
		}
		if !flags.Changed("critical") && cfg.Critical != "" {
			opts.Critical = cfg.Critical
		}
		if !flags.Changed("label") && cfg.Label != "" {
			opts.Label = cfg.Label
		}
		if !flags.Changed("timeout") {
			d, err := cfg.TimeoutDuration()
			if err != nil {
				return check.Options{}, err
			}
			if d > 0 {
				opts.Timeout = d
			}
		}
	}

	if opts.Warning == "" || opts.Critical == "" {
		return check.Options{}, fmt.Errorf("both --warning and --critical are required")
	}
	return opts, nil
}

// loadConfig reads --config when given, otherwise the default path if
// it exists. Only an explicitly requested file may fail loudly.
func loadConfig(logger *slog.Logger) (*config.Config, error) {
	if flagConfig != "" {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("default config unreadable", "path", config.DefaultPath, "err", err)
		}
		return nil, nil
	}
	logger.Debug("config loaded", "path", config.DefaultPath)
	return cfg, nil
}
