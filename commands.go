package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luki/pulpwatch/internal/config"
	"github.com/luki/pulpwatch/internal/dataset"
	"github.com/luki/pulpwatch/internal/logging"
	"github.com/luki/pulpwatch/internal/monitor"
	"github.com/luki/pulpwatch/internal/replay"
	"github.com/luki/pulpwatch/internal/session"
	"github.com/luki/pulpwatch/internal/viewer"
)

type app struct {
	configPath string
	logLevel   string
	logFile    string
	flags      *config.Flags
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "pulpwatch",
		Short: "Replay recorded temperature/pressure data as a live alerting dashboard",
		Long: `pulpwatch replays rows of a recorded spreadsheet (XLSX or CSV) as a
synthetic real-time sensor feed, charts the rolling window and raises
over-temperature, over-pressure and pulp-chamber alerts.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFile, "log-file", "", "write logs to this file (TUI commands log nowhere otherwise)")
	a.flags = config.BindFlags(pf)

	cmd.AddCommand(a.monitorCmd(), a.runCmd(), a.reviewCmd())
	return cmd
}

// logger returns the command logger. TUI commands only log to --log-file;
// the headless command falls back to stderr.
func (a *app) logger(stderr io.Writer, tui bool) (*slog.Logger, func() error, error) {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return nil, nil, err
	}
	if a.logFile != "" || tui {
		return logging.OpenFile(a.logFile, level)
	}
	return logging.New(stderr, level), func() error { return nil }, nil
}

// load resolves the configuration and reads the dataset.
func (a *app) load(path string, log *slog.Logger) (config.Config, *dataset.Dataset, session.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return cfg, nil, session.Config{}, err
	}
	if err := a.flags.Apply(&cfg); err != nil {
		return cfg, nil, session.Config{}, err
	}

	ds, err := dataset.LoadFile(path, cfg.DatasetOptions())
	if err != nil {
		return cfg, nil, session.Config{}, err
	}
	sc, err := cfg.Session(ds)
	if err != nil {
		return cfg, nil, session.Config{}, err
	}

	log.Info("dataset loaded",
		"path", path,
		"rows", ds.Rows,
		"usable", len(ds.Readings),
		"malformed", ds.Dropped,
		"temp_column", ds.ColumnName(ds.Columns.Temp),
		"press_column", ds.ColumnName(ds.Columns.Press),
		"pressure", sc.Pressure,
	)
	if len(ds.Readings) == 0 {
		return cfg, nil, sc, fmt.Errorf("%s: no usable rows", path)
	}
	return cfg, ds, sc, nil
}

func (a *app) monitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor <file>",
		Short: "Live replay dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := a.logger(cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer closeLog()

			cfg, ds, sc, err := a.load(args[0], log)
			if err != nil {
				return err
			}
			feed := replay.NewFeed(ds.Readings, cfg.Interval, replay.WithLogger(log))
			return monitor.Run(monitor.New(feed, sc, ds.Path, log))
		},
	}
}

func (a *app) reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <file>",
		Short: "Scrub through every tick of a dataset offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := a.logger(cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer closeLog()

			cfg, ds, sc, err := a.load(args[0], log)
			if err != nil {
				return err
			}
			return viewer.Run(ds.Readings, sc, cfg.Interval, ds.Path)
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	var fast bool
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Replay a dataset without a UI and log alert transitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := a.logger(cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer closeLog()

			cfg, ds, sc, err := a.load(args[0], log)
			if err != nil {
				return err
			}
			interval := cfg.Interval
			if fast {
				interval = 0
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sum, err := runHeadless(ctx, ds.Readings, sc, interval, log)
			sum.log(log)
			return err
		},
	}
	cmd.Flags().BoolVar(&fast, "fast", false, "replay without pacing")
	return cmd
}
