// Package main provides the newsdesk command: it rebuilds the published feeds
// from run snapshots and reports on the data directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/logger"
	"newsdesk/internal/pipeline"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = "newsdesk.yaml"

type options struct {
	configPath string
	dataDir    string
	logLevel   string
}

// app is the resolved configuration shared by every command.
type app struct {
	cfg *config.Config
	log *logger.Logger
	now func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "newsdesk: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "newsdesk",
		Short: "Reconcile news run snapshots into published feeds",
		Long: `newsdesk rebuilds data/feed-latest.json, the daily feed and the
index documents from every run snapshot under data/runs, then records
pipeline freshness in data/index/status.json.

Run without a subcommand to perform a full build.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}

			return a.build(cmd.Context(), cmd.OutOrStdout())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./"+defaultConfigFile+" when present)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "data directory (overrides config and "+config.EnvDataDir+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newStatusCmd(opts),
		newCatalogCmd(opts),
		newValidateCmd(opts),
		newDigestCmd(opts),
		newWatchCmd(opts),
	)

	return root
}

// load resolves config from file, environment and flags, in that order.
func (o *options) load() (*app, error) {
	path := o.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if o.dataDir != "" {
		cfg.Paths.DataDir = o.dataDir
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log := logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log.Debug("configuration loaded", "config", cfg.String())

	return &app{cfg: cfg, log: log, now: time.Now}, nil
}

func (a *app) build(ctx context.Context, out io.Writer) error {
	res, err := pipeline.New(a.cfg, a.log).Run(ctx, a.now())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}

		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(out, "runs: %d, indie: %d, records: %d\n", res.Runs, res.Indie, res.Records)
	fmt.Fprintf(out, "latest: %d articles -> %s\n", res.LatestCount, res.LatestPath)
	fmt.Fprintf(out, "daily:  %d articles -> %s\n", res.DailyCount, res.DailyPath)
	fmt.Fprintf(out, "status: ok=%t\n", res.Status.OK)

	return nil
}
