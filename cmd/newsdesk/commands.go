package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"newsdesk/internal/feed"
	"newsdesk/internal/formatter"
	"newsdesk/internal/models"
	"newsdesk/internal/status"
	"newsdesk/internal/validator"
	"newsdesk/internal/watcher"
)

// ErrInvalidLayout is returned by validate when the data directory has errors.
var ErrInvalidLayout = errors.New("data directory failed validation")

func newStatusCmd(opts *options) *cobra.Command {
	var noWrite bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Recompute and print the freshness record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}

			st := a.status()

			if !noWrite {
				if err := status.Write(a.cfg.StatusPath(), st); err != nil {
					return fmt.Errorf("failed to write status: %w", err)
				}
			}

			data, err := feed.Encode(st)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().BoolVar(&noWrite, "no-write", false, "print the record without updating status.json")

	return cmd
}

func (a *app) status() models.Status {
	monitor := status.NewMonitor(a.cfg.Freshness.MaxAge, a.cfg.Feeds.Version)
	return monitor.Compute(a.cfg.RunsDir(), a.cfg.LatestFeedPath(), a.now())
}

func newCatalogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Rebuild the catalog of day partitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}

			catalog, err := feed.WriteCatalog(a.cfg.IndexDir(), a.cfg.EntriesDir(), a.cfg.Feeds.Version, a.now())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "catalog: %d days\n", len(catalog.Days))

			return nil
		},
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the data directory layout without changing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}

			result := validator.NewLayoutValidator(a.cfg).Validate()
			out := cmd.OutOrStdout()

			for _, w := range result.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}

			for _, e := range result.Errors {
				fmt.Fprintf(out, "error: %s\n", e.Error())
			}

			fmt.Fprintf(out, "checked %d feeds, %d runs, %d days, %d entries\n",
				result.Stats.Feeds, result.Stats.Runs, result.Stats.Days, result.Stats.Entries)

			if !result.IsValid {
				return fmt.Errorf("%w: %d errors", ErrInvalidLayout, len(result.Errors))
			}

			fmt.Fprintln(out, "layout ok")

			return nil
		},
	}
}

func newDigestCmd(opts *options) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Render the signed markdown digest from the latest feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}

			latest, err := readFeed(a.cfg.LatestFeedPath())
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("top") {
				top = a.cfg.Outputs.DigestTop
			}

			doc := formatter.RenderDigest(formatter.Digest{
				Version:  a.cfg.Feeds.Version,
				Status:   a.status(),
				Articles: latest.Articles,
				Top:      top,
			}, a.now())

			path := filepath.Join(a.cfg.IndexDir(), formatter.DigestFile)
			if err := feed.WriteFileAtomic(path, []byte(doc)); err != nil {
				return fmt.Errorf("failed to write digest: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "digest: %s\n", path)

			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "number of articles to list (default from config)")

	return cmd
}

// readFeed decodes a feed file. A missing feed reads as empty.
func readFeed(path string) (models.Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewFeed(models.FeedVersion, nil), nil
		}

		return models.Feed{}, fmt.Errorf("failed to read feed: %w", err)
	}

	var f models.Feed
	if err := json.Unmarshal(data, &f); err != nil {
		return models.Feed{}, fmt.Errorf("failed to parse feed %s: %w", path, err)
	}

	return f, nil
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild whenever runs or indie drops change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			if err := a.build(ctx, out); err != nil {
				return err
			}

			rebuild := func(ctx context.Context) error {
				return a.build(ctx, out)
			}

			w, err := watcher.New(
				[]string{a.cfg.RunsDir(), a.cfg.IndieDir()},
				a.cfg.Watch.Debounce,
				rebuild,
				a.log.With("component", "watcher"),
			)
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := w.Start(ctx); err != nil {
				return err
			}

			a.log.Info("watching for input changes", "debounce", a.cfg.Watch.Debounce.String())

			select {
			case <-ctx.Done():
			case <-w.Done():
			}

			a.log.Info("watch stopped")

			return nil
		},
	}
}
