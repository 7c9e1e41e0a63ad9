package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/featforge/featforge/internal/build"
	"github.com/featforge/featforge/internal/config"
	"github.com/featforge/featforge/internal/server"
	"github.com/featforge/featforge/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Watch the feature tree and rebuild on changes",
	Long: `Watch the feature root for file changes and re-run the discovery
pipeline on every change, with debouncing so bursts of edits trigger one
rebuild. A failing pass reports its issues and leaves the previous artifacts
in place; the next successful pass regenerates them.

With the reload server enabled, connected browsers receive a reload event
after each successful pass and the aggregated issue list after a failed one.

Examples:
  featforge watch                 # Watch with configured settings
  featforge watch --reload        # Also serve live-reload events`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("root", "r", "", "Feature root directory to scan")
	watchCmd.Flags().Bool("reload", false, "Serve live-reload events to connected clients")
}

func runWatch(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"root":   "features.root",
		"reload": "reload.enabled",
	})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	pipeline, err := build.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddFilter(watcher.ExcludeDirFilter(cfg.Features.ExcludeDirs...))
	fileWatcher.AddFilter(watcher.NoGeneratedFilter(cfg.Generate.OutputDir))
	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		fmt.Printf("%d file(s) changed, rebuilding\n", len(events))
		pipeline.Trigger()
		return nil
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial pass; failures are reported but watching continues so the
	// next edit can fix them.
	if snapshot, err := pipeline.Run(ctx); err != nil {
		if snapshot != nil {
			printIssues(os.Stderr, snapshot.Issues)
		}
		fmt.Fprintf(os.Stderr, "initial build failed: %v\n", err)
	} else {
		fmt.Printf("Generated artifacts for %d feature(s)\n", len(snapshot.Features))
	}

	// Register the scanned root as a watch dependency so subsequent changes
	// re-trigger the pipeline.
	if err := fileWatcher.AddRecursive(cfg.Features.Root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Features.Root, err)
	}
	fileWatcher.Start(ctx)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return pipeline.WatchLoop(groupCtx)
	})
	if cfg.Reload.Enabled {
		reloadServer := server.NewReloadServer(cfg.Reload.Host, cfg.Reload.Port, pipeline.Registry(), logger)
		group.Go(func() error {
			return reloadServer.Serve(groupCtx)
		})
		fmt.Printf("Live reload on ws://%s:%d/ws\n", cfg.Reload.Host, cfg.Reload.Port)
	}

	fmt.Println("Watching for changes... (Press Ctrl+C to stop)")

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println("Stopped watching.")
	return nil
}
