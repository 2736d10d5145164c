package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corey/rube/internal/adapters/fsnotify"
	"github.com/corey/rube/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runWatch       bool
	runNoCache     bool
	runWorkers     int
	runMaxAttempts uint64
	runTimeout     time.Duration
	runSeed        uint64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Harvest, search, and reassemble the hidden string",
	Long: "Runs the whole pipeline from the config file: harvest the alphabet, reuse\n" +
		"cached matches, search for the rest, reassemble, and print the result.\n" +
		"With --watch, runs again every time the config file changes.",
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.BoolVarP(&runWatch, "watch", "w", false, "Re-run when the config file changes")
	f.BoolVar(&runNoCache, "no-cache", false, "Ignore cached matches")
	f.IntVar(&runWorkers, "workers", 1, "Concurrent search workers")
	f.Uint64Var(&runMaxAttempts, "max-attempts", 0, "Attempt budget (0 = unbounded)")
	f.DurationVar(&runTimeout, "timeout", 0, "Search time budget (0 = none)")
	f.Uint64Var(&runSeed, "seed", 0, "Seed for reproducible draws (0 = random)")
}

func runRun(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(projectRoot())
	cfgPath := configFile(paths)

	if !runWatch {
		return runOnce(cmd, paths, cfgPath)
	}

	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := app.WriteConfig(cfgPath, app.DefaultConfig()); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "⚡ watching %s (ctrl-c to stop)\n", cfgPath)

	return app.WatchAndRun(ctx, w, cfgPath, func(ctx context.Context) {
		cmd.SetContext(ctx)
		if err := runOnce(cmd, paths, cfgPath); err != nil {
			logger.Error("run failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	})
}

// runOnce loads the config fresh, applies flags, and runs the pipeline.
func runOnce(cmd *cobra.Command, paths *app.Paths, cfgPath string) error {
	cfg, err := app.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, &cfg)

	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	store, err := openStore(paths.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := app.New(cfg, app.WithStore(store), app.WithLogger(logger))
	if err != nil {
		return err
	}
	out, err := a.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatOutcome(out, useColor()))
	return nil
}

// applyRunFlags overlays explicitly set flags on the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *app.Config) {
	f := cmd.Flags()
	if runNoCache {
		cfg.Cache = false
	}
	if f.Changed("workers") {
		cfg.Search.Workers = runWorkers
	}
	if f.Changed("max-attempts") {
		cfg.Search.MaxAttempts = runMaxAttempts
	}
	if f.Changed("timeout") {
		cfg.Search.Timeout = runTimeout
	}
	if f.Changed("seed") {
		cfg.Search.Seed = runSeed
	}
}
