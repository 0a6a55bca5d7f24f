package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"letraz-autoapply/internal/api"
	"letraz-autoapply/internal/api/handlers"
	"letraz-autoapply/internal/api/routes"
	"letraz-autoapply/internal/config"
	"letraz-autoapply/internal/logging"
	"letraz-autoapply/internal/metrics"
	"letraz-autoapply/internal/runner"
	"letraz-autoapply/internal/store"
)

var (
	runSubmit bool
	runMax    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search and apply to every matching posting",
	Long:  "Runs the configured search and applies to each match as it is found, skipping postings already submitted. Blocks until the search is exhausted, the application limit is reached or SIGINT/SIGTERM.",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runSubmit, "submit", false, "press the final submit button")
	runCmd.Flags().IntVar(&runMax, "max", 0, "stop after this many applications (overrides apply.max_applications)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logging.CloseLogging()

	profile, err := config.LoadProfile(cfg.Apply.ProfilePath)
	if err != nil {
		return err
	}

	opts := runner.Options{
		ShouldSubmit:    cfg.Apply.ShouldSubmit,
		MaxApplications: cfg.Apply.MaxApplications,
	}
	if cmd.Flags().Changed("submit") {
		opts.ShouldSubmit = runSubmit
	}
	if cmd.Flags().Changed("max") {
		opts.MaxApplications = runMax
	}

	ctx, stop := signalContext()
	defer stop()

	st, err := store.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	manager, session, err := openBrowser(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	cursor, err := newCursor(session, cfg, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	guard := runner.NewGuard(runner.GuardConfig{
		ApplicationsPerHour:    cfg.Apply.ApplicationsPerHour,
		MaxConsecutiveFailures: cfg.Apply.MaxConsecutiveFailures,
		Cooldown:               cfg.Apply.FailureCooldown,
	}, logger.WithField("component", "guard"))

	r := runner.New(cursor, newApplier(session, cfg, logger), st, guard, m, profile, opts, logger)

	if cfg.Server.Enabled {
		srv := api.NewServer(cfg, routes.Deps{
			Run:     r,
			Store:   st,
			Metrics: m.Handler(),
			Checks:  map[string]handlers.HealthCheck{"browser": manager.IsHealthy},
		}, logger)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("Status server stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Error shutting down status server", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	stats, err := r.Run(ctx)

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: seen %d, matched %d, skipped %d, submitted %d, dry run %d, no easy apply %d, failed %d\n",
		stats.RunID, stats.Search.Seen, stats.Search.Matched, stats.Skipped,
		stats.Submitted, stats.DryRun, stats.NoApply, stats.Failed)

	if errors.Is(err, context.Canceled) {
		logger.Info("Run interrupted")
		return nil
	}
	return err
}
