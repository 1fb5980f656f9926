package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/supersignal/internal/api"
	"github.com/wonny/supersignal/internal/api/handlers"
	"github.com/wonny/supersignal/internal/batch"
	"github.com/wonny/supersignal/internal/scheduler"
	"github.com/wonny/supersignal/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the screening HTTP API.

When SCHEDULER_ENABLED=true the watchlist in SCHEDULER_WATCHLIST is screened
on SCHEDULER_SCHEDULE so that requests find provider data in the cache.

Endpoints:
  GET  /health                      - Health check
  GET  /metrics                     - Prometheus metrics
  GET  /api/v1/screen/{ticker}      - Screen one ticker
  GET  /api/v1/screen?tickers=A,B   - Screen a batch (format=json|csv|text)
  GET  /api/v1/thresholds           - Effective thresholds and rules
  GET  /api/v1/jobs                 - Scheduler job stats

Example:
  go run ./cmd/supersignal serve
  go run ./cmd/supersignal serve --port 8080`,
	RunE: runServe,
}

var (
	servePort       string
	serveConfigFile string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default PORT)")
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "screening YAML with thresholds and source priority")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Wire providers, cache and coordinator
	a, err := newApp(context.Background(), cfg, appOptions{screenConfig: serveConfigFile})
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Scheduler
	var jobsHandler *handlers.JobsHandler
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(log)
		watchlist := batch.NormalizeTickers(cfg.Scheduler.Watchlist...)
		warm := jobs.NewWarmCacheJob(a.coordinator, watchlist, a.screenCfg.Thresholds, cfg.Scheduler.Schedule, log)
		if err := sched.AddJob(warm); err != nil {
			return fmt.Errorf("schedule warm-up: %w", err)
		}
		if p, ok := a.store.(jobs.Purger); ok {
			if err := sched.AddJob(jobs.NewCacheCleanupJob(p, log)); err != nil {
				return fmt.Errorf("schedule cache cleanup: %w", err)
			}
		}
		sched.Start()
		defer sched.Stop()

		jobsHandler = handlers.NewJobsHandler(sched)
	}

	// 4. Router and server
	screenHandler := handlers.NewScreenHandler(a.coordinator, a.screenCfg, a.configHash, log)
	router := api.NewRouter(screenHandler, jobsHandler, a.metrics, log)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
