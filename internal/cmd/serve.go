package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/veildata/veil/internal/config"
	"github.com/veildata/veil/internal/redact"
	"github.com/veildata/veil/internal/report"
	"github.com/veildata/veil/internal/server"
)

var (
	servePort         int
	serveGlobalRPM    int
	servePerClientRPM int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Veil HTTP API with run history and retention",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8085, "HTTP server port")
	serveCmd.Flags().IntVar(&serveGlobalRPM, "global-rpm", 600, "total requests per minute across all clients")
	serveCmd.Flags().IntVar(&servePerClientRPM, "client-rpm", 120, "requests per minute per client")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	provider, err := buildProvider(cfg, "")
	if err != nil {
		return err
	}
	pipeline, err := redact.New(provider)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	store, err := report.NewStore(cfg.ReportDBPath())
	if err != nil {
		return fmt.Errorf("initializing report store: %w", err)
	}
	defer store.Close()

	if cfg.APIKey == "" {
		log.Warn().Msg("VEIL_API_KEY not set — the API is open. Set for production.")
	}

	// Nightly retention purge of the run history.
	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
	scheduler := cron.New()
	_, err = scheduler.AddFunc("0 3 * * *", func() {
		purgeCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := store.Purge(purgeCtx, time.Now().UTC().Add(-retention))
		if err != nil {
			log.Error().Err(err).Msg("retention_purge_failed")
			return
		}
		log.Info().Int64("purged", n).Msg("retention_purge_done")
	})
	if err != nil {
		return fmt.Errorf("registering retention schedule: %w", err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	srv := server.New(pipeline,
		server.WithStore(store),
		server.WithAPIKey(cfg.APIKey),
		server.WithRateLimit(serveGlobalRPM, servePerClientRPM),
	)

	addr := fmt.Sprintf(":%d", servePort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Str("provider", provider.Name()).
		Int("retention_days", cfg.RetentionDays).
		Msg("veil_serve_started")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server_stopped")
	return nil
}
