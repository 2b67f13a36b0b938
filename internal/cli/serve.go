package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harun/literelay/internal/config"
	"github.com/harun/literelay/internal/logger"
	"github.com/harun/literelay/internal/observability"
	"github.com/harun/literelay/internal/tracing"
	"github.com/harun/literelay/pkg/llm"
	"github.com/harun/literelay/pkg/relay"
	"github.com/harun/literelay/pkg/session"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay HTTP server",
	Long: `Start the relay HTTP server in the foreground.
The server accepts chat messages on /chat, relays them to the upstream
generation service, and keeps per-session transcripts in memory until
the process exits or the session is reset.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Environment overrides may live in a .env file
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
		MaxSize:   cfg.Logging.MaxSize,
		MaxAge:    cfg.Logging.MaxAge,
		Compress:  cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	if cfg.Logging.AuditFile != "" {
		if err := observability.InitAuditLogger(cfg.Logging.AuditFile); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize audit logger, using default stderr")
		} else {
			log.Info().Str("path", cfg.Logging.AuditFile).Msg("Audit logger initialized")
		}
	}
	defer func() {
		if err := observability.GetAuditLogger().Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close audit logger")
		}
	}()

	if err := tracing.InitOpenTelemetry("literelay"); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.ShutdownOpenTelemetry(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down tracing")
		}
	}()

	store := session.NewStore()

	generator := llm.NewGenerator(cfg.Upstream)
	log.Info().
		Str("generator", generator.Name()).
		Str("endpoint", cfg.Upstream.Endpoint).
		Msg("Generator initialized")

	service, err := relay.NewService(relay.Config{
		Store:           store,
		Generator:       generator,
		DefaultModel:    cfg.Models.Default,
		SupportedModels: cfg.Models.Supported,
		MaxTokens:       cfg.Upstream.MaxTokens,
		Temperature:     cfg.Upstream.Temperature,
		Logger:          log.GetZerolog(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize relay service: %w", err)
	}
	log.Info().
		Str("default_model", cfg.Models.Default).
		Strs("supported_models", cfg.Models.Supported).
		Msg("Relay service initialized")

	server, err := relay.NewServer(relay.ServerOptions{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
	}, service, log.GetZerolog())
	if err != nil {
		return fmt.Errorf("failed to initialize relay server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		stop()
		if err := server.Stop(); err != nil {
			return err
		}
		if err := <-errCh; err != nil {
			return err
		}
	}

	return nil
}
