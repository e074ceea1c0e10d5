package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/terra-clan/manrura/internal/api"
	"github.com/terra-clan/manrura/internal/assessment"
	"github.com/terra-clan/manrura/internal/assistant"
	"github.com/terra-clan/manrura/internal/catalog"
	"github.com/terra-clan/manrura/internal/config"
	"github.com/terra-clan/manrura/internal/health"
	"github.com/terra-clan/manrura/internal/metrics"
	"github.com/terra-clan/manrura/internal/session"
	"github.com/terra-clan/manrura/internal/storage"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogger(cfg.Log.Level)

	slog.Info("starting manrura",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Backend,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(parent, 30*time.Second)
	defer initCancel()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	slog.Info("catalog loaded", "standards", len(cat.Standards()), "points", cat.PointCount())

	kv, err := storage.Open(initCtx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	slog.Info("storage connected successfully", "backend", cfg.Storage.Backend)

	loc, err := cfg.Locale.Location()
	if err != nil {
		return err
	}

	m := metrics.New()
	manager := assessment.NewManager(initCtx, cat, storage.NewStore(kv),
		assessment.WithMetrics(m),
		assessment.WithLocation(loc),
	)
	defer func() {
		if err := manager.Close(); err != nil {
			slog.Error("manager close error", "error", err)
		}
	}()

	model := assistantModel(initCtx, cfg.Assistant, newGemini)
	chat, err := assistant.NewService(model, cat, cfg.Assistant.Timeout, m)
	if err != nil {
		return err
	}

	registry := health.NewRegistry()
	registry.Register("storage", health.CheckFunc(manager.Ping))

	sessions := session.NewTracker()
	janitor := session.NewJanitor(sessions, cfg.Session.IdleTimeout, cfg.Session.SweepInterval, m)

	server := api.NewServer(cfg.Server, api.Deps{
		Manager:   manager,
		Sessions:  sessions,
		Assistant: chat,
		Health:    registry,
		Metrics:   m,
	})
	httpServer := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     server.Router(),
		ReadTimeout: 15 * time.Second,
		// WriteTimeout is left unset: chat sockets are long-lived and
		// assistant answers can take a while
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return janitor.Run(gctx)
	})

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("manrura stopped")
	return nil
}

type modelFactory func(ctx context.Context, apiKey, model string) (assistant.TextAssistant, error)

func newGemini(ctx context.Context, apiKey, model string) (assistant.TextAssistant, error) {
	g, err := assistant.NewGemini(ctx, apiKey, model)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// assistantModel returns nil, which disables the assistant, when no key is
// configured or the client cannot be created. The service keeps running and
// answers chat with the disabled reply.
func assistantModel(ctx context.Context, cfg config.AssistantConfig, factory modelFactory) assistant.TextAssistant {
	if !cfg.Enabled() {
		return nil
	}

	model, err := factory(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		slog.Error("failed to create assistant client, chatbot disabled", "error", err, "model", cfg.Model)
		return nil
	}
	return model
}
