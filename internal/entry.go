// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/tscanvas/internal/api"
	"github.com/starford/tscanvas/internal/canvas"
	"github.com/starford/tscanvas/internal/canvasservice"
	"github.com/starford/tscanvas/internal/kv"
	"github.com/starford/tscanvas/internal/mcpserver"
	"github.com/starford/tscanvas/internal/settings"
	"github.com/starford/tscanvas/internal/sse"
	"github.com/starford/tscanvas/internal/stamp"
	"github.com/starford/tscanvas/internal/storage"
	"github.com/starford/tscanvas/internal/watch"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. stdout carries the protocol in MCP mode.
	var out io.Writer = os.Stdout
	if app.mcp {
		out = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("store_path", cfg.Store.Path),
		slog.Bool("mcp", app.mcp),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Settings persistence.
	kvStore, err := kv.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer kvStore.Close()

	st, err := settings.Load(ctx, kvStore, logger)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	defer func() {
		if err := st.Flush(); err != nil {
			logger.Error("settings flush failed", slog.String("error", err.Error()))
		}
	}()

	// Reference host and the timestamp plugin.
	host := canvas.NewApp(logger)
	pluginOpts := []stamp.Option{stamp.WithLogger(logger)}
	if cfg.Plugin.EdgeLabels {
		pluginOpts = append(pluginOpts, stamp.WithEdgeLabels())
	}
	plugin := stamp.New(host.Workspace(), st, pluginOpts...)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := canvasservice.New(host, store, plugin, st, broker, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	// The host loop outlives the group context so shutdown can still unload the plugin.
	hostCtx, stopHost := context.WithCancel(context.Background())
	defer stopHost()
	g.Go(func() error {
		return host.Run(hostCtx)
	})

	if err := svc.Start(gCtx); err != nil {
		stopHost()
		_ = g.Wait()
		return fmt.Errorf("start plugin: %w", err)
	}

	// Reload canvases edited outside the host.
	g.Go(func() error {
		if err := watch.Watch(gCtx, cfg.Vault.Path, watch.DefaultSettle, logger, func(kind, path string) {
			svc.HandleFileEvent(gCtx, kind, path)
		}); err != nil {
			return fmt.Errorf("watcher error: %w", err)
		}
		return nil
	})

	var httpServer *http.Server
	if app.mcp {
		g.Go(func() error {
			logger.Info("Starting MCP server on stdio")
			defer cancel()
			if err := mcpserver.New(svc).ServeStdio(); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		})
	} else {
		httpServer = &http.Server{
			Addr:    cfg.App.HTTP.Address(),
			Handler: newRouter(svc, cfg, broker),
		}
		logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			logger.Error("plugin unload error", slog.String("error", err.Error()))
		}
		stopHost()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newRouter builds the HTTP surface: health checks plus the API under /api.
func newRouter(svc *canvasservice.Service, cfg *Config, broker *sse.Broker) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	health := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	// Mount API routes under /api; the event stream sits behind the same auth.
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	return r
}
