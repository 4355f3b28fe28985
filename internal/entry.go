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

	"github.com/starford/quire/internal/api"
	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/encryption"
	"github.com/starford/quire/internal/mcpserver"
	"github.com/starford/quire/internal/noteservice"
	"github.com/starford/quire/internal/notestore"
	"github.com/starford/quire/internal/persistence"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/storage"
)

// App is an opened note collection with its service layer.
type App struct {
	Config  *Config
	Logger  *slog.Logger
	Service *noteservice.Service

	version string
	adapter *persistence.Adapter
	file    *storage.FileSlot // nil for the sqlite driver
	closer  io.Closer
}

// NewLogger returns the structured JSON logger used by every entry point.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func build(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = NewLogger(app.logOutput, app.config.App.LogLevel)
	}
	return app, nil
}

// Open builds the storage slot, persistence adapter, note store and service
// described by the configuration.
func Open(opts ...Option) (*App, error) {
	app, err := build(opts)
	if err != nil {
		return nil, err
	}
	cfg, logger := app.config, app.logger
	slog.SetDefault(logger)

	a := &App{Config: cfg, Logger: logger, version: app.version}
	var slot storage.Slot
	switch cfg.Storage.Driver {
	case DriverSQLite:
		s, err := storage.OpenSQLiteSlot(cfg.Storage.Path, cfg.Storage.Slot)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		slot, a.closer = s, s
	default:
		s, err := storage.NewFileSlot(cfg.Storage.Path, cfg.Storage.Slot)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		slot, a.file = s, s
	}

	a.adapter = persistence.New(slot, logger)
	store := notestore.New(a.adapter, notestore.WithLogger(logger))
	a.Service = noteservice.New(store, encryption.NewService(cfg.Encryption),
		noteservice.WithLogger(logger),
		noteservice.WithAnalyzerOptions(cfg.Analyzer.Options()),
	)

	logger.Debug("Collection opened",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("path", cfg.Storage.Path),
		slog.String("slot", slot.Name()),
		slog.Int("notes", store.Len()))
	return a, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// watch reloads the collection when another process rewrites the slot file.
// Writes made by this process are recognised by checksum and ignored.
func (a *App) watch(ctx context.Context) error {
	return storage.Watch(ctx, a.file, a.Logger, func(data []byte) {
		if data == nil || checksum.Same(a.adapter.LastChecksum(), data) {
			return
		}
		a.adapter.Observe(data)
		_ = a.Service.Reload(ctx, data)
	})
}

// Run starts the HTTP API with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	a, err := Open(opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, logger := a.Config, a.Logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	a.Service.SetEventCallback(broker.PublishNoteEvent)

	apiRouter := api.NewRouter(a.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if a.file != nil && cfg.Storage.Watch {
		g.Go(func() error {
			if err := a.watch(gCtx); err != nil {
				logger.Warn("slot watcher unavailable", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown ends the errgroup once the server has been shut down, which
// also cancels the watcher.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	a, err := Open(opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpserver.New(a.Service, a.version)

	g, gCtx := errgroup.WithContext(ctx)
	if a.file != nil && a.Config.Storage.Watch {
		g.Go(func() error {
			if err := a.watch(gCtx); err != nil {
				a.Logger.Warn("slot watcher unavailable", slog.String("error", err.Error()))
			}
			return nil
		})
	}
	g.Go(func() error {
		a.Logger.Info("MCP server starting on stdio")
		err := srv.ServeStdio()
		return errors.Join(err, errShutdown)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}
