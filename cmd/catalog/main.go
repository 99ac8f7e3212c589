// Package main runs the product catalog HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"golang.org/x/sync/errgroup"

	"catalogsvc/internal/app"
	"catalogsvc/internal/config"
	"catalogsvc/internal/store"
	"catalogsvc/pkg/bootstrap"
	pkgconfig "catalogsvc/pkg/config"
	"catalogsvc/pkg/config/configloader"
)

const serviceName = "catalog"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, sets up the configured storage
// backend, and starts the HTTP and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	productStore, cleanup, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up storage backend: %w", err)
	}
	defer cleanup()

	deps := app.SetupDependencies(productStore, logger)
	httpServer := app.SetupHttpServer(deps, cfg)
	pprofServer := &http.Server{
		Addr: cfg.PProf.Addr,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// setupStore builds the storage backend the configuration selects. The
// returned cleanup releases backend resources on shutdown.
func setupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	switch cfg.Storage.Backend {
	case pkgconfig.BackendFile:
		fileStore, err := store.NewFileStore(cfg.Storage.File.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using file storage backend", slog.String("path", cfg.Storage.File.Path))
		return fileStore, func() {}, nil

	case pkgconfig.BackendMongo:
		client, err := bootstrap.NewMongoClient(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using mongo storage backend",
			slog.String("database", cfg.Storage.Mongo.Database),
			slog.String("collection", cfg.Storage.Mongo.Collection))
		col := client.Database(cfg.Storage.Mongo.Database).Collection(cfg.Storage.Mongo.Collection)
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.Storage.Mongo.Timeout)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Warn("failed to disconnect mongo client", slog.Any("error", err))
			}
		}
		return store.NewMongoStore(col), cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}
