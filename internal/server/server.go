// Package server binds the HTTP and gRPC listeners and owns the process
// lifecycle: start, wait for a signal, drain, close.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ggrpc "google.golang.org/grpc"

	"github.com/asadazo/asadazo/config"
	"github.com/asadazo/asadazo/internal/kernel"
	"github.com/asadazo/asadazo/pkg/grpc"
	"github.com/asadazo/asadazo/pkg/kv"
	"github.com/asadazo/asadazo/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Start opens the configured store, serves until SIGINT/SIGTERM and then
// shuts down gracefully.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if uri := config.LogMongoURI(); uri != "" {
		closeSink, err := logger.AttachMongo(uri, config.MongoDatabase(), "logs")
		if err != nil {
			logger.Warn("log sink disabled", "error", err)
		}
		defer closeSink()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := kv.Open(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	app, err := kernel.Build(kernel.Options{Store: store})
	if err != nil {
		_ = store.Close()
		return err
	}
	return Run(ctx, app, ":"+config.AppPort(), config.GRPCPort())
}

// Run serves app until ctx is cancelled. An empty grpcPort skips the gRPC
// health server.
func Run(ctx context.Context, app *kernel.App, addr, grpcPort string) error {
	bgCtx, cancelBg := context.WithCancel(context.Background())
	app.Start(bgCtx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcSrv *ggrpc.Server
	if grpcPort != "" {
		gs, err := grpc.Start(grpcPort, app.Store.Ping)
		if err != nil {
			cancelBg()
			_ = app.Close()
			return err
		}
		grpcSrv = gs
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Asadazo listening", "addr", addr, "kv_driver", app.Store.Driver(), "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	grpc.Stop(grpcSrv)

	cancelBg()
	if err := app.Close(); err != nil {
		logger.Error("close", "error", err)
	}
	logger.Info("server stopped")
	return serveErr
}
