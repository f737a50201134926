package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/club-scheduler/internal/application"
	"github.com/example/club-scheduler/internal/config"
	httptransport "github.com/example/club-scheduler/internal/http"
	"github.com/example/club-scheduler/internal/logging"
	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/persistence/sqlstore"
	"github.com/example/club-scheduler/internal/persistence/sqlstore/migration"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("club scheduler stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(store, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("club scheduler listening", "addr", server.Addr, "driver", string(cfg.DBDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("club scheduler stopped")
	return nil
}

// openStore migrates the schema and opens the transactional store.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sqlstore.Store, error) {
	dbConfig := migration.DefaultConfig(cfg.DBDriver, cfg.DBDSN)

	status, err := migration.Run(ctx, dbConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("schema ready", "version", status.Version, "changed", status.Changed)

	retry := sqlstore.DefaultRetryConfig()
	retry.MaxRetries = cfg.TxMaxRetries

	store, err := sqlstore.Open(dbConfig, sqlstore.Options{Retry: retry, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return store, nil
}

// newHandler wires every service over store behind the request middleware.
func newHandler(store persistence.Store, logger *slog.Logger) http.Handler {
	now := func() time.Time { return time.Now().UTC() }

	sessions := application.NewSessionServiceWithLogger(store, application.NewRoomAllocator(nil), uuid.NewString, now, logger)
	trainers := application.NewTrainerServiceWithLogger(store, uuid.NewString, now, logger)
	rooms := application.NewRoomServiceWithLogger(store, uuid.NewString, now, logger)
	members := application.NewMemberServiceWithLogger(store, uuid.NewString, now, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Sessions: httptransport.NewSessionHandler(sessions, logger),
		Trainers: httptransport.NewTrainerHandler(trainers, sessions, logger),
		Rooms:    httptransport.NewRoomHandler(rooms, logger),
		Members:  httptransport.NewMemberHandler(members, logger),
		Health:   httptransport.NewHealthHandler(store, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recoverer(logger),
		},
	})
}
