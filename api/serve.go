package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/shift-pay/config"
	"github.com/warp/shift-pay/pay"
	"github.com/warp/shift-pay/session"
	"github.com/warp/shift-pay/session/memory"
	"github.com/warp/shift-pay/store/sqlite"
)

// ShutdownTimeout bounds how long active requests may run after a stop
// signal.
const ShutdownTimeout = 30 * time.Second

// OpenStore returns the session store for a DB path: ":memory:" keeps
// sessions in process memory, anything else is a SQLite file.
func OpenStore(dbPath string) (session.Store, io.Closer, error) {
	if dbPath == ":memory:" || dbPath == "" {
		return memory.New(), io.NopCloser(nil), nil
	}
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return store, store, nil
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down
// gracefully.
func Serve(ctx context.Context, cfg *config.Config) error {
	rates, err := cfg.Rates()
	if err != nil {
		return fmt.Errorf("failed to load rates: %w", err)
	}

	store, closer, err := OpenStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer closer.Close()

	svc := session.NewService(store, pay.NewCalculator(rates), cfg.SessionConfig())

	sweeper := session.NewSweeper(store, cfg.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	router := NewRouter(NewHandler(svc, cfg.MaxUploadBytes), RouterConfig{AllowedOrigins: cfg.CORSOrigins})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":  cfg.Port,
			"db":    cfg.DBPath,
			"ttl":   cfg.SessionTTL,
			"rates": cfg.RatesFile,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logrus.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logrus.Info("server stopped")
	return nil
}
