package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/onramp-dev/onramp/pkg/database"
	"github.com/onramp-dev/onramp/pkg/logger"
)

// DefaultPort is used when ONRAMP_PORT is not set.
const DefaultPort = "8001"

// serve connects the database, migrates, builds the kernel, and runs the
// HTTP server until SIGINT/SIGTERM. One signal context governs the whole
// lifecycle; everything tears down when it fires.
func (a *Application) serve() error {
	if a.settings.Backend {
		db, err := database.Connect(a.settings)
		if err != nil {
			return err
		}
		if len(a.models) > 0 {
			if err := db.AutoMigrate(a.models...); err != nil {
				return fmt.Errorf("auto-migrate: %w", err)
			}
		}
		activeDB = db
	}

	handler, pool := buildHandler(a)
	defer pool.Shutdown()

	port := os.Getenv("ONRAMP_PORT")
	if port == "" {
		port = DefaultPort
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		fmt.Printf("Backend running on http://localhost:%s\n", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
