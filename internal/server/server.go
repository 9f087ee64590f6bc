package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"uleaf-admin/internal/config"
)

// Start serves router until ctx ends, then drains in-flight requests and
// runs the cleanup hooks in order.
func Start(ctx context.Context, cfg config.Config, router http.Handler, log *slog.Logger, cleanup ...func()) error {
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", "addr", srv.Addr, "env", cfg.Env, "endpoints", len(cfg.Endpoints))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	log.Info("http server shutting down", "timeout", cfg.ShutdownTimeout)
	return srv.Shutdown(shutdownCtx)
}
