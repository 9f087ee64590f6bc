package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"uleaf-admin/internal/config"
)

func TestStartRunsCleanupOnShutdown(t *testing.T) {
	cfg := config.Config{HTTPPort: "0", ShutdownTimeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	var order []string
	done := make(chan error, 1)
	go func() {
		done <- Start(ctx, cfg, http.NotFoundHandler(), slog.New(slog.NewTextHandler(io.Discard, nil)),
			func() { order = append(order, "searches") },
			func() { order = append(order, "store") },
		)
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
	if len(order) != 2 || order[0] != "searches" || order[1] != "store" {
		t.Fatalf("cleanup order = %v", order)
	}
}
