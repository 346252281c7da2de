package observability

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/partygames/truthordare/internal/config"
)

func TestRuntimeCleanupAfterShutdown(t *testing.T) {
	cfg := &config.Config{OTELServiceName: "tod-test", OTELEnvironment: "test"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r, cleanup, err := InitRuntime(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("init runtime: %v", err)
	}
	if r.MeterProvider == nil || r.TracerProvider == nil {
		t.Fatal("expected both providers")
	}
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	cleanup()
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown must repeat the first result, got %v", err)
	}
}

func TestInitLogsDisabled(t *testing.T) {
	lp, cleanup, err := InitLogs(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("init logs: %v", err)
	}
	if lp != nil {
		t.Fatal("disabled logs must not build a provider")
	}
	cleanup()
}
