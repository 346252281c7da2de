package observability

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/partygames/truthordare/internal/config"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const shutdownTimeout = 5 * time.Second

type Runtime struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider

	once sync.Once
	err  error
}

// InitRuntime sets up metrics and tracing. The returned cleanup flushes both
// and is safe to call after Shutdown.
func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, func(), error) {
	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		if serr := mp.Shutdown(ctx); serr != nil {
			logger.Warn("shutdown meter provider", "error", serr)
		}
		return nil, nil, err
	}
	r := &Runtime{MeterProvider: mp, TracerProvider: tp}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := r.Shutdown(ctx); err != nil {
			logger.Warn("shutdown telemetry", "error", err)
		}
	}
	return r, cleanup, nil
}

// Shutdown flushes and stops the providers. Only the first call does work;
// later calls return its result.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	r.once.Do(func() {
		var errs []error
		if r.MeterProvider != nil {
			if err := r.MeterProvider.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if r.TracerProvider != nil {
			if err := r.TracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		r.err = errors.Join(errs...)
	})
	return r.err
}
