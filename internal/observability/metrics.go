package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/partygames/truthordare/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const instrumentationName = "github.com/partygames/truthordare"

type AppMetrics struct {
	authLoginCounter       metric.Int64Counter
	authRefreshCounter     metric.Int64Counter
	authLogoutCounter      metric.Int64Counter
	apiRequestCounter      metric.Int64Counter
	apiRequestDuration     metric.Float64Histogram
	profileFallbackCounter metric.Int64Counter
	storageOpCounter       metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	var mp *sdkmetric.MeterProvider
	if !cfg.OTELMetricsEnabled {
		mp = sdkmetric.NewMeterProvider()
		logger.Debug("otel metrics disabled")
	} else {
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
		if cfg.OTELExporterOTLPInsecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp metric exporter: %w", err)
		}
		res, err := newResource(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create metric resource: %w", err)
		}
		reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
		mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
		logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	}
	otel.SetMeterProvider(mp)
	if err := RegisterMetrics(mp); err != nil {
		return nil, err
	}
	return mp, nil
}

// RegisterMetrics creates the application instruments on provider and makes
// the Record* helpers emit to them.
func RegisterMetrics(provider metric.MeterProvider) error {
	meter := provider.Meter(instrumentationName)
	loginCounter, err := meter.Int64Counter("auth.login.attempts")
	if err != nil {
		return err
	}
	refreshCounter, err := meter.Int64Counter("auth.refresh.attempts")
	if err != nil {
		return err
	}
	logoutCounter, err := meter.Int64Counter("auth.logout.attempts")
	if err != nil {
		return err
	}
	requestCounter, err := meter.Int64Counter("api.client.requests")
	if err != nil {
		return err
	}
	requestDuration, err := meter.Float64Histogram("api.client.request.duration", metric.WithUnit("s"))
	if err != nil {
		return err
	}
	fallbackCounter, err := meter.Int64Counter("profile.cache.fallbacks")
	if err != nil {
		return err
	}
	storageCounter, err := meter.Int64Counter("storage.operations")
	if err != nil {
		return err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		authLoginCounter:       loginCounter,
		authRefreshCounter:     refreshCounter,
		authLogoutCounter:      logoutCounter,
		apiRequestCounter:      requestCounter,
		apiRequestDuration:     requestDuration,
		profileFallbackCounter: fallbackCounter,
		storageOpCounter:       storageCounter,
	}
	metricsMu.Unlock()
	return nil
}

func currentMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordAuthLogin(ctx context.Context, method, status string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.authLoginCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("status", status),
		),
	)
}

func RecordAuthRefresh(ctx context.Context, status string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.authRefreshCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAuthLogout(ctx context.Context, status string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.authLogoutCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAPIRequest(ctx context.Context, method, endpoint, outcome string, elapsed time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	)
	m.apiRequestCounter.Add(ctx, 1, attrs)
	m.apiRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func RecordProfileFallback(ctx context.Context, source string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.profileFallbackCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

func RecordStorageOperation(ctx context.Context, backend, operation, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.storageOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
