package config

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	sourceFile = "file"
	sourceEnv  = "env"

	stageNone     = "none"
	stageRead     = "read"
	stageValidate = "validate"
)

// loadEvent is one observation of the config.loads counter.
type loadEvent struct {
	source  string
	outcome string
	stage   string
	field   string
}

func newLoadEvent(source, stage string, err error) loadEvent {
	ev := loadEvent{source: source, outcome: "success", stage: stageNone, field: "none"}
	if err == nil {
		return ev
	}
	ev.outcome = "failure"
	ev.stage = stage
	var fe *FieldError
	if errors.As(err, &fe) {
		ev.field = fe.Key
	}
	return ev
}

func recordLoad(ctx context.Context, ev loadEvent) {
	counter, err := otel.Meter("github.com/partygames/truthordare/internal/config").Int64Counter("config.loads")
	if err != nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", ev.source),
		attribute.String("outcome", ev.outcome),
		attribute.String("stage", ev.stage),
		attribute.String("field", ev.field),
	))
}
