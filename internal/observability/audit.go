package observability

import (
	"context"
	"log/slog"
)

// Audit logs a session lifecycle event (login, refresh, logout) on logger.
func Audit(ctx context.Context, logger *slog.Logger, event, outcome string, attrs ...any) {
	base := []any{
		"event", event,
		"outcome", outcome,
	}
	base = append(base, attrs...)
	logger.InfoContext(ctx, "audit", base...)
}
