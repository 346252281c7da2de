package fakeapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			writeMessage(w, http.StatusUnauthorized, "missing access token")
			return
		}
		claims, err := s.tokens.ParseAccessToken(strings.TrimSpace(auth[7:]))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid access token")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid access token")
			return
		}
		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) uint {
	id, _ := ctx.Value(userIDContextKey).(uint)
	return id
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("fakeapi request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", r.Header.Get("X-Request-Id"),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
