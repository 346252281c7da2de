package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/partygames/truthordare/internal/apiclient"
	"github.com/partygames/truthordare/internal/domain"
	"github.com/partygames/truthordare/internal/profile"
	"github.com/partygames/truthordare/internal/session"
	"github.com/partygames/truthordare/internal/storage"
)

type testEnv struct {
	mux     *http.ServeMux
	server  *httptest.Server
	api     *apiclient.Client
	session *session.Store
	profile *profile.Cache
	logger  *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	kv := storage.NewMemoryKV()
	store := session.NewStore(kv, logger)
	cache := profile.NewCache(kv, logger)
	api, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, store, logger)
	if err != nil {
		t.Fatalf("new api client: %v", err)
	}
	return &testEnv{mux: mux, server: srv, api: api, session: store, profile: cache, logger: logger}
}

func (e *testEnv) handle(pattern string, h http.HandlerFunc) {
	e.mux.HandleFunc(pattern, h)
}

func (e *testEnv) signIn(t *testing.T, exp time.Time) {
	t.Helper()
	err := e.session.SaveSession(context.Background(), domain.TokenResponse{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    domain.NewAPITime(exp),
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func tokenJSON(access, refresh string, exp time.Time) map[string]string {
	return map[string]string{
		"accessToken":  access,
		"refreshToken": refresh,
		"expiresAt":    exp.UTC().Format(domain.APITimeLayout),
	}
}

func strPtr(v string) *string { return &v }
