package cli

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/partygames/truthordare/internal/fakeapi"
)

func setupCLIEnv(t *testing.T) *fakeapi.Server {
	t.Helper()
	db, err := fakeapi.OpenDB("sqlite", "")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store, err := fakeapi.NewStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	srv := fakeapi.NewServer(store, fakeapi.Options{BcryptCost: bcrypt.MinCost}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	t.Setenv("TOD_CONFIG", "")
	t.Setenv("TOD_API_BASE_URL", hs.URL)
	t.Setenv("TOD_STORAGE_DRIVER", "sqlite")
	t.Setenv("TOD_STORAGE_DSN", "file:"+filepath.Join(t.TempDir(), "device.db"))
	t.Setenv("TOD_LOG_LEVEL", "error")
	t.Setenv("TOD_PASSWORD", "")
	return srv
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--ci"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLISessionPersistsAcrossInvocations(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLI(t, "register", "--name", "Ann", "--surname", "Lee", "--email", "ann@example.com", "--password", "secret1")
	if err != nil {
		t.Fatalf("register: %v (%s)", err, out)
	}
	out, err = runCLI(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "state: logged_in") || !strings.Contains(out, "Ann Lee") {
		t.Fatalf("unexpected status output %q", out)
	}

	if out, err = runCLI(t, "collections", "create", "--name", "Road trip", "--description", "car games"); err != nil {
		t.Fatalf("create: %v (%s)", err, out)
	}
	if out, err = runCLI(t, "collections", "add-action", "1", "--text", "Sing the chorus", "--type", "dare", "--order", "1"); err != nil {
		t.Fatalf("add action: %v (%s)", err, out)
	}
	out, err = runCLI(t, "collections", "get", "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, "Road trip") || !strings.Contains(out, "0 truths · 1 dare") || !strings.Contains(out, "by Ann Lee") {
		t.Fatalf("unexpected collection output %q", out)
	}

	if _, err = runCLI(t, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	out, _ = runCLI(t, "status")
	if !strings.Contains(out, "state: logged_out") {
		t.Fatalf("expected logged out, got %q", out)
	}
	if _, err := runCLI(t, "collections", "mine"); err == nil {
		t.Fatal("mine without a session must fail")
	}
}

func TestCLIPublicCommands(t *testing.T) {
	srv := setupCLIEnv(t)
	if err := srv.Seed(t.Context(), "demo@example.com", "demo-pass", fakeapi.DemoCollections); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := runCLI(t, "ping")
	if err != nil || !strings.Contains(out, "api reachable") {
		t.Fatalf("ping: %v %q", err, out)
	}
	out, err = runCLI(t, "collections", "list", "--size", "1")
	if err != nil || !strings.Contains(out, "page 1 of 2") {
		t.Fatalf("list: %v %q", err, out)
	}
	out, err = runCLI(t, "home")
	if err != nil || !strings.Contains(out, "Warm up") {
		t.Fatalf("home: %v %q", err, out)
	}
	out, err = runCLI(t, "user", "get", "404")
	if err != nil || !strings.Contains(out, "User #404") {
		t.Fatalf("user placeholder: %v %q", err, out)
	}
}

func TestCLIValidatesInputBeforeNetwork(t *testing.T) {
	setupCLIEnv(t)
	if _, err := runCLI(t, "login", "--email", "a@b.c"); err == nil || !strings.Contains(err.Error(), "password") {
		t.Fatalf("expected missing password error, got %v", err)
	}
	if _, err := runCLI(t, "collections", "get", "abc"); err == nil {
		t.Fatal("expected invalid id error")
	}
	if _, err := runCLI(t, "profile", "update"); err == nil {
		t.Fatal("expected nothing to update error")
	}
	if _, err := runCLI(t, "collections", "add-action", "1", "--text", "x", "--type", "maybe"); err == nil {
		t.Fatal("expected invalid type error")
	}
}
