package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/partygames/truthordare/internal/apiclient"
	"github.com/partygames/truthordare/internal/config"
	"github.com/partygames/truthordare/internal/dispatch"
	"github.com/partygames/truthordare/internal/domain"
	"github.com/partygames/truthordare/internal/fakeapi"
	"github.com/partygames/truthordare/internal/service"
	"github.com/partygames/truthordare/internal/storage"
)

func newFakeAPI(t *testing.T, opts fakeapi.Options) (*fakeapi.Server, *httptest.Server) {
	t.Helper()
	db, err := fakeapi.OpenDB("sqlite", "")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store, err := fakeapi.NewStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	opts.BcryptCost = bcrypt.MinCost
	srv := fakeapi.NewServer(store, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return srv, hs
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIBaseURL:    baseURL,
		HTTPTimeout:   5 * time.Second,
		UserAgent:     "tod-test",
		StorageDriver: storage.DriverMemory,
		LogLevel:      "error",
		LogFormat:     "text",
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, cleanup, err := Initialize(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() {
		_ = a.Shutdown(context.Background())
		cleanup()
	})
	return a
}

func TestInitializeWiresSharedComponents(t *testing.T) {
	_, hs := newFakeAPI(t, fakeapi.Options{})
	cfg := testConfig(hs.URL)
	a := newTestApp(t, cfg)

	if a.Config != cfg || a.Logger == nil || a.Observability == nil {
		t.Fatal("expected config, logger and telemetry to be assigned")
	}
	if a.Session == nil || a.Profile == nil || a.API == nil || a.Loop == nil {
		t.Fatal("expected core components to be constructed")
	}
	if a.Auth.State() != service.StateLoggedOut {
		t.Fatalf("fresh app should be logged out, got %s", a.Auth.State())
	}
	if err := a.Connectivity.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestInitializeRejectsBadStorageDriver(t *testing.T) {
	cfg := testConfig("http://localhost:1")
	cfg.StorageDriver = "floppy"
	if _, _, err := Initialize(context.Background(), cfg, io.Discard); err == nil {
		t.Fatal("expected storage error")
	}
}

func TestSessionLifecycleAgainstFakeAPI(t *testing.T) {
	_, hs := newFakeAPI(t, fakeapi.Options{})
	a := newTestApp(t, testConfig(hs.URL))
	ctx := context.Background()

	err := a.Auth.Register(ctx, service.RegisterInput{Name: "Ann", Surname: "Lee", Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := a.Auth.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if a.Session.IsLoggedIn() {
		t.Fatal("expected logged out")
	}

	if err := a.Auth.Login(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	cached, ok := a.Profile.Get()
	if !ok || cached.Name != domain.PlaceholderName || cached.Email != "ann@example.com" {
		t.Fatalf("unexpected login projection %+v", cached)
	}

	u, err := a.Users.Profile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if u.FullName() != "Ann Lee" {
		t.Fatalf("unexpected profile %+v", u)
	}
	if cached, _ := a.Profile.Get(); cached.Name != "Ann" || cached.ID != u.ID {
		t.Fatalf("profile fetch should overwrite cache, got %+v", cached)
	}

	if _, err := a.Collections.Create(ctx, domain.CollectionInput{Name: "Late night", Description: "d"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	mine, err := a.Collections.Mine(ctx)
	if err != nil || len(mine) != 1 {
		t.Fatalf("mine: %v %+v", err, mine)
	}
	id := mine[0].ID
	for i, in := range []domain.ActionInput{
		{Text: "Truth one", Type: domain.ActionTruth, Order: 1},
		{Text: "Truth two", Type: domain.ActionTruth, Order: 2},
		{Text: "Dare one", Type: domain.ActionDare, Order: 3},
	} {
		if _, err := a.Collections.AddAction(ctx, id, in); err != nil {
			t.Fatalf("add action %d: %v", i, err)
		}
	}
	full, err := a.Collections.WithActions(ctx, id)
	if err != nil {
		t.Fatalf("with actions: %v", err)
	}
	if full.TotalCardsCount() != 3 || full.TruthCardsCount() != 2 || full.DareCardsCount() != 1 {
		t.Fatalf("unexpected counts for %+v", full)
	}

	author, err := a.Users.PublicUser(ctx, full.UserID)
	if err != nil || author.Name != "Ann" {
		t.Fatalf("author: %+v %v", author, err)
	}
	ghost, err := a.Users.PublicUser(ctx, 9999)
	if err != nil || ghost != domain.PlaceholderUser(9999) {
		t.Fatalf("expected placeholder, got %+v %v", ghost, err)
	}

	before := *a.Session.AccessToken()
	if err := a.Auth.RefreshTokens(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if after := *a.Session.AccessToken(); after == before {
		t.Fatal("expected a new access token after refresh")
	}
}

func TestExpiredAccessTokenIsSentAndRejected(t *testing.T) {
	_, hs := newFakeAPI(t, fakeapi.Options{AccessTTL: time.Second})
	a := newTestApp(t, testConfig(hs.URL))
	ctx := context.Background()

	if err := a.Auth.Register(ctx, service.RegisterInput{Name: "Bo", Email: "bo@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	time.Sleep(2100 * time.Millisecond)
	if a.Auth.State() != service.StateExpired {
		t.Fatalf("expected expired state, got %s", a.Auth.State())
	}

	if _, err := a.Collections.Mine(ctx); !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Fatalf("expired token should reach the server and be rejected, got %v", err)
	}
	if !a.Session.IsLoggedIn() {
		t.Fatal("a rejected request must not clear the session")
	}

	if err := a.Auth.EnsureFreshToken(ctx); err != nil {
		t.Fatalf("ensure fresh: %v", err)
	}
	if _, err := a.Collections.Mine(ctx); err != nil {
		t.Fatalf("mine after refresh: %v", err)
	}
}

func TestRejectedRefreshClearsSession(t *testing.T) {
	_, hs := newFakeAPI(t, fakeapi.Options{})
	a := newTestApp(t, testConfig(hs.URL))
	ctx := context.Background()

	err := a.Session.SaveSession(ctx, domain.TokenResponse{
		AccessToken:  "forged",
		RefreshToken: "forged",
		ExpiresAt:    domain.NewAPITime(time.Now().Add(-time.Hour)),
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if err := a.Auth.RefreshTokens(ctx); !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if a.Session.IsLoggedIn() || a.Session.RefreshToken() != nil || a.Session.ExpiresAt() != nil {
		t.Fatalf("expected cleared session, got %+v", a.Session.Snapshot())
	}
}

func TestProfileFallsBackWhenServerIsGone(t *testing.T) {
	_, hs := newFakeAPI(t, fakeapi.Options{})
	a := newTestApp(t, testConfig(hs.URL))
	ctx := context.Background()

	if err := a.Auth.Register(ctx, service.RegisterInput{Name: "Cy", Surname: "Ng", Email: "cy@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := a.Users.Profile(ctx); err != nil {
		t.Fatalf("profile: %v", err)
	}
	hs.Close()

	u, err := a.Users.Profile(ctx)
	if err != nil {
		t.Fatalf("expected cached profile, got %v", err)
	}
	if u.FullName() != "Cy Ng" {
		t.Fatalf("unexpected cached profile %+v", u)
	}
}

func TestHomeDeliveredOnLoop(t *testing.T) {
	srv, hs := newFakeAPI(t, fakeapi.Options{})
	if err := srv.Seed(context.Background(), "demo@example.com", "demo-pass", fakeapi.DemoCollections); err != nil {
		t.Fatalf("seed: %v", err)
	}
	a := newTestApp(t, testConfig(hs.URL))

	delivered := make(chan service.Home, 1)
	f := dispatch.Go(a.Loop, context.Background(), a.Feed.Home, func(h service.Home, err error) {
		if err != nil {
			t.Errorf("home: %v", err)
		}
		delivered <- h
	})
	if _, err := f.Await(context.Background()); err != nil {
		t.Fatalf("await: %v", err)
	}
	select {
	case h := <-delivered:
		if len(h.Trending) != len(fakeapi.DemoCollections) {
			t.Fatalf("unexpected trending %+v", h.Trending)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not delivered")
	}
}
