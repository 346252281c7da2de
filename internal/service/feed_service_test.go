package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/partygames/truthordare/internal/apiclient"
)

func newFeed(env *testEnv) *FeedService {
	collections := NewCollectionService(env.api)
	users := NewUserService(env.api, env.profile, env.logger)
	return NewFeedService(collections, users, env.session, env.logger)
}

func TestHomeForSignedInUser(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t, time.Now().Add(time.Hour))
	env.handle("GET /api/v1/collections/trending", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"items":[`+collectionJSON+`,`+collectionJSON+`]}`)
	})
	env.handle("GET /api/v1/user/collections", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"items":[`+collectionJSON+`]}`)
	})
	env.handle("GET /api/v1/user/profile", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, profileJSON)
	})

	home, err := newFeed(env).Home(context.Background())
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if len(home.Trending) != 2 || len(home.Mine) != 1 || home.Profile == nil || home.Profile.ID != 12 {
		t.Fatalf("unexpected home %+v", home)
	}
}

func TestHomeSignedOutSkipsPersonalParts(t *testing.T) {
	env := newTestEnv(t)
	env.handle("GET /api/v1/collections/trending", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"items":[]}`)
	})
	env.handle("GET /api/v1/user/", func(http.ResponseWriter, *http.Request) { t.Error("signed-out feed must not hit user endpoints") })

	home, err := newFeed(env).Home(context.Background())
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if home.Mine != nil || home.Profile != nil {
		t.Fatalf("unexpected personal data %+v", home)
	}
}

func TestHomePersonalFailuresDegrade(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t, time.Now().Add(time.Hour))
	env.handle("GET /api/v1/collections/trending", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"items":[]}`)
	})
	env.handle("GET /api/v1/user/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	home, err := newFeed(env).Home(context.Background())
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if home.Mine != nil || home.Profile != nil {
		t.Fatalf("expected empty personal parts, got %+v", home)
	}
}

func TestHomeTrendingFailureIsReturned(t *testing.T) {
	env := newTestEnv(t)
	env.handle("GET /api/v1/collections/trending", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if _, err := newFeed(env).Home(context.Background()); !errors.Is(err, apiclient.ServerError(500)) {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	env.handle("GET /api/v1/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	svc := NewConnectivityService(env.api)
	if err := svc.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	env.server.Close()
	if err := svc.Ping(context.Background()); apiclient.KindOf(err) != apiclient.KindNetworkFailure {
		t.Fatalf("expected network failure, got %v", err)
	}
}
