package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/partygames/truthordare/internal/apiclient"
	"github.com/partygames/truthordare/internal/config"
	"github.com/partygames/truthordare/internal/dispatch"
	"github.com/partygames/truthordare/internal/observability"
	"github.com/partygames/truthordare/internal/profile"
	"github.com/partygames/truthordare/internal/service"
	"github.com/partygames/truthordare/internal/session"
)

// App holds the single instance of every client component. It is built
// once per process by Initialize and passed to whoever needs it.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Observability *observability.Runtime

	Session *session.Store
	Profile *profile.Cache
	API     *apiclient.Client
	Loop    *dispatch.Loop

	Auth         *service.AuthService
	Collections  *service.CollectionService
	Users        *service.UserService
	Feed         *service.FeedService
	Connectivity *service.ConnectivityService
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	runtime *observability.Runtime,
	store *session.Store,
	cache *profile.Cache,
	api *apiclient.Client,
	loop *dispatch.Loop,
	auth *service.AuthService,
	collections *service.CollectionService,
	users *service.UserService,
	feed *service.FeedService,
	connectivity *service.ConnectivityService,
) *App {
	return &App{
		Config:        cfg,
		Logger:        logger,
		Observability: runtime,
		Session:       store,
		Profile:       cache,
		API:           api,
		Loop:          loop,
		Auth:          auth,
		Collections:   collections,
		Users:         users,
		Feed:          feed,
		Connectivity:  connectivity,
	}
}

// Shutdown flushes metrics and traces while the caller still has a deadline
// to spend. Everything else, including OTLP logs, is released by the cleanup
// func returned from Initialize.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	if err := a.Observability.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
