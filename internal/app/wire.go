//go:build wireinject

package app

import (
	"context"
	"io"

	"github.com/google/wire"

	"github.com/partygames/truthordare/internal/apiclient"
	"github.com/partygames/truthordare/internal/config"
	"github.com/partygames/truthordare/internal/observability"
	"github.com/partygames/truthordare/internal/profile"
	"github.com/partygames/truthordare/internal/service"
	"github.com/partygames/truthordare/internal/session"
)

var serviceSet = wire.NewSet(
	service.NewAuthService,
	service.NewCollectionService,
	service.NewUserService,
	service.NewFeedService,
	service.NewConnectivityService,
	wire.Bind(new(service.Requester), new(*apiclient.Client)),
	wire.Bind(new(service.SessionStore), new(*session.Store)),
	wire.Bind(new(service.ProfileStore), new(*profile.Cache)),
)

func Initialize(ctx context.Context, cfg *config.Config, out io.Writer) (*App, func(), error) {
	wire.Build(
		observability.InitLogs,
		observability.NewLogger,
		observability.InitRuntime,
		provideStorage,
		provideSessionStore,
		profile.Open,
		provideAPIClient,
		provideLoop,
		serviceSet,
		New,
	)
	return nil, nil, nil
}
