package app

import (
	"context"
	"log/slog"

	"github.com/partygames/truthordare/internal/apiclient"
	"github.com/partygames/truthordare/internal/config"
	"github.com/partygames/truthordare/internal/dispatch"
	"github.com/partygames/truthordare/internal/session"
	"github.com/partygames/truthordare/internal/storage"
)

func provideStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.KV, func(), error) {
	kv, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.StorageDriver,
		DSN:         cfg.StorageDSN,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := kv.Close(); err != nil {
			logger.Warn("close device storage", "error", err)
		}
	}
	return kv, cleanup, nil
}

func provideSessionStore(ctx context.Context, kv storage.KV, logger *slog.Logger) (*session.Store, error) {
	return session.Open(ctx, kv, logger)
}

func provideAPIClient(cfg *config.Config, store *session.Store, logger *slog.Logger) (*apiclient.Client, error) {
	return apiclient.New(apiclient.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	}, store, logger)
}

func provideLoop(ctx context.Context) (*dispatch.Loop, func()) {
	loop := dispatch.NewLoop(64)
	loop.Start(ctx)
	return loop, loop.Stop
}
