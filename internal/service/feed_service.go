package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/partygames/truthordare/internal/domain"
)

type Home struct {
	Trending []domain.Collection
	Mine     []domain.Collection
	Profile  *domain.User
}

// FeedService assembles the home screen from several independent calls.
type FeedService struct {
	collections *CollectionService
	users       *UserService
	session     SessionStore
	logger      *slog.Logger
	limit       int
}

func NewFeedService(collections *CollectionService, users *UserService, session SessionStore, logger *slog.Logger) *FeedService {
	return &FeedService{collections: collections, users: users, session: session, logger: logger, limit: DefaultTrendingLimit}
}

// Home loads trending collections, and for a signed-in user their own
// collections and profile, concurrently. Only a trending failure is
// returned; the signed-in parts degrade to empty.
func (s *FeedService) Home(ctx context.Context) (Home, error) {
	var home Home
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := s.collections.Trending(gctx, s.limit)
		if err != nil {
			return err
		}
		home.Trending = items
		return nil
	})

	if s.session.IsLoggedIn() {
		g.Go(func() error {
			items, err := s.collections.Mine(gctx)
			if err != nil {
				s.logger.Debug("home: own collections unavailable", "error", err)
				return nil
			}
			home.Mine = items
			return nil
		})
		g.Go(func() error {
			u, err := s.users.Profile(gctx)
			if err != nil {
				s.logger.Debug("home: profile unavailable", "error", err)
				return nil
			}
			home.Profile = &u
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Home{}, err
	}
	return home, nil
}
