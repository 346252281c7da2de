package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/partygames/truthordare/internal/apiclient"
	"github.com/partygames/truthordare/internal/domain"
	"github.com/partygames/truthordare/internal/observability"
)

type UserService struct {
	api     Requester
	profile ProfileStore
	logger  *slog.Logger
}

func NewUserService(api Requester, profile ProfileStore, logger *slog.Logger) *UserService {
	return &UserService{api: api, profile: profile, logger: logger}
}

// Profile fetches the signed-in user's profile and mirrors it locally. When
// the fetch fails, the local copy is returned without an error.
func (s *UserService) Profile(ctx context.Context) (domain.User, error) {
	u, err := send[domain.User](ctx, s.api, apiclient.Request{
		Method:       http.MethodGet,
		Endpoint:     "/user/profile",
		RequiresAuth: true,
	})
	if err == nil {
		if saveErr := s.profile.Save(ctx, domain.LocalProfileFromUser(u)); saveErr != nil {
			s.logger.Warn("mirror profile locally", "error", saveErr)
		}
		return u, nil
	}
	// An unpopulated cache still yields the per-field defaults (id 1, empty
	// names) so the profile screen always has something to show.
	cached, ok := s.profile.Get()
	source := "profile"
	if !ok {
		source = "profile_defaults"
	}
	s.logger.Debug("serving cached profile", "kind", apiclient.KindOf(err).String(), "populated", ok)
	observability.RecordProfileFallback(ctx, source)
	return cached.User(), nil
}

// UpdateProfile sends u to the server and, on success, applies the same
// edit to the local copy.
func (s *UserService) UpdateProfile(ctx context.Context, u domain.ProfileUpdate) error {
	if _, err := send[domain.MessageResponse](ctx, s.api, apiclient.Request{
		Method:       http.MethodPut,
		Endpoint:     "/user/profile",
		Body:         u,
		RequiresAuth: true,
	}); err != nil {
		return err
	}
	if _, err := s.profile.Update(ctx, u); err != nil {
		s.logger.Warn("apply profile edit locally", "error", err)
	}
	return nil
}

// UpdateLocalProfile edits only the local copy. The server is not told.
func (s *UserService) UpdateLocalProfile(ctx context.Context, u domain.ProfileUpdate) (domain.LocalProfile, error) {
	return s.profile.Update(ctx, u)
}

func (s *UserService) CachedProfile() (domain.LocalProfile, bool) {
	return s.profile.Get()
}

// PublicUser never fails: when the lookup does, a placeholder carrying id
// is returned instead.
func (s *UserService) PublicUser(ctx context.Context, id int) (domain.PublicUser, error) {
	u, err := send[domain.PublicUser](ctx, s.api, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: fmt.Sprintf("/users/%d", id),
	})
	if err != nil {
		s.logger.Debug("public user placeholder", "user_id", id, "kind", apiclient.KindOf(err).String())
		observability.RecordProfileFallback(ctx, "public_user")
		return domain.PlaceholderUser(id), nil
	}
	return u, nil
}
