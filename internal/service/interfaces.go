package service

import (
	"context"

	"github.com/partygames/truthordare/internal/apiclient"
	"github.com/partygames/truthordare/internal/domain"
)

// Requester is the part of the request pipeline the services depend on.
type Requester interface {
	Do(ctx context.Context, r apiclient.Request, out any) error
}

type SessionStore interface {
	RefreshToken() *string
	IsLoggedIn() bool
	IsTokenExpired() bool
	SaveSession(ctx context.Context, tr domain.TokenResponse) error
	ClearSession(ctx context.Context) error
}

type ProfileStore interface {
	Get() (domain.LocalProfile, bool)
	Save(ctx context.Context, p domain.LocalProfile) error
	Update(ctx context.Context, u domain.ProfileUpdate) (domain.LocalProfile, error)
	Clear(ctx context.Context) error
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, in RegisterInput) error
	RefreshTokens(ctx context.Context) error
	Logout(ctx context.Context) error
	State() AuthState
}

type CollectionServiceInterface interface {
	Trending(ctx context.Context, limit int) ([]domain.Collection, error)
	List(ctx context.Context, p PageRequest) (domain.CollectionPage, error)
	Get(ctx context.Context, id int) (domain.Collection, error)
	Actions(ctx context.Context, id int) ([]domain.Action, error)
	Mine(ctx context.Context) ([]domain.Collection, error)
}

type UserServiceInterface interface {
	Profile(ctx context.Context) (domain.User, error)
	UpdateProfile(ctx context.Context, u domain.ProfileUpdate) error
	PublicUser(ctx context.Context, id int) (domain.PublicUser, error)
}

func send[T any](ctx context.Context, api Requester, r apiclient.Request) (T, error) {
	var out T
	if err := api.Do(ctx, r, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
