package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/partygames/truthordare/internal/apiclient"
	"github.com/partygames/truthordare/internal/domain"
	"github.com/partygames/truthordare/internal/observability"
)

type AuthState int

const (
	StateLoggedOut AuthState = iota
	StateLoggingIn
	StateLoggedIn
	StateExpired
)

func (s AuthState) String() string {
	switch s {
	case StateLoggingIn:
		return "logging_in"
	case StateLoggedIn:
		return "logged_in"
	case StateExpired:
		return "expired"
	default:
		return "logged_out"
	}
}

type RegisterInput struct {
	Name     string
	Surname  string
	Email    string
	Password string
	Phone    *string
}

// AuthService owns every change to the session. It never refreshes on its
// own; callers decide when to call RefreshTokens or EnsureFreshToken.
type AuthService struct {
	api      Requester
	session  SessionStore
	profile  ProfileStore
	logger   *slog.Logger
	inFlight atomic.Int32
}

func NewAuthService(api Requester, session SessionStore, profile ProfileStore, logger *slog.Logger) *AuthService {
	return &AuthService{api: api, session: session, profile: profile, logger: logger}
}

// Login exchanges credentials for tokens. On failure the session is left as
// it was and the pipeline error is returned unchanged.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	tr, err := send[domain.TokenResponse](ctx, s.api, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/auth/login",
		Body:     domain.LoginRequest{Email: email, Password: password},
	})
	if err != nil {
		observability.RecordAuthLogin(ctx, "password", "failure")
		observability.Audit(ctx, s.logger, "auth.login", "failure", "error", err.Error())
		return err
	}
	if err := s.saveTokens(ctx, tr); err != nil {
		observability.RecordAuthLogin(ctx, "password", "failure")
		return err
	}
	s.cacheProfile(ctx, domain.LocalProfile{
		Name:  domain.PlaceholderName,
		Email: strings.TrimSpace(email),
	})
	observability.RecordAuthLogin(ctx, "password", "success")
	observability.Audit(ctx, s.logger, "auth.login", "success")
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	tr, err := send[domain.TokenResponse](ctx, s.api, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/auth/register",
		Body: domain.RegisterRequest{
			Name:     in.Name,
			Surname:  in.Surname,
			Email:    in.Email,
			Password: in.Password,
			Phone:    in.Phone,
		},
	})
	if err != nil {
		observability.RecordAuthLogin(ctx, "register", "failure")
		observability.Audit(ctx, s.logger, "auth.register", "failure", "error", err.Error())
		return err
	}
	if err := s.saveTokens(ctx, tr); err != nil {
		observability.RecordAuthLogin(ctx, "register", "failure")
		return err
	}
	s.cacheProfile(ctx, domain.LocalProfile{
		Name:    in.Name,
		Surname: in.Surname,
		Email:   in.Email,
		Phone:   in.Phone,
	})
	observability.RecordAuthLogin(ctx, "register", "success")
	observability.Audit(ctx, s.logger, "auth.register", "success")
	return nil
}

// RefreshTokens trades the stored refresh token for a new session. Any
// failure clears the whole session before the error is returned. Concurrent
// calls are not coalesced.
func (s *AuthService) RefreshTokens(ctx context.Context) error {
	refresh := s.session.RefreshToken()
	if refresh == nil {
		observability.RecordAuthRefresh(ctx, "missing")
		return apiclient.ErrUnauthorized
	}
	tr, err := send[domain.TokenResponse](ctx, s.api, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/auth/refresh",
		Body:     domain.RefreshRequest{RefreshToken: *refresh},
	})
	if err != nil {
		if clearErr := s.session.ClearSession(ctx); clearErr != nil {
			s.logger.Error("clear session after failed refresh", "error", clearErr)
		}
		observability.RecordAuthRefresh(ctx, "failure")
		observability.Audit(ctx, s.logger, "auth.refresh", "failure", "error", err.Error())
		return err
	}
	if err := s.saveTokens(ctx, tr); err != nil {
		observability.RecordAuthRefresh(ctx, "failure")
		return err
	}
	observability.RecordAuthRefresh(ctx, "success")
	observability.Audit(ctx, s.logger, "auth.refresh", "success")
	return nil
}

// EnsureFreshToken refreshes once when a session exists but has expired.
func (s *AuthService) EnsureFreshToken(ctx context.Context) error {
	if !s.session.IsLoggedIn() || !s.session.IsTokenExpired() {
		return nil
	}
	return s.RefreshTokens(ctx)
}

// Logout is local only: the session and the cached profile are dropped.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.ClearSession(ctx); err != nil {
		observability.RecordAuthLogout(ctx, "failure")
		return err
	}
	if err := s.profile.Clear(ctx); err != nil {
		s.logger.Warn("clear cached profile on logout", "error", err)
	}
	observability.RecordAuthLogout(ctx, "success")
	observability.Audit(ctx, s.logger, "auth.logout", "success")
	return nil
}

func (s *AuthService) State() AuthState {
	switch {
	case s.session.IsLoggedIn() && s.session.IsTokenExpired():
		return StateExpired
	case s.session.IsLoggedIn():
		return StateLoggedIn
	case s.inFlight.Load() > 0:
		return StateLoggingIn
	default:
		return StateLoggedOut
	}
}

func (s *AuthService) cacheProfile(ctx context.Context, p domain.LocalProfile) {
	if err := s.profile.Save(ctx, p); err != nil {
		s.logger.Warn("cache profile after sign in", "error", err)
	}
}

// saveTokens treats a success response without an access token as invalid.
func (s *AuthService) saveTokens(ctx context.Context, tr domain.TokenResponse) error {
	if tr.AccessToken == "" {
		return apiclient.ErrInvalidResponse
	}
	return s.session.SaveSession(ctx, tr)
}
