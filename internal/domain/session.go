package domain

import (
	"time"

	"golang.org/x/oauth2"
)

// Session is the client's view of its credentials. A nil or empty
// AccessToken means logged out regardless of the other two fields.
type Session struct {
	AccessToken  *string    `json:"access_token,omitempty"`
	RefreshToken *string    `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (s Session) IsLoggedIn() bool {
	return s.AccessToken != nil && *s.AccessToken != ""
}

// IsExpired reports true when the expiry is unknown or already reached. It
// does not look at token presence.
func (s Session) IsExpired(now time.Time) bool {
	if s.ExpiresAt == nil {
		return true
	}
	return !now.Before(*s.ExpiresAt)
}

type TokenResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	ExpiresAt    APITime `json:"expiresAt"`
}

func (t TokenResponse) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt.Time,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string  `json:"name"`
	Surname  string  `json:"surname"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
