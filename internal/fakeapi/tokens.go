package fakeapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("subject %q: %w", c.Subject, err)
	}
	return uint(id), nil
}

// TokenIssuer signs and verifies the HS256 tokens handed to clients.
type TokenIssuer struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

func NewTokenIssuer(issuer, accessSecret, refreshSecret string) *TokenIssuer {
	return &TokenIssuer{
		issuer:        issuer,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}
}

func (m *TokenIssuer) SignAccessToken(userID uint, ttl time.Duration) (string, time.Time, error) {
	return m.sign(userID, tokenTypeAccess, ttl, m.accessSecret)
}

func (m *TokenIssuer) SignRefreshToken(userID uint, ttl time.Duration) (string, time.Time, error) {
	return m.sign(userID, tokenTypeRefresh, ttl, m.refreshSecret)
}

func (m *TokenIssuer) sign(userID uint, tokenType string, ttl time.Duration, secret []byte) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *TokenIssuer) ParseAccessToken(raw string) (*Claims, error) {
	return m.parse(raw, m.accessSecret, tokenTypeAccess)
}

func (m *TokenIssuer) ParseRefreshToken(raw string) (*Claims, error) {
	return m.parse(raw, m.refreshSecret, tokenTypeRefresh)
}

func (m *TokenIssuer) parse(raw string, secret []byte, tokenType string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing algorithm")
		}
		return secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("unexpected token type: %s", claims.TokenType)
	}
	return claims, nil
}
