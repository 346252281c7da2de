package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/partygames/truthordare/internal/domain"
	"github.com/partygames/truthordare/internal/storage"
)

const (
	KeyAccessToken  = "session.access_token"
	KeyRefreshToken = "session.refresh_token"
	KeyExpiresAt    = "session.expires_at"
)

var ErrNoAccessToken = errors.New("no access token")

type Option func(*Store)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store holds the current session in memory and persists every change to
// device storage. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	cur    domain.Session
	kv     storage.KV
	logger *slog.Logger
	now    func() time.Time
}

func NewStore(kv storage.KV, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open builds a Store and loads whatever session was persisted previously.
func Open(ctx context.Context, kv storage.KV, logger *slog.Logger, opts ...Option) (*Store, error) {
	s := NewStore(kv, logger, opts...)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory session with the persisted one. An unreadable
// expiry is dropped so the session reads as expired.
func (s *Store) Load(ctx context.Context) error {
	var loaded domain.Session
	access, ok, err := s.kv.Get(ctx, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("load access token: %w", err)
	}
	if ok {
		loaded.AccessToken = &access
	}
	refresh, ok, err := s.kv.Get(ctx, KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("load refresh token: %w", err)
	}
	if ok {
		loaded.RefreshToken = &refresh
	}
	raw, ok, err := s.kv.Get(ctx, KeyExpiresAt)
	if err != nil {
		return fmt.Errorf("load expiry: %w", err)
	}
	if ok {
		exp, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			s.logger.Warn("ignoring unreadable session expiry", "value", raw, "error", err)
		} else {
			loaded.ExpiresAt = &exp
		}
	}

	s.mu.Lock()
	s.cur = loaded
	s.mu.Unlock()
	return nil
}

func (s *Store) AccessToken() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneString(s.cur.AccessToken)
}

func (s *Store) RefreshToken() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneString(s.cur.RefreshToken)
}

func (s *Store) ExpiresAt() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTime(s.cur.ExpiresAt)
}

// SetAccessToken stores v, or removes the persisted entry when v is nil.
func (s *Store) SetAccessToken(ctx context.Context, v *string) error {
	return s.setString(ctx, KeyAccessToken, v, func(cur *domain.Session, v *string) { cur.AccessToken = v })
}

func (s *Store) SetRefreshToken(ctx context.Context, v *string) error {
	return s.setString(ctx, KeyRefreshToken, v, func(cur *domain.Session, v *string) { cur.RefreshToken = v })
}

func (s *Store) SetExpiresAt(ctx context.Context, v *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b storage.Batch
	if v == nil {
		b.Delete = []string{KeyExpiresAt}
	} else {
		b.Set = map[string]string{KeyExpiresAt: formatExpiry(*v)}
	}
	if err := s.apply(ctx, "set "+KeyExpiresAt, b); err != nil {
		return err
	}
	s.cur.ExpiresAt = cloneTime(v)
	return nil
}

func (s *Store) setString(ctx context.Context, key string, v *string, assign func(*domain.Session, *string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b storage.Batch
	if v == nil {
		b.Delete = []string{key}
	} else {
		b.Set = map[string]string{key: *v}
	}
	if err := s.apply(ctx, "set "+key, b); err != nil {
		return err
	}
	assign(&s.cur, cloneString(v))
	return nil
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.IsLoggedIn()
}

// IsTokenExpired is true when no expiry is known or it has been reached.
func (s *Store) IsTokenExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.IsExpired(s.now())
}

// SaveSession stores all three fields from a token response in one write. A
// response without an access token is rejected and leaves the session as is.
func (s *Store) SaveSession(ctx context.Context, tr domain.TokenResponse) error {
	if tr.AccessToken == "" {
		return fmt.Errorf("session save: %w", ErrNoAccessToken)
	}
	access := tr.AccessToken
	refresh := tr.RefreshToken
	exp := tr.ExpiresAt.Time

	s.mu.Lock()
	defer s.mu.Unlock()
	b := storage.Batch{Set: map[string]string{
		KeyAccessToken:  access,
		KeyRefreshToken: refresh,
		KeyExpiresAt:    formatExpiry(exp),
	}}
	if err := s.apply(ctx, "save", b); err != nil {
		return err
	}
	s.cur = domain.Session{AccessToken: &access, RefreshToken: &refresh, ExpiresAt: &exp}
	return nil
}

// ClearSession removes all three fields. Clearing an empty session is a no-op.
func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := storage.Batch{Delete: []string{KeyAccessToken, KeyRefreshToken, KeyExpiresAt}}
	if err := s.apply(ctx, "clear", b); err != nil {
		return err
	}
	s.cur = domain.Session{}
	return nil
}

func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{
		AccessToken:  cloneString(s.cur.AccessToken),
		RefreshToken: cloneString(s.cur.RefreshToken),
		ExpiresAt:    cloneTime(s.cur.ExpiresAt),
	}
}

// Token returns the stored access token whether or not it has expired.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur.AccessToken == nil || *s.cur.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	tok := &oauth2.Token{AccessToken: *s.cur.AccessToken, TokenType: "Bearer"}
	if s.cur.RefreshToken != nil {
		tok.RefreshToken = *s.cur.RefreshToken
	}
	if s.cur.ExpiresAt != nil {
		tok.Expiry = *s.cur.ExpiresAt
	}
	return tok, nil
}

var _ oauth2.TokenSource = (*Store)(nil)

// apply must be called with mu held so memory and storage change together.
func (s *Store) apply(ctx context.Context, op string, b storage.Batch) error {
	if err := s.kv.Apply(ctx, b); err != nil {
		s.logger.Error("session storage write failed", "op", op, "error", err)
		return fmt.Errorf("session %s: %w", op, err)
	}
	return nil
}

func formatExpiry(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
