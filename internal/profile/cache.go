package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/partygames/truthordare/internal/domain"
	"github.com/partygames/truthordare/internal/storage"
)

const Key = "profile.local"

// Cache is the on-device copy of the signed-in user's profile. The whole
// record is written under one key, so a reader never sees half an update.
type Cache struct {
	mu     sync.RWMutex
	cur    domain.LocalProfile
	kv     storage.KV
	logger *slog.Logger
	now    func() time.Time
}

func NewCache(kv storage.KV, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{kv: kv, logger: logger, now: time.Now}
}

func Open(ctx context.Context, kv storage.KV, logger *slog.Logger) (*Cache, error) {
	c := NewCache(kv, logger)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the persisted profile. A record that fails to decode is
// discarded and the cache starts empty.
func (c *Cache) Load(ctx context.Context) error {
	raw, ok, err := c.kv.Get(ctx, Key)
	if err != nil {
		return fmt.Errorf("load profile cache: %w", err)
	}
	var p domain.LocalProfile
	if ok {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			c.logger.Warn("discarding unreadable profile cache", "error", err)
			p = domain.LocalProfile{}
		}
	}
	c.mu.Lock()
	c.cur = p
	c.mu.Unlock()
	return nil
}

// Get returns the cached profile and whether one has ever been stored.
func (c *Cache) Get() (domain.LocalProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur, c.cur.Populated
}

func (c *Cache) Save(ctx context.Context, p domain.LocalProfile) error {
	p.Populated = true
	p.UpdatedAt = c.now().UTC()
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := storage.Set(ctx, c.kv, Key, string(payload)); err != nil {
		c.logger.Error("profile cache write failed", "error", err)
		return fmt.Errorf("save profile cache: %w", err)
	}
	c.cur = p
	return nil
}

// Update applies u to the current record and saves the result.
func (c *Cache) Update(ctx context.Context, u domain.ProfileUpdate) (domain.LocalProfile, error) {
	cur, _ := c.Get()
	next := cur.Apply(u)
	if err := c.Save(ctx, next); err != nil {
		return cur, err
	}
	saved, _ := c.Get()
	return saved, nil
}

func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := storage.Delete(ctx, c.kv, Key); err != nil {
		c.logger.Error("profile cache clear failed", "error", err)
		return fmt.Errorf("clear profile cache: %w", err)
	}
	c.cur = domain.LocalProfile{}
	return nil
}
