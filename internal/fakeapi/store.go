package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/partygames/truthordare/internal/domain"
	"github.com/partygames/truthordare/internal/observability"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrEmailTaken    = errors.New("email already registered")
	ErrSessionReused = errors.New("refresh token already used")
)

// OpenDB opens the server database. An empty sqlite dsn gives a private
// in-memory database.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		if dsn == "" {
			dsn = fmt.Sprintf("file:fakeapi-%d?mode=memory&cache=shared", time.Now().UnixNano())
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		if dsn == "" {
			return nil, errors.New("postgres requires a DSN")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&userRecord{}, &collectionRecord{}, &actionRecord{}, &refreshSession{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func record(ctx context.Context, op string, err error) error {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	observability.RecordStorageOperation(ctx, "fakeapi", op, outcome)
	return err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Store) CreateUser(ctx context.Context, u *userRecord) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&userRecord{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return record(ctx, "user_create", err)
	}
	if count > 0 {
		return record(ctx, "user_create", ErrEmailTaken)
	}
	return record(ctx, "user_create", s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*userRecord, error) {
	var u userRecord
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, record(ctx, "user_by_email", notFound(err))
	}
	return &u, record(ctx, "user_by_email", nil)
}

func (s *Store) User(ctx context.Context, id uint) (*userRecord, error) {
	var u userRecord
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, record(ctx, "user_get", notFound(err))
	}
	return &u, record(ctx, "user_get", nil)
}

func (s *Store) UpdateUser(ctx context.Context, id uint, upd domain.ProfileUpdate) error {
	fields := map[string]any{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Surname != nil {
		fields["surname"] = *upd.Surname
	}
	if upd.Email != nil {
		fields["email"] = *upd.Email
	}
	if upd.Phone != nil {
		fields["phone"] = *upd.Phone
	}
	if upd.AvatarURL != nil {
		fields["avatar_url"] = *upd.AvatarURL
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return record(ctx, "user_update", res.Error)
	}
	if res.RowsAffected == 0 {
		return record(ctx, "user_update", ErrNotFound)
	}
	return record(ctx, "user_update", nil)
}

func (s *Store) Trending(ctx context.Context, limit int) ([]collectionRecord, error) {
	var out []collectionRecord
	err := s.db.WithContext(ctx).Order("play_count DESC").Order("id ASC").Limit(limit).Find(&out).Error
	return out, record(ctx, "collection_trending", err)
}

func (s *Store) Page(ctx context.Context, page, size int) ([]collectionRecord, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&collectionRecord{}).Count(&total).Error; err != nil {
		return nil, 0, record(ctx, "collection_page", err)
	}
	var out []collectionRecord
	err := s.db.WithContext(ctx).Order("id ASC").Offset((page - 1) * size).Limit(size).Find(&out).Error
	return out, total, record(ctx, "collection_page", err)
}

func (s *Store) Collection(ctx context.Context, id uint) (*collectionRecord, error) {
	var c collectionRecord
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, record(ctx, "collection_get", notFound(err))
	}
	return &c, record(ctx, "collection_get", nil)
}

func (s *Store) CollectionsByUser(ctx context.Context, userID uint) ([]collectionRecord, error) {
	var out []collectionRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&out).Error
	return out, record(ctx, "collection_by_user", err)
}

func (s *Store) CreateCollection(ctx context.Context, c *collectionRecord) error {
	return record(ctx, "collection_create", s.db.WithContext(ctx).Create(c).Error)
}

// UpdateCollection changes an owned collection. Other users get ErrForbidden.
func (s *Store) UpdateCollection(ctx context.Context, id, owner uint, in domain.CollectionInput) error {
	c, err := s.ownedCollection(ctx, id, owner)
	if err != nil {
		return err
	}
	c.Name = in.Name
	c.Description = in.Description
	c.ImageURL = in.ImageURL
	return record(ctx, "collection_update", s.db.WithContext(ctx).Save(c).Error)
}

func (s *Store) DeleteCollection(ctx context.Context, id, owner uint) error {
	if _, err := s.ownedCollection(ctx, id, owner); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&actionRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&collectionRecord{}, id).Error
	})
	return record(ctx, "collection_delete", err)
}

func (s *Store) ownedCollection(ctx context.Context, id, owner uint) (*collectionRecord, error) {
	c, err := s.Collection(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != owner {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *Store) Actions(ctx context.Context, collectionID uint) ([]actionRecord, error) {
	if _, err := s.Collection(ctx, collectionID); err != nil {
		return nil, err
	}
	var out []actionRecord
	err := s.db.WithContext(ctx).Where("collection_id = ?", collectionID).Order("position ASC").Order("id ASC").Find(&out).Error
	return out, record(ctx, "action_list", err)
}

func (s *Store) AddAction(ctx context.Context, collectionID, owner uint, a *actionRecord) error {
	if _, err := s.ownedCollection(ctx, collectionID, owner); err != nil {
		return err
	}
	a.CollectionID = collectionID
	return record(ctx, "action_create", s.db.WithContext(ctx).Create(a).Error)
}

func (s *Store) DeleteAction(ctx context.Context, actionID, owner uint) error {
	var a actionRecord
	if err := s.db.WithContext(ctx).First(&a, actionID).Error; err != nil {
		return record(ctx, "action_delete", notFound(err))
	}
	if _, err := s.ownedCollection(ctx, a.CollectionID, owner); err != nil {
		return err
	}
	return record(ctx, "action_delete", s.db.WithContext(ctx).Delete(&actionRecord{}, actionID).Error)
}

func (s *Store) CreateRefreshSession(ctx context.Context, rs *refreshSession) error {
	return record(ctx, "refresh_create", s.db.WithContext(ctx).Create(rs).Error)
}

// ConsumeRefreshSession marks the session for tokenID as used. A second
// call for the same token fails with ErrSessionReused.
func (s *Store) ConsumeRefreshSession(ctx context.Context, tokenID string, userID uint, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&refreshSession{}).
		Where("token_id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", tokenID, userID, now).
		Update("revoked_at", now)
	if res.Error != nil {
		return record(ctx, "refresh_consume", res.Error)
	}
	if res.RowsAffected == 0 {
		return record(ctx, "refresh_consume", ErrSessionReused)
	}
	return record(ctx, "refresh_consume", nil)
}
