package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/partygames/truthordare/internal/observability"
)

// Entry is one persisted key. The table is shared by the session store and
// the profile cache.
type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "device_entries" }

type GormKV struct{ db *gorm.DB }

func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &GormKV{db: db}, nil
}

func (s *GormKV) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordStorageOperation(ctx, "gorm", "get", "not_found")
			return "", false, nil
		}
		observability.RecordStorageOperation(ctx, "gorm", "get", "error")
		return "", false, err
	}
	observability.RecordStorageOperation(ctx, "gorm", "get", "success")
	return e.Value, true, nil
}

func (s *GormKV) Apply(ctx context.Context, b Batch) error {
	if b.empty() {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for k, v := range b.Set {
			e := Entry{Key: k, Value: v, UpdatedAt: now}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "entry_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&e).Error; err != nil {
				return err
			}
		}
		if len(b.Delete) > 0 {
			if err := tx.Where("entry_key IN ?", b.Delete).Delete(&Entry{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		observability.RecordStorageOperation(ctx, "gorm", "apply", "error")
		return err
	}
	observability.RecordStorageOperation(ctx, "gorm", "apply", "success")
	return nil
}

func (s *GormKV) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
