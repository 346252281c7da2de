package fakeapi

import (
	"time"

	"github.com/partygames/truthordare/internal/domain"
)

type userRecord struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Surname      string `gorm:"size:100"`
	Email        string `gorm:"size:191;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Phone        *string
	AvatarURL    *string
	Description  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

func (u userRecord) toDomain() domain.User {
	return domain.User{
		ID:          int(u.ID),
		Name:        u.Name,
		Surname:     u.Surname,
		Email:       u.Email,
		Phone:       u.Phone,
		AvatarURL:   u.AvatarURL,
		Description: u.Description,
		CreatedAt:   domain.NewAPITime(u.CreatedAt),
	}
}

func (u userRecord) toPublic() domain.PublicUser {
	return domain.PublicUser{ID: int(u.ID), Name: u.Name, Surname: u.Surname}
}

type collectionRecord struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	ImageURL    *string
	UserID      uint `gorm:"index;not null"`
	PlayCount   int  `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (collectionRecord) TableName() string { return "collections" }

func (c collectionRecord) toDomain() domain.Collection {
	return domain.Collection{
		ID:          int(c.ID),
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		UserID:      int(c.UserID),
		PlayCount:   c.PlayCount,
		CreatedAt:   domain.NewAPITime(c.CreatedAt),
	}
}

type actionRecord struct {
	ID           uint   `gorm:"primaryKey"`
	CollectionID uint   `gorm:"index;not null"`
	Text         string `gorm:"type:text;not null"`
	Type         string `gorm:"size:16;not null"`
	Position     int    `gorm:"column:position;not null"`
	CreatedAt    time.Time
}

func (actionRecord) TableName() string { return "actions" }

func (a actionRecord) toDomain() domain.Action {
	return domain.Action{ID: int(a.ID), Text: a.Text, Type: domain.ActionType(a.Type), Order: a.Position}
}

// refreshSession tracks issued refresh tokens by jti so each one is
// accepted once.
type refreshSession struct {
	TokenID   string `gorm:"primaryKey;size:64"`
	UserID    uint   `gorm:"index;not null"`
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (refreshSession) TableName() string { return "refresh_sessions" }
