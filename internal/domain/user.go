package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultProfileID is used for a cached profile that never saw a server id.
	DefaultProfileID = 1

	PlaceholderName = "User"
)

type User struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Surname     string  `json:"surname"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	Description *string `json:"description,omitempty"`
	CreatedAt   APITime `json:"createdAt"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

type PublicUser struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

func (u PublicUser) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// PlaceholderUser is shown as the author when the real one cannot be loaded.
// The result depends only on id.
func PlaceholderUser(id int) PublicUser {
	return PublicUser{ID: id, Name: PlaceholderName, Surname: fmt.Sprintf("#%d", id)}
}

// LocalProfile is the on-device mirror of the signed-in user's profile. It is
// persisted as a single unit; Populated is false until the first write.
type LocalProfile struct {
	Populated   bool       `json:"populated"`
	ID          int        `json:"id,omitempty"`
	Name        string     `json:"name"`
	Surname     string     `json:"surname"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func LocalProfileFromUser(u User) LocalProfile {
	p := LocalProfile{
		Populated:   true,
		ID:          u.ID,
		Name:        u.Name,
		Surname:     u.Surname,
		Email:       u.Email,
		Phone:       cloneString(u.Phone),
		AvatarURL:   cloneString(u.AvatarURL),
		Description: cloneString(u.Description),
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt.Time
		p.CreatedAt = &created
	}
	return p
}

// User projects the cached fields back onto the remote shape.
func (p LocalProfile) User() User {
	id := p.ID
	if id == 0 {
		id = DefaultProfileID
	}
	u := User{
		ID:          id,
		Name:        p.Name,
		Surname:     p.Surname,
		Email:       p.Email,
		Phone:       cloneString(p.Phone),
		AvatarURL:   cloneString(p.AvatarURL),
		Description: cloneString(p.Description),
	}
	if p.CreatedAt != nil {
		u.CreatedAt = NewAPITime(*p.CreatedAt)
	}
	return u
}

// ProfileUpdate carries the editable profile fields; nil fields are left as is.
type ProfileUpdate struct {
	Name        *string `json:"name,omitempty"`
	Surname     *string `json:"surname,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Surname == nil && u.Email == nil &&
		u.Phone == nil && u.AvatarURL == nil && u.Description == nil
}

func (p LocalProfile) Apply(u ProfileUpdate) LocalProfile {
	out := p
	out.Populated = true
	if u.Name != nil {
		out.Name = *u.Name
	}
	if u.Surname != nil {
		out.Surname = *u.Surname
	}
	if u.Email != nil {
		out.Email = *u.Email
	}
	if u.Phone != nil {
		out.Phone = cloneString(u.Phone)
	}
	if u.AvatarURL != nil {
		out.AvatarURL = cloneString(u.AvatarURL)
	}
	if u.Description != nil {
		out.Description = cloneString(u.Description)
	}
	return out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
