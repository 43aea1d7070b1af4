// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Relation names one of the three post sets tracked on a user.
type Relation string

const (
	RelationCreated  Relation = "created"
	RelationOffered  Relation = "offered"
	RelationReceived Relation = "received"
)

// Valid reports whether r is one of the known relations.
func (r Relation) Valid() bool {
	switch r {
	case RelationCreated, RelationOffered, RelationReceived:
		return true
	}
	return false
}

// Majors accepted on a user profile.
const (
	MajorFrontend = "frontend"
	MajorBackend  = "backend"
	MajorDesigner = "designer"
	MajorOther    = "other"
)

// ValidMajor reports whether m is an accepted skill/major tag.
func ValidMajor(m string) bool {
	switch m {
	case MajorFrontend, MajorBackend, MajorDesigner, MajorOther:
		return true
	}
	return false
}

// User represents a marketplace member. It is created lazily the first time an
// identity-provider subject signs in.
type User struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	ExternalID  string         `gorm:"uniqueIndex;not null;size:128" json:"external_id"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string         `json:"display_name"`
	AvatarURL   string         `json:"avatar_url"`
	Claims      map[string]any `gorm:"type:jsonb;serializer:json" json:"claims"`
	Address     string         `json:"address"`
	Phone       string         `json:"phone"`
	Majors      []string       `gorm:"type:jsonb;serializer:json" json:"majors"`
	// Relationship sets are stored in user_post_links and loaded on read.
	PostsCreated  []string  `gorm:"-" json:"posts_created"`
	PostsOffered  []string  `gorm:"-" json:"posts_offered"`
	PostsReceived []string  `gorm:"-" json:"posts_received"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh id when none was set.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Claims == nil {
		u.Claims = map[string]any{"customRole": "user"}
	}
	if u.Majors == nil {
		u.Majors = []string{}
	}
	return nil
}

// Summary returns the presentation-safe subset of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Address:     u.Address,
		Phone:       u.Phone,
	}
}

// UserSummary is the projection of a user embedded in post and offer views.
// It never carries claims.
type UserSummary struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

// UserPostLink is one membership of a post in a user's relationship set.
type UserPostLink struct {
	UserID    string    `gorm:"primaryKey;size:36"`
	PostID    string    `gorm:"primaryKey;size:36;index"`
	Relation  Relation  `gorm:"primaryKey;size:16"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for UserPostLink.
func (UserPostLink) TableName() string {
	return "user_post_links"
}
