package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string         `gorm:"size:50;uniqueIndex;not null" json:"username"`
	FirstName    string         `gorm:"size:150;not null" json:"first_name"`
	LastName     string         `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"size:20;not null;default:'user'" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin reports whether the user may mutate resources they do not own.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Follow is a directed follower -> followed edge. Self-loops are rejected
// in the service layer; duplicates by the composite unique index.
type Follow struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follower_followed" json:"follower_id"`
	FollowedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follower_followed;index" json:"followed_id"`
}

func (Follow) TableName() string {
	return "follows"
}
