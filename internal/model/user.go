package model

import (
	"time"
)

// Role is a user's permission level.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// User is a registered account. Ordered by username in listings.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:254;not null"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:150;not null"`
	FirstName    string    `json:"first_name" gorm:"size:150;not null"`
	LastName     string    `json:"last_name" gorm:"size:150;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role      `json:"-" gorm:"type:varchar(16);not null;default:'user'"`
	Avatar       string    `json:"avatar" gorm:"size:255"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// CanModerate reports whether the user may change content owned by others.
func (u *User) CanModerate() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleModerator)
}
