package models

import "time"

// Role is the authorization role stored on a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an account allowed to sign in to the catalog.
type User struct {
	ID       string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name     string  `json:"name" gorm:"type:varchar(255)"`
	Email    string  `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password *string `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, nil for OAuth-only accounts
	Role     Role    `json:"role" gorm:"type:varchar(16);not null;default:'USER'"`
	Image    *string `json:"image,omitempty" gorm:"type:varchar(1024)"`

	// SessionVersion is embedded in issued tokens. Bumping it revokes them.
	SessionVersion int `json:"-" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPassword reports whether the user can sign in with credentials.
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}
