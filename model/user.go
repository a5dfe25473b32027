package model

import "time"

// Roles understood by the authorization layer.
const (
	RoleAdmin   = "admin"
	RoleEditor  = "editor"
	RoleStudent = "student"
)

// User is an account that can sign in. Back-office staff carry the admin or
// editor role.
type User struct {
	Base
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FullName     string     `gorm:"type:varchar(255)" json:"full_name"`
	Role         string     `gorm:"type:varchar(20);default:'student'" json:"role"`
	TokenVersion int        `gorm:"default:0" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// IsStaff reports whether the user may use the back office.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleEditor
}
