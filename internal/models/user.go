package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a staff account that can operate the circulation desk.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	RoleID       int64      `db:"role_id" json:"role_id"`
	JoinedAt     time.Time  `db:"joined_at" json:"joined_at"`
	RemovedAt    *time.Time `db:"removed_at" json:"removed_at,omitempty"` // Nullable; set when the account is suspended
}

// Suspended reports whether the account has been soft-removed.
func (u *User) Suspended() bool {
	return u.RemovedAt != nil
}

// Claims defines the structure of the JWT claims carried by both the
// access token and the signed refresh-token value.
type Claims struct {
	UserID int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	RoleID int64  `json:"role_id"`
	jwt.RegisteredClaims
}
