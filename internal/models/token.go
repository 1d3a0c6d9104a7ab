package models

import "time"

// RefreshToken is the persisted record backing one refresh-token value.
// Records are never deleted; consumed ones are retained for audit.
type RefreshToken struct {
	ID        int64     `db:"id"`
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UsedAt    time.Time `db:"used_at"`
	Consumed  bool      `db:"consumed"`
}

// TokenPair is what a successful login or rotation hands back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
