package models

import "time"

// PlatformCredential holds the publisher OAuth tokens, encrypted at rest.
type PlatformCredential struct {
	ID             int64     `db:"id" json:"id"`
	AccountID      string    `db:"account_id" json:"account_id"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
