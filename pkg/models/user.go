package models

import "time"

type User struct {
	ID            string    `json:"id"`
	Handle        string    `json:"handle"`
	AvatarURL     string    `json:"avatar_url"`
	About         string    `json:"about,omitempty"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// WalletSession is the sole bearer credential. Expired sessions are treated
// as invalid but stay in place; only an explicit logout deletes the row.
type WalletSession struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

func (s WalletSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
