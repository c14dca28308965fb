package domain

import "time"

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired indica si la sesion ya vencio en el instante dado.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
