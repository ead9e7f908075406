package domain

import "time"

type SharedLocation struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	RecipientEmail string    `json:"recipient_email"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func (s *SharedLocation) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
