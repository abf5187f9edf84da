package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConfirmationCode is a one-shot secret issued at signup. Only the bcrypt hash is stored.
type ConfirmationCode struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	CodeHash  string     `db:"code_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
}

func (c *ConfirmationCode) Active(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}
