// Package model defines the records roomwise persists per user.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/plan"
)

// Account is a manually tracked investment account.
type Account struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Category    plan.Category   `json:"category"`
	Institution string          `json:"institution,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RoomRecord is the contribution room a user has for one category in one
// calendar year.
type RoomRecord struct {
	UserID   string          `json:"user_id"`
	Year     int             `json:"year"`
	Category plan.Category   `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Snapshot is a point-in-time total of a user's balances.
type Snapshot struct {
	ID      string          `json:"id"`
	UserID  string          `json:"user_id"`
	TakenAt time.Time       `json:"taken_at"`
	Total   decimal.Decimal `json:"total"`
}
