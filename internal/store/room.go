package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
)

// RoomForYear returns the user's recorded room for year, keyed by category.
// Categories with no record are absent.
func (s *Store) RoomForYear(ctx context.Context, userID string, year int) (map[plan.Category]decimal.Decimal, error) {
	rows, err := s.query(ctx, "SELECT category, amount FROM room WHERE user_id = ? AND year = ?", userID, year)
	if err != nil {
		return nil, fmt.Errorf("reading room for %d: %w", year, err)
	}
	defer func() { _ = rows.Close() }()

	room := make(map[plan.Category]decimal.Decimal)
	for rows.Next() {
		var c string
		var amt decimal.Decimal
		if err := rows.Scan(&c, &amt); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		room[plan.Category(c)] = amt
	}
	return room, rows.Err()
}

// SetRoom records the room for one category and year, replacing any
// previous value.
func (s *Store) SetRoom(ctx context.Context, r model.RoomRecord) error {
	if r.UserID == "" {
		return fmt.Errorf("room user: %w", plan.ErrInvalidInput)
	}
	if !r.Category.IsRoomLimited() {
		return fmt.Errorf("room category %q is not room-limited: %w", r.Category, plan.ErrInvalidInput)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("room amount %s: %w", r.Amount, plan.ErrInvalidInput)
	}

	_, err := s.exec(ctx, `INSERT INTO room (user_id, year, category, amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, year, category) DO UPDATE SET amount = excluded.amount`,
		r.UserID, r.Year, string(r.Category), r.Amount,
	)
	if err != nil {
		return fmt.Errorf("saving room: %w", err)
	}
	return nil
}

// ClearRoom deletes the room record for one category and year.
func (s *Store) ClearRoom(ctx context.Context, userID string, year int, c plan.Category) error {
	res, err := s.exec(ctx, "DELETE FROM room WHERE user_id = ? AND year = ? AND category = ?", userID, year, string(c))
	if err != nil {
		return fmt.Errorf("clearing room: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("room %s %d", c, year))
}
