package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/roomwise/internal/model"
)

// RecordSnapshot stores the user's current total balance as of at.
func (s *Store) RecordSnapshot(ctx context.Context, userID string, at time.Time) (model.Snapshot, error) {
	total, err := s.TotalBalance(ctx, userID)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap := model.Snapshot{
		ID:      uuid.NewString(),
		UserID:  userID,
		TakenAt: at.UTC().Truncate(time.Second),
		Total:   total,
	}
	_, err = s.exec(ctx, "INSERT INTO snapshots (id, user_id, taken_at, total) VALUES (?, ?, ?, ?)",
		snap.ID, snap.UserID, formatTime(snap.TakenAt), snap.Total)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("recording snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns the user's snapshots taken at or after since,
// oldest first.
func (s *Store) ListSnapshots(ctx context.Context, userID string, since time.Time) ([]model.Snapshot, error) {
	rows, err := s.query(ctx, `SELECT id, user_id, taken_at, total FROM snapshots
		WHERE user_id = ? AND taken_at >= ? ORDER BY taken_at, id`, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		var taken string
		if err := rows.Scan(&snap.ID, &snap.UserID, &taken, &snap.Total); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snap.TakenAt = parseTime(taken)
		out = append(out, snap)
	}
	return out, rows.Err()
}
