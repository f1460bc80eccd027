package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
)

// ListDependents returns the user's dependents ordered by name.
func (s *Store) ListDependents(ctx context.Context, userID string) ([]model.Dependent, error) {
	rows, err := s.query(ctx, "SELECT id, user_id, name, birth_year FROM dependents WHERE user_id = ? ORDER BY name, id", userID)
	if err != nil {
		return nil, fmt.Errorf("listing dependents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Dependent
	for rows.Next() {
		var d model.Dependent
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.BirthYear); err != nil {
			return nil, fmt.Errorf("scanning dependent: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveDependent inserts or updates a dependent owned by d.UserID.
func (s *Store) SaveDependent(ctx context.Context, d *model.Dependent) error {
	if d.UserID == "" || d.Name == "" {
		return fmt.Errorf("dependent needs a user and a name: %w", plan.ErrInvalidInput)
	}
	if d.BirthYear < 0 {
		return fmt.Errorf("dependent birth year %d: %w", d.BirthYear, plan.ErrInvalidInput)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	res, err := s.exec(ctx, `INSERT INTO dependents (id, user_id, name, birth_year)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			birth_year = excluded.birth_year
		WHERE dependents.user_id = excluded.user_id`,
		d.ID, d.UserID, d.Name, d.BirthYear,
	)
	if err != nil {
		return fmt.Errorf("saving dependent: %w", err)
	}
	return requireAffected(res, "dependent "+d.ID)
}

// DeleteDependent removes one of the user's dependents.
func (s *Store) DeleteDependent(ctx context.Context, userID, id string) error {
	res, err := s.exec(ctx, "DELETE FROM dependents WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting dependent: %w", err)
	}
	return requireAffected(res, "dependent "+id)
}
