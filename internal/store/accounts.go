package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
)

const accountColumns = "id, user_id, name, category, institution, balance, updated_at"

// ListAccounts returns a user's accounts ordered by category then name.
func (s *Store) ListAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	rows, err := s.query(ctx, "SELECT "+accountColumns+" FROM accounts WHERE user_id = ? ORDER BY category, name", userID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAccount returns one of the user's accounts.
func (s *Store) GetAccount(ctx context.Context, userID, id string) (model.Account, error) {
	row := s.queryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ? AND user_id = ?", id, userID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("reading account %s: %w", id, err)
	}
	return a, nil
}

// SaveAccount inserts a new account or updates an existing one owned by the
// same user. A missing ID is generated; UpdatedAt is set to now.
func (s *Store) SaveAccount(ctx context.Context, a *model.Account) error {
	if err := validateAccount(a); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.UpdatedAt = s.now().UTC().Truncate(time.Second)

	res, err := s.exec(ctx, `INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			institution = excluded.institution,
			balance = excluded.balance,
			updated_at = excluded.updated_at
		WHERE accounts.user_id = excluded.user_id`,
		a.ID, a.UserID, a.Name, string(a.Category), a.Institution, a.Balance, formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving account: %w", err)
	}
	return requireAffected(res, "account "+a.ID)
}

// DeleteAccount removes one of the user's accounts.
func (s *Store) DeleteAccount(ctx context.Context, userID, id string) error {
	res, err := s.exec(ctx, "DELETE FROM accounts WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return requireAffected(res, "account "+id)
}

// TotalBalance sums the user's account balances.
func (s *Store) TotalBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	accounts, err := s.ListAccounts(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (model.Account, error) {
	var a model.Account
	var category, updated string
	if err := sc.Scan(&a.ID, &a.UserID, &a.Name, &category, &a.Institution, &a.Balance, &updated); err != nil {
		return model.Account{}, err
	}
	a.Category = plan.Category(category)
	a.UpdatedAt = parseTime(updated)
	return a, nil
}

func validateAccount(a *model.Account) error {
	if a.UserID == "" {
		return fmt.Errorf("account user: %w", plan.ErrInvalidInput)
	}
	if a.Name == "" {
		return fmt.Errorf("account name: %w", plan.ErrInvalidInput)
	}
	if !a.Category.Valid() {
		return fmt.Errorf("account category %q: %w", a.Category, plan.ErrInvalidInput)
	}
	if a.Balance.IsNegative() {
		return fmt.Errorf("account balance %s: %w", a.Balance, plan.ErrInvalidInput)
	}
	return nil
}
