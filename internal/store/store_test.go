package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "nested", "roomwise.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatal("Open(mysql) succeeded, want error")
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{postgres: true}
	got := pg.q("SELECT a FROM t WHERE x = ? AND y = ?")
	if want := "SELECT a FROM t WHERE x = $1 AND y = $2"; got != want {
		t.Errorf("q = %q, want %q", got, want)
	}
	lite := &Store{}
	if got := lite.q("x = ?"); got != "x = ?" {
		t.Errorf("sqlite q = %q", got)
	}
}

func TestAccounts_CRUD(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	a := &model.Account{UserID: "alice", Name: "Brokerage TFSA", Category: plan.TFSA, Balance: decimal.RequireFromString("1500.25")}
	if err := s.SaveAccount(ctx, a); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	if a.ID == "" {
		t.Fatal("SaveAccount did not assign an id")
	}

	got, err := s.GetAccount(ctx, "alice", a.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Name != a.Name || !got.Balance.Equal(a.Balance) || got.Category != plan.TFSA {
		t.Errorf("GetAccount = %+v, want %+v", got, *a)
	}
	if !got.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, fixed)
	}

	a.Balance = decimal.NewFromInt(2000)
	if err := s.SaveAccount(ctx, a); err != nil {
		t.Fatalf("SaveAccount update: %v", err)
	}
	b := &model.Account{UserID: "alice", Name: "Pension", Category: plan.RRSP, Balance: decimal.NewFromInt(500)}
	if err := s.SaveAccount(ctx, b); err != nil {
		t.Fatalf("SaveAccount second: %v", err)
	}

	list, err := s.ListAccounts(ctx, "alice")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListAccounts len = %d, want 2", len(list))
	}
	total, err := s.TotalBalance(ctx, "alice")
	if err != nil {
		t.Fatalf("TotalBalance: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("TotalBalance = %s, want 2500", total)
	}

	if err := s.DeleteAccount(ctx, "alice", b.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, err := s.GetAccount(ctx, "alice", b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAccount after delete err = %v, want ErrNotFound", err)
	}
}

func TestAccounts_OwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	a := &model.Account{UserID: "alice", Name: "TFSA", Category: plan.TFSA, Balance: decimal.NewFromInt(100)}
	if err := s.SaveAccount(ctx, a); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	if _, err := s.GetAccount(ctx, "bob", a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob GetAccount err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteAccount(ctx, "bob", a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob DeleteAccount err = %v, want ErrNotFound", err)
	}
	hijack := &model.Account{ID: a.ID, UserID: "bob", Name: "mine now", Category: plan.TFSA, Balance: decimal.Zero}
	if err := s.SaveAccount(ctx, hijack); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob SaveAccount err = %v, want ErrNotFound", err)
	}

	got, err := s.GetAccount(ctx, "alice", a.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Name != "TFSA" {
		t.Errorf("account renamed to %q by another user", got.Name)
	}
}

func TestAccounts_Validation(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	bad := []*model.Account{
		{UserID: "", Name: "x", Category: plan.TFSA},
		{UserID: "u", Name: "", Category: plan.TFSA},
		{UserID: "u", Name: "x", Category: "lira"},
		{UserID: "u", Name: "x", Category: plan.TFSA, Balance: decimal.NewFromInt(-1)},
	}
	for _, a := range bad {
		if err := s.SaveAccount(ctx, a); !errors.Is(err, plan.ErrInvalidInput) {
			t.Errorf("SaveAccount(%+v) err = %v, want ErrInvalidInput", a, err)
		}
	}
}

func TestRoom(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	for _, r := range []model.RoomRecord{
		{UserID: "alice", Year: 2026, Category: plan.TFSA, Amount: decimal.NewFromInt(7000)},
		{UserID: "alice", Year: 2026, Category: plan.RRSP, Amount: decimal.NewFromInt(18000)},
		{UserID: "alice", Year: 2025, Category: plan.TFSA, Amount: decimal.NewFromInt(1)},
		{UserID: "alice", Year: 2026, Category: plan.TFSA, Amount: decimal.NewFromInt(6500)},
	} {
		if err := s.SetRoom(ctx, r); err != nil {
			t.Fatalf("SetRoom(%+v): %v", r, err)
		}
	}

	room, err := s.RoomForYear(ctx, "alice", 2026)
	if err != nil {
		t.Fatalf("RoomForYear: %v", err)
	}
	if len(room) != 2 {
		t.Fatalf("room entries = %d, want 2", len(room))
	}
	if !room[plan.TFSA].Equal(decimal.NewFromInt(6500)) {
		t.Errorf("TFSA room = %s, want 6500", room[plan.TFSA])
	}

	if err := s.ClearRoom(ctx, "alice", 2026, plan.RRSP); err != nil {
		t.Fatalf("ClearRoom: %v", err)
	}
	if err := s.ClearRoom(ctx, "alice", 2026, plan.RRSP); !errors.Is(err, ErrNotFound) {
		t.Errorf("second ClearRoom err = %v, want ErrNotFound", err)
	}
	other, err := s.RoomForYear(ctx, "bob", 2026)
	if err != nil {
		t.Fatalf("RoomForYear bob: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("bob sees %d room entries", len(other))
	}

	if err := s.SetRoom(ctx, model.RoomRecord{UserID: "alice", Year: 2026, Category: plan.RESP, Amount: decimal.NewFromInt(1)}); !errors.Is(err, plan.ErrInvalidInput) {
		t.Errorf("SetRoom(resp) err = %v, want ErrInvalidInput", err)
	}
}

func TestDependents(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	d := &model.Dependent{UserID: "alice", Name: "Sam", BirthYear: 2018}
	if err := s.SaveDependent(ctx, d); err != nil {
		t.Fatalf("SaveDependent: %v", err)
	}
	if err := s.SaveDependent(ctx, &model.Dependent{UserID: "alice", Name: "Ari"}); err != nil {
		t.Fatalf("SaveDependent: %v", err)
	}

	deps, err := s.ListDependents(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDependents: %v", err)
	}
	if len(deps) != 2 || deps[0].Name != "Ari" || deps[1].BirthYear != 2018 {
		t.Errorf("ListDependents = %+v", deps)
	}

	if err := s.DeleteDependent(ctx, "bob", d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob DeleteDependent err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteDependent(ctx, "alice", d.ID); err != nil {
		t.Fatalf("DeleteDependent: %v", err)
	}
}

func TestSnapshotsAndUsers(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	for _, a := range []*model.Account{
		{UserID: "alice", Name: "A", Category: plan.TFSA, Balance: decimal.NewFromInt(100)},
		{UserID: "bob", Name: "B", Category: plan.Taxable, Balance: decimal.NewFromInt(40)},
	} {
		if err := s.SaveAccount(ctx, a); err != nil {
			t.Fatalf("SaveAccount: %v", err)
		}
	}

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := s.RecordSnapshot(ctx, "alice", t0.AddDate(0, i, 0)); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}

	snaps, err := s.ListSnapshots(ctx, "alice", t0.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snaps))
	}
	if !snaps[0].TakenAt.Equal(t0.AddDate(0, 1, 0)) || !snaps[0].Total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("snaps[0] = %+v", snaps[0])
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Errorf("Users = %v, want [alice bob]", users)
	}
}
