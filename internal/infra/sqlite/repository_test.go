package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "db", "ledger.db"))
	if err != nil {
		t.Fatalf("NewRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLoadEmptyDatabase(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Load(context.Background()); !errors.Is(err, persistence.ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	date := time.UnixMilli(1700000000000)

	snap := domain.Snapshot{
		Accounts: []domain.Account{
			{ID: "2", Name: "儲蓄帳戶", Institution: "玉山銀行", Balance: 120000, Currency: "TWD", CreatedAt: date},
			{ID: "1", Name: "主要帳戶", Institution: "國泰世華", Balance: 50000.5, Currency: "TWD", CreatedAt: date},
		},
		Transactions: []domain.Transaction{
			{ID: "t2", AccountID: "1", Amount: 150, Type: domain.TypeExpense, Category: "飲食", Note: "午餐", Date: date},
			{ID: "t1", AccountID: "gone", Amount: 35000, Type: domain.TypeIncome, Category: "薪資", Note: "10月薪水", Date: date.AddDate(0, 0, -1)},
		},
	}
	if err := repo.Save(ctx, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Accounts) != 2 || got.Accounts[0].ID != "2" || got.Accounts[1].Balance != 50000.5 {
		t.Errorf("unexpected accounts: %+v", got.Accounts)
	}
	if len(got.Transactions) != 2 || got.Transactions[0].ID != "t2" || got.Transactions[1].AccountID != "gone" {
		t.Errorf("unexpected transactions: %+v", got.Transactions)
	}
	if !got.Transactions[1].Date.Equal(date.AddDate(0, 0, -1)) {
		t.Errorf("unexpected date: %v", got.Transactions[1].Date)
	}

	// A second save replaces the first one entirely.
	if err := repo.Save(ctx, domain.Snapshot{Accounts: snap.Accounts[:1]}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Accounts) != 1 || len(got.Transactions) != 0 {
		t.Errorf("expected 1 account and no transactions, got %+v", got)
	}
}

func TestFailedSaveKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := domain.Snapshot{Accounts: []domain.Account{{ID: "1", Name: "main", Institution: "bank", Currency: "TWD"}}}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Duplicate ids violate the primary key halfway through the write.
	bad := domain.Snapshot{Accounts: []domain.Account{
		{ID: "x", Name: "a", Institution: "b", Currency: "TWD"},
		{ID: "x", Name: "a", Institution: "b", Currency: "TWD"},
	}}
	if err := repo.Save(ctx, bad); err == nil {
		t.Fatal("expected Save to fail")
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Accounts) != 1 || got.Accounts[0].ID != "1" {
		t.Errorf("previous snapshot must stay visible, got %+v", got.Accounts)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first RunMigrations failed: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}
}
