package localfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"
)

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("NewRepository failed: %v", err)
	}

	if _, err := repo.Load(ctx); !errors.Is(err, persistence.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	created := time.UnixMilli(1700000000000)
	snap := domain.Snapshot{
		Accounts: []domain.Account{
			{ID: "1", Name: "主要帳戶", Institution: "國泰世華", Balance: 50000, Currency: "TWD", CreatedAt: created},
		},
		Transactions: []domain.Transaction{
			{ID: "t1", AccountID: "1", Amount: 150, Type: domain.TypeExpense, Category: "飲食", Note: "午餐", Date: created},
		},
	}
	if err := repo.Save(ctx, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Accounts) != 1 || got.Accounts[0].Institution != "國泰世華" || !got.Accounts[0].CreatedAt.Equal(created) {
		t.Errorf("unexpected accounts: %+v", got.Accounts)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Note != "午餐" {
		t.Errorf("unexpected transactions: %+v", got.Transactions)
	}

	entries, err := os.ReadDir(filepath.Dir(repo.Path()))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the snapshot file, found %d entries", len(entries))
	}
}

func TestRepositoryLoadsBrowserKeys(t *testing.T) {
	dir := t.TempDir()
	content := `{"demo_accounts":[{"id":"1","name":"主要帳戶","bankName":"國泰世華","balance":50000,"currency":"TWD","createdAt":1700000000000}],` +
		`"demo_transactions":[{"id":"t1","accountId":"1","amount":35000,"type":"INCOME","category":"薪資","note":"10月薪水","date":1700000000000}]}`
	if err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	repo, _ := NewRepository(dir)
	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap.Transactions[0].Type != domain.TypeIncome || snap.Accounts[0].Balance != 50000 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestRepositoryCorruptFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("{not json"), 0o644)

	repo, _ := NewRepository(dir)
	_, err := repo.Load(context.Background())
	if err == nil || errors.Is(err, persistence.ErrNoSnapshot) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestSaveCanceledContext(t *testing.T) {
	repo, _ := NewRepository(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Save(ctx, domain.Snapshot{}); err == nil {
		t.Error("expected error for canceled context")
	}
	if _, err := repo.Load(context.Background()); !errors.Is(err, persistence.ErrNoSnapshot) {
		t.Errorf("failed save must not create a snapshot, got %v", err)
	}
}
