package bigquery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	bq "github.com/dvloznov/ledger-dashboard/internal/bigquery"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"
)

// mockTables keeps rows in memory the way the BigQuery tables would.
type mockTables struct {
	mu           sync.Mutex
	snapshots    []*bq.SnapshotRow
	accounts     []*bq.AccountRow
	transactions []*bq.TransactionRow

	insertTxErr error
	listErr     error
	closed      bool
}

func (m *mockTables) InsertSnapshot(ctx context.Context, row *bq.SnapshotRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, row)
	return nil
}

func (m *mockTables) InsertAccounts(ctx context.Context, rows []*bq.AccountRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = append(m.accounts, rows...)
	return nil
}

func (m *mockTables) InsertTransactions(ctx context.Context, rows []*bq.TransactionRow) error {
	if m.insertTxErr != nil {
		return m.insertTxErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, rows...)
	return nil
}

func (m *mockTables) LatestSnapshotID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.snapshots) == 0 {
		return "", nil
	}
	latest := m.snapshots[0]
	for _, s := range m.snapshots[1:] {
		if s.SavedTS.After(latest.SavedTS) {
			latest = s
		}
	}
	return latest.SnapshotID, nil
}

func (m *mockTables) ListAccounts(ctx context.Context, snapshotID string) ([]*bq.AccountRow, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []*bq.AccountRow
	for _, r := range m.accounts {
		if r.SnapshotID == snapshotID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows, nil
}

func (m *mockTables) ListTransactions(ctx context.Context, snapshotID string) ([]*bq.TransactionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []*bq.TransactionRow
	for _, r := range m.transactions {
		if r.SnapshotID == snapshotID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows, nil
}

func (m *mockTables) Close() error {
	m.closed = true
	return nil
}

func newTestRepository(t *mockTables) *Repository {
	repo := newRepository(t)
	clock := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	repo.newID = func() string {
		n++
		return fmt.Sprintf("snap-%d", n)
	}
	return repo
}

func TestLoadWithoutSnapshot(t *testing.T) {
	repo := newTestRepository(&mockTables{})
	if _, err := repo.Load(context.Background()); !errors.Is(err, persistence.ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSaveAndLoadLatest(t *testing.T) {
	ctx := context.Background()
	tables := &mockTables{}
	repo := newTestRepository(tables)

	first := domain.Snapshot{
		Accounts: []domain.Account{{ID: "1", Name: "主要帳戶", Institution: "國泰世華", Balance: 50000, Currency: "TWD"}},
	}
	second := domain.Snapshot{
		Accounts: []domain.Account{
			{ID: "2", Name: "儲蓄帳戶", Institution: "玉山銀行", Balance: 120000, Currency: "TWD"},
			{ID: "1", Name: "主要帳戶", Institution: "國泰世華", Balance: 50000, Currency: "TWD"},
		},
		Transactions: []domain.Transaction{{ID: "t1", AccountID: "1", Amount: 150, Type: domain.TypeExpense, Category: "飲食"}},
	}

	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Accounts) != 2 || got.Accounts[0].ID != "2" {
		t.Errorf("unexpected accounts: %+v", got.Accounts)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Type != domain.TypeExpense {
		t.Errorf("unexpected transactions: %+v", got.Transactions)
	}

	if tables.snapshots[1].AccountCount != 2 || tables.snapshots[1].TransactionCount != 1 {
		t.Errorf("unexpected marker: %+v", tables.snapshots[1])
	}
}

func TestFailedSaveIsInvisible(t *testing.T) {
	ctx := context.Background()
	tables := &mockTables{}
	repo := newTestRepository(tables)

	if err := repo.Save(ctx, domain.Snapshot{Accounts: []domain.Account{{ID: "1", Name: "a"}}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	tables.insertTxErr = errors.New("streaming insert failed")
	err := repo.Save(ctx, domain.Snapshot{
		Accounts:     []domain.Account{{ID: "x", Name: "b"}},
		Transactions: []domain.Transaction{{ID: "t", AccountID: "x", Amount: 1, Type: domain.TypeIncome, Category: "薪資"}},
	})
	if err == nil {
		t.Fatal("expected Save to fail")
	}
	if len(tables.snapshots) != 1 {
		t.Fatalf("marker must not be written on failure, got %d markers", len(tables.snapshots))
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Accounts) != 1 || got.Accounts[0].ID != "1" {
		t.Errorf("expected first snapshot, got %+v", got.Accounts)
	}
}

func TestLoadPropagatesErrors(t *testing.T) {
	ctx := context.Background()
	tables := &mockTables{}
	repo := newTestRepository(tables)
	if err := repo.Save(ctx, domain.Snapshot{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	tables.listErr = errors.New("query failed")
	if _, err := repo.Load(ctx); err == nil || errors.Is(err, persistence.ErrNoSnapshot) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEmptySnapshotLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(&mockTables{})
	if err := repo.Save(ctx, domain.Snapshot{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !got.IsEmpty() || got.Accounts == nil {
		t.Errorf("expected empty non-nil snapshot, got %+v", got)
	}
}

func TestCloseClosesTables(t *testing.T) {
	tables := &mockTables{}
	repo := newTestRepository(tables)
	if err := repo.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !tables.closed {
		t.Error("expected tables to be closed")
	}
}
