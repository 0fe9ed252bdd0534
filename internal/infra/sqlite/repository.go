// Package sqlite stores snapshots in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"

	_ "modernc.org/sqlite"
)

// Repository keeps accounts and transactions in SQLite tables.
// Save rewrites both tables inside one SQL transaction.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository opens (or creates) the database at dbPath and migrates it.
func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("NewRepository: create db directory: %w", err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("NewRepository: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: open sqlite database: %w", err)
	}
	// A single connection serializes writers; the store has one logical writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewRepository: ping database: %w", err)
	}

	return &Repository{db: db, now: time.Now}, nil
}

// Load implements persistence.Repository.
func (r *Repository) Load(ctx context.Context) (domain.Snapshot, error) {
	var savedAt int64
	err := r.db.QueryRowContext(ctx, `SELECT saved_at FROM snapshot_meta WHERE id = 1`).Scan(&savedAt)
	if err == sql.ErrNoRows {
		return domain.Snapshot{}, persistence.ErrNoSnapshot
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("Load: reading snapshot meta: %w", err)
	}

	accounts, err := r.loadAccounts(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	transactions, err := r.loadTransactions(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	return domain.Snapshot{Accounts: accounts, Transactions: transactions}, nil
}

func (r *Repository) loadAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, bank_name, balance, currency, created_at
		FROM accounts
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("loadAccounts: querying: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var (
			a         domain.Account
			createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Institution, &a.Balance, &a.Currency, &createdAt); err != nil {
			return nil, fmt.Errorf("loadAccounts: scanning: %w", err)
		}
		a.CreatedAt = domain.FromMillis(createdAt)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loadAccounts: iterating: %w", err)
	}
	return accounts, nil
}

func (r *Repository) loadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, amount, type, category, note, date
		FROM transactions
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("loadTransactions: querying: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var (
			t      domain.Transaction
			txType string
			date   int64
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &txType, &t.Category, &t.Note, &date); err != nil {
			return nil, fmt.Errorf("loadTransactions: scanning: %w", err)
		}
		t.Type = domain.TransactionType(txType)
		t.Date = domain.FromMillis(date)
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loadTransactions: iterating: %w", err)
	}
	return transactions, nil
}

// Save implements persistence.Repository.
func (r *Repository) Save(ctx context.Context, snap domain.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Save: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("Save: clearing transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("Save: clearing accounts: %w", err)
	}

	accStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accounts (id, position, name, bank_name, balance, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("Save: preparing account insert: %w", err)
	}
	defer accStmt.Close()

	for i, a := range snap.Accounts {
		if _, err := accStmt.ExecContext(ctx, a.ID, i, a.Name, a.Institution, a.Balance, a.Currency, domain.ToMillis(a.CreatedAt)); err != nil {
			return fmt.Errorf("Save: inserting account %s: %w", a.ID, err)
		}
	}

	txStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, position, account_id, amount, type, category, note, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("Save: preparing transaction insert: %w", err)
	}
	defer txStmt.Close()

	for i, t := range snap.Transactions {
		if _, err := txStmt.ExecContext(ctx, t.ID, i, t.AccountID, t.Amount, string(t.Type), t.Category, t.Note, domain.ToMillis(t.Date)); err != nil {
			return fmt.Errorf("Save: inserting transaction %s: %w", t.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, saved_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at`, r.now().UnixMilli()); err != nil {
		return fmt.Errorf("Save: updating snapshot meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Save: commit: %w", err)
	}
	return nil
}

// Close implements persistence.Repository.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

var _ persistence.Repository = (*Repository)(nil)
