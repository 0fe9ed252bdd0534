// Package bigquery stores ledger snapshots as append-only rows in BigQuery.
//
// Every Save writes the accounts and transactions under a fresh snapshot id
// and inserts the snapshot marker row last. Load reads the newest marker, so
// rows from a save that failed halfway are never returned.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	bq "github.com/dvloznov/ledger-dashboard/internal/bigquery"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"
)

// Repository implements persistence.Repository on BigQuery tables.
type Repository struct {
	tables tables
	now    func() time.Time
	newID  func() string
}

// NewRepository creates a repository with a shared BigQuery client for ds.
func NewRepository(ctx context.Context, ds bq.Dataset) (*Repository, error) {
	if ds.ProjectID == "" {
		return nil, fmt.Errorf("NewRepository: project id is required")
	}
	if ds.DatasetID == "" {
		ds.DatasetID = bq.DefaultDatasetID
	}
	t, err := newClientTables(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: %w", err)
	}
	return newRepository(t), nil
}

func newRepository(t tables) *Repository {
	return &Repository{tables: t, now: time.Now, newID: uuid.NewString}
}

// Load implements persistence.Repository.
func (r *Repository) Load(ctx context.Context) (domain.Snapshot, error) {
	snapshotID, err := r.tables.LatestSnapshotID(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("Load: %w", err)
	}
	if snapshotID == "" {
		return domain.Snapshot{}, persistence.ErrNoSnapshot
	}

	var (
		accountRows []*bq.AccountRow
		txRows      []*bq.TransactionRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accountRows, err = r.tables.ListAccounts(gctx, snapshotID)
		return err
	})
	g.Go(func() error {
		var err error
		txRows, err = r.tables.ListTransactions(gctx, snapshotID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("Load: snapshot %s: %w", snapshotID, err)
	}

	snap := domain.Snapshot{
		Accounts:     make([]domain.Account, 0, len(accountRows)),
		Transactions: make([]domain.Transaction, 0, len(txRows)),
	}
	for _, row := range accountRows {
		snap.Accounts = append(snap.Accounts, row.Account())
	}
	for _, row := range txRows {
		snap.Transactions = append(snap.Transactions, row.Transaction())
	}
	return snap, nil
}

// Save implements persistence.Repository.
func (r *Repository) Save(ctx context.Context, snap domain.Snapshot) error {
	snapshotID := r.newID()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.tables.InsertAccounts(gctx, bq.NewAccountRows(snapshotID, snap.Accounts))
	})
	g.Go(func() error {
		return r.tables.InsertTransactions(gctx, bq.NewTransactionRows(snapshotID, snap.Transactions))
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("Save: snapshot %s: %w", snapshotID, err)
	}

	marker := &bq.SnapshotRow{
		SnapshotID:       snapshotID,
		SavedTS:          r.now().UTC(),
		AccountCount:     int64(len(snap.Accounts)),
		TransactionCount: int64(len(snap.Transactions)),
	}
	if err := r.tables.InsertSnapshot(ctx, marker); err != nil {
		return fmt.Errorf("Save: snapshot %s: %w", snapshotID, err)
	}
	return nil
}

// Close implements persistence.Repository.
func (r *Repository) Close() error {
	return r.tables.Close()
}

var _ persistence.Repository = (*Repository)(nil)
