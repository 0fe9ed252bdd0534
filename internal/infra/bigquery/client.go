package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	bq "github.com/dvloznov/ledger-dashboard/internal/bigquery"
)

// tables is the narrow slice of BigQuery the repository relies on.
type tables interface {
	InsertSnapshot(ctx context.Context, row *bq.SnapshotRow) error
	InsertAccounts(ctx context.Context, rows []*bq.AccountRow) error
	InsertTransactions(ctx context.Context, rows []*bq.TransactionRow) error

	// LatestSnapshotID returns the newest snapshot id, or "" when none exists.
	LatestSnapshotID(ctx context.Context) (string, error)
	ListAccounts(ctx context.Context, snapshotID string) ([]*bq.AccountRow, error)
	ListTransactions(ctx context.Context, snapshotID string) ([]*bq.TransactionRow, error)

	Close() error
}

// clientTables implements tables with a shared BigQuery client.
type clientTables struct {
	client *bigquery.Client
	ds     bq.Dataset
}

func newClientTables(ctx context.Context, ds bq.Dataset) (*clientTables, error) {
	client, err := bigquery.NewClient(ctx, ds.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("newClientTables: creating client: %w", err)
	}
	return &clientTables{client: client, ds: ds}, nil
}

func (c *clientTables) inserter(table string) *bigquery.Inserter {
	return c.client.DatasetInProject(c.ds.ProjectID, c.ds.DatasetID).Table(table).Inserter()
}

func (c *clientTables) InsertSnapshot(ctx context.Context, row *bq.SnapshotRow) error {
	if err := c.inserter(bq.SnapshotsTable).Put(ctx, row); err != nil {
		return fmt.Errorf("InsertSnapshot: inserting row: %w", err)
	}
	return nil
}

func (c *clientTables) InsertAccounts(ctx context.Context, rows []*bq.AccountRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := c.inserter(bq.AccountsTable).Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertAccounts: inserting rows: %w", err)
	}
	return nil
}

func (c *clientTables) InsertTransactions(ctx context.Context, rows []*bq.TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := c.inserter(bq.TransactionsTable).Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

func (c *clientTables) LatestSnapshotID(ctx context.Context) (string, error) {
	q := c.client.Query(fmt.Sprintf(`
		SELECT snapshot_id
		FROM %s
		ORDER BY saved_ts DESC
		LIMIT 1
	`, c.ds.Table(bq.SnapshotsTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("LatestSnapshotID: reading query: %w", err)
	}

	var row struct {
		SnapshotID string `bigquery:"snapshot_id"`
	}
	err = it.Next(&row)
	if err == iterator.Done {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("LatestSnapshotID: iterating: %w", err)
	}
	return row.SnapshotID, nil
}

func (c *clientTables) ListAccounts(ctx context.Context, snapshotID string) ([]*bq.AccountRow, error) {
	q := c.client.Query(fmt.Sprintf(`
		SELECT snapshot_id, account_id, position, name, bank_name, balance, currency, created_ts
		FROM %s
		WHERE snapshot_id = @snapshotID
		ORDER BY position ASC
	`, c.ds.Table(bq.AccountsTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "snapshotID", Value: snapshotID}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: reading query: %w", err)
	}

	var rows []*bq.AccountRow
	for {
		var row bq.AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccounts: iterating: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

func (c *clientTables) ListTransactions(ctx context.Context, snapshotID string) ([]*bq.TransactionRow, error) {
	q := c.client.Query(fmt.Sprintf(`
		SELECT snapshot_id, transaction_id, position, account_id, amount, type, category, note, tx_ts
		FROM %s
		WHERE snapshot_id = @snapshotID
		ORDER BY position ASC
	`, c.ds.Table(bq.TransactionsTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "snapshotID", Value: snapshotID}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: reading query: %w", err)
	}

	var rows []*bq.TransactionRow
	for {
		var row bq.TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iterating: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// Close closes the BigQuery client connection.
func (c *clientTables) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
