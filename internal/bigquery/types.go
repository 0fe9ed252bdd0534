// Package bigquery holds the BigQuery row types and schema shared by the
// snapshot repository and the migrate command.
package bigquery

import (
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
)

// Table names inside the dataset.
const (
	SnapshotsTable        = "snapshots"
	AccountsTable         = "accounts"
	TransactionsTable     = "transactions"
	SchemaMigrationsTable = "schema_migrations"
)

// DefaultDatasetID is used when BQ_DATASET is not set.
const DefaultDatasetID = "ledger"

// Dataset identifies the project and dataset holding the ledger tables.
type Dataset struct {
	ProjectID string
	DatasetID string
}

// Table returns the fully qualified, backtick-quoted table name for use in SQL.
func (d Dataset) Table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", d.ProjectID, d.DatasetID, name)
}

// SnapshotRow marks a completed save. Account and transaction rows only
// count once their snapshot row exists.
type SnapshotRow struct {
	SnapshotID       string    `bigquery:"snapshot_id"`       // REQUIRED
	SavedTS          time.Time `bigquery:"saved_ts"`          // REQUIRED
	AccountCount     int64     `bigquery:"account_count"`     // REQUIRED
	TransactionCount int64     `bigquery:"transaction_count"` // REQUIRED
}

type AccountRow struct {
	SnapshotID string `bigquery:"snapshot_id"` // REQUIRED
	AccountID  string `bigquery:"account_id"`  // REQUIRED
	Position   int64  `bigquery:"position"`    // REQUIRED

	Name      string                 `bigquery:"name"`
	BankName  string                 `bigquery:"bank_name"`
	Balance   float64                `bigquery:"balance"`
	Currency  string                 `bigquery:"currency"`
	CreatedTS bigquery.NullTimestamp `bigquery:"created_ts"` // TIMESTAMP, NULLABLE
}

type TransactionRow struct {
	SnapshotID    string `bigquery:"snapshot_id"`    // REQUIRED
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	Position      int64  `bigquery:"position"`       // REQUIRED

	AccountID string                 `bigquery:"account_id"`
	Amount    float64                `bigquery:"amount"`
	Type      string                 `bigquery:"type"` // INCOME | EXPENSE
	Category  string                 `bigquery:"category"`
	Note      string                 `bigquery:"note"`
	TxTS      bigquery.NullTimestamp `bigquery:"tx_ts"` // TIMESTAMP, NULLABLE
}

func nullTimestamp(t time.Time) bigquery.NullTimestamp {
	if t.IsZero() {
		return bigquery.NullTimestamp{}
	}
	return bigquery.NullTimestamp{Timestamp: t.UTC(), Valid: true}
}

func fromNullTimestamp(ts bigquery.NullTimestamp) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Timestamp
}

// NewAccountRows converts accounts into rows tagged with snapshotID.
func NewAccountRows(snapshotID string, accounts []domain.Account) []*AccountRow {
	rows := make([]*AccountRow, 0, len(accounts))
	for i, a := range accounts {
		rows = append(rows, &AccountRow{
			SnapshotID: snapshotID,
			AccountID:  a.ID,
			Position:   int64(i),
			Name:       a.Name,
			BankName:   a.Institution,
			Balance:    a.Balance,
			Currency:   a.Currency,
			CreatedTS:  nullTimestamp(a.CreatedAt),
		})
	}
	return rows
}

// NewTransactionRows converts transactions into rows tagged with snapshotID.
func NewTransactionRows(snapshotID string, txns []domain.Transaction) []*TransactionRow {
	rows := make([]*TransactionRow, 0, len(txns))
	for i, t := range txns {
		rows = append(rows, &TransactionRow{
			SnapshotID:    snapshotID,
			TransactionID: t.ID,
			Position:      int64(i),
			AccountID:     t.AccountID,
			Amount:        t.Amount,
			Type:          string(t.Type),
			Category:      t.Category,
			Note:          t.Note,
			TxTS:          nullTimestamp(t.Date),
		})
	}
	return rows
}

// Account converts the row back into a domain account.
func (r *AccountRow) Account() domain.Account {
	return domain.Account{
		ID:          r.AccountID,
		Name:        r.Name,
		Institution: r.BankName,
		Balance:     r.Balance,
		Currency:    r.Currency,
		CreatedAt:   fromNullTimestamp(r.CreatedTS),
	}
}

// Transaction converts the row back into a domain transaction.
func (r *TransactionRow) Transaction() domain.Transaction {
	return domain.Transaction{
		ID:        r.TransactionID,
		AccountID: r.AccountID,
		Amount:    r.Amount,
		Type:      domain.TransactionType(r.Type),
		Category:  r.Category,
		Note:      r.Note,
		Date:      fromNullTimestamp(r.TxTS),
	}
}
