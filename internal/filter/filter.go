// Package filter selects transactions for the record list.
package filter

import (
	"strings"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
)

// Criteria selects transactions by type and free-text query.
// An empty Type behaves like domain.TypeAll.
type Criteria struct {
	Type  domain.TransactionType
	Query string
}

// Matches reports whether tx satisfies c.
// The query matches the note case-insensitively or the category by substring.
func (c Criteria) Matches(tx domain.Transaction) bool {
	if c.Type != "" && c.Type != domain.TypeAll && tx.Type != c.Type {
		return false
	}
	if c.Query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(tx.Note), strings.ToLower(c.Query)) {
		return true
	}
	return strings.Contains(tx.Category, c.Query)
}

// Transactions returns the transactions matching c, in input order.
func Transactions(transactions []domain.Transaction, c Criteria) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if c.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Row is a transaction prepared for display.
type Row struct {
	ID           string                 `json:"id"`
	Date         time.Time              `json:"date"`
	AccountID    string                 `json:"accountId"`
	AccountName  string                 `json:"accountName"`
	Type         domain.TransactionType `json:"type"`
	Category     string                 `json:"category"`
	Note         string                 `json:"note"`
	Amount       float64                `json:"amount"`
	SignedAmount float64                `json:"signedAmount"`
}

// Rows filters snap.Transactions by c and resolves account names.
func Rows(snap domain.Snapshot, c Criteria) []Row {
	matched := Transactions(snap.Transactions, c)
	rows := make([]Row, 0, len(matched))
	for _, tx := range matched {
		rows = append(rows, Row{
			ID:           tx.ID,
			Date:         tx.Date,
			AccountID:    tx.AccountID,
			AccountName:  domain.AccountName(snap.Accounts, tx.AccountID),
			Type:         tx.Type,
			Category:     tx.Category,
			Note:         tx.Note,
			Amount:       tx.Amount,
			SignedAmount: tx.SignedAmount(),
		})
	}
	return rows
}
