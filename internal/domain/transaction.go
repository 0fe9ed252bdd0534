package domain

import (
	"encoding/json"
	"time"
)

// Transaction is a single income or expense entry.
// Amount is always positive; Type carries the direction.
// AccountID may reference an account that has since been removed.
type Transaction struct {
	ID        string
	AccountID string
	Amount    float64
	Type      TransactionType
	Category  string
	Note      string
	Date      time.Time
}

// TransactionInput carries the fields of a new transaction.
// A zero Date means "now".
type TransactionInput struct {
	AccountID string          `json:"accountId"`
	Amount    float64         `json:"amount"`
	Type      TransactionType `json:"type"`
	Category  string          `json:"category"`
	Note      string          `json:"note"`
	Date      time.Time       `json:"-"`
}

// SignedAmount is Amount for income and -Amount for expense.
func (t Transaction) SignedAmount() float64 {
	if t.Type == TypeExpense {
		return -t.Amount
	}
	return t.Amount
}

type transactionJSON struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	Amount    float64         `json:"amount"`
	Type      TransactionType `json:"type"`
	Category  string          `json:"category"`
	Note      string          `json:"note"`
	Date      int64           `json:"date"`
}

// MarshalJSON encodes Date as epoch milliseconds.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		ID:        t.ID,
		AccountID: t.AccountID,
		Amount:    t.Amount,
		Type:      t.Type,
		Category:  t.Category,
		Note:      t.Note,
		Date:      ToMillis(t.Date),
	})
}

// UnmarshalJSON decodes the epoch millisecond form written by MarshalJSON.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw transactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Transaction{
		ID:        raw.ID,
		AccountID: raw.AccountID,
		Amount:    raw.Amount,
		Type:      raw.Type,
		Category:  raw.Category,
		Note:      raw.Note,
		Date:      FromMillis(raw.Date),
	}
	return nil
}

// UnmarshalJSON accepts an optional "date" in epoch milliseconds.
func (in *TransactionInput) UnmarshalJSON(data []byte) error {
	type alias TransactionInput
	var raw struct {
		alias
		Date int64 `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*in = TransactionInput(raw.alias)
	in.Date = FromMillis(raw.Date)
	return nil
}
