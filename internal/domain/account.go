package domain

import (
	"encoding/json"
	"time"
)

const (
	// DefaultCurrency is applied when an account is created without one.
	DefaultCurrency = "TWD"

	// UnknownAccountName is displayed for transactions whose account no longer exists.
	UnknownAccountName = "未知帳戶"
)

// Account is a bank account with a manually maintained balance.
// The balance is not derived from transactions.
type Account struct {
	ID          string
	Name        string
	Institution string
	Balance     float64
	Currency    string
	CreatedAt   time.Time
}

// AccountInput carries the editable fields of an account.
type AccountInput struct {
	Name        string  `json:"name"`
	Institution string  `json:"bankName"`
	Balance     float64 `json:"balance"`
	Currency    string  `json:"currency,omitempty"`
}

type accountJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Institution string  `json:"bankName"`
	Balance     float64 `json:"balance"`
	Currency    string  `json:"currency"`
	CreatedAt   int64   `json:"createdAt"`
}

// MarshalJSON encodes CreatedAt as epoch milliseconds.
func (a Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(accountJSON{
		ID:          a.ID,
		Name:        a.Name,
		Institution: a.Institution,
		Balance:     a.Balance,
		Currency:    a.Currency,
		CreatedAt:   ToMillis(a.CreatedAt),
	})
}

// UnmarshalJSON decodes the epoch millisecond form written by MarshalJSON.
func (a *Account) UnmarshalJSON(data []byte) error {
	var raw accountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Account{
		ID:          raw.ID,
		Name:        raw.Name,
		Institution: raw.Institution,
		Balance:     raw.Balance,
		Currency:    raw.Currency,
		CreatedAt:   FromMillis(raw.CreatedAt),
	}
	return nil
}

// ToMillis converts t to epoch milliseconds; the zero time maps to 0.
func ToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to a local time; 0 maps to the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
