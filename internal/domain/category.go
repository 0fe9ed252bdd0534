package domain

import (
	"fmt"
	"strings"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	// TypeIncome is money coming in.
	TypeIncome TransactionType = "INCOME"
	// TypeExpense is money going out.
	TypeExpense TransactionType = "EXPENSE"
	// TypeAll matches both directions when filtering. It is never stored.
	TypeAll TransactionType = "ALL"
)

// Valid reports whether t can be stored on a transaction.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ParseTransactionType parses INCOME or EXPENSE, ignoring case and surrounding spaces.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", NewValidationError("type", fmt.Sprintf("unknown transaction type %q", s))
	}
	return t, nil
}

var categories = map[TransactionType][]string{
	TypeIncome:  {"薪資", "獎金", "投資回報", "租金收入", "其他收入"},
	TypeExpense: {"飲食", "交通", "購物", "娛樂", "居住", "醫療", "教育", "保險", "稅金", "其他支出"},
}

// Categories returns the ordered category labels for t, or nil for an invalid type.
func Categories(t TransactionType) []string {
	list, ok := categories[t]
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// DefaultCategory is the first category of t, used when a form switches type.
func DefaultCategory(t TransactionType) string {
	list := categories[t]
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// IsValidCategory reports whether category belongs to the taxonomy of t.
func IsValidCategory(t TransactionType, category string) bool {
	for _, c := range categories[t] {
		if c == category {
			return true
		}
	}
	return false
}

// ValidateCategory checks the (type, category) pair.
func ValidateCategory(t TransactionType, category string) error {
	if !t.Valid() {
		return NewValidationError("type", fmt.Sprintf("unknown transaction type %q", t))
	}
	if !IsValidCategory(t, category) {
		return NewValidationError("category", fmt.Sprintf("%q is not a %s category", category, t))
	}
	return nil
}

// CategoryPair is a type and category that are known to agree.
type CategoryPair struct {
	Type     TransactionType
	Category string
}

// NewCategoryPair validates and returns the pair.
func NewCategoryPair(t TransactionType, category string) (CategoryPair, error) {
	if err := ValidateCategory(t, category); err != nil {
		return CategoryPair{}, err
	}
	return CategoryPair{Type: t, Category: category}, nil
}

// Retype switches the pair to t. The category is kept when it is also valid
// for t, otherwise it becomes DefaultCategory(t).
func (p CategoryPair) Retype(t TransactionType) (CategoryPair, error) {
	if !t.Valid() {
		return p, NewValidationError("type", fmt.Sprintf("unknown transaction type %q", t))
	}
	if IsValidCategory(t, p.Category) {
		return CategoryPair{Type: t, Category: p.Category}, nil
	}
	return CategoryPair{Type: t, Category: DefaultCategory(t)}, nil
}
