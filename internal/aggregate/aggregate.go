// Package aggregate derives dashboard and report figures from records.
// All functions are pure and never modify their inputs.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultTrendDays is the length of the dashboard trend.
const DefaultTrendDays = 7

// DailyPoint holds the income and expense of a single calendar day.
type DailyPoint struct {
	Date    time.Time       `json:"date"`
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryTotal is the summed expense of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// TotalBalance sums the balances of all accounts. Currencies are not converted.
func TotalBalance(accounts []domain.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(decimal.NewFromFloat(a.Balance))
	}
	return total
}

// TotalByType sums every transaction of type t.
func TotalByType(transactions []domain.Transaction, t domain.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if tx.Type == t {
			total = total.Add(decimal.NewFromFloat(tx.Amount))
		}
	}
	return total
}

// MonthlyTotal sums transactions of type t dated in the same year and month as now,
// evaluated in now's location.
func MonthlyTotal(transactions []domain.Transaction, t domain.TransactionType, now time.Time) decimal.Decimal {
	year, month, _ := now.Date()
	total := decimal.Zero
	for _, tx := range transactions {
		if tx.Type != t {
			continue
		}
		y, m, _ := tx.Date.In(now.Location()).Date()
		if y == year && m == month {
			total = total.Add(decimal.NewFromFloat(tx.Amount))
		}
	}
	return total
}

// DailySeries returns one point per calendar day for the days ending at now's day,
// oldest first. Days without transactions are zero. A days value below 1 means
// DefaultTrendDays.
func DailySeries(transactions []domain.Transaction, now time.Time, days int) []DailyPoint {
	if days < 1 {
		days = DefaultTrendDays
	}

	loc := now.Location()
	year, month, day := now.Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, loc)

	points := make([]DailyPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := today.AddDate(0, 0, i-(days-1))
		points[i] = DailyPoint{
			Date:    d,
			Label:   DayLabel(d),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
		index[d.Format("2006-01-02")] = i
	}

	for _, tx := range transactions {
		i, ok := index[tx.Date.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		amount := decimal.NewFromFloat(tx.Amount)
		switch tx.Type {
		case domain.TypeIncome:
			points[i].Income = points[i].Income.Add(amount)
		case domain.TypeExpense:
			points[i].Expense = points[i].Expense.Add(amount)
		}
	}

	return points
}

// DayLabel formats d as month/day without padding, e.g. "10/5".
func DayLabel(d time.Time) string {
	return fmt.Sprintf("%d/%d", int(d.Month()), d.Day())
}

// CategoryBreakdown groups expense transactions by category, largest total first.
// Categories with equal totals keep the order in which they were first seen.
func CategoryBreakdown(transactions []domain.Transaction) []CategoryTotal {
	var out []CategoryTotal
	index := make(map[string]int)

	for _, tx := range transactions {
		if tx.Type != domain.TypeExpense {
			continue
		}
		amount := decimal.NewFromFloat(tx.Amount)
		if i, ok := index[tx.Category]; ok {
			out[i].Total = out[i].Total.Add(amount)
			continue
		}
		index[tx.Category] = len(out)
		out = append(out, CategoryTotal{Category: tx.Category, Total: amount})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

// BreakdownTotal sums the totals of a breakdown.
func BreakdownTotal(breakdown []CategoryTotal) decimal.Decimal {
	total := decimal.Zero
	for _, c := range breakdown {
		total = total.Add(c.Total)
	}
	return total
}

// CategoryPercentage is the share of value in total as a whole percent,
// rounded half up. A zero total yields 0.
func CategoryPercentage(value, total decimal.Decimal) int {
	if total.IsZero() {
		return 0
	}
	return int(value.Div(total).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}
