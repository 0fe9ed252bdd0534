package aggregate

import (
	"testing"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

var now = time.Date(2024, 10, 15, 20, 0, 0, 0, time.UTC)

func tx(t domain.TransactionType, category string, amount float64, date time.Time) domain.Transaction {
	return domain.Transaction{Type: t, Category: category, Amount: amount, Date: date, AccountID: "1"}
}

func TestTotalBalance(t *testing.T) {
	accounts := []domain.Account{
		{Balance: 50000, Currency: "TWD"},
		{Balance: 120000, Currency: "TWD"},
		{Balance: -0.1, Currency: "USD"},
	}
	got := TotalBalance(accounts)
	if got.String() != "169999.9" {
		t.Errorf("TotalBalance = %s, want 169999.9", got)
	}
	if !TotalBalance(nil).IsZero() {
		t.Error("expected zero for no accounts")
	}
}

func TestMonthlyTotal(t *testing.T) {
	txns := []domain.Transaction{
		tx(domain.TypeIncome, "薪資", 35000, now.AddDate(0, 0, -1)),
		tx(domain.TypeIncome, "獎金", 1000, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)),
		tx(domain.TypeIncome, "獎金", 999, time.Date(2023, 10, 20, 0, 0, 0, 0, time.UTC)),
		tx(domain.TypeIncome, "獎金", 5, time.Date(2024, 9, 30, 23, 59, 0, 0, time.UTC)),
		tx(domain.TypeExpense, "飲食", 150, now),
	}

	tests := []struct {
		name   string
		txType domain.TransactionType
		want   string
	}{
		{"income ignores other years and months", domain.TypeIncome, "36000"},
		{"expense", domain.TypeExpense, "150"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthlyTotal(txns, tt.txType, now); got.String() != tt.want {
				t.Errorf("MonthlyTotal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDailySeries(t *testing.T) {
	txns := []domain.Transaction{
		tx(domain.TypeExpense, "飲食", 150, now),
		tx(domain.TypeExpense, "交通", 50, now.Add(-time.Hour)),
		tx(domain.TypeIncome, "薪資", 35000, now.AddDate(0, 0, -1)),
		tx(domain.TypeExpense, "飲食", 999, now.AddDate(0, 0, -7)),
		tx(domain.TypeExpense, "飲食", 1, now.AddDate(0, 0, 1)),
	}

	series := DailySeries(txns, now, 7)
	if len(series) != 7 {
		t.Fatalf("expected 7 points, got %d", len(series))
	}

	wantLabels := []string{"10/9", "10/10", "10/11", "10/12", "10/13", "10/14", "10/15"}
	for i, p := range series {
		if p.Label != wantLabels[i] {
			t.Errorf("point %d label = %s, want %s", i, p.Label, wantLabels[i])
		}
	}

	last := series[6]
	if last.Expense.String() != "200" || !last.Income.IsZero() {
		t.Errorf("today = %s/%s, want income 0 expense 200", last.Income, last.Expense)
	}
	if series[5].Income.String() != "35000" {
		t.Errorf("yesterday income = %s, want 35000", series[5].Income)
	}
	for i := 0; i < 5; i++ {
		if !series[i].Income.IsZero() || !series[i].Expense.IsZero() {
			t.Errorf("point %d should be zero-filled: %+v", i, series[i])
		}
	}
}

func TestDailySeriesCrossesMonth(t *testing.T) {
	start := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	series := DailySeries(nil, start, 0)
	if len(series) != DefaultTrendDays {
		t.Fatalf("expected default length, got %d", len(series))
	}
	if series[0].Label != "2/25" || series[6].Label != "3/2" {
		t.Errorf("unexpected labels %s .. %s", series[0].Label, series[6].Label)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	txns := []domain.Transaction{
		tx(domain.TypeExpense, "交通", 100, now),
		tx(domain.TypeExpense, "飲食", 300, now),
		tx(domain.TypeIncome, "薪資", 5000, now),
		tx(domain.TypeExpense, "娛樂", 100, now),
		tx(domain.TypeExpense, "飲食", 50, now),
	}

	got := CategoryBreakdown(txns)
	want := []struct {
		category string
		total    string
	}{
		{"飲食", "350"},
		{"交通", "100"},
		{"娛樂", "100"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Category != w.category || got[i].Total.String() != w.total {
			t.Errorf("entry %d = %s/%s, want %s/%s", i, got[i].Category, got[i].Total, w.category, w.total)
		}
	}

	if !BreakdownTotal(got).Equal(TotalByType(txns, domain.TypeExpense)) {
		t.Error("breakdown total must equal total expense")
	}

	if len(CategoryBreakdown(nil)) != 0 {
		t.Error("expected empty breakdown")
	}
}

func TestCategoryPercentage(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		total float64
		want  int
	}{
		{"zero total", 10, 0, 0},
		{"whole", 50, 50, 100},
		{"third", 1, 3, 33},
		{"two thirds rounds up", 2, 3, 67},
		{"half rounds up", 1, 8, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategoryPercentage(decimal.NewFromFloat(tt.value), decimal.NewFromFloat(tt.total))
			if got != tt.want {
				t.Errorf("CategoryPercentage(%v, %v) = %d, want %d", tt.value, tt.total, got, tt.want)
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	snap := domain.Snapshot{
		Accounts: []domain.Account{{ID: "1", Balance: 50000}, {ID: "2", Balance: 120000}},
		Transactions: []domain.Transaction{
			tx(domain.TypeIncome, "薪資", 35000, now.AddDate(0, 0, -1)),
			tx(domain.TypeExpense, "飲食", 150, now),
		},
	}

	view := Dashboard(snap, now)
	if view.TotalBalance.String() != "170000" {
		t.Errorf("TotalBalance = %s", view.TotalBalance)
	}
	if view.MonthIncome.String() != "35000" || view.MonthExpense.String() != "150" {
		t.Errorf("month = %s/%s", view.MonthIncome, view.MonthExpense)
	}
	if len(view.Trend) != 7 {
		t.Errorf("trend length = %d", len(view.Trend))
	}
	if view.AccountCount != 2 || view.TransactionCount != 2 {
		t.Errorf("counts = %d/%d", view.AccountCount, view.TransactionCount)
	}
}

func TestReport(t *testing.T) {
	snap := domain.Snapshot{
		Transactions: []domain.Transaction{
			tx(domain.TypeIncome, "薪資", 1000, now),
			tx(domain.TypeExpense, "飲食", 300, now),
			tx(domain.TypeExpense, "交通", 100, now),
		},
	}

	report := Report(snap)
	if report.TotalIncome.String() != "1000" || report.TotalExpense.String() != "400" || report.NetSavings.String() != "600" {
		t.Errorf("unexpected totals: %+v", report)
	}
	if len(report.Breakdown) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report.Breakdown))
	}
	if report.Breakdown[0].Percentage != 75 || report.Breakdown[1].Percentage != 25 {
		t.Errorf("unexpected percentages: %d, %d", report.Breakdown[0].Percentage, report.Breakdown[1].Percentage)
	}
}
