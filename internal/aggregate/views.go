package aggregate

import (
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// DashboardView is the headline figures plus the recent trend.
type DashboardView struct {
	TotalBalance     decimal.Decimal `json:"totalBalance"`
	MonthIncome      decimal.Decimal `json:"monthIncome"`
	MonthExpense     decimal.Decimal `json:"monthExpense"`
	Trend            []DailyPoint    `json:"trend"`
	AccountCount     int             `json:"accountCount"`
	TransactionCount int             `json:"transactionCount"`
}

// ReportRow is one category line of the expense report.
type ReportRow struct {
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
	Percentage int             `json:"percentage"`
}

// ReportView is the all-time income and expense report.
type ReportView struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	NetSavings   decimal.Decimal `json:"netSavings"`
	Breakdown    []ReportRow     `json:"breakdown"`
}

// Dashboard computes the dashboard view of snap at now.
func Dashboard(snap domain.Snapshot, now time.Time) DashboardView {
	return DashboardView{
		TotalBalance:     TotalBalance(snap.Accounts),
		MonthIncome:      MonthlyTotal(snap.Transactions, domain.TypeIncome, now),
		MonthExpense:     MonthlyTotal(snap.Transactions, domain.TypeExpense, now),
		Trend:            DailySeries(snap.Transactions, now, DefaultTrendDays),
		AccountCount:     len(snap.Accounts),
		TransactionCount: len(snap.Transactions),
	}
}

// Report computes the category report of snap.
func Report(snap domain.Snapshot) ReportView {
	income := TotalByType(snap.Transactions, domain.TypeIncome)
	breakdown := CategoryBreakdown(snap.Transactions)
	expense := BreakdownTotal(breakdown)

	rows := make([]ReportRow, 0, len(breakdown))
	for _, c := range breakdown {
		rows = append(rows, ReportRow{
			Category:   c.Category,
			Total:      c.Total,
			Percentage: CategoryPercentage(c.Total, expense),
		})
	}

	return ReportView{
		TotalIncome:  income,
		TotalExpense: expense,
		NetSavings:   income.Sub(expense),
		Breakdown:    rows,
	}
}
