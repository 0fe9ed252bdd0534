// Package summary renders the plain-text financial summary handed to the advisor.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/aggregate"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
)

// TopCategories is the number of expense categories listed in a summary.
const TopCategories = 3

// Label texts of the summary lines.
const (
	LabelIncome        = "總收入"
	LabelExpense       = "總支出"
	LabelNetSavings    = "淨儲蓄"
	LabelTopCategories = "前三大支出類別"
	LabelAccountCount  = "帳戶總數"
	NoCategories       = "無"
)

// Build produces a five line summary: all-time income, expense, net savings,
// the top expense categories and the number of accounts.
// The time argument is reserved for period-scoped summaries and is not used by this format.
func Build(accounts []domain.Account, transactions []domain.Transaction, _ time.Time) string {
	snap := domain.Snapshot{Accounts: accounts, Transactions: transactions}
	report := aggregate.Report(snap)

	top := report.Breakdown
	if len(top) > TopCategories {
		top = top[:TopCategories]
	}

	categories := NoCategories
	if len(top) > 0 {
		parts := make([]string, 0, len(top))
		for _, row := range top {
			parts = append(parts, fmt.Sprintf("%s: $%s", row.Category, row.Total.String()))
		}
		categories = strings.Join(parts, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s：$%s\n", LabelIncome, report.TotalIncome.String())
	fmt.Fprintf(&b, "%s：$%s\n", LabelExpense, report.TotalExpense.String())
	fmt.Fprintf(&b, "%s：$%s\n", LabelNetSavings, report.NetSavings.String())
	fmt.Fprintf(&b, "%s：%s\n", LabelTopCategories, categories)
	fmt.Fprintf(&b, "%s：%d", LabelAccountCount, len(accounts))
	return b.String()
}
