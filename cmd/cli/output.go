package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dvloznov/ledger-dashboard/internal/aggregate"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/filter"
)

func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	return strings.TrimSuffix(strings.TrimSuffix(s, "00"), ".")
}

func printAccounts(w io.Writer, accounts []domain.Account) {
	fmt.Fprintf(w, "\n=== Accounts (%d) ===\n", len(accounts))
	for i, a := range accounts {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, a.Name)
		fmt.Fprintf(w, "   ID:       %s\n", a.ID)
		fmt.Fprintf(w, "   Bank:     %s\n", a.Institution)
		fmt.Fprintf(w, "   Balance:  %s %s\n", formatAmount(a.Balance), a.Currency)
		fmt.Fprintf(w, "   Created:  %s\n", a.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintln(w)
}

func printRows(w io.Writer, rows []filter.Row) {
	fmt.Fprintf(w, "\n=== Transactions (%d) ===\n", len(rows))
	for i, r := range rows {
		fmt.Fprintf(w, "\n%d. %s %s\n", i+1, r.Category, r.Note)
		fmt.Fprintf(w, "   ID:       %s\n", r.ID)
		fmt.Fprintf(w, "   Date:     %s\n", r.Date.Format("2006-01-02"))
		fmt.Fprintf(w, "   Account:  %s\n", r.AccountName)
		fmt.Fprintf(w, "   Amount:   %s\n", formatAmount(r.SignedAmount))
	}
	fmt.Fprintln(w)
}

func printCategories(w io.Writer) {
	for _, t := range []domain.TransactionType{domain.TypeIncome, domain.TypeExpense} {
		fmt.Fprintf(w, "%s: %s\n", t, strings.Join(domain.Categories(t), ", "))
	}
}

func printDashboard(w io.Writer, d aggregate.DashboardView) {
	fmt.Fprintln(w, "\n=== Dashboard ===")
	fmt.Fprintf(w, "Total balance:   %s\n", d.TotalBalance.String())
	fmt.Fprintf(w, "Month income:    %s\n", d.MonthIncome.String())
	fmt.Fprintf(w, "Month expense:   %s\n", d.MonthExpense.String())
	fmt.Fprintf(w, "Accounts:        %d\n", d.AccountCount)
	fmt.Fprintf(w, "Transactions:    %d\n", d.TransactionCount)

	fmt.Fprintln(w, "\nLast 7 days:")
	for _, p := range d.Trend {
		fmt.Fprintf(w, "  %-6s +%s / -%s\n", p.Label, p.Income.String(), p.Expense.String())
	}
	fmt.Fprintln(w)
}

func printReport(w io.Writer, r aggregate.ReportView) {
	fmt.Fprintln(w, "\n=== Report ===")
	fmt.Fprintf(w, "Total income:    %s\n", r.TotalIncome.String())
	fmt.Fprintf(w, "Total expense:   %s\n", r.TotalExpense.String())
	fmt.Fprintf(w, "Net savings:     %s\n", r.NetSavings.String())

	if len(r.Breakdown) == 0 {
		fmt.Fprintln(w, "\nNo expenses recorded.")
		return
	}
	fmt.Fprintln(w, "\nExpenses by category:")
	for _, row := range r.Breakdown {
		fmt.Fprintf(w, "  %-8s %10s  %3d%%\n", row.Category, row.Total.String(), row.Percentage)
	}
	fmt.Fprintln(w)
}
