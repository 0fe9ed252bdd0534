package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
)

func TestBuild(t *testing.T) {
	now := time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)
	accounts := []domain.Account{{ID: "1"}, {ID: "2"}}
	transactions := []domain.Transaction{
		{Type: domain.TypeIncome, Category: "薪資", Amount: 35000, Date: now},
		{Type: domain.TypeExpense, Category: "飲食", Amount: 150, Date: now},
		{Type: domain.TypeExpense, Category: "交通", Amount: 400, Date: now},
		{Type: domain.TypeExpense, Category: "娛樂", Amount: 80.5, Date: now},
		{Type: domain.TypeExpense, Category: "醫療", Amount: 10, Date: now},
	}

	got := Build(accounts, transactions, now)
	want := strings.Join([]string{
		"總收入：$35000",
		"總支出：$640.5",
		"淨儲蓄：$34359.5",
		"前三大支出類別：交通: $400, 飲食: $150, 娛樂: $80.5",
		"帳戶總數：2",
	}, "\n")

	if got != want {
		t.Errorf("Build() mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestBuildEmpty(t *testing.T) {
	got := Build(nil, nil, time.Now())
	lines := strings.Split(got, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "總收入：$0" || lines[2] != "淨儲蓄：$0" {
		t.Errorf("unexpected totals: %q", got)
	}
	if lines[3] != "前三大支出類別：無" {
		t.Errorf("unexpected categories line: %q", lines[3])
	}
	if lines[4] != "帳戶總數：0" {
		t.Errorf("unexpected account line: %q", lines[4])
	}
}

func TestBuildNegativeSavings(t *testing.T) {
	txns := []domain.Transaction{
		{Type: domain.TypeIncome, Category: "薪資", Amount: 100},
		{Type: domain.TypeExpense, Category: "居住", Amount: 250},
	}
	got := Build(nil, txns, time.Now())
	if !strings.Contains(got, "淨儲蓄：$-150") {
		t.Errorf("expected negative savings, got %q", got)
	}
}
