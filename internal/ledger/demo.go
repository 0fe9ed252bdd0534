package ledger

import (
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
)

// DemoSnapshot returns the sample records shown on first run.
func DemoSnapshot(now time.Time) domain.Snapshot {
	return domain.Snapshot{
		Accounts: []domain.Account{
			{ID: "1", Name: "主要帳戶", Institution: "國泰世華", Balance: 50000, Currency: domain.DefaultCurrency, CreatedAt: now},
			{ID: "2", Name: "儲蓄帳戶", Institution: "玉山銀行", Balance: 120000, Currency: domain.DefaultCurrency, CreatedAt: now},
		},
		Transactions: []domain.Transaction{
			{ID: "t1", AccountID: "1", Amount: 35000, Type: domain.TypeIncome, Category: "薪資", Note: "10月薪水", Date: now.Add(-24 * time.Hour)},
			{ID: "t2", AccountID: "1", Amount: 150, Type: domain.TypeExpense, Category: "飲食", Note: "午餐", Date: now},
		},
	}
}
