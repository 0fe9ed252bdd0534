package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
)

// Property names of the Accounts database.
const (
	PropAccountID   = "Account ID"
	PropAccountName = "Account Name"
	PropBank        = "Bank"
	PropBalance     = "Balance"
	PropCurrency    = "Currency"
	PropCreated     = "Created"
)

// Property names of the Transactions database.
const (
	PropDescription   = "Description"
	PropTransactionID = "Transaction ID"
	PropDate          = "Date"
	PropAmount        = "Amount"
	PropType          = "Type"
	PropCategory      = "Category"
	PropAccount       = "Account"
	PropNote          = "Note"
)

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}

func dateProperty(t time.Time) notionapi.DateProperty {
	d := notionapi.Date(t)
	return notionapi.DateProperty{
		Date: &notionapi.DateObject{Start: &d},
	}
}

// AccountToNotionProperties maps an account to an Accounts database row.
// The account id is the title so it can be matched on the next sync.
func AccountToNotionProperties(acc domain.Account) notionapi.Properties {
	props := notionapi.Properties{
		PropAccountID: notionapi.TitleProperty{
			Title: richText(acc.ID),
		},
		PropAccountName: notionapi.RichTextProperty{
			RichText: richText(acc.Name),
		},
		PropBalance: notionapi.NumberProperty{
			Number: acc.Balance,
		},
	}

	if acc.Institution != "" {
		props[PropBank] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: acc.Institution},
		}
	}

	currency := acc.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	props[PropCurrency] = notionapi.SelectProperty{
		Select: notionapi.Option{Name: currency},
	}

	if !acc.CreatedAt.IsZero() {
		props[PropCreated] = dateProperty(acc.CreatedAt)
	}

	return props
}

// TransactionToNotionProperties maps a transaction to a Transactions database row.
// Amount is signed: expenses are negative. accountName is shown as text
// because the account may no longer exist.
func TransactionToNotionProperties(tx domain.Transaction, accountName string) notionapi.Properties {
	description := tx.Note
	if description == "" {
		description = tx.Category
	}

	props := notionapi.Properties{
		PropDescription: notionapi.TitleProperty{
			Title: richText(description),
		},
		PropTransactionID: notionapi.RichTextProperty{
			RichText: richText(tx.ID),
		},
		PropDate: dateProperty(tx.Date),
		PropAmount: notionapi.NumberProperty{
			Number: tx.SignedAmount(),
		},
		PropType: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Type)},
		},
		PropCategory: notionapi.SelectProperty{
			Select: notionapi.Option{Name: tx.Category},
		},
		PropAccount: notionapi.RichTextProperty{
			RichText: richText(accountName),
		},
	}

	if tx.Note != "" {
		props[PropNote] = notionapi.RichTextProperty{
			RichText: richText(tx.Note),
		}
	}

	return props
}

// extractTransactionID reads the Transaction ID property of a queried page.
// Returns empty string if not found.
func extractTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropTransactionID]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
			return rt.RichText[0].PlainText
		}
	}
	return ""
}

// extractAccountID reads the Account ID title of a queried page.
// Returns empty string if not found.
func extractAccountID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropAccountID]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok && len(title.Title) > 0 {
			return title.Title[0].PlainText
		}
	}
	return ""
}
