package handlers

import (
	"net/http"

	"github.com/dvloznov/ledger-dashboard/internal/api/middleware"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/rs/zerolog"
)

// CategoriesHandler serves the fixed category taxonomy.
type CategoriesHandler struct {
	log zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{log: log}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": map[domain.TransactionType][]string{
			domain.TypeIncome:  domain.Categories(domain.TypeIncome),
			domain.TypeExpense: domain.Categories(domain.TypeExpense),
		},
		"defaults": map[domain.TransactionType]string{
			domain.TypeIncome:  domain.DefaultCategory(domain.TypeIncome),
			domain.TypeExpense: domain.DefaultCategory(domain.TypeExpense),
		},
	})
}

// ReportsHandler serves the derived views.
// Money totals are encoded as decimal strings such as "50000.5"; record
// amounts and balances stay JSON numbers.
type ReportsHandler struct {
	ledger Ledger
	log    zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(ledger Ledger, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		ledger: ledger,
		log:    log,
	}
}

// Dashboard handles GET /api/dashboard
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.ledger.Dashboard())
}

// Report handles GET /api/reports
func (h *ReportsHandler) Report(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.ledger.Report())
}

// Summary handles GET /api/summary
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"summary": h.ledger.Summary(),
	})
}
