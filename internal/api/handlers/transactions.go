package handlers

import (
	"net/http"
	"strings"

	"github.com/dvloznov/ledger-dashboard/internal/api/middleware"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/filter"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// TransactionsHandler handles transaction endpoints.
type TransactionsHandler struct {
	ledger Ledger
	log    zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(ledger Ledger, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		ledger: ledger,
		log:    log,
	}
}

// ListTransactions handles GET /api/transactions?type=INCOME|EXPENSE|ALL&q=text
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	criteria := filter.Criteria{Type: domain.TypeAll, Query: query.Get("q")}
	if raw := strings.TrimSpace(query.Get("type")); raw != "" && !strings.EqualFold(raw, string(domain.TypeAll)) {
		t, err := domain.ParseTransactionType(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		criteria.Type = t
	}

	// Return array directly for frontend compatibility
	middleware.WriteJSON(w, http.StatusOK, h.ledger.Filter(criteria))
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in domain.TransactionInput
	if err := decodeJSON(r, &in); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.ledger.AddTransaction(r.Context(), in)
	if err != nil {
		writeLedgerError(w, h.log, err, "Failed to create transaction")
		return
	}

	h.log.Info().
		Str("transaction_id", tx.ID).
		Str("account_id", tx.AccountID).
		Str("type", string(tx.Type)).
		Msg("Transaction created")
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.ledger.RemoveTransaction(r.Context(), id); err != nil {
		writeLedgerError(w, h.log, err, "Failed to delete transaction")
		return
	}

	h.log.Info().Str("transaction_id", id).Msg("Transaction deleted")
	w.WriteHeader(http.StatusNoContent)
}
