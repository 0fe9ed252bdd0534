package handlers

import (
	"net/http"

	"github.com/dvloznov/ledger-dashboard/internal/api/middleware"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	ledger Ledger
	log    zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(ledger Ledger, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{
		ledger: ledger,
		log:    log,
	}
}

// ListAccounts handles GET /api/accounts
func (h *AccountsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.ledger.Snapshot().Accounts
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
		"offline":  h.ledger.Offline(),
	})
}

// GetAccount handles GET /api/accounts/{id}
func (h *AccountsHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := h.ledger.Account(mux.Vars(r)["id"])
	if err != nil {
		writeLedgerError(w, h.log, err, "Failed to get account")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, acc)
}

// CreateAccount handles POST /api/accounts
func (h *AccountsHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var in domain.AccountInput
	if err := decodeJSON(r, &in); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acc, err := h.ledger.AddAccount(r.Context(), in)
	if err != nil {
		writeLedgerError(w, h.log, err, "Failed to create account")
		return
	}

	h.log.Info().Str("account_id", acc.ID).Msg("Account created")
	middleware.WriteJSON(w, http.StatusCreated, acc)
}

// UpdateAccount handles PUT /api/accounts/{id}
func (h *AccountsHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var in domain.AccountInput
	if err := decodeJSON(r, &in); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acc, err := h.ledger.UpdateAccount(r.Context(), id, in)
	if err != nil {
		writeLedgerError(w, h.log, err, "Failed to update account")
		return
	}

	h.log.Info().Str("account_id", id).Msg("Account updated")
	middleware.WriteJSON(w, http.StatusOK, acc)
}

// DeleteAccount handles DELETE /api/accounts/{id}
// Transactions of the account are kept.
func (h *AccountsHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.ledger.RemoveAccount(r.Context(), id); err != nil {
		writeLedgerError(w, h.log, err, "Failed to delete account")
		return
	}

	h.log.Info().Str("account_id", id).Msg("Account deleted")
	w.WriteHeader(http.StatusNoContent)
}
