// Package handlers implements the HTTP endpoints of the ledger API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dvloznov/ledger-dashboard/internal/aggregate"
	"github.com/dvloznov/ledger-dashboard/internal/api/middleware"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/filter"
	"github.com/rs/zerolog"
)

// Ledger is the part of ledger.Service the handlers use.
type Ledger interface {
	Snapshot() domain.Snapshot
	Account(id string) (domain.Account, error)
	AddAccount(ctx context.Context, in domain.AccountInput) (domain.Account, error)
	UpdateAccount(ctx context.Context, id string, in domain.AccountInput) (domain.Account, error)
	RemoveAccount(ctx context.Context, id string) error
	AddTransaction(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error)
	RemoveTransaction(ctx context.Context, id string) error
	Filter(c filter.Criteria) []filter.Row
	Dashboard() aggregate.DashboardView
	Report() aggregate.ReportView
	Summary() string
	Offline() bool
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeLedgerError maps record errors to status codes.
func writeLedgerError(w http.ResponseWriter, log zerolog.Logger, err error, msg string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		middleware.WriteError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, http.StatusInternalServerError, msg)
	}
}
