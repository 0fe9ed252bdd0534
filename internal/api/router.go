// Package api assembles the HTTP surface of the ledger.
package api

import (
	"net/http"

	"github.com/dvloznov/ledger-dashboard/internal/api/handlers"
	"github.com/dvloznov/ledger-dashboard/internal/api/middleware"
	"github.com/dvloznov/ledger-dashboard/internal/jobs"
	"github.com/dvloznov/ledger-dashboard/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Deps are the collaborators of the router.
type Deps struct {
	Ledger    handlers.Ledger
	Publisher jobs.Publisher
	JobStore  jobs.JobStore
	Metrics   metrics.Recorder
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	Backend        string
	RequireAuth    bool
	Log            zerolog.Logger
}

// NewRouter wires every endpoint and wraps it in the middleware chain.
func NewRouter(d Deps) http.Handler {
	rec := d.Metrics
	if rec == nil {
		rec = metrics.NoOp{}
	}

	accountsHandler := handlers.NewAccountsHandler(d.Ledger, d.Log)
	transactionsHandler := handlers.NewTransactionsHandler(d.Ledger, d.Log)
	categoriesHandler := handlers.NewCategoriesHandler(d.Log)
	reportsHandler := handlers.NewReportsHandler(d.Ledger, d.Log)
	adviceHandler := handlers.NewAdviceHandler(d.Ledger, d.Publisher, d.JobStore, d.Log)
	jobsHandler := handlers.NewJobsHandler(d.JobStore, d.Log)

	r := mux.NewRouter()
	r.Use(middleware.Metrics(rec))

	// Health check and metrics stay outside the identity check.
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"backend": d.Backend,
			"offline": d.Ledger.Offline(),
		})
	}).Methods(http.MethodGet)
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler).Methods(http.MethodGet)
	}

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.Identity(d.RequireAuth))

	apiRouter.HandleFunc("/accounts", accountsHandler.ListAccounts).Methods(http.MethodGet)
	apiRouter.HandleFunc("/accounts", accountsHandler.CreateAccount).Methods(http.MethodPost)
	apiRouter.HandleFunc("/accounts/{id}", accountsHandler.GetAccount).Methods(http.MethodGet)
	apiRouter.HandleFunc("/accounts/{id}", accountsHandler.UpdateAccount).Methods(http.MethodPut)
	apiRouter.HandleFunc("/accounts/{id}", accountsHandler.DeleteAccount).Methods(http.MethodDelete)

	apiRouter.HandleFunc("/transactions", transactionsHandler.ListTransactions).Methods(http.MethodGet)
	apiRouter.HandleFunc("/transactions", transactionsHandler.CreateTransaction).Methods(http.MethodPost)
	apiRouter.HandleFunc("/transactions/{id}", transactionsHandler.DeleteTransaction).Methods(http.MethodDelete)

	apiRouter.HandleFunc("/categories", categoriesHandler.ListCategories).Methods(http.MethodGet)
	apiRouter.HandleFunc("/dashboard", reportsHandler.Dashboard).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports", reportsHandler.Report).Methods(http.MethodGet)
	apiRouter.HandleFunc("/summary", reportsHandler.Summary).Methods(http.MethodGet)

	apiRouter.HandleFunc("/advice", adviceHandler.RequestAdvice).Methods(http.MethodPost)
	apiRouter.HandleFunc("/advice/{id}", adviceHandler.GetAdvice).Methods(http.MethodGet)
	apiRouter.HandleFunc("/jobs", jobsHandler.ListJobs).Methods(http.MethodGet)

	// Apply middleware (order matters: outer to inner)
	return middleware.Recovery(d.Log)(
		middleware.RequestID(
			middleware.Logger(d.Log)(
				middleware.CORS(r),
			),
		),
	)
}
