// Package ledger ties the record store to a persistence backend.
//
// Every successful mutation saves the full snapshot. When the backend cannot
// be read at startup, or a save fails, the service switches to offline mode:
// records stay in memory and no further saves are attempted.
package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ledger-dashboard/internal/aggregate"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/filter"
	"github.com/dvloznov/ledger-dashboard/internal/metrics"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"
	"github.com/dvloznov/ledger-dashboard/internal/store"
	"github.com/dvloznov/ledger-dashboard/internal/summary"
)

// Service is the application entry point for reading and changing records.
type Service struct {
	store   *store.Store
	repo    persistence.Repository
	backend string
	log     zerolog.Logger
	rec     metrics.Recorder
	now     func() time.Time

	seedDemo bool
	offline  atomic.Bool

	// persistMu orders snapshot+save pairs so the last save holds the latest state.
	persistMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for default dates, views and demo data.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(s *Service) { s.rec = rec }
}

// WithBackendName sets the backend label used in logs and metrics.
func WithBackendName(name string) Option {
	return func(s *Service) { s.backend = name }
}

// WithSeedDemo loads the demo records when nothing has been stored yet.
func WithSeedDemo(seed bool) Option {
	return func(s *Service) { s.seedDemo = seed }
}

// WithStoreOptions passes options to the underlying store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(s *Service) { s.store = store.New(opts...) }
}

// NewService creates a service over repo. Call Start before use.
func NewService(repo persistence.Repository, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		backend: "default",
		log:     log,
		rec:     metrics.NoOp{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = store.New(store.WithClock(s.now))
	}
	if s.repo == nil {
		s.repo = persistence.NewMemory()
	}
	return s
}

// Start loads the last saved snapshot. It never fails because of the backend:
// a missing snapshot starts empty (or with demo data), an unreadable one
// starts offline.
func (s *Service) Start(ctx context.Context) error {
	snap, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, persistence.ErrNoSnapshot):
		if !s.seedDemo {
			s.log.Info().Str("backend", s.backend).Msg("No stored snapshot, starting empty")
			s.updateCounts()
			return nil
		}
		s.log.Info().Str("backend", s.backend).Msg("No stored snapshot, seeding demo data")
		return s.seed(ctx)

	case err != nil:
		s.goOffline(err, "Failed to load snapshot")
		if s.seedDemo {
			return s.store.Load(DemoSnapshot(s.now()))
		}
		return nil
	}

	if err := s.store.Load(snap); err != nil {
		// Keep the stored data untouched; a later save would overwrite it.
		s.goOffline(err, "Stored snapshot is invalid")
		return nil
	}

	s.log.Info().
		Str("backend", s.backend).
		Int("accounts", len(snap.Accounts)).
		Int("transactions", len(snap.Transactions)).
		Msg("Loaded snapshot")
	s.updateCounts()
	return nil
}

// SeedDemo replaces all records with the demo data and saves them.
func (s *Service) SeedDemo(ctx context.Context) error {
	return s.seed(ctx)
}

func (s *Service) seed(ctx context.Context) error {
	if err := s.store.Load(DemoSnapshot(s.now())); err != nil {
		return err
	}
	s.persist(ctx, "seed_demo")
	return nil
}

// Offline reports whether saves are disabled after a backend failure.
func (s *Service) Offline() bool {
	return s.offline.Load()
}

// Close releases the backend.
func (s *Service) Close() error {
	return s.repo.Close()
}

// AddAccount creates an account from in.
func (s *Service) AddAccount(ctx context.Context, in domain.AccountInput) (domain.Account, error) {
	acc, err := s.store.AddAccount(in)
	s.rec.RecordMutation("add_account", err == nil)
	if err != nil {
		return domain.Account{}, err
	}
	s.persist(ctx, "add_account")
	return acc, nil
}

// UpdateAccount edits name, institution and balance of account id.
func (s *Service) UpdateAccount(ctx context.Context, id string, in domain.AccountInput) (domain.Account, error) {
	acc, err := s.store.UpdateAccount(id, in)
	s.rec.RecordMutation("update_account", err == nil)
	if err != nil {
		return domain.Account{}, err
	}
	s.persist(ctx, "update_account")
	return acc, nil
}

// RemoveAccount deletes account id; its transactions are kept.
func (s *Service) RemoveAccount(ctx context.Context, id string) error {
	err := s.store.RemoveAccount(id)
	s.rec.RecordMutation("remove_account", err == nil)
	if err != nil {
		return err
	}
	s.persist(ctx, "remove_account")
	return nil
}

// AddTransaction records a new income or expense.
func (s *Service) AddTransaction(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error) {
	tx, err := s.store.AddTransaction(in)
	s.rec.RecordMutation("add_transaction", err == nil)
	if err != nil {
		return domain.Transaction{}, err
	}
	s.persist(ctx, "add_transaction")
	return tx, nil
}

// RemoveTransaction deletes transaction id.
func (s *Service) RemoveTransaction(ctx context.Context, id string) error {
	err := s.store.RemoveTransaction(id)
	s.rec.RecordMutation("remove_transaction", err == nil)
	if err != nil {
		return err
	}
	s.persist(ctx, "remove_transaction")
	return nil
}

// Snapshot returns a copy of all records.
func (s *Service) Snapshot() domain.Snapshot {
	return s.store.Snapshot()
}

// Account returns account id.
func (s *Service) Account(id string) (domain.Account, error) {
	acc, ok := s.store.Account(id)
	if !ok {
		return domain.Account{}, domain.NewNotFoundError("account", id)
	}
	return acc, nil
}

// Dashboard returns the headline figures at the service clock's current time.
func (s *Service) Dashboard() aggregate.DashboardView {
	return aggregate.Dashboard(s.store.Snapshot(), s.now())
}

// Report returns the all-time category report.
func (s *Service) Report() aggregate.ReportView {
	return aggregate.Report(s.store.Snapshot())
}

// Summary returns the plain-text financial summary handed to the advisor.
func (s *Service) Summary() string {
	snap := s.store.Snapshot()
	return summary.Build(snap.Accounts, snap.Transactions, s.now())
}

// Filter returns transaction rows matching c, newest first.
func (s *Service) Filter(c filter.Criteria) []filter.Row {
	return filter.Rows(s.store.Snapshot(), c)
}

func (s *Service) persist(ctx context.Context, op string) {
	s.updateCounts()
	if s.offline.Load() {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	start := time.Now()
	err := s.repo.Save(ctx, s.store.Snapshot())
	s.rec.RecordPersist(s.backend, err == nil, time.Since(start))
	if err != nil {
		s.goOffline(err, "Failed to save snapshot after "+op)
		return
	}
	s.log.Debug().Str("operation", op).Str("backend", s.backend).Msg("Snapshot saved")
}

func (s *Service) goOffline(err error, msg string) {
	s.offline.Store(true)
	s.log.Error().Err(err).Str("backend", s.backend).Msg(msg + "; continuing in offline mode")
}

func (s *Service) updateCounts() {
	snap := s.store.Snapshot()
	s.rec.SetRecordCounts(len(snap.Accounts), len(snap.Transactions))
}
