package store

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/google/uuid"
)

// Store owns the account and transaction collections in memory.
// It is safe for concurrent use. Every accessor returns copies.
// A failed mutation leaves both collections unchanged.
type Store struct {
	mu           sync.RWMutex
	accounts     []domain.Account
	transactions []domain.Transaction
	now          func() time.Time
	newID        func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the source of "now" used for createdAt and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the store content with a copy of snap.
func (s *Store) Load(snap domain.Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	clone := snap.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = clone.Accounts
	s.transactions = clone.Transactions
	return nil
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Snapshot{Accounts: s.accounts, Transactions: s.transactions}.Clone()
}

// Accounts returns the accounts in insertion order.
func (s *Store) Accounts() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// Transactions returns the transactions, most recently added first.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Account looks up an account by id.
func (s *Store) Account(id string) (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ResolveAccount(s.accounts, id)
}

// Transaction looks up a transaction by id.
func (s *Store) Transaction(id string) (domain.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.transactionIndex(id)
	if i < 0 {
		return domain.Transaction{}, false
	}
	return s.transactions[i], true
}

// ResolveAccountName returns the account name for id or the unknown-account placeholder.
func (s *Store) ResolveAccountName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.AccountName(s.accounts, id)
}

// AddAccount validates in and appends a new account.
func (s *Store) AddAccount(in domain.AccountInput) (domain.Account, error) {
	in, err := normalizeAccountInput(in)
	if err != nil {
		return domain.Account{}, fmt.Errorf("AddAccount: %w", err)
	}

	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := domain.Account{
		ID:          s.newID(),
		Name:        in.Name,
		Institution: in.Institution,
		Balance:     in.Balance,
		Currency:    currency,
		CreatedAt:   s.now(),
	}
	s.accounts = append(s.accounts, acc)
	return acc, nil
}

// UpdateAccount replaces name, institution and balance of an existing account.
// Currency and CreatedAt are kept.
func (s *Store) UpdateAccount(id string, in domain.AccountInput) (domain.Account, error) {
	in, err := normalizeAccountInput(in)
	if err != nil {
		return domain.Account{}, fmt.Errorf("UpdateAccount: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.accountIndex(id)
	if i < 0 {
		return domain.Account{}, fmt.Errorf("UpdateAccount: %w", domain.NewNotFoundError("account", id))
	}

	acc := s.accounts[i]
	acc.Name = in.Name
	acc.Institution = in.Institution
	acc.Balance = in.Balance
	s.accounts[i] = acc
	return acc, nil
}

// RemoveAccount deletes an account. Transactions that reference it are kept.
func (s *Store) RemoveAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.accountIndex(id)
	if i < 0 {
		return fmt.Errorf("RemoveAccount: %w", domain.NewNotFoundError("account", id))
	}

	next := make([]domain.Account, 0, len(s.accounts)-1)
	next = append(next, s.accounts[:i]...)
	next = append(next, s.accounts[i+1:]...)
	s.accounts = next
	return nil
}

// AddTransaction validates in and stores a new transaction at the head of the collection.
// The account id is not checked against existing accounts.
func (s *Store) AddTransaction(in domain.TransactionInput) (domain.Transaction, error) {
	if err := validateTransactionInput(in); err != nil {
		return domain.Transaction{}, fmt.Errorf("AddTransaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	tx := domain.Transaction{
		ID:        s.newID(),
		AccountID: strings.TrimSpace(in.AccountID),
		Amount:    in.Amount,
		Type:      in.Type,
		Category:  in.Category,
		Note:      in.Note,
		Date:      date,
	}

	next := make([]domain.Transaction, 0, len(s.transactions)+1)
	next = append(next, tx)
	next = append(next, s.transactions...)
	s.transactions = next
	return tx, nil
}

// RemoveTransaction deletes a transaction by id.
func (s *Store) RemoveTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.transactionIndex(id)
	if i < 0 {
		return fmt.Errorf("RemoveTransaction: %w", domain.NewNotFoundError("transaction", id))
	}

	next := make([]domain.Transaction, 0, len(s.transactions)-1)
	next = append(next, s.transactions[:i]...)
	next = append(next, s.transactions[i+1:]...)
	s.transactions = next
	return nil
}

func (s *Store) accountIndex(id string) int {
	for i, a := range s.accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) transactionIndex(id string) int {
	for i, t := range s.transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func normalizeAccountInput(in domain.AccountInput) (domain.AccountInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Institution = strings.TrimSpace(in.Institution)

	if in.Name == "" {
		return in, domain.NewValidationError("name", "must not be empty")
	}
	if in.Institution == "" {
		return in, domain.NewValidationError("bankName", "must not be empty")
	}
	if !isFinite(in.Balance) {
		return in, domain.NewValidationError("balance", "must be a finite number")
	}
	return in, nil
}

func validateTransactionInput(in domain.TransactionInput) error {
	if strings.TrimSpace(in.AccountID) == "" {
		return domain.NewValidationError("accountId", "must not be empty")
	}
	if !isFinite(in.Amount) || in.Amount <= 0 {
		return domain.NewValidationError("amount", "must be a positive number")
	}
	return domain.ValidateCategory(in.Type, in.Category)
}

func validateSnapshot(snap domain.Snapshot) error {
	seen := make(map[string]bool, len(snap.Accounts))
	for _, a := range snap.Accounts {
		if a.ID == "" {
			return fmt.Errorf("Load: %w", domain.NewValidationError("account id", "must not be empty"))
		}
		if seen[a.ID] {
			return fmt.Errorf("Load: %w", domain.NewValidationError("account id", "duplicate id "+a.ID))
		}
		seen[a.ID] = true
		if !isFinite(a.Balance) {
			return fmt.Errorf("Load: account %s: %w", a.ID, domain.NewValidationError("balance", "must be a finite number"))
		}
	}

	seen = make(map[string]bool, len(snap.Transactions))
	for _, t := range snap.Transactions {
		if t.ID == "" {
			return fmt.Errorf("Load: %w", domain.NewValidationError("transaction id", "must not be empty"))
		}
		if seen[t.ID] {
			return fmt.Errorf("Load: %w", domain.NewValidationError("transaction id", "duplicate id "+t.ID))
		}
		seen[t.ID] = true
		if err := validateTransactionInput(domain.TransactionInput{
			AccountID: t.AccountID,
			Amount:    t.Amount,
			Type:      t.Type,
			Category:  t.Category,
		}); err != nil {
			return fmt.Errorf("Load: transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
