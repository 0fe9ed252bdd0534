// Package gcsstore keeps the ledger snapshot as a single JSON object in a bucket.
package gcsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/gcs"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"
)

// DefaultObject is used when no object name is configured.
const DefaultObject = "ledger/snapshot.json"

type object struct {
	SavedAt      int64                `json:"savedAt"`
	Accounts     []domain.Account     `json:"accounts"`
	Transactions []domain.Transaction `json:"transactions"`
}

// Repository implements persistence.Repository on top of a StorageService.
// An object upload only becomes visible once finalized, so a failed Save
// leaves the previous object in place.
type Repository struct {
	storage gcs.StorageService
	bucket  string
	object  string
	now     func() time.Time
	closeFn func() error
}

// Option configures a Repository.
type Option func(*Repository)

// WithCloser registers a function run by Close, typically the storage client's Close.
func WithCloser(fn func() error) Option {
	return func(r *Repository) { r.closeFn = fn }
}

// NewRepository creates a repository writing to gs://bucket/object.
func NewRepository(storage gcs.StorageService, bucket, object string, opts ...Option) (*Repository, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewRepository: bucket is required")
	}
	if object == "" {
		object = DefaultObject
	}
	r := &Repository{storage: storage, bucket: bucket, object: object, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// URI returns the object location.
func (r *Repository) URI() string {
	return gcs.URI(r.bucket, r.object)
}

// Load implements persistence.Repository.
func (r *Repository) Load(ctx context.Context) (domain.Snapshot, error) {
	data, err := r.storage.Download(ctx, r.bucket, r.object)
	if errors.Is(err, gcs.ErrObjectNotFound) {
		return domain.Snapshot{}, persistence.ErrNoSnapshot
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("Load: %w", err)
	}

	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return domain.Snapshot{}, fmt.Errorf("Load: decoding %s: %w", r.URI(), err)
	}
	return domain.Snapshot{Accounts: obj.Accounts, Transactions: obj.Transactions}, nil
}

// Save implements persistence.Repository.
func (r *Repository) Save(ctx context.Context, snap domain.Snapshot) error {
	obj := object{
		SavedAt:      r.now().UnixMilli(),
		Accounts:     snap.Accounts,
		Transactions: snap.Transactions,
	}
	if obj.Accounts == nil {
		obj.Accounts = []domain.Account{}
	}
	if obj.Transactions == nil {
		obj.Transactions = []domain.Transaction{}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("Save: encoding snapshot: %w", err)
	}
	if err := r.storage.Upload(ctx, r.bucket, r.object, data, "application/json"); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// Close implements persistence.Repository.
func (r *Repository) Close() error {
	if r.closeFn != nil {
		return r.closeFn()
	}
	return nil
}

var _ persistence.Repository = (*Repository)(nil)
