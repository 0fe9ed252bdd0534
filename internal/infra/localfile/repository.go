// Package localfile stores snapshots as a JSON document on the local disk.
package localfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"
)

// DefaultFileName is the snapshot file inside the data directory.
const DefaultFileName = "ledger.json"

// document keeps the key names used by the browser demo storage so exported
// data can be dropped in unchanged.
type document struct {
	Accounts     []domain.Account     `json:"demo_accounts"`
	Transactions []domain.Transaction `json:"demo_transactions"`
}

// Repository persists the snapshot to a single file, replaced atomically on Save.
type Repository struct {
	path string
}

// NewRepository creates a repository that writes to dir/DefaultFileName.
// The directory is created if needed.
func NewRepository(dir string) (*Repository, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("NewRepository: create data directory: %w", err)
	}
	return &Repository{path: filepath.Join(dir, DefaultFileName)}, nil
}

// Path returns the snapshot file path.
func (r *Repository) Path() string {
	return r.path
}

// Load implements persistence.Repository.
func (r *Repository) Load(ctx context.Context) (domain.Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Snapshot{}, persistence.ErrNoSnapshot
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("Load: reading %s: %w", r.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Snapshot{}, fmt.Errorf("Load: decoding %s: %w", r.path, err)
	}
	return domain.Snapshot{Accounts: doc.Accounts, Transactions: doc.Transactions}, nil
}

// Save implements persistence.Repository. The file is written to a temporary
// sibling and renamed over the previous snapshot.
func (r *Repository) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	doc := document{Accounts: snap.Accounts, Transactions: snap.Transactions}
	if doc.Accounts == nil {
		doc.Accounts = []domain.Account{}
	}
	if doc.Transactions == nil {
		doc.Transactions = []domain.Transaction{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("Save: encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("Save: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("Save: writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("Save: syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("Save: closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("Save: replacing snapshot: %w", err)
	}
	return nil
}

// Close implements persistence.Repository.
func (r *Repository) Close() error {
	return nil
}

var _ persistence.Repository = (*Repository)(nil)
