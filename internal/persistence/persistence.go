// Package persistence defines how snapshots of the record store are stored.
package persistence

import (
	"context"
	"errors"
	"sync"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Repository loads and saves the full record state.
// Save either stores the whole snapshot or returns an error; a failed Save
// must not leave a partially written snapshot visible to Load.
type Repository interface {
	// Load returns the last saved snapshot or ErrNoSnapshot.
	Load(ctx context.Context) (domain.Snapshot, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap domain.Snapshot) error

	// Close releases backend resources.
	Close() error
}

// Memory keeps the snapshot in process memory. It is used for offline mode and tests.
type Memory struct {
	mu    sync.RWMutex
	snap  domain.Snapshot
	saved bool
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{}
}

// Load implements Repository.
func (m *Memory) Load(ctx context.Context) (domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.saved {
		return domain.Snapshot{}, ErrNoSnapshot
	}
	return m.snap.Clone(), nil
}

// Save implements Repository.
func (m *Memory) Save(ctx context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	m.saved = true
	return nil
}

// Close implements Repository.
func (m *Memory) Close() error {
	return nil
}

var _ Repository = (*Memory)(nil)
