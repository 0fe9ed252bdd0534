package backend

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ledger-dashboard/internal/config"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/infra/localfile"
	"github.com/dvloznov/ledger-dashboard/internal/infra/sqlite"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", GCSBucket: "b"})
	if err != nil {
		t.Fatalf("FromAppConfig failed: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.GCSBucket != "b" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"file without dir", Config{Type: FileBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"gcs without bucket", Config{Type: GCSBackend}, true},
		{"bigquery without project", Config{Type: BigQueryBackend}, true},
		{"unknown", Config{Type: "s3"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenLocalBackends(t *testing.T) {
	ctx := context.Background()
	log := zerolog.New(io.Discard)
	dir := t.TempDir()

	tests := []struct {
		name  string
		cfg   Config
		check func(t *testing.T, repo persistence.Repository)
	}{
		{
			name: "memory",
			cfg:  Config{Type: MemoryBackend},
			check: func(t *testing.T, repo persistence.Repository) {
				if _, ok := repo.(*persistence.Memory); !ok {
					t.Errorf("expected *persistence.Memory, got %T", repo)
				}
			},
		},
		{
			name: "file",
			cfg:  Config{Type: FileBackend, DataDir: filepath.Join(dir, "files")},
			check: func(t *testing.T, repo persistence.Repository) {
				if _, ok := repo.(*localfile.Repository); !ok {
					t.Errorf("expected *localfile.Repository, got %T", repo)
				}
			},
		},
		{
			name: "sqlite",
			cfg:  Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "ledger.db")},
			check: func(t *testing.T, repo persistence.Repository) {
				if _, ok := repo.(*sqlite.Repository); !ok {
					t.Errorf("expected *sqlite.Repository, got %T", repo)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := Open(ctx, tt.cfg, log)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer repo.Close()
			tt.check(t, repo)

			if _, err := repo.Load(ctx); !errors.Is(err, persistence.ErrNoSnapshot) {
				t.Errorf("fresh backend should have no snapshot, got %v", err)
			}
			snap := domain.Snapshot{Accounts: []domain.Account{{ID: "1", Name: "main", Institution: "bank", Currency: "TWD"}}}
			if err := repo.Save(ctx, snap); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := repo.Load(ctx)
			if err != nil || len(got.Accounts) != 1 {
				t.Errorf("Load after Save = %+v, %v", got, err)
			}
		})
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	if _, err := Open(context.Background(), Config{Type: GCSBackend}, zerolog.Nop()); err == nil {
		t.Error("expected error for gcs without bucket")
	}
}
