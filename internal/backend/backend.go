// Package backend opens the persistence.Repository selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	bq "github.com/dvloznov/ledger-dashboard/internal/bigquery"
	"github.com/dvloznov/ledger-dashboard/internal/config"
	"github.com/dvloznov/ledger-dashboard/internal/gcsuploader"
	bqrepo "github.com/dvloznov/ledger-dashboard/internal/infra/bigquery"
	"github.com/dvloznov/ledger-dashboard/internal/infra/gcsstore"
	"github.com/dvloznov/ledger-dashboard/internal/infra/localfile"
	"github.com/dvloznov/ledger-dashboard/internal/infra/sqlite"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"
)

// BackendType names a storage implementation.
type BackendType string

const (
	MemoryBackend   BackendType = config.BackendMemory
	FileBackend     BackendType = config.BackendFile
	SQLiteBackend   BackendType = config.BackendSQLite
	GCSBackend      BackendType = config.BackendGCS
	BigQueryBackend BackendType = config.BackendBigQuery
)

// IsValid reports whether the backend type is supported.
func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, FileBackend, SQLiteBackend, GCSBackend, BigQueryBackend:
		return true
	}
	return false
}

// Config holds the settings every backend may need.
type Config struct {
	Type BackendType

	DataDir      string
	SQLiteDBPath string
	GCSBucket    string
	GCSObject    string
	GCPProject   string
	BQDataset    string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		DataDir:      appConfig.DataDir,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		GCSBucket:    appConfig.GCSBucket,
		GCSObject:    appConfig.GCSObject,
		GCPProject:   appConfig.GCPProject,
		BQDataset:    appConfig.BQDataset,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case GCSBackend:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS bucket is required for gcs backend")
		}
	case BigQueryBackend:
		if c.GCPProject == "" {
			return fmt.Errorf("GCP project is required for bigquery backend")
		}
	case FileBackend, MemoryBackend:
		// DataDir defaults to the working directory when empty
	}
	return nil
}

// Open creates the repository for cfg.Type.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (persistence.Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	switch cfg.Type {
	case MemoryBackend:
		log.Info().Msg("Using in-memory backend; data is lost on exit")
		return persistence.NewMemory(), nil

	case FileBackend:
		repo, err := localfile.NewRepository(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		log.Info().Str("path", repo.Path()).Msg("Using local file backend")
		return repo, nil

	case SQLiteBackend:
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		log.Info().Str("db_path", cfg.SQLiteDBPath).Msg("Using SQLite backend")
		return repo, nil

	case GCSBackend:
		svc, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		repo, err := gcsstore.NewRepository(svc, cfg.GCSBucket, cfg.GCSObject, gcsstore.WithCloser(svc.Close))
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("Open: %w", err)
		}
		log.Info().Str("uri", repo.URI()).Msg("Using Cloud Storage backend")
		return repo, nil

	case BigQueryBackend:
		repo, err := bqrepo.NewRepository(ctx, bq.Dataset{ProjectID: cfg.GCPProject, DatasetID: cfg.BQDataset})
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		log.Info().Str("project", cfg.GCPProject).Str("dataset", cfg.BQDataset).Msg("Using BigQuery backend")
		return repo, nil
	}

	return nil, fmt.Errorf("Open: unsupported backend %s", cfg.Type)
}
