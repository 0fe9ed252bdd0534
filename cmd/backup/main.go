package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/backend"
	"github.com/dvloznov/ledger-dashboard/internal/config"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/gcs"
	"github.com/dvloznov/ledger-dashboard/internal/gcsuploader"
	"github.com/dvloznov/ledger-dashboard/internal/infra/gcsstore"
	"github.com/dvloznov/ledger-dashboard/internal/logger"
	"github.com/dvloznov/ledger-dashboard/internal/persistence"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	var (
		toURI   string
		fromURI string
	)

	flag.StringVar(&toURI, "to", "", "GCS URI to write the backup to (e.g. gs://bucket/backups/ledger.json)")
	flag.StringVar(&fromURI, "from", "", "GCS URI of a backup to restore into the configured backend")
	flag.Parse()

	if (toURI == "") == (fromURI == "") {
		log.Fatal().Msg("Usage: backup -to gs://BUCKET/OBJECT | -from gs://BUCKET/OBJECT")
	}

	if err := config.LoadDotEnv(""); err != nil {
		log.Fatal().Err(err).Msg("Failed to load env file")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	uri := toURI
	if uri == "" {
		uri = fromURI
	}
	bucket, object, err := gcs.ParseURI(uri)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid backup location")
	}

	storage, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	archive, err := gcsstore.NewRepository(storage, bucket, object, gcsstore.WithCloser(storage.Close))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open backup location")
	}
	defer archive.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid backend configuration")
	}
	if backendCfg.Type == backend.MemoryBackend {
		log.Fatal().Msg("The memory backend has nothing to back up or restore into")
	}
	repo, err := backend.Open(ctx, backendCfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open backend")
	}
	defer repo.Close()

	from, to := persistence.Repository(repo), persistence.Repository(archive)
	action := "Backed up"
	if fromURI != "" {
		from, to = archive, repo
		action = "Restored"
	}

	log.Info().
		Str("uri", archive.URI()).
		Str("backend", string(backendCfg.Type)).
		Bool("restore", fromURI != "").
		Msg("Copying ledger snapshot")

	snap, err := copySnapshot(ctx, from, to)
	if err != nil {
		log.Fatal().Err(err).Msg("Copy failed")
	}

	fmt.Printf("%s %d accounts and %d transactions (%s)\n",
		action, len(snap.Accounts), len(snap.Transactions), archive.URI())
}

// copySnapshot loads the snapshot from src and saves it to dst unchanged.
func copySnapshot(ctx context.Context, src, dst persistence.Repository) (domain.Snapshot, error) {
	snap, err := src.Load(ctx)
	if errors.Is(err, persistence.ErrNoSnapshot) {
		return domain.Snapshot{}, fmt.Errorf("copySnapshot: source is empty: %w", err)
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("copySnapshot: load: %w", err)
	}
	if err := dst.Save(ctx, snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("copySnapshot: save: %w", err)
	}
	return snap, nil
}
