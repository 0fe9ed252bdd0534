package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/backend"
	"github.com/dvloznov/ledger-dashboard/internal/config"
	"github.com/dvloznov/ledger-dashboard/internal/ledger"
	"github.com/dvloznov/ledger-dashboard/internal/logger"
	"github.com/dvloznov/ledger-dashboard/internal/notionsync"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	if err := config.LoadDotEnv(""); err != nil {
		log.Fatal().Err(err).Msg("Failed to load env file")
	}
	cfg := config.Load()

	// Parse CLI flags
	notionToken := flag.String("notion-token", cfg.NotionToken, "Notion API token (or set NOTION_TOKEN)")
	accountsDB := flag.String("accounts-db-id", cfg.NotionAccountsDB, "Notion accounts database ID (or set NOTION_ACCOUNTS_DB)")
	transactionsDB := flag.String("transactions-db-id", cfg.NotionTransactionsDB, "Notion transactions database ID (or set NOTION_TRANSACTIONS_DB)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	// Validate required flags
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *accountsDB == "" && *transactionsDB == "" {
		log.Fatal().Msg("Error: at least one of --accounts-db-id and --transactions-db-id is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	// Load the snapshot from the configured backend
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid backend configuration")
	}
	repo, err := backend.Open(ctx, backendCfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open backend")
	}
	svc := ledger.NewService(repo, log, ledger.WithBackendName(string(backendCfg.Type)))
	if err := svc.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}
	defer svc.Close()

	if svc.Offline() {
		log.Fatal().Msg("Backend is unavailable; refusing to sync because it would archive every Notion page")
	}

	snap := svc.Snapshot()
	log.Info().
		Int("accounts", len(snap.Accounts)).
		Int("transactions", len(snap.Transactions)).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	notionClient := notionsync.NewNotionClient(*notionToken)

	result, err := notionsync.Sync(ctx, notionClient, notionsync.Config{
		AccountsDatabaseID:     *accountsDB,
		TransactionsDatabaseID: *transactionsDB,
		DryRun:                 *dryRun,
	}, snap)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	total := result.Total()
	fmt.Printf("Sync completed: %d created, %d updated, %d archived, %d failed.\n",
		total.Created, total.Updated, total.Archived, total.Failed)
}
