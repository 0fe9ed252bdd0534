// Package notionsync exports the ledger's accounts and transactions to two
// Notion databases. Notion is a read-only mirror: every sync makes the
// databases match the snapshot and archives pages for deleted records.
package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/logger"
)

const (
	// BatchSize defines the number of records to process in a single batch
	BatchSize = 100

	// queryPageSize is the largest page size the Notion API accepts.
	queryPageSize = 100
)

// Config names the target databases. An empty id skips that database.
type Config struct {
	AccountsDatabaseID     string
	TransactionsDatabaseID string
	DryRun                 bool
}

// Stats counts what a sync did (or would do, in dry-run mode).
type Stats struct {
	Created  int
	Updated  int
	Archived int
	Failed   int
}

func (s *Stats) add(o Stats) {
	s.Created += o.Created
	s.Updated += o.Updated
	s.Archived += o.Archived
	s.Failed += o.Failed
}

// Result holds per-database stats.
type Result struct {
	Accounts     Stats
	Transactions Stats
}

// Total sums both databases.
func (r Result) Total() Stats {
	var total Stats
	total.add(r.Accounts)
	total.add(r.Transactions)
	return total
}

// record is one row to mirror, keyed by its ledger id.
type record struct {
	key   string
	props notionapi.Properties
}

// Sync mirrors snap into the databases named by cfg.
// Failures on single pages are counted and logged, not returned.
func Sync(ctx context.Context, notionClient NotionService, cfg Config, snap domain.Snapshot) (Result, error) {
	var result Result

	if cfg.AccountsDatabaseID != "" {
		stats, err := SyncAccounts(ctx, notionClient, cfg.AccountsDatabaseID, snap.Accounts, cfg.DryRun)
		if err != nil {
			return result, err
		}
		result.Accounts = stats
	}

	if cfg.TransactionsDatabaseID != "" {
		stats, err := SyncTransactions(ctx, notionClient, cfg.TransactionsDatabaseID, snap, cfg.DryRun)
		if err != nil {
			return result, err
		}
		result.Transactions = stats
	}

	return result, nil
}

// SyncAccounts mirrors accounts into notionDBID.
func SyncAccounts(ctx context.Context, notionClient NotionService, notionDBID string, accounts []domain.Account, dryRun bool) (Stats, error) {
	records := make([]record, 0, len(accounts))
	for _, acc := range accounts {
		records = append(records, record{key: acc.ID, props: AccountToNotionProperties(acc)})
	}

	stats, err := syncRecords(ctx, notionClient, notionDBID, "account", records, extractAccountID, dryRun)
	if err != nil {
		return stats, fmt.Errorf("SyncAccounts: %w", err)
	}
	return stats, nil
}

// SyncTransactions mirrors snap.Transactions into notionDBID, resolving
// account names from snap.Accounts.
func SyncTransactions(ctx context.Context, notionClient NotionService, notionDBID string, snap domain.Snapshot, dryRun bool) (Stats, error) {
	records := make([]record, 0, len(snap.Transactions))
	for _, tx := range snap.Transactions {
		name := domain.AccountName(snap.Accounts, tx.AccountID)
		records = append(records, record{key: tx.ID, props: TransactionToNotionProperties(tx, name)})
	}

	stats, err := syncRecords(ctx, notionClient, notionDBID, "transaction", records, extractTransactionID, dryRun)
	if err != nil {
		return stats, fmt.Errorf("SyncTransactions: %w", err)
	}
	return stats, nil
}

// syncRecords archives pages whose key is missing or unknown, updates pages
// whose key exists and creates pages for the rest.
func syncRecords(ctx context.Context, notionClient NotionService, notionDBID, kind string, records []record, extractKey func(notionapi.Page) string, dryRun bool) (Stats, error) {
	log := logger.FromContext(ctx).With().
		Str("kind", kind).
		Str("database_id", notionDBID).
		Bool("dry_run", dryRun).
		Logger()

	log.Info().Int("record_count", len(records)).Msg("Starting sync to Notion")

	valid := make(map[string]bool, len(records))
	for _, r := range records {
		valid[r.key] = true
	}

	pages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query Notion pages: %w", err)
	}
	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	var stats Stats
	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		key := extractKey(page)
		pageID := string(page.ID)

		// Pages without a key, duplicates and deleted records are archived.
		_, dup := existing[key]
		if key != "" && valid[key] && !dup {
			existing[key] = pageID
			continue
		}

		if dryRun {
			log.Info().Str("key", key).Str("page_id", pageID).Msg("[DRY RUN] Would archive stale Notion page")
			stats.Archived++
			continue
		}
		if err := notionClient.DeletePage(ctx, pageID); err != nil {
			log.Warn().Err(err).Str("key", key).Str("page_id", pageID).Msg("Failed to archive stale Notion page")
			stats.Failed++
			continue
		}
		log.Debug().Str("key", key).Str("page_id", pageID).Msg("Archived stale Notion page")
		stats.Archived++
	}

	for i := 0; i < len(records); i += BatchSize {
		end := i + BatchSize
		if end > len(records) {
			end = len(records)
		}
		log.Debug().Int("batch_start", i).Int("batch_end", end).Msg("Processing batch")

		for _, r := range records[i:end] {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			pageID, ok := existing[r.key]
			if dryRun {
				if ok {
					stats.Updated++
				} else {
					stats.Created++
				}
				continue
			}

			if ok {
				if _, err := notionClient.UpdatePage(ctx, pageID, r.props); err != nil {
					log.Warn().Err(err).Str("key", r.key).Str("page_id", pageID).Msg("Failed to update Notion page")
					stats.Failed++
					continue
				}
				stats.Updated++
				continue
			}

			page, err := notionClient.CreatePage(ctx, notionDBID, r.props)
			if err != nil {
				log.Warn().Err(err).Str("key", r.key).Msg("Failed to create Notion page")
				stats.Failed++
				continue
			}
			log.Debug().Str("key", r.key).Str("page_id", string(page.ID)).Msg("Created Notion page")
			stats.Created++
		}
	}

	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("archived", stats.Archived).
		Int("failed", stats.Failed).
		Msg("Sync completed")

	return stats, nil
}

// queryAllNotionPages follows the query cursor until every page of the
// database has been read.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: queryPageSize,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
