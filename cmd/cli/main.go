package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/advice"
	"github.com/dvloznov/ledger-dashboard/internal/backend"
	"github.com/dvloznov/ledger-dashboard/internal/config"
	"github.com/dvloznov/ledger-dashboard/internal/domain"
	"github.com/dvloznov/ledger-dashboard/internal/filter"
	"github.com/dvloznov/ledger-dashboard/internal/ledger"
	"github.com/dvloznov/ledger-dashboard/internal/logger"
	"github.com/dvloznov/ledger-dashboard/internal/metrics"
	"github.com/rs/zerolog"
)

type command struct {
	name string
	help string
	run  func(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string)
}

var commands = []command{
	{name: "accounts", help: "List accounts", run: runAccounts},
	{name: "add-account", help: "Create an account", run: runAddAccount},
	{name: "update-account", help: "Edit an account", run: runUpdateAccount},
	{name: "remove-account", help: "Delete an account (its transactions are kept)", run: runRemoveAccount},
	{name: "transactions", help: "List transactions, optionally filtered", run: runTransactions},
	{name: "add-tx", help: "Record an income or expense", run: runAddTransaction},
	{name: "remove-tx", help: "Delete a transaction", run: runRemoveTransaction},
	{name: "categories", help: "Show the category taxonomy", run: runCategories},
	{name: "dashboard", help: "Show totals, this month and the 7-day trend", run: runDashboard},
	{name: "report", help: "Show the expense breakdown", run: runReport},
	{name: "summary", help: "Print the financial summary text", run: runSummary},
	{name: "advice", help: "Ask the advisor about the current summary", run: runAdvice},
	{name: "seed-demo", help: "Replace all records with demo data", run: runSeedDemo},
}

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage()
		return
	}

	cmd, ok := findCommand(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := config.LoadDotEnv(""); err != nil {
		log.Fatal().Err(err).Msg("Failed to load env file")
	}
	cfg := config.Load()
	log = logger.NewWithConfig(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Out: os.Stderr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc := openLedger(ctx, cfg, log)
	defer svc.Close()

	cmd.run(ctx, svc, cfg, log, os.Args[2:])

	if svc.Offline() {
		fmt.Fprintln(os.Stderr, "Warning: storage backend is unavailable; changes in this run were not saved.")
	}
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage() {
	fmt.Println("Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	for _, c := range commands {
		fmt.Printf("  %-15s %s\n", c.name, c.help)
	}
	fmt.Printf("  %-15s %s\n", "help", "Show this help message")
	fmt.Println("\nThe storage backend is selected with DATA_BACKEND (memory, file, sqlite, gcs, bigquery).")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

func openLedger(ctx context.Context, cfg *config.Config, log zerolog.Logger) *ledger.Service {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid backend configuration")
	}
	repo, err := backend.Open(ctx, backendCfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open backend")
	}

	svc := ledger.NewService(repo, log,
		ledger.WithBackendName(string(backendCfg.Type)),
		ledger.WithSeedDemo(cfg.SeedDemo),
	)
	if err := svc.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}
	return svc
}

func runAccounts(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("accounts", flag.ExitOnError)
	fs.Parse(args)

	printAccounts(os.Stdout, svc.Snapshot().Accounts)
}

func accountFlags(fs *flag.FlagSet) (name, bank *string, balance *float64, currency *string) {
	name = fs.String("name", "", "Account name")
	bank = fs.String("bank", "", "Bank name")
	balance = fs.Float64("balance", 0, "Current balance")
	currency = fs.String("currency", domain.DefaultCurrency, "Currency code")
	return name, bank, balance, currency
}

func runAddAccount(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("add-account", flag.ExitOnError)
	name, bank, balance, currency := accountFlags(fs)
	fs.Parse(args)

	acc, err := svc.AddAccount(ctx, domain.AccountInput{Name: *name, Institution: *bank, Balance: *balance, Currency: *currency})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add account")
	}
	fmt.Printf("Created account %s (%s)\n", acc.ID, acc.Name)
}

func runUpdateAccount(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("update-account", flag.ExitOnError)
	id := fs.String("id", "", "Account ID")
	name, bank, balance, currency := accountFlags(fs)
	fs.Parse(args)

	if *id == "" {
		log.Fatal().Msg("Error: -id is required")
	}

	acc, err := svc.UpdateAccount(ctx, *id, domain.AccountInput{Name: *name, Institution: *bank, Balance: *balance, Currency: *currency})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to update account")
	}
	fmt.Printf("Updated account %s (%s)\n", acc.ID, acc.Name)
}

func runRemoveAccount(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("remove-account", flag.ExitOnError)
	id := fs.String("id", "", "Account ID")
	fs.Parse(args)

	if err := svc.RemoveAccount(ctx, *id); err != nil {
		log.Fatal().Err(err).Msg("Failed to remove account")
	}
	fmt.Printf("Removed account %s\n", *id)
}

func runTransactions(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	txType := fs.String("type", string(domain.TypeAll), "INCOME, EXPENSE or ALL")
	query := fs.String("q", "", "Search text matched against note and category")
	fs.Parse(args)

	criteria, err := parseCriteria(*txType, *query)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid filter")
	}
	printRows(os.Stdout, svc.Filter(criteria))
}

func runAddTransaction(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("add-tx", flag.ExitOnError)
	accountID := fs.String("account", "", "Account ID")
	amount := fs.Float64("amount", 0, "Positive amount")
	txType := fs.String("type", string(domain.TypeExpense), "INCOME or EXPENSE")
	category := fs.String("category", "", "Category (defaults to the first category of the type)")
	note := fs.String("note", "", "Free-text note")
	date := fs.String("date", "", "Date as YYYY-MM-DD (defaults to now)")
	fs.Parse(args)

	t, err := domain.ParseTransactionType(*txType)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid type")
	}
	if *category == "" {
		*category = domain.DefaultCategory(t)
	}
	when, err := parseDate(*date)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid date")
	}

	tx, err := svc.AddTransaction(ctx, domain.TransactionInput{
		AccountID: *accountID,
		Amount:    *amount,
		Type:      t,
		Category:  *category,
		Note:      *note,
		Date:      when,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add transaction")
	}
	fmt.Printf("Recorded %s %s %s (%s)\n", tx.Type, formatAmount(tx.SignedAmount()), tx.Category, tx.ID)
}

func runRemoveTransaction(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("remove-tx", flag.ExitOnError)
	id := fs.String("id", "", "Transaction ID")
	fs.Parse(args)

	if err := svc.RemoveTransaction(ctx, *id); err != nil {
		log.Fatal().Err(err).Msg("Failed to remove transaction")
	}
	fmt.Printf("Removed transaction %s\n", *id)
}

func runCategories(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	printCategories(os.Stdout)
}

func runDashboard(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	printDashboard(os.Stdout, svc.Dashboard())
}

func runReport(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	printReport(os.Stdout, svc.Report())
}

func runSummary(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	fmt.Println(svc.Summary())
}

func runAdvice(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("advice", flag.ExitOnError)
	provider := fs.String("provider", cfg.AdviceProvider, "Advice provider: gemini or openai")
	model := fs.String("model", cfg.AdviceModel, "Model name (provider default when empty)")
	fs.Parse(args)

	advisor, err := advice.New(ctx, advice.Config{
		Provider: *provider,
		APIKey:   cfg.AdviceAPIKey,
		Model:    *model,
		BaseURL:  cfg.AdviceBaseURL,
		Timeout:  cfg.AdviceTimeout,
	}, log, metrics.NoOp{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create advisor")
	}

	res := advisor.Advise(ctx, svc.Summary())
	fmt.Println(res.Text)
	if res.Failed {
		os.Exit(2)
	}
}

func runSeedDemo(ctx context.Context, svc *ledger.Service, cfg *config.Config, log zerolog.Logger, args []string) {
	if err := svc.SeedDemo(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo data")
	}
	snap := svc.Snapshot()
	fmt.Printf("Seeded %d accounts and %d transactions\n", len(snap.Accounts), len(snap.Transactions))
}

func parseCriteria(txType, query string) (filter.Criteria, error) {
	c := filter.Criteria{Type: domain.TypeAll, Query: query}
	if txType == "" || strings.EqualFold(txType, string(domain.TypeAll)) {
		return c, nil
	}
	t, err := domain.ParseTransactionType(txType)
	if err != nil {
		return filter.Criteria{}, err
	}
	c.Type = t
	return c, nil
}

// parseDate reads YYYY-MM-DD in local time. An empty string is the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parseDate: %q: %w", s, err)
	}
	return t, nil
}
