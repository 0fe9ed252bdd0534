// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendGCS      = "gcs"
	BackendBigQuery = "bigquery"
)

// ValidBackends lists every DATA_BACKEND value.
var ValidBackends = []string{BackendMemory, BackendFile, BackendSQLite, BackendGCS, BackendBigQuery}

type Config struct {
	// HTTP Server
	Port        string
	RequireAuth bool

	// Logging
	LogLevel  string
	LogFormat string

	// Backend selection
	DataBackend  string
	DataDir      string
	SQLiteDBPath string
	GCSBucket    string
	GCSObject    string
	GCPProject   string
	BQDataset    string
	SeedDemo     bool

	// Advice
	AdviceProvider string
	AdviceAPIKey   string
	AdviceModel    string
	AdviceBaseURL  string
	AdviceTimeout  time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Notion
	NotionToken          string
	NotionAccountsDB     string
	NotionTransactionsDB string
}

// LoadDotEnv reads path (".env" when empty) into the process environment.
// A missing file is not an error; variables already set are left alone.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("LoadDotEnv: %w", err)
	}
	return nil
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		RequireAuth: getEnvBool("REQUIRE_AUTH", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		DataBackend:  getEnv("DATA_BACKEND", BackendFile),
		DataDir:      getEnv("DATA_DIR", "./data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),
		GCSBucket:    getEnv("GCS_BUCKET", ""),
		GCSObject:    getEnv("GCS_OBJECT", "ledger/snapshot.json"),
		GCPProject:   getEnv("GCP_PROJECT", ""),
		BQDataset:    getEnv("BQ_DATASET", "ledger"),
		SeedDemo:     getEnvBool("SEED_DEMO", false),

		AdviceProvider: getEnv("ADVICE_PROVIDER", "gemini"),
		AdviceAPIKey:   getEnv("ADVICE_API_KEY", os.Getenv("API_KEY")),
		AdviceModel:    getEnv("ADVICE_MODEL", ""),
		AdviceBaseURL:  getEnv("ADVICE_BASE_URL", ""),
		AdviceTimeout:  getEnvDuration("ADVICE_TIMEOUT", 30*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "advice_jobs"),

		NotionToken:          getEnv("NOTION_TOKEN", ""),
		NotionAccountsDB:     getEnv("NOTION_ACCOUNTS_DB", ""),
		NotionTransactionsDB: getEnv("NOTION_TRANSACTIONS_DB", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'console' or 'json'", c.LogFormat))
	}

	isValidBackend := false
	for _, backend := range ValidBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, ValidBackends))
	}

	switch c.DataBackend {
	case BackendFile:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendGCS:
		if c.GCSBucket == "" {
			errors = append(errors, "GCS bucket is required when using gcs backend")
		}
	case BackendBigQuery:
		if c.GCPProject == "" {
			errors = append(errors, "GCP project is required when using bigquery backend")
		}
		if c.BQDataset == "" {
			errors = append(errors, "BigQuery dataset cannot be empty when using bigquery backend")
		}
	}

	switch c.AdviceProvider {
	case "gemini", "openai":
	default:
		errors = append(errors, fmt.Sprintf("invalid advice provider '%s': must be 'gemini' or 'openai'", c.AdviceProvider))
	}
	if c.AdviceTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid advice timeout %v: must be positive", c.AdviceTimeout))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
