// Package config resolves runtime settings from built-in defaults, an
// optional YAML file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"moneytracker/internal/log"
)

const (
	AppDir = "moneytracker"

	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendSheets = "sheets"
	BackendMemory = "memory"

	// ConfigEnv names the variable holding a config file path when none is
	// passed on the command line.
	ConfigEnv = "MONEYTRACKER_CONFIG"
)

var validBackends = []string{BackendFile, BackendMemory, BackendSheets, BackendSQLite}

type Config struct {
	// Backend selection
	DataBackend string `yaml:"data_backend"`

	// Local storage
	SQLiteDBPath   string `yaml:"sqlite_db_path"`
	LedgerFilePath string `yaml:"ledger_file_path"`

	// Google Sheets
	GoogleSpreadsheetID      string `yaml:"google_spreadsheet_id"`
	GoogleServiceAccountJSON string `yaml:"google_service_account_json"`
	GoogleServiceAccountFile string `yaml:"google_service_account_file"`
	GoogleTransactionsSheet  string `yaml:"google_transactions_sheet"`
	GoogleCategoriesSheet    string `yaml:"google_categories_sheet"`

	// AMQP ledger events; an empty URL disables them
	AMQPURL            string        `yaml:"amqp_url"`
	AMQPExchange       string        `yaml:"amqp_exchange"`
	AMQPRoutingKey     string        `yaml:"amqp_routing_key"`
	AMQPConnectTimeout time.Duration `yaml:"amqp_connect_timeout"`

	// Report cache; a size of 0 disables it
	ReportCacheSize int           `yaml:"report_cache_size"`
	ReportCacheTTL  time.Duration `yaml:"report_cache_ttl"`

	// Presentation
	LogLevel string `yaml:"log_level"`
	NoColor  bool   `yaml:"no_color"`

	// Source is the YAML file the config was read from, if any.
	Source string `yaml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	dataDir := filepath.Join(xdg.DataHome, AppDir)
	return &Config{
		DataBackend:             BackendSQLite,
		SQLiteDBPath:            filepath.Join(dataDir, "ledger.db"),
		LedgerFilePath:          filepath.Join(dataDir, "ledger.txt"),
		GoogleTransactionsSheet: "Transactions",
		GoogleCategoriesSheet:   "Categories",
		AMQPExchange:            "moneytracker",
		AMQPRoutingKey:          "ledger_events",
		AMQPConnectTimeout:      10 * time.Second,
		ReportCacheSize:         12,
		ReportCacheTTL:          10 * time.Minute,
		LogLevel:                "warn",
	}
}

// DefaultPath is where Load looks for a config file when none is named.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppDir, "config.yaml")
}

// Load builds the configuration. path names a YAML file that must exist;
// when empty, $MONEYTRACKER_CONFIG is used, then DefaultPath if present.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	required := true
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		path, required = DefaultPath(), false
	}

	if err := cfg.loadFile(path, required); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.Source = path
	return nil
}

func (c *Config) applyEnv() {
	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.LedgerFilePath = getEnv("LEDGER_FILE_PATH", c.LedgerFilePath)

	c.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", c.GoogleSpreadsheetID)
	c.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", c.GoogleServiceAccountJSON)
	c.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", c.GoogleServiceAccountFile)
	c.GoogleTransactionsSheet = getEnv("GOOGLE_TRANSACTIONS_SHEET", c.GoogleTransactionsSheet)
	c.GoogleCategoriesSheet = getEnv("GOOGLE_CATEGORIES_SHEET", c.GoogleCategoriesSheet)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPRoutingKey = getEnv("AMQP_ROUTING_KEY", c.AMQPRoutingKey)
	c.AMQPConnectTimeout = getEnvDuration("AMQP_CONNECT_TIMEOUT", c.AMQPConnectTimeout)

	c.ReportCacheSize = getEnvInt("REPORT_CACHE_SIZE", c.ReportCacheSize)
	c.ReportCacheTTL = getEnvDuration("REPORT_CACHE_TTL", c.ReportCacheTTL)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if os.Getenv("NO_COLOR") != "" {
		c.NoColor = true
	}
}

// EventsEnabled reports whether ledger events should be published.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate data backend
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendFile:
		if c.LedgerFilePath == "" {
			errors = append(errors, "ledger file path cannot be empty when using file backend")
		}
	case BackendSheets:
		errors = append(errors, c.validateSheets()...)
	}

	// Validate AMQP settings if events are enabled
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
		if c.AMQPConnectTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("invalid AMQP connect timeout %v: must be positive", c.AMQPConnectTimeout))
		}
	}

	// Validate report cache
	if c.ReportCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must not be negative", c.ReportCacheSize))
	}
	if c.ReportCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: must not be negative", c.ReportCacheTTL))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func (c *Config) validateSheets() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
	}
	if c.GoogleTransactionsSheet == "" || c.GoogleCategoriesSheet == "" {
		errors = append(errors, "Google sheet names cannot be empty when using sheets backend")
	} else if c.GoogleTransactionsSheet == c.GoogleCategoriesSheet {
		errors = append(errors, fmt.Sprintf("transactions and categories must use different sheets, both are '%s'", c.GoogleTransactionsSheet))
	}

	hasFile := c.GoogleServiceAccountFile != ""
	hasJSON := c.GoogleServiceAccountJSON != ""
	if !hasFile && !hasJSON {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets backend")
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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
