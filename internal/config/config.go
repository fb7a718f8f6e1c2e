package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Upstream  UpstreamConfig
	Sheets    SheetsConfig
	Quotation QuotationConfig
	Jobs      JobsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// UpstreamConfig contains credentials and options for the freight ERP REST
// API (enquiries, quotations, reference data, notifications).
type UpstreamConfig struct {
	BaseURL string
	APIKey  string
}

// SheetsConfig contains configuration for the quotation register export.
// An empty SpreadsheetID disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	RegisterRange   string
}

// QuotationConfig tunes the drafting engine.
type QuotationConfig struct {
	HomeCountry        string
	SessionIdleMinutes int
	RefdataCron        string
	RegisterCron       string
}

// JobsConfig tunes the booking wizard.
type JobsConfig struct {
	NumberPrefixAir string
	NumberPrefixSea string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "freightdesk"),
		},
		Upstream: UpstreamConfig{
			BaseURL: os.Getenv("ERP_BASE_URL"),
			APIKey:  os.Getenv("ERP_API_KEY"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("QUOTATION_REGISTER_SHEET_ID"),
			RegisterRange:   getenvWithDefault("QUOTATION_REGISTER_RANGE", "Register!A:H"),
		},
		Quotation: QuotationConfig{
			HomeCountry:        getenvWithDefault("HOME_COUNTRY", "IN"),
			SessionIdleMinutes: getenvIntWithDefault("DRAFT_SESSION_IDLE_MINUTES", 240),
			RefdataCron:        getenvWithDefault("REFDATA_REFRESH_CRON", "0 * * * *"),
			RegisterCron:       getenvWithDefault("REGISTER_SUMMARY_CRON", "0 18 * * 5"),
		},
		Jobs: JobsConfig{
			NumberPrefixAir: getenvWithDefault("JOB_PREFIX_AIR", "AE"),
			NumberPrefixSea: getenvWithDefault("JOB_PREFIX_SEA", "SE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Upstream.BaseURL == "" {
		return errors.New("ERP_BASE_URL must be provided")
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when the register export is enabled")
	}

	if c.Quotation.HomeCountry == "" {
		return errors.New("HOME_COUNTRY must not be empty")
	}

	if c.Quotation.SessionIdleMinutes <= 0 {
		return errors.New("DRAFT_SESSION_IDLE_MINUTES must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
