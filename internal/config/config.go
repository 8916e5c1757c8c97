package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MAKRANE-cpu/monographie/internal/errors"
)

// DefaultSpreadsheetID is the Chefchaouen agricultural workbook.
const DefaultSpreadsheetID = "1fVb91z5B-nqOwCCPO5rMK-u9wd2KxDG56FteMaCr63w"

// Config represents the complete application configuration
type Config struct {
	Source   SourceConfig
	Cleaning CleaningConfig
	AI       AIConfig
	Database DatabaseConfig
	Server   ServerConfig
	LogLevel string
}

// SourceConfig selects where worksheets come from and how long a load is cached
type SourceConfig struct {
	Kind          string // "google" or "excel"
	SpreadsheetID string
	APIKey        string
	AccessToken   string
	BaseURL       string
	ExcelFile     string
	CacheTTL      time.Duration
	Timeout       time.Duration
}

// CleaningConfig parameterizes header detection and table assembly
type CleaningConfig struct {
	Mode          string // "lenient" or "strict"
	Marker        string
	ScanRows      int
	Scored        bool
	Separator     string
	Dedupe        bool
	IDColumnName  string
	AggregateList []string
}

// AIConfig holds AI/LLM related settings
type AIConfig struct {
	OpenAIKey   string
	OpenAIModel string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	ExcerptRows int
	ExcerptMode string // "head" or "full"
	Timeout     time.Duration
}

// DatabaseConfig holds the optional session store connection
type DatabaseConfig struct {
	URL    string
	Driver string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// Enabled reports whether a language model is configured.
func (c AIConfig) Enabled() bool {
	return c.OpenAIKey != ""
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Source:   *loadSourceConfig(),
		Cleaning: *loadCleaningConfig(),
		AI:       *loadAIConfig(),
		Database: *loadDatabaseConfig(),
		Server:   *loadServerConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadSourceConfig() *SourceConfig {
	kind := strings.ToLower(getEnvOrDefault("SHEETS_SOURCE", ""))
	excelFile := getEnvOrDefault("EXCEL_FILE", "")
	if kind == "" {
		kind = "google"
		if excelFile != "" {
			kind = "excel"
		}
	}

	return &SourceConfig{
		Kind:          kind,
		SpreadsheetID: getEnvOrDefault("GOOGLE_SPREADSHEET_ID", DefaultSpreadsheetID),
		APIKey:        getEnvOrDefault("GOOGLE_API_KEY", ""),
		AccessToken:   getEnvOrDefault("GOOGLE_ACCESS_TOKEN", ""),
		BaseURL:       getEnvOrDefault("GOOGLE_SHEETS_BASE_URL", "https://sheets.googleapis.com/v4"),
		ExcelFile:     excelFile,
		CacheTTL:      getEnvDurationOrDefault("CACHE_TTL", time.Hour),
		Timeout:       getEnvDurationOrDefault("SOURCE_TIMEOUT", 30*time.Second),
	}
}

func loadCleaningConfig() *CleaningConfig {
	return &CleaningConfig{
		Mode:          strings.ToLower(getEnvOrDefault("LOAD_MODE", "lenient")),
		Marker:        getEnvOrDefault("HEADER_MARKER", "commune"),
		ScanRows:      getEnvIntOrDefault("HEADER_SCAN_ROWS", 10),
		Scored:        getEnvBoolOrDefault("HEADER_SCORING", false),
		Separator:     getEnvOrDefault("COLUMN_SEPARATOR", "_"),
		Dedupe:        getEnvBoolOrDefault("DEDUPE_COLUMNS", true),
		IDColumnName:  getEnvOrDefault("ID_COLUMN_NAME", "Commune"),
		AggregateList: getEnvListOrDefault("AGGREGATE_TOKENS", nil),
	}
}

func loadAIConfig() *AIConfig {
	return &AIConfig{
		OpenAIKey:   getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel: getEnvOrDefault("LLM_MODEL", "gpt-4"),
		BaseURL:     getEnvOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 2000),
		Temperature: getEnvFloatOrDefault("LLM_TEMPERATURE", 0),
		ExcerptRows: getEnvIntOrDefault("EXCERPT_ROWS", 20),
		ExcerptMode: strings.ToLower(getEnvOrDefault("EXCERPT_MODE", "head")),
		Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 3*time.Minute),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:    getEnvOrDefault("DATABASE_URL", ""),
		Driver: getEnvOrDefault("DATABASE_DRIVER", "postgres"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func validateConfig(config *Config) error {
	switch config.Source.Kind {
	case "google":
		if config.Source.SpreadsheetID == "" {
			return errors.ConfigInvalid("GOOGLE_SPREADSHEET_ID is required")
		}
	case "excel":
		if config.Source.ExcelFile == "" {
			return errors.ConfigInvalid("EXCEL_FILE is required when SHEETS_SOURCE=excel")
		}
	default:
		return errors.ConfigInvalid("SHEETS_SOURCE must be google or excel, got " + config.Source.Kind)
	}
	if config.Source.CacheTTL <= 0 {
		return errors.ConfigInvalid("CACHE_TTL must be positive")
	}
	if config.Cleaning.Mode != "lenient" && config.Cleaning.Mode != "strict" {
		return errors.ConfigInvalid("LOAD_MODE must be lenient or strict")
	}
	if strings.TrimSpace(config.Cleaning.Marker) == "" {
		return errors.ConfigInvalid("HEADER_MARKER must not be empty")
	}
	if config.Cleaning.ScanRows <= 0 {
		return errors.ConfigInvalid("HEADER_SCAN_ROWS must be positive")
	}
	if config.AI.ExcerptMode != "head" && config.AI.ExcerptMode != "full" {
		return errors.ConfigInvalid("EXCERPT_MODE must be head or full")
	}
	if config.Database.URL != "" && config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return errors.ConfigInvalid("DATABASE_DRIVER must be postgres or sqlite")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma separated variable, dropping blanks
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
