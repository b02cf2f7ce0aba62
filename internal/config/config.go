package config

import (
	"os"
	"strings"
	"unicode/utf8"

	"insurisk/internal/errors"
)

// Report formats understood by the presentation layer
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Report   ReportConfig
	Database DatabaseConfig
	LogLevel string
}

// DataConfig holds loader settings
type DataConfig struct {
	File      string
	Delimiter rune
	Sheet     string
}

// ReportConfig holds presentation settings
type ReportConfig struct {
	Format string
	Output string // empty means stdout
}

// DatabaseConfig holds result archival settings; an empty URL disables archival
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether results should be archived
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			File:  getEnvOrDefault("DATA_FILE", ""),
			Sheet: getEnvOrDefault("DATA_SHEET", "Sheet1"),
		},
		Report: ReportConfig{
			Format: strings.ToLower(getEnvOrDefault("REPORT_FORMAT", FormatText)),
			Output: getEnvOrDefault("REPORT_OUTPUT", ""),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	delimiter, err := ParseDelimiter(getEnvOrDefault("DATA_DELIMITER", "|"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load data configuration")
	}
	config.Data.Delimiter = delimiter

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// ParseDelimiter accepts a single character, or the names "tab", "pipe" and "comma"
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', nil
	case "pipe":
		return '|', nil
	case "comma":
		return ',', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.ConfigInvalid("DATA_DELIMITER must be a single character, got " + `"` + s + `"`)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '\n' || r == '\r' || r == '"' {
		return 0, errors.ConfigInvalid("DATA_DELIMITER cannot be a newline or quote")
	}
	return r, nil
}

// ValidFormat reports whether f names a known report format
func ValidFormat(f string) bool {
	switch f {
	case FormatText, FormatMarkdown, FormatHTML:
		return true
	}
	return false
}

func validateConfig(config *Config) error {
	if !ValidFormat(config.Report.Format) {
		return errors.ConfigInvalid("REPORT_FORMAT must be one of text, markdown, html")
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
