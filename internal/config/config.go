package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"compliance/internal/logger"
)

// ErrSheetNotConfigured is returned by RequireSheet when no spreadsheet URL is set.
var ErrSheetNotConfigured = errors.New("GOOGLE_SHEET_URL is required")

type Config struct {
	// Google Sheets Configuration
	GoogleSheetURL   string
	ClientsWorksheet string
	RiskWorksheet    string
	BASWorksheet     string

	// BAS Configuration
	BASPeriod string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		GoogleSheetURL:   getEnv("GOOGLE_SHEET_URL", ""),
		ClientsWorksheet: getEnv("CLIENTS_WORKSHEET", "Clients"),
		RiskWorksheet:    getEnv("RISK_WORKSHEET", "Risk"),
		BASWorksheet:     getEnv("BAS_WORKSHEET", "BAS"),
		BASPeriod:        getEnv("BAS_PERIOD", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:    getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:        getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL %q is invalid: %w", c.LogLevel, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	worksheets := []struct {
		key  string
		name string
	}{
		{"CLIENTS_WORKSHEET", c.ClientsWorksheet},
		{"RISK_WORKSHEET", c.RiskWorksheet},
		{"BAS_WORKSHEET", c.BASWorksheet},
	}
	for _, ws := range worksheets {
		if strings.TrimSpace(ws.name) == "" {
			return fmt.Errorf("%s must not be blank", ws.key)
		}
	}
	return nil
}

// RequireSheet checks that a spreadsheet is configured, for commands that
// read from or write to Google Sheets.
func (c *Config) RequireSheet() error {
	if c.GoogleSheetURL == "" {
		return ErrSheetNotConfigured
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
