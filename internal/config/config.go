package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"budgeter/internal/log"
)

type Config struct {
	// Storage
	DataDir      string
	DataBackend  string
	SQLiteDBPath string

	// Logging
	LogLevel string

	// Recovery: reinitialise a corrupt store to empty instead of failing.
	ResetCorrupt bool
}

// Backend names accepted in DATA_BACKEND.
var validBackends = []string{"json", "sqlite", "memory"}

// Load reads configuration from the environment. Call cli.LoadEnvFile
// first to pick up a local .env file.
func Load() *Config {
	dataDir := getEnv("BUDGETER_DATA_DIR", "./data")
	cfg := &Config{
		DataDir:      dataDir,
		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", "json")),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", DefaultSQLitePath(dataDir)),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ResetCorrupt: getEnvBool("BUDGETER_RESET_CORRUPT", false),
	}
	return cfg
}

// DefaultSQLitePath is where the SQLite database lives when
// SQLITE_DB_PATH is not set.
func DefaultSQLitePath(dataDir string) string {
	return filepath.Join(dataDir, "budgeter.db")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "json":
		if strings.TrimSpace(c.DataDir) == "" {
			errors = append(errors, "data directory cannot be empty when using json backend")
		} else if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory '%s' is not a directory", c.DataDir))
		}
	case "sqlite":
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
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
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}
