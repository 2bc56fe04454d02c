// Package config loads chainburst settings from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// History backends.
const (
	HistorySQLite    = "sqlite"
	HistorySurrealDB = "surrealdb"
	HistoryNone      = "none"
)

// Config holds all configuration values.
type Config struct {
	// Solver
	TieBreak string
	MaxItems int

	// History persistence
	History    string
	SQLitePath string

	// SurrealDB connection (History == "surrealdb")
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// HTTP
	Port string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		TieBreak: getEnv("CHAINBURST_TIE_BREAK", "last"),
		MaxItems: getEnvInt("CHAINBURST_MAX_ITEMS", 2000),

		History:    strings.ToLower(getEnv("CHAINBURST_HISTORY", HistorySQLite)),
		SQLitePath: getEnv("CHAINBURST_SQLITE_PATH", "chainburst.db"),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "chainburst"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "runs"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		Port: getEnv("CHAINBURST_PORT", "8080"),

		LogFile:  getEnv("CHAINBURST_LOG_FILE", "/tmp/chainburst.log"),
		LogLevel: parseLogLevel(getEnv("CHAINBURST_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt falls back to defaultVal when the variable is unset or not an integer.
func getEnvInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return v
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
