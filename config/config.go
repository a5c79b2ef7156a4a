package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBPath string

	JWTSecret     string
	TokenTTLHours int

	AdminUsername string
	AdminPassword string
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		AppPort: get("APP_PORT", "8080"),
		AppEnv:  get("APP_ENV", "dev"),

		DBPath: get("DB_PATH", "classboard.db"),

		JWTSecret:     get("JWT_SECRET", "dev-secret"),
		TokenTTLHours: getInt("TOKEN_TTL_HOURS", 12),

		AdminUsername: get("ADMIN_USERNAME", "admin"),
		AdminPassword: get("ADMIN_PASSWORD", "changeme123"),
	}
}

// DSN builds the SQLite connection string. Foreign keys must be switched on
// per connection or cascade constraints are silently ignored; WAL keeps
// readers from blocking the single writer.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", c.DBPath)
}
