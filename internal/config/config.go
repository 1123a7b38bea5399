// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Data backends selectable with DATA_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Auth modes selectable with AUTH_MODE.
const (
	AuthModeJWT = "jwt"
	AuthModeDev = "dev"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// DataBackend selects where entries are stored: postgres (default),
	// sqlite or memory.
	DataBackend string

	// DatabaseURL is the Postgres connection string. Required for postgres.
	DatabaseURL string

	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string

	// AutoMigrate applies pending migrations at startup. Defaults to true.
	AutoMigrate bool

	// TemplatePath points at the xlsx export template. When empty the
	// built-in template is used.
	TemplatePath string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// AuthMode is jwt (default) or dev. Dev mode trusts X-Debug-Subject and
	// must never be used in production.
	AuthMode string

	// JWTSecret is the HS256 signing secret. Required in jwt mode.
	JWTSecret string
	// JWTIssuer is checked against the iss claim when set.
	JWTIssuer string
	// JWTAudience is checked against the aud claim. Defaults to "authenticated".
	JWTAudience string

	// DevSubject and DevName are the caller used in dev mode when the debug
	// headers are absent.
	DevSubject string
	DevName    string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing every required variable that is not set and every
// variable that holds an invalid value.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", BackendPostgres)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SQLitePath:   getEnv("SQLITE_PATH", "./data/mileage.db"),
		TemplatePath: os.Getenv("TEMPLATE_PATH"),
		AuthMode:     strings.ToLower(getEnv("AUTH_MODE", AuthModeJWT)),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTIssuer:    os.Getenv("JWT_ISSUER"),
		JWTAudience:  getEnv("JWT_AUDIENCE", "authenticated"),
		DevSubject:   getEnv("DEV_SUBJECT", "dev|local"),
		DevName:      getEnv("DEV_NAME", "Dev User"),
	}

	var missing, invalid []string

	switch cfg.DataBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendSQLite, BackendMemory:
	default:
		invalid = append(invalid, "DATA_BACKEND (want postgres, sqlite or memory)")
	}

	switch cfg.AuthMode {
	case AuthModeJWT:
		if cfg.JWTSecret == "" {
			missing = append(missing, "JWT_SECRET")
		}
	case AuthModeDev:
	default:
		invalid = append(invalid, "AUTH_MODE (want jwt or dev)")
	}

	autoMigrate, err := strconv.ParseBool(getEnv("AUTO_MIGRATE", "true"))
	if err != nil {
		invalid = append(invalid, "AUTO_MIGRATE (want a boolean)")
	}
	cfg.AutoMigrate = autoMigrate

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || maxBody <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES (want a positive integer)")
	}
	cfg.MaxBodyBytes = maxBody

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variables: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, fmt.Errorf("config.Load: %s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
