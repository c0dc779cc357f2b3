package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	CORSAllowOrigin string
	ShutdownTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// A .env file in the working directory is merged first when present; real
// environment variables always win. The loader applies sensible defaults for
// optional fields while reporting invalid values by name.
func Load() (Config, error) {
	// godotenv returns an error when no .env file exists, which is fine here.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:roombooking.db?_pragma=foreign_keys(1)",
		CORSAllowOrigin: "*",
		ShutdownTimeout: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMBOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if origin := strings.TrimSpace(os.Getenv("ROOMBOOKING_CORS_ALLOW_ORIGIN")); origin != "" {
		cfg.CORSAllowOrigin = origin
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "ROOMBOOKING_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
