// Package config collects every environment knob in one place so main
// stays a wiring diagram. Values come from the process environment, with
// a .env file loaded beforehand for local runs.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config is the resolved runtime configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string
	// DatabaseDSN is the Postgres connection string, either DATABASE_URL
	// verbatim or assembled from the discrete DB_* variables.
	DatabaseDSN string
	// AMQPURL enables the order event publisher when non-empty.
	AMQPURL string
	// CORSOrigins is the allow-list for browser clients.
	CORSOrigins []string
	// PrettyLog switches the logger to human-readable console output.
	PrettyLog bool
}

// Load reads the environment into a Config. Missing optional values get
// working defaults; the database settings are taken as-is because a bad
// DSN should fail loudly at connect time, not be papered over here.
func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseDSN: databaseDSN(),
		AMQPURL:     os.Getenv("AMQP_URL"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		PrettyLog:   getEnv("LOG_PRETTY", "true") == "true",
	}
}

func databaseDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		getEnv("DB_PORT", "5432"),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
