package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server Server
	DB     DB
	CORS   CORS
	Yahoo  Yahoo
	Demo   Demo
}

// Server holds HTTP server configuration
type Server struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DB holds database configuration
type DB struct {
	Path string
}

// CORS holds CORS configuration
type CORS struct {
	AllowedOrigins []string
}

// Yahoo holds market data gateway configuration
type Yahoo struct {
	ChartURL string
}

// Demo holds demo-account lifecycle configuration
type Demo struct {
	TTL time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	demoTTLHours, err := strconv.Atoi(getEnv("DEMO_ACCOUNT_TTL_HOURS", "24"))
	if err != nil || demoTTLHours <= 0 {
		return nil, fmt.Errorf("invalid DEMO_ACCOUNT_TTL_HOURS: %v", err)
	}

	config := &Config{
		Server: Server{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		DB: DB{
			Path: getEnv("DB_PATH", "./data/stocktracker.db"),
		},
		CORS: CORS{
			AllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Yahoo: Yahoo{
			ChartURL: getEnv("YAHOO_CHART_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
		},
		Demo: Demo{
			TTL: time.Duration(demoTTLHours) * time.Hour,
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// splitCSV splits a comma-separated environment value, trimming whitespace
// around each entry and dropping empty ones.
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
