package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system:
// the HTTP server, the upstream market API, chart rendering and browser sessions.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	RATE_LIMIT=120
//	API_URL=http://127.0.0.1:8000
//	API_TIMEOUT=10s
//	DIRECTORY_LIMIT=500
//	CHART_WIDTH=1200
//	CHART_HEIGHT=500
//	SESSION_TTL=30m
//	SNAPSHOT_DIR=./data/charts
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Market   MarketConfig   // Upstream market API settings
	Chart    ChartConfig    // Server-side chart rendering settings
	Session  SessionConfig  // Dashboard session settings
	Snapshot SnapshotConfig // Batch snapshot settings
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port      string // The TCP port the HTTP server will listen on (e.g., "8080")
	RateLimit int    // Requests per minute allowed per client IP; 0 disables the limiter
}

// MarketConfig describes how to reach the market backend.
//
// Fields:
//   - URL: base URL of the backend, without trailing slash.
//   - Timeout: per-request timeout applied by the HTTP client.
//   - DirectoryLimit: value sent as ?limit= when listing tickers.
type MarketConfig struct {
	URL            string
	Timeout        time.Duration
	DirectoryLimit int
}

// ChartConfig holds the pixel size of exported PNG charts.
type ChartConfig struct {
	Width  int
	Height int
}

// SessionConfig controls idle eviction of dashboard sessions.
type SessionConfig struct {
	TTL time.Duration
}

// SnapshotConfig holds the output directory for batch snapshots.
type SnapshotConfig struct {
	Dir string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() terminates the app.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RATE_LIMIT", 120)

	viper.SetDefault("API_URL", "http://127.0.0.1:8000")
	viper.SetDefault("API_TIMEOUT", "10s")
	viper.SetDefault("DIRECTORY_LIMIT", 500)

	viper.SetDefault("CHART_WIDTH", 1200)
	viper.SetDefault("CHART_HEIGHT", 500)

	viper.SetDefault("SESSION_TTL", "30m")
	viper.SetDefault("SNAPSHOT_DIR", "./data/charts")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:      viper.GetString("SERVER_PORT"),
			RateLimit: viper.GetInt("RATE_LIMIT"),
		},
		Market: MarketConfig{
			URL:            strings.TrimRight(viper.GetString("API_URL"), "/"),
			Timeout:        viper.GetDuration("API_TIMEOUT"),
			DirectoryLimit: viper.GetInt("DIRECTORY_LIMIT"),
		},
		Chart: ChartConfig{
			Width:  viper.GetInt("CHART_WIDTH"),
			Height: viper.GetInt("CHART_HEIGHT"),
		},
		Session: SessionConfig{
			TTL: viper.GetDuration("SESSION_TTL"),
		},
		Snapshot: SnapshotConfig{
			Dir: viper.GetString("SNAPSHOT_DIR"),
		},
	}

	validateConfig()
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// Behavior:
//   - Checks each critical field of AppConfig.
//   - Collects missing ones in a slice.
//   - If any are missing, logs them and terminates the app with log.Fatalf().
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if AppConfig.Server.RateLimit < 0 {
		missing = append(missing, "RATE_LIMIT")
	}
	if AppConfig.Market.URL == "" {
		missing = append(missing, "API_URL")
	}
	if AppConfig.Market.Timeout <= 0 {
		missing = append(missing, "API_TIMEOUT")
	}
	if AppConfig.Chart.Width <= 0 {
		missing = append(missing, "CHART_WIDTH")
	}
	if AppConfig.Chart.Height <= 0 {
		missing = append(missing, "CHART_HEIGHT")
	}
	if AppConfig.Session.TTL <= 0 {
		missing = append(missing, "SESSION_TTL")
	}

	if len(missing) > 0 {
		log.Fatalf("missing or invalid environment variables: %v\n", missing)
	}
}
