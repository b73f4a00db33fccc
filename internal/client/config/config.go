package config

import (
	"os"
	"time"

	"github.com/nytevibe/nytevibe/internal/flagx"
)

// Config holds runtime settings for the nYtevibe client.
//
// Fields:
//   - APIBaseURL: REST API root, including the /api prefix.
//   - StateDSN: SQLite file holding the durable credential record.
//   - SessionCheckInterval: how often the session monitor re-validates.
//   - RefreshWindow: time-before-expiry at which the token gets refreshed.
//   - RequestTimeout: per-request HTTP timeout.
//   - DebounceDelay: quiet period before availability checks are sent.
//   - LogLevel / LogFormat: logging.New parameters.
type Config struct {
	APIBaseURL           string
	StateDSN             string
	SessionCheckInterval time.Duration
	RefreshWindow        time.Duration
	RequestTimeout       time.Duration
	DebounceDelay        time.Duration
	LogLevel             string
	LogFormat            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.StateDSN = "nytevibe.db"
	c.SessionCheckInterval = time.Hour
	c.RefreshWindow = 24 * time.Hour
	c.RequestTimeout = 15 * time.Second
	c.DebounceDelay = 500 * time.Millisecond
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig applies defaults, then the environment (optionally seeded from a
// .env file), then a JSON file, then command-line flags. Later sources win.
func LoadConfig() *Config {
	args := os.Args[1:]
	jsonPath, envPath := flagx.SourceFiles(args)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, envPath)
	parseJson(cfg, jsonPath)
	parseFlags(cfg, args)
	return cfg
}
