// Package config handles configuration for the development API server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"os"
	"time"

	"github.com/nytevibe/nytevibe/internal/flagx"
)

// Config holds runtime settings for the development API.
//
// Fields:
//   - ListenAddr: bind address of the HTTP endpoint.
//   - PathPrefix: route prefix every endpoint is mounted under.
//   - PublicURL: front-end origin used when building reset and verification links.
//   - SecretKey: HMAC secret for signing JWTs (HS256) and verification links. Do not use test defaults in prod.
//   - AccessTokenValidityDuration: token lifetime of a regular login.
//   - RememberMeValidityDuration: token lifetime when remember_me is set.
//   - LinkValidityDuration: lifetime of reset and verification links.
//   - LoginRate / LoginBurst: per-identifier login attempts per minute, and burst.
//   - LogLevel / LogFormat: logging.New parameters.
type Config struct {
	ListenAddr                  string
	PathPrefix                  string
	PublicURL                   string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	RememberMeValidityDuration  time.Duration
	LinkValidityDuration        time.Duration
	LoginRate                   int
	LoginBurst                  int
	LogLevel                    string
	LogFormat                   string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.PathPrefix = "/api"
	c.PublicURL = "http://127.0.0.1:5173"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 7 * 24 * time.Hour
	c.RememberMeValidityDuration = 30 * 24 * time.Hour
	c.LinkValidityDuration = time.Hour
	c.LoginRate = 5
	c.LoginBurst = 5
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	args := os.Args[1:]
	jsonPath, _ := flagx.SourceFiles(args)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, jsonPath)
	parseFlags(cfg, args)
	return cfg
}
