package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "NYTEVIBE_"

// parseEnv overlays cfg with NYTEVIBE_* variables.
//
// Lookup order for each variable:
//  1. The process environment.
//  2. The dotenv file at envPath, or ./.env when envPath is empty.
//
// Recognised variables (durations use time.ParseDuration syntax):
//
//	NYTEVIBE_API_URL                 APIBaseURL
//	NYTEVIBE_STATE_DSN               StateDSN
//	NYTEVIBE_SESSION_CHECK_INTERVAL  SessionCheckInterval
//	NYTEVIBE_REFRESH_WINDOW          RefreshWindow
//	NYTEVIBE_REQUEST_TIMEOUT         RequestTimeout
//	NYTEVIBE_DEBOUNCE_DELAY          DebounceDelay
//	NYTEVIBE_LOG_LEVEL               LogLevel
//	NYTEVIBE_LOG_FORMAT              LogFormat
//
// A missing ./.env is ignored. An explicit envPath that cannot be read
// panics, as do malformed durations.
func parseEnv(cfg *Config, envPath string) {
	vars := map[string]string{}

	path := envPath
	if path == "" {
		path = ".env"
	}
	fileVars, err := godotenv.Read(path)
	switch {
	case err == nil:
		vars = fileVars
	case envPath == "" && errors.Is(err, fs.ErrNotExist):
	default:
		panic(err)
	}

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			return v, true
		}
		v, ok := vars[envPrefix+name]
		return v, ok
	}

	setString := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	setString("API_URL", &cfg.APIBaseURL)
	setString("STATE_DSN", &cfg.StateDSN)
	setDuration("SESSION_CHECK_INTERVAL", &cfg.SessionCheckInterval)
	setDuration("REFRESH_WINDOW", &cfg.RefreshWindow)
	setDuration("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	setDuration("DEBOUNCE_DELAY", &cfg.DebounceDelay)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("LOG_FORMAT", &cfg.LogFormat)
}
