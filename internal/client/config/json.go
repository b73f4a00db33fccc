package config

import (
	"encoding/json"
	"os"

	"github.com/nytevibe/nytevibe/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "1h" or as integer nanoseconds. Absent fields (nil pointers,
// empty strings) leave the runtime Config untouched.
type JsonConfig struct {
	APIBaseURL           string          `json:"api_base_url"`
	StateDSN             string          `json:"state_dsn"`
	SessionCheckInterval *timex.Duration `json:"session_check_interval"`
	RefreshWindow        *timex.Duration `json:"refresh_window"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	DebounceDelay        *timex.Duration `json:"debounce_delay"`
	LogLevel             string          `json:"log_level"`
	LogFormat            string          `json:"log_format"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The path comes from -c or -config (see flagx.SourceFiles). An empty path
// means no JSON is loaded.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies the fields present in the file into cfg.
//   - Panics on read or unmarshal errors.
//
// Intended usage is: defaults -> parseEnv -> parseJson -> parseFlags, where
// later stages override earlier ones.
func parseJson(cfg *Config, path string) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.StateDSN != "" {
		cfg.StateDSN = jc.StateDSN
	}
	if jc.SessionCheckInterval != nil {
		cfg.SessionCheckInterval = jc.SessionCheckInterval.Duration
	}
	if jc.RefreshWindow != nil {
		cfg.RefreshWindow = jc.RefreshWindow.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DebounceDelay != nil {
		cfg.DebounceDelay = jc.DebounceDelay.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
}
