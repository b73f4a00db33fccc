// Package config loads runtime configuration for the nYtevibe client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed NYTEVIBE_, optionally read from a dotenv
//     file given with -env (or ./.env when present). Real environment
//     variables win over the file.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   REST API base URL
//	-d string   SQLite state file
//	-i int      session check interval (minutes)
//	-w int      refresh window (hours)
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so "1h" and integer nanoseconds both work:
//
//	{
//	  "api_base_url": "https://nytevibe.example/api",
//	  "state_dsn": "nytevibe.db",
//	  "session_check_interval": "1h",
//	  "refresh_window": "24h"
//	}
//
// Primary API
//
//   - type Config                     holds the client settings
//   - func LoadConfig() *Config       applies defaults, env, JSON, then flags
//   - func (*Config) LoadDefaults()   sets sensible defaults
package config
