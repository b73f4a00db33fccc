package config

import (
	"flag"
	"time"

	"github.com/nytevibe/nytevibe/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST API base URL (default from Config)
//	-d string   SQLite state file (default from Config)
//	-i int      session check interval in minutes
//	-w int      token refresh window in hours
//	-t int      request timeout in seconds
//	-l string   log level: debug, info, warn or error
//
// Note: args are filtered with flagx.FilterArgs first, so flags owned by
// other components (-c, -env) pass through untouched. Parse errors panic.
func parseFlags(cfg *Config, args []string) {
	// Filter args to include only those handled here.
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-i", "-w", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "REST API base URL")
	fs.StringVar(&cfg.StateDSN, "d", cfg.StateDSN, "SQLite state file")
	interval := fs.Int("i", int(cfg.SessionCheckInterval.Minutes()), "session check interval (in minutes)")
	window := fs.Int("w", int(cfg.RefreshWindow.Hours()), "token refresh window (in hours)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags actually given overwrite durations; whole-unit flags would
	// otherwise truncate finer values coming from JSON or the environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.SessionCheckInterval = time.Duration(*interval) * time.Minute
		case "w":
			cfg.RefreshWindow = time.Duration(*window) * time.Hour
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
