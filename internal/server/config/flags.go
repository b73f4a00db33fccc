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
//	-a string   HTTP bind address (e.g., ":8080")
//	-p string   route prefix (e.g., "/api")
//	-u string   public front-end URL used in emailed links
//	-s string   JWT HMAC secret key
//	-t int      access token validity, hours
//	-r int      remember-me token validity, hours
//	-n int      login attempts per minute
//	-l string   log level
//
// Duration flags are accepted as whole hours and only overwrite the current
// value when given.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-p", "-u", "-s", "-t", "-r", "-n", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.PathPrefix, "p", config.PathPrefix, "route prefix")
	fs.StringVar(&config.PublicURL, "u", config.PublicURL, "public front-end URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Hours()), "access token validity (in hours)")
	rememberMeValidity := fs.Int("r", int(config.RememberMeValidityDuration.Hours()), "remember-me token validity (in hours)")

	fs.IntVar(&config.LoginRate, "n", config.LoginRate, "login attempts per minute")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Hour
		case "r":
			config.RememberMeValidityDuration = time.Duration(*rememberMeValidity) * time.Hour
		}
	})
}
