// Package flagx holds small helpers for sharing os.Args between several
// independent flag sets.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns a slice of command-line arguments that only contains
// the allowed flags (and their values) specified in allowedFlags.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// Parameters:
//
//	args          the command-line arguments (usually os.Args[1:])
//	allowedFlags  list of allowed flag names (e.g. []string{"-c", "-env"})
//
// Returns:
//
//	A slice containing the allowed flags and their values (if provided
//	separately). A value is taken from the next argument only when it does
//	not itself start with "-".
func FilterArgs(args []string, allowedFlags []string) []string {
	// Set of allowed names for constant-time lookup
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	// Empty, never nil
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "-flag=value" or "--flag=value": keep the whole argument
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		// "-flag value": the value, if any, is the next argument
		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++ // value consumed
			}
		}
	}

	return filtered
}

// SourceFiles inspects command-line arguments and extracts the paths of the
// configuration sources:
//
//	-c, -config  JSON config file
//	-env         dotenv file
//
// Only these flags are parsed; other arguments are ignored. This allows the
// application to parse its own flags afterwards without interfering with
// flags defined elsewhere.
//
// Missing flags yield empty strings.
func SourceFiles(args []string) (jsonPath, envPath string) {
	filtered := FilterArgs(args, []string{"-c", "-config", "-env"})

	fs := flag.NewFlagSet("sources", flag.ContinueOnError)
	fs.StringVar(&jsonPath, "config", "", "Path to config file")
	fs.StringVar(&jsonPath, "c", "", "Path to config file (short)")
	fs.StringVar(&envPath, "env", "", "Path to .env file")
	_ = fs.Parse(filtered)

	return jsonPath, envPath
}
