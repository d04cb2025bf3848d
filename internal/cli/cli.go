// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/kord/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// multiFlag collects repeated occurrences of a string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("kord", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
kord - a coordinate processing tool.

Usage:
  kord [options] [DEFINITION]

Arguments:
  DEFINITION
    The operation to apply, e.g. 'geo:in | cart | helmert x=-87 y=-96 z=-120 | cart inv | geo:out'.
    Coordinates are read from stdin, one whitespace-separated tuple of
    2-4 columns per line, and results written to stdout.

Options:
`)
		flagSet.PrintDefaults()
	}

	definitionFlag := flagSet.String("d", "", "The operation to apply (shorthand for the positional argument).")
	invFlag := flagSet.Bool("inv", false, "Apply the operation in the inverse direction.")
	roundtripFlag := flagSet.Bool("roundtrip", false, "Apply forward then inverse, and report the roundtrip distance.")
	degreesFlag := flagSet.Bool("deg", false, "Angular input/output in degrees, latitude-longitude order.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	var resourceFlags multiFlag
	flagSet.Var(&resourceFlags, "resources", "Path to a resource file or directory (repeatable).")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	definition := *definitionFlag
	if definition == "" && flagSet.NArg() > 0 {
		definition = strings.Join(flagSet.Args(), " ")
	}

	if definition == "" {
		slog.Debug("No definition provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Definition:    definition,
		ResourcePaths: resourceFlags,
		Inverse:       *invFlag,
		Roundtrip:     *roundtripFlag,
		Degrees:       *degreesFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
