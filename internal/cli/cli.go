package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/ednavoyage/internal/app"
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

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("ednavoyage", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
eDNA Voyage - scripted zone analysis with a live feed and sample records.

Usage:
  ednavoyage [options] [SAMPLE_FILE...]

Modes:
  render   play the sequence once and print every step (default)
  serve    serve the HTTP API and the socket.io live feed
  tui      interactive terminal view of a local sequence
  watch    interactive terminal view of a remote live feed
  ingest   record SAMPLE_FILE... and generate analysis results
  config   print the effective configuration as HCL

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to an HCL config file or directory.")
	cFlag := flagSet.String("c", "", "Path to an HCL config file or directory (shorthand).")
	modeFlag := flagSet.String("mode", string(app.ModeRender), "Run mode: render, serve, tui, watch, ingest or config.")
	listenFlag := flagSet.String("listen", "", "HTTP listen address, overrides server.listen.")
	urlFlag := flagSet.String("url", app.DefaultWatchURL, "Live feed URL for watch mode.")
	storeFlag := flagSet.String("store", "", "Storage driver, overrides storage.driver: memory, badger or sqlite.")
	storePathFlag := flagSet.String("store-path", "", "Storage path, overrides storage.path.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFileFlag := flagSet.String("log-file", "", "Append logs to this file instead of stdout.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *configFlag
	if path == "" {
		path = *cFlag
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

	store := strings.ToLower(*storeFlag)
	switch store {
	case "", "memory", "badger", "sqlite":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid store: must be 'memory', 'badger' or 'sqlite'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath:      path,
		Mode:            app.Mode(strings.ToLower(*modeFlag)),
		Listen:          *listenFlag,
		StoreDriver:     store,
		StorePath:       *storePathFlag,
		WatchURL:        *urlFlag,
		Files:           flagSet.Args(),
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		LogFile:         *logFileFlag,
		HealthcheckPort: *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "mode", config.Mode)
	return config, false, nil
}
