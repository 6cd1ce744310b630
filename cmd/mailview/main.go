// Package main is the entry point for mailview. It takes a single email
// message (mbox file, maildir or standard input), splits it into its MIME
// parts and opens the rewritten HTML in an external browser. Designed to be
// piped to from a mailer like mutt:
//
//	macro index <F10> "<pipe-message>mailview\n" "View HTML in browser"
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/mailtools/mailview/internal/config"
	"github.com/mailtools/mailview/internal/dispatch"
	"github.com/mailtools/mailview/internal/parser"
	"github.com/mailtools/mailview/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.Logging.Level)

	// The working directory holds the extracted parts for as long as the
	// browser needs them; cleanup is left to the OS tmp reaper.
	workdir, err := os.MkdirTemp("", "mailview")
	if err != nil {
		slog.Error("failed to create working directory", "error", err)
		os.Exit(1)
	}

	p := pipeline.New(cfg, workdir, dispatch.NewExecRunner())

	// With no message paths the raw message arrives on stdin.
	sources := flag.Args()
	if len(sources) == 0 {
		sources = []string{""}
	}

	exitCode := 0
	for _, source := range sources {
		if err := p.Run(source); err != nil {
			if errors.Is(err, parser.ErrNoMessage) {
				slog.Error("no message found", "source", source)
			} else {
				slog.Error("failed to process message", "source", source, "error", err)
			}
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

// loadConfig loads configuration from the specified path (YAML + env
// override) or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level. Logs go to stderr; stdout stays clean for callers
// that pipe messages through mailview.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
