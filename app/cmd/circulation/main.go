// Command circulation runs one circulation operation against the configured Store and prints the result as JSON.
//
// Usage:
//
//	circulation borrow  -loaner ID -librarian ID -book ID:COPIES [-book ...] -borrow-date yyyyMMdd [-due-date yyyyMMdd]
//	circulation return  -loaner ID -librarian ID -book ID:COPIES [-book ...]
//	circulation extend  -loaner ID -librarian ID -book ID:COPIES [-book ...] -due-date yyyyMMdd
//	circulation remove-loaner -loaner ID
//	circulation remove-librarian -librarian ID
//	circulation open-loans -loaner ID
//	circulation history (-loaner ID | -transaction ID)
//	circulation overdue [-as-of yyyyMMdd]
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell/config"
)

func main() {
	os.Exit(runMain())
}

// runMain returns the process exit code so deferred cleanups run before exiting.
func runMain() int {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 2
	}

	logger, err := config.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Printf("Failed to create logger: %v", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		providers, otelErr := config.NewOTelProviders(ctx, cfg)
		if otelErr != nil {
			logger.Error("failed to set up OpenTelemetry", "error", otelErr.Error())
			return 1
		}

		defer func() {
			if shutdownErr := providers.Shutdown(); shutdownErr != nil {
				logger.Warn("failed to shut down OpenTelemetry", "error", shutdownErr.Error())
			}
		}()
	}

	telemetry := config.NewTelemetry(cfg)

	store, closeStore, err := config.OpenStore(ctx, cfg, logger, telemetry)
	if err != nil {
		logger.Error("failed to open store", "error", err.Error())
		return 1
	}
	defer closeStore()

	app, err := newApplication(store, logger, telemetry, cfg.RetryOptions()...)
	if err != nil {
		logger.Error("failed to wire handlers", "error", err.Error())
		return 1
	}

	if err = app.run(ctx, os.Args[1:], os.Stdout); err != nil {
		logger.Error("operation failed", "error", err.Error())

		if errors.Is(err, errUsage) {
			return 2
		}

		return 1
	}

	return 0
}
