package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/library-circulation-go/circulation/oteladapters"
)

func Test_SlogBridgeLoggerWithHandler_WritesAllLevels(t *testing.T) {
	// arrange
	buf := &bytes.Buffer{}
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "executed sql for: find_book", "query", "SELECT 1")
	logger.InfoContext(ctx, "command handler completed", "command_type", "ProcessTransaction")
	logger.WarnContext(ctx, "failed to roll back database transaction")
	logger.ErrorContext(ctx, "command handler failed", "error", "boom")

	// assert
	output := buf.String()
	assert.Contains(t, output, "level=DEBUG msg=\"executed sql for: find_book\" query=\"SELECT 1\"")
	assert.Contains(t, output, "level=INFO msg=\"command handler completed\" command_type=ProcessTransaction")
	assert.Contains(t, output, "level=WARN msg=\"failed to roll back database transaction\"")
	assert.Contains(t, output, "level=ERROR msg=\"command handler failed\" error=boom")
}

func Test_SlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	// arrange
	logger := oteladapters.NewSlogBridgeLogger("circulation")

	// act + assert
	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "transaction committed", "operation", "transaction")
	})
}

func Test_OTelLogger_EmitsWithOddArgs(t *testing.T) {
	// arrange
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))

	// act + assert
	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "command handler started", "command_type", "ProcessTransaction", "dangling")
		logger.ErrorContext(context.Background(), "command handler failed", 42, "not a key")
	})
}
