package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

var (
	_ circulation.Logger           = (*ZapLogger)(nil)
	_ circulation.ContextualLogger = (*ZapLogger)(nil)
)

// ZapLogger adapts a zap logger to the Logger and ContextualLogger interfaces of the circulation packages.
// Args are alternating keys and values, as with slog.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a JSON production logger at the given level (debug, info, warn, error).
func NewZapLogger(level string) (*ZapLogger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return WrapZapLogger(logger), nil
}

// WrapZapLogger adapts an existing zap logger.
func WrapZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: logger.Sugar()}
}

func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// The context variants tag the entry with the consistency level the operation ran with.

func (l *ZapLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.withContext(ctx).Debugw(msg, args...)
}

func (l *ZapLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.withContext(ctx).Infow(msg, args...)
}

func (l *ZapLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.withContext(ctx).Warnw(msg, args...)
}

func (l *ZapLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.withContext(ctx).Errorw(msg, args...)
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

func (l *ZapLogger) withContext(ctx context.Context) *zap.SugaredLogger {
	return l.sugar.With("consistency", circulation.GetConsistencyLevel(ctx).String())
}
