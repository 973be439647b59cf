package testdoubles

import (
	"context"
	"strings"
	"sync"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

var (
	_ circulation.Logger           = (*LoggerSpy)(nil)
	_ circulation.ContextualLogger = (*LoggerSpy)(nil)
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// SpyLogRecord is one captured log call.
type SpyLogRecord struct {
	Level      string
	Message    string
	Args       []any
	Contextual bool
}

// LoggerSpy implements both the basic and the contextual logger and captures every call.
type LoggerSpy struct {
	mu          sync.Mutex
	records     []SpyLogRecord
	recordCalls bool
}

// NewLoggerSpy creates a spy. With recordCalls false it swallows everything.
func NewLoggerSpy(recordCalls bool) *LoggerSpy {
	return &LoggerSpy{recordCalls: recordCalls}
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.record(LevelDebug, msg, args, false) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.record(LevelInfo, msg, args, false) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.record(LevelWarn, msg, args, false) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.record(LevelError, msg, args, false) }

func (s *LoggerSpy) DebugContext(_ context.Context, msg string, args ...any) {
	s.record(LevelDebug, msg, args, true)
}

func (s *LoggerSpy) InfoContext(_ context.Context, msg string, args ...any) {
	s.record(LevelInfo, msg, args, true)
}

func (s *LoggerSpy) WarnContext(_ context.Context, msg string, args ...any) {
	s.record(LevelWarn, msg, args, true)
}

func (s *LoggerSpy) ErrorContext(_ context.Context, msg string, args ...any) {
	s.record(LevelError, msg, args, true)
}

func (s *LoggerSpy) record(level, msg string, args []any, contextual bool) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: args, Contextual: contextual})
}

// GetRecords returns a copy of all captured records.
func (s *LoggerSpy) GetRecords() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyLogRecord, len(s.records))
	copy(records, s.records)

	return records
}

// HasLog reports whether a record at the level contains msg in its message.
func (s *LoggerSpy) HasLog(level, msg string) bool {
	for _, record := range s.GetRecords() {
		if record.Level == level && strings.Contains(record.Message, msg) {
			return true
		}
	}

	return false
}

func (s *LoggerSpy) HasDebugLog(msg string) bool { return s.HasLog(LevelDebug, msg) }
func (s *LoggerSpy) HasInfoLog(msg string) bool  { return s.HasLog(LevelInfo, msg) }
func (s *LoggerSpy) HasWarnLog(msg string) bool  { return s.HasLog(LevelWarn, msg) }
func (s *LoggerSpy) HasErrorLog(msg string) bool { return s.HasLog(LevelError, msg) }
