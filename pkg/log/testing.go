// Testing utilities for structured logging. TestLogger captures records
// in memory so tests can assert on what the resampling engine logged
// without touching process-wide state.

package log

import (
	"sync"
)

// Record is a single captured log record.
type Record struct {
	Level  string
	Msg    string
	Fields map[string]any
}

// TestLogger captures log records in memory for later inspection.
type TestLogger struct {
	mu      *sync.Mutex
	base    map[string]any
	records *[]Record
}

// NewTestLogger creates a TestLogger. The record buffer and its mutex
// are shared by loggers derived via With, so records from contextual
// child loggers are visible too.
func NewTestLogger() *TestLogger {
	records := make([]Record, 0, 16)
	return &TestLogger{mu: &sync.Mutex{}, base: map[string]any{}, records: &records}
}

// Records returns a copy of the captured records.
func (l *TestLogger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(*l.records))
	copy(out, *l.records)
	return out
}

// Contains reports whether any captured record has the given message.
func (l *TestLogger) Contains(msg string) bool {
	for _, r := range l.Records() {
		if r.Msg == msg {
			return true
		}
	}
	return false
}

func (l *TestLogger) capture(level, msg string, fields []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	merged := make(map[string]any, len(l.base)+len(fields)/2)
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range pairs(fields) {
		merged[k] = v
	}
	*l.records = append(*l.records, Record{Level: level, Msg: msg, Fields: merged})
}

func (l *TestLogger) Debug(msg string, fields ...any) { l.capture("debug", msg, fields) }
func (l *TestLogger) Info(msg string, fields ...any)  { l.capture("info", msg, fields) }
func (l *TestLogger) Warn(msg string, fields ...any)  { l.capture("warn", msg, fields) }
func (l *TestLogger) Error(msg string, fields ...any) { l.capture("error", msg, fields) }

func (l *TestLogger) With(fields ...any) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	base := make(map[string]any, len(l.base)+len(fields)/2)
	for k, v := range l.base {
		base[k] = v
	}
	for k, v := range pairs(fields) {
		base[k] = v
	}
	return &TestLogger{mu: l.mu, base: base, records: l.records}
}
