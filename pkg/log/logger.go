// Package log provides a structured logging facade for MachineShop
// training and resampling operations.
//
// The package defines a minimal Logger interface with a zerolog-backed
// default implementation. Structured attribute keys for the model
// selection domain (node kinds, candidate ids, fold counts) are defined
// in attributes.go so that resampling runs can be filtered and analyzed
// from log output.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is a leveled, structured logger. Fields are alternating
// key/value pairs, with keys as strings; an error value may be passed
// directly and is logged under the "error" key with its stack trace.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = NewNop()
)

// SetDefault installs the process-wide default logger returned by Default.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default returns the process-wide default logger. Until SetDefault is
// called it is a no-op logger, so library code is silent by default.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// zlogger is the zerolog-backed Logger implementation.
type zlogger struct {
	zl zerolog.Logger
}

// New creates a zerolog-backed Logger writing JSON records to w.
func New(w io.Writer, level zerolog.Level) Logger {
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &zlogger{zl: zl}
}

// NewConsole creates a Logger writing human-readable records to stderr.
func NewConsole(level zerolog.Level) Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &zlogger{zl: zl}
}

func (l *zlogger) Debug(msg string, fields ...any) { emit(l.zl.Debug(), msg, fields) }
func (l *zlogger) Info(msg string, fields ...any)  { emit(l.zl.Info(), msg, fields) }
func (l *zlogger) Warn(msg string, fields ...any)  { emit(l.zl.Warn(), msg, fields) }
func (l *zlogger) Error(msg string, fields ...any) { emit(l.zl.Error(), msg, fields) }

func (l *zlogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for k, v := range pairs(fields) {
		ctx = ctx.Interface(k, v)
	}
	return &zlogger{zl: ctx.Logger()}
}

func emit(e *zerolog.Event, msg string, fields []any) {
	for k, v := range pairs(fields) {
		if err, ok := v.(error); ok && k == ErrKey {
			e = e.Stack().Err(err)
			continue
		}
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

// pairs folds alternating key/value fields into a map. A bare error with
// no preceding key is logged under ErrKey; a trailing key with no value
// is dropped.
func pairs(fields []any) map[string]any {
	m := make(map[string]any, len(fields)/2+1)
	i := 0
	for i < len(fields) {
		if err, ok := fields[i].(error); ok {
			m[ErrKey] = err
			i++
			continue
		}
		key, ok := fields[i].(string)
		if !ok || i+1 >= len(fields) {
			break
		}
		m[key] = fields[i+1]
		i += 2
	}
	return m
}

// nopLogger discards everything.
type nopLogger struct{}

// NewNop returns a Logger that discards all records.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Logger { return n }
