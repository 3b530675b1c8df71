package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel controls which messages an Interface implementation emits.
type LogLevel int

const (
	// Silent silent log level
	Silent LogLevel = iota + 1
	// Error error log level
	Error
	// Warn warn log level
	Warn
	// Info info log level
	Info
)

// Config logger config
type Config struct {
	SlowThreshold        time.Duration
	LogLevel             LogLevel
	ParameterizedQueries bool
}

// Interface is the logging contract the connection expects. Trace receives
// the final SQL text and row count of every statement the connection runs.
type Interface interface {
	LogMode(LogLevel) Interface
	Info(ctx context.Context, msg string, data ...interface{})
	Warn(ctx context.Context, msg string, data ...interface{})
	Error(ctx context.Context, msg string, data ...interface{})
	Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error)
}

// Default is the logger used when a connection is created without one:
// zerolog console output at warn level.
var Default = NewZerologLogger(
	zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.RFC3339
	})).With().Timestamp().Logger(),
	Config{LogLevel: Warn, SlowThreshold: 200 * time.Millisecond},
)

// Discard discards everything.
var Discard = NewZerologLogger(zerolog.Nop(), Config{LogLevel: Silent})
