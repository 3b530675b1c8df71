package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Interface using zerolog
type ZerologLogger struct {
	Logger        zerolog.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
	Parameterized bool
}

// NewZerologLogger creates a new logger using zerolog
func NewZerologLogger(logger zerolog.Logger, config Config) Interface {
	return &ZerologLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
		Parameterized: config.ParameterizedQueries,
	}
}

// LogMode sets the log level
func (l *ZerologLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info logs info messages
func (l *ZerologLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Logger.Info().Ctx(ctx).Interface("data", data).Msg(msg)
	}
}

// Warn logs warning messages
func (l *ZerologLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Logger.Warn().Ctx(ctx).Interface("data", data).Msg(msg)
	}
}

// Error logs error messages
func (l *ZerologLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Logger.Error().Ctx(ctx).Interface("data", data).Msg(msg)
	}
}

// Trace logs the SQL text, elapsed time and row count of an executed statement
func (l *ZerologLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.LogLevel >= Error:
		sql, rows := fc()
		l.Logger.Error().Ctx(ctx).Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Msg(sql)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= Warn:
		sql, rows := fc()
		l.Logger.Warn().Ctx(ctx).Dur("elapsed", elapsed).Int64("rows", rows).Msgf("SLOW SQL >= %v: %s", l.SlowThreshold, sql)
	case l.LogLevel == Info:
		sql, rows := fc()
		l.Logger.Info().Ctx(ctx).Dur("elapsed", elapsed).Int64("rows", rows).Msg(sql)
	}
}
