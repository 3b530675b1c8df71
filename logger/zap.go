package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Interface using zap
type ZapLogger struct {
	Logger        *zap.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
	Parameterized bool
}

// NewZapLogger creates a new logger using zap
func NewZapLogger(logger *zap.Logger, config Config) Interface {
	return &ZapLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
		Parameterized: config.ParameterizedQueries,
	}
}

// ZapLevel converts a LogLevel to the closest zapcore level
func ZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case Info:
		return zapcore.InfoLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

// LogMode sets the log level
func (l *ZapLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info logs info messages
func (l *ZapLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Logger.Info(msg, zap.Any("data", data))
	}
}

// Warn logs warning messages
func (l *ZapLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Logger.Warn(msg, zap.Any("data", data))
	}
}

// Error logs error messages
func (l *ZapLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Logger.Error(msg, zap.Any("data", data))
	}
}

// Trace logs the SQL text, elapsed time and row count of an executed statement
func (l *ZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.LogLevel >= Error:
		sql, rows := fc()
		l.Logger.Error(sql, zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows))
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= Warn:
		sql, rows := fc()
		l.Logger.Warn("SLOW SQL: "+sql, zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.Duration("threshold", l.SlowThreshold))
	case l.LogLevel == Info:
		sql, rows := fc()
		l.Logger.Info(sql, zap.Duration("elapsed", elapsed), zap.Int64("rows", rows))
	}
}
