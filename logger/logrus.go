package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implements Interface using logrus
type LogrusLogger struct {
	Logger        *logrus.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
	Parameterized bool
}

// NewLogrusLogger creates a new logger using logrus
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	return &LogrusLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
		Parameterized: config.ParameterizedQueries,
	}
}

// LogMode sets the log level
func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info logs info messages
func (l *LogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Logger.WithContext(ctx).WithField("data", data).Info(msg)
	}
}

// Warn logs warning messages
func (l *LogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Logger.WithContext(ctx).WithField("data", data).Warn(msg)
	}
}

// Error logs error messages
func (l *LogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Logger.WithContext(ctx).WithField("data", data).Error(msg)
	}
}

// Trace logs the SQL text, elapsed time and row count of an executed statement
func (l *LogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.LogLevel >= Error:
		sql, rows := fc()
		l.Logger.WithContext(ctx).WithError(err).WithFields(logrus.Fields{"elapsed": elapsed, "rows": rows}).Error(sql)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= Warn:
		sql, rows := fc()
		l.Logger.WithContext(ctx).WithFields(logrus.Fields{"elapsed": elapsed, "rows": rows, "threshold": l.SlowThreshold}).Warnf("SLOW SQL: %s", sql)
	case l.LogLevel == Info:
		sql, rows := fc()
		l.Logger.WithContext(ctx).WithFields(logrus.Fields{"elapsed": elapsed, "rows": rows}).Info(sql)
	}
}
