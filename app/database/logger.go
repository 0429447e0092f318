package database

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger sends gorm's output to slog. Failed and slow statements are
// always logged; the rest only when SQL logging is enabled.
type GormLogger struct {
	logger             *slog.Logger
	enabled            bool
	slowQueryThreshold time.Duration
}

func NewGormLogger(logger *slog.Logger, enabled bool, slowQueryThreshold time.Duration) *GormLogger {
	return &GormLogger{
		logger:             logger,
		enabled:            enabled,
		slowQueryThreshold: slowQueryThreshold,
	}
}

func (l *GormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.enabled {
		l.logger.InfoContext(ctx, msg, "data", data)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.logger.WarnContext(ctx, msg, "data", data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.logger.ErrorContext(ctx, msg, "data", data)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	slow := l.slowQueryThreshold > 0 && elapsed > l.slowQueryThreshold
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	if !failed && !slow && !l.enabled {
		return
	}

	sql, rows := fc()
	args := []any{
		"duration", elapsed,
		"rows", rows,
		"sql", sql,
	}

	switch {
	case failed:
		l.logger.ErrorContext(ctx, "sql execution failed", append(args, "error", err)...)
	case slow:
		l.logger.WarnContext(ctx, "slow query detected", args...)
	default:
		l.logger.DebugContext(ctx, "sql executed", args...)
	}
}
