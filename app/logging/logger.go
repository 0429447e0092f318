// Package logging builds the process logger: slog with a JSON or text
// handler, writing to stdout, a rotated file, or both.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mytheresa/go-catalog-analytics/app/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 100
	maxBackups = 10
	maxAgeDays = 30
)

// New returns a logger for cfg and a closer for the rotated file, if any.
func New(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	out, closer, err := output(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel maps a config level name to a slog level; unknown names are info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func output(cfg config.LogConfig) (io.Writer, io.Closer, error) {
	if cfg.Output != "file" && cfg.Output != "both" {
		return os.Stdout, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	if cfg.Output == "both" {
		return io.MultiWriter(os.Stdout, file), file, nil
	}
	return file, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
