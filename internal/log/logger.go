// Package log provides the structured logger shared by every component.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger interface for dependency injection. Fields are alternating
// key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// Config selects level and output format.
type Config struct {
	Level  string
	Format string // "console" or "json"
}

type zlogger struct {
	z zerolog.Logger
}

// New builds a logger writing to w.
func New(w io.Writer, cfg Config) (Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	switch cfg.Format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	z := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &zlogger{z: z}, nil
}

// Default logs info and above to stderr in console form.
func Default() Logger {
	l, _ := New(os.Stderr, Config{})
	return l
}

// Nop discards everything.
func Nop() Logger {
	return &zlogger{z: zerolog.Nop()}
}

func (l *zlogger) Debug(msg string, fields ...interface{}) {
	l.z.Debug().Fields(fields).Msg(msg)
}

func (l *zlogger) Info(msg string, fields ...interface{}) {
	l.z.Info().Fields(fields).Msg(msg)
}

func (l *zlogger) Warn(msg string, fields ...interface{}) {
	l.z.Warn().Fields(fields).Msg(msg)
}

func (l *zlogger) Error(msg string, fields ...interface{}) {
	l.z.Error().Fields(fields).Msg(msg)
}

func (l *zlogger) With(fields ...interface{}) Logger {
	return &zlogger{z: l.z.With().Fields(fields).Logger()}
}
