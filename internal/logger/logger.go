package logger

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	base        zerolog.Logger
	ready       atomic.Bool
	defaultOnce sync.Once
)

// Init configures the global logger.
// env: "development" gives colored console output at debug level, anything
// else gives JSON at info level.
func Init(env string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	switch env {
	case "development":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
		level = zerolog.DebugLevel
	case "test":
		level = zerolog.WarnLevel
	}

	base = zerolog.New(out).Level(level).With().Timestamp().Str("service", "bilca").Logger()
	log.Logger = base
	ready.Store(true)
}

// SetLevel overrides the level picked by Init. Unknown values are ignored.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return
	}
	base = base.Level(lvl)
	log.Logger = base
}

// GetLogger returns the global logger, initializing it on first use.
func GetLogger() *zerolog.Logger {
	defaultOnce.Do(func() {
		if !ready.Load() {
			Init("production")
		}
	})
	return &base
}

func emit(e *zerolog.Event, msg string, args []any) {
	if len(args) > 0 {
		e = e.Fields(args)
	}
	e.Msg(msg)
}

func Debug(msg string, args ...any) {
	emit(GetLogger().Debug(), msg, args)
}

func Info(msg string, args ...any) {
	emit(GetLogger().Info(), msg, args)
}

func Warn(msg string, args ...any) {
	emit(GetLogger().Warn(), msg, args)
}

func Error(msg string, args ...any) {
	emit(GetLogger().Error(), msg, args)
}

// Fatal logs and exits with status 1.
func Fatal(msg string, args ...any) {
	emit(GetLogger().Fatal(), msg, args)
}

// With returns a child logger carrying the key/value pairs.
// Example: logger.With("hire_id", id).Info().Msg("accepted")
func With(args ...any) zerolog.Logger {
	return GetLogger().With().Fields(args).Logger()
}

func WithError(err error) zerolog.Logger {
	return GetLogger().With().Err(err).Logger()
}

// HTTPLog records one served request.
func HTTPLog(method, path string, status int, duration time.Duration, size int) {
	GetLogger().Info().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Int64("duration_ms", duration.Milliseconds()).
		Int("size_bytes", size).
		Msg("http request")
}

// WorkerLog records the outcome of a background worker operation.
func WorkerLog(worker, operation string, err error, args ...any) {
	l := GetLogger()
	var e *zerolog.Event
	if err != nil {
		e = l.Error().Err(err)
	} else {
		e = l.Info()
	}
	e = e.Str("worker", worker).Str("operation", operation)
	if err != nil {
		emit(e, "worker operation failed", args)
		return
	}
	emit(e, "worker operation completed", args)
}
