// Package logger configures the process-wide zerolog logger and carries
// request scoped loggers through contexts.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// FilePath, when set, receives a copy of every event.
	FilePath string
	// Console switches stdout to the human readable writer.
	Console bool
	// Out replaces stdout. Tests use it.
	Out io.Writer
}

var (
	mu     sync.RWMutex
	global = zerolog.Nop()
	file   *os.File
)

// New builds a logger from opts. The returned closer releases the log
// file, if any.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logger: %w", err)
		}
		level = l
	}

	var out io.Writer = os.Stdout
	if opts.Out != nil {
		out = opts.Out
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	writers := []io.Writer{out}
	var closer io.Closer = nopCloser{}
	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o664)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logger: open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return l, closer, nil
}

// Init replaces the global logger, including the one used by the
// zerolog/log package and zerolog.Ctx fallbacks.
func Init(opts Options) error {
	l, closer, err := New(opts)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	if f, ok := closer.(*os.File); ok {
		file = f
	}
	global = l
	log.Logger = l
	zerolog.DefaultContextLogger = &global
	return nil
}

// Close releases the log file opened by Init.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

func Global() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// WithFields returns ctx carrying a child of the context logger with the
// given fields attached.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	l := FromContext(ctx).With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// FromContext returns the context logger, falling back to the global one.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	g := Global()
	return &g
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
