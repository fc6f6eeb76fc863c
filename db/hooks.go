package db

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Hook is called before and after every statement.
//
// Implementations MUST be goroutine-safe and SHOULD NOT block. A panicking
// hook is recovered and reported on the global zerolog logger.
type Hook interface {
	BeforeQuery(ctx context.Context, query string, args []any)

	// AfterQuery receives the wall-clock time spent in the driver and the
	// already mapped error (nil on success).
	AfterQuery(ctx context.Context, query string, args []any, duration time.Duration, err error)
}

type hookChain struct {
	hooks []Hook
}

func newHookChain(hooks []Hook) hookChain {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return hookChain{hooks: filtered}
}

func (c hookChain) Before(ctx context.Context, query string, args []any) {
	for _, h := range c.hooks {
		c.guard("BeforeQuery", func() { h.BeforeQuery(ctx, query, args) })
	}
}

func (c hookChain) After(ctx context.Context, query string, args []any, d time.Duration, err error) {
	for _, h := range c.hooks {
		c.guard("AfterQuery", func() { h.AfterQuery(ctx, query, args, d, err) })
	}
}

func (hookChain) guard(stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l := zerolog.DefaultContextLogger
			if l == nil {
				nop := zerolog.Nop()
				l = &nop
			}
			l.Error().Str("stage", stage).Interface("panic", r).Msg("payroll/db: hook panic")
		}
	}()
	fn()
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging hook
// ─────────────────────────────────────────────────────────────────────────────

// LogHookConfig configures NewLogHook.
type LogHookConfig struct {
	// Logger is used when the statement context carries no logger.
	Logger zerolog.Logger
	// SlowQueryThreshold logs at warn level above this duration. Zero
	// disables slow-query reporting.
	SlowQueryThreshold time.Duration
	// LogArgs includes bound parameters. Employee rows hold names and
	// emails, so keep this off outside development.
	LogArgs bool
}

// NewLogHook returns a Hook writing one zerolog event per statement:
// debug on success, warn when slow, error on failure.
func NewLogHook(cfg LogHookConfig) Hook {
	return &logHook{cfg: cfg}
}

type logHook struct {
	cfg LogHookConfig
}

func (h *logHook) BeforeQuery(context.Context, string, []any) {}

func (h *logHook) AfterQuery(ctx context.Context, query string, args []any, d time.Duration, err error) {
	l := h.logger(ctx)

	var ev *zerolog.Event
	switch {
	case err != nil && !IsNotFound(err):
		ev = l.Error().Err(err)
	case h.cfg.SlowQueryThreshold > 0 && d > h.cfg.SlowQueryThreshold:
		ev = l.Warn().Bool("slow", true)
	default:
		ev = l.Debug()
	}
	ev = ev.Str("query", trimQuery(query)).Dur("duration", d)
	if h.cfg.LogArgs && len(args) > 0 {
		ev = ev.Interface("args", args)
	}
	ev.Msg("payroll/db: query")
}

func (h *logHook) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.cfg.Logger
}

func trimQuery(q string) string {
	if len(q) > 500 {
		return q[:500] + "…"
	}
	return q
}
