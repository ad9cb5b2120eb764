package sdftext

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message
// formatting entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for sdftext and its sub-packages.
// By default no log output is produced. Call SetLogger to enable it.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically. Pass nil to restore the default silent behavior.
//
// Log levels used:
//   - [slog.LevelDebug]: cache diagnostics, per-glyph render timing
//   - [slog.LevelInfo]: font load lifecycle events
//   - [slog.LevelWarn]: non-fatal issues (best-effort kerning failures,
//     resource release errors)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the active logger. Sub-packages route their logging
// through this accessor.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
