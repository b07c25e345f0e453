// Package lumen implements a real-time physically-based renderer core
// on top of a Vulkan-class low-level GPU API: memory sub-allocation,
// descriptor-pool management, image-layout/access tracking with
// barrier synthesis, a render graph scheduler, shader hot-reload, and
// the concrete frontend pipeline (sky/IBL, cascaded shadows, histogram
// auto-exposure, forward shading, SDF indirect diffuse, TAA, bloom,
// tonemap) plus a UI overlay pass. See SetLogger for enabling logs and
// NewBackend for the top-level entry point.
package lumen

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards all log records. Enabled returns false
// so callers skip message formatting entirely, keeping disabled
// logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically so SetLogger
// can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used throughout this module. By
// default Logger() discards everything, while subpackages' direct
// log/slog calls print through Go's default slog logger until
// SetLogger is called.
//
// Every package under this module logs through the top-level
// log/slog default logger rather than importing this package back
// (which would create an import cycle with frontend/mesh/transfer/
// shaderio), so SetLogger also calls slog.SetDefault — the one piece
// of global state every subpackage's direct slog.Debug/Info/Warn call
// already reads from.
//
// Pass nil to restore the silent default.
//
// Log levels:
//   - [slog.LevelDebug]: barrier synthesis, staging chunk submission
//   - [slog.LevelInfo]: pass (re)creation, resize, shader hot-reload
//   - [slog.LevelWarn]: recoverable failures (image load fallback,
//     draw input mismatch, hot-reload compile failure)
//   - [slog.LevelError]: fatal init failures before the caller aborts
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
	slog.SetDefault(l)
}

// Logger returns the currently configured logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
