// Package extensions provides cross-cutting lifecycle hooks for dependent
// schemas: structured logging and dependency-graph debugging. The core
// package performs no logging of its own.
package extensions

import (
	"context"
	"log/slog"
	"time"

	dependent "github.com/badge/dependent-property"
)

// LoggingExtension logs attribute operations through a slog.Handler.
//
// Usage:
//
//	// Text logging to stderr
//	ext := extensions.NewLoggingExtension(slog.NewTextHandler(os.Stderr, nil))
//
//	// Structured JSON logging
//	ext := extensions.NewLoggingExtension(slog.NewJSONHandler(os.Stdout, nil))
//
//	// Silent (for testing)
//	ext := extensions.NewLoggingExtension(extensions.NewSilentHandler())
//
// Sets, computes and invocations log at DEBUG with their duration,
// invalidations at DEBUG, errors at ERROR.
type LoggingExtension struct {
	dependent.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a new logging extension backed by handler.
func NewLoggingExtension(handler slog.Handler) *LoggingExtension {
	return &LoggingExtension{
		BaseExtension: dependent.NewBaseExtension("logging"),
		logger:        slog.New(handler),
	}
}

// Wrap logs every operation with its outcome and duration.
func (e *LoggingExtension) Wrap(ctx context.Context, next func() (any, error), op *dependent.Op) (any, error) {
	start := time.Now()
	result, err := next()
	duration := time.Since(start)

	attrs := []any{
		"op", string(op.Kind),
		"attribute", op.Attribute.Name(),
		"schema", op.Attribute.Schema().Name(),
		"instance", op.Instance.ID(),
		"duration", duration,
	}

	if err != nil {
		attrs = append(attrs, "error", err.Error())
		e.logger.LogAttrs(ctx, slog.LevelDebug, "attribute operation failed", argsToAttrs(attrs)...)
	} else {
		e.logger.LogAttrs(ctx, slog.LevelDebug, "attribute operation", argsToAttrs(attrs)...)
	}

	return result, err
}

// OnInvalidate logs each derived slot marked stale by a base write.
func (e *LoggingExtension) OnInvalidate(inst *dependent.Instance, a dependent.AnyAttribute) {
	e.logger.Debug("attribute invalidated",
		"attribute", a.Name(),
		"schema", a.Schema().Name(),
		"instance", inst.ID(),
	)
}

// OnError logs compute and operation failures.
func (e *LoggingExtension) OnError(err error, op *dependent.Op, inst *dependent.Instance) {
	e.logger.Error("attribute error",
		"op", string(op.Kind),
		"attribute", op.Attribute.Name(),
		"schema", op.Attribute.Schema().Name(),
		"instance", inst.ID(),
		"error", err.Error(),
	)
}

// OnCleanupError logs cleanup failures without claiming to handle them.
func (e *LoggingExtension) OnCleanupError(err *dependent.CleanupError) bool {
	e.logger.Error("cleanup error",
		"attribute", err.Attribute.Name(),
		"instance", err.Instance.ID(),
		"context", err.Context,
		"error", err.Err.Error(),
	)
	return false
}

func argsToAttrs(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return attrs
}

// SilentHandler is a slog.Handler that discards all log output
// Useful for testing when you don't want log output
type SilentHandler struct{}

// NewSilentHandler creates a new silent log handler
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}

func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *SilentHandler) WithGroup(name string) slog.Handler {
	return h
}
