package extensions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	dependent "github.com/badge/dependent-property"
)

// GraphDebugExtension logs a dependency-graph snapshot when a compute or
// operation fails: the failing attribute's upstream tree plus the
// resolution status of every attribute touched so far. Attach it while
// diagnosing why a derived attribute refuses to resolve.
type GraphDebugExtension struct {
	dependent.BaseExtension

	// Track attributes as they resolve
	resolved map[string]bool
	failed   map[string]error
	logger   *slog.Logger
}

// NewGraphDebugExtension creates a new graph debug extension.
// logHandler: slog.Handler for logging (slog.NewTextHandler for formatted
// output, NewSilentHandler for tests)
func NewGraphDebugExtension(logHandler slog.Handler) *GraphDebugExtension {
	return &GraphDebugExtension{
		BaseExtension: dependent.NewBaseExtension("graph-debug"),
		resolved:      make(map[string]bool),
		failed:        make(map[string]error),
		logger:        slog.New(logHandler),
	}
}

// Wrap tracks resolution outcomes for debugging
func (e *GraphDebugExtension) Wrap(ctx context.Context, next func() (any, error), op *dependent.Op) (any, error) {
	result, err := next()

	if op.Kind == dependent.OpCompute || op.Kind == dependent.OpInvoke {
		if err == nil {
			e.resolved[op.Attribute.Name()] = true
			delete(e.failed, op.Attribute.Name())
		} else {
			e.failed[op.Attribute.Name()] = err
		}
	}

	return result, err
}

// OnError logs the dependency graph around the failed attribute
func (e *GraphDebugExtension) OnError(err error, op *dependent.Op, inst *dependent.Instance) {
	e.logger.Error("attribute resolution error",
		"attribute", op.Attribute.Name(),
		"schema", op.Attribute.Schema().Name(),
		"instance", inst.ID(),
		"error", err.Error(),
		"operation", string(op.Kind),
		"dependency_tree", "\n"+dependent.RenderTree(op.Attribute),
		"status", e.formatStatus(op.Attribute.Schema()),
	)
}

// formatStatus summarizes which attributes resolved and which failed.
func (e *GraphDebugExtension) formatStatus(s *dependent.Schema) string {
	var sb strings.Builder
	for _, a := range s.Attributes() {
		if a.Kind() == dependent.KindBase {
			continue
		}
		switch {
		case e.resolved[a.Name()]:
			fmt.Fprintf(&sb, " %s=ok", a.Name())
		case e.failed[a.Name()] != nil:
			fmt.Fprintf(&sb, " %s=failed(%v)", a.Name(), e.failed[a.Name()])
		default:
			fmt.Fprintf(&sb, " %s=pending", a.Name())
		}
	}
	return strings.TrimSpace(sb.String())
}
