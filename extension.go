package dependent

import (
	"context"
	"sort"
)

// Extension provides hooks into the attribute lifecycle
type Extension interface {
	// Name returns the extension's name
	Name() string

	// Order determines extension execution order (lower = earlier)
	Order() int

	// Init is called when the extension is registered on an instance
	Init(inst *Instance) error

	// Wrap intercepts operations (set, compute, invoke)
	Wrap(ctx context.Context, next func() (any, error), op *Op) (any, error)

	// OnError handles errors raised by compute and operation functions
	OnError(err error, op *Op, inst *Instance)

	// OnInvalidate is called for each derived slot marked stale by a base write
	OnInvalidate(inst *Instance, a AnyAttribute)

	// OnCleanupError handles cleanup failures
	// Returns true if the error was handled, false to use default behavior
	OnCleanupError(err *CleanupError) bool

	// Dispose is called when the instance is closed
	Dispose(inst *Instance) error
}

// CleanupError contains information about a cleanup failure
type CleanupError struct {
	Attribute AnyAttribute
	Instance  *Instance
	Err       error
	Context   string // "invalidate" or "close"
}

// BaseExtension provides default implementations for Extension methods
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Order() int {
	return 100
}

func (e *BaseExtension) Init(inst *Instance) error {
	return nil
}

func (e *BaseExtension) Wrap(ctx context.Context, next func() (any, error), op *Op) (any, error) {
	return next()
}

func (e *BaseExtension) OnError(err error, op *Op, inst *Instance) {
}

func (e *BaseExtension) OnInvalidate(inst *Instance, a AnyAttribute) {
}

func (e *BaseExtension) OnCleanupError(err *CleanupError) bool {
	return false
}

func (e *BaseExtension) Dispose(inst *Instance) error {
	return nil
}

// Op describes what operation is happening
type Op struct {
	Kind      OpKind
	Attribute AnyAttribute
	Instance  *Instance
}

// OpKind represents the type of operation
type OpKind string

const (
	// OpSet indicates a base attribute write
	OpSet OpKind = "set"
	// OpCompute indicates a derived attribute recomputation
	OpCompute OpKind = "compute"
	// OpInvoke indicates an operation invocation
	OpInvoke OpKind = "invoke"
)

func sortExtensions(exts []Extension) {
	sort.SliceStable(exts, func(i, j int) bool {
		return exts[i].Order() < exts[j].Order()
	})
}

// wrap chains the instance's extensions around an operation in middleware
// fashion: the last registered extension wraps first.
func (inst *Instance) wrap(op *Op, base func() (any, error)) (any, error) {
	next := base
	for i := len(inst.extensions) - 1; i >= 0; i-- {
		ext := inst.extensions[i]
		currentNext := next
		next = func() (any, error) {
			return ext.Wrap(context.Background(), currentNext, op)
		}
	}
	return next()
}
