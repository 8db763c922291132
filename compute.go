package dependent

import "fmt"

type cleanupEntry struct {
	fn    func() error
	order int
}

// ComputeCtx provides context for compute and operation functions: the
// instance being resolved, the attribute under computation, and cleanup
// registration for resources the computed value holds on to.
type ComputeCtx struct {
	inst     *Instance
	attrDecl AnyAttribute
	cleanups []cleanupEntry
}

// Instance returns the instance being computed.
func (ctx *ComputeCtx) Instance() *Instance {
	return ctx.inst
}

// Attribute returns the attribute under computation.
func (ctx *ComputeCtx) Attribute() AnyAttribute {
	return ctx.attrDecl
}

// OnCleanup registers a cleanup function to run when the computed value is
// invalidated or the instance is closed. Operations have no cached value,
// so their cleanups run on instance close only.
func (ctx *ComputeCtx) OnCleanup(fn func() error) {
	entry := cleanupEntry{
		fn:    fn,
		order: len(ctx.cleanups),
	}
	ctx.cleanups = append(ctx.cleanups, entry)
}

// Read resolves another attribute of the instance by name, through the
// same staleness protocol as typed readers.
func (ctx *ComputeCtx) Read(name string) (any, error) {
	return ctx.inst.Get(name)
}

// takeCleanups hands the collected cleanups to the instance and detaches
// them from the pooled context.
func (ctx *ComputeCtx) takeCleanups() []cleanupEntry {
	entries := ctx.cleanups
	ctx.cleanups = nil
	return entries
}

// ReadAs resolves another attribute by name with a typed result.
func ReadAs[T any](ctx *ComputeCtx, name string) (T, error) {
	val, err := ctx.Read(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return SafeTypeAssertion[T](val)
}

// GetTag retrieves a typed tag value from the instance being computed
func GetTag[T any](ctx *ComputeCtx, tag Tag[T]) (T, bool) {
	return tag.GetFromInstance(ctx.inst)
}

// GetTagOrDefault retrieves a typed tag or returns a default value
func GetTagOrDefault[T any](ctx *ComputeCtx, tag Tag[T], defaultVal T) T {
	if val, ok := tag.GetFromInstance(ctx.inst); ok {
		return val
	}
	return defaultVal
}

// Must unwraps a declaration result, panicking on error. Intended for
// package-level schema construction where a declaration failure is a
// programming error.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("dependent: %v", err))
	}
	return v
}
