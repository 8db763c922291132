package dependent

// Operation is a dependency-aware callable. Its declared upstream set is
// validated against the graph exactly like a derived attribute's, but the
// result is never memoized: the user function runs on every invocation,
// because its result may vary with arguments the graph knows nothing
// about. Upstream derived attributes it reads still resolve through the
// cache.
type Operation[R any] struct {
	attr
	fn func(*ComputeCtx, ...any) (R, error)
}

// DeclareOperation declares an operation whose dependencies are
// referenced by name, validated with the same rules as DeclareDerived.
func DeclareOperation[R any](s *Schema, name string, deps []string, fn func(*ComputeCtx, ...any) (R, error), opts ...AttrOption) (*Operation[R], error) {
	depIdx, err := s.resolveNames(name, deps)
	if err != nil {
		return nil, err
	}
	return newOperation(s, name, depIdx, fn, opts)
}

func newOperation[R any](s *Schema, name string, depIdx []int, fn func(*ComputeCtx, ...any) (R, error), opts []AttrOption) (*Operation[R], error) {
	a, err := s.register(KindOperation, name, depIdx)
	if err != nil {
		return nil, err
	}

	o := &Operation[R]{attr: *a, fn: fn}
	for _, opt := range opts {
		opt(o)
	}

	s.add(o)
	return o, nil
}

// Call executes the operation's function with the given arguments. A
// failure inside the user function wraps in ComputeError and propagates
// unchanged to the caller; it is never retried or cached.
func (o *Operation[R]) Call(inst *Instance, args ...any) (R, error) {
	var zero R
	if err := inst.check(o); err != nil {
		return zero, err
	}

	op := &Op{Kind: OpInvoke, Attribute: o, Instance: inst}

	result, err := inst.wrap(op, func() (any, error) {
		ctx := acquireComputeCtx(inst, o)
		defer releaseComputeCtx(ctx)

		val, err := o.fn(ctx, args...)
		if err != nil {
			return nil, err
		}

		// Operations cache nothing, so cleanups can only run at close.
		inst.registerCleanups(o.index, ctx.takeCleanups())
		return val, nil
	})
	if err != nil {
		wrapped := newComputeError(o, err)
		inst.notifyError(wrapped, op)
		return zero, wrapped
	}

	return SafeTypeAssertion[R](result)
}

// Bind returns the operation as a callable closed over the instance, the
// shape dynamic access yields for operations.
func (o *Operation[R]) Bind(inst *Instance) func(args ...any) (R, error) {
	return func(args ...any) (R, error) {
		return o.Call(inst, args...)
	}
}

func (o *Operation[R]) readAny(inst *Instance) (any, error) {
	if err := inst.check(o); err != nil {
		return nil, err
	}
	bound := func(args ...any) (any, error) {
		return o.Call(inst, args...)
	}
	return bound, nil
}

func (o *Operation[R]) writeAny(inst *Instance, val any) error {
	return ErrNotWritable
}

// Operation1 declares an operation with one typed upstream dependency.
// Runtime arguments stay untyped: they are forwarded to the user function
// as given, since the dependency graph has no knowledge of them.
func Operation1[R any, D1 any](
	s *Schema,
	name string,
	d1 Source[D1],
	fn func(*ComputeCtx, *Reader[D1], ...any) (R, error),
	opts ...AttrOption,
) (*Operation[R], error) {
	depIdx, err := s.resolveHandles(name, []AnyAttribute{d1})
	if err != nil {
		return nil, err
	}
	return newOperation(s, name, depIdx, func(ctx *ComputeCtx, args ...any) (R, error) {
		return fn(ctx, &Reader[D1]{src: d1, inst: ctx.inst}, args...)
	}, opts)
}

// Operation2 declares an operation with two typed upstream dependencies.
func Operation2[R any, D1 any, D2 any](
	s *Schema,
	name string,
	d1 Source[D1],
	d2 Source[D2],
	fn func(*ComputeCtx, *Reader[D1], *Reader[D2], ...any) (R, error),
	opts ...AttrOption,
) (*Operation[R], error) {
	depIdx, err := s.resolveHandles(name, []AnyAttribute{d1, d2})
	if err != nil {
		return nil, err
	}
	return newOperation(s, name, depIdx, func(ctx *ComputeCtx, args ...any) (R, error) {
		return fn(ctx,
			&Reader[D1]{src: d1, inst: ctx.inst},
			&Reader[D2]{src: d2, inst: ctx.inst},
			args...)
	}, opts)
}

// Operation3 declares an operation with three typed upstream dependencies.
func Operation3[R any, D1 any, D2 any, D3 any](
	s *Schema,
	name string,
	d1 Source[D1],
	d2 Source[D2],
	d3 Source[D3],
	fn func(*ComputeCtx, *Reader[D1], *Reader[D2], *Reader[D3], ...any) (R, error),
	opts ...AttrOption,
) (*Operation[R], error) {
	depIdx, err := s.resolveHandles(name, []AnyAttribute{d1, d2, d3})
	if err != nil {
		return nil, err
	}
	return newOperation(s, name, depIdx, func(ctx *ComputeCtx, args ...any) (R, error) {
		return fn(ctx,
			&Reader[D1]{src: d1, inst: ctx.inst},
			&Reader[D2]{src: d2, inst: ctx.inst},
			&Reader[D3]{src: d3, inst: ctx.inst},
			args...)
	}, opts)
}
