package dependent

// Derived is a read-only computed attribute, memoized in its instance
// slot until an upstream write invalidates it. Recomputation is
// pull-based: it happens on the next read after invalidation, never at
// write time.
type Derived[T any] struct {
	attr
	compute func(*ComputeCtx) (T, error)
}

// DeclareDerived declares a computed attribute whose dependencies are
// referenced by name. Dependencies must already be declared on the
// schema; a dependency naming the attribute itself fails with CycleError,
// any other unregistered name with UnknownDependencyError. The compute
// function reads its upstream attributes through ctx.Read or ReadAs.
func DeclareDerived[T any](s *Schema, name string, deps []string, compute func(*ComputeCtx) (T, error), opts ...AttrOption) (*Derived[T], error) {
	depIdx, err := s.resolveNames(name, deps)
	if err != nil {
		return nil, err
	}
	return newDerived(s, name, depIdx, compute, opts)
}

func newDerived[T any](s *Schema, name string, depIdx []int, compute func(*ComputeCtx) (T, error), opts []AttrOption) (*Derived[T], error) {
	a, err := s.register(KindDerived, name, depIdx)
	if err != nil {
		return nil, err
	}

	d := &Derived[T]{attr: *a, compute: compute}
	for _, opt := range opts {
		opt(d)
	}

	s.add(d)
	return d, nil
}

// Get returns the cached value when the slot is valid; otherwise it runs
// the compute function, caches the result, and marks the slot valid. A
// failed computation is wrapped in ComputeError and leaves the slot
// invalid, so the next read retries instead of caching the failure.
func (d *Derived[T]) Get(inst *Instance) (T, error) {
	var zero T
	if err := inst.check(d); err != nil {
		return zero, err
	}

	s := &inst.slots[d.index]
	if s.valid {
		return SafeTypeAssertion[T](s.value)
	}

	op := &Op{Kind: OpCompute, Attribute: d, Instance: inst}

	result, err := inst.wrap(op, func() (any, error) {
		ctx := acquireComputeCtx(inst, d)
		defer releaseComputeCtx(ctx)

		val, err := d.compute(ctx)
		if err != nil {
			return nil, err
		}

		inst.registerCleanups(d.index, ctx.takeCleanups())
		return val, nil
	})
	if err != nil {
		wrapped := newComputeError(d, err)
		inst.notifyError(wrapped, op)
		return zero, wrapped
	}

	s.value = result
	s.valid = true
	return SafeTypeAssertion[T](result)
}

// Invalidate drops the instance's cached value so the next read
// recomputes. Upstream attributes are untouched.
func (d *Derived[T]) Invalidate(inst *Instance) {
	if err := inst.check(d); err != nil {
		return
	}

	s := &inst.slots[d.index]
	if !s.valid {
		return
	}

	inst.runCleanups(d.index, "invalidate")
	s.value = nil
	s.valid = false
}

func (d *Derived[T]) read(inst *Instance) (T, error) {
	return d.Get(inst)
}

func (d *Derived[T]) readAny(inst *Instance) (any, error) {
	return d.Get(inst)
}

func (d *Derived[T]) writeAny(inst *Instance, val any) error {
	return ErrNotWritable
}

// Derived1 declares a computed attribute with one typed upstream
// dependency. The compute function receives a Reader per dependency,
// bound to the instance being computed; reads of stale upstream derived
// attributes recompute them first.
func Derived1[T any, D1 any](
	s *Schema,
	name string,
	d1 Source[D1],
	compute func(*ComputeCtx, *Reader[D1]) (T, error),
	opts ...AttrOption,
) (*Derived[T], error) {
	depIdx, err := s.resolveHandles(name, []AnyAttribute{d1})
	if err != nil {
		return nil, err
	}
	return newDerived(s, name, depIdx, func(ctx *ComputeCtx) (T, error) {
		return compute(ctx, &Reader[D1]{src: d1, inst: ctx.inst})
	}, opts)
}

// Derived2 declares a computed attribute with two typed upstream dependencies.
func Derived2[T any, D1 any, D2 any](
	s *Schema,
	name string,
	d1 Source[D1],
	d2 Source[D2],
	compute func(*ComputeCtx, *Reader[D1], *Reader[D2]) (T, error),
	opts ...AttrOption,
) (*Derived[T], error) {
	depIdx, err := s.resolveHandles(name, []AnyAttribute{d1, d2})
	if err != nil {
		return nil, err
	}
	return newDerived(s, name, depIdx, func(ctx *ComputeCtx) (T, error) {
		return compute(ctx,
			&Reader[D1]{src: d1, inst: ctx.inst},
			&Reader[D2]{src: d2, inst: ctx.inst},
		)
	}, opts)
}

// Derived3 declares a computed attribute with three typed upstream dependencies.
func Derived3[T any, D1 any, D2 any, D3 any](
	s *Schema,
	name string,
	d1 Source[D1],
	d2 Source[D2],
	d3 Source[D3],
	compute func(*ComputeCtx, *Reader[D1], *Reader[D2], *Reader[D3]) (T, error),
	opts ...AttrOption,
) (*Derived[T], error) {
	depIdx, err := s.resolveHandles(name, []AnyAttribute{d1, d2, d3})
	if err != nil {
		return nil, err
	}
	return newDerived(s, name, depIdx, func(ctx *ComputeCtx) (T, error) {
		return compute(ctx,
			&Reader[D1]{src: d1, inst: ctx.inst},
			&Reader[D2]{src: d2, inst: ctx.inst},
			&Reader[D3]{src: d3, inst: ctx.inst},
		)
	}, opts)
}

// Derived4 declares a computed attribute with four typed upstream dependencies.
func Derived4[T any, D1 any, D2 any, D3 any, D4 any](
	s *Schema,
	name string,
	d1 Source[D1],
	d2 Source[D2],
	d3 Source[D3],
	d4 Source[D4],
	compute func(*ComputeCtx, *Reader[D1], *Reader[D2], *Reader[D3], *Reader[D4]) (T, error),
	opts ...AttrOption,
) (*Derived[T], error) {
	depIdx, err := s.resolveHandles(name, []AnyAttribute{d1, d2, d3, d4})
	if err != nil {
		return nil, err
	}
	return newDerived(s, name, depIdx, func(ctx *ComputeCtx) (T, error) {
		return compute(ctx,
			&Reader[D1]{src: d1, inst: ctx.inst},
			&Reader[D2]{src: d2, inst: ctx.inst},
			&Reader[D3]{src: d3, inst: ctx.inst},
			&Reader[D4]{src: d4, inst: ctx.inst},
		)
	}, opts)
}

// Derived5 declares a computed attribute with five typed upstream dependencies.
func Derived5[T any, D1 any, D2 any, D3 any, D4 any, D5 any](
	s *Schema,
	name string,
	d1 Source[D1],
	d2 Source[D2],
	d3 Source[D3],
	d4 Source[D4],
	d5 Source[D5],
	compute func(*ComputeCtx, *Reader[D1], *Reader[D2], *Reader[D3], *Reader[D4], *Reader[D5]) (T, error),
	opts ...AttrOption,
) (*Derived[T], error) {
	depIdx, err := s.resolveHandles(name, []AnyAttribute{d1, d2, d3, d4, d5})
	if err != nil {
		return nil, err
	}
	return newDerived(s, name, depIdx, func(ctx *ComputeCtx) (T, error) {
		return compute(ctx,
			&Reader[D1]{src: d1, inst: ctx.inst},
			&Reader[D2]{src: d2, inst: ctx.inst},
			&Reader[D3]{src: d3, inst: ctx.inst},
			&Reader[D4]{src: d4, inst: ctx.inst},
			&Reader[D5]{src: d5, inst: ctx.inst},
		)
	}, opts)
}
