package dependent

// Base is a settable attribute: a root of the dependency graph. Writing
// it marks every transitively dependent derived attribute of the instance
// stale; nothing is recomputed until a consumer reads one of them.
type Base[T any] struct {
	attr
	equal func(old, new T) bool
}

// BaseOption is a modifier for base attribute declarations.
type BaseOption[T any] func(*Base[T])

// WithEqual returns an option that installs an equality predicate on a
// base attribute. When the predicate reports the new value equal to the
// current one, Set becomes a no-op: nothing is stored and nothing
// downstream is invalidated.
func WithEqual[T any](eq func(old, new T) bool) BaseOption[T] {
	return func(b *Base[T]) {
		b.equal = eq
	}
}

// DeclareBase declares a settable attribute on the schema.
func DeclareBase[T any](s *Schema, name string, opts ...BaseOption[T]) (*Base[T], error) {
	a, err := s.register(KindBase, name, nil)
	if err != nil {
		return nil, err
	}

	b := &Base[T]{attr: *a}
	for _, opt := range opts {
		opt(b)
	}

	s.add(b)
	return b, nil
}

// Get returns the instance's current value and whether the attribute has
// ever been assigned.
func (b *Base[T]) Get(inst *Instance) (T, bool) {
	var zero T
	if err := inst.check(b); err != nil {
		return zero, false
	}

	s := inst.slots[b.index]
	if !s.valid {
		return zero, false
	}

	val, err := SafeTypeAssertion[T](s.value)
	if err != nil {
		return zero, false
	}
	return val, true
}

// Set stores a new value and invalidates all transitively dependent
// derived attributes of the instance. Invalidation is lazy: stale
// attributes recompute on their next read, not here.
func (b *Base[T]) Set(inst *Instance, val T) error {
	if err := inst.check(b); err != nil {
		return err
	}

	op := &Op{Kind: OpSet, Attribute: b, Instance: inst}

	_, err := inst.wrap(op, func() (any, error) {
		s := &inst.slots[b.index]

		if s.valid && b.equal != nil {
			if old, err := SafeTypeAssertion[T](s.value); err == nil && b.equal(old, val) {
				return nil, nil
			}
		}

		s.value = val
		s.valid = true
		inst.invalidateDownstream(b.index)
		return nil, nil
	})
	if err != nil {
		inst.notifyError(err, op)
	}
	return err
}

// read implements Source for use as an upstream dependency. An unassigned
// base reads as the zero value.
func (b *Base[T]) read(inst *Instance) (T, error) {
	val, _ := b.Get(inst)
	return val, nil
}

func (b *Base[T]) readAny(inst *Instance) (any, error) {
	if err := inst.check(b); err != nil {
		return nil, err
	}
	s := inst.slots[b.index]
	if !s.valid {
		return nil, nil
	}
	return s.value, nil
}

func (b *Base[T]) writeAny(inst *Instance, val any) error {
	typed, err := SafeTypeAssertion[T](val)
	if err != nil {
		return err
	}
	return b.Set(inst, typed)
}
