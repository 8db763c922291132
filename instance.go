package dependent

import (
	"fmt"

	"github.com/google/uuid"
)

// slot is the per-instance storage cell for one attribute: the last
// computed or assigned value and its validity flag. For base attributes
// valid means "assigned"; for derived attributes valid=false means
// "stale, recompute on next read". Operations never use their slot.
type slot struct {
	value any
	valid bool
}

// Instance is the per-object half of the split: a fixed-shape slot array
// sized by the schema's attribute count, addressed by the stable integer
// index assigned at declaration time.
//
// An instance provides no internal synchronization. The invalidation
// sweep and the recursive staleness resolution are not safe under
// concurrent mutation, so callers sharing an instance across goroutines
// must serialize all attribute reads and writes externally. The schema
// and its graph are immutable after freezing and safe to share.
type Instance struct {
	schema     *Schema
	id         string
	slots      []slot
	extensions []Extension
	cleanups   map[int][]cleanupEntry
	tags       map[any]any
}

// newInstanceID generates a time-ordered identity token; sorting tokens
// lexically sorts instances by creation time.
func newInstanceID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// InstanceOption is a modifier for instances
type InstanceOption func(*Instance)

// WithExtension returns an option that registers an extension on an instance
func WithExtension(ext Extension) InstanceOption {
	return func(inst *Instance) {
		if err := inst.UseExtension(ext); err != nil {
			panic(err)
		}
	}
}

// WithInstanceTag returns an option that sets a tag on an instance
func WithInstanceTag[T any](tag Tag[T], val T) InstanceOption {
	return func(inst *Instance) {
		tag.SetOnInstance(inst, val)
	}
}

// WithInitial returns an option that seeds a base attribute's slot at
// creation time, before any derived attribute has been computed. Useful
// for presetting test instances without triggering invalidation sweeps.
func WithInitial[T any](b *Base[T], val T) InstanceOption {
	return func(inst *Instance) {
		if b.attr.schema != inst.schema {
			panic(fmt.Sprintf("initial value for attribute %q of schema %q applied to instance of schema %q",
				b.attr.name, b.attr.schema.name, inst.schema.name))
		}
		inst.slots[b.attr.index] = slot{value: val, valid: true}
	}
}

// NewInstance creates an instance of the schema and freezes it. Slots are
// allocated eagerly: the fixed-shape array replaces per-access lazy state.
func (s *Schema) NewInstance(opts ...InstanceOption) *Instance {
	s.frozen = true

	inst := &Instance{
		schema:   s,
		id:       newInstanceID(),
		slots:    make([]slot, s.Len()),
		cleanups: make(map[int][]cleanupEntry),
		tags:     make(map[any]any),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ID returns the instance identity token (UUIDv7, time-ordered).
func (inst *Instance) ID() string {
	return inst.id
}

// Schema returns the owning schema.
func (inst *Instance) Schema() *Schema {
	return inst.schema
}

func (inst *Instance) String() string {
	return inst.schema.name + "#" + inst.id
}

// Valid reports whether the attribute's slot currently holds a usable
// value: assigned for base attributes, cached for derived ones.
func (inst *Instance) Valid(a AnyAttribute) bool {
	if err := inst.check(a); err != nil {
		return false
	}
	return inst.slots[a.Index()].valid
}

// Get resolves an attribute dynamically by name. Base attributes yield
// their current value (zero value when unassigned), derived attributes
// resolve through the caching protocol, and operations yield a bound
// callable of type func(...any) (any, error).
func (inst *Instance) Get(name string) (any, error) {
	a, ok := inst.schema.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q on schema %q", ErrNoAttribute, name, inst.schema.name)
	}
	return a.readAny(inst)
}

// Set assigns a base attribute dynamically by name. Assigning a derived
// attribute or an operation fails with ErrNotWritable.
func (inst *Instance) Set(name string, val any) error {
	a, ok := inst.schema.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q on schema %q", ErrNoAttribute, name, inst.schema.name)
	}
	return a.writeAny(inst, val)
}

// GetTag retrieves a tag value from the instance
func (inst *Instance) GetTag(tag any) (any, bool) {
	val, ok := inst.tags[tag]
	return val, ok
}

// SetTag stores a tag value on the instance
func (inst *Instance) SetTag(tag any, val any) {
	inst.tags[tag] = val
}

// check verifies that the attribute belongs to this instance's schema.
func (inst *Instance) check(a AnyAttribute) error {
	if a.declaration().schema != inst.schema {
		return fmt.Errorf("%w: attribute %q belongs to schema %q, instance is of schema %q",
			ErrForeignInstance, a.Name(), a.declaration().schema.name, inst.schema.name)
	}
	return nil
}

// invalidateDownstream marks every derived attribute transitively
// downstream of idx stale. No recomputation happens here: invalidation is
// lazy, computation only runs when a consumer reads a stale attribute.
func (inst *Instance) invalidateDownstream(idx int) {
	for _, di := range inst.schema.graph.descendants(idx) {
		a := inst.schema.decls[di]
		if a.Kind() != KindDerived {
			continue
		}

		s := &inst.slots[di]
		if !s.valid {
			continue
		}

		inst.runCleanups(di, "invalidate")
		s.value = nil
		s.valid = false

		for _, ext := range inst.extensions {
			ext.OnInvalidate(inst, a)
		}
	}
}

// registerCleanups stores cleanup callbacks collected while computing the
// attribute at idx. They run when the slot is next invalidated or when
// the instance is closed.
func (inst *Instance) registerCleanups(idx int, entries []cleanupEntry) {
	if len(entries) == 0 {
		return
	}
	// Append rather than replace: operations may register cleanups on
	// every invocation.
	inst.cleanups[idx] = append(inst.cleanups[idx], entries...)
}

func (inst *Instance) runCleanups(idx int, cleanupContext string) {
	entries := inst.cleanups[idx]
	if len(entries) == 0 {
		return
	}
	delete(inst.cleanups, idx)

	a := inst.schema.decls[idx]
	for i := len(entries) - 1; i >= 0; i-- {
		if err := entries[i].fn(); err != nil {
			cleanupErr := &CleanupError{
				Attribute: a,
				Instance:  inst,
				Err:       err,
				Context:   cleanupContext,
			}

			for _, ext := range inst.extensions {
				if ext.OnCleanupError(cleanupErr) {
					break
				}
			}
		}
	}
}

// Close runs all outstanding cleanups in reverse declaration order and
// disposes the registered extensions. The instance stays usable for
// reads, but cached resources are gone.
func (inst *Instance) Close() error {
	for idx := len(inst.slots) - 1; idx >= 0; idx-- {
		inst.runCleanups(idx, "close")
	}

	for _, ext := range inst.extensions {
		if err := ext.Dispose(inst); err != nil {
			return fmt.Errorf("disposing extension %s: %w", ext.Name(), err)
		}
	}

	return nil
}

// UseExtension registers an extension on the instance
func (inst *Instance) UseExtension(ext Extension) error {
	inst.extensions = append(inst.extensions, ext)
	sortExtensions(inst.extensions)
	return ext.Init(inst)
}

func (inst *Instance) notifyError(err error, op *Op) {
	for _, ext := range inst.extensions {
		ext.OnError(err, op, inst)
	}
}
