package dependent

// Kind classifies an attribute declaration.
type Kind string

const (
	// KindBase is a settable attribute, a root of the dependency graph.
	KindBase Kind = "base"
	// KindDerived is a computed, memoized attribute.
	KindDerived Kind = "derived"
	// KindOperation is a dependency-aware callable, evaluated fresh on
	// every call.
	KindOperation Kind = "operation"
)

// AnyAttribute is a type-erased view of an attribute declaration, used
// for graph introspection, dynamic access and extensions.
type AnyAttribute interface {
	// Name returns the attribute name, unique per schema.
	Name() string
	// Kind returns the declaration kind.
	Kind() Kind
	// Schema returns the owning schema.
	Schema() *Schema
	// Index returns the stable slot index assigned at declaration time.
	Index() int

	GetTag(tag any) (any, bool)
	SetTag(tag any, val any)

	// readAny resolves the attribute's dynamic value for an instance.
	readAny(inst *Instance) (any, error)
	// writeAny assigns through dynamic access; only base attributes accept it.
	writeAny(inst *Instance, val any) error

	declaration() *attr
}

// attr carries the declaration state shared by all attribute kinds.
type attr struct {
	schema *Schema
	name   string
	index  int
	kind   Kind
	tags   map[any]any
}

func (a *attr) Name() string {
	return a.name
}

func (a *attr) Kind() Kind {
	return a.kind
}

func (a *attr) Schema() *Schema {
	return a.schema
}

func (a *attr) Index() int {
	return a.index
}

func (a *attr) GetTag(tag any) (any, bool) {
	val, ok := a.tags[tag]
	return val, ok
}

func (a *attr) SetTag(tag any, val any) {
	a.tags[tag] = val
}

func (a *attr) declaration() *attr {
	return a
}

// Source is a typed upstream dependency: a base or derived attribute
// producing values of type T.
type Source[T any] interface {
	AnyAttribute
	read(inst *Instance) (T, error)
}

// Reader resolves one declared upstream attribute for the instance being
// computed. Reads of stale derived attributes recompute them through the
// usual protocol, so readers always observe consistent values.
type Reader[T any] struct {
	src  Source[T]
	inst *Instance
}

// Get resolves the upstream value. For a base attribute that was never
// assigned, it returns the zero value.
func (r *Reader[T]) Get() (T, error) {
	return r.src.read(r.inst)
}

// Peek returns the currently cached value without computing anything.
func (r *Reader[T]) Peek() (T, bool) {
	var zero T
	s := r.inst.slots[r.src.Index()]
	if !s.valid {
		return zero, false
	}
	val, err := SafeTypeAssertion[T](s.value)
	if err != nil {
		return zero, false
	}
	return val, true
}

// Attribute returns the upstream declaration.
func (r *Reader[T]) Attribute() AnyAttribute {
	return r.src
}

// AttrOption is a modifier for attribute declarations.
type AttrOption func(AnyAttribute)

// WithTag returns an option that sets a tag on an attribute declaration.
func WithTag[T any](tag Tag[T], val T) AttrOption {
	return func(a AnyAttribute) {
		tag.Set(a, val)
	}
}
