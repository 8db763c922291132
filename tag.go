package dependent

// Tag is a type-safe key for metadata on attributes, schemas and instances.
type Tag[T any] struct {
	key string
}

// NewTag creates a new tag with the given key
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key returns the tag's key (for debugging)
func (t Tag[T]) Key() string {
	return t.key
}

// Get retrieves the tag value from an attribute
func (t Tag[T]) Get(a AnyAttribute) (T, bool) {
	val, ok := a.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// MustGet retrieves the tag value or panics if not found
func (t Tag[T]) MustGet(a AnyAttribute) T {
	val, ok := t.Get(a)
	if !ok {
		panic("tag " + t.key + " not found")
	}
	return val
}

// GetOrDefault retrieves the tag value or returns a default
func (t Tag[T]) GetOrDefault(a AnyAttribute, defaultVal T) T {
	if val, ok := t.Get(a); ok {
		return val
	}
	return defaultVal
}

// Set stores the tag value on an attribute
func (t Tag[T]) Set(a AnyAttribute, val T) {
	a.SetTag(t, val)
}

// GetFromSchema retrieves the tag value from a schema
func (t Tag[T]) GetFromSchema(s *Schema) (T, bool) {
	val, ok := s.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// SetOnSchema stores the tag value on a schema
func (t Tag[T]) SetOnSchema(s *Schema, val T) {
	s.SetTag(t, val)
}

// GetFromInstance retrieves the tag value from an instance
func (t Tag[T]) GetFromInstance(inst *Instance) (T, bool) {
	val, ok := inst.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// SetOnInstance stores the tag value on an instance
func (t Tag[T]) SetOnInstance(inst *Instance, val T) {
	inst.SetTag(t, val)
}
