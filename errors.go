package dependent

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// Sentinel errors for declaration and access misuse.
var (
	// ErrSchemaFrozen is returned when declaring an attribute on a schema
	// that already has instances.
	ErrSchemaFrozen = errors.New("schema is frozen")

	// ErrDuplicateAttribute is returned when an attribute name is declared twice.
	ErrDuplicateAttribute = errors.New("duplicate attribute")

	// ErrNoAttribute is returned by dynamic access for an unknown attribute name.
	ErrNoAttribute = errors.New("no such attribute")

	// ErrNotWritable is returned when assigning to a derived attribute or
	// an operation through dynamic access.
	ErrNotWritable = errors.New("attribute is not writable")

	// ErrForeignInstance is returned when an attribute is used with an
	// instance of a different schema.
	ErrForeignInstance = errors.New("instance belongs to a different schema")
)

// CycleError is returned at declaration time when an attribute would
// depend, directly or transitively, on itself.
type CycleError struct {
	Schema    string
	Attribute string
	// Path lists the attribute names along the cycle, starting and ending
	// with the offending attribute.
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("cyclic dependency on schema %q: %s", e.Schema, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("cyclic dependency on schema %q involving attribute %q", e.Schema, e.Attribute)
}

// UnknownDependencyError is returned at declaration time when a dependency
// refers to an attribute that is not registered on the schema. Forward
// references are such errors: dependencies must be declared before the
// attribute that uses them.
type UnknownDependencyError struct {
	Schema     string
	Attribute  string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("attribute %q on schema %q depends on unknown attribute %q", e.Attribute, e.Schema, e.Dependency)
}

// ComputeError wraps a failure raised by a user compute or operation
// function. The failed attribute's slot stays invalid, so the next read
// retries the computation instead of caching the failure.
type ComputeError struct {
	Attribute  string
	Schema     string
	Cause      error
	StackTrace []byte
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("computing attribute %q on schema %q: %v", e.Attribute, e.Schema, e.Cause)
}

func (e *ComputeError) Unwrap() error {
	return e.Cause
}

// newComputeError wraps cause unless it is already a ComputeError from a
// nested attribute read, which propagates unchanged.
func newComputeError(a AnyAttribute, cause error) error {
	var ce *ComputeError
	if errors.As(cause, &ce) {
		return cause
	}
	return &ComputeError{
		Attribute:  a.Name(),
		Schema:     a.Schema().Name(),
		Cause:      cause,
		StackTrace: debug.Stack(),
	}
}

// SafeTypeAssertion performs safe type assertion with proper error
func SafeTypeAssertion[T any](value any) (T, error) {
	if value == nil {
		var zero T
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("type assertion error: expected %T, got %T (value: %v)", zero, value, value)
	}

	return typed, nil
}
