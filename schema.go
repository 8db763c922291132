package dependent

import (
	"fmt"
	"sort"
)

// Schema is the type-level half of the split: the ordered attribute
// declarations of one logical type and their dependency graph. A schema
// is built once by a sequence of declarations, freezes when its first
// instance is created, and is then shared read-only by every instance.
//
// Dependencies are resolved in declaration order only: an attribute may
// depend just on attributes already declared on the same schema. Forward
// references fail with UnknownDependencyError.
type Schema struct {
	name   string
	decls  []AnyAttribute
	byName map[string]AnyAttribute
	graph  *graph
	frozen bool
	tags   map[any]any
}

// NewSchema creates an empty schema with the given name.
func NewSchema(name string) *Schema {
	return &Schema{
		name:   name,
		byName: make(map[string]AnyAttribute),
		graph:  newGraph(),
		tags:   make(map[any]any),
	}
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// Len returns the number of declared attributes.
func (s *Schema) Len() int {
	return len(s.decls)
}

// Frozen reports whether the schema has created instances and no longer
// accepts declarations.
func (s *Schema) Frozen() bool {
	return s.frozen
}

// Attributes returns the declarations in declaration order.
func (s *Schema) Attributes() []AnyAttribute {
	out := make([]AnyAttribute, len(s.decls))
	copy(out, s.decls)
	return out
}

// Attribute looks up a declaration by name.
func (s *Schema) Attribute(name string) (AnyAttribute, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// Dependencies returns the direct upstream declarations of a, in the
// order they were declared as dependencies.
func (s *Schema) Dependencies(a AnyAttribute) []AnyAttribute {
	return s.attributesAt(s.graph.dependencies(a.Index()))
}

// Dependents returns the direct downstream declarations of a.
func (s *Schema) Dependents(a AnyAttribute) []AnyAttribute {
	return s.attributesAt(s.graph.dependents(a.Index()))
}

// Descendants returns every declaration transitively downstream of a, in
// declaration order.
func (s *Schema) Descendants(a AnyAttribute) []AnyAttribute {
	idxs := s.graph.descendants(a.Index())
	sort.Ints(idxs)
	return s.attributesAt(idxs)
}

func (s *Schema) attributesAt(idxs []int) []AnyAttribute {
	if len(idxs) == 0 {
		return nil
	}
	out := make([]AnyAttribute, len(idxs))
	for i, idx := range idxs {
		out[i] = s.decls[idx]
	}
	return out
}

// GetTag retrieves a tag value from the schema
func (s *Schema) GetTag(tag any) (any, bool) {
	val, ok := s.tags[tag]
	return val, ok
}

// SetTag stores a tag value on the schema
func (s *Schema) SetTag(tag any, val any) {
	s.tags[tag] = val
}

// resolveHandles maps typed dependency handles to graph indices,
// rejecting handles declared on another schema.
func (s *Schema) resolveHandles(name string, deps []AnyAttribute) ([]int, error) {
	idxs := make([]int, 0, len(deps))
	for _, dep := range deps {
		if dep == nil {
			return nil, &UnknownDependencyError{Schema: s.name, Attribute: name, Dependency: "<nil>"}
		}
		d := dep.declaration()
		if d.schema != s {
			return nil, &UnknownDependencyError{Schema: s.name, Attribute: name, Dependency: d.name}
		}
		idxs = append(idxs, d.index)
	}
	return idxs, nil
}

// resolveNames maps dependency names to graph indices. A dependency that
// names the attribute being declared is a self-cycle; any other
// unregistered name is unknown.
func (s *Schema) resolveNames(name string, deps []string) ([]int, error) {
	idxs := make([]int, 0, len(deps))
	for _, dep := range deps {
		if dep == name {
			return nil, &CycleError{Schema: s.name, Attribute: name, Path: []string{name, name}}
		}
		a, ok := s.byName[dep]
		if !ok {
			return nil, &UnknownDependencyError{Schema: s.name, Attribute: name, Dependency: dep}
		}
		idxs = append(idxs, a.Index())
	}
	return idxs, nil
}

// register adds a validated declaration to the schema and wires its
// upstream edges.
func (s *Schema) register(kind Kind, name string, depIdx []int) (*attr, error) {
	if s.frozen {
		return nil, fmt.Errorf("%w: cannot declare %q on schema %q after its first instance", ErrSchemaFrozen, name, s.name)
	}
	if name == "" {
		return nil, fmt.Errorf("attribute name must not be empty on schema %q", s.name)
	}
	if _, dup := s.byName[name]; dup {
		return nil, fmt.Errorf("%w: %q on schema %q", ErrDuplicateAttribute, name, s.name)
	}

	idx := s.graph.addNode()
	a := &attr{
		schema: s,
		name:   name,
		index:  idx,
		kind:   kind,
		tags:   make(map[any]any),
	}

	for _, from := range depIdx {
		if !s.graph.addEdge(from, idx) {
			return nil, &CycleError{
				Schema:    s.name,
				Attribute: name,
				Path:      s.pathNames(s.graph.pathBetween(idx, from)),
			}
		}
	}

	return a, nil
}

// add publishes a registered declaration under its name.
func (s *Schema) add(a AnyAttribute) {
	s.decls = append(s.decls, a)
	s.byName[a.Name()] = a
}

func (s *Schema) pathNames(idxs []int) []string {
	names := make([]string, 0, len(idxs))
	for _, idx := range idxs {
		if idx < len(s.decls) {
			names = append(names, s.decls[idx].Name())
		}
	}
	return names
}
