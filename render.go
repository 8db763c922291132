package dependent

import (
	"fmt"
	"strings"

	"github.com/m1gwings/treedrawer/tree"
)

// RenderTree draws the upstream dependency tree of an attribute as a
// unicode box drawing, for debugging and error reports. Shared upstream
// attributes of a diamond appear once per path; the drawing is a tree,
// not the underlying DAG.
func RenderTree(a AnyAttribute) string {
	t := tree.NewTree(tree.NodeString(renderLabel(a)))
	addUpstream(t, a)
	return fmt.Sprint(t)
}

func addUpstream(t *tree.Tree, a AnyAttribute) {
	deps := a.Schema().Dependencies(a)
	for i, dep := range deps {
		t.AddChild(tree.NodeString(renderLabel(dep)))
		child, err := t.Child(i)
		if err != nil {
			continue
		}
		addUpstream(child, dep)
	}
}

func renderLabel(a AnyAttribute) string {
	switch a.Kind() {
	case KindBase:
		return a.Name()
	case KindOperation:
		return a.Name() + "()"
	default:
		return a.Name() + "*"
	}
}

// ExportDOT emits the schema's dependency graph in Graphviz DOT form.
// Nodes appear in declaration order, edges in dependency-declaration
// order, so the output is deterministic and fit for golden files.
func ExportDOT(s *Schema) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "digraph %q {\n", s.Name())
	fmt.Fprintf(&sb, "  rankdir=LR;\n")

	for _, a := range s.Attributes() {
		fmt.Fprintf(&sb, "  %q [shape=%s];\n", a.Name(), dotShape(a.Kind()))
	}

	for _, a := range s.Attributes() {
		for _, dep := range s.Dependencies(a) {
			fmt.Fprintf(&sb, "  %q -> %q;\n", dep.Name(), a.Name())
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func dotShape(k Kind) string {
	switch k {
	case KindBase:
		return "box"
	case KindOperation:
		return "hexagon"
	default:
		return "ellipse"
	}
}
