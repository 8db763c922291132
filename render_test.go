package dependent

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func buildPersonSchema(t *testing.T) (*Schema, *Base[string]) {
	t.Helper()

	s := NewSchema("person")
	name := Must(DeclareBase[string](s, "name"))
	honorific := Must(Derived1(s, "honorific", name,
		func(ctx *ComputeCtx, name *Reader[string]) (string, error) {
			n, _ := name.Get()
			return "Professor " + n, nil
		},
	))
	Must(Operation1(s, "adjust_honorific", honorific,
		func(ctx *ComputeCtx, honorific *Reader[string], args ...any) (string, error) {
			h, _ := honorific.Get()
			return h, nil
		},
	))
	return s, name
}

func TestExportDOT_Golden(t *testing.T) {
	s, _ := buildPersonSchema(t)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "person_dot", []byte(ExportDOT(s)))
}

func TestExportDOT_Deterministic(t *testing.T) {
	s, _ := buildPersonSchema(t)
	assert.Equal(t, ExportDOT(s), ExportDOT(s))
}

func TestRenderTree_Labels(t *testing.T) {
	s, _ := buildPersonSchema(t)

	adjust, ok := s.Attribute("adjust_honorific")
	assert.True(t, ok)

	drawing := RenderTree(adjust)
	assert.Contains(t, drawing, "adjust_honorific()")
	assert.Contains(t, drawing, "honorific*")
	assert.Contains(t, drawing, "name")
}

func TestRenderTree_BaseHasNoUpstream(t *testing.T) {
	s, _ := buildPersonSchema(t)

	name, ok := s.Attribute("name")
	assert.True(t, ok)

	drawing := RenderTree(name)
	assert.Contains(t, drawing, "name")
	assert.NotContains(t, drawing, "honorific")
	assert.Equal(t, 1, strings.Count(drawing, "name"))
}
