package dependent

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerived_Memoization(t *testing.T) {
	s := NewSchema("person")
	name := Must(DeclareBase[string](s, "name"))

	computes := 0
	honorific := Must(Derived1(s, "honorific", name,
		func(ctx *ComputeCtx, name *Reader[string]) (string, error) {
			computes++
			n, _ := name.Get()
			return "Professor " + n, nil
		},
	))

	inst := s.NewInstance()
	require.NoError(t, name.Set(inst, "Ada"))

	first, err := honorific.Get(inst)
	require.NoError(t, err)
	assert.Equal(t, "Professor Ada", first)
	assert.Equal(t, 1, computes)

	// Reading twice without an intervening upstream write returns the
	// identical value and invokes the compute function at most once.
	second, err := honorific.Get(inst)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, computes)
}

func TestDerived_RecomputeAfterWrite(t *testing.T) {
	s := NewSchema("person")
	name := Must(DeclareBase[string](s, "name"))

	computes := 0
	honorific := Must(Derived1(s, "honorific", name,
		func(ctx *ComputeCtx, name *Reader[string]) (string, error) {
			computes++
			n, _ := name.Get()
			return "Professor " + n, nil
		},
	))

	inst := s.NewInstance()
	name.Set(inst, "Ada")

	got, _ := honorific.Get(inst)
	assert.Equal(t, "Professor Ada", got)

	// The write only flips validity flags; the recomputation happens on
	// the next read.
	name.Set(inst, "Grace")
	assert.Equal(t, 1, computes)
	assert.False(t, inst.Valid(honorific))

	got, err := honorific.Get(inst)
	require.NoError(t, err)
	assert.Equal(t, "Professor Grace", got)
	assert.Equal(t, 2, computes)
}

func TestDerived_MultipleWritesOneRecompute(t *testing.T) {
	s := NewSchema("person")
	name := Must(DeclareBase[string](s, "name"))

	computes := 0
	upper := Must(Derived1(s, "upper", name,
		func(ctx *ComputeCtx, name *Reader[string]) (string, error) {
			computes++
			n, _ := name.Get()
			return strings.ToUpper(n), nil
		},
	))

	inst := s.NewInstance()
	name.Set(inst, "a")
	name.Set(inst, "b")
	name.Set(inst, "c")

	got, _ := upper.Get(inst)
	assert.Equal(t, "C", got)
	assert.Equal(t, 1, computes)
}

func TestDerived_NestedStalenessResolvesBottomUp(t *testing.T) {
	s := NewSchema("chain")
	n := Must(DeclareBase[int](s, "n"))

	doubledComputes := 0
	doubled := Must(Derived1(s, "doubled", n,
		func(ctx *ComputeCtx, n *Reader[int]) (int, error) {
			doubledComputes++
			v, _ := n.Get()
			return v * 2, nil
		},
	))

	plusTenComputes := 0
	plusTen := Must(Derived1(s, "plus_ten", doubled,
		func(ctx *ComputeCtx, d *Reader[int]) (int, error) {
			plusTenComputes++
			v, err := d.Get()
			if err != nil {
				return 0, err
			}
			return v + 10, nil
		},
	))

	inst := s.NewInstance()
	n.Set(inst, 5)

	// Reading the top of the chain resolves the whole stale chain.
	got, err := plusTen.Get(inst)
	require.NoError(t, err)
	assert.Equal(t, 20, got)
	assert.Equal(t, 1, doubledComputes)
	assert.Equal(t, 1, plusTenComputes)
	assert.True(t, inst.Valid(doubled))
}

func TestDerived_ErrorLeavesSlotInvalid(t *testing.T) {
	s := NewSchema("flaky")
	n := Must(DeclareBase[int](s, "n"))

	boom := errors.New("boom")
	failures := 1
	derived := Must(Derived1(s, "derived", n,
		func(ctx *ComputeCtx, n *Reader[int]) (int, error) {
			if failures > 0 {
				failures--
				return 0, boom
			}
			v, _ := n.Get()
			return v, nil
		},
	))

	inst := s.NewInstance()
	n.Set(inst, 7)

	_, err := derived.Get(inst)
	require.Error(t, err)

	var ce *ComputeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "derived", ce.Attribute)
	assert.Equal(t, "flaky", ce.Schema)
	assert.ErrorIs(t, err, boom)
	assert.NotEmpty(t, ce.StackTrace)

	// The failure is not cached: the slot stays invalid and the next
	// read retries.
	assert.False(t, inst.Valid(derived))

	got, err := derived.Get(inst)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.True(t, inst.Valid(derived))
}

func TestDerived_NestedErrorNotDoubleWrapped(t *testing.T) {
	s := NewSchema("chain")
	n := Must(DeclareBase[int](s, "n"))

	boom := errors.New("boom")
	inner := Must(Derived1(s, "inner", n,
		func(ctx *ComputeCtx, n *Reader[int]) (int, error) {
			return 0, boom
		},
	))

	outer := Must(Derived1(s, "outer", inner,
		func(ctx *ComputeCtx, i *Reader[int]) (int, error) {
			return i.Get()
		},
	))

	inst := s.NewInstance()

	_, err := outer.Get(inst)
	require.Error(t, err)

	// The inner ComputeError propagates unchanged: it still names the
	// attribute that failed.
	var ce *ComputeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "inner", ce.Attribute)
	assert.ErrorIs(t, err, boom)
}

func TestDerived_Invalidate(t *testing.T) {
	s := NewSchema("person")
	name := Must(DeclareBase[string](s, "name"))

	computes := 0
	upper := Must(Derived1(s, "upper", name,
		func(ctx *ComputeCtx, name *Reader[string]) (string, error) {
			computes++
			n, _ := name.Get()
			return strings.ToUpper(n), nil
		},
	))

	inst := s.NewInstance()
	name.Set(inst, "ada")

	upper.Get(inst)
	require.Equal(t, 1, computes)

	upper.Invalidate(inst)
	assert.False(t, inst.Valid(upper))

	got, _ := upper.Get(inst)
	assert.Equal(t, "ADA", got)
	assert.Equal(t, 2, computes)
}

func TestDerived_UnassignedBaseReadsZero(t *testing.T) {
	s := NewSchema("person")
	name := Must(DeclareBase[string](s, "name"))

	greeting := Must(Derived1(s, "greeting", name,
		func(ctx *ComputeCtx, name *Reader[string]) (string, error) {
			n, _ := name.Get()
			return "hi " + n, nil
		},
	))

	inst := s.NewInstance()

	got, err := greeting.Get(inst)
	require.NoError(t, err)
	assert.Equal(t, "hi ", got)
}

func TestReader_Peek(t *testing.T) {
	s := NewSchema("person")
	name := Must(DeclareBase[string](s, "name"))

	var peeked string
	var peekedOK bool
	upper := Must(Derived1(s, "upper", name,
		func(ctx *ComputeCtx, name *Reader[string]) (string, error) {
			peeked, peekedOK = name.Peek()
			n, _ := name.Get()
			return strings.ToUpper(n), nil
		},
	))

	inst := s.NewInstance()

	// Peek before any assignment sees nothing.
	_, err := upper.Get(inst)
	require.NoError(t, err)
	assert.False(t, peekedOK)

	name.Set(inst, "ada")
	_, err = upper.Get(inst)
	require.NoError(t, err)
	assert.True(t, peekedOK)
	assert.Equal(t, "ada", peeked)
}

func TestDerived_NameBasedDependencies(t *testing.T) {
	s := NewSchema("person")
	first := Must(DeclareBase[string](s, "first"))
	Must(DeclareBase[string](s, "last"))

	full, err := DeclareDerived(s, "full", []string{"first", "last"},
		func(ctx *ComputeCtx) (string, error) {
			f, err := ReadAs[string](ctx, "first")
			if err != nil {
				return "", err
			}
			l, err := ReadAs[string](ctx, "last")
			if err != nil {
				return "", err
			}
			return f + " " + l, nil
		},
	)
	require.NoError(t, err)

	inst := s.NewInstance()
	first.Set(inst, "Ada")
	inst.Set("last", "Lovelace")

	got, err := full.Get(inst)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got)

	deps := s.Dependencies(full)
	require.Len(t, deps, 2)
	assert.Equal(t, "first", deps[0].Name())
}
