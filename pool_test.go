package dependent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_AcquireMissThenHit(t *testing.T) {
	s := NewSchema("person")
	Must(DeclareBase[string](s, "name"))

	pool := NewPool(s)

	first := pool.Acquire()
	require.NotNil(t, first)
	assert.Equal(t, uint64(0), pool.Metrics().Hits())
	assert.Equal(t, uint64(1), pool.Metrics().Misses())

	pool.Release(first)

	second := pool.Acquire()
	require.NotNil(t, second)
	assert.Equal(t, uint64(1), pool.Metrics().Hits())
	assert.Equal(t, uint64(1), pool.Metrics().Misses())
}

func TestPool_ReleasedInstanceIsReset(t *testing.T) {
	s := NewSchema("person")
	name := Must(DeclareBase[string](s, "name"))
	upper := Must(Derived1(s, "upper", name,
		func(ctx *ComputeCtx, name *Reader[string]) (string, error) {
			n, _ := name.Get()
			return n, nil
		},
	))

	pool := NewPool(s)

	inst := pool.Acquire()
	require.NoError(t, name.Set(inst, "Ada"))
	_, err := upper.Get(inst)
	require.NoError(t, err)

	oldID := inst.ID()
	pool.Release(inst)

	reused := pool.Acquire()
	require.Equal(t, uint64(1), pool.Metrics().Hits(), "expected the released instance back")

	assert.NotEqual(t, oldID, reused.ID(), "recycled instances get a fresh identity")
	assert.False(t, reused.Valid(name))
	assert.False(t, reused.Valid(upper))

	v, ok := name.Get(reused)
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestPool_ReleaseRunsCleanups(t *testing.T) {
	s := NewSchema("resources")
	path := Must(DeclareBase[string](s, "path"))

	closed := 0
	handle := Must(Derived1(s, "handle", path,
		func(ctx *ComputeCtx, path *Reader[string]) (string, error) {
			ctx.OnCleanup(func() error {
				closed++
				return nil
			})
			return "ok", nil
		},
	))

	pool := NewPool(s)

	inst := pool.Acquire()
	require.NoError(t, path.Set(inst, "x"))
	_, err := handle.Get(inst)
	require.NoError(t, err)

	pool.Release(inst)
	assert.Equal(t, 1, closed)
}

func TestPool_ReleaseForeignInstanceIgnored(t *testing.T) {
	a := NewSchema("a")
	Must(DeclareBase[int](a, "x"))
	b := NewSchema("b")
	Must(DeclareBase[int](b, "y"))

	pool := NewPool(a)
	pool.Release(b.NewInstance())
	pool.Release(nil)

	inst := pool.Acquire()
	require.Same(t, a, inst.Schema())
	assert.Equal(t, uint64(1), pool.Metrics().Misses(), "foreign releases never enter the pool")
}

func TestPool_OptionsReappliedOnReuse(t *testing.T) {
	s := NewSchema("person")
	Must(DeclareBase[string](s, "name"))

	env := NewTag[string]("env")
	pool := NewPool(s, WithInstanceTag(env, "test"))

	inst := pool.Acquire()
	got, ok := env.GetFromInstance(inst)
	require.True(t, ok)
	assert.Equal(t, "test", got)

	pool.Release(inst)

	reused := pool.Acquire()
	got, ok = env.GetFromInstance(reused)
	require.True(t, ok, "pool options are reapplied after reset")
	assert.Equal(t, "test", got)
}

func TestPool_ResetMetrics(t *testing.T) {
	s := NewSchema("person")
	Must(DeclareBase[string](s, "name"))

	pool := NewPool(s)
	pool.Release(pool.Acquire())
	pool.Acquire()

	pool.ResetMetrics()
	assert.Zero(t, pool.Metrics().Hits())
	assert.Zero(t, pool.Metrics().Misses())
}
