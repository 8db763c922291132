package dependent

import (
	"sync"
)

// computeCtxPool recycles ComputeCtx values across resolutions.
var computeCtxPool = sync.Pool{
	New: func() any {
		return &ComputeCtx{
			cleanups: make([]cleanupEntry, 0, 8), // Pre-allocate capacity
		}
	},
}

// acquireComputeCtx gets a ComputeCtx from the pool and binds it to the
// attribute being resolved.
func acquireComputeCtx(inst *Instance, a AnyAttribute) *ComputeCtx {
	ctx := computeCtxPool.Get().(*ComputeCtx)
	ctx.inst = inst
	ctx.attrDecl = a
	if ctx.cleanups == nil {
		ctx.cleanups = make([]cleanupEntry, 0, 8)
	} else {
		ctx.cleanups = ctx.cleanups[:0]
	}
	return ctx
}

// releaseComputeCtx returns a ComputeCtx to the pool.
func releaseComputeCtx(ctx *ComputeCtx) {
	if ctx == nil {
		return
	}
	ctx.inst = nil
	ctx.attrDecl = nil
	computeCtxPool.Put(ctx)
}

// Pool recycles instances of one schema for workloads that create and
// drop many short-lived instances. Released instances are reset: slots
// cleared, outstanding cleanups run, identity discarded.
type Pool struct {
	schema    *Schema
	opts      []InstanceOption
	instances sync.Pool
	metrics   PoolMetrics
}

// PoolMetrics tracks pool usage statistics
type PoolMetrics struct {
	mu     sync.RWMutex
	hits   uint64
	misses uint64
}

// Hits returns the number of acquisitions served from the pool.
func (m *PoolMetrics) Hits() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits
}

// Misses returns the number of acquisitions that allocated a fresh instance.
func (m *PoolMetrics) Misses() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.misses
}

// NewPool creates an instance pool for the schema. The options are
// applied to every instance the pool hands out, pooled or fresh.
func NewPool(s *Schema, opts ...InstanceOption) *Pool {
	return &Pool{
		schema: s,
		opts:   opts,
	}
}

// Acquire returns a reset instance from the pool, or a fresh one when the
// pool is empty. Either way the instance carries a new identity token and
// the pool's options.
func (p *Pool) Acquire() *Instance {
	pooled, ok := p.instances.Get().(*Instance)
	if ok {
		p.metrics.mu.Lock()
		p.metrics.hits++
		p.metrics.mu.Unlock()

		pooled.id = newInstanceID()
		for _, opt := range p.opts {
			opt(pooled)
		}
		return pooled
	}

	p.metrics.mu.Lock()
	p.metrics.misses++
	p.metrics.mu.Unlock()

	return p.schema.NewInstance(p.opts...)
}

// Release resets the instance and returns it to the pool. Outstanding
// cleanups run first; extension state is dropped.
func (p *Pool) Release(inst *Instance) {
	if inst == nil || inst.schema != p.schema {
		return
	}

	for idx := len(inst.slots) - 1; idx >= 0; idx-- {
		inst.runCleanups(idx, "close")
	}

	for i := range inst.slots {
		inst.slots[i] = slot{}
	}
	inst.extensions = nil
	for k := range inst.tags {
		delete(inst.tags, k)
	}

	p.instances.Put(inst)
}

// Metrics returns the pool's usage counters.
func (p *Pool) Metrics() *PoolMetrics {
	return &p.metrics
}

// ResetMetrics resets the usage counters to zero.
func (p *Pool) ResetMetrics() {
	p.metrics.mu.Lock()
	defer p.metrics.mu.Unlock()
	p.metrics.hits = 0
	p.metrics.misses = 0
}
