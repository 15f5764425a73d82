package bptree

import "sync"


//============================================= Block Buffer Pool


// blockPool recycles fixed-size scratch buffers used to encode node blocks
// so a long-running Insert/Remove workload doesn't churn the
// allocator on every split, merge, or borrow.
//
// The teacher (sirgallo-mari's NodePool) pools whole decoded node objects to
// avoid allocation during its copy-on-write path-copy; this design mutates
// nodes in place and never copies a path, so there is nothing analogous to
// pool at the node level. What survives is the same instinct applied to the
// one thing still allocated per node touch: the encode scratch buffer.
type blockPool struct {
	pool sync.Pool
	size int
}

func newBlockPool(size int) *blockPool {
	bp := &blockPool{size: size}
	bp.pool.New = func() any { return make([]byte, bp.size) }

	return bp
}

func (bp *blockPool) get() []byte {
	buf := bp.pool.Get().([]byte)
	for i := range buf { buf[i] = 0 }

	return buf
}

func (bp *blockPool) put(buf []byte) {
	if len(buf) != bp.size { return }
	bp.pool.Put(buf)
}
