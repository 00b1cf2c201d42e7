package sim

import (
	"sync"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/geom"
)

// PositionsPool recycles working buffers of one element count.
type PositionsPool struct {
	pool sync.Pool
	size int
}

func NewPositionsPool(n int) *PositionsPool {
	return &PositionsPool{
		size: n,
		pool: sync.Pool{
			New: func() interface{} {
				return make(chain.Positions, n)
			},
		},
	}
}

func (p *PositionsPool) Size() int { return p.size }

func (p *PositionsPool) Get() chain.Positions {
	return p.pool.Get().(chain.Positions)
}

// Put returns buf to the pool. Buffers of another size are dropped.
func (p *PositionsPool) Put(buf chain.Positions) {
	if len(buf) == p.size {
		for i := range buf {
			buf[i] = geom.Vec3{}
		}
		p.pool.Put(buf)
	}
}

func (p *PositionsPool) GetAndCopy(src chain.Positions) chain.Positions {
	dst := p.Get()
	copy(dst, src)
	return dst
}
