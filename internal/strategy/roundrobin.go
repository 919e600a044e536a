package strategy

import (
	"sync/atomic"

	"github.com/angeloszaimis/pathrouter/internal/upstream"
)

type roundRobinStrategy struct {
	current atomic.Uint64
}

func (rr *roundRobinStrategy) Select(upstreams []*upstream.Upstream) *upstream.Upstream {
	if len(upstreams) == 0 {
		return nil
	}

	n := rr.current.Add(1)
	return upstreams[(n-1)%uint64(len(upstreams))]
}

func NewRoundRobinStrategy() Strategy {
	return &roundRobinStrategy{}
}
