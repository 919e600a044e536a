package strategy

import (
	"math"

	"github.com/angeloszaimis/pathrouter/internal/upstream"
)

type leastConnStrategy struct{}

// Select returns the first upstream with the fewest active connections.
func (l *leastConnStrategy) Select(upstreams []*upstream.Upstream) *upstream.Upstream {
	var best *upstream.Upstream
	bestConns := math.MaxInt

	for _, u := range upstreams {
		if conns := u.ActiveConnections(); conns < bestConns {
			bestConns = conns
			best = u
		}
	}

	return best
}

func NewLeastConnStrategy() Strategy {
	return &leastConnStrategy{}
}
