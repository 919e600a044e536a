package strategy

import (
	"time"

	"github.com/angeloszaimis/pathrouter/internal/upstream"
)

type leastResponseStrategy struct{}

// Select scores each upstream as ewma * (active+1). An upstream that has
// never answered is tried first.
func (l *leastResponseStrategy) Select(upstreams []*upstream.Upstream) *upstream.Upstream {
	var chosen *upstream.Upstream
	var best time.Duration

	for _, u := range upstreams {
		ewma := u.EWMATime()
		if ewma == 0 {
			return u
		}

		score := ewma * (time.Duration(u.ActiveConnections()) + 1)
		if chosen == nil || score < best {
			chosen = u
			best = score
		}
	}

	return chosen
}

func NewLeastResponseStrategy() Strategy {
	return &leastResponseStrategy{}
}
