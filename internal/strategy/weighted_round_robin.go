package strategy

import (
	"sync"

	"github.com/angeloszaimis/pathrouter/internal/upstream"
)

// weightedRoundRobinStrategy is the smooth weighted round-robin from nginx:
// every upstream gains its weight each pick, the highest wins and pays back
// the total.
type weightedRoundRobinStrategy struct {
	mutex   sync.Mutex
	current map[*upstream.Upstream]int
}

func NewWeightedRoundRobinStrategy() Strategy {
	return &weightedRoundRobinStrategy{
		current: make(map[*upstream.Upstream]int),
	}
}

func (w *weightedRoundRobinStrategy) Select(upstreams []*upstream.Upstream) *upstream.Upstream {
	if len(upstreams) == 0 {
		return nil
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.forgetMissing(upstreams)

	total := 0
	var chosen *upstream.Upstream

	for _, u := range upstreams {
		weight := u.Weight()
		w.current[u] += weight
		total += weight

		if chosen == nil || w.current[u] > w.current[chosen] {
			chosen = u
		}
	}

	w.current[chosen] -= total
	return chosen
}

// forgetMissing drops state for upstreams no longer eligible.
func (w *weightedRoundRobinStrategy) forgetMissing(upstreams []*upstream.Upstream) {
	alive := make(map[*upstream.Upstream]struct{}, len(upstreams))
	for _, u := range upstreams {
		alive[u] = struct{}{}
	}

	for u := range w.current {
		if _, ok := alive[u]; !ok {
			delete(w.current, u)
		}
	}
}
