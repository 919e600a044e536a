package proxy

import (
	"errors"
	"sync"

	"github.com/angeloszaimis/pathrouter/internal/circuitbreaker"
	"github.com/angeloszaimis/pathrouter/internal/strategy"
	"github.com/angeloszaimis/pathrouter/internal/upstream"
)

var ErrNoUpstream = errors.New("no upstream available")

// Pool selects an eligible upstream: healthy, and with a breaker that lets
// traffic through.
type Pool struct {
	upstreams []*upstream.Upstream
	strategy  strategy.Strategy
	breakers  *circuitbreaker.Registry
	mutex     sync.Mutex
}

// NewPool builds a pool. breakers may be nil to disable circuit breaking.
func NewPool(upstreams []*upstream.Upstream, s strategy.Strategy, breakers *circuitbreaker.Registry) *Pool {
	return &Pool{
		upstreams: upstreams,
		strategy:  s,
		breakers:  breakers,
	}
}

func (p *Pool) Upstreams() []*upstream.Upstream {
	return p.upstreams
}

// Reserve picks an upstream for key and counts a connection on it. The
// caller must release it with DecrementConn.
func (p *Pool) Reserve(key string) (*upstream.Upstream, error) {
	p.mutex.Lock()

	eligible := p.eligible()
	if len(eligible) == 0 {
		p.mutex.Unlock()
		return nil, ErrNoUpstream
	}

	var chosen *upstream.Upstream
	if keyed, ok := p.strategy.(strategy.Keyed); ok {
		chosen = keyed.SelectKey(eligible, key)
	} else {
		chosen = p.strategy.Select(eligible)
	}
	p.mutex.Unlock()

	if chosen == nil {
		return nil, ErrNoUpstream
	}

	chosen.IncrementConn()
	return chosen, nil
}

// Breaker returns the breaker for u, or nil when breaking is disabled.
func (p *Pool) Breaker(u *upstream.Upstream) *circuitbreaker.CircuitBreaker {
	if p.breakers == nil {
		return nil
	}

	return p.breakers.Breaker(u.URL().String())
}

func (p *Pool) eligible() []*upstream.Upstream {
	out := make([]*upstream.Upstream, 0, len(p.upstreams))

	for _, u := range p.upstreams {
		if !u.IsHealthy() {
			continue
		}
		if cb := p.Breaker(u); cb != nil && !cb.Allow() {
			continue
		}
		out = append(out, u)
	}

	return out
}
