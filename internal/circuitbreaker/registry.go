package circuitbreaker

import (
	"sync"
	"time"
)

// Registry hands out one breaker per upstream URL.
type Registry struct {
	mutex     sync.RWMutex
	breakers  map[string]*CircuitBreaker
	threshold int
	timeout   time.Duration
}

func NewRegistry(threshold int, timeout time.Duration) *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		timeout:   timeout,
	}
}

// Breaker returns the breaker for key, creating it on first use.
func (r *Registry) Breaker(key string) *CircuitBreaker {
	r.mutex.RLock()
	cb, ok := r.breakers[key]
	r.mutex.RUnlock()

	if ok {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if cb, ok = r.breakers[key]; ok {
		return cb
	}

	cb = NewCircuitBreaker(r.threshold, r.timeout)
	r.breakers[key] = cb
	return cb
}

// Stats reports the state of every breaker handed out so far.
func (r *Registry) Stats() map[string]State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]State, len(r.breakers))
	for key, cb := range r.breakers {
		stats[key] = cb.State()
	}

	return stats
}
