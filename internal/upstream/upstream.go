package upstream

import (
	"net/url"
	"sync"
	"time"
)

const ewmaAlpha = 0.2

// Upstream is one server behind a proxy leaf.
type Upstream struct {
	url               *url.URL
	weight            int
	mutex             sync.Mutex
	isHealthy         bool
	activeConnections int
	ewmaResponseTime  time.Duration
	hasEWMA           bool
}

// New creates a healthy Upstream for u. Weights below 1 are raised to 1.
func New(u *url.URL, weight int) *Upstream {
	if weight < 1 {
		weight = 1
	}

	return &Upstream{
		url:       u,
		weight:    weight,
		isHealthy: true,
	}
}

func (u *Upstream) URL() *url.URL {
	return u.url
}

func (u *Upstream) Weight() int {
	return u.weight
}

func (u *Upstream) IncrementConn() {
	u.mutex.Lock()
	u.activeConnections++
	u.mutex.Unlock()
}

// DecrementConn releases a connection; the count never drops below zero.
func (u *Upstream) DecrementConn() {
	u.mutex.Lock()
	if u.activeConnections > 0 {
		u.activeConnections--
	}
	u.mutex.Unlock()
}

func (u *Upstream) ActiveConnections() int {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.activeConnections
}

func (u *Upstream) IsHealthy() bool {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.isHealthy
}

// SetHealthy updates the health flag and reports whether it changed.
func (u *Upstream) SetHealthy(healthy bool) (changed bool) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if u.isHealthy == healthy {
		return false
	}

	u.isHealthy = healthy
	return true
}

// RecordResponse folds duration into the moving average response time.
func (u *Upstream) RecordResponse(duration time.Duration) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if !u.hasEWMA {
		u.ewmaResponseTime = duration
		u.hasEWMA = true
		return
	}

	// ewma = (1 - α) * ewma + α * latest
	u.ewmaResponseTime = time.Duration((1-ewmaAlpha)*float64(u.ewmaResponseTime) + ewmaAlpha*float64(duration))
}

// EWMATime returns the moving average, 0 before the first response.
func (u *Upstream) EWMATime() time.Duration {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.ewmaResponseTime
}
