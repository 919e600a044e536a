package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxSamples = 1000

type Metrics struct {
	mutex         sync.RWMutex
	requests      int64
	hits          map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	selections    map[string]int64
	healthStatus  map[string]bool
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                      `json:"total_requests"`
	Uptime        time.Duration              `json:"uptime"`
	Routes        map[string]RouteMetrics    `json:"routes"`
	Upstreams     map[string]UpstreamMetrics `json:"upstreams"`
}

type RouteMetrics struct {
	Hits        int64         `json:"hits"`
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	P99Response time.Duration `json:"p99_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

type UpstreamMetrics struct {
	Selections int64 `json:"selections"`
	Healthy    bool  `json:"healthy"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		hits:          make(map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		selections:    make(map[string]int64),
		healthStatus:  make(map[string]bool),
		startTime:     time.Now(),
	}
}

func (m *Metrics) IncrementRequests() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests++
}

// RecordRoute counts one answer from route. Only the latest 1000 durations
// per route are kept for percentiles.
func (m *Metrics) RecordRoute(route string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.hits[route]++

	samples := append(m.responseTimes[route], duration)
	if len(samples) > maxSamples {
		samples = samples[len(samples)-maxSamples:]
	}
	m.responseTimes[route] = samples

	if m.statusCodes[route] == nil {
		m.statusCodes[route] = make(map[int]int64)
	}
	m.statusCodes[route][statusCode]++
}

func (m *Metrics) RecordSelection(upstream string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.selections[upstream]++
}

func (m *Metrics) UpdateHealthStatus(upstream string, healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.healthStatus[upstream] = healthy
}

// Snapshot returns a copy that later events do not modify.
func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		TotalRequests: m.requests,
		Uptime:        time.Since(m.startTime),
		Routes:        make(map[string]RouteMetrics, len(m.hits)),
		Upstreams:     make(map[string]UpstreamMetrics),
	}

	for route, hits := range m.hits {
		rm := RouteMetrics{
			Hits:        hits,
			StatusCodes: make(map[int]int64, len(m.statusCodes[route])),
		}
		for code, n := range m.statusCodes[route] {
			rm.StatusCodes[code] = n
		}

		if durations := m.responseTimes[route]; len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

			rm.AvgResponse = average(sorted)
			rm.P50Response = percentile(sorted, 0.50)
			rm.P95Response = percentile(sorted, 0.95)
			rm.P99Response = percentile(sorted, 0.99)
		}

		snap.Routes[route] = rm
	}

	// Upstreams start healthy; only transitions are reported.
	for u, n := range m.selections {
		snap.Upstreams[u] = UpstreamMetrics{Selections: n, Healthy: true}
	}
	for u, healthy := range m.healthStatus {
		um := snap.Upstreams[u]
		um.Healthy = healthy
		snap.Upstreams[u] = um
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
