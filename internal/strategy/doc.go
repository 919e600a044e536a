// Package strategy picks which upstream a proxy leaf forwards a request to:
//
//   - round-robin: sequential rotation
//   - random: uniform random choice
//   - least-conn: fewest active connections
//   - least-response: lowest moving-average response time, scaled by load
//   - weighted-round-robin: smooth weighted rotation (nginx style)
//   - consistent-hash: stable choice per client key on a hash ring
//
// Strategies see only the upstreams that are currently eligible; filtering
// by health and circuit state happens in the caller.
package strategy
