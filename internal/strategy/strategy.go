package strategy

import (
	"fmt"

	"github.com/angeloszaimis/pathrouter/internal/upstream"
)

const (
	RoundRobin         = "round-robin"
	Random             = "random"
	LeastConn          = "least-conn"
	LeastResponse      = "least-response"
	WeightedRoundRobin = "weighted-round-robin"
	ConsistentHash     = "consistent-hash"
)

// Names lists every strategy New understands.
var Names = []string{RoundRobin, Random, LeastConn, LeastResponse, WeightedRoundRobin, ConsistentHash}

type Strategy interface {
	Select(upstreams []*upstream.Upstream) *upstream.Upstream
}

// Keyed strategies choose by a request key, such as the client address.
type Keyed interface {
	Strategy
	SelectKey(upstreams []*upstream.Upstream, key string) *upstream.Upstream
}

// New builds the named strategy. virtualNodes only applies to
// consistent-hash.
func New(name string, virtualNodes int) (Strategy, error) {
	switch name {
	case RoundRobin, "":
		return NewRoundRobinStrategy(), nil
	case Random:
		return NewRandomStrategy(), nil
	case LeastConn:
		return NewLeastConnStrategy(), nil
	case LeastResponse:
		return NewLeastResponseStrategy(), nil
	case WeightedRoundRobin:
		return NewWeightedRoundRobinStrategy(), nil
	case ConsistentHash:
		return NewConsistentHashStrategy(virtualNodes), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
