package strategy

import (
	"hash/crc32"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/angeloszaimis/pathrouter/internal/upstream"
)

const defaultVirtualNodes = 100

type consistentHashStrategy struct {
	virtualNodes int
	mutex        sync.Mutex
	ring         *ring
}

type ring struct {
	members   string
	positions []uint32
	owners    map[uint32]*upstream.Upstream
}

// NewConsistentHashStrategy places each upstream on the ring virtualNodes
// times. Non-positive values use 100.
func NewConsistentHashStrategy(virtualNodes int) Keyed {
	if virtualNodes <= 0 {
		virtualNodes = defaultVirtualNodes
	}

	return &consistentHashStrategy{virtualNodes: virtualNodes}
}

// Select without a key always lands on the same point of the ring.
func (s *consistentHashStrategy) Select(upstreams []*upstream.Upstream) *upstream.Upstream {
	return s.SelectKey(upstreams, "")
}

func (s *consistentHashStrategy) SelectKey(upstreams []*upstream.Upstream, key string) *upstream.Upstream {
	if len(upstreams) == 0 {
		return nil
	}

	return s.ringFor(upstreams).lookup(crc32.ChecksumIEEE([]byte(key)))
}

// ringFor returns the ring for this exact set of upstreams, rebuilding it
// when the eligible set has changed.
func (s *consistentHashStrategy) ringFor(upstreams []*upstream.Upstream) *ring {
	members := membership(upstreams)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ring == nil || s.ring.members != members {
		s.ring = buildRing(upstreams, s.virtualNodes, members)
	}

	return s.ring
}

func membership(upstreams []*upstream.Upstream) string {
	urls := make([]string, len(upstreams))
	for i, u := range upstreams {
		urls[i] = u.URL().String()
	}

	sort.Strings(urls)
	return strings.Join(urls, ",")
}

func buildRing(upstreams []*upstream.Upstream, vnodes int, members string) *ring {
	r := &ring{
		members:   members,
		positions: make([]uint32, 0, len(upstreams)*vnodes),
		owners:    make(map[uint32]*upstream.Upstream, len(upstreams)*vnodes),
	}

	for _, u := range upstreams {
		for i := 0; i < vnodes; i++ {
			hash := crc32.ChecksumIEEE([]byte(u.URL().String() + "#" + strconv.Itoa(i)))
			if _, taken := r.owners[hash]; taken {
				continue
			}

			r.positions = append(r.positions, hash)
			r.owners[hash] = u
		}
	}

	sort.Slice(r.positions, func(i, j int) bool { return r.positions[i] < r.positions[j] })
	return r
}

func (r *ring) lookup(hash uint32) *upstream.Upstream {
	if len(r.positions) == 0 {
		return nil
	}

	idx := sort.Search(len(r.positions), func(i int) bool {
		return r.positions[i] >= hash
	})
	if idx == len(r.positions) {
		idx = 0
	}

	return r.owners[r.positions[idx]]
}
