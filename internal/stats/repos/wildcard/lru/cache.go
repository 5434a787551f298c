package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/rr-stats/internal/stats/domain"
	"github.com/haukened/rr-stats/internal/stats/repos/wildcard"
)

// decisionCache is an LRU-backed wildcard.DecisionCache with hit, miss and
// eviction counters.
type decisionCache struct {
	lru       *lru.Cache[string, domain.BlockDecision]
	capacity  int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache always misses.
type disabledCache struct{}

// New creates a DecisionCache holding up to size decisions. If size <= 0 a
// disabled cache is returned.
func New(size int) (wildcard.DecisionCache, error) {
	if size <= 0 {
		return disabledCache{}, nil
	}
	dc := &decisionCache{capacity: size}
	cache, err := lru.NewWithEvict(size, func(string, domain.BlockDecision) {
		dc.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	dc.lru = cache
	return dc, nil
}

func (c *decisionCache) Get(name string) (domain.BlockDecision, bool) {
	if v, ok := c.lru.Get(name); ok {
		c.hits.Add(1)
		return v, true
	}
	c.misses.Add(1)
	return domain.EmptyDecision(), false
}

func (c *decisionCache) Put(name string, d domain.BlockDecision) { c.lru.Add(name, d) }

func (c *decisionCache) Len() int { return c.lru.Len() }

// Purge clears all entries. Purged entries count as evictions.
func (c *decisionCache) Purge() { c.lru.Purge() }

func (c *decisionCache) Stats() wildcard.CacheStats {
	return wildcard.CacheStats{
		Capacity:  c.capacity,
		Size:      c.lru.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (disabledCache) Get(string) (domain.BlockDecision, bool) { return domain.EmptyDecision(), false }
func (disabledCache) Put(string, domain.BlockDecision)          {}
func (disabledCache) Len() int                                  { return 0 }
func (disabledCache) Purge()                                    {}
func (disabledCache) Stats() wildcard.CacheStats                { return wildcard.CacheStats{} }

var _ wildcard.DecisionCache = (*decisionCache)(nil)
var _ wildcard.DecisionCache = disabledCache{}
