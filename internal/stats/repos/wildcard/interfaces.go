package wildcard

import "github.com/haukened/rr-stats/internal/stats/domain"

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the negative prefilter in front of the store. Exact names
// are added as-is and suffix anchors reversed, matching the store keys.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// BloomFactory builds filters sized for a rule set.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// DecisionCache caches decisions by canonical name.
type DecisionCache interface {
	Get(name string) (domain.BlockDecision, bool)
	Put(name string, d domain.BlockDecision)
	Len() int
	Purge()
	Stats() CacheStats
}

// Store is the persistent rule index.
//   - GetFirstMatch: exact match first, then the most specific suffix anchor
//   - RebuildAll: replace every rule and the snapshot metadata in one transaction
type Store interface {
	GetFirstMatch(name string) (domain.BlockRule, bool, error)
	RebuildAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error
	Purge() error
	Stats() StoreStats
	Close() error
}

// Loader produces the current wildcard rule set, typically by parsing the
// configured list file.
type Loader func() ([]domain.BlockRule, error)

// Repository wires cache → bloom → store for lookups and performs atomic
// snapshot updates for reloads.
type Repository interface {
	Decide(name string) domain.BlockDecision
	Update() error
	UpdateAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error
	RepoStats() RepoStats
	Close() error
}
