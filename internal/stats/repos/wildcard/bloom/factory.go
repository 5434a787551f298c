// Package bloom provides the wildcard negative prefilter on top of
// bits-and-blooms.
package bloom

import (
	"sync"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/rr-stats/internal/stats/repos/wildcard"
)

type factory struct {
	sizer wildcard.BloomSizer
}

// NewFactory returns a BloomFactory sizing each filter from the rule count
// and target false-positive rate.
func NewFactory() wildcard.BloomFactory { return factory{sizer: NewSizer()} }

func (f factory) New(capacity uint64, fpRate float64) wildcard.BloomFilter {
	m, k := f.sizer.Size(capacity, fpRate)
	return &filter{bits: bitsbloom.New(uint(m), uint(k))}
}

// filter is filled once before it is published to readers; the lock only
// guards late additions.
type filter struct {
	mu   sync.RWMutex
	bits *bitsbloom.BloomFilter
}

func (f *filter) Add(key []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bits.Add(key)
}

func (f *filter) MightContain(key []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bits.Test(key)
}
