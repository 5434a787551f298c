// Package overtime stores the time-bucketed history. Buckets are fixed width,
// ordered by start time and only ever appended; a timestamp past the last
// bucket extends the sequence, a timestamp before the epoch maps to bucket 0.
//
// A Store is not safe for concurrent use; the classifier serializes access.
package overtime

import (
	"fmt"
	"slices"
	"time"

	"github.com/haukened/rr-stats/internal/stats/domain"
)

// Store is the append-only sequence of time buckets.
type Store struct {
	epoch   time.Time
	width   time.Duration
	reserve int
	buckets []domain.TimeBucket
}

// New returns an empty store whose bucket 0 starts at epoch.
func New(epoch time.Time, width time.Duration, reserve int) (*Store, error) {
	if width <= 0 {
		return nil, fmt.Errorf("bucket width must be positive, got %s", width)
	}
	if reserve <= 0 {
		reserve = 144 // one day of 10 minute buckets
	}
	return &Store{
		epoch:   epoch,
		width:   width,
		reserve: reserve,
		buckets: make([]domain.TimeBucket, 0, reserve),
	}, nil
}

// Index returns floor((ts - epoch) / width), clamped at 0.
func (s *Store) Index(ts time.Time) int {
	d := ts.Sub(s.epoch)
	if d < 0 {
		return 0
	}
	return int(d / s.width)
}

// BucketFor returns the ID of the bucket covering ts, appending zeroed
// buckets up to and including it when needed.
func (s *Store) BucketFor(ts time.Time) int {
	idx := s.Index(ts)
	if idx >= len(s.buckets) {
		s.extend(idx + 1)
	}
	return idx
}

func (s *Store) extend(n int) {
	if missing := n - len(s.buckets); missing > cap(s.buckets)-len(s.buckets) {
		s.buckets = slices.Grow(s.buckets, max(missing, s.reserve))
	}
	for i := len(s.buckets); i < n; i++ {
		s.buckets = append(s.buckets, domain.TimeBucket{Start: s.Start(i)})
	}
}

// Start returns the start time of bucket id.
func (s *Store) Start(id int) time.Time {
	return s.epoch.Add(time.Duration(id) * s.width)
}

// Get returns a pointer to bucket id, valid until the next BucketFor.
func (s *Store) Get(id int) (*domain.TimeBucket, bool) {
	if id < 0 || id >= len(s.buckets) {
		return nil, false
	}
	return &s.buckets[id], true
}

func (s *Store) Len() int { return len(s.buckets) }

func (s *Store) Width() time.Duration { return s.width }

func (s *Store) Epoch() time.Time { return s.epoch }

// Snapshot returns a deep copy of every bucket.
func (s *Store) Snapshot() []domain.TimeBucket {
	out := make([]domain.TimeBucket, len(s.buckets))
	for i, b := range s.buckets {
		out[i] = b.Clone()
	}
	return out
}
