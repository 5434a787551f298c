package classifier

import (
	"time"

	"github.com/haukened/rr-stats/internal/stats/domain"
)

// Snapshot is a consistent copy of the aggregate state.
type Snapshot struct {
	Counters     domain.Counters
	Domains      []domain.Domain
	Clients      []domain.Client
	Forwards     []domain.ForwardDestination
	Buckets      []domain.TimeBucket
	Queries      int
	BucketWidth  time.Duration
	Epoch        time.Time
	PrivacyLevel domain.PrivacyLevel
}

// Snapshot copies the state under the aggregator lock.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Counters:     a.counters,
		Domains:      a.domains.Snapshot(),
		Clients:      a.clients.Snapshot(),
		Forwards:     a.forwards.Snapshot(),
		Buckets:      a.overTime.Snapshot(),
		Queries:      a.queries.Len(),
		BucketWidth:  a.overTime.Width(),
		Epoch:        a.overTime.Epoch(),
		PrivacyLevel: a.privacy.Level(),
	}
}

// Stats is the scrape-sized subset of Snapshot: counters, table sizes and
// the newest time bucket.
type Stats struct {
	Counters     domain.Counters
	Domains      int
	Clients      int
	Forwards     int
	Buckets      int
	Queries      int
	LastBucket   domain.TimeBucket
	PrivacyLevel domain.PrivacyLevel
}

// Stats copies counters and table lengths under the aggregator lock without
// walking the tables.
func (a *Aggregator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := Stats{
		Counters:     a.counters,
		Domains:      a.domains.Len(),
		Clients:      a.clients.Len(),
		Forwards:     a.forwards.Len(),
		Buckets:      a.overTime.Len(),
		Queries:      a.queries.Len(),
		PrivacyLevel: a.privacy.Level(),
	}
	if b, ok := a.overTime.Get(st.Buckets - 1); ok {
		st.LastBucket = b.Clone()
	}
	return st
}

// Counters returns a copy of the process-wide counters.
func (a *Aggregator) Counters() domain.Counters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters
}

// Query returns a copy of the query with the given ID.
func (a *Aggregator) Query(id int) (domain.Query, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	q, ok := a.queries.Get(id)
	if !ok {
		return domain.Query{}, false
	}
	return *q, true
}

// Queries returns copies of all recorded queries in creation order.
func (a *Aggregator) Queries() []domain.Query {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.queries.Snapshot()
}
