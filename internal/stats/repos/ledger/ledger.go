// Package ledger keeps the append-only array of per-query records and the
// correlation index used to find them from engine events.
package ledger

import (
	"slices"

	"github.com/haukened/rr-stats/internal/stats/domain"
)

// DefaultReserve is the growth step used when none is configured.
const DefaultReserve = 1024

// Ledger is the query record store. Correlation keys may be reused by the
// engine; the index always points at the most recently appended query for
// a key, so events for a new query never land on an older one.
//
// A Ledger is not safe for concurrent use; the classifier serializes access.
type Ledger struct {
	queries []domain.Query
	byKey   map[int]int
	reserve int
}

func New(reserve int) *Ledger {
	if reserve <= 0 {
		reserve = DefaultReserve
	}
	return &Ledger{
		queries: make([]domain.Query, 0, reserve),
		byKey:   make(map[int]int, reserve),
		reserve: reserve,
	}
}

// Append stores q and returns its ID.
func (l *Ledger) Append(q domain.Query) int {
	if len(l.queries) == cap(l.queries) {
		l.queries = slices.Grow(l.queries, l.reserve)
	}
	id := len(l.queries)
	l.queries = append(l.queries, q)
	l.byKey[q.CorrelationKey] = id
	return id
}

// Find returns the ID of the most recent query carrying key.
func (l *Ledger) Find(key int) (int, bool) {
	id, ok := l.byKey[key]
	return id, ok
}

// Get returns a pointer to query id, valid until the next Append.
func (l *Ledger) Get(id int) (*domain.Query, bool) {
	if id < 0 || id >= len(l.queries) {
		return nil, false
	}
	return &l.queries[id], true
}

func (l *Ledger) Len() int { return len(l.queries) }

// Snapshot returns a copy of every query in creation order.
func (l *Ledger) Snapshot() []domain.Query {
	return slices.Clone(l.queries)
}
