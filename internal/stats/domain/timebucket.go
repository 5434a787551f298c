package domain

import (
	"slices"
	"time"
)

// TimeBucket aggregates the queries of one fixed width window.
type TimeBucket struct {
	Start        time.Time
	Total        int
	Blocked      int
	Cached       int
	TypeCounts   [RecordTypeCount]int
	ClientCounts []int
}

// CountClient increments the per-client counter of clientID, first growing
// the sparse slice to cover the known clients.
func (b *TimeBucket) CountClient(clientID, knownClients int) {
	n := max(knownClients, clientID+1)
	if len(b.ClientCounts) < n {
		b.ClientCounts = append(b.ClientCounts, make([]int, n-len(b.ClientCounts))...)
	}
	b.ClientCounts[clientID]++
}

// ClientCount returns the count for clientID, 0 for clients never seen in this bucket.
func (b TimeBucket) ClientCount(clientID int) int {
	if clientID < 0 || clientID >= len(b.ClientCounts) {
		return 0
	}
	return b.ClientCounts[clientID]
}

// Clone returns a deep copy.
func (b TimeBucket) Clone() TimeBucket {
	b.ClientCounts = slices.Clone(b.ClientCounts)
	return b
}
