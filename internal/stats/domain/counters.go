package domain

// Counters are the process-wide aggregates. Each field equals the sum of
// the per-query and per-domain contributions it summarises.
type Counters struct {
	Queries          int
	Unknown          int
	Forwarded        int
	Cached           int
	BlockedGravity   int
	BlockedBlacklist int
	BlockedWildcard  int
	// GravityDomains is the number of entries read from block lists since
	// the last reload, not a query counter.
	GravityDomains int
	Skipped        int
	QueryTypes     [RecordTypeCount]int
	Replies        [ReplyKindCount]int
}

// Blocked returns the number of queries blocked by any mechanism.
func (c Counters) Blocked() int {
	return c.BlockedGravity + c.BlockedBlacklist + c.BlockedWildcard
}

// QueryType returns the counter for t, 0 for invalid types.
func (c Counters) QueryType(t RecordType) int {
	if !t.IsValid() {
		return 0
	}
	return c.QueryTypes[t.Index()]
}

// Reply returns the counter for reply kind k.
func (c Counters) Reply(k ReplyKind) int {
	if int(k) >= len(c.Replies) {
		return 0
	}
	return c.Replies[k]
}
