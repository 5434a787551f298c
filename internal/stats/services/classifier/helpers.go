package classifier

import (
	"fmt"
	"net/netip"

	"github.com/haukened/rr-stats/internal/stats/domain"
	"github.com/haukened/rr-stats/internal/stats/services/privacy"
)

// lookup returns the most recent query recorded under key.
func (a *Aggregator) lookup(key int) (*domain.Query, bool) {
	id, ok := a.queries.Find(key)
	if !ok {
		return nil, false
	}
	return a.mustQuery(id), true
}

// detectStatus classifies a locally answered query. Redacted names cannot be
// matched against the wildcard list and count as cached.
func (a *Aggregator) detectStatus(name string) domain.QueryStatus {
	if name == privacy.HiddenDomain {
		return domain.QueryStatusCached
	}
	if a.matcher != nil && a.matcher.Decide(name).Blocked {
		return domain.QueryStatusBlockedWildcard
	}
	return domain.QueryStatusCached
}

// saveReplyKind overwrites the domain's reply kind for the query's type and
// counts it.
func (a *Aggregator) saveReplyKind(flags domain.Flags, q *domain.Query, d *domain.Domain) {
	d.Replies[q.Type.ReplySlot()] = flags.Answer
	a.counters.Replies[flags.Answer]++
}

// storeIP keeps a direct answer as the domain's resolved address.
func storeIP(flags domain.Flags, q *domain.Query, d *domain.Domain, addr string) {
	if !flags.IsDirectAnswer() || addr == "" {
		return
	}
	d.StoreAddress(q.Type, addr)
}

func renderAddr(addr netip.Addr) string {
	if !addr.IsValid() {
		return ""
	}
	return addr.Unmap().String()
}

func answerLabel(flags domain.Flags, dest string) string {
	switch flags.Answer {
	case domain.ReplyCNAME, domain.ReplyNXDOMAIN, domain.ReplyNODATA:
		return "(" + flags.Answer.String() + ")"
	default:
		return dest
	}
}

func (a *Aggregator) mustQuery(id int) *domain.Query {
	q, ok := a.queries.Get(id)
	if !ok {
		a.invalidAccess("queries", id, a.queries.Len())
	}
	return q
}

func (a *Aggregator) mustDomain(id int) *domain.Domain {
	d, ok := a.domains.Get(id)
	if !ok {
		a.invalidAccess("domains", id, a.domains.Len())
	}
	return d
}

func (a *Aggregator) mustBucket(id int) *domain.TimeBucket {
	b, ok := a.overTime.Get(id)
	if !ok {
		a.invalidAccess("overTime", id, a.overTime.Len())
	}
	return b
}

// invalidAccess reports corrupted bookkeeping. It never returns.
func (a *Aggregator) invalidAccess(store string, id, n int) {
	fields := map[string]any{"store": store, "id": id, "len": n}
	a.logger.Panic(fields, "invalid_store_access")
	panic(fmt.Sprintf("invalid access to %s[%d] (len %d)", store, id, n))
}
