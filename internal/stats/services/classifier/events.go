package classifier

import (
	"net/netip"
	"time"

	"github.com/haukened/rr-stats/internal/stats/common/utils"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

// NewQuery records a question observed by the engine. typeLabel is the
// engine's "query[TYPE]" label; key correlates the later events.
func (a *Aggregator) NewQuery(flags domain.Flags, name string, addr netip.Addr, typeLabel string, key int) {
	a.NewQueryAt(time.Time{}, flags, name, addr, typeLabel, key)
}

// NewQueryAt is NewQuery for a question observed at a known time, as when a
// recorded session is replayed. A zero at means now.
func (a *Aggregator) NewQueryAt(at time.Time, flags domain.Flags, name string, addr netip.Addr, typeLabel string, key int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ignoreAAAA && domain.IsAAAALabel(typeLabel) {
		a.logger.Debug(map[string]any{"id": key}, "skip_aaaa")
		return
	}
	if utils.CanonicalDNSName(name) == a.selfName {
		return
	}

	id := a.privacy.Apply(name, renderAddr(addr))
	a.logger.Debug(map[string]any{"type": typeLabel, "domain": id.Domain, "client": id.Client, "id": key, "flags": flags.String()}, "new_query")

	qt, ok := domain.RecordTypeFromLabel(typeLabel)
	if !ok {
		a.counters.Skipped++
		a.logger.Debug(map[string]any{"type": typeLabel, "id": key}, "skip_unknown_type")
		return
	}

	if at.IsZero() {
		at = a.clock.Now()
	}
	bucketID := a.overTime.BucketFor(at)
	bucket := a.mustBucket(bucketID)
	bucket.TypeCounts[qt.Index()]++
	a.counters.QueryTypes[qt.Index()]++

	if !qt.IsTracked() {
		return
	}

	domainID, created := a.domains.FindOrCreate(id.Domain)
	if created {
		a.logger.Debug(map[string]any{"domain": id.Domain, "domain_id": domainID}, "new_domain")
	}
	clientID, created := a.clients.FindOrCreate(id.Client)
	if created {
		a.logger.Debug(map[string]any{"client": id.Client, "client_id": clientID}, "new_client")
	}
	a.queries.Append(domain.NewQuery(key, at, qt, domainID, clientID, bucketID, id.Private))

	a.counters.Queries++
	a.counters.Unknown++
	bucket.Total++
	bucket.CountClient(clientID, a.clients.Len())
}

// Forwarded records that the query was sent upstream to addr. A query that
// was answered from a cached CNAME is reopened and counted as forwarded.
func (a *Aggregator) Forwarded(flags domain.Flags, addr netip.Addr, key int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dest := utils.CanonicalAddress(renderAddr(addr))
	a.logger.Debug(map[string]any{"upstream": dest, "id": key}, "forwarded")

	q, ok := a.lookup(key)
	if !ok {
		return
	}
	if q.Status == domain.QueryStatusCached {
		bucket := a.mustBucket(q.TimeBucketID)
		a.counters.Cached--
		bucket.Cached--
		a.counters.Unknown++
		q.Status = domain.QueryStatusUnknown
		q.Complete = false
	}
	if q.Complete {
		return
	}

	fid, created := a.forwards.FindOrCreate(dest)
	if created {
		a.logger.Debug(map[string]any{"upstream": dest, "forward_id": fid}, "new_forward_destination")
	}
	q.ForwardID = fid
	q.Status = domain.QueryStatusForwarded
	a.counters.Unknown--
	a.counters.Forwarded++
	q.Complete = true
}

// Reply records an answer. Answers from local configuration complete the
// query and classify it through the wildcard matcher; answers to forwarded
// queries only record the reply.
func (a *Aggregator) Reply(flags domain.Flags, name string, addr netip.Addr, ttl uint32, key int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dest := renderAddr(addr)
	a.logger.Debug(map[string]any{"name": name, "answer": answerLabel(flags, dest), "ttl": ttl, "id": key}, "reply")

	switch flags.Reply {
	case domain.ReplyOriginConfig:
		a.configReply(flags, name, dest, ttl, key)
	case domain.ReplyOriginForward:
		a.forwardReply(flags, name, dest, ttl, key)
	default:
		a.logger.Warn(map[string]any{"flags": flags.String(), "id": key}, "unknown_reply")
	}
}

func (a *Aggregator) configReply(flags domain.Flags, name, dest string, ttl uint32, key int) {
	q, ok := a.lookup(key)
	if !ok || q.Complete {
		return
	}
	d := a.mustDomain(q.DomainID)
	bucket := a.mustBucket(q.TimeBucketID)

	status := a.detectStatus(d.Name)
	switch status {
	case domain.QueryStatusBlockedWildcard:
		a.counters.Unknown--
		a.counters.BlockedWildcard++
		bucket.Blocked++
		d.BlockedCount++
		d.Wildcard = true
	case domain.QueryStatusCached:
		a.counters.Unknown--
		a.counters.Cached++
		bucket.Cached++
	}
	q.Status = status

	a.saveReplyKind(flags, q, d)
	if utils.CanonicalDNSName(name) == d.Name {
		storeIP(flags, q, d, dest)
	}
	q.TTL = ttl
	q.Complete = true
}

func (a *Aggregator) forwardReply(flags domain.Flags, name, dest string, ttl uint32, key int) {
	q, ok := a.lookup(key)
	if !ok {
		return
	}
	d := a.mustDomain(q.DomainID)
	if utils.CanonicalDNSName(name) != d.Name {
		return
	}
	a.saveReplyKind(flags, q, d)
	storeIP(flags, q, d, dest)
	q.TTL = ttl
}

// CacheAnswered records an answer served from the engine's cache or from a
// local list. source is the file the answer was read from, if any.
func (a *Aggregator) CacheAnswered(flags domain.Flags, name string, addr netip.Addr, source string, ttl uint32, key int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cn := utils.CanonicalDNSName(name)
	if cn == a.selfName {
		return
	}
	dest := renderAddr(addr)
	a.logger.Debug(map[string]any{"name": name, "answer": dest, "source": source, "ttl": ttl, "id": key}, "cache_answer")

	if flags.Cache == domain.CacheOriginUnknown {
		a.logger.Warn(map[string]any{"flags": flags.String(), "id": key}, "unknown_cache_reply")
		return
	}
	kind := domain.ClassifyCacheSource(flags.Cache, source)

	q, ok := a.lookup(key)
	if !ok || q.Complete {
		return
	}
	d := a.mustDomain(q.DomainID)
	bucket := a.mustBucket(q.TimeBucketID)

	a.counters.Unknown--
	switch kind {
	case domain.RequestGravity:
		q.Status = domain.QueryStatusBlockedGravity
		a.counters.BlockedGravity++
		bucket.Blocked++
		d.BlockedCount++
	case domain.RequestBlacklist:
		q.Status = domain.QueryStatusBlockedBlacklist
		a.counters.BlockedBlacklist++
		bucket.Blocked++
		d.BlockedCount++
	default:
		q.Status = domain.QueryStatusCached
		a.counters.Cached++
		bucket.Cached++
	}

	a.saveReplyKind(flags, q, d)
	if cn == d.Name {
		storeIP(flags, q, d, dest)
	}
	q.TTL = ttl
	q.Complete = true
}

// DnssecResult stores the engine's DNSSEC verdict on the query's domain.
func (a *Aggregator) DnssecResult(code int, key int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	q, ok := a.lookup(key)
	if !ok {
		return
	}
	d := a.mustDomain(q.DomainID)
	d.DNSSEC = domain.DNSSECStatusFromCode(code)
	a.logger.Debug(map[string]any{"domain": d.Name, "status": d.DNSSEC.String(), "id": key}, "dnssec")
}
