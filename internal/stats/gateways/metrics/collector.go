// Package metrics exposes the aggregate state as Prometheus metrics. Values
// are read from consistent stats at scrape time; nothing is cached.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/haukened/rr-stats/internal/stats/domain"
	"github.com/haukened/rr-stats/internal/stats/repos/wildcard"
	"github.com/haukened/rr-stats/internal/stats/services/classifier"
)

const namespace = "rr_stats"

// StatsSource provides consistent counters and table sizes.
type StatsSource interface {
	Stats() classifier.Stats
}

// RepoStatsSource provides wildcard repository statistics.
type RepoStatsSource interface {
	RepoStats() wildcard.RepoStats
}

var allStatuses = []domain.QueryStatus{
	domain.QueryStatusUnknown,
	domain.QueryStatusForwarded,
	domain.QueryStatusCached,
	domain.QueryStatusBlockedGravity,
	domain.QueryStatusBlockedBlacklist,
	domain.QueryStatusBlockedWildcard,
}

func desc(name, help string, labels ...string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
}

// Collector implements prometheus.Collector over a StatsSource.
type Collector struct {
	source StatsSource
	repo   RepoStatsSource

	queries        *prometheus.Desc
	status         *prometheus.Desc
	queryTypes     *prometheus.Desc
	replies        *prometheus.Desc
	skipped        *prometheus.Desc
	gravityDomains *prometheus.Desc
	entities       *prometheus.Desc
	bucket         *prometheus.Desc
	privacyLevel   *prometheus.Desc

	wildcardRules   *prometheus.Desc
	wildcardVersion *prometheus.Desc
	wildcardCache   *prometheus.Desc
}

// NewCollector returns a Collector. repo may be nil when wildcard detection
// is disabled.
func NewCollector(source StatsSource, repo RepoStatsSource) *Collector {
	return &Collector{
		source:         source,
		repo:           repo,
		queries:        desc("queries_total", "A and AAAA queries recorded."),
		status:         desc("queries_by_status", "Recorded queries by current status.", "status"),
		queryTypes:     desc("query_types_total", "Queries seen by record type.", "type"),
		replies:        desc("replies_total", "Replies recorded by kind.", "reply"),
		skipped:        desc("skipped_total", "Queries with an unknown type label."),
		gravityDomains: desc("gravity_domains", "Entries read from block lists since the last reload."),
		entities:       desc("entities", "Distinct entities recorded.", "table"),
		bucket:         desc("current_bucket_queries", "Queries in the newest time bucket.", "kind"),
		privacyLevel:   desc("privacy_level", "Active privacy level."),

		wildcardRules:   desc("wildcard_rules", "Rules in the active wildcard list."),
		wildcardVersion: desc("wildcard_version", "Version of the active wildcard list."),
		wildcardCache:   desc("wildcard_cache_events_total", "Wildcard decision cache events.", "event"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.queries, c.status, c.queryTypes, c.replies, c.skipped,
		c.gravityDomains, c.entities, c.bucket, c.privacyLevel,
	} {
		ch <- d
	}
	if c.repo != nil {
		ch <- c.wildcardRules
		ch <- c.wildcardVersion
		ch <- c.wildcardCache
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	cn := s.Counters

	ch <- prometheus.MustNewConstMetric(c.queries, prometheus.CounterValue, float64(cn.Queries))
	for _, st := range allStatuses {
		ch <- prometheus.MustNewConstMetric(c.status, prometheus.GaugeValue, float64(statusCount(cn, st)), strings.ToLower(st.String()))
	}
	for t := domain.RecordTypeA; t <= domain.RecordTypeTXT; t++ {
		ch <- prometheus.MustNewConstMetric(c.queryTypes, prometheus.CounterValue, float64(cn.QueryType(t)), t.String())
	}
	for k := domain.ReplyNXDOMAIN; k <= domain.ReplyIP; k++ {
		ch <- prometheus.MustNewConstMetric(c.replies, prometheus.CounterValue, float64(cn.Reply(k)), strings.ToLower(k.String()))
	}
	ch <- prometheus.MustNewConstMetric(c.skipped, prometheus.CounterValue, float64(cn.Skipped))
	ch <- prometheus.MustNewConstMetric(c.gravityDomains, prometheus.GaugeValue, float64(cn.GravityDomains))

	ch <- prometheus.MustNewConstMetric(c.entities, prometheus.GaugeValue, float64(s.Domains), "domains")
	ch <- prometheus.MustNewConstMetric(c.entities, prometheus.GaugeValue, float64(s.Clients), "clients")
	ch <- prometheus.MustNewConstMetric(c.entities, prometheus.GaugeValue, float64(s.Forwards), "forward_destinations")

	last := s.LastBucket
	ch <- prometheus.MustNewConstMetric(c.bucket, prometheus.GaugeValue, float64(last.Total), "total")
	ch <- prometheus.MustNewConstMetric(c.bucket, prometheus.GaugeValue, float64(last.Blocked), "blocked")
	ch <- prometheus.MustNewConstMetric(c.bucket, prometheus.GaugeValue, float64(last.Cached), "cached")

	ch <- prometheus.MustNewConstMetric(c.privacyLevel, prometheus.GaugeValue, float64(s.PrivacyLevel))

	if c.repo == nil {
		return
	}
	rs := c.repo.RepoStats()
	ch <- prometheus.MustNewConstMetric(c.wildcardRules, prometheus.GaugeValue, float64(rs.Rules))
	ch <- prometheus.MustNewConstMetric(c.wildcardVersion, prometheus.GaugeValue, float64(rs.Store.Version))
	ch <- prometheus.MustNewConstMetric(c.wildcardCache, prometheus.CounterValue, float64(rs.Cache.Hits), "hit")
	ch <- prometheus.MustNewConstMetric(c.wildcardCache, prometheus.CounterValue, float64(rs.Cache.Misses), "miss")
	ch <- prometheus.MustNewConstMetric(c.wildcardCache, prometheus.CounterValue, float64(rs.Cache.Evictions), "eviction")
}

func statusCount(c domain.Counters, s domain.QueryStatus) int {
	switch s {
	case domain.QueryStatusUnknown:
		return c.Unknown
	case domain.QueryStatusForwarded:
		return c.Forwarded
	case domain.QueryStatusCached:
		return c.Cached
	case domain.QueryStatusBlockedGravity:
		return c.BlockedGravity
	case domain.QueryStatusBlockedBlacklist:
		return c.BlockedBlacklist
	case domain.QueryStatusBlockedWildcard:
		return c.BlockedWildcard
	default:
		return 0
	}
}
