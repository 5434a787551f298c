// Package eventlog replays a recorded session of resolution engine events,
// one JSON object per line, into the aggregator entry points.
package eventlog

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/haukened/rr-stats/internal/stats/domain"
)

// Event kinds accepted in the "event" field.
const (
	KindQuery     = "query"
	KindForwarded = "forwarded"
	KindReply     = "reply"
	KindCache     = "cache"
	KindDNSSEC    = "dnssec"
	KindReload    = "reload"
	KindReadHosts = "read_hosts"
)

var ErrUnknownEvent = errors.New("unknown event kind")

// Event is one decoded line of the log. TS is the unix time the engine saw
// a query; it is optional and only read for query events.
type Event struct {
	Kind   string          `json:"event"`
	TS     int64           `json:"ts,omitempty"`
	Flags  domain.FlagBits `json:"flags"`
	Name   string          `json:"name,omitempty"`
	Addr   string          `json:"addr,omitempty"`
	Type   string          `json:"type,omitempty"`
	Source string          `json:"source,omitempty"`
	TTL    uint32          `json:"ttl,omitempty"`
	ID     int             `json:"id"`
	Status int             `json:"status,omitempty"`
	File   string          `json:"file,omitempty"`
	Count  int             `json:"count,omitempty"`
}

// address parses Addr. An empty field yields the zero Addr.
func (e Event) address() (netip.Addr, error) {
	if e.Addr == "" {
		return netip.Addr{}, nil
	}
	a, err := netip.ParseAddr(e.Addr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("event %d: %w", e.ID, err)
	}
	return a, nil
}

// observed returns the event time, or the zero Time when TS is unset.
func (e Event) observed() time.Time {
	if e.TS == 0 {
		return time.Time{}
	}
	return time.Unix(e.TS, 0)
}
