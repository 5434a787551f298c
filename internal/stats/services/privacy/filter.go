// Package privacy redacts domain names and client addresses according to
// the active privacy level before they reach any entity table.
package privacy

import (
	"github.com/haukened/rr-stats/internal/stats/common/utils"
	"github.com/haukened/rr-stats/internal/stats/domain"
)

// Redaction sentinels.
const (
	HiddenDomain = "hidden"
	HiddenClient = "0.0.0.0"
)

// LevelSource provides the active privacy level. It is consulted once per
// query so level changes apply to the next query.
type LevelSource interface {
	PrivacyLevel() domain.PrivacyLevel
}

// StaticLevel is a LevelSource with a fixed level.
type StaticLevel domain.PrivacyLevel

func (s StaticLevel) PrivacyLevel() domain.PrivacyLevel { return domain.PrivacyLevel(s) }

// Identity is the redacted view of a query's identifiers.
type Identity struct {
	Domain  string
	Client  string
	Private bool
}

// Filter applies a LevelSource to raw identifiers.
type Filter struct {
	source LevelSource
}

// NewFilter returns a Filter reading from source. A nil source shows everything.
func NewFilter(source LevelSource) *Filter {
	if source == nil {
		source = StaticLevel(domain.PrivacyShowAll)
	}
	return &Filter{source: source}
}

// Level returns the currently active level.
func (f *Filter) Level() domain.PrivacyLevel {
	return f.source.PrivacyLevel()
}

// Apply normalizes name and client and replaces them with the sentinels
// the active level requires.
func (f *Filter) Apply(name, client string) Identity {
	level := f.Level()
	return Identity{
		Domain:  RedactDomain(name, level),
		Client:  RedactClient(client, level),
		Private: level >= domain.PrivacyMaximum,
	}
}

// RedactDomain returns the canonical name, or HiddenDomain from HideDomains up.
func RedactDomain(name string, level domain.PrivacyLevel) string {
	if level >= domain.PrivacyHideDomains {
		return HiddenDomain
	}
	return utils.CanonicalDNSName(name)
}

// RedactClient returns the canonical address, or HiddenClient from
// HideDomainsClients up.
func RedactClient(addr string, level domain.PrivacyLevel) string {
	if level >= domain.PrivacyHideDomainsClients {
		return HiddenClient
	}
	return utils.CanonicalAddress(addr)
}
