package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PrivacyLevel controls how much of the raw query data is retained.
// Levels are totally ordered: every level hides at least what the
// previous one hides.
type PrivacyLevel uint8

const (
	PrivacyShowAll PrivacyLevel = iota
	PrivacyHideDomains
	PrivacyHideDomainsClients
	PrivacyMaximum
)

func (p PrivacyLevel) IsValid() bool {
	return p <= PrivacyMaximum
}

func (p PrivacyLevel) String() string {
	switch p {
	case PrivacyShowAll:
		return "show_all"
	case PrivacyHideDomains:
		return "hide_domains"
	case PrivacyHideDomainsClients:
		return "hide_domains_clients"
	case PrivacyMaximum:
		return "maximum"
	default:
		return fmt.Sprintf("PrivacyLevel(%d)", p)
	}
}

// ParsePrivacyLevel accepts either the level name or its numeric value (0-3).
func ParsePrivacyLevel(s string) (PrivacyLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "show_all":
		return PrivacyShowAll, nil
	case "hide_domains":
		return PrivacyHideDomains, nil
	case "hide_domains_clients":
		return PrivacyHideDomainsClients, nil
	case "maximum":
		return PrivacyMaximum, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || !PrivacyLevel(n).IsValid() {
		return 0, fmt.Errorf("unsupported privacy level: %q", s)
	}
	return PrivacyLevel(n), nil
}
