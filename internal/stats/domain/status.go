package domain

import "fmt"

// QueryStatus is the classified outcome of a query.
type QueryStatus uint8

const (
	QueryStatusUnknown QueryStatus = iota
	QueryStatusForwarded
	QueryStatusCached
	QueryStatusBlockedGravity
	QueryStatusBlockedBlacklist
	QueryStatusBlockedWildcard
)

// IsBlocked reports whether the status is one of the blocked outcomes.
func (s QueryStatus) IsBlocked() bool {
	switch s {
	case QueryStatusBlockedGravity, QueryStatusBlockedBlacklist, QueryStatusBlockedWildcard:
		return true
	default:
		return false
	}
}

func (s QueryStatus) String() string {
	switch s {
	case QueryStatusUnknown:
		return "UNKNOWN"
	case QueryStatusForwarded:
		return "FORWARDED"
	case QueryStatusCached:
		return "CACHED"
	case QueryStatusBlockedGravity:
		return "BLOCKED_GRAVITY"
	case QueryStatusBlockedBlacklist:
		return "BLOCKED_BLACKLIST"
	case QueryStatusBlockedWildcard:
		return "BLOCKED_WILDCARD"
	default:
		return fmt.Sprintf("QueryStatus(%d)", s)
	}
}

// DNSSECStatus is the last DNSSEC verdict seen for a domain.
type DNSSECStatus uint8

const (
	DNSSECUnknown DNSSECStatus = iota
	DNSSECSecure
	DNSSECInsecure
	DNSSECBogus
)

// Engine status codes handed to DnssecResult.
const (
	DNSSECCodeSecure   = 1
	DNSSECCodeInsecure = 2
)

// DNSSECStatusFromCode maps an engine status code to a DNSSECStatus.
// Anything that is neither secure nor insecure is treated as bogus.
func DNSSECStatusFromCode(code int) DNSSECStatus {
	switch code {
	case DNSSECCodeSecure:
		return DNSSECSecure
	case DNSSECCodeInsecure:
		return DNSSECInsecure
	default:
		return DNSSECBogus
	}
}

func (s DNSSECStatus) String() string {
	switch s {
	case DNSSECUnknown:
		return "UNKNOWN"
	case DNSSECSecure:
		return "SECURE"
	case DNSSECInsecure:
		return "INSECURE"
	case DNSSECBogus:
		return "BOGUS"
	default:
		return fmt.Sprintf("DNSSECStatus(%d)", s)
	}
}

// ReplyKind classifies an answer.
type ReplyKind uint8

const (
	ReplyNone ReplyKind = iota
	ReplyNXDOMAIN
	ReplyNODATA
	ReplyCNAME
	ReplyIP
)

// ReplyKindCount sizes per-kind counter arrays, ReplyNone included.
const ReplyKindCount = 5

func (k ReplyKind) String() string {
	switch k {
	case ReplyNone:
		return "NONE"
	case ReplyNXDOMAIN:
		return "NXDOMAIN"
	case ReplyNODATA:
		return "NODATA"
	case ReplyCNAME:
		return "CNAME"
	case ReplyIP:
		return "IP"
	default:
		return fmt.Sprintf("ReplyKind(%d)", k)
	}
}

// RequestKind is what a cache answer tells us about the query.
type RequestKind uint8

const (
	RequestCache RequestKind = iota
	RequestGravity
	RequestBlacklist
)

// Source path markers identifying the block lists a hosts answer came from.
const (
	GravityListMarker   = "/gravity.list"
	BlacklistListMarker = "/black.list"
)

func (k RequestKind) String() string {
	switch k {
	case RequestCache:
		return "CACHE"
	case RequestGravity:
		return "GRAVITY"
	case RequestBlacklist:
		return "BLACKLIST"
	default:
		return fmt.Sprintf("RequestKind(%d)", k)
	}
}
