package domain

import "strings"

// FlagBits is the raw flag word the resolution engine attaches to events.
type FlagBits uint32

const (
	FlagImmortal FlagBits = 1 << iota
	FlagNameP
	FlagReverse
	FlagForward
	FlagDHCP
	FlagNeg
	FlagHosts
	FlagIPv4
	FlagIPv6
	FlagBigName
	FlagNXDomain
	FlagCNAME
	FlagDNSKey
	FlagConfig
	FlagDS
	FlagDNSSECOK
	FlagUpstream
	FlagRRName
	FlagServer
	FlagQuery
	FlagNoErr
	FlagAuth
	FlagDNSSEC
	FlagKeyTag
	FlagSecStat
	FlagNoRR
	FlagIPSet
	FlagNoExtra
)

var flagNames = [...]string{
	"F_IMMORTAL", "F_NAMEP", "F_REVERSE", "F_FORWARD", "F_DHCP", "F_NEG", "F_HOSTS",
	"F_IPV4", "F_IPV6", "F_BIGNAME", "F_NXDOMAIN", "F_CNAME", "F_DNSKEY", "F_CONFIG",
	"F_DS", "F_DNSSECOK", "F_UPSTREAM", "F_RRNAME", "F_SERVER", "F_QUERY", "F_NOERR",
	"F_AUTH", "F_DNSSEC", "F_KEYTAG", "F_SECSTAT", "F_NO_RR", "F_IPSET", "F_NOEXTRA",
}

// Has reports whether every bit of mask is set.
func (b FlagBits) Has(mask FlagBits) bool {
	return b&mask == mask
}

// String lists the names of the set flags separated by spaces.
func (b FlagBits) String() string {
	var sb strings.Builder
	for i, name := range flagNames {
		if b&(1<<i) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(name)
	}
	return sb.String()
}

// ReplyOrigin tells where a reply event was answered from.
type ReplyOrigin uint8

const (
	ReplyOriginUnknown ReplyOrigin = iota
	ReplyOriginConfig              // local configuration: redirect, block list or wildcard
	ReplyOriginForward             // answer to a previously forwarded query
)

// CacheOrigin tells where a cache answer came from.
type CacheOrigin uint8

const (
	CacheOriginUnknown CacheOrigin = iota
	CacheOriginHosts               // authoritative local list or hosts file
	CacheOriginDHCP                // DHCP lease name
	CacheOriginForward             // cached answer to a previously forwarded query
)

// Flags is the decoded form of FlagBits. It is built once at the boundary
// and handed to the classifier, which never looks at raw bits again.
type Flags struct {
	Bits   FlagBits
	Reply  ReplyOrigin
	Cache  CacheOrigin
	Answer ReplyKind
}

// DecodeFlags turns a raw flag word into its tagged variants.
func DecodeFlags(bits FlagBits) Flags {
	return Flags{
		Bits:   bits,
		Reply:  decodeReplyOrigin(bits),
		Cache:  decodeCacheOrigin(bits),
		Answer: decodeAnswer(bits),
	}
}

func decodeReplyOrigin(bits FlagBits) ReplyOrigin {
	switch {
	case bits.Has(FlagConfig):
		return ReplyOriginConfig
	case bits.Has(FlagForward):
		return ReplyOriginForward
	default:
		return ReplyOriginUnknown
	}
}

func decodeCacheOrigin(bits FlagBits) CacheOrigin {
	hosts := bits.Has(FlagHosts | FlagImmortal)
	dhcp := bits.Has(FlagNameP | FlagDHCP)
	if !hosts && !dhcp && !bits.Has(FlagForward) {
		return CacheOriginUnknown
	}
	switch {
	case bits.Has(FlagHosts):
		return CacheOriginHosts
	case dhcp:
		return CacheOriginDHCP
	default:
		return CacheOriginForward
	}
}

func decodeAnswer(bits FlagBits) ReplyKind {
	switch {
	case bits.Has(FlagNeg | FlagNXDomain):
		return ReplyNXDOMAIN
	case bits.Has(FlagNeg):
		return ReplyNODATA
	case bits.Has(FlagCNAME):
		return ReplyCNAME
	default:
		return ReplyIP
	}
}

// IsDirectAnswer reports whether the reply carries an address for the
// queried name itself rather than a negative or CNAME answer.
func (f Flags) IsDirectAnswer() bool {
	return f.Answer == ReplyIP
}

func (f Flags) String() string {
	return f.Bits.String()
}

// ClassifyCacheSource decides the request kind of a cache answer. Hosts
// answers are attributed by the list path they were read from; every other
// origin is a plain cache hit.
func ClassifyCacheSource(origin CacheOrigin, source string) RequestKind {
	if origin != CacheOriginHosts {
		return RequestCache
	}
	switch {
	case strings.Contains(source, GravityListMarker):
		return RequestGravity
	case strings.Contains(source, BlacklistListMarker):
		return RequestBlacklist
	default:
		return RequestCache
	}
}
