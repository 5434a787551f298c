package domain

import (
	"fmt"
	"strings"
)

// RecordType is the query type of an observed DNS question. Only the types
// the aggregator reports on have a value; everything else is skipped.
type RecordType uint8

const (
	RecordTypeA    RecordType = iota + 1 // A - IPv4 address
	RecordTypeAAAA                       // AAAA - IPv6 address
	RecordTypeANY                        // ANY
	RecordTypeSRV                        // SRV - Service
	RecordTypeSOA                        // SOA - Start of authority
	RecordTypePTR                        // PTR - Pointer
	RecordTypeTXT                        // TXT - Text
)

// RecordTypeCount is the number of known record types, used to size
// per-type counter arrays.
const RecordTypeCount = 7

// IsValid returns true if the RecordType is one of the known types.
func (t RecordType) IsValid() bool {
	return t >= RecordTypeA && t <= RecordTypeTXT
}

// IsTracked reports whether queries of this type get a full Query record.
func (t RecordType) IsTracked() bool {
	return t == RecordTypeA || t == RecordTypeAAAA
}

// Index returns the zero based slot of the type in per-type counter arrays.
// It must only be called on valid types.
func (t RecordType) Index() int {
	return int(t) - 1
}

// ReplySlot returns the Domain reply slot for this type: 0 for A, 1 otherwise.
func (t RecordType) ReplySlot() int {
	if t == RecordTypeA {
		return 0
	}
	return 1
}

func (t RecordType) String() string {
	switch t {
	case RecordTypeA:
		return "A"
	case RecordTypeAAAA:
		return "AAAA"
	case RecordTypeANY:
		return "ANY"
	case RecordTypeSRV:
		return "SRV"
	case RecordTypeSOA:
		return "SOA"
	case RecordTypePTR:
		return "PTR"
	case RecordTypeTXT:
		return "TXT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", t)
	}
}

// RecordTypeFromString converts a bare type name ("A", "aaaa") to a RecordType.
func RecordTypeFromString(s string) (RecordType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return RecordTypeA, true
	case "AAAA":
		return RecordTypeAAAA, true
	case "ANY":
		return RecordTypeANY, true
	case "SRV":
		return RecordTypeSRV, true
	case "SOA":
		return RecordTypeSOA, true
	case "PTR":
		return RecordTypePTR, true
	case "TXT":
		return RecordTypeTXT, true
	default:
		return 0, false
	}
}

// RecordTypeFromLabel parses the engine's query label, e.g. "query[AAAA]".
// Surrounding whitespace is ignored; the type name inside the brackets is
// matched exactly.
func RecordTypeFromLabel(label string) (RecordType, bool) {
	label = strings.TrimSpace(label)
	if !strings.HasPrefix(label, "query[") || !strings.HasSuffix(label, "]") {
		return 0, false
	}
	name := label[len("query[") : len(label)-1]
	if name != strings.ToUpper(name) {
		return 0, false
	}
	return RecordTypeFromString(name)
}

// IsAAAALabel reports whether the engine label names an AAAA question.
func IsAAAALabel(label string) bool {
	return strings.TrimSpace(label) == "query[AAAA]"
}
