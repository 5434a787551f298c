package domain

// Domain aggregates everything seen for one (post-redaction) domain name.
type Domain struct {
	Name string
	// IPv4 and IPv6 hold the last direct answer; empty when none was seen.
	IPv4         string
	IPv6         string
	BlockedCount int
	Wildcard     bool
	DNSSEC       DNSSECStatus
	Replies      [2]ReplyKind
}

func NewDomain(name string) Domain {
	return Domain{Name: name}
}

// ReplyFor returns the last reply kind recorded for the given query type.
func (d Domain) ReplyFor(t RecordType) ReplyKind {
	return d.Replies[t.ReplySlot()]
}

// StoreAddress records addr as the resolved address for the query type.
func (d *Domain) StoreAddress(t RecordType, addr string) {
	switch t {
	case RecordTypeA:
		d.IPv4 = addr
	case RecordTypeAAAA:
		d.IPv6 = addr
	}
}

// Client is a querying address, identity only.
type Client struct {
	Address string
}

func NewClient(addr string) Client {
	return Client{Address: addr}
}

// ForwardDestination is an upstream server queries were forwarded to.
type ForwardDestination struct {
	Address string
}

func NewForwardDestination(addr string) ForwardDestination {
	return ForwardDestination{Address: addr}
}
