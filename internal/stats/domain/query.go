package domain

import "time"

// NoForward is the ForwardID of a query that was never forwarded.
const NoForward = -1

// Query is the ledger record of one observed A or AAAA question.
type Query struct {
	CorrelationKey int
	Timestamp      time.Time
	Type           RecordType
	Status         QueryStatus
	DomainID       int
	ClientID       int
	ForwardID      int
	TimeBucketID   int
	TTL            uint32
	// Complete is set once the outcome is determined; counter transitions
	// only happen while it is false.
	Complete bool
	Private  bool
}

// NewQuery returns an incomplete query in the UNKNOWN state.
func NewQuery(key int, ts time.Time, t RecordType, domainID, clientID, bucketID int, private bool) Query {
	return Query{
		CorrelationKey: key,
		Timestamp:      ts,
		Type:           t,
		Status:         QueryStatusUnknown,
		DomainID:       domainID,
		ClientID:       clientID,
		ForwardID:      NoForward,
		TimeBucketID:   bucketID,
		Private:        private,
	}
}

// HasForward reports whether the query was sent to an upstream server.
func (q Query) HasForward() bool {
	return q.ForwardID != NoForward
}
