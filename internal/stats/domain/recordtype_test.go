package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordTypeFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  RecordType
		ok    bool
	}{
		{"query[A]", RecordTypeA, true},
		{" query[AAAA]", RecordTypeAAAA, true},
		{"query[ANY]", RecordTypeANY, true},
		{"query[SRV]", RecordTypeSRV, true},
		{"query[SOA]", RecordTypeSOA, true},
		{"query[PTR]", RecordTypePTR, true},
		{"query[TXT]", RecordTypeTXT, true},
		{"query[MX]", 0, false},
		{"query[a]", 0, false},
		{"query[A", 0, false},
		{"A", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := RecordTypeFromLabel(tt.label)
		assert.Equal(t, tt.ok, ok, "label %q", tt.label)
		assert.Equal(t, tt.want, got, "label %q", tt.label)
	}
}

func TestRecordType_Properties(t *testing.T) {
	assert.True(t, RecordTypeA.IsTracked())
	assert.True(t, RecordTypeAAAA.IsTracked())
	assert.False(t, RecordTypePTR.IsTracked())

	assert.Equal(t, 0, RecordTypeA.Index())
	assert.Equal(t, RecordTypeCount-1, RecordTypeTXT.Index())
	assert.Equal(t, 0, RecordTypeA.ReplySlot())
	assert.Equal(t, 1, RecordTypeAAAA.ReplySlot())

	assert.False(t, RecordType(0).IsValid())
	assert.False(t, RecordType(RecordTypeCount+1).IsValid())
	assert.Equal(t, "UNKNOWN(42)", RecordType(42).String())
	assert.Equal(t, "AAAA", RecordTypeAAAA.String())
}

func TestIsAAAALabel(t *testing.T) {
	assert.True(t, IsAAAALabel("query[AAAA]"))
	assert.True(t, IsAAAALabel(" query[AAAA]"))
	assert.False(t, IsAAAALabel("query[A]"))
}

func TestRecordTypeFromString(t *testing.T) {
	for i := 1; i <= RecordTypeCount; i++ {
		rt := RecordType(i)
		got, ok := RecordTypeFromString(rt.String())
		assert.True(t, ok)
		assert.Equal(t, rt, got)
	}
	_, ok := RecordTypeFromString("CAA")
	assert.False(t, ok)
}
