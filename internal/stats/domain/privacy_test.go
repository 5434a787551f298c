package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivacyLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    PrivacyLevel
		wantErr bool
	}{
		{"show_all", PrivacyShowAll, false},
		{" HIDE_DOMAINS ", PrivacyHideDomains, false},
		{"hide_domains_clients", PrivacyHideDomainsClients, false},
		{"maximum", PrivacyMaximum, false},
		{"0", PrivacyShowAll, false},
		{"3", PrivacyMaximum, false},
		{"4", 0, true},
		{"-1", 0, true},
		{"paranoid", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePrivacyLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestPrivacyLevel_OrderAndString(t *testing.T) {
	assert.Less(t, PrivacyShowAll, PrivacyHideDomains)
	assert.Less(t, PrivacyHideDomains, PrivacyHideDomainsClients)
	assert.Less(t, PrivacyHideDomainsClients, PrivacyMaximum)
	for _, l := range []PrivacyLevel{PrivacyShowAll, PrivacyHideDomains, PrivacyHideDomainsClients, PrivacyMaximum} {
		back, err := ParsePrivacyLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, back)
	}
	assert.False(t, PrivacyLevel(9).IsValid())
}
