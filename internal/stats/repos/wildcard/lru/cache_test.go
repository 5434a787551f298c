package lru

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-stats/internal/stats/domain"
)

func TestNew_DisabledWhenSizeNonPositive(t *testing.T) {
	for _, size := range []int{0, -5} {
		c, err := New(size)
		require.NoError(t, err)
		c.Put("a", domain.BlockDecision{Blocked: true})
		_, ok := c.Get("a")
		assert.False(t, ok)
		assert.Zero(t, c.Len())
		c.Purge()
		assert.Equal(t, 0, c.Stats().Capacity)
	}
}

func TestDecisionCache_GetPutStats(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	dec := domain.BlockDecision{Blocked: true, MatchedRule: "ads.example", Kind: domain.BlockRuleSuffix}
	c.Put("x.ads.example", dec)
	got, ok := c.Get("x.ads.example")
	require.True(t, ok)
	assert.Equal(t, dec, got)

	st := c.Stats()
	assert.Equal(t, 2, st.Capacity)
	assert.Equal(t, 1, st.Size)
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Zero(t, st.Evictions)
}

func TestDecisionCache_EvictionAndPurge(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	c.Put("a", domain.EmptyDecision())
	c.Put("b", domain.EmptyDecision())
	c.Put("c", domain.EmptyDecision())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")

	c.Purge()
	assert.Zero(t, c.Len())
	assert.Equal(t, uint64(3), c.Stats().Evictions)
}
