package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-stats/internal/stats/domain"
)

func query(key int) domain.Query {
	return domain.NewQuery(key, time.Unix(0, 0), domain.RecordTypeA, 0, 0, 0, false)
}

func TestLedger_AppendAndFind(t *testing.T) {
	l := New(2)
	assert.Equal(t, 0, l.Append(query(42)))
	assert.Equal(t, 1, l.Append(query(7)))

	id, ok := l.Find(42)
	require.True(t, ok)
	assert.Equal(t, 0, id)

	_, ok = l.Find(1000)
	assert.False(t, ok)
}

func TestLedger_ReusedKeyResolvesToNewest(t *testing.T) {
	l := New(2)
	l.Append(query(5))
	q, _ := l.Get(0)
	q.Complete = true

	l.Append(query(9))
	newest := l.Append(query(5))

	id, ok := l.Find(5)
	require.True(t, ok)
	assert.Equal(t, newest, id)
	got, _ := l.Get(id)
	assert.False(t, got.Complete)
}

func TestLedger_GrowthKeepsRecords(t *testing.T) {
	l := New(1)
	for i := 0; i < 100; i++ {
		l.Append(query(i))
	}
	assert.Equal(t, 100, l.Len())
	for i := 0; i < 100; i++ {
		id, ok := l.Find(i)
		require.True(t, ok)
		q, ok := l.Get(id)
		require.True(t, ok)
		assert.Equal(t, i, q.CorrelationKey)
	}
}

func TestLedger_GetOutOfRange(t *testing.T) {
	l := New(0)
	_, ok := l.Get(0)
	assert.False(t, ok)
	l.Append(query(1))
	_, ok = l.Get(1)
	assert.False(t, ok)
	_, ok = l.Get(-1)
	assert.False(t, ok)
}

func TestLedger_Snapshot(t *testing.T) {
	l := New(0)
	l.Append(query(1))
	snap := l.Snapshot()
	snap[0].Status = domain.QueryStatusForwarded
	q, _ := l.Get(0)
	assert.Equal(t, domain.QueryStatusUnknown, q.Status)
}
