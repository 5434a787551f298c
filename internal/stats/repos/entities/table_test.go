package entities

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string
	Count int
}

func newEntry(key string) entry { return entry{Name: key} }

func TestTable_FindOrCreate_AssignsFirstSeenIDs(t *testing.T) {
	tbl := New(2, newEntry)

	id, created := tbl.FindOrCreate("example.com")
	assert.Equal(t, 0, id)
	assert.True(t, created)

	id, created = tbl.FindOrCreate("example.org")
	assert.Equal(t, 1, id)
	assert.True(t, created)

	id, created = tbl.FindOrCreate("example.com")
	assert.Equal(t, 0, id)
	assert.False(t, created)

	assert.Equal(t, 2, tbl.Len())
}

func TestTable_GrowthPreservesEntries(t *testing.T) {
	tbl := New(3, newEntry)
	for i := 0; i < 10; i++ {
		id, _ := tbl.FindOrCreate(fmt.Sprintf("host%d", i))
		e, ok := tbl.Get(id)
		require.True(t, ok)
		e.Count = i * 10
	}
	assert.GreaterOrEqual(t, tbl.Cap(), 10)

	for i := 0; i < 10; i++ {
		id, ok := tbl.Find(fmt.Sprintf("host%d", i))
		require.True(t, ok)
		assert.Equal(t, i, id)
		e, ok := tbl.Get(id)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("host%d", i), e.Name)
		assert.Equal(t, i*10, e.Count)
	}
}

func TestTable_CapacityReservedAhead(t *testing.T) {
	tbl := New(4, newEntry)
	assert.Equal(t, 4, tbl.Cap())
	for i := 0; i < 4; i++ {
		tbl.FindOrCreate(fmt.Sprintf("k%d", i))
	}
	assert.Equal(t, 4, tbl.Cap())
	tbl.FindOrCreate("k4")
	assert.GreaterOrEqual(t, tbl.Cap(), 8)
}

func TestTable_GetOutOfRange(t *testing.T) {
	tbl := New(0, newEntry)
	_, ok := tbl.Get(0)
	assert.False(t, ok)
	_, ok = tbl.Get(-1)
	assert.False(t, ok)
	_, ok = tbl.Find("missing")
	assert.False(t, ok)
}

func TestTable_SnapshotIsCopy(t *testing.T) {
	tbl := New(1, newEntry)
	tbl.FindOrCreate("a")
	snap := tbl.Snapshot()
	snap[0].Name = "changed"
	e, _ := tbl.Get(0)
	assert.Equal(t, "a", e.Name)
}
