package overtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const width = 600 * time.Second

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(time.Unix(0, 0), width, 2)
	require.NoError(t, err)
	return s
}

func TestNew_RejectsNonPositiveWidth(t *testing.T) {
	_, err := New(time.Unix(0, 0), 0, 1)
	assert.Error(t, err)
	_, err = New(time.Unix(0, 0), -time.Minute, 1)
	assert.Error(t, err)
}

func TestBucketFor_SameWindowSameBucket(t *testing.T) {
	s := newStore(t)
	t1 := time.Unix(1000, 0)
	t2 := time.Unix(1199, 0)
	id1 := s.BucketFor(t1)
	id2 := s.BucketFor(t2)
	assert.Equal(t, 1, id1)
	assert.Equal(t, id1, id2)
	assert.Equal(t, id1+1, s.BucketFor(t1.Add(width)))
}

func TestBucketFor_ExtendsWithZeroedBuckets(t *testing.T) {
	s := newStore(t)
	id := s.BucketFor(time.Unix(6000, 0))
	assert.Equal(t, 10, id)
	assert.Equal(t, 11, s.Len())
	for i := 0; i < s.Len(); i++ {
		b, ok := s.Get(i)
		require.True(t, ok)
		assert.Zero(t, b.Total)
		assert.True(t, time.Unix(int64(i)*600, 0).Equal(b.Start))
	}
}

func TestBucketFor_NeverInsertsBeforeFirst(t *testing.T) {
	s, err := New(time.Unix(6000, 0), width, 1)
	require.NoError(t, err)
	b := s.BucketFor(time.Unix(7000, 0))
	assert.Equal(t, 1, b)
	assert.Equal(t, 0, s.BucketFor(time.Unix(10, 0)))
	assert.Equal(t, 2, s.Len())
}

func TestBucketFor_EarlierTimestampDoesNotShrink(t *testing.T) {
	s := newStore(t)
	s.BucketFor(time.Unix(3000, 0))
	n := s.Len()
	assert.Equal(t, 2, s.BucketFor(time.Unix(1300, 0)))
	assert.Equal(t, n, s.Len())
}

func TestGrowthPreservesCounts(t *testing.T) {
	s := newStore(t)
	id := s.BucketFor(time.Unix(0, 0))
	b, _ := s.Get(id)
	b.Total = 5
	b.CountClient(0, 1)

	s.BucketFor(time.Unix(600*50, 0))
	b, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, 5, b.Total)
	assert.Equal(t, 1, b.ClientCount(0))
}

func TestGetAndSnapshot(t *testing.T) {
	s := newStore(t)
	_, ok := s.Get(0)
	assert.False(t, ok)

	s.BucketFor(time.Unix(0, 0))
	b, _ := s.Get(0)
	b.CountClient(0, 1)

	snap := s.Snapshot()
	snap[0].ClientCounts[0] = 99
	b, _ = s.Get(0)
	assert.Equal(t, 1, b.ClientCounts[0])
	assert.Equal(t, width, s.Width())
	assert.True(t, time.Unix(0, 0).Equal(s.Epoch()))
}
