package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementCountsWithinWindow(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return now })

	for i := int64(1); i <= 5; i++ {
		snap, err := s.Increment(context.Background(), "chat:ip:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, snap.Count)
		assert.Equal(t, now.Add(time.Minute), snap.ResetAt)
	}
}

func TestIncrementResetsExpiredWindow(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return now })

	_, err := s.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	_, err = s.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)

	now = now.Add(time.Minute) // exactly at the boundary counts as expired

	snap, err := s.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Count)
	assert.Equal(t, now.Add(time.Minute), snap.ResetAt)
}

func TestIncrementKeysAreIndependent(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return now })

	for i := 0; i < 4; i++ {
		_, err := s.Increment(context.Background(), "a", time.Minute)
		require.NoError(t, err)
	}
	snap, err := s.Increment(context.Background(), "b", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Count)
}

// No lost updates for one key under concurrent callers.
func TestIncrementConcurrent(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return now })

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Increment(context.Background(), "hot", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := s.Increment(context.Background(), "hot", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), snap.Count)
}
