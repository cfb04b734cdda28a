package sharedline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingChecker struct {
	calls  atomic.Int32
	shared bool
	err    error
	delay  time.Duration
}

func (c *countingChecker) IsSharedLineUser(context.Context, string) (bool, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	return c.shared, c.err
}

func TestLookup_CachesWithinTTL(t *testing.T) {
	checker := &countingChecker{shared: true}
	l := NewLookup(checker, time.Minute)

	now := time.Now()
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		shared, err := l.IsSharedLineUser(context.Background(), "sip:amy@example.com")
		require.NoError(t, err)
		assert.True(t, shared)
	}
	assert.Equal(t, int32(1), checker.calls.Load())

	now = now.Add(2 * time.Minute)
	_, err := l.IsSharedLineUser(context.Background(), "sip:amy@example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(2), checker.calls.Load())

	l.Invalidate()
	_, err = l.IsSharedLineUser(context.Background(), "sip:amy@example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(3), checker.calls.Load())
}

func TestLookup_ZeroTTL(t *testing.T) {
	checker := &countingChecker{}
	l := NewLookup(checker, 0)

	for i := 0; i < 2; i++ {
		_, err := l.IsSharedLineUser(context.Background(), "u")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), checker.calls.Load())
}

func TestLookup_ErrorsAreNotCached(t *testing.T) {
	checker := &countingChecker{err: assert.AnError}
	l := NewLookup(checker, time.Minute)

	_, err := l.IsSharedLineUser(context.Background(), "u")
	assert.ErrorIs(t, err, assert.AnError)
	_, err = l.IsSharedLineUser(context.Background(), "u")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, int32(2), checker.calls.Load())
}

func TestLookup_ConcurrentMissesShareQuery(t *testing.T) {
	checker := &countingChecker{shared: true, delay: 50 * time.Millisecond}
	l := NewLookup(checker, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shared, err := l.IsSharedLineUser(context.Background(), "u")
			assert.NoError(t, err)
			assert.True(t, shared)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), checker.calls.Load())
}
