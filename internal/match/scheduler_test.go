package match

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerFires(t *testing.T) {
	s := NewScheduler()
	id := uuid.New()
	var fired atomic.Int32

	s.Schedule(id, 10*time.Millisecond, func() { fired.Add(1) })

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, s.Pending(id))
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	id := uuid.New()
	var fired atomic.Int32

	s.Schedule(id, 30*time.Millisecond, func() { fired.Add(1) })
	assert.True(t, s.Cancel(id))
	assert.False(t, s.Pending(id))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	assert.False(t, s.Cancel(id))
}

func TestSchedulerRearmSupersedes(t *testing.T) {
	s := NewScheduler()
	id := uuid.New()
	var first, second atomic.Int32

	s.Schedule(id, 20*time.Millisecond, func() { first.Add(1) })
	s.Schedule(id, 20*time.Millisecond, func() { second.Add(1) })

	require.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}

func TestSchedulerExtend(t *testing.T) {
	s := NewScheduler()
	id := uuid.New()
	var fired atomic.Int32

	s.Schedule(id, 100*time.Millisecond, func() { fired.Add(1) })
	assert.True(t, s.Extend(id, 300*time.Millisecond))

	// Well past the original deadline, before the extended one.
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSchedulerExtendUnknown(t *testing.T) {
	s := NewScheduler()
	assert.False(t, s.Extend(uuid.New(), time.Second))
}

func TestSchedulerIndependentMatches(t *testing.T) {
	s := NewScheduler()
	a, b := uuid.New(), uuid.New()
	var firedA, firedB atomic.Int32

	s.Schedule(a, 10*time.Millisecond, func() { firedA.Add(1) })
	s.Schedule(b, 10*time.Millisecond, func() { firedB.Add(1) })
	assert.True(t, s.Cancel(a))

	require.Eventually(t, func() bool { return firedB.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), firedA.Load())
}
