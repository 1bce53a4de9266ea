package workerpool

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSubmitRunsJob(t *testing.T) {
	pool := New(2, 4)
	defer pool.Stop()

	var ran int32
	fut := pool.Submit(func() error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	require.NoError(t, fut.Wait())
	assert.EqualValues(t, 1, atomic.LoadInt32(&ran))
}

func TestPoolSubmitPropagatesError(t *testing.T) {
	pool := New(1, 4)
	defer pool.Stop()

	fut := pool.Submit(func() error { return errors.New("boom") })
	assert.EqualError(t, fut.Wait(), "boom")
}

func TestPoolSubmitAfterStopRunsInline(t *testing.T) {
	pool := New(1, 1)
	pool.Stop()

	var ran int32
	fut := pool.Submit(func() error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	require.NoError(t, fut.Wait())
	assert.EqualValues(t, 1, atomic.LoadInt32(&ran))
}

func TestTimerPoolOneShot(t *testing.T) {
	tp := NewTimerPool()
	defer tp.StopAll()

	fired := make(chan struct{}, 1)
	tp.Start(10*time.Millisecond, false, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestTimerPoolRepeatingStop(t *testing.T) {
	tp := NewTimerPool()
	var count int32
	timer := tp.Start(5*time.Millisecond, true, func() {
		atomic.AddInt32(&count, 1)
	})

	time.Sleep(30 * time.Millisecond)
	timer.Stop()
	seen := atomic.LoadInt32(&count)
	assert.Greater(t, seen, int32(0))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, seen, atomic.LoadInt32(&count))
}
