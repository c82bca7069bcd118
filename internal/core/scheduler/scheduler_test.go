package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_TicksPeriodically(t *testing.T) {
	s := New(5*time.Millisecond, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	var ticks int32
	s.Start(ctx, func(context.Context) {
		atomic.AddInt32(&ticks, 1)
	})

	assert.Greater(t, atomic.LoadInt32(&ticks), int32(5))
}

func TestScheduler_TicksNeverOverlap(t *testing.T) {
	s := New(2*time.Millisecond, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var running int32
	var overlapped int32
	s.Start(ctx, func(context.Context) {
		if !atomic.CompareAndSwapInt32(&running, 0, 1) {
			atomic.StoreInt32(&overlapped, 1)
		}
		time.Sleep(5 * time.Millisecond)
		atomic.StoreInt32(&running, 0)
	})

	assert.Equal(t, int32(0), atomic.LoadInt32(&overlapped))
}

func TestScheduler_StopsOnContextDone(t *testing.T) {
	s := New(2*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Start(ctx, func(context.Context) {})
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
