package watcher

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerCoalescesSameKey(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	var calls int32

	for i := 0; i < 5; i++ {
		s.Schedule("proj/a", func() { atomic.AddInt32(&calls, 1) })
	}
	s.Flush("proj/a")

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestSchedulerDistinctKeysRunIndependently(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	var a, b int32

	s.Schedule("proj/a", func() { atomic.AddInt32(&a, 1) })
	s.Schedule("proj/b", func() { atomic.AddInt32(&b, 1) })
	s.FlushAll()

	if atomic.LoadInt32(&a) != 1 || atomic.LoadInt32(&b) != 1 {
		t.Errorf("a=%d b=%d, want 1 and 1", a, b)
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	var calls int32

	s.Schedule("proj/a", func() { atomic.AddInt32(&calls, 1) })
	s.Cancel("proj/a")
	s.Flush("proj/a")

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("calls = %d, want 0 after cancel", got)
	}
}

func TestSchedulerRealDelay(t *testing.T) {
	s := NewScheduler(20 * time.Millisecond)
	done := make(chan struct{})
	s.Schedule("k", func() { close(done) })

	select {
	case <-done:
		t.Fatal("task ran before delay elapsed")
	case <-time.After(5 * time.Millisecond):
	}

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("task never ran")
	}
}
