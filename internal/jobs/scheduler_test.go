package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_ImmediateFirstTick(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(discard())
	s.Add("counter", time.Hour, func(context.Context) {
		ticks.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	deadline := time.After(time.Second)
	for ticks.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("first tick did not run immediately")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	s.Wait()
	if got := ticks.Load(); got != 1 {
		t.Errorf("expected exactly 1 tick with an hour interval, got %d", got)
	}
}

func TestScheduler_TicksOnInterval(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(discard())
	s.Add("fast", 5*time.Millisecond, func(context.Context) {
		ticks.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	s.Wait()

	if ticks.Load() < 3 {
		t.Errorf("expected at least 3 ticks, got %d", ticks.Load())
	}
}

func TestScheduler_WaitReturnsAfterCancel(t *testing.T) {
	s := NewScheduler(discard())
	s.Add("idle", time.Hour, func(context.Context) {})
	s.Add("idle2", time.Hour, func(context.Context) {})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after cancellation")
	}
}
