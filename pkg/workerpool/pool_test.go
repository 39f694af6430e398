package workerpool

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsTask(t *testing.T) {
	pool := New(2)
	defer pool.Shutdown()

	var ran atomic.Bool
	done := make(chan struct{})
	if err := pool.Submit(func() { ran.Store(true); close(done) }); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	if !ran.Load() {
		t.Error("task flag not set")
	}
}

func TestSubmitFullPool(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	block := make(chan struct{})
	defer close(block)

	// Occupy the single worker, then fill the queue (capacity 2).
	pool.SubmitWait(func() { <-block }) //nolint:errcheck
	for {
		if err := pool.Submit(func() {}); err != nil {
			if !errors.Is(err, ErrPoolFull) {
				t.Fatalf("expected ErrPoolFull, got %v", err)
			}
			return
		}
	}
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := New(1)
	pool.Shutdown()

	if err := pool.Submit(func() {}); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
	if err := pool.SubmitWait(func() {}); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed from SubmitWait, got %v", err)
	}
}

func TestShutdownWaitsForInFlight(t *testing.T) {
	pool := New(4)

	var count atomic.Int32
	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(1)
		pool.SubmitWait(func() { //nolint:errcheck
			defer wg.Done()
			time.Sleep(10 * time.Millisecond)
			count.Add(1)
		})
	}

	pool.Shutdown()
	wg.Wait()
	if count.Load() != 8 {
		t.Errorf("expected 8 completed tasks, got %d", count.Load())
	}
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	pool.SubmitWait(func() { panic("boom") }) //nolint:errcheck

	done := make(chan struct{})
	pool.SubmitWait(func() { close(done) }) //nolint:errcheck

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after panic")
	}
}
