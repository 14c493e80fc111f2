package deform

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsDispatchedTasks(t *testing.T) {
	pool := NewPool(4)

	var ran atomic.Int64
	tasks := make([]func(), 100)
	for i := range tasks {
		tasks[i] = func() { ran.Add(1) }
	}
	if !pool.dispatch(tasks) {
		t.Fatal("dispatch refused on a running pool")
	}

	// Stop drains: every dispatched task runs before workers exit
	pool.Stop()
	if ran.Load() != 100 {
		t.Errorf("ran %d tasks, want 100", ran.Load())
	}
}

func TestPoolDispatchAfterStop(t *testing.T) {
	pool := NewPool(2)
	pool.Stop()

	if pool.dispatch([]func(){func() {}}) {
		t.Error("dispatch accepted tasks on a stopped pool")
	}
}

func TestPoolDispatchDoesNotBlock(t *testing.T) {
	pool := NewPool(1)
	defer pool.Stop()

	// Occupy the lone worker and overfill the bounded queue
	gate := make(chan struct{})
	blockers := []func(){func() { <-gate }}
	for i := 0; i < 16; i++ {
		blockers = append(blockers, func() {})
	}

	done := make(chan struct{})
	go func() {
		pool.dispatch(blockers)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		close(gate)
		t.Fatal("dispatch blocked on a saturated queue")
	}
	close(gate)
}

func TestPoolStopIdempotent(t *testing.T) {
	pool := NewPool(2)
	pool.Stop()
	pool.Stop()

	if pool.Running() {
		t.Error("Running true after Stop")
	}
}

func TestPoolDefaultWorkerCount(t *testing.T) {
	pool := NewPool(0)
	defer pool.Stop()

	if !pool.Running() {
		t.Error("pool with default worker count not running")
	}
}
