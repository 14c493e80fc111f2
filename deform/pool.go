package deform

import (
	"runtime"
	"sync"
)

// Pool is a fixed-size worker pool executing batch tasks
// Workers are long-lived goroutines draining a shared task channel; the pool
// carries no knowledge of runs or buffers, only opaque funcs.
// Producers hand over a whole run's tasks at once through dispatch, which
// feeds the bounded queue from its own goroutine so queue backpressure
// never reaches the caller
type Pool struct {
	tasks    chan func()
	workers  sync.WaitGroup
	feeders  sync.WaitGroup
	mu       sync.RWMutex
	running  bool
	stopOnce sync.Once
}

// NewPool starts workers goroutines; workers <= 0 means runtime.NumCPU()
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &Pool{
		tasks:   make(chan func(), workers*2),
		running: true,
	}

	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.workers.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Running reports whether the pool accepts tasks
func (p *Pool) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// dispatch accepts a run's tasks and returns immediately
// A feeder goroutine pushes them into the task queue; the registration in
// feeders happens under the lock so Stop cannot close the queue while a
// feeder is still sending. Returns false when the pool is stopped and no
// task was accepted
func (p *Pool) dispatch(tasks []func()) bool {
	p.mu.RLock()
	if !p.running {
		p.mu.RUnlock()
		return false
	}
	p.feeders.Add(1)
	p.mu.RUnlock()

	go func() {
		defer p.feeders.Done()
		for _, task := range tasks {
			p.tasks <- task
		}
	}()
	return true
}

// Stop drains outstanding tasks and joins all workers
// Idempotent; runs already dispatched still execute to completion
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()

		// Feeders finish (workers keep draining, so they can), then the
		// queue closes and workers exit after emptying it
		p.feeders.Wait()
		close(p.tasks)
		p.workers.Wait()
	})
}
