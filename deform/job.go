package deform

import (
	"sync"
	"sync/atomic"
)

// JobState tracks the lifecycle of one scheduled run
type JobState int32

const (
	JobPending   JobState = iota // created, no batch started yet
	JobRunning                   // at least one batch in progress
	JobCompleted                 // every batch finished, results readable
)

// Job is the handle for one scheduled run across all its batches
// Complete blocks until the run finishes and establishes the happens-before
// edge making all batch writes visible to the caller. There is no
// cancellation: a scheduled run always finishes, so displacement is never
// partially applied
type Job struct {
	remaining atomic.Int64
	state     atomic.Int32
	done      chan struct{}
	closeOnce sync.Once
}

// newJob creates a handle expecting batches completions
// A zero-batch run (empty buffers) is born completed
func newJob(batches int) *Job {
	j := &Job{
		done: make(chan struct{}),
	}
	j.remaining.Store(int64(batches))
	if batches == 0 {
		j.finish()
	}
	return j
}

// batchStarted moves Pending to Running on the first batch touched
func (j *Job) batchStarted() {
	j.state.CompareAndSwap(int32(JobPending), int32(JobRunning))
}

// batchDone counts down one batch; the last one completes the run
func (j *Job) batchDone() {
	if j.remaining.Add(-1) == 0 {
		j.finish()
	}
}

func (j *Job) finish() {
	j.closeOnce.Do(func() {
		j.state.Store(int32(JobCompleted))
		close(j.done)
	})
}

// Complete blocks until every batch of the run has finished
// Safe to call from multiple goroutines and repeatedly; calls after the
// first return immediately
func (j *Job) Complete() {
	<-j.done
}

// IsComplete is the non-blocking completion poll
func (j *Job) IsComplete() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// State returns the current lifecycle state
func (j *Job) State() JobState {
	return JobState(j.state.Load())
}
