package deform

import (
	"errors"

	"github.com/lixenwraith/softmesh/geometry"
)

// DefaultBatchSize balances per-task dispatch overhead against
// load-balancing granularity; tune per mesh density
const DefaultBatchSize = 64

var (
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
	ErrPoolStopped      = errors.New("worker pool stopped")
)

// Scheduler partitions the vertex index range into batches and dispatches
// the displacement kernel across the worker pool
type Scheduler struct {
	pool      *Pool
	batchSize int
}

// NewScheduler validates the batch size up front; it never changes afterward
func NewScheduler(pool *Pool, batchSize int) (*Scheduler, error) {
	if batchSize < 1 {
		return nil, ErrInvalidBatchSize
	}
	return &Scheduler{
		pool:      pool,
		batchSize: batchSize,
	}, nil
}

// BatchSize returns the configured batch size
func (s *Scheduler) BatchSize() int {
	return s.batchSize
}

// Schedule splits [0, capacity) into disjoint batches of batchSize (last one
// short) and submits one kernel task per batch, writing displaced positions
// in place. Returns immediately with the run's handle — dispatch feeds the
// pool from its own goroutine, so a saturated queue never blocks the
// caller. Malformed input is rejected here, synchronously, so no error can
// arise mid-run.
// Batches touch disjoint index ranges, which is the whole lock-freedom
// argument: no two tasks ever write the same element
func (s *Scheduler) Schedule(buf *geometry.Buffers, req Request) (*Job, error) {
	if buf.Released() {
		return nil, geometry.ErrReleased
	}

	positions := buf.Positions()
	normals := buf.Normals()
	if len(positions) != len(normals) {
		return nil, geometry.ErrSizeMismatch
	}

	n := len(positions)
	batches := (n + s.batchSize - 1) / s.batchSize
	job := newJob(batches)

	tasks := make([]func(), 0, batches)
	for start := 0; start < n; start += s.batchSize {
		end := start + s.batchSize
		if end > n {
			end = n
		}
		lo, hi := start, end
		tasks = append(tasks, func() {
			job.batchStarted()
			for i := lo; i < hi; i++ {
				positions[i] = Displace(positions[i], normals[i], req)
			}
			job.batchDone()
		})
	}

	if !s.pool.dispatch(tasks) {
		return nil, ErrPoolStopped
	}
	return job, nil
}
