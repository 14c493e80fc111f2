package deform

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/softmesh/geometry"
	"github.com/lixenwraith/softmesh/status"
	"github.com/lixenwraith/softmesh/vmath"
)

var ErrNegativeRadius = errors.New("deformation radius must be non-negative")

// PublishFunc consumes the refreshed position buffer at the end of a tick
// The slice is a borrowed view; consumers copy what they keep
type PublishFunc func(positions []vmath.Vec3)

// TransformFunc maps a stimulus point into the buffers' local space
type TransformFunc func(point vmath.Vec3) vmath.Vec3

// Controller is the single-threaded owner of the deformation lifecycle
// All methods must be called from one goroutine (the surrounding update
// loop); the controller alone decides when workers may touch the buffers.
// Single-flight: at most one run is outstanding; a Deform call arriving
// while one is in flight drains it first, so every run is fully applied
// before the next begins
type Controller struct {
	buffers *geometry.Buffers
	sched   *Scheduler
	toLocal TransformFunc
	publish []PublishFunc

	pending   *Job
	lastDelta float32

	// Cached metric pointers, written lock-free on the hot path
	statRuns      *atomic.Int64
	statBatches   *atomic.Int64
	statTicks     *atomic.Int64
	statPublishes *atomic.Int64
	statDrains    *atomic.Int64
	statVertices  *atomic.Int64
	statWaitMs    *status.AtomicFloat
}

// NewController wires the controller to its buffers, scheduler and metrics
// tickInterval seeds the elapsed-time snapshot for requests submitted
// before the first Tick supplies a measured delta
func NewController(buf *geometry.Buffers, sched *Scheduler, reg *status.Registry, tickInterval float32) *Controller {
	return &Controller{
		buffers:       buf,
		sched:         sched,
		lastDelta:     tickInterval,
		statRuns:      reg.Ints.Get(status.KeyRuns),
		statBatches:   reg.Ints.Get(status.KeyBatches),
		statTicks:     reg.Ints.Get(status.KeyTicks),
		statPublishes: reg.Ints.Get(status.KeyPublishes),
		statDrains:    reg.Ints.Get(status.KeyDrains),
		statVertices:  reg.Ints.Get(status.KeyVertices),
		statWaitMs:    reg.Floats.Get(status.KeyWaitMs),
	}
}

// SetTransform injects the world-to-local point transform
// Identity when unset. Call during setup, before the loop starts
func (c *Controller) SetTransform(fn TransformFunc) {
	c.toLocal = fn
}

// AddPublishHook registers a consumer of refreshed positions
// Hooks run in registration order at the end of every publishing tick.
// Call during setup, before the loop starts
func (c *Controller) AddPublishHook(fn PublishFunc) {
	c.publish = append(c.publish, fn)
}

// Pending reports whether a run is outstanding
func (c *Controller) Pending() bool {
	return c.pending != nil
}

// Buffers exposes the owned vertex state for setup and inspection
func (c *Controller) Buffers() *geometry.Buffers {
	return c.buffers
}

// Deform schedules one displacement run around point and returns without
// waiting for it. Radius and force are in local-space units; negative
// radius is a contract violation. The elapsed time stamped into the request
// is the delta supplied by the most recent Tick
func (c *Controller) Deform(point vmath.Vec3, radius, force float32) error {
	if radius < 0 {
		return ErrNegativeRadius
	}
	if c.toLocal != nil {
		point = c.toLocal(point)
	}

	// Drain-then-reschedule: never two runs in flight
	if c.pending != nil {
		c.pending.Complete()
		c.pending = nil
		c.statDrains.Add(1)
	}

	req := Request{
		Center:  point,
		Radius:  radius,
		Force:   force,
		Elapsed: c.lastDelta,
	}

	job, err := c.sched.Schedule(c.buffers, req)
	if err != nil {
		return err
	}
	c.pending = job

	n := int64(c.buffers.Capacity())
	bs := int64(c.sched.BatchSize())
	c.statRuns.Add(1)
	c.statBatches.Add((n + bs - 1) / bs)
	c.statVertices.Add(n)
	return nil
}

// Tick is the fixed-cadence completion point, called exactly once per update
// cycle after all Deform calls for that cycle. It joins the outstanding run
// if any, then publishes the refreshed buffer to every registered hook.
// elapsed is the wall-clock delta of the cycle, snapshotted for the next
// round of requests
func (c *Controller) Tick(elapsed float32) {
	c.lastDelta = elapsed
	c.statTicks.Add(1)

	if c.pending == nil {
		return
	}
	c.completePending()
}

// Drain joins and publishes any outstanding run between ticks without
// advancing the tick clock: the elapsed-time snapshot stays whatever the
// last Tick supplied. For owners that must touch the buffer mid-cycle
// (reset, Replace)
func (c *Controller) Drain() {
	if c.pending == nil {
		return
	}
	c.statDrains.Add(1)
	c.completePending()
}

func (c *Controller) completePending() {
	waitStart := time.Now()
	c.pending.Complete()
	c.pending = nil
	c.statWaitMs.Set(float64(time.Since(waitStart)) / float64(time.Millisecond))

	positions := c.buffers.Positions()
	for _, fn := range c.publish {
		fn(positions)
	}
	if len(c.publish) > 0 {
		c.statPublishes.Add(1)
	}
}
