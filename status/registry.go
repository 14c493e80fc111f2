package status

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Registry is the central metrics facade
// Components cache pointers during init; hot loops write directly to atomics
type Registry struct {
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[AtomicFloat]
}

// Well-known metric keys written by the deform package
const (
	KeyRuns      = "deform.runs"      // scheduling runs submitted
	KeyBatches   = "deform.batches"   // batch tasks dispatched
	KeyTicks     = "deform.ticks"     // controller ticks
	KeyPublishes = "deform.publishes" // publish hook invocations
	KeyDrains    = "deform.drains"    // in-flight runs drained outside Tick
	KeyWaitMs    = "deform.wait_ms"   // last Complete wait, milliseconds
	KeyVertices  = "deform.vertices"  // vertices covered by submitted runs
)

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[AtomicFloat](),
	}
}

// MetricMap holds named metrics of one atomic type
// Pointer stability: a key's pointer never changes once created
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

// NewMetricMap creates an initialized MetricMap
func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{
		items: make(map[string]*T),
	}
}

// Get returns the metric pointer for key, creating if absent
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	if ptr, ok := m.items[key]; ok {
		m.mu.RUnlock()
		return ptr
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok := m.items[key]; ok {
		return ptr
	}

	ptr := new(T)
	m.items[key] = ptr
	return ptr
}

// Range iterates over all metrics in sorted key order
// Callback receives the pointer; caller reads the atomic value from it
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fn(k, m.items[k])
	}
}

// Count returns the number of registered metrics
func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
