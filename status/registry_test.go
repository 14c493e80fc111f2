package status

import (
	"sync"
	"testing"
)

func TestMetricMapPointerStability(t *testing.T) {
	reg := NewRegistry()

	a := reg.Ints.Get(KeyRuns)
	b := reg.Ints.Get(KeyRuns)
	if a != b {
		t.Error("Get returned different pointers for same key")
	}

	a.Add(3)
	if b.Load() != 3 {
		t.Errorf("cached pointer sees %d, want 3", b.Load())
	}
}

func TestMetricMapRangeOrder(t *testing.T) {
	m := NewMetricMap[AtomicFloat]()
	m.Get("z")
	m.Get("a")
	m.Get("m")

	var order []string
	m.Range(func(key string, _ *AtomicFloat) {
		order = append(order, key)
	})

	want := []string{"a", "m", "z"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Range order = %v, want %v", order, want)
		}
	}
	if m.Count() != 3 {
		t.Errorf("Count = %d, want 3", m.Count())
	}
}

func TestMetricMapConcurrentGet(t *testing.T) {
	m := NewMetricMap[AtomicFloat]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Get("shared").Add(1)
			}
		}()
	}
	wg.Wait()

	if got := m.Get("shared").Get(); got != 8000 {
		t.Errorf("concurrent adds = %v, want 8000", got)
	}
}

func TestAtomicFloatSetGet(t *testing.T) {
	var f AtomicFloat
	f.Set(2.5)
	if f.Get() != 2.5 {
		t.Errorf("Get = %v, want 2.5", f.Get())
	}
	if got := f.Add(-1.5); got != 1.0 {
		t.Errorf("Add = %v, want 1.0", got)
	}
}
