package geometry

import (
	"errors"

	"github.com/lixenwraith/softmesh/vmath"
)

var (
	ErrSizeMismatch = errors.New("position and normal counts differ")
	ErrReleased     = errors.New("buffers already released")
)

// Buffers owns the deformable vertex state: two index-aligned, fixed-length
// arrays of positions and normals. Length never changes after creation.
// Exactly one owner mutates through Buffers; everything else gets
// task-scoped views from Positions/Normals that must not outlive the task.
type Buffers struct {
	positions []vmath.Vec3
	normals   []vmath.Vec3
	released  bool
}

// NewBuffers copies the supplied slices into freshly owned storage
// Returns ErrSizeMismatch when the two lengths differ; no buffer is created
func NewBuffers(positions, normals []vmath.Vec3) (*Buffers, error) {
	if len(positions) != len(normals) {
		return nil, ErrSizeMismatch
	}

	b := &Buffers{
		positions: make([]vmath.Vec3, len(positions)),
		normals:   make([]vmath.Vec3, len(normals)),
	}
	copy(b.positions, positions)
	copy(b.normals, normals)
	return b, nil
}

// Capacity returns the fixed element count, 0 after Release
func (b *Buffers) Capacity() int {
	return len(b.positions)
}

// Positions returns a borrowed view of vertex positions
// Valid only for the calling scope; nil after Release
func (b *Buffers) Positions() []vmath.Vec3 {
	return b.positions
}

// Normals returns a borrowed view of vertex normals
// Normals are unit length and treated as read-only; nil after Release
func (b *Buffers) Normals() []vmath.Vec3 {
	return b.normals
}

// Replace swaps the published vertex positions for a new set
// The incoming slice is copied; the swap is a single pointer assignment, so
// views handed out before Replace keep seeing the old storage untouched
func (b *Buffers) Replace(positions []vmath.Vec3) error {
	if b.released {
		return ErrReleased
	}
	if len(positions) != len(b.positions) {
		return ErrSizeMismatch
	}

	next := make([]vmath.Vec3, len(positions))
	copy(next, positions)
	b.positions = next
	return nil
}

// Release frees the backing storage
// Idempotent; all subsequent views are nil and Replace fails with ErrReleased
func (b *Buffers) Release() {
	if b.released {
		return
	}
	b.released = true
	b.positions = nil
	b.normals = nil
}

// Released reports whether Release has been called
func (b *Buffers) Released() bool {
	return b.released
}
