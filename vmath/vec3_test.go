package vmath

import (
	"testing"
)

func TestV3AddSub(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	sum := V3Add(a, b)
	if sum != (Vec3{5, 7, 9}) {
		t.Errorf("V3Add = %v, want {5 7 9}", sum)
	}

	diff := V3Sub(b, a)
	if diff != (Vec3{3, 3, 3}) {
		t.Errorf("V3Sub = %v, want {3 3 3}", diff)
	}
}

func TestV3Scale(t *testing.T) {
	v := V3Scale(Vec3{1, -2, 3}, 2)
	if v != (Vec3{2, -4, 6}) {
		t.Errorf("V3Scale = %v, want {2 -4 6}", v)
	}
}

func TestV3MagSq(t *testing.T) {
	v := Vec3{2, 2, 2}
	if got := V3MagSq(v); got != 12 {
		t.Errorf("V3MagSq = %v, want 12", got)
	}
	if got := V3Mag(Vec3{3, 4, 0}); got != 5 {
		t.Errorf("V3Mag = %v, want 5", got)
	}
}

func TestV3DistSq(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{0, 0, 5}
	if got := V3DistSq(a, b); got != 25 {
		t.Errorf("V3DistSq = %v, want 25", got)
	}

	// Must match V3MagSq of the difference exactly
	if V3DistSq(a, b) != V3MagSq(V3Sub(a, b)) {
		t.Error("V3DistSq disagrees with V3MagSq(V3Sub)")
	}
}

func TestV3Normalize(t *testing.T) {
	v := V3Normalize(Vec3{0, 3, 4})
	if got := V3Mag(v); got < 0.9999 || got > 1.0001 {
		t.Errorf("normalized magnitude = %v, want 1", got)
	}

	// Zero vector normalizes to zero, not NaN
	z := V3Normalize(Vec3{})
	if z != (Vec3{}) {
		t.Errorf("V3Normalize(zero) = %v, want zero", z)
	}
}

func TestV3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, 20, 30}

	if got := V3Lerp(a, b, 0); got != a {
		t.Errorf("V3Lerp t=0 = %v, want %v", got, a)
	}
	if got := V3Lerp(a, b, 1); got != b {
		t.Errorf("V3Lerp t=1 = %v, want %v", got, b)
	}
	if got := V3Lerp(a, b, 0.5); got != (Vec3{5, 10, 15}) {
		t.Errorf("V3Lerp t=0.5 = %v, want {5 10 15}", got)
	}
}
