package vmath

import (
	"github.com/chewxy/math32"
)

// Vec3 is a float32 3D vector for vertex and normal math
// float32 end to end avoids float64 conversion overhead in the hot kernel path
type Vec3 struct {
	X, Y, Z float32
}

func V3Add(a, b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3Sub(a, b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3Scale(v Vec3, s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func V3Dot(a, b Vec3) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func V3MagSq(v Vec3) float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func V3Mag(v Vec3) float32 {
	return math32.Sqrt(V3MagSq(v))
}

// V3DistSq returns squared Euclidean distance between two points
// Callers comparing against a radius should square the radius instead of rooting this
func V3DistSq(a, b Vec3) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

// V3Normalize normalizes a 3D vector
// Optimization: calculates inverse magnitude once, multiplies 3 times
func V3Normalize(v Vec3) Vec3 {
	mag := V3Mag(v)
	if mag == 0 {
		return Vec3{}
	}
	inv := 1.0 / mag
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// V3Lerp interpolates between a and b by t in [0,1]
func V3Lerp(a, b Vec3, t float32) Vec3 {
	return Vec3{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}
