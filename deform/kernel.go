package deform

import (
	"github.com/lixenwraith/softmesh/vmath"
)

// Displace is the per-vertex kernel: vertices strictly inside the influence
// radius move along their normal by force*elapsed, everything else is
// returned unchanged. Squared-distance compare keeps the square root out of
// the per-element path.
// Pure value function: concurrent calls over disjoint indices of the same
// backing arrays are safe because index i reads positions[i]/normals[i] and
// writes only positions[i]
func Displace(vertex, normal vmath.Vec3, req Request) vmath.Vec3 {
	if vmath.V3DistSq(vertex, req.Center) < req.Radius*req.Radius {
		return vmath.V3Add(vertex, vmath.V3Scale(normal, req.Force*req.Elapsed))
	}
	return vertex
}
