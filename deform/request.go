package deform

import (
	"github.com/lixenwraith/softmesh/vmath"
)

// Request is the immutable per-run snapshot of one deformation step
// Built fresh for every Deform call and consumed entirely within one run;
// workers never read ambient time or controller state, only this value
type Request struct {
	Center  vmath.Vec3 // local-space contact point
	Radius  float32    // influence radius, non-negative
	Force   float32    // displacement magnitude per second, sign selects push/pull
	Elapsed float32    // seconds attributed to this step, captured at submission
}
