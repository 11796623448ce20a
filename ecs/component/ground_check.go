package component

import "github.com/milk9111/fpsmove/common"

// GroundCheck is the probe offset from the feet as (right, up, forward).
type GroundCheck struct {
	Offset common.Vec3
}

var GroundCheckComponent = NewComponent[GroundCheck]()
