package component

import "github.com/milk9111/fpsmove/common"

// Transform is an entity's world placement. Position is the feet for bodies
// and the eye for cameras; Yaw is in degrees about +Y.
type Transform struct {
	Position common.Vec3
	Yaw      float64
}

var TransformComponent = NewComponent[Transform]()
