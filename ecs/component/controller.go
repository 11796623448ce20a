package component

import (
	"github.com/milk9111/fpsmove/input"
	"github.com/milk9111/fpsmove/movement"
	"github.com/milk9111/fpsmove/physics"
)

// Controller binds a movement controller to its input and cursor state.
type Controller struct {
	Movement *movement.Controller
	Actions  *input.ActionMap
	Pointer  *input.Pointer
	Anchor   *physics.Anchor
}

var ControllerComponent = NewComponent[Controller]()
