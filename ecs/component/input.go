package component

import "github.com/milk9111/fpsmove/common"

// Input mirrors the last values dispatched to the action map, for the HUD
// and the debug snapshot.
type Input struct {
	Move  common.Vec2
	Look  common.Vec2
	Jump  bool
	Fire  bool
	Frame int
}

var InputComponent = NewComponent[Input]()
