package component

import (
	"github.com/milk9111/fpsmove/levels"
	"github.com/milk9111/fpsmove/physics"
)

// PhysicsBody holds the kinematic body driven by the movement controller.
type PhysicsBody struct {
	Body *physics.Body
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()

// Level holds a loaded level definition and its static collision world.
type Level struct {
	Def   *levels.Level
	World *physics.World
}

var LevelComponent = NewComponent[Level]()
