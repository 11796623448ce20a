package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type CameraTag struct{}

var CameraTagComponent = NewComponent[CameraTag]()

// LevelTag marks the entity carrying the loaded level's physics world.
type LevelTag struct{}

var LevelTagComponent = NewComponent[LevelTag]()
