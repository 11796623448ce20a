package component

// Camera is a first-person view attached to the entity named by Target.
// It is stored by pointer so the movement controller can hold it as its
// pitch sink.
type Camera struct {
	Target     string
	EyeHeight  float64
	FOV        float64
	Smoothness float64

	Pitch float64
}

// SetLocalPitch sets the view pitch in degrees.
func (c *Camera) SetLocalPitch(degrees float64) {
	c.Pitch = degrees
}

var CameraComponent = NewComponent[*Camera]()
