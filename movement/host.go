package movement

import (
	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/input"
)

// Body is the host-owned kinematic body the controller drives. The
// controller never owns the transform; it reads the basis and requests moves.
type Body interface {
	Right() common.Vec3
	Forward() common.Vec3
	// Move sweeps the body by d, resolving collisions against the world.
	Move(d common.Vec3)
	StepOffset() float64
	SetStepOffset(h float64)
	// RotateYaw turns the body about its local up axis.
	RotateYaw(degrees float64)
}

// Camera receives the absolute pitch of the view.
type Camera interface {
	SetLocalPitch(degrees float64)
}

// GroundAnchor is the world-space point the ground probe is centred on.
type GroundAnchor interface {
	Position() common.Vec3
}

type PhysicsQuery interface {
	OverlapSphere(center common.Vec3, radius float64, mask LayerMask) bool
}

// Pointer reports whether look input is captured.
type Pointer interface {
	Locked() bool
}

// Host bundles the collaborators a Controller needs. All are required.
type Host struct {
	Body    Body
	Camera  Camera
	Anchor  GroundAnchor
	Physics PhysicsQuery
	Pointer Pointer
}

func (h Host) validate() error {
	switch {
	case h.Body == nil:
		return ErrMissingBody
	case h.Camera == nil:
		return ErrMissingCamera
	case h.Anchor == nil:
		return ErrMissingGroundAnchor
	case h.Physics == nil:
		return ErrMissingPhysics
	case h.Pointer == nil:
		return ErrMissingPointer
	}
	return nil
}

// ActionSource delivers input events. *input.ActionMap satisfies it.
type ActionSource interface {
	BindVector(action input.Action, fn func(common.Vec2)) *input.Binding
	BindTrigger(action input.Action, fn func()) *input.Binding
	Enable()
	Disable()
}
