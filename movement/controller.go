package movement

import (
	"math"

	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/input"
)

const (
	// GroundedVelocity is the vertical velocity held while standing so the
	// body keeps pressing into the ground between probes.
	GroundedVelocity = -2.0
	// MaxPitch bounds the camera pitch in degrees, both up and down.
	MaxPitch = 90.0
)

// Controller is a first-person movement controller. It is driven by Tick
// from a single simulation goroutine and by input events bound through
// Initialize.
type Controller struct {
	cfg  Config
	host Host

	verticalVelocity float64
	moveInput        common.Vec2
	grounded         bool
	pitch            float64
	stepOffset       float64
	lastDt           float64

	source   ActionSource
	bindings []*input.Binding
}

// New validates host and returns a controller with cfg clamped. The body's
// current step offset is cached as the grounded step height.
func New(cfg Config, host Host) (*Controller, error) {
	if err := host.validate(); err != nil {
		return nil, err
	}
	return &Controller{
		cfg:        cfg.Clamp(),
		host:       host,
		stepOffset: host.Body.StepOffset(),
	}, nil
}

// Initialize binds the controller to the Movement, Look, Jump and Fire
// actions of src and enables it.
func (c *Controller) Initialize(src ActionSource) error {
	if src == nil {
		return ErrMissingInput
	}
	if c.source != nil {
		return ErrAlreadyInitialized
	}
	c.source = src
	c.bindings = append(c.bindings,
		src.BindVector(input.ActionMovement, c.OnMove),
		src.BindVector(input.ActionLook, c.OnLook),
		src.BindTrigger(input.ActionJump, c.OnJump),
		src.BindTrigger(input.ActionFire, c.OnFire),
	)
	src.Enable()
	return nil
}

// Shutdown unbinds every input subscription and disables the source.
// It is safe to call more than once.
func (c *Controller) Shutdown() {
	if c.source == nil {
		return
	}
	for _, b := range c.bindings {
		b.Unbind()
	}
	c.bindings = nil
	c.source.Disable()
	c.source = nil
}

// Tick runs one simulation step: grounding, gravity, then the two sweep-moves.
func (c *Controller) Tick(dt float64) {
	c.lastDt = dt
	c.updateGrounded()
	c.applyGravity(dt)
	c.move(dt)
}

func (c *Controller) updateGrounded() {
	c.grounded = c.host.Physics.OverlapSphere(c.host.Anchor.Position(), c.cfg.GroundProbeRadius, c.cfg.GroundMask)

	step := c.host.Body.StepOffset()
	if !c.grounded && step > 0 {
		c.host.Body.SetStepOffset(0)
	} else if c.grounded && step == 0 {
		c.host.Body.SetStepOffset(c.stepOffset)
	}
}

func (c *Controller) applyGravity(dt float64) {
	if !c.grounded {
		c.verticalVelocity -= c.cfg.Gravity * dt
	} else if c.verticalVelocity < 0 {
		c.verticalVelocity = GroundedVelocity
	}
}

// move issues the horizontal and vertical displacements as separate sweeps
// so each is resolved against the world on its own.
func (c *Controller) move(dt float64) {
	body := c.host.Body
	horizontal := body.Right().Scale(c.moveInput.X).Add(body.Forward().Scale(c.moveInput.Y))
	body.Move(horizontal.Scale(c.cfg.MoveSpeed * dt))
	body.Move(common.Vec3{Y: c.verticalVelocity * dt})
}

// OnMove stores the normalized strafe (X) and forward (Y) input. Non-finite
// values are dropped and the previous input kept.
func (c *Controller) OnMove(v common.Vec2) {
	if !v.IsFinite() {
		return
	}
	c.moveInput = v.Normalized()
}

// OnLook yaws the body and pitches the camera. It is ignored unless the
// pointer is locked; the delta is applied immediately and never queued.
// Non-finite deltas are dropped.
func (c *Controller) OnLook(v common.Vec2) {
	if !c.host.Pointer.Locked() || !v.IsFinite() {
		return
	}
	scale := c.cfg.Sensitivity * c.lastDt

	c.host.Body.RotateYaw(v.X * scale)

	c.pitch = common.Clamp(c.pitch-v.Y*scale, -MaxPitch, MaxPitch)
	c.host.Camera.SetLocalPitch(c.pitch)
}

// OnJump launches the body when grounded. Presses while airborne are dropped.
func (c *Controller) OnJump() {
	if !c.grounded {
		return
	}
	c.verticalVelocity = JumpVelocity(c.cfg.JumpHeight, c.cfg.Gravity)
}

// OnFire is bound so the action has a listener; firing has no movement effect.
func (c *Controller) OnFire() {}

// ApplyConfig replaces the tunables, clamping them like New does.
func (c *Controller) ApplyConfig(cfg Config) {
	c.cfg = cfg.Clamp()
}

// JumpVelocity is the launch speed that peaks at height under constant
// deceleration gravity.
func JumpVelocity(height, gravity float64) float64 {
	return math.Sqrt(2 * height * gravity)
}

func (c *Controller) Config() Config {
	return c.cfg
}

func (c *Controller) Grounded() bool {
	return c.grounded
}

func (c *Controller) VerticalVelocity() float64 {
	return c.verticalVelocity
}

// Pitch returns the camera pitch accumulator in degrees.
func (c *Controller) Pitch() float64 {
	return c.pitch
}

func (c *Controller) MoveInput() common.Vec2 {
	return c.moveInput
}

// GroundStepOffset returns the cached step height restored while grounded.
func (c *Controller) GroundStepOffset() float64 {
	return c.stepOffset
}

// ProbeSphere returns the ground probe's centre and radius for debug drawing.
func (c *Controller) ProbeSphere() (common.Vec3, float64) {
	return c.host.Anchor.Position(), c.cfg.GroundProbeRadius
}
