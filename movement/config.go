package movement

import "github.com/milk9111/fpsmove/common"

// LayerMask selects collision layers. Each bit is one layer.
type LayerMask uint32

// Has reports whether every bit in other is set in m.
func (m LayerMask) Has(other LayerMask) bool {
	return m&other == other
}

// Config holds the author-tunable controller parameters.
type Config struct {
	Sensitivity       float64   `yaml:"sensitivity"`
	MoveSpeed         float64   `yaml:"move_speed"`
	Gravity           float64   `yaml:"gravity"`
	JumpHeight        float64   `yaml:"jump_height"`
	GroundProbeRadius float64   `yaml:"ground_probe_radius"`
	GroundMask        LayerMask `yaml:"ground_mask"`
}

const (
	MinSensitivity = 0.0
	MaxSensitivity = 5.0
	MinMoveSpeed   = 1.0
	MaxMoveSpeed   = 20.0
	MinGravity     = 5.0
	MaxGravity     = 20.0
	MinJumpHeight  = 1.0
	MaxJumpHeight  = 10.0
)

func DefaultConfig() Config {
	return Config{
		Sensitivity:       1,
		MoveSpeed:         10,
		Gravity:           9.81,
		JumpHeight:        2,
		GroundProbeRadius: 0.4,
	}
}

// Clamp returns a copy of c with every ranged field pulled into its
// documented range. GroundProbeRadius and GroundMask are left as-is.
func (c Config) Clamp() Config {
	c.Sensitivity = common.Clamp(c.Sensitivity, MinSensitivity, MaxSensitivity)
	c.MoveSpeed = common.Clamp(c.MoveSpeed, MinMoveSpeed, MaxMoveSpeed)
	c.Gravity = common.Clamp(c.Gravity, MinGravity, MaxGravity)
	c.JumpHeight = common.Clamp(c.JumpHeight, MinJumpHeight, MaxJumpHeight)
	return c
}
