package prefabs

import "gopkg.in/yaml.v3"

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	Position Vec3Spec `yaml:"position"`
	Yaw      float64  `yaml:"yaw"`
}

// ControllerComponentSpec is the tunable movement config. Pointer fields
// fall back to the controller defaults when omitted.
type ControllerComponentSpec struct {
	Sensitivity       *float64 `yaml:"sensitivity"`
	MoveSpeed         *float64 `yaml:"move_speed"`
	Gravity           *float64 `yaml:"gravity"`
	JumpHeight        *float64 `yaml:"jump_height"`
	GroundProbeRadius *float64 `yaml:"ground_probe_radius"`
}

type PhysicsBodyComponentSpec struct {
	Radius     float64 `yaml:"radius"`
	Height     float64 `yaml:"height"`
	StepOffset float64 `yaml:"step_offset"`
}

// CollisionLayerComponentSpec names layers rather than bits.
type CollisionLayerComponentSpec struct {
	Mask   []string `yaml:"mask"`
	Ground []string `yaml:"ground"`
}

type GroundCheckComponentSpec struct {
	Offset Vec3Spec `yaml:"offset"`
}

type CameraComponentSpec struct {
	Target     string  `yaml:"target"`
	EyeHeight  float64 `yaml:"eye_height"`
	FOV        float64 `yaml:"fov"`
	Smoothness float64 `yaml:"smoothness"`
}
