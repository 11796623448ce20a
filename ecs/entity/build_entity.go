package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"github.com/milk9111/fpsmove/input"
	"github.com/milk9111/fpsmove/movement"
	"github.com/milk9111/fpsmove/physics"
	"github.com/milk9111/fpsmove/prefabs"
)

var (
	ErrNoPhysicsWorld = errors.New("build entity: no physics world")
	ErrNoBody         = errors.New("build entity: controller requires physics_body")
	ErrNoCamera       = errors.New("build entity: controller requires a camera targeting it")
)

type entityPrefabSpec = prefabs.EntityBuildSpec

// Env carries the shared runtime objects builders wire entities to.
type Env struct {
	Physics *physics.World
	Pointer *input.Pointer
	Actions *input.ActionMap
}

type buildContext struct {
	PrefabPath string
	Name       string
	Env        *Env
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag":      addPlayerTag,
	"camera_tag":      addCameraTag,
	"input":           addInput,
	"transform":       addTransform,
	"camera":          addCamera,
	"collision_layer": addCollisionLayer,
	"physics_body":    addPhysicsBody,
	"ground_check":    addGroundCheck,
	"controller":      addController,
}

// Bodies read transform and collision_layer; the controller needs everything.
var componentBuildOrder = []string{
	"player_tag",
	"camera_tag",
	"input",
	"transform",
	"camera",
	"collision_layer",
	"physics_body",
	"ground_check",
	"controller",
}

func BuildEntity(w *ecs.World, prefabPath string, env *Env) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return buildFromSpec(w, prefabPath, spec, env)
}

func buildFromSpec(w *ecs.World, prefabPath string, spec entityPrefabSpec, env *Env) (ecs.Entity, error) {
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}
	if env == nil {
		env = &Env{}
	}

	var unknown []string
	for name := range spec.Components {
		if _, ok := componentRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, unknown[0])
	}

	e := w.CreateEntity()
	ctx := &buildContext{PrefabPath: prefabPath, Name: spec.Name, Env: env}

	for _, name := range componentBuildOrder {
		raw, ok := spec.Components[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			discardEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
	}

	return e, nil
}

// discardEntity releases an entity's input bindings and destroys it.
func discardEntity(w *ecs.World, e ecs.Entity) {
	if c, ok := ecs.Get(w, e, component.ControllerComponent); ok && c.Movement != nil {
		c.Movement.Shutdown()
	}
	w.DestroyEntity(e)
}

// SetEntityTransform moves an entity, teleporting its body if it has one.
func SetEntityTransform(w *ecs.World, e ecs.Entity, pos common.Vec3, yaw float64) error {
	t, _ := ecs.Get(w, e, component.TransformComponent)
	t.Position = pos
	t.Yaw = common.WrapDegrees(yaw)
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent); ok && body.Body != nil {
		body.Body.Teleport(pos)
		body.Body.RotateYaw(t.Yaw - body.Body.Yaw())
	}
	return ecs.Add(w, e, component.TransformComponent, t)
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent, component.PlayerTag{})
}

func addCameraTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CameraTagComponent, component.CameraTag{})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent, component.Input{})
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent, component.Transform{
		Position: vec3(spec.Position),
		Yaw:      common.WrapDegrees(spec.Yaw),
	})
}

func addCamera(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CameraComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera spec: %w", err)
	}
	if spec.FOV <= 0 {
		spec.FOV = 75
	}
	return ecs.Add(w, e, component.CameraComponent, &component.Camera{
		Target:     spec.Target,
		EyeHeight:  spec.EyeHeight,
		FOV:        spec.FOV,
		Smoothness: spec.Smoothness,
	})
}

func addCollisionLayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CollisionLayerComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collision_layer spec: %w", err)
	}
	layers, err := collisionLayerFromSpec(spec)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.CollisionLayerComponent, layers)
}

func collisionLayerFromSpec(spec prefabs.CollisionLayerComponentSpec) (component.CollisionLayer, error) {
	mask, err := physics.ParseLayers(spec.Mask)
	if err != nil {
		return component.CollisionLayer{}, fmt.Errorf("collision_layer mask: %w", err)
	}
	ground, err := physics.ParseLayers(spec.Ground)
	if err != nil {
		return component.CollisionLayer{}, fmt.Errorf("collision_layer ground: %w", err)
	}
	if mask == 0 {
		mask = physics.LayerSolid
	}
	if ground == 0 {
		ground = physics.LayerSolid
	}
	return component.CollisionLayer{Mask: mask, Ground: ground}, nil
}

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	if ctx.Env.Physics == nil {
		return ErrNoPhysicsWorld
	}
	spec, err := prefabs.DecodeComponentSpec[prefabs.PhysicsBodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics_body spec: %w", err)
	}

	t, _ := ecs.Get(w, e, component.TransformComponent)
	layers, _ := ecs.Get(w, e, component.CollisionLayerComponent)

	body := physics.NewBody(ctx.Env.Physics, physics.BodySpec{
		Position:   t.Position,
		Yaw:        t.Yaw,
		Radius:     spec.Radius,
		Height:     spec.Height,
		StepOffset: spec.StepOffset,
		Mask:       layers.Mask,
	})
	return ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{Body: body})
}

func addGroundCheck(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.GroundCheckComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode ground_check spec: %w", err)
	}
	return ecs.Add(w, e, component.GroundCheckComponent, component.GroundCheck{Offset: vec3(spec.Offset)})
}

func addController(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ControllerComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode controller spec: %w", err)
	}

	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
	if !ok || body.Body == nil {
		return ErrNoBody
	}
	cam := findCamera(w, ctx.Name)
	if cam == nil {
		return ErrNoCamera
	}

	layers, ok := ecs.Get(w, e, component.CollisionLayerComponent)
	if !ok {
		layers, _ = collisionLayerFromSpec(prefabs.CollisionLayerComponentSpec{})
	}
	check, _ := ecs.Get(w, e, component.GroundCheckComponent)
	anchor := physics.NewAnchor(body.Body, check.Offset)

	env := ctx.Env
	if env.Pointer == nil {
		env.Pointer = &input.Pointer{}
	}
	if env.Actions == nil {
		env.Actions = input.NewActionMap()
	}

	ctrl, err := movement.New(ControllerConfig(spec, layers.Ground), movement.Host{
		Body:    body.Body,
		Camera:  cam,
		Anchor:  anchor,
		Physics: env.Physics,
		Pointer: env.Pointer,
	})
	if err != nil {
		return err
	}
	if err := ctrl.Initialize(env.Actions); err != nil {
		return err
	}

	if err := ecs.Add(w, e, component.ControllerComponent, component.Controller{
		Movement: ctrl,
		Actions:  env.Actions,
		Pointer:  env.Pointer,
		Anchor:   anchor,
	}); err != nil {
		ctrl.Shutdown()
		return err
	}
	return nil
}

// ControllerConfig overlays spec on the movement defaults.
func ControllerConfig(spec prefabs.ControllerComponentSpec, ground movement.LayerMask) movement.Config {
	cfg := movement.DefaultConfig()
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.Sensitivity, spec.Sensitivity)
	set(&cfg.MoveSpeed, spec.MoveSpeed)
	set(&cfg.Gravity, spec.Gravity)
	set(&cfg.JumpHeight, spec.JumpHeight)
	set(&cfg.GroundProbeRadius, spec.GroundProbeRadius)
	cfg.GroundMask = ground
	return cfg
}

// findCamera returns the camera targeting name, or the first camera.
func findCamera(w *ecs.World, name string) *component.Camera {
	var first *component.Camera
	for _, e := range w.Query(component.CameraComponent.Kind()) {
		cam, ok := ecs.Get(w, e, component.CameraComponent)
		if !ok || cam == nil {
			continue
		}
		if cam.Target == name {
			return cam
		}
		if first == nil {
			first = cam
		}
	}
	return first
}

func vec3(s prefabs.Vec3Spec) common.Vec3 {
	return common.Vec3{X: s.X, Y: s.Y, Z: s.Z}
}
