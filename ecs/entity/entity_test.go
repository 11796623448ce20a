package entity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"github.com/milk9111/fpsmove/input"
	"github.com/milk9111/fpsmove/physics"
	"github.com/milk9111/fpsmove/prefabs"
)

func TestBuildScene(t *testing.T) {
	w := ecs.NewWorld()
	env := &Env{}
	scene, err := BuildScene(w, "yard", env)
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}

	if !ecs.Has(w, scene.Player, component.PlayerTagComponent) {
		t.Fatalf("player missing tag")
	}
	ctrl, ok := ecs.Get(w, scene.Player, component.ControllerComponent)
	if !ok || ctrl.Movement == nil {
		t.Fatalf("player missing controller")
	}
	if ctrl.Actions != env.Actions || ctrl.Pointer != env.Pointer {
		t.Fatalf("controller should share env input objects")
	}
	if env.Physics == nil {
		t.Fatalf("env physics should be the level world")
	}

	body, _ := ecs.Get(w, scene.Player, component.PhysicsBodyComponent)
	if body.Body.Position() != (common.Vec3{X: 0, Y: 0, Z: -6}) {
		t.Fatalf("player not at spawn: %v", body.Body.Position())
	}
	if body.Body.StepOffset() != 0.3 {
		t.Fatalf("step offset = %v", body.Body.StepOffset())
	}

	cfg := ctrl.Movement.Config()
	if cfg.MoveSpeed != 10 || cfg.GroundMask != physics.LayerGround|physics.LayerDefault {
		t.Fatalf("unexpected config %+v", cfg)
	}

	// Input reaches the controller through the shared action map.
	env.Actions.PerformVector(input.ActionMovement, common.Vec2{X: 0, Y: 2})
	if got := ctrl.Movement.MoveInput(); got != (common.Vec2{Y: 1}) {
		t.Fatalf("move input = %v", got)
	}

	// The camera prefab is the controller's pitch sink.
	cam, _ := ecs.Get(w, scene.Camera, component.CameraComponent)
	env.Pointer.Lock()
	ctrl.Movement.Tick(1.0 / 60)
	env.Actions.PerformVector(input.ActionLook, common.Vec2{Y: -600})
	if cam.Pitch != 10 {
		t.Fatalf("camera pitch = %v, want 10", cam.Pitch)
	}
}

func TestBuildEntityErrors(t *testing.T) {
	cases := []struct {
		name    string
		spec    prefabs.EntityBuildSpec
		env     *Env
		wantErr error
	}{
		{
			name: "body_without_world",
			spec: prefabs.EntityBuildSpec{Name: "p", Components: map[string]any{
				"physics_body": map[string]any{"radius": 0.5},
			}},
			wantErr: ErrNoPhysicsWorld,
		},
		{
			name: "controller_without_body",
			spec: prefabs.EntityBuildSpec{Name: "p", Components: map[string]any{
				"controller": map[string]any{},
			}},
			env:     &Env{Physics: physics.NewWorld()},
			wantErr: ErrNoBody,
		},
		{
			name: "controller_without_camera",
			spec: prefabs.EntityBuildSpec{Name: "p", Components: map[string]any{
				"physics_body": map[string]any{"radius": 0.5},
				"controller":   map[string]any{},
			}},
			env:     &Env{Physics: physics.NewWorld()},
			wantErr: ErrNoCamera,
		},
		{
			name: "unknown_layer",
			spec: prefabs.EntityBuildSpec{Name: "p", Components: map[string]any{
				"collision_layer": map[string]any{"mask": []any{"lava"}},
			}},
			wantErr: physics.ErrUnknownLayer,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			_, err := buildFromSpec(w, "test.yaml", c.spec, c.env)
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("expected %v, got %v", c.wantErr, err)
			}
			if n := len(w.Entities()); n != 0 {
				t.Fatalf("failed build should destroy its entity, %d left", n)
			}
		})
	}
}

func TestBuildEntityUnknownComponent(t *testing.T) {
	w := ecs.NewWorld()
	spec := prefabs.EntityBuildSpec{Name: "x", Components: map[string]any{"sprite": map[string]any{}}}
	if _, err := buildFromSpec(w, "x.yaml", spec, nil); err == nil {
		t.Fatalf("expected error for unknown component")
	}
	if _, err := buildFromSpec(w, "x.yaml", prefabs.EntityBuildSpec{}, nil); err == nil {
		t.Fatalf("expected error for empty prefab")
	}
}

func TestControllerConfigDefaults(t *testing.T) {
	speed := 4.0
	cfg := ControllerConfig(prefabs.ControllerComponentSpec{MoveSpeed: &speed}, physics.LayerGround)
	if cfg.MoveSpeed != 4 || cfg.Gravity != 9.81 || cfg.GroundMask != physics.LayerGround {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestTeardownSceneShutsDownControllers(t *testing.T) {
	w := ecs.NewWorld()
	env := &Env{}
	if _, err := BuildScene(w, "yard", env); err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	TeardownScene(w)
	if len(w.Entities()) != 0 {
		t.Fatalf("expected no entities after teardown")
	}
	if env.Actions.Enabled() {
		t.Fatalf("action map should be disabled after teardown")
	}
	if n := env.Actions.Subscribers(input.ActionMovement); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

const badPlayerPrefab = `name: player
components:
  player_tag: {}
  collision_layer:
    mask: [lava]
`

func TestLoadSceneFailureKeepsRunningScene(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	running := &Env{}
	w, scene, err := LoadScene("yard", running)
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "prefabs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prefabs", PlayerPrefab), []byte(badPlayerPrefab), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	next := &Env{Actions: input.NewActionMap()}
	nw, nscene, err := LoadScene("yard", next)
	if !errors.Is(err, physics.ErrUnknownLayer) {
		t.Fatalf("expected ErrUnknownLayer, got %v", err)
	}
	if nw != nil || nscene != nil {
		t.Fatalf("failed load should return no world")
	}
	if n := next.Actions.Subscribers(input.ActionMovement); n != 0 {
		t.Fatalf("failed load left %d bindings", n)
	}

	if n := len(w.Entities()); n != 3 {
		t.Fatalf("running scene has %d entities, want 3", n)
	}
	if !ecs.Has(w, scene.Player, component.ControllerComponent) {
		t.Fatalf("running player lost its controller")
	}
	if !running.Actions.Enabled() || running.Actions.Subscribers(input.ActionMovement) != 1 {
		t.Fatalf("running scene's input was disturbed")
	}

	// Building into an existing world cleans up after itself too.
	partial := ecs.NewWorld()
	if _, err := BuildScene(partial, "yard", &Env{}); err == nil {
		t.Fatalf("expected BuildScene to fail")
	}
	if n := len(partial.Entities()); n != 0 {
		t.Fatalf("failed BuildScene left %d entities", n)
	}
}

func TestFailedBuildReleasesBindings(t *testing.T) {
	w := ecs.NewWorld()
	env := &Env{Physics: physics.NewWorld(), Actions: input.NewActionMap()}
	if _, err := BuildEntity(w, CameraPrefab, env); err != nil {
		t.Fatalf("build camera: %v", err)
	}

	spec := prefabs.EntityBuildSpec{Name: "player", Components: map[string]any{
		"physics_body": map[string]any{"radius": 0.5},
		"controller":   map[string]any{},
		"sprite":       map[string]any{},
	}}
	if _, err := buildFromSpec(w, "p.yaml", spec, env); err == nil {
		t.Fatalf("expected unknown component error")
	}
	if n := env.Actions.Subscribers(input.ActionMovement); n != 0 {
		t.Fatalf("failed build left %d bindings", n)
	}
	if n := len(w.Entities()); n != 1 {
		t.Fatalf("expected only the camera, got %d entities", n)
	}

	spec.Name = "player"
	delete(spec.Components, "sprite")
	e, err := buildFromSpec(w, "p.yaml", spec, env)
	if err != nil {
		t.Fatalf("build player: %v", err)
	}
	if env.Actions.Subscribers(input.ActionMovement) != 1 {
		t.Fatalf("controller should be bound")
	}
	discardEntity(w, e)
	if w.IsAlive(e) || env.Actions.Subscribers(input.ActionMovement) != 0 {
		t.Fatalf("discarded entity should be destroyed and unbound")
	}
}
