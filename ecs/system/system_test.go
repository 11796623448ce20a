package system

import (
	"math"
	"strings"
	"testing"

	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"github.com/milk9111/fpsmove/ecs/entity"
	"github.com/milk9111/fpsmove/movement"
)

const testDt = 1.0 / 60

func newScene(t *testing.T) (*ecs.World, *entity.Scene) {
	t.Helper()
	w := ecs.NewWorld()
	scene, err := entity.BuildScene(w, "yard", &entity.Env{})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	return w, scene
}

func playerController(t *testing.T, w *ecs.World, e ecs.Entity) component.Controller {
	t.Helper()
	c, ok := ecs.Get(w, e, component.ControllerComponent)
	if !ok || c.Movement == nil {
		t.Fatalf("player has no controller")
	}
	return c
}

func playerBody(t *testing.T, w *ecs.World, e ecs.Entity) component.PhysicsBody {
	t.Helper()
	b, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
	if !ok || b.Body == nil {
		t.Fatalf("player has no body")
	}
	return b
}

func newScenario(t *testing.T, src string) *ScenarioSystem {
	t.Helper()
	s, err := NewScenarioSystemFromSource("test.tengo", []byte(src))
	if err != nil {
		t.Fatalf("compile scenario: %v", err)
	}
	return s
}

func runTicks(w *ecs.World, sched *ecs.Scheduler, n int) {
	for i := 0; i < n; i++ {
		sched.Update(w, testDt)
	}
}

func TestMovementSystemGroundEvents(t *testing.T) {
	w, scene := newScene(t)
	sched := ecs.NewScheduler(NewMovementSystem())

	sched.Update(w, testDt)
	if n := w.Events().Len(); n != 0 {
		t.Fatalf("first tick should not report a transition, got %d events", n)
	}

	body := playerBody(t, w, scene.Player)
	body.Body.Teleport(common.Vec3{Y: 3, Z: -6})

	var kinds []ecs.GroundEventKind
	var landingVy float64
	for i := 0; i < 240; i++ {
		sched.Update(w, testDt)
		for _, evt := range w.Events().Drain() {
			ge := evt.Data.(ecs.GroundEvent)
			kinds = append(kinds, ge.Kind)
			if ge.Kind == ecs.GroundEventLanded {
				landingVy = ge.VerticalVelocity
			}
		}
	}

	if len(kinds) != 2 || kinds[0] != ecs.GroundEventLeft || kinds[1] != ecs.GroundEventLanded {
		t.Fatalf("unexpected ground events %v", kinds)
	}
	if landingVy != movement.GroundedVelocity {
		t.Fatalf("landing velocity = %v, want %v", landingVy, movement.GroundedVelocity)
	}
	if y := body.Body.Position().Y; math.Abs(y) > 1e-9 {
		t.Fatalf("player should rest on the floor, y = %v", y)
	}
}

func TestTransformSyncAndCamera(t *testing.T) {
	w, scene := newScene(t)
	sched := ecs.NewScheduler(NewTransformSyncSystem(), NewCameraSystem())

	sched.Update(w, testDt)
	cam, _ := ecs.Get(w, scene.Camera, component.CameraComponent)
	camT, _ := ecs.Get(w, scene.Camera, component.TransformComponent)
	if camT.Position != (common.Vec3{Y: cam.EyeHeight, Z: -6}) {
		t.Fatalf("camera at %v, want eye above spawn", camT.Position)
	}

	body := playerBody(t, w, scene.Player)
	body.Body.Teleport(common.Vec3{X: 2, Y: 1, Z: -6})
	body.Body.RotateYaw(30)
	sched.Update(w, testDt)

	pt, _ := ecs.Get(w, scene.Player, component.TransformComponent)
	if pt.Position != body.Body.Position() || pt.Yaw != 30 {
		t.Fatalf("player transform not synced: %+v", pt)
	}

	camT, _ = ecs.Get(w, scene.Camera, component.TransformComponent)
	if camT.Position.X != 2 || camT.Yaw != 30 {
		t.Fatalf("camera should follow horizontally: %+v", camT)
	}
	wantY := common.Lerp(cam.EyeHeight, 1+cam.EyeHeight, 1-cam.Smoothness)
	if math.Abs(camT.Position.Y-wantY) > 1e-9 {
		t.Fatalf("camera y = %v, want eased %v", camT.Position.Y, wantY)
	}
}

func TestScenarioJumpRequiresGround(t *testing.T) {
	w, scene := newScene(t)
	s := newScenario(t, `
ticks := 3
update := func(engine, state, tick) {
	if tick == 0 || tick == 2 {
		engine.jump()
	}
}
`)
	sched := ecs.NewScheduler(s, NewMovementSystem())
	ctrl := playerController(t, w, scene.Player)

	runTicks(w, sched, 2)
	if vy := ctrl.Movement.VerticalVelocity(); vy != 0 {
		t.Fatalf("jump before the first grounding should be dropped, vy = %v", vy)
	}

	runTicks(w, sched, 1)
	if vy, want := ctrl.Movement.VerticalVelocity(), movement.JumpVelocity(2, 9.81); math.Abs(vy-want) > 1e-9 {
		t.Fatalf("vy = %v, want %v", vy, want)
	}
	if !s.Finished() || s.Tick() != 3 {
		t.Fatalf("scenario should finish after 3 ticks, tick = %d", s.Tick())
	}

	runTicks(w, sched, 1)
	if s.Tick() != 3 {
		t.Fatalf("finished scenario should not run again")
	}
}

func TestScenarioLook(t *testing.T) {
	cases := []struct {
		name      string
		lock      bool
		wantPitch float64
		wantYaw   float64
	}{
		{"locked_clamps_pitch", true, movement.MaxPitch, 10},
		{"unlocked_ignored", false, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, scene := newScene(t)
			lock := "false"
			if c.lock {
				lock = "true"
			}
			s := newScenario(t, `
ticks := 4
update := func(engine, state, tick) {
	if tick == 0 && `+lock+` {
		engine.lock()
	}
	if tick == 1 {
		engine.look(600, -6000)
	}
}
`)
			runTicks(w, ecs.NewScheduler(s, NewMovementSystem()), 4)

			ctrl := playerController(t, w, scene.Player)
			cam, _ := ecs.Get(w, scene.Camera, component.CameraComponent)
			if ctrl.Movement.Pitch() != c.wantPitch || cam.Pitch != c.wantPitch {
				t.Fatalf("pitch = %v (camera %v), want %v", ctrl.Movement.Pitch(), cam.Pitch, c.wantPitch)
			}
			if yaw := playerBody(t, w, scene.Player).Body.Yaw(); math.Abs(yaw-c.wantYaw) > 1e-9 {
				t.Fatalf("yaw = %v, want %v", yaw, c.wantYaw)
			}
		})
	}
}

func TestScenarioWalkJump(t *testing.T) {
	w, scene := newScene(t)
	s, err := NewScenarioSystem("walk_jump.tengo")
	if err != nil {
		t.Fatalf("NewScenarioSystem: %v", err)
	}
	sched := ecs.NewScheduler(s, NewMovementSystem(), NewTransformSyncSystem())

	airborne := false
	for !s.Finished() {
		sched.Update(w, testDt)
		if !playerController(t, w, scene.Player).Movement.Grounded() {
			airborne = true
		}
	}
	if s.Err() != nil {
		t.Fatalf("scenario error: %v", s.Err())
	}
	if !airborne {
		t.Fatalf("player never left the ground")
	}

	ctrl := playerController(t, w, scene.Player)
	p := playerBody(t, w, scene.Player).Body.Position()
	if !ctrl.Movement.Grounded() || math.Abs(p.Y) > 1e-9 {
		t.Fatalf("player should end on the floor, at %v grounded=%v", p, ctrl.Movement.Grounded())
	}
	// The north wall's inner face is at z=19; the body radius is 0.5.
	if math.Abs(p.Z-18.5) > 1e-4 {
		t.Fatalf("player should stop at the north wall, z = %v", p.Z)
	}
	if in, _ := ecs.Get(w, scene.Player, component.InputComponent); in.Move != (common.Vec2{}) || !in.Jump {
		t.Fatalf("input component not recorded: %+v", in)
	}
}

func TestScenarioErrors(t *testing.T) {
	if _, err := NewScenarioSystemFromSource("bad.tengo", []byte(`ticks := 1`)); err == nil {
		t.Fatalf("script without update should fail to compile")
	}
	if _, err := NewScenarioSystem("missing.tengo"); err == nil {
		t.Fatalf("missing script should fail to load")
	}

	w, _ := newScene(t)
	s := newScenario(t, `
update := func(engine, state, tick) {
	if tick == 1 {
		state.x = 1 / (tick - 1)
	}
}
`)
	runTicks(w, ecs.NewScheduler(s), 5)
	if s.Err() == nil || !s.Finished() {
		t.Fatalf("runtime error should stop the scenario")
	}
	if s.Tick() != 1 {
		t.Fatalf("scenario should stop on the failing tick, tick = %d", s.Tick())
	}
}

func TestScenarioStopAndState(t *testing.T) {
	w, _ := newScene(t)
	s := newScenario(t, `
update := func(engine, state, tick) {
	if is_undefined(state.count) {
		state.count = 0
	}
	state.count = state.count + 1
	if state.count == 3 {
		engine.stop()
	}
}
`)
	if s.Ticks() != 0 {
		t.Fatalf("script without ticks should be unbounded")
	}
	runTicks(w, ecs.NewScheduler(s), 10)
	if !s.Finished() || s.Tick() != 3 {
		t.Fatalf("stop should end the scenario after 3 ticks, tick = %d", s.Tick())
	}
}

func TestEmbeddedScenariosCompile(t *testing.T) {
	for _, name := range []string{"walk_jump.tengo", "look_around.tengo", "staircase.tengo"} {
		t.Run(name, func(t *testing.T) {
			s, err := NewScenarioSystem(name)
			if err != nil {
				t.Fatalf("NewScenarioSystem: %v", err)
			}
			if s.Ticks() <= 0 {
				t.Fatalf("expected a tick limit")
			}
		})
	}
}

func TestDebugSnapshot(t *testing.T) {
	w, scene := newScene(t)
	ecs.NewScheduler(NewMovementSystem()).Update(w, testDt)

	snap := DebugSnapshot(w, scene.Player)
	for _, want := range []string{"Grounded: true", "Pitch: 0.00", "Pointer: free", "Collisions: none", "Position: (0.000, 0.000, -6.000)"} {
		if !strings.Contains(snap, want) {
			t.Fatalf("snapshot missing %q:\n%s", want, snap)
		}
	}
	playerController(t, w, scene.Player).Pointer.Lock()
	body := playerBody(t, w, scene.Player)
	body.Body.Teleport(common.Vec3{Y: 0.01, Z: -6})
	body.Body.Move(common.Vec3{Y: -1})
	snap = DebugSnapshot(w, scene.Player)
	for _, want := range []string{"Pointer: locked", "Collisions: below"} {
		if !strings.Contains(snap, want) {
			t.Fatalf("snapshot missing %q:\n%s", want, snap)
		}
	}

	if got := DebugSnapshot(w, scene.Camera); got != "no controller" {
		t.Fatalf("camera snapshot = %q", got)
	}
}

func TestInputDispatchAfterSceneSwap(t *testing.T) {
	w, scene := newScene(t)
	in := NewInputSystem()
	held := frameInput{move: common.Vec2{Y: 1}, look: common.Vec2{X: 30}}

	ctrl := playerController(t, w, scene.Player)
	ctrl.Pointer.Lock()
	in.dispatch(w, held)
	if got := ctrl.Movement.MoveInput(); got != (common.Vec2{Y: 1}) {
		t.Fatalf("move input = %v", got)
	}

	// A rebuilt scene gets the held input again, and its first locked frame
	// is treated like a fresh lock.
	entity.TeardownScene(w)
	w2, scene2 := newScene(t)
	ctrl2 := playerController(t, w2, scene2.Player)
	ctrl2.Pointer.Lock()
	ctrl2.Movement.Tick(testDt)

	in.dispatch(w2, held)
	if got := ctrl2.Movement.MoveInput(); got != (common.Vec2{Y: 1}) {
		t.Fatalf("held move not redelivered, got %v", got)
	}
	if ctrl2.Movement.Pitch() != 0 {
		t.Fatalf("look delivered on first frame")
	}
	if len(in.sent) != 1 {
		t.Fatalf("stale controller state kept: %d entries", len(in.sent))
	}

	in.dispatch(w2, frameInput{move: held.move, look: common.Vec2{Y: 60}})
	if ctrl2.Movement.Pitch() == 0 {
		t.Fatalf("look should reach the controller once locked")
	}
}
