package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/movement"
)

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func newFloorWorld() *World {
	w := NewWorld()
	w.AddBox("floor", common.Vec3{X: -10, Y: -1, Z: -10}, common.Vec3{X: 10, Y: 0, Z: 10}, LayerGround)
	return w
}

func newTestBody(w *World, pos common.Vec3) *Body {
	return NewBody(w, BodySpec{Position: pos, Radius: 0.5, Height: 2, StepOffset: 0.3})
}

func TestParseLayer(t *testing.T) {
	cases := []struct {
		name string
		want uint32
		ok   bool
	}{
		{"default", uint32(LayerDefault), true},
		{"ground", uint32(LayerGround), true},
		{"wall", uint32(LayerWall), true},
		{"trigger", uint32(LayerTrigger), true},
		{"lava", 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := ParseLayer(c.name)
			if ok != c.ok || uint32(got) != c.want {
				t.Fatalf("ParseLayer(%q) = %v, %v", c.name, got, ok)
			}
		})
	}
}

func TestOverlapSphere(t *testing.T) {
	w := newFloorWorld()
	w.AddBox("wall", common.Vec3{X: 3, Y: 0, Z: -1}, common.Vec3{X: 4, Y: 3, Z: 1}, LayerWall)

	cases := []struct {
		name   string
		center common.Vec3
		radius float64
		mask   uint32
		want   bool
	}{
		{"resting_on_floor", common.Vec3{Y: 0}, 0.4, uint32(LayerGround), true},
		{"just_above_floor", common.Vec3{Y: 0.39}, 0.4, uint32(LayerGround), true},
		{"out_of_reach", common.Vec3{Y: 0.41}, 0.4, uint32(LayerGround), false},
		{"wall_not_in_mask", common.Vec3{X: 2.8, Y: 1.5}, 0.4, uint32(LayerGround), false},
		{"wall_in_mask", common.Vec3{X: 2.8, Y: 1.5}, 0.4, uint32(LayerWall), true},
		{"corner_distance", common.Vec3{X: 2.8, Y: 3.2, Z: 1.2}, 0.3, uint32(LayerWall), false},
		{"empty_mask", common.Vec3{}, 0.4, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := w.OverlapSphere(c.center, c.radius, movement.LayerMask(c.mask))
			if got != c.want {
				t.Fatalf("OverlapSphere(%v, %v) = %v, want %v", c.center, c.radius, got, c.want)
			}
		})
	}
}

func TestMoveLandsOnFloor(t *testing.T) {
	w := newFloorWorld()
	b := newTestBody(w, common.Vec3{Y: 1})

	b.Move(common.Vec3{Y: -3})

	approxEqual(t, b.Position().Y, 0, 1e-6, "position.y")
	if b.Flags()&CollidedBelow == 0 {
		t.Fatalf("expected CollidedBelow, got %b", b.Flags())
	}
}

func TestMoveDoesNotTunnel(t *testing.T) {
	w := NewWorld()
	w.AddBox("thin", common.Vec3{X: -5, Y: -0.05, Z: -5}, common.Vec3{X: 5, Y: 0, Z: 5}, LayerGround)
	b := newTestBody(w, common.Vec3{Y: 5})

	b.Move(common.Vec3{Y: -50})

	approxEqual(t, b.Position().Y, 0, 1e-6, "position.y")
}

func TestMoveStopsAtWall(t *testing.T) {
	w := newFloorWorld()
	w.AddBox("wall", common.Vec3{X: 2, Y: 0, Z: -5}, common.Vec3{X: 3, Y: 3, Z: 5}, LayerWall)
	b := newTestBody(w, common.Vec3{})

	b.Move(common.Vec3{X: 4})

	approxEqual(t, b.Position().X, 1.5, 1e-6, "position.x")
	if b.Flags()&CollidedSides == 0 {
		t.Fatalf("expected CollidedSides, got %b", b.Flags())
	}
}

func TestMoveSlidesAlongWall(t *testing.T) {
	w := newFloorWorld()
	w.AddBox("wall", common.Vec3{X: 2, Y: 0, Z: -5}, common.Vec3{X: 3, Y: 3, Z: 5}, LayerWall)
	b := newTestBody(w, common.Vec3{X: 1.5})

	b.Move(common.Vec3{X: 1, Z: 1})

	approxEqual(t, b.Position().X, 1.5, 1e-6, "position.x")
	approxEqual(t, b.Position().Z, 1, 1e-6, "position.z")
}

func TestMoveStepsUpLowLedge(t *testing.T) {
	w := newFloorWorld()
	w.AddBox("step", common.Vec3{X: 1, Y: 0, Z: -5}, common.Vec3{X: 4, Y: 0.25, Z: 5}, LayerGround)

	cases := []struct {
		name  string
		step  float64
		wantX float64
		wantY float64
	}{
		{"grounded_step_offset", 0.3, 1.0, 0.25},
		{"airborne_no_step", 0, 0.5, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := newTestBody(w, common.Vec3{})
			b.SetStepOffset(c.step)
			b.Move(common.Vec3{X: 1})
			approxEqual(t, b.Position().X, c.wantX, 1e-6, "position.x")
			approxEqual(t, b.Position().Y, c.wantY, 1e-5, "position.y")
		})
	}
}

func TestMoveIgnoresTriggers(t *testing.T) {
	w := newFloorWorld()
	w.AddBox("zone", common.Vec3{X: 1, Y: 0, Z: -1}, common.Vec3{X: 2, Y: 2, Z: 1}, LayerTrigger)
	b := newTestBody(w, common.Vec3{})

	b.Move(common.Vec3{X: 3})

	approxEqual(t, b.Position().X, 3, 1e-9, "position.x")
}

func TestRotateYawAndBasis(t *testing.T) {
	b := NewBody(nil, BodySpec{})
	b.RotateYaw(90)
	approxEqual(t, b.Forward().X, 1, 1e-9, "forward.x")
	approxEqual(t, b.Right().Z, -1, 1e-9, "right.z")

	b.RotateYaw(-450)
	approxEqual(t, b.Yaw(), 0, 1e-9, "wrapped yaw")
}

func TestAnchorFollowsBody(t *testing.T) {
	b := NewBody(nil, BodySpec{Position: common.Vec3{X: 1, Y: 2, Z: 3}})
	a := NewAnchor(b, common.Vec3{Y: -0.1, Z: 0.2})

	p := a.Position()
	approxEqual(t, p.Y, 1.9, 1e-9, "anchor.y")
	approxEqual(t, p.Z, 3.2, 1e-9, "anchor.z")

	b.RotateYaw(90)
	p = a.Position()
	approxEqual(t, p.X, 1.2, 1e-9, "rotated anchor.x")
	approxEqual(t, p.Z, 3, 1e-9, "rotated anchor.z")
}

func TestParseLayers(t *testing.T) {
	got, err := ParseLayers([]string{"ground", "wall"})
	if err != nil || got != LayerGround|LayerWall {
		t.Fatalf("ParseLayers = %v, %v", got, err)
	}
	if _, err := ParseLayers([]string{"ground", "lava"}); !errors.Is(err, ErrUnknownLayer) {
		t.Fatalf("expected ErrUnknownLayer, got %v", err)
	}
	if got, err := ParseLayers(nil); err != nil || got != 0 {
		t.Fatalf("empty names = %v, %v", got, err)
	}
}

func TestCollisionFlagsString(t *testing.T) {
	cases := []struct {
		flags CollisionFlags
		want  string
	}{
		{0, "none"},
		{CollidedBelow, "below"},
		{CollidedSides | CollidedAbove, "sides|above"},
		{CollidedSides | CollidedBelow | CollidedAbove, "sides|below|above"},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			if got := c.flags.String(); got != c.want {
				t.Fatalf("String() = %q, want %q", got, c.want)
			}
		})
	}
}
