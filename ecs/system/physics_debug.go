package system

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"golang.org/x/image/colornames"
)

// DrawPhysicsDebug outlines every collider footprint in the level's space.
func DrawPhysicsDebug(w *ecs.World, screen *ebiten.Image, scale float64) {
	if w == nil || screen == nil {
		return
	}
	drawer := &physicsDebugDrawer{screen: screen, view: cameraView(w, screen, scale)}
	ecs.ForEach(w, component.LevelComponent, func(_ ecs.Entity, lvl component.Level) {
		lvl.World.DrawSpace(drawer)
	})
}

// DrawGroundProbe draws the ground check sphere of every controller: a
// circle in the map and a ring in the side panel. Green means grounded.
func DrawGroundProbe(w *ecs.World, screen *ebiten.Image, scale float64) {
	if w == nil || screen == nil {
		return
	}
	v := cameraView(w, screen, scale)
	ecs.ForEach(w, component.ControllerComponent, func(_ ecs.Entity, c component.Controller) {
		if c.Movement == nil {
			return
		}
		center, radius := c.Movement.ProbeSphere()
		clr := color.Color(colornames.Red)
		if c.Movement.Grounded() {
			clr = colornames.Lime
		}
		x, y := v.toScreen(center.X, center.Z)
		vector.StrokeCircle(screen, x, y, float32(radius*v.scale), 1, clr, true)

		// Side panel: the probe against the ground line at y=0.
		const panel = 96
		b := screen.Bounds()
		px, py := float32(b.Dx()-panel-10), float32(b.Dy()-panel-10)
		vector.StrokeRect(screen, px, py, panel, panel, 1, colornames.Gray, false)
		groundY := py + panel*3/4
		vector.StrokeLine(screen, px, groundY, px+panel, groundY, 1, colornames.Dimgray, false)
		sideScale := float32(panel / 4)
		vector.StrokeCircle(screen, px+panel/2, groundY-float32(center.Y)*sideScale, float32(radius)*sideScale, 1, clr, true)
	})
}

// DrawControllerDebug prints the controller state in the top-left corner.
func DrawControllerDebug(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	player, ok := w.First(component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	ebitenutil.DebugPrintAt(screen, DebugSnapshot(w, player), 10, 10)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	view   view
}

// Only static box footprints are indexed, so polygons and segments are all
// that gets drawn.
func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	for i := 0; i < count; i++ {
		d.drawLine(verts[i], verts[(i+1)%count], fill)
	}
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {}

func (d *physicsDebugDrawer) Flags() uint { return cp.DRAW_SHAPES }

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

// ShapeColor tints trigger volumes apart from solid colliders.
func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape.Sensor() {
		return cp.FColor{R: 1, G: 0.8, B: 0.1, A: 0.7}
	}
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

// Constraints and collision points are never drawn with DRAW_SHAPES.
func (d *physicsDebugDrawer) ConstraintColor() cp.FColor { return cp.FColor{} }
func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor { return cp.FColor{} }
func (d *physicsDebugDrawer) Data() interface{} { return nil }

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, color cp.FColor) {
	x1, y1 := d.view.toScreen(a.X, a.Y)
	x2, y2 := d.view.toScreen(b.X, b.Y)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, toNRGBA(color), true)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DebugSnapshot formats the player's controller state as text.
func DebugSnapshot(w *ecs.World, player ecs.Entity) string {
	ctrl, ok := ecs.Get(w, player, component.ControllerComponent)
	if !ok || ctrl.Movement == nil {
		return "no controller"
	}
	m := ctrl.Movement
	pos, yaw, step, flags := "-", 0.0, 0.0, "-"
	if body, ok := ecs.Get(w, player, component.PhysicsBodyComponent); ok && body.Body != nil {
		p := body.Body.Position()
		pos = fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Z)
		yaw = body.Body.Yaw()
		step = body.Body.StepOffset()
		flags = body.Body.Flags().String()
	}
	in := m.MoveInput()
	return fmt.Sprintf("Position: %s\nYaw: %.2f\nPitch: %.2f\nGrounded: %v\nVerticalVelocity: %.3f\nStepOffset: %.2f\nCollisions: %s\nMoveInput: (%.2f, %.2f)\nPointer: %s",
		pos, yaw, m.Pitch(), m.Grounded(), m.VerticalVelocity(), step, flags, in.X, in.Y, ctrl.Pointer.Mode())
}
