package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"golang.org/x/image/colornames"
)

const (
	defaultPixelsPerMeter = 16.0
	viewRayLength         = 6.0
)

// view maps the XZ ground plane onto the screen, centred on the camera, with
// +Z pointing up the screen.
type view struct {
	centerX, centerY float64
	camX, camZ       float64
	scale            float64
}

func (v view) toScreen(x, z float64) (float32, float32) {
	return float32(v.centerX + (x-v.camX)*v.scale), float32(v.centerY - (z-v.camZ)*v.scale)
}

func cameraView(w *ecs.World, screen *ebiten.Image, scale float64) view {
	b := screen.Bounds()
	v := view{centerX: float64(b.Dx()) / 2, centerY: float64(b.Dy()) / 2, scale: scale}
	if camEntity, ok := w.First(component.CameraComponent.Kind()); ok {
		if t, ok := ecs.Get(w, camEntity, component.TransformComponent); ok {
			v.camX, v.camZ = t.Position.X, t.Position.Z
		}
	}
	return v
}

// RenderSystem draws the level and player from above.
type RenderSystem struct {
	PixelsPerMeter float64
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{PixelsPerMeter: defaultPixelsPerMeter}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	screen.Fill(colornames.Black)
	v := cameraView(w, screen, r.PixelsPerMeter)

	ecs.ForEach(w, component.LevelComponent, func(_ ecs.Entity, lvl component.Level) {
		if lvl.Def == nil {
			return
		}
		// Boxes are listed bottom-up, so later ones overdraw earlier ones.
		for _, b := range lvl.Def.Boxes {
			x0, y0 := v.toScreen(b.Min.X, b.Max.Z)
			x1, y1 := v.toScreen(b.Max.X, b.Min.Z)
			fill := color.Color(colornames.Dimgray)
			if b.Color != nil && b.Color.Color != nil {
				fill = b.Color.Color
			}
			vector.FillRect(screen, x0, y0, x1-x0, y1-y0, fill, false)
			vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, colornames.Darkslategray, false)
		}
	})

	for _, e := range w.Query(component.PlayerTagComponent.Kind(), component.PhysicsBodyComponent.Kind()) {
		body, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		if body.Body == nil {
			continue
		}
		p := body.Body.Position()
		px, py := v.toScreen(p.X, p.Z)
		vector.FillCircle(screen, px, py, float32(body.Body.Radius()*v.scale), colornames.Steelblue, true)

		fov := 75.0
		if camEntity, ok := w.First(component.CameraComponent.Kind()); ok {
			if cam, ok := ecs.Get(w, camEntity, component.CameraComponent); ok && cam != nil {
				fov = cam.FOV
			}
		}
		for _, off := range []float64{-fov / 2, 0, fov / 2} {
			f, _ := common.YawBasis(body.Body.Yaw() + off)
			tip := p.Add(f.Scale(viewRayLength))
			tx, ty := v.toScreen(tip.X, tip.Z)
			clr := colornames.Lightgrey
			if off == 0 {
				clr = colornames.Gold
			}
			vector.StrokeLine(screen, px, py, tx, ty, 1, clr, true)
		}
	}
}

// pitchGauge draws the camera pitch as a ray from the left edge of a small
// side-view panel.
func pitchGauge(screen *ebiten.Image, x, y, size float32, pitch float64) {
	vector.StrokeRect(screen, x, y, size, size, 1, colornames.Gray, false)
	cx, cy := x+4, y+size/2
	rad := pitch * math.Pi / 180
	// Positive pitch looks down.
	ex := cx + float32(math.Cos(rad))*(size-8)
	ey := cy + float32(math.Sin(rad))*(size/2-4)
	vector.StrokeLine(screen, x, cy, x+size, cy, 1, colornames.Dimgray, false)
	vector.StrokeLine(screen, cx, cy, ex, ey, 2, colornames.Gold, true)
}
