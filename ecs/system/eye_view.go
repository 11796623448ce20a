package system

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"github.com/milk9111/fpsmove/levels"
	"golang.org/x/image/colornames"
)

const (
	eyeNear = 0.05
	eyeFar  = 200.0
)

// eyeCamera projects world points for a camera at eye looking along yaw and
// pitch with a vertical field of view in degrees.
type eyeCamera struct {
	view mgl64.Mat4
	proj mgl64.Mat4
}

func newEyeCamera(eye common.Vec3, yaw, pitch, fov, aspect float64) eyeCamera {
	rot := common.LookRotation(yaw, pitch)
	dir := rot.Rotate(mgl64.Vec3{0, 0, 1})
	up := rot.Rotate(mgl64.Vec3{0, 1, 0})
	e := eye.MGL()
	// The world has +X to the right of +Z; LookAtV assumes the opposite
	// handedness, so view-space X is mirrored back.
	view := mgl64.Scale3D(-1, 1, 1).Mul4(mgl64.LookAtV(e, e.Add(dir), up))
	return eyeCamera{
		view: view,
		proj: mgl64.Perspective(mgl64.DegToRad(fov), aspect, eyeNear, eyeFar),
	}
}

// segment returns the normalized device XY of a world segment, clipped to
// the near plane. ok is false when the segment is wholly behind it.
func (c eyeCamera) segment(a, b common.Vec3) (mgl64.Vec2, mgl64.Vec2, bool) {
	va := c.view.Mul4x1(a.MGL().Vec4(1)).Vec3()
	vb := c.view.Mul4x1(b.MGL().Vec4(1)).Vec3()
	// View space looks down -Z.
	za, zb := -va.Z(), -vb.Z()
	if za < eyeNear && zb < eyeNear {
		return mgl64.Vec2{}, mgl64.Vec2{}, false
	}
	if za < eyeNear {
		va = va.Add(vb.Sub(va).Mul((eyeNear - za) / (zb - za)))
	} else if zb < eyeNear {
		vb = vb.Add(va.Sub(vb).Mul((eyeNear - zb) / (za - zb)))
	}
	return c.ndc(va), c.ndc(vb), true
}

func (c eyeCamera) ndc(v mgl64.Vec3) mgl64.Vec2 {
	clip := c.proj.Mul4x1(v.Vec4(1))
	return mgl64.Vec2{clip.X() / clip.W(), clip.Y() / clip.W()}
}

// EyeView draws the level as wireframe boxes from the camera's point of
// view into a viewport.
type EyeView struct{}

func NewEyeView() *EyeView {
	return &EyeView{}
}

func (ev *EyeView) Draw(w *ecs.World, screen *ebiten.Image, rect image.Rectangle) {
	if ev == nil || w == nil || screen == nil || rect.Empty() {
		return
	}
	camEntity, ok := w.First(component.CameraComponent.Kind())
	if !ok {
		return
	}
	cam, ok := ecs.Get(w, camEntity, component.CameraComponent)
	if !ok || cam == nil {
		return
	}
	t, ok := ecs.Get(w, camEntity, component.TransformComponent)
	if !ok {
		return
	}

	sub, ok := screen.SubImage(rect).(*ebiten.Image)
	if !ok {
		return
	}
	sub.Fill(color.NRGBA{R: 0x10, G: 0x14, B: 0x1c, A: 0xff})

	aspect := float64(rect.Dx()) / float64(rect.Dy())
	c := newEyeCamera(t.Position, t.Yaw, cam.Pitch, cam.FOV, aspect)
	toPixels := func(p mgl64.Vec2) (float32, float32) {
		x := float64(rect.Min.X) + (p.X()+1)/2*float64(rect.Dx())
		y := float64(rect.Min.Y) + (1-p.Y())/2*float64(rect.Dy())
		return float32(x), float32(y)
	}

	ecs.ForEach(w, component.LevelComponent, func(_ ecs.Entity, lvl component.Level) {
		if lvl.Def == nil {
			return
		}
		for _, b := range lvl.Def.Boxes {
			clr := boxEdgeColor(b)
			for _, edge := range boxEdges(b) {
				pa, pb, ok := c.segment(edge[0], edge[1])
				if !ok {
					continue
				}
				x0, y0 := toPixels(pa)
				x1, y1 := toPixels(pb)
				vector.StrokeLine(sub, x0, y0, x1, y1, 1, clr, true)
			}
		}
	})

	vector.StrokeRect(screen, float32(rect.Min.X), float32(rect.Min.Y), float32(rect.Dx()), float32(rect.Dy()), 1, colornames.Gray, false)
}

func boxEdgeColor(b levels.Box) color.Color {
	if b.Color != nil && b.Color.Color != nil {
		return b.Color.Color
	}
	if b.Layer == "trigger" {
		return colornames.Skyblue
	}
	return colornames.Lightgray
}

// boxEdges returns the twelve edges of a level box.
func boxEdges(b levels.Box) [12][2]common.Vec3 {
	lo := common.Vec3{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}
	hi := common.Vec3{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z}
	corner := func(i int) common.Vec3 {
		p := lo
		if i&1 != 0 {
			p.X = hi.X
		}
		if i&2 != 0 {
			p.Y = hi.Y
		}
		if i&4 != 0 {
			p.Z = hi.Z
		}
		return p
	}
	var edges [12][2]common.Vec3
	n := 0
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				edges[n] = [2]common.Vec3{corner(i), corner(i | bit)}
				n++
			}
		}
	}
	return edges
}
