package system

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// HUD draws the crosshair, a pitch gauge and a status line.
type HUD struct {
	face ebtext.Face
	// Status is shown under the gauges, e.g. the last ground event.
	Status string
}

func NewHUD() *HUD {
	return &HUD{face: ebtext.NewGoXFace(basicfont.Face7x13)}
}

func (h *HUD) Draw(w *ecs.World, screen *ebiten.Image) {
	if h == nil || w == nil || screen == nil {
		return
	}
	player, ok := w.First(component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	ctrl, ok := ecs.Get(w, player, component.ControllerComponent)
	if !ok || ctrl.Movement == nil {
		return
	}

	b := screen.Bounds()
	cx, cy := float32(b.Dx())/2, float32(b.Dy())/2
	if ctrl.Pointer != nil && ctrl.Pointer.Locked() {
		vector.StrokeLine(screen, cx-6, cy, cx+6, cy, 1, colornames.White, false)
		vector.StrokeLine(screen, cx, cy-6, cx, cy+6, 1, colornames.White, false)
	}

	const gauge = 64
	gx, gy := float32(10), float32(b.Dy()-gauge-10)
	pitchGauge(screen, gx, gy, gauge, ctrl.Movement.Pitch())

	lines := []string{fmt.Sprintf("pitch %+.1f", ctrl.Movement.Pitch())}
	if ctrl.Movement.Grounded() {
		lines = append(lines, "grounded")
	} else {
		lines = append(lines, fmt.Sprintf("airborne vy %+.2f", ctrl.Movement.VerticalVelocity()))
	}
	if h.Status != "" {
		lines = append(lines, h.Status)
	}
	for i, line := range lines {
		h.drawText(screen, line, float64(gx)+gauge+10, float64(gy)+float64(i)*16, colornames.White)
	}
}

func (h *HUD) drawText(screen *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	ebtext.Draw(screen, s, h.face, op)
}
