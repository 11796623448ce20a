package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
)

// CursorLockSystem locks the pointer on left click and releases it on Escape.
// Clicks for which UIHit reports true are left to the UI.
type CursorLockSystem struct {
	UIHit func(x, y int) bool
}

func NewCursorLockSystem() *CursorLockSystem {
	return &CursorLockSystem{}
}

func (c *CursorLockSystem) Update(w *ecs.World, _ float64) {
	if w == nil {
		return
	}

	lock := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	if lock && c.UIHit != nil && c.UIHit(ebiten.CursorPosition()) {
		lock = false
	}
	unlock := inpututil.IsKeyJustPressed(ebiten.KeyEscape)
	if !lock && !unlock {
		return
	}

	ecs.ForEach(w, component.ControllerComponent, func(_ ecs.Entity, ctrl component.Controller) {
		if ctrl.Pointer == nil {
			return
		}
		switch {
		case unlock && ctrl.Pointer.Locked():
			ctrl.Pointer.Unlock()
		case lock && !ctrl.Pointer.Locked():
			ctrl.Pointer.Lock()
		}
	})
}
