package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"github.com/milk9111/fpsmove/input"
	"github.com/milk9111/fpsmove/movement"
)

const (
	stickDeadzone = 0.2
	// stickLookScale converts right stick deflection to mouse-equivalent
	// pixels per second of look.
	stickLookScale = 600.0
)

// InputSystem polls keyboard, mouse and the first gamepad and dispatches the
// results to each controller's action map.
type InputSystem struct {
	cursorX    int
	cursorY    int
	cursorSeen bool

	// Per controller, so a rebuilt scene starts from a clean slate.
	sent map[*movement.Controller]sentInput
}

type sentInput struct {
	move   common.Vec2
	locked bool
}

func NewInputSystem() *InputSystem {
	return &InputSystem{sent: map[*movement.Controller]sentInput{}}
}

func (i *InputSystem) Update(w *ecs.World, dt float64) {
	if w == nil {
		return
	}

	moveX, moveY := 0.0, 0.0
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		moveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		moveX += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		moveY += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		moveY -= 1
	}
	jumpPressed := inpututil.IsKeyJustPressed(ebiten.KeySpace)
	firePressed := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)

	cx, cy := ebiten.CursorPosition()
	lookX, lookY := 0.0, 0.0
	if i.cursorSeen {
		lookX = float64(cx - i.cursorX)
		// Screen Y grows downward; look Y is up-positive.
		lookY = float64(i.cursorY - cy)
	}
	i.cursorX, i.cursorY, i.cursorSeen = cx, cy, true

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Hypot(lx, ly) > stickDeadzone {
			moveX, moveY = lx, -ly
		}

		jumpPressed = jumpPressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
		firePressed = firePressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightLeft)

		rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		ry := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		if math.Hypot(rx, ry) > stickDeadzone {
			lookX += rx * stickLookScale * dt
			lookY -= ry * stickLookScale * dt
		}
	}

	i.dispatch(w, frameInput{
		move: common.Vec2{X: moveX, Y: moveY},
		look: common.Vec2{X: lookX, Y: lookY},
		jump: jumpPressed,
		fire: firePressed,
	})
}

type frameInput struct {
	move common.Vec2
	look common.Vec2
	jump bool
	fire bool
}

// dispatch sends one frame of input to every controller. Movement is sent
// on a controller's first frame and then only when it changes; look only
// when non-zero and the pointer was already locked at the start of the
// frame, so the click that locks it neither fires nor jerks the view.
func (i *InputSystem) dispatch(w *ecs.World, in frameInput) {
	if i.sent == nil {
		i.sent = map[*movement.Controller]sentInput{}
	}
	live := map[*movement.Controller]bool{}

	ecs.ForEach(w, component.ControllerComponent, func(e ecs.Entity, c component.Controller) {
		if c.Actions == nil || c.Movement == nil {
			return
		}
		live[c.Movement] = true
		locked := c.Pointer != nil && c.Pointer.Locked()
		prev, seen := i.sent[c.Movement]
		wasLocked := seen && prev.locked

		if !seen || in.move != prev.move {
			c.Actions.PerformVector(input.ActionMovement, in.move)
		}
		i.sent[c.Movement] = sentInput{move: in.move, locked: locked}

		if locked && wasLocked && (in.look.X != 0 || in.look.Y != 0) {
			c.Actions.PerformVector(input.ActionLook, in.look)
		}
		if in.jump {
			c.Actions.PerformTrigger(input.ActionJump)
		}
		if in.fire && locked && wasLocked {
			c.Actions.PerformTrigger(input.ActionFire)
		}

		if state, ok := ecs.Get(w, e, component.InputComponent); ok {
			state.Move = in.move
			state.Look = in.look
			state.Jump = in.jump
			state.Fire = in.fire
			state.Frame++
			if err := ecs.Add(w, e, component.InputComponent, state); err != nil {
				panic("input system: update input: " + err.Error())
			}
		}
	})

	for ctrl := range i.sent {
		if !live[ctrl] {
			delete(i.sent, ctrl)
		}
	}
}
