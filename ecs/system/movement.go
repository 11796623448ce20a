package system

import (
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
)

// MovementSystem ticks every controller once per update and reports ground
// contact changes on the world's event queue.
type MovementSystem struct {
	grounded map[ecs.Entity]bool
}

func NewMovementSystem() *MovementSystem {
	return &MovementSystem{grounded: map[ecs.Entity]bool{}}
}

func (m *MovementSystem) Update(w *ecs.World, dt float64) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.ControllerComponent, func(e ecs.Entity, c component.Controller) {
		if c.Movement == nil {
			return
		}
		c.Movement.Tick(dt)

		now := c.Movement.Grounded()
		was, seen := m.grounded[e]
		m.grounded[e] = now
		if !seen || was == now {
			return
		}
		kind := ecs.GroundEventLeft
		if now {
			kind = ecs.GroundEventLanded
		}
		w.Events().Push(ecs.Event{Type: ecs.EventGround, Data: ecs.GroundEvent{
			Entity:           e,
			Kind:             kind,
			VerticalVelocity: c.Movement.VerticalVelocity(),
		}})
	})

	for e := range m.grounded {
		if !w.IsAlive(e) {
			delete(m.grounded, e)
		}
	}
}
