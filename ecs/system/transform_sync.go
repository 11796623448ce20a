package system

import (
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
)

// TransformSyncSystem copies body placement into transforms.
type TransformSyncSystem struct{}

func NewTransformSyncSystem() *TransformSyncSystem {
	return &TransformSyncSystem{}
}

func (s *TransformSyncSystem) Update(w *ecs.World, _ float64) {
	if w == nil {
		return
	}

	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		body, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		if body.Body == nil {
			continue
		}
		t, _ := ecs.Get(w, e, component.TransformComponent)
		t.Position = body.Body.Position()
		t.Yaw = body.Body.Yaw()
		if err := ecs.Add(w, e, component.TransformComponent, t); err != nil {
			panic("transform sync: update transform: " + err.Error())
		}
	}
}
