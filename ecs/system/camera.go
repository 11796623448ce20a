package system

import (
	"math"

	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
)

type CameraSystem struct {
	camEntity    ecs.Entity
	targetEntity ecs.Entity
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

// Update places the camera at its target's eye. Horizontal placement and yaw
// follow exactly; height eases by Smoothness so step-ups don't snap the view.
func (cs *CameraSystem) Update(w *ecs.World, dt float64) {
	if !cs.camEntity.Valid() || !w.IsAlive(cs.camEntity) {
		camEntity, ok := w.First(component.CameraComponent.Kind())
		if !ok {
			return
		}
		cs.camEntity = camEntity
		cs.targetEntity = 0
	}

	cam, ok := ecs.Get(w, cs.camEntity, component.CameraComponent)
	if !ok || cam == nil {
		return
	}

	if !cs.targetEntity.Valid() || !w.IsAlive(cs.targetEntity) {
		cs.targetEntity = findEntityByNameOrTag(w, cam.Target)
		if !cs.targetEntity.Valid() {
			return
		}
	}

	target, ok := ecs.Get(w, cs.targetEntity, component.TransformComponent)
	if !ok {
		return
	}
	camTransform, _ := ecs.Get(w, cs.camEntity, component.TransformComponent)

	eye := target.Position.Add(common.Up.Scale(cam.EyeHeight))
	y := eye.Y
	if cam.Smoothness > 0 && dt > 0 {
		t := 1 - math.Pow(common.Clamp(cam.Smoothness, 0, 1), dt*60)
		y = common.Lerp(camTransform.Position.Y, eye.Y, t)
	}

	camTransform.Position = common.Vec3{X: eye.X, Y: y, Z: eye.Z}
	camTransform.Yaw = target.Yaw
	if err := ecs.Add(w, cs.camEntity, component.TransformComponent, camTransform); err != nil {
		panic("camera system: update transform: " + err.Error())
	}
}

func findEntityByNameOrTag(w *ecs.World, name string) ecs.Entity {
	if name == "player" || name == "" {
		if e, ok := w.First(component.PlayerTagComponent.Kind()); ok {
			return e
		}
	}
	return 0
}
