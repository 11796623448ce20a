package entity

import (
	"fmt"

	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"github.com/milk9111/fpsmove/levels"
	"github.com/milk9111/fpsmove/prefabs"
)

const (
	PlayerPrefab = "player.yaml"
	CameraPrefab = "camera.yaml"
)

// Scene is the set of entities a level load produces.
type Scene struct {
	Level  ecs.Entity
	Player ecs.Entity
	Camera ecs.Entity
}

// BuildLevel creates the level entity and its physics world.
func BuildLevel(w *ecs.World, lvl *levels.Level) (ecs.Entity, error) {
	pw, err := lvl.Build()
	if err != nil {
		return 0, fmt.Errorf("build level %q: %w", lvl.Name, err)
	}
	e := w.CreateEntity()
	err = ecs.Add(w, e, component.LevelTagComponent, component.LevelTag{})
	if err == nil {
		err = ecs.Add(w, e, component.LevelComponent, component.Level{Def: lvl, World: pw})
	}
	if err != nil {
		w.DestroyEntity(e)
		return 0, err
	}
	return e, nil
}

// BuildScene loads a level and spawns the camera and player into it. The
// camera is built first so the player's controller can resolve it. env's
// Physics is replaced by the level's world. On error every entity it
// created is destroyed.
func BuildScene(w *ecs.World, levelName string, env *Env) (scene *Scene, err error) {
	lvl, err := levels.LoadLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("load level %q: %w", levelName, err)
	}

	var created []ecs.Entity
	defer func() {
		if err != nil {
			for _, e := range created {
				discardEntity(w, e)
			}
		}
	}()

	levelEnt, err := BuildLevel(w, lvl)
	if err != nil {
		return nil, err
	}
	created = append(created, levelEnt)
	level, _ := ecs.Get(w, levelEnt, component.LevelComponent)

	if env == nil {
		env = &Env{}
	}
	env.Physics = level.World

	cam, err := BuildEntity(w, CameraPrefab, env)
	if err != nil {
		return nil, err
	}
	created = append(created, cam)
	player, err := BuildEntity(w, PlayerPrefab, env)
	if err != nil {
		return nil, err
	}
	created = append(created, player)
	if err := SetEntityTransform(w, player, lvl.SpawnPoint(), lvl.Yaw); err != nil {
		return nil, err
	}

	return &Scene{Level: levelEnt, Player: player, Camera: cam}, nil
}

// LoadScene builds a scene into a new world, leaving any running world
// untouched. The caller swaps it in on success.
func LoadScene(levelName string, env *Env) (*ecs.World, *Scene, error) {
	w := ecs.NewWorld()
	scene, err := BuildScene(w, levelName, env)
	if err != nil {
		return nil, nil, err
	}
	return w, scene, nil
}

// TeardownScene shuts the player's controller down and destroys every entity.
func TeardownScene(w *ecs.World) {
	ecs.ForEach(w, component.ControllerComponent, func(_ ecs.Entity, c component.Controller) {
		if c.Movement != nil {
			c.Movement.Shutdown()
		}
	})
	for _, e := range w.Entities() {
		w.DestroyEntity(e)
	}
}

// ReloadControllerConfig re-reads the controller and collision_layer specs
// from prefabPath and applies them to every controller. The previous config
// stays in place on error.
func ReloadControllerConfig(w *ecs.World, prefabPath string) error {
	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return err
	}
	ctrlSpec, err := prefabs.DecodeComponentSpec[prefabs.ControllerComponentSpec](spec.Components["controller"])
	if err != nil {
		return fmt.Errorf("decode controller spec: %w", err)
	}
	layerSpec, err := prefabs.DecodeComponentSpec[prefabs.CollisionLayerComponentSpec](spec.Components["collision_layer"])
	if err != nil {
		return fmt.Errorf("decode collision_layer spec: %w", err)
	}
	layers, err := collisionLayerFromSpec(layerSpec)
	if err != nil {
		return err
	}

	cfg := ControllerConfig(ctrlSpec, layers.Ground)
	ecs.ForEach(w, component.ControllerComponent, func(_ ecs.Entity, c component.Controller) {
		if c.Movement != nil {
			c.Movement.ApplyConfig(cfg)
		}
	})
	return nil
}
