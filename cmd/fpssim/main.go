// Command fpssim runs a scenario script against a level without a window and
// prints a trace of the player's movement state.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"github.com/milk9111/fpsmove/ecs/entity"
	"github.com/milk9111/fpsmove/ecs/system"
)

const defaultTicks = 600

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fpssim", flag.ContinueOnError)
	levelName := fs.String("level", "yard", "level name in levels/")
	script := fs.String("script", "walk_jump.tengo", "scenario script in prefabs/scripts")
	ticks := fs.Int("ticks", 0, "ticks to run (0 uses the script's limit)")
	dt := fs.Float64("dt", 1.0/60, "seconds per tick")
	every := fs.Int("every", 10, "print a trace line every n ticks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dt <= 0 {
		return fmt.Errorf("dt must be positive, got %v", *dt)
	}
	if *every < 1 {
		*every = 1
	}

	w := ecs.NewWorld()
	scene, err := entity.BuildScene(w, *levelName, &entity.Env{})
	if err != nil {
		return err
	}
	defer entity.TeardownScene(w)

	scenario, err := system.NewScenarioSystem(*script)
	if err != nil {
		return err
	}
	limit := *ticks
	if limit <= 0 {
		limit = scenario.Ticks()
	}
	if limit <= 0 {
		limit = defaultTicks
	}

	sched := ecs.NewScheduler(
		scenario,
		system.NewMovementSystem(),
		system.NewTransformSyncSystem(),
		system.NewCameraSystem(),
	)

	fmt.Fprintf(out, "# level=%s script=%s ticks=%d dt=%.5f\n", *levelName, *script, limit, *dt)
	fmt.Fprintln(out, "tick\tx\ty\tz\tyaw\tpitch\tvy\tgrounded")
	for tick := 0; tick < limit; tick++ {
		sched.Update(w, *dt)
		for _, evt := range w.Events().Drain() {
			if ge, ok := evt.Data.(ecs.GroundEvent); ok {
				fmt.Fprintf(out, "# tick %d: %s vy=%.3f\n", tick, ge.Kind, ge.VerticalVelocity)
			}
		}
		if tick%*every == 0 || tick == limit-1 {
			traceLine(out, w, scene.Player, tick)
		}
		if scenario.Err() != nil {
			return scenario.Err()
		}
	}
	return nil
}

func traceLine(out io.Writer, w *ecs.World, player ecs.Entity, tick int) {
	ctrl, ok := ecs.Get(w, player, component.ControllerComponent)
	if !ok || ctrl.Movement == nil {
		return
	}
	t, _ := ecs.Get(w, player, component.TransformComponent)
	m := ctrl.Movement
	fmt.Fprintf(out, "%d\t%.3f\t%.3f\t%.3f\t%.2f\t%.2f\t%.3f\t%v\n",
		tick, t.Position.X, t.Position.Y, t.Position.Z, t.Yaw, m.Pitch(), m.VerticalVelocity(), m.Grounded())
}
