package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/component"
	"github.com/milk9111/fpsmove/input"
	"github.com/milk9111/fpsmove/prefabs"
)

const scenarioDispatchScript = `
if __phase == "update" {
	update(__engine, __state, __tick)
}
`

// ScenarioSystem drives the player's action map from a tengo script instead
// of devices. The script defines update(engine, state, tick) and optionally
// a global ticks limiting the run length.
type ScenarioSystem struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
	tick     int
	limit    int
	stopped  bool
	err      error
}

// NewScenarioSystem loads and compiles a script from prefabs/scripts.
func NewScenarioSystem(path string) (*ScenarioSystem, error) {
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: load %s: %w", path, err)
	}
	return NewScenarioSystemFromSource(path, src)
}

func NewScenarioSystemFromSource(name string, src []byte) (*ScenarioSystem, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + scenarioDispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__tick", 0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("scenario: compile %s: %w", name, err)
	}

	s := &ScenarioSystem{
		path:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}

	// Evaluate globals once to read the optional tick limit.
	if err := s.run("noop", &tengo.ImmutableMap{Value: map[string]tengo.Object{}}); err != nil {
		return nil, fmt.Errorf("scenario: init %s: %w", name, err)
	}
	if compiled.IsDefined("ticks") {
		s.limit = compiled.Get("ticks").Int()
	}
	return s, nil
}

// Ticks returns the script's tick limit, 0 when it runs until stopped.
func (s *ScenarioSystem) Ticks() int { return s.limit }

// Tick returns how many updates the script has run.
func (s *ScenarioSystem) Tick() int { return s.tick }

func (s *ScenarioSystem) Finished() bool {
	return s.stopped || (s.limit > 0 && s.tick >= s.limit)
}

// Err returns the script error that stopped the scenario, if any.
func (s *ScenarioSystem) Err() error { return s.err }

func (s *ScenarioSystem) Update(w *ecs.World, _ float64) {
	if s == nil || w == nil || s.Finished() {
		return
	}

	player, ok := w.First(component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	ctrl, ok := ecs.Get(w, player, component.ControllerComponent)
	if !ok || ctrl.Movement == nil || ctrl.Actions == nil {
		return
	}

	engine := s.buildEngine(w, player, ctrl)
	if err := s.run("update", engine); err != nil {
		s.err = fmt.Errorf("scenario %s tick %d: %w", s.path, s.tick, err)
		s.stopped = true
		log.Printf("%v", s.err)
		return
	}
	s.tick++
}

func (s *ScenarioSystem) run(phase string, engine *tengo.ImmutableMap) error {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	if err := s.compiled.Set("__tick", s.tick); err != nil {
		return err
	}
	return s.compiled.Run()
}

func (s *ScenarioSystem) buildEngine(w *ecs.World, player ecs.Entity, ctrl component.Controller) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	fn := func(name string, f func(args ...tengo.Object) (tengo.Object, error)) {
		values[name] = &tengo.UserFunction{Name: name, Value: f}
	}

	fn("move", func(args ...tengo.Object) (tengo.Object, error) {
		v := vec2Arg(args)
		ctrl.Actions.PerformVector(input.ActionMovement, v)
		recordInput(w, player, func(in *component.Input) { in.Move = v })
		return tengo.TrueValue, nil
	})
	fn("look", func(args ...tengo.Object) (tengo.Object, error) {
		v := vec2Arg(args)
		ctrl.Actions.PerformVector(input.ActionLook, v)
		recordInput(w, player, func(in *component.Input) { in.Look = v })
		return tengo.TrueValue, nil
	})
	fn("jump", func(args ...tengo.Object) (tengo.Object, error) {
		ctrl.Actions.PerformTrigger(input.ActionJump)
		recordInput(w, player, func(in *component.Input) { in.Jump = true })
		return tengo.TrueValue, nil
	})
	fn("fire", func(args ...tengo.Object) (tengo.Object, error) {
		ctrl.Actions.PerformTrigger(input.ActionFire)
		recordInput(w, player, func(in *component.Input) { in.Fire = true })
		return tengo.TrueValue, nil
	})
	fn("lock", func(args ...tengo.Object) (tengo.Object, error) {
		if ctrl.Pointer == nil {
			return tengo.FalseValue, nil
		}
		ctrl.Pointer.Lock()
		return tengo.TrueValue, nil
	})
	fn("unlock", func(args ...tengo.Object) (tengo.Object, error) {
		if ctrl.Pointer == nil {
			return tengo.FalseValue, nil
		}
		ctrl.Pointer.Unlock()
		return tengo.TrueValue, nil
	})
	fn("stop", func(args ...tengo.Object) (tengo.Object, error) {
		s.stopped = true
		return tengo.TrueValue, nil
	})
	fn("log", func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		log.Printf("scenario %s tick %d: %s", s.path, s.tick, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	})

	fn("grounded", func(args ...tengo.Object) (tengo.Object, error) {
		if ctrl.Movement.Grounded() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	})
	fn("velocity", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: ctrl.Movement.VerticalVelocity()}, nil
	})
	fn("pitch", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: ctrl.Movement.Pitch()}, nil
	})
	fn("position", func(args ...tengo.Object) (tengo.Object, error) {
		var p common.Vec3
		if body, ok := ecs.Get(w, player, component.PhysicsBodyComponent); ok && body.Body != nil {
			p = body.Body.Position()
		}
		return &tengo.Array{Value: []tengo.Object{
			&tengo.Float{Value: p.X}, &tengo.Float{Value: p.Y}, &tengo.Float{Value: p.Z},
		}}, nil
	})
	fn("yaw", func(args ...tengo.Object) (tengo.Object, error) {
		yaw := 0.0
		if body, ok := ecs.Get(w, player, component.PhysicsBodyComponent); ok && body.Body != nil {
			yaw = body.Body.Yaw()
		}
		return &tengo.Float{Value: yaw}, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

func recordInput(w *ecs.World, e ecs.Entity, fn func(*component.Input)) {
	in, ok := ecs.Get(w, e, component.InputComponent)
	if !ok {
		return
	}
	fn(&in)
	_ = ecs.Add(w, e, component.InputComponent, in)
}

func vec2Arg(args []tengo.Object) common.Vec2 {
	var v common.Vec2
	if len(args) > 0 {
		v.X, _ = tengo.ToFloat64(args[0])
	}
	if len(args) > 1 {
		v.Y, _ = tengo.ToFloat64(args[1])
	}
	return v
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
