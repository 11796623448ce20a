package main

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/ecs"
	"github.com/milk9111/fpsmove/ecs/entity"
	"github.com/milk9111/fpsmove/ecs/system"
	"github.com/milk9111/fpsmove/input"
	"github.com/milk9111/fpsmove/prefabs"
	"golang.design/x/clipboard"
)

const (
	fixedDt = 1.0 / 60
	// maxFrameTime bounds the accumulator after a stall so the simulation
	// doesn't spiral.
	maxFrameTime = 0.25
)

type Options struct {
	Level  string
	Debug  bool
	Fixed  bool
	Watch  bool
	Script string
	Scale  float64
	Eye    bool
}

// eyeMode selects how the first-person view is shown.
type eyeMode int

const (
	eyeOff eyeMode = iota
	eyeInset
	eyeFull
)

type Game struct {
	opts   Options
	frames int

	world *ecs.World
	scene *entity.Scene

	pointer *input.Pointer

	// frame systems run once per Update; sim systems once per tick.
	frame *ecs.Scheduler
	sim   *ecs.Scheduler

	scenario *system.ScenarioSystem
	render   *system.RenderSystem
	hud      *system.HUD
	eye      *system.EyeView
	eyeMode  eyeMode

	pauseUI    *ebitenui.UI
	pausePanel func() image.Rectangle

	accumulator float64
	lastUpdate  time.Time

	watcher   *prefabs.Watcher
	clipboard bool
}

func NewGame(opts Options) (*Game, error) {
	g := &Game{
		opts:    opts,
		pointer: &input.Pointer{},
		render:  system.NewRenderSystem(),
		hud:     system.NewHUD(),
		eye:     system.NewEyeView(),
	}
	if opts.Eye {
		g.eyeMode = eyeInset
	}
	if opts.Scale > 0 {
		g.render.PixelsPerMeter = opts.Scale
	}
	g.pointer.OnChange = func(mode input.CursorMode) {
		if mode == input.CursorLocked {
			ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		} else {
			ebiten.SetCursorMode(ebiten.CursorModeVisible)
		}
	}

	if err := g.loadScene(); err != nil {
		return nil, err
	}

	g.pauseUI, g.pausePanel = NewPauseUI(g)

	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable: %v", err)
	} else {
		g.clipboard = true
	}

	if opts.Watch {
		g.startWatcher()
	}
	return g, nil
}

// loadScene builds the level into a new world with its own action map and
// schedulers, then swaps it in and tears the previous scene down. On error
// the running scene is left as it was.
func (g *Game) loadScene() error {
	env := &entity.Env{Pointer: g.pointer, Actions: input.NewActionMap()}
	w, scene, err := entity.LoadScene(g.opts.Level, env)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	frame, sim, scenario, err := g.newSchedulers()
	if err != nil {
		entity.TeardownScene(w)
		return err
	}

	if g.world != nil {
		entity.TeardownScene(g.world)
	}
	g.world, g.scene = w, scene
	g.frame, g.sim, g.scenario = frame, sim, scenario
	g.accumulator = 0
	return nil
}

// newSchedulers returns the per-frame and per-tick schedulers. With a script
// the scenario replaces device input.
func (g *Game) newSchedulers() (frame, sim *ecs.Scheduler, scenario *system.ScenarioSystem, err error) {
	cursor := system.NewCursorLockSystem()
	cursor.UIHit = func(x, y int) bool {
		return !g.pointer.Locked() && g.pausePanel != nil && image.Pt(x, y).In(g.pausePanel())
	}

	if g.opts.Script != "" {
		scenario, err = system.NewScenarioSystem(g.opts.Script)
		if err != nil {
			return nil, nil, nil, err
		}
		frame = ecs.NewScheduler(cursor)
		sim = ecs.NewScheduler(scenario, system.NewMovementSystem(), system.NewTransformSyncSystem(), system.NewCameraSystem())
		return frame, sim, scenario, nil
	}

	frame = ecs.NewScheduler(system.NewInputSystem(), cursor)
	sim = ecs.NewScheduler(system.NewMovementSystem(), system.NewTransformSyncSystem(), system.NewCameraSystem())
	return frame, sim, nil, nil
}

// Update polls input once, then advances the simulation either by whole
// fixed steps or by one variable step of the measured frame time.
func (g *Game) Update() error {
	g.frames++

	now := time.Now()
	elapsed := fixedDt
	if !g.lastUpdate.IsZero() {
		elapsed = now.Sub(g.lastUpdate).Seconds()
	}
	g.lastUpdate = now
	if elapsed > maxFrameTime {
		elapsed = maxFrameTime
	}

	g.drainWatcher()
	g.frame.Update(g.world, elapsed)

	if g.opts.Fixed {
		g.accumulator += elapsed
		for g.accumulator >= fixedDt {
			g.sim.Update(g.world, fixedDt)
			g.accumulator -= fixedDt
		}
	} else {
		g.sim.Update(g.world, elapsed)
	}

	for _, evt := range g.world.Events().Drain() {
		if ge, ok := evt.Data.(ecs.GroundEvent); ok {
			g.hud.Status = fmt.Sprintf("%s (vy %+.2f)", ge.Kind, ge.VerticalVelocity)
			if g.opts.Debug {
				log.Printf("ground: entity=%s %s vy=%.3f", ge.Entity, ge.Kind, ge.VerticalVelocity)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.copySnapshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.opts.Debug = !g.opts.Debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.eyeMode = (g.eyeMode + 1) % 3
	}

	if !g.pointer.Locked() {
		g.pauseUI.Update()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.eyeMode == eyeFull {
		g.eye.Draw(g.world, screen, screen.Bounds())
		g.hud.Draw(g.world, screen)
		if !g.pointer.Locked() {
			g.pauseUI.Draw(screen)
		}
		return
	}

	g.render.Draw(g.world, screen)
	if g.eyeMode == eyeInset {
		const insetW, insetH = common.BaseWidth * 3 / 10, common.BaseHeight * 3 / 10
		g.eye.Draw(g.world, screen, image.Rect(common.BaseWidth-insetW-10, 10, common.BaseWidth-10, 10+insetH))
	}
	if g.opts.Debug {
		system.DrawPhysicsDebug(g.world, screen, g.render.PixelsPerMeter)
		system.DrawGroundProbe(g.world, screen, g.render.PixelsPerMeter)
		system.DrawControllerDebug(g.world, screen)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS()), 10, common.BaseHeight-20)
	}
	g.hud.Draw(g.world, screen)

	if !g.pointer.Locked() {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.BaseWidth, common.BaseHeight
}

// Close stops the watcher and releases the controller.
func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	entity.TeardownScene(g.world)
}

func (g *Game) copySnapshot() {
	if !g.clipboard || g.scene == nil {
		return
	}
	snap := system.DebugSnapshot(g.world, g.scene.Player)
	clipboard.Write(clipboard.FmtText, []byte(snap))
	log.Printf("copied controller snapshot")
}

func (g *Game) startWatcher() {
	var dirs []string
	for _, dir := range []string{"prefabs", filepath.Join("prefabs", "scripts"), "levels"} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		log.Printf("hot reload disabled: %v", err)
		return
	}
	g.watcher = w
}

// drainWatcher applies pending file changes without blocking. A failed
// reload is logged and the previous state kept.
func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(path)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) reload(path string) {
	base := filepath.Base(path)
	slashed := filepath.ToSlash(path)
	switch {
	case base == entity.PlayerPrefab:
		if err := entity.ReloadControllerConfig(g.world, entity.PlayerPrefab); err != nil {
			log.Printf("reload %s: %v", base, err)
			return
		}
		log.Printf("reloaded controller config")
	case strings.HasPrefix(slashed, "levels/") || base == entity.CameraPrefab:
		if strings.HasPrefix(slashed, "levels/") && strings.TrimSuffix(base, filepath.Ext(base)) != strings.TrimSuffix(g.opts.Level, filepath.Ext(g.opts.Level)) {
			return
		}
		g.rebuildScene()
	case filepath.Ext(base) == ".tengo" && g.scenario != nil && filepath.Base(g.opts.Script) == base:
		g.rebuildScene()
	}
}

func (g *Game) rebuildScene() {
	if err := g.loadScene(); err != nil {
		log.Printf("reload scene: %v", err)
		return
	}
	log.Printf("reloaded level %s", g.opts.Level)
}
