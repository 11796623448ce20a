package main

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
)

// Tool selects what a left-button press on the canvas does.
type Tool int

const (
	ToolSelect Tool = iota
	ToolBox
	ToolSpawn
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "Select"
	case ToolBox:
		return "Box"
	case ToolSpawn:
		return "Spawn"
	default:
		return "Unknown"
	}
}

var layerNames = []string{"default", "ground", "wall", "trigger"}

// EditorGame is the Ebiten game for the level editor.
type EditorGame struct {
	doc    *document
	canvas *Canvas
	ui     *editorUI

	tool      Tool
	layer     string
	boxBottom float64
	boxHeight float64

	dragging    bool
	pendingEdit bool
	dragX       float64
	dragZ       float64

	status  string
	screenW int
	screenH int
}

func NewEditorGame(doc *document, w, h int) *EditorGame {
	g := &EditorGame{
		doc:       doc,
		canvas:    NewCanvas(leftPanelWidth, w, h),
		tool:      ToolSelect,
		layer:     "default",
		boxHeight: 1,
		screenW:   w,
		screenH:   h,
	}
	g.ui = buildEditorUI(editorCallbacks{
		onTool:     g.setTool,
		onLayer:    g.setLayer,
		onRaiseTop: g.raiseTop,
		onRotate:   func(deg float64) { g.doc.RotateSpawn(deg) },
		onSave:     g.save,
		onUndo:     g.undo,
		onDelete:   g.deleteSelected,
	}, g.tool, g.layer, doc.path)
	return g
}

func (g *EditorGame) setTool(t Tool) {
	g.tool = t
	g.dragging = false
}

// setLayer sets the layer for new boxes and retags the selection.
func (g *EditorGame) setLayer(layer string) {
	g.layer = layer
	if b, ok := g.doc.Selected(); ok && layerOrDefault(b.Layer) != layer {
		if err := g.doc.SetSelectedLayer(layer); err != nil {
			g.status = err.Error()
		}
	}
}

// raiseTop adjusts the selected box, or the height of new boxes when
// nothing is selected.
func (g *EditorGame) raiseTop(delta float64) {
	if _, ok := g.doc.Selected(); ok {
		_ = g.doc.RaiseSelectedTop(delta)
		return
	}
	g.boxHeight = math.Max(g.boxHeight+delta, 0.25)
}

func (g *EditorGame) save(name string) {
	path := g.doc.path
	if n := strings.TrimSpace(name); n != "" {
		path = normalizeSavePath(n)
	}
	if err := g.doc.Save(path); err != nil {
		g.status = "save failed: " + err.Error()
		return
	}
	g.status = "saved " + path
}

func (g *EditorGame) undo() {
	if !g.doc.Undo() {
		g.status = "nothing to undo"
	}
}

func (g *EditorGame) deleteSelected() {
	if err := g.doc.DeleteSelected(); err != nil {
		g.status = err.Error()
	}
}

func (g *EditorGame) Update() error {
	g.ui.ui.Update()

	mx, my := ebiten.CursorPosition()
	overUI := image.Pt(mx, my).In(g.ui.Bounds())
	inCanvas := g.canvas.Contains(mx, my) && !overUI

	if !g.ui.fileInput.IsFocused() {
		g.handleKeys()
	}

	if inCanvas {
		if _, wy := ebiten.Wheel(); wy != 0 {
			factor := 1.1
			if wy < 0 {
				factor = 1 / 1.1
			}
			g.canvas.ZoomAt(mx, my, factor)
		}
	}
	g.canvas.Pan(mx, my, ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) && (inCanvas || g.canvas.panning))

	x, z := g.canvas.SnappedWorld(mx, my)
	if inCanvas && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		rawX, rawZ := g.canvas.ToWorld(mx, my)
		g.press(rawX, rawZ, x, z)
	}
	if g.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.drag(x, z)
	}
	if g.dragging && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.release(x, z)
	}
	if inCanvas && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.doc.Select(-1)
	}

	g.refreshInfo()
	return nil
}

func (g *EditorGame) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	switch {
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyZ):
		g.undo()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.save(g.ui.fileInput.GetText())
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete), inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		g.deleteSelected()
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		g.ui.SetTool(ToolSelect)
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		g.ui.SetTool(ToolBox)
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		g.ui.SetTool(ToolSpawn)
	case inpututil.IsKeyJustPressed(ebiten.KeyQ):
		g.doc.RotateSpawn(-15)
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		g.doc.RotateSpawn(15)
	}

	var dx, dz float64
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		dx -= g.canvas.Grid
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		dx += g.canvas.Grid
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		dz += g.canvas.Grid
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		dz -= g.canvas.Grid
	}
	if (dx != 0 || dz != 0) && g.doc.selected >= 0 {
		g.doc.BeginEdit()
		_ = g.doc.MoveSelected(dx, dz)
	}
}

func (g *EditorGame) press(rawX, rawZ, x, z float64) {
	switch g.tool {
	case ToolSelect:
		idx := g.doc.BoxAt(rawX, rawZ)
		g.doc.Select(idx)
		if b, ok := g.doc.Selected(); ok {
			g.ui.SetLayer(layerOrDefault(b.Layer))
			g.dragging = true
			g.pendingEdit = true
			g.dragX, g.dragZ = x, z
		}
	case ToolBox:
		g.dragging = true
		g.dragX, g.dragZ = x, z
	case ToolSpawn:
		g.doc.SetSpawn(x, z)
	}
}

func (g *EditorGame) drag(x, z float64) {
	if g.tool != ToolSelect {
		return
	}
	dx, dz := x-g.dragX, z-g.dragZ
	if dx == 0 && dz == 0 {
		return
	}
	if g.pendingEdit {
		g.doc.BeginEdit()
		g.pendingEdit = false
	}
	_ = g.doc.MoveSelected(dx, dz)
	g.dragX, g.dragZ = x, z
}

func (g *EditorGame) release(x, z float64) {
	g.dragging = false
	g.pendingEdit = false
	if g.tool != ToolBox {
		return
	}
	if idx := g.doc.AddBox(g.dragX, g.dragZ, x, z, g.boxBottom, g.boxBottom+g.boxHeight, g.layer); idx < 0 {
		g.status = "box too small"
		return
	}
	g.status = ""
}

func (g *EditorGame) refreshInfo() {
	dirty := ""
	if g.doc.dirty {
		dirty = " *"
	}
	sel := "none"
	if b, ok := g.doc.Selected(); ok {
		sel = fmt.Sprintf("%s [%s]\ny %.2f..%.2f", b.Name, layerOrDefault(b.Layer), b.Min.Y, b.Max.Y)
	}
	g.ui.SetInfo("%s%s\nnew box height %.2f\nyaw %.0f\nselected %s", g.doc.level.Name, dirty, g.boxHeight, g.doc.level.Yaw, sel)
}

func (g *EditorGame) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	g.canvas.DrawGrid(screen)

	for i, b := range g.doc.level.Boxes {
		g.canvas.DrawBox(screen, b, i == g.doc.selected)
	}

	mx, my := ebiten.CursorPosition()
	x, z := g.canvas.SnappedWorld(mx, my)
	if g.dragging && g.tool == ToolBox {
		x0, y0 := g.canvas.ToScreen(math.Min(g.dragX, x), math.Max(g.dragZ, z))
		x1, y1 := g.canvas.ToScreen(math.Max(g.dragX, x), math.Min(g.dragZ, z))
		vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, layerColor(g.layer), false)
	}
	g.canvas.DrawSpawn(screen, g.doc.level)

	g.ui.ui.Draw(screen)

	msg := fmt.Sprintf("x %.2f  z %.2f  zoom %.0f px/m  [%s]", x, z, g.canvas.Zoom, g.tool)
	if g.status != "" {
		msg += "  " + g.status
	}
	ebitenutil.DebugPrintAt(screen, msg, leftPanelWidth+8, g.screenH-20)
}

func (g *EditorGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func layerOrDefault(layer string) string {
	if layer == "" {
		return "default"
	}
	return layer
}
