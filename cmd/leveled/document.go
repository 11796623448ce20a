package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/milk9111/fpsmove/levels"
	"github.com/milk9111/fpsmove/physics"
	"github.com/milk9111/fpsmove/prefabs"
	"gopkg.in/yaml.v3"
)

var (
	errNoSelection = errors.New("leveled: no box selected")
	errEmptyPath   = errors.New("leveled: empty save path")
)

// minThickness is the smallest box extent the editor will create on any axis.
const minThickness = 0.05

type snapshot struct {
	boxes []levels.Box
	spawn prefabs.Vec3Spec
	yaw   float64
}

// document is the level being edited plus its selection and undo history.
type document struct {
	level    *levels.Level
	path     string
	selected int
	dirty    bool

	undoStack []snapshot
	maxUndo   int
}

func newDocument(lvl *levels.Level, path string) *document {
	if lvl == nil {
		lvl = &levels.Level{}
	}
	return &document{level: lvl, path: path, selected: -1, maxUndo: 100}
}

func (d *document) pushUndo() {
	if len(d.undoStack) >= d.maxUndo {
		d.undoStack = d.undoStack[1:]
	}
	d.undoStack = append(d.undoStack, snapshot{
		boxes: cloneBoxes(d.level.Boxes),
		spawn: d.level.Spawn,
		yaw:   d.level.Yaw,
	})
}

// Undo restores the last snapshot. It reports false when history is empty.
func (d *document) Undo() bool {
	if len(d.undoStack) == 0 {
		return false
	}
	idx := len(d.undoStack) - 1
	s := d.undoStack[idx]
	d.undoStack = d.undoStack[:idx]
	d.level.Boxes = cloneBoxes(s.boxes)
	d.level.Spawn = s.spawn
	d.level.Yaw = s.yaw
	if d.selected >= len(d.level.Boxes) {
		d.selected = -1
	}
	d.dirty = true
	return true
}

func cloneBoxes(src []levels.Box) []levels.Box {
	if src == nil {
		return nil
	}
	res := make([]levels.Box, len(src))
	for i, b := range src {
		res[i] = b
		if b.Color != nil {
			c := *b.Color
			res[i].Color = &c
		}
	}
	return res
}

// AddBox appends a box spanning the two XZ corners between bottom and top
// and selects it. Boxes thinner than minThickness are rejected with -1.
func (d *document) AddBox(x0, z0, x1, z1, bottom, top float64, layer string) int {
	if _, ok := physics.ParseLayer(layer); !ok {
		return -1
	}
	minX, maxX := math.Min(x0, x1), math.Max(x0, x1)
	minZ, maxZ := math.Min(z0, z1), math.Max(z0, z1)
	minY, maxY := math.Min(bottom, top), math.Max(bottom, top)
	if maxX-minX < minThickness || maxZ-minZ < minThickness || maxY-minY < minThickness {
		return -1
	}

	d.pushUndo()
	d.level.Boxes = append(d.level.Boxes, levels.Box{
		Name:  d.nextName(layer),
		Min:   prefabs.Vec3Spec{X: minX, Y: minY, Z: minZ},
		Max:   prefabs.Vec3Spec{X: maxX, Y: maxY, Z: maxZ},
		Layer: layer,
	})
	d.selected = len(d.level.Boxes) - 1
	d.dirty = true
	return d.selected
}

func (d *document) nextName(layer string) string {
	used := make(map[string]bool, len(d.level.Boxes))
	for _, b := range d.level.Boxes {
		used[b.Name] = true
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", layer, i)
		if !used[name] {
			return name
		}
	}
}

// BoxAt returns the index of the box drawn on top at (x, z), or -1.
func (d *document) BoxAt(x, z float64) int {
	for i := len(d.level.Boxes) - 1; i >= 0; i-- {
		b := d.level.Boxes[i]
		if x >= b.Min.X && x <= b.Max.X && z >= b.Min.Z && z <= b.Max.Z {
			return i
		}
	}
	return -1
}

func (d *document) Select(i int) {
	if i < 0 || i >= len(d.level.Boxes) {
		i = -1
	}
	d.selected = i
}

func (d *document) Selected() (levels.Box, bool) {
	if d.selected < 0 || d.selected >= len(d.level.Boxes) {
		return levels.Box{}, false
	}
	return d.level.Boxes[d.selected], true
}

func (d *document) DeleteSelected() error {
	if _, ok := d.Selected(); !ok {
		return errNoSelection
	}
	d.pushUndo()
	d.level.Boxes = append(d.level.Boxes[:d.selected], d.level.Boxes[d.selected+1:]...)
	d.selected = -1
	d.dirty = true
	return nil
}

// BeginEdit records an undo point before a multi-frame edit such as a drag.
func (d *document) BeginEdit() {
	d.pushUndo()
}

// MoveSelected translates the selected box on the XZ plane. Callers group
// drags with BeginEdit.
func (d *document) MoveSelected(dx, dz float64) error {
	if _, ok := d.Selected(); !ok {
		return errNoSelection
	}
	b := &d.level.Boxes[d.selected]
	b.Min.X += dx
	b.Max.X += dx
	b.Min.Z += dz
	b.Max.Z += dz
	d.dirty = true
	return nil
}

// RaiseSelectedTop moves the selected box's top by delta, keeping it above
// the bottom.
func (d *document) RaiseSelectedTop(delta float64) error {
	if _, ok := d.Selected(); !ok {
		return errNoSelection
	}
	d.pushUndo()
	b := &d.level.Boxes[d.selected]
	b.Max.Y = math.Max(b.Max.Y+delta, b.Min.Y+minThickness)
	d.dirty = true
	return nil
}

func (d *document) SetSelectedLayer(layer string) error {
	if _, ok := d.Selected(); !ok {
		return errNoSelection
	}
	if _, ok := physics.ParseLayer(layer); !ok {
		return fmt.Errorf("%w %q", physics.ErrUnknownLayer, layer)
	}
	d.pushUndo()
	d.level.Boxes[d.selected].Layer = layer
	d.dirty = true
	return nil
}

// SetSpawn places the spawn at (x, z) on top of the highest walkable box
// covering that point, or at y=0 over open space.
func (d *document) SetSpawn(x, z float64) {
	d.pushUndo()
	y := 0.0
	found := false
	for _, b := range d.level.Boxes {
		if x < b.Min.X || x > b.Max.X || z < b.Min.Z || z > b.Max.Z {
			continue
		}
		layer := physics.LayerDefault
		if b.Layer != "" {
			layer, _ = physics.ParseLayer(b.Layer)
		}
		if layer&physics.LayerSolid == 0 {
			continue
		}
		if !found || b.Max.Y > y {
			y = b.Max.Y
			found = true
		}
	}
	d.level.Spawn = prefabs.Vec3Spec{X: x, Y: y, Z: z}
	d.dirty = true
}

// RotateSpawn turns the spawn yaw by degrees, wrapped to [0, 360).
func (d *document) RotateSpawn(degrees float64) {
	d.pushUndo()
	yaw := math.Mod(d.level.Yaw+degrees, 360)
	if yaw < 0 {
		yaw += 360
	}
	d.level.Yaw = yaw
	d.dirty = true
}

// Save validates the level by building its physics world and writes it as
// YAML to path, or to the document's path when path is empty.
func (d *document) Save(path string) error {
	if path == "" {
		path = d.path
	}
	if path == "" {
		return errEmptyPath
	}
	if _, err := d.level.Build(); err != nil {
		return fmt.Errorf("leveled: validate: %w", err)
	}
	data, err := yaml.Marshal(d.level)
	if err != nil {
		return fmt.Errorf("leveled: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	d.path = path
	d.dirty = false
	log.Printf("Saved level: %s", path)
	return nil
}

// normalizeSavePath turns a bare name into levels/<name>.yaml.
func normalizeSavePath(name string) string {
	base := filepath.Base(name)
	if filepath.Ext(base) == "" {
		base += ".yaml"
	}
	return filepath.Join("levels", base)
}

func snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}
