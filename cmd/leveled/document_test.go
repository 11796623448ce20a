package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/fpsmove/levels"
	"github.com/milk9111/fpsmove/physics"
	"github.com/milk9111/fpsmove/prefabs"
)

func floorDoc() *document {
	lvl := &levels.Level{
		Name: "test",
		Boxes: []levels.Box{
			{Name: "floor", Min: prefabs.Vec3Spec{X: -5, Y: -1, Z: -5}, Max: prefabs.Vec3Spec{X: 5, Y: 0, Z: 5}, Layer: "ground"},
			{Name: "crate", Min: prefabs.Vec3Spec{X: 1, Y: 0, Z: 1}, Max: prefabs.Vec3Spec{X: 2, Y: 1, Z: 2}},
			{Name: "zone", Min: prefabs.Vec3Spec{X: -3, Y: 0, Z: -3}, Max: prefabs.Vec3Spec{X: -2, Y: 3, Z: -2}, Layer: "trigger"},
		},
	}
	return newDocument(lvl, "")
}

func TestAddBox(t *testing.T) {
	cases := []struct {
		name    string
		x0, z0  float64
		x1, z1  float64
		layer   string
		wantIdx int
	}{
		{"normalises_corners", 3, 3, 1, 1, "wall", 3},
		{"too_thin", 0, 0, 0.01, 2, "wall", -1},
		{"unknown_layer", 0, 0, 1, 1, "lava", -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := floorDoc()
			got := d.AddBox(c.x0, c.z0, c.x1, c.z1, 0, 2, c.layer)
			if got != c.wantIdx {
				t.Fatalf("AddBox = %d, want %d", got, c.wantIdx)
			}
			if got < 0 {
				if len(d.level.Boxes) != 3 || d.dirty {
					t.Fatalf("rejected box changed the document")
				}
				return
			}
			b := d.level.Boxes[got]
			if b.Min.X != 1 || b.Max.X != 3 || b.Min.Z != 1 || b.Max.Z != 3 || b.Max.Y != 2 {
				t.Fatalf("unexpected box %+v", b)
			}
			if b.Name != "wall_1" || d.selected != got || !d.dirty {
				t.Fatalf("name=%q selected=%d dirty=%v", b.Name, d.selected, d.dirty)
			}
		})
	}
}

func TestNextNameSkipsUsed(t *testing.T) {
	d := floorDoc()
	d.AddBox(0, 0, 1, 1, 0, 1, "wall")
	d.level.Boxes = append(d.level.Boxes, levels.Box{Name: "wall_2"})
	if got := d.nextName("wall"); got != "wall_3" {
		t.Fatalf("nextName = %q", got)
	}
}

func TestBoxAtPrefersLaterBoxes(t *testing.T) {
	d := floorDoc()
	cases := []struct {
		name string
		x, z float64
		want int
	}{
		{"crate_over_floor", 1.5, 1.5, 1},
		{"floor_only", 4, -4, 0},
		{"outside", 9, 9, -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := d.BoxAt(c.x, c.z); got != c.want {
				t.Fatalf("BoxAt(%v, %v) = %d, want %d", c.x, c.z, got, c.want)
			}
		})
	}
}

func TestMoveDeleteUndo(t *testing.T) {
	d := floorDoc()
	if err := d.MoveSelected(1, 0); !errors.Is(err, errNoSelection) {
		t.Fatalf("expected errNoSelection, got %v", err)
	}

	d.Select(1)
	d.BeginEdit()
	_ = d.MoveSelected(0.5, 0)
	_ = d.MoveSelected(0.5, -1)
	if b := d.level.Boxes[1]; b.Min.X != 2 || b.Max.X != 3 || b.Min.Z != 0 {
		t.Fatalf("moved box = %+v", b)
	}

	if err := d.DeleteSelected(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(d.level.Boxes) != 2 || d.selected != -1 {
		t.Fatalf("delete left %d boxes, selected %d", len(d.level.Boxes), d.selected)
	}

	if !d.Undo() {
		t.Fatalf("undo delete failed")
	}
	if len(d.level.Boxes) != 3 || d.level.Boxes[1].Min.X != 2 {
		t.Fatalf("undo delete restored %+v", d.level.Boxes)
	}
	if !d.Undo() {
		t.Fatalf("undo move failed")
	}
	if d.level.Boxes[1].Min.X != 1 {
		t.Fatalf("the whole drag should undo in one step, got %+v", d.level.Boxes[1])
	}
	if d.Undo() {
		t.Fatalf("history should be empty")
	}
}

func TestUndoHistoryIsBounded(t *testing.T) {
	d := floorDoc()
	d.maxUndo = 3
	for i := 0; i < 5; i++ {
		d.RotateSpawn(10)
	}
	if len(d.undoStack) != 3 {
		t.Fatalf("undo stack = %d, want 3", len(d.undoStack))
	}
}

func TestUndoDoesNotAliasColors(t *testing.T) {
	d := floorDoc()
	c := &prefabs.YAMLColor{}
	d.level.Boxes[0].Color = c
	d.BeginEdit()
	d.level.Boxes[0].Color.Color = nil
	d.Undo()
	if d.level.Boxes[0].Color == c {
		t.Fatalf("undo snapshot shares color pointer")
	}
}

func TestRaiseTopAndLayer(t *testing.T) {
	d := floorDoc()
	d.Select(1)
	_ = d.RaiseSelectedTop(-5)
	if got := d.level.Boxes[1].Max.Y; math.Abs(got-minThickness) > 1e-9 {
		t.Fatalf("top = %v, want clamp at %v", got, minThickness)
	}
	if err := d.SetSelectedLayer("lava"); !errors.Is(err, physics.ErrUnknownLayer) {
		t.Fatalf("expected ErrUnknownLayer, got %v", err)
	}
	if err := d.SetSelectedLayer("wall"); err != nil || d.level.Boxes[1].Layer != "wall" {
		t.Fatalf("set layer: %v, %q", err, d.level.Boxes[1].Layer)
	}
}

func TestSetSpawn(t *testing.T) {
	cases := []struct {
		name  string
		x, z  float64
		wantY float64
	}{
		{"on_crate", 1.5, 1.5, 1},
		{"on_floor", 0, 0, 0},
		{"trigger_is_ignored", -2.5, -2.5, 0},
		{"open_space", 20, 20, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := floorDoc()
			d.SetSpawn(c.x, c.z)
			if s := d.level.Spawn; s.X != c.x || s.Z != c.z || s.Y != c.wantY {
				t.Fatalf("spawn = %+v, want y %v", s, c.wantY)
			}
		})
	}
}

func TestRotateSpawnWraps(t *testing.T) {
	d := floorDoc()
	d.RotateSpawn(-15)
	if d.level.Yaw != 345 {
		t.Fatalf("yaw = %v, want 345", d.level.Yaw)
	}
	d.RotateSpawn(30)
	if d.level.Yaw != 15 {
		t.Fatalf("yaw = %v, want 15", d.level.Yaw)
	}
}

func TestSaveWritesLoadableLevel(t *testing.T) {
	d := floorDoc()
	if err := d.Save(""); !errors.Is(err, errEmptyPath) {
		t.Fatalf("expected errEmptyPath, got %v", err)
	}

	d.SetSpawn(0, 0)
	path := filepath.Join(t.TempDir(), "levels", "test.yaml")
	if err := d.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if d.dirty || d.path != path {
		t.Fatalf("dirty=%v path=%q", d.dirty, d.path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lvl, err := levels.ParseLevel(data)
	if err != nil {
		t.Fatalf("parse saved level: %v", err)
	}
	if len(lvl.Boxes) != 3 || lvl.Boxes[0].Layer != "ground" || lvl.Boxes[2].Max.Y != 3 {
		t.Fatalf("saved level = %+v", lvl)
	}
	if _, err := lvl.Build(); err != nil {
		t.Fatalf("saved level does not build: %v", err)
	}
}

func TestSaveRejectsBadLayer(t *testing.T) {
	d := floorDoc()
	d.level.Boxes[0].Layer = "lava"
	err := d.Save(filepath.Join(t.TempDir(), "bad.yaml"))
	if !errors.Is(err, physics.ErrUnknownLayer) {
		t.Fatalf("expected ErrUnknownLayer, got %v", err)
	}
}

func TestNormalizeSavePath(t *testing.T) {
	cases := map[string]string{
		"yard":             filepath.Join("levels", "yard.yaml"),
		"levels/yard.yaml": filepath.Join("levels", "yard.yaml"),
		"arena.yml":        filepath.Join("levels", "arena.yml"),
	}
	for in, want := range cases {
		if got := normalizeSavePath(in); got != want {
			t.Fatalf("normalizeSavePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSnap(t *testing.T) {
	if got := snap(1.13, 0.25); got != 1.25 {
		t.Fatalf("snap = %v", got)
	}
	if got := snap(1.13, 0); got != 1.13 {
		t.Fatalf("zero grid should not snap, got %v", got)
	}
}

func TestCanvasZoomKeepsCursorPoint(t *testing.T) {
	c := NewCanvas(leftPanelWidth, 1280, 720)
	x0, z0 := c.ToWorld(900, 200)
	c.ZoomAt(900, 200, 2)
	x1, z1 := c.ToWorld(900, 200)
	if math.Abs(x1-x0) > 1e-9 || math.Abs(z1-z0) > 1e-9 {
		t.Fatalf("point moved from (%v, %v) to (%v, %v)", x0, z0, x1, z1)
	}
	if c.Zoom != 32 {
		t.Fatalf("zoom = %v, want 32", c.Zoom)
	}
	c.ZoomAt(900, 200, 100)
	if c.Zoom != maxZoom {
		t.Fatalf("zoom = %v, want clamp at %v", c.Zoom, maxZoom)
	}
}

func TestCanvasAxes(t *testing.T) {
	c := NewCanvas(0, 200, 200)
	_, yNorth := c.ToScreen(0, 1)
	_, ySouth := c.ToScreen(0, -1)
	if yNorth >= ySouth {
		t.Fatalf("+Z should point up the screen: %v vs %v", yNorth, ySouth)
	}
}
