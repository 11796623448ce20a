package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/levels"
	"golang.org/x/image/colornames"
)

const (
	minZoom = 4.0
	maxZoom = 160.0
)

// Canvas maps level XZ coordinates to screen pixels. +Z points up the
// screen, as in the game's top-down view.
type Canvas struct {
	LeftPanelW int

	// Zoom is pixels per metre. OffsetX/OffsetY is the screen position of
	// the world origin.
	Zoom    float64
	OffsetX float64
	OffsetY float64
	Grid    float64

	panning  bool
	lastPanX int
	lastPanY int
}

func NewCanvas(leftPanelW int, w, h int) *Canvas {
	return &Canvas{
		LeftPanelW: leftPanelW,
		Zoom:       16,
		OffsetX:    float64(leftPanelW) + float64(w-leftPanelW)/2,
		OffsetY:    float64(h) / 2,
		Grid:       0.25,
	}
}

func (c *Canvas) ToScreen(x, z float64) (float32, float32) {
	return float32(c.OffsetX + x*c.Zoom), float32(c.OffsetY - z*c.Zoom)
}

func (c *Canvas) ToWorld(sx, sy int) (float64, float64) {
	return (float64(sx) - c.OffsetX) / c.Zoom, (c.OffsetY - float64(sy)) / c.Zoom
}

// SnappedWorld is ToWorld rounded to the grid.
func (c *Canvas) SnappedWorld(sx, sy int) (float64, float64) {
	x, z := c.ToWorld(sx, sy)
	return snap(x, c.Grid), snap(z, c.Grid)
}

func (c *Canvas) Contains(sx, sy int) bool {
	return sx >= c.LeftPanelW
}

// ZoomAt scales the view by factor, keeping the point under (sx, sy) fixed.
func (c *Canvas) ZoomAt(sx, sy int, factor float64) {
	x, z := c.ToWorld(sx, sy)
	c.Zoom = common.Clamp(c.Zoom*factor, minZoom, maxZoom)
	c.OffsetX = float64(sx) - x*c.Zoom
	c.OffsetY = float64(sy) + z*c.Zoom
}

// Pan drags the view while the middle button is held.
func (c *Canvas) Pan(mx, my int, held bool) {
	if !held {
		c.panning = false
		return
	}
	if !c.panning {
		c.panning = true
		c.lastPanX, c.lastPanY = mx, my
		return
	}
	c.OffsetX += float64(mx - c.lastPanX)
	c.OffsetY += float64(my - c.lastPanY)
	c.lastPanX, c.lastPanY = mx, my
}

// DrawGrid draws metre lines across the visible canvas, with the axes
// highlighted.
func (c *Canvas) DrawGrid(screen *ebiten.Image) {
	b := screen.Bounds()
	x0, z1 := c.ToWorld(c.LeftPanelW, 0)
	x1, z0 := c.ToWorld(b.Dx(), b.Dy())
	top, bottom := float32(0), float32(b.Dy())
	left, right := float32(c.LeftPanelW), float32(b.Dx())

	for x := math.Floor(x0); x <= x1; x++ {
		sx, _ := c.ToScreen(x, 0)
		clr := color.Color(color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff})
		if x == 0 {
			clr = colornames.Darkred
		}
		vector.StrokeLine(screen, sx, top, sx, bottom, 1, clr, false)
	}
	for z := math.Floor(z0); z <= z1; z++ {
		_, sy := c.ToScreen(0, z)
		clr := color.Color(color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff})
		if z == 0 {
			clr = colornames.Darkblue
		}
		vector.StrokeLine(screen, left, sy, right, sy, 1, clr, false)
	}
}

// DrawBox fills a level box with its color, or the layer's default.
func (c *Canvas) DrawBox(screen *ebiten.Image, b levels.Box, selected bool) {
	x0, y0 := c.ToScreen(b.Min.X, b.Max.Z)
	x1, y1 := c.ToScreen(b.Max.X, b.Min.Z)
	fill := layerColor(b.Layer)
	if b.Color != nil && b.Color.Color != nil {
		fill = b.Color.Color
	}
	vector.FillRect(screen, x0, y0, x1-x0, y1-y0, fill, false)
	outline, width := color.Color(colornames.Darkslategray), float32(1)
	if selected {
		outline, width = colornames.Yellow, 2
	}
	vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, width, outline, false)
}

// DrawSpawn marks the spawn point with its facing.
func (c *Canvas) DrawSpawn(screen *ebiten.Image, lvl *levels.Level) {
	p := lvl.SpawnPoint()
	sx, sy := c.ToScreen(p.X, p.Z)
	r := float32(0.5 * c.Zoom)
	vector.StrokeCircle(screen, sx, sy, r, 2, colornames.Steelblue, true)
	f, _ := common.YawBasis(lvl.Yaw)
	tip := p.Add(f.Scale(1.5))
	tx, ty := c.ToScreen(tip.X, tip.Z)
	vector.StrokeLine(screen, sx, sy, tx, ty, 2, colornames.Gold, true)
}

func layerColor(layer string) color.Color {
	switch layer {
	case "ground":
		return color.NRGBA{R: 0x3a, G: 0x4a, B: 0x3a, A: 0xff}
	case "wall":
		return color.NRGBA{R: 0x6b, G: 0x6b, B: 0x7a, A: 0xff}
	case "trigger":
		return color.NRGBA{R: 0x40, G: 0x80, B: 0xc0, A: 0x60}
	default:
		return colornames.Dimgray
	}
}
