package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/movement"
)

// Collision layers. Colliders carry exactly one; queries take a mask.
const (
	LayerDefault movement.LayerMask = 1 << iota
	LayerGround
	LayerWall
	LayerTrigger
)

// LayerSolid is every layer that blocks a sweep.
const LayerSolid = LayerDefault | LayerGround | LayerWall

var layerNames = map[string]movement.LayerMask{
	"default": LayerDefault,
	"ground":  LayerGround,
	"wall":    LayerWall,
	"trigger": LayerTrigger,
}

var ErrUnknownLayer = errors.New("physics: unknown layer")

// ParseLayer maps a layer name to its bit. Unknown names report false.
func ParseLayer(name string) (movement.LayerMask, bool) {
	l, ok := layerNames[name]
	return l, ok
}

// ParseLayers ORs the named layers into a mask.
func ParseLayers(names []string) (movement.LayerMask, error) {
	var mask movement.LayerMask
	for _, name := range names {
		l, ok := ParseLayer(name)
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrUnknownLayer, name)
		}
		mask |= l
	}
	return mask, nil
}

// Collider is a static axis-aligned box.
type Collider struct {
	Name  string
	Min   common.Vec3
	Max   common.Vec3
	Layer movement.LayerMask

	shape *cp.Shape
}

// World holds the static level geometry. Box footprints on the XZ plane are
// indexed in a Chipmunk space so queries only visit nearby colliders; the
// vertical extent is checked separately.
type World struct {
	space     *cp.Space
	colliders []*Collider
	byShape   map[*cp.Shape]*Collider
}

func NewWorld() *World {
	return &World{
		space:   cp.NewSpace(),
		byShape: make(map[*cp.Shape]*Collider),
	}
}

// Space returns the underlying Chipmunk space, for debug drawing.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// AddBox adds a static box spanning min..max on the given layer.
func (w *World) AddBox(name string, min, max common.Vec3, layer movement.LayerMask) *Collider {
	lo := common.Vec3{X: math.Min(min.X, max.X), Y: math.Min(min.Y, max.Y), Z: math.Min(min.Z, max.Z)}
	hi := common.Vec3{X: math.Max(min.X, max.X), Y: math.Max(min.Y, max.Y), Z: math.Max(min.Z, max.Z)}
	if layer == 0 {
		layer = LayerDefault
	}

	col := &Collider{Name: name, Min: lo, Max: hi, Layer: layer}

	bb := cp.BB{L: lo.X, B: lo.Z, R: hi.X, T: hi.Z}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.SetSensor(layer == LayerTrigger)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, uint(layer), cp.ALL_CATEGORIES))
	w.space.AddShape(shape)

	col.shape = shape
	w.byShape[shape] = col
	w.colliders = append(w.colliders, col)
	return col
}

// Colliders returns every collider in insertion order.
func (w *World) Colliders() []*Collider {
	if w == nil {
		return nil
	}
	return w.colliders
}

// OverlapSphere reports whether any collider on mask intersects the sphere.
func (w *World) OverlapSphere(center common.Vec3, radius float64, mask movement.LayerMask) bool {
	if w == nil || radius < 0 {
		return false
	}
	hit := false
	r2 := radius * radius
	w.query(center.X-radius, center.Z-radius, center.X+radius, center.Z+radius, mask, func(c *Collider) {
		if hit {
			return
		}
		if sphereBoxDistanceSq(center, c.Min, c.Max) <= r2 {
			hit = true
		}
	})
	return hit
}

// query visits colliders on mask whose footprint touches the XZ rectangle.
func (w *World) query(minX, minZ, maxX, maxZ float64, mask movement.LayerMask, fn func(*Collider)) {
	if mask == 0 {
		return
	}
	bb := cp.BB{L: minX, B: minZ, R: maxX, T: maxZ}
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, uint(mask))
	w.space.BBQuery(bb, filter, func(shape *cp.Shape, data interface{}) {
		if c, ok := w.byShape[shape]; ok {
			fn(c)
		}
	}, nil)
}

func sphereBoxDistanceSq(p, min, max common.Vec3) float64 {
	dx := p.X - common.Clamp(p.X, min.X, max.X)
	dy := p.Y - common.Clamp(p.Y, min.Y, max.Y)
	dz := p.Z - common.Clamp(p.Z, min.Z, max.Z)
	return dx*dx + dy*dy + dz*dz
}

// DrawSpace renders the indexed footprints through a Chipmunk drawer.
func (w *World) DrawSpace(d cp.Drawer) {
	if w == nil || d == nil {
		return
	}
	cp.DrawSpace(w.space, d)
}
