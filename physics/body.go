package physics

import (
	"math"
	"strings"

	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/movement"
)

const (
	// collisionTolerance absorbs float error at contact boundaries.
	collisionTolerance = 1e-6
	// maxSubstepFraction limits each sweep substep to this fraction of the
	// body radius so thin colliders cannot be skipped.
	maxSubstepFraction = 0.5
)

// BodySpec configures a kinematic capsule.
type BodySpec struct {
	Position   common.Vec3
	Yaw        float64
	Radius     float64
	Height     float64
	StepOffset float64
	Mask       movement.LayerMask
}

// Body is a kinematic upright capsule, collided as its bounding box. Position
// is the centre of the feet.
type Body struct {
	world      *World
	position   common.Vec3
	yaw        float64
	radius     float64
	height     float64
	stepOffset float64
	mask       movement.LayerMask

	lastFlags CollisionFlags
}

// CollisionFlags report which sides were blocked by the most recent Move.
type CollisionFlags uint8

const (
	CollidedSides CollisionFlags = 1 << iota
	CollidedBelow
	CollidedAbove
)

// String lists the set flags, e.g. "sides|below", or "none".
func (f CollisionFlags) String() string {
	var parts []string
	if f&CollidedSides != 0 {
		parts = append(parts, "sides")
	}
	if f&CollidedBelow != 0 {
		parts = append(parts, "below")
	}
	if f&CollidedAbove != 0 {
		parts = append(parts, "above")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

func NewBody(w *World, spec BodySpec) *Body {
	if spec.Radius <= 0 {
		spec.Radius = 0.5
	}
	if spec.Height < spec.Radius*2 {
		spec.Height = spec.Radius * 2
	}
	if spec.Mask == 0 {
		spec.Mask = LayerSolid
	}
	return &Body{
		world:      w,
		position:   spec.Position,
		yaw:        common.WrapDegrees(spec.Yaw),
		radius:     spec.Radius,
		height:     spec.Height,
		stepOffset: math.Max(spec.StepOffset, 0),
		mask:       spec.Mask,
	}
}

func (b *Body) Position() common.Vec3 { return b.position }

// Teleport places the body without collision.
func (b *Body) Teleport(p common.Vec3) { b.position = p }

func (b *Body) Yaw() float64    { return b.yaw }
func (b *Body) Radius() float64 { return b.radius }
func (b *Body) Height() float64 { return b.height }

func (b *Body) Forward() common.Vec3 {
	f, _ := common.YawBasis(b.yaw)
	return f
}

func (b *Body) Right() common.Vec3 {
	_, r := common.YawBasis(b.yaw)
	return r
}

func (b *Body) RotateYaw(degrees float64) {
	b.yaw = common.WrapDegrees(b.yaw + degrees)
}

func (b *Body) StepOffset() float64 { return b.stepOffset }

func (b *Body) SetStepOffset(h float64) { b.stepOffset = math.Max(h, 0) }

// Flags returns the collision flags of the last Move.
func (b *Body) Flags() CollisionFlags { return b.lastFlags }

// bounds returns the body's box at feet position p.
func (b *Body) bounds(p common.Vec3) (common.Vec3, common.Vec3) {
	return common.Vec3{X: p.X - b.radius, Y: p.Y, Z: p.Z - b.radius},
		common.Vec3{X: p.X + b.radius, Y: p.Y + b.height, Z: p.Z + b.radius}
}

// Move sweeps the body by d. The displacement is split into substeps no
// longer than half the radius; each substep resolves Y, then X, then Z.
// Blocked horizontal motion may step up onto ledges no taller than the
// current step offset.
func (b *Body) Move(d common.Vec3) {
	b.lastFlags = 0
	if d.IsZero() {
		return
	}
	if b.world == nil {
		b.position = b.position.Add(d)
		return
	}

	steps := int(math.Ceil(d.Len() / (b.radius * maxSubstepFraction)))
	if steps < 1 {
		steps = 1
	}
	part := d.Scale(1 / float64(steps))
	for i := 0; i < steps; i++ {
		b.resolveY(part.Y)
		b.resolveHorizontal(part.X, 0)
		b.resolveHorizontal(0, part.Z)
	}
}

func (b *Body) resolveY(delta float64) {
	if math.Abs(delta) <= collisionTolerance {
		b.position.Y += delta
		return
	}
	min, max := b.bounds(b.position)
	allowed := delta
	b.world.query(min.X, min.Z, max.X, max.Z, b.mask, func(c *Collider) {
		if !overlapsOpen(min.X, max.X, c.Min.X, c.Max.X) || !overlapsOpen(min.Z, max.Z, c.Min.Z, c.Max.Z) {
			return
		}
		if delta > 0 && c.Min.Y >= max.Y-collisionTolerance {
			allowed = math.Min(allowed, c.Min.Y-max.Y)
		}
		if delta < 0 && c.Max.Y <= min.Y+collisionTolerance {
			allowed = math.Max(allowed, c.Max.Y-min.Y)
		}
	})
	if allowed != delta {
		if delta < 0 {
			b.lastFlags |= CollidedBelow
		} else {
			b.lastFlags |= CollidedAbove
		}
	}
	b.position.Y += allowed
}

// resolveHorizontal moves along exactly one of X or Z.
func (b *Body) resolveHorizontal(dx, dz float64) {
	delta := dx + dz
	if math.Abs(delta) <= collisionTolerance {
		b.position.X += dx
		b.position.Z += dz
		return
	}
	alongX := dx != 0

	min, max := b.bounds(b.position)
	qMinX, qMaxX := min.X+math.Min(dx, 0), max.X+math.Max(dx, 0)
	qMinZ, qMaxZ := min.Z+math.Min(dz, 0), max.Z+math.Max(dz, 0)

	allowed := delta
	highest := math.Inf(-1)
	b.world.query(qMinX, qMinZ, qMaxX, qMaxZ, b.mask, func(c *Collider) {
		if !overlapsOpen(min.Y, max.Y, c.Min.Y, c.Max.Y) {
			return
		}
		var lo, hi, cLo, cHi float64
		if alongX {
			if !overlapsOpen(min.Z, max.Z, c.Min.Z, c.Max.Z) {
				return
			}
			lo, hi, cLo, cHi = min.X, max.X, c.Min.X, c.Max.X
		} else {
			if !overlapsOpen(min.X, max.X, c.Min.X, c.Max.X) {
				return
			}
			lo, hi, cLo, cHi = min.Z, max.Z, c.Min.Z, c.Max.Z
		}
		limit := allowed
		if delta > 0 && cLo >= hi-collisionTolerance {
			limit = math.Min(allowed, cLo-hi)
		} else if delta < 0 && cHi <= lo+collisionTolerance {
			limit = math.Max(allowed, cHi-lo)
		} else {
			return
		}
		if math.Abs(limit) < math.Abs(delta) && c.Max.Y > highest {
			highest = c.Max.Y
		}
		allowed = limit
	})

	if allowed != delta && b.tryStep(highest, dx, dz) {
		return
	}
	if allowed != delta {
		b.lastFlags |= CollidedSides
	}
	if alongX {
		b.position.X += allowed
	} else {
		b.position.Z += allowed
	}
}

// tryStep lifts the body onto a ledge whose top is at most stepOffset above
// the feet, if the full horizontal move is clear at that height.
func (b *Body) tryStep(top, dx, dz float64) bool {
	rise := top - b.position.Y
	if b.stepOffset <= 0 || rise <= 0 || rise > b.stepOffset+collisionTolerance {
		return false
	}
	target := common.Vec3{X: b.position.X + dx, Y: top + collisionTolerance, Z: b.position.Z + dz}
	if b.overlapsAt(target) {
		return false
	}
	b.position = target
	return true
}

func (b *Body) overlapsAt(p common.Vec3) bool {
	min, max := b.bounds(p)
	hit := false
	b.world.query(min.X, min.Z, max.X, max.Z, b.mask, func(c *Collider) {
		if hit {
			return
		}
		hit = overlapsOpen(min.X, max.X, c.Min.X, c.Max.X) &&
			overlapsOpen(min.Y, max.Y, c.Min.Y, c.Max.Y) &&
			overlapsOpen(min.Z, max.Z, c.Min.Z, c.Max.Z)
	})
	return hit
}

// overlapsOpen reports whether the open intervals (aLo, aHi) and (bLo, bHi)
// share more than a touching boundary.
func overlapsOpen(aLo, aHi, bLo, bHi float64) bool {
	return aLo < bHi-collisionTolerance && aHi > bLo+collisionTolerance
}

// Anchor is a point fixed relative to a body, rotated with its yaw.
type Anchor struct {
	body   *Body
	offset common.Vec3
}

// NewAnchor returns an anchor at offset from the body's feet, where offset is
// expressed as (right, up, forward).
func NewAnchor(b *Body, offset common.Vec3) *Anchor {
	return &Anchor{body: b, offset: offset}
}

func (a *Anchor) Position() common.Vec3 {
	b := a.body
	return b.position.
		Add(b.Right().Scale(a.offset.X)).
		Add(common.Up.Scale(a.offset.Y)).
		Add(b.Forward().Scale(a.offset.Z))
}
