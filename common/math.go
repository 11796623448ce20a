package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// normalizeEpsilon matches the threshold below which a direction is treated as zero.
const normalizeEpsilon = 1e-5

// Vec2 is a 2D input or screen vector.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// IsFinite reports whether neither component is NaN or infinite.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Normalized returns v scaled to unit length. Vectors shorter than
// normalizeEpsilon, and non-finite vectors, collapse to zero.
func (v Vec2) Normalized() Vec2 {
	if !v.IsFinite() {
		return Vec2{}
	}
	l := v.Len()
	if l < normalizeEpsilon {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Vec3 is a world-space vector. Y is up.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

var (
	Up = Vec3{Y: 1}
)

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// YawBasis returns the forward and right vectors of a body rotated yaw
// degrees about the up axis. Yaw 0 faces +Z with +X on the right.
func YawBasis(yaw float64) (forward, right Vec3) {
	rad := yaw * math.Pi / 180
	sin, cos := math.Sincos(rad)
	forward = Vec3{X: sin, Z: cos}
	right = Vec3{X: cos, Z: -sin}
	return forward, right
}

// MGL converts v for use with mathgl matrices.
func (v Vec3) MGL() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func FromMGL(v mgl64.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// LookRotation is the orientation of a view yawed about +Y and then pitched
// about its local +X, both in degrees. It maps +Z onto the view direction;
// positive pitch looks down.
func LookRotation(yaw, pitch float64) mgl64.Quat {
	q := mgl64.QuatRotate(mgl64.DegToRad(yaw), mgl64.Vec3{0, 1, 0})
	return q.Mul(mgl64.QuatRotate(mgl64.DegToRad(pitch), mgl64.Vec3{1, 0, 0}))
}

// WrapDegrees maps an angle into [0, 360).
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
