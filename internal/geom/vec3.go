package geom

import (
	"errors"
	"math"
)

// ErrDegenerateNormalize is returned by Vec3.Normalize for a
// near-zero-length vector.
var ErrDegenerateNormalize = errors.New("geom: cannot normalize a near-zero vector")

// Vec3 represents a 3D displacement vector, a position, or a non-negative
// RGB radiance, depending on context. All three share one representation
// per spec §3: an ordered triple of finite real numbers.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Scale returns the vector scaled by a scalar.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Neg returns the negation of the vector.
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Mul returns the componentwise (Hadamard) product of two vectors, used
// when v and w are both radiance/color values.
func (v Vec3) Mul(w Vec3) Vec3 {
	return Vec3{X: v.X * w.X, Y: v.Y * w.Y, Z: v.Z * w.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product v x w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the magnitude of the vector.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// LengthSq returns the squared magnitude of the vector, cheaper than
// Length when only comparing magnitudes.
func (v Vec3) LengthSq() float64 {
	return v.Dot(v)
}

// normalizeEpsilon is the minimum magnitude Normalize will divide by.
// Per spec §3, normalizing a near-zero vector is the caller's mistake to
// avoid; Normalize reports it rather than silently returning garbage.
const normalizeEpsilon = 1e-12

// Normalize returns a unit vector in the same direction as v. It fails if
// the magnitude of v is below normalizeEpsilon; avoiding that case is the
// caller's responsibility per spec §3.
func (v Vec3) Normalize() (Vec3, error) {
	length := v.Length()
	if length < normalizeEpsilon {
		return Vec3{}, ErrDegenerateNormalize
	}
	inv := 1 / length
	return Vec3{X: v.X * inv, Y: v.Y * inv, Z: v.Z * inv}, nil
}

// MustNormalize is like Normalize but panics on failure. Intended for call
// sites that have already established v is non-degenerate (e.g. a
// cross product of two known-independent edges).
func (v Vec3) MustNormalize() Vec3 {
	n, err := v.Normalize()
	if err != nil {
		panic(err)
	}
	return n
}

// Min returns the componentwise minimum of two vectors.
func (v Vec3) Min(w Vec3) Vec3 {
	return Vec3{X: math.Min(v.X, w.X), Y: math.Min(v.Y, w.Y), Z: math.Min(v.Z, w.Z)}
}

// Max returns the componentwise maximum of two vectors.
func (v Vec3) Max(w Vec3) Vec3 {
	return Vec3{X: math.Max(v.X, w.X), Y: math.Max(v.Y, w.Y), Z: math.Max(v.Z, w.Z)}
}

// Component returns the axis-th scalar component (0=X, 1=Y, 2=Z).
func (v Vec3) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Reciprocal returns the componentwise reciprocal, used by CastingRay for
// the AABB slab test. Division by zero yields +/-Inf, which the slab test
// is defined to handle (spec §4.1).
func (v Vec3) Reciprocal() Vec3 {
	return Vec3{X: 1 / v.X, Y: 1 / v.Y, Z: 1 / v.Z}
}

// Lerp performs linear interpolation between two vectors.
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return v.Add(w.Sub(v).Scale(t))
}

// Approx returns true if two vectors are componentwise equal within epsilon.
func (v Vec3) Approx(w Vec3, epsilon float64) bool {
	return math.Abs(v.X-w.X) < epsilon &&
		math.Abs(v.Y-w.Y) < epsilon &&
		math.Abs(v.Z-w.Z) < epsilon
}

// IsZero returns true if the vector is the exact zero vector.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
