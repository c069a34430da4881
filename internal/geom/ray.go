package geom

import "math"

// Ray is an origin and a unit-length direction. Direction is normalized at
// construction; constructing a Ray never fails for a well-formed camera
// basis, but a degenerate direction (e.g. a camera basis parallel to the
// scene "up" vector, spec §7) propagates as NaN from the normalize rather
// than panicking, matching the recoverable-along-the-ray-path policy.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay constructs a Ray, normalizing direction. If direction cannot be
// normalized (near-zero length), the returned Ray carries a NaN direction;
// every downstream geometry test treats NaN as a miss (spec §4.1, §7).
func NewRay(origin, direction Vec3) Ray {
	unit, err := direction.Normalize()
	if err != nil {
		nan := math.NaN()
		return Ray{Origin: origin, Direction: Vec3{X: nan, Y: nan, Z: nan}}
	}
	return Ray{Origin: origin, Direction: unit}
}

// At returns the point origin + t*direction.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// CastingRay augments a Ray with the componentwise reciprocal of its
// direction, precomputed once per cast so the kd-tree's AABB slab test
// (spec §4.1) doesn't repeat the division at every node.
type CastingRay struct {
	Ray
	InvDirection Vec3
}

// NewCastingRay wraps a Ray for traversal.
func NewCastingRay(r Ray) CastingRay {
	return CastingRay{Ray: r, InvDirection: r.Direction.Reciprocal()}
}
