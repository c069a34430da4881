package geom

import "math"

// AABB is an axis-aligned bounding box. The invariant after any Update is
// Min <= Max componentwise (spec §3). An AABB may sit in the sentinel
// "empty" state (Min = +Inf, Max = -Inf) produced by EmptyAABB, in which
// case the first Update initializes it to a single point.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns the sentinel empty box.
func EmptyAABB() AABB {
	return AABB{
		Min: V3(math.Inf(1), math.Inf(1), math.Inf(1)),
		Max: V3(math.Inf(-1), math.Inf(-1), math.Inf(-1)),
	}
}

// NewAABB builds a box directly from given corners, taking the
// componentwise min/max so the result is always valid regardless of the
// order the corners were given in.
func NewAABB(a, b Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// Update extends the box to include point, initializing it from the
// empty-box sentinel on first use.
func (a AABB) Update(point Vec3) AABB {
	return AABB{Min: a.Min.Min(point), Max: a.Max.Max(point)}
}

// Union returns the smallest box containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Contains reports whether b is entirely inside a, componentwise.
func (a AABB) Contains(b AABB) bool {
	return a.Min.X <= b.Min.X && a.Min.Y <= b.Min.Y && a.Min.Z <= b.Min.Z &&
		a.Max.X >= b.Max.X && a.Max.Y >= b.Max.Y && a.Max.Z >= b.Max.Z
}

// Centroid returns the box's center point.
func (a AABB) Centroid() Vec3 {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Hit performs the slab test against a CastingRay. Per spec §4.1, NaN
// (from a degenerate ray direction) is allowed to degrade to a miss rather
// than being treated as correctness-critical.
func (a AABB) Hit(r CastingRay) bool {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		origin := r.Origin.Component(axis)
		invDir := r.InvDirection.Component(axis)
		lo := (a.Min.Component(axis) - origin) * invDir
		hi := (a.Max.Component(axis) - origin) * invDir
		if math.IsNaN(lo) || math.IsNaN(hi) {
			return false
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo > tMin {
			tMin = lo
		}
		if hi < tMax {
			tMax = hi
		}
	}
	return tMax >= 0 && tMin <= tMax
}
