package kdtree

import "github.com/kd3d/pathtrace/internal/geom"

// testRay implements the recursive traversal: an AABB early-out, a brute
// scan over a leaf's triangles, or a near/far descent through an
// internal node's children.
func (n *node) testRay(t *Tree, r geom.Ray, cr geom.CastingRay) (Hit, bool) {
	if !n.box.Hit(cr) {
		return Hit{}, false
	}
	if n.isLeaf {
		return n.testLeaf(t, r)
	}

	origin := r.Origin.Component(n.axis)
	overlapsHigh := n.high != nil && n.high.box.Min.Component(n.axis) < origin
	overlapsLow := n.low != nil && origin <= n.low.box.Max.Component(n.axis)

	if overlapsHigh && overlapsLow {
		lowHit, lowOK := n.low.testRay(t, r, cr)
		highHit, highOK := n.high.testRay(t, r, cr)
		if !highOK {
			return lowHit, lowOK
		}
		if !lowOK || highHit.T < lowHit.T {
			return highHit, true
		}
		return lowHit, true
	}

	var near, far *node
	if overlapsHigh {
		near, far = n.high, n.low
	} else {
		near, far = n.low, n.high
	}

	if near != nil {
		if hit, ok := near.testRay(t, r, cr); ok {
			if far == nil {
				return hit, true
			}
			// The near-side hit might be a straddler that is also
			// reachable (and possibly occluded) from the far side;
			// only bother checking if the far side's AABB could
			// possibly contain a closer hit.
			var farSplit float64
			if near == n.low {
				farSplit = far.box.Min.Component(n.axis)
			} else {
				farSplit = far.box.Max.Component(n.axis)
			}
			direction := r.Direction.Component(n.axis)
			tSplit := (farSplit - origin) / direction
			if hit.T > tSplit {
				if farHit, ok := far.testRay(t, r, cr); ok && farHit.T < hit.T {
					return farHit, true
				}
			}
			return hit, true
		}
	}
	if far != nil {
		return far.testRay(t, r, cr)
	}
	return Hit{}, false
}

func (n *node) testLeaf(t *Tree, r geom.Ray) (Hit, bool) {
	best := Hit{}
	found := false
	for _, tri := range n.triangles {
		t.triangleTests.Add(1)
		ti, u, v, ok := tri.Hit(r)
		if ok && (!found || ti < best.T) {
			best = Hit{T: ti, U: u, V: v, Triangle: tri}
			found = true
		}
	}
	return best, found
}
