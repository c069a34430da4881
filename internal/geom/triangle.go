package geom

import "math"

// mollerTrumboreEpsilon gates both the determinant (near-parallel ray vs
// triangle plane) and the accepted hit parameter t (spec §4.1, §9: the
// trade-off between shadow acne and peter-panning is fixed here at 1e-4,
// suited to single-precision-scale scenes).
const mollerTrumboreEpsilon = 1e-4

// VertexNormal encodes an interpolated per-vertex normal as base + u*U +
// v*V so that the normal at barycentric (u,v) is base + u*U + v*V
// (spec §3). Base is the normal at vertex 0.
type VertexNormal struct {
	Base Vec3
	U    Vec3
	V    Vec3
}

// At returns the interpolated, but not necessarily unit, normal at
// barycentric coordinates (u, v).
func (n VertexNormal) At(u, v float64) Vec3 {
	return n.Base.Add(n.U.Scale(u)).Add(n.V.Scale(v))
}

// Triangle is an immutable mesh primitive: three ordered vertices, cached
// edges, a face normal, per-vertex normal interpolation coefficients, a
// plane parameter, and its own bounding box (spec §3). Triangles never
// change after mesh load.
type Triangle struct {
	P0, P1, P2 Vec3
	Edge01     Vec3
	Edge02     Vec3
	Normal     Vec3 // unit face normal, right-hand rule on (Edge01, Edge02)
	Vertex     VertexNormal
	D          float64 // plane parameter: Normal . p == D for p on the plane
	Box        AABB
}

// NewTriangle builds a Triangle from three vertices and the per-vertex
// normal basis already resolved by the mesh loader. The face normal is
// recomputed from vertex order per spec §6 rather than trusted from input.
func NewTriangle(p0, p1, p2 Vec3, vn VertexNormal) Triangle {
	edge01 := p1.Sub(p0)
	edge02 := p2.Sub(p0)
	normal, err := edge01.Cross(edge02).Normalize()
	if err != nil {
		// Degenerate (zero-area) triangle: spec §7 says builds accept these
		// and ray tests silently skip them via the determinant gate below.
		normal = Vec3{}
	}
	box := EmptyAABB().Update(p0).Update(p1).Update(p2)
	return Triangle{
		P0: p0, P1: p1, P2: p2,
		Edge01: edge01, Edge02: edge02,
		Normal: normal,
		Vertex: vn,
		D:      normal.Dot(p0),
		Box:    box,
	}
}

// Hit performs the Möller-Trumbore ray/triangle test (spec §4.1). It is
// two-sided: the determinant's sign is ignored beyond the epsilon gate,
// leaving backface culling to the caller/shader. On hit, t is the ray
// parameter and u, v are the barycentric coordinates of P1 and P2.
func (tri Triangle) Hit(r Ray) (t, u, v float64, ok bool) {
	pvec := r.Direction.Cross(tri.Edge02)
	det := tri.Edge01.Dot(pvec)
	if math.Abs(det) < mollerTrumboreEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1 / det

	tvec := r.Origin.Sub(tri.P0)
	u = tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(tri.Edge01)
	v = r.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = tri.Edge02.Dot(qvec) * invDet
	if t <= mollerTrumboreEpsilon {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// InterpolatedNormal returns the unit shading normal at barycentric (u, v).
// Falls back to the flat face normal if the interpolated vector is
// degenerate (e.g. all three vertex normals cancel, which does not happen
// for a well-formed mesh but is guarded defensively here since shading
// callers assume a unit result).
func (tri Triangle) InterpolatedNormal(u, v float64) Vec3 {
	n, err := tri.Vertex.At(u, v).Normalize()
	if err != nil {
		return tri.Normal
	}
	return n
}

// Lift nudges a surface point off the triangle's plane by altitude along
// the face normal, used to avoid self-shadowing after a hit (spec §4.1).
func (tri Triangle) Lift(point Vec3, altitude float64) Vec3 {
	offset := (tri.D - tri.Normal.Dot(point)) + altitude
	return point.Add(tri.Normal.Scale(offset))
}
