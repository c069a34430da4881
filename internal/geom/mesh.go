package geom

// Mesh is an ordered, append-only sequence of triangles. Every other
// entity (kd-tree nodes, hit results) refers to triangles by stable
// integer index into this sequence (spec §3).
type Mesh struct {
	triangles []Triangle
}

// NewMesh wraps a slice of triangles as a Mesh. The slice is taken by
// reference; callers should not mutate it afterward.
func NewMesh(triangles []Triangle) *Mesh {
	return &Mesh{triangles: triangles}
}

// Len returns the number of triangles in the mesh.
func (m *Mesh) Len() int {
	return len(m.triangles)
}

// Triangle returns the triangle at index i.
func (m *Mesh) Triangle(i int) Triangle {
	return m.triangles[i]
}

// Triangles returns the full backing slice, read-only by convention.
func (m *Mesh) Triangles() []Triangle {
	return m.triangles
}

// Bounds returns the AABB enclosing every triangle in the mesh.
func (m *Mesh) Bounds() AABB {
	box := EmptyAABB()
	for _, tri := range m.triangles {
		box = box.Union(tri.Box)
	}
	return box
}
