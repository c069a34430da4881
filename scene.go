package pathtrace

// Light is a point light source. The integrator casts a shadow ray
// toward it and applies inverse-square attenuation (spec §4.4).
type Light struct {
	Position Vec3
	Color    Color
}

// Scene bundles the geometry and lighting an integrator needs: the mesh,
// its acceleration structure, and the lights/ambient/background terms
// supplementing the distilled spec (SPEC_FULL.md §C1-C3). It is built
// once and shared read-only across every worker for the engine's
// lifetime (spec §3 "Ownership").
type Scene struct {
	Mesh *Mesh
	Tree *Tree

	Lights     []Light
	Ambient    Color
	Background Color
}

// NewScene builds the acceleration structure over mesh and returns a
// Scene ready to render. A zero-triangle mesh is valid: the builder logs
// a warning and produces an empty tree whose traversal cleanly reports no
// hit (spec §7). NewScene returns ErrNoMesh if mesh is nil and
// ErrTreeBuilding if a build is already in progress elsewhere in the
// process.
func NewScene(mesh *Mesh, lights []Light, ambient, background Color) (*Scene, error) {
	if mesh == nil {
		return nil, ErrNoMesh
	}
	tree, err := BuildTree(mesh.Triangles(), TreeOptions{Logger: Logger()})
	if err != nil {
		return nil, err
	}
	return &Scene{
		Mesh:       mesh,
		Tree:       tree,
		Lights:     lights,
		Ambient:    ambient,
		Background: background,
	}, nil
}
