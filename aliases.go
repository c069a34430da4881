package pathtrace

import (
	"github.com/kd3d/pathtrace/internal/geom"
	"github.com/kd3d/pathtrace/internal/kdtree"
)

// Geometry primitives (spec §3) live in internal/geom so internal/kdtree
// can depend on them without importing this package. These aliases keep
// the public API flat: callers write pathtrace.Vec3, not geom.Vec3.
type (
	Vec3         = geom.Vec3
	Ray          = geom.Ray
	CastingRay   = geom.CastingRay
	AABB         = geom.AABB
	Triangle     = geom.Triangle
	VertexNormal = geom.VertexNormal
	Mesh         = geom.Mesh

	// Tree is the kd-tree acceleration structure over a Mesh's triangles.
	Tree = kdtree.Tree
	// TreeHit is the result of a successful Tree.TestRay.
	TreeHit = kdtree.Hit
	// TreeOptions configures Build.
	TreeOptions = kdtree.Options
	// TreeStats summarizes a built Tree's shape, from Tree.Stats.
	TreeStats = kdtree.Stats
)

var (
	V3            = geom.V3
	NewRay        = geom.NewRay
	NewCastingRay = geom.NewCastingRay
	NewAABB       = geom.NewAABB
	EmptyAABB     = geom.EmptyAABB
	NewTriangle   = geom.NewTriangle
	NewMesh       = geom.NewMesh

	// BuildTree builds a kd-tree over triangles. It returns
	// ErrTreeBuilding if another build is already in progress.
	BuildTree = kdtree.Build
)
