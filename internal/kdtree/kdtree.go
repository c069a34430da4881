// Package kdtree builds and traverses a k-d tree acceleration structure
// over a fixed set of triangles, for fast ray/mesh intersection.
package kdtree

import (
	"errors"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/kd3d/pathtrace/internal/geom"
)

// Tuning constants from the reference builder.
const (
	leafThreshold             = 8
	maxDepth                  = 19
	threadedDispatchThreshold = 16
)

// ErrBuildInProgress is returned by Build when a build is already running
// in this process. Only one tree may be under construction at a time.
var ErrBuildInProgress = errors.New("kdtree: build already in progress")

var building atomic.Bool

// Tree is an immutable acceleration structure over a triangle slice. The
// triangle slice backing a Tree must not be mutated after Build returns.
type Tree struct {
	root          *node
	triangles     []geom.Triangle
	raysCast      atomic.Int64
	triangleTests atomic.Int64
}

// Hit is the result of a successful ray/tree intersection.
type Hit struct {
	T        float64
	U, V     float64
	Triangle geom.Triangle
}

// Options configures a Build call.
type Options struct {
	// Parallel enables the worker-pool build path for subtrees above
	// threadedDispatchThreshold triangles. Small meshes always build
	// inline regardless of this flag.
	Parallel bool
	// Workers bounds how many subtrees may build concurrently. Zero
	// means the build runs entirely inline even if Parallel is set.
	Workers int
	// Logger receives per-node split decisions (Debug), non-improvement
	// aborts to a leaf (Warn), and a build summary (Info). Nil discards
	// all of it.
	Logger *slog.Logger
}

// Build constructs a Tree over triangles. It returns ErrBuildInProgress if
// another Build call is already running in this process. A zero-triangle
// input is valid: Build logs a warning and returns a Tree whose traversal
// cleanly reports no hit for every ray.
func Build(triangles []geom.Triangle, opts Options) (*Tree, error) {
	if !building.CompareAndSwap(false, true) {
		return nil, ErrBuildInProgress
	}
	defer building.Store(false)

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(triangles) == 0 {
		logger.Warn("kdtree: building over zero triangles")
	}

	ctx := &buildCtx{triangles: triangles, logger: logger}
	lists := initialLists(triangles)
	start := time.Now()

	t := &Tree{triangles: triangles}
	if opts.Parallel && opts.Workers > 1 {
		t.root = buildParallel(ctx, lists, 0, opts.Workers)
	} else {
		t.root = buildNode(ctx, lists, 0)
	}

	stats := t.Stats()
	logger.Info("kdtree: build complete",
		"node_count", stats.NodeCount, "leaf_count", stats.LeafCount,
		"max_depth", stats.MaxDepth, "biggest_leaf", stats.BiggestLeaf,
		"duration", time.Since(start))
	return t, nil
}

// initialLists produces the six presorted index lists (by-min and by-max,
// for each of the three axes) that seed the recursive build.
func initialLists(triangles []geom.Triangle) axisLists {
	var lists axisLists
	for axis := 0; axis < 3; axis++ {
		byMin := make([]int, len(triangles))
		byMax := make([]int, len(triangles))
		for i := range triangles {
			byMin[i] = i
			byMax[i] = i
		}
		sort.Slice(byMin, func(i, j int) bool {
			return triangles[byMin[i]].Box.Min.Component(axis) < triangles[byMin[j]].Box.Min.Component(axis)
		})
		sort.Slice(byMax, func(i, j int) bool {
			return triangles[byMax[i]].Box.Max.Component(axis) < triangles[byMax[j]].Box.Max.Component(axis)
		})
		lists.byMin[axis] = byMin
		lists.byMax[axis] = byMax
	}
	return lists
}

// Stats summarizes the shape of a built tree, mirroring the reference
// builder's get_stats(deepest_depth, biggest_set).
type Stats struct {
	NodeCount   int
	LeafCount   int
	MaxDepth    int
	BiggestLeaf int
}

// Stats walks the tree and reports its shape. It is safe to call at any
// time after Build returns; the tree is immutable.
func (t *Tree) Stats() Stats {
	var s Stats
	if t.root != nil {
		t.root.stats(0, &s)
	}
	return s
}

func (n *node) stats(depth int, s *Stats) {
	s.NodeCount++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	if n.isLeaf {
		s.LeafCount++
		if len(n.triangles) > s.BiggestLeaf {
			s.BiggestLeaf = len(n.triangles)
		}
		return
	}
	n.low.stats(depth+1, s)
	n.high.stats(depth+1, s)
}

// RaysCast reports how many top-level TestRay calls this tree has served.
func (t *Tree) RaysCast() int64 { return t.raysCast.Load() }

// TriangleTests reports how many individual triangle intersection tests
// this tree has performed across all TestRay calls.
func (t *Tree) TriangleTests() int64 { return t.triangleTests.Load() }

// TestRay finds the closest intersection of r with the tree's triangles,
// if any.
func (t *Tree) TestRay(r geom.Ray) (Hit, bool) {
	t.raysCast.Add(1)
	if t.root == nil {
		return Hit{}, false
	}
	cr := geom.NewCastingRay(r)
	return t.root.testRay(t, r, cr)
}
