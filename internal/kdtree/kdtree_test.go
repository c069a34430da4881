package kdtree

import (
	"bytes"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/kd3d/pathtrace/internal/geom"
)

func mustTriangle(t *testing.T, p0, p1, p2 geom.Vec3) geom.Triangle {
	t.Helper()
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	n, err := e1.Cross(e2).Normalize()
	if err != nil {
		t.Fatalf("degenerate triangle: %v", err)
	}
	return geom.NewTriangle(p0, p1, p2, geom.VertexNormal{Base: n, U: geom.Vec3{}, V: geom.Vec3{}})
}

func bruteForce(triangles []geom.Triangle, r geom.Ray) (Hit, bool) {
	best := Hit{}
	found := false
	for _, tri := range triangles {
		ti, u, v, ok := tri.Hit(r)
		if ok && (!found || ti < best.T) {
			best = Hit{T: ti, U: u, V: v, Triangle: tri}
			found = true
		}
	}
	return best, found
}

// TestBuildMiss is scenario S4: a ray that hits none of the tree's
// triangles, against a single in-view triangle (scenario S1's mesh).
func TestBuildMiss(t *testing.T) {
	tri := mustTriangle(t, geom.V3(-1, -1, 0), geom.V3(1, -1, 0), geom.V3(0, 1, 0))
	tree, err := Build([]geom.Triangle{tri}, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	r := geom.NewRay(geom.V3(10, 10, 10), geom.V3(1, 0, 0))
	if _, ok := tree.TestRay(r); ok {
		t.Error("TestRay() hit, want miss")
	}
	if got := tree.RaysCast(); got != 1 {
		t.Errorf("RaysCast() = %d, want 1", got)
	}
}

// TestBuildSingleTriangleHit is scenario S1.
func TestBuildSingleTriangleHit(t *testing.T) {
	tri := mustTriangle(t, geom.V3(-1, -1, 0), geom.V3(1, -1, 0), geom.V3(0, 1, 0))
	tree, err := Build([]geom.Triangle{tri}, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	r := geom.NewRay(geom.V3(0, 0, 1), geom.V3(0, 0, -1))
	hit, ok := tree.TestRay(r)
	if !ok {
		t.Fatal("TestRay() missed, want hit")
	}
	if diff := hit.T - 1.0; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("T = %v, want ~1.0", hit.T)
	}
}

// TestStraddlerAppearsOnBothSides is scenario S3: pad a mesh past
// LEAF_THRESHOLD so the builder must split, add one triangle that spans
// the chosen split plane, confirm it is stored under both children of the
// root split, and confirm tree traversal agrees with a brute-force linear
// scan on the single best t, with the straddler never double-counted.
func TestStraddlerAppearsOnBothSides(t *testing.T) {
	var triangles []geom.Triangle
	// Pad past LEAF_THRESHOLD so the builder is forced to split, using
	// small triangles far from the ray so they never register a hit.
	for i := 0; i < 20; i++ {
		x := float64(i) * 100
		triangles = append(triangles, mustTriangle(t,
			geom.V3(x, 100, 100), geom.V3(x+1, 100, 100), geom.V3(x, 101, 100)))
	}
	// The straddler: a triangle spanning x=-5..2000, across every
	// padding triangle, so it straddles whatever split height the builder
	// picks along x among the padding.
	straddler := mustTriangle(t, geom.V3(-5, -1, 0), geom.V3(2000, -1, 0), geom.V3(0, 1, 0))
	triangles = append(triangles, straddler)

	tree, err := Build(triangles, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var stores func(n *node) bool
	stores = func(n *node) bool {
		if n.isLeaf {
			for _, tri := range n.triangles {
				if tri == straddler {
					return true
				}
			}
			return false
		}
		return stores(n.low) || stores(n.high)
	}
	if tree.root.isLeaf {
		t.Fatal("root is a leaf, want a split")
	}
	if !stores(tree.root.low) || !stores(tree.root.high) {
		t.Error("straddler not stored under both children of the root split")
	}

	r := geom.NewRay(geom.V3(0, 0, 1), geom.V3(0, 0, -1))
	treeHit, treeOK := tree.TestRay(r)
	bruteHit, bruteOK := bruteForce(triangles, r)

	if treeOK != bruteOK {
		t.Fatalf("tree hit = %v, brute hit = %v", treeOK, bruteOK)
	}
	if !treeOK {
		t.Fatal("expected a hit on the straddler")
	}
	if diff := treeHit.T - bruteHit.T; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("tree t = %v, brute t = %v, disagree", treeHit.T, bruteHit.T)
	}
}

// TestBuildAgreesWithBruteForceRandomMesh throws many random rays at a
// mesh large enough to force several levels of splitting and checks tree
// traversal always agrees with a brute-force scan.
func TestBuildAgreesWithBruteForceRandomMesh(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var triangles []geom.Triangle
	for i := 0; i < 500; i++ {
		cx := rng.Float64()*20 - 10
		cy := rng.Float64()*20 - 10
		cz := rng.Float64()*20 - 10
		triangles = append(triangles, mustTriangle(t,
			geom.V3(cx, cy, cz),
			geom.V3(cx+1, cy, cz),
			geom.V3(cx, cy+1, cz+0.3)))
	}
	tree, err := Build(triangles, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for i := 0; i < 200; i++ {
		origin := geom.V3(rng.Float64()*40-20, rng.Float64()*40-20, rng.Float64()*40-20)
		dir := geom.V3(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1)
		r := geom.NewRay(origin, dir)

		treeHit, treeOK := tree.TestRay(r)
		bruteHit, bruteOK := bruteForce(triangles, r)
		if treeOK != bruteOK {
			t.Fatalf("ray %d: tree hit = %v, brute hit = %v", i, treeOK, bruteOK)
		}
		if treeOK && (treeHit.T-bruteHit.T > 1e-6 || treeHit.T-bruteHit.T < -1e-6) {
			t.Fatalf("ray %d: tree t = %v, brute t = %v, disagree", i, treeHit.T, bruteHit.T)
		}
	}
}

func TestBuildReentrancyGuard(t *testing.T) {
	building.Store(true)
	defer building.Store(false)

	tri := mustTriangle(t, geom.V3(-1, -1, 0), geom.V3(1, -1, 0), geom.V3(0, 1, 0))
	_, err := Build([]geom.Triangle{tri}, Options{})
	if err != ErrBuildInProgress {
		t.Errorf("Build() error = %v, want ErrBuildInProgress", err)
	}
}

func TestBuildEmptyMeshMisses(t *testing.T) {
	tree, err := Build(nil, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	r := geom.NewRay(geom.V3(0, 0, 1), geom.V3(0, 0, -1))
	if _, ok := tree.TestRay(r); ok {
		t.Error("TestRay() on empty tree hit, want miss")
	}
}

// TestStatsReportsLeafForEmptyMesh covers the zero-triangle case: Build
// still produces a single leaf node, so Stats reports one node, one leaf,
// depth zero, and an empty biggest leaf.
func TestStatsReportsLeafForEmptyMesh(t *testing.T) {
	tree, err := Build(nil, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	stats := tree.Stats()
	if stats.NodeCount != 1 || stats.LeafCount != 1 || stats.MaxDepth != 0 || stats.BiggestLeaf != 0 {
		t.Errorf("Stats() = %+v, want {NodeCount:1 LeafCount:1 MaxDepth:0 BiggestLeaf:0}", stats)
	}
}

// TestStatsOnSplitMesh confirms Stats reports more than one node and a
// nonzero max depth once the builder is forced to split.
func TestStatsOnSplitMesh(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	var triangles []geom.Triangle
	for i := 0; i < 500; i++ {
		cx := rng.Float64()*20 - 10
		cy := rng.Float64()*20 - 10
		cz := rng.Float64()*20 - 10
		triangles = append(triangles, mustTriangle(t,
			geom.V3(cx, cy, cz), geom.V3(cx+1, cy, cz), geom.V3(cx, cy+1, cz+0.3)))
	}
	tree, err := Build(triangles, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	stats := tree.Stats()
	if stats.NodeCount <= 1 {
		t.Errorf("NodeCount = %d, want > 1 for a mesh that forces splitting", stats.NodeCount)
	}
	if stats.MaxDepth == 0 {
		t.Error("MaxDepth = 0, want > 0 for a mesh that forces splitting")
	}
	if stats.LeafCount == 0 {
		t.Error("LeafCount = 0, want > 0")
	}
}

// TestBuildLogsThroughOptionsLogger confirms Build logs the build summary
// (and, for a zero-triangle mesh, a warning) through whatever logger
// Options.Logger supplies, so a caller building a Scene sees builder logs
// through the same sink as the rest of the package (spec §7, SPEC_FULL
// §A.1).
func TestBuildLogsThroughOptionsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Build(nil, Options{Logger: logger})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "building over zero triangles") {
		t.Errorf("log output missing zero-triangle warning:\n%s", out)
	}
	if !strings.Contains(out, "build complete") {
		t.Errorf("log output missing build summary:\n%s", out)
	}
}

// TestBuildLogsSplitDecisions confirms the Debug split log fires once the
// builder actually performs a split.
func TestBuildLogsSplitDecisions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rng := rand.New(rand.NewSource(5))
	var triangles []geom.Triangle
	for i := 0; i < 500; i++ {
		cx := rng.Float64()*20 - 10
		cy := rng.Float64()*20 - 10
		cz := rng.Float64()*20 - 10
		triangles = append(triangles, mustTriangle(t,
			geom.V3(cx, cy, cz), geom.V3(cx+1, cy, cz), geom.V3(cx, cy+1, cz+0.3)))
	}
	if _, err := Build(triangles, Options{Logger: logger}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !strings.Contains(buf.String(), "kdtree: split") {
		t.Errorf("log output missing split decisions:\n%s", buf.String())
	}
}

func TestParallelBuildAgreesWithSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	var triangles []geom.Triangle
	for i := 0; i < 300; i++ {
		cx := rng.Float64()*20 - 10
		cy := rng.Float64()*20 - 10
		cz := rng.Float64()*20 - 10
		triangles = append(triangles, mustTriangle(t,
			geom.V3(cx, cy, cz),
			geom.V3(cx+1, cy, cz),
			geom.V3(cx, cy+1, cz+0.3)))
	}

	serial, err := Build(triangles, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	parallel, err := Build(triangles, Options{Parallel: true, Workers: 4})
	if err != nil {
		t.Fatalf("Build(parallel) error = %v", err)
	}

	for i := 0; i < 50; i++ {
		origin := geom.V3(rng.Float64()*40-20, rng.Float64()*40-20, rng.Float64()*40-20)
		dir := geom.V3(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1)
		r := geom.NewRay(origin, dir)

		sHit, sOK := serial.TestRay(r)
		pHit, pOK := parallel.TestRay(r)
		if sOK != pOK {
			t.Fatalf("ray %d: serial hit = %v, parallel hit = %v", i, sOK, pOK)
		}
		if sOK && (sHit.T-pHit.T > 1e-9 || sHit.T-pHit.T < -1e-9) {
			t.Fatalf("ray %d: serial t = %v, parallel t = %v, disagree", i, sHit.T, pHit.T)
		}
	}
}

func benchmarkMesh(seed int64, n int) []geom.Triangle {
	rng := rand.New(rand.NewSource(seed))
	triangles := make([]geom.Triangle, 0, n)
	for i := 0; i < n; i++ {
		cx := rng.Float64()*200 - 100
		cy := rng.Float64()*200 - 100
		cz := rng.Float64()*200 - 100
		e1 := geom.V3(cx+1, cy, cz).Sub(geom.V3(cx, cy, cz))
		e2 := geom.V3(cx, cy+1, cz+0.3).Sub(geom.V3(cx, cy, cz))
		n, _ := e1.Cross(e2).Normalize()
		triangles = append(triangles, geom.NewTriangle(
			geom.V3(cx, cy, cz), geom.V3(cx+1, cy, cz), geom.V3(cx, cy+1, cz+0.3),
			geom.VertexNormal{Base: n}))
	}
	return triangles
}

// BenchmarkTestRayVsBruteForce compares tree traversal against a linear
// scan over the same mesh, the payoff the kd-tree exists to deliver.
func BenchmarkTestRayVsBruteForce(b *testing.B) {
	triangles := benchmarkMesh(3, 5000)
	tree, err := Build(triangles, Options{})
	if err != nil {
		b.Fatalf("Build() error = %v", err)
	}
	r := geom.NewRay(geom.V3(0, 0, 300), geom.V3(0, 0, -1))

	b.Run("Tree", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			tree.TestRay(r)
		}
	})
	b.Run("BruteForce", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			bruteForce(triangles, r)
		}
	})
}

func TestTriangleTestsCounterIncrements(t *testing.T) {
	tri := mustTriangle(t, geom.V3(-1, -1, 0), geom.V3(1, -1, 0), geom.V3(0, 1, 0))
	tree, err := Build([]geom.Triangle{tri}, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	r := geom.NewRay(geom.V3(0, 0, 1), geom.V3(0, 0, -1))
	tree.TestRay(r)
	if tree.TriangleTests() == 0 {
		t.Error("TriangleTests() = 0, want > 0 after hitting the single leaf")
	}
}
