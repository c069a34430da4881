package kdtree

import (
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/kd3d/pathtrace/internal/geom"
	"golang.org/x/sync/semaphore"
)

// buildCtx carries the read-only triangle backing array through the
// recursive build; nothing in it is mutated once Build starts.
type buildCtx struct {
	triangles []geom.Triangle
	logger    *slog.Logger
}

// axisLists holds the six sorted index lists for a node: for each of the
// three axes, the triangle indices sorted by AABB min and by AABB max.
type axisLists struct {
	byMin [3][]int
	byMax [3][]int
}

func (l axisLists) count() int { return len(l.byMin[0]) }

// node is either a leaf (a small contiguous triangle array) or an
// internal split with exactly two children.
type node struct {
	box      geom.AABB
	isLeaf   bool
	triangles []geom.Triangle

	axis   int
	height float64
	low    *node
	high   *node
}

// subtreeBox unions the AABBs of every triangle referenced by lists.
func subtreeBox(ctx *buildCtx, lists axisLists) geom.AABB {
	box := geom.EmptyAABB()
	for _, idx := range lists.byMin[0] {
		box = box.Union(ctx.triangles[idx].Box)
	}
	return box
}

func leafFrom(ctx *buildCtx, indices []int) *node {
	triangles := make([]geom.Triangle, len(indices))
	for i, idx := range indices {
		triangles[i] = ctx.triangles[idx]
	}
	box := geom.EmptyAABB()
	for _, tri := range triangles {
		box = box.Union(tri.Box)
	}
	return &node{isLeaf: true, triangles: triangles, box: box}
}

// buildNode recursively builds a subtree from the given presorted lists,
// following the reference algorithm: terminate on triangle count or
// depth, else choose a split minimizing max(count_below, count_above),
// partition (duplicating straddlers into both children), and recurse.
// A split that fails to shrink either child below the parent's count is
// abandoned in favor of a leaf (the non-improvement guard).
func buildNode(ctx *buildCtx, lists axisLists, depth int) *node {
	count := lists.count()
	if count <= leafThreshold || depth >= maxDepth {
		return leafFrom(ctx, lists.byMin[0])
	}

	axis, height := chooseSplit(ctx, lists)
	low, high := partition(ctx, lists, axis, height)

	if low.count() == count || high.count() == count {
		ctx.logger.Warn("kdtree: non-improving split, aborting to leaf",
			"depth", depth, "count", count, "axis", axis, "height", height)
		return leafFrom(ctx, lists.byMin[0])
	}

	ctx.logger.Debug("kdtree: split",
		"depth", depth, "axis", axis, "height", height,
		"low_count", low.count(), "high_count", high.count())

	n := &node{
		box:    subtreeBox(ctx, lists),
		axis:   axis,
		height: height,
	}
	n.low = buildNode(ctx, low, depth+1)
	n.high = buildNode(ctx, high, depth+1)
	return n
}

// chooseSplit evaluates, for every axis and every triangle's AABB max on
// that axis as a candidate height, the cost max(count_below, count_above)
// via binary search over the sorted lists, and returns the argmin.
func chooseSplit(ctx *buildCtx, lists axisLists) (axis int, height float64) {
	bestScore := math.Inf(1)
	bestAxis := -1
	var bestHeight float64

	for a := 0; a < 3; a++ {
		for _, idx := range lists.byMin[0] {
			h := ctx.triangles[idx].Box.Max.Component(a)
			below := countBelow(ctx, lists.byMin[a], a, h)
			above := countAbove(ctx, lists.byMax[a], a, h)
			score := below
			if above > score {
				score = above
			}
			if float64(score) < bestScore {
				bestScore = float64(score)
				bestAxis = a
				bestHeight = h
			}
		}
	}
	return bestAxis, bestHeight
}

// countBelow returns the number of triangles in list (sorted ascending by
// AABB min on axis) whose min is <= h.
func countBelow(ctx *buildCtx, list []int, axis int, h float64) int {
	return sort.Search(len(list), func(i int) bool {
		return ctx.triangles[list[i]].Box.Min.Component(axis) > h
	})
}

// countAbove returns the number of triangles in list (sorted ascending by
// AABB max on axis) whose max is > h.
func countAbove(ctx *buildCtx, list []int, axis int, h float64) int {
	idx := sort.Search(len(list), func(i int) bool {
		return ctx.triangles[list[i]].Box.Max.Component(axis) > h
	})
	return len(list) - idx
}

// partition scans the parent's six sorted lists in order, preserving
// sort order, and pushes each triangle into whichever side(s) its AABB
// overlaps on the chosen axis/height. A straddling triangle lands in
// both children; no triangle is ever dropped.
func partition(ctx *buildCtx, lists axisLists, axis int, height float64) (low, high axisLists) {
	overlapsBelow := func(idx int) bool { return ctx.triangles[idx].Box.Min.Component(axis) <= height }
	overlapsAbove := func(idx int) bool { return ctx.triangles[idx].Box.Max.Component(axis) > height }

	for a := 0; a < 3; a++ {
		for _, idx := range lists.byMin[a] {
			if overlapsBelow(idx) {
				low.byMin[a] = append(low.byMin[a], idx)
			}
			if overlapsAbove(idx) {
				high.byMin[a] = append(high.byMin[a], idx)
			}
		}
		for _, idx := range lists.byMax[a] {
			if overlapsBelow(idx) {
				low.byMax[a] = append(low.byMax[a], idx)
			}
			if overlapsAbove(idx) {
				high.byMax[a] = append(high.byMax[a], idx)
			}
		}
	}
	return low, high
}

// buildParallel mirrors buildNode but dispatches children above
// threadedDispatchThreshold triangles to a bounded pool of goroutines
// instead of recursing inline. sem caps how many subtrees build
// concurrently; wg tracks outstanding dispatched work so the top-level
// call can block until the whole tree is done.
func buildParallel(ctx *buildCtx, lists axisLists, depth int, workers int) *node {
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	root := buildParallelNode(ctx, lists, depth, sem, &wg)
	wg.Wait()
	return root
}

func buildParallelNode(ctx *buildCtx, lists axisLists, depth int, sem *semaphore.Weighted, wg *sync.WaitGroup) *node {
	count := lists.count()
	if count <= leafThreshold || depth >= maxDepth {
		return leafFrom(ctx, lists.byMin[0])
	}

	axis, height := chooseSplit(ctx, lists)
	low, high := partition(ctx, lists, axis, height)

	if low.count() == count || high.count() == count {
		ctx.logger.Warn("kdtree: non-improving split, aborting to leaf",
			"depth", depth, "count", count, "axis", axis, "height", height)
		return leafFrom(ctx, lists.byMin[0])
	}

	ctx.logger.Debug("kdtree: split",
		"depth", depth, "axis", axis, "height", height,
		"low_count", low.count(), "high_count", high.count())

	n := &node{
		box:    subtreeBox(ctx, lists),
		axis:   axis,
		height: height,
	}

	dispatch := func(childLists axisLists, dst **node) {
		if childLists.count() <= threadedDispatchThreshold {
			*dst = buildParallelNode(ctx, childLists, depth+1, sem, wg)
			return
		}
		if sem.TryAcquire(1) {
			wg.Add(1)
			go func() {
				defer sem.Release(1)
				defer wg.Done()
				*dst = buildParallelNode(ctx, childLists, depth+1, sem, wg)
			}()
			return
		}
		*dst = buildParallelNode(ctx, childLists, depth+1, sem, wg)
	}

	dispatch(low, &n.low)
	dispatch(high, &n.high)
	return n
}
