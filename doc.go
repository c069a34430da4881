// Package pathtrace implements a Monte Carlo path-tracing renderer over a
// triangular mesh loaded from binary STL.
//
// # Overview
//
// A [Scene] couples a [Mesh] with a kd-tree acceleration structure
// (package internal/kdtree) built over its triangles. An [Engine] dispatches
// rectangular tiles of an output image to a pool of worker goroutines, each
// holding its own [Integrator] and [Canvas]; the integrator traces one or
// more paths per pixel through the scene's kd-tree and accumulates radiance
// samples. The engine periodically sums all worker canvases into a master
// canvas, which can be tonemapped and written out as PNG.
//
// # Quick start
//
//	mesh, err := pathtrace.LoadSTL("model.stl")
//	scene, err := pathtrace.NewScene(mesh, lights, ambient, background)
//	cam := pathtrace.NewLookAtCamera(eye, target, up, fieldOfView)
//	eng := pathtrace.NewEngine(scene, cam, 800, 600, 32, 32, 0)
//	eng.PerformFullPasses(16)
//	eng.Sync()
//	eng.RebuildMasterCanvas()
//	eng.MasterCanvas().SavePNG("out.png")
//
// # Architecture
//
// The library is organized as:
//   - Geometry primitives (Vec3, Ray, AABB, Triangle) at the package root.
//   - internal/kdtree: the spatial acceleration structure — build and traverse.
//   - internal/rng: sampling helpers used by the integrator.
//   - Integrator, Engine, Canvas: the per-pixel sampler and parallel render
//     engine that drives it.
//
// # Concurrency
//
// See [Engine] and [NewEngine] for the worker/dispatch model. The kd-tree
// builder has its own optional parallel mode; see internal/kdtree.
package pathtrace
