package pathtrace

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Worker owns one Integrator and one Canvas exclusively (spec §3
// "Ownership"). It is driven by an inbox of pass descriptors; closing
// the inbox is the terminate signal, observed once every
// already-buffered descriptor has drained. IsRunning and CurrentPass
// are read without locking by progress reporters, matching the
// source's lock-free status indicators (spec §3 "Worker state").
type Worker struct {
	id         int
	integrator *Integrator
	canvas     *Canvas
	inbox      chan *Pass

	isRunning atomic.Bool
	current   atomic.Pointer[Pass]
}

// IsRunning reports whether the worker is mid-pass.
func (w *Worker) IsRunning() bool { return w.isRunning.Load() }

// CurrentPass returns the pass the worker is processing, if any.
func (w *Worker) CurrentPass() (Pass, bool) {
	p := w.current.Load()
	if p == nil {
		return Pass{}, false
	}
	return *p, true
}

// Canvas returns the worker's private accumulator, for callers (such as
// scenario S5's brute-summation check) that need to inspect it directly.
func (w *Worker) Canvas() *Canvas { return w.canvas }

func (w *Worker) run(engine *Engine) {
	for msg := range w.inbox {
		w.isRunning.Store(true)
		w.current.Store(msg)
		if err := w.integrator.PerformPass(w.canvas, *msg); err != nil {
			Logger().Warn("pass failed", "worker", w.id, "error", err)
		}
		w.isRunning.Store(false)
		w.current.Store(nil)
		engine.completed.Add(1)
		engine.completionWG.Done()
	}
}

// Engine dispatches pass descriptors to a fixed pool of workers and
// assembles their private canvases into a master canvas (spec §4.5).
type Engine struct {
	width, height         int
	tileWidth, tileHeight int

	workers []*Worker
	master  *Canvas

	issued       atomic.Int64
	completed    atomic.Int64
	completionWG sync.WaitGroup

	nextWorker atomic.Int64
	runWG      sync.WaitGroup
}

// NewEngine builds an Engine with numWorkers private Integrator+Canvas
// pairs, each rendering scene through camera at (width, height) in
// (tileWidth, tileHeight) tiles. Worker i is seeded deterministically
// from i, so a fixed worker count reproduces the same sample sequence
// per worker run to run (spec §1 Non-goals: "deterministic output
// across parallel runs" is explicitly not promised, since tile dispatch
// order and worker scheduling still vary).
func NewEngine(scene *Scene, camera Camera, width, height, tileWidth, tileHeight, numWorkers int) *Engine {
	if numWorkers <= 0 {
		numWorkers = 8
	}
	e := &Engine{
		width:      width,
		height:     height,
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
		workers:    make([]*Worker, numWorkers),
		master:     NewCanvas(width, height),
	}
	for i := 0; i < numWorkers; i++ {
		w := &Worker{
			id:         i,
			integrator: NewIntegrator(scene, camera, uint64(i+1)),
			canvas:     NewCanvas(width, height),
			inbox:      make(chan *Pass, tileWidth*tileHeight),
		}
		e.workers[i] = w
		e.runWG.Add(1)
		go func() {
			defer e.runWG.Done()
			w.run(e)
		}()
	}
	return e
}

// PerformFullPasses enumerates every tile covering the canvas, repeats
// each origin n times, orders the resulting list by squared distance
// from the canvas center so the image fills in from the middle outward,
// and dispatches each as a pass descriptor to workers round-robin.
func (e *Engine) PerformFullPasses(n int) {
	tiles := tileOrigins(e.width, e.height, e.tileWidth, e.tileHeight)
	var passes []Pass
	for _, tile := range tiles {
		for i := 0; i < n; i++ {
			passes = append(passes, tile)
		}
	}
	sort.SliceStable(passes, func(i, j int) bool {
		return centerDistSq(passes[i], e.width, e.height) < centerDistSq(passes[j], e.width, e.height)
	})

	numWorkers := len(e.workers)
	for _, p := range passes {
		pass := p
		idx := e.nextWorker.Add(1) - 1
		e.completionWG.Add(1)
		e.issued.Add(1)
		e.workers[int(idx)%numWorkers].inbox <- &pass
	}
}

// Sync blocks until every pass issued so far has completed.
func (e *Engine) Sync() { e.completionWG.Wait() }

// RebuildMasterCanvas clears the master canvas and sums every worker's
// canvas into it. Called mid-render this tolerates small numeric drift
// against concurrently-writing workers (an accepted live-preview
// trade-off, spec §4.5); called after Sync it is exact.
func (e *Engine) RebuildMasterCanvas() {
	e.master.Clear()
	for _, w := range e.workers {
		e.master.Add(w.canvas)
	}
}

// MasterCanvas returns the engine's assembled canvas.
func (e *Engine) MasterCanvas() *Canvas { return e.master }

// Workers returns the engine's worker list, for progress reporters.
func (e *Engine) Workers() []*Worker { return e.workers }

// TotalPassesIssued returns the monotonic count of passes dispatched.
func (e *Engine) TotalPassesIssued() int64 { return e.issued.Load() }

// TotalPassesCompleted returns the monotonic count of passes finished.
func (e *Engine) TotalPassesCompleted() int64 { return e.completed.Load() }

// RunProgressive reissues all tiles chunk samples at a time until
// totalSamples have been rendered, syncing and invoking onBatch with the
// rebuilt master canvas after each chunk (SPEC_FULL.md supplemented
// feature: progressive re-issue semantics, spec §6 --progressive).
func (e *Engine) RunProgressive(totalSamples, chunk int, onBatch func(*Canvas)) {
	if chunk <= 0 {
		chunk = 1
	}
	for done := 0; done < totalSamples; done += chunk {
		n := chunk
		if done+n > totalSamples {
			n = totalSamples - done
		}
		e.PerformFullPasses(n)
		e.Sync()
		e.RebuildMasterCanvas()
		if onBatch != nil {
			onBatch(e.master)
		}
	}
}

// Terminate closes every worker's inbox and then waits for every worker
// goroutine to exit. Already-buffered passes still drain and post their
// completions — closing a channel doesn't discard what's already queued
// on it — so when Terminate returns every issued pass has completed and
// a later Sync returns at once. A PerformFullPasses call after Terminate
// panics sending on a closed inbox.
// This is the primitive spec scenario S6 exercises directly. Terminate
// is safe to call once; a second call panics closing an already-closed
// channel, the same contract most channel-based pools carry.
func (e *Engine) Terminate() {
	for _, w := range e.workers {
		close(w.inbox)
	}
	e.runWG.Wait()
}

// Close is the graceful teardown path: sync outstanding work, then
// terminate every worker. Matches the source's "must sync before
// destroying the semaphore."
func (e *Engine) Close() {
	e.Sync()
	e.Terminate()
}
