package pathtrace

import (
	"math"
	"time"

	"github.com/kd3d/pathtrace/internal/rng"
)

// liftAltitude is the default distance a shadow/bounce ray's origin is
// nudged off the hit triangle's plane, to avoid immediately
// re-intersecting the surface it just left.
const liftAltitude = 1e-4

// Shading constants for the one representative model the spec asks the
// integrator to exercise (diffuse + Phong specular); neither is a
// physically-based material system (spec §1 Non-goals).
const (
	specularShininess = 32.0
	specularStrength  = 0.3
	bounceWeight      = 0.8
)

// Integrator produces color samples for pixels against a Scene through a
// Camera. Each worker owns one exclusively, along with its own Canvas
// (spec §3 "Worker state"); all RNG draws go through its private
// sampler, so no two integrators share random state.
type Integrator struct {
	Scene  *Scene
	Camera Camera
	RNG    *rng.Sampler

	// Recursions bounds the bounce depth; default 4 per spec §4.4.
	Recursions int
	// Branches is the number of cosine-weighted bounce samples summed
	// at each recursion level; default 1.
	Branches int
}

// NewIntegrator returns an Integrator with the spec's default recursion
// depth and branch count, seeded deterministically from seed.
func NewIntegrator(scene *Scene, camera Camera, seed uint64) *Integrator {
	return &Integrator{
		Scene:      scene,
		Camera:     camera,
		RNG:        rng.New(seed),
		Recursions: 4,
		Branches:   1,
	}
}

// PerformPass samples every pixel in desc (clamped to canvas) once,
// accumulating into canvas. The camera basis is derived once per pass,
// not per pixel, per spec §4.4; a degenerate basis (camera direction
// parallel to its up vector) is propagated to the caller rather than
// silently producing garbage samples (spec §7).
func (ig *Integrator) PerformPass(canvas *Canvas, desc Pass) error {
	start := time.Now()
	clamped := desc.Clamp(canvas.Width, canvas.Height)

	b, err := ig.Camera.Basis()
	if err != nil {
		return err
	}

	for y := clamped.StartY; y < clamped.StartY+clamped.Height; y++ {
		for x := clamped.StartX; x < clamped.StartX+clamped.Width; x++ {
			sample := ig.samplePixel(b, x, y, canvas.Width, canvas.Height)
			canvas.Accumulate(x, y, sample)
		}
	}

	Logger().Debug("pass complete",
		"start_x", clamped.StartX, "start_y", clamped.StartY,
		"width", clamped.Width, "height", clamped.Height,
		"duration", time.Since(start))
	return nil
}

func (ig *Integrator) samplePixel(b basis, x, y, width, height int) Color {
	u, v := aspectCorrectedNDC(x, y, width, height)
	sf := &samplerFunc{gaussian: ig.RNG.GaussianJitter}
	ray := ig.Camera.Ray(b, u, v, sf)
	return ig.integrate(ray, 0)
}

// integrate traces one path: find the nearest hit, shade it directly
// against every light, then recurse through a cosine-weighted bounce up
// to Recursions deep. A miss returns the scene's background color.
func (ig *Integrator) integrate(ray Ray, depth int) Color {
	hit, ok := ig.Scene.Tree.TestRay(ray)
	if !ok {
		return ig.Scene.Background
	}

	tri := hit.Triangle
	point := ray.At(hit.T)
	normal := tri.InterpolatedNormal(hit.U, hit.V)
	lifted := tri.Lift(point, liftAltitude)

	color := ig.Scene.Ambient
	for _, light := range ig.Scene.Lights {
		color = color.Add(ig.directLight(lifted, normal, ray, light))
	}

	if depth < ig.Recursions && ig.Branches > 0 {
		for i := 0; i < ig.Branches; i++ {
			bounceDir := ig.RNG.CosineHemisphere(normal)
			bounceRay := NewRay(lifted, bounceDir)
			bounce := ig.integrate(bounceRay, depth+1)
			color = color.Add(bounce.Scale(bounceWeight / float64(ig.Branches)))
		}
	}
	return color
}

// directLight applies an inverse-square-attenuated diffuse + Phong term
// for a single light, if the shading point isn't occluded.
func (ig *Integrator) directLight(point, normal Vec3, viewRay Ray, light Light) Color {
	toLight := light.Position.Sub(point)
	distance := toLight.Length()
	dir, err := toLight.Normalize()
	if err != nil {
		return Black
	}

	shadowRay := NewRay(point, dir)
	if hit, ok := ig.Scene.Tree.TestRay(shadowRay); ok && hit.T < distance {
		return Black
	}

	nDotL := normal.Dot(dir)
	if nDotL <= 0 {
		return Black
	}
	attenuation := 1 / (distance * distance)

	diffuse := light.Color.Scale(nDotL * attenuation)

	reflect := normal.Scale(2 * nDotL).Sub(dir)
	viewDir := viewRay.Direction.Neg()
	specAngle := math.Max(reflect.Dot(viewDir), 0)
	spec := light.Color.Scale(math.Pow(specAngle, specularShininess) * attenuation * specularStrength)

	return diffuse.Add(spec)
}
