package pathtrace

import "math"

// Camera holds the parameters needed to derive a per-pass basis and emit
// sample rays through a thin lens (spec §4.4).
type Camera struct {
	Origin Vec3
	Dir    Vec3 // forward direction, not required to be normalized
	Up     Vec3 // approximate up hint; re-orthogonalized each pass

	// FieldOfView is the half-width of the image plane in world units at
	// unit distance along Dir.
	FieldOfView float64

	// DOFAperture is the standard deviation of the thin-lens jitter; 0
	// disables depth of field.
	DOFAperture float64
	// DOFDistance is the distance along Dir at which the lens is in
	// sharp focus.
	DOFDistance float64
}

// NewLookAtCamera builds a Camera aimed from eye toward target, using
// upHint to resolve roll around the view direction. This supplements the
// raw (origin, dir, up) constructor with the more common look-at framing.
func NewLookAtCamera(eye, target, upHint Vec3, fieldOfView float64) Camera {
	return Camera{
		Origin:      eye,
		Dir:         target.Sub(eye),
		Up:          upHint,
		FieldOfView: fieldOfView,
		DOFDistance: target.Sub(eye).Length(),
	}
}

// basis is the camera's orthonormal frame for one render pass: forward,
// right, and up. Re-derived every pass per spec §4.4 rather than cached,
// so a camera can be animated between passes without invalidating state.
type basis struct {
	forward, right, up Vec3
}

// Basis derives the camera's orthonormal frame. A direction parallel to
// Up yields a degenerate cross product; Normalize propagates that as
// ErrDegenerateNormalize rather than silently returning garbage (spec §7:
// "degenerate camera basis ... propagated as NaN from the normalize").
func (c Camera) Basis() (basis, error) {
	forward, err := c.Dir.Normalize()
	if err != nil {
		return basis{}, err
	}
	right, err := forward.Cross(c.Up).Normalize()
	if err != nil {
		return basis{}, err
	}
	up := right.Cross(forward)
	return basis{forward: forward, right: right, up: up}, nil
}

// Ray computes the primary ray for image-plane offset (u, v) — normalized
// device coordinates, already aspect-corrected by the caller —
// and an optional thin-lens jitter sampled by s. A nil s disables depth
// of field regardless of DOFAperture.
func (c Camera) Ray(b basis, u, v float64, s *samplerFunc) Ray {
	dir := b.forward.
		Add(b.right.Scale(u * c.FieldOfView)).
		Add(b.up.Scale(v * c.FieldOfView))

	origin := c.Origin
	if s != nil && c.DOFAperture > 0 && c.DOFDistance > 0 {
		jx := s.gaussian(c.DOFAperture)
		jy := s.gaussian(c.DOFAperture)
		origin = origin.Add(b.right.Scale(jx)).Add(b.up.Scale(jy))
		dir = dir.Sub(b.right.Scale(jx / c.DOFDistance)).Sub(b.up.Scale(jy / c.DOFDistance))
	}
	return NewRay(origin, dir)
}

// samplerFunc adapts *rng.Sampler's GaussianJitter to a narrow interface
// so camera.go doesn't need to import the internal rng package directly;
// integrator.go supplies the concrete closure.
type samplerFunc struct {
	gaussian func(stddev float64) float64
}

// aspectCorrectedNDC converts a pixel coordinate to normalized device
// coordinates: v in [-1, 1], inverting y (image rows grow downward; camera
// space grows up), and u in [-aspect, aspect], scaled by width/height so
// square pixels on a non-square canvas aren't stretched.
func aspectCorrectedNDC(x, y, width, height int) (u, v float64) {
	aspect := float64(width) / float64(height)
	u = (2*(float64(x)+0.5)/float64(width) - 1) * aspect
	v = 1 - 2*(float64(y)+0.5)/float64(height)
	return u, v
}

// degreesToRadians is a small helper used when a camera is configured
// from a CLI angle in degrees (spec §6 --angle).
func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
