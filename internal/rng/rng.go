// Package rng provides the Monte-Carlo sampling primitives the
// integrator needs: uniform draws, unit-sphere points, and
// cosine-weighted hemisphere directions for bounce rays.
package rng

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"

	"github.com/kd3d/pathtrace/internal/geom"
)

// ErrDegenerateSample is returned by UnitSphere in the zero-probability
// case where all three Gaussian draws land on zero.
var ErrDegenerateSample = errors.New("rng: degenerate unit-sphere sample")

const degenerateEpsilon = 1e-12

// Sampler is a private per-integrator random source. It is not safe for
// concurrent use; each worker owns one.
type Sampler struct {
	r *rand.Rand
}

// New returns a Sampler seeded deterministically from seed, so a render
// with a fixed seed is reproducible.
func New(seed uint64) *Sampler {
	return &Sampler{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform sample in [0, 1).
func (s *Sampler) Float64() float64 {
	return s.r.Float64()
}

// UnitSphere draws a uniformly distributed point on the unit sphere by
// normalizing three iid standard normal draws.
func (s *Sampler) UnitSphere() (geom.Vec3, error) {
	v := geom.V3(s.r.NormFloat64(), s.r.NormFloat64(), s.r.NormFloat64())
	if v.LengthSq() < degenerateEpsilon {
		return geom.Vec3{}, ErrDegenerateSample
	}
	return v.MustNormalize(), nil
}

// CosineHemisphere draws a direction from the cosine-weighted hemisphere
// around normal, used to bias bounce rays toward directions that
// contribute more radiance per spec's recursive integration step.
func (s *Sampler) CosineHemisphere(normal geom.Vec3) geom.Vec3 {
	u1 := s.r.Float64()
	u2 := s.r.Float64()
	radius := math.Sqrt(u1)
	theta := 2 * math.Pi * u2

	x := radius * math.Cos(theta)
	y := radius * math.Sin(theta)
	z := math.Sqrt(math.Max(0, 1-u1))

	tangent, bitangent := orthonormalBasis(normal)
	dir := tangent.Scale(x).Add(bitangent.Scale(y)).Add(normal.Scale(z))
	return dir.MustNormalize()
}

// GaussianJitter returns a zero-mean normal sample scaled by stddev, used
// to perturb the lens origin for depth-of-field.
func (s *Sampler) GaussianJitter(stddev float64) float64 {
	return s.r.NormFloat64() * stddev
}

// orthonormalBasis builds an arbitrary tangent frame around a unit
// normal from the world Y axis, switching to the X axis when the normal
// is nearly parallel to Y so the cross product does not degenerate.
func orthonormalBasis(normal geom.Vec3) (tangent, bitangent geom.Vec3) {
	up := geom.V3(0, 1, 0)
	if math.Abs(normal.Dot(up)) > 0.99 {
		up = geom.V3(1, 0, 0)
	}
	tangent = up.Cross(normal).MustNormalize()
	bitangent = normal.Cross(tangent)
	return tangent, bitangent
}
