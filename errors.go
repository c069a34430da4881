package pathtrace

import (
	"errors"

	"github.com/kd3d/pathtrace/internal/geom"
	"github.com/kd3d/pathtrace/internal/kdtree"
	"github.com/kd3d/pathtrace/internal/rng"
)

// Sentinel errors callers can branch on with errors.Is. See spec §7.
var (
	// ErrNoMesh is returned when an STL file could not be read or decoded.
	ErrNoMesh = errors.New("pathtrace: no mesh (input not readable or malformed)")

	// ErrTreeBuilding is kdtree.ErrBuildInProgress, re-exported so callers
	// don't need to import the internal package to check it. A process
	// may only build one kd-tree at a time.
	ErrTreeBuilding = kdtree.ErrBuildInProgress

	// ErrDegenerateNormalize is geom.ErrDegenerateNormalize, re-exported so
	// callers don't need to import the internal package to check it.
	ErrDegenerateNormalize = geom.ErrDegenerateNormalize

	// ErrDegenerateSample is rng.ErrDegenerateSample, re-exported so
	// callers don't need to import the internal package to check it.
	ErrDegenerateSample = rng.ErrDegenerateSample
)
