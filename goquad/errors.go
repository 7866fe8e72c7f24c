package goquad

import "github.com/pkg/errors"

// Errors
var (
	ErrDegenerateFace      = errors.New("face has fewer than 3 distinct vertices")
	ErrInvalidPseudoFace   = errors.New("face is not a valid 4-slot pseudo-quad")
	ErrMissingChildData    = errors.New("missing child data")
	ErrInconsistentDensity = errors.New("opposite boundary edges imply different subdivision counts")
	ErrUnclosedStripWalk   = errors.New("strip walk left the mesh or looped without closing")
	ErrInvalidTargetLength = errors.New("target length must be > 0")
	ErrInvalidDensity      = errors.New("strip density must be >= 1")
	ErrBadVtxID            = errors.New("bad vertex ID")
	ErrVtxNotFound         = errors.New("vertex not found")
	ErrBadFaceID           = errors.New("bad or duplicate face ID")
	ErrFaceNotFound        = errors.New("face not found")
	ErrNonManifoldEdge     = errors.New("half-edge already bounds a face")
	ErrNotQuadMesh         = errors.New("mesh is not a quad mesh")
	ErrIsolatedVertex      = errors.New("vertex has no neighbors")
	ErrStripNotFound       = errors.New("strip not found")
	ErrBadEncoding         = errors.New("bad mesh encoding")
)
