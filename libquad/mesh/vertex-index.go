package mesh

import (
	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
)

// VertexIndex returns the discrete curvature index of v in a quad (or pseudo-quad) mesh:
//
//	pole:              1 (interior) or 1/2 (boundary)
//	interior vertex:   (4 - valence) / 4
//	boundary vertex:   (3 - valence) / 4
func VertexIndex(M *Mesh, v goquad.VtxID) (float64, error) {
	if !M.HasVertex(v) {
		return 0, errors.Wrapf(goquad.ErrVtxNotFound, "vertex %d", v)
	}
	if !M.IsQuadMesh() {
		return 0, goquad.ErrNotQuadMesh
	}
	if len(M.Neighbors(v)) == 0 {
		return 0, errors.Wrapf(goquad.ErrIsolatedVertex, "vertex %d", v)
	}

	onBoundary := M.IsVertexOnBoundary(v)
	if M.IsPole(v) {
		if onBoundary {
			return 0.5, nil
		}
		return 1, nil
	}

	regular := 4
	if onBoundary {
		regular = 3
	}
	return float64(regular-M.Valence(v)) / 4, nil
}

// IndexSum returns the sum of VertexIndex over all vertices.
func IndexSum(M *Mesh) (float64, error) {
	sum := 0.0
	for _, v := range M.Vertices() {
		idx, err := VertexIndex(M, v)
		if err != nil {
			return 0, err
		}
		sum += idx
	}
	return sum, nil
}
