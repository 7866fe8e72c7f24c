package coarse

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/2x3systems/quadpattern/goquad"
	"github.com/2x3systems/quadpattern/libquad/mesh"
	"github.com/2x3systems/quadpattern/libquad/strip"
)

// StripData holds the per-strip attributes of a CoarseQuadMesh.
type StripData struct {
	Density int // number of dense subdivisions across the strip, >= 1
}

// CoarseQuadMesh is a quad mesh whose strips carry a density and whose elements map to the
// dense mesh they were derived from (or densified into).
type CoarseQuadMesh struct {
	*strip.QuadMesh
	Provenance

	opts      goquad.Opts
	stripData map[goquad.StripID]*StripData
	dense     *strip.QuadMesh
}

// New returns an empty CoarseQuadMesh.
func New(opts goquad.Opts) *CoarseQuadMesh {
	return &CoarseQuadMesh{
		QuadMesh:   strip.NewQuadMesh(mesh.NewPseudoQuad()),
		Provenance: newProvenance(),
		opts:       opts.Normalize(),
		stripData:  make(map[goquad.StripID]*StripData),
	}
}

// FromIndexedFaceSet builds a CoarseQuadMesh with no child data and every strip density set to 1.
func FromIndexedFaceSet(ifs *goquad.IndexedFaceSet, opts goquad.Opts) (*CoarseQuadMesh, error) {
	return FromIndexedFaceSetWithPoles(ifs, nil, opts)
}

// FromIndexedFaceSetWithPoles is FromIndexedFaceSet for a set of quads and triangles, where each triangle
// touching one of the given poles (within opts.PoleTolerance) becomes a pseudo-quad.
func FromIndexedFaceSetWithPoles(ifs *goquad.IndexedFaceSet, poles []r3.Vector, opts goquad.Opts) (*CoarseQuadMesh, error) {
	cm := New(opts)
	Q, err := strip.FromIndexedFaceSetWithPoles(ifs, poles, cm.opts.PoleTolerance)
	if err != nil {
		return nil, err
	}
	cm.QuadMesh = Q
	if err = cm.InitStripDensity(); err != nil {
		return nil, err
	}
	return cm, nil
}

// FromQuadMesh abstracts a dense quad mesh into a CoarseQuadMesh.
//
// Coarse vertices are the endpoints of the dense singularity polyedges (keeping their dense ids), coarse
// edges are the polyedges, and coarse faces are the patches of dense faces they enclose.  Each strip's
// density is the number of dense segments along its edges.  The given mesh becomes the tracked dense mesh.
func FromQuadMesh(dense *strip.QuadMesh, opts goquad.Opts) (*CoarseQuadMesh, error) {
	polyedges, err := dense.SingularityPolyedges()
	if err != nil {
		return nil, err
	}

	cm := New(opts)
	for _, p := range polyedges {
		for _, v := range []goquad.VtxID{p[0], p[len(p)-1]} {
			if !cm.HasVertex(v) {
				cm.AddVertexWithID(v, dense.VertexPos(v))
				cm.setVertexChild(v, v)
			}
		}
	}

	patches, err := dense.FacePatches()
	if err != nil {
		return nil, err
	}
	for i, patch := range patches {
		sub, err := dense.SubMesh(patch)
		if err != nil {
			return nil, err
		}

		var loop []goquad.VtxID
		for _, b := range sub.Boundaries() {
			if len(b) > len(loop) {
				loop = b
			}
		}
		reverseIDs(loop)

		corners, err := patchCorners(dense, sub, loop)
		if err != nil {
			return nil, errors.Wrapf(err, "patch %d", i)
		}

		f := goquad.FaceID(i)
		if _, err = cm.AddFaceWithID(f, corners); err != nil {
			return nil, errors.Wrapf(err, "patch %d with corners %v", i, corners)
		}
		cm.setFaceChild(f, loop)
	}

	for _, p := range polyedges {
		if p[0] != p[len(p)-1] {
			cm.setEdgeChild(p[0], p[len(p)-1], p)
		}
	}

	if err = cm.InitStripDensity(); err != nil {
		return nil, err
	}
	for _, sid := range cm.Strips() {
		edges, _ := cm.StripEdges(sid)
		child, err := cm.EdgeChild(edges[0].U, edges[0].V)
		if err != nil {
			return nil, errors.Wrapf(err, "strip %d", sid)
		}
		cm.stripData[sid].Density = len(child) - 1
	}

	cm.dense = dense
	klog.V(2).Infof("coarsened %d dense faces into %d faces and %d strips", dense.NumFaces(), cm.NumFaces(), cm.NumStrips())
	return cm, nil
}

// patchCorners returns the coarse face of a patch from its boundary loop (in face orientation).
//
// Corners are the loop vertices of valence 2 within the patch, plus any pole.  A patch ending in a pole
// has three corners and becomes the pseudo-quad [a, b, c, c] with the pole repeated.
func patchCorners(dense *strip.QuadMesh, sub *mesh.Mesh, loop []goquad.VtxID) ([]goquad.VtxID, error) {
	var corners []goquad.VtxID
	pole := -1
	for _, v := range loop {
		if dense.IsPole(v) {
			pole = len(corners)
			corners = append(corners, v)
		} else if sub.Valence(v) == 2 {
			corners = append(corners, v)
		}
	}

	switch {
	case len(corners) == 4:
		return corners, nil
	case len(corners) == 3 && pole >= 0:
		face := make([]goquad.VtxID, 0, 4)
		face = append(face, corners[:pole+1]...)
		face = append(face, corners[pole:]...)
		return face, nil
	}
	return nil, errors.Wrapf(goquad.ErrNotQuadMesh, "corners %v", corners)
}

// DenseMesh returns the tracked dense mesh, or nil if there is none yet.
func (cm *CoarseQuadMesh) DenseMesh() *strip.QuadMesh {
	return cm.dense
}

// Opts returns the options in effect for this mesh.
func (cm *CoarseQuadMesh) Opts() goquad.Opts {
	return cm.opts
}
