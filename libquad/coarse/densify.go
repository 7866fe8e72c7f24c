package coarse

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"

	"github.com/2x3systems/quadpattern/goquad"
	"github.com/2x3systems/quadpattern/libquad/geom"
	"github.com/2x3systems/quadpattern/libquad/mesh"
	"github.com/2x3systems/quadpattern/libquad/strip"
)

// Densify generates a dense quad mesh from the current strip densities.
//
// Each coarse face is filled with a Coons patch whose sides are its edges subdivided by their strip
// densities, and the patches are then welded into one mesh.  The result becomes the tracked dense mesh
// and all child data is rewritten to refer to it.  On error, nothing is changed.
func (cm *CoarseQuadMesh) Densify() (*strip.QuadMesh, error) {
	faces := cm.Faces()
	patches := make([]*geom.Patch, len(faces))

	grp := errgroup.Group{}
	grp.SetLimit(cm.opts.Workers)
	for i, f := range faces {
		i, f := i, f
		grp.Go(func() error {
			P, err := cm.facePatch(f)
			if err != nil {
				return err
			}
			patches[i] = P
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	step := weldStep(patches, cm.opts.WeldTolerance)
	if step < cm.opts.WeldTolerance {
		klog.V(3).Infof("weld tolerance reduced to %g for the generated spacing", step)
	}
	welded, remap, err := mesh.JoinAndWeld(patches, geom.NewQuantizer(step))
	if err != nil {
		return nil, err
	}

	prov := newProvenance()
	for i, f := range faces {
		P := patches[i]
		ids := remap[i]
		vtx := cm.FaceVertices(f)

		corners := P.Corners()
		for k, v := range vtx {
			if _, done := prov.vtxChild[v]; !done {
				prov.setVertexChild(v, ids[corners[k]])
			}
		}

		for k := 0; k < 4; k++ {
			u, v := vtx[k], vtx[(k+1)%4]
			if u == v {
				continue
			}
			if _, done := prov.edgeChild[goquad.Edge{U: u, V: v}.Undirected()]; done {
				continue
			}
			prov.setEdgeChild(u, v, mapIDs(P.Side(k), ids))
		}

		prov.setFaceChild(f, collapseIDs(mapIDs(P.Boundary(), ids)))
	}

	cm.Provenance = prov
	cm.dense = strip.NewQuadMesh(welded)

	klog.V(2).Infof("densified %d faces into %d vertices, %d faces", len(faces), welded.NumVertices(), welded.NumFaces())
	return cm.dense, nil
}

// facePatch builds the Coons patch for coarse face f = [a, b, c, d].
func (cm *CoarseQuadMesh) facePatch(f goquad.FaceID) (*geom.Patch, error) {
	vtx := cm.FaceVertices(f)
	if len(vtx) != 4 {
		return nil, errors.Wrapf(goquad.ErrNotQuadMesh, "face %d has %d vertices", f, len(vtx))
	}

	var sides [4][]r3.Vector
	for k := 0; k < 4; k++ {
		u, v := vtx[k], vtx[(k+1)%4]
		var pts []r3.Vector
		var err error
		if u == v {
			pts, err = cm.loopPoints(u, vtx[(k+2)%4], vtx[(k+3)%4])
		} else {
			pts, err = cm.edgePoints(u, v)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "face %d", f)
		}
		sides[k] = pts
	}

	P, err := geom.DiscreteCoonsPatch(sides[0], sides[1], geom.Reverse(sides[2]), geom.Reverse(sides[3]))
	if err != nil {
		return nil, errors.Wrapf(err, "face %d", f)
	}
	return P, nil
}

// edgePoints returns d+1 points from u to v, where d is the density of the edge's strip.
//
// Points follow the edge's child polyline when it is present in the dense mesh, else the straight segment.
// They are always computed from the lower to the higher vertex id so both faces of an edge agree exactly.
func (cm *CoarseQuadMesh) edgePoints(u, v goquad.VtxID) ([]r3.Vector, error) {
	sid, err := cm.EdgeStrip(u, v)
	if err != nil {
		return nil, err
	}
	d, err := cm.StripDensity(sid)
	if err != nil {
		return nil, err
	}

	a, b := u, v
	if a > b {
		a, b = b, a
	}

	var pts []r3.Vector
	if poly := cm.childPolyline(a, b); poly != nil {
		pts = poly.Divide(d)
	} else if cm.opts.RequireEdgeChildren {
		return nil, errors.Wrapf(goquad.ErrMissingChildData, "edge (%d, %d)", u, v)
	} else {
		pts = geom.DivideSegment(cm.VertexPos(a), cm.VertexPos(b), d)
	}

	// The coarse vertices are authoritative for the patch corners.
	pts[0] = cm.VertexPos(a)
	pts[d] = cm.VertexPos(b)

	if u > v {
		geom.Reverse(pts)
	}
	return pts, nil
}

// loopPoints returns d+1 copies of pole c, where d is the density of the face side (a, b) opposite the loop.
func (cm *CoarseQuadMesh) loopPoints(c, a, b goquad.VtxID) ([]r3.Vector, error) {
	sid, err := cm.EdgeStrip(a, b)
	if err != nil {
		return nil, err
	}
	d, err := cm.StripDensity(sid)
	if err != nil {
		return nil, err
	}
	pts := make([]r3.Vector, d+1)
	for i := range pts {
		pts[i] = cm.VertexPos(c)
	}
	return pts, nil
}

// childPolyline returns the dense positions of the child of edge (a, b), or nil if unavailable.
func (cm *CoarseQuadMesh) childPolyline(a, b goquad.VtxID) geom.Polyline {
	if cm.dense == nil {
		return nil
	}
	child, err := cm.EdgeChild(a, b)
	if err != nil || len(child) < 2 {
		return nil
	}
	poly := make(geom.Polyline, len(child))
	for i, v := range child {
		if !cm.dense.HasVertex(v) {
			return nil
		}
		poly[i] = cm.dense.VertexPos(v)
	}
	return poly
}

// weldStep returns tol, lowered to a tenth of the shortest non-degenerate cell side of the given patches.
// Seam and pole points are generated identically on each side, so only exact copies need to share a key.
func weldStep(patches []*geom.Patch, tol float64) float64 {
	step := tol
	for _, P := range patches {
		for _, cell := range P.Faces {
			N := len(cell)
			for i, a := range cell {
				l := P.Vertices[a].Distance(P.Vertices[cell[(i+1)%N]])
				if l > 0 && 0.1*l < step {
					step = 0.1 * l
				}
			}
		}
	}
	return step
}

func mapIDs(idx []int, ids []goquad.VtxID) []goquad.VtxID {
	out := make([]goquad.VtxID, len(idx))
	for i, j := range idx {
		out[i] = ids[j]
	}
	return out
}

// collapseIDs drops cyclically consecutive duplicates.
func collapseIDs(loop []goquad.VtxID) []goquad.VtxID {
	N := len(loop)
	out := make([]goquad.VtxID, 0, N)
	for i, v := range loop {
		if v != loop[(i+1)%N] {
			out = append(out, v)
		}
	}
	return out
}
