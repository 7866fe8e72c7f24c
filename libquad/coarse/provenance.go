package coarse

import (
	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
)

// Provenance maps coarse elements to the dense mesh elements they summarize.
type Provenance struct {
	vtxChild  map[goquad.VtxID]goquad.VtxID
	edgeChild map[goquad.Edge][]goquad.VtxID // keyed by undirected edge, polyline runs from U to V
	faceChild map[goquad.FaceID][]goquad.VtxID
}

func newProvenance() Provenance {
	return Provenance{
		vtxChild:  make(map[goquad.VtxID]goquad.VtxID),
		edgeChild: make(map[goquad.Edge][]goquad.VtxID),
		faceChild: make(map[goquad.FaceID][]goquad.VtxID),
	}
}

// VertexChild returns the dense vertex corresponding to coarse vertex v.
func (p *Provenance) VertexChild(v goquad.VtxID) (goquad.VtxID, error) {
	child, ok := p.vtxChild[v]
	if !ok {
		return v, errors.Wrapf(goquad.ErrMissingChildData, "vertex %d", v)
	}
	return child, nil
}

// EdgeChild returns the dense polyline that coarse edge (u, v) expands to, running from u's child to v's child.
func (p *Provenance) EdgeChild(u, v goquad.VtxID) ([]goquad.VtxID, error) {
	e := goquad.Edge{U: u, V: v}
	child, ok := p.edgeChild[e.Undirected()]
	if !ok {
		return nil, errors.Wrapf(goquad.ErrMissingChildData, "edge (%d, %d)", u, v)
	}
	out := append([]goquad.VtxID(nil), child...)
	if u > v {
		reverseIDs(out)
	}
	return out, nil
}

// FaceChild returns the boundary loop of the dense region that coarse face f expands to.
func (p *Provenance) FaceChild(f goquad.FaceID) ([]goquad.VtxID, error) {
	child, ok := p.faceChild[f]
	if !ok {
		return nil, errors.Wrapf(goquad.ErrMissingChildData, "face %d", f)
	}
	return append([]goquad.VtxID(nil), child...), nil
}

func (p *Provenance) setVertexChild(v, child goquad.VtxID) {
	p.vtxChild[v] = child
}

// setEdgeChild stores polyline as the child of edge (u, v), given in the direction u to v.
func (p *Provenance) setEdgeChild(u, v goquad.VtxID, polyline []goquad.VtxID) {
	child := append([]goquad.VtxID(nil), polyline...)
	if u > v {
		reverseIDs(child)
		u, v = v, u
	}
	p.edgeChild[goquad.Edge{U: u, V: v}] = child
}

func (p *Provenance) setFaceChild(f goquad.FaceID, loop []goquad.VtxID) {
	p.faceChild[f] = append([]goquad.VtxID(nil), loop...)
}

func reverseIDs(ids []goquad.VtxID) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
