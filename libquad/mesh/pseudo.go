package mesh

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
	"github.com/2x3systems/quadpattern/libquad/geom"
)

// IsFacePseudoQuad returns true if f is a 4-slot face with a repeated vertex, false if it is a genuine quad,
// and ErrInvalidPseudoFace if f does not have 4 slots.
func (M *Mesh) IsFacePseudoQuad(f goquad.FaceID) (bool, error) {
	if !M.HasFace(f) {
		return false, errors.Wrapf(goquad.ErrFaceNotFound, "face %d", f)
	}
	vtx := M.faces[f].vtx
	if len(vtx) != 4 {
		return false, errors.Wrapf(goquad.ErrInvalidPseudoFace, "face %d has %d slots", f, len(vtx))
	}
	for i, v := range vtx {
		if v == vtx[(i+1)%4] {
			return true, nil
		}
	}
	return false, nil
}

// collapse returns vtx without cyclically consecutive duplicates.
func collapse(vtx []goquad.VtxID) []goquad.VtxID {
	N := len(vtx)
	out := make([]goquad.VtxID, 0, N)
	for i, v := range vtx {
		if v != vtx[(i+1)%N] {
			out = append(out, v)
		}
	}
	return out
}

// ToMesh collapses every pseudo-quad [a, b, c, c] to the triangle [a, b, c] and returns a plain mesh
// whose vertex ids are renumbered 0..N-1 in ascending order of the ids of this mesh.
// The returned map gives the new id of each old vertex id.
func (M *Mesh) ToMesh() (*Mesh, map[goquad.VtxID]goquad.VtxID, error) {
	plain := New()
	remap := make(map[goquad.VtxID]goquad.VtxID, M.numVtx)
	for _, v := range M.Vertices() {
		remap[v] = plain.AddVertex(M.vtx[v].pos)
	}
	for _, f := range M.Faces() {
		vtx := collapse(M.faces[f].vtx)
		for i, v := range vtx {
			vtx[i] = remap[v]
		}
		if _, err := plain.AddFace(vtx); err != nil {
			return nil, nil, errors.Wrapf(err, "face %d", f)
		}
	}
	return plain, remap, nil
}

// ToCollapsedIndexedFaceSet exports this mesh through ToMesh, so pseudo-quads are written as triangles.
// The returned map gives the output index of each vertex id of this mesh.
func (M *Mesh) ToCollapsedIndexedFaceSet() (*goquad.IndexedFaceSet, map[goquad.VtxID]int, error) {
	plain, remap, err := M.ToMesh()
	if err != nil {
		return nil, nil, err
	}
	ifs, index := plain.ToIndexedFaceSet()
	out := make(map[goquad.VtxID]int, len(remap))
	for v, id := range remap {
		out[v] = index[id]
	}
	return ifs, out, nil
}

// PseudoQuadFromMesh converts a mesh containing triangles into a pseudo-quad mesh.  Each triangle having
// a vertex located at one of the given poles (compared by quantized coordinate) becomes a 4-slot face
// with that vertex repeated.  Vertex and face ids are preserved.
func PseudoQuadFromMesh(src *Mesh, poles []r3.Vector, q geom.Quantizer) (*Mesh, error) {
	poleKeys := treeset.NewWith(geom.KeyComparator)
	for _, pos := range poles {
		poleKeys.Add(q.Key(pos))
	}

	M := NewPseudoQuad()
	for _, v := range src.Vertices() {
		M.AddVertexWithID(v, src.vtx[v].pos)
	}

	for _, f := range src.Faces() {
		vtx := src.FaceVertices(f)
		if len(vtx) == 3 {
			for i, v := range vtx {
				if poleKeys.Contains(q.Key(src.vtx[v].pos)) {
					vtx = append(vtx[:i+1], append([]goquad.VtxID{v}, vtx[i+1:]...)...)
					break
				}
			}
		}
		if _, err := M.AddFaceWithID(f, vtx); err != nil {
			return nil, errors.Wrapf(err, "face %d", f)
		}
	}
	return M, nil
}
