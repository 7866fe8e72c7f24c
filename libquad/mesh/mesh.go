package mesh

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
)

// halfEdge is an outgoing half-edge (from its owning vertex to .to) and the face on its left.
type halfEdge struct {
	to   goquad.VtxID
	face goquad.FaceID // goquad.NoFace denotes a boundary half-edge
}

type vertex struct {
	alive bool
	pos   r3.Vector
	out   []halfEdge // in insertion order
	loops int32      // number of pseudo-quad faces with a collapsed (v, v) half-edge
}

type face struct {
	alive bool
	vtx   []goquad.VtxID
}

// Mesh is a polygonal half-edge mesh stored as an arena of vertices and faces addressed by integer id.
//
// Adjacency is maintained incrementally by AddFace and DeleteFace.  A Mesh created with NewPseudoQuad
// also accepts 4-slot faces with one repeated vertex (see IsFacePseudoQuad).
type Mesh struct {
	vtx         []vertex
	faces       []face
	numVtx      int
	numFaces    int
	pseudoQuads bool
}

// New returns an empty Mesh that rejects faces with repeated vertices.
func New() *Mesh {
	return &Mesh{}
}

// NewPseudoQuad returns an empty Mesh that also accepts pseudo-quad faces [a, b, c, c].
func NewPseudoQuad() *Mesh {
	return &Mesh{
		pseudoQuads: true,
	}
}

// AllowsPseudoQuads returns true if this mesh accepts pseudo-quad faces.
func (M *Mesh) AllowsPseudoQuads() bool {
	return M.pseudoQuads
}

// AddVertex adds a vertex at the given position and returns its newly issued id.
func (M *Mesh) AddVertex(pos r3.Vector) goquad.VtxID {
	id := goquad.VtxID(len(M.vtx))
	M.vtx = append(M.vtx, vertex{
		alive: true,
		pos:   pos,
	})
	M.numVtx++
	return id
}

// AddVertexWithID adds a vertex with an explicit id.
// If the vertex already exists, its position is replaced and its adjacency is kept.
func (M *Mesh) AddVertexWithID(id goquad.VtxID, pos r3.Vector) (goquad.VtxID, error) {
	if id < 0 {
		return id, errors.Wrapf(goquad.ErrBadVtxID, "vertex %d", id)
	}
	for int(id) >= len(M.vtx) {
		M.vtx = append(M.vtx, vertex{})
	}
	v := &M.vtx[id]
	if !v.alive {
		v.alive = true
		M.numVtx++
	}
	v.pos = pos
	return id, nil
}

// HasVertex returns true if the given vertex exists.
func (M *Mesh) HasVertex(v goquad.VtxID) bool {
	return v >= 0 && int(v) < len(M.vtx) && M.vtx[v].alive
}

// HasFace returns true if the given face exists.
func (M *Mesh) HasFace(f goquad.FaceID) bool {
	return f >= 0 && int(f) < len(M.faces) && M.faces[f].alive
}

// AddFace adds a face with the given vertex cycle and returns its newly issued id.
func (M *Mesh) AddFace(vtx []goquad.VtxID) (goquad.FaceID, error) {
	return M.AddFaceWithID(goquad.FaceID(len(M.faces)), vtx)
}

// AddFaceWithID adds a face with an explicit id.
//
// The face is rejected (and the mesh left unchanged) if it has fewer than 3 distinct vertices,
// references an unknown vertex, repeats a vertex (other than as a pseudo-quad), or reuses a half-edge
// that already bounds a face.
func (M *Mesh) AddFaceWithID(id goquad.FaceID, vtx []goquad.VtxID) (goquad.FaceID, error) {
	if id < 0 || M.HasFace(id) {
		return goquad.NoFace, errors.Wrapf(goquad.ErrBadFaceID, "face %d", id)
	}
	if err := M.validateFace(vtx); err != nil {
		return goquad.NoFace, err
	}

	N := len(vtx)
	for i, u := range vtx {
		v := vtx[(i+1)%N]
		if u == v {
			continue
		}
		if he := M.halfEdge(u, v); he != nil && he.face != goquad.NoFace {
			return goquad.NoFace, errors.Wrapf(goquad.ErrNonManifoldEdge, "half-edge (%d, %d) bounds face %d", u, v, he.face)
		}
	}

	for int(id) >= len(M.faces) {
		M.faces = append(M.faces, face{})
	}
	M.faces[id] = face{
		alive: true,
		vtx:   append([]goquad.VtxID(nil), vtx...),
	}
	M.numFaces++

	for i, u := range vtx {
		v := vtx[(i+1)%N]
		if u == v {
			M.vtx[u].loops++
			continue
		}
		M.setHalfEdge(u, v, id)
		if M.halfEdge(v, u) == nil {
			M.setHalfEdge(v, u, goquad.NoFace)
		}
	}

	return id, nil
}

func (M *Mesh) validateFace(vtx []goquad.VtxID) error {
	N := len(vtx)
	if N < 3 {
		return errors.Wrapf(goquad.ErrDegenerateFace, "%d vertices given", N)
	}

	distinct := make(map[goquad.VtxID]struct{}, N)
	for _, v := range vtx {
		if !M.HasVertex(v) {
			return errors.Wrapf(goquad.ErrVtxNotFound, "vertex %d", v)
		}
		distinct[v] = struct{}{}
	}

	switch {
	case len(distinct) < 3:
		return errors.Wrapf(goquad.ErrDegenerateFace, "face %v", vtx)
	case len(distinct) == N:
		return nil
	case !M.pseudoQuads:
		return errors.Wrapf(goquad.ErrDegenerateFace, "face %v repeats a vertex", vtx)
	case N != 4 || len(distinct) != 3:
		return errors.Wrapf(goquad.ErrInvalidPseudoFace, "face %v", vtx)
	}

	// The repeated pair must be consecutive in the face cycle.
	for i, u := range vtx {
		if u == vtx[(i+1)%N] {
			return nil
		}
	}
	return errors.Wrapf(goquad.ErrInvalidPseudoFace, "face %v repeats a non-consecutive vertex", vtx)
}

// DeleteFace removes a face.
//
// Each of its half-edges becomes a boundary half-edge, and an undirected edge is removed entirely
// once both of its half-edges are boundary half-edges.  Vertices are kept.
func (M *Mesh) DeleteFace(f goquad.FaceID) error {
	if !M.HasFace(f) {
		return errors.Wrapf(goquad.ErrFaceNotFound, "face %d", f)
	}

	vtx := M.faces[f].vtx
	N := len(vtx)
	for i, u := range vtx {
		v := vtx[(i+1)%N]
		if u == v {
			M.vtx[u].loops--
			continue
		}
		M.setHalfEdge(u, v, goquad.NoFace)
		if opp := M.halfEdge(v, u); opp == nil || opp.face == goquad.NoFace {
			M.removeHalfEdge(u, v)
			M.removeHalfEdge(v, u)
		}
	}

	M.faces[f] = face{}
	M.numFaces--
	return nil
}

func (M *Mesh) halfEdge(u, v goquad.VtxID) *halfEdge {
	if !M.HasVertex(u) {
		return nil
	}
	out := M.vtx[u].out
	for i := range out {
		if out[i].to == v {
			return &out[i]
		}
	}
	return nil
}

func (M *Mesh) setHalfEdge(u, v goquad.VtxID, f goquad.FaceID) {
	if he := M.halfEdge(u, v); he != nil {
		he.face = f
		return
	}
	M.vtx[u].out = append(M.vtx[u].out, halfEdge{
		to:   v,
		face: f,
	})
}

func (M *Mesh) removeHalfEdge(u, v goquad.VtxID) {
	out := M.vtx[u].out
	for i := range out {
		if out[i].to == v {
			M.vtx[u].out = append(out[:i], out[i+1:]...)
			return
		}
	}
}

// Copy returns a deep copy of this mesh; ids are preserved.
func (M *Mesh) Copy() *Mesh {
	dup := &Mesh{
		vtx:         make([]vertex, len(M.vtx)),
		faces:       make([]face, len(M.faces)),
		numVtx:      M.numVtx,
		numFaces:    M.numFaces,
		pseudoQuads: M.pseudoQuads,
	}
	for i, v := range M.vtx {
		v.out = append([]halfEdge(nil), v.out...)
		dup.vtx[i] = v
	}
	for i, f := range M.faces {
		f.vtx = append([]goquad.VtxID(nil), f.vtx...)
		dup.faces[i] = f
	}
	return dup
}

// SubMesh returns a new mesh holding the given faces and the vertices they reference; ids are preserved.
func (M *Mesh) SubMesh(faces []goquad.FaceID) (*Mesh, error) {
	sub := &Mesh{
		pseudoQuads: M.pseudoQuads,
	}
	for _, f := range faces {
		if !M.HasFace(f) {
			return nil, errors.Wrapf(goquad.ErrFaceNotFound, "face %d", f)
		}
		for _, v := range M.faces[f].vtx {
			if !sub.HasVertex(v) {
				sub.AddVertexWithID(v, M.vtx[v].pos)
			}
		}
		if _, err := sub.AddFaceWithID(f, M.faces[f].vtx); err != nil {
			return nil, err
		}
	}
	return sub, nil
}
