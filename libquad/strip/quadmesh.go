package strip

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/2x3systems/quadpattern/goquad"
	"github.com/2x3systems/quadpattern/libquad/geom"
	"github.com/2x3systems/quadpattern/libquad/mesh"
)

// Strip is a maximal band of quads connected through opposite edges.
type Strip struct {
	ID     goquad.StripID
	Edges  []goquad.Edge   // cross-section edges in walk order, consistently oriented
	Faces  []goquad.FaceID // Faces[i] lies between Edges[i] and Edges[i+1] (wrapping if Closed)
	Closed bool
}

// QuadMesh is a (pseudo-)quad mesh with a strip decomposition.
type QuadMesh struct {
	*mesh.Mesh

	strips    []*Strip
	edgeStrip map[goquad.Edge]goquad.StripID // keyed by undirected edge
}

// NewQuadMesh wraps the given mesh.  Strips are not collected until CollectStrips is called.
func NewQuadMesh(M *mesh.Mesh) *QuadMesh {
	return &QuadMesh{
		Mesh: M,
	}
}

// FromIndexedFaceSet builds a pseudo-quad capable QuadMesh.
func FromIndexedFaceSet(ifs *goquad.IndexedFaceSet) (*QuadMesh, error) {
	M, err := mesh.FromIndexedFaceSet(ifs, true)
	if err != nil {
		return nil, err
	}
	return NewQuadMesh(M), nil
}

// FromIndexedFaceSetWithPoles builds a QuadMesh from quads and triangles.  Each triangle with a vertex
// within tol of one of the given poles becomes the pseudo-quad [a, b, c, c] with that vertex repeated.
func FromIndexedFaceSetWithPoles(ifs *goquad.IndexedFaceSet, poles []r3.Vector, tol float64) (*QuadMesh, error) {
	if len(poles) == 0 {
		return FromIndexedFaceSet(ifs)
	}
	M, err := mesh.FromIndexedFaceSet(ifs, false)
	if err != nil {
		return nil, err
	}
	M, err = mesh.PseudoQuadFromMesh(M, poles, geom.NewQuantizer(tol))
	if err != nil {
		return nil, err
	}
	return NewQuadMesh(M), nil
}

// CollectStrips partitions every non-loop edge into strips, replacing any previous decomposition.
func (Q *QuadMesh) CollectStrips() error {
	Q.strips = Q.strips[:0]
	Q.edgeStrip = make(map[goquad.Edge]goquad.StripID)

	for _, seed := range Q.Edges() {
		if seed.IsLoop() {
			continue
		}
		if _, assigned := Q.edgeStrip[seed]; assigned {
			continue
		}

		S, err := Q.walkStrip(seed)
		if err != nil {
			Q.strips = nil
			Q.edgeStrip = nil
			return err
		}
		S.ID = goquad.StripID(len(Q.strips))
		Q.strips = append(Q.strips, S)
		for _, e := range S.Edges {
			Q.edgeStrip[e.Undirected()] = S.ID
		}
	}

	klog.V(3).Infof("collected %d strips over %d faces", len(Q.strips), Q.NumFaces())
	return nil
}

func (Q *QuadMesh) walkStrip(seed goquad.Edge) (*Strip, error) {
	visited := map[goquad.Edge]struct{}{
		seed.Undirected(): {},
	}

	fwdEdges, fwdFaces, closed, err := Q.walk(seed, visited)
	if err != nil {
		return nil, err
	}
	if closed {
		return &Strip{
			Edges:  fwdEdges,
			Faces:  fwdFaces,
			Closed: true,
		}, nil
	}

	bwdEdges, bwdFaces, _, err := Q.walk(seed.Reversed(), visited)
	if err != nil {
		return nil, err
	}

	S := &Strip{
		Edges: make([]goquad.Edge, 0, len(bwdEdges)+len(fwdEdges)-1),
		Faces: make([]goquad.FaceID, 0, len(bwdFaces)+len(fwdFaces)),
	}
	for i := len(bwdEdges) - 1; i > 0; i-- {
		S.Edges = append(S.Edges, bwdEdges[i].Reversed())
	}
	S.Edges = append(S.Edges, fwdEdges...)
	for i := len(bwdFaces) - 1; i >= 0; i-- {
		S.Faces = append(S.Faces, bwdFaces[i])
	}
	S.Faces = append(S.Faces, fwdFaces...)
	return S, nil
}

// walk crosses quads from start, each step moving to the edge opposite the current one.
// It stops at the boundary, at a collapsed loop edge, or when it returns to start (closed).
func (Q *QuadMesh) walk(start goquad.Edge, visited map[goquad.Edge]struct{}) ([]goquad.Edge, []goquad.FaceID, bool, error) {
	edges := []goquad.Edge{start}
	var faces []goquad.FaceID

	e := start
	for {
		f, _ := Q.HalfedgeFace(e.U, e.V)
		if f == goquad.NoFace {
			return edges, faces, false, nil
		}
		vtx := Q.FaceVertices(f)
		if len(vtx) != 4 {
			return nil, nil, false, errors.Wrapf(goquad.ErrUnclosedStripWalk, "face %d has %d vertices", f, len(vtx))
		}
		i := halfedgeSlot(vtx, e)
		faces = append(faces, f)

		next := goquad.Edge{U: vtx[(i+3)%4], V: vtx[(i+2)%4]}
		if next.IsLoop() {
			return edges, faces, false, nil
		}
		if next == start {
			return edges, faces, true, nil
		}

		key := next.Undirected()
		_, seen := visited[key]
		_, assigned := Q.edgeStrip[key]
		if seen || assigned {
			return nil, nil, false, errors.Wrapf(goquad.ErrUnclosedStripWalk, "edge (%d, %d) revisited from face %d", next.U, next.V, f)
		}
		visited[key] = struct{}{}
		edges = append(edges, next)
		e = next
	}
}

func halfedgeSlot(vtx []goquad.VtxID, e goquad.Edge) int {
	N := len(vtx)
	for i, u := range vtx {
		if u == e.U && vtx[(i+1)%N] == e.V {
			return i
		}
	}
	return -1
}

// NumStrips returns the number of collected strips.
func (Q *QuadMesh) NumStrips() int {
	return len(Q.strips)
}

// Strips returns the ids of all collected strips.
func (Q *QuadMesh) Strips() []goquad.StripID {
	ids := make([]goquad.StripID, len(Q.strips))
	for i := range Q.strips {
		ids[i] = goquad.StripID(i)
	}
	return ids
}

// Strip returns the given strip.
func (Q *QuadMesh) Strip(id goquad.StripID) (*Strip, error) {
	if id < 0 || int(id) >= len(Q.strips) {
		return nil, errors.Wrapf(goquad.ErrStripNotFound, "strip %d", id)
	}
	return Q.strips[id], nil
}

// StripEdges returns the cross-section edges of the given strip.
func (Q *QuadMesh) StripEdges(id goquad.StripID) ([]goquad.Edge, error) {
	S, err := Q.Strip(id)
	if err != nil {
		return nil, err
	}
	return S.Edges, nil
}

// StripFaces returns the faces of the given strip in walk order.
func (Q *QuadMesh) StripFaces(id goquad.StripID) ([]goquad.FaceID, error) {
	S, err := Q.Strip(id)
	if err != nil {
		return nil, err
	}
	return S.Faces, nil
}

// EdgeStrip returns the strip containing edge {u, v}.
// For the loop edge (c, c) of a pseudo-quad, this is the strip of the opposite edge.
func (Q *QuadMesh) EdgeStrip(u, v goquad.VtxID) (goquad.StripID, error) {
	e := goquad.Edge{U: u, V: v}
	if e.IsLoop() {
		f, exists := Q.HalfedgeFace(u, v)
		if !exists {
			return -1, errors.Wrapf(goquad.ErrStripNotFound, "no loop at vertex %d", u)
		}
		vtx := Q.FaceVertices(f)
		i := halfedgeSlot(vtx, e)
		e = goquad.Edge{U: vtx[(i+2)%4], V: vtx[(i+3)%4]}
	}

	id, found := Q.edgeStrip[e.Undirected()]
	if !found {
		return -1, errors.Wrapf(goquad.ErrStripNotFound, "edge (%d, %d)", u, v)
	}
	return id, nil
}
