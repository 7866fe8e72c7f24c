package mesh

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
)

// NumVertices returns the number of vertices in this mesh.
func (M *Mesh) NumVertices() int {
	return M.numVtx
}

// NumFaces returns the number of faces in this mesh.
func (M *Mesh) NumFaces() int {
	return M.numFaces
}

// NumEdges returns the number of undirected edges, not counting the collapsed loop edges of pseudo-quads.
func (M *Mesh) NumEdges() int {
	count := 0
	M.VisitEdges(func(e goquad.Edge) bool {
		if !e.IsLoop() {
			count++
		}
		return true
	})
	return count
}

// Vertices returns all vertex ids in ascending order.
func (M *Mesh) Vertices() []goquad.VtxID {
	vtx := make([]goquad.VtxID, 0, M.numVtx)
	for i := range M.vtx {
		if M.vtx[i].alive {
			vtx = append(vtx, goquad.VtxID(i))
		}
	}
	return vtx
}

// Faces returns all face ids in ascending order.
func (M *Mesh) Faces() []goquad.FaceID {
	faces := make([]goquad.FaceID, 0, M.numFaces)
	for i := range M.faces {
		if M.faces[i].alive {
			faces = append(faces, goquad.FaceID(i))
		}
	}
	return faces
}

// VertexPos returns the position of the given vertex.
func (M *Mesh) VertexPos(v goquad.VtxID) r3.Vector {
	if !M.HasVertex(v) {
		return r3.Vector{}
	}
	return M.vtx[v].pos
}

// SetVertexPos moves an existing vertex.
func (M *Mesh) SetVertexPos(v goquad.VtxID, pos r3.Vector) error {
	if !M.HasVertex(v) {
		return errors.Wrapf(goquad.ErrVtxNotFound, "vertex %d", v)
	}
	M.vtx[v].pos = pos
	return nil
}

// FaceVertices returns a copy of the vertex cycle of the given face (nil if not found).
func (M *Mesh) FaceVertices(f goquad.FaceID) []goquad.VtxID {
	if !M.HasFace(f) {
		return nil
	}
	return append([]goquad.VtxID(nil), M.faces[f].vtx...)
}

// FaceHalfedges returns the half-edges of the given face in cyclic order, including any loop edge.
func (M *Mesh) FaceHalfedges(f goquad.FaceID) []goquad.Edge {
	if !M.HasFace(f) {
		return nil
	}
	vtx := M.faces[f].vtx
	N := len(vtx)
	edges := make([]goquad.Edge, N)
	for i, u := range vtx {
		edges[i] = goquad.Edge{U: u, V: vtx[(i+1)%N]}
	}
	return edges
}

// HalfedgeFace returns the face on the left of half-edge (u, v), or goquad.NoFace for a boundary half-edge.
// The bool is false if the half-edge does not exist.
func (M *Mesh) HalfedgeFace(u, v goquad.VtxID) (goquad.FaceID, bool) {
	if u == v {
		if !M.HasVertex(u) || M.vtx[u].loops == 0 {
			return goquad.NoFace, false
		}
		for _, f := range M.VertexFaces(u) {
			vtx := M.faces[f].vtx
			for i, w := range vtx {
				if w == u && vtx[(i+1)%len(vtx)] == u {
					return f, true
				}
			}
		}
		return goquad.NoFace, false
	}

	he := M.halfEdge(u, v)
	if he == nil {
		return goquad.NoFace, false
	}
	return he.face, true
}

// HasEdge returns true if u and v are joined by an edge (in either direction).
func (M *Mesh) HasEdge(u, v goquad.VtxID) bool {
	_, exists := M.HalfedgeFace(u, v)
	return exists
}

// VisitEdges calls fn for each undirected edge (U < V), and once for each pseudo-quad loop (U == V).
// Iteration stops early if fn returns false.
func (M *Mesh) VisitEdges(fn func(e goquad.Edge) bool) {
	for i := range M.vtx {
		v := &M.vtx[i]
		if !v.alive {
			continue
		}
		u := goquad.VtxID(i)
		for _, he := range v.out {
			if u < he.to {
				if !fn(goquad.Edge{U: u, V: he.to}) {
					return
				}
			}
		}
		if v.loops > 0 {
			if !fn(goquad.Edge{U: u, V: u}) {
				return
			}
		}
	}
}

// Edges returns all undirected edges in the order of VisitEdges.
func (M *Mesh) Edges() []goquad.Edge {
	var edges []goquad.Edge
	M.VisitEdges(func(e goquad.Edge) bool {
		edges = append(edges, e)
		return true
	})
	return edges
}

// Neighbors returns the vertices joined to v by an edge.  A pole lists itself.
func (M *Mesh) Neighbors(v goquad.VtxID) []goquad.VtxID {
	if !M.HasVertex(v) {
		return nil
	}
	out := M.vtx[v].out
	nbrs := make([]goquad.VtxID, 0, len(out)+1)
	for _, he := range out {
		nbrs = append(nbrs, he.to)
	}
	if M.vtx[v].loops > 0 {
		nbrs = append(nbrs, v)
	}
	return nbrs
}

// Valence returns the number of distinct vertices joined to v, not counting v itself.
func (M *Mesh) Valence(v goquad.VtxID) int {
	if !M.HasVertex(v) {
		return 0
	}
	return len(M.vtx[v].out)
}

// VertexFaces returns the faces incident to v.
func (M *Mesh) VertexFaces(v goquad.VtxID) []goquad.FaceID {
	if !M.HasVertex(v) {
		return nil
	}
	var faces []goquad.FaceID
	for _, he := range M.vtx[v].out {
		if he.face == goquad.NoFace {
			continue
		}
		dupe := false
		for _, f := range faces {
			if f == he.face {
				dupe = true
				break
			}
		}
		if !dupe {
			faces = append(faces, he.face)
		}
	}
	return faces
}

// IsPole returns true if v is the repeated vertex of at least one pseudo-quad face.
func (M *Mesh) IsPole(v goquad.VtxID) bool {
	return M.HasVertex(v) && M.vtx[v].loops > 0
}

// IsVertexOnBoundary returns true if v has an outgoing boundary half-edge.
func (M *Mesh) IsVertexOnBoundary(v goquad.VtxID) bool {
	if !M.HasVertex(v) {
		return false
	}
	for _, he := range M.vtx[v].out {
		if he.face == goquad.NoFace {
			return true
		}
	}
	return false
}

// IsEdgeOnBoundary returns true if either half-edge of {u, v} is a boundary half-edge.
func (M *Mesh) IsEdgeOnBoundary(u, v goquad.VtxID) bool {
	if u == v {
		return false
	}
	f1, ok1 := M.HalfedgeFace(u, v)
	f2, ok2 := M.HalfedgeFace(v, u)
	return ok1 && ok2 && (f1 == goquad.NoFace || f2 == goquad.NoFace)
}

// FaceNeighbors returns the faces sharing an edge with f, in the cyclic order of f's half-edges.
func (M *Mesh) FaceNeighbors(f goquad.FaceID) []goquad.FaceID {
	var nbrs []goquad.FaceID
	for _, e := range M.FaceHalfedges(f) {
		if e.IsLoop() {
			continue
		}
		g, _ := M.HalfedgeFace(e.V, e.U)
		if g == goquad.NoFace || g == f {
			continue
		}
		dupe := false
		for _, h := range nbrs {
			if h == g {
				dupe = true
				break
			}
		}
		if !dupe {
			nbrs = append(nbrs, g)
		}
	}
	return nbrs
}

// FaceAdjacencyHalfedge returns the half-edge of f1 whose opposite half-edge belongs to f2.
func (M *Mesh) FaceAdjacencyHalfedge(f1, f2 goquad.FaceID) (goquad.Edge, bool) {
	for _, e := range M.FaceHalfedges(f1) {
		if e.IsLoop() {
			continue
		}
		if g, _ := M.HalfedgeFace(e.V, e.U); g == f2 {
			return e, true
		}
	}
	return goquad.Edge{}, false
}

// FaceVertexAfter returns the vertex w such that (v, w) is a non-loop half-edge of face f.
func (M *Mesh) FaceVertexAfter(f goquad.FaceID, v goquad.VtxID) (goquad.VtxID, error) {
	if !M.HasFace(f) {
		return v, errors.Wrapf(goquad.ErrFaceNotFound, "face %d", f)
	}
	vtx := M.faces[f].vtx
	N := len(vtx)
	for i, u := range vtx {
		if u == v && vtx[(i+1)%N] != v {
			return vtx[(i+1)%N], nil
		}
	}
	return v, errors.Wrapf(goquad.ErrVtxNotFound, "vertex %d not in face %d", v, f)
}

// Boundaries returns each boundary loop as a vertex cycle following the boundary half-edges
// (opposite to the orientation of the faces they border).  Each loop starts at its lowest vertex id.
func (M *Mesh) Boundaries() [][]goquad.VtxID {
	visited := make(map[goquad.Edge]struct{})
	var loops [][]goquad.VtxID

	for _, u0 := range M.Vertices() {
		for _, he := range M.vtx[u0].out {
			if he.face != goquad.NoFace {
				continue
			}
			e := goquad.Edge{U: u0, V: he.to}
			if _, seen := visited[e]; seen {
				continue
			}

			var loop []goquad.VtxID
			for {
				visited[e] = struct{}{}
				loop = append(loop, e.U)
				next, found := M.nextBoundaryHalfedge(e.V, visited)
				if !found {
					break
				}
				e = next
			}
			loops = append(loops, loop)
		}
	}
	return loops
}

func (M *Mesh) nextBoundaryHalfedge(v goquad.VtxID, visited map[goquad.Edge]struct{}) (goquad.Edge, bool) {
	for _, he := range M.vtx[v].out {
		if he.face != goquad.NoFace {
			continue
		}
		e := goquad.Edge{U: v, V: he.to}
		if _, seen := visited[e]; !seen {
			return e, true
		}
	}
	return goquad.Edge{}, false
}

// EdgeLength returns the distance between u and v.
func (M *Mesh) EdgeLength(u, v goquad.VtxID) float64 {
	return M.VertexPos(u).Distance(M.VertexPos(v))
}

// FaceCentroid returns the mean position of the distinct vertices of f.
func (M *Mesh) FaceCentroid(f goquad.FaceID) r3.Vector {
	var sum r3.Vector
	vtx := M.FaceVertices(f)
	N := len(vtx)
	count := 0
	for i, v := range vtx {
		if v == vtx[(i+1)%N] {
			continue
		}
		sum = sum.Add(M.vtx[v].pos)
		count++
	}
	if count == 0 {
		return sum
	}
	return sum.Mul(1 / float64(count))
}

// IsQuadMesh returns true if every face has 4 vertex slots (pseudo-quads included).
func (M *Mesh) IsQuadMesh() bool {
	for i := range M.faces {
		if M.faces[i].alive && len(M.faces[i].vtx) != 4 {
			return false
		}
	}
	return true
}

// EulerCharacteristic returns V - E + F (loop edges are not counted).
func (M *Mesh) EulerCharacteristic() int {
	return M.NumVertices() - M.NumEdges() + M.NumFaces()
}

// FromIndexedFaceSet builds a mesh whose vertex ids are the indices of ifs.Vertices.
func FromIndexedFaceSet(ifs *goquad.IndexedFaceSet, pseudo bool) (*Mesh, error) {
	M := New()
	M.pseudoQuads = pseudo
	for _, pos := range ifs.Vertices {
		M.AddVertex(pos)
	}
	for i, face := range ifs.Faces {
		vtx := make([]goquad.VtxID, len(face))
		for j, idx := range face {
			vtx[j] = goquad.VtxID(idx)
		}
		if _, err := M.AddFace(vtx); err != nil {
			return nil, errors.Wrapf(err, "face %d", i)
		}
	}
	return M, nil
}

// ToIndexedFaceSet exports this mesh with vertices renumbered 0..N-1 in ascending id order.
// The returned map gives the index assigned to each vertex id.
func (M *Mesh) ToIndexedFaceSet() (*goquad.IndexedFaceSet, map[goquad.VtxID]int) {
	remap := make(map[goquad.VtxID]int, M.numVtx)
	ifs := &goquad.IndexedFaceSet{
		Vertices: make([]r3.Vector, 0, M.numVtx),
		Faces:    make([][]int, 0, M.numFaces),
	}
	for _, v := range M.Vertices() {
		remap[v] = len(ifs.Vertices)
		ifs.Vertices = append(ifs.Vertices, M.vtx[v].pos)
	}
	for _, f := range M.Faces() {
		vtx := M.faces[f].vtx
		face := make([]int, len(vtx))
		for i, v := range vtx {
			face[i] = remap[v]
		}
		ifs.Faces = append(ifs.Faces, face)
	}
	return ifs, remap
}
