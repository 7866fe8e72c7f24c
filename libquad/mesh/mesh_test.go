package mesh_test

import (
	"errors"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/2x3systems/quadpattern/goquad"
	"github.com/2x3systems/quadpattern/libquad/fixtures"
	"github.com/2x3systems/quadpattern/libquad/geom"
	"github.com/2x3systems/quadpattern/libquad/mesh"
)

func addVertices(M *mesh.Mesh, n int) {
	for i := 0; i < n; i++ {
		M.AddVertex(r3.Vector{X: float64(i)})
	}
}

func TestAddFaceDegenerate(t *testing.T) {
	M := mesh.New()
	addVertices(M, 4)

	_, err := M.AddFace([]goquad.VtxID{0, 1})
	require.True(t, errors.Is(err, goquad.ErrDegenerateFace), "got %v", err)
	require.Equal(t, 0, M.NumFaces())

	_, err = M.AddFace([]goquad.VtxID{0, 1, 2, 2})
	require.True(t, errors.Is(err, goquad.ErrDegenerateFace), "got %v", err)

	_, err = M.AddFace([]goquad.VtxID{0, 1, 7})
	require.True(t, errors.Is(err, goquad.ErrVtxNotFound), "got %v", err)
	require.Equal(t, 0, M.NumFaces())
	require.Equal(t, 0, M.NumEdges())

	f, err := M.AddFace([]goquad.VtxID{0, 1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, goquad.FaceID(0), f)

	_, err = M.AddFace([]goquad.VtxID{0, 1, 2, 3})
	require.True(t, errors.Is(err, goquad.ErrNonManifoldEdge), "got %v", err)
	require.Equal(t, 1, M.NumFaces())
}

func TestPseudoQuadFaces(t *testing.T) {
	M := mesh.NewPseudoQuad()
	addVertices(M, 4)

	_, err := M.AddFace([]goquad.VtxID{0, 1, 0, 2})
	require.True(t, errors.Is(err, goquad.ErrInvalidPseudoFace), "got %v", err)
	_, err = M.AddFace([]goquad.VtxID{0, 1, 2, 2, 3})
	require.True(t, errors.Is(err, goquad.ErrInvalidPseudoFace), "got %v", err)

	f, err := M.AddFace([]goquad.VtxID{0, 1, 2, 2})
	require.NoError(t, err)

	isPseudo, err := M.IsFacePseudoQuad(f)
	require.NoError(t, err)
	require.True(t, isPseudo)
	require.True(t, M.IsPole(2))
	require.False(t, M.IsPole(0))
	require.Contains(t, M.Neighbors(2), goquad.VtxID(2))
	require.Equal(t, 2, M.Valence(2))

	loopFace, exists := M.HalfedgeFace(2, 2)
	require.True(t, exists)
	require.Equal(t, f, loopFace)

	require.Equal(t, 3, M.NumEdges())
	require.Len(t, M.Edges(), 4)

	tri, err := M.AddFace([]goquad.VtxID{2, 1, 3})
	require.NoError(t, err)
	_, err = M.IsFacePseudoQuad(tri)
	require.True(t, errors.Is(err, goquad.ErrInvalidPseudoFace), "got %v", err)

	require.NoError(t, M.DeleteFace(f))
	require.False(t, M.IsPole(2))
	_, exists = M.HalfedgeFace(2, 2)
	require.False(t, exists)
}

func TestToMeshRenumbers(t *testing.T) {
	M := mesh.NewPseudoQuad()
	for _, id := range []goquad.VtxID{9, 5, 7} {
		_, err := M.AddVertexWithID(id, r3.Vector{Y: float64(id)})
		require.NoError(t, err)
	}
	_, err := M.AddFace([]goquad.VtxID{5, 7, 9, 9})
	require.NoError(t, err)

	plain, remap, err := M.ToMesh()
	require.NoError(t, err)
	if diff := cmp.Diff(map[goquad.VtxID]goquad.VtxID{5: 0, 7: 1, 9: 2}, remap); diff != "" {
		t.Fatalf("remap mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []goquad.VtxID{0, 1, 2}, plain.FaceVertices(0))
	require.Equal(t, r3.Vector{Y: 9}, plain.VertexPos(2))
	require.False(t, plain.AllowsPseudoQuads())
}

func TestToCollapsedIndexedFaceSet(t *testing.T) {
	M := mesh.NewPseudoQuad()
	for _, id := range []goquad.VtxID{9, 5, 7, 3} {
		_, err := M.AddVertexWithID(id, r3.Vector{Y: float64(id)})
		require.NoError(t, err)
	}
	_, err := M.AddFace([]goquad.VtxID{5, 7, 9, 9})
	require.NoError(t, err)
	_, err = M.AddFace([]goquad.VtxID{7, 5, 3, 9})
	require.NoError(t, err)

	ifs, index, err := M.ToCollapsedIndexedFaceSet()
	require.NoError(t, err)
	require.Len(t, ifs.Vertices, 4)
	require.Len(t, index, 4)
	for v, i := range index {
		require.Equal(t, M.VertexPos(v), ifs.Vertices[i], "vertex %d", v)
	}
	require.Len(t, ifs.Faces, 2)
	require.Equal(t, []int{index[5], index[7], index[9]}, ifs.Faces[0])
	require.Equal(t, []int{index[7], index[5], index[3], index[9]}, ifs.Faces[1])
}

func TestPseudoQuadFromMesh(t *testing.T) {
	M := mesh.New()
	M.AddVertex(r3.Vector{})
	M.AddVertex(r3.Vector{X: 1})
	M.AddVertex(r3.Vector{X: 1, Y: 1})
	M.AddVertex(r3.Vector{Y: 1})
	_, err := M.AddFace([]goquad.VtxID{0, 1, 2})
	require.NoError(t, err)
	_, err = M.AddFace([]goquad.VtxID{0, 2, 3})
	require.NoError(t, err)

	P, err := mesh.PseudoQuadFromMesh(M, []r3.Vector{{X: 1e-5}}, geom.NewQuantizer(1e-3))
	require.NoError(t, err)
	require.True(t, P.IsQuadMesh())
	require.True(t, P.IsPole(0))
	require.Equal(t, []goquad.VtxID{0, 0, 1, 2}, P.FaceVertices(0))
	require.Equal(t, []goquad.VtxID{0, 0, 2, 3}, P.FaceVertices(1))

	idx, err := mesh.VertexIndex(P, 0)
	require.NoError(t, err)
	require.Equal(t, 0.5, idx)
}

func TestAnnulusTopology(t *testing.T) {
	M, err := mesh.FromIndexedFaceSet(fixtures.Annulus12(), false)
	require.NoError(t, err)

	require.Equal(t, 20, M.NumVertices())
	require.Equal(t, 12, M.NumFaces())
	require.Equal(t, 32, M.NumEdges())
	require.Equal(t, 0, M.EulerCharacteristic())
	require.True(t, M.IsQuadMesh())

	loops := M.Boundaries()
	require.Len(t, loops, 2)
	require.ElementsMatch(t, []int{12, 4}, []int{len(loops[0]), len(loops[1])})

	for _, v := range []goquad.VtxID{4, 7, 8, 12} {
		require.Equal(t, 5, M.Valence(v), "vertex %d", v)
		require.False(t, M.IsVertexOnBoundary(v))
	}
	for _, v := range []goquad.VtxID{5, 6, 11, 18} {
		require.Equal(t, 2, M.Valence(v), "vertex %d", v)
		require.True(t, M.IsVertexOnBoundary(v))
	}

	sum, err := mesh.IndexSum(M)
	require.NoError(t, err)
	require.InDelta(t, 0, sum, 1e-12)

	require.True(t, M.IsEdgeOnBoundary(13, 19))
	require.False(t, M.IsEdgeOnBoundary(4, 13))
	require.ElementsMatch(t, []goquad.FaceID{1, 7}, M.FaceNeighbors(0))

	e, ok := M.FaceAdjacencyHalfedge(0, 1)
	require.True(t, ok)
	require.Equal(t, goquad.Edge{U: 0, V: 4}, e)

	w, err := M.FaceVertexAfter(8, 7)
	require.NoError(t, err)
	require.Equal(t, goquad.VtxID(4), w)
}

func TestIndexedFaceSetRoundTrip(t *testing.T) {
	src := fixtures.Annulus12()
	M, err := mesh.FromIndexedFaceSet(src, false)
	require.NoError(t, err)

	ifs, remap := M.ToIndexedFaceSet()
	require.Len(t, remap, len(src.Vertices))
	if diff := cmp.Diff(src.Faces, ifs.Faces); diff != "" {
		t.Fatalf("faces mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(src.Vertices, ifs.Vertices); diff != "" {
		t.Fatalf("vertices mismatch (-want +got):\n%s", diff)
	}
}

func TestVertexIndexSums(t *testing.T) {
	cube, err := mesh.FromIndexedFaceSet(fixtures.Cube(), false)
	require.NoError(t, err)
	require.Empty(t, cube.Boundaries())
	require.Equal(t, 2, cube.EulerCharacteristic())
	sum, err := mesh.IndexSum(cube)
	require.NoError(t, err)
	require.InDelta(t, 2, sum, 1e-12)

	fan, err := mesh.FromIndexedFaceSet(fixtures.Fan(5), false)
	require.NoError(t, err)
	idx, err := mesh.VertexIndex(fan, 0)
	require.NoError(t, err)
	require.Equal(t, -0.25, idx)
	sum, err = mesh.IndexSum(fan)
	require.NoError(t, err)
	require.InDelta(t, 1, sum, 1e-12)

	fan.AddVertex(r3.Vector{Z: 5})
	_, err = mesh.IndexSum(fan)
	require.True(t, errors.Is(err, goquad.ErrIsolatedVertex), "got %v", err)

	tri := mesh.New()
	addVertices(tri, 3)
	tri.AddFace([]goquad.VtxID{0, 1, 2})
	_, err = mesh.VertexIndex(tri, 0)
	require.True(t, errors.Is(err, goquad.ErrNotQuadMesh), "got %v", err)
}

func TestDeleteFace(t *testing.T) {
	M, err := mesh.FromIndexedFaceSet(fixtures.Grid(1, 2), false)
	require.NoError(t, err)
	require.Equal(t, 7, M.NumEdges())

	require.NoError(t, M.DeleteFace(0))
	require.Equal(t, 1, M.NumFaces())
	require.Equal(t, 6, M.NumVertices())
	require.Equal(t, 4, M.NumEdges())
	require.False(t, M.HasEdge(0, 1))
	require.True(t, M.HasEdge(1, 4))
	require.True(t, M.IsEdgeOnBoundary(1, 4))
	require.Empty(t, M.Neighbors(0))

	err = M.DeleteFace(0)
	require.True(t, errors.Is(err, goquad.ErrFaceNotFound), "got %v", err)
}

func TestCopyAndSubMesh(t *testing.T) {
	M, err := mesh.FromIndexedFaceSet(fixtures.Grid(2, 2), false)
	require.NoError(t, err)

	dup := M.Copy()
	require.NoError(t, dup.DeleteFace(3))
	require.Equal(t, 4, M.NumFaces())
	require.Equal(t, 3, dup.NumFaces())

	sub, err := M.SubMesh([]goquad.FaceID{0, 1})
	require.NoError(t, err)
	require.Equal(t, 2, sub.NumFaces())
	require.Equal(t, 6, sub.NumVertices())
	require.True(t, sub.HasFace(1))
	require.False(t, sub.HasVertex(8))
	require.Len(t, sub.Boundaries(), 1)
	require.Len(t, sub.Boundaries()[0], 6)
}

func TestJoinAndWeld(t *testing.T) {
	square := func(x0 float64) *geom.Patch {
		a := r3.Vector{X: x0}
		b := r3.Vector{X: x0, Y: 1}
		c := r3.Vector{X: x0 + 1, Y: 1}
		d := r3.Vector{X: x0 + 1}
		P, err := geom.DiscreteCoonsPatch(
			geom.DivideSegment(a, b, 2),
			geom.DivideSegment(b, c, 1),
			geom.DivideSegment(d, c, 2),
			geom.DivideSegment(a, d, 1))
		require.NoError(t, err)
		return P
	}

	patches := []*geom.Patch{square(0), square(1)}
	M, remap, err := mesh.JoinAndWeld(patches, geom.NewQuantizer(goquad.DefaultWeldTolerance))
	require.NoError(t, err)
	require.Equal(t, 9, M.NumVertices())
	require.Equal(t, 4, M.NumFaces())
	require.Len(t, remap, 2)

	// The right side of the first patch is the left side of the second.
	right := patches[0].Side(2)
	left := patches[1].Side(0)
	for i := range right {
		require.Equal(t, remap[0][right[i]], remap[1][left[len(left)-1-i]])
	}

	q := geom.NewQuantizer(goquad.DefaultWeldTolerance)
	keys := make(map[geom.GeomKey]goquad.VtxID)
	for _, v := range M.Vertices() {
		k := q.Key(M.VertexPos(v))
		_, dupe := keys[k]
		require.False(t, dupe, "vertex %d duplicates a welded position", v)
		keys[k] = v
	}
}

func TestJoinAndWeldCollapsed(t *testing.T) {
	a := r3.Vector{}
	b := r3.Vector{Y: 1}
	c := r3.Vector{X: 1, Y: 0.5}
	P, err := geom.DiscreteCoonsPatch(
		geom.DivideSegment(a, b, 1),
		geom.DivideSegment(b, c, 1),
		[]r3.Vector{c, c},
		geom.DivideSegment(a, c, 1))
	require.NoError(t, err)

	M, _, err := mesh.JoinAndWeld([]*geom.Patch{P}, geom.NewQuantizer(goquad.DefaultWeldTolerance))
	require.NoError(t, err)
	require.Equal(t, 3, M.NumVertices())
	require.Equal(t, 1, M.NumFaces())
	require.True(t, M.IsPole(1))
	require.Equal(t, []goquad.VtxID{0, 2, 1, 1}, M.FaceVertices(0))

	isPseudo, err := M.IsFacePseudoQuad(0)
	require.NoError(t, err)
	require.True(t, isPseudo)
}
