package coarse_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/2x3systems/quadpattern/goquad"
	"github.com/2x3systems/quadpattern/libquad/coarse"
	"github.com/2x3systems/quadpattern/libquad/fixtures"
	"github.com/2x3systems/quadpattern/libquad/geom"
	"github.com/2x3systems/quadpattern/libquad/strip"
)

func loadAnnulus(t *testing.T, opts goquad.Opts) *coarse.CoarseQuadMesh {
	cm, err := coarse.FromIndexedFaceSet(fixtures.Annulus12(), opts)
	require.NoError(t, err)
	require.Equal(t, 9, cm.NumStrips())
	return cm
}

func edgeDensity(t *testing.T, cm *coarse.CoarseQuadMesh, u, v goquad.VtxID) int {
	sid, err := cm.EdgeStrip(u, v)
	require.NoError(t, err)
	d, err := cm.StripDensity(sid)
	require.NoError(t, err)
	return d
}

// expectedCounts returns the dense vertex and face counts implied by the current strip densities.
func expectedCounts(t *testing.T, cm *coarse.CoarseQuadMesh) (numVtx, numFaces int) {
	numVtx = cm.NumVertices()
	for _, e := range cm.Edges() {
		if !e.IsLoop() {
			numVtx += edgeDensity(t, cm, e.U, e.V) - 1
		}
	}
	for _, f := range cm.Faces() {
		vtx := cm.FaceVertices(f)
		d1 := edgeDensity(t, cm, vtx[0], vtx[1])
		d2 := edgeDensity(t, cm, vtx[1], vtx[2])
		numVtx += (d1 - 1) * (d2 - 1)
		numFaces += d1 * d2
	}
	return
}

func checkWelded(t *testing.T, dense *strip.QuadMesh) {
	checkWeldedAt(t, dense, goquad.DefaultWeldTolerance)
}

func checkWeldedAt(t *testing.T, dense *strip.QuadMesh, tol float64) {
	q := geom.NewQuantizer(tol)
	seen := make(map[geom.GeomKey]goquad.VtxID)
	for _, v := range dense.Vertices() {
		k := q.Key(dense.VertexPos(v))
		if prev, dupe := seen[k]; dupe {
			t.Fatalf("vertices %d and %d coincide", prev, v)
		}
		seen[k] = v
	}
}

func TestDensifyDensityOne(t *testing.T) {
	cm := loadAnnulus(t, goquad.DefaultOpts)

	dense, err := cm.Densify()
	require.NoError(t, err)
	require.Equal(t, 20, dense.NumVertices())
	require.Equal(t, 12, dense.NumFaces())
	require.Equal(t, 32, dense.NumEdges())
	require.Same(t, dense, cm.DenseMesh())

	for _, f := range cm.Faces() {
		want := cm.FaceVertices(f)
		for i, v := range want {
			child, err := cm.VertexChild(v)
			require.NoError(t, err)
			require.Equal(t, cm.VertexPos(v), dense.VertexPos(child))
			want[i] = child
		}
		g, exists := dense.HalfedgeFace(want[0], want[1])
		require.True(t, exists)
		if diff := cmp.Diff(want, dense.FaceVertices(g)); diff != "" {
			t.Fatalf("face %d mismatch (-want +got):\n%s", f, diff)
		}
	}
}

func TestDensifyUniform(t *testing.T) {
	cm := loadAnnulus(t, goquad.Opts{Workers: 3})
	require.NoError(t, cm.SetStripsDensity(2))

	dense, err := cm.Densify()
	require.NoError(t, err)
	require.Equal(t, 64, dense.NumVertices())
	require.Equal(t, 48, dense.NumFaces())
	require.Equal(t, 0, dense.EulerCharacteristic())
	checkWelded(t, dense)

	child, err := cm.EdgeChild(4, 13)
	require.NoError(t, err)
	require.Len(t, child, 3)
	c4, _ := cm.VertexChild(4)
	c13, _ := cm.VertexChild(13)
	require.Equal(t, c4, child[0])
	require.Equal(t, c13, child[2])

	rev, err := cm.EdgeChild(13, 4)
	require.NoError(t, err)
	require.Equal(t, []goquad.VtxID{child[2], child[1], child[0]}, rev)

	loop, err := cm.FaceChild(0)
	require.NoError(t, err)
	require.Len(t, loop, 8)
}

func TestDensifyTargetLength(t *testing.T) {
	cm := loadAnnulus(t, goquad.DefaultOpts)
	require.NoError(t, cm.SetStripsDensityTarget(1))

	var densities []int
	for _, d := range cm.StripDensities() {
		densities = append(densities, d)
	}
	sort.Ints(densities)
	require.Equal(t, []int{5, 5, 5, 6, 6, 6, 7, 8, 10}, densities)

	numVtx, numFaces := expectedCounts(t, cm)
	require.Equal(t, 449, numFaces)
	require.Equal(t, 502, numVtx)

	dense, err := cm.Densify()
	require.NoError(t, err)
	require.Equal(t, numFaces, dense.NumFaces())
	require.Equal(t, numVtx, dense.NumVertices())
	require.True(t, dense.IsQuadMesh())
	require.Equal(t, 0, dense.EulerCharacteristic())
	checkWelded(t, dense)
}

func TestRoundTrip(t *testing.T) {
	cm := loadAnnulus(t, goquad.DefaultOpts)
	require.NoError(t, cm.SetStripsDensityTarget(1))
	dense, err := cm.Densify()
	require.NoError(t, err)

	cm2, err := coarse.FromQuadMesh(dense, goquad.DefaultOpts)
	require.NoError(t, err)
	require.Equal(t, cm.NumStrips(), cm2.NumStrips())
	require.Equal(t, cm.NumVertices(), cm2.NumVertices())
	require.Equal(t, cm.NumFaces(), cm2.NumFaces())
	require.Same(t, dense, cm2.DenseMesh())

	for _, e := range cm.Edges() {
		cu, err := cm.VertexChild(e.U)
		require.NoError(t, err)
		cv, err := cm.VertexChild(e.V)
		require.NoError(t, err)
		require.Equal(t, edgeDensity(t, cm, e.U, e.V), edgeDensity(t, cm2, cu, cv), "edge %v", e)

		child, err := cm2.EdgeChild(cu, cv)
		require.NoError(t, err)
		require.Equal(t, cu, child[0])
		require.Equal(t, cv, child[len(child)-1])
	}

	for _, f := range cm2.Faces() {
		loop, err := cm2.FaceChild(f)
		require.NoError(t, err)
		require.NotEmpty(t, loop)
		v, err := cm2.VertexChild(cm2.FaceVertices(f)[0])
		require.NoError(t, err)
		require.Contains(t, loop, v)
	}

	// Densifying again along the recovered child polylines reproduces the same mesh size.
	dense2, err := cm2.Densify()
	require.NoError(t, err)
	require.Equal(t, dense.NumVertices(), dense2.NumVertices())
	require.Equal(t, dense.NumFaces(), dense2.NumFaces())
	checkWelded(t, dense2)
}

func sortedDensities(cm *coarse.CoarseQuadMesh) []int {
	var densities []int
	for _, d := range cm.StripDensities() {
		densities = append(densities, d)
	}
	sort.Ints(densities)
	return densities
}

func TestRoundTripPatterns(t *testing.T) {
	type stripSetting struct {
		u, v goquad.VtxID
		d    int
	}
	tests := []struct {
		name      string
		ifs       *goquad.IndexedFaceSet
		poles     []r3.Vector
		densities []stripSetting
		uniform   int

		denseVtx, denseFaces     int
		numVtx, numFaces, strips int
		recovered                []int
	}{
		{
			name:     "pole fan unit",
			ifs:      fixtures.Triangle(),
			poles:    []r3.Vector{fixtures.PoleTip},
			denseVtx: 3, denseFaces: 1,
			numVtx: 3, numFaces: 1, strips: 2,
			recovered: []int{1, 1},
		},
		{
			// each dense pole edge ends a polyedge, so the recovered pattern splits the fan in two
			name:      "pole fan 2x3",
			ifs:       fixtures.Triangle(),
			poles:     []r3.Vector{fixtures.PoleTip},
			densities: []stripSetting{{0, 1, 2}, {1, 2, 3}},
			denseVtx:  10, denseFaces: 6,
			numVtx: 4, numFaces: 2, strips: 3,
			recovered: []int{1, 1, 3},
		},
		{
			name:     "cube",
			ifs:      fixtures.Cube(),
			uniform:  3,
			denseVtx: 56, denseFaces: 54,
			numVtx: 8, numFaces: 6, strips: 3,
			recovered: []int{3, 3, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, err := coarse.FromIndexedFaceSetWithPoles(tt.ifs, tt.poles, goquad.DefaultOpts)
			require.NoError(t, err)
			if tt.uniform > 0 {
				require.NoError(t, cm.SetStripsDensity(tt.uniform))
			}
			for _, ed := range tt.densities {
				sid, err := cm.EdgeStrip(ed.u, ed.v)
				require.NoError(t, err)
				require.NoError(t, cm.SetStripDensity(sid, ed.d))
			}

			dense, err := cm.Densify()
			require.NoError(t, err)
			require.Equal(t, tt.denseVtx, dense.NumVertices())
			require.Equal(t, tt.denseFaces, dense.NumFaces())

			cm2, err := coarse.FromQuadMesh(dense, goquad.DefaultOpts)
			require.NoError(t, err)
			require.Equal(t, tt.numVtx, cm2.NumVertices())
			require.Equal(t, tt.numFaces, cm2.NumFaces())
			require.Equal(t, tt.strips, cm2.NumStrips())
			require.Equal(t, tt.recovered, sortedDensities(cm2))

			dense2, err := cm2.Densify()
			require.NoError(t, err)
			require.Equal(t, dense.NumVertices(), dense2.NumVertices())
			require.Equal(t, dense.NumFaces(), dense2.NumFaces())
			checkWelded(t, dense2)
		})
	}
}

func TestDensifySubToleranceSpacing(t *testing.T) {
	cm, err := coarse.FromIndexedFaceSet(fixtures.Scaled(fixtures.Grid(1, 1), 0.01), goquad.DefaultOpts)
	require.NoError(t, err)
	require.NoError(t, cm.SetStripsDensity(20))

	// generated points are 5e-4 apart, half the weld tolerance
	dense, err := cm.Densify()
	require.NoError(t, err)
	require.Equal(t, 441, dense.NumVertices())
	require.Equal(t, 400, dense.NumFaces())
	require.True(t, dense.IsQuadMesh())
	require.Equal(t, 1, dense.EulerCharacteristic())
	checkWeldedAt(t, dense, 1e-5)
}

func TestDensifyPole(t *testing.T) {
	cm := coarse.New(goquad.DefaultOpts)
	cm.AddVertex(r3.Vector{})
	cm.AddVertex(r3.Vector{X: 2})
	cm.AddVertex(r3.Vector{X: 1, Y: 2})
	_, err := cm.AddFace([]goquad.VtxID{0, 1, 2, 2})
	require.NoError(t, err)
	require.NoError(t, cm.InitStripDensity())
	require.Equal(t, 2, cm.NumStrips())

	sid, err := cm.EdgeStrip(0, 1)
	require.NoError(t, err)
	require.NoError(t, cm.SetStripDensity(sid, 2))
	sid, err = cm.EdgeStrip(1, 2)
	require.NoError(t, err)
	require.NoError(t, cm.SetStripDensity(sid, 3))

	dense, err := cm.Densify()
	require.NoError(t, err)
	require.Equal(t, 10, dense.NumVertices())
	require.Equal(t, 6, dense.NumFaces())

	pole, err := cm.VertexChild(2)
	require.NoError(t, err)
	require.True(t, dense.IsPole(pole))

	pseudo := 0
	for _, f := range dense.Faces() {
		isPseudo, err := dense.IsFacePseudoQuad(f)
		require.NoError(t, err)
		if isPseudo {
			pseudo++
		}
	}
	require.Equal(t, 2, pseudo)
	checkWelded(t, dense)
}

func TestDensityErrors(t *testing.T) {
	cm := loadAnnulus(t, goquad.DefaultOpts)

	err := cm.SetStripDensity(0, 0)
	require.True(t, errors.Is(err, goquad.ErrInvalidDensity), "got %v", err)
	err = cm.SetStripsDensity(-1)
	require.True(t, errors.Is(err, goquad.ErrInvalidDensity), "got %v", err)
	err = cm.SetStripsDensityTarget(0)
	require.True(t, errors.Is(err, goquad.ErrInvalidTargetLength), "got %v", err)
	err = cm.SetStripDensityTarget(1, -2.5)
	require.True(t, errors.Is(err, goquad.ErrInvalidTargetLength), "got %v", err)
	err = cm.SetStripDensity(42, 3)
	require.True(t, errors.Is(err, goquad.ErrStripNotFound), "got %v", err)

	d, err := cm.StripDensity(0)
	require.NoError(t, err)
	require.Equal(t, 1, d)
}

func TestMissingChildData(t *testing.T) {
	cm := loadAnnulus(t, goquad.Opts{RequireEdgeChildren: true})

	_, err := cm.VertexChild(4)
	require.True(t, errors.Is(err, goquad.ErrMissingChildData), "got %v", err)
	_, err = cm.FaceChild(0)
	require.True(t, errors.Is(err, goquad.ErrMissingChildData), "got %v", err)

	_, err = cm.Densify()
	require.True(t, errors.Is(err, goquad.ErrMissingChildData), "got %v", err)
	require.Nil(t, cm.DenseMesh())
}
