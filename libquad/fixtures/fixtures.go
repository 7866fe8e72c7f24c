// Package fixtures provides reference meshes for tests and demos.
package fixtures

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/2x3systems/quadpattern/goquad"
)

// Annulus12 is a 12-face coarse quad mesh around a square hole (13, 19, 10, 3).
//
// Interior vertices 4, 7, 8 and 12 have valence 5, and corners 5, 6, 11 and 18 have valence 2.
// All other vertices are regular, so the mesh has 8 singularities and Euler characteristic 0.
func Annulus12() *goquad.IndexedFaceSet {
	return &goquad.IndexedFaceSet{
		Vertices: []r3.Vector{
			{X: 12.97441577911377, Y: 24.33094596862793},
			{X: 18.310085296630859, Y: 8.467333793640137},
			{X: 30.052173614501953, Y: 18.846050262451172},
			{X: 17.135400772094727, Y: 16.750551223754883},
			{X: 16.661802291870117, Y: 22.973459243774414},
			{X: 14.180665969848633, Y: 26.949295043945313},
			{X: 36.052761077880859, Y: 26.372636795043945},
			{X: 26.180931091308594, Y: 21.778648376464844},
			{X: 19.647378921508789, Y: 12.288106918334961},
			{X: 9.355668067932129, Y: 16.475896835327148},
			{X: 18.929227828979492, Y: 16.271940231323242},
			{X: 7.34525203704834, Y: 12.111981391906738},
			{X: 13.31309986114502, Y: 14.699410438537598},
			{X: 18.699434280395508, Y: 19.613750457763672},
			{X: 11.913931846618652, Y: 10.593378067016602},
			{X: 17.163223266601563, Y: 26.870658874511719},
			{X: 26.110898971557617, Y: 26.634754180908203},
			{X: 22.851469039916992, Y: 9.81414794921875},
			{X: 21.051292419433594, Y: 7.556171894073486},
			{X: 22.1370792388916, Y: 19.089054107666016},
		},
		Faces: [][]int{
			{15, 5, 0, 4},
			{0, 9, 12, 4},
			{9, 11, 14, 12},
			{14, 1, 8, 12},
			{1, 18, 17, 8},
			{17, 2, 7, 8},
			{2, 6, 16, 7},
			{16, 15, 4, 7},
			{13, 19, 7, 4},
			{19, 10, 8, 7},
			{10, 3, 12, 8},
			{3, 13, 4, 12},
		},
	}
}

// Cube is a closed quad mesh with 8 vertices of valence 3 (Euler characteristic 2).
func Cube() *goquad.IndexedFaceSet {
	return &goquad.IndexedFaceSet{
		Vertices: []r3.Vector{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
			{X: 1, Y: 0, Z: 1},
			{X: 1, Y: 1, Z: 1},
			{X: 0, Y: 1, Z: 1},
		},
		Faces: [][]int{
			{0, 3, 2, 1},
			{4, 5, 6, 7},
			{0, 1, 5, 4},
			{1, 2, 6, 5},
			{2, 3, 7, 6},
			{3, 0, 4, 7},
		},
	}
}

// Grid returns a flat rows x cols grid of unit quads in the XY plane.
// Vertex (i, j) has id i*(cols+1) + j and lies at (j, i, 0).
func Grid(rows, cols int) *goquad.IndexedFaceSet {
	ifs := &goquad.IndexedFaceSet{}
	for i := 0; i <= rows; i++ {
		for j := 0; j <= cols; j++ {
			ifs.Vertices = append(ifs.Vertices, r3.Vector{X: float64(j), Y: float64(i)})
		}
	}
	idx := func(i, j int) int { return i*(cols+1) + j }
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			ifs.Faces = append(ifs.Faces, []int{idx(i, j), idx(i, j+1), idx(i+1, j+1), idx(i+1, j)})
		}
	}
	return ifs
}

// Fan returns a disc of n quads around the center vertex 0; the center has valence n.
// Vertex 1+2k is on a spoke and 2+2k lies between spokes k and k+1.
func Fan(n int) *goquad.IndexedFaceSet {
	ifs := &goquad.IndexedFaceSet{
		Vertices: []r3.Vector{{}},
	}
	for k := 0; k < n; k++ {
		ifs.Vertices = append(ifs.Vertices, spoke(k, n, 2), spoke(2*k+1, 2*n, 2.5))
	}
	for k := 0; k < n; k++ {
		a := 1 + 2*k
		b := 2 + 2*k
		c := 1 + 2*((k+1)%n)
		ifs.Faces = append(ifs.Faces, []int{0, a, b, c})
	}
	return ifs
}

func spoke(k, n int, r float64) r3.Vector {
	theta := 2 * math.Pi * float64(k) / float64(n)
	return r3.Vector{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// PoleTip is the location of vertex 2 of Triangle.
var PoleTip = r3.Vector{X: 1, Y: 2}

// Triangle returns a single triangle; read with a pole at PoleTip it is the pseudo-quad [0, 1, 2, 2].
func Triangle() *goquad.IndexedFaceSet {
	return &goquad.IndexedFaceSet{
		Vertices: []r3.Vector{{}, {X: 2}, PoleTip},
		Faces:    [][]int{{0, 1, 2}},
	}
}

// Scaled returns a copy of ifs with every vertex position multiplied by s.
func Scaled(ifs *goquad.IndexedFaceSet, s float64) *goquad.IndexedFaceSet {
	out := &goquad.IndexedFaceSet{Faces: ifs.Faces}
	for _, pos := range ifs.Vertices {
		out.Vertices = append(out.Vertices, pos.Mul(s))
	}
	return out
}
