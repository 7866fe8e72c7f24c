package geom

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
)

// Patch is a structured grid of quads generated for a single coarse face.
//
// Vertex i of the grid at (row, col) is at index row*Cols + col.
type Patch struct {
	Rows     int         // number of points along ab (and dc)
	Cols     int         // number of points along ad (and bc)
	Vertices []r3.Vector // Rows*Cols points
	Faces    [][]int     // quads, oriented like the boundary a -> b -> c -> d
}

// Index returns the vertex index of grid point (row, col).
func (P *Patch) Index(row, col int) int {
	return row*P.Cols + col
}

// Corners returns the vertex indices of a, b, c, d.
func (P *Patch) Corners() [4]int {
	return [4]int{
		P.Index(0, 0),
		P.Index(P.Rows-1, 0),
		P.Index(P.Rows-1, P.Cols-1),
		P.Index(0, P.Cols-1),
	}
}

// Side returns the vertex indices along boundary side 0 (a->b), 1 (b->c), 2 (c->d) or 3 (d->a), both ends included.
func (P *Patch) Side(side int) []int {
	var idx []int
	switch side {
	case 0:
		for i := 0; i < P.Rows; i++ {
			idx = append(idx, P.Index(i, 0))
		}
	case 1:
		for j := 0; j < P.Cols; j++ {
			idx = append(idx, P.Index(P.Rows-1, j))
		}
	case 2:
		for i := P.Rows - 1; i >= 0; i-- {
			idx = append(idx, P.Index(i, P.Cols-1))
		}
	case 3:
		for j := P.Cols - 1; j >= 0; j-- {
			idx = append(idx, P.Index(0, j))
		}
	}
	return idx
}

// Boundary returns the closed boundary loop a -> b -> c -> d (each corner once).
func (P *Patch) Boundary() []int {
	loop := make([]int, 0, 2*(P.Rows+P.Cols))
	for side := 0; side < 4; side++ {
		s := P.Side(side)
		loop = append(loop, s[:len(s)-1]...)
	}
	return loop
}

// DiscreteCoonsPatch fills the region bounded by four point sequences with a quad grid
// using transfinite (Coons) interpolation:
//
//	b -----> c
//	^        ^
//	|        |
//	a -----> d
//
// ab and dc must have the same length (the rows), ad and bc the same length (the columns),
// and the sequences must agree at the corners.
func DiscreteCoonsPatch(ab, bc, dc, ad []r3.Vector) (*Patch, error) {
	n := len(ab)
	m := len(ad)
	if n < 2 || m < 2 {
		return nil, errors.Wrapf(goquad.ErrInconsistentDensity, "patch sides need >= 2 points (got %d, %d)", n, m)
	}
	if len(dc) != n || len(bc) != m {
		return nil, errors.Wrapf(goquad.ErrInconsistentDensity, "ab/dc have %d/%d points, ad/bc have %d/%d", n, len(dc), m, len(bc))
	}

	a, b, c, d := ab[0], ab[n-1], dc[n-1], dc[0]

	P := &Patch{
		Rows:     n,
		Cols:     m,
		Vertices: make([]r3.Vector, n*m),
	}

	for i := 0; i < n; i++ {
		v := float64(i) / float64(n-1)
		for j := 0; j < m; j++ {
			u := float64(j) / float64(m-1)

			var pt r3.Vector
			switch {
			case j == 0:
				pt = ab[i]
			case j == m-1:
				pt = dc[i]
			case i == 0:
				pt = ad[j]
			case i == n-1:
				pt = bc[j]
			default:
				ruled1 := ab[i].Mul(1 - u).Add(dc[i].Mul(u))
				ruled2 := ad[j].Mul(1 - v).Add(bc[j].Mul(v))
				bilinear := a.Mul((1 - u) * (1 - v)).
					Add(d.Mul(u * (1 - v))).
					Add(b.Mul((1 - u) * v)).
					Add(c.Mul(u * v))
				pt = ruled1.Add(ruled2).Sub(bilinear)
			}
			P.Vertices[P.Index(i, j)] = pt
		}
	}

	P.Faces = make([][]int, 0, (n-1)*(m-1))
	for i := 0; i < n-1; i++ {
		for j := 0; j < m-1; j++ {
			P.Faces = append(P.Faces, []int{
				P.Index(i, j),
				P.Index(i+1, j),
				P.Index(i+1, j+1),
				P.Index(i, j+1),
			})
		}
	}

	return P, nil
}
