package geom

import (
	"github.com/golang/geo/r3"
)

// Polyline is an ordered sequence of points.
type Polyline []r3.Vector

// Length returns the sum of the segment lengths.
func (pl Polyline) Length() float64 {
	L := 0.
	for i := 1; i < len(pl); i++ {
		L += pl[i].Distance(pl[i-1])
	}
	return L
}

// Lerp returns the point (1-t)*a + t*b.
func Lerp(a, b r3.Vector, t float64) r3.Vector {
	return a.Add(b.Sub(a).Mul(t))
}

// PointAt returns the point at normalized arc-length parameter t in [0, 1].
// The first and last points are returned exactly for t <= 0 and t >= 1.
func (pl Polyline) PointAt(t float64) r3.Vector {
	N := len(pl)
	switch {
	case N == 0:
		return r3.Vector{}
	case N == 1 || t <= 0:
		return pl[0]
	case t >= 1:
		return pl[N-1]
	}

	total := pl.Length()
	if total == 0 {
		return pl[0]
	}

	target := t * total
	for i := 1; i < N; i++ {
		seg := pl[i].Distance(pl[i-1])
		if target <= seg && seg > 0 {
			return Lerp(pl[i-1], pl[i], target/seg)
		}
		target -= seg
	}
	return pl[N-1]
}

// Divide returns n+1 points at equal parameter steps along the polyline (n >= 1).
func (pl Polyline) Divide(n int) []r3.Vector {
	pts := make([]r3.Vector, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = pl.PointAt(float64(i) / float64(n))
	}
	return pts
}

// DivideSegment returns n+1 points at equal steps from a to b (n >= 1), a and b included exactly.
func DivideSegment(a, b r3.Vector, n int) []r3.Vector {
	pts := make([]r3.Vector, n+1)
	pts[0] = a
	for i := 1; i < n; i++ {
		pts[i] = Lerp(a, b, float64(i)/float64(n))
	}
	pts[n] = b
	return pts
}

// Reverse reverses pts in place and returns it.
func Reverse(pts []r3.Vector) []r3.Vector {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
	return pts
}
