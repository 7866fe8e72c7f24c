package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// GeomKey is a point quantized onto a lattice of a given step, used to decide that two points coincide.
type GeomKey struct {
	X, Y, Z int64
}

// Quantizer maps points to GeomKeys.
//
// Two points share a key iff each coordinate rounds to the same multiple of Step.
// Points within Step of each other but straddling a rounding boundary get different keys,
// so callers that need seam points to weld must compute them identically on both sides.
type Quantizer struct {
	Step float64
}

// NewQuantizer returns a Quantizer with the given lattice step (tolerance).
func NewQuantizer(step float64) Quantizer {
	return Quantizer{
		Step: step,
	}
}

// Key returns the GeomKey of the given point.
func (q Quantizer) Key(p r3.Vector) GeomKey {
	inv := 1 / q.Step
	return GeomKey{
		X: int64(math.Round(p.X * inv)),
		Y: int64(math.Round(p.Y * inv)),
		Z: int64(math.Round(p.Z * inv)),
	}
}

// Equal returns true if a and b quantize to the same key.
func (q Quantizer) Equal(a, b r3.Vector) bool {
	return q.Key(a) == q.Key(b)
}

// CompareKeys orders GeomKeys lexicographically by X, Y, Z.
func CompareKeys(a, b GeomKey) int {
	switch {
	case a.X < b.X:
		return -1
	case a.X > b.X:
		return 1
	case a.Y < b.Y:
		return -1
	case a.Y > b.Y:
		return 1
	case a.Z < b.Z:
		return -1
	case a.Z > b.Z:
		return 1
	}
	return 0
}

// KeyComparator adapts CompareKeys for gods containers.
func KeyComparator(a, b interface{}) int {
	return CompareKeys(a.(GeomKey), b.(GeomKey))
}
