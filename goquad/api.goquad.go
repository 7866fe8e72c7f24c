package goquad

import (
	"runtime"

	"github.com/golang/geo/r3"
)

// VtxID identifies a vertex of a mesh.  Auto-assigned ids are the next unused non-negative integer.
type VtxID int

// FaceID identifies a face of a mesh.
type FaceID int

// StripID identifies a strip of a QuadMesh (0, 1, 2, .. in order of discovery).
type StripID int

const (

	// NoFace is the face of a boundary half-edge.
	NoFace FaceID = -1

	// DefaultWeldTolerance is the quantization step used to decide that two points coincide.
	DefaultWeldTolerance = 1e-3

	// DefaultPoleTolerance is the quantization step used to match pole locations to mesh vertices.
	DefaultPoleTolerance = 1e-3
)

// Edge is a directed vertex pair (U, V).  As a half-edge, it is associated with the face on its left.
type Edge struct {
	U VtxID
	V VtxID
}

// Reversed returns the opposite half-edge (V, U).
func (e Edge) Reversed() Edge {
	return Edge{e.V, e.U}
}

// Undirected returns the canonical form of this edge, where U <= V.
func (e Edge) Undirected() Edge {
	if e.U > e.V {
		return Edge{e.V, e.U}
	}
	return e
}

// IsLoop returns true for a collapsed edge (c, c) of a pseudo-quad face.
func (e Edge) IsLoop() bool {
	return e.U == e.V
}

// IndexedFaceSet is the interchange shape of a mesh: a vertex array and per-face index lists.
// The index of a vertex in Vertices is its id.
type IndexedFaceSet struct {
	Vertices []r3.Vector
	Faces    [][]int
}

// NumFaces returns the number of faces in this set.
func (ifs *IndexedFaceSet) NumFaces() int {
	return len(ifs.Faces)
}

// Opts specifies tolerances and limits for the mesh engine.
type Opts struct {
	WeldTolerance       float64 // omit for DefaultWeldTolerance
	PoleTolerance       float64 // omit for DefaultPoleTolerance
	Workers             int     // max concurrent patch builds; omit for GOMAXPROCS
	RequireEdgeChildren bool    // if set, densification fails on a coarse edge without child data
}

// DefaultOpts are the Opts used when none are given.
var DefaultOpts = Opts{
	WeldTolerance: DefaultWeldTolerance,
	PoleTolerance: DefaultPoleTolerance,
}

// Normalize returns a copy of opts with zero values replaced by defaults.
func (opts Opts) Normalize() Opts {
	if opts.WeldTolerance <= 0 {
		opts.WeldTolerance = DefaultWeldTolerance
	}
	if opts.PoleTolerance <= 0 {
		opts.PoleTolerance = DefaultPoleTolerance
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return opts
}
