package strip

import (
	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
)

// IsVertexSingular returns true for poles, interior vertices of valence other than 4,
// and boundary vertices of valence other than 3.
func (Q *QuadMesh) IsVertexSingular(v goquad.VtxID) bool {
	if Q.IsPole(v) {
		return true
	}
	if Q.IsVertexOnBoundary(v) {
		return Q.Valence(v) != 3
	}
	return Q.Valence(v) != 4
}

// Singularities returns the singular vertices in ascending order.
func (Q *QuadMesh) Singularities() []goquad.VtxID {
	var sing []goquad.VtxID
	for _, v := range Q.Vertices() {
		if Q.Valence(v) > 0 && Q.IsVertexSingular(v) {
			sing = append(sing, v)
		}
	}
	return sing
}

// straightAhead returns the neighbor of regular interior vertex v opposite to u.
func (Q *QuadMesh) straightAhead(u, v goquad.VtxID) (goquad.VtxID, bool) {
	f1, _ := Q.HalfedgeFace(u, v)
	if f1 == goquad.NoFace {
		return v, false
	}
	x, err := Q.FaceVertexAfter(f1, v)
	if err != nil {
		return v, false
	}
	f2, _ := Q.HalfedgeFace(x, v)
	if f2 == goquad.NoFace {
		return v, false
	}
	w, err := Q.FaceVertexAfter(f2, v)
	if err != nil {
		return v, false
	}
	return w, true
}

// boundaryAhead returns the boundary neighbor of v other than u.
func (Q *QuadMesh) boundaryAhead(u, v goquad.VtxID) (goquad.VtxID, bool) {
	for _, w := range Q.Neighbors(v) {
		if w != u && w != v && Q.IsEdgeOnBoundary(v, w) {
			return w, true
		}
	}
	return v, false
}

// Polyedge returns the maximal straight vertex path starting with u, v.
//
// The path continues straight through regular interior vertices, and along the boundary through regular
// boundary vertices reached by a boundary edge.  It stops at a singularity, on reaching the boundary from
// the interior, or when it returns to u (in which case the last vertex is u).
func (Q *QuadMesh) Polyedge(u, v goquad.VtxID) []goquad.VtxID {
	path := []goquad.VtxID{u, v}
	maxLen := Q.NumEdges() + 1

	for len(path) <= maxLen {
		prev, cur := path[len(path)-2], path[len(path)-1]
		if cur == path[0] || Q.IsVertexSingular(cur) {
			break
		}

		var next goquad.VtxID
		var ok bool
		if Q.IsVertexOnBoundary(cur) {
			if !Q.IsEdgeOnBoundary(prev, cur) {
				break
			}
			next, ok = Q.boundaryAhead(prev, cur)
		} else {
			next, ok = Q.straightAhead(prev, cur)
		}
		if !ok {
			break
		}
		path = append(path, next)
	}
	return path
}

// Polyedges returns the maximal polyedges covering every non-loop edge exactly once.
func (Q *QuadMesh) Polyedges() [][]goquad.VtxID {
	covered := make(map[goquad.Edge]struct{})
	var polyedges [][]goquad.VtxID

	for _, e := range Q.Edges() {
		if e.IsLoop() {
			continue
		}
		if _, done := covered[e]; done {
			continue
		}

		fwd := Q.Polyedge(e.U, e.V)
		var p []goquad.VtxID
		if isClosed(fwd) {
			p = fwd
		} else {
			bwd := Q.Polyedge(e.V, e.U)
			for i := len(bwd) - 1; i >= 0; i-- {
				p = append(p, bwd[i])
			}
			p = append(p, fwd[2:]...)
		}
		markCovered(covered, p)
		polyedges = append(polyedges, p)
	}
	return polyedges
}

// SingularityPolyedges returns the polyedges that start at a singularity or run along the boundary,
// split at every vertex they share.  Each returned polyedge joins two singularity-polyedge endpoints
// and passes only through vertices it shares with no other.
func (Q *QuadMesh) SingularityPolyedges() ([][]goquad.VtxID, error) {
	covered := make(map[goquad.Edge]struct{})
	var kept [][]goquad.VtxID

	for _, s := range Q.Singularities() {
		for _, n := range Q.Neighbors(s) {
			if n == s {
				continue
			}
			if _, done := covered[goquad.Edge{U: s, V: n}.Undirected()]; done {
				continue
			}
			p := Q.Polyedge(s, n)
			markCovered(covered, p)
			kept = append(kept, p)
		}
	}

	// Boundary loops without singularities are not reached from any singular vertex
	for _, loop := range Q.Boundaries() {
		if _, done := covered[goquad.Edge{U: loop[0], V: loop[1%len(loop)]}.Undirected()]; done {
			continue
		}
		p := append(append([]goquad.VtxID(nil), loop...), loop[0])
		markCovered(covered, p)
		kept = append(kept, p)
	}

	count := make(map[goquad.VtxID]int)
	for _, p := range kept {
		if isClosed(p) {
			p = p[:len(p)-1]
		}
		for _, v := range p {
			count[v]++
		}
	}

	var split [][]goquad.VtxID
	for _, p := range kept {
		if isClosed(p) {
			ring := p[:len(p)-1]
			k := -1
			for i, v := range ring {
				if count[v] >= 2 {
					k = i
					break
				}
			}
			if k < 0 {
				return nil, errors.Wrapf(goquad.ErrUnclosedStripWalk, "closed polyedge through vertex %d has no junction", ring[0])
			}
			rotated := make([]goquad.VtxID, 0, len(p))
			rotated = append(rotated, ring[k:]...)
			rotated = append(rotated, ring[:k]...)
			p = append(rotated, ring[k])
		}

		start := 0
		for i := 1; i < len(p)-1; i++ {
			if count[p[i]] >= 2 {
				split = append(split, append([]goquad.VtxID(nil), p[start:i+1]...))
				start = i
			}
		}
		split = append(split, append([]goquad.VtxID(nil), p[start:]...))
	}
	return split, nil
}

// SingularityEdges returns the undirected edges lying on a singularity polyedge.
func (Q *QuadMesh) SingularityEdges() (map[goquad.Edge]struct{}, error) {
	polyedges, err := Q.SingularityPolyedges()
	if err != nil {
		return nil, err
	}
	edges := make(map[goquad.Edge]struct{})
	for _, p := range polyedges {
		markCovered(edges, p)
	}
	return edges, nil
}

// FacePatches returns the connected components of faces joined across edges that are not singularity edges.
// Components are listed in order of their lowest face id, and faces in breadth-first order.
func (Q *QuadMesh) FacePatches() ([][]goquad.FaceID, error) {
	singular, err := Q.SingularityEdges()
	if err != nil {
		return nil, err
	}

	seen := make(map[goquad.FaceID]struct{})
	var patches [][]goquad.FaceID
	for _, f := range Q.Faces() {
		if _, done := seen[f]; done {
			continue
		}
		seen[f] = struct{}{}
		patch := []goquad.FaceID{f}
		for i := 0; i < len(patch); i++ {
			for _, e := range Q.FaceHalfedges(patch[i]) {
				if e.IsLoop() {
					continue
				}
				if _, blocked := singular[e.Undirected()]; blocked {
					continue
				}
				g, _ := Q.HalfedgeFace(e.V, e.U)
				if g == goquad.NoFace {
					continue
				}
				if _, done := seen[g]; !done {
					seen[g] = struct{}{}
					patch = append(patch, g)
				}
			}
		}
		patches = append(patches, patch)
	}
	return patches, nil
}

func isClosed(p []goquad.VtxID) bool {
	return len(p) > 2 && p[0] == p[len(p)-1]
}

func markCovered(covered map[goquad.Edge]struct{}, p []goquad.VtxID) {
	for i := 1; i < len(p); i++ {
		covered[goquad.Edge{U: p[i-1], V: p[i]}.Undirected()] = struct{}{}
	}
}
