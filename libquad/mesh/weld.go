package mesh

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/2x3systems/quadpattern/goquad"
	"github.com/2x3systems/quadpattern/libquad/geom"
)

// JoinAndWeld joins independently generated patches into a single pseudo-quad mesh, merging vertices
// whose quantized positions coincide.  A welded vertex keeps the position of its first occurrence.
//
// Cells that collapse to three distinct vertices with a consecutive repeat are kept as pseudo-quads;
// cells that collapse further are dropped.
//
// Returns the welded mesh and, for each patch, the welded vertex id of each patch vertex.
func JoinAndWeld(patches []*geom.Patch, q geom.Quantizer) (*Mesh, [][]goquad.VtxID, error) {
	M := NewPseudoQuad()

	welded := redblacktree.Tree{
		Comparator: geom.KeyComparator,
	}

	remap := make([][]goquad.VtxID, len(patches))
	for pi, P := range patches {
		ids := make([]goquad.VtxID, len(P.Vertices))
		for i, pos := range P.Vertices {
			key := q.Key(pos)
			if id, found := welded.Get(key); found {
				ids[i] = id.(goquad.VtxID)
			} else {
				ids[i] = M.AddVertex(pos)
				welded.Put(key, ids[i])
			}
		}
		remap[pi] = ids
	}

	dropped := 0
	for pi, P := range patches {
		ids := remap[pi]
		for _, cell := range P.Faces {
			vtx := make([]goquad.VtxID, len(cell))
			distinct := make(map[goquad.VtxID]struct{}, len(cell))
			for i, idx := range cell {
				vtx[i] = ids[idx]
				distinct[vtx[i]] = struct{}{}
			}

			switch {
			case len(distinct) == len(vtx):
			case len(distinct) == 3 && len(collapse(vtx)) == 3:
			default:
				dropped++
				continue
			}

			if _, err := M.AddFace(vtx); err != nil {
				return nil, nil, errors.Wrapf(err, "patch %d", pi)
			}
		}
	}

	if dropped > 0 {
		klog.V(3).Infof("weld: dropped %d collapsed cells", dropped)
	}

	return M, remap, nil
}
