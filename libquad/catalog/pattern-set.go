package catalog

import (
	"encoding/binary"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/libquad/coarse"
)

// Signature summarizes the topology of a coarse pattern: two patterns with different signatures are
// never equivalent.  Equal signatures are treated as the same pattern.
type Signature struct {
	NumVertices   int
	NumFaces      int
	NumStrips     int
	NumBoundaries int
	Densities     []int       // strip densities, ascending
	Singular      map[int]int // (valence << 1 | onBoundary) => count of singular vertices
}

// SignatureOf computes the signature of cm.
func SignatureOf(cm *coarse.CoarseQuadMesh) Signature {
	sig := Signature{
		NumVertices:   cm.NumVertices(),
		NumFaces:      cm.NumFaces(),
		NumStrips:     cm.NumStrips(),
		NumBoundaries: len(cm.Boundaries()),
		Singular:      make(map[int]int),
	}
	for _, d := range cm.StripDensities() {
		sig.Densities = append(sig.Densities, d)
	}
	sort.Ints(sig.Densities)

	for _, v := range cm.Singularities() {
		key := cm.Valence(v) << 1
		if cm.IsVertexOnBoundary(v) {
			key |= 1
		}
		sig.Singular[key]++
	}
	return sig
}

// AppendTo appends the canonical byte encoding of this signature to buf.
func (sig *Signature) AppendTo(buf []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(sig.NumVertices))
	buf = binary.AppendUvarint(buf, uint64(sig.NumFaces))
	buf = binary.AppendUvarint(buf, uint64(sig.NumStrips))
	buf = binary.AppendUvarint(buf, uint64(sig.NumBoundaries))

	buf = binary.AppendUvarint(buf, uint64(len(sig.Densities)))
	for _, d := range sig.Densities {
		buf = binary.AppendUvarint(buf, uint64(d))
	}

	keys := make([]int, 0, len(sig.Singular))
	for k := range sig.Singular {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	buf = binary.AppendUvarint(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = binary.AppendUvarint(buf, uint64(k))
		buf = binary.AppendUvarint(buf, uint64(sig.Singular[k]))
	}
	return buf
}

// PatternSet reports whether an equivalent coarse pattern has already been added.
//
// After one or more calls to TryAdd(), call Close() for cleanup.
type PatternSet struct {
	db *badger.DB
}

// NewPatternSet returns an empty PatternSet.
func NewPatternSet() *PatternSet {
	return &PatternSet{}
}

func (set *PatternSet) autoOpen() error {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		db, err := badger.Open(dbOpts)
		if err != nil {
			return errors.Wrap(err, "open pattern set")
		}
		set.db = db
	}
	return nil
}

// TryAdd adds cm if no pattern with the same signature is present and returns true.
// If one is present, this call has no effect and returns false.
func (set *PatternSet) TryAdd(cm *coarse.CoarseQuadMesh) (bool, error) {
	sig := SignatureOf(cm)
	return set.tryAdd(sig.AppendTo(make([]byte, 0, 64)))
}

// Contains reports whether a pattern with the same signature as cm has been added.
func (set *PatternSet) Contains(cm *coarse.CoarseQuadMesh) (bool, error) {
	if set.db == nil {
		return false, nil
	}
	sig := SignatureOf(cm)
	key := sig.AppendTo(nil)

	found := false
	err := set.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		found = err == nil
		return err
	})
	return found, err
}

func (set *PatternSet) tryAdd(key []byte) (bool, error) {
	if err := set.autoOpen(); err != nil {
		return false, err
	}

	added := false
	err := set.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // already present
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		added = true
		return txn.Set(key, nil)
	})
	if err != nil {
		return false, errors.Wrap(err, "pattern set")
	}
	return added, nil
}

// Close removes all previously added patterns.
func (set *PatternSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}
