package meshio

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
)

// objFile is the subset of Wavefront OBJ carrying an indexed face set.
// Normals, texture coords, groups, materials and polylines are skipped.
type objFile struct {
	Lines []*objLine `parser:"@@*"`
}

type objLine struct {
	Vertex *objVertex `parser:"  \"v\" @@"`
	Face   *objFace   `parser:"| \"f\" @@"`
}

type objVertex struct {
	X     float64   `parser:"@Number"`
	Y     float64   `parser:"@Number"`
	Z     float64   `parser:"@Number"`
	Extra []float64 `parser:"@Number*"`
}

type objFace struct {
	Refs []string `parser:"@(Ref | Number) @(Ref | Number) @(Ref | Number)+"`
}

var sObjLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Skip", Pattern: `(?:vn|vt|vp|usemtl|mtllib|o|g|s|l)[ \t][^\n]*`},
	{Name: "Keyword", Pattern: `[vf]\b`},
	{Name: "Ref", Pattern: `-?\d+/-?\d*(?:/-?\d*)?`},
	{Name: "Number", Pattern: `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`},
	{Name: "whitespace", Pattern: `\s+`},
})

var sParseObj = participle.MustBuild[objFile](
	participle.Lexer(sObjLexer),
	participle.Elide("Comment", "Skip", "whitespace"),
)

// ReadOBJ reads the vertices and faces of a Wavefront OBJ stream.
// Negative (relative) face references are resolved against the vertices read so far.
func ReadOBJ(name string, r io.Reader) (*goquad.IndexedFaceSet, error) {
	obj, err := sParseObj.Parse(name, r)
	if err != nil {
		return nil, errors.Wrap(goquad.ErrBadEncoding, err.Error())
	}

	ifs := &goquad.IndexedFaceSet{}
	for _, line := range obj.Lines {
		switch {
		case line.Vertex != nil:
			ifs.Vertices = append(ifs.Vertices, r3.Vector{X: line.Vertex.X, Y: line.Vertex.Y, Z: line.Vertex.Z})
		case line.Face != nil:
			face := make([]int, len(line.Face.Refs))
			for i, ref := range line.Face.Refs {
				idx, err := resolveRef(ref, len(ifs.Vertices))
				if err != nil {
					return nil, errors.Wrapf(err, "%s: face %d", name, len(ifs.Faces)+1)
				}
				face[i] = idx
			}
			ifs.Faces = append(ifs.Faces, face)
		}
	}
	return ifs, nil
}

// resolveRef converts an OBJ vertex reference ("7", "-1", "7/2/5", "7//5") to a 0-based index.
func resolveRef(ref string, numVerts int) (int, error) {
	if slash := strings.IndexByte(ref, '/'); slash >= 0 {
		ref = ref[:slash]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, errors.Wrapf(goquad.ErrBadEncoding, "vertex ref %q", ref)
	}
	idx := n - 1
	if n < 0 {
		idx = numVerts + n
	}
	if n == 0 || idx < 0 || idx >= numVerts {
		return 0, errors.Wrapf(goquad.ErrBadEncoding, "vertex ref %d out of range", n)
	}
	return idx, nil
}

// WriteOBJ writes ifs as Wavefront OBJ (1-based face references).
func WriteOBJ(w io.Writer, ifs *goquad.IndexedFaceSet) error {
	bw := bufio.NewWriter(w)

	line := make([]byte, 0, 128)
	for _, v := range ifs.Vertices {
		line = append(line[:0], 'v')
		for _, x := range [3]float64{v.X, v.Y, v.Z} {
			line = append(line, ' ')
			line = strconv.AppendFloat(line, x, 'g', -1, 64)
		}
		line = append(line, '\n')
		bw.Write(line)
	}
	for _, face := range ifs.Faces {
		line = append(line[:0], 'f')
		for _, idx := range face {
			line = append(line, ' ')
			line = strconv.AppendInt(line, int64(idx+1), 10)
		}
		line = append(line, '\n')
		bw.Write(line)
	}

	return bw.Flush()
}
