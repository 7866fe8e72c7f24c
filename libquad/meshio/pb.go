package meshio

import (
	"github.com/gogo/protobuf/proto"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
)

// MeshMsg is the wire form of an IndexedFaceSet (see meshio.proto).
//
// Coords holds x, y, z per vertex; FaceVerts holds the vertex indices of every face back to back,
// with FaceSizes giving the length of each.
type MeshMsg struct {
	Coords    []float64 `protobuf:"fixed64,1,rep,packed,name=Coords,proto3" json:"Coords,omitempty"`
	FaceSizes []uint32  `protobuf:"varint,2,rep,packed,name=FaceSizes,proto3" json:"FaceSizes,omitempty"`
	FaceVerts []uint32  `protobuf:"varint,3,rep,packed,name=FaceVerts,proto3" json:"FaceVerts,omitempty"`
}

func (m *MeshMsg) Reset()         { *m = MeshMsg{} }
func (m *MeshMsg) String() string { return proto.CompactTextString(m) }
func (*MeshMsg) ProtoMessage()    {}

// Encode serializes ifs to its binary wire form.
func Encode(ifs *goquad.IndexedFaceSet) ([]byte, error) {
	msg := &MeshMsg{
		Coords:    make([]float64, 0, 3*len(ifs.Vertices)),
		FaceSizes: make([]uint32, 0, len(ifs.Faces)),
	}
	for _, v := range ifs.Vertices {
		msg.Coords = append(msg.Coords, v.X, v.Y, v.Z)
	}
	for fi, face := range ifs.Faces {
		msg.FaceSizes = append(msg.FaceSizes, uint32(len(face)))
		for _, idx := range face {
			if idx < 0 || idx >= len(ifs.Vertices) {
				return nil, errors.Wrapf(goquad.ErrBadEncoding, "face %d: vertex index %d out of range", fi, idx)
			}
			msg.FaceVerts = append(msg.FaceVerts, uint32(idx))
		}
	}

	buf, err := proto.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(goquad.ErrBadEncoding, err.Error())
	}
	return buf, nil
}

// Decode parses the binary wire form produced by Encode.
func Decode(buf []byte) (*goquad.IndexedFaceSet, error) {
	msg := &MeshMsg{}
	if err := proto.Unmarshal(buf, msg); err != nil {
		return nil, errors.Wrap(goquad.ErrBadEncoding, err.Error())
	}
	if len(msg.Coords)%3 != 0 {
		return nil, errors.Wrapf(goquad.ErrBadEncoding, "%d coords is not a multiple of 3", len(msg.Coords))
	}

	numVerts := len(msg.Coords) / 3
	ifs := &goquad.IndexedFaceSet{
		Vertices: make([]r3.Vector, numVerts),
		Faces:    make([][]int, 0, len(msg.FaceSizes)),
	}
	for i := range ifs.Vertices {
		c := msg.Coords[3*i:]
		ifs.Vertices[i] = r3.Vector{X: c[0], Y: c[1], Z: c[2]}
	}

	pos := 0
	for fi, sz := range msg.FaceSizes {
		end := pos + int(sz)
		if end > len(msg.FaceVerts) {
			return nil, errors.Wrapf(goquad.ErrBadEncoding, "face %d overruns vertex list", fi)
		}
		face := make([]int, sz)
		for i, idx := range msg.FaceVerts[pos:end] {
			if int(idx) >= numVerts {
				return nil, errors.Wrapf(goquad.ErrBadEncoding, "face %d: vertex index %d out of range", fi, idx)
			}
			face[i] = int(idx)
		}
		ifs.Faces = append(ifs.Faces, face)
		pos = end
	}
	if pos != len(msg.FaceVerts) {
		return nil, errors.Wrapf(goquad.ErrBadEncoding, "%d trailing face vertices", len(msg.FaceVerts)-pos)
	}
	return ifs, nil
}
