package navmesh

import (
	"errors"
	"fmt"

	"github.com/gorustyt/polynavmesh/common"
	"github.com/gorustyt/polynavmesh/common/message"
	"github.com/gorustyt/polynavmesh/common/rw"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	NavMeshMagic   = 'P'<<24 | 'N'<<16 | 'A'<<8 | 'V' ///< 'PNAV'
	NavMeshVersion = 1
)

var (
	ErrWrongMagic   = errors.New("navmesh: wrong magic number")
	ErrWrongVersion = errors.New("navmesh: unsupported data version")
	ErrCorrupt      = errors.New("navmesh: corrupt data")
)

const (
	fieldVertices   protowire.Number = 1
	fieldIndices    protowire.Number = 2
	fieldGeneration protowire.Number = 3
)

// ToBin layout, little endian:
// magic u32, version u32, generation u64, vertex count u32, triangle count u32,
// x/z pairs f32, index triples u32.
func (m *NavMesh) ToBin() []byte {
	w := rw.NewNavMeshDataBinWriter()
	w.WriteUInt32(NavMeshMagic)
	w.WriteUInt32(NavMeshVersion)
	w.WriteUInt64(m.Generation)
	w.WriteUInt32(uint32(len(m.Vertices)))
	w.WriteUInt32(uint32(len(m.Triangles)))
	verts := make([]float32, 0, 2*len(m.Vertices))
	for _, v := range m.Vertices {
		verts = append(verts, v.X(), v.Y())
	}
	w.WriteFloat32s(verts)
	idx := make([]uint32, 0, 3*len(m.Triangles))
	for _, t := range m.Triangles {
		idx = append(idx, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	w.WriteUInt32s(idx)
	return w.GetWriteBytes()
}

func (m *NavMesh) FromBin(data []byte) error {
	r := rw.NewNavMeshDataBinReader(data)
	if magic := r.ReadUInt32(); r.Err() == nil && magic != NavMeshMagic {
		return ErrWrongMagic
	}
	if version := r.ReadUInt32(); r.Err() == nil && version != NavMeshVersion {
		return fmt.Errorf("%w: %d", ErrWrongVersion, version)
	}
	generation := r.ReadUInt64()
	nverts := int(r.ReadUInt32())
	ntris := int(r.ReadUInt32())
	if err := r.Err(); err != nil {
		return fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if r.Size() != 8*nverts+12*ntris {
		return fmt.Errorf("%w: expected %d payload bytes, have %d", ErrCorrupt, 8*nverts+12*ntris, r.Size())
	}
	verts := make([]float32, 2*nverts)
	r.ReadFloat32s(verts)
	idx := make([]uint32, 3*ntris)
	r.ReadUInt32s(idx)
	if err := r.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	out, err := assemble(verts, widen(idx))
	if err != nil {
		return err
	}
	out.Generation = generation
	*m = *out
	return nil
}

// ToProto encodes the mesh in protobuf wire format:
// field 1 packed float32 x/z pairs, field 2 packed varint indices, field 3 generation.
func (m *NavMesh) ToProto() []byte {
	verts := make([]float32, 0, 2*len(m.Vertices))
	for _, v := range m.Vertices {
		verts = append(verts, v.X(), v.Y())
	}
	idx := make([]uint64, 0, 3*len(m.Triangles))
	for _, t := range m.Triangles {
		idx = append(idx, uint64(t[0]), uint64(t[1]), uint64(t[2]))
	}
	var b []byte
	b = message.AppendPackedFloat32s(b, fieldVertices, verts)
	b = message.AppendPackedVarints(b, fieldIndices, idx)
	if m.Generation != 0 {
		b = message.AppendVarint(b, fieldGeneration, m.Generation)
	}
	return b
}

func (m *NavMesh) FromProto(data []byte) error {
	var (
		verts      []float32
		idx        []uint64
		generation uint64
	)
	err := message.Walk(data, func(f message.Field) error {
		var err error
		switch f.Num {
		case fieldVertices:
			var v []float32
			v, err = message.ParsePackedFloat32s(f.Bytes)
			verts = append(verts, v...)
		case fieldIndices:
			var v []uint64
			v, err = message.ParsePackedVarints(f.Bytes)
			idx = append(idx, v...)
		case fieldGeneration:
			generation = f.Varint
		}
		return err
	})
	if err != nil {
		return err
	}
	out, err := assemble(verts, idx)
	if err != nil {
		return err
	}
	out.Generation = generation
	*m = *out
	return nil
}

func widen(v []uint32) []uint64 {
	res := make([]uint64, len(v))
	for i, x := range v {
		res[i] = uint64(x)
	}
	return res
}

func assemble(verts []float32, idx []uint64) (*NavMesh, error) {
	if len(verts)%2 != 0 {
		return nil, fmt.Errorf("%w: odd coordinate count %d", ErrCorrupt, len(verts))
	}
	if len(idx)%3 != 0 {
		return nil, fmt.Errorf("%w: index count %d is not a multiple of 3", ErrCorrupt, len(idx))
	}
	m := &NavMesh{
		Vertices:  make([]common.Vec2, len(verts)/2),
		Triangles: make([][3]int, len(idx)/3),
	}
	for i := range m.Vertices {
		m.Vertices[i] = common.Vec2{verts[2*i], verts[2*i+1]}
	}
	for i := range m.Triangles {
		for k := 0; k < 3; k++ {
			v := idx[3*i+k]
			if v >= uint64(len(m.Vertices)) {
				return nil, fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrCorrupt, i, v, len(m.Vertices))
			}
			m.Triangles[i][k] = int(v)
		}
	}
	return m, nil
}
