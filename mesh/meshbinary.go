package mesh

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/lumenrender/lumen/linear"
)

// TexturePaths names the three material textures a mesh's binary
// stream references (spec §6 Mesh binary format).
type TexturePaths struct {
	Albedo, Normal, Specular string
}

// MeshBinary is the decoded contents of one mesh stream: index and
// vertex buffers ready to upload, plus the bounding box and texture
// references a material/instance needs.
type MeshBinary struct {
	IndexCount  uint32
	VertexCount uint32
	AABB        linear.AABB
	Textures    TexturePaths

	// Index16 holds the index buffer when IndexCount < 65535;
	// Index32 holds it otherwise. Exactly one is populated.
	Index16 []uint16
	Index32 []uint32

	// VertexBuffer is the packed vertex stream: position f32x3, uv
	// f16x2, normal/tangent/bitangent each 10_10_10_2 (28 bytes/vertex).
	VertexBuffer []byte
}

// VertexStride is the packed per-vertex byte size (spec §3, §6).
const VertexStride = 12 + 4 + 4 + 4 + 4

// Decode reads one MeshBinary stream from r.
func Decode(r io.Reader) (MeshBinary, error) {
	var mb MeshBinary

	var header struct {
		IndexCount  uint32
		VertexCount uint32
		Min, Max    [3]float32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return mb, fmt.Errorf("mesh: reading header: %w", err)
	}
	mb.IndexCount = header.IndexCount
	mb.VertexCount = header.VertexCount
	mb.AABB = linear.AABB{Min: header.Min, Max: header.Max}

	var err error
	mb.Textures.Albedo, err = readString(r)
	if err != nil {
		return mb, fmt.Errorf("mesh: reading albedo path: %w", err)
	}
	mb.Textures.Normal, err = readString(r)
	if err != nil {
		return mb, fmt.Errorf("mesh: reading normal path: %w", err)
	}
	mb.Textures.Specular, err = readString(r)
	if err != nil {
		return mb, fmt.Errorf("mesh: reading specular path: %w", err)
	}

	if mb.IndexCount < 65535 {
		mb.Index16 = make([]uint16, mb.IndexCount)
		if err := binary.Read(r, binary.LittleEndian, mb.Index16); err != nil {
			return mb, fmt.Errorf("mesh: reading 16-bit index buffer: %w", err)
		}
	} else {
		mb.Index32 = make([]uint32, mb.IndexCount)
		if err := binary.Read(r, binary.LittleEndian, mb.Index32); err != nil {
			return mb, fmt.Errorf("mesh: reading 32-bit index buffer: %w", err)
		}
	}

	mb.VertexBuffer = make([]byte, uint64(mb.VertexCount)*VertexStride)
	if _, err := io.ReadFull(r, mb.VertexBuffer); err != nil {
		return mb, fmt.Errorf("mesh: reading vertex buffer: %w", err)
	}

	return mb, nil
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// IndexSize returns 2 or 4, matching the 16/32-bit split spec §6 names.
func (mb MeshBinary) IndexSize() int {
	if mb.Index16 != nil {
		return 2
	}
	return 4
}
