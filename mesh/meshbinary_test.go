package mesh

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint32(len(s)))
	buf.WriteString(s)
}

func encodeTestMesh(indexCount, vertexCount uint32, indices16 []uint16, indices32 []uint32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, indexCount)
	binary.Write(&buf, binary.LittleEndian, vertexCount)
	binary.Write(&buf, binary.LittleEndian, [3]float32{0, 0, 0})
	binary.Write(&buf, binary.LittleEndian, [3]float32{1, 1, 1})
	writeString(&buf, "albedo.dds")
	writeString(&buf, "normal.dds")
	writeString(&buf, "specular.dds")

	if indices16 != nil {
		binary.Write(&buf, binary.LittleEndian, indices16)
	} else {
		binary.Write(&buf, binary.LittleEndian, indices32)
	}

	vertexBuf := make([]byte, uint64(vertexCount)*VertexStride)
	buf.Write(vertexBuf)

	return buf.Bytes()
}

func TestDecodeUses16BitIndicesUnderThreshold(t *testing.T) {
	data := encodeTestMesh(3, 4, []uint16{0, 1, 2}, nil)
	mb, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mb.IndexSize() != 2 {
		t.Fatalf("IndexSize() = %d, want 2", mb.IndexSize())
	}
	if len(mb.Index16) != 3 {
		t.Fatalf("len(Index16) = %d, want 3", len(mb.Index16))
	}
	if mb.Textures.Albedo != "albedo.dds" {
		t.Fatalf("Albedo = %q", mb.Textures.Albedo)
	}
	if mb.AABB.Max[0] != 1 {
		t.Fatalf("AABB.Max[0] = %v, want 1", mb.AABB.Max[0])
	}
}

func TestDecodeUses32BitIndicesAtThreshold(t *testing.T) {
	indices := make([]uint32, 65535)
	data := encodeTestMesh(65535, 3, nil, indices)
	mb, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mb.IndexSize() != 4 {
		t.Fatalf("IndexSize() = %d, want 4 at count == 65535", mb.IndexSize())
	}
	if len(mb.Index32) != 65535 {
		t.Fatalf("len(Index32) = %d, want 65535", len(mb.Index32))
	}
}

func TestDecodeVertexBufferSizedByStride(t *testing.T) {
	data := encodeTestMesh(3, 10, []uint16{0, 1, 2}, nil)
	mb, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(mb.VertexBuffer) != 10*VertexStride {
		t.Fatalf("len(VertexBuffer) = %d, want %d", len(mb.VertexBuffer), 10*VertexStride)
	}
}

func TestDecodeTruncatedStreamErrors(t *testing.T) {
	data := encodeTestMesh(3, 4, []uint16{0, 1, 2}, nil)
	truncated := data[:len(data)-5]
	_, err := Decode(bytes.NewReader(truncated))
	if err == nil {
		t.Fatalf("expected an error decoding a truncated stream")
	}
}
