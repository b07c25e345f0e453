package mesh

import "testing"

func TestDynamicMeshUpdateWritesWithinCapacity(t *testing.T) {
	vbuf := make([]byte, 4*VertexStride)
	ibuf := make([]byte, 8)

	dm := NewDynamicMesh(len(vbuf), len(ibuf),
		func() []byte { return vbuf }, func() []byte { return ibuf },
		func() {}, func() {})

	vertices := make([]byte, 2*VertexStride)
	for i := range vertices {
		vertices[i] = byte(i + 1)
	}
	indices := []uint16{0, 1, 2, 3}

	dm.Update(vertices, indices)

	if dm.VertexCount != 2 {
		t.Fatalf("VertexCount = %d, want 2", dm.VertexCount)
	}
	if dm.IndexCount != 4 {
		t.Fatalf("IndexCount = %d, want 4", dm.IndexCount)
	}
	for i, v := range vertices {
		if vbuf[i] != v {
			t.Fatalf("vertex byte %d = %d, want %d", i, vbuf[i], v)
		}
	}
}

func TestDynamicMeshClampsOverflow(t *testing.T) {
	vbuf := make([]byte, VertexStride)
	ibuf := make([]byte, 4)

	dm := NewDynamicMesh(len(vbuf), len(ibuf),
		func() []byte { return vbuf }, func() []byte { return ibuf },
		func() {}, func() {})

	vertices := make([]byte, 3*VertexStride)
	indices := []uint16{0, 1, 2, 3, 4, 5}

	dm.Update(vertices, indices)

	if dm.VertexCount != 1 {
		t.Fatalf("VertexCount = %d, want 1 (clamped)", dm.VertexCount)
	}
	if dm.IndexCount != 2 {
		t.Fatalf("IndexCount = %d, want 2 (clamped)", dm.IndexCount)
	}
}
