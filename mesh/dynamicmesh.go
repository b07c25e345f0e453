package mesh

import "log/slog"

// DynamicMesh is a host-visible vertex+index buffer pair with a fixed
// maximum capacity, rewritten in full each frame via a memory map —
// used for debug geometry only (spec §3 "Dynamic mesh").
type DynamicMesh struct {
	maxVertexBytes int
	maxIndexBytes  int

	mapVertex   func() []byte
	unmapVertex func()
	mapIndex    func() []byte
	unmapIndex  func()

	VertexCount int
	IndexCount  int
}

// NewDynamicMesh creates a dynamic mesh bound to pre-allocated
// host-visible vertex/index buffers of the given byte capacities.
func NewDynamicMesh(maxVertexBytes, maxIndexBytes int, mapVertex, mapIndex func() []byte, unmapVertex, unmapIndex func()) *DynamicMesh {
	return &DynamicMesh{
		maxVertexBytes: maxVertexBytes, maxIndexBytes: maxIndexBytes,
		mapVertex: mapVertex, unmapVertex: unmapVertex,
		mapIndex: mapIndex, unmapIndex: unmapIndex,
	}
}

// Update overwrites the dynamic mesh's contents for this frame.
// Vertex data is laid out as packed 28-byte records (see VertexStride);
// index data is 16-bit. Overflowing either buffer logs a warning and
// clamps to the allocated capacity (spec §7 kind 5).
func (d *DynamicMesh) Update(vertices []byte, indices []uint16) {
	vertexBytes := vertices
	if len(vertexBytes) > d.maxVertexBytes {
		slog.Warn("mesh: dynamic mesh vertex overflow, clamping",
			"requested_bytes", len(vertexBytes), "capacity_bytes", d.maxVertexBytes)
		vertexBytes = vertexBytes[:d.maxVertexBytes]
	}

	dst := d.mapVertex()
	copy(dst, vertexBytes)
	d.unmapVertex()
	d.VertexCount = len(vertexBytes) / VertexStride

	maxIndices := d.maxIndexBytes / 2
	idx := indices
	if len(idx) > maxIndices {
		slog.Warn("mesh: dynamic mesh index overflow, clamping",
			"requested_count", len(idx), "capacity_count", maxIndices)
		idx = idx[:maxIndices]
	}

	idst := d.mapIndex()
	for i, v := range idx {
		idst[2*i] = byte(v)
		idst[2*i+1] = byte(v >> 8)
	}
	d.unmapIndex()
	d.IndexCount = len(idx)
}
