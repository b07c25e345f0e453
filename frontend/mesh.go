package frontend

import (
	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/linear"
)

// MeshBuffers is the native resolution of a handle.Mesh: the vertex and
// index buffers and material descriptor set a draw command binds
// directly, without this package ever touching the backend's buffer
// registry itself.
type MeshBuffers struct {
	VertexBuffer vk.Buffer
	IndexBuffer  vk.Buffer
	IndexCount   uint32
	Index32      bool
	MaterialSet  vk.DescriptorSet
}

// MeshResolver looks up a backend mesh handle's native buffers. The
// backend supplies this via SetMeshResolver, since only it can reach
// past a handle.Mesh into the buffer registry's unexported native
// handles.
type MeshResolver func(h handle.Mesh) (MeshBuffers, bool)

// invalidMeshIndex marks an unset FrontendMeshHandle.
const invalidMeshIndex = ^uint32(0)

// FrontendMeshHandle indexes into a Pipeline's internal mesh-state
// slice. It deliberately does not reuse handle.Mesh: this package's
// mesh list includes meshes it creates for its own internal use (the
// sky cube, debug frustum geometry) that never round-trip through the
// backend's mesh registry under a caller-visible identity.
type FrontendMeshHandle struct {
	index uint32
	valid bool
}

// Valid reports whether h was returned by CreateMeshes rather than
// being a zero value.
func (h FrontendMeshHandle) Valid() bool { return h.valid && h.index != invalidMeshIndex }

// MeshState tracks one mesh's backend handle and the model matrices
// needed for both the current draw and motion-vector reprojection.
type MeshState struct {
	BackendHandle            handle.Mesh
	ModelMatrix               linear.M4
	PreviousFrameModelMatrix  linear.M4
	BoundingBox               linear.AABB
}

// CreateMeshes registers backend mesh handles with this package,
// returning one FrontendMeshHandle per input in the same order. The
// backend handles must already be uploaded — this package only tracks
// transform state and bounding boxes for culling.
func (p *Pipeline) CreateMeshes(backendHandles []handle.Mesh, bounds []linear.AABB) []FrontendMeshHandle {
	out := make([]FrontendMeshHandle, len(backendHandles))
	for i, bh := range backendHandles {
		idx := uint32(len(p.meshStates))
		var bb linear.AABB
		if i < len(bounds) {
			bb = bounds[i]
		}
		p.meshStates = append(p.meshStates, MeshState{
			BackendHandle: bh,
			BoundingBox:   bb,
		})
		p.meshStates[idx].ModelMatrix.I()
		p.meshStates[idx].PreviousFrameModelMatrix.I()
		out[i] = FrontendMeshHandle{index: idx, valid: true}
	}
	return out
}

// SetModelMatrix updates a mesh's current-frame model matrix, rolling
// the prior value into PreviousFrameModelMatrix for motion-vector
// reprojection — matching setModelMatrix's reprojection comment.
func (p *Pipeline) SetModelMatrix(h FrontendMeshHandle, m linear.M4) {
	if !h.Valid() || int(h.index) >= len(p.meshStates) {
		return
	}
	s := &p.meshStates[h.index]
	s.PreviousFrameModelMatrix = s.ModelMatrix
	s.ModelMatrix = m
}

// IssueMeshDraws marks the named meshes as visible for this frame's
// forward pass and shadow cascades; the actual draws are frustum-culled
// and enqueued during RenderFrame.
func (p *Pipeline) IssueMeshDraws(meshes []FrontendMeshHandle) {
	p.drawList = p.drawList[:0]
	for _, h := range meshes {
		if h.Valid() && int(h.index) < len(p.meshStates) {
			p.drawList = append(p.drawList, h)
		}
	}
}
