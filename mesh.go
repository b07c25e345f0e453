package lumen

import (
	"bytes"
	"encoding/binary"

	"github.com/lumenrender/lumen/descriptor"
	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/linear"
	"github.com/lumenrender/lumen/mesh"
)

// MeshResource is everything this backend tracks about one uploaded
// mesh: its vertex/index buffers, index width, and the material
// descriptor set a draw binds alongside the pass's own set (spec §6.4
// "mesh" resource, §4.5 "material set").
type MeshResource struct {
	VertexBuffer handle.Buffer
	IndexBuffer  handle.Buffer
	IndexCount   uint32
	Index32      bool
	AABB         linear.AABB

	MaterialSet vk.DescriptorSet
}

// materialCounts is the fixed descriptor tally one material set
// consumes: three sampled textures (albedo, normal, specular) each
// through their own sampler, matching mesh.TexturePaths (spec §6
// Mesh binary format).
var materialCounts = descriptor.Counts{
	Samplers:      3,
	SampledImages: 3,
}

// CreateMesh uploads a decoded mesh's vertex and index buffers and
// allocates its material descriptor set from materialLayout (normally
// the forward pass's GraphicPass.MaterialLayout), per spec §6.4.
//
// Binding the three material images/samplers into the returned set is
// left to the caller via passes.Factory.WriteMaterialSet, once it has
// resolved mb.Textures' paths to image views and a native sampler —
// this constructor only has image/sampler handles, not the backend
// state CreateImage/CreateSampler have already resolved them into.
func (b *Backend) CreateMesh(mb mesh.MeshBinary, materialLayout vk.DescriptorSetLayout) (handle.Mesh, error) {
	vertexHandle, err := b.CreateBuffer(StorageBuffer, uint64(len(mb.VertexBuffer)), vk.BufferUsageVertex|vk.BufferUsageTransferDst)
	if err != nil {
		return handle.InvalidMesh, err
	}
	if err := b.FillBuffer(vertexHandle, 0, mb.VertexBuffer); err != nil {
		b.DestroyBuffer(vertexHandle)
		return handle.InvalidMesh, err
	}

	index32 := false
	var indexData []byte
	if mb.Index16 != nil {
		indexData = encodeU16(mb.Index16)
	} else {
		indexData = encodeU32(mb.Index32)
		index32 = true
	}

	indexHandle, err := b.CreateBuffer(StorageBuffer, uint64(len(indexData)), vk.BufferUsageIndex|vk.BufferUsageTransferDst)
	if err != nil {
		b.DestroyBuffer(vertexHandle)
		return handle.InvalidMesh, err
	}
	if err := b.FillBuffer(indexHandle, 0, indexData); err != nil {
		b.DestroyBuffer(vertexHandle)
		b.DestroyBuffer(indexHandle)
		return handle.InvalidMesh, err
	}

	materialSet, err := b.descriptors.Allocate(materialLayout, materialCounts)
	if err != nil {
		b.DestroyBuffer(vertexHandle)
		b.DestroyBuffer(indexHandle)
		return handle.InvalidMesh, err
	}

	return b.meshes.Create(MeshResource{
		VertexBuffer: vertexHandle,
		IndexBuffer:  indexHandle,
		IndexCount:   mb.IndexCount,
		Index32:      index32,
		AABB:         mb.AABB,
		MaterialSet:  materialSet,
	}), nil
}

// DestroyMesh releases a mesh's vertex and index buffers. Its material
// descriptor set is not individually freed — descriptor sets are only
// ever reclaimed by destroying their whole pool, per spec §4.2.
func (b *Backend) DestroyMesh(h handle.Mesh) error {
	res, ok := b.meshes.Destroy(h)
	if !ok {
		return ErrResourceNotFound
	}
	b.DestroyBuffer(res.VertexBuffer)
	b.DestroyBuffer(res.IndexBuffer)
	return nil
}

func encodeU16(v []uint16) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func encodeU32(v []uint32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}
