package lumen

import (
	"fmt"

	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/memory"
)

// BufferResource is everything this backend tracks about one buffer:
// its native handle, the memory backing it, and the size it was
// created at (spec §6.3).
type BufferResource struct {
	native     vk.Buffer
	allocation memory.Allocation
	Size       uint64
	Uniform    bool
}

// BufferKind selects which of the two buffer registries spec §6.3
// describes a handle belongs to: uniform buffers (small, host-visible,
// rewritten every frame) or storage buffers (larger, device-local,
// written once or by compute passes).
type BufferKind int

const (
	StorageBuffer BufferKind = iota
	UniformBuffer
)

// CreateBuffer allocates a native buffer of the requested size and
// binds memory to it, choosing host-visible-coherent memory for
// uniform buffers (so UpdateUniform's map/copy/unmap loop needs no
// staging round-trip) and device-local memory for storage buffers
// (spec §6.3).
func (b *Backend) CreateBuffer(kind BufferKind, size uint64, usage vk.BufferUsageFlags) (handle.Buffer, error) {
	native, result := b.vk.Commands.CreateBuffer(b.vk.Device, size, uint32(usage))
	if !result.OK() {
		return handle.InvalidBuffer, fmt.Errorf("lumen: vkCreateBuffer failed: result %d", result)
	}

	flags := vk.MemoryPropertyDeviceLocal
	if kind == UniformBuffer {
		flags = vk.MemoryPropertyHostVisible | vk.MemoryPropertyHostCoherent
	}
	typeIndex, ok := b.vk.Commands.FindMemoryType(b.vk.PhysicalDevice, ^uint32(0), flags)
	if !ok {
		b.vk.Commands.DestroyBuffer(b.vk.Device, native)
		return handle.InvalidBuffer, ErrNoSuitableMemoryType
	}

	alloc, err := b.memory.Allocate(typeIndex, size, bufferMemoryAlignment)
	if err != nil {
		b.vk.Commands.DestroyBuffer(b.vk.Device, native)
		return handle.InvalidBuffer, err
	}

	if res := b.vk.Commands.BindBufferMemory(b.vk.Device, native, vk.DeviceMemory(alloc.NativeMemory()), alloc.Offset); !res.OK() {
		b.memory.Free(alloc)
		b.vk.Commands.DestroyBuffer(b.vk.Device, native)
		return handle.InvalidBuffer, fmt.Errorf("lumen: vkBindBufferMemory failed: result %d", res)
	}

	h := b.buffers.Create(BufferResource{
		native: native, allocation: alloc, Size: size, Uniform: kind == UniformBuffer,
	})
	b.tracker.RegisterBuffer(h)
	return h, nil
}

// bufferMemoryAlignment is a conservative alignment covering uniform
// and storage buffer offset requirements alike.
const bufferMemoryAlignment = 256

// FillBuffer uploads data into buf at dstOffset via the staging
// engine (spec §4.7 "Buffer fill"); intended for storage/vertex/index
// buffers a caller does not want to keep persistently mapped.
func (b *Backend) FillBuffer(buf handle.Buffer, dstOffset uint64, data []byte) error {
	res, ok := b.buffers.Get(buf)
	if !ok {
		return ErrResourceNotFound
	}
	return b.transfer.FillBuffer(res.native, dstOffset, data)
}

// UpdateUniform overwrites a uniform buffer's full contents by
// mapping, copying, and unmapping its host-visible-coherent memory
// directly — no staging buffer round-trip, since uniform buffers are
// already host-visible (spec §6.3).
func (b *Backend) UpdateUniform(buf handle.Buffer, data []byte) error {
	res, ok := b.buffers.Get(buf)
	if !ok {
		return ErrResourceNotFound
	}
	if !res.Uniform {
		panic("lumen: UpdateUniform called on a non-uniform buffer handle")
	}

	dst, result := b.vk.Commands.MapMemory(b.vk.Device, vk.DeviceMemory(res.allocation.NativeMemory()), res.allocation.Offset, res.Size)
	if !result.OK() {
		return fmt.Errorf("lumen: vkMapMemory failed: result %d", result)
	}
	copy(dst, data)
	b.vk.Commands.UnmapMemory(b.vk.Device, vk.DeviceMemory(res.allocation.NativeMemory()))
	return nil
}

// DestroyBuffer frees buf's memory and native handle, and stops
// tracking it.
func (b *Backend) DestroyBuffer(buf handle.Buffer) error {
	res, ok := b.buffers.Destroy(buf)
	if !ok {
		return ErrResourceNotFound
	}
	b.tracker.ForgetBuffer(buf)
	b.memory.Free(res.allocation)
	b.vk.Commands.DestroyBuffer(b.vk.Device, res.native)
	return nil
}
