package lumen

import (
	"fmt"

	"github.com/lumenrender/lumen/descriptor"
	"github.com/lumenrender/lumen/frontend"
	"github.com/lumenrender/lumen/gpuformat"
	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/layout"
	"github.com/lumenrender/lumen/linear"
	"github.com/lumenrender/lumen/memory"
	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/rgraph"
	"github.com/lumenrender/lumen/surface"
	"github.com/lumenrender/lumen/timing"
	"github.com/lumenrender/lumen/transfer"
	"github.com/lumenrender/lumen/uibridge"
)

// Backend is the top-level object this module hands callers: every
// registry, sub-allocator, and scheduler piece spec §3-§6 describes,
// composed the way core/hub.go composes a device's sub-systems. One
// Backend owns one Vulkan-class device; a process may construct more
// than one (§9 design note, carried from vk.Context's own doc comment).
type Backend struct {
	vk     *vk.Context
	config BackendConfig

	memory      *memory.PoolSet
	descriptors *descriptor.Manager
	passFactory *passes.Factory
	timestamps  *timing.Pool
	tracker     *layout.Tracker
	transfer    *transfer.Engine

	stagingBuffer     vk.Buffer
	stagingAllocation memory.Allocation
	transferCmd       vk.CommandBuffer

	images   *handle.Registry[ImageResource, handle.ImageKind]
	buffers  *handle.Registry[BufferResource, handle.BufferKind]
	samplers *handle.Registry[SamplerDesc, handle.SamplerKind]
	meshes   *handle.Registry[MeshResource, handle.MeshKind]

	surface  *surface.Surface
	frontend *frontend.Pipeline
	overlay  *uibridge.Overlay

	frameCommandBuffers [2]vk.CommandBuffer
	frameIndex          int
}

// NewBackend builds every sub-system bound to an already-populated
// vk.Context (instance, physical device, device and queues already
// created — device bootstrap is outside this module's scope, the same
// boundary surface.New observes). It resolves the Commands table,
// then constructs the memory pool set, descriptor manager, pass
// factory, timestamp pool, and barrier tracker, per spec §3's startup
// order.
func NewBackend(ctx *vk.Context, config BackendConfig, nsPerTimestampTick float64) (*Backend, error) {
	config = config.withDefaults()

	if err := vk.Resolve(ctx); err != nil {
		return nil, fmt.Errorf("lumen: resolving device commands: %w", err)
	}

	b := &Backend{
		vk:     ctx,
		config: config,

		images:   handle.NewRegistry[ImageResource, handle.ImageKind](),
		buffers:  handle.NewRegistry[BufferResource, handle.BufferKind](),
		samplers: handle.NewRegistry[SamplerDesc, handle.SamplerKind](),
		meshes:   handle.NewRegistry[MeshResource, handle.MeshKind](),
		tracker:  layout.NewTracker(),
	}

	b.memory = memory.NewPoolSet(config.MemoryPoolSlabSize, b.allocateSlab, b.freeSlab)
	b.descriptors = descriptor.NewManager(ctx.Device, &ctx.Commands, config.DescriptorPoolQuota)
	b.passFactory = passes.NewFactory(ctx.Device, &ctx.Commands, b.descriptors)

	timestamps, err := timing.NewPool(ctx.Device, &ctx.Commands, timestampPoolCapacity, nsPerTimestampTick)
	if err != nil {
		return nil, fmt.Errorf("lumen: creating timestamp pool: %w", err)
	}
	b.timestamps = timestamps

	if err := b.setupTransfer(config.StagingBufferSize); err != nil {
		return nil, err
	}

	for i := range b.frameCommandBuffers {
		cmd, result := ctx.Commands.AllocateCommandBuffer(ctx.Device)
		if !result.OK() {
			return nil, fmt.Errorf("lumen: allocating frame command buffer %d: result %d", i, result)
		}
		b.frameCommandBuffers[i] = cmd
	}

	return b, nil
}

// setupTransfer allocates the staging buffer and the dedicated one-shot
// command buffer the transfer engine submits through, per spec §4.7's
// fixed-size staging design.
func (b *Backend) setupTransfer(stagingSize uint64) error {
	staging, result := b.vk.Commands.CreateBuffer(b.vk.Device, stagingSize, uint32(vk.BufferUsageTransferSrc))
	if !result.OK() {
		return fmt.Errorf("lumen: creating staging buffer: result %d", result)
	}

	typeIndex, ok := b.vk.Commands.FindMemoryType(b.vk.PhysicalDevice, ^uint32(0),
		vk.MemoryPropertyHostVisible|vk.MemoryPropertyHostCoherent)
	if !ok {
		b.vk.Commands.DestroyBuffer(b.vk.Device, staging)
		return ErrNoSuitableMemoryType
	}

	alloc, err := b.memory.Allocate(typeIndex, stagingSize, bufferMemoryAlignment)
	if err != nil {
		b.vk.Commands.DestroyBuffer(b.vk.Device, staging)
		return err
	}

	if res := b.vk.Commands.BindBufferMemory(b.vk.Device, staging, vk.DeviceMemory(alloc.NativeMemory()), alloc.Offset); !res.OK() {
		b.memory.Free(alloc)
		b.vk.Commands.DestroyBuffer(b.vk.Device, staging)
		return fmt.Errorf("lumen: binding staging buffer memory: result %d", res)
	}

	cmd, result := b.vk.Commands.AllocateCommandBuffer(b.vk.Device)
	if !result.OK() {
		return fmt.Errorf("lumen: allocating transfer command buffer: result %d", result)
	}

	b.stagingBuffer = staging
	b.stagingAllocation = alloc
	b.transferCmd = cmd

	b.transfer = transfer.NewEngine(&b.vk.Commands, staging, stagingSize,
		func() []byte {
			data, _ := b.vk.Commands.MapMemory(b.vk.Device, vk.DeviceMemory(alloc.NativeMemory()), alloc.Offset, stagingSize)
			return data
		},
		func() { b.vk.Commands.UnmapMemory(b.vk.Device, vk.DeviceMemory(alloc.NativeMemory())) },
		b.submitTransfer,
		func(gpuformat.Image) bool { return true },
	)
	return nil
}

// submitTransfer records a one-shot command buffer through the shared
// transfer command buffer, blocking on DeviceWaitIdle until the
// transfer queue has finished it (spec §4.7's SubmitFn contract). This
// module's QueueSubmit has no signal-fence parameter, so a one-shot
// submission's only synchronization primitive is an idle wait.
func (b *Backend) submitTransfer(record func(cmd vk.CommandBuffer)) error {
	if res := b.vk.Commands.BeginCommandBuffer(b.transferCmd); !res.OK() {
		return fmt.Errorf("lumen: beginning transfer command buffer: result %d", res)
	}
	record(b.transferCmd)
	if res := b.vk.Commands.EndCommandBuffer(b.transferCmd); !res.OK() {
		return fmt.Errorf("lumen: ending transfer command buffer: result %d", res)
	}

	queue := b.vk.TransferQueue
	if queue == 0 {
		queue = b.vk.GraphicsQueue
	}
	if res := b.vk.Commands.QueueSubmit(queue, []vk.CommandBuffer{b.transferCmd}, nil, nil); !res.OK() {
		return fmt.Errorf("lumen: submitting transfer command buffer: result %d", res)
	}

	if res := b.vk.Commands.DeviceWaitIdle(b.vk.Device); !res.OK() {
		return fmt.Errorf("%w: waiting for transfer submission: result %d", ErrDeviceLost, res)
	}
	return nil
}

// logf writes a Debug-level message through the module's configured
// logger (see SetLogger), formatted with fmt.Sprintf semantics.
func (b *Backend) logf(format string, args ...any) {
	Logger().Debug(fmt.Sprintf(format, args...))
}

// timestampPoolCapacity bounds how many named start/end spans one
// frame's recording can time, generous enough for every pass spec
// §4.8/§4.9 names plus the UI overlay.
const timestampPoolCapacity = 128

// allocateSlab and freeSlab back memory.PoolSet's native slab
// allocation through the plain vkAllocateMemory/vkFreeMemory pair.
func (b *Backend) allocateSlab(memoryTypeIndex uint32, size uint64) (uint64, bool) {
	mem, result := b.vk.Commands.AllocateMemory(b.vk.Device, size, memoryTypeIndex)
	if !result.OK() {
		return 0, false
	}
	return uint64(mem), true
}

func (b *Backend) freeSlab(memoryTypeIndex uint32, nativeMemory uint64) {
	b.vk.Commands.FreeMemory(b.vk.Device, vk.DeviceMemory(nativeMemory))
}

// AttachSurface binds the swapchain surface a frame presents into.
func (b *Backend) AttachSurface(s *surface.Surface) { b.surface = s }

// Surface returns the attached presentation surface, or nil.
func (b *Backend) Surface() *surface.Surface { return b.surface }

// AttachFrontend binds the concrete rendering pipeline RenderFrame
// drives every frame, and wires it to resolve the meshes it draws
// through this backend's registries.
func (b *Backend) AttachFrontend(p *frontend.Pipeline) {
	b.frontend = p
	p.SetMeshResolver(b.resolveMeshBuffers)
}

// resolveMeshBuffers looks up a mesh's native vertex/index buffers and
// material set, the frontend package's only route to a backend
// resource it never reaches into directly.
func (b *Backend) resolveMeshBuffers(h handle.Mesh) (frontend.MeshBuffers, bool) {
	mesh, ok := b.meshes.Get(h)
	if !ok {
		return frontend.MeshBuffers{}, false
	}
	vertex, ok := b.buffers.Get(mesh.VertexBuffer)
	if !ok {
		return frontend.MeshBuffers{}, false
	}
	index, ok := b.buffers.Get(mesh.IndexBuffer)
	if !ok {
		return frontend.MeshBuffers{}, false
	}
	return frontend.MeshBuffers{
		VertexBuffer: vertex.native,
		IndexBuffer:  index.native,
		IndexCount:   mesh.IndexCount,
		Index32:      mesh.Index32,
		MaterialSet:  mesh.MaterialSet,
	}, true
}

// Frontend returns the attached pipeline, or nil.
func (b *Backend) Frontend() *frontend.Pipeline { return b.frontend }

// AttachOverlay binds the UI overlay pass recorded last each frame.
func (b *Backend) AttachOverlay(o *uibridge.Overlay) { b.overlay = o }

// PassFactory exposes the shared pass factory so callers can build the
// frontend's and overlay's passes against the same descriptor manager
// and device this Backend owns.
func (b *Backend) PassFactory() *passes.Factory { return b.passFactory }

// RenderFrame runs one frame's full presentation sequence (spec §6.7):
// reset the timestamp pool, begin the command buffer, record every pass
// plus the UI overlay, submit, and present; no separate layout
// transition of the swapchain image to present is recorded here. Returns without error (but without presenting)
// when the surface is minimised, per spec §5 "a zero-area resize marks
// minimised and all frame recording is skipped until the window is
// restored."
//
// QueueSubmit has no signal-fence parameter (the same constraint
// submitTransfer works around), so a frame-in-flight fence would never
// be signalled by the GPU; this waits on the device instead of on a
// per-slot fence before reusing that slot's command buffer next frame.
func (b *Backend) RenderFrame(overlayList uibridge.DrawList, jitter, prevJitter linear.V2, deltaTime float32) error {
	if b.surface == nil || b.frontend == nil {
		panic("lumen: RenderFrame called before AttachSurface/AttachFrontend")
	}
	if b.surface.Minimised() {
		return nil
	}

	slot := b.frameIndex % len(b.frameCommandBuffers)
	cmdBuf := b.frameCommandBuffers[slot]

	imageIndex, outdated, err := b.surface.AcquireNextImage()
	if err != nil {
		return err
	}
	if outdated {
		return b.surface.Resize(b.surface.Width(), b.surface.Height())
	}

	if res := b.vk.Commands.BeginCommandBuffer(cmdBuf); !res.OK() {
		return fmt.Errorf("lumen: vkBeginCommandBuffer failed: result %d", res)
	}

	b.timestamps.Reset(cmdBuf)

	b.frontend.NewFrame()
	rec := rgraph.NewRecorder(&b.vk.Commands, cmdBuf, b.tracker, b.timestamps)
	q := rgraph.NewDrawQueue()

	if err := b.frontend.RenderFrame(rec, q, jitter, prevJitter, deltaTime); err != nil {
		return err
	}

	if b.overlay != nil {
		b.overlay.Upload(overlayList)
		b.overlay.Record(q, overlayList, float32(b.surface.Width()), float32(b.surface.Height()))
		draws, _ := q.Drain(uibridge.PassName)
		rec.RecordGraphic(rgraph.Execution{Name: uibridge.PassName, IsGraphic: true}, b.overlay.Pass(), draws)
	}

	if res := b.vk.Commands.EndCommandBuffer(cmdBuf); !res.OK() {
		return fmt.Errorf("lumen: vkEndCommandBuffer failed: result %d", res)
	}

	submitResult := b.vk.Commands.QueueSubmit(b.vk.GraphicsQueue, []vk.CommandBuffer{cmdBuf},
		[]vk.Semaphore{b.surface.ImageAvailable()}, []vk.Semaphore{b.surface.RenderFinished()})
	if !submitResult.OK() {
		return fmt.Errorf("lumen: vkQueueSubmit failed: result %d", submitResult)
	}

	if err := b.surface.Present(b.vk.GraphicsQueue, imageIndex); err != nil {
		return err
	}

	if res := b.vk.Commands.DeviceWaitIdle(b.vk.Device); !res.OK() {
		return fmt.Errorf("%w: waiting for frame submission: result %d", ErrDeviceLost, res)
	}

	b.frameIndex++
	return nil
}

// Resize waits for the device to go idle, then resizes the swapchain
// surface and passes the new size to the frontend's SetResolution
// (spec §6.7 "resize"); RenderFrame does not rebuild any pass
// framebuffer for the new size.
func (b *Backend) Resize(width, height uint32) error {
	if res := b.vk.Commands.DeviceWaitIdle(b.vk.Device); !res.OK() {
		return fmt.Errorf("%w: waiting idle before resize: result %d", ErrDeviceLost, res)
	}
	if err := b.surface.Resize(width, height); err != nil {
		return err
	}
	if b.frontend != nil {
		b.frontend.SetResolution(width, height)
	}
	return nil
}

// Shutdown waits for the device to go idle and releases every frame
// resource this Backend owns directly (command buffers stay owned by
// their implicit command pool and are not individually freed).
// Attached sub-systems (surface, frontend, overlay) are the caller's to
// shut down, since they outlived being constructed by this type.
func (b *Backend) Shutdown() error {
	if res := b.vk.Commands.DeviceWaitIdle(b.vk.Device); !res.OK() {
		return fmt.Errorf("%w: waiting idle at shutdown: result %d", ErrDeviceLost, res)
	}
	b.memory.Free(b.stagingAllocation)
	b.vk.Commands.DestroyBuffer(b.vk.Device, b.stagingBuffer)
	b.memory.Destroy()
	return nil
}
