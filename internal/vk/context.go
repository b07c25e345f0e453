package vk

// Context bundles the live instance/device handles this module threads
// through every operation. It is built once at startup and passed
// explicitly rather than held in a package-level global (§9 design
// note: callers may run more than one backend instance in a process,
// e.g. in tests).
type Context struct {
	Instance       Instance
	PhysicalDevice PhysicalDevice
	Device         Device

	GraphicsQueue      Queue
	GraphicsFamily     uint32
	TransferQueue      Queue
	TransferFamily     uint32

	Commands Commands
}

// Commands is the curated set of Vulkan-class entry points the backend
// calls. Each field is a plain Go function value rather than a manually
// marshalled FFI call site: Resolve populates them once, by looking up
// each proc address through the loader and wrapping it in a closure
// that performs the argument marshalling. Everything downstream of
// Resolve sees ordinary Go functions.
type Commands struct {
	CreateBuffer  func(device Device, size uint64, usage uint32) (Buffer, Result)
	DestroyBuffer func(device Device, buffer Buffer)

	CreateImage  func(device Device, desc ImageCreateInfo) (Image, Result)
	DestroyImage func(device Device, image Image)

	AllocateMemory func(device Device, size uint64, memoryTypeIndex uint32) (DeviceMemory, Result)
	FreeMemory     func(device Device, memory DeviceMemory)
	BindBufferMemory func(device Device, buffer Buffer, memory DeviceMemory, offset uint64) Result
	BindImageMemory  func(device Device, image Image, memory DeviceMemory, offset uint64) Result

	// FindMemoryType searches the physical device's memory-type table
	// for an entry whose typeBits bit is set and whose property flags
	// are a superset of flags, mirroring vkGetPhysicalDeviceMemoryProperties
	// plus the usual linear-scan selection loop (spec §4.1
	// "findMemoryIndex"). ok is false when no entry matches.
	FindMemoryType func(physicalDevice PhysicalDevice, typeBits uint32, flags MemoryPropertyFlags) (index uint32, ok bool)

	CreateDescriptorPool func(device Device, sizes []DescriptorPoolSize, maxSets uint32) (DescriptorPool, Result)
	AllocateDescriptorSet func(device Device, pool DescriptorPool, layout DescriptorSetLayout) (DescriptorSet, Result)

	CreateDescriptorSetLayout func(device Device, bindings []DescriptorSetLayoutBinding) (DescriptorSetLayout, Result)
	UpdateDescriptorSets      func(device Device, set DescriptorSet, writes []WriteDescriptorSet)

	CreateRenderPass  func(device Device, desc RenderPassCreateInfo) (RenderPass, Result)
	CreateFramebuffer func(device Device, desc FramebufferCreateInfo) (Framebuffer, Result)

	CreateGraphicsPipeline func(device Device, desc GraphicsPipelineCreateInfo) (Pipeline, Result)
	CreateComputePipeline  func(device Device, desc ComputePipelineCreateInfo) (Pipeline, Result)
	CreatePipelineLayout   func(device Device, desc PipelineLayoutCreateInfo) (PipelineLayout, Result)
	CreateShaderModule     func(device Device, spirv []byte) (ShaderModule, Result)
	DestroyShaderModule    func(device Device, module ShaderModule)

	CmdPipelineBarrier func(cmd CommandBuffer, srcStage, dstStage PipelineStageFlags, barriers []ImageMemoryBarrier, bufferBarriers []BufferMemoryBarrier)
	CmdCopyBufferToImage func(cmd CommandBuffer, src Buffer, dst Image, regions []BufferImageCopy)
	CmdCopyBuffer        func(cmd CommandBuffer, src, dst Buffer, regions []BufferCopy)
	CmdBlitImage         func(cmd CommandBuffer, src, dst Image, regions []ImageBlit)

	CmdBeginRenderPass func(cmd CommandBuffer, pass RenderPass, fb Framebuffer, width, height uint32)
	CmdEndRenderPass   func(cmd CommandBuffer)
	CmdBindPipeline    func(cmd CommandBuffer, bindPoint PipelineBindPoint, pipeline Pipeline)
	CmdSetViewport     func(cmd CommandBuffer, width, height float32)
	CmdSetScissor      func(cmd CommandBuffer, width, height uint32)

	CmdBindVertexBuffer   func(cmd CommandBuffer, buffer Buffer, offset uint64)
	CmdBindIndexBuffer    func(cmd CommandBuffer, buffer Buffer, offset uint64, indexType IndexType)
	CmdBindDescriptorSets func(cmd CommandBuffer, bindPoint PipelineBindPoint, layout PipelineLayout, firstSet uint32, sets []DescriptorSet)
	CmdPushConstants      func(cmd CommandBuffer, layout PipelineLayout, stages ShaderStage, data []byte)
	CmdDrawIndexed        func(cmd CommandBuffer, indexCount uint32)
	CmdDispatch           func(cmd CommandBuffer, x, y, z uint32)

	CreateQueryPool  func(device Device, count uint32) (QueryPool, Result)
	CmdResetQueryPool func(cmd CommandBuffer, pool QueryPool, first, count uint32)
	CmdWriteTimestamp func(cmd CommandBuffer, stage PipelineStageFlags, pool QueryPool, query uint32)
	GetQueryPoolResults func(device Device, pool QueryPool, first, count uint32) ([]uint64, Result)

	CmdBeginDebugLabel func(cmd CommandBuffer, name string)
	CmdEndDebugLabel   func(cmd CommandBuffer)

	QueueSubmit  func(queue Queue, buffers []CommandBuffer, wait, signal []Semaphore) Result
	QueuePresent func(queue Queue, swapchain SwapchainKHR, imageIndex uint32, wait []Semaphore) Result
	DeviceWaitIdle func(device Device) Result

	CreateSurface  func(instance Instance, window WindowHandle) (Surface, Result)
	DestroySurface func(instance Instance, surface Surface)

	GetSurfaceCapabilities func(physicalDevice PhysicalDevice, surface Surface) (SurfaceCapabilities, Result)

	CreateSwapchain    func(device Device, desc SwapchainCreateInfo) (SwapchainKHR, Result)
	DestroySwapchain   func(device Device, swapchain SwapchainKHR)
	GetSwapchainImages func(device Device, swapchain SwapchainKHR) ([]Image, Result)

	CreateImageView  func(device Device, image Image, format uint32) (ImageView, Result)
	DestroyImageView func(device Device, view ImageView)

	CreateSemaphore  func(device Device) (Semaphore, Result)
	DestroySemaphore func(device Device, semaphore Semaphore)

	AcquireNextImage func(device Device, swapchain SwapchainKHR, signal Semaphore) (imageIndex uint32, suboptimal bool, result Result)

	// MapMemory/UnmapMemory back the transfer engine's staging buffer
	// (spec §4.7): a host-visible-coherent allocation mapped once per
	// chunk rather than left persistently mapped, matching the
	// map/memcpy/unmap loop spec §4.7 "Buffer fill" describes.
	MapMemory   func(device Device, memory DeviceMemory, offset, size uint64) ([]byte, Result)
	UnmapMemory func(device Device, memory DeviceMemory)

	CreateFence  func(device Device, signaled bool) (Fence, Result)
	DestroyFence func(device Device, fence Fence)
	WaitForFence func(device Device, fence Fence, timeoutNanos uint64) Result
	ResetFence   func(device Device, fence Fence)

	AllocateCommandBuffer func(device Device) (CommandBuffer, Result)
	BeginCommandBuffer    func(cmd CommandBuffer) Result
	EndCommandBuffer      func(cmd CommandBuffer) Result
}

// maxMemoryTypes mirrors VK_MAX_MEMORY_TYPES: the memory-type table
// vkGetPhysicalDeviceMemoryProperties returns is a fixed-size array,
// never a dynamically-sized one.
const maxMemoryTypes = 32

// memoryType mirrors one entry of VkPhysicalDeviceMemoryProperties's
// memoryTypes array: property flags plus the owning heap index. The
// heap index is carried for completeness even though FindMemoryType's
// linear scan never consults it.
type memoryType struct {
	PropertyFlags uint32
	HeapIndex     uint32
}

// physicalDeviceMemoryProperties mirrors VkPhysicalDeviceMemoryProperties,
// restricted to the memory-type table FindMemoryType scans (the heap
// size/flags array is omitted — nothing in this module budgets heaps).
type physicalDeviceMemoryProperties struct {
	MemoryTypeCount uint32
	MemoryTypes     [maxMemoryTypes]memoryType
}

// WindowHandle is the opaque, platform-defined window handle the
// windowing glue hands in (spec §6: "an opaque window handle is the
// only input"). Its representation is never interpreted by this
// module, only forwarded to CreateSurface.
type WindowHandle uintptr

// SurfaceCapabilities mirrors VkSurfaceCapabilitiesKHR, restricted to
// the fields format/swapchain negotiation needs.
type SurfaceCapabilities struct {
	MinImageCount, MaxImageCount uint32
	CurrentWidth, CurrentHeight  uint32
}

// PresentModeKHR mirrors VkPresentModeKHR.
type PresentModeKHR uint32

const (
	PresentModeImmediate PresentModeKHR = iota
	PresentModeMailbox
	PresentModeFifo
	PresentModeFifoRelaxed
)

// SwapchainCreateInfo mirrors VkSwapchainCreateInfoKHR, restricted to
// what surface negotiation ever populates.
type SwapchainCreateInfo struct {
	Surface       Surface
	MinImageCount uint32
	Format        uint32
	Width, Height uint32
	PresentMode   PresentModeKHR
	OldSwapchain  SwapchainKHR
}

// ImageCreateInfo mirrors the subset of VkImageCreateInfo this module
// populates: extent, mip count, format and usage flags.
type ImageCreateInfo struct {
	Width, Height, Depth uint32
	MipLevels            uint32
	Format               uint32
	Usage                uint32
}

// DescriptorPoolSize mirrors VkDescriptorPoolSize.
type DescriptorPoolSize struct {
	Type            DescriptorType
	DescriptorCount uint32
}

// RenderPassCreateInfo is a minimal render-pass description: one
// subpass, a fixed set of colour attachments plus an optional depth
// attachment, matching what the pass factory ever builds (spec §4.5).
type RenderPassCreateInfo struct {
	ColorFormats []uint32
	DepthFormat  uint32
	HasDepth     bool
}

// FramebufferCreateInfo mirrors VkFramebufferCreateInfo.
type FramebufferCreateInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Width       uint32
	Height      uint32
}

// GraphicsPipelineCreateInfo bundles the fixed-function state the pass
// factory derives from a pass description (spec §4.5 step 5).
type GraphicsPipelineCreateInfo struct {
	VertexShader   ShaderModule
	FragmentShader ShaderModule
	Layout         PipelineLayout
	RenderPass     RenderPass
	VertexStride   uint32
	VertexAttrs    []VertexAttribute
	Cull           CullMode
	Polygon        PolygonMode
	DepthTest      bool
	DepthWrite     bool
	DepthCompare   CompareOp
}

// VertexAttribute is one entry of a vertex-input binding description.
type VertexAttribute struct {
	Location uint32
	Offset   uint32
	Format   uint32
}

// ComputePipelineCreateInfo mirrors VkComputePipelineCreateInfo.
type ComputePipelineCreateInfo struct {
	Shader ShaderModule
	Layout PipelineLayout
}

// PipelineLayoutCreateInfo mirrors VkPipelineLayoutCreateInfo, with a
// fixed 128-byte push-constant range per spec §4.5.
type PipelineLayoutCreateInfo struct {
	SetLayouts          []DescriptorSetLayout
	PushConstantBytes   uint32
	PushConstantStages  ShaderStage
}

// ImageMemoryBarrier mirrors VkImageMemoryBarrier.
type ImageMemoryBarrier struct {
	Image        Image
	OldLayout    ImageLayout
	NewLayout    ImageLayout
	SrcAccess    AccessFlags
	DstAccess    AccessFlags
	BaseMipLevel uint32
	MipCount     uint32
}

// BufferMemoryBarrier mirrors VkBufferMemoryBarrier.
type BufferMemoryBarrier struct {
	Buffer    Buffer
	SrcAccess AccessFlags
	DstAccess AccessFlags
	Offset    uint64
	Size      uint64
}

// BufferImageCopy mirrors VkBufferImageCopy.
type BufferImageCopy struct {
	BufferOffset uint64
	MipLevel     uint32
	ImageWidth, ImageHeight, ImageDepth uint32
}

// BufferCopy mirrors VkBufferCopy.
type BufferCopy struct {
	SrcOffset, DstOffset, Size uint64
}

// ImageBlit mirrors VkImageBlit, restricted to the whole-mip-to-half-mip
// blits the mip-chain generator issues.
type ImageBlit struct {
	SrcMip, DstMip                 uint32
	SrcWidth, SrcHeight, SrcDepth  uint32
	DstWidth, DstHeight, DstDepth  uint32
}
