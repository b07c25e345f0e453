// Package vk is the low-level Vulkan-class binding layer the rest of
// this module calls through: a curated subset of the handles,
// constants, and function signatures actually exercised by memory,
// descriptor, passes, rgraph, transfer and timing — not a full
// generated Vulkan binding surface.
//
// Handles are opaque uint64s, matching Vulkan's own non-dispatchable
// handle representation; zero is always the null handle.
package vk

// Handle is a non-dispatchable Vulkan-class object handle.
type Handle uint64

const Null Handle = 0

type (
	Instance       Handle
	PhysicalDevice Handle
	Device         Handle
	Queue          Handle
	DeviceMemory   Handle
	Image          Handle
	ImageView      Handle
	Buffer         Handle
	Sampler        Handle
	RenderPass     Handle
	Framebuffer    Handle
	Pipeline       Handle
	PipelineLayout Handle
	DescriptorPool Handle
	DescriptorSet  Handle
	DescriptorSetLayout Handle
	ShaderModule   Handle
	QueryPool      Handle
	CommandBuffer  Handle
	Fence          Handle
	Semaphore      Handle
	Surface        Handle
	SwapchainKHR   Handle
)

// ImageLayout mirrors VkImageLayout, restricted to the layouts spec
// §4.3's binding table and §4.7's staging engine require.
type ImageLayout uint32

const (
	ImageLayoutUndefined ImageLayout = iota
	ImageLayoutGeneral
	ImageLayoutColorAttachmentOptimal
	ImageLayoutDepthStencilAttachmentOptimal
	ImageLayoutShaderReadOnlyOptimal
	ImageLayoutTransferSrcOptimal
	ImageLayoutTransferDstOptimal
	ImageLayoutPresentSrc
)

// AccessFlags mirrors VkAccessFlags bits used by the layout tracker.
type AccessFlags uint32

const (
	AccessNone AccessFlags = 0

	AccessShaderRead AccessFlags = 1 << (iota - 1)
	AccessShaderWrite
	AccessColorAttachmentWrite
	AccessDepthStencilAttachmentWrite
	AccessTransferRead
	AccessTransferWrite
)

// PipelineStageFlags mirrors VkPipelineStageFlags.
type PipelineStageFlags uint32

const (
	StageTopOfPipe PipelineStageFlags = 1 << iota
	StageTransfer
	StageFragmentShader
	StageComputeShader
	StageColorAttachmentOutput
	StageEarlyFragmentTests
	StageLateFragmentTests
	StageBottomOfPipe
)

// DescriptorType mirrors VkDescriptorType, restricted to the five kinds
// spec §4.2's PoolSizes counters track.
type DescriptorType uint32

const (
	DescriptorSampler DescriptorType = iota
	DescriptorSampledImage
	DescriptorStorageImage
	DescriptorUniformBuffer
	DescriptorStorageBuffer
)

// AttachmentLoadOp mirrors VkAttachmentLoadOp.
type AttachmentLoadOp uint32

const (
	LoadOpClear AttachmentLoadOp = iota
	LoadOpLoad
	LoadOpDontCare
)

// CompareOp mirrors VkCompareOp, restricted to spec §4.5's depth-function set.
type CompareOp uint32

const (
	CompareNever CompareOp = iota
	CompareAlways
	CompareLess
	CompareGreater
	CompareLessEqual
	CompareGreaterEqual
	CompareEqual
)

// PolygonMode mirrors VkPolygonMode.
type PolygonMode uint32

const (
	PolygonFill PolygonMode = iota
	PolygonLine
	PolygonPoint
)

// CullMode mirrors VkCullModeFlagBits.
type CullMode uint32

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// ShaderStage mirrors VkShaderStageFlagBits, restricted to the three
// stages this module's passes use (vertex, fragment, compute).
type ShaderStage uint32

const (
	StageVertex   ShaderStage = 1
	StageFragment ShaderStage = 2
	StageCompute  ShaderStage = 4
)

// PipelineBindPoint mirrors VkPipelineBindPoint.
type PipelineBindPoint uint32

const (
	BindPointGraphics PipelineBindPoint = iota
	BindPointCompute
)

// IndexType mirrors VkIndexType, restricted to the two widths mesh
// upload ever encodes.
type IndexType uint32

const (
	IndexTypeUint16 IndexType = iota
	IndexTypeUint32
)

// DescriptorSetLayoutBinding mirrors one entry of
// VkDescriptorSetLayoutCreateInfo's pBindings array.
type DescriptorSetLayoutBinding struct {
	Binding uint32
	Type    DescriptorType
	Count   uint32
	Stages  ShaderStage
}

// WriteDescriptorSet mirrors VkWriteDescriptorSet, collapsing the
// image/buffer/sampler info structs Vulkan keeps separate into the one
// set of fields a given Type ever populates.
type WriteDescriptorSet struct {
	Binding     uint32
	Type        DescriptorType
	Buffer      Buffer
	Offset      uint64
	Range       uint64
	ImageView   ImageView
	Sampler     Sampler
	ImageLayout ImageLayout
}

// BufferUsageFlags mirrors VkBufferUsageFlagBits, restricted to the
// usages this module's buffer registries and transfer engine need.
type BufferUsageFlags uint32

const (
	BufferUsageTransferSrc   BufferUsageFlags = 1 << 0
	BufferUsageTransferDst   BufferUsageFlags = 1 << 1
	BufferUsageUniform       BufferUsageFlags = 1 << 2
	BufferUsageStorage       BufferUsageFlags = 1 << 3
	BufferUsageVertex        BufferUsageFlags = 1 << 4
	BufferUsageIndex         BufferUsageFlags = 1 << 5
)

// ImageUsageFlags mirrors VkImageUsageFlagBits, restricted to the
// usages the pass factory and transfer engine need.
type ImageUsageFlags uint32

const (
	ImageUsageTransferSrc    ImageUsageFlags = 1 << 0
	ImageUsageTransferDst    ImageUsageFlags = 1 << 1
	ImageUsageSampled        ImageUsageFlags = 1 << 2
	ImageUsageStorage        ImageUsageFlags = 1 << 3
	ImageUsageColorAttachment ImageUsageFlags = 1 << 4
	ImageUsageDepthAttachment ImageUsageFlags = 1 << 5
)

// MemoryPropertyFlags mirrors VkMemoryPropertyFlags.
type MemoryPropertyFlags uint32

const (
	MemoryPropertyDeviceLocal  MemoryPropertyFlags = 1 << 0
	MemoryPropertyHostVisible  MemoryPropertyFlags = 1 << 1
	MemoryPropertyHostCoherent MemoryPropertyFlags = 1 << 2
)

// Result mirrors VkResult's success/error split used throughout this
// module's recoverable-error paths (spec §7).
type Result int32

const (
	Success      Result = 0
	ErrorUnknown Result = -1

	// ErrorSurfaceOutdated mirrors VK_ERROR_OUT_OF_DATE_KHR: the
	// swapchain no longer matches the surface (typically a resize)
	// and must be recreated before the next acquire or present.
	ErrorSurfaceOutdated Result = -2
)

func (r Result) OK() bool { return r == Success }
