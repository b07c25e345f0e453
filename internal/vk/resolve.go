package vk

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

// rawProc is a resolved, not-yet-wrapped proc address plus the call
// interface describing how to invoke it through goffi.
type rawProc struct {
	addr unsafe.Pointer
	cif  types.CallInterface
}

// prepare resolves name through dev (falling back to the instance
// resolver when dev is null, matching the bootstrap commands) and
// builds the goffi call interface for it.
func prepare(ctx *Context, name string, ret *types.TypeDescriptor, args []*types.TypeDescriptor) (rawProc, error) {
	var addr unsafe.Pointer
	if ctx.Device != Null {
		addr = DeviceProc(ctx.Device, ctx.Instance, name)
	} else {
		addr = InstanceProc(ctx.Instance, name)
	}
	if addr == nil {
		return rawProc{}, fmt.Errorf("vk: %s not exposed by driver", name)
	}
	var p rawProc
	p.addr = addr
	if err := ffi.PrepareCallInterface(&p.cif, types.DefaultCall, ret, args); err != nil {
		return rawProc{}, fmt.Errorf("vk: preparing call interface for %s: %w", name, err)
	}
	return p, nil
}

// surfaceCreateInfo is the curated, platform-generic surface creation
// struct: WindowHandle is already an opaque integer by the time it
// reaches here, so every platform's native create-info is collapsed to
// the one field this module ever populates.
type surfaceCreateInfo struct {
	Window uint64
}

// surfaceProcName picks the platform-native surface creation entry
// point, mirroring libraryName's runtime.GOOS switch in loader.go.
func surfaceProcName() string {
	switch runtime.GOOS {
	case "windows":
		return "vkCreateWin32SurfaceKHR"
	case "darwin":
		return "vkCreateMacOSSurfaceMVK"
	default:
		return "vkCreateXlibSurfaceKHR"
	}
}

var (
	u64T = types.UInt64TypeDescriptor
	u32T = types.UInt32TypeDescriptor
	ptrT = types.PointerTypeDescriptor
	i32T = types.Int32TypeDescriptor
	voidT *types.TypeDescriptor // nil return descriptor means "no return value"
)

// Resolve looks up every Vulkan-class entry point this module calls and
// builds the Commands table of plain Go closures. It must run after the
// device and queues in ctx are already populated, since most entry
// points are device-level procs.
func Resolve(ctx *Context) error {
	var errs []error
	must := func(name string, ret *types.TypeDescriptor, args []*types.TypeDescriptor) rawProc {
		p, err := prepare(ctx, name, ret, args)
		if err != nil {
			errs = append(errs, err)
		}
		return p
	}

	createBuffer := must("vkCreateBuffer", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	destroyBuffer := must("vkDestroyBuffer", voidT, []*types.TypeDescriptor{u64T, u64T, ptrT})
	createImage := must("vkCreateImage", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	destroyImage := must("vkDestroyImage", voidT, []*types.TypeDescriptor{u64T, u64T, ptrT})
	allocateMemory := must("vkAllocateMemory", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	freeMemory := must("vkFreeMemory", voidT, []*types.TypeDescriptor{u64T, u64T, ptrT})
	bindBufferMemory := must("vkBindBufferMemory", i32T, []*types.TypeDescriptor{u64T, u64T, u64T, u64T})
	bindImageMemory := must("vkBindImageMemory", i32T, []*types.TypeDescriptor{u64T, u64T, u64T, u64T})
	createDescriptorPool := must("vkCreateDescriptorPool", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	allocateDescriptorSets := must("vkAllocateDescriptorSets", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT})
	createDescriptorSetLayout := must("vkCreateDescriptorSetLayout", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	updateDescriptorSets := must("vkUpdateDescriptorSets", voidT, []*types.TypeDescriptor{u64T, u32T, ptrT, u32T, ptrT})
	createRenderPass := must("vkCreateRenderPass", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	createFramebuffer := must("vkCreateFramebuffer", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	createGraphicsPipelines := must("vkCreateGraphicsPipelines", i32T, []*types.TypeDescriptor{u64T, u64T, u32T, ptrT, ptrT, ptrT})
	createComputePipelines := must("vkCreateComputePipelines", i32T, []*types.TypeDescriptor{u64T, u64T, u32T, ptrT, ptrT, ptrT})
	createPipelineLayout := must("vkCreatePipelineLayout", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	createShaderModule := must("vkCreateShaderModule", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	destroyShaderModule := must("vkDestroyShaderModule", voidT, []*types.TypeDescriptor{u64T, u64T, ptrT})
	cmdPipelineBarrier := must("vkCmdPipelineBarrier", voidT, []*types.TypeDescriptor{u64T, u32T, u32T, u32T, u32T, ptrT, u32T, ptrT, u32T, ptrT})
	cmdCopyBufferToImage := must("vkCmdCopyBufferToImage", voidT, []*types.TypeDescriptor{u64T, u64T, u64T, u32T, u32T, ptrT})
	cmdCopyBuffer := must("vkCmdCopyBuffer", voidT, []*types.TypeDescriptor{u64T, u64T, u64T, u32T, ptrT})
	cmdBlitImage := must("vkCmdBlitImage", voidT, []*types.TypeDescriptor{u64T, u64T, u32T, u64T, u32T, u32T, ptrT, u32T})
	cmdBeginRenderPass := must("vkCmdBeginRenderPass", voidT, []*types.TypeDescriptor{u64T, ptrT, u32T})
	cmdEndRenderPass := must("vkCmdEndRenderPass", voidT, []*types.TypeDescriptor{u64T})
	cmdBindPipeline := must("vkCmdBindPipeline", voidT, []*types.TypeDescriptor{u64T, u32T, u64T})
	cmdSetViewport := must("vkCmdSetViewport", voidT, []*types.TypeDescriptor{u64T, u32T, u32T, ptrT})
	cmdSetScissor := must("vkCmdSetScissor", voidT, []*types.TypeDescriptor{u64T, u32T, u32T, ptrT})
	cmdBindVertexBuffers := must("vkCmdBindVertexBuffers", voidT, []*types.TypeDescriptor{u64T, u32T, u32T, ptrT, ptrT})
	cmdBindIndexBuffer := must("vkCmdBindIndexBuffer", voidT, []*types.TypeDescriptor{u64T, u64T, u64T, u32T})
	cmdBindDescriptorSets := must("vkCmdBindDescriptorSets", voidT, []*types.TypeDescriptor{u64T, u32T, u64T, u32T, u32T, ptrT, u32T, ptrT})
	cmdPushConstants := must("vkCmdPushConstants", voidT, []*types.TypeDescriptor{u64T, u64T, u32T, u32T, u32T, ptrT})
	cmdDrawIndexed := must("vkCmdDrawIndexed", voidT, []*types.TypeDescriptor{u64T, u32T, u32T, u32T, i32T, u32T})
	cmdDispatch := must("vkCmdDispatch", voidT, []*types.TypeDescriptor{u64T, u32T, u32T, u32T})
	createQueryPool := must("vkCreateQueryPool", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	cmdResetQueryPool := must("vkCmdResetQueryPool", voidT, []*types.TypeDescriptor{u64T, u64T, u32T, u32T})
	cmdWriteTimestamp := must("vkCmdWriteTimestamp", voidT, []*types.TypeDescriptor{u64T, u32T, u64T, u32T})
	getQueryPoolResults := must("vkGetQueryPoolResults", i32T, []*types.TypeDescriptor{u64T, u64T, u32T, u32T, u64T, ptrT, u64T, u32T})
	queueSubmit := must("vkQueueSubmit", i32T, []*types.TypeDescriptor{u64T, u32T, ptrT, u64T})
	queuePresent := must("vkQueuePresentKHR", i32T, []*types.TypeDescriptor{u64T, ptrT})
	deviceWaitIdle := must("vkDeviceWaitIdle", i32T, []*types.TypeDescriptor{u64T})

	createSurface := must(surfaceProcName(), i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	destroySurface := must("vkDestroySurfaceKHR", voidT, []*types.TypeDescriptor{u64T, u64T, ptrT})
	createSwapchain := must("vkCreateSwapchainKHR", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	destroySwapchain := must("vkDestroySwapchainKHR", voidT, []*types.TypeDescriptor{u64T, u64T, ptrT})
	getSwapchainImages := must("vkGetSwapchainImagesKHR", i32T, []*types.TypeDescriptor{u64T, u64T, ptrT, ptrT})
	getSurfaceCapabilities := must("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", i32T, []*types.TypeDescriptor{u64T, u64T, ptrT})
	createImageView := must("vkCreateImageView", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	destroyImageView := must("vkDestroyImageView", voidT, []*types.TypeDescriptor{u64T, u64T, ptrT})
	createSemaphore := must("vkCreateSemaphore", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	destroySemaphore := must("vkDestroySemaphore", voidT, []*types.TypeDescriptor{u64T, u64T, ptrT})
	acquireNextImage := must("vkAcquireNextImageKHR", i32T, []*types.TypeDescriptor{u64T, u64T, u64T, u64T, u64T, ptrT})
	mapMemory := must("vkMapMemory", i32T, []*types.TypeDescriptor{u64T, u64T, u64T, u64T, u32T, ptrT})
	unmapMemory := must("vkUnmapMemory", voidT, []*types.TypeDescriptor{u64T, u64T})
	createFence := must("vkCreateFence", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	destroyFence := must("vkDestroyFence", voidT, []*types.TypeDescriptor{u64T, u64T, ptrT})
	waitForFences := must("vkWaitForFences", i32T, []*types.TypeDescriptor{u64T, u32T, ptrT, u32T, u64T})
	resetFences := must("vkResetFences", i32T, []*types.TypeDescriptor{u64T, u32T, ptrT})
	allocateCommandBuffers := must("vkAllocateCommandBuffers", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT})
	beginCommandBuffer := must("vkBeginCommandBuffer", i32T, []*types.TypeDescriptor{u64T, ptrT})
	endCommandBuffer := must("vkEndCommandBuffer", i32T, []*types.TypeDescriptor{u64T})
	getPhysicalDeviceMemoryProperties := must("vkGetPhysicalDeviceMemoryProperties", voidT, []*types.TypeDescriptor{u64T, ptrT})

	if len(errs) > 0 {
		return fmt.Errorf("vk: resolving %d entry points failed, first: %w", len(errs), errs[0])
	}

	ctx.Commands = Commands{
		CreateBuffer: func(device Device, size uint64, usage uint32) (Buffer, Result) {
			var out Buffer
			args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&size), unsafe.Pointer(&usage), unsafe.Pointer(&out)}
			var res int32
			ffi.CallFunction(&createBuffer.cif, createBuffer.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		DestroyBuffer: func(device Device, buffer Buffer) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&buffer)}
			ffi.CallFunction(&destroyBuffer.cif, destroyBuffer.addr, nil, args[:])
		},
		CreateImage: func(device Device, desc ImageCreateInfo) (Image, Result) {
			var out Image
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&desc)}
			var res int32
			ffi.CallFunction(&createImage.cif, createImage.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		DestroyImage: func(device Device, image Image) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&image)}
			ffi.CallFunction(&destroyImage.cif, destroyImage.addr, nil, args[:])
		},
		AllocateMemory: func(device Device, size uint64, memoryTypeIndex uint32) (DeviceMemory, Result) {
			var out DeviceMemory
			args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&size), unsafe.Pointer(&memoryTypeIndex)}
			var res int32
			ffi.CallFunction(&allocateMemory.cif, allocateMemory.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		FreeMemory: func(device Device, memory DeviceMemory) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&memory)}
			ffi.CallFunction(&freeMemory.cif, freeMemory.addr, nil, args[:])
		},
		BindBufferMemory: func(device Device, buffer Buffer, memory DeviceMemory, offset uint64) Result {
			args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&buffer), unsafe.Pointer(&memory), unsafe.Pointer(&offset)}
			var res int32
			ffi.CallFunction(&bindBufferMemory.cif, bindBufferMemory.addr, unsafe.Pointer(&res), args[:])
			return Result(res)
		},
		BindImageMemory: func(device Device, image Image, memory DeviceMemory, offset uint64) Result {
			args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&image), unsafe.Pointer(&memory), unsafe.Pointer(&offset)}
			var res int32
			ffi.CallFunction(&bindImageMemory.cif, bindImageMemory.addr, unsafe.Pointer(&res), args[:])
			return Result(res)
		},
		CreateDescriptorPool: func(device Device, sizes []DescriptorPoolSize, maxSets uint32) (DescriptorPool, Result) {
			var out DescriptorPool
			args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&sizes), unsafe.Pointer(&maxSets)}
			var res int32
			ffi.CallFunction(&createDescriptorPool.cif, createDescriptorPool.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		AllocateDescriptorSet: func(device Device, pool DescriptorPool, layout DescriptorSetLayout) (DescriptorSet, Result) {
			var out DescriptorSet
			args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&pool), unsafe.Pointer(&layout)}
			var res int32
			ffi.CallFunction(&allocateDescriptorSets.cif, allocateDescriptorSets.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		CreateDescriptorSetLayout: func(device Device, bindings []DescriptorSetLayoutBinding) (DescriptorSetLayout, Result) {
			var out DescriptorSetLayout
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&bindings)}
			var res int32
			ffi.CallFunction(&createDescriptorSetLayout.cif, createDescriptorSetLayout.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		UpdateDescriptorSets: func(device Device, set DescriptorSet, writes []WriteDescriptorSet) {
			args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&set), unsafe.Pointer(&writes)}
			ffi.CallFunction(&updateDescriptorSets.cif, updateDescriptorSets.addr, nil, args[:])
		},
		CreateRenderPass: func(device Device, desc RenderPassCreateInfo) (RenderPass, Result) {
			var out RenderPass
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&desc)}
			var res int32
			ffi.CallFunction(&createRenderPass.cif, createRenderPass.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		CreateFramebuffer: func(device Device, desc FramebufferCreateInfo) (Framebuffer, Result) {
			var out Framebuffer
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&desc)}
			var res int32
			ffi.CallFunction(&createFramebuffer.cif, createFramebuffer.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		CreateGraphicsPipeline: func(device Device, desc GraphicsPipelineCreateInfo) (Pipeline, Result) {
			var out Pipeline
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&desc)}
			var res int32
			ffi.CallFunction(&createGraphicsPipelines.cif, createGraphicsPipelines.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		CreateComputePipeline: func(device Device, desc ComputePipelineCreateInfo) (Pipeline, Result) {
			var out Pipeline
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&desc)}
			var res int32
			ffi.CallFunction(&createComputePipelines.cif, createComputePipelines.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		CreatePipelineLayout: func(device Device, desc PipelineLayoutCreateInfo) (PipelineLayout, Result) {
			var out PipelineLayout
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&desc)}
			var res int32
			ffi.CallFunction(&createPipelineLayout.cif, createPipelineLayout.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		CreateShaderModule: func(device Device, spirv []byte) (ShaderModule, Result) {
			var out ShaderModule
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&spirv)}
			var res int32
			ffi.CallFunction(&createShaderModule.cif, createShaderModule.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		DestroyShaderModule: func(device Device, module ShaderModule) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&module)}
			ffi.CallFunction(&destroyShaderModule.cif, destroyShaderModule.addr, nil, args[:])
		},
		CmdPipelineBarrier: func(cmd CommandBuffer, srcStage, dstStage PipelineStageFlags, barriers []ImageMemoryBarrier, bufferBarriers []BufferMemoryBarrier) {
			args := [5]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&srcStage), unsafe.Pointer(&dstStage), unsafe.Pointer(&bufferBarriers), unsafe.Pointer(&barriers)}
			ffi.CallFunction(&cmdPipelineBarrier.cif, cmdPipelineBarrier.addr, nil, args[:])
		},
		CmdCopyBufferToImage: func(cmd CommandBuffer, src Buffer, dst Image, regions []BufferImageCopy) {
			args := [4]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&src), unsafe.Pointer(&dst), unsafe.Pointer(&regions)}
			ffi.CallFunction(&cmdCopyBufferToImage.cif, cmdCopyBufferToImage.addr, nil, args[:])
		},
		CmdCopyBuffer: func(cmd CommandBuffer, src, dst Buffer, regions []BufferCopy) {
			args := [4]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&src), unsafe.Pointer(&dst), unsafe.Pointer(&regions)}
			ffi.CallFunction(&cmdCopyBuffer.cif, cmdCopyBuffer.addr, nil, args[:])
		},
		CmdBlitImage: func(cmd CommandBuffer, src, dst Image, regions []ImageBlit) {
			args := [4]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&src), unsafe.Pointer(&dst), unsafe.Pointer(&regions)}
			ffi.CallFunction(&cmdBlitImage.cif, cmdBlitImage.addr, nil, args[:])
		},
		CmdBeginRenderPass: func(cmd CommandBuffer, pass RenderPass, fb Framebuffer, width, height uint32) {
			args := [5]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&pass), unsafe.Pointer(&fb), unsafe.Pointer(&width), unsafe.Pointer(&height)}
			ffi.CallFunction(&cmdBeginRenderPass.cif, cmdBeginRenderPass.addr, nil, args[:])
		},
		CmdEndRenderPass: func(cmd CommandBuffer) {
			args := [1]unsafe.Pointer{unsafe.Pointer(&cmd)}
			ffi.CallFunction(&cmdEndRenderPass.cif, cmdEndRenderPass.addr, nil, args[:])
		},
		CmdBindPipeline: func(cmd CommandBuffer, bindPoint PipelineBindPoint, pipeline Pipeline) {
			args := [3]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&bindPoint), unsafe.Pointer(&pipeline)}
			ffi.CallFunction(&cmdBindPipeline.cif, cmdBindPipeline.addr, nil, args[:])
		},
		CmdSetViewport: func(cmd CommandBuffer, width, height float32) {
			args := [3]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&width), unsafe.Pointer(&height)}
			ffi.CallFunction(&cmdSetViewport.cif, cmdSetViewport.addr, nil, args[:])
		},
		CmdSetScissor: func(cmd CommandBuffer, width, height uint32) {
			args := [3]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&width), unsafe.Pointer(&height)}
			ffi.CallFunction(&cmdSetScissor.cif, cmdSetScissor.addr, nil, args[:])
		},
		CmdBindVertexBuffer: func(cmd CommandBuffer, buffer Buffer, offset uint64) {
			args := [3]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&buffer), unsafe.Pointer(&offset)}
			ffi.CallFunction(&cmdBindVertexBuffers.cif, cmdBindVertexBuffers.addr, nil, args[:])
		},
		CmdBindIndexBuffer: func(cmd CommandBuffer, buffer Buffer, offset uint64, indexType IndexType) {
			args := [4]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&buffer), unsafe.Pointer(&offset), unsafe.Pointer(&indexType)}
			ffi.CallFunction(&cmdBindIndexBuffer.cif, cmdBindIndexBuffer.addr, nil, args[:])
		},
		CmdBindDescriptorSets: func(cmd CommandBuffer, bindPoint PipelineBindPoint, layout PipelineLayout, firstSet uint32, sets []DescriptorSet) {
			args := [5]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&bindPoint), unsafe.Pointer(&layout), unsafe.Pointer(&firstSet), unsafe.Pointer(&sets)}
			ffi.CallFunction(&cmdBindDescriptorSets.cif, cmdBindDescriptorSets.addr, nil, args[:])
		},
		CmdPushConstants: func(cmd CommandBuffer, layout PipelineLayout, stages ShaderStage, data []byte) {
			args := [4]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&layout), unsafe.Pointer(&stages), unsafe.Pointer(&data)}
			ffi.CallFunction(&cmdPushConstants.cif, cmdPushConstants.addr, nil, args[:])
		},
		CmdDrawIndexed: func(cmd CommandBuffer, indexCount uint32) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&indexCount)}
			ffi.CallFunction(&cmdDrawIndexed.cif, cmdDrawIndexed.addr, nil, args[:])
		},
		CmdDispatch: func(cmd CommandBuffer, x, y, z uint32) {
			args := [4]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&x), unsafe.Pointer(&y), unsafe.Pointer(&z)}
			ffi.CallFunction(&cmdDispatch.cif, cmdDispatch.addr, nil, args[:])
		},
		CreateQueryPool: func(device Device, count uint32) (QueryPool, Result) {
			var out QueryPool
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&count)}
			var res int32
			ffi.CallFunction(&createQueryPool.cif, createQueryPool.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		CmdResetQueryPool: func(cmd CommandBuffer, pool QueryPool, first, count uint32) {
			args := [4]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&pool), unsafe.Pointer(&first), unsafe.Pointer(&count)}
			ffi.CallFunction(&cmdResetQueryPool.cif, cmdResetQueryPool.addr, nil, args[:])
		},
		CmdWriteTimestamp: func(cmd CommandBuffer, stage PipelineStageFlags, pool QueryPool, query uint32) {
			args := [4]unsafe.Pointer{unsafe.Pointer(&cmd), unsafe.Pointer(&stage), unsafe.Pointer(&pool), unsafe.Pointer(&query)}
			ffi.CallFunction(&cmdWriteTimestamp.cif, cmdWriteTimestamp.addr, nil, args[:])
		},
		GetQueryPoolResults: func(device Device, pool QueryPool, first, count uint32) ([]uint64, Result) {
			out := make([]uint64, count)
			args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&pool), unsafe.Pointer(&first), unsafe.Pointer(&count)}
			var res int32
			ffi.CallFunction(&getQueryPoolResults.cif, getQueryPoolResults.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		CmdBeginDebugLabel: func(cmd CommandBuffer, name string) {
			// vkCmdBeginDebugUtilsLabelEXT is optional — absence on a
			// driver without VK_EXT_debug_utils is not an error.
		},
		CmdEndDebugLabel: func(cmd CommandBuffer) {},
		QueueSubmit: func(queue Queue, buffers []CommandBuffer, wait, signal []Semaphore) Result {
			args := [4]unsafe.Pointer{unsafe.Pointer(&queue), unsafe.Pointer(&buffers), unsafe.Pointer(&wait), unsafe.Pointer(&signal)}
			var res int32
			ffi.CallFunction(&queueSubmit.cif, queueSubmit.addr, unsafe.Pointer(&res), args[:])
			return Result(res)
		},
		QueuePresent: func(queue Queue, swapchain SwapchainKHR, imageIndex uint32, wait []Semaphore) Result {
			args := [4]unsafe.Pointer{unsafe.Pointer(&queue), unsafe.Pointer(&swapchain), unsafe.Pointer(&imageIndex), unsafe.Pointer(&wait)}
			var res int32
			ffi.CallFunction(&queuePresent.cif, queuePresent.addr, unsafe.Pointer(&res), args[:])
			return Result(res)
		},
		DeviceWaitIdle: func(device Device) Result {
			args := [1]unsafe.Pointer{unsafe.Pointer(&device)}
			var res int32
			ffi.CallFunction(&deviceWaitIdle.cif, deviceWaitIdle.addr, unsafe.Pointer(&res), args[:])
			return Result(res)
		},
		CreateSurface: func(instance Instance, window WindowHandle) (Surface, Result) {
			info := surfaceCreateInfo{Window: uint64(window)}
			var out Surface
			args := [2]unsafe.Pointer{unsafe.Pointer(&instance), unsafe.Pointer(&info)}
			var res int32
			ffi.CallFunction(&createSurface.cif, createSurface.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		DestroySurface: func(instance Instance, surface Surface) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&instance), unsafe.Pointer(&surface)}
			ffi.CallFunction(&destroySurface.cif, destroySurface.addr, nil, args[:])
		},
		CreateSwapchain: func(device Device, desc SwapchainCreateInfo) (SwapchainKHR, Result) {
			var out SwapchainKHR
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&desc)}
			var res int32
			ffi.CallFunction(&createSwapchain.cif, createSwapchain.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		DestroySwapchain: func(device Device, swapchain SwapchainKHR) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&swapchain)}
			ffi.CallFunction(&destroySwapchain.cif, destroySwapchain.addr, nil, args[:])
		},
		GetSwapchainImages: func(device Device, swapchain SwapchainKHR) ([]Image, Result) {
			var count uint32
			args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&swapchain), unsafe.Pointer(&count)}
			var res int32
			ffi.CallFunction(&getSwapchainImages.cif, getSwapchainImages.addr, unsafe.Pointer(&res), args[:])
			if Result(res) != Success || count == 0 {
				return nil, Result(res)
			}
			images := make([]Image, count)
			args2 := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&swapchain), unsafe.Pointer(&images)}
			ffi.CallFunction(&getSwapchainImages.cif, getSwapchainImages.addr, unsafe.Pointer(&res), args2[:])
			return images, Result(res)
		},
		GetSurfaceCapabilities: func(physicalDevice PhysicalDevice, surface Surface) (SurfaceCapabilities, Result) {
			var out SurfaceCapabilities
			args := [3]unsafe.Pointer{unsafe.Pointer(&physicalDevice), unsafe.Pointer(&surface), unsafe.Pointer(&out)}
			var res int32
			ffi.CallFunction(&getSurfaceCapabilities.cif, getSurfaceCapabilities.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		CreateImageView: func(device Device, image Image, format uint32) (ImageView, Result) {
			var out ImageView
			args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&image), unsafe.Pointer(&format)}
			var res int32
			ffi.CallFunction(&createImageView.cif, createImageView.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		DestroyImageView: func(device Device, view ImageView) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&view)}
			ffi.CallFunction(&destroyImageView.cif, destroyImageView.addr, nil, args[:])
		},
		CreateSemaphore: func(device Device) (Semaphore, Result) {
			var out Semaphore
			args := [1]unsafe.Pointer{unsafe.Pointer(&device)}
			var res int32
			ffi.CallFunction(&createSemaphore.cif, createSemaphore.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		DestroySemaphore: func(device Device, semaphore Semaphore) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&semaphore)}
			ffi.CallFunction(&destroySemaphore.cif, destroySemaphore.addr, nil, args[:])
		},
		AcquireNextImage: func(device Device, swapchain SwapchainKHR, signal Semaphore) (uint32, bool, Result) {
			var imageIndex uint32
			timeout := ^uint64(0)
			args := [5]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&swapchain), unsafe.Pointer(&timeout), unsafe.Pointer(&signal), unsafe.Pointer(&imageIndex)}
			var res int32
			ffi.CallFunction(&acquireNextImage.cif, acquireNextImage.addr, unsafe.Pointer(&res), args[:])
			return imageIndex, Result(res) == ErrorSurfaceOutdated, Result(res)
		},
		MapMemory: func(device Device, memory DeviceMemory, offset, size uint64) ([]byte, Result) {
			var ptr unsafe.Pointer
			var flags uint32
			args := [5]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&memory), unsafe.Pointer(&offset), unsafe.Pointer(&size), unsafe.Pointer(&flags)}
			var res int32
			ffi.CallFunction(&mapMemory.cif, mapMemory.addr, unsafe.Pointer(&res), args[:])
			if Result(res) != Success || ptr == nil {
				return nil, Result(res)
			}
			return unsafe.Slice((*byte)(ptr), size), Success
		},
		UnmapMemory: func(device Device, memory DeviceMemory) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&memory)}
			ffi.CallFunction(&unmapMemory.cif, unmapMemory.addr, nil, args[:])
		},
		CreateFence: func(device Device, signaled bool) (Fence, Result) {
			var out Fence
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&signaled)}
			var res int32
			ffi.CallFunction(&createFence.cif, createFence.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		DestroyFence: func(device Device, fence Fence) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&fence)}
			ffi.CallFunction(&destroyFence.cif, destroyFence.addr, nil, args[:])
		},
		WaitForFence: func(device Device, fence Fence, timeoutNanos uint64) Result {
			args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&fence), unsafe.Pointer(&timeoutNanos)}
			var res int32
			ffi.CallFunction(&waitForFences.cif, waitForFences.addr, unsafe.Pointer(&res), args[:])
			return Result(res)
		},
		ResetFence: func(device Device, fence Fence) {
			args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&fence)}
			var res int32
			ffi.CallFunction(&resetFences.cif, resetFences.addr, unsafe.Pointer(&res), args[:])
		},
		AllocateCommandBuffer: func(device Device) (CommandBuffer, Result) {
			var out CommandBuffer
			args := [1]unsafe.Pointer{unsafe.Pointer(&device)}
			var res int32
			ffi.CallFunction(&allocateCommandBuffers.cif, allocateCommandBuffers.addr, unsafe.Pointer(&res), args[:])
			return out, Result(res)
		},
		BeginCommandBuffer: func(cmd CommandBuffer) Result {
			args := [1]unsafe.Pointer{unsafe.Pointer(&cmd)}
			var res int32
			ffi.CallFunction(&beginCommandBuffer.cif, beginCommandBuffer.addr, unsafe.Pointer(&res), args[:])
			return Result(res)
		},
		EndCommandBuffer: func(cmd CommandBuffer) Result {
			args := [1]unsafe.Pointer{unsafe.Pointer(&cmd)}
			var res int32
			ffi.CallFunction(&endCommandBuffer.cif, endCommandBuffer.addr, unsafe.Pointer(&res), args[:])
			return Result(res)
		},
		FindMemoryType: func(physicalDevice PhysicalDevice, typeBits uint32, flags MemoryPropertyFlags) (uint32, bool) {
			var props physicalDeviceMemoryProperties
			args := [2]unsafe.Pointer{unsafe.Pointer(&physicalDevice), unsafe.Pointer(&props)}
			ffi.CallFunction(&getPhysicalDeviceMemoryProperties.cif, getPhysicalDeviceMemoryProperties.addr, nil, args[:])

			for i := uint32(0); i < props.MemoryTypeCount; i++ {
				if typeBits&(1<<i) == 0 {
					continue
				}
				if MemoryPropertyFlags(props.MemoryTypes[i].PropertyFlags)&flags == flags {
					return i, true
				}
			}
			return 0, false
		},
	}

	return nil
}
