package main

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"

	"github.com/lumenrender/lumen/internal/vk"
)

// instanceCreateInfo is the minimal instance description this demo's
// bootstrap populates: an application name slot and a debug-validation
// flag.
type instanceCreateInfo struct {
	ApplicationName [64]byte
	DebugValidation  uint32
}

// deviceQueueRequest asks for one queue from a given family.
type deviceQueueRequest struct {
	QueueFamily uint32
	QueueCount  uint32
}

type deviceCreateInfo struct {
	Queues [2]deviceQueueRequest
}

// bootstrapCall resolves name as a global/instance-level entry point
// and prepares its goffi call interface, mirroring internal/vk's own
// prepare() helper — duplicated here because bootstrapping runs before
// a *vk.Context (and therefore vk.Resolve) exists to resolve through.
func bootstrapCall(instance vk.Instance, name string, ret *types.TypeDescriptor, args []*types.TypeDescriptor) (unsafe.Pointer, types.CallInterface, error) {
	addr := vk.InstanceProc(instance, name)
	if addr == nil {
		return nil, types.CallInterface{}, fmt.Errorf("lumen-demo: %s not exposed by driver", name)
	}
	var cif types.CallInterface
	if err := ffi.PrepareCallInterface(&cif, types.DefaultCall, ret, args); err != nil {
		return nil, types.CallInterface{}, fmt.Errorf("lumen-demo: preparing call interface for %s: %w", name, err)
	}
	return addr, cif, nil
}

// bootstrapContext creates an instance, selects the first enumerated
// physical device, and creates a logical device with one graphics
// queue and one transfer queue drawn from the same family — enough to
// populate a *vk.Context for vk.Resolve to build the Commands table
// against. Grounded on the raw PrepareCallInterface/CallFunction idiom
// cmd/vulkan-renderpass-test/ffi_direct.go demonstrates, and on
// internal/vk/resolve.go's own two-call enumeration pattern
// (GetSwapchainImages) for vkEnumeratePhysicalDevices.
func bootstrapContext(appName string, debugValidation bool) (*vk.Context, error) {
	if err := vk.Load(); err != nil {
		return nil, err
	}

	u64T := types.UInt64TypeDescriptor
	u32T := types.UInt32TypeDescriptor
	ptrT := types.PointerTypeDescriptor
	i32T := types.Int32TypeDescriptor
	var voidT *types.TypeDescriptor

	createInstanceAddr, createInstanceCif, err := bootstrapCall(0, "vkCreateInstance", i32T, []*types.TypeDescriptor{ptrT, ptrT, ptrT})
	if err != nil {
		return nil, err
	}

	info := instanceCreateInfo{}
	copy(info.ApplicationName[:], appName)
	if debugValidation {
		info.DebugValidation = 1
	}

	var instance vk.Instance
	{
		args := [3]unsafe.Pointer{unsafe.Pointer(&info), nil, unsafe.Pointer(&instance)}
		var res int32
		ffi.CallFunction(&createInstanceCif, createInstanceAddr, unsafe.Pointer(&res), args[:])
		if vk.Result(res) != vk.Success {
			return nil, fmt.Errorf("lumen-demo: vkCreateInstance failed: result %d", res)
		}
	}

	enumerateAddr, enumerateCif, err := bootstrapCall(instance, "vkEnumeratePhysicalDevices", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT})
	if err != nil {
		return nil, err
	}

	var deviceCount uint32
	{
		args := [3]unsafe.Pointer{unsafe.Pointer(&instance), unsafe.Pointer(&deviceCount), nil}
		var res int32
		ffi.CallFunction(&enumerateCif, enumerateAddr, unsafe.Pointer(&res), args[:])
		if vk.Result(res) != vk.Success || deviceCount == 0 {
			return nil, fmt.Errorf("lumen-demo: vkEnumeratePhysicalDevices found no device: result %d", res)
		}
	}

	physicalDevices := make([]vk.PhysicalDevice, deviceCount)
	{
		args := [3]unsafe.Pointer{unsafe.Pointer(&instance), unsafe.Pointer(&deviceCount), unsafe.Pointer(&physicalDevices)}
		var res int32
		ffi.CallFunction(&enumerateCif, enumerateAddr, unsafe.Pointer(&res), args[:])
		if vk.Result(res) != vk.Success {
			return nil, fmt.Errorf("lumen-demo: vkEnumeratePhysicalDevices (fetch) failed: result %d", res)
		}
	}
	physicalDevice := physicalDevices[0]

	const graphicsFamily, transferFamily uint32 = 0, 0

	createDeviceAddr, createDeviceCif, err := bootstrapCall(instance, "vkCreateDevice", i32T, []*types.TypeDescriptor{u64T, ptrT, ptrT, ptrT})
	if err != nil {
		return nil, err
	}

	deviceInfo := deviceCreateInfo{
		Queues: [2]deviceQueueRequest{
			{QueueFamily: graphicsFamily, QueueCount: 1},
			{QueueFamily: transferFamily, QueueCount: 1},
		},
	}

	var device vk.Device
	{
		args := [4]unsafe.Pointer{unsafe.Pointer(&physicalDevice), unsafe.Pointer(&deviceInfo), nil, unsafe.Pointer(&device)}
		var res int32
		ffi.CallFunction(&createDeviceCif, createDeviceAddr, unsafe.Pointer(&res), args[:])
		if vk.Result(res) != vk.Success {
			return nil, fmt.Errorf("lumen-demo: vkCreateDevice failed: result %d", res)
		}
	}

	getQueueAddr := vk.DeviceProc(device, instance, "vkGetDeviceQueue")
	if getQueueAddr == nil {
		return nil, fmt.Errorf("lumen-demo: vkGetDeviceQueue not exposed by driver")
	}
	var getQueueCif types.CallInterface
	if err := ffi.PrepareCallInterface(&getQueueCif, types.DefaultCall, voidT, []*types.TypeDescriptor{u64T, u32T, u32T, ptrT}); err != nil {
		return nil, fmt.Errorf("lumen-demo: preparing vkGetDeviceQueue call interface: %w", err)
	}

	getQueue := func(family, index uint32) vk.Queue {
		var queue vk.Queue
		args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&family), unsafe.Pointer(&index), unsafe.Pointer(&queue)}
		ffi.CallFunction(&getQueueCif, getQueueAddr, nil, args[:])
		return queue
	}

	return &vk.Context{
		Instance:       instance,
		PhysicalDevice: physicalDevice,
		Device:         device,
		GraphicsQueue:  getQueue(graphicsFamily, 0),
		GraphicsFamily: graphicsFamily,
		TransferQueue:  getQueue(transferFamily, 0),
		TransferFamily: transferFamily,
	}, nil
}
