package vk

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

var (
	driverLib             unsafe.Pointer
	getInstanceProcAddr    unsafe.Pointer
	getDeviceProcAddr      unsafe.Pointer
	cifGetInstanceProcAddr types.CallInterface
	cifGetDeviceProcAddr   types.CallInterface

	loadOnce sync.Once
	loadErr  error
)

func libraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "vulkan-1.dll"
	case "darwin":
		return "libvulkan.dylib"
	default:
		return "libvulkan.so.1"
	}
}

// Load resolves the platform Vulkan-class driver library and the two
// bootstrap proc-address entry points every other symbol is resolved
// through. Safe to call more than once — only the first call does work.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
	})
	return loadErr
}

func doLoad() error {
	lib, err := ffi.LoadLibrary(libraryName())
	if err != nil {
		return fmt.Errorf("vk: failed to load %s: %w", libraryName(), err)
	}
	driverLib = lib

	getInstanceProcAddr, err = ffi.GetSymbol(driverLib, "vkGetInstanceProcAddr")
	if err != nil {
		return fmt.Errorf("vk: vkGetInstanceProcAddr not found: %w", err)
	}

	if err := ffi.PrepareCallInterface(&cifGetInstanceProcAddr, types.DefaultCall,
		types.PointerTypeDescriptor,
		[]*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor},
	); err != nil {
		return fmt.Errorf("vk: preparing GetInstanceProcAddr call interface: %w", err)
	}

	if err := ffi.PrepareCallInterface(&cifGetDeviceProcAddr, types.DefaultCall,
		types.PointerTypeDescriptor,
		[]*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor},
	); err != nil {
		return fmt.Errorf("vk: preparing GetDeviceProcAddr call interface: %w", err)
	}

	return nil
}

func cString(name string) []byte {
	b := make([]byte, len(name)+1)
	copy(b, name)
	return b
}

// InstanceProc resolves an instance-level (or global, with instance==0)
// Vulkan-class entry point by name.
func InstanceProc(instance Instance, name string) unsafe.Pointer {
	if getInstanceProcAddr == nil {
		return nil
	}
	cname := cString(name)
	namePtr := unsafe.Pointer(&cname[0])

	var result unsafe.Pointer
	args := [2]unsafe.Pointer{
		unsafe.Pointer(&instance),
		unsafe.Pointer(&namePtr),
	}
	_ = ffi.CallFunction(&cifGetInstanceProcAddr, getInstanceProcAddr, unsafe.Pointer(&result), args[:])
	return result
}

// DeviceProc resolves a device-level Vulkan-class entry point, falling
// back to the instance-level resolver the first time it is needed —
// some drivers do not support resolving vkGetDeviceProcAddr itself
// through a null instance.
func DeviceProc(device Device, instance Instance, name string) unsafe.Pointer {
	if getDeviceProcAddr == nil {
		getDeviceProcAddr = InstanceProc(instance, "vkGetDeviceProcAddr")
		if getDeviceProcAddr == nil {
			return nil
		}
	}
	cname := cString(name)
	namePtr := unsafe.Pointer(&cname[0])

	var result unsafe.Pointer
	args := [2]unsafe.Pointer{
		unsafe.Pointer(&device),
		unsafe.Pointer(&namePtr),
	}
	_ = ffi.CallFunction(&cifGetDeviceProcAddr, getDeviceProcAddr, unsafe.Pointer(&result), args[:])
	return result
}
