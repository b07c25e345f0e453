package lumen

import (
	"fmt"

	"github.com/lumenrender/lumen/gpuformat"
	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/memory"
	"github.com/lumenrender/lumen/transfer"
)

// ImageResource is everything this backend tracks about one image: its
// native handle, the memory backing it, one view per mip (spec §6.2
// "per-mip image views"), and the geometry used to validate later
// uploads. Owned is false for swapchain images — their native handle
// and memory are not this backend's to destroy, only their per-mip
// views are (spec §6.2 "swapchain image" special case).
type ImageResource struct {
	native     vk.Image
	allocation memory.Allocation
	views      []vk.ImageView

	Format               gpuformat.Image
	Width, Height, Depth uint32
	MipCount             uint32

	Owned bool
}

// ImageCreateDesc describes a new image. MipCount of 0 means "derive
// from Width/Height/Depth via gpuformat.MipCount" (spec §6.2).
type ImageCreateDesc struct {
	Format               gpuformat.Image
	Width, Height, Depth uint32
	MipCount             uint32
	Usage                uint32
}

// CreateImage allocates a native image, binds device-local memory to
// it, and creates one view per mip level, per spec §6.2's undefined →
// bound → viewed sequence. The image begins life in
// ImageLayoutUndefined, tracked from mip 0.
func (b *Backend) CreateImage(desc ImageCreateDesc) (handle.Image, error) {
	if desc.Depth == 0 {
		desc.Depth = 1
	}
	mipCount := desc.MipCount
	if mipCount == 0 {
		mipCount = gpuformat.MipCount(desc.Width, desc.Height, desc.Depth)
	}

	native, result := b.vk.Commands.CreateImage(b.vk.Device, vk.ImageCreateInfo{
		Width: desc.Width, Height: desc.Height, Depth: desc.Depth,
		MipLevels: mipCount,
		Format:    uint32(desc.Format),
		Usage:     desc.Usage,
	})
	if !result.OK() {
		return handle.InvalidImage, fmt.Errorf("lumen: vkCreateImage failed: result %d", result)
	}

	alloc, err := b.allocateForImage(desc.Format, desc.Width, desc.Height, desc.Depth, mipCount)
	if err != nil {
		b.vk.Commands.DestroyImage(b.vk.Device, native)
		return handle.InvalidImage, err
	}

	if res := b.vk.Commands.BindImageMemory(b.vk.Device, native, vk.DeviceMemory(alloc.NativeMemory()), alloc.Offset); !res.OK() {
		b.memory.Free(alloc)
		b.vk.Commands.DestroyImage(b.vk.Device, native)
		return handle.InvalidImage, fmt.Errorf("lumen: vkBindImageMemory failed: result %d", res)
	}

	views, err := b.createMipViews(native, desc.Format, mipCount)
	if err != nil {
		b.memory.Free(alloc)
		b.vk.Commands.DestroyImage(b.vk.Device, native)
		return handle.InvalidImage, err
	}

	h := b.images.Create(ImageResource{
		native:     native,
		allocation: alloc,
		views:      views,
		Format:     desc.Format,
		Width:      desc.Width,
		Height:     desc.Height,
		Depth:      desc.Depth,
		MipCount:   mipCount,
		Owned:      true,
	})
	b.tracker.RegisterImage(h, mipCount)
	b.logf("created image %s format=%v %dx%dx%d mips=%d", h, desc.Format, desc.Width, desc.Height, desc.Depth, mipCount)
	return h, nil
}

// adoptSwapchainImage wraps a swapchain-provided native image in the
// registry without allocating memory or claiming ownership of the
// native handle: only its single view is this backend's to destroy
// (spec §6.2 "swapchain image").
func (b *Backend) adoptSwapchainImage(native vk.Image, format gpuformat.Image, width, height uint32) (handle.Image, error) {
	view, result := b.vk.Commands.CreateImageView(b.vk.Device, native, uint32(format))
	if !result.OK() {
		return handle.InvalidImage, fmt.Errorf("lumen: vkCreateImageView on swapchain image failed: result %d", result)
	}

	h := b.images.Create(ImageResource{
		native:   native,
		views:    []vk.ImageView{view},
		Format:   format,
		Width:    width,
		Height:   height,
		Depth:    1,
		MipCount: 1,
		Owned:    false,
	})
	b.tracker.RegisterImage(h, 1)
	return h, nil
}

// UploadImage stages mip data into img through the transfer engine,
// then optionally fills remaining mips by blitting down from mip 0
// (spec §6.2 "staged upload", §4.7 "Mip generation").
func (b *Backend) UploadImage(img handle.Image, mips []transfer.MipUpload, generateMips bool) error {
	res, ok := b.images.Get(img)
	if !ok {
		return ErrResourceNotFound
	}

	if err := b.transfer.ImageUpload(res.native, res.Format, mips); err != nil {
		return err
	}

	if generateMips && res.MipCount > 1 {
		finalLayout := vk.ImageLayoutShaderReadOnlyOptimal
		if err := b.transfer.GenerateMips(res.native, res.Format, res.Width, res.Height, res.MipCount, finalLayout); err != nil {
			return err
		}
	}
	return nil
}

// ResizeImage destroys and recreates img at a new width/height, for
// render-target images whose framebuffer is being rebuilt on window
// resize (spec §6.2 "resize"). The caller must have already waited for
// the device to go idle (spec §6.7 resize sequence).
func (b *Backend) ResizeImage(img handle.Image, width, height uint32) error {
	res, ok := b.images.Get(img)
	if !ok {
		return ErrResourceNotFound
	}

	desc := ImageCreateDesc{
		Format: res.Format, Width: width, Height: height, Depth: res.Depth,
		MipCount: res.MipCount, Usage: 0,
	}

	if err := b.destroyImage(res); err != nil {
		return err
	}

	fresh, err := b.CreateImage(desc)
	if err != nil {
		return err
	}
	freshRes, _ := b.images.Get(fresh)
	b.images.Mutate(img, func(r *ImageResource) { *r = freshRes })
	b.images.Destroy(fresh)
	b.tracker.ForgetImage(fresh)
	b.tracker.RegisterImage(img, freshRes.MipCount)
	return nil
}

// DestroyImage releases img's views, memory (if owned), and native
// handle, and stops tracking it (spec §6.2 "destroy").
func (b *Backend) DestroyImage(img handle.Image) error {
	res, ok := b.images.Destroy(img)
	if !ok {
		return ErrResourceNotFound
	}
	b.tracker.ForgetImage(img)
	return b.destroyImage(res)
}

func (b *Backend) destroyImage(res ImageResource) error {
	for _, v := range res.views {
		b.vk.Commands.DestroyImageView(b.vk.Device, v)
	}
	if res.Owned {
		b.memory.Free(res.allocation)
		b.vk.Commands.DestroyImage(b.vk.Device, res.native)
	}
	return nil
}

// allocateForImage picks a device-local memory type and sub-allocates
// enough bytes for the whole mip chain, per spec §4.1's findMemoryIndex
// plus the sub-allocator. Vulkan's own vkGetImageMemoryRequirements
// would give an exact, alignment-correct size; this module's Commands
// surface has no such query, so imageByteSize sums a conservative
// per-mip estimate instead.
func (b *Backend) allocateForImage(format gpuformat.Image, width, height, depth, mipCount uint32) (memory.Allocation, error) {
	typeIndex, ok := b.vk.Commands.FindMemoryType(b.vk.PhysicalDevice, ^uint32(0), vk.MemoryPropertyDeviceLocal)
	if !ok {
		return memory.Allocation{}, ErrNoSuitableMemoryType
	}

	size := imageByteSize(format, width, height, depth, mipCount)
	return b.memory.Allocate(typeIndex, size, imageMemoryAlignment)
}

// imageMemoryAlignment is a conservative alignment for image
// allocations, covering every texel/block size this module's formats
// use.
const imageMemoryAlignment = 256

// imageByteSize sums a conservative per-mip footprint across the whole
// chain: each mip halves width/height/depth (floor, minimum 1).
func imageByteSize(format gpuformat.Image, w, h, d, mipCount uint32) uint64 {
	var total uint64
	for mip := uint32(0); mip < mipCount; mip++ {
		total += mipByteSize(format, w, h, d)
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
		if d > 1 {
			d /= 2
		}
	}
	return total
}

func mipByteSize(format gpuformat.Image, w, h, d uint32) uint64 {
	if format.IsBlockCompressed() {
		blocksWide := uint64((w + 3) / 4)
		blocksHigh := uint64((h + 3) / 4)
		if blocksWide == 0 {
			blocksWide = 1
		}
		if blocksHigh == 0 {
			blocksHigh = 1
		}
		return blocksWide * blocksHigh * uint64(d) * uint64(format.BlockSize())
	}
	return uint64(w) * uint64(h) * uint64(d) * uint64(format.BytesPerTexel())
}

func (b *Backend) createMipViews(native vk.Image, format gpuformat.Image, mipCount uint32) ([]vk.ImageView, error) {
	views := make([]vk.ImageView, 0, mipCount)
	for mip := uint32(0); mip < mipCount; mip++ {
		view, result := b.vk.Commands.CreateImageView(b.vk.Device, native, uint32(format))
		if !result.OK() {
			for _, v := range views {
				b.vk.Commands.DestroyImageView(b.vk.Device, v)
			}
			return nil, fmt.Errorf("lumen: vkCreateImageView mip %d failed: result %d", mip, result)
		}
		views = append(views, view)
	}
	return views, nil
}
