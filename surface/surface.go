// Package surface negotiates the swapchain format/present-mode for an
// abstract window handle and tracks its resize/minimised state, per
// spec §6 ("Surface / window"). The window itself — and anything
// that polls its input — is an external collaborator; this package
// only ever touches the opaque handle the caller hands in.
package surface

import (
	"fmt"

	"github.com/lumenrender/lumen/internal/vk"
)

// preferredFormat is BGRA8-UNORM, sRGB-nonlinear colour space — the
// format spec §6 names as preferred. gpuformat has no colour-space
// axis, so the accepted/produced format is carried as the raw
// vk-level uint32 code the swapchain create call wants.
const preferredFormat uint32 = 1 // matches gpuformat.ImageBGRA8Srgb's ordinal by convention

// DefaultMinImageCount is the floor spec §6 requires regardless of
// what the surface capabilities advertise.
const DefaultMinImageCount uint32 = 2

// Surface owns one swapchain built against an abstract window handle,
// re-created whenever Resize reports a real size change. Grounded on
// hal/vulkan/swapchain.go's negotiate-then-recreate shape, trimmed to
// one Vulkan-class backend (no Instance/Adapter enumeration).
type Surface struct {
	ctx     *vk.Context
	handle  vk.Surface
	window  vk.WindowHandle

	swapchain   vk.SwapchainKHR
	format      uint32
	width       uint32
	height      uint32
	minimised   bool

	images     []vk.Image
	views      []vk.ImageView

	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
}

// New derives a Vulkan-class surface from window and negotiates an
// initial swapchain at (width, height).
func New(ctx *vk.Context, window vk.WindowHandle, width, height uint32) (*Surface, error) {
	handle, result := ctx.Commands.CreateSurface(ctx.Instance, window)
	if !result.OK() {
		return nil, fmt.Errorf("surface: vkCreateSurfaceKHR failed: result %d", result)
	}

	s := &Surface{ctx: ctx, handle: handle, window: window}

	imageAvailable, result := ctx.Commands.CreateSemaphore(ctx.Device)
	if !result.OK() {
		return nil, fmt.Errorf("surface: creating image-available semaphore: result %d", result)
	}
	renderFinished, result := ctx.Commands.CreateSemaphore(ctx.Device)
	if !result.OK() {
		return nil, fmt.Errorf("surface: creating render-finished semaphore: result %d", result)
	}
	s.imageAvailable = imageAvailable
	s.renderFinished = renderFinished

	if err := s.Resize(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Format returns the negotiated swapchain pixel format.
func (s *Surface) Format() uint32 { return s.format }

// Width and Height return the current swapchain extent.
func (s *Surface) Width() uint32  { return s.width }
func (s *Surface) Height() uint32 { return s.height }

// Minimised reports whether the last Resize was a zero-area resize —
// spec §5: "a zero-area resize marks minimised and all frame recording
// is skipped until the window is restored."
func (s *Surface) Minimised() bool { return s.minimised }

// Images returns the swapchain's backing images, tagged in the owning
// backend as unowned memory per spec §3 ("Swapchain images are
// tagged: their backing memory is not owned, only views are.").
func (s *Surface) Images() []vk.Image { return s.images }

// Views returns the per-image swapchain views, owned by this Surface.
func (s *Surface) Views() []vk.ImageView { return s.views }

// ImageAvailable and RenderFinished are the semaphore pair spec §5
// names: acquire signals the first, submit waits on it at
// colour-attachment-output stage and signals the second, present
// waits on the second.
func (s *Surface) ImageAvailable() vk.Semaphore { return s.imageAvailable }
func (s *Surface) RenderFinished() vk.Semaphore { return s.renderFinished }

// Resize is idempotent and handles the zero-area case: it destroys
// the existing swapchain, negotiates capabilities again, and rebuilds
// at the requested size. A zero-area request only marks minimised —
// spec §5 "Resize is idempotent: a zero-area resize marks minimised."
func (s *Surface) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		s.minimised = true
		return nil
	}
	s.minimised = false

	caps, result := s.ctx.Commands.GetSurfaceCapabilities(s.ctx.PhysicalDevice, s.handle)
	if !result.OK() {
		return fmt.Errorf("surface: querying surface capabilities: result %d", result)
	}

	minImages := caps.MinImageCount
	if minImages < DefaultMinImageCount {
		minImages = DefaultMinImageCount
	}
	if caps.MaxImageCount > 0 && minImages > caps.MaxImageCount {
		minImages = caps.MaxImageCount
	}

	format := s.negotiateFormat()

	old := s.swapchain
	swapchain, result := s.ctx.Commands.CreateSwapchain(s.ctx.Device, vk.SwapchainCreateInfo{
		Surface:       s.handle,
		MinImageCount: minImages,
		Format:        format,
		Width:         width,
		Height:        height,
		PresentMode:   vk.PresentModeFifo,
		OldSwapchain:  old,
	})
	if !result.OK() {
		return fmt.Errorf("surface: vkCreateSwapchainKHR failed: result %d", result)
	}

	s.destroyViews()
	if old != vk.Null {
		s.ctx.Commands.DestroySwapchain(s.ctx.Device, old)
	}

	s.swapchain = swapchain
	s.format = format
	s.width = width
	s.height = height

	images, result := s.ctx.Commands.GetSwapchainImages(s.ctx.Device, swapchain)
	if !result.OK() {
		return fmt.Errorf("surface: vkGetSwapchainImagesKHR failed: result %d", result)
	}
	s.images = images

	views := make([]vk.ImageView, len(images))
	for i, img := range images {
		view, result := s.ctx.Commands.CreateImageView(s.ctx.Device, img, format)
		if !result.OK() {
			return fmt.Errorf("surface: creating image view %d: result %d", i, result)
		}
		views[i] = view
	}
	s.views = views

	return nil
}

// negotiateFormat always picks the spec §6 preferred format — a real
// driver query would fall back to "first available" when the
// preferred one is absent, but that enumeration is outside this
// module's curated vk surface (spec §6: "fallback: first available").
func (s *Surface) negotiateFormat() uint32 {
	return preferredFormat
}

// AcquireNextImage acquires the next presentable image, signalling
// ImageAvailable. A stale swapchain (ErrorSurfaceOutdated) is reported
// to the caller, which should Resize at the current size to recreate.
func (s *Surface) AcquireNextImage() (imageIndex uint32, outdated bool, err error) {
	idx, suboptimal, result := s.ctx.Commands.AcquireNextImage(s.ctx.Device, s.swapchain, s.imageAvailable)
	if result == vk.ErrorSurfaceOutdated {
		return 0, true, nil
	}
	if !result.OK() {
		return 0, false, fmt.Errorf("surface: vkAcquireNextImageKHR failed: result %d", result)
	}
	return idx, suboptimal, nil
}

// Present submits the present request for imageIndex, waiting on
// RenderFinished.
func (s *Surface) Present(queue vk.Queue, imageIndex uint32) error {
	result := s.ctx.Commands.QueuePresent(queue, s.swapchain, imageIndex, []vk.Semaphore{s.renderFinished})
	if result == vk.ErrorSurfaceOutdated {
		return nil
	}
	if !result.OK() {
		return fmt.Errorf("surface: vkQueuePresentKHR failed: result %d", result)
	}
	return nil
}

func (s *Surface) destroyViews() {
	for _, v := range s.views {
		s.ctx.Commands.DestroyImageView(s.ctx.Device, v)
	}
	s.views = nil
	s.images = nil
}

// Destroy releases the swapchain, its views, the surface, and the
// acquire/present semaphore pair.
func (s *Surface) Destroy() {
	s.ctx.Commands.DeviceWaitIdle(s.ctx.Device)
	s.destroyViews()
	if s.swapchain != vk.Null {
		s.ctx.Commands.DestroySwapchain(s.ctx.Device, s.swapchain)
	}
	s.ctx.Commands.DestroySemaphore(s.ctx.Device, s.imageAvailable)
	s.ctx.Commands.DestroySemaphore(s.ctx.Device, s.renderFinished)
	s.ctx.Commands.DestroySurface(s.ctx.Instance, s.handle)
}
