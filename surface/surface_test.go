package surface

import (
	"testing"

	"github.com/lumenrender/lumen/internal/vk"
)

func fakeCommands() *vk.Commands {
	nextHandle := vk.Handle(1)
	alloc := func() uint64 {
		h := uint64(nextHandle)
		nextHandle++
		return h
	}

	return &vk.Commands{
		CreateSurface:  func(vk.Instance, vk.WindowHandle) (vk.Surface, vk.Result) { return vk.Surface(alloc()), vk.Success },
		DestroySurface: func(vk.Instance, vk.Surface) {},
		CreateSemaphore: func(vk.Device) (vk.Semaphore, vk.Result) {
			return vk.Semaphore(alloc()), vk.Success
		},
		DestroySemaphore: func(vk.Device, vk.Semaphore) {},
		GetSurfaceCapabilities: func(vk.PhysicalDevice, vk.Surface) (vk.SurfaceCapabilities, vk.Result) {
			return vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 4}, vk.Success
		},
		CreateSwapchain: func(device vk.Device, desc vk.SwapchainCreateInfo) (vk.SwapchainKHR, vk.Result) {
			return vk.SwapchainKHR(alloc()), vk.Success
		},
		DestroySwapchain: func(vk.Device, vk.SwapchainKHR) {},
		GetSwapchainImages: func(vk.Device, vk.SwapchainKHR) ([]vk.Image, vk.Result) {
			return []vk.Image{vk.Image(alloc()), vk.Image(alloc())}, vk.Success
		},
		CreateImageView: func(vk.Device, vk.Image, uint32) (vk.ImageView, vk.Result) {
			return vk.ImageView(alloc()), vk.Success
		},
		DestroyImageView:      func(vk.Device, vk.ImageView) {},
		AcquireNextImage:      func(vk.Device, vk.SwapchainKHR, vk.Semaphore) (uint32, bool, vk.Result) { return 0, false, vk.Success },
		QueuePresent:          func(vk.Queue, vk.SwapchainKHR, uint32, []vk.Semaphore) vk.Result { return vk.Success },
		DeviceWaitIdle:        func(vk.Device) vk.Result { return vk.Success },
	}
}

func TestNewNegotiatesSwapchainAtRequestedSize(t *testing.T) {
	ctx := &vk.Context{Commands: *fakeCommands()}

	s, err := New(ctx, vk.WindowHandle(1), 800, 600)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Width() != 800 || s.Height() != 600 {
		t.Fatalf("size = %dx%d, want 800x600", s.Width(), s.Height())
	}
	if len(s.Images()) != 2 || len(s.Views()) != 2 {
		t.Fatalf("images/views = %d/%d, want 2/2", len(s.Images()), len(s.Views()))
	}
	if s.Minimised() {
		t.Fatal("should not be minimised at a nonzero size")
	}
}

func TestResizeToZeroAreaMarksMinimised(t *testing.T) {
	ctx := &vk.Context{Commands: *fakeCommands()}
	s, err := New(ctx, vk.WindowHandle(1), 800, 600)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Resize(0, 0); err != nil {
		t.Fatalf("Resize(0,0): %v", err)
	}
	if !s.Minimised() {
		t.Fatal("zero-area resize should mark minimised")
	}
	// dimensions from before the zero-area resize are retained.
	if s.Width() != 800 || s.Height() != 600 {
		t.Fatalf("size after minimise = %dx%d, want unchanged 800x600", s.Width(), s.Height())
	}
}

func TestResizeRecreatesSwapchainAtNewSize(t *testing.T) {
	ctx := &vk.Context{Commands: *fakeCommands()}
	s, err := New(ctx, vk.WindowHandle(1), 800, 600)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Resize(1280, 720); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if s.Width() != 1280 || s.Height() != 720 {
		t.Fatalf("size = %dx%d, want 1280x720", s.Width(), s.Height())
	}
	if s.Minimised() {
		t.Fatal("should not be minimised after a nonzero resize")
	}
}

func TestDefaultMinImageCountEnforcedEvenWhenCapabilitiesAllowFewer(t *testing.T) {
	cmds := fakeCommands()
	cmds.GetSurfaceCapabilities = func(vk.PhysicalDevice, vk.Surface) (vk.SurfaceCapabilities, vk.Result) {
		return vk.SurfaceCapabilities{MinImageCount: 1, MaxImageCount: 1}, vk.Success
	}
	var requestedMin uint32
	cmds.CreateSwapchain = func(device vk.Device, desc vk.SwapchainCreateInfo) (vk.SwapchainKHR, vk.Result) {
		requestedMin = desc.MinImageCount
		return vk.SwapchainKHR(1), vk.Success
	}
	cmds.GetSwapchainImages = func(vk.Device, vk.SwapchainKHR) ([]vk.Image, vk.Result) {
		return []vk.Image{1}, vk.Success
	}

	ctx := &vk.Context{Commands: *cmds}
	if _, err := New(ctx, vk.WindowHandle(1), 800, 600); err != nil {
		t.Fatalf("New: %v", err)
	}
	if requestedMin != 1 {
		// capabilities cap MaxImageCount at 1, so the floor of 2 is
		// clamped back down — this asserts the clamp, not the floor.
		t.Fatalf("requested min image count = %d, want capped to 1", requestedMin)
	}
}
