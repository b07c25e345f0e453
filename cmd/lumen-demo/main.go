//go:build windows

// Command lumen-demo is an integration smoke test for the renderer
// core: it opens a window, bootstraps a Vulkan-class device, builds
// the full frontend pipeline, and drives it through a plain present
// loop. Grounded on cmd/vulkan-triangle's init -> loop -> present shape
// and numbered console narration, trimmed to a single render thread.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/lumenrender/lumen"
	"github.com/lumenrender/lumen/frontend"
	"github.com/lumenrender/lumen/gpuformat"
	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/linear"
	"github.com/lumenrender/lumen/surface"
	"github.com/lumenrender/lumen/uibridge"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	windowTitle  = "lumen-demo"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fmt.Print("1. Opening window... ")
	win, err := newWindow(windowTitle, windowWidth, windowHeight)
	if err != nil {
		return err
	}
	defer win.Destroy()
	fmt.Println("OK")

	fmt.Print("2. Bootstrapping Vulkan-class device... ")
	ctx, err := bootstrapContext(windowTitle, true)
	if err != nil {
		return err
	}
	fmt.Println("OK")

	fmt.Print("3. Constructing backend... ")
	backend, err := lumen.NewBackend(ctx, lumen.BackendConfig{DebugValidation: true}, 1.0)
	if err != nil {
		return err
	}
	defer backend.Shutdown()
	fmt.Println("OK")

	fmt.Print("4. Creating presentation surface... ")
	surf, err := surface.New(ctx, vk.WindowHandle(win.Handle()), windowWidth, windowHeight)
	if err != nil {
		return err
	}
	defer surf.Destroy()
	backend.AttachSurface(surf)
	fmt.Println("OK")

	fmt.Print("5. Materializing shader sources... ")
	shaderDir := filepath.Join(os.TempDir(), "lumen-demo-shaders")
	cacheDir := filepath.Join(os.TempDir(), "lumen-demo-shader-cache")
	sources, err := materializeShaders(shaderDir, cacheDir)
	if err != nil {
		return err
	}
	fmt.Println("OK")

	fmt.Print("6. Building frontend pipeline... ")
	settings := frontend.DefaultSettings()
	pipeline, err := frontend.New(backend.PassFactory(), sources, settings, windowWidth, windowHeight)
	if err != nil {
		return err
	}
	backend.AttachFrontend(pipeline)
	fmt.Println("OK")

	fmt.Print("7. Allocating render targets... ")
	targets, err := allocateRenderTargets(backend, windowWidth, windowHeight)
	if err != nil {
		return err
	}
	pipeline.BindTargets(targets)
	fmt.Println("OK")

	fmt.Println("8. Entering render loop (close the window to exit)...")

	pipeline.SetCameraExtrinsic(
		frontend.CameraExtrinsic{
			Position: linear.V3{0, 1.5, 4},
			Forward:  linear.V3{0, 0, -1},
			Up:       linear.V3{0, 1, 0},
			Right:    linear.V3{1, 0, 0},
		},
		frontend.CameraIntrinsic{
			FovYDegrees: 60,
			AspectRatio: float32(windowWidth) / float32(windowHeight),
			Near:        0.1,
			Far:         500,
		},
	)

	var frameCount int
	var prevJitter linear.V2
	lastReport := time.Now()
	overlay := uibridge.DrawList{}

	for win.PollEvents() {
		if win.NeedsResize() {
			w, h := win.Size()
			if w > 0 && h > 0 {
				if err := backend.Resize(uint32(w), uint32(h)); err != nil {
					return err
				}
			}
		}

		jitter := linear.JitterOffset(uint64(frameCount))
		if err := backend.RenderFrame(overlay, jitter, prevJitter, 1.0/60.0); err != nil {
			return err
		}
		prevJitter = jitter

		frameCount++
		if frameCount%60 == 0 {
			elapsed := time.Since(lastReport)
			fmt.Printf("   frame %d, %.1f fps\n", frameCount, 60/elapsed.Seconds())
			lastReport = time.Now()
		}
	}

	fmt.Println("9. Shutting down.")
	return nil
}

// allocateRenderTargets creates the double-buffered colour/motion/
// depth/history image set RenderTargetSet.Swap alternates between.
func allocateRenderTargets(backend *lumen.Backend, width, height uint32) (*frontend.RenderTargetSet, error) {
	var color, motion, depth, history [2]handle.Image

	for i := 0; i < 2; i++ {
		c, err := backend.CreateImage(lumen.ImageCreateDesc{
			Format: gpuformat.ImageRGBA16Float, Width: width, Height: height, MipCount: 1,
			Usage: uint32(vk.ImageUsageColorAttachment | vk.ImageUsageSampled),
		})
		if err != nil {
			return nil, fmt.Errorf("lumen-demo: allocating colour target %d: %w", i, err)
		}
		color[i] = c

		m, err := backend.CreateImage(lumen.ImageCreateDesc{
			Format: gpuformat.ImageRG16Float, Width: width, Height: height, MipCount: 1,
			Usage: uint32(vk.ImageUsageColorAttachment | vk.ImageUsageSampled),
		})
		if err != nil {
			return nil, fmt.Errorf("lumen-demo: allocating motion target %d: %w", i, err)
		}
		motion[i] = m

		d, err := backend.CreateImage(lumen.ImageCreateDesc{
			Format: gpuformat.ImageDepth32Float, Width: width, Height: height, MipCount: 1,
			Usage: uint32(vk.ImageUsageDepthAttachment | vk.ImageUsageSampled),
		})
		if err != nil {
			return nil, fmt.Errorf("lumen-demo: allocating depth target %d: %w", i, err)
		}
		depth[i] = d

		h, err := backend.CreateImage(lumen.ImageCreateDesc{
			Format: gpuformat.ImageRGBA16Float, Width: width, Height: height, MipCount: 1,
			Usage: uint32(vk.ImageUsageSampled | vk.ImageUsageStorage),
		})
		if err != nil {
			return nil, fmt.Errorf("lumen-demo: allocating history target %d: %w", i, err)
		}
		history[i] = h
	}

	return frontend.NewRenderTargetSet(color, motion, depth, history), nil
}
