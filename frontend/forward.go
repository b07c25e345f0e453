package frontend

import (
	"fmt"

	"github.com/lumenrender/lumen/gpuformat"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/shaderio"
)

// CoreSources names the always-built passes that do not belong to one
// of the optional technique groups: depth pre-pass, Hi-Z pyramid,
// forward shading, and the final tonemap that writes the swapchain
// image (spec §4.8 steps 2, 3, 9, 12).
type CoreSources struct {
	DepthPrepass  shaderio.Source
	HiZPyramid    shaderio.Source
	Forward       shaderio.Source
	ForwardFragment shaderio.Source
	Tonemap       shaderio.Source
}

// HiZMaxMipLevels is the pyramid's cap spec §4.8 step 3 names ("up to
// 11 mip levels").
const HiZMaxMipLevels = 11

// CorePasses owns the always-present pipeline stages.
type CorePasses struct {
	DepthPrepass *passes.GraphicPass
	HiZPyramid   *passes.ComputePass
	Forward      *passes.GraphicPass
	Tonemap      *passes.ComputePass

	forwardSources CoreSources
	lastShading    ShadingConfig
}

// SetupCore builds the depth pre-pass, Hi-Z pyramid, forward pass, and
// tonemap.
func SetupCore(factory *passes.Factory, sources CoreSources, shading ShadingConfig, width, height uint32) (*CorePasses, error) {
	cp := &CorePasses{forwardSources: sources, lastShading: shading}

	depthVS, err := shaderio.Load(sources.DepthPrepass)
	if err != nil {
		return nil, fmt.Errorf("frontend: compiling depth pre-pass shader: %w", err)
	}
	depth, err := factory.BuildGraphic(passes.GraphicDesc{
		VertexSource:   sources.DepthPrepass,
		FragmentSource: sources.DepthPrepass,
		Attachments: []passes.Attachment{
			{Format: gpuformat.ImageRG16Float, LoadOp: vk.LoadOpClear},
		},
		DepthAttachment: &passes.Attachment{Format: gpuformat.ImageDepth32Float, LoadOp: vk.LoadOpClear},
		DepthTest:       true,
		DepthWrite:      true,
		Cull:            vk.CullBack,
	}, depthVS, depthVS, width, height)
	if err != nil {
		return nil, fmt.Errorf("frontend: building depth pre-pass: %w", err)
	}
	cp.DepthPrepass = depth

	hiZ, _, err := buildCompute(factory, sources.HiZPyramid)
	if err != nil {
		return nil, fmt.Errorf("frontend: building Hi-Z pyramid pass: %w", err)
	}
	cp.HiZPyramid = hiZ

	if err := cp.rebuildForward(factory, width, height); err != nil {
		return nil, err
	}

	tonemap, _, err := buildCompute(factory, sources.Tonemap)
	if err != nil {
		return nil, fmt.Errorf("frontend: building tonemap pass: %w", err)
	}
	cp.Tonemap = tonemap

	return cp, nil
}

// NeedsForwardRebuild reports whether cfg differs from the shading
// configuration the forward pass was last built against; a change
// triggers RebuildForward. The push-constant/binding layout is the same
// for every configuration.
func (c *CorePasses) NeedsForwardRebuild(cfg ShadingConfig) bool {
	return cfg != c.lastShading
}

// RebuildForward records cfg and rebuilds the forward pass from the same
// sources, called under device-idle like any other pass rebuild
// (spec §4.5 step 5, §7). cfg does not reach the shaders; they are
// recompiled only when their source files are newer than the cache.
func (c *CorePasses) RebuildForward(factory *passes.Factory, cfg ShadingConfig, width, height uint32) error {
	c.lastShading = cfg
	return c.rebuildForward(factory, width, height)
}

func (c *CorePasses) rebuildForward(factory *passes.Factory, width, height uint32) error {
	fvs, err := shaderio.Load(c.forwardSources.Forward)
	if err != nil {
		return fmt.Errorf("frontend: compiling forward vertex shader: %w", err)
	}
	ffs, err := shaderio.Load(c.forwardSources.ForwardFragment)
	if err != nil {
		return fmt.Errorf("frontend: compiling forward fragment shader: %w", err)
	}

	built, err := factory.BuildGraphic(passes.GraphicDesc{
		VertexSource:   c.forwardSources.Forward,
		FragmentSource: c.forwardSources.ForwardFragment,
		Attachments: []passes.Attachment{
			{Format: gpuformat.ImageRGBA16Float, LoadOp: vk.LoadOpLoad},
		},
		DepthAttachment: &passes.Attachment{Format: gpuformat.ImageDepth32Float, LoadOp: vk.LoadOpLoad},
		DepthTest:       true,
		DepthWrite:      false,
		DepthCompare:    vk.CompareEqual,
		Cull:            vk.CullBack,
	}, fvs, ffs, width, height)
	if err != nil {
		return fmt.Errorf("frontend: building forward pass: %w", err)
	}
	c.Forward = built
	return nil
}

// HiZDispatchCount returns the single-dispatch workgroup count for the
// Hi-Z pyramid pass, clamped to HiZMaxMipLevels mip levels.
func HiZDispatchCount(width, height uint32) (groupsX, groupsY, mipLevels uint32) {
	mipLevels = gpuformat.MipCount(width, height, 1)
	if mipLevels > HiZMaxMipLevels {
		mipLevels = HiZMaxMipLevels
	}
	const workgroupSize = 16
	groupsX = (width + workgroupSize - 1) / workgroupSize
	groupsY = (height + workgroupSize - 1) / workgroupSize
	return groupsX, groupsY, mipLevels
}
