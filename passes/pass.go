// Package passes describes graphic and compute passes and builds the
// underlying Vulkan-class objects (descriptor-set layouts, pipeline
// layout, render pass, framebuffer, pipeline) from a description plus
// a shader's reflection, per spec §4.5.
package passes

import (
	"fmt"

	"github.com/lumenrender/lumen/descriptor"
	"github.com/lumenrender/lumen/gpuformat"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/shaderio"
)

// PushConstantBytes is the fixed push-constant range graphic passes
// reserve for {primaryMatrix, secondaryMatrix}, per spec §4.5 step 3.
const PushConstantBytes = 128

// Kind distinguishes a Pass's concrete type without resorting to a
// type switch on every call site.
type Kind int

const (
	KindGraphic Kind = iota
	KindCompute
)

// Pass is the sum type `GraphicPass | ComputePass` (spec §3): an
// interface with an unexported marker method so no type outside this
// package can implement it, standing in for a tagged union.
type Pass interface {
	Kind() Kind
	passMarker()
}

// Attachment describes one render-pass attachment: its format and how
// its contents are loaded at pass start.
type Attachment struct {
	Format gpuformat.Image
	LoadOp vk.AttachmentLoadOp
}

// RasterMode selects the rasterizer's primitive and fill behaviour.
type RasterMode int

const (
	RasterFill RasterMode = iota
	RasterLine
	RasterPoint
)

// GraphicDesc is a graphic pass's static description: shader sources,
// attachments, and fixed-function state (spec §4.5 steps 4-6).
type GraphicDesc struct {
	VertexSource   shaderio.Source
	FragmentSource shaderio.Source
	Attachments    []Attachment
	DepthAttachment *Attachment

	Raster       RasterMode
	Cull         vk.CullMode
	DepthClamp   bool
	DepthTest    bool
	DepthWrite   bool
	DepthCompare vk.CompareOp
	Blend        BlendMode
}

// BlendMode selects the colour-attachment blend configuration.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAdditive
)

// GraphicPass is a built graphic pass: the Vulkan-class objects derived
// from a GraphicDesc plus the reflected shader data driving them.
type GraphicPass struct {
	Desc GraphicDesc

	SetLayout      vk.DescriptorSetLayout
	MaterialLayout vk.DescriptorSetLayout
	PipelineLayout vk.PipelineLayout
	RenderPass     vk.RenderPass
	Framebuffer    vk.Framebuffer
	Pipeline       vk.Pipeline
	DescriptorSet  vk.DescriptorSet

	VertexReflection   shaderio.Reflection
	FragmentReflection shaderio.Reflection

	Width, Height uint32
}

func (*GraphicPass) Kind() Kind    { return KindGraphic }
func (*GraphicPass) passMarker()   {}

// ComputeDesc is a compute pass's static description.
type ComputeDesc struct {
	Source shaderio.Source
}

// ComputePass is a built compute pass.
type ComputePass struct {
	Desc ComputeDesc

	SetLayout      vk.DescriptorSetLayout
	PipelineLayout vk.PipelineLayout
	Pipeline       vk.Pipeline
	DescriptorSet  vk.DescriptorSet

	Reflection shaderio.Reflection
}

func (*ComputePass) Kind() Kind  { return KindCompute }
func (*ComputePass) passMarker() {}

// Factory builds Pass objects from descriptions, allocating descriptor
// sets through a shared descriptor.Manager (spec §4.5).
type Factory struct {
	device vk.Device
	cmds   *vk.Commands
	descs  *descriptor.Manager
}

// NewFactory creates a pass factory bound to a device and descriptor
// manager.
func NewFactory(device vk.Device, cmds *vk.Commands, descs *descriptor.Manager) *Factory {
	return &Factory{device: device, cmds: cmds, descs: descs}
}

// BuildGraphic runs the full seven-step graphic pass factory sequence
// of spec §4.5 against a loaded vertex/fragment shader pair.
func (f *Factory) BuildGraphic(desc GraphicDesc, vs, fs shaderio.Compiled, width, height uint32) (*GraphicPass, error) {
	p := &GraphicPass{
		Desc:               desc,
		VertexReflection:   vs.Reflection,
		FragmentReflection: fs.Reflection,
		Width:              width,
		Height:             height,
	}

	// Step 1: descriptor-set layout from the pass set (bindings visible
	// in all stages the reflection touches).
	setLayout, err := f.buildSetLayout(mergeBindings(vs.Reflection.Bindings, fs.Reflection.Bindings))
	if err != nil {
		return nil, fmt.Errorf("passes: building pass set layout: %w", err)
	}
	p.SetLayout = setLayout

	// Step 2: material-set layout from the fragment shader's set-2 mask.
	materialLayout, err := f.buildMaterialLayout(fs.Reflection.MaterialMask)
	if err != nil {
		return nil, fmt.Errorf("passes: building material set layout: %w", err)
	}
	p.MaterialLayout = materialLayout

	// Step 3: pipeline layout with the push-constant range.
	layout, result := f.cmds.CreatePipelineLayout(f.device, vk.PipelineLayoutCreateInfo{
		SetLayouts:         []vk.DescriptorSetLayout{setLayout, materialLayout},
		PushConstantBytes:  PushConstantBytes,
		PushConstantStages: vk.StageVertex,
	})
	if !result.OK() {
		return nil, fmt.Errorf("passes: vkCreatePipelineLayout failed: result %d", result)
	}
	p.PipelineLayout = layout

	// Step 4: render pass object from attachments.
	renderPass, err := f.buildRenderPass(desc)
	if err != nil {
		return nil, err
	}
	p.RenderPass = renderPass

	// Step 5: framebuffer with cached clear values (handled by caller,
	// which owns the actual image views). Framebuffer build deferred to
	// Rebuild so resize can recreate it without rebuilding the pipeline.

	// Step 6: vertex input + fixed-function state, built into the
	// pipeline directly.
	vsModule, result := f.cmds.CreateShaderModule(f.device, vs.SPIRV)
	if !result.OK() {
		return nil, fmt.Errorf("passes: vkCreateShaderModule (vertex) failed: result %d", result)
	}
	fsModule, result := f.cmds.CreateShaderModule(f.device, fs.SPIRV)
	if !result.OK() {
		return nil, fmt.Errorf("passes: vkCreateShaderModule (fragment) failed: result %d", result)
	}

	stride, attrs := vertexLayout(vs.Reflection.VertexMask)

	pipeline, result := f.cmds.CreateGraphicsPipeline(f.device, vk.GraphicsPipelineCreateInfo{
		VertexShader:   vsModule,
		FragmentShader: fsModule,
		Layout:         layout,
		RenderPass:     renderPass,
		VertexStride:   stride,
		VertexAttrs:    attrs,
		Cull:           desc.Cull,
		Polygon:        rasterModeToPolygon(desc.Raster),
		DepthTest:      desc.DepthTest,
		DepthWrite:     desc.DepthWrite,
		DepthCompare:   desc.DepthCompare,
	})
	if !result.OK() {
		return nil, fmt.Errorf("passes: vkCreateGraphicsPipelines failed: result %d", result)
	}
	p.Pipeline = pipeline

	// Step 7: allocate the per-pass descriptor set.
	set, err := f.descs.Allocate(setLayout, bindingCounts(vs.Reflection.Bindings, fs.Reflection.Bindings))
	if err != nil {
		return nil, fmt.Errorf("passes: allocating pass descriptor set: %w", err)
	}
	p.DescriptorSet = set

	return p, nil
}

// BuildCompute builds a compute pass from a single compiled shader.
func (f *Factory) BuildCompute(desc ComputeDesc, cs shaderio.Compiled) (*ComputePass, error) {
	p := &ComputePass{Desc: desc, Reflection: cs.Reflection}

	setLayout, err := f.buildSetLayout(cs.Reflection.Bindings)
	if err != nil {
		return nil, fmt.Errorf("passes: building compute set layout: %w", err)
	}
	p.SetLayout = setLayout

	layout, result := f.cmds.CreatePipelineLayout(f.device, vk.PipelineLayoutCreateInfo{
		SetLayouts: []vk.DescriptorSetLayout{setLayout},
	})
	if !result.OK() {
		return nil, fmt.Errorf("passes: vkCreatePipelineLayout failed: result %d", result)
	}
	p.PipelineLayout = layout

	module, result := f.cmds.CreateShaderModule(f.device, cs.SPIRV)
	if !result.OK() {
		return nil, fmt.Errorf("passes: vkCreateShaderModule failed: result %d", result)
	}

	pipeline, result := f.cmds.CreateComputePipeline(f.device, vk.ComputePipelineCreateInfo{
		Shader: module,
		Layout: layout,
	})
	if !result.OK() {
		return nil, fmt.Errorf("passes: vkCreateComputePipelines failed: result %d", result)
	}
	p.Pipeline = pipeline

	set, err := f.descs.Allocate(setLayout, bindingCounts(cs.Reflection.Bindings))
	if err != nil {
		return nil, fmt.Errorf("passes: allocating compute descriptor set: %w", err)
	}
	p.DescriptorSet = set

	return p, nil
}

// Rebuild recreates a graphic pass's framebuffer for a new size —
// called on resize, under device-idle (spec §4.5 step 5, §7).
func (f *Factory) Rebuild(p *GraphicPass, attachmentViews []vk.ImageView, width, height uint32) error {
	fb, result := f.cmds.CreateFramebuffer(f.device, vk.FramebufferCreateInfo{
		RenderPass:  p.RenderPass,
		Attachments: attachmentViews,
		Width:       width,
		Height:      height,
	})
	if !result.OK() {
		return fmt.Errorf("passes: vkCreateFramebuffer failed: result %d", result)
	}
	p.Framebuffer = fb
	p.Width, p.Height = width, height
	return nil
}

func (f *Factory) buildRenderPass(desc GraphicDesc) (vk.RenderPass, error) {
	info := vk.RenderPassCreateInfo{}
	for _, a := range desc.Attachments {
		info.ColorFormats = append(info.ColorFormats, uint32(a.Format))
	}
	if desc.DepthAttachment != nil {
		info.HasDepth = true
		info.DepthFormat = uint32(desc.DepthAttachment.Format)
	}
	rp, result := f.cmds.CreateRenderPass(f.device, info)
	if !result.OK() {
		return 0, fmt.Errorf("passes: vkCreateRenderPass failed: result %d", result)
	}
	return rp, nil
}

func (f *Factory) buildSetLayout(bindings []shaderio.SetBinding) (vk.DescriptorSetLayout, error) {
	layoutBindings := make([]vk.DescriptorSetLayoutBinding, 0, len(bindings))
	for _, b := range bindings {
		layoutBindings = append(layoutBindings, vk.DescriptorSetLayoutBinding{
			Binding: b.Binding,
			Type:    descriptorTypeForBinding(b.Kind),
			Count:   1,
			// Reflection doesn't track which stage declared a binding,
			// so the pass set is visible to every stage that could hold
			// one; over-broad visibility costs nothing at bind time.
			Stages: vk.StageVertex | vk.StageFragment | vk.StageCompute,
		})
	}
	layout, result := f.cmds.CreateDescriptorSetLayout(f.device, layoutBindings)
	if !result.OK() {
		return 0, fmt.Errorf("passes: vkCreateDescriptorSetLayout failed: result %d", result)
	}
	return layout, nil
}

// buildMaterialLayout builds the fixed three-texture material set (spec
// §4.4): albedo, normal, and specular, each a sampled image plus its
// own sampler binding. mask records which maps a material actually
// authored but never changes the set's shape, since descriptor.Counts
// budgets for it up front; WriteMaterialSet writes all three bindings.
func (f *Factory) buildMaterialLayout(mask shaderio.MaterialFlag) (vk.DescriptorSetLayout, error) {
	bindings := []vk.DescriptorSetLayoutBinding{
		{Binding: 0, Type: vk.DescriptorSampledImage, Count: 1, Stages: vk.StageFragment},
		{Binding: 1, Type: vk.DescriptorSampledImage, Count: 1, Stages: vk.StageFragment},
		{Binding: 2, Type: vk.DescriptorSampledImage, Count: 1, Stages: vk.StageFragment},
		{Binding: 3, Type: vk.DescriptorSampler, Count: 1, Stages: vk.StageFragment},
		{Binding: 4, Type: vk.DescriptorSampler, Count: 1, Stages: vk.StageFragment},
		{Binding: 5, Type: vk.DescriptorSampler, Count: 1, Stages: vk.StageFragment},
	}
	_ = mask
	layout, result := f.cmds.CreateDescriptorSetLayout(f.device, bindings)
	if !result.OK() {
		return 0, fmt.Errorf("passes: vkCreateDescriptorSetLayout (material) failed: result %d", result)
	}
	return layout, nil
}

func descriptorTypeForBinding(k shaderio.BindingKind) vk.DescriptorType {
	switch k {
	case shaderio.BindingStorageBuffer:
		return vk.DescriptorStorageBuffer
	case shaderio.BindingSampledTexture:
		return vk.DescriptorSampledImage
	case shaderio.BindingStorageTexture:
		return vk.DescriptorStorageImage
	case shaderio.BindingSampler:
		return vk.DescriptorSampler
	default:
		return vk.DescriptorUniformBuffer
	}
}

// WriteMaterialSet binds a mesh's three material textures and their
// samplers into its material descriptor set (spec §4.4), the step
// CreateMesh defers to its caller since it only has the material's
// image/sampler handles, not their native views.
func (f *Factory) WriteMaterialSet(set vk.DescriptorSet, albedo, normal, specular vk.ImageView, sampler vk.Sampler) {
	f.cmds.UpdateDescriptorSets(f.device, set, []vk.WriteDescriptorSet{
		{Binding: 0, Type: vk.DescriptorSampledImage, ImageView: albedo, ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal},
		{Binding: 1, Type: vk.DescriptorSampledImage, ImageView: normal, ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal},
		{Binding: 2, Type: vk.DescriptorSampledImage, ImageView: specular, ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal},
		{Binding: 3, Type: vk.DescriptorSampler, Sampler: sampler},
		{Binding: 4, Type: vk.DescriptorSampler, Sampler: sampler},
		{Binding: 5, Type: vk.DescriptorSampler, Sampler: sampler},
	})
}

// WriteBufferBinding writes one uniform/storage-buffer binding into a
// pass's set-1 descriptor set (spec §4.4's "pass" set) — the mechanism
// every per-frame global and per-pass resource ultimately binds
// through before a draw or dispatch can read it.
func (f *Factory) WriteBufferBinding(set vk.DescriptorSet, binding uint32, kind vk.DescriptorType, buffer vk.Buffer, size uint64) {
	f.cmds.UpdateDescriptorSets(f.device, set, []vk.WriteDescriptorSet{
		{Binding: binding, Type: kind, Buffer: buffer, Range: size},
	})
}

// WriteImageBinding writes one sampled/storage-image binding into a
// pass's set-1 descriptor set.
func (f *Factory) WriteImageBinding(set vk.DescriptorSet, binding uint32, kind vk.DescriptorType, view vk.ImageView, layout vk.ImageLayout) {
	f.cmds.UpdateDescriptorSets(f.device, set, []vk.WriteDescriptorSet{
		{Binding: binding, Type: kind, ImageView: view, ImageLayout: layout},
	})
}

func mergeBindings(sets ...[]shaderio.SetBinding) []shaderio.SetBinding {
	seen := make(map[uint32]shaderio.SetBinding)
	for _, bindings := range sets {
		for _, b := range bindings {
			seen[b.Binding] = b
		}
	}
	merged := make([]shaderio.SetBinding, 0, len(seen))
	for _, b := range seen {
		merged = append(merged, b)
	}
	return merged
}

func bindingCounts(sets ...[]shaderio.SetBinding) descriptor.Counts {
	var c descriptor.Counts
	for _, bindings := range sets {
		for _, b := range bindings {
			switch b.Kind {
			case shaderio.BindingUniformBuffer:
				c.UniformBuffers++
			case shaderio.BindingStorageBuffer:
				c.StorageBuffers++
			case shaderio.BindingSampledTexture:
				c.SampledImages++
			case shaderio.BindingStorageTexture:
				c.StorageImages++
			case shaderio.BindingSampler:
				c.Samplers++
			}
		}
	}
	return c
}

func rasterModeToPolygon(m RasterMode) vk.PolygonMode {
	switch m {
	case RasterLine:
		return vk.PolygonLine
	case RasterPoint:
		return vk.PolygonPoint
	default:
		return vk.PolygonFill
	}
}

// vertexLayout derives the vertex-input stride and attribute list from
// the reflected mask, using the fixed formats spec §4.5 step 6 names:
// position as vec3 f32, uv as vec2 f16, and the remaining three
// attributes as normalised 10_10_10_2.
func vertexLayout(mask shaderio.VertexMask) (uint32, []vk.VertexAttribute) {
	var attrs []vk.VertexAttribute
	var offset uint32

	add := func(attr shaderio.VertexAttr, format gpuformat.Vertex) {
		if !mask.Has(attr) {
			return
		}
		attrs = append(attrs, vk.VertexAttribute{
			Location: uint32(attr),
			Offset:   offset,
			Format:   uint32(format),
		})
		offset += format.Size()
	}

	add(shaderio.AttrPosition, gpuformat.VertexFloat32x3)
	add(shaderio.AttrUV, gpuformat.VertexFloat16x2)
	add(shaderio.AttrNormal, gpuformat.VertexSnorm1010102)
	add(shaderio.AttrTangent, gpuformat.VertexSnorm1010102)
	add(shaderio.AttrBitangent, gpuformat.VertexSnorm1010102)

	return offset, attrs
}
