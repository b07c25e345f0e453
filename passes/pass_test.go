package passes

import (
	"testing"

	"github.com/lumenrender/lumen/descriptor"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/shaderio"
)

func TestVertexLayoutFullMaskStride(t *testing.T) {
	mask := shaderio.VertexMask(0)
	mask |= 1 << uint(shaderio.AttrPosition)
	mask |= 1 << uint(shaderio.AttrUV)
	mask |= 1 << uint(shaderio.AttrNormal)
	mask |= 1 << uint(shaderio.AttrTangent)
	mask |= 1 << uint(shaderio.AttrBitangent)

	stride, attrs := vertexLayout(mask)

	// position(12) + uv(4) + normal(4) + tangent(4) + bitangent(4) = 28.
	if stride != 28 {
		t.Fatalf("stride = %d, want 28", stride)
	}
	if len(attrs) != 5 {
		t.Fatalf("len(attrs) = %d, want 5", len(attrs))
	}
	if attrs[0].Offset != 0 {
		t.Fatalf("position offset = %d, want 0", attrs[0].Offset)
	}
	if attrs[1].Offset != 12 {
		t.Fatalf("uv offset = %d, want 12", attrs[1].Offset)
	}
	if attrs[2].Offset != 16 {
		t.Fatalf("normal offset = %d, want 16", attrs[2].Offset)
	}
}

func TestVertexLayoutPartialMaskSkipsUnusedAttrs(t *testing.T) {
	mask := shaderio.VertexMask(0)
	mask |= 1 << uint(shaderio.AttrPosition)
	mask |= 1 << uint(shaderio.AttrNormal)

	stride, attrs := vertexLayout(mask)
	if len(attrs) != 2 {
		t.Fatalf("len(attrs) = %d, want 2", len(attrs))
	}
	if stride != 16 {
		t.Fatalf("stride = %d, want 16", stride)
	}
}

func TestBindingCountsTallyByKind(t *testing.T) {
	bindings := []shaderio.SetBinding{
		{Kind: shaderio.BindingUniformBuffer},
		{Kind: shaderio.BindingUniformBuffer},
		{Kind: shaderio.BindingSampledTexture},
		{Kind: shaderio.BindingSampler},
	}
	c := bindingCounts(bindings)
	if c.UniformBuffers != 2 || c.SampledImages != 1 || c.Samplers != 1 {
		t.Fatalf("counts = %+v", c)
	}
}

func TestMergeBindingsDedupesByBindingNumber(t *testing.T) {
	vs := []shaderio.SetBinding{{Binding: 0, Kind: shaderio.BindingUniformBuffer}}
	fs := []shaderio.SetBinding{{Binding: 0, Kind: shaderio.BindingUniformBuffer}, {Binding: 1, Kind: shaderio.BindingSampledTexture}}

	merged := mergeBindings(vs, fs)
	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
}

func fakeFactoryCommands() *vk.Commands {
	return &vk.Commands{
		CreatePipelineLayout: func(vk.Device, vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result) {
			return 1, vk.Success
		},
		CreateRenderPass: func(vk.Device, vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result) {
			return 1, vk.Success
		},
		CreateFramebuffer: func(vk.Device, vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result) {
			return 1, vk.Success
		},
		CreateShaderModule: func(vk.Device, []byte) (vk.ShaderModule, vk.Result) {
			return 1, vk.Success
		},
		CreateGraphicsPipeline: func(vk.Device, vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result) {
			return 1, vk.Success
		},
		CreateComputePipeline: func(vk.Device, vk.ComputePipelineCreateInfo) (vk.Pipeline, vk.Result) {
			return 1, vk.Success
		},
		CreateDescriptorPool: func(vk.Device, []vk.DescriptorPoolSize, uint32) (vk.DescriptorPool, vk.Result) {
			return 1, vk.Success
		},
		AllocateDescriptorSet: func(vk.Device, vk.DescriptorPool, vk.DescriptorSetLayout) (vk.DescriptorSet, vk.Result) {
			return 1, vk.Success
		},
		CreateDescriptorSetLayout: func(vk.Device, []vk.DescriptorSetLayoutBinding) (vk.DescriptorSetLayout, vk.Result) {
			return 1, vk.Success
		},
	}
}

func TestBuildGraphicRunsAllSevenSteps(t *testing.T) {
	cmds := fakeFactoryCommands()
	descs := descriptor.NewManager(1, cmds, descriptor.Counts{})
	factory := NewFactory(1, cmds, descs)

	vs := shaderio.Compiled{SPIRV: []byte{0, 0, 0, 0}}
	fs := shaderio.Compiled{SPIRV: []byte{0, 0, 0, 0}}

	pass, err := factory.BuildGraphic(GraphicDesc{
		Attachments: []Attachment{{}},
	}, vs, fs, 800, 600)
	if err != nil {
		t.Fatalf("BuildGraphic: %v", err)
	}
	if pass.RenderPass == 0 || pass.Pipeline == 0 || pass.PipelineLayout == 0 || pass.DescriptorSet == 0 {
		t.Fatalf("pass missing an object: %+v", pass)
	}
}

func TestBuildComputeAllocatesDescriptorSet(t *testing.T) {
	cmds := fakeFactoryCommands()
	descs := descriptor.NewManager(1, cmds, descriptor.Counts{})
	factory := NewFactory(1, cmds, descs)

	cs := shaderio.Compiled{SPIRV: []byte{0, 0, 0, 0}}
	pass, err := factory.BuildCompute(ComputeDesc{}, cs)
	if err != nil {
		t.Fatalf("BuildCompute: %v", err)
	}
	if pass.DescriptorSet == 0 {
		t.Fatalf("expected a non-zero descriptor set")
	}
}
