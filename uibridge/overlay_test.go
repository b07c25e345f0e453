package uibridge

import (
	"testing"

	"github.com/lumenrender/lumen/descriptor"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/rgraph"
	"github.com/lumenrender/lumen/shaderio"
)

func fakeCommands() *vk.Commands {
	next := vk.Handle(1)
	alloc := func() uint64 {
		h := uint64(next)
		next++
		return h
	}

	return &vk.Commands{
		CreateDescriptorPool: func(vk.Device, []vk.DescriptorPoolSize, uint32) (vk.DescriptorPool, vk.Result) {
			return vk.DescriptorPool(alloc()), vk.Success
		},
		AllocateDescriptorSet: func(vk.Device, vk.DescriptorPool, vk.DescriptorSetLayout) (vk.DescriptorSet, vk.Result) {
			return vk.DescriptorSet(alloc()), vk.Success
		},
		CreatePipelineLayout: func(vk.Device, vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result) {
			return vk.PipelineLayout(alloc()), vk.Success
		},
		CreateRenderPass: func(vk.Device, vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result) {
			return vk.RenderPass(alloc()), vk.Success
		},
		CreateShaderModule: func(vk.Device, []byte) (vk.ShaderModule, vk.Result) {
			return vk.ShaderModule(alloc()), vk.Success
		},
		CreateGraphicsPipeline: func(vk.Device, vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result) {
			return vk.Pipeline(alloc()), vk.Success
		},
		CreateDescriptorSetLayout: func(vk.Device, []vk.DescriptorSetLayoutBinding) (vk.DescriptorSetLayout, vk.Result) {
			return vk.DescriptorSetLayout(alloc()), vk.Success
		},
	}
}

func newTestOverlay(t *testing.T) (*Overlay, []byte, []byte) {
	t.Helper()
	cmds := fakeCommands()
	factory := passes.NewFactory(1, cmds, descriptor.NewManager(1, cmds, descriptor.Counts{}))

	vertexMem := make([]byte, 64*VertexStride)
	indexMem := make([]byte, 64*2)

	cfg := Config{
		MaxVertices: 64,
		MaxIndices:  64,
		MapVertex:   func() []byte { return vertexMem },
		UnmapVertex: func() {},
		MapIndex:    func() []byte { return indexMem },
		UnmapIndex:  func() {},
	}

	o, err := New(factory, cfg, shaderio.Compiled{}, shaderio.Compiled{}, 1920, 1080)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o, vertexMem, indexMem
}

func TestUploadWritesVertexAndIndexBytes(t *testing.T) {
	o, vertexMem, indexMem := newTestOverlay(t)

	list := DrawList{
		Vertices: []Vertex{
			{X: 1, Y: 2, U: 0, V: 0, ColorRGBA8: 0xFFFFFFFF},
			{X: 3, Y: 4, U: 1, V: 1, ColorRGBA8: 0x80808080},
		},
		Indices: []uint16{0, 1, 0},
	}

	o.Upload(list)

	if o.vertexCount != 2 {
		t.Fatalf("vertexCount = %d, want 2", o.vertexCount)
	}
	if o.indexCount != 3 {
		t.Fatalf("indexCount = %d, want 3", o.indexCount)
	}
	if indexMem[0] != 0 || indexMem[2] != 1 {
		t.Fatalf("index bytes = %v, want little-endian 0,1,0", indexMem[:6])
	}
	_ = vertexMem
}

func TestUploadClampsOnVertexOverflow(t *testing.T) {
	o, _, _ := newTestOverlay(t)

	verts := make([]Vertex, 100)
	o.Upload(DrawList{Vertices: verts})

	if o.vertexCount != 64 {
		t.Fatalf("vertexCount = %d, want clamped to capacity 64", o.vertexCount)
	}
}

func TestRecordDropsCommandsReferencingUnuploadedIndices(t *testing.T) {
	o, _, _ := newTestOverlay(t)
	o.Upload(DrawList{Indices: []uint16{0, 1, 2}})

	q := rgraph.NewDrawQueue()
	list := DrawList{
		Commands: []DrawCmd{
			{IndexOffset: 0, IndexCount: 3},
			{IndexOffset: 2, IndexCount: 5},
		},
	}
	o.Record(q, list, 1920, 1080)

	draws, _ := q.Drain(PassName)
	if len(draws) != 1 {
		t.Fatalf("recorded draws = %d, want 1 (second command dropped)", len(draws))
	}
}
