package rgraph

import (
	"testing"

	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/layout"
	"github.com/lumenrender/lumen/passes"
)

type callCounts struct {
	beginPass, endPass, bindPipeline, bindSets, draws, dispatches, pushConstants int
}

func fakeRecorderCommands(c *callCounts) *vk.Commands {
	return &vk.Commands{
		CmdBeginRenderPass:    func(vk.CommandBuffer, vk.RenderPass, vk.Framebuffer, uint32, uint32) { c.beginPass++ },
		CmdEndRenderPass:      func(vk.CommandBuffer) { c.endPass++ },
		CmdBindPipeline:       func(vk.CommandBuffer, vk.PipelineBindPoint, vk.Pipeline) { c.bindPipeline++ },
		CmdSetViewport:        func(vk.CommandBuffer, float32, float32) {},
		CmdSetScissor:         func(vk.CommandBuffer, uint32, uint32) {},
		CmdBindVertexBuffer:   func(vk.CommandBuffer, vk.Buffer, uint64) {},
		CmdBindIndexBuffer:    func(vk.CommandBuffer, vk.Buffer, uint64, vk.IndexType) {},
		CmdBindDescriptorSets: func(vk.CommandBuffer, vk.PipelineBindPoint, vk.PipelineLayout, uint32, []vk.DescriptorSet) { c.bindSets++ },
		CmdPushConstants:      func(vk.CommandBuffer, vk.PipelineLayout, vk.ShaderStage, []byte) { c.pushConstants++ },
		CmdDrawIndexed:        func(vk.CommandBuffer, uint32) { c.draws++ },
		CmdDispatch:           func(vk.CommandBuffer, uint32, uint32, uint32) { c.dispatches++ },
		CmdPipelineBarrier:    func(vk.CommandBuffer, vk.PipelineStageFlags, vk.PipelineStageFlags, []vk.ImageMemoryBarrier, []vk.BufferMemoryBarrier) {},
		CmdBeginDebugLabel:    func(vk.CommandBuffer, string) {},
		CmdEndDebugLabel:      func(vk.CommandBuffer) {},
	}
}

type noopTimestampSink struct{}

func (noopTimestampSink) WriteStart(vk.CommandBuffer, string) {}
func (noopTimestampSink) WriteEnd(vk.CommandBuffer, string)   {}

func TestOrderRespectsDeclaredParents(t *testing.T) {
	execs := []Execution{
		{Name: "shadow", Parents: nil},
		{Name: "forward", Parents: []string{"depth", "shadow"}},
		{Name: "depth", Parents: nil},
		{Name: "taa", Parents: []string{"forward"}},
	}

	ordered := Order(execs)
	if len(ordered) != 4 {
		t.Fatalf("len(ordered) = %d, want 4", len(ordered))
	}

	pos := make(map[string]int)
	for i, e := range ordered {
		pos[e.Name] = i
	}

	if pos["forward"] < pos["depth"] || pos["forward"] < pos["shadow"] {
		t.Fatalf("forward must come after both its parents: order = %+v", pos)
	}
	if pos["taa"] < pos["forward"] {
		t.Fatalf("taa must come after forward: order = %+v", pos)
	}
}

func TestOrderIsDeterministicForIndependentPasses(t *testing.T) {
	execs := []Execution{
		{Name: "a"},
		{Name: "b"},
		{Name: "c"},
	}
	ordered := Order(execs)
	if ordered[0].Name != "a" || ordered[1].Name != "b" || ordered[2].Name != "c" {
		t.Fatalf("expected stable input order for independent passes, got %+v", ordered)
	}
}

func TestOrderPanicsOnCyclicParents(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a panic on a cyclic parent graph")
		}
	}()

	execs := []Execution{
		{Name: "a", Parents: []string{"b"}},
		{Name: "b", Parents: []string{"a"}},
	}
	Order(execs)
}

func TestDrawQueueDrainClearsEntries(t *testing.T) {
	q := NewDrawQueue()
	q.EnqueueDraw("forward", DrawCommand{})
	q.EnqueueDraw("forward", DrawCommand{})

	draws, dispatches := q.Drain("forward")
	if len(draws) != 2 {
		t.Fatalf("len(draws) = %d, want 2", len(draws))
	}
	if len(dispatches) != 0 {
		t.Fatalf("len(dispatches) = %d, want 0", len(dispatches))
	}

	draws2, _ := q.Drain("forward")
	if len(draws2) != 0 {
		t.Fatalf("second drain should be empty, got %d", len(draws2))
	}
}

func TestRecordGraphicBindsAndDrawsEachCommand(t *testing.T) {
	var c callCounts
	cmds := fakeRecorderCommands(&c)
	tracker := layout.NewTracker()

	p := &passes.GraphicPass{
		PipelineLayout: vk.PipelineLayout(1),
		RenderPass:     vk.RenderPass(1),
		Framebuffer:    vk.Framebuffer(1),
		Pipeline:       vk.Pipeline(1),
		DescriptorSet:  vk.DescriptorSet(1),
		Width:          800,
		Height:         600,
	}

	rec := NewRecorder(cmds, vk.CommandBuffer(1), tracker, noopTimestampSink{})
	draws := []DrawCommand{
		{VertexBuffer: vk.Buffer(1), IndexBuffer: vk.Buffer(2), IndexCount: 6, MaterialSet: vk.DescriptorSet(2)},
		{VertexBuffer: vk.Buffer(3), IndexBuffer: vk.Buffer(4), IndexCount: 3, MaterialSet: vk.DescriptorSet(3)},
	}
	rec.RecordGraphic(Execution{Name: "forward", IsGraphic: true}, p, draws)

	if c.beginPass != 1 || c.endPass != 1 {
		t.Fatalf("begin/end render pass = %d/%d, want 1/1", c.beginPass, c.endPass)
	}
	if c.bindPipeline != 1 {
		t.Fatalf("bindPipeline = %d, want 1", c.bindPipeline)
	}
	// one bind for the pass-level set plus one per-draw material set bind.
	if c.bindSets != 1+len(draws) {
		t.Fatalf("bindSets = %d, want %d", c.bindSets, 1+len(draws))
	}
	if c.draws != len(draws) {
		t.Fatalf("CmdDrawIndexed calls = %d, want %d", c.draws, len(draws))
	}
	if c.pushConstants != len(draws) {
		t.Fatalf("CmdPushConstants calls = %d, want %d", c.pushConstants, len(draws))
	}
}

func TestRecordGraphicWithNoDrawsStillBeginsAndEndsThePass(t *testing.T) {
	var c callCounts
	cmds := fakeRecorderCommands(&c)
	tracker := layout.NewTracker()
	p := &passes.GraphicPass{Width: 64, Height: 64}

	rec := NewRecorder(cmds, vk.CommandBuffer(1), tracker, noopTimestampSink{})
	rec.RecordGraphic(Execution{Name: "empty", IsGraphic: true}, p, nil)

	if c.beginPass != 1 || c.endPass != 1 {
		t.Fatalf("begin/end render pass = %d/%d, want 1/1", c.beginPass, c.endPass)
	}
	if c.draws != 0 {
		t.Fatalf("CmdDrawIndexed calls = %d, want 0", c.draws)
	}
}

func TestRecordComputeBindsAndDispatchesEachCommand(t *testing.T) {
	var c callCounts
	cmds := fakeRecorderCommands(&c)
	tracker := layout.NewTracker()

	p := &passes.ComputePass{
		PipelineLayout: vk.PipelineLayout(1),
		Pipeline:       vk.Pipeline(1),
		DescriptorSet:  vk.DescriptorSet(1),
	}

	rec := NewRecorder(cmds, vk.CommandBuffer(1), tracker, noopTimestampSink{})
	dispatches := []DispatchCommand{{X: 4, Y: 4, Z: 1}, {X: 2, Y: 2, Z: 1}}
	rec.RecordCompute(Execution{Name: "hiz"}, p, dispatches)

	if c.bindPipeline != 1 {
		t.Fatalf("bindPipeline = %d, want 1", c.bindPipeline)
	}
	if c.bindSets != 1 {
		t.Fatalf("bindSets = %d, want 1 (single compute set)", c.bindSets)
	}
	if c.dispatches != len(dispatches) {
		t.Fatalf("CmdDispatch calls = %d, want %d", c.dispatches, len(dispatches))
	}
}
