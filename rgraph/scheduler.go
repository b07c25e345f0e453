// Package rgraph orders one frame's pass executions by their declared
// parents, synthesises barriers, and records the per-pass command
// sequence spec §4.6 describes.
package rgraph

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/layout"
	"github.com/lumenrender/lumen/passes"
)

// Execution is one pass's participation in a frame: which pass, its
// declared parents, and the resource accesses it makes (feeding layout
// barrier synthesis).
type Execution struct {
	Name    string
	Graphic handle.GraphicPass
	Compute handle.ComputePass
	IsGraphic bool

	Parents []string
	Accesses []layout.Access

	// Attachments additionally tracked for graphic passes (§4.6 step 2).
	Attachments []layout.Access
}

// DrawCommand is one queued draw: the native vertex/index buffers to
// bind, the material descriptor set, and the two push-constant
// matrices (16 floats each, row-major). Callers resolve whatever mesh
// or buffer handle they hold down to native buffers before enqueueing,
// since this package never resolves handles itself (a frontend mesh
// and an overlay draw reach their buffers through entirely different
// registries).
type DrawCommand struct {
	VertexBuffer vk.Buffer
	IndexBuffer  vk.Buffer
	IndexCount   uint32
	Index32      bool

	MaterialSet     vk.DescriptorSet
	PrimaryMatrix   [16]float32
	SecondaryMatrix [16]float32
}

// DispatchCommand is one queued compute dispatch.
type DispatchCommand struct {
	X, Y, Z uint32
}

// Order implements spec §4.6's ordering rule: repeatedly pick the
// first execution (in input order, for determinism) whose parents are
// all already emitted. Panics if the queue cannot make progress — per
// spec, a cyclic parent graph is a programmer error, not a recoverable
// one.
func Order(executions []Execution) []Execution {
	remaining := make([]Execution, len(executions))
	copy(remaining, executions)

	emitted := make(map[string]bool, len(executions))
	var ordered []Execution

	for len(remaining) > 0 {
		progressed := false
		for i, e := range remaining {
			if allParentsEmitted(e.Parents, emitted) {
				ordered = append(ordered, e)
				emitted[e.Name] = true
				remaining = append(remaining[:i], remaining[i+1:]...)
				progressed = true
				break
			}
		}
		if !progressed {
			panic(fmt.Sprintf("rgraph: cannot order %d remaining passes — cyclic or missing parent reference", len(remaining)))
		}
	}

	return ordered
}

func allParentsEmitted(parents []string, emitted map[string]bool) bool {
	for _, p := range parents {
		if !emitted[p] {
			return false
		}
	}
	return true
}

// Recorder drives one frame's pass recording against a Tracker and a
// timestamp/debug-label sink, matching the per-pass emission order of
// spec §4.6 steps 1-8.
type Recorder struct {
	cmds    *vk.Commands
	cmdBuf  vk.CommandBuffer
	tracker *layout.Tracker
	queries TimestampSink
}

// TimestampSink records per-pass GPU timestamps; see package timing.
type TimestampSink interface {
	WriteStart(cmd vk.CommandBuffer, name string)
	WriteEnd(cmd vk.CommandBuffer, name string)
}

// NewRecorder creates a frame recorder bound to a live command buffer.
func NewRecorder(cmds *vk.Commands, cmdBuf vk.CommandBuffer, tracker *layout.Tracker, queries TimestampSink) *Recorder {
	return &Recorder{cmds: cmds, cmdBuf: cmdBuf, tracker: tracker, queries: queries}
}

// RecordGraphic executes steps 1-8 of spec §4.6 for one graphic pass
// execution, draining its queued draws.
func (r *Recorder) RecordGraphic(e Execution, p *passes.GraphicPass, draws []DrawCommand) {
	// Step 1: descriptor-set update is the caller's responsibility
	// (binding writes happen before barrier synthesis so the tracker
	// sees the resources this pass will actually touch).

	accesses := append(append([]layout.Access{}, e.Accesses...), e.Attachments...)
	barriers := r.tracker.Synthesize(accesses)

	if len(barriers.Images) > 0 || len(barriers.Buffers) > 0 {
		r.cmds.CmdPipelineBarrier(r.cmdBuf, vk.StageTopOfPipe, vk.StageBottomOfPipe, barriers.Images, barriers.Buffers)
	}

	r.queries.WriteStart(r.cmdBuf, e.Name)
	r.cmds.CmdBeginDebugLabel(r.cmdBuf, e.Name)

	slog.Debug("rgraph: recording graphic pass", "name", e.Name, "draws", len(draws))

	r.cmds.CmdBeginRenderPass(r.cmdBuf, p.RenderPass, p.Framebuffer, p.Width, p.Height)
	r.cmds.CmdBindPipeline(r.cmdBuf, vk.BindPointGraphics, p.Pipeline)
	r.cmds.CmdSetViewport(r.cmdBuf, float32(p.Width), float32(p.Height))
	r.cmds.CmdSetScissor(r.cmdBuf, p.Width, p.Height)
	r.cmds.CmdBindDescriptorSets(r.cmdBuf, vk.BindPointGraphics, p.PipelineLayout, 0, []vk.DescriptorSet{p.DescriptorSet})

	var pushData [passes.PushConstantBytes]byte
	for _, d := range draws {
		r.cmds.CmdBindVertexBuffer(r.cmdBuf, d.VertexBuffer, 0)
		indexType := vk.IndexTypeUint16
		if d.Index32 {
			indexType = vk.IndexTypeUint32
		}
		r.cmds.CmdBindIndexBuffer(r.cmdBuf, d.IndexBuffer, 0, indexType)
		r.cmds.CmdBindDescriptorSets(r.cmdBuf, vk.BindPointGraphics, p.PipelineLayout, 1, []vk.DescriptorSet{d.MaterialSet})

		packMatrix(pushData[0:64], d.PrimaryMatrix)
		packMatrix(pushData[64:128], d.SecondaryMatrix)
		r.cmds.CmdPushConstants(r.cmdBuf, p.PipelineLayout, vk.StageVertex, pushData[:])

		r.cmds.CmdDrawIndexed(r.cmdBuf, d.IndexCount)
	}

	r.cmds.CmdEndRenderPass(r.cmdBuf)

	r.cmds.CmdEndDebugLabel(r.cmdBuf)
	r.queries.WriteEnd(r.cmdBuf, e.Name)
}

// RecordCompute executes the compute variant of steps 1-8.
func (r *Recorder) RecordCompute(e Execution, p *passes.ComputePass, dispatches []DispatchCommand) {
	barriers := r.tracker.Synthesize(e.Accesses)
	if len(barriers.Images) > 0 || len(barriers.Buffers) > 0 {
		r.cmds.CmdPipelineBarrier(r.cmdBuf, vk.StageTopOfPipe, vk.StageComputeShader, barriers.Images, barriers.Buffers)
	}

	r.queries.WriteStart(r.cmdBuf, e.Name)
	r.cmds.CmdBeginDebugLabel(r.cmdBuf, e.Name)

	slog.Debug("rgraph: recording compute pass", "name", e.Name, "dispatches", len(dispatches))

	r.cmds.CmdBindPipeline(r.cmdBuf, vk.BindPointCompute, p.Pipeline)
	r.cmds.CmdBindDescriptorSets(r.cmdBuf, vk.BindPointCompute, p.PipelineLayout, 0, []vk.DescriptorSet{p.DescriptorSet})

	for _, d := range dispatches {
		r.cmds.CmdDispatch(r.cmdBuf, d.X, d.Y, d.Z)
	}

	r.cmds.CmdEndDebugLabel(r.cmdBuf)
	r.queries.WriteEnd(r.cmdBuf, e.Name)
}

// packMatrix writes a row-major 4x4 matrix into a 64-byte push-constant
// slice, little-endian per float, matching the layout the vertex stage
// reads it back with.
func packMatrix(dst []byte, m [16]float32) {
	for i, v := range m {
		bits := math.Float32bits(v)
		off := i * 4
		dst[off] = byte(bits)
		dst[off+1] = byte(bits >> 8)
		dst[off+2] = byte(bits >> 16)
		dst[off+3] = byte(bits >> 24)
	}
}

// DrawQueue accumulates draw/dispatch commands by pass name between
// enqueue calls and the point the frame drains them (spec §4.6 "Draw
// submission").
type DrawQueue struct {
	draws      map[string][]DrawCommand
	dispatches map[string][]DispatchCommand
}

// NewDrawQueue creates an empty draw queue.
func NewDrawQueue() *DrawQueue {
	return &DrawQueue{draws: make(map[string][]DrawCommand), dispatches: make(map[string][]DispatchCommand)}
}

// EnqueueDraw appends a draw command for the named graphic pass.
func (q *DrawQueue) EnqueueDraw(passName string, d DrawCommand) {
	q.draws[passName] = append(q.draws[passName], d)
}

// EnqueueDispatch appends a dispatch for the named compute pass.
func (q *DrawQueue) EnqueueDispatch(passName string, d DispatchCommand) {
	q.dispatches[passName] = append(q.dispatches[passName], d)
}

// Drain returns and clears the queued draws/dispatches for passName.
func (q *DrawQueue) Drain(passName string) ([]DrawCommand, []DispatchCommand) {
	draws := q.draws[passName]
	dispatches := q.dispatches[passName]
	delete(q.draws, passName)
	delete(q.dispatches, passName)
	return draws, dispatches
}
