// Package uibridge records the debug/UI overlay pass: a single
// alpha-blended graphic pass drawing whatever 2-D draw list an external
// immediate-mode UI produced this frame (spec §OVERVIEW "UI bridge" row
// — "overlay render pass consuming an external draw list"). This
// package never builds the draw list itself; the UI library producing
// it, and anything polling its input, is an external collaborator
// (spec §1 Non-goals: "ImGui debug overlay (only its cpu draw command
// stream is injected)").
package uibridge

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/lumenrender/lumen/gpuformat"
	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/rgraph"
	"github.com/lumenrender/lumen/shaderio"
)

// PassName is the rgraph execution name this package always records
// under, so the frame recorder can order it last (spec §6.6 "Frame
// presentation": "record all passes; record the UI overlay pass;
// transition the swapchain image to present").
const PassName = "ui_overlay"

// Vertex is one overlay draw-list vertex: screen-space position,
// texture coordinate, and a packed RGBA8 colour — the layout an
// immediate-mode UI library conventionally emits.
type Vertex struct {
	X, Y       float32
	U, V       float32
	ColorRGBA8 uint32
}

// VertexStride is Vertex's packed byte size.
const VertexStride = 4 + 4 + 4 + 4 + 4

// DrawCmd is one contiguous run of indices to draw with a shared clip
// rectangle and texture, matching the draw-command granularity an
// immediate-mode UI draw list is batched into.
type DrawCmd struct {
	ClipMinX, ClipMinY, ClipMaxX, ClipMaxY float32
	Texture                                handle.Image
	IndexOffset                            uint32
	IndexCount                              uint32
}

// DrawList is one frame's injected overlay content: a flat vertex/index
// buffer plus the clipped draw commands slicing into it.
type DrawList struct {
	Vertices []Vertex
	Indices  []uint16
	Commands []DrawCmd
}

// mappedBuffer is the minimal host-visible map/memcpy/unmap wrapper
// this package needs, grounded on mesh.DynamicMesh's map/unmap shape
// but sized for the overlay's own vertex stride rather than the mesh
// package's fixed 28-byte one.
type mappedBuffer struct {
	maxBytes int
	mapFn    func() []byte
	unmapFn  func()
}

func (b *mappedBuffer) write(data []byte, label string) int {
	n := len(data)
	if n > b.maxBytes {
		slog.Warn("uibridge: draw list overflow, clamping", "buffer", label,
			"requested_bytes", n, "capacity_bytes", b.maxBytes)
		n = b.maxBytes
		data = data[:n]
	}
	dst := b.mapFn()
	copy(dst, data)
	b.unmapFn()
	return n
}

// Overlay owns the blended overlay graphic pass and the host-visible
// vertex/index buffers it rewrites every frame.
type Overlay struct {
	pass *passes.GraphicPass

	vertexBuf mappedBuffer
	indexBuf  mappedBuffer

	// nativeVertexBuffer/nativeIndexBuffer are the same buffers
	// mappedBuffer writes through, in the form a draw command binds:
	// map/unmap never exposes the underlying vk.Buffer, so the caller
	// that created them passes the native handle separately.
	nativeVertexBuffer vk.Buffer
	nativeIndexBuffer  vk.Buffer

	vertexCount int
	indexCount  int

	fontAtlas handle.Image
}

// Config describes the host-visible buffers and shader source backing
// one Overlay instance.
type Config struct {
	MaxVertices int
	MaxIndices  int

	MapVertex   func() []byte
	UnmapVertex func()
	MapIndex    func() []byte
	UnmapIndex  func()

	// VertexBuffer/IndexBuffer are the native handles backing the
	// map/unmap closures above, bound directly by Record's draw
	// commands.
	VertexBuffer vk.Buffer
	IndexBuffer  vk.Buffer

	VertexSource   shaderio.Source
	FragmentSource shaderio.Source

	ColorFormat gpuformat.Image
	FontAtlas   handle.Image
}

// New builds the overlay pass against an always-blended,
// never-depth-tested single colour attachment, loaded over whatever
// the prior passes wrote (spec §4.5: a GraphicDesc with BlendAdditive
// standing in for the conventional straight-alpha UI blend this
// module's fixed BlendMode set does not separately name).
func New(factory *passes.Factory, cfg Config, vs, fs shaderio.Compiled, width, height uint32) (*Overlay, error) {
	desc := passes.GraphicDesc{
		VertexSource:   cfg.VertexSource,
		FragmentSource: cfg.FragmentSource,
		Attachments: []passes.Attachment{
			{Format: cfg.ColorFormat, LoadOp: vk.LoadOpLoad},
		},
		Raster:     passes.RasterFill,
		Cull:       vk.CullNone,
		DepthTest:  false,
		DepthWrite: false,
		Blend:      passes.BlendAdditive,
	}

	built, err := factory.BuildGraphic(desc, vs, fs, width, height)
	if err != nil {
		return nil, fmt.Errorf("uibridge: building overlay pass: %w", err)
	}

	return &Overlay{
		pass: built,
		vertexBuf: mappedBuffer{
			maxBytes: cfg.MaxVertices * VertexStride,
			mapFn:    cfg.MapVertex,
			unmapFn:  cfg.UnmapVertex,
		},
		indexBuf: mappedBuffer{
			maxBytes: cfg.MaxIndices * 2,
			mapFn:    cfg.MapIndex,
			unmapFn:  cfg.UnmapIndex,
		},
		nativeVertexBuffer: cfg.VertexBuffer,
		nativeIndexBuffer:  cfg.IndexBuffer,
		fontAtlas:          cfg.FontAtlas,
	}, nil
}

// Pass returns the built overlay graphic pass, so the caller can
// rebuild its framebuffer on resize via passes.Factory.Rebuild.
func (o *Overlay) Pass() *passes.GraphicPass { return o.pass }

// Upload rewrites the overlay's vertex/index buffers from list,
// clamping to capacity on overflow rather than failing the frame
// (spec §7 kind 5, matching mesh.DynamicMesh.Update's clamp policy).
func (o *Overlay) Upload(list DrawList) {
	raw := make([]byte, len(list.Vertices)*VertexStride)
	for i, v := range list.Vertices {
		off := i * VertexStride
		putFloat32(raw[off:], v.X)
		putFloat32(raw[off+4:], v.Y)
		putFloat32(raw[off+8:], v.U)
		putFloat32(raw[off+12:], v.V)
		putUint32(raw[off+16:], v.ColorRGBA8)
	}
	writtenBytes := o.vertexBuf.write(raw, "vertices")
	o.vertexCount = writtenBytes / VertexStride

	idxBytes := make([]byte, len(list.Indices)*2)
	for i, v := range list.Indices {
		idxBytes[2*i] = byte(v)
		idxBytes[2*i+1] = byte(v >> 8)
	}
	writtenIdx := o.indexBuf.write(idxBytes, "indices")
	o.indexCount = writtenIdx / 2
}

// Record enqueues this frame's draw commands into q under PassName, one
// draw per clipped command, clamped to the indices Upload actually
// retained. Each draw's two push-constant matrices (spec §4.5's fixed
// 128-byte range) carry the clip rectangle packed into the vector
// fields a screen-space orthographic UI shader reads instead of a
// world transform.
//
// Every command binds the same vertex/index buffers the whole draw
// list was uploaded into — this module's draw-indexed binding has no
// first-index parameter, so DrawCmd.IndexOffset cannot be expressed
// and every command draws from the start of the buffer for
// c.IndexCount indices. A single shared draw list of one clip rect
// and one texture already produces correct output; multiple clipped
// commands need either per-command sub-buffers or a first-index
// parameter this module does not expose.
func (o *Overlay) Record(q *rgraph.DrawQueue, list DrawList, screenWidth, screenHeight float32) {
	maxIndex := uint32(o.indexCount)
	for _, c := range list.Commands {
		end := c.IndexOffset + c.IndexCount
		if end > maxIndex {
			slog.Warn("uibridge: draw command references indices beyond the uploaded buffer, dropping",
				"offset", c.IndexOffset, "count", c.IndexCount, "available", maxIndex)
			continue
		}

		q.EnqueueDraw(PassName, rgraph.DrawCommand{
			VertexBuffer:    o.nativeVertexBuffer,
			IndexBuffer:     o.nativeIndexBuffer,
			IndexCount:      c.IndexCount,
			Index32:         false,
			PrimaryMatrix:   orthoProjection(screenWidth, screenHeight),
			SecondaryMatrix: clipRectMatrix(c),
		})
	}
}

// orthoProjection builds the screen-space orthographic matrix an
// overlay vertex shader uses to map pixel-space positions to clip
// space, packed into the pass's primary push-constant matrix slot.
func orthoProjection(width, height float32) [16]float32 {
	var m [16]float32
	m[0] = 2 / width
	m[5] = -2 / height
	m[10] = 1
	m[12] = -1
	m[13] = 1
	m[15] = 1
	return m
}

// clipRectMatrix repurposes the secondary push-constant matrix as a
// plain 4-float carrier for a draw command's clip rectangle, since
// this module's fixed push-constant layout has no dedicated clip-rect
// field — the overlay fragment shader reads only its last row.
func clipRectMatrix(c DrawCmd) [16]float32 {
	var m [16]float32
	m[12] = c.ClipMinX
	m[13] = c.ClipMinY
	m[14] = c.ClipMaxX
	m[15] = c.ClipMaxY
	return m
}

func putFloat32(b []byte, v float32) {
	bits := math.Float32bits(v)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
