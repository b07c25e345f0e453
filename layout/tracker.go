// Package layout tracks the per-mip Vulkan-class image layout and
// access state of every image the backend knows about, and the
// last-writer state of every buffer, synthesising the barriers the
// render-graph scheduler needs before each pass executes (spec §4.3).
package layout

import (
	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
)

// Binding names the kind of resource access a pass declares against an
// image, driving the required-layout table in spec §4.3.
type Binding int

const (
	BindingSampledImage Binding = iota
	BindingStorageImage
	BindingColorAttachment
	BindingDepthAttachment
)

// requiredLayout and requiredAccess implement the §4.3 table.
func requiredLayout(b Binding) vk.ImageLayout {
	switch b {
	case BindingSampledImage:
		return vk.ImageLayoutShaderReadOnlyOptimal
	case BindingStorageImage:
		return vk.ImageLayoutGeneral
	case BindingColorAttachment:
		return vk.ImageLayoutColorAttachmentOptimal
	case BindingDepthAttachment:
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	default:
		panic("layout: unknown binding kind")
	}
}

func requiredAccess(b Binding) vk.AccessFlags {
	switch b {
	case BindingSampledImage:
		return vk.AccessShaderRead
	case BindingStorageImage:
		return vk.AccessShaderRead | vk.AccessShaderWrite
	case BindingColorAttachment:
		return vk.AccessColorAttachmentWrite
	case BindingDepthAttachment:
		return vk.AccessDepthStencilAttachmentWrite
	default:
		panic("layout: unknown binding kind")
	}
}

func isWrite(b Binding) bool {
	return b == BindingStorageImage || b == BindingColorAttachment || b == BindingDepthAttachment
}

// mipState is the tracked layout/access/writing state of one mip level.
type mipState struct {
	layout  vk.ImageLayout
	access  vk.AccessFlags
	writing bool
}

// imageState is the per-image mip-state table. New images default
// every mip to ImageLayoutUndefined, matching a freshly created
// VkImage's initialLayout.
type imageState struct {
	mips []mipState
}

func newImageState(mipCount uint32) *imageState {
	s := &imageState{mips: make([]mipState, mipCount)}
	for i := range s.mips {
		s.mips[i].layout = vk.ImageLayoutUndefined
	}
	return s
}

// bufferState is the last-writer state of one tracked buffer, used to
// synthesise a buffer barrier whenever a later pass reads what an
// earlier pass wrote (the parent/declaration rule of the new buffer
// barrier synthesis — the teacher's own buffer-barrier path was a
// TODO; this module completes it for the declared-parent model §4.6
// actually uses).
type bufferState struct {
	access  vk.AccessFlags
	writing bool
}

// Access describes one resource touched by a pass: which image or
// buffer, and how.
type Access struct {
	Image      handle.Image
	Buffer     handle.Buffer
	Binding    Binding
	BaseMip    uint32
	MipCount   uint32
	IsBuffer   bool
	BufferRead bool
	BufferSize uint64
}

// Tracker owns the per-image and per-buffer state tables. Not safe for
// concurrent use — the render-graph scheduler that owns it runs
// single-threaded per spec §5.
type Tracker struct {
	images  map[handle.Image]*imageState
	buffers map[handle.Buffer]*bufferState
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		images:  make(map[handle.Image]*imageState),
		buffers: make(map[handle.Buffer]*bufferState),
	}
}

// RegisterImage begins tracking img with mipCount independent mip
// states, all starting at ImageLayoutUndefined.
func (t *Tracker) RegisterImage(img handle.Image, mipCount uint32) {
	t.images[img] = newImageState(mipCount)
}

// RegisterBuffer begins tracking buf with no prior access recorded.
func (t *Tracker) RegisterBuffer(buf handle.Buffer) {
	t.buffers[buf] = &bufferState{}
}

// ForgetImage and ForgetBuffer drop tracking state for a destroyed image
// or buffer.
func (t *Tracker) ForgetImage(img handle.Image)   { delete(t.images, img) }
func (t *Tracker) ForgetBuffer(buf handle.Buffer) { delete(t.buffers, buf) }

// Barriers is the synthesised set of image and buffer barriers for one
// pass's full set of declared accesses.
type Barriers struct {
	Images  []vk.ImageMemoryBarrier
	Buffers []vk.BufferMemoryBarrier
}

// Synthesize computes the barriers needed before a pass executes given
// its declared accesses, and updates tracked state accordingly — the
// per-pass step 2 of spec §4.6.
//
// When the same image appears as both BindingSampledImage and
// BindingStorageImage among accesses, its layout is forced to general
// and the sampled entry is dropped from the barrier list, per §4.3.
func (t *Tracker) Synthesize(accesses []Access) Barriers {
	var out Barriers

	byImage := make(map[handle.Image][]Access)
	var bufferAccesses []Access
	for _, a := range accesses {
		if a.IsBuffer {
			bufferAccesses = append(bufferAccesses, a)
			continue
		}
		byImage[a.Image] = append(byImage[a.Image], a)
	}

	for img, imgAccesses := range byImage {
		out.Images = append(out.Images, t.synthesizeImage(img, imgAccesses)...)
	}

	for _, a := range bufferAccesses {
		if b := t.synthesizeBuffer(a); b != nil {
			out.Buffers = append(out.Buffers, *b)
		}
	}

	return out
}

// synthesizeImage handles the storage+sampled same-image special case,
// then delegates to the per-mip-range barrier synthesis.
func (t *Tracker) synthesizeImage(img handle.Image, accesses []Access) []vk.ImageMemoryBarrier {
	state, ok := t.images[img]
	if !ok {
		panic("layout: Synthesize referenced an unregistered image")
	}

	hasSampled, hasStorage := false, false
	for _, a := range accesses {
		switch a.Binding {
		case BindingSampledImage:
			hasSampled = true
		case BindingStorageImage:
			hasStorage = true
		}
	}
	forceGeneral := hasSampled && hasStorage

	var filtered []Access
	for _, a := range accesses {
		if forceGeneral && a.Binding == BindingSampledImage {
			continue // dropped per §4.3: sampled entry skipped when forced general
		}
		filtered = append(filtered, a)
	}

	var barriers []vk.ImageMemoryBarrier
	for _, a := range filtered {
		layout := requiredLayout(a.Binding)
		access := requiredAccess(a.Binding)
		if forceGeneral {
			layout = vk.ImageLayoutGeneral
		}
		barriers = append(barriers, t.barrierForMips(img, state, a.BaseMip, a.MipCount, layout, access, isWrite(a.Binding))...)
	}
	return barriers
}

// barrierForMips applies the required layout/access/writing state to
// [baseMip, baseMip+mipCount), coalescing contiguous mips that share
// the same old layout into a single barrier entry (spec §4.3, §8).
func (t *Tracker) barrierForMips(img handle.Image, state *imageState, baseMip, mipCount uint32, reqLayout vk.ImageLayout, reqAccess vk.AccessFlags, writing bool) []vk.ImageMemoryBarrier {
	var barriers []vk.ImageMemoryBarrier

	mip := baseMip
	end := baseMip + mipCount
	for mip < end {
		s := state.mips[mip]
		needsBarrier := s.layout != reqLayout || s.writing

		if !needsBarrier {
			mip++
			continue
		}

		oldLayout := s.layout
		start := mip
		for mip < end && state.mips[mip].layout == oldLayout && (state.mips[mip].layout != reqLayout || state.mips[mip].writing) {
			mip++
		}
		count := mip - start

		barriers = append(barriers, vk.ImageMemoryBarrier{
			Image:        vk.Image(img.Index()),
			OldLayout:    oldLayout,
			NewLayout:    reqLayout,
			SrcAccess:    state.mips[start].access,
			DstAccess:    reqAccess,
			BaseMipLevel: start,
			MipCount:     count,
		})

		for m := start; m < mip; m++ {
			state.mips[m] = mipState{layout: reqLayout, access: reqAccess, writing: writing}
		}
	}

	return barriers
}

// synthesizeBuffer emits a barrier only when a later access conflicts
// with the buffer's last recorded access — a write followed by
// anything, or a read followed by a write.
func (t *Tracker) synthesizeBuffer(a Access) *vk.BufferMemoryBarrier {
	state, ok := t.buffers[a.Buffer]
	if !ok {
		panic("layout: Synthesize referenced an unregistered buffer")
	}

	newAccess := vk.AccessShaderRead
	newWrite := !a.BufferRead
	if newWrite {
		newAccess = vk.AccessShaderWrite
	}

	needsBarrier := state.writing || (newWrite && state.access != 0)
	srcAccess := state.access

	state.access = newAccess
	state.writing = newWrite

	if !needsBarrier {
		return nil
	}

	return &vk.BufferMemoryBarrier{
		Buffer:    vk.Buffer(a.Buffer.Index()),
		SrcAccess: srcAccess,
		DstAccess: newAccess,
		Offset:    0,
		Size:      a.BufferSize,
	}
}
