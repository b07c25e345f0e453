package layout

import (
	"testing"

	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
)

func newImg(idx uint32) handle.Image { return handle.New[handle.ImageKind](idx) }
func newBuf(idx uint32) handle.Buffer { return handle.New[handle.BufferKind](idx) }

func TestBarrierUpdatesAllMipsInRange(t *testing.T) {
	tr := NewTracker()
	img := newImg(0)
	tr.RegisterImage(img, 4)

	b := tr.Synthesize([]Access{{Image: img, Binding: BindingSampledImage, BaseMip: 0, MipCount: 4}})
	if len(b.Images) != 1 {
		t.Fatalf("len(Images) = %d, want 1", len(b.Images))
	}
	if b.Images[0].BaseMipLevel != 0 || b.Images[0].MipCount != 4 {
		t.Fatalf("barrier = %+v, want base 0 count 4", b.Images[0])
	}

	state := tr.images[img]
	for i, m := range state.mips {
		if m.layout != vk.ImageLayoutShaderReadOnlyOptimal {
			t.Fatalf("mip %d layout = %v, want ShaderReadOnlyOptimal", i, m.layout)
		}
	}
}

func TestSecondPassSameLayoutProducesNoBarrier(t *testing.T) {
	tr := NewTracker()
	img := newImg(0)
	tr.RegisterImage(img, 2)

	tr.Synthesize([]Access{{Image: img, Binding: BindingSampledImage, BaseMip: 0, MipCount: 2}})
	b := tr.Synthesize([]Access{{Image: img, Binding: BindingSampledImage, BaseMip: 0, MipCount: 2}})

	if len(b.Images) != 0 {
		t.Fatalf("second identical access produced %d barriers, want 0", len(b.Images))
	}
}

func TestSplitMipRangeProducesTwoBarrierEntries(t *testing.T) {
	tr := NewTracker()
	img := newImg(0)
	tr.RegisterImage(img, 4)

	// Put mips [0,2) and [2,4) at two different old layouts via two
	// separate single-binding passes.
	tr.Synthesize([]Access{{Image: img, Binding: BindingStorageImage, BaseMip: 0, MipCount: 2}})
	tr.Synthesize([]Access{{Image: img, Binding: BindingColorAttachment, BaseMip: 2, MipCount: 2}})

	// A single access spanning all four mips now needs two barrier
	// entries, since the old layout differs across the split.
	b := tr.Synthesize([]Access{{Image: img, Binding: BindingSampledImage, BaseMip: 0, MipCount: 4}})

	if len(b.Images) != 2 {
		t.Fatalf("len(Images) = %d, want 2 for a split old-layout range", len(b.Images))
	}
}

func TestStorageAndSampledSameImageForcesGeneral(t *testing.T) {
	tr := NewTracker()
	img := newImg(0)
	tr.RegisterImage(img, 1)

	b := tr.Synthesize([]Access{
		{Image: img, Binding: BindingSampledImage, BaseMip: 0, MipCount: 1},
		{Image: img, Binding: BindingStorageImage, BaseMip: 0, MipCount: 1},
	})

	if len(b.Images) != 1 {
		t.Fatalf("len(Images) = %d, want 1 (sampled entry dropped)", len(b.Images))
	}
	if b.Images[0].NewLayout != vk.ImageLayoutGeneral {
		t.Fatalf("NewLayout = %v, want General", b.Images[0].NewLayout)
	}
}

func TestBufferBarrierOnWriteThenRead(t *testing.T) {
	tr := NewTracker()
	buf := newBuf(0)
	tr.RegisterBuffer(buf)

	b1 := tr.Synthesize([]Access{{IsBuffer: true, Buffer: buf, BufferRead: false, BufferSize: 64}})
	if len(b1.Buffers) != 0 {
		t.Fatalf("first write to a fresh buffer produced a barrier, want none")
	}

	b2 := tr.Synthesize([]Access{{IsBuffer: true, Buffer: buf, BufferRead: true, BufferSize: 64}})
	if len(b2.Buffers) != 1 {
		t.Fatalf("read after write produced %d barriers, want 1", len(b2.Buffers))
	}
}

func TestBufferBarrierSkippedOnReadAfterRead(t *testing.T) {
	tr := NewTracker()
	buf := newBuf(0)
	tr.RegisterBuffer(buf)

	tr.Synthesize([]Access{{IsBuffer: true, Buffer: buf, BufferRead: false, BufferSize: 64}})
	tr.Synthesize([]Access{{IsBuffer: true, Buffer: buf, BufferRead: true, BufferSize: 64}})
	b3 := tr.Synthesize([]Access{{IsBuffer: true, Buffer: buf, BufferRead: true, BufferSize: 64}})

	if len(b3.Buffers) != 0 {
		t.Fatalf("read after read produced %d barriers, want 0", len(b3.Buffers))
	}
}
