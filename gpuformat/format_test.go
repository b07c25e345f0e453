package gpuformat

import "testing"

func TestMipCountFormula(t *testing.T) {
	cases := []struct {
		w, h, d uint32
		want    uint32
	}{
		{1024, 512, 1, 11},
		{1, 1, 1, 1},
		{256, 256, 1, 9},
		{2, 1, 1, 2},
	}
	for _, c := range cases {
		if got := MipCount(c.w, c.h, c.d); got != c.want {
			t.Errorf("MipCount(%d,%d,%d) = %d, want %d", c.w, c.h, c.d, got, c.want)
		}
	}
}

func TestVertexSizes(t *testing.T) {
	if VertexFloat32x3.Size() != 12 {
		t.Errorf("Float32x3 size = %d, want 12", VertexFloat32x3.Size())
	}
	if VertexFloat16x2.Size() != 4 {
		t.Errorf("Float16x2 size = %d, want 4", VertexFloat16x2.Size())
	}
	if VertexSnorm1010102.Size() != 4 {
		t.Errorf("Snorm1010102 size = %d, want 4", VertexSnorm1010102.Size())
	}
}

func TestBlockCompressedFormats(t *testing.T) {
	if !ImageBC1RGBAUnorm.IsBlockCompressed() {
		t.Errorf("BC1 should be block compressed")
	}
	if ImageRGBA8Unorm.IsBlockCompressed() {
		t.Errorf("RGBA8 should not be block compressed")
	}
	if ImageBC1RGBAUnorm.BlockSize() != 8 {
		t.Errorf("BC1 block size = %d, want 8", ImageBC1RGBAUnorm.BlockSize())
	}
	if ImageBC3RGBAUnorm.BlockSize() != 16 {
		t.Errorf("BC3 block size = %d, want 16", ImageBC3RGBAUnorm.BlockSize())
	}
	if ImageBC5RGUnorm.BlockSize() != 16 {
		t.Errorf("BC5 block size = %d, want 16", ImageBC5RGUnorm.BlockSize())
	}
}

func TestIsDepth(t *testing.T) {
	if !ImageDepth32Float.IsDepth() {
		t.Errorf("Depth32Float should be a depth format")
	}
	if ImageRGBA8Unorm.IsDepth() {
		t.Errorf("RGBA8Unorm should not be a depth format")
	}
}
