// Package gpuformat enumerates the image and vertex formats the backend
// understands, plus the size/block-size queries other packages need to
// compute upload geometry and vertex strides.
package gpuformat

// Image is an image pixel format, spanning plain colour formats,
// depth/stencil formats, and BCn block-compressed variants (spec §3, §6).
type Image uint32

const (
	ImageUndefined Image = iota

	ImageR8Unorm
	ImageRG8Unorm
	ImageRGBA8Unorm
	ImageRGBA8Srgb
	ImageBGRA8Unorm
	ImageBGRA8Srgb

	ImageR16Float
	ImageRG16Float
	ImageRGBA16Float
	ImageR32Float
	ImageRG32Float
	ImageRGBA32Float

	ImageDepth32Float
	ImageDepth24Stencil8

	// BC1/BC3/BC5 are the three block-compressed formats spec §6 names.
	ImageBC1RGBAUnorm
	ImageBC3RGBAUnorm
	ImageBC5RGUnorm
)

// IsBlockCompressed reports whether f is one of the BCn formats.
func (f Image) IsBlockCompressed() bool {
	switch f {
	case ImageBC1RGBAUnorm, ImageBC3RGBAUnorm, ImageBC5RGUnorm:
		return true
	}
	return false
}

// IsDepth reports whether f carries a depth (and possibly stencil)
// aspect, which the pass factory uses to pick the depth-attachment
// subpass reference instead of a colour one (spec §4.5 step 4).
func (f Image) IsDepth() bool {
	return f == ImageDepth32Float || f == ImageDepth24Stencil8
}

// BlockSize returns the compressed block footprint in bytes for one
// 4x4 texel block. Panics for non-block formats — callers must check
// IsBlockCompressed first.
func (f Image) BlockSize() int {
	switch f {
	case ImageBC1RGBAUnorm:
		return 8
	case ImageBC5RGUnorm:
		return 16
	case ImageBC3RGBAUnorm:
		return 16
	default:
		panic("gpuformat: BlockSize called on a non-block-compressed format")
	}
}

// BytesPerTexel returns the uncompressed per-texel byte size. Panics
// for block-compressed formats.
func (f Image) BytesPerTexel() int {
	switch f {
	case ImageR8Unorm:
		return 1
	case ImageRG8Unorm, ImageR16Float:
		return 2
	case ImageRGBA8Unorm, ImageRGBA8Srgb, ImageBGRA8Unorm, ImageBGRA8Srgb,
		ImageRG16Float, ImageR32Float, ImageDepth32Float, ImageDepth24Stencil8:
		return 4
	case ImageRG32Float, ImageRGBA16Float:
		return 8
	case ImageRGBA32Float:
		return 16
	default:
		panic("gpuformat: BytesPerTexel called on a block-compressed or undefined format")
	}
}

// MipCount implements spec §8's mip-count formula:
// mipCount(w,h,d) = 1 + floor(log2(max(w,h,d))).
func MipCount(w, h, d uint32) uint32 {
	m := w
	if h > m {
		m = h
	}
	if d > m {
		m = d
	}
	if m == 0 {
		return 1
	}
	count := uint32(1)
	for m > 1 {
		m >>= 1
		count++
	}
	return count
}

// Vertex is a vertex attribute's wire format, restricted to the fixed
// set spec §3 names: position f32x3, uv f16x2, and three
// signed-normalised 10_10_10_2 packed attributes.
type Vertex uint8

const (
	VertexFloat32x3 Vertex = iota
	VertexFloat16x2
	VertexSnorm1010102
)

// Size returns the wire size in bytes of one attribute value.
func (v Vertex) Size() uint32 {
	switch v {
	case VertexFloat32x3:
		return 12
	case VertexFloat16x2:
		return 4
	case VertexSnorm1010102:
		return 4
	default:
		panic("gpuformat: unknown vertex format")
	}
}
