// Package ddsload parses the minimal DDS container header this
// backend needs — BC1/BC3/BC5 block-compressed textures only, per spec
// §6. It is not a general-purpose image decoder: STB-compatible 8-bit
// and 32-bit-float images are an external collaborator's job.
package ddsload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/lumenrender/lumen/gpuformat"
)

const magic = 0x20534444

const pixelFormatFourCC = 0x4

const (
	bc1Code uint32 = 827611204
	bc3Code uint32 = 894720068
	bc5Code uint32 = 843666497
)

// ErrUnsupportedFormat is returned when the DDS pixel format is not
// FourCC-compressed, or its compression code is not BC1/BC3/BC5.
var ErrUnsupportedFormat = errors.New("ddsload: unsupported DDS pixel format")

// ErrBadMagic is returned when the file does not start with the DDS magic number.
var ErrBadMagic = errors.New("ddsload: not a DDS file")

type pixelFormat struct {
	InfoSize         uint32
	Flags            uint32
	CompressionCode  uint32
	RGBBitCount      uint32
	RBitMask         uint32
	GBitMask         uint32
	BBitMask         uint32
	ABitMask         uint32
}

type header struct {
	HeaderSize        uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       pixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// Image is the decoded DDS header plus the raw compressed payload
// following it.
type Image struct {
	Width, Height, Depth uint32
	MipCount             uint32
	Format               gpuformat.Image
	Data                 []byte
}

// Decode reads a DDS stream, validating the magic number and pixel
// format before returning the compressed payload. Non-supported
// formats return ErrUnsupportedFormat rather than aborting the
// process — image-load failures are recoverable per spec §7 kind 4.
func Decode(r io.Reader) (Image, error) {
	var img Image

	var m uint32
	if err := binary.Read(r, binary.LittleEndian, &m); err != nil {
		return img, fmt.Errorf("ddsload: reading magic: %w", err)
	}
	if m != magic {
		return img, ErrBadMagic
	}

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return img, fmt.Errorf("ddsload: reading header: %w", err)
	}

	if h.PixelFormat.Flags&pixelFormatFourCC == 0 {
		return img, fmt.Errorf("%w: only FourCC-compressed DDS files are supported", ErrUnsupportedFormat)
	}

	switch h.PixelFormat.CompressionCode {
	case bc1Code:
		img.Format = gpuformat.ImageBC1RGBAUnorm
	case bc3Code:
		img.Format = gpuformat.ImageBC3RGBAUnorm
	case bc5Code:
		img.Format = gpuformat.ImageBC5RGUnorm
	default:
		return img, fmt.Errorf("%w: compression code %d", ErrUnsupportedFormat, h.PixelFormat.CompressionCode)
	}

	img.Width = h.Width
	img.Height = h.Height
	img.Depth = h.Depth
	if img.Depth == 0 {
		img.Depth = 1
	}
	img.MipCount = h.MipMapCount
	if img.MipCount == 0 {
		img.MipCount = 1
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return img, fmt.Errorf("ddsload: reading payload: %w", err)
	}
	img.Data = data

	return img, nil
}
