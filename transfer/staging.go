// Package transfer implements the fixed-size staging buffer upload
// engine and mip-chain generation described in spec §4.7.
package transfer

import (
	"errors"
	"fmt"

	"github.com/lumenrender/lumen/gpuformat"
	"github.com/lumenrender/lumen/internal/vk"
)

// DefaultStagingSize is the default staging buffer size (§3).
const DefaultStagingSize uint64 = 1 << 20

// ErrLinearFilterUnsupported is returned by GenerateMips when the
// device does not advertise linear filtering for the target format
// (spec §4.7).
var ErrLinearFilterUnsupported = errors.New("transfer: device does not support linear filtering for mip generation on this format")

// MapFn maps the staging buffer and returns a byte slice view of it.
type MapFn func() []byte

// UnmapFn unmaps the staging buffer.
type UnmapFn func()

// SubmitFn records and submits a one-shot transfer command buffer,
// blocking until the GPU has consumed it (the backend's submitTransfer
// waits for device idle).
type SubmitFn func(record func(cmd vk.CommandBuffer)) error

// Engine drives buffer-fill, image-upload, and mip-generation through
// one fixed-size staging buffer, looping chunk by chunk per spec §4.7.
type Engine struct {
	cmds    *vk.Commands
	staging vk.Buffer
	size    uint64

	mapFn    MapFn
	unmapFn  UnmapFn
	submit   SubmitFn

	supportsLinearFilter func(gpuformat.Image) bool
}

// NewEngine creates a transfer engine bound to a pre-allocated staging
// buffer of the given size.
func NewEngine(cmds *vk.Commands, staging vk.Buffer, size uint64, mapFn MapFn, unmapFn UnmapFn, submit SubmitFn, supportsLinearFilter func(gpuformat.Image) bool) *Engine {
	if size == 0 {
		size = DefaultStagingSize
	}
	return &Engine{
		cmds: cmds, staging: staging, size: size,
		mapFn: mapFn, unmapFn: unmapFn, submit: submit,
		supportsLinearFilter: supportsLinearFilter,
	}
}

// FillBuffer uploads data into dst starting at dstOffset, chunked
// through the staging buffer (spec §4.7 "Buffer fill").
func (e *Engine) FillBuffer(dst vk.Buffer, dstOffset uint64, data []byte) error {
	var srcOffset uint64
	for srcOffset < uint64(len(data)) {
		chunk := e.size
		remaining := uint64(len(data)) - srcOffset
		if chunk > remaining {
			chunk = remaining
		}

		staged := e.mapFn()
		copy(staged, data[srcOffset:srcOffset+chunk])
		e.unmapFn()

		offset := srcOffset
		err := e.submit(func(cmd vk.CommandBuffer) {
			e.cmds.CmdCopyBuffer(cmd, e.staging, dst, []vk.BufferCopy{
				{SrcOffset: 0, DstOffset: dstOffset + offset, Size: chunk},
			})
		})
		if err != nil {
			return fmt.Errorf("transfer: buffer fill chunk at offset %d: %w", offset, err)
		}

		srcOffset += chunk
	}
	return nil
}

// MipUpload describes one mip level's source data for ImageUpload.
type MipUpload struct {
	Level                uint32
	Width, Height, Depth uint32
	Data                 []byte
}

// ImageUpload uploads a sequence of mips into dst, chunking each mip's
// rows through the staging buffer and enforcing the BCn row/block
// minimums of spec §4.7.
func (e *Engine) ImageUpload(dst vk.Image, format gpuformat.Image, mips []MipUpload) error {
	for _, mip := range mips {
		rowBytes, rowCount, err := rowLayout(format, mip.Width, mip.Height)
		if err != nil {
			return err
		}

		if err := e.uploadMipRows(dst, mip, rowBytes, rowCount); err != nil {
			return fmt.Errorf("transfer: uploading mip %d: %w", mip.Level, err)
		}
	}
	return nil
}

// rowLayout computes the bytes-per-row and row count for one mip,
// enforcing the block-compressed minimums of spec §4.7: at least 4
// bytes-per-row (a full block) and at least a 4x4 block per mip.
func rowLayout(format gpuformat.Image, width, height uint32) (rowBytes uint64, rows uint32, err error) {
	if format.IsBlockCompressed() {
		blocksWide := (width + 3) / 4
		if blocksWide < 1 {
			blocksWide = 1
		}
		blocksHigh := (height + 3) / 4
		if blocksHigh < 1 {
			blocksHigh = 1
		}
		rowBytes = uint64(blocksWide) * uint64(format.BlockSize())
		if rowBytes < 4 {
			rowBytes = 4
		}
		rows = blocksHigh
		if rows < 1 {
			rows = 1
		}
		return rowBytes, rows, nil
	}

	rowBytes = uint64(width) * uint64(format.BytesPerTexel())
	rows = height
	if rows == 0 {
		rows = 1
	}
	return rowBytes, rows, nil
}

// uploadMipRows streams one mip's data through the staging buffer,
// one or more whole rows at a time, never splitting a row across two
// chunks.
func (e *Engine) uploadMipRows(dst vk.Image, mip MipUpload, rowBytes uint64, rowCount uint32) error {
	rowsPerChunk := e.size / rowBytes
	if rowsPerChunk == 0 {
		return fmt.Errorf("transfer: staging buffer (%d bytes) too small for one row (%d bytes) of mip %d", e.size, rowBytes, mip.Level)
	}

	var row uint32
	var srcOffset uint64
	for row < rowCount {
		chunkRows := uint32(rowsPerChunk)
		if uint32(rowCount-row) < chunkRows {
			chunkRows = rowCount - row
		}
		chunkBytes := uint64(chunkRows) * rowBytes

		staged := e.mapFn()
		copy(staged, mip.Data[srcOffset:srcOffset+chunkBytes])
		e.unmapFn()

		level := mip.Level
		width, height, depth := mip.Width, mip.Height, mip.Depth
		err := e.submit(func(cmd vk.CommandBuffer) {
			e.cmds.CmdCopyBufferToImage(cmd, e.staging, dst, []vk.BufferImageCopy{
				{BufferOffset: 0, MipLevel: level, ImageWidth: width, ImageHeight: height, ImageDepth: depth},
			})
		})
		if err != nil {
			return err
		}

		row += chunkRows
		srcOffset += chunkBytes
	}
	return nil
}

// GenerateMips blits mip i into mip i+1 for mipCount-1 steps, barrier
// bracketing each step (i to transfer-src, i+1 to transfer-dst), and
// finishes with a single barrier moving every mip to finalLayout
// (spec §4.7 "Mip generation").
func (e *Engine) GenerateMips(img vk.Image, format gpuformat.Image, width, height, mipCount uint32, finalLayout vk.ImageLayout) error {
	if !e.supportsLinearFilter(format) {
		return fmt.Errorf("%w: format %v", ErrLinearFilterUnsupported, format)
	}

	w, h := width, height
	for i := uint32(0); i+1 < mipCount; i++ {
		dstW, dstH := w/2, h/2
		if dstW == 0 {
			dstW = 1
		}
		if dstH == 0 {
			dstH = 1
		}

		srcMip, dstMip := i, i+1
		err := e.submit(func(cmd vk.CommandBuffer) {
			e.cmds.CmdPipelineBarrier(cmd, vk.StageTransfer, vk.StageTransfer, []vk.ImageMemoryBarrier{
				{Image: img, NewLayout: vk.ImageLayoutTransferSrcOptimal, BaseMipLevel: srcMip, MipCount: 1, DstAccess: vk.AccessTransferRead},
				{Image: img, NewLayout: vk.ImageLayoutTransferDstOptimal, BaseMipLevel: dstMip, MipCount: 1, DstAccess: vk.AccessTransferWrite},
			}, nil)
			e.cmds.CmdBlitImage(cmd, img, img, []vk.ImageBlit{
				{SrcMip: srcMip, DstMip: dstMip, SrcWidth: w, SrcHeight: h, SrcDepth: 1, DstWidth: dstW, DstHeight: dstH, DstDepth: 1},
			})
		})
		if err != nil {
			return fmt.Errorf("transfer: blitting mip %d to %d: %w", srcMip, dstMip, err)
		}

		w, h = dstW, dstH
	}

	return e.submit(func(cmd vk.CommandBuffer) {
		e.cmds.CmdPipelineBarrier(cmd, vk.StageTransfer, vk.StageFragmentShader, []vk.ImageMemoryBarrier{
			{Image: img, NewLayout: finalLayout, BaseMipLevel: 0, MipCount: mipCount, DstAccess: vk.AccessShaderRead},
		}, nil)
	})
}
