package lumen

import (
	"errors"
	"fmt"

	"github.com/lumenrender/lumen/memory"
	"github.com/lumenrender/lumen/transfer"
)

// Re-exported sentinel errors from the packages that actually define
// them, mirroring how the teacher's top-level error.go re-exports its
// HAL's sentinels rather than redeclaring them.
var (
	ErrNoSuitableMemoryType    = memory.ErrNoSuitableMemoryType
	ErrPoolCreateFailed        = memory.ErrPoolCreateFailed
	ErrLinearFilterUnsupported = transfer.ErrLinearFilterUnsupported
)

// Backend-level sentinel errors (spec §7).
var (
	// ErrDeviceLost indicates the GPU device has been lost (driver
	// crash, hardware disconnection, TDR timeout). Unrecoverable; the
	// backend must be recreated.
	ErrDeviceLost = errors.New("lumen: device lost")

	// ErrShaderCompile indicates a WGSL source failed to compile.
	// Recoverable during hot-reload (the previous pass build keeps
	// running); fatal during initial pass construction.
	ErrShaderCompile = errors.New("lumen: shader compilation failed")

	// ErrMissingFeature indicates the device does not support a
	// feature this backend requires.
	ErrMissingFeature = errors.New("lumen: required device feature not supported")

	// ErrFormatFeatureUnsupported indicates an image format does not
	// support a requested usage (e.g. linear filtering for mip
	// generation).
	ErrFormatFeatureUnsupported = errors.New("lumen: image format does not support the requested feature")

	// ErrSurfaceLost indicates the presentation surface was destroyed,
	// typically because its window closed.
	ErrSurfaceLost = errors.New("lumen: surface lost")

	// ErrResourceNotFound indicates a handle does not resolve to a
	// live object in its registry — either it was never allocated or
	// it has already been destroyed.
	ErrResourceNotFound = errors.New("lumen: resource handle does not resolve to a live object")
)

// invariant panics with a formatted message when cond is false. It
// marks a violated programmer-facing precondition — a cyclic pass
// graph, a binding-set mismatch, a handle from the wrong registry —
// rather than a recoverable runtime error, matching the original
// engine's assert-as-impossible-branch idiom translated to Go's
// panic/recover model.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
