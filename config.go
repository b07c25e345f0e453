package lumen

import (
	"os"
	"path/filepath"

	"github.com/lumenrender/lumen/descriptor"
)

// Defaults named in spec §3 Configuration.
const (
	DefaultStagingBufferSize  uint64 = 1 << 20
	DefaultMemoryPoolSlabSize uint64 = 256 << 20
	DefaultCascadeCount       uint32 = 4
	DefaultShadowMapResolution uint32 = 2048
)

// SDFGIResolutionMode selects whether the SDF indirect-diffuse trace
// pass runs at half or full target resolution (spec §4.9).
type SDFGIResolutionMode int

const (
	SDFGIHalfResolution SDFGIResolutionMode = iota
	SDFGIFullResolution
)

// BackendConfig configures a Backend at construction time. Every field
// left at its zero value takes the documented default; DebugValidation
// has no default — omitting it means validation stays off, matching a
// release build.
type BackendConfig struct {
	// DebugValidation enables the platform validation layer. This is
	// the compile-time debug-build toggle reinterpreted as a runtime
	// field, set once at NewBackend and immutable after.
	DebugValidation bool

	// ShaderCacheDir holds compiled SPIR-V keyed by source mtime
	// (spec §4.4). Defaults to a lumen-shader-cache directory under
	// the OS temp directory.
	ShaderCacheDir string

	StagingBufferSize  uint64
	MemoryPoolSlabSize uint64

	// DescriptorPoolQuota is the per-descriptor-type count of the
	// first descriptor pool (spec §4.2). Zero fields default to
	// descriptor.DefaultQuota (128) independently.
	DescriptorPoolQuota descriptor.Counts

	CascadeCount        uint32
	ShadowMapResolution uint32
	SDFGIResolution     SDFGIResolutionMode

	// ResourceDir overrides automatic resources/ directory discovery.
	// Tests set this explicitly rather than relying on a cwd-relative
	// walk-up.
	ResourceDir string
}

// withDefaults returns a copy of c with every zero-valued field
// replaced by its documented default.
func (c BackendConfig) withDefaults() BackendConfig {
	if c.ShaderCacheDir == "" {
		c.ShaderCacheDir = filepath.Join(os.TempDir(), "lumen-shader-cache")
	}
	if c.StagingBufferSize == 0 {
		c.StagingBufferSize = DefaultStagingBufferSize
	}
	if c.MemoryPoolSlabSize == 0 {
		c.MemoryPoolSlabSize = DefaultMemoryPoolSlabSize
	}
	if c.CascadeCount == 0 {
		c.CascadeCount = DefaultCascadeCount
	}
	if c.ShadowMapResolution == 0 {
		c.ShadowMapResolution = DefaultShadowMapResolution
	}
	if c.ResourceDir == "" {
		c.ResourceDir = findResourceDir()
	}
	return c
}

// findResourceDir walks upward from the working directory looking for
// a child directory named "resources" (spec §6). Returns "" if none is
// found before reaching the filesystem root.
func findResourceDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, "resources")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
