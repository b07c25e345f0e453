package frontend

import "github.com/lumenrender/lumen/linear"

// DiffuseBRDF names the forward pass's diffuse term. The value is
// recorded in ShadingConfig and compared to detect changes; it reaches
// neither the compiled shader nor its cache key (shaderio.Source holds
// only file paths), and internal/vk's curated pipeline-create path has
// no specialisation-constant field (see DESIGN.md).
type DiffuseBRDF int

const (
	DiffuseLambert DiffuseBRDF = iota
	DiffuseDisney
	DiffuseCoDWWII
	DiffuseTitanfall2
)

// DirectSpecularMultiscattering selects the forward pass's specular
// multiscattering compensation term.
type DirectSpecularMultiscattering int

const (
	SpecularMcAuley DirectSpecularMultiscattering = iota
	SpecularSimplified
	SpecularScaledGGX
	SpecularNone
)

// ShadingConfig is the forward pass's feature selection; a change
// between frames rebuilds the forward pass from its unchanged sources.
type ShadingConfig struct {
	DiffuseBRDF            DiffuseBRDF
	DirectMultiscatter      DirectSpecularMultiscattering
	UseIndirectMultiscatter bool
	UseGeometryAA           bool
	UseSkyOcclusion         bool
	UseSkyOcclusionDirection bool
}

// DefaultShadingConfig matches the original engine's defaults.
func DefaultShadingConfig() ShadingConfig {
	return ShadingConfig{
		DiffuseBRDF:             DiffuseTitanfall2,
		DirectMultiscatter:      SpecularMcAuley,
		UseIndirectMultiscatter: true,
		UseGeometryAA:           true,
		UseSkyOcclusion:         true,
		UseSkyOcclusionDirection: true,
	}
}

// TAASettings configures the temporal resolve pass.
type TAASettings struct {
	UseClipping             bool
	UseVarianceClipping     bool
	UseYCoCg                bool
	UseMotionVectorDilation bool
	TextureLoDBias          float32
}

// DefaultTAASettings matches the original engine's defaults.
func DefaultTAASettings() TAASettings {
	return TAASettings{
		UseClipping:             true,
		UseVarianceClipping:     true,
		UseYCoCg:                true,
		UseMotionVectorDilation: true,
		TextureLoDBias:          -0.75,
	}
}

// HistogramSettings parameterises the auto-exposure histogram compute
// passes. It is read on the CPU for dispatch counts (tile grid, bin
// groups) and is not passed to the shaders.
type HistogramSettings struct {
	MinLogLuminance float32
	MaxLogLuminance float32
	TileSizeX       uint32
	TileSizeY       uint32
	BinCount        uint32
}

// DefaultHistogramSettings matches the original engine's 128-bin,
// 32x32-tile configuration.
func DefaultHistogramSettings() HistogramSettings {
	return HistogramSettings{
		MinLogLuminance: -10,
		MaxLogLuminance: 17,
		TileSizeX:       32,
		TileSizeY:       32,
		BinCount:        128,
	}
}

// SkyOcclusionRenderData is one gather pass's per-sample-direction
// uniform block, matching the original engine's SkyOcclusionRenderData.
type SkyOcclusionRenderData struct {
	ShadowMatrix    linear.M4
	Extents         [4]float32
	SampleDirection [4]float32
	Offset          [4]float32
	Weight          float32
}

// Settings bundles every per-pipeline configuration knob this package
// reads at construction and on resolution change.
type Settings struct {
	Shading   ShadingConfig
	TAA       TAASettings
	Histogram HistogramSettings

	ShadowMapResolution uint32
	CascadeCount        uint32
	SkyTextureResolution uint32
	SpecularProbeResolution uint32
	DiffuseProbeResolution  uint32
	SkyTextureMipCount      uint32
	BRDFLutResolution       uint32
}

// mipsTooSmall is the number of top mip levels the specular probe
// convolution skips — the source image is assumed pre-filtered enough
// there that importance sampling would be unstable (original engine's
// hard-coded constant of the same name).
const mipsTooSmall = 4

// DefaultSettings matches the original engine's resource resolutions.
func DefaultSettings() Settings {
	return Settings{
		Shading:                 DefaultShadingConfig(),
		TAA:                     DefaultTAASettings(),
		Histogram:                DefaultHistogramSettings(),
		ShadowMapResolution:      2048,
		CascadeCount:             4,
		SkyTextureResolution:     1024,
		SpecularProbeResolution:  512,
		DiffuseProbeResolution:   256,
		SkyTextureMipCount:       8,
		BRDFLutResolution:        512,
	}
}
