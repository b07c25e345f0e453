package frontend

import (
	"fmt"

	"github.com/lumenrender/lumen/gpuformat"
	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/shaderio"
)

// SkySources names the WGSL sources the one-time sky/IBL setup compiles
// (spec §4.8 step 1: "equirectangular→cubemap, cube mip chain, diffuse
// convolution, specular convolution per-mip, BRDF LUT").
type SkySources struct {
	ToCubemap          shaderio.Source
	CubemapDownsample  shaderio.Source
	DiffuseConvolution shaderio.Source
	SpecularConvolution shaderio.Source
	BRDFLut            shaderio.Source
}

// SkyPipeline holds the one-time environment setup passes, built once
// on the first frame and re-issued only when the configured DiffuseBRDF
// changes (DESIGN.md Open Question decision: the
// BRDF LUT depends on the diffuse term, so it alone is re-built rather
// than the whole sky setup).
type SkyPipeline struct {
	ToCubemap           *passes.ComputePass
	CubemapMips         []*passes.ComputePass
	DiffuseConvolution  *passes.ComputePass
	SpecularPerMip      []*passes.ComputePass
	BRDFLut             *passes.ComputePass

	EnvironmentCube handle.Image
	DiffuseProbe    handle.Image
	SpecularProbe   handle.Image
	BRDFLutImage    handle.Image

	builtOnce        bool
	lastDiffuseBRDF  DiffuseBRDF
}

// SetupSky runs the one-time sky/IBL setup sequence. Called lazily from
// the first RenderFrame (spec §4.8 "first frame: sky/environment
// one-time setup").
func SetupSky(factory *passes.Factory, sources SkySources, settings Settings) (*SkyPipeline, error) {
	sky := &SkyPipeline{lastDiffuseBRDF: settings.Shading.DiffuseBRDF}

	toCubemap, cs, err := buildCompute(factory, sources.ToCubemap)
	if err != nil {
		return nil, fmt.Errorf("frontend: building equirectangular-to-cubemap pass: %w", err)
	}
	sky.ToCubemap = toCubemap
	_ = cs

	mipCount := int(settings.SkyTextureMipCount)
	sky.CubemapMips = make([]*passes.ComputePass, 0, mipCount-1)
	for mip := 1; mip < mipCount; mip++ {
		p, _, err := buildCompute(factory, sources.CubemapDownsample)
		if err != nil {
			return nil, fmt.Errorf("frontend: building cubemap mip %d pass: %w", mip, err)
		}
		sky.CubemapMips = append(sky.CubemapMips, p)
	}

	diffuse, _, err := buildCompute(factory, sources.DiffuseConvolution)
	if err != nil {
		return nil, fmt.Errorf("frontend: building diffuse convolution pass: %w", err)
	}
	sky.DiffuseConvolution = diffuse

	// Specular convolution skips the top mipsTooSmall mips — the
	// probe's smallest mips would importance-sample an unstable kernel.
	specularMipCount := int(gpuformat.MipCount(settings.SpecularProbeResolution, settings.SpecularProbeResolution, 1))
	sky.SpecularPerMip = make([]*passes.ComputePass, 0, specularMipCount-mipsTooSmall)
	for mip := 0; mip < specularMipCount-mipsTooSmall; mip++ {
		p, _, err := buildCompute(factory, sources.SpecularConvolution)
		if err != nil {
			return nil, fmt.Errorf("frontend: building specular convolution mip %d pass: %w", mip, err)
		}
		sky.SpecularPerMip = append(sky.SpecularPerMip, p)
	}

	if err := sky.rebuildBRDFLut(factory, sources); err != nil {
		return nil, err
	}

	sky.builtOnce = true
	return sky, nil
}

// NeedsBRDFReissue reports whether cfg's diffuse term differs from the
// value the LUT was last built against.
func (s *SkyPipeline) NeedsBRDFReissue(cfg ShadingConfig) bool {
	return s.builtOnce && cfg.DiffuseBRDF != s.lastDiffuseBRDF
}

// ReissueBRDFLut rebuilds just the BRDF LUT pass, called when
// NeedsBRDFReissue reports true.
func (s *SkyPipeline) ReissueBRDFLut(factory *passes.Factory, sources SkySources, cfg ShadingConfig) error {
	if err := s.rebuildBRDFLut(factory, sources); err != nil {
		return err
	}
	s.lastDiffuseBRDF = cfg.DiffuseBRDF
	return nil
}

func (s *SkyPipeline) rebuildBRDFLut(factory *passes.Factory, sources SkySources) error {
	lut, _, err := buildCompute(factory, sources.BRDFLut)
	if err != nil {
		return fmt.Errorf("frontend: building BRDF LUT pass: %w", err)
	}
	s.BRDFLut = lut
	return nil
}

func buildCompute(factory *passes.Factory, src shaderio.Source) (*passes.ComputePass, shaderio.Compiled, error) {
	compiled, err := shaderio.Load(src)
	if err != nil {
		return nil, compiled, err
	}
	p, err := factory.BuildCompute(passes.ComputeDesc{Source: src}, compiled)
	return p, compiled, err
}
