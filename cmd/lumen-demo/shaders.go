package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lumenrender/lumen/frontend"
	"github.com/lumenrender/lumen/shaderio"
)

// The frontend pipeline loads every technique's WGSL from disk rather
// than embedding it (shaderio.Load does a real os.Stat/mtime compare
// so hot-reload has something to watch), so this demo writes out a
// minimal-but-compilable WGSL source per slot under the shader
// directory its caller passes in (main.go uses lumen-demo-shaders
// under os.TempDir()) the first time it runs, then points a
// frontend.Sources at those paths. A real application would ship its
// own authored WGSL tree instead of generating stand-ins.

const computeStub = `@group(1) @binding(0) var<uniform> passInfo: vec4<f32>;

@compute @workgroup_size(8, 8, 1)
fn cs_main(@builtin(global_invocation_id) gid: vec3<u32>) {
}
`

const depthPrepassStub = `@group(1) @binding(0) var<uniform> viewProjection: mat4x4<f32>;

struct VertexIn {
	@location(0) position: vec3<f32>,
}

struct VertexOut {
	@builtin(position) clipPosition: vec4<f32>,
}

@vertex
fn vs_main(in: VertexIn) -> VertexOut {
	var out: VertexOut;
	out.clipPosition = viewProjection * vec4<f32>(in.position, 1.0);
	return out;
}

@fragment
fn fs_main() -> @location(0) vec2<f32> {
	return vec2<f32>(0.0, 0.0);
}
`

const forwardVertexStub = `@group(1) @binding(0) var<uniform> viewProjection: mat4x4<f32>;

struct VertexIn {
	@location(0) position: vec3<f32>,
	@location(1) uv: vec2<f32>,
	@location(2) normal: vec3<f32>,
}

struct VertexOut {
	@builtin(position) clipPosition: vec4<f32>,
	@location(0) uv: vec2<f32>,
	@location(1) normal: vec3<f32>,
}

@vertex
fn vs_main(in: VertexIn) -> VertexOut {
	var out: VertexOut;
	out.clipPosition = viewProjection * vec4<f32>(in.position, 1.0);
	out.uv = in.uv;
	out.normal = in.normal;
	return out;
}
`

const forwardFragmentStub = `@group(2) @binding(0) var albedoSampler: sampler;
@group(2) @binding(0) var albedoTexture: texture_2d<f32>;

struct VertexOut {
	@location(0) uv: vec2<f32>,
	@location(1) normal: vec3<f32>,
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
	return textureSample(albedoTexture, albedoSampler, in.uv);
}
`

// materializeShaders writes every stub WGSL source sources needs under
// shaderDir (creating it if necessary) and wires the resulting
// Sources struct's SourcePath/CachePath fields to point at them.
func materializeShaders(shaderDir, cacheDir string) (frontend.Sources, error) {
	if err := os.MkdirAll(shaderDir, 0o755); err != nil {
		return frontend.Sources{}, fmt.Errorf("lumen-demo: creating shader dir: %w", err)
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return frontend.Sources{}, fmt.Errorf("lumen-demo: creating shader cache dir: %w", err)
	}

	write := func(stem, content string) (string, error) {
		path := filepath.Join(shaderDir, stem+".wgsl")
		if _, err := os.Stat(path); err != nil {
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return "", fmt.Errorf("lumen-demo: writing %s: %w", path, err)
			}
		}
		return path, nil
	}

	source := func(stem, content string) (shaderio.Source, error) {
		path, err := write(stem, content)
		if err != nil {
			return shaderio.Source{}, err
		}
		return shaderio.Source{
			SourcePath: path,
			CachePath:  filepath.Join(cacheDir, stem+".spv"),
		}, nil
	}

	var sources frontend.Sources
	var err error

	if sources.Core.DepthPrepass, err = source("depth_prepass", depthPrepassStub); err != nil {
		return sources, err
	}
	if sources.Core.HiZPyramid, err = source("hi_z_pyramid", computeStub); err != nil {
		return sources, err
	}
	if sources.Core.Forward, err = source("forward_vs", forwardVertexStub); err != nil {
		return sources, err
	}
	if sources.Core.ForwardFragment, err = source("forward_fs", forwardFragmentStub); err != nil {
		return sources, err
	}
	if sources.Core.Tonemap, err = source("tonemap", computeStub); err != nil {
		return sources, err
	}

	if sources.Shadow.LightMatrix, err = source("shadow_light_matrix", computeStub); err != nil {
		return sources, err
	}
	if sources.Shadow.Cascade, err = source("shadow_cascade", depthPrepassStub); err != nil {
		return sources, err
	}

	if sources.Exposure.Reset, err = source("exposure_reset", computeStub); err != nil {
		return sources, err
	}
	if sources.Exposure.PerTile, err = source("exposure_per_tile", computeStub); err != nil {
		return sources, err
	}
	if sources.Exposure.Combine, err = source("exposure_combine", computeStub); err != nil {
		return sources, err
	}
	if sources.Exposure.PreExpose, err = source("exposure_pre_expose", computeStub); err != nil {
		return sources, err
	}

	if sources.SDFGI.FrustumCull, err = source("sdfgi_frustum_cull", computeStub); err != nil {
		return sources, err
	}
	if sources.SDFGI.TileCull, err = source("sdfgi_tile_cull", computeStub); err != nil {
		return sources, err
	}
	if sources.SDFGI.Trace, err = source("sdfgi_trace", computeStub); err != nil {
		return sources, err
	}
	if sources.SDFGI.FilterSpatial, err = source("sdfgi_filter_spatial", computeStub); err != nil {
		return sources, err
	}
	if sources.SDFGI.FilterTemporal, err = source("sdfgi_filter_temporal", computeStub); err != nil {
		return sources, err
	}
	if sources.SDFGI.Upscale, err = source("sdfgi_upscale", computeStub); err != nil {
		return sources, err
	}

	if sources.TAA.Supersample, err = source("taa_supersample", computeStub); err != nil {
		return sources, err
	}
	if sources.TAA.Resolve, err = source("taa_resolve", computeStub); err != nil {
		return sources, err
	}

	if sources.Bloom.Downsample, err = source("bloom_downsample", computeStub); err != nil {
		return sources, err
	}
	if sources.Bloom.Upsample, err = source("bloom_upsample", computeStub); err != nil {
		return sources, err
	}

	if sources.Sky.ToCubemap, err = source("sky_to_cubemap", computeStub); err != nil {
		return sources, err
	}
	if sources.Sky.CubemapDownsample, err = source("sky_cubemap_downsample", computeStub); err != nil {
		return sources, err
	}
	if sources.Sky.DiffuseConvolution, err = source("sky_diffuse_convolution", computeStub); err != nil {
		return sources, err
	}
	if sources.Sky.SpecularConvolution, err = source("sky_specular_convolution", computeStub); err != nil {
		return sources, err
	}
	if sources.Sky.BRDFLut, err = source("sky_brdf_lut", computeStub); err != nil {
		return sources, err
	}

	return sources, nil
}
