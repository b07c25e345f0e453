package shaderio

import "testing"

const testWGSL = `
@group(0) @binding(0) var<uniform> globals: Globals;
@group(1) @binding(0) var<uniform> passUniforms: PassData;
@group(1) @binding(1) var gbufferTex: texture_2d<f32>;
@group(1) @binding(2) var gbufferSampler: sampler;
@group(2) @binding(0) var albedoTex: texture_2d<f32>;
@group(2) @binding(1) var normalTex: texture_2d<f32>;

struct VertexIn {
    @location(0) position: vec3<f32>,
    @location(1) uv: vec2<f32>,
    @location(2) normal: vec4<u32>,
}

@vertex
fn vs_main(in: VertexIn) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 1.0);
}
`

func TestReflectPassSetBindings(t *testing.T) {
	refl, err := Reflect(testWGSL)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if len(refl.Bindings) != 3 {
		t.Fatalf("len(Bindings) = %d, want 3 (set 1 only)", len(refl.Bindings))
	}
	for _, b := range refl.Bindings {
		if b.Group != 1 {
			t.Fatalf("binding %+v leaked from a non-pass set", b)
		}
	}
}

func TestReflectMaterialMask(t *testing.T) {
	refl, err := Reflect(testWGSL)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if refl.MaterialMask&MaterialAlbedo == 0 {
		t.Errorf("expected MaterialAlbedo set")
	}
	if refl.MaterialMask&MaterialNormal == 0 {
		t.Errorf("expected MaterialNormal set")
	}
	if refl.MaterialMask&MaterialSpecular != 0 {
		t.Errorf("MaterialSpecular should not be set")
	}
}

func TestReflectVertexMask(t *testing.T) {
	refl, err := Reflect(testWGSL)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if !refl.VertexMask.Has(AttrPosition) {
		t.Errorf("expected AttrPosition set")
	}
	if !refl.VertexMask.Has(AttrUV) {
		t.Errorf("expected AttrUV set")
	}
	if !refl.VertexMask.Has(AttrNormal) {
		t.Errorf("expected AttrNormal set")
	}
	if refl.VertexMask.Has(AttrTangent) {
		t.Errorf("AttrTangent should not be set")
	}
}

func TestClassifyBindingKinds(t *testing.T) {
	refl, err := Reflect(testWGSL)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	byName := make(map[string]SetBinding)
	for _, b := range refl.Bindings {
		byName[b.Name] = b
	}
	if byName["passUniforms"].Kind != BindingUniformBuffer {
		t.Errorf("passUniforms kind = %v, want BindingUniformBuffer", byName["passUniforms"].Kind)
	}
	if byName["gbufferTex"].Kind != BindingSampledTexture {
		t.Errorf("gbufferTex kind = %v, want BindingSampledTexture", byName["gbufferTex"].Kind)
	}
	if byName["gbufferSampler"].Kind != BindingSampler {
		t.Errorf("gbufferSampler kind = %v, want BindingSampler", byName["gbufferSampler"].Kind)
	}
}
