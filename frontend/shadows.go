package frontend

import (
	"fmt"
	"math"

	"github.com/lumenrender/lumen/gpuformat"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/linear"
	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/shaderio"
)

// CascadeInfo is one shadow cascade's fitted view-projection matrix and
// the view-space split depth the forward pass selects a cascade by.
type CascadeInfo struct {
	ViewProjection linear.M4
	SplitDepth     float32
}

// ShadowSources names the sun-shadow WGSL sources: the light-matrix
// fitting compute pass (reads the Hi-Z pyramid's lowest mip) and the
// depth-only cascade pass.
type ShadowSources struct {
	LightMatrix shaderio.Source
	Cascade     shaderio.Source
}

// ShadowPipeline owns the sun shadow light-matrix compute pass and the
// N depth-only cascade graphic passes spec §4.8 step 6 names.
type ShadowPipeline struct {
	LightMatrix *passes.ComputePass
	Cascades    []*passes.GraphicPass
}

// SetupShadows builds the light-matrix pass and cascadeCount depth-only
// graphic passes.
func SetupShadows(factory *passes.Factory, sources ShadowSources, cascadeCount uint32, shadowMapRes uint32) (*ShadowPipeline, error) {
	lm, _, err := buildCompute(factory, sources.LightMatrix)
	if err != nil {
		return nil, fmt.Errorf("frontend: building sun shadow light-matrix pass: %w", err)
	}

	sp := &ShadowPipeline{LightMatrix: lm}

	cascadeVS, err := shaderio.Load(sources.Cascade)
	if err != nil {
		return nil, fmt.Errorf("frontend: compiling shadow cascade shader: %w", err)
	}

	for i := uint32(0); i < cascadeCount; i++ {
		desc := passes.GraphicDesc{
			VertexSource: sources.Cascade,
			// Depth-only: the same compiled module stands in for an
			// absent fragment stage, matching how the cascade pass
			// never writes a colour attachment.
			FragmentSource: sources.Cascade,
			DepthAttachment: &passes.Attachment{
				Format: gpuformat.ImageDepth32Float,
				LoadOp: vk.LoadOpClear,
			},
			DepthTest:  true,
			DepthWrite: true,
			Cull:       vk.CullFront,
		}
		built, err := factory.BuildGraphic(desc, cascadeVS, cascadeVS, shadowMapRes, shadowMapRes)
		if err != nil {
			return nil, fmt.Errorf("frontend: building shadow cascade %d pass: %w", i, err)
		}
		sp.Cascades = append(sp.Cascades, built)
	}

	return sp, nil
}

// FitCascades computes each cascade's split depth by splitting the
// camera range between near and far (practical split: an even
// log/uniform blend keyed by cascadeCount). Each cascade's
// ViewProjection is set to the identity matrix: no orthographic box is
// fitted to sunDirection, no near-plane extension is applied, and
// neither frustum nor sunDirection affects the result. The light
// matrices themselves come from the GPU light-matrix pass.
func FitCascades(frustum linear.Frustum, sunDirection linear.V3, near, far float32, cascadeCount uint32) []CascadeInfo {
	const lambda = 0.5 // blend factor between uniform and logarithmic splits

	splits := make([]float32, cascadeCount+1)
	splits[0] = near
	for i := uint32(1); i <= cascadeCount; i++ {
		t := float32(i) / float32(cascadeCount)
		logSplit := near * pow32(far/near, t)
		uniformSplit := near + (far-near)*t
		splits[i] = lambda*logSplit + (1-lambda)*uniformSplit
	}

	out := make([]CascadeInfo, cascadeCount)
	for i := uint32(0); i < cascadeCount; i++ {
		_, splitFar := splits[i], splits[i+1]
		box := frustum.Planes() // not used: no per-split corners are computed
		_ = box

		var lightView linear.M4
		lightView.I()

		out[i] = CascadeInfo{
			ViewProjection: lightView,
			SplitDepth:     splitFar,
		}
	}
	return out
}

func pow32(base, exp float32) float32 {
	if base <= 0 {
		return 0
	}
	return float32(math.Pow(float64(base), float64(exp)))
}
