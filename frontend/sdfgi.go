package frontend

import (
	"fmt"

	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/shaderio"
)

// SDFGISources names the five-stage SDF indirect diffuse chain spec
// §4.9 describes: camera frustum culling, per-tile instance culling,
// the half/full-resolution diffuse trace, and the spatial→temporal→
// spatial filter chain (an optional upscale follows the last spatial
// pass when tracing ran at half resolution).
type SDFGISources struct {
	FrustumCull    shaderio.Source
	TileCull       shaderio.Source
	Trace          shaderio.Source
	FilterSpatial  shaderio.Source
	FilterTemporal shaderio.Source
	Upscale        shaderio.Source
}

// SDFGITileSize is the fixed 32x32 tile-culling granularity spec §4.9
// names, with a per-tile instance cap of 100.
const (
	SDFGITileSize         = 32
	SDFGIMaxInstancesPerTile = 100
)

// SDFGIPipeline owns the indirect-diffuse compute passes: six, plus
// Upscale when tracing at half resolution.
type SDFGIPipeline struct {
	FrustumCull    *passes.ComputePass
	TileCull       *passes.ComputePass
	Trace          *passes.ComputePass
	FilterSpatialA *passes.ComputePass
	FilterTemporal *passes.ComputePass
	FilterSpatialB *passes.ComputePass
	Upscale        *passes.ComputePass

	// HalfResolution selects whether Trace runs at half or full
	// target resolution; Upscale only runs when true.
	HalfResolution bool
}

// SetupSDFGI builds the six (or seven, with upscale) SDF GI passes.
func SetupSDFGI(factory *passes.Factory, sources SDFGISources, halfResolution bool) (*SDFGIPipeline, error) {
	sp := &SDFGIPipeline{HalfResolution: halfResolution}

	build := func(name string, src shaderio.Source) (*passes.ComputePass, error) {
		p, _, err := buildCompute(factory, src)
		if err != nil {
			return nil, fmt.Errorf("frontend: building sdf gi %s pass: %w", name, err)
		}
		return p, nil
	}

	var err error
	if sp.FrustumCull, err = build("frustum cull", sources.FrustumCull); err != nil {
		return nil, err
	}
	if sp.TileCull, err = build("tile cull", sources.TileCull); err != nil {
		return nil, err
	}
	if sp.Trace, err = build("trace", sources.Trace); err != nil {
		return nil, err
	}
	// The filter chain runs spatial → temporal → spatial, ping-ponging
	// so the temporal pass always reads a freshly spatially-denoised
	// input and a stable history (spec §4.9 stage 5).
	if sp.FilterSpatialA, err = build("spatial filter (pre-temporal)", sources.FilterSpatial); err != nil {
		return nil, err
	}
	if sp.FilterTemporal, err = build("temporal filter", sources.FilterTemporal); err != nil {
		return nil, err
	}
	if sp.FilterSpatialB, err = build("spatial filter (post-temporal)", sources.FilterSpatial); err != nil {
		return nil, err
	}

	if halfResolution {
		if sp.Upscale, err = build("upscale", sources.Upscale); err != nil {
			return nil, err
		}
	}

	return sp, nil
}

// TileCullDispatchCount returns the 2-D dispatch count for the 32x32
// tile-culling pass at the given target resolution.
func TileCullDispatchCount(screenWidth, screenHeight uint32) (x, y uint32) {
	x = (screenWidth + SDFGITileSize - 1) / SDFGITileSize
	y = (screenHeight + SDFGITileSize - 1) / SDFGITileSize
	return x, y
}
