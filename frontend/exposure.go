package frontend

import (
	"fmt"

	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/shaderio"
)

// ExposureSources names the four compute passes spec §4.8 step 7
// ("histogram auto-exposure") chains: per-tile histogram build, a
// reset pass clearing the combined histogram before accumulation,
// tile-histogram combine, and the final pre-expose pass writing the
// light buffer's exposure multiplier.
type ExposureSources struct {
	Reset    shaderio.Source
	PerTile  shaderio.Source
	Combine  shaderio.Source
	PreExpose shaderio.Source
}

// ExposurePipeline owns the four auto-exposure compute passes.
type ExposurePipeline struct {
	Reset     *passes.ComputePass
	PerTile   *passes.ComputePass
	Combine   *passes.ComputePass
	PreExpose *passes.ComputePass
}

// SetupExposure builds the four exposure passes from their sources
// alone. settings is not read here: no histogram bin range or tile size
// reaches the compiled shaders, either as a cache key or as a runtime
// uniform.
func SetupExposure(factory *passes.Factory, sources ExposureSources, settings HistogramSettings) (*ExposurePipeline, error) {
	ep := &ExposurePipeline{}

	build := func(name string, src shaderio.Source) (*passes.ComputePass, error) {
		p, _, err := buildCompute(factory, src)
		if err != nil {
			return nil, fmt.Errorf("frontend: building %s pass: %w", name, err)
		}
		return p, nil
	}

	var err error
	if ep.Reset, err = build("histogram reset", sources.Reset); err != nil {
		return nil, err
	}
	if ep.PerTile, err = build("histogram per-tile", sources.PerTile); err != nil {
		return nil, err
	}
	if ep.Combine, err = build("histogram combine", sources.Combine); err != nil {
		return nil, err
	}
	if ep.PreExpose, err = build("pre-expose lights", sources.PreExpose); err != nil {
		return nil, err
	}

	return ep, nil
}

// TileDispatchCount returns the per-tile histogram pass's 2-D dispatch
// count for a screenWidth x screenHeight target.
func TileDispatchCount(settings HistogramSettings, screenWidth, screenHeight uint32) (x, y uint32) {
	x = (screenWidth + settings.TileSizeX - 1) / settings.TileSizeX
	y = (screenHeight + settings.TileSizeY - 1) / settings.TileSizeY
	return x, y
}
