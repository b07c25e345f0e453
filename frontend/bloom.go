package frontend

import (
	"fmt"

	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/shaderio"
)

// BloomMipCount is the fixed 6-mip down/up chain spec §4.8 step 11
// names.
const BloomMipCount = 6

// BloomSources names the downsample and upsample-and-add compute
// shaders, each instanced once per mip level of the chain.
type BloomSources struct {
	Downsample shaderio.Source
	Upsample   shaderio.Source
}

// BloomPipeline owns the 6-mip down/up additive bloom chain.
type BloomPipeline struct {
	Down [BloomMipCount]*passes.ComputePass
	Up   [BloomMipCount]*passes.ComputePass
}

// SetupBloom builds the down/up chain.
func SetupBloom(factory *passes.Factory, sources BloomSources) (*BloomPipeline, error) {
	bp := &BloomPipeline{}
	for mip := 0; mip < BloomMipCount; mip++ {
		down, _, err := buildCompute(factory, sources.Downsample)
		if err != nil {
			return nil, fmt.Errorf("frontend: building bloom downsample mip %d pass: %w", mip, err)
		}
		bp.Down[mip] = down

		up, _, err := buildCompute(factory, sources.Upsample)
		if err != nil {
			return nil, fmt.Errorf("frontend: building bloom upsample mip %d pass: %w", mip, err)
		}
		bp.Up[mip] = up
	}
	return bp, nil
}
