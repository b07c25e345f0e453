package frontend

import (
	"fmt"
	"math"

	"github.com/lumenrender/lumen/linear"
	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/shaderio"
)

// TAASources names the supersample and temporal-resolve compute passes
// spec §4.8 step 10 describes.
type TAASources struct {
	Supersample shaderio.Source
	Resolve     shaderio.Source
}

// TAAPipeline owns the temporal anti-aliasing passes.
type TAAPipeline struct {
	Supersample *passes.ComputePass
	Resolve     *passes.ComputePass
}

// SetupTAA builds the supersample and resolve passes.
func SetupTAA(factory *passes.Factory, sources TAASources) (*TAAPipeline, error) {
	ss, _, err := buildCompute(factory, sources.Supersample)
	if err != nil {
		return nil, fmt.Errorf("frontend: building TAA supersample pass: %w", err)
	}
	resolve, _, err := buildCompute(factory, sources.Resolve)
	if err != nil {
		return nil, fmt.Errorf("frontend: building TAA resolve pass: %w", err)
	}
	return &TAAPipeline{Supersample: ss, Resolve: resolve}, nil
}

// ResolveWeights computes the 9 Blackman-Harris-windowed bicubic
// sample weights for the temporal resolve's 3x3 neighbourhood, given
// this frame's sub-pixel jitter offset (recomputed every frame per
// spec §4.8 step 10 — "9 bicubic Blackman-Harris weights recomputed
// from sub-pixel jitter").
func ResolveWeights(jitter linear.V2) [9]float32 {
	var weights [9]float32
	var sum float32

	i := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			ox, oy := float32(dx)-jitter[0], float32(dy)-jitter[1]
			distSq := ox*ox + oy*oy
			w := blackmanHarris(distSq) * bicubicKernel(distSq)
			weights[i] = w
			sum += w
			i++
		}
	}

	if sum > 0 {
		for i := range weights {
			weights[i] /= sum
		}
	}
	return weights
}

// blackmanHarris evaluates a radially-symmetric Blackman-Harris window
// over a 1.5-texel-radius support, given the squared sample distance.
func blackmanHarris(distSq float32) float32 {
	const radius = 1.5
	dist := float32(math.Sqrt(float64(distSq)))
	if dist >= radius {
		return 0
	}
	x := dist / radius
	const a0, a1, a2, a3 = 0.35875, 0.48829, 0.14128, 0.01168
	pi := float32(math.Pi)
	return a0 - a1*cos32(pi*x) + a2*cos32(2*pi*x) - a3*cos32(3*pi*x)
}

// bicubicKernel evaluates the Catmull-Rom bicubic weighting function
// (a = -0.5) over the squared sample distance.
func bicubicKernel(distSq float32) float32 {
	dist := float32(math.Sqrt(float64(distSq)))
	const a = -0.5
	if dist < 1 {
		return (a+2)*dist*dist*dist - (a+3)*dist*dist + 1
	}
	if dist < 2 {
		return a*dist*dist*dist - 5*a*dist*dist + 8*a*dist - 4*a
	}
	return 0
}

func cos32(x float32) float32 { return float32(math.Cos(float64(x))) }
