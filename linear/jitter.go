package linear

// JitterSampleCount is the length of the sub-pixel jitter cycle TAA
// draws from before repeating (spec §8 "Halton/Hammersley 8-sample
// cycle repeats every 8 frames").
const JitterSampleCount = 8

// radicalInverse computes the base-b radical inverse (van der Corput
// sequence) of index i, the building block of both Halton and
// Hammersley low-discrepancy sequences.
func radicalInverse(base, i uint32) float32 {
	var result float64
	f := 1.0
	b := float64(base)
	for i > 0 {
		f /= b
		result += f * float64(i%base)
		i /= base
	}
	return float32(result)
}

// Halton2D returns the i'th 2D Halton sample (bases 2 and 3), in [0,1)^2.
func Halton2D(i uint32) V2 {
	return V2{radicalInverse(2, i), radicalInverse(3, i)}
}

// JitterOffset returns the sub-pixel jitter offset for frameIndex,
// cycling through JitterSampleCount Halton samples (indices 1..8 —
// index 0 of the van der Corput sequence is always zero, which would
// collapse one frame of the cycle to no jitter at all) centred on
// zero and scaled to +-0.5 pixel.
func JitterOffset(frameIndex uint64) V2 {
	i := uint32(frameIndex%JitterSampleCount) + 1
	h := Halton2D(i)
	return V2{h[0] - 0.5, h[1] - 0.5}
}

// ApplyProjectionMatrixJitter returns a copy of p with jitter (in
// normalised device coordinates, i.e. already divided by the
// half-resolution) added to the projection's x/y offset terms. A
// zero jitter leaves p unchanged (spec §8).
func ApplyProjectionMatrixJitter(p M4, jitter V2) M4 {
	p[2][0] += jitter[0]
	p[2][1] += jitter[1]
	return p
}
