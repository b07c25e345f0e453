package frontend

import "github.com/lumenrender/lumen/handle"

// RenderTargetSet holds the colour/motion/depth images one frame writes
// plus the previous frame's copies TAA and SDF GI's temporal filter read
// from, swapped at the end of RenderFrame (spec §4.8/§4.9: "render
// target set double-buffering (current/previous) for TAA/temporal
// filtering").
type RenderTargetSet struct {
	Color  [2]handle.Image
	Motion [2]handle.Image
	Depth  [2]handle.Image

	// History is the TAA-resolved image fed back as next frame's
	// temporal-clip reference, distinct from the raw colour buffer.
	History [2]handle.Image

	current int
}

// NewRenderTargetSet wraps an already-allocated pair of images per
// channel — allocation itself is the caller's (backend's) job, since
// this package only orchestrates passes, not image lifetime.
func NewRenderTargetSet(color, motion, depth, history [2]handle.Image) *RenderTargetSet {
	return &RenderTargetSet{Color: color, Motion: motion, Depth: depth, History: history}
}

// Current returns this frame's write target for each channel.
func (r *RenderTargetSet) Current() (color, motion, depth, history handle.Image) {
	return r.Color[r.current], r.Motion[r.current], r.Depth[r.current], r.History[r.current]
}

// Previous returns last frame's target for each channel, the
// reprojection source for TAA and SDF GI's spatiotemporal filter.
func (r *RenderTargetSet) Previous() (color, motion, depth, history handle.Image) {
	prev := r.current ^ 1
	return r.Color[prev], r.Motion[prev], r.Depth[prev], r.History[prev]
}

// Swap flips current/previous for the next frame.
func (r *RenderTargetSet) Swap() {
	r.current ^= 1
}
