package frontend

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/layout"
	"github.com/lumenrender/lumen/linear"
	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/rgraph"
)

// enqueueMeshDraws turns this frame's frustum-culled mesh list into draw
// commands for both the forward pass and every shadow cascade (spec
// §4.8 steps 6 and 9: the same visible set feeds the cascade depth-only
// pass and the forward shading pass, save for any caster-only meshes a
// full implementation would cull separately per cascade frustum).
func (p *Pipeline) enqueueMeshDraws(q *rgraph.DrawQueue, visible []FrontendMeshHandle) {
	if p.meshResolver == nil {
		return
	}
	for _, h := range visible {
		s := &p.meshStates[h.index]
		buffers, ok := p.meshResolver(s.BackendHandle)
		if !ok {
			continue
		}
		cmd := rgraph.DrawCommand{
			VertexBuffer:    buffers.VertexBuffer,
			IndexBuffer:     buffers.IndexBuffer,
			IndexCount:      buffers.IndexCount,
			Index32:         buffers.Index32,
			MaterialSet:     buffers.MaterialSet,
			PrimaryMatrix:   flattenM4(s.ModelMatrix),
			SecondaryMatrix: flattenM4(s.PreviousFrameModelMatrix),
		}
		q.EnqueueDraw(passForward, cmd)
		for range p.shadows.Cascades {
			q.EnqueueDraw(passShadowCascade, cmd)
		}
	}
}

// flattenM4 rows out a column-vector M4 into the row-major 16-float
// layout draw commands carry as push-constant payloads.
func flattenM4(m linear.M4) [16]float32 {
	var out [16]float32
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row*4+col] = m[col][row]
		}
	}
	return out
}

// Sources bundles every WGSL source this package ever loads, grouped by
// the technique that consumes it.
type Sources struct {
	Sky      SkySources
	Shadow   ShadowSources
	Exposure ExposureSources
	SDFGI    SDFGISources
	TAA      TAASources
	Core     CoreSources
	Bloom    BloomSources
}

// rgraph pass-name constants, used as Execution.Name / DrawQueue keys.
const (
	passDepthPrepass   = "depth_prepass"
	passHiZPyramid     = "hi_z_pyramid"
	passLightMatrix    = "sun_shadow_light_matrix"
	passShadowCascade  = "sun_shadow_cascade"
	passHistogramReset = "histogram_reset"
	passHistogramTile  = "histogram_per_tile"
	passHistogramCombine = "histogram_combine"
	passPreExposeLights = "pre_expose_lights"
	passForward        = "forward_shading"
	passSDFFrustumCull = "sdfgi_frustum_cull"
	passSDFTileCull    = "sdfgi_tile_cull"
	passSDFTrace       = "sdfgi_trace"
	passSDFFilterA     = "sdfgi_filter_spatial_a"
	passSDFFilterTemporal = "sdfgi_filter_temporal"
	passSDFFilterB     = "sdfgi_filter_spatial_b"
	passSDFUpscale     = "sdfgi_upscale"
	passTAASupersample = "taa_supersample"
	passTAAResolve     = "taa_resolve"
	passBloomDown      = "bloom_down"
	passBloomUp        = "bloom_up"
	passTonemap        = "tonemap"
)

// computeWorkgroupSize is the fixed 2-D workgroup size every screen-
// space compute pass in this package dispatches with, matching
// HiZDispatchCount's.
const computeWorkgroupSize = 16

// dispatchGroups2D returns the group counts covering a width x height
// target at the fixed workgroup size.
func dispatchGroups2D(width, height uint32) (x, y uint32) {
	x = (width + computeWorkgroupSize - 1) / computeWorkgroupSize
	y = (height + computeWorkgroupSize - 1) / computeWorkgroupSize
	return x, y
}

// bloomDownName and bloomUpName give each mip level of the bloom chain
// its own rgraph pass name, since each level is a distinct dispatch
// with its own parent in the chain (spec §4.8 step 11).
func bloomDownName(mip int) string { return fmt.Sprintf("%s_%d", passBloomDown, mip) }
func bloomUpName(mip int) string   { return fmt.Sprintf("%s_%d", passBloomUp, mip) }

// Pipeline is the concrete per-frame rendering pipeline: the fixed
// sequence of passes spec §4.8/§4.9 name, wired through rgraph. It
// mirrors RenderFrontend's shape — one object owning every pass handle
// plus the frontend-local mesh list and frame state.
type Pipeline struct {
	factory *passes.Factory
	sources Sources
	settings Settings

	core     *CorePasses
	sky      *SkyPipeline
	shadows  *ShadowPipeline
	exposure *ExposurePipeline
	sdfgi    *SDFGIPipeline
	taa      *TAAPipeline
	bloom    *BloomPipeline

	targets *RenderTargetSet
	global  GlobalShaderInfo

	meshStates   []MeshState
	drawList     []FrontendMeshHandle
	meshResolver MeshResolver

	screenWidth, screenHeight uint32
	firstFrame                bool
	frameIndex                uint64
	cameraCut                 bool

	cameraExtrinsic CameraExtrinsic
	cameraIntrinsic CameraIntrinsic
	cameraFrustum   linear.Frustum

	sunDirection linear.V3

	lastFrameTime time.Time
}

// New creates a Pipeline bound to a pass factory. The heavy one-time
// sky/IBL setup is deferred to the first RenderFrame call (spec §4.8:
// "first frame: sky/environment one-time setup").
func New(factory *passes.Factory, sources Sources, settings Settings, width, height uint32) (*Pipeline, error) {
	core, err := SetupCore(factory, sources.Core, settings.Shading, width, height)
	if err != nil {
		return nil, err
	}
	shadows, err := SetupShadows(factory, sources.Shadow, settings.CascadeCount, settings.ShadowMapResolution)
	if err != nil {
		return nil, err
	}
	exposure, err := SetupExposure(factory, sources.Exposure, settings.Histogram)
	if err != nil {
		return nil, err
	}
	sdfgi, err := SetupSDFGI(factory, sources.SDFGI, true)
	if err != nil {
		return nil, err
	}
	taa, err := SetupTAA(factory, sources.TAA)
	if err != nil {
		return nil, err
	}
	bloom, err := SetupBloom(factory, sources.Bloom)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		factory:      factory,
		sources:      sources,
		settings:     settings,
		core:         core,
		shadows:      shadows,
		exposure:     exposure,
		sdfgi:        sdfgi,
		taa:          taa,
		bloom:        bloom,
		screenWidth:  width,
		screenHeight: height,
		firstFrame:   true,
		sunDirection: linear.V3{0, -1, 0},
	}, nil
}

// BindTargets assigns the double-buffered colour/motion/depth/history
// images this pipeline renders into; the backend allocates these
// (image lifetime is not this package's concern).
func (p *Pipeline) BindTargets(targets *RenderTargetSet) { p.targets = targets }

// SetMeshResolver installs the backend callback enqueueMeshDraws uses
// to turn a mesh's handle.Mesh into the native buffers a draw command
// binds. Must be called before the first RenderFrame that issues any
// mesh draws.
func (p *Pipeline) SetMeshResolver(r MeshResolver) { p.meshResolver = r }

// SetResolution updates the screen size that later dispatch counts are
// computed from and logs the change. It rebuilds no framebuffer: that
// is the caller's responsibility via passes.Factory.Rebuild, since this
// package does not own image views.
func (p *Pipeline) SetResolution(width, height uint32) {
	if width == p.screenWidth && height == p.screenHeight {
		return
	}
	p.screenWidth, p.screenHeight = width, height
	slog.Info("frontend: resolution changed", "width", width, "height", height)
}

// SetCameraExtrinsic updates the camera pose/intrinsics consumed this
// frame and recomputes the CPU-side view frustum used for mesh and
// shadow-cascade culling.
func (p *Pipeline) SetCameraExtrinsic(extrinsic CameraExtrinsic, intrinsic CameraIntrinsic) {
	p.cameraExtrinsic = extrinsic
	p.cameraIntrinsic = intrinsic
	p.cameraFrustum = linear.FromCamera(
		extrinsic.Position, extrinsic.Forward, extrinsic.Up, extrinsic.Right,
		intrinsic.FovYDegrees*3.14159265/180, intrinsic.AspectRatio, intrinsic.Near, intrinsic.Far,
	)
}

// NewFrame advances per-frame bookkeeping (frame timestamp and index) —
// called once at the start of each renderFrame, before any pass is
// recorded.
func (p *Pipeline) NewFrame() {
	now := time.Now()
	if p.lastFrameTime.IsZero() {
		p.lastFrameTime = now
	}
	p.lastFrameTime = now
	p.frameIndex++
}

// cullVisibleMeshes returns the draw-list meshes whose bounding box
// intersects the current camera frustum, matching
// RenderFrontend::issueMeshDraws's camera-culling step.
func (p *Pipeline) cullVisibleMeshes() []FrontendMeshHandle {
	visible := make([]FrontendMeshHandle, 0, len(p.drawList))
	for _, h := range p.drawList {
		s := &p.meshStates[h.index]
		bb := s.BoundingBox.Transformed(&s.ModelMatrix)
		if p.cameraFrustum.Intersects(bb) {
			visible = append(visible, h)
		}
	}
	return visible
}

// RenderFrame records one frame's passes into rec, in the fixed order
// spec §4.8/§4.9 describe, draining draws from q. jitter/prevJitter are
// this frame's and last frame's sub-pixel TAA offsets (spec §9 design
// note: jitter is the caller's responsibility via linear.JitterOffset,
// since only the backend knows the frame index sequence across resets).
func (p *Pipeline) RenderFrame(rec *rgraph.Recorder, q *rgraph.DrawQueue, jitter, prevJitter linear.V2, deltaTime float32) error {
	if p.firstFrame {
		sky, err := SetupSky(p.factory, p.sources.Sky, p.settings)
		if err != nil {
			return err
		}
		p.sky = sky
		p.firstFrame = false
	}

	if p.sky.NeedsBRDFReissue(p.settings.Shading) {
		if err := p.sky.ReissueBRDFLut(p.factory, p.sources.Sky, p.settings.Shading); err != nil {
			return err
		}
	}
	if p.core.NeedsForwardRebuild(p.settings.Shading) {
		if err := p.core.RebuildForward(p.factory, p.settings.Shading, p.screenWidth, p.screenHeight); err != nil {
			return err
		}
	}

	timeSeconds := float32(p.frameIndex) * deltaTime
	viewProjection := p.buildViewProjectionMatrix()
	updateGlobalShaderInfo(&p.global, p.cameraExtrinsic, p.cameraIntrinsic, viewProjection,
		jitter, prevJitter, int32(p.screenWidth), int32(p.screenHeight),
		deltaTime, timeSeconds, p.frameIndex, p.cameraCut)
	p.cameraCut = false

	visible := p.cullVisibleMeshes()
	slog.Debug("frontend: recording frame", "frame", p.frameIndex, "visible_meshes", len(visible))

	p.enqueueMeshDraws(q, visible)
	p.enqueueDispatches(q)

	order := rgraph.Order(p.buildExecutions())

	for _, e := range order {
		if e.IsGraphic {
			draws, _ := q.Drain(e.Name)
			rec.RecordGraphic(e, p.passForName(e.Name), draws)
		} else {
			_, dispatches := q.Drain(e.Name)
			rec.RecordCompute(e, p.computePassForName(e.Name), dispatches)
		}
	}

	if p.targets != nil {
		p.targets.Swap()
	}
	return nil
}

func (p *Pipeline) buildViewProjectionMatrix() linear.M4 {
	var view linear.M4
	view.I()
	proj := linear.Perspective(p.cameraIntrinsic.FovYDegrees*3.14159265/180, p.cameraIntrinsic.AspectRatio,
		p.cameraIntrinsic.Near, p.cameraIntrinsic.Far)
	var vp linear.M4
	vp.Mul(&proj, &view)
	return vp
}

// buildExecutions assembles this frame's rgraph.Execution list with
// parent dependencies chained in the fixed order spec §4.8/§4.9
// describe. Accesses/Attachments are wired from whatever this package
// has a concrete handle.Image for: the double-buffered render targets.
// Passes whose intermediate resources (shadow cascade depth, exposure
// histogram buffers, SDF GI probe/trace textures) are allocated inside
// their own Setup call and never surface as a handle.Image here carry
// no Accesses — the barrier these passes need is a pre-existing gap
// this package cannot close without those setups exposing their
// resources (see DESIGN.md).
func (p *Pipeline) buildExecutions() []rgraph.Execution {
	// Every Access below references p.targets, only valid once the
	// caller has bound one — referencing an invalid handle.Image would
	// make the tracker panic (it requires every accessed image to have
	// been registered). Accesses/Attachments stay nil until then, which
	// Synthesize treats as "nothing to barrier", matching a pipeline
	// that has not yet been wired to real images.
	targetAccess := func(img handle.Image, binding layout.Binding) layout.Access {
		return layout.Access{Image: img, Binding: binding, MipCount: 1}
	}

	var depthPrepassAttachments, forwardAttachments []layout.Access
	var hiZAccesses, taaSuperAccesses, taaResolveAccesses, tonemapAccesses []layout.Access
	if p.targets != nil {
		color, motion, depth, history := p.targets.Current()
		_, _, _, prevHistory := p.targets.Previous()
		depthPrepassAttachments = []layout.Access{
			targetAccess(motion, layout.BindingColorAttachment),
			targetAccess(depth, layout.BindingDepthAttachment),
		}
		forwardAttachments = []layout.Access{
			targetAccess(color, layout.BindingColorAttachment),
			targetAccess(depth, layout.BindingDepthAttachment),
		}
		hiZAccesses = []layout.Access{targetAccess(depth, layout.BindingSampledImage)}
		taaSuperAccesses = []layout.Access{
			targetAccess(color, layout.BindingSampledImage),
			targetAccess(motion, layout.BindingSampledImage),
		}
		taaResolveAccesses = []layout.Access{
			targetAccess(color, layout.BindingSampledImage),
			targetAccess(motion, layout.BindingSampledImage),
			targetAccess(prevHistory, layout.BindingSampledImage),
			targetAccess(history, layout.BindingStorageImage),
		}
		tonemapAccesses = []layout.Access{targetAccess(color, layout.BindingSampledImage)}
	}

	execs := []rgraph.Execution{
		{Name: passDepthPrepass, IsGraphic: true, Attachments: depthPrepassAttachments},
		{Name: passHiZPyramid, Parents: []string{passDepthPrepass}, Accesses: hiZAccesses},
		{Name: passLightMatrix, Parents: []string{passHiZPyramid}},
		{Name: passShadowCascade, IsGraphic: true, Parents: []string{passLightMatrix}},
		{Name: passHistogramReset, Parents: []string{passDepthPrepass}},
		{Name: passHistogramTile, Parents: []string{passHistogramReset}},
		{Name: passHistogramCombine, Parents: []string{passHistogramTile}},
		{Name: passPreExposeLights, Parents: []string{passHistogramCombine}},
		{Name: passForward, IsGraphic: true, Parents: []string{passShadowCascade, passPreExposeLights}, Attachments: forwardAttachments},
		{Name: passSDFFrustumCull, Parents: []string{passForward}},
		{Name: passSDFTileCull, Parents: []string{passSDFFrustumCull}},
		{Name: passSDFTrace, Parents: []string{passSDFTileCull}},
		{Name: passSDFFilterA, Parents: []string{passSDFTrace}},
		{Name: passSDFFilterTemporal, Parents: []string{passSDFFilterA}},
		{Name: passSDFFilterB, Parents: []string{passSDFFilterTemporal}},
		{Name: passTAASupersample, Parents: []string{passSDFFilterB}, Accesses: taaSuperAccesses},
		{Name: passTAAResolve, Parents: []string{passTAASupersample}, Accesses: taaResolveAccesses},
	}

	bloomParent := passTAAResolve
	for mip := 0; mip < BloomMipCount; mip++ {
		execs = append(execs, rgraph.Execution{Name: bloomDownName(mip), Parents: []string{bloomParent}})
		bloomParent = bloomDownName(mip)
	}
	bloomParent = bloomDownName(BloomMipCount - 1)
	for mip := BloomMipCount - 1; mip >= 0; mip-- {
		execs = append(execs, rgraph.Execution{Name: bloomUpName(mip), Parents: []string{bloomParent}})
		bloomParent = bloomUpName(mip)
	}

	execs = append(execs, rgraph.Execution{
		Name: passTonemap, Parents: []string{bloomUpName(0)},
		Accesses: tonemapAccesses,
	})

	if p.sdfgi.HalfResolution {
		execs = append(execs, rgraph.Execution{Name: passSDFUpscale, Parents: []string{passSDFFilterB}})
	}
	return execs
}

func (p *Pipeline) passForName(name string) *passes.GraphicPass {
	switch name {
	case passDepthPrepass:
		return p.core.DepthPrepass
	case passShadowCascade:
		if len(p.shadows.Cascades) > 0 {
			return p.shadows.Cascades[0]
		}
	case passForward:
		return p.core.Forward
	}
	return nil
}

func (p *Pipeline) computePassForName(name string) *passes.ComputePass {
	switch name {
	case passHiZPyramid:
		return p.core.HiZPyramid
	case passLightMatrix:
		return p.shadows.LightMatrix
	case passHistogramReset:
		return p.exposure.Reset
	case passHistogramTile:
		return p.exposure.PerTile
	case passHistogramCombine:
		return p.exposure.Combine
	case passPreExposeLights:
		return p.exposure.PreExpose
	case passSDFFrustumCull:
		return p.sdfgi.FrustumCull
	case passSDFTileCull:
		return p.sdfgi.TileCull
	case passSDFTrace:
		return p.sdfgi.Trace
	case passSDFFilterA:
		return p.sdfgi.FilterSpatialA
	case passSDFFilterTemporal:
		return p.sdfgi.FilterTemporal
	case passSDFFilterB:
		return p.sdfgi.FilterSpatialB
	case passSDFUpscale:
		return p.sdfgi.Upscale
	case passTAASupersample:
		return p.taa.Supersample
	case passTAAResolve:
		return p.taa.Resolve
	case passTonemap:
		return p.core.Tonemap
	}
	for mip := 0; mip < BloomMipCount; mip++ {
		if name == bloomDownName(mip) {
			return p.bloom.Down[mip]
		}
		if name == bloomUpName(mip) {
			return p.bloom.Up[mip]
		}
	}
	return nil
}

// enqueueDispatches queues this frame's compute dispatch group counts
// for every compute pass buildExecutions schedules: screen-sized grids
// for Hi-Z, histogram tiles, TAA and the SDF GI trace/filter chain (at
// trace resolution), one group per cascade for the light-matrix fit,
// one group per 64 bins for histogram reset/combine, one group per 64
// meshes for SDF frustum culling, and one per screen tile for SDF tile
// culling. Only the light pre-exposure pass dispatches a single group.
func (p *Pipeline) enqueueDispatches(q *rgraph.DrawQueue) {
	hizX, hizY, _ := HiZDispatchCount(p.screenWidth, p.screenHeight)
	q.EnqueueDispatch(passHiZPyramid, rgraph.DispatchCommand{X: hizX, Y: hizY, Z: 1})

	q.EnqueueDispatch(passLightMatrix, rgraph.DispatchCommand{X: p.settings.CascadeCount, Y: 1, Z: 1})

	histogramGroups := (p.settings.Histogram.BinCount + 63) / 64
	q.EnqueueDispatch(passHistogramReset, rgraph.DispatchCommand{X: histogramGroups, Y: 1, Z: 1})

	tileX, tileY := TileDispatchCount(p.settings.Histogram, p.screenWidth, p.screenHeight)
	q.EnqueueDispatch(passHistogramTile, rgraph.DispatchCommand{X: tileX, Y: tileY, Z: 1})

	q.EnqueueDispatch(passHistogramCombine, rgraph.DispatchCommand{X: histogramGroups, Y: 1, Z: 1})
	q.EnqueueDispatch(passPreExposeLights, rgraph.DispatchCommand{X: 1, Y: 1, Z: 1})

	cullGroups := (uint32(len(p.meshStates)) + 63) / 64
	if cullGroups == 0 {
		cullGroups = 1
	}
	q.EnqueueDispatch(passSDFFrustumCull, rgraph.DispatchCommand{X: cullGroups, Y: 1, Z: 1})

	tcX, tcY := TileCullDispatchCount(p.screenWidth, p.screenHeight)
	q.EnqueueDispatch(passSDFTileCull, rgraph.DispatchCommand{X: tcX, Y: tcY, Z: 1})

	traceWidth, traceHeight := p.screenWidth, p.screenHeight
	if p.sdfgi.HalfResolution {
		traceWidth, traceHeight = traceWidth/2, traceHeight/2
	}
	traceX, traceY := dispatchGroups2D(traceWidth, traceHeight)
	q.EnqueueDispatch(passSDFTrace, rgraph.DispatchCommand{X: traceX, Y: traceY, Z: 1})
	q.EnqueueDispatch(passSDFFilterA, rgraph.DispatchCommand{X: traceX, Y: traceY, Z: 1})
	q.EnqueueDispatch(passSDFFilterTemporal, rgraph.DispatchCommand{X: traceX, Y: traceY, Z: 1})
	q.EnqueueDispatch(passSDFFilterB, rgraph.DispatchCommand{X: traceX, Y: traceY, Z: 1})
	if p.sdfgi.HalfResolution {
		upX, upY := dispatchGroups2D(p.screenWidth, p.screenHeight)
		q.EnqueueDispatch(passSDFUpscale, rgraph.DispatchCommand{X: upX, Y: upY, Z: 1})
	}

	taaX, taaY := dispatchGroups2D(p.screenWidth, p.screenHeight)
	q.EnqueueDispatch(passTAASupersample, rgraph.DispatchCommand{X: taaX, Y: taaY, Z: 1})
	q.EnqueueDispatch(passTAAResolve, rgraph.DispatchCommand{X: taaX, Y: taaY, Z: 1})

	bloomWidth, bloomHeight := p.screenWidth, p.screenHeight
	for mip := 0; mip < BloomMipCount; mip++ {
		bloomWidth, bloomHeight = (bloomWidth+1)/2, (bloomHeight+1)/2
		x, y := dispatchGroups2D(bloomWidth, bloomHeight)
		q.EnqueueDispatch(bloomDownName(mip), rgraph.DispatchCommand{X: x, Y: y, Z: 1})
	}
	upWidth, upHeight := bloomWidth, bloomHeight
	for mip := BloomMipCount - 1; mip >= 0; mip-- {
		x, y := dispatchGroups2D(upWidth, upHeight)
		q.EnqueueDispatch(bloomUpName(mip), rgraph.DispatchCommand{X: x, Y: y, Z: 1})
		upWidth, upHeight = upWidth*2, upHeight*2
	}

	q.EnqueueDispatch(passTonemap, rgraph.DispatchCommand{X: taaX, Y: taaY, Z: 1})
}

// GlobalInfo returns this frame's rebuilt global shader info block, for
// the caller to upload to the uniform buffer every pass reads.
func (p *Pipeline) GlobalInfo() GlobalShaderInfo { return p.global }

// MeshCount reports how many meshes CreateMeshes has registered.
func (p *Pipeline) MeshCount() int { return len(p.meshStates) }
