package frontend

import (
	"testing"

	"github.com/lumenrender/lumen/handle"
	"github.com/lumenrender/lumen/internal/vk"
	"github.com/lumenrender/lumen/linear"
	"github.com/lumenrender/lumen/passes"
	"github.com/lumenrender/lumen/rgraph"
)

func TestResolveWeightsSumToOne(t *testing.T) {
	weights := ResolveWeights(linear.V2{0.2, -0.3})

	var sum float32
	for _, w := range weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("sum of resolve weights = %f, want ~1.0", sum)
	}
}

func TestResolveWeightsCenterTapIsLargest(t *testing.T) {
	weights := ResolveWeights(linear.V2{0, 0})
	center := weights[4] // dx=0, dy=0 is the 5th evaluated (index 4)
	for i, w := range weights {
		if i != 4 && w > center {
			t.Fatalf("tap %d (%f) outweighs the centered tap (%f) at zero jitter", i, w, center)
		}
	}
}

func TestFitCascadesSplitDepthsIncrease(t *testing.T) {
	var frustum linear.Frustum
	cascades := FitCascades(frustum, linear.V3{0, -1, 0}, 0.1, 100, 4)

	if len(cascades) != 4 {
		t.Fatalf("len(cascades) = %d, want 4", len(cascades))
	}
	for i := 1; i < len(cascades); i++ {
		if cascades[i].SplitDepth <= cascades[i-1].SplitDepth {
			t.Fatalf("cascade split depths not strictly increasing: %v", cascades)
		}
	}
	if cascades[len(cascades)-1].SplitDepth != 100 {
		t.Fatalf("last cascade split depth = %f, want far plane 100", cascades[len(cascades)-1].SplitDepth)
	}
}

func TestRenderTargetSetSwapAlternatesCurrentAndPrevious(t *testing.T) {
	color := [2]handle.Image{handle.New[handle.ImageKind](1), handle.New[handle.ImageKind](2)}
	motion := [2]handle.Image{handle.New[handle.ImageKind](3), handle.New[handle.ImageKind](4)}
	depth := [2]handle.Image{handle.New[handle.ImageKind](5), handle.New[handle.ImageKind](6)}
	history := [2]handle.Image{handle.New[handle.ImageKind](7), handle.New[handle.ImageKind](8)}

	rt := NewRenderTargetSet(color, motion, depth, history)

	curColor, _, _, _ := rt.Current()
	if curColor != color[0] {
		t.Fatalf("initial current color = %v, want %v", curColor, color[0])
	}

	rt.Swap()
	curColor, _, _, _ = rt.Current()
	prevColor, _, _, _ := rt.Previous()
	if curColor != color[1] {
		t.Fatalf("current color after swap = %v, want %v", curColor, color[1])
	}
	if prevColor != color[0] {
		t.Fatalf("previous color after swap = %v, want %v", prevColor, color[0])
	}
}

func TestMeshLifecycleTracksModelMatrixHistory(t *testing.T) {
	p := &Pipeline{}

	handles := p.CreateMeshes([]handle.Mesh{handle.New[handle.MeshKind](1)}, []linear.AABB{
		{Min: linear.V3{-1, -1, -1}, Max: linear.V3{1, 1, 1}},
	})
	if len(handles) != 1 || !handles[0].Valid() {
		t.Fatalf("CreateMeshes returned %v, want one valid handle", handles)
	}

	var first linear.M4
	first.I()
	first[3] = linear.V4{5, 0, 0, 1}
	p.SetModelMatrix(handles[0], first)

	var second linear.M4
	second.I()
	p.SetModelMatrix(handles[0], second)

	state := p.meshStates[handles[0].index]
	if state.PreviousFrameModelMatrix != first {
		t.Fatalf("previous frame matrix = %v, want %v", state.PreviousFrameModelMatrix, first)
	}
	if state.ModelMatrix != second {
		t.Fatalf("current frame matrix = %v, want %v", state.ModelMatrix, second)
	}
}

func TestIssueMeshDrawsDropsInvalidHandles(t *testing.T) {
	p := &Pipeline{}
	handles := p.CreateMeshes([]handle.Mesh{handle.New[handle.MeshKind](1)}, nil)

	p.IssueMeshDraws([]FrontendMeshHandle{handles[0], {}})
	if len(p.drawList) != 1 {
		t.Fatalf("drawList length = %d, want 1 (invalid handle dropped)", len(p.drawList))
	}
}

func TestBuildExecutionsProducesAnAcyclicOrder(t *testing.T) {
	p := &Pipeline{sdfgi: &SDFGIPipeline{HalfResolution: true}}

	order := rgraph.Order(p.buildExecutions())
	if len(order) != len(p.buildExecutions()) {
		t.Fatalf("ordered length = %d, want %d", len(order), len(p.buildExecutions()))
	}

	seen := make(map[string]bool, len(order))
	for _, e := range order {
		for _, parent := range e.Parents {
			if !seen[parent] {
				t.Fatalf("pass %q recorded before its parent %q", e.Name, parent)
			}
		}
		seen[e.Name] = true
	}
}

func TestTileDispatchCountRoundsUp(t *testing.T) {
	settings := DefaultHistogramSettings()
	x, y := TileDispatchCount(settings, 1920, 1080)
	if x != 60 || y != 34 {
		t.Fatalf("dispatch = (%d,%d), want (60,34)", x, y)
	}
}

func TestHiZDispatchCountClampsMipLevels(t *testing.T) {
	_, _, mips := HiZDispatchCount(4096, 4096)
	if mips != HiZMaxMipLevels {
		t.Fatalf("mip levels = %d, want clamped to %d", mips, HiZMaxMipLevels)
	}
}

func TestEnqueueMeshDrawsFeedsForwardAndEveryCascade(t *testing.T) {
	p := &Pipeline{shadows: &ShadowPipeline{Cascades: make([]*passes.GraphicPass, 3)}}
	wantVertex := vk.Buffer(42)
	p.SetMeshResolver(func(h handle.Mesh) (MeshBuffers, bool) {
		return MeshBuffers{VertexBuffer: wantVertex, IndexBuffer: vk.Buffer(43), IndexCount: 6}, true
	})
	handles := p.CreateMeshes([]handle.Mesh{handle.New[handle.MeshKind](1)}, nil)

	q := rgraph.NewDrawQueue()
	p.enqueueMeshDraws(q, handles)

	forwardDraws, _ := q.Drain(passForward)
	if len(forwardDraws) != 1 {
		t.Fatalf("forward draws = %d, want 1", len(forwardDraws))
	}
	if forwardDraws[0].VertexBuffer != wantVertex {
		t.Fatalf("forward draw vertex buffer = %v, want %v", forwardDraws[0].VertexBuffer, wantVertex)
	}

	cascadeDraws, _ := q.Drain(passShadowCascade)
	if len(cascadeDraws) != 3 {
		t.Fatalf("cascade draws = %d, want 3 (one per cascade)", len(cascadeDraws))
	}
}

func TestEnqueueMeshDrawsSkipsUnresolvedMeshes(t *testing.T) {
	p := &Pipeline{shadows: &ShadowPipeline{Cascades: make([]*passes.GraphicPass, 2)}}
	p.SetMeshResolver(func(h handle.Mesh) (MeshBuffers, bool) { return MeshBuffers{}, false })
	handles := p.CreateMeshes([]handle.Mesh{handle.New[handle.MeshKind](1)}, nil)

	q := rgraph.NewDrawQueue()
	p.enqueueMeshDraws(q, handles)

	forwardDraws, _ := q.Drain(passForward)
	if len(forwardDraws) != 0 {
		t.Fatalf("forward draws = %d, want 0 for an unresolved mesh", len(forwardDraws))
	}
}
