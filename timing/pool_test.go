package timing

import (
	"testing"

	"github.com/lumenrender/lumen/internal/vk"
)

func fakeTimingCommands(raw []uint64) *vk.Commands {
	return &vk.Commands{
		CreateQueryPool:   func(vk.Device, uint32) (vk.QueryPool, vk.Result) { return 1, vk.Success },
		CmdResetQueryPool: func(vk.CommandBuffer, vk.QueryPool, uint32, uint32) {},
		CmdWriteTimestamp: func(vk.CommandBuffer, vk.PipelineStageFlags, vk.QueryPool, uint32) {},
		GetQueryPoolResults: func(vk.Device, vk.QueryPool, uint32, uint32) ([]uint64, vk.Result) {
			return raw, vk.Success
		},
		CmdBeginDebugLabel: func(vk.CommandBuffer, string) {},
		CmdEndDebugLabel:   func(vk.CommandBuffer) {},
	}
}

func TestResolveComputesMillisecondsFromTicks(t *testing.T) {
	// nsPerTick = 1.0: "Frame" spans ticks 0..1_000_000 -> 1ms.
	cmds := fakeTimingCommands([]uint64{0, 1_000_000})
	p, err := NewPool(1, cmds, 8, 1.0)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	p.WriteStart(0, "Frame")
	p.WriteEnd(0, "Frame")

	result, err := p.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result["Frame"] != 1.0 {
		t.Fatalf("Frame = %v ms, want 1.0", result["Frame"])
	}
}

func TestResolveReportsMultipleNamedSpans(t *testing.T) {
	cmds := fakeTimingCommands([]uint64{0, 500_000, 500_000, 2_000_000})
	p, err := NewPool(1, cmds, 8, 1.0)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	p.WriteStart(0, "Frame")
	p.WriteEnd(0, "Frame")
	p.WriteStart(0, "ImGui")
	p.WriteEnd(0, "ImGui")

	result, err := p.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := result["Frame"]; !ok {
		t.Fatalf("missing Frame entry: %v", result)
	}
	if _, ok := result["ImGui"]; !ok {
		t.Fatalf("missing ImGui entry: %v", result)
	}
	if result["Frame"] < 0 || result["ImGui"] < 0 {
		t.Fatalf("expected non-negative durations, got %v", result)
	}
}

func TestIncompleteSpanIsOmittedFromResolve(t *testing.T) {
	cmds := fakeTimingCommands([]uint64{0, 1_000_000})
	p, err := NewPool(1, cmds, 8, 1.0)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	p.WriteStart(0, "shadow")
	// No WriteEnd — this span must not appear in the resolved result.

	result, err := p.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := result["shadow"]; ok {
		t.Fatalf("incomplete span should be omitted, got %v", result)
	}
}

func TestResetClearsPreviousFrameSpans(t *testing.T) {
	cmds := fakeTimingCommands(nil)
	p, err := NewPool(1, cmds, 8, 1.0)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	p.WriteStart(0, "Frame")
	p.WriteEnd(0, "Frame")
	p.Reset(0)

	result, err := p.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected no spans after Reset, got %v", result)
	}
}

func TestPoolExhaustionDropsWritesWithoutPanicking(t *testing.T) {
	cmds := fakeTimingCommands([]uint64{0, 0})
	p, err := NewPool(1, cmds, 2, 1.0)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	p.WriteStart(0, "a")
	p.WriteEnd(0, "a")
	// Pool only has capacity for one span; this must not panic.
	p.WriteStart(0, "b")
	p.WriteEnd(0, "b")
}
