package descriptor

import (
	"testing"

	"github.com/lumenrender/lumen/internal/vk"
)

// fakeCommands builds a vk.Commands whose CreateDescriptorPool and
// AllocateDescriptorSet simulate a driver without touching real
// Vulkan-class FFI.
func fakeCommands() (*vk.Commands, *int, *int) {
	poolsCreated := 0
	setsAllocated := 0
	nextPool := vk.DescriptorPool(1)
	nextSet := vk.DescriptorSet(1)

	cmds := &vk.Commands{
		CreateDescriptorPool: func(device vk.Device, sizes []vk.DescriptorPoolSize, maxSets uint32) (vk.DescriptorPool, vk.Result) {
			poolsCreated++
			h := nextPool
			nextPool++
			return h, vk.Success
		},
		AllocateDescriptorSet: func(device vk.Device, pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, vk.Result) {
			setsAllocated++
			h := nextSet
			nextSet++
			return h, vk.Success
		},
	}
	return cmds, &poolsCreated, &setsAllocated
}

func TestManagerAllocatesFromOnePoolUntilExhausted(t *testing.T) {
	cmds, poolsCreated, _ := fakeCommands()
	m := NewManager(1, cmds, Counts{UniformBuffers: 4})

	for i := 0; i < 4; i++ {
		if _, err := m.Allocate(1, Counts{UniformBuffers: 1}); err != nil {
			t.Fatalf("allocate %d: %v", i, err)
		}
	}
	if *poolsCreated != 1 {
		t.Fatalf("pools created = %d, want 1", *poolsCreated)
	}

	if _, err := m.Allocate(1, Counts{UniformBuffers: 1}); err != nil {
		t.Fatalf("allocate beyond quota: %v", err)
	}
	if *poolsCreated != 2 {
		t.Fatalf("pools created after exhaustion = %d, want 2 (grown)", *poolsCreated)
	}
}

func TestManagerDefaultQuotaIs128(t *testing.T) {
	cmds, _, _ := fakeCommands()
	m := NewManager(1, cmds, Counts{})

	if m.baseQuota.Samplers != DefaultQuota || m.baseQuota.UniformBuffers != DefaultQuota {
		t.Fatalf("base quota = %+v, want all fields = %d", m.baseQuota, DefaultQuota)
	}
}

func TestManagerGrowsPoolToFitOversizedRequest(t *testing.T) {
	cmds, poolsCreated, _ := fakeCommands()
	m := NewManager(1, cmds, Counts{UniformBuffers: 4})

	if _, err := m.Allocate(1, Counts{UniformBuffers: 200}); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if *poolsCreated != 1 {
		t.Fatalf("pools created = %d, want 1", *poolsCreated)
	}
	if m.pools[0].quota.UniformBuffers != 0 {
		t.Fatalf("remaining quota = %d, want 0 after consuming the whole oversized pool", m.pools[0].quota.UniformBuffers)
	}
}

func TestPoolCountReportsGrowth(t *testing.T) {
	cmds, _, _ := fakeCommands()
	m := NewManager(1, cmds, Counts{SampledImages: 1})

	if m.PoolCount() != 0 {
		t.Fatalf("PoolCount before any allocation = %d, want 0", m.PoolCount())
	}
	if _, err := m.Allocate(1, Counts{SampledImages: 1}); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if m.PoolCount() != 1 {
		t.Fatalf("PoolCount after allocation = %d, want 1", m.PoolCount())
	}
}
