// Package descriptor manages Vulkan-class descriptor pool growth, per
// spec §4.2: a quota counter per descriptor type, pools created on
// exhaustion, and sets that are never individually freed — only ever
// reclaimed by destroying the whole pool.
package descriptor

import (
	"fmt"
	"sync"

	"github.com/lumenrender/lumen/internal/vk"
)

// DefaultQuota is the starting per-type descriptor count of the first
// pool, per spec §4.2.
const DefaultQuota uint32 = 128

// Counts tallies how many descriptors of each kind one descriptor-set
// layout consumes, restricted to the five kinds spec §4.2 tracks.
type Counts struct {
	Samplers       uint32
	SampledImages  uint32
	StorageImages  uint32
	UniformBuffers uint32
	StorageBuffers uint32
}

// Total sums every counter.
func (c Counts) Total() uint32 {
	return c.Samplers + c.SampledImages + c.StorageImages + c.UniformBuffers + c.StorageBuffers
}

// pool tracks one allocated vk.DescriptorPool and its remaining quota
// per descriptor type. Quota is decremented on every successful
// allocation and never replenished — sets are never freed individually
// (spec §4.2), so there is nothing to give back until the pool itself
// is destroyed.
type pool struct {
	handle  vk.DescriptorPool
	sets    uint32
	maxSets uint32
	quota   Counts
}

func (p *pool) fits(c Counts, setCount uint32) bool {
	return p.sets+setCount <= p.maxSets &&
		c.Samplers <= p.quota.Samplers &&
		c.SampledImages <= p.quota.SampledImages &&
		c.StorageImages <= p.quota.StorageImages &&
		c.UniformBuffers <= p.quota.UniformBuffers &&
		c.StorageBuffers <= p.quota.StorageBuffers
}

func (p *pool) consume(c Counts) {
	p.sets++
	p.quota.Samplers -= c.Samplers
	p.quota.SampledImages -= c.SampledImages
	p.quota.StorageImages -= c.StorageImages
	p.quota.UniformBuffers -= c.UniformBuffers
	p.quota.StorageBuffers -= c.StorageBuffers
}

// Manager allocates descriptor sets by scanning existing pools for
// remaining quota and creating a new pool on exhaustion, per spec §4.2.
// Safe for concurrent use, matching hal/vulkan/descriptor.go's
// mutex-guarded allocator.
type Manager struct {
	mu     sync.Mutex
	device vk.Device
	cmds   *vk.Commands
	pools  []*pool

	baseQuota Counts
}

// NewManager creates a descriptor-pool manager. baseQuota is the
// per-type count of the first pool; zero fields default to
// DefaultQuota.
func NewManager(device vk.Device, cmds *vk.Commands, baseQuota Counts) *Manager {
	fill := func(v uint32) uint32 {
		if v == 0 {
			return DefaultQuota
		}
		return v
	}
	baseQuota = Counts{
		Samplers:       fill(baseQuota.Samplers),
		SampledImages:  fill(baseQuota.SampledImages),
		StorageImages:  fill(baseQuota.StorageImages),
		UniformBuffers: fill(baseQuota.UniformBuffers),
		StorageBuffers: fill(baseQuota.StorageBuffers),
	}
	return &Manager{device: device, cmds: cmds, baseQuota: baseQuota}
}

// Allocate returns a descriptor set built from layout, consuming c's
// counts from whichever pool has room — scanning existing pools first,
// growing by creating a new one only when none fit.
func (m *Manager) Allocate(layout vk.DescriptorSetLayout, c Counts) (vk.DescriptorSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.pools {
		if p.fits(c, 1) {
			set, result := m.cmds.AllocateDescriptorSet(m.device, p.handle, layout)
			if !result.OK() {
				continue
			}
			p.consume(c)
			return set, nil
		}
	}

	p, err := m.grow(c)
	if err != nil {
		return 0, err
	}

	set, result := m.cmds.AllocateDescriptorSet(m.device, p.handle, layout)
	if !result.OK() {
		return 0, fmt.Errorf("descriptor: allocate from freshly grown pool failed: result %d", result)
	}
	p.consume(c)
	return set, nil
}

// grow creates a new pool sized to the manager's base quota, or larger
// if a single request exceeds it.
func (m *Manager) grow(c Counts) (*pool, error) {
	quota := m.baseQuota
	if c.Samplers > quota.Samplers {
		quota.Samplers = c.Samplers
	}
	if c.SampledImages > quota.SampledImages {
		quota.SampledImages = c.SampledImages
	}
	if c.StorageImages > quota.StorageImages {
		quota.StorageImages = c.StorageImages
	}
	if c.UniformBuffers > quota.UniformBuffers {
		quota.UniformBuffers = c.UniformBuffers
	}
	if c.StorageBuffers > quota.StorageBuffers {
		quota.StorageBuffers = c.StorageBuffers
	}

	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorSampler, DescriptorCount: quota.Samplers},
		{Type: vk.DescriptorSampledImage, DescriptorCount: quota.SampledImages},
		{Type: vk.DescriptorStorageImage, DescriptorCount: quota.StorageImages},
		{Type: vk.DescriptorUniformBuffer, DescriptorCount: quota.UniformBuffers},
		{Type: vk.DescriptorStorageBuffer, DescriptorCount: quota.StorageBuffers},
	}
	maxSets := uint32(DefaultQuota)

	handle, result := m.cmds.CreateDescriptorPool(m.device, sizes, maxSets)
	if !result.OK() {
		return nil, fmt.Errorf("descriptor: vkCreateDescriptorPool failed: result %d", result)
	}

	np := &pool{handle: handle, maxSets: maxSets, quota: quota}
	m.pools = append(m.pools, np)
	return np, nil
}

// PoolCount reports how many pools currently exist — tests and
// diagnostics use this to check growth happens only on exhaustion.
func (m *Manager) PoolCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pools)
}
