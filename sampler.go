package lumen

import "github.com/lumenrender/lumen/handle"

// AddressMode mirrors VkSamplerAddressMode.
type AddressMode uint8

const (
	AddressClampToEdge AddressMode = iota
	AddressRepeat
	AddressMirrorRepeat
)

// FilterMode mirrors VkFilter / VkSamplerMipmapMode.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// SamplerDesc describes a sampler's filtering and addressing state
// (spec §6.1 "sampler" resource). Unlike images and buffers, a
// sampler carries no native-memory allocation and no staged upload —
// it is pure filtering/addressing state the descriptor layer reads
// when binding a material's textures, so the registry holds the
// description value directly rather than a native handle plus
// allocation bookkeeping.
type SamplerDesc struct {
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipFilter    FilterMode
	AddressU     AddressMode
	AddressV     AddressMode
	AddressW     AddressMode
	MaxAnisotropy uint16
}

// DefaultSamplerDesc is the sampler used when a material does not
// request anything unusual: bilinear filtering, clamped addressing,
// no anisotropy.
var DefaultSamplerDesc = SamplerDesc{
	MagFilter: FilterLinear,
	MinFilter: FilterLinear,
	MipFilter: FilterLinear,
	AddressU:  AddressClampToEdge,
	AddressV:  AddressClampToEdge,
	AddressW:  AddressClampToEdge,
	MaxAnisotropy: 1,
}

// CreateSampler registers desc and returns a handle to it. There is
// nothing to destroy on the native side, so DestroySampler only frees
// the registry slot.
func (b *Backend) CreateSampler(desc SamplerDesc) handle.Sampler {
	if desc.MaxAnisotropy == 0 {
		desc.MaxAnisotropy = 1
	}
	return b.samplers.Create(desc)
}

// Sampler returns the description behind h, or false if h is stale.
func (b *Backend) Sampler(h handle.Sampler) (SamplerDesc, bool) {
	return b.samplers.Get(h)
}

// DestroySampler frees h's registry slot.
func (b *Backend) DestroySampler(h handle.Sampler) bool {
	_, ok := b.samplers.Destroy(h)
	return ok
}
