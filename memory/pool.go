// Package memory implements the GPU memory sub-allocator described in
// spec §4.1: one free-list pool per device memory slab, fanned out
// across memory-type indices, growing by adding new pools on exhaustion.
package memory

import (
	"errors"
	"fmt"
)

// ErrNoSuitableMemoryType indicates no memory-type index satisfies the
// requested property flags and type-bits mask, even after the
// integrated-GPU device-local fallback.
var ErrNoSuitableMemoryType = errors.New("memory: no suitable memory type")

// ErrPoolCreateFailed indicates the underlying device-memory allocation
// for a new pool's slab failed. This is fatal per spec §7 kind 2.
var ErrPoolCreateFailed = errors.New("memory: pool creation failed")

// DefaultSlabSize is the default size of one memory-pool slab (§3).
const DefaultSlabSize uint64 = 256 << 20

// AllocFn allocates one device-memory slab of the given size for the
// given memory-type index, returning an opaque native handle. PoolSet
// never interprets the handle — it is only threaded back through to the
// backend when a pool must be destroyed.
type AllocFn func(memoryTypeIndex uint32, size uint64) (nativeMemory uint64, ok bool)

// FreeFn releases a slab previously returned by AllocFn.
type FreeFn func(memoryTypeIndex uint32, nativeMemory uint64)

// spanID indexes into Pool.spans. Using an index instead of a pointer
// keeps the free-list allocator arena-based (§9 design note) — no
// heap-node ownership cycles, nothing for the GC to chase.
type spanID uint32

const noSpan spanID = 0xFFFFFFFF

// span is one node of the pool's doubly-linked free-list.
type span struct {
	offset uint64
	size   uint64
	free   bool
	prev   spanID
	next   spanID
}

// Allocation is a single sub-allocation returned by Pool.Allocate.
type Allocation struct {
	PoolIndex  int
	Offset     uint64
	Padding    uint64
	Size       uint64
	MemoryType uint32
	memory     uint64
}

// Pool sub-allocates from one device-memory slab via a linked list of
// spans, per spec §4.1. Span bookkeeping lives in a slice indexed by
// spanID; freed span slots are recycled the same way handle.Registry
// recycles handles.
type Pool struct {
	memoryTypeIndex uint32
	slabSize        uint64
	nativeMemory    uint64

	spans    []span
	freeIDs  []spanID
	head     spanID

	used uint64
}

func newPool(memoryTypeIndex uint32, slabSize, nativeMemory uint64) *Pool {
	p := &Pool{
		memoryTypeIndex: memoryTypeIndex,
		slabSize:        slabSize,
		nativeMemory:    nativeMemory,
	}
	head := p.newSpan(span{offset: 0, size: slabSize, free: true, prev: noSpan, next: noSpan})
	p.head = head
	return p
}

func (p *Pool) newSpan(s span) spanID {
	if n := len(p.freeIDs); n > 0 {
		id := p.freeIDs[n-1]
		p.freeIDs = p.freeIDs[:n-1]
		p.spans[id] = s
		return id
	}
	p.spans = append(p.spans, s)
	return spanID(len(p.spans) - 1)
}

func (p *Pool) releaseSpan(id spanID) {
	p.freeIDs = append(p.freeIDs, id)
}

// Allocate walks the span list for the first free span whose
// padded size fits, splits it into an occupied span plus a remaining
// free span, and returns the allocation. Returns false if no span
// fits — the caller should create a new pool.
func (p *Pool) Allocate(size, alignment uint64) (Allocation, bool) {
	if alignment == 0 {
		alignment = 1
	}

	id := p.head
	for id != noSpan {
		s := &p.spans[id]
		if s.free {
			padding := (alignment - (s.offset % alignment)) % alignment
			padded := size + padding
			if padded <= s.size {
				offset := s.offset
				remaining := s.size - padded

				s.free = false
				s.size = padded

				if remaining > 0 {
					remID := p.newSpan(span{
						offset: s.offset + padded,
						size:   remaining,
						free:   true,
						prev:   id,
						next:   s.next,
					})
					// newSpan may have grown p.spans; refresh the pointer.
					s = &p.spans[id]
					if s.next != noSpan {
						p.spans[s.next].prev = remID
					}
					s.next = remID
				}

				p.used += padded
				return Allocation{
					Offset:     offset + padding,
					Padding:    padding,
					Size:       size,
					MemoryType: p.memoryTypeIndex,
					memory:     p.nativeMemory,
				}, true
			}
		}
		id = s.next
	}
	return Allocation{}, false
}

// Free locates the span whose offset equals alloc.Offset-alloc.Padding,
// marks it free, and coalesces with the left then right neighbour if
// they are also free.
func (p *Pool) Free(alloc Allocation) {
	target := alloc.Offset - alloc.Padding

	id := p.head
	for id != noSpan {
		s := &p.spans[id]
		if s.offset == target {
			p.used -= s.size
			s.free = true

			if s.prev != noSpan && p.spans[s.prev].free {
				id = p.mergeWithPrev(id)
				s = &p.spans[id]
			}
			if s.next != noSpan && p.spans[s.next].free {
				id = p.mergeWithNext(id)
			}
			return
		}
		id = s.next
	}
}

// mergeWithPrev merges spans[id] into its free predecessor, returning
// the surviving span id (the predecessor's).
func (p *Pool) mergeWithPrev(id spanID) spanID {
	prevID := p.spans[id].prev
	prev := &p.spans[prevID]
	cur := &p.spans[id]

	prev.size += cur.size
	prev.next = cur.next
	if cur.next != noSpan {
		p.spans[cur.next].prev = prevID
	}
	if id == p.head {
		p.head = prevID
	}
	p.releaseSpan(id)
	return prevID
}

// mergeWithNext merges spans[id]'s free successor into spans[id].
func (p *Pool) mergeWithNext(id spanID) spanID {
	cur := &p.spans[id]
	nextID := cur.next
	next := &p.spans[nextID]

	cur.size += next.size
	cur.next = next.next
	if next.next != noSpan {
		p.spans[next.next].prev = id
	}
	p.releaseSpan(nextID)
	return id
}

// NativeMemory returns the opaque device-memory handle of the slab this
// allocation was carved from, for the caller to bind a buffer or image
// against (spec §4.1: PoolSet never interprets the handle itself).
func (a Allocation) NativeMemory() uint64 { return a.memory }

// Used returns bytes currently allocated from this pool.
func (p *Pool) Used() uint64 { return p.used }

// Capacity returns the slab size.
func (p *Pool) Capacity() uint64 { return p.slabSize }

// spanCount reports the live span count, for tests that check
// coalescing collapses adjacent free spans.
func (p *Pool) spanCount() int {
	n := 0
	for id := p.head; id != noSpan; id = p.spans[id].next {
		n++
	}
	return n
}

// PoolSet fans allocation out across one Pool list per memory-type
// index, creating a new pool whenever none of the existing ones fit,
// per spec §4.1.
type PoolSet struct {
	slabSize uint64
	alloc    AllocFn
	free     FreeFn

	pools map[uint32][]*Pool
}

// NewPoolSet creates a pool set with the given slab size and the
// backend callbacks used to obtain/release native device-memory slabs.
func NewPoolSet(slabSize uint64, alloc AllocFn, free FreeFn) *PoolSet {
	if slabSize == 0 {
		slabSize = DefaultSlabSize
	}
	return &PoolSet{
		slabSize: slabSize,
		alloc:    alloc,
		free:     free,
		pools:    make(map[uint32][]*Pool),
	}
}

// Allocate finds or creates a pool for memoryTypeIndex and sub-allocates
// size bytes aligned to alignment.
func (ps *PoolSet) Allocate(memoryTypeIndex uint32, size, alignment uint64) (Allocation, error) {
	list := ps.pools[memoryTypeIndex]
	for i, pool := range list {
		if a, ok := pool.Allocate(size, alignment); ok {
			a.PoolIndex = i
			return a, nil
		}
	}

	slabSize := ps.slabSize
	if size > slabSize {
		slabSize = size
	}
	native, ok := ps.alloc(memoryTypeIndex, slabSize)
	if !ok {
		return Allocation{}, fmt.Errorf("%w: type index %d, size %d", ErrPoolCreateFailed, memoryTypeIndex, slabSize)
	}

	pool := newPool(memoryTypeIndex, slabSize, native)
	ps.pools[memoryTypeIndex] = append(list, pool)
	poolIndex := len(ps.pools[memoryTypeIndex]) - 1

	a, ok := pool.Allocate(size, alignment)
	if !ok {
		// A fresh slab failing to fit a request smaller than its own
		// size is a programmer error (size/alignment inconsistency).
		panic("memory: fresh pool could not satisfy its own sizing allocation")
	}
	a.PoolIndex = poolIndex
	return a, nil
}

// Free returns alloc to its originating pool.
func (ps *PoolSet) Free(alloc Allocation) {
	list := ps.pools[alloc.MemoryType]
	if alloc.PoolIndex < 0 || alloc.PoolIndex >= len(list) {
		return
	}
	list[alloc.PoolIndex].Free(alloc)
}

// Stats aggregates used/allocated bytes across every pool.
func (ps *PoolSet) Stats() (allocated, used uint64) {
	for _, list := range ps.pools {
		for _, pool := range list {
			allocated += pool.Capacity()
			used += pool.Used()
		}
	}
	return
}

// Destroy releases every slab back to the backend via FreeFn.
func (ps *PoolSet) Destroy() {
	for typeIndex, list := range ps.pools {
		for _, pool := range list {
			if ps.free != nil {
				ps.free(typeIndex, pool.nativeMemory)
			}
		}
	}
	ps.pools = make(map[uint32][]*Pool)
}
