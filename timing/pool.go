// Package timing implements the timestamp-query pool and debug-utils
// label helpers the render-graph scheduler bracket each pass with
// (spec §4.6 steps 4-5 and 8).
package timing

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/lumenrender/lumen/internal/vk"
)

type slot struct {
	start, end uint32
	hasStart   bool
	hasEnd     bool
}

// Pool is a timestamp-query pool tracking named start/end pairs across
// one frame's recording. It implements rgraph.TimestampSink.
type Pool struct {
	device   vk.Device
	cmds     *vk.Commands
	handle   vk.QueryPool
	capacity uint32

	mu    sync.Mutex
	slots map[string]*slot
	next  uint32

	nsPerTick float64
}

// NewPool allocates a query pool of capacity timestamp slots (two per
// named span: start and end). nsPerTick is the device's
// timestampPeriod, i.e. nanoseconds per query tick.
func NewPool(device vk.Device, cmds *vk.Commands, capacity uint32, nsPerTick float64) (*Pool, error) {
	handle, result := cmds.CreateQueryPool(device, capacity)
	if !result.OK() {
		return nil, fmt.Errorf("timing: vkCreateQueryPool failed: %v", result)
	}
	return &Pool{
		device: device, cmds: cmds, handle: handle, capacity: capacity,
		slots: make(map[string]*slot), nsPerTick: nsPerTick,
	}, nil
}

// Reset clears all named spans and resets the underlying query pool,
// readying it for the next frame's recording (spec §4.6 "Frame
// presentation": reset timestamp pool before recording passes).
func (p *Pool) Reset(cmd vk.CommandBuffer) {
	p.mu.Lock()
	p.slots = make(map[string]*slot)
	p.next = 0
	p.mu.Unlock()

	p.cmds.CmdResetQueryPool(cmd, p.handle, 0, p.capacity)
}

func (p *Pool) slotFor(name string) (*slot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.slots[name]
	if ok {
		return s, nil
	}
	if p.next+2 > p.capacity {
		slog.Warn("timing: query pool exhausted, dropping timestamp", "capacity", p.capacity, "name", name)
		return nil, fmt.Errorf("timing: query pool exhausted (capacity %d) recording %q", p.capacity, name)
	}
	s = &slot{start: p.next, end: p.next + 1}
	p.next += 2
	p.slots[name] = s
	return s, nil
}

// WriteStart records the start timestamp for name. Pool exhaustion is
// logged and silently dropped rather than propagated — losing one
// frame's timing data is not worth failing the frame over.
func (p *Pool) WriteStart(cmd vk.CommandBuffer, name string) {
	s, err := p.slotFor(name)
	if err != nil {
		return
	}
	p.cmds.CmdWriteTimestamp(cmd, vk.StageTopOfPipe, p.handle, s.start)
	p.mu.Lock()
	s.hasStart = true
	p.mu.Unlock()
}

// WriteEnd records the end timestamp for name.
func (p *Pool) WriteEnd(cmd vk.CommandBuffer, name string) {
	s, err := p.slotFor(name)
	if err != nil {
		return
	}
	p.cmds.CmdWriteTimestamp(cmd, vk.StageBottomOfPipe, p.handle, s.end)
	p.mu.Lock()
	s.hasEnd = true
	p.mu.Unlock()
}

// Resolve reads back every complete (start and end both written) named
// span and converts it to milliseconds using nsPerTick.
func (p *Pool) Resolve() (map[string]float64, error) {
	p.mu.Lock()
	next := p.next
	slots := make(map[string]*slot, len(p.slots))
	for k, v := range p.slots {
		slots[k] = v
	}
	p.mu.Unlock()

	if next == 0 {
		return map[string]float64{}, nil
	}

	raw, result := p.cmds.GetQueryPoolResults(p.device, p.handle, 0, next)
	if !result.OK() {
		return nil, fmt.Errorf("timing: vkGetQueryPoolResults failed: %v", result)
	}

	out := make(map[string]float64, len(slots))
	for name, s := range slots {
		if !s.hasStart || !s.hasEnd {
			continue
		}
		ticks := raw[s.end] - raw[s.start]
		out[name] = float64(ticks) * p.nsPerTick / 1e6
	}
	return out, nil
}

// PushLabel and PopLabel wrap the debug-utils label commands, for
// callers bracketing scopes broader than a single render-graph pass
// (e.g. the whole frame, or the UI overlay pass).
func (p *Pool) PushLabel(cmd vk.CommandBuffer, name string) {
	p.cmds.CmdBeginDebugLabel(cmd, name)
}

func (p *Pool) PopLabel(cmd vk.CommandBuffer) {
	p.cmds.CmdEndDebugLabel(cmd)
}
