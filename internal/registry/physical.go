package registry

import (
	"sync"

	"github.com/nerrad567/inputid/internal/device"
)

// PhysicalDevice aggregates the kernel devices of one physical unit,
// associated by grouping key. It holds constituent identities, never
// handle pointers, so removal is a pure set operation.
type PhysicalDevice struct {
	key string

	mu           sync.Mutex
	physType     device.PhysicalType
	name         string
	caps         device.CapabilitySet
	constituents map[Identity]struct{}
	removed      bool
	subs         []chan<- RemovalEvent
}

func newPhysicalDevice(key string) *PhysicalDevice {
	return &PhysicalDevice{
		key:          key,
		caps:         device.NewCapabilitySet(),
		constituents: make(map[Identity]struct{}),
	}
}

// GroupKey returns the grouping key that identifies this physical unit.
// Valid even after removal.
func (p *PhysicalDevice) GroupKey() string {
	return p.key
}

// PhysicalType returns the aggregate's physical type: the first non-empty
// type contributed by a constituent. Fails with ErrStaleHandle after
// removal.
func (p *PhysicalDevice) PhysicalType() (device.PhysicalType, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removed {
		return "", ErrStaleHandle
	}
	return p.physType, nil
}

// Name returns the first non-empty constituent name, a label only.
func (p *PhysicalDevice) Name() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removed {
		return "", ErrStaleHandle
	}
	return p.name, nil
}

// Capabilities returns a copy of the union of all constituent capability
// sets. The union only grows while the aggregate is alive.
func (p *PhysicalDevice) Capabilities() (device.CapabilitySet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removed {
		return nil, ErrStaleHandle
	}
	return p.caps.Clone(), nil
}

// Constituents returns the identities currently attached.
func (p *PhysicalDevice) Constituents() ([]Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removed {
		return nil, ErrStaleHandle
	}
	out := make([]Identity, 0, len(p.constituents))
	for id := range p.constituents {
		out = append(out, id)
	}
	return out, nil
}

// Removed reports whether the aggregate has been removed.
func (p *PhysicalDevice) Removed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removed
}

// SubscribeRemoval registers a channel to receive the aggregate's removal
// event. Best-effort delivery, same contract as Handle.SubscribeRemoval.
func (p *PhysicalDevice) SubscribeRemoval(ch chan<- RemovalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removed {
		return ErrStaleHandle
	}
	p.subs = append(p.subs, ch)
	return nil
}

// attach unions a constituent's contribution into the aggregate.
func (p *PhysicalDevice) attach(id Identity, dev *device.Device) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.constituents[id] = struct{}{}
	p.caps.Union(dev.Capabilities())
	if p.physType == "" {
		p.physType = dev.PhysicalType()
	}
	if p.name == "" {
		p.name = dev.Name()
	}
}

// detach drops a constituent and reports how many remain.
func (p *PhysicalDevice) detach(id Identity) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.constituents, id)
	return len(p.constituents)
}

// markRemoved flips the aggregate to its terminal state and notifies
// subscribers. Idempotent.
func (p *PhysicalDevice) markRemoved() {
	p.mu.Lock()
	if p.removed {
		p.mu.Unlock()
		return
	}
	p.removed = true
	subs := p.subs
	p.subs = nil
	p.mu.Unlock()

	ev := RemovalEvent{GroupKey: p.key, Aggregate: true}
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
