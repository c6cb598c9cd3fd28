package registry

import (
	"sync"

	"github.com/nerrad567/inputid/internal/device"
)

// RemovalEvent is delivered to subscribers when a Handle or
// PhysicalDevice is removed.
type RemovalEvent struct {
	// Identity of the removed kernel device. Zero when the event reports
	// an aggregate removal.
	Identity Identity

	// GroupKey of the physical aggregate the subject belonged to, if any.
	GroupKey string

	// Aggregate is true when the PhysicalDevice itself was removed.
	Aggregate bool
}

// Handle is a registered kernel device: an immutable Device plus its
// registry lifecycle. Handles are created by Registry.DeviceFromFile and
// shared between all callers that resolve to the same identity.
type Handle struct {
	identity Identity
	path     string
	dev      *device.Device
	phys     *PhysicalDevice // nil when the device has no grouping rule

	mu      sync.Mutex
	removed bool
	subs    []chan<- RemovalEvent
}

// Identity returns the kernel-device identity. Valid even after removal,
// so subscribers can correlate events.
func (h *Handle) Identity() Identity {
	return h.identity
}

// Path returns the node path the handle was registered under. A hint
// only: the node may have been opened through another path.
func (h *Handle) Path() string {
	return h.path
}

// Device returns the identified device, or ErrStaleHandle after removal.
func (h *Handle) Device() (*device.Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removed {
		return nil, ErrStaleHandle
	}
	return h.dev, nil
}

// Physical returns the physical-device aggregate this handle belongs to,
// or nil if the device has no grouping rule. Fails with ErrStaleHandle
// after removal.
func (h *Handle) Physical() (*PhysicalDevice, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removed {
		return nil, ErrStaleHandle
	}
	return h.phys, nil
}

// Removed reports whether the handle has been removed.
func (h *Handle) Removed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removed
}

// SubscribeRemoval registers a channel to receive this handle's removal
// event. Delivery is best-effort: a full channel drops the event rather
// than blocking the removal path. Subscribing to an already-removed
// handle fails with ErrStaleHandle.
func (h *Handle) SubscribeRemoval(ch chan<- RemovalEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.removed {
		return ErrStaleHandle
	}
	h.subs = append(h.subs, ch)
	return nil
}

// markRemoved flips the handle to its terminal state and notifies
// subscribers. Idempotent.
func (h *Handle) markRemoved(groupKey string) {
	h.mu.Lock()
	if h.removed {
		h.mu.Unlock()
		return
	}
	h.removed = true
	subs := h.subs
	h.subs = nil
	h.mu.Unlock()

	ev := RemovalEvent{Identity: h.identity, GroupKey: groupKey}
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
