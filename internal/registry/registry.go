package registry

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nerrad567/inputid/internal/device"
	"github.com/nerrad567/inputid/internal/probe"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EventType classifies registry lifecycle events.
type EventType string

const (
	EventRegistered         EventType = "registered"
	EventRemoved            EventType = "removed"
	EventPhysicalRegistered EventType = "physical-registered"
	EventPhysicalRemoved    EventType = "physical-removed"
)

// Event describes one registry state change, for transports that fan
// lifecycle changes out to remote observers.
type Event struct {
	Type     EventType
	Identity Identity       // zero for physical-* events
	GroupKey string         // empty when the device has no aggregate
	Device   *device.Device // nil for physical-* events
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithEventFunc sets a callback invoked synchronously after every
// lifecycle change. The callback must not block and must not call back
// into the Registry's mutating methods.
func WithEventFunc(fn func(Event)) Option {
	return func(r *Registry) { r.eventFn = fn }
}

// Registry is the identity-keyed device cache. See the package
// documentation for the lifecycle model.
//
// All public methods are thread-safe.
type Registry struct {
	db      device.Database
	logger  Logger
	eventFn func(Event)
	flight  singleflight.Group

	mu       sync.RWMutex
	handles  map[Identity]*Handle
	physical map[string]*PhysicalDevice
	paths    map[string]Identity // node-path hints for RemoveByPath

	// Seams for tests; production code never touches these.
	identityFn func(*os.File) (Identity, error)
	buildFn    func(f *os.File, kind probe.Kind) (*device.Device, error)
}

// New creates a Registry backed by the given hardware database. The
// database may be nil; identification then relies on heuristics alone.
func New(db device.Database, opts ...Option) *Registry {
	r := &Registry{
		db:         db,
		logger:     noopLogger{},
		handles:    make(map[Identity]*Handle),
		physical:   make(map[string]*PhysicalDevice),
		paths:      make(map[string]Identity),
		identityFn: identityOf,
	}
	r.buildFn = r.build
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// build runs the Builder for a freshly seen node.
func (r *Registry) build(f *os.File, kind probe.Kind) (*device.Device, error) {
	b := device.NewBuilder().WithDatabase(r.db)
	switch kind {
	case probe.KindHidraw:
		b.FromHidraw(f)
	default:
		b.FromEvdev(f)
	}
	return b.Build()
}

// DeviceFromFile resolves an open device node to its Handle.
//
// The file is fstat'ed for its kernel-device identity; a cached identity
// returns the existing Handle unchanged, with no re-probe. On a first
// sighting the node is probed, classified, and resolved, and the Handle
// is registered only on success. Concurrent first lookups for the same
// identity share exactly one probe and build.
//
// The caller keeps ownership of f; the registry does not retain it.
//
// Parameters:
//   - ctx: Checked before a fresh build; cached hits ignore it
//   - f: Open handle on an evdev or hidraw character device
//   - kind: Which probe strategy to use for f
//
// Returns:
//   - *Handle: The shared handle for this kernel device
//   - error: Identity, probe, or build failure; nothing was registered
func (r *Registry) DeviceFromFile(ctx context.Context, f *os.File, kind probe.Kind) (*Handle, error) {
	id, err := r.identityFn(f)
	if err != nil {
		return nil, err
	}

	if h := r.lookup(id); h != nil {
		return h, nil
	}

	v, err, _ := r.flight.Do(id.String(), func() (any, error) {
		// A racing caller may have registered while we queued.
		if h := r.lookup(id); h != nil {
			return h, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dev, buildErr := r.buildFn(f, kind)
		if dev == nil {
			return nil, buildErr
		}
		if buildErr != nil {
			// Non-fatal build diagnostics (identifier mismatch) still
			// yield a usable device.
			r.logger.Warn("device built with diagnostics",
				"path", f.Name(), "error", buildErr)
		}
		return r.register(id, f.Name(), dev), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// lookup is the read-locked fast path.
func (r *Registry) lookup(id Identity) *Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handles[id]
}

// register inserts the handle and attaches it to its aggregate.
func (r *Registry) register(id Identity, path string, dev *device.Device) *Handle {
	r.mu.Lock()
	if h, ok := r.handles[id]; ok {
		r.mu.Unlock()
		return h
	}

	h := &Handle{identity: id, path: path, dev: dev}

	var (
		phys    *PhysicalDevice
		newPhys bool
	)
	if key := dev.GroupingKey(); key != "" {
		phys = r.physical[key]
		if phys == nil {
			phys = newPhysicalDevice(key)
			r.physical[key] = phys
			newPhys = true
		}
		h.phys = phys
	}

	r.handles[id] = h
	if path != "" {
		r.paths[path] = id
	}
	// Attach before releasing r.mu. A concurrent Remove draining the
	// aggregate's last constituent evicts it in the same critical
	// section, so an attach after unlock could land on an aggregate
	// that is already gone from the map.
	if phys != nil {
		phys.attach(id, dev)
	}
	r.mu.Unlock()

	r.logger.Info("device registered",
		"identity", id.String(),
		"path", path,
		"name", dev.Name(),
		"type", string(dev.PhysicalType()),
		"group", dev.GroupingKey())

	if newPhys {
		r.emit(Event{Type: EventPhysicalRegistered, GroupKey: phys.key})
	}
	r.emit(Event{Type: EventRegistered, Identity: id, GroupKey: dev.GroupingKey(), Device: dev})
	return h
}

// Remove evicts a registered identity: the Handle turns stale, its
// subscribers are notified, and the aggregate loses a constituent. When
// the aggregate's last constituent goes, it is removed and notified too.
//
// Removal is terminal. An identity that was never registered, or was
// already removed, fails with ErrUnknownIdentity.
func (r *Registry) Remove(id Identity) error {
	r.mu.Lock()
	h, ok := r.handles[id]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownIdentity
	}
	delete(r.handles, id)
	if h.path != "" && r.paths[h.path] == id {
		delete(r.paths, h.path)
	}
	phys := h.phys
	r.mu.Unlock()

	groupKey := ""
	physGone := false
	if phys != nil {
		groupKey = phys.GroupKey()
		// Detach and map eviction are one critical section, mirroring
		// register's attach-under-lock: once the last constituent goes
		// the aggregate leaves the map before any racing registration
		// can find it again.
		r.mu.Lock()
		if phys.detach(id) == 0 && r.physical[groupKey] == phys {
			delete(r.physical, groupKey)
			physGone = true
		}
		r.mu.Unlock()
	}

	h.markRemoved(groupKey)
	r.logger.Info("device removed", "identity", id.String(), "group", groupKey)
	r.emit(Event{Type: EventRemoved, Identity: id, GroupKey: groupKey})

	if physGone {
		phys.markRemoved()
		r.logger.Info("physical device removed", "group", groupKey)
		r.emit(Event{Type: EventPhysicalRemoved, GroupKey: groupKey})
	}
	return nil
}

// RemoveByPath removes the identity registered under a node path. Used
// by the device monitor, which only learns paths from the filesystem.
func (r *Registry) RemoveByPath(path string) error {
	r.mu.RLock()
	id, ok := r.paths[path]
	r.mu.RUnlock()
	if !ok {
		return ErrUnknownIdentity
	}
	return r.Remove(id)
}

// Handle returns the live handle for an identity, or ErrUnknownIdentity.
func (r *Registry) Handle(id Identity) (*Handle, error) {
	if h := r.lookup(id); h != nil {
		return h, nil
	}
	return nil, ErrUnknownIdentity
}

// Physical returns the live aggregate for a grouping key.
func (r *Registry) Physical(key string) (*PhysicalDevice, error) {
	r.mu.RLock()
	p, ok := r.physical[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: group %q", ErrUnknownIdentity, key)
	}
	return p, nil
}

// Snapshot returns the live handles, sorted by identity.
func (r *Registry) Snapshot() []*Handle {
	r.mu.RLock()
	out := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].identity < out[j].identity })
	return out
}

// PhysicalSnapshot returns the live aggregates, sorted by grouping key.
func (r *Registry) PhysicalSnapshot() []*PhysicalDevice {
	r.mu.RLock()
	out := make([]*PhysicalDevice, 0, len(r.physical))
	for _, p := range r.physical {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

func (r *Registry) emit(ev Event) {
	if r.eventFn != nil {
		r.eventFn(ev)
	}
}
