package device

import "sort"

// Capability is one category of input a kernel device node can produce.
// Capabilities are not mutually exclusive: a convertible laptop's screen
// digitizer legitimately carries both touchscreen and tablet tags, and a
// gaming controller may carry gamepad alongside touchpad.
type Capability string

// The closed capability tag set. Tags are lower-case and stable; they
// appear verbatim in serialized payloads.
const (
	CapKeyboard    Capability = "keyboard"
	CapPointer     Capability = "pointer"
	CapPointing    Capability = "pointing-stick"
	CapTouchpad    Capability = "touchpad"
	CapClickpad    Capability = "clickpad"
	CapPressurePad Capability = "pressure-pad"
	CapTouchscreen Capability = "touchscreen"
	CapTrackball   Capability = "trackball"
	CapJoystick    Capability = "joystick"
	CapGamepad     Capability = "gamepad"
	CapTablet      Capability = "tablet"
	// CapTabletScreen marks a tablet built into a screen (Wacom Cintiq
	// style); mutually exclusive with CapTabletExternal.
	CapTabletScreen Capability = "tablet-screen"
	// CapTabletExternal marks a tablet external to any screen (Wacom
	// Intuos style); mutually exclusive with CapTabletScreen.
	CapTabletExternal Capability = "tablet-external"
	// CapTabletPad marks the button/ring/strip pad found on many
	// tablets, exposed as its own kernel node.
	CapTabletPad Capability = "tablet-pad"
	CapSwitch    Capability = "switch"
)

// knownCapabilities is the decode allow-list. Tags outside it are
// dropped during Deserialize, never treated as fatal.
var knownCapabilities = map[Capability]struct{}{
	CapKeyboard:       {},
	CapPointer:        {},
	CapPointing:       {},
	CapTouchpad:       {},
	CapClickpad:       {},
	CapPressurePad:    {},
	CapTouchscreen:    {},
	CapTrackball:      {},
	CapJoystick:       {},
	CapGamepad:        {},
	CapTablet:         {},
	CapTabletScreen:   {},
	CapTabletExternal: {},
	CapTabletPad:      {},
	CapSwitch:         {},
}

// Known reports whether c is part of the closed capability set.
func (c Capability) Known() bool {
	_, ok := knownCapabilities[c]
	return ok
}

// implies lists the parent capability each tag carries with it: a
// pressure-pad is a clickpad, a clickpad is a touchpad, a touchpad is a
// pointer, and the two tablet sub-kinds are tablets. Expansion is
// applied at insertion so the chain closes transitively.
var implies = map[Capability]Capability{
	CapPressurePad:    CapClickpad,
	CapClickpad:       CapTouchpad,
	CapTouchpad:       CapPointer,
	CapTabletScreen:   CapTablet,
	CapTabletExternal: CapTablet,
}

// CapabilitySet is an unordered set of capability tags. The zero value
// is ready to use via Add; a nil set reads as empty.
//
// Sets only grow: there is no removal operation, which keeps the
// "never implicitly emptied once populated" invariant trivially true.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from the given tags, applying implied
// parents.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s.Add(c)
	}
	return s
}

// Add inserts c and every capability it implies.
func (s CapabilitySet) Add(c Capability) {
	for {
		if _, ok := s[c]; ok {
			return
		}
		s[c] = struct{}{}
		parent, ok := implies[c]
		if !ok {
			return
		}
		c = parent
	}
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Union inserts every tag of other into s, with implications.
func (s CapabilitySet) Union(other CapabilitySet) {
	for c := range other {
		s.Add(c)
	}
}

// Sorted returns the tags in lexical order. The order is the canonical
// one used by the codec and by log output.
func (s CapabilitySet) Sorted() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports whether both sets carry exactly the same tags.
func (s CapabilitySet) Equal(other CapabilitySet) bool {
	if len(s) != len(other) {
		return false
	}
	for c := range s {
		if _, ok := other[c]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy. Used wherever a set crosses an
// ownership boundary (Device accessors, registry aggregates).
func (s CapabilitySet) Clone() CapabilitySet {
	out := make(CapabilitySet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// PhysicalType is the single category describing what the device is
// sold and used as. The zero value means unknown: the resolver only
// assigns a type on a database hit or a documented heuristic, never a
// guess.
type PhysicalType string

// Physical type tags. Like capabilities they are lower-case, stable,
// and appear verbatim in serialized payloads.
const (
	TypeKeyboard      PhysicalType = "keyboard"
	TypeMouse         PhysicalType = "mouse"
	TypePointingStick PhysicalType = "pointing-stick"
	TypeTouchpad      PhysicalType = "touchpad"
	TypeTouchscreen   PhysicalType = "touchscreen"
	TypeTrackball     PhysicalType = "trackball"
	TypeTablet        PhysicalType = "tablet"
	TypeJoystick      PhysicalType = "joystick"
	TypeGamepad       PhysicalType = "gamepad"
	TypeRacingWheel   PhysicalType = "racing-wheel"
	TypeFootPedal     PhysicalType = "foot-pedal"
	// TypeGameController covers gaming hardware that is neither a plain
	// joystick nor a gamepad (flight yokes, HOTAS throttles).
	TypeGameController PhysicalType = "game-controller"
)

var knownTypes = map[PhysicalType]struct{}{
	TypeKeyboard:       {},
	TypeMouse:          {},
	TypePointingStick:  {},
	TypeTouchpad:       {},
	TypeTouchscreen:    {},
	TypeTrackball:      {},
	TypeTablet:         {},
	TypeJoystick:       {},
	TypeGamepad:        {},
	TypeRacingWheel:    {},
	TypeFootPedal:      {},
	TypeGameController: {},
}

// Known reports whether t is a recognised physical type tag.
func (t PhysicalType) Known() bool {
	_, ok := knownTypes[t]
	return ok
}
