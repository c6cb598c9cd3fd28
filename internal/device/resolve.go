package device

import "github.com/nerrad567/inputid/internal/probe"

// Resolve combines a database lookup with conservative heuristics to
// determine the physical type.
//
// On a database hit the entry's type wins and its capability overrides
// are unioned into caps (the set grows, never shrinks). On a miss an
// ordered heuristic list runs, first match wins; no rule matching
// yields the empty type rather than a guess.
//
// Resolve mutates caps in place and returns the type and the entry's
// grouping rule (GroupNone on a miss).
func Resolve(db Database, bus probe.BusType, vendor, product uint16, caps CapabilitySet) (PhysicalType, GroupingRule) {
	if db != nil {
		if entry, ok := db.Lookup(bus, vendor, product); ok {
			for _, c := range entry.Capabilities {
				caps.Add(c)
			}
			rule := entry.Grouping
			if !rule.Valid() {
				rule = GroupNone
			}
			return entry.Type, rule
		}
	}
	return heuristicType(caps), GroupNone
}

// heuristicType is the documented fallback, ordered and deterministic.
// Each rule demands an unambiguous capability shape; anything wider or
// narrower falls through to the next rule or to unknown.
func heuristicType(caps CapabilitySet) PhysicalType {
	switch {
	// A pure pointer, nothing else, is a mouse.
	case caps.Equal(NewCapabilitySet(CapPointer)):
		return TypeMouse

	// A pure keyboard is a keyboard.
	case caps.Equal(NewCapabilitySet(CapKeyboard)):
		return TypeKeyboard

	// The touchpad protocol tags (touchpad and its implied pointer,
	// optionally clickpad/pressure-pad refinements) and nothing wider.
	case caps.Has(CapTouchpad) && !caps.Has(CapKeyboard) &&
		!caps.Has(CapTouchscreen) && !caps.Has(CapTablet) &&
		!caps.Has(CapJoystick) && !caps.Has(CapGamepad):
		return TypeTouchpad

	// The wide-axis many-buttons gaming pattern. Gamepad buttons are
	// definitive; a bare joystick candidate stays unknown because
	// racing wheels and pedals share its shape.
	case caps.Has(CapGamepad):
		return TypeGamepad

	default:
		return ""
	}
}
