package hwdb

import "github.com/nerrad567/inputid/internal/device"

// Builtin returns the built-in entry table. The table covers hardware
// whose heuristic classification is known to be wrong or incomplete —
// multi-node controllers that must be grouped, pads that present as
// mice, and legacy buses with a single sensible default.
//
// Callers get a fresh slice on every call; mutating it does not affect
// later calls.
func Builtin() []Entry {
	return []Entry{
		// Sony DualShock 4 (both revisions) and DualSense expose a
		// touchpad and a motion-sensor node alongside the gamepad
		// node. Group the siblings and pin the type so the touchpad
		// node does not surface as a standalone pointer.
		{
			Match:        Match{Vendor: 0x054c, Product: 0x05c4},
			Name:         "Sony DualShock 4",
			Type:         device.TypeGamepad,
			Capabilities: []device.Capability{device.CapGamepad},
			Grouping:     device.GroupPhysPrefix,
		},
		{
			Match:        Match{Vendor: 0x054c, Product: 0x09cc},
			Name:         "Sony DualShock 4 (2nd gen)",
			Type:         device.TypeGamepad,
			Capabilities: []device.Capability{device.CapGamepad},
			Grouping:     device.GroupPhysPrefix,
		},
		{
			Match:        Match{Vendor: 0x054c, Product: 0x0ce6},
			Name:         "Sony DualSense",
			Type:         device.TypeGamepad,
			Capabilities: []device.Capability{device.CapGamepad},
			Grouping:     device.GroupPhysPrefix,
		},

		// Nintendo Switch Pro Controller: gamepad with motion node.
		{
			Match:        Match{Vendor: 0x057e, Product: 0x2009},
			Name:         "Nintendo Switch Pro Controller",
			Type:         device.TypeGamepad,
			Capabilities: []device.Capability{device.CapGamepad},
			Grouping:     device.GroupPhysPrefix,
		},

		// Microsoft Xbox pads enumerate a single node; pin the type
		// so firmware quirks in the key bitmap cannot demote them.
		{
			Match:        Match{Vendor: 0x045e, Product: 0x028e},
			Name:         "Microsoft Xbox 360 Controller",
			Type:         device.TypeGamepad,
			Capabilities: []device.Capability{device.CapGamepad},
			Grouping:     device.GroupVidPid,
		},
		{
			Match:        Match{Vendor: 0x045e, Product: 0x02ea},
			Name:         "Microsoft Xbox One S Controller",
			Type:         device.TypeGamepad,
			Capabilities: []device.Capability{device.CapGamepad},
			Grouping:     device.GroupVidPid,
		},

		// Logitech racing wheels report joystick-shaped bitmaps.
		{
			Match:        Match{Vendor: 0x046d, Product: 0xc24f},
			Name:         "Logitech G29 Driving Force",
			Type:         device.TypeRacingWheel,
			Capabilities: []device.Capability{device.CapJoystick},
			Grouping:     device.GroupPhysPrefix,
		},
		{
			Match:        Match{Vendor: 0x046d, Product: 0xc262},
			Name:         "Logitech G920 Driving Force",
			Type:         device.TypeRacingWheel,
			Capabilities: []device.Capability{device.CapJoystick},
			Grouping:     device.GroupPhysPrefix,
		},

		// Thrustmaster pedal sets have no buttons at all and would
		// otherwise classify as nothing.
		{
			Match:        Match{Vendor: 0x044f, Product: 0xb678},
			Name:         "Thrustmaster T.Flight Rudder Pedals",
			Type:         device.TypeFootPedal,
			Capabilities: []device.Capability{device.CapJoystick},
			Grouping:     device.GroupNone,
		},

		// Wacom pen displays pair a pen node with a pad node on the
		// same USB port.
		{
			Match:        Match{Vendor: 0x056a, Product: 0x033b},
			Name:         "Wacom Intuos S",
			Type:         device.TypeTablet,
			Capabilities: []device.Capability{device.CapTabletExternal},
			Grouping:     device.GroupPhysPrefix,
		},

		// Anything still on the legacy gameport bus is a joystick.
		{
			Match:    Match{Bus: "gameport"},
			Type:     device.TypeJoystick,
			Grouping: device.GroupNone,
		},
	}
}
