package device

import "github.com/nerrad567/inputid/internal/probe"

// Button-count thresholds for the gaming rules. A joystick candidate
// needs a trigger-range button; a device claiming the dedicated gamepad
// button block is a gamepad regardless of count.
const (
	// minKeyboardKeys is how many codes of the alphanumeric block a
	// device must claim before the keyboard rule fires. Media remotes
	// and headset buttons claim a handful of KEY_* codes; real
	// keyboards claim the whole block.
	minKeyboardKeys = 20

	// alphanumericLo/Hi bound the KEY_ESC..KEY_D block the keyboard
	// rule counts over.
	alphanumericLo = probe.KeyEsc
	alphanumericHi = probe.KeyD
)

// Classify maps raw capability bits onto the canonical capability set.
//
// The rule table is pure, deterministic, and additive: every rule tests
// for the presence of specific codes and adds at most one tag; rules
// are independent, so a device legitimately collects several tags.
// Identical input bits always yield an identical set.
//
// Joystick and gamepad tags are candidates only; the resolver confirms
// or discards them against the database and its heuristics.
func Classify(info *probe.RawDeviceInfo) CapabilitySet {
	caps := make(CapabilitySet)
	if info == nil {
		return caps
	}
	if info.Kind == probe.KindHidraw {
		classifyUsages(info, caps)
		return caps
	}
	classifyEvdev(info, caps)
	return caps
}

// classifyEvdev applies the event-code rule table. Rule order does not
// matter for the result (rules are additive and independent); they are
// listed roughly pointer-first for readability.
func classifyEvdev(info *probe.RawDeviceInfo, caps CapabilitySet) {
	relPointer := info.HasRel(probe.RelX) && info.HasRel(probe.RelY) && info.HasKey(probe.BtnLeft)
	absXY := info.HasAbs(probe.AbsX) && info.HasAbs(probe.AbsY)
	multitouch := info.HasAbs(probe.AbsMTPositionX) && info.HasAbs(probe.AbsMTPositionY)
	fingerTool := info.HasKey(probe.BtnToolFinger)
	pen := info.HasKey(probe.BtnToolPen) || info.HasKey(probe.BtnStylus)
	direct := info.HasProp(probe.PropDirect)

	// Relative motion plus a primary button: the classic pointer shape.
	if relPointer {
		caps.Add(CapPointer)
	}

	// A substantial slice of the alphanumeric block means a keyboard;
	// stray consumer keys alone do not.
	if info.HasEvent(probe.EventKey) &&
		info.ButtonCount(alphanumericLo, alphanumericHi) >= minKeyboardKeys {
		caps.Add(CapKeyboard)
	}

	// Touchpads report absolute (often multi-touch) coordinates with a
	// finger tool and no direct-touch property; touchscreens are the
	// direct-touch counterpart.
	if (absXY || multitouch) && fingerTool && !direct && !pen {
		caps.Add(CapTouchpad)
		if info.HasProp(probe.PropButtonPad) {
			caps.Add(CapClickpad)
		}
		// A buttonpad with a pressure axis and no physical click
		// button resolves clicks from pressure alone.
		if info.HasProp(probe.PropButtonPad) &&
			info.HasAbs(probe.AbsPressure) && !info.HasKey(probe.BtnLeft) {
			caps.Add(CapPressurePad)
		}
	}
	if (absXY || multitouch) && info.HasKey(probe.BtnTouch) && !pen &&
		(direct || !fingerTool) && !relPointer {
		caps.Add(CapTouchscreen)
	}

	// Pen or stylus tools mark tablets; the direct property separates
	// on-screen digitizers from external ones.
	if pen {
		if direct {
			caps.Add(CapTabletScreen)
		} else {
			caps.Add(CapTabletExternal)
		}
	}

	if info.HasProp(probe.PropPointingStick) {
		caps.Add(CapPointing)
	}

	// Gaming shapes. BTN_GAMEPAD (the BTN_SOUTH block) is definitive
	// for gamepads; the trigger/joystick button range plus wide
	// absolute axes marks a joystick candidate.
	if info.ButtonCount(probe.BtnGamepad, probe.BtnGamepad+0xf) > 0 {
		caps.Add(CapGamepad)
	}
	if info.ButtonCount(probe.BtnJoystick, probe.BtnJoystick+0xf) > 0 &&
		absXY && (info.HasAbs(probe.AbsRZ) || info.HasAbs(probe.AbsThrottle) ||
		info.HasAbs(probe.AbsHat0X)) {
		caps.Add(CapJoystick)
	}

	if info.Switches.Any() {
		caps.Add(CapSwitch)
	}
}

// usageCaps maps top-level HID application collections onto capability
// tags for the hidraw path.
var usageCaps = []struct {
	page  uint16
	usage uint16
	cap   Capability
}{
	{probe.UsagePageGenericDesktop, probe.UsageMouse, CapPointer},
	{probe.UsagePageGenericDesktop, probe.UsageKeyboard, CapKeyboard},
	{probe.UsagePageGenericDesktop, probe.UsageJoystick, CapJoystick},
	{probe.UsagePageGenericDesktop, probe.UsageGamepad, CapGamepad},
	{probe.UsagePageDigitizer, probe.UsageDigitizerTouchPad, CapTouchpad},
	{probe.UsagePageDigitizer, probe.UsageDigitizerTouchScreen, CapTouchscreen},
	{probe.UsagePageDigitizer, probe.UsageDigitizerPen, CapTablet},
}

// classifyUsages maps the HID usage summary directly: the application
// collections say what the device presents itself as.
func classifyUsages(info *probe.RawDeviceInfo, caps CapabilitySet) {
	for _, m := range usageCaps {
		if info.HasUsage(m.page, m.usage) {
			caps.Add(m.cap)
		}
	}
}
