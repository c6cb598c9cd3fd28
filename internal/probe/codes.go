package probe

// Constants below mirror <linux/input.h> and <linux/input-event-codes.h>.
// Only the codes the classifier rules inspect are named; bitmaps still
// carry the full code ranges so database overrides and future rules can
// reach codes without a named constant.

// BusType identifies the hardware bus a device reports in its input_id.
type BusType uint16

// Bus identifiers from <linux/input.h>.
const (
	BusPCI       BusType = 0x01
	BusISAPnP    BusType = 0x02
	BusUSB       BusType = 0x03
	BusHIL       BusType = 0x04
	BusBluetooth BusType = 0x05
	BusVirtual   BusType = 0x06

	BusISA      BusType = 0x10
	BusI8042    BusType = 0x11
	BusXTKbd    BusType = 0x12
	BusRS232    BusType = 0x13
	BusGamePort BusType = 0x14
	BusParPort  BusType = 0x15
	BusAmiga    BusType = 0x16
	BusADB      BusType = 0x17
	BusI2C      BusType = 0x18
	BusHost     BusType = 0x19
	BusGSC      BusType = 0x1a
	BusAtari    BusType = 0x1b
	BusSPI      BusType = 0x1c
	BusRMI      BusType = 0x1d
	BusCEC      BusType = 0x1e
	BusIntelISH BusType = 0x1f
)

var busNames = map[BusType]string{
	BusPCI:       "pci",
	BusISAPnP:    "isapnp",
	BusUSB:       "usb",
	BusHIL:       "hil",
	BusBluetooth: "bluetooth",
	BusVirtual:   "virtual",
	BusISA:       "isa",
	BusI8042:     "i8042",
	BusXTKbd:     "xtkbd",
	BusRS232:     "rs232",
	BusGamePort:  "gameport",
	BusParPort:   "parport",
	BusAmiga:     "amiga",
	BusADB:       "adb",
	BusI2C:       "i2c",
	BusHost:      "host",
	BusGSC:       "gsc",
	BusAtari:     "atari",
	BusSPI:       "spi",
	BusRMI:       "rmi",
	BusCEC:       "cec",
	BusIntelISH:  "intel-ish",
}

// busValues is the reverse of busNames, for parsing bus names out of
// database fragments and config.
var busValues = func() map[string]BusType {
	m := make(map[string]BusType, len(busNames))
	for b, name := range busNames {
		m[name] = b
	}
	return m
}()

// Known reports whether the bus identifier is in the kernel's table.
// A probe returning an unknown bus fails with ErrUnsupportedBusType.
func (b BusType) Known() bool {
	_, ok := busNames[b]
	return ok
}

// ParseBus resolves a lower-case bus name ("usb", "bluetooth", ...) to
// its identifier.
func ParseBus(name string) (BusType, bool) {
	b, ok := busValues[name]
	return b, ok
}

// String returns the lower-case bus name, or "unknown" for values
// outside the kernel table.
func (b BusType) String() string {
	if s, ok := busNames[b]; ok {
		return s
	}
	return "unknown"
}

// EventType identifies an evdev event class (EV_*).
type EventType uint16

const (
	EventSyn          EventType = 0x00
	EventKey          EventType = 0x01
	EventRelative     EventType = 0x02
	EventAbsolute     EventType = 0x03
	EventMisc         EventType = 0x04
	EventSwitch       EventType = 0x05
	EventLED          EventType = 0x11
	EventSound        EventType = 0x12
	EventRepeat       EventType = 0x14
	EventForceFeed    EventType = 0x15
	EventPower        EventType = 0x16
	EventForceFeedSta EventType = 0x17

	eventMax = 0x1f
)

// KeyCode identifies an EV_KEY code (keys and buttons share the range).
type KeyCode uint16

const (
	KeyEsc   KeyCode = 0x01
	KeyD     KeyCode = 0x20
	KeySpace KeyCode = 0x39

	BtnMisc   KeyCode = 0x100
	BtnMouse  KeyCode = 0x110
	BtnLeft   KeyCode = 0x110
	BtnRight  KeyCode = 0x111
	BtnMiddle KeyCode = 0x112

	BtnJoystick KeyCode = 0x120
	BtnTrigger  KeyCode = 0x120
	BtnThumb    KeyCode = 0x121

	BtnGamepad KeyCode = 0x130
	BtnSouth   KeyCode = 0x130
	BtnEast    KeyCode = 0x131

	BtnToolPen      KeyCode = 0x140
	BtnToolRubber   KeyCode = 0x141
	BtnToolBrush    KeyCode = 0x142
	BtnToolPencil   KeyCode = 0x143
	BtnToolAirbrush KeyCode = 0x144
	BtnToolFinger   KeyCode = 0x145
	BtnToolMouse    KeyCode = 0x146
	BtnToolLens     KeyCode = 0x147

	BtnTouch        KeyCode = 0x14a
	BtnStylus       KeyCode = 0x14b
	BtnStylus2      KeyCode = 0x14c
	BtnToolDoubleTap KeyCode = 0x14d
	BtnToolTripleTap KeyCode = 0x14e
	BtnToolQuadTap   KeyCode = 0x14f

	BtnWheel    KeyCode = 0x150
	BtnDPadUp   KeyCode = 0x220
	BtnDPadDown KeyCode = 0x221

	keyMax = 0x2ff
)

// RelCode identifies an EV_REL axis.
type RelCode uint16

const (
	RelX      RelCode = 0x00
	RelY      RelCode = 0x01
	RelHWheel RelCode = 0x06
	RelDial   RelCode = 0x07
	RelWheel  RelCode = 0x08

	relMax = 0x0f
)

// AbsCode identifies an EV_ABS axis.
type AbsCode uint16

const (
	AbsX        AbsCode = 0x00
	AbsY        AbsCode = 0x01
	AbsZ        AbsCode = 0x02
	AbsRX       AbsCode = 0x03
	AbsRY       AbsCode = 0x04
	AbsRZ       AbsCode = 0x05
	AbsThrottle AbsCode = 0x06
	AbsRudder   AbsCode = 0x07
	AbsWheel    AbsCode = 0x08
	AbsGas      AbsCode = 0x09
	AbsBrake    AbsCode = 0x0a
	AbsHat0X    AbsCode = 0x10
	AbsHat0Y    AbsCode = 0x11
	AbsPressure AbsCode = 0x18
	AbsDistance AbsCode = 0x19

	AbsMTSlot       AbsCode = 0x2f
	AbsMTPositionX  AbsCode = 0x35
	AbsMTPositionY  AbsCode = 0x36
	AbsMTTrackingID AbsCode = 0x39

	absMax = 0x3f
)

// SwitchCode identifies an EV_SW state switch.
type SwitchCode uint16

const (
	SwLid            SwitchCode = 0x00
	SwTabletMode     SwitchCode = 0x01
	SwHeadphoneInsert SwitchCode = 0x02

	switchMax = 0x10
)

// PropCode identifies an input property bit (INPUT_PROP_*).
type PropCode uint16

const (
	PropPointer       PropCode = 0x00
	PropDirect        PropCode = 0x01
	PropButtonPad     PropCode = 0x02
	PropSemiMT        PropCode = 0x03
	PropTopButtonPad  PropCode = 0x04
	PropPointingStick PropCode = 0x05
	PropAccelerometer PropCode = 0x06

	propMax = 0x1f
)

// HID usage pages and usages recognised by the hidraw probe. Pages and
// usage IDs follow the USB HID Usage Tables.
const (
	UsagePageGenericDesktop uint16 = 0x01
	UsagePageDigitizer      uint16 = 0x0d

	UsageMouse    uint16 = 0x02
	UsageJoystick uint16 = 0x04
	UsageGamepad  uint16 = 0x05
	UsageKeyboard uint16 = 0x06

	UsageDigitizerPen         uint16 = 0x02
	UsageDigitizerTouchScreen uint16 = 0x04
	UsageDigitizerTouchPad    uint16 = 0x05
)
