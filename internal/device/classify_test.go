package device

import (
	"testing"

	"github.com/nerrad567/inputid/internal/probe"
)

// evdevInfo builds a RawDeviceInfo with full-width bitmaps so tests can
// set arbitrary codes.
func evdevInfo(mutate func(*probe.RawDeviceInfo)) *probe.RawDeviceInfo {
	info := &probe.RawDeviceInfo{
		Kind:     probe.KindEvdev,
		Bus:      probe.BusUSB,
		Events:   make(probe.Bitmap, 4),
		Keys:     make(probe.Bitmap, 96),
		Rel:      make(probe.Bitmap, 2),
		Abs:      make(probe.Bitmap, 8),
		Switches: make(probe.Bitmap, 4),
		Props:    make(probe.Bitmap, 4),
	}
	if mutate != nil {
		mutate(info)
	}
	return info
}

// mouseBits sets the classic pointer shape: relative motion plus the
// primary button.
func mouseBits(info *probe.RawDeviceInfo) {
	info.Events.Set(uint16(probe.EventKey))
	info.Events.Set(uint16(probe.EventRelative))
	info.Rel.Set(uint16(probe.RelX))
	info.Rel.Set(uint16(probe.RelY))
	info.Keys.Set(uint16(probe.BtnLeft))
}

// keyboardBits claims the whole alphanumeric block.
func keyboardBits(info *probe.RawDeviceInfo) {
	info.Events.Set(uint16(probe.EventKey))
	for c := probe.KeyEsc; c <= probe.KeyD; c++ {
		info.Keys.Set(uint16(c))
	}
}

// touchpadBits sets multi-touch absolute coordinates with a finger
// tool and no direct-touch property.
func touchpadBits(info *probe.RawDeviceInfo) {
	info.Events.Set(uint16(probe.EventKey))
	info.Events.Set(uint16(probe.EventAbsolute))
	info.Abs.Set(uint16(probe.AbsX))
	info.Abs.Set(uint16(probe.AbsY))
	info.Abs.Set(uint16(probe.AbsMTPositionX))
	info.Abs.Set(uint16(probe.AbsMTPositionY))
	info.Keys.Set(uint16(probe.BtnToolFinger))
	info.Keys.Set(uint16(probe.BtnTouch))
	info.Keys.Set(uint16(probe.BtnLeft))
}

// gamepadBits claims the dedicated gamepad button block plus wide axes.
func gamepadBits(info *probe.RawDeviceInfo) {
	info.Events.Set(uint16(probe.EventKey))
	info.Events.Set(uint16(probe.EventAbsolute))
	info.Abs.Set(uint16(probe.AbsX))
	info.Abs.Set(uint16(probe.AbsY))
	info.Abs.Set(uint16(probe.AbsRZ))
	info.Keys.Set(uint16(probe.BtnSouth))
	info.Keys.Set(uint16(probe.BtnEast))
}

func TestClassifyEvdev(t *testing.T) {
	tests := []struct {
		name string
		info *probe.RawDeviceInfo
		want CapabilitySet
	}{
		{
			name: "mouse shape yields pointer only",
			info: evdevInfo(mouseBits),
			want: NewCapabilitySet(CapPointer),
		},
		{
			name: "alphanumeric block yields keyboard",
			info: evdevInfo(keyboardBits),
			want: NewCapabilitySet(CapKeyboard),
		},
		{
			name: "few stray keys do not make a keyboard",
			info: evdevInfo(func(i *probe.RawDeviceInfo) {
				i.Events.Set(uint16(probe.EventKey))
				i.Keys.Set(uint16(probe.KeyEsc))
				i.Keys.Set(uint16(probe.KeySpace))
			}),
			want: NewCapabilitySet(),
		},
		{
			name: "finger tool multitouch yields touchpad",
			info: evdevInfo(touchpadBits),
			want: NewCapabilitySet(CapTouchpad),
		},
		{
			name: "touchpad with buttonpad property yields clickpad",
			info: evdevInfo(func(i *probe.RawDeviceInfo) {
				touchpadBits(i)
				i.Props.Set(uint16(probe.PropButtonPad))
			}),
			want: NewCapabilitySet(CapClickpad),
		},
		{
			name: "buttonpad with pressure and no click button yields pressure pad",
			info: evdevInfo(func(i *probe.RawDeviceInfo) {
				touchpadBits(i)
				i.Keys = make(probe.Bitmap, 96) // drop BtnLeft
				i.Keys.Set(uint16(probe.BtnToolFinger))
				i.Keys.Set(uint16(probe.BtnTouch))
				i.Props.Set(uint16(probe.PropButtonPad))
				i.Abs.Set(uint16(probe.AbsPressure))
			}),
			want: NewCapabilitySet(CapPressurePad),
		},
		{
			name: "direct touch yields touchscreen",
			info: evdevInfo(func(i *probe.RawDeviceInfo) {
				i.Events.Set(uint16(probe.EventKey))
				i.Events.Set(uint16(probe.EventAbsolute))
				i.Abs.Set(uint16(probe.AbsX))
				i.Abs.Set(uint16(probe.AbsY))
				i.Keys.Set(uint16(probe.BtnTouch))
				i.Props.Set(uint16(probe.PropDirect))
			}),
			want: NewCapabilitySet(CapTouchscreen),
		},
		{
			name: "pen with direct property yields tablet screen",
			info: evdevInfo(func(i *probe.RawDeviceInfo) {
				i.Events.Set(uint16(probe.EventKey))
				i.Events.Set(uint16(probe.EventAbsolute))
				i.Abs.Set(uint16(probe.AbsX))
				i.Abs.Set(uint16(probe.AbsY))
				i.Keys.Set(uint16(probe.BtnToolPen))
				i.Props.Set(uint16(probe.PropDirect))
			}),
			want: NewCapabilitySet(CapTabletScreen),
		},
		{
			name: "stylus without direct property yields external tablet",
			info: evdevInfo(func(i *probe.RawDeviceInfo) {
				i.Events.Set(uint16(probe.EventKey))
				i.Events.Set(uint16(probe.EventAbsolute))
				i.Abs.Set(uint16(probe.AbsX))
				i.Abs.Set(uint16(probe.AbsY))
				i.Keys.Set(uint16(probe.BtnStylus))
			}),
			want: NewCapabilitySet(CapTabletExternal),
		},
		{
			name: "pointing stick property yields pointing stick",
			info: evdevInfo(func(i *probe.RawDeviceInfo) {
				mouseBits(i)
				i.Props.Set(uint16(probe.PropPointingStick))
			}),
			want: NewCapabilitySet(CapPointer, CapPointing),
		},
		{
			name: "gamepad button block yields gamepad",
			info: evdevInfo(gamepadBits),
			want: NewCapabilitySet(CapGamepad),
		},
		{
			name: "trigger buttons with wide axes yield joystick",
			info: evdevInfo(func(i *probe.RawDeviceInfo) {
				i.Events.Set(uint16(probe.EventKey))
				i.Events.Set(uint16(probe.EventAbsolute))
				i.Abs.Set(uint16(probe.AbsX))
				i.Abs.Set(uint16(probe.AbsY))
				i.Abs.Set(uint16(probe.AbsThrottle))
				i.Keys.Set(uint16(probe.BtnTrigger))
				i.Keys.Set(uint16(probe.BtnThumb))
			}),
			want: NewCapabilitySet(CapJoystick),
		},
		{
			name: "switch codes yield switch",
			info: evdevInfo(func(i *probe.RawDeviceInfo) {
				i.Events.Set(uint16(probe.EventSwitch))
				i.Switches.Set(uint16(probe.SwLid))
			}),
			want: NewCapabilitySet(CapSwitch),
		},
		{
			name: "keyboard with pointer keeps both tags",
			info: evdevInfo(func(i *probe.RawDeviceInfo) {
				keyboardBits(i)
				mouseBits(i)
			}),
			want: NewCapabilitySet(CapKeyboard, CapPointer),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.info)
			if !got.Equal(tt.want) {
				t.Errorf("Classify() = %v, want %v", got.Sorted(), tt.want.Sorted())
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	info := evdevInfo(func(i *probe.RawDeviceInfo) {
		gamepadBits(i)
		touchpadBits(i)
	})

	first := Classify(info)
	for i := 0; i < 20; i++ {
		if got := Classify(info); !got.Equal(first) {
			t.Fatalf("run %d diverged: %v vs %v", i, got.Sorted(), first.Sorted())
		}
	}
}

func TestClassifyHidrawUsages(t *testing.T) {
	tests := []struct {
		name   string
		usages []probe.HIDUsage
		want   CapabilitySet
	}{
		{
			name:   "generic desktop mouse",
			usages: []probe.HIDUsage{{Page: probe.UsagePageGenericDesktop, Usage: probe.UsageMouse}},
			want:   NewCapabilitySet(CapPointer),
		},
		{
			name:   "generic desktop gamepad",
			usages: []probe.HIDUsage{{Page: probe.UsagePageGenericDesktop, Usage: probe.UsageGamepad}},
			want:   NewCapabilitySet(CapGamepad),
		},
		{
			name:   "digitizer touchpad",
			usages: []probe.HIDUsage{{Page: probe.UsagePageDigitizer, Usage: probe.UsageDigitizerTouchPad}},
			want:   NewCapabilitySet(CapTouchpad),
		},
		{
			name: "composite keyboard and mouse",
			usages: []probe.HIDUsage{
				{Page: probe.UsagePageGenericDesktop, Usage: probe.UsageKeyboard},
				{Page: probe.UsagePageGenericDesktop, Usage: probe.UsageMouse},
			},
			want: NewCapabilitySet(CapKeyboard, CapPointer),
		},
		{
			name:   "unrecognised usage yields nothing",
			usages: []probe.HIDUsage{{Page: 0x0c, Usage: 0x01}},
			want:   NewCapabilitySet(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := &probe.RawDeviceInfo{
				Kind:   probe.KindHidraw,
				Bus:    probe.BusUSB,
				Usages: tt.usages,
			}
			got := Classify(info)
			if !got.Equal(tt.want) {
				t.Errorf("Classify() = %v, want %v", got.Sorted(), tt.want.Sorted())
			}
		})
	}
}
