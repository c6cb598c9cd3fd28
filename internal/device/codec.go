package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/inputid/internal/probe"
)

// CodecVersion is the payload format version this package writes and
// the highest it accepts. Receivers seeing a higher version must reject
// the payload outright; within one version unknown keys and capability
// tags are skipped, so additions do not need a version bump.
const CodecVersion = 1

// codecMagic is the header keyword of every payload.
const codecMagic = "inputid"

// Serialize encodes the device as a self-contained, versioned text
// payload:
//
//	inputid 1
//	bus 0x0003
//	vendor 0x054c
//	product 0x09cc
//	name Wireless Controller
//	caps gamepad joystick pointer touchpad
//	type gamepad
//
// Line order is fixed and the caps list is sorted, so equal devices
// encode byte-identically. The name line is omitted when empty, caps
// when the set is empty, type when unknown.
//
// The name comes from a kernel string the driver filled in; control
// characters in it would break the one-field-per-line framing, so they
// are replaced with spaces before writing.
//
// Fails with ErrIncomplete only when the bus is absent; any
// Builder-produced Device carries one.
func (d *Device) Serialize() (string, error) {
	if d.bus == 0 {
		return "", fmt.Errorf("%w: missing bus", ErrIncomplete)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d\n", codecMagic, CodecVersion)
	fmt.Fprintf(&sb, "bus 0x%04x\n", uint16(d.bus))
	fmt.Fprintf(&sb, "vendor 0x%04x\n", d.vendor)
	fmt.Fprintf(&sb, "product 0x%04x\n", d.product)
	if name := sanitizeName(d.name); name != "" {
		fmt.Fprintf(&sb, "name %s\n", name)
	}
	if len(d.caps) > 0 {
		tags := make([]string, 0, len(d.caps))
		for _, c := range d.caps.Sorted() {
			tags = append(tags, string(c))
		}
		fmt.Fprintf(&sb, "caps %s\n", strings.Join(tags, " "))
	}
	if d.physType != "" {
		fmt.Fprintf(&sb, "type %s\n", d.physType)
	}
	return sb.String(), nil
}

// Deserialize reconstructs a Device from a serialized payload using
// only the payload itself: no probing, no database access. This is
// what lets an unprivileged receiver complete identification.
//
// Unknown keys and unknown capability tags are skipped for forward
// compatibility. A version newer than CodecVersion fails with
// ErrUnsupportedVersion before any field is interpreted; structural
// problems fail with ErrMalformedInput.
func Deserialize(payload string) (*Device, error) {
	lines := strings.Split(strings.TrimRight(payload, "\n"), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedInput)
	}

	version, err := parseHeader(lines[0])
	if err != nil {
		return nil, err
	}
	if version > CodecVersion {
		return nil, fmt.Errorf("%w: version %d, supported up to %d",
			ErrUnsupportedVersion, version, CodecVersion)
	}

	dev := &Device{caps: make(CapabilitySet)}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, " ")
		if !found {
			return nil, fmt.Errorf("%w: line %q", ErrMalformedInput, line)
		}
		switch key {
		case "bus":
			v, err := parseHex(value)
			if err != nil {
				return nil, fmt.Errorf("%w: bus %q", ErrMalformedInput, value)
			}
			dev.bus = probe.BusType(v)
		case "vendor":
			v, err := parseHex(value)
			if err != nil {
				return nil, fmt.Errorf("%w: vendor %q", ErrMalformedInput, value)
			}
			dev.vendor = v
		case "product":
			v, err := parseHex(value)
			if err != nil {
				return nil, fmt.Errorf("%w: product %q", ErrMalformedInput, value)
			}
			dev.product = v
		case "name":
			dev.name = value
		case "caps":
			for _, tag := range strings.Fields(value) {
				if c := Capability(tag); c.Known() {
					dev.caps.Add(c)
				}
				// Unknown tags: a newer sender, drop silently.
			}
		case "type":
			if t := PhysicalType(value); t.Known() {
				dev.physType = t
			}
		default:
			// Unknown key: a newer sender, skip the line.
		}
	}

	if dev.bus == 0 {
		return nil, fmt.Errorf("%w: missing bus line", ErrMalformedInput)
	}
	return dev, nil
}

// sanitizeName makes a device name safe for the line-oriented payload:
// control characters become spaces and surrounding whitespace is
// trimmed.
func sanitizeName(name string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, name)
	return strings.TrimSpace(clean)
}

// parseHeader validates the "inputid <version>" first line.
func parseHeader(line string) (int, error) {
	magic, rest, found := strings.Cut(line, " ")
	if !found || magic != codecMagic {
		return 0, fmt.Errorf("%w: bad header %q", ErrMalformedInput, line)
	}
	version, err := strconv.Atoi(rest)
	if err != nil || version < 1 {
		return 0, fmt.Errorf("%w: bad version %q", ErrMalformedInput, rest)
	}
	return version, nil
}

// parseHex parses a 0x-prefixed 16-bit identifier.
func parseHex(s string) (uint16, error) {
	if !strings.HasPrefix(s, "0x") {
		return 0, fmt.Errorf("missing 0x prefix")
	}
	v, err := strconv.ParseUint(s[2:], 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
