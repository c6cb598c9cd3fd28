package probe

import "fmt"

// HID report descriptor item constants (Device Class Definition for
// HID 1.11, section 6.2.2). Only the items the top-level scan needs are
// named.
const (
	hidItemTypeMain   = 0
	hidItemTypeGlobal = 1
	hidItemTypeLocal  = 2

	hidTagCollection    = 0x0a
	hidTagEndCollection = 0x0c

	hidTagUsagePage = 0x00 // global
	hidTagUsage     = 0x00 // local

	hidCollectionApplication = 0x01

	hidLongItemPrefix = 0xfe
)

// hidItemSizes maps the 2-bit bSize field to the item's data length.
var hidItemSizes = [4]int{0, 1, 2, 4}

// scanDescriptor walks a HID report descriptor and collects the usage
// page/usage pair of every top-level application collection. Nested
// collections, report fields and all other items are skipped: the
// application collections alone say what the device presents itself as
// (mouse, keyboard, gamepad, digitizer), which is all the classifier
// consumes on the hidraw path.
func scanDescriptor(desc []byte) ([]HIDUsage, error) {
	var (
		usages    []HIDUsage
		page      uint16 // current global usage page
		usage     uint16 // pending local usage
		usagePage uint16 // page bound to the pending usage
		usageSet  bool
		depth     int
		pageStack []uint16 // pushed by Push/Pop items
	)

	for i := 0; i < len(desc); {
		prefix := desc[i]
		i++

		// Long items carry their own length byte; none are relevant to
		// the collection scan.
		if prefix == hidLongItemPrefix {
			if i >= len(desc) {
				return nil, fmt.Errorf("truncated long item at byte %d", i-1)
			}
			skip := int(desc[i]) + 2 // data + bLongItemTag + bDataSize
			if i+skip > len(desc) {
				return nil, fmt.Errorf("truncated long item at byte %d", i-1)
			}
			i += skip
			continue
		}

		size := hidItemSizes[prefix&0x03]
		typ := (prefix >> 2) & 0x03
		tag := (prefix >> 4) & 0x0f
		if i+size > len(desc) {
			return nil, fmt.Errorf("truncated item 0x%02x at byte %d", prefix, i-1)
		}

		// Little-endian unsigned data; 4-byte values are truncated to
		// the 16 bits the usage tables define.
		var data uint32
		for n := 0; n < size; n++ {
			data |= uint32(desc[i+n]) << (8 * n)
		}
		i += size

		switch typ {
		case hidItemTypeGlobal:
			switch tag {
			case hidTagUsagePage:
				page = uint16(data)
			case 0x0b: // Push
				pageStack = append(pageStack, page)
			case 0x0c: // Pop
				if n := len(pageStack); n > 0 {
					page = pageStack[n-1]
					pageStack = pageStack[:n-1]
				}
			}

		case hidItemTypeLocal:
			// Only the first local usage opens a collection; extended
			// (32-bit) usages carry their own page in the high word.
			if tag == hidTagUsage && !usageSet {
				usage = uint16(data)
				usagePage = page
				if size == 4 {
					usagePage = uint16(data >> 16)
				}
				usageSet = true
			}

		case hidItemTypeMain:
			if tag == hidTagCollection {
				if depth == 0 && data == hidCollectionApplication {
					usages = append(usages, HIDUsage{Page: usagePage, Usage: usage})
				}
				depth++
			}
			if tag == hidTagEndCollection {
				if depth == 0 {
					return nil, fmt.Errorf("unbalanced end collection at byte %d", i-1)
				}
				depth--
			}
			// Locals reset after every main item.
			usageSet = false
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("%d unterminated collection(s)", depth)
	}
	return usages, nil
}
