package probe

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Buffer sizes for the string and descriptor ioctls.
const (
	// nameBufSize bounds EVIOCGNAME/EVIOCGPHYS/EVIOCGUNIQ/HIDIOCGRAWNAME
	// answers. The kernel truncates to the supplied buffer.
	nameBufSize = 256

	// hidMaxDescriptorSize mirrors HID_MAX_DESCRIPTOR_SIZE from
	// <linux/hid.h>.
	hidMaxDescriptorSize = 4096
)

// inputID mirrors struct input_id from <linux/input.h>.
type inputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// hidrawDevInfo mirrors struct hidraw_devinfo from <linux/hidraw.h>.
type hidrawDevInfo struct {
	BusType uint32
	Vendor  int16
	Product int16
}

// hidrawReportDescriptor mirrors struct hidraw_report_descriptor.
type hidrawReportDescriptor struct {
	Size  uint32
	Value [hidMaxDescriptorSize]byte
}

// Probe reads identity and capability bits from an already-open device
// handle. The handle is only ioctl'd, never read from or written to, so
// no privilege beyond the open descriptor is needed.
//
// Probe either fully succeeds or returns one of the sentinel errors from
// errors.go; on failure the returned info is always nil.
func Probe(f *os.File, kind Kind) (*RawDeviceInfo, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil handle", ErrNotADeviceNode)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown handle kind %q", ErrQueryFailed, kind)
	}

	fd := f.Fd()
	if err := requireCharDevice(fd); err != nil {
		return nil, err
	}

	switch kind {
	case KindEvdev:
		return probeEvdev(fd)
	case KindHidraw:
		return probeHidraw(fd)
	}
	return nil, fmt.Errorf("%w: unknown handle kind %q", ErrQueryFailed, kind)
}

// requireCharDevice rejects handles that do not refer to a character
// device node before any device ioctl is attempted.
func requireCharDevice(fd uintptr) error {
	var st unix.Stat_t
	if err := unix.Fstat(int(fd), &st); err != nil {
		return mapErrno("fstat", err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		return fmt.Errorf("%w: not a character device", ErrNotADeviceNode)
	}
	return nil
}

// probeEvdev queries a /dev/input/event* handle: input_id, name, phys,
// uniq, per-type event code bitmaps and input properties.
func probeEvdev(fd uintptr) (*RawDeviceInfo, error) {
	var id inputID
	if err := ioctlPointer(fd, eviocgID(uint32(unsafe.Sizeof(id))), unsafe.Pointer(&id)); err != nil {
		return nil, mapErrno("EVIOCGID", err)
	}
	bus := BusType(id.BusType)
	if !bus.Known() {
		return nil, fmt.Errorf("%w: bus 0x%02x", ErrUnsupportedBusType, id.BusType)
	}

	name, err := ioctlString(fd, eviocgName(nameBufSize), make([]byte, nameBufSize))
	if err != nil {
		return nil, mapErrno("EVIOCGNAME", err)
	}

	// The kernel answers ENOENT when the driver never set phys/uniq;
	// both are optional identity hints, not failures.
	phys, err := optionalString(fd, eviocgPhys(nameBufSize))
	if err != nil {
		return nil, mapErrno("EVIOCGPHYS", err)
	}
	uniq, err := optionalString(fd, eviocgUniq(nameBufSize))
	if err != nil {
		return nil, mapErrno("EVIOCGUNIQ", err)
	}

	info := &RawDeviceInfo{
		Kind:    KindEvdev,
		Bus:     bus,
		Vendor:  id.Vendor,
		Product: id.Product,
		Version: id.Version,
		Name:    name,
		Phys:    phys,
		Uniq:    uniq,
	}

	info.Events = newBitmap(eventMax)
	if err := ioctlBitmap(fd, eviocgBit(0, uint32(len(info.Events))), info.Events); err != nil {
		return nil, mapErrno("EVIOCGBIT(0)", err)
	}

	// Per-type code bitmaps, queried only for claimed event classes so a
	// minimal device answers with the fewest ioctls possible.
	for _, q := range []struct {
		ev  EventType
		max uint16
		dst *Bitmap
	}{
		{EventKey, keyMax, &info.Keys},
		{EventRelative, relMax, &info.Rel},
		{EventAbsolute, absMax, &info.Abs},
		{EventSwitch, switchMax, &info.Switches},
	} {
		if !info.Events.Has(uint16(q.ev)) {
			continue
		}
		*q.dst = newBitmap(q.max)
		if err := ioctlBitmap(fd, eviocgBit(q.ev, uint32(len(*q.dst))), *q.dst); err != nil {
			return nil, mapErrno(fmt.Sprintf("EVIOCGBIT(0x%02x)", uint16(q.ev)), err)
		}
	}

	info.Props = newBitmap(propMax)
	if err := ioctlBitmap(fd, eviocgProp(uint32(len(info.Props))), info.Props); err != nil {
		return nil, mapErrno("EVIOCGPROP", err)
	}

	return info, nil
}

// probeHidraw queries a /dev/hidraw* handle: devinfo, name, and the HID
// report descriptor reduced to its top-level application usage pairs.
func probeHidraw(fd uintptr) (*RawDeviceInfo, error) {
	var devinfo hidrawDevInfo
	if err := ioctlPointer(fd, hidiocgRawInfo(uint32(unsafe.Sizeof(devinfo))), unsafe.Pointer(&devinfo)); err != nil {
		return nil, mapErrno("HIDIOCGRAWINFO", err)
	}
	bus := BusType(devinfo.BusType)
	if !bus.Known() {
		return nil, fmt.Errorf("%w: bus 0x%02x", ErrUnsupportedBusType, devinfo.BusType)
	}

	name, err := ioctlString(fd, hidiocgRawName(nameBufSize), make([]byte, nameBufSize))
	if err != nil {
		return nil, mapErrno("HIDIOCGRAWNAME", err)
	}

	var size int32
	if err := ioctlPointer(fd, hidiocgRDescSize(uint32(unsafe.Sizeof(size))), unsafe.Pointer(&size)); err != nil {
		return nil, mapErrno("HIDIOCGRDESCSIZE", err)
	}
	if size < 0 || size > hidMaxDescriptorSize {
		return nil, fmt.Errorf("%w: descriptor size %d out of range", ErrQueryFailed, size)
	}

	desc := hidrawReportDescriptor{Size: uint32(size)}
	if err := ioctlPointer(fd, hidiocgRDesc(uint32(unsafe.Sizeof(desc))), unsafe.Pointer(&desc)); err != nil {
		return nil, mapErrno("HIDIOCGRDESC", err)
	}

	usages, err := scanDescriptor(desc.Value[:size])
	if err != nil {
		return nil, fmt.Errorf("%w: report descriptor: %v", ErrQueryFailed, err)
	}

	return &RawDeviceInfo{
		Kind:    KindHidraw,
		Bus:     bus,
		Vendor:  uint16(devinfo.Vendor),
		Product: uint16(devinfo.Product),
		Name:    name,
		Usages:  usages,
	}, nil
}

// ioctlBitmap fills dst from a bitmap ioctl. A short answer (older
// kernel with a narrower code range) leaves the tail zeroed, which reads
// as "code absent" and needs no special casing.
func ioctlBitmap(fd uintptr, req uintptr, dst Bitmap) error {
	return ioctlPointer(fd, req, unsafe.Pointer(&dst[0]))
}

// optionalString reads a string ioctl that legitimately answers ENOENT
// when the driver never populated the field.
func optionalString(fd uintptr, req uintptr) (string, error) {
	s, err := ioctlString(fd, req, make([]byte, nameBufSize))
	if errors.Is(err, unix.ENOENT) {
		return "", nil
	}
	return s, err
}
