package probe

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request encoding (the kernel's _IOC macro).
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocRead = 2
)

func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

// Evdev requests ('E' ioctls from <linux/input.h>).
func eviocgID(size uint32) uintptr       { return ioc(iocRead, 'E', 0x02, size) }
func eviocgName(size uint32) uintptr     { return ioc(iocRead, 'E', 0x06, size) }
func eviocgPhys(size uint32) uintptr     { return ioc(iocRead, 'E', 0x07, size) }
func eviocgUniq(size uint32) uintptr     { return ioc(iocRead, 'E', 0x08, size) }
func eviocgProp(size uint32) uintptr     { return ioc(iocRead, 'E', 0x09, size) }
func eviocgBit(ev EventType, size uint32) uintptr {
	return ioc(iocRead, 'E', 0x20+uint32(ev), size)
}

// Hidraw requests ('H' ioctls from <linux/hidraw.h>).
func hidiocgRDescSize(size uint32) uintptr { return ioc(iocRead, 'H', 0x01, size) }
func hidiocgRDesc(size uint32) uintptr     { return ioc(iocRead, 'H', 0x02, size) }
func hidiocgRawInfo(size uint32) uintptr   { return ioc(iocRead, 'H', 0x03, size) }
func hidiocgRawName(size uint32) uintptr   { return ioc(iocRead, 'H', 0x04, size) }

// ioctlPointer issues a read ioctl into ptr. The errno is preserved so
// callers can map it onto the probe error taxonomy.
func ioctlPointer(fd uintptr, req uintptr, ptr unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(ptr)); errno != 0 {
		return errno
	}
	return nil
}

// ioctlString issues a read ioctl into buf and returns the bytes up to
// the first NUL as a string.
func ioctlString(fd uintptr, req uintptr, buf []byte) (string, error) {
	if err := ioctlPointer(fd, req, unsafe.Pointer(&buf[0])); err != nil {
		return "", err
	}
	for i, c := range buf {
		if c == 0 {
			return string(buf[:i]), nil
		}
	}
	return string(buf), nil
}

// mapErrno converts a raw syscall error into the probe taxonomy,
// keeping the underlying errno in the chain for diagnostics.
func mapErrno(op string, err error) error {
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, op, err)
	case errors.Is(err, unix.ENOTTY), errors.Is(err, unix.ENODEV):
		return fmt.Errorf("%w: %s: %v", ErrNotADeviceNode, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrQueryFailed, op, err)
	}
}
