package registry

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Identity is a kernel-device identity: the device number (st_rdev) of
// the underlying character-device node. Two file handles opened on the
// same node share one Identity regardless of path (/dev/input/event3 and
// a bind-mounted alias are the same device).
type Identity uint64

// String formats the identity as major:minor, matching how the kernel
// names the device elsewhere (sysfs dev files, lsblk).
func (id Identity) String() string {
	rdev := uint64(id)
	return fmt.Sprintf("%d:%d", unix.Major(rdev), unix.Minor(rdev))
}

// ParseIdentity parses the major:minor form produced by String.
func ParseIdentity(s string) (Identity, error) {
	var major, minor uint32
	if _, err := fmt.Sscanf(s, "%d:%d", &major, &minor); err != nil {
		return 0, fmt.Errorf("%w: parse %q: %v", ErrIdentityFailed, s, err)
	}
	return Identity(unix.Mkdev(major, minor)), nil
}

// identityOf resolves a file handle to its kernel-device identity.
func identityOf(f *os.File) (Identity, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return 0, fmt.Errorf("%w: fstat %s: %v", ErrIdentityFailed, f.Name(), err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		return 0, fmt.Errorf("%w: %s is not a character device", ErrIdentityFailed, f.Name())
	}
	return Identity(st.Rdev), nil
}
