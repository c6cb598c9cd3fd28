package probe

// Bitmap is a kernel code bitmap as returned by EVIOCGBIT and EVIOCGPROP:
// one bit per code, little-endian within each byte, bit n stored at
// byte n/8, bit n%8.
type Bitmap []byte

// newBitmap allocates a bitmap wide enough for codes 0..max inclusive.
func newBitmap(max uint16) Bitmap {
	return make(Bitmap, (int(max)+8)/8)
}

// Has reports whether code's bit is set. Codes beyond the bitmap's
// width are absent, not an error.
func (b Bitmap) Has(code uint16) bool {
	i := int(code) / 8
	if i >= len(b) {
		return false
	}
	return b[i]>>(code%8)&1 == 1
}

// Set marks code as present, growing nothing: out-of-range codes are
// dropped. Used by tests and raw overrides, never by the kernel path.
func (b Bitmap) Set(code uint16) {
	i := int(code) / 8
	if i < len(b) {
		b[i] |= 1 << (code % 8)
	}
}

// Any reports whether at least one bit is set.
func (b Bitmap) Any() bool {
	for _, v := range b {
		if v != 0 {
			return true
		}
	}
	return false
}

// CountRange returns how many codes in [lo, hi] are present.
func (b Bitmap) CountRange(lo, hi uint16) int {
	n := 0
	for c := lo; c <= hi; c++ {
		if b.Has(c) {
			n++
		}
	}
	return n
}

// HasAll reports whether every code in [lo, hi] is present.
func (b Bitmap) HasAll(lo, hi uint16) bool {
	for c := lo; c <= hi; c++ {
		if !b.Has(c) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy so RawDeviceInfo values can be
// retained without aliasing probe buffers.
func (b Bitmap) Clone() Bitmap {
	if b == nil {
		return nil
	}
	out := make(Bitmap, len(b))
	copy(out, b)
	return out
}
