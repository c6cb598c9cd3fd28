package probe

import "testing"

func TestBitmapHasSet(t *testing.T) {
	b := newBitmap(keyMax)
	codes := []uint16{0, 7, 8, uint16(KeyD), uint16(BtnLeft)}
	for _, c := range codes {
		b.Set(c)
	}
	for _, c := range codes {
		if !b.Has(c) {
			t.Errorf("Has(%d) = false after Set", c)
		}
	}
	if b.Has(1) {
		t.Error("Has(1) = true, bit was never set")
	}
}

func TestBitmapOutOfRange(t *testing.T) {
	b := make(Bitmap, 2)
	b.Set(100) // Silently dropped
	if b.Has(100) {
		t.Error("Has(100) = true on a 16-bit map")
	}
	if b.Any() {
		t.Error("Any() = true, out-of-range Set must not land anywhere")
	}
}

func TestBitmapCountRange(t *testing.T) {
	const lo, hi = 0x10, 0x19
	b := make(Bitmap, 8)
	for c := uint16(lo); c <= hi; c++ {
		b.Set(c)
	}
	if got := b.CountRange(lo, hi); got != hi-lo+1 {
		t.Errorf("CountRange() = %d, want %d", got, hi-lo+1)
	}
	if !b.HasAll(lo, hi) {
		t.Error("HasAll() = false over a fully set range")
	}
	b2 := make(Bitmap, 8)
	b2.Set(lo)
	if b2.HasAll(lo, hi) {
		t.Error("HasAll() = true with a single bit set")
	}
}

func TestBitmapClone(t *testing.T) {
	b := make(Bitmap, 4)
	b.Set(5)
	c := b.Clone()
	c.Set(6)
	if b.Has(6) {
		t.Error("Clone shares storage with the original")
	}
	if !c.Has(5) {
		t.Error("Clone lost an existing bit")
	}
	if Bitmap(nil).Clone() != nil {
		t.Error("Clone of nil should stay nil")
	}
}
