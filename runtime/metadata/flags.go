package metadata

import (
	"fmt"
	"unsafe"
)

// Unsigned is the set of storage types for Flags.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Flags is a bit set indexed by the values of E and stored in S.
// Every value used must be smaller than the bit width of S; anything else
// panics.
type Flags[E Integer, S Unsigned] struct {
	bits S
}

// NewFlags returns a set with the given flags on.
func NewFlags[E Integer, S Unsigned](set ...E) Flags[E, S] {
	var f Flags[E, S]
	for _, e := range set {
		f.Set(e)
	}
	return f
}

// Set turns e on.
func (f *Flags[E, S]) Set(e E) {
	f.bits |= f.mask(e)
}

// Clear turns e off.
func (f *Flags[E, S]) Clear(e E) {
	f.bits &^= f.mask(e)
}

// Has reports whether e is on.
func (f Flags[E, S]) Has(e E) bool {
	return f.bits&f.mask(e) != 0
}

// Reset turns everything off.
func (f *Flags[E, S]) Reset() {
	f.bits = 0
}

// Value returns the raw storage.
func (f Flags[E, S]) Value() S {
	return f.bits
}

func (f Flags[E, S]) mask(e E) S {
	width := uint64(unsafe.Sizeof(f.bits)) * 8
	if e < 0 || uint64(e) >= width {
		panic(fmt.Sprintf("metadata: flag %d does not fit in %d-bit storage", e, width))
	}
	return S(1) << uint64(e)
}
