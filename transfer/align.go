package transfer

import "unsafe"

// alignedBytes returns n bytes whose first element sits on an align
// boundary. align must be a power of two.
func alignedBytes(n, align int) []byte {
	buf := make([]byte, n+align)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&buf[0])) & uintptr(align-1)); rem != 0 {
		off = align - rem
	}
	return buf[off : off+n : off+n]
}
