package pixel

// ByteOrder is the order in which the two bytes of a pixel go on the wire.
type ByteOrder uint8

const (
	// BigEndian sends the high byte first. This is what ST7789 expects in
	// 16-bit color mode.
	BigEndian ByteOrder = iota
	LittleEndian
)

func (o ByteOrder) String() string {
	if o == LittleEndian {
		return "little-endian"
	}
	return "big-endian"
}

// Put writes c into dst[0:2].
func (o ByteOrder) Put(dst []byte, c Color) {
	_ = dst[1]
	if o == LittleEndian {
		dst[0] = byte(c)
		dst[1] = byte(c >> 8)
		return
	}
	dst[0] = byte(c >> 8)
	dst[1] = byte(c)
}

// Get reads a pixel from b[0:2].
func (o ByteOrder) Get(b []byte) Color {
	_ = b[1]
	if o == LittleEndian {
		return Color(b[0]) | Color(b[1])<<8
	}
	return Color(b[0])<<8 | Color(b[1])
}

// Encode writes as many pixels of src as fit into dst and returns the
// number of bytes written.
func (o ByteOrder) Encode(dst []byte, src []Color) int {
	n := len(src)
	if m := len(dst) / 2; m < n {
		n = m
	}
	if o == LittleEndian {
		for i := 0; i < n; i++ {
			c := src[i]
			dst[2*i] = byte(c)
			dst[2*i+1] = byte(c >> 8)
		}
		return 2 * n
	}
	for i := 0; i < n; i++ {
		c := src[i]
		dst[2*i] = byte(c >> 8)
		dst[2*i+1] = byte(c)
	}
	return 2 * n
}
