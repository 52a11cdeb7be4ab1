package codec

// toBCD packs v (0-99) as tens in the high nibble, units in the low nibble.
func toBCD(v int) byte {
	return byte((v/10)&0x0F)<<4 | byte(v%10)&0x0F
}

// fromBCD unpacks a BCD byte after masking the tens nibble with tensMask.
func fromBCD(b byte, tensMask byte) int {
	return int((b>>4)&tensMask)*10 + int(b&0x0F)
}

func le16(lo, hi byte) uint16 { return uint16(hi)<<8 | uint16(lo) }

func putLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}
