package transport

import "juicebus/internal/errcode"

// Checksum is the XOR fold of b seeded with 0xFF.
func Checksum(b []byte) byte {
	cs := byte(0xFF)
	for _, v := range b {
		cs ^= v
	}
	return cs
}

// AppendChecksum returns b followed by its checksum byte.
func AppendChecksum(b []byte) []byte {
	out := make([]byte, len(b)+1)
	copy(out, b)
	out[len(b)] = Checksum(b)
	return out
}

// VerifyChecksum strips and checks the trailing checksum byte of frame.
//
// The bus occasionally delivers the first payload byte with bit 7 cleared.
// On a mismatch the comparison is retried once with that bit forced set, and
// the corrected payload is returned if it now matches.
func VerifyChecksum(frame []byte) ([]byte, error) {
	if len(frame) < 2 {
		return nil, errcode.DataCorrupted
	}
	payload := make([]byte, len(frame)-1)
	copy(payload, frame)
	want := frame[len(frame)-1]

	if Checksum(payload) == want {
		return payload, nil
	}
	if payload[0]&0x80 == 0 {
		payload[0] |= 0x80
		if Checksum(payload) == want {
			return payload, nil
		}
	}
	return nil, errcode.DataCorrupted
}
