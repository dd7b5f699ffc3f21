package sbv

import "fmt"

// appendUvarint appends v to dst as a LEB128 varint: 7 payload bits per
// byte, low-order group first, continuation flag in the high bit.
func appendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// readUvarint decodes a LEB128 varint starting at off and returns the
// value and the offset of the first byte after it.
func readUvarint(b []byte, off int) (uint64, int, error) {
	var v uint64
	var shift uint
	for i := off; i < len(b); i++ {
		c := b[i]
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, off, fmt.Errorf("%w: buffer ends at %d with continuation bit set", ErrMalformedVarint, len(b))
}
