package sbv

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ============================================================
// Decoder
// ============================================================

// decodeValue reads one encoded unit starting at off and returns the
// value and the offset of the first byte after it. A run-length tag is
// only meaningful inside an array and is rejected here.
func decodeValue(b []byte, off int, pool *Pool) (*Value, int, error) {
	if off >= len(b) {
		return nil, off, fmt.Errorf("sbv: no tag byte at offset %d: %w", off, io.ErrUnexpectedEOF)
	}
	tag := b[off]
	kind := tag >> tagShift
	low := tag & lowMask

	switch kind {
	case tagNil:
		return Nil(), off + 1, nil
	case tagBool:
		return Bool(low&1 == 1), off + 1, nil
	case tagNumber:
		return decodeNumber(b, off+1, low)
	case tagString:
		return decodeString(b, off+1, low)
	case tagStringRef:
		return decodeStringRef(b, off+1, low, pool)
	case tagTable:
		return decodeTable(b, off+1, pool)
	case tagArray:
		return decodeArray(b, off+1, pool)
	default: // tagRun
		return nil, off, fmt.Errorf("%w: run-length unit outside array at offset %d", ErrUnknownTag, off)
	}
}

// ============================================================
// Scalars
// ============================================================

func decodeNumber(b []byte, off int, low byte) (*Value, int, error) {
	if off >= len(b) {
		return nil, off, fmt.Errorf("sbv: number missing format byte: %w", io.ErrUnexpectedEOF)
	}
	switch b[off] {
	case numFmtInt:
		mag, off, err := readUvarint(b, off+1)
		if err != nil {
			return nil, off, err
		}
		f := float64(mag)
		if low&numNegFlag != 0 {
			f = -f
		}
		return Num(f), off, nil
	case numFmtFloat:
		if off+1+8 > len(b) {
			return nil, off, fmt.Errorf("sbv: number missing float bytes: %w", io.ErrUnexpectedEOF)
		}
		bits := binary.LittleEndian.Uint64(b[off+1:])
		return Num(math.Float64frombits(bits)), off + 9, nil
	default:
		return nil, off, fmt.Errorf("%w: number format byte %#x", ErrUnknownTag, b[off])
	}
}

// ============================================================
// Strings
// ============================================================

// decodeString handles both inline forms. A non-zero low-5 length means
// that many raw bytes follow the tag. A zero low-5 always means an
// explicit 1-byte length follows; the empty string travels that way with
// a length byte of zero.
func decodeString(b []byte, off int, low byte) (*Value, int, error) {
	n := int(low)
	if n == 0 {
		if off >= len(b) {
			return nil, off, fmt.Errorf("%w: missing length byte", ErrTruncatedString)
		}
		n = int(b[off])
		off++
	}
	if off+n > len(b) {
		return nil, off, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedString, n, len(b)-off)
	}
	return Str(string(b[off : off+n])), off + n, nil
}

// decodeStringRef resolves a pool back-reference. The tag's refWideFlag
// says whether the index is 1 or 2 bytes wide. A reference into an
// unpopulated pool fails with ErrInvalidStringRef.
func decodeStringRef(b []byte, off int, low byte, pool *Pool) (*Value, int, error) {
	width := 1
	if low&refWideFlag != 0 {
		width = 2
	}
	if off+width > len(b) {
		return nil, off, fmt.Errorf("%w: truncated reference", ErrInvalidStringRef)
	}
	idx := int(b[off])
	if width == 2 {
		idx |= int(b[off+1]) << 8
	}
	s, err := pool.Get(idx + 1)
	if err != nil {
		return nil, off, err
	}
	return Str(s), off + width, nil
}

// ============================================================
// Containers
// ============================================================

// capHint bounds a declared container count before pre-allocation. The
// count is untrusted input; every element costs at least one byte, so a
// count past the remaining buffer can never be satisfied and must not
// size an allocation. The per-element reads still report the truncation.
func capHint(count uint64, b []byte, off int) int {
	if remaining := uint64(len(b) - off); count > remaining {
		return int(remaining)
	}
	return int(count)
}

func decodeTable(b []byte, off int, pool *Pool) (*Value, int, error) {
	count, off, err := readUvarint(b, off)
	if err != nil {
		return nil, off, err
	}
	entries := make([]Entry, 0, capHint(count, b, off))
	for i := uint64(0); i < count; i++ {
		var key, val *Value
		key, off, err = decodeValue(b, off, pool)
		if err != nil {
			return nil, off, err
		}
		val, off, err = decodeValue(b, off, pool)
		if err != nil {
			return nil, off, err
		}
		entries = append(entries, Entry{Key: key, Val: val})
	}
	return Tab(entries...), off, nil
}

// decodeArray reads count logical elements, expanding each run-length
// unit into run_length identical slots.
func decodeArray(b []byte, off int, pool *Pool) (*Value, int, error) {
	count, off, err := readUvarint(b, off)
	if err != nil {
		return nil, off, err
	}
	elems := make([]*Value, 0, capHint(count, b, off))
	for uint64(len(elems)) < count {
		if off >= len(b) {
			return nil, off, fmt.Errorf("sbv: array ends after %d of %d elements: %w", len(elems), count, io.ErrUnexpectedEOF)
		}
		if b[off]>>tagShift == tagRun {
			var run uint64
			run, off, err = readUvarint(b, off+1)
			if err != nil {
				return nil, off, err
			}
			if uint64(len(elems))+run > count {
				return nil, off, fmt.Errorf("sbv: run of %d overflows array of %d", run, count)
			}
			var v *Value
			v, off, err = decodeValue(b, off, pool)
			if err != nil {
				return nil, off, err
			}
			for j := uint64(0); j < run; j++ {
				elems = append(elems, v)
			}
			continue
		}
		var v *Value
		v, off, err = decodeValue(b, off, pool)
		if err != nil {
			return nil, off, err
		}
		elems = append(elems, v)
	}
	return Arr(elems...), off, nil
}
