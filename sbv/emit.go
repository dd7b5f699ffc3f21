package sbv

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ============================================================
// Encoder
// ============================================================

// encodeValue appends the encoding of v to dst, dispatching on the
// value's kind. Nested containers recurse back through here.
func encodeValue(dst []byte, v *Value, pool *Pool) ([]byte, error) {
	switch v.Kind() {
	case KindNil:
		return append(dst, tagNil<<tagShift), nil
	case KindBool:
		b := byte(tagBool << tagShift)
		if v.boolVal {
			b |= 1
		}
		return append(dst, b), nil
	case KindNumber:
		return encodeNumber(dst, v.numVal), nil
	case KindString:
		return encodeString(dst, v.strVal, pool), nil
	case KindArray:
		return encodeArray(dst, v.arrVal, pool)
	case KindTable:
		if elems, ok := denseElems(v.tabVal); ok {
			return encodeArray(dst, elems, pool)
		}
		return encodeTable(dst, v.tabVal, pool)
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnsupportedType, v.kind)
	}
}

// ============================================================
// Scalars
// ============================================================

// encodeNumber writes the tag (with sign flag), a format byte, and either
// a varint magnitude or the raw little-endian float64 bits. The float
// path stores the value's own bits, so -0.0 and NaN payloads survive
// exactly; the sign flag only drives reconstruction on the integer path.
func encodeNumber(dst []byte, f float64) []byte {
	b := byte(tagNumber << tagShift)
	if math.Signbit(f) {
		b |= numNegFlag
	}
	if mag, ok := exactInt(f); ok {
		dst = append(dst, b, numFmtInt)
		return appendUvarint(dst, uint64(mag))
	}
	dst = append(dst, b, numFmtFloat)
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(f))
}

// ============================================================
// Strings
// ============================================================

// encodeString picks one of three forms, in order:
//
//  1. length 1..31: inline, length in the tag's low 5 bits
//  2. length > 31 with an exact pool hit: StringRef
//  3. length 0 or 32..255: zero low bits + explicit length byte
//
// Anything longer is interned into the pool and emitted as a StringRef
// to the fresh slot; the bytes themselves never reach the stream.
// Short strings skip the pool entirely — a reference would cost more
// than the inline bytes.
func encodeString(dst []byte, s string, pool *Pool) []byte {
	n := len(s)
	if n >= 1 && n <= inlineMaxLen {
		dst = append(dst, byte(tagString<<tagShift)|byte(n))
		return append(dst, s...)
	}
	if n > inlineMaxLen {
		if slot, ok := pool.Lookup(s); ok {
			return appendRef(dst, slot)
		}
	}
	if n <= mediumMaxLen {
		dst = append(dst, tagString<<tagShift, byte(n))
		return append(dst, s...)
	}
	slot := pool.Add(s)
	return appendRef(dst, slot)
}

// appendRef writes a StringRef for the given 1-based slot. The zero-based
// index is one byte when it fits, two little-endian bytes otherwise; the
// tag's refWideFlag records which, so each reference carries its own
// width and stays readable however much the pool grows afterwards.
func appendRef(dst []byte, slot int) []byte {
	idx := slot - 1
	if idx <= narrowRefMax {
		return append(dst, tagStringRef<<tagShift, byte(idx))
	}
	return append(dst, tagStringRef<<tagShift|refWideFlag, byte(idx), byte(idx>>8))
}

// ============================================================
// Containers
// ============================================================

// encodeArray writes the element count followed by element encodings,
// collapsing greedy left-to-right runs of at least runMinLen equal
// elements into run-length units. The scan never revisits a decision:
// at each position it either consumes a whole qualifying run or emits
// single elements.
func encodeArray(dst []byte, elems []*Value, pool *Pool) ([]byte, error) {
	dst = append(dst, tagArray<<tagShift)
	dst = appendUvarint(dst, uint64(len(elems)))

	var err error
	for i := 0; i < len(elems); {
		run := 1
		for i+run < len(elems) && elems[i].Equal(elems[i+run]) {
			run++
		}
		if run >= runMinLen {
			dst = append(dst, tagRun<<tagShift)
			dst = appendUvarint(dst, uint64(run))
			dst, err = encodeValue(dst, elems[i], pool)
			if err != nil {
				return nil, err
			}
			i += run
			continue
		}
		for j := 0; j < run; j++ {
			dst, err = encodeValue(dst, elems[i+j], pool)
			if err != nil {
				return nil, err
			}
		}
		i += run
	}
	return dst, nil
}

// encodeTable writes the entry count followed by canonically ordered
// key/value pairs.
func encodeTable(dst []byte, entries []Entry, pool *Pool) ([]byte, error) {
	dst = append(dst, tagTable<<tagShift)
	dst = appendUvarint(dst, uint64(len(entries)))

	var err error
	for _, e := range canonicalEntries(entries) {
		dst, err = encodeValue(dst, e.Key, pool)
		if err != nil {
			return nil, err
		}
		dst, err = encodeValue(dst, e.Val, pool)
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// denseElems reports whether entries form a dense 1..N integer-keyed
// array and, if so, returns the values in key order. Such tables take
// the array wire path.
func denseElems(entries []Entry) ([]*Value, bool) {
	n := len(entries)
	elems := make([]*Value, n)
	seen := make([]bool, n)
	for _, e := range entries {
		if e.Key.Kind() != KindNumber {
			return nil, false
		}
		f := e.Key.numVal
		if f != math.Trunc(f) || f < 1 || f > float64(n) {
			return nil, false
		}
		i := int(f) - 1
		if seen[i] {
			return nil, false
		}
		seen[i] = true
		elems[i] = e.Val
	}
	return elems, true
}

// canonicalEntries returns entries sorted into canonical emission order:
// primary by the key's kind name, secondary by natural ordering within
// the kind. Logically-equal tables therefore encode byte-identically
// regardless of insertion order.
func canonicalEntries(entries []Entry) []Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		ka, kb := a.Key.Kind(), b.Key.Kind()
		if c := strings.Compare(ka.String(), kb.String()); c != 0 {
			return c
		}
		return compareSameKind(a.Key, b.Key)
	})
	return out
}

// compareSameKind orders two keys of the same kind. Container keys have
// no natural order and keep their relative (stable) positions.
func compareSameKind(a, b *Value) int {
	switch a.Kind() {
	case KindNumber:
		switch {
		case a.numVal < b.numVal:
			return -1
		case a.numVal > b.numVal:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(a.strVal, b.strVal)
	case KindBool:
		switch {
		case !a.boolVal && b.boolVal:
			return -1
		case a.boolVal && !b.boolVal:
			return 1
		}
		return 0
	default:
		return 0
	}
}
