package sbv

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies a Value's runtime type.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindTable
	KindArray
)

// String returns the kind name. Kind names are also the primary sort key
// for canonical table ordering, so they must stay stable.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a dynamically-typed SBV value.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal bool
	numVal  float64
	strVal  string

	// Container values
	arrVal []*Value
	tabVal []Entry
}

// Entry is a key/value pair in a table. Keys may be any scalar Value;
// numbers and strings are what shows up in practice.
type Entry struct {
	Key *Value
	Val *Value
}

// ============================================================
// Constructors
// ============================================================

// Nil creates a nil value.
func Nil() *Value {
	return &Value{kind: KindNil}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Num creates a number value.
func Num(v float64) *Value {
	return &Value{kind: KindNumber, numVal: v}
}

// Int creates a number value from an integer.
func Int(v int64) *Value {
	return &Value{kind: KindNumber, numVal: float64(v)}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// Arr creates an array value.
func Arr(elems ...*Value) *Value {
	return &Value{kind: KindArray, arrVal: elems}
}

// Tab creates a table value from key/value entries, preserving insertion
// order. The encoder reorders entries canonically; the order held here is
// only what accessors observe before a round trip.
func Tab(entries ...Entry) *Value {
	return &Value{kind: KindTable, tabVal: entries}
}

// E is shorthand for building a table Entry.
func E(key, val *Value) Entry {
	return Entry{Key: key, Val: val}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value's kind. A nil *Value is treated as KindNil.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNil
	}
	return v.kind
}

// IsNil returns true for nil values.
func (v *Value) IsNil() bool {
	return v == nil || v.kind == KindNil
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, error) {
	if v.Kind() != KindBool {
		return false, fmt.Errorf("sbv: expected bool, got %s", v.Kind())
	}
	return v.boolVal, nil
}

// AsNum returns the number payload.
func (v *Value) AsNum() (float64, error) {
	if v.Kind() != KindNumber {
		return 0, fmt.Errorf("sbv: expected number, got %s", v.Kind())
	}
	return v.numVal, nil
}

// AsStr returns the string payload.
func (v *Value) AsStr() (string, error) {
	if v.Kind() != KindString {
		return "", fmt.Errorf("sbv: expected string, got %s", v.Kind())
	}
	return v.strVal, nil
}

// AsArr returns the array elements.
func (v *Value) AsArr() ([]*Value, error) {
	if v.Kind() != KindArray {
		return nil, fmt.Errorf("sbv: expected array, got %s", v.Kind())
	}
	return v.arrVal, nil
}

// AsTab returns the table entries.
func (v *Value) AsTab() ([]Entry, error) {
	if v.Kind() != KindTable {
		return nil, fmt.Errorf("sbv: expected table, got %s", v.Kind())
	}
	return v.tabVal, nil
}

// IsInt reports whether a number value takes the integer wire path: no
// fractional part, magnitude at most 2147483647, and not negative zero.
func (v *Value) IsInt() bool {
	if v.Kind() != KindNumber {
		return false
	}
	_, ok := exactInt(v.numVal)
	return ok
}

// maxExactInt is the largest magnitude that takes the integer wire path.
const maxExactInt = 1<<31 - 1

// exactInt returns the integer magnitude of f when f qualifies for the
// integer encoding. Negative zero, NaN, infinities, fractions and
// magnitudes past 31 unsigned bits all fail the test.
func exactInt(f float64) (uint32, bool) {
	if f == 0 && math.Signbit(f) {
		return 0, false
	}
	if math.Trunc(f) != f || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	a := math.Abs(f)
	if a > maxExactInt {
		return 0, false
	}
	return uint32(a), true
}

// ============================================================
// Equality
// ============================================================

// Equal reports deep value equality. A table whose keys are exactly the
// dense integer range 1..N compares equal to the array holding its values
// in key order, mirroring the encoder's array detection; without this a
// dense table would not round-trip, since it decodes as an array.
func (v *Value) Equal(o *Value) bool {
	if v.IsNil() || o.IsNil() {
		return v.IsNil() && o.IsNil()
	}
	if v.kind != o.kind {
		ve, vok := v.arrayForm()
		oe, ook := o.arrayForm()
		if vok && ook {
			return equalElems(ve, oe)
		}
		return false
	}
	switch v.kind {
	case KindBool:
		return v.boolVal == o.boolVal
	case KindNumber:
		if v.numVal == 0 && o.numVal == 0 {
			return math.Signbit(v.numVal) == math.Signbit(o.numVal)
		}
		return v.numVal == o.numVal
	case KindString:
		return v.strVal == o.strVal
	case KindArray:
		return equalElems(v.arrVal, o.arrVal)
	case KindTable:
		ve, vok := v.arrayForm()
		oe, ook := o.arrayForm()
		if vok || ook {
			if vok != ook {
				return false
			}
			return equalElems(ve, oe)
		}
		return equalEntries(v.tabVal, o.tabVal)
	default:
		return false
	}
}

// arrayForm returns the element slice a value contributes to array
// comparison: the elements themselves for arrays, or the values in key
// order for tables with dense 1..N integer keys.
func (v *Value) arrayForm() ([]*Value, bool) {
	switch v.Kind() {
	case KindArray:
		return v.arrVal, true
	case KindTable:
		return denseElems(v.tabVal)
	default:
		return nil, false
	}
}

func equalElems(a, b []*Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// equalEntries compares tables as unordered key/value sets by walking
// both in canonical order.
func equalEntries(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	ca, cb := canonicalEntries(a), canonicalEntries(b)
	for i := range ca {
		if !ca[i].Key.Equal(cb[i].Key) || !ca[i].Val.Equal(cb[i].Val) {
			return false
		}
	}
	return true
}

// ============================================================
// Debug representation
// ============================================================

// String returns a compact human-readable form, for logs and test
// failures. It is not the wire format and is not meant to be parsed.
func (v *Value) String() string {
	var sb strings.Builder
	v.debugString(&sb)
	return sb.String()
}

func (v *Value) debugString(sb *strings.Builder) {
	switch v.Kind() {
	case KindNil:
		sb.WriteString("nil")
	case KindBool:
		if v.boolVal {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(v.numVal, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.strVal))
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.arrVal {
			if i > 0 {
				sb.WriteByte(' ')
			}
			e.debugString(sb)
		}
		sb.WriteByte(']')
	case KindTable:
		sb.WriteByte('{')
		for i, e := range v.tabVal {
			if i > 0 {
				sb.WriteByte(' ')
			}
			e.Key.debugString(sb)
			sb.WriteByte(':')
			e.Val.debugString(sb)
		}
		sb.WriteByte('}')
	}
}
