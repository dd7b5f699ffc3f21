// Package schema implements a schema-driven binary serializer for Go
// structs. The schema is declared with `skein` struct tags assigning a
// stable numeric id to each field:
//
//	type Player struct {
//		ID    uint64 `skein:"1"`
//		Name  string `skein:"2"`
//		Score int32  `skein:"3"`
//	}
//
// The wire format is a sequence of (field key, payload) pairs: the key
// is a varint holding id<<3 | wire type, and the payload layout follows
// the wire type. Decoders skip unknown field ids by wire type, so fields
// can be added without breaking old readers. Field ids must never be
// reused for a different type.
//
// Unlike the sbv codec, this serializer carries no self-describing value
// model — producer and consumer agree on the struct — and the two share
// no code or state.
package schema

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"sync"
)

var (
	// ErrNotStruct reports a value that is not a struct or non-nil
	// pointer to one.
	ErrNotStruct = errors.New("schema: not a struct")

	// ErrNoTags reports a struct with no skein-tagged fields.
	ErrNoTags = errors.New("schema: struct has no skein tags")

	// ErrBadTag reports an invalid or duplicate field id.
	ErrBadTag = errors.New("schema: bad skein tag")

	// ErrFieldType reports a field whose Go type has no wire mapping.
	ErrFieldType = errors.New("schema: unsupported field type")

	// ErrTruncated reports data that ends inside a field.
	ErrTruncated = errors.New("schema: truncated data")

	// ErrWireType reports a field whose encoded wire type does not
	// match the struct's declaration.
	ErrWireType = errors.New("schema: wire type mismatch")
)

// Wire types, carried in the low 3 bits of each field key.
const (
	wireVarint  = 0 // bool, signed (zigzag) and unsigned integers
	wireFixed64 = 1 // float64
	wireBytes   = 2 // string, []byte, nested struct
)

// fieldInfo is one tagged field of a struct.
type fieldInfo struct {
	id    uint64
	index int // field index within the struct
	kind  reflect.Kind
	wire  int
	elem  *structInfo // set for nested structs
}

// structInfo is the cached schema of one struct type.
type structInfo struct {
	fields []fieldInfo // sorted by id
	byID   map[uint64]*fieldInfo
}

var (
	infoMu    sync.RWMutex
	infoCache = map[reflect.Type]*structInfo{}
)

// infoFor resolves and caches the schema of t.
func infoFor(t reflect.Type) (*structInfo, error) {
	infoMu.RLock()
	si, ok := infoCache[t]
	infoMu.RUnlock()
	if ok {
		return si, nil
	}

	si, err := buildInfo(t)
	if err != nil {
		return nil, err
	}
	infoMu.Lock()
	infoCache[t] = si
	infoMu.Unlock()
	return si, nil
}

func buildInfo(t reflect.Type) (*structInfo, error) {
	si := &structInfo{byID: make(map[uint64]*fieldInfo)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("skein")
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}
		id, err := strconv.ParseUint(tag, 10, 29)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w: field %s.%s tag %q", ErrBadTag, t.Name(), f.Name, tag)
		}
		if _, dup := si.byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d in %s", ErrBadTag, id, t.Name())
		}

		fi := fieldInfo{id: id, index: i}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		fi.kind = ft.Kind()
		switch ft.Kind() {
		case reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			fi.wire = wireVarint
		case reflect.Float64:
			fi.wire = wireFixed64
		case reflect.String:
			fi.wire = wireBytes
		case reflect.Slice:
			if ft.Elem().Kind() != reflect.Uint8 {
				return nil, fmt.Errorf("%w: %s.%s (%s)", ErrFieldType, t.Name(), f.Name, f.Type)
			}
			fi.wire = wireBytes
		case reflect.Struct:
			nested, err := buildInfo(ft)
			if err != nil {
				return nil, err
			}
			fi.wire = wireBytes
			fi.elem = nested
		default:
			return nil, fmt.Errorf("%w: %s.%s (%s)", ErrFieldType, t.Name(), f.Name, f.Type)
		}

		si.fields = append(si.fields, fi)
	}
	if len(si.fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTags, t.Name())
	}

	sort.Slice(si.fields, func(a, b int) bool { return si.fields[a].id < si.fields[b].id })
	for i := range si.fields {
		si.byID[si.fields[i].id] = &si.fields[i]
	}
	return si, nil
}

// zigzag maps signed integers to unsigned so small negatives stay small
// on the wire.
func zigzag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func unzigzag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// structValue unwraps v down to a struct reflect.Value.
func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil pointer", ErrNotStruct)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %T", ErrNotStruct, v)
	}
	return rv, nil
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// Marshal serializes a tagged struct (or pointer to one).
func Marshal(v any) ([]byte, error) {
	rv, err := structValue(v)
	if err != nil {
		return nil, err
	}
	si, err := infoFor(rv.Type())
	if err != nil {
		return nil, err
	}
	return appendStruct(nil, si, rv)
}

func appendStruct(dst []byte, si *structInfo, rv reflect.Value) ([]byte, error) {
	var err error
	for i := range si.fields {
		fi := &si.fields[i]
		fv := rv.Field(fi.index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue // omitted
			}
			fv = fv.Elem()
		}

		dst = binary.AppendUvarint(dst, fi.id<<3|uint64(fi.wire))
		switch {
		case fi.elem != nil:
			var body []byte
			body, err = appendStruct(nil, fi.elem, fv)
			if err != nil {
				return nil, err
			}
			dst = binary.AppendUvarint(dst, uint64(len(body)))
			dst = append(dst, body...)
		case fi.kind == reflect.Bool:
			var b uint64
			if fv.Bool() {
				b = 1
			}
			dst = binary.AppendUvarint(dst, b)
		case isSigned(fi.kind):
			dst = binary.AppendUvarint(dst, zigzag(fv.Int()))
		case fi.kind == reflect.Float64:
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(fv.Float()))
		case fi.kind == reflect.String:
			dst = binary.AppendUvarint(dst, uint64(fv.Len()))
			dst = append(dst, fv.String()...)
		case fi.kind == reflect.Slice:
			dst = binary.AppendUvarint(dst, uint64(fv.Len()))
			dst = append(dst, fv.Bytes()...)
		default: // unsigned integers
			dst = binary.AppendUvarint(dst, fv.Uint())
		}
	}
	return dst, nil
}

// Unmarshal deserializes data into a pointer to a tagged struct.
// Unknown field ids are skipped; fields absent from data keep their
// current value.
func Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: need non-nil pointer to struct, got %T", ErrNotStruct, v)
	}
	rv = rv.Elem()
	si, err := infoFor(rv.Type())
	if err != nil {
		return err
	}
	return readStruct(data, si, rv)
}

func readStruct(data []byte, si *structInfo, rv reflect.Value) error {
	off := 0
	for off < len(data) {
		key, n := binary.Uvarint(data[off:])
		if n <= 0 {
			return fmt.Errorf("%w: field key at offset %d", ErrTruncated, off)
		}
		off += n
		id, wire := key>>3, int(key&7)

		fi, known := si.byID[id]
		if !known {
			skipped, err := skipField(data[off:], wire)
			if err != nil {
				return err
			}
			off += skipped
			continue
		}
		if wire != fi.wire {
			return fmt.Errorf("%w: field %d has wire %d, want %d", ErrWireType, id, wire, fi.wire)
		}

		fv := rv.Field(fi.index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			fv = fv.Elem()
		}

		switch wire {
		case wireVarint:
			u, n := binary.Uvarint(data[off:])
			if n <= 0 {
				return fmt.Errorf("%w: field %d varint", ErrTruncated, id)
			}
			off += n
			switch {
			case fi.kind == reflect.Bool:
				fv.SetBool(u != 0)
			case isSigned(fi.kind):
				fv.SetInt(unzigzag(u))
			default:
				fv.SetUint(u)
			}
		case wireFixed64:
			if off+8 > len(data) {
				return fmt.Errorf("%w: field %d fixed64", ErrTruncated, id)
			}
			fv.SetFloat(math.Float64frombits(binary.LittleEndian.Uint64(data[off:])))
			off += 8
		case wireBytes:
			length, n := binary.Uvarint(data[off:])
			// Compare in uint64 before converting: a length near 2^64
			// would wrap negative as an int and slip past a sum check.
			if n <= 0 || length > uint64(len(data)-off-n) {
				return fmt.Errorf("%w: field %d bytes", ErrTruncated, id)
			}
			body := data[off+n : off+n+int(length)]
			off += n + int(length)
			switch {
			case fi.elem != nil:
				if err := readStruct(body, fi.elem, fv); err != nil {
					return err
				}
			case fi.kind == reflect.String:
				fv.SetString(string(body))
			default:
				fv.SetBytes(append([]byte(nil), body...))
			}
		default:
			return fmt.Errorf("%w: field %d has undefined wire %d", ErrWireType, id, wire)
		}
	}
	return nil
}

// skipField returns how many bytes the payload of an unknown field
// occupies.
func skipField(data []byte, wire int) (int, error) {
	switch wire {
	case wireVarint:
		_, n := binary.Uvarint(data)
		if n <= 0 {
			return 0, fmt.Errorf("%w: skipping varint", ErrTruncated)
		}
		return n, nil
	case wireFixed64:
		if len(data) < 8 {
			return 0, fmt.Errorf("%w: skipping fixed64", ErrTruncated)
		}
		return 8, nil
	case wireBytes:
		length, n := binary.Uvarint(data)
		if n <= 0 || length > uint64(len(data)-n) {
			return 0, fmt.Errorf("%w: skipping bytes", ErrTruncated)
		}
		return n + int(length), nil
	default:
		return 0, fmt.Errorf("%w: undefined wire %d", ErrWireType, wire)
	}
}
