package sbv

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// valueDiff compares two values structurally, including unexported
// payload fields.
func valueDiff(want, got *Value) string {
	return cmp.Diff(want, got, cmp.AllowUnexported(Value{}))
}

func TestRoundTrip(t *testing.T) {
	// Inputs are written in canonical shape (sorted table keys, arrays
	// for dense sequences), so the decoded structure matches exactly.
	tests := []struct {
		name  string
		value *Value
	}{
		{"nil", Nil()},
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"zero", Int(0)},
		{"int", Int(42)},
		{"negative_int", Int(-42)},
		{"boundary_int", Int(2147483647)},
		{"past_boundary", Int(2147483648)},
		{"min_int32_magnitude", Int(-2147483648)},
		{"float", Num(3.14159)},
		{"negative_float", Num(-2.5)},
		{"tiny_float", Num(5e-324)},
		{"max_float", Num(math.MaxFloat64)},
		{"empty_string", Str("")},
		{"short_string", Str("hello")},
		{"utf8_string", Str("héllo wörld")},
		{"medium_string", Str(strings.Repeat("ab", 60))},
		{"empty_array", Arr()},
		{"flat_array", Arr(Int(1), Int(2), Int(3))},
		{"mixed_array", Arr(Nil(), Bool(true), Num(1.5), Str("x"))},
		{"rle_array", Arr(Int(9), Int(9), Int(9), Int(9), Int(9), Int(9))},
		{
			"nested_array",
			Arr(Arr(Int(1), Int(2)), Arr(Str("a")), Arr()),
		},
		{
			"table",
			Tab(E(Str("a"), Int(1)), E(Str("b"), Str("two"))),
		},
		{
			"deep_nesting",
			Tab(
				E(Str("list"), Arr(Int(1), Arr(Int(2), Arr(Int(3))))),
				E(Str("meta"), Tab(E(Str("ok"), Bool(true)))),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			data, err := s.Encode(tt.value)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := s.Decode(data)
			if err != nil {
				t.Fatalf("Decode(%x): %v", data, err)
			}
			if diff := valueDiff(tt.value, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			if !tt.value.Equal(got) {
				t.Errorf("Equal reports mismatch: want %s, got %s", tt.value, got)
			}
		})
	}
}

func TestRoundTripLongStrings(t *testing.T) {
	s := NewSession()
	long := strings.Repeat("long-", 100)

	v := Tab(
		E(Str("first"), Str(long)),
		E(Str("second"), Str(long)),
	)
	data, err := s.Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Equal(got) {
		t.Errorf("want %s, got %s", v, got)
	}
}

func TestRoundTripDenseTableBecomesArray(t *testing.T) {
	s := NewSession()
	v := Tab(E(Int(2), Str("b")), E(Int(1), Str("a")))

	data, err := s.Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	// The wire has no table/array distinction for dense integer keys;
	// the value comes back as the equivalent array.
	if got.Kind() != KindArray {
		t.Fatalf("decoded kind = %s, want array", got.Kind())
	}
	if !v.Equal(got) {
		t.Errorf("Equal(%s, %s) = false", v, got)
	}
}

func TestRoundTripNegativeZero(t *testing.T) {
	s := NewSession()
	data, err := s.Encode(Num(math.Copysign(0, -1)))
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	f, err := got.AsNum()
	if err != nil {
		t.Fatal(err)
	}
	if f != 0 || !math.Signbit(f) {
		t.Errorf("got %v (signbit %v), want -0.0", f, math.Signbit(f))
	}
}

func TestRoundTripNonFiniteFloats(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		s := NewSession()
		data, err := s.Encode(Num(f))
		if err != nil {
			t.Fatalf("Encode(%v): %v", f, err)
		}
		got, err := s.Decode(data)
		if err != nil {
			t.Fatalf("Decode(%v): %v", f, err)
		}
		back, err := got.AsNum()
		if err != nil {
			t.Fatal(err)
		}
		if math.Float64bits(back) != math.Float64bits(f) {
			t.Errorf("got bits %016x, want %016x", math.Float64bits(back), math.Float64bits(f))
		}
	}
}

func TestSequentialValuesShareCursor(t *testing.T) {
	s := NewSession()

	var buf []byte
	values := []*Value{Int(1), Str("two"), Arr(Int(3), Int(4)), Nil()}
	for _, v := range values {
		data, err := s.Encode(v)
		if err != nil {
			t.Fatal(err)
		}
		buf = append(buf, data...)
	}

	off := 0
	for i, want := range values {
		got, next, err := s.DecodeAt(buf, off)
		if err != nil {
			t.Fatalf("DecodeAt(%d): %v", off, err)
		}
		if !want.Equal(got) {
			t.Errorf("value %d: want %s, got %s", i, want, got)
		}
		off = next
	}
	if off != len(buf) {
		t.Errorf("final offset %d, want %d", off, len(buf))
	}
}
