package sbv

import (
	"bytes"
	"strings"
	"testing"
)

// encodeOne encodes v in a throwaway session and fails the test on error.
func encodeOne(t *testing.T, v *Value) []byte {
	t.Helper()
	b, err := NewSession().Encode(v)
	if err != nil {
		t.Fatalf("Encode(%s): %v", v, err)
	}
	return b
}

func TestScalarBytes(t *testing.T) {
	tests := []struct {
		name  string
		value *Value
		want  []byte
	}{
		{"nil", Nil(), []byte{0x00}},
		{"false", Bool(false), []byte{0x40}},
		{"true", Bool(true), []byte{0x41}},
		{"zero", Int(0), []byte{0x20, 0x00, 0x00}},
		{"small_int", Int(5), []byte{0x20, 0x00, 0x05}},
		{"negative_int", Int(-5), []byte{0x30, 0x00, 0x05}},
		{"two_byte_magnitude", Int(300), []byte{0x20, 0x00, 0xac, 0x02}},
		{
			"float",
			Num(1.5),
			[]byte{0x20, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf8, 0x3f},
		},
		{
			"negative_float",
			Num(-1.5),
			[]byte{0x30, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf8, 0xbf},
		},
		{
			"negative_zero",
			Num(negZero()),
			[]byte{0x30, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeOne(t, tt.value)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode(%s) = %x, want %x", tt.value, got, tt.want)
			}
		})
	}
}

func negZero() float64 {
	z := 0.0
	return -z
}

func TestIntegerPathBoundary(t *testing.T) {
	// 2147483647 is the largest magnitude that takes the integer path.
	got := encodeOne(t, Int(2147483647))
	want := []byte{0x20, 0x00, 0xff, 0xff, 0xff, 0xff, 0x07}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode(2147483647) = %x, want %x", got, want)
	}

	// One past it takes the float path.
	got = encodeOne(t, Int(2147483648))
	if got[1] != numFmtFloat {
		t.Errorf("Encode(2147483648) format byte = %#x, want float", got[1])
	}
	if len(got) != 10 {
		t.Errorf("Encode(2147483648) length = %d, want 10", len(got))
	}

	// Fractional values take the float path regardless of magnitude.
	got = encodeOne(t, Num(2.5))
	if got[1] != numFmtFloat {
		t.Errorf("Encode(2.5) format byte = %#x, want float", got[1])
	}
}

func TestStringBytes(t *testing.T) {
	medium := strings.Repeat("m", 40)

	tests := []struct {
		name  string
		value string
		want  []byte
	}{
		{"empty", "", []byte{0x60, 0x00}},
		{"inline", "hi", []byte{0x62, 'h', 'i'}},
		{"inline_max", strings.Repeat("a", 31), append([]byte{0x7f}, strings.Repeat("a", 31)...)},
		{"explicit_length", medium, append([]byte{0x60, 0x28}, medium...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeOne(t, Str(tt.value))
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode(%q) = %x, want %x", tt.value, got, tt.want)
			}
		})
	}
}

func TestArrayBytes(t *testing.T) {
	got := encodeOne(t, Arr(Int(1), Int(2)))
	want := []byte{0xa0, 0x02, 0x20, 0x00, 0x01, 0x20, 0x00, 0x02}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestRunLengthThreshold(t *testing.T) {
	// Ten equal elements collapse into one run unit.
	elems := make([]*Value, 10)
	for i := range elems {
		elems[i] = Int(7)
	}
	got := encodeOne(t, Arr(elems...))
	want := []byte{0xa0, 0x0a, 0xe0, 0x0a, 0x20, 0x00, 0x07}
	if !bytes.Equal(got, want) {
		t.Errorf("run of 10: got %x, want %x", got, want)
	}

	// Three equal elements stay below the threshold and emit one by one.
	got = encodeOne(t, Arr(Int(7), Int(7), Int(7)))
	want = []byte{0xa0, 0x03, 0x20, 0x00, 0x07, 0x20, 0x00, 0x07, 0x20, 0x00, 0x07}
	if !bytes.Equal(got, want) {
		t.Errorf("run of 3: got %x, want %x", got, want)
	}
}

func TestRunLengthGreedyScan(t *testing.T) {
	// [7 7 7 7 9 7 7] -> run(4, 7), 9, 7, 7. The scan consumes whole runs
	// and never re-evaluates past decisions.
	v := Arr(Int(7), Int(7), Int(7), Int(7), Int(9), Int(7), Int(7))
	got := encodeOne(t, v)
	want := []byte{
		0xa0, 0x07,
		0xe0, 0x04, 0x20, 0x00, 0x07,
		0x20, 0x00, 0x09,
		0x20, 0x00, 0x07,
		0x20, 0x00, 0x07,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestDenseTableTakesArrayPath(t *testing.T) {
	inOrder := Tab(E(Int(1), Str("a")), E(Int(2), Str("b")))
	reversed := Tab(E(Int(2), Str("b")), E(Int(1), Str("a")))

	want := []byte{0xa0, 0x02, 0x61, 'a', 0x61, 'b'}
	for _, v := range []*Value{inOrder, reversed} {
		got := encodeOne(t, v)
		if !bytes.Equal(got, want) {
			t.Errorf("Encode(%s) = %x, want %x", v, got, want)
		}
	}
}

func TestSparseTableStaysTable(t *testing.T) {
	// Keys 1 and 3 are not dense, so this is a real table.
	got := encodeOne(t, Tab(E(Int(1), Str("a")), E(Int(3), Str("b"))))
	if got[0]>>tagShift != tagTable {
		t.Fatalf("tag kind = %d, want table", got[0]>>tagShift)
	}
}

func TestCanonicalKeyOrder(t *testing.T) {
	// Number keys sort before string keys (kind names order "number" <
	// "string"); within a kind, natural order applies. Any insertion
	// order yields identical bytes.
	a := Tab(E(Str("b"), Int(1)), E(Str("a"), Int(2)), E(Int(9), Int(3)), E(Int(3), Int(4)))
	b := Tab(E(Int(3), Int(4)), E(Int(9), Int(3)), E(Str("a"), Int(2)), E(Str("b"), Int(1)))

	ba := encodeOne(t, a)
	bb := encodeOne(t, b)
	if !bytes.Equal(ba, bb) {
		t.Fatalf("insertion order leaked into encoding:\n  a: %x\n  b: %x", ba, bb)
	}

	// Leading entry must be the smallest number key.
	wantPrefix := []byte{0x80, 0x04, 0x20, 0x00, 0x03}
	if !bytes.HasPrefix(ba, wantPrefix) {
		t.Errorf("encoding %x does not start with %x", ba, wantPrefix)
	}
}

func TestEmptyContainers(t *testing.T) {
	if got := encodeOne(t, Arr()); !bytes.Equal(got, []byte{0xa0, 0x00}) {
		t.Errorf("empty array = %x", got)
	}
	// An empty table has the dense key range 1..0 and takes the array path.
	if got := encodeOne(t, Tab()); !bytes.Equal(got, []byte{0xa0, 0x00}) {
		t.Errorf("empty table = %x", got)
	}
}
