package sbv

import (
	"bytes"
	"errors"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	tests := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{1<<31 - 1, []byte{0xff, 0xff, 0xff, 0xff, 0x07}},
		{1 << 63, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}},
	}

	for _, tt := range tests {
		got := appendUvarint(nil, tt.value)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("appendUvarint(%d) = %x, want %x", tt.value, got, tt.want)
		}

		back, off, err := readUvarint(got, 0)
		if err != nil {
			t.Fatalf("readUvarint(%x): %v", got, err)
		}
		if back != tt.value || off != len(got) {
			t.Errorf("readUvarint(%x) = (%d, %d), want (%d, %d)", got, back, off, tt.value, len(got))
		}
	}
}

func TestVarintAppendsAfterPrefix(t *testing.T) {
	got := appendUvarint([]byte{0xaa}, 300)
	want := []byte{0xaa, 0xac, 0x02}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}

	v, off, err := readUvarint(got, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 300 || off != 3 {
		t.Errorf("got (%d, %d), want (300, 3)", v, off)
	}
}

func TestVarintTruncated(t *testing.T) {
	tests := [][]byte{
		{},
		{0x80},
		{0xff, 0xff},
		{0x80, 0x80, 0x80},
	}

	for _, b := range tests {
		_, _, err := readUvarint(b, 0)
		if !errors.Is(err, ErrMalformedVarint) {
			t.Errorf("readUvarint(%x) error = %v, want ErrMalformedVarint", b, err)
		}
	}
}
