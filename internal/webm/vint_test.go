package webm

import (
	"errors"
	"testing"
)

func TestReadSize(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		want  uint64
		wantN int
	}{
		{name: "one byte", data: []byte{0x81}, want: 1, wantN: 1},
		{name: "one byte max", data: []byte{0xFF}, want: 0x7F, wantN: 1},
		{name: "two bytes", data: []byte{0x41, 0x23}, want: 0x123, wantN: 2},
		{name: "three bytes", data: []byte{0x21, 0x23, 0x45}, want: 0x12345, wantN: 3},
		{name: "four bytes", data: []byte{0x10, 0x26, 0x25, 0xA0}, want: 2500000, wantN: 4},
		{name: "trailing bytes ignored", data: []byte{0x81, 0xFF, 0xFF}, want: 1, wantN: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := readSize(tt.data)
			if err != nil {
				t.Fatalf("readSize(%#v) returned error: %v", tt.data, err)
			}
			if got != tt.want || n != tt.wantN {
				t.Errorf("readSize(%#v) = (%d, %d), want (%d, %d)", tt.data, got, n, tt.want, tt.wantN)
			}
		})
	}
}

func TestReadIDKeepsMarker(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint64
	}{
		{name: "track entry", data: []byte{0xAE}, want: 0xAE},
		{name: "doc type", data: []byte{0x42, 0x82}, want: 0x4282},
		{name: "timestamp scale", data: []byte{0x2A, 0xD7, 0xB1}, want: 0x2AD7B1},
		{name: "tracks", data: []byte{0x16, 0x54, 0xAE, 0x6B}, want: 0x1654AE6B},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := readID(tt.data)
			if err != nil {
				t.Fatalf("readID(%#v) returned error: %v", tt.data, err)
			}
			if got != tt.want || n != len(tt.data) {
				t.Errorf("readID(%#v) = (0x%X, %d), want (0x%X, %d)", tt.data, got, n, tt.want, len(tt.data))
			}
		})
	}
}

func TestReadVarIntErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty input", data: nil, wantErr: ErrTruncated},
		{name: "zero leading byte", data: []byte{0x00, 0x01}, wantErr: ErrMalformedVarInt},
		{name: "marker beyond four bytes", data: []byte{0x08, 0, 0, 0, 0}, wantErr: ErrMalformedVarInt},
		{name: "short tail", data: []byte{0x41}, wantErr: ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := readSize(tt.data); !errors.Is(err, tt.wantErr) {
				t.Errorf("readSize(%#v) error = %v, want %v", tt.data, err, tt.wantErr)
			}
		})
	}
}

func TestElementTable(t *testing.T) {
	for id, el := range elements {
		if el.name == "" {
			t.Errorf("element 0x%X has no name", id)
		}
		if el.master == (el.handle != nil) {
			t.Errorf("element %s must be either a master or a leaf with a handler", el.name)
		}
	}
}
