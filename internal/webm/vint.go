package webm

import "fmt"

// EBML varints longer than four bytes never occur in the streams we
// accept, so the tables stop there.
var (
	// idMasks keeps the length marker, so IDs come back in the form
	// the Matroska registry lists them.
	idMasks = [5]byte{0, 0xFF, 0xFF, 0xFF, 0xFF}

	// sizeMasks strips the length marker from the leading byte.
	sizeMasks = [5]byte{0, 0x7F, 0x3F, 0x1F, 0x0F}
)

// vintLength returns the total byte length declared by the leading
// byte of a varint, or zero when the marker is out of range.
func vintLength(b byte) int {
	switch {
	case b&0x80 != 0:
		return 1
	case b&0x40 != 0:
		return 2
	case b&0x20 != 0:
		return 3
	case b&0x10 != 0:
		return 4
	default:
		return 0
	}
}

// readVarInt decodes one varint from the start of data, masking the
// leading byte per the declared length. It returns the value and the
// number of bytes consumed.
func readVarInt(data []byte, masks [5]byte) (uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: no bytes for varint", ErrTruncated)
	}
	n := vintLength(data[0])
	if n == 0 {
		return 0, 0, fmt.Errorf("%w: leading byte 0x%02X", ErrMalformedVarInt, data[0])
	}
	if n > len(data) {
		return 0, 0, fmt.Errorf("%w: %d-byte varint with %d bytes left", ErrTruncated, n, len(data))
	}
	v := uint64(data[0] & masks[n])
	for _, b := range data[1:n] {
		v = v<<8 | uint64(b)
	}
	return v, n, nil
}

func readID(data []byte) (uint64, int, error) {
	return readVarInt(data, idMasks)
}

func readSize(data []byte) (uint64, int, error) {
	return readVarInt(data, sizeMasks)
}
