// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package ancp

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

// AppendByteSlices concatenates multiple byte slices into a single slice.
func AppendByteSlices(slices ...[]byte) []byte {
	totalLen := 0
	for _, s := range slices {
		totalLen += len(s)
	}

	result := make([]byte, totalLen)
	offset := 0
	for _, s := range slices {
		copy(result[offset:], s)
		offset += len(s)
	}

	return result
}

// Uint16ToByteSlice converts a uint16 or TLVType value to a big-endian byte slice.
func Uint16ToByteSlice[T ~uint16](v T) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(v))
	return b
}

// Uint32ToByteSlice converts a uint32 value to a big-endian byte slice.
func Uint32ToByteSlice[T ~uint32](v T) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

// PutUint24 writes the low 24 bits of v behind the given high byte.
func PutUint24(b []byte, high uint8, v uint32) {
	binary.BigEndian.PutUint32(b, uint32(high)<<24|v&0x00ffffff)
}

// Uint24 splits a 32-bit word into its high byte and low 24 bits.
func Uint24(b []byte) (uint8, uint32) {
	w := binary.BigEndian.Uint32(b)
	return uint8(w >> 24), w & 0x00ffffff
}

// Padding returns the number of zero bytes needed to reach a 4-byte boundary.
func Padding[T constraints.Unsigned | ~int](n T) T {
	return (4 - n%4) % 4
}

// IsBitSet checks if a specific bit is set in the value, with bit 0 as the least significant bit (LSB).
func IsBitSet[T constraints.Unsigned](value, mask T) bool {
	return value&mask != 0
}

// SetBit sets a specific bit in the value of any unsigned integer type.
func SetBit[T constraints.Unsigned](value, bit T, condition bool) T {
	if condition {
		return value | bit
	}
	return value
}
