// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package ancp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendByteSlices(t *testing.T) {
	tests := []struct {
		name     string
		input    [][]byte
		expected []byte
	}{
		{
			name:     "Concatenate non-empty slices",
			input:    [][]byte{{0x01, 0x02}, {0x03, 0x04, 0x05}},
			expected: []byte{0x01, 0x02, 0x03, 0x04, 0x05},
		},
		{
			name:     "Concatenate empty slices",
			input:    [][]byte{{}, {}},
			expected: []byte{},
		},
		{
			name:     "Nil slice in the middle",
			input:    [][]byte{{0x01}, nil, {0x02}},
			expected: []byte{0x01, 0x02},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AppendByteSlices(tt.input...))
		})
	}
}

func TestUintToByteSlice(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x02}, Uint16ToByteSlice(uint16(0x0102)))
	assert.Equal(t, []byte{0x00, 0x21}, Uint16ToByteSlice(TLVListAction))
	assert.Equal(t, []byte{0x00, 0x98, 0x96, 0x80}, Uint32ToByteSlice(uint32(10_000_000)))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x05}, Uint32ToByteSlice(DSLTypeVDSL2))
}

func TestUint24(t *testing.T) {
	tests := []struct {
		name     string
		high     uint8
		value    uint32
		expected []byte
		low      uint32
	}{
		{
			name:     "Partition and transaction",
			high:     0x07,
			value:    0x000102,
			expected: []byte{0x07, 0x00, 0x01, 0x02},
			low:      0x000102,
		},
		{
			name:     "Value wider than 24 bits is truncated",
			high:     0x00,
			value:    0x12345678,
			expected: []byte{0x00, 0x34, 0x56, 0x78},
			low:      0x345678,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := make([]byte, 4)
			PutUint24(b, tt.high, tt.value)
			assert.Equal(t, tt.expected, b)

			high, low := Uint24(b)
			assert.Equal(t, tt.high, high)
			assert.Equal(t, tt.low, low)
		})
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, 0},
		{1, 3},
		{2, 2},
		{3, 1},
		{4, 0},
		{9, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Padding(tt.input), "padding for %d", tt.input)
	}
	assert.Equal(t, uint16(2), Padding(uint16(14)))
}

func TestBits(t *testing.T) {
	assert.True(t, IsBitSet(uint8(0x81), 0x80))
	assert.False(t, IsBitSet(uint8(0x01), 0x80))
	assert.Equal(t, uint8(0x81), SetBit(uint8(0x01), 0x80, true))
	assert.Equal(t, uint8(0x01), SetBit(uint8(0x01), 0x80, false))
}
