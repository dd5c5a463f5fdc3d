package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	assert.Equal(t, Mask(1), uint64(0b0000_0001))
	assert.Equal(t, Mask(2), uint64(0b0000_0011))
	assert.Equal(t, Mask(4), uint64(0b0000_1111))
	assert.Equal(t, Mask(8), uint64(0b1111_1111))
	assert.Equal(t, Mask(16), uint64(0xffff))
	assert.Equal(t, Mask(64), ^uint64(0))

	assert.Panics(t, func() { _ = Mask(0) })
	assert.Panics(t, func() { _ = Mask(65) })
}

func TestTrunc(t *testing.T) {
	assert.Equal(t, Trunc(0b1101_1000, 4), uint64(0b0000_1000))
	assert.Equal(t, Trunc(0b1101_1000, 8), uint64(0b1101_1000))
	assert.Equal(t, Trunc(0x1ff, 8), uint64(0xff))
	assert.Equal(t, Trunc(0x100, 8), uint64(0))

	// the wrap-then-truncate identity the processor relies on
	assert.Equal(t, Trunc(0xfe+0x05, 8), uint64(0x03))
	assert.Equal(t, Trunc(0x10*0x10, 8), uint64(0))
}

func TestIsSet(t *testing.T) {
	assert.True(t, IsSet(0b1101_1000, 3))
	assert.True(t, IsSet(0b1101_1000, 4))
	assert.False(t, IsSet(0b1101_1000, 5))
	assert.True(t, IsSet(0b1101_1000, 7))
	assert.False(t, IsSet(0b1101_1000, 0))
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, SignExtend(0x00, 8), int64(0))
	assert.Equal(t, SignExtend(0x7f, 8), int64(127))
	assert.Equal(t, SignExtend(0x80, 8), int64(-128))
	assert.Equal(t, SignExtend(0xff, 8), int64(-1))
	assert.Equal(t, SignExtend(0xc0, 8), int64(-64))

	// nibble-wide values
	assert.Equal(t, SignExtend(0x7, 4), int64(7))
	assert.Equal(t, SignExtend(0x8, 4), int64(-8))
	assert.Equal(t, SignExtend(0xf, 4), int64(-1))

	// bits above the width are ignored
	assert.Equal(t, SignExtend(0xff01, 8), int64(1))
	assert.Equal(t, SignExtend(0xff80, 8), int64(-128))
}
