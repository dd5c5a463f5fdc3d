// Package bit provides operations on values that live in a configurable
// number of low-order bits of a uint64.
//
// The machine is parameterised over its block and word sizes, so nothing
// here can assume 8 or 16 bits; every helper takes the width explicitly.
// Widths must fall in the range [1,64].

package bit

// Widths outside [1,64] cannot be represented in a uint64 and indicate a
// bug in the caller, not bad input.
func checkWidth(width int) {
	if width < 1 || width > 64 {
		panic("Invalid width provided -- must fall in the range [1,64].")
	}
}

// Mask returns a uint64 with the low width bits set.
func Mask(width int) uint64 {
	checkWidth(width)
	if width == 64 {
		// 1<<64 overflows; every bit is set anyway
		return ^uint64(0)
	}
	// https://stackoverflow.com/a/15255834
	return (1 << width) - 1
}

// Trunc truncates v to its low width bits. This is the only arithmetic the
// machine ever performs on stored values: compute wide, then truncate.
func Trunc(v uint64, width int) uint64 {
	return v & Mask(width)
}

// IsSet reports whether bit pos (0-indexed from the low end) of v is 1.
func IsSet(v uint64, pos int) bool {
	checkWidth(pos + 1)
	return v&(1<<pos) != 0
}

// SignExtend reads the low width bits of v as a two's-complement integer.
//
// https://en.wikipedia.org/wiki/Two%27s_complement
func SignExtend(v uint64, width int) int64 {
	v = Trunc(v, width)
	if width < 64 && v&(1<<(width-1)) != 0 {
		// negative: copy the sign bit into every higher bit
		return int64(v | ^Mask(width))
	}
	return int64(v)
}
