package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Abs for signed integers. The magnitude is returned as uint64 so the most
// negative value of T does not overflow.
func Abs[T constraints.Signed](x T) uint64 {
	if x < 0 {
		return uint64(-int64(x))
	}
	return uint64(x)
}

// MulDiv returns x*num/den with a 64-bit intermediate. den==0 yields 0.
func MulDiv[T ~uint16 | ~uint32](x T, num, den uint32) uint32 {
	if den == 0 {
		return 0
	}
	return uint32(uint64(x) * uint64(num) / uint64(den))
}
