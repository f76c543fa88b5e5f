// Package conv has allocation-free integer to text helpers for code paths
// that must not pull in fmt or strconv on the MCU.
package conv

// Utoa writes the base-10 representation of n into the tail of buf and
// returns the used slice. buf should be length >= 20 for uint64.
func Utoa(buf []byte, n uint64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
		return buf[i:]
	}
	for n > 0 && i > 0 {
		i--
		buf[i] = byte('0' + (n % 10))
		n /= 10
	}
	return buf[i:]
}

// Itoa is Utoa with a leading '-' for negative values.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	s := Utoa(buf, uint64(-(n + 1))+1)
	i := len(buf) - len(s)
	if i == 0 {
		return s
	}
	buf[i-1] = '-'
	return buf[i-1:]
}

// PadLeft copies s right-aligned into a field of width w filled with fill.
// Text longer than w keeps its last w bytes.
func PadLeft(dst []byte, s []byte, fill byte) []byte {
	w := len(dst)
	if len(s) > w {
		s = s[len(s)-w:]
	}
	off := w - len(s)
	for i := 0; i < off; i++ {
		dst[i] = fill
	}
	copy(dst[off:], s)
	return dst
}
