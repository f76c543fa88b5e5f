// Package readout renders a fixed-point temperature as the five character
// text the display and the serial line carry: sign, tens, ones, '.', tenths.
//
// The input is thousandths of a degree. A value of 23335 renders as " 23.3"
// and -5123 as "- 5.1". Magnitudes of 100 degrees and above wrap in the
// tens digit; the sensor range never reaches them.
package readout

import "humitemp/x/mathx"

// Len is the length of every rendered Text.
const Len = 5

// Text is a rendered reading. It is always exactly Len printable bytes.
type Text [Len]byte

// Format renders v.
func Format(v int32) Text {
	var c Text
	m := mathx.Abs(v)
	if v < 0 {
		c[0] = '-'
	} else {
		c[0] = ' '
	}
	c[4] = '0' + byte((m%1000)/100)
	c[3] = '.'
	c[2] = '0' + byte((m%10000)/1000)
	c[1] = '0' + byte((m%100000)/10000)
	if c[1] == '0' {
		c[1] = ' '
	}
	return c
}

func (t Text) String() string { return string(t[:]) }

// Bytes returns a slice over a copy of the text.
func (t Text) Bytes() []byte { return t[:] }
