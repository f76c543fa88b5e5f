// Package display renders measurements on a small text display.
//
// Every implementation draws the same two 16 character lines built by
// Render, so a character LCD, a console and a test buffer show identical
// content.
package display

import (
	"humitemp/readout"
	"humitemp/x/conv"
)

// Geometry of the rendered screen.
const (
	Cols = 16
	Rows = 2
)

// Frame is one redraw.
type Frame struct {
	// Temperature in thousandths of a degree.
	Temperature int32
	// Humidity in milli-%RH.
	Humidity uint32
	// Reference is the scaled reference ADC reading.
	Reference int32
	// SupplyMilliVolts is 0 when unknown.
	SupplyMilliVolts uint32
	LowBattery       bool
}

// Display is the redraw surface driven by the main loop.
type Display interface {
	Init() error
	// ShowStatus shows the startup screen. The firmware passes
	// lowBattery=false at startup; the battery state is known only after
	// the first measurement.
	ShowStatus(detected, lowBattery bool) error
	Draw(f Frame) error
}

// Screen is one rendered page.
type Screen [Rows][Cols]byte

// Line returns row r as a string.
func (s Screen) Line(r int) string { return string(s[r][:]) }

func blank() Screen {
	var s Screen
	for r := range s {
		for c := range s[r] {
			s[r][c] = ' '
		}
	}
	return s
}

// Render lays f out as:
//
//	T 23.3C  RH  54%
//	R  12340 3.30V !
//
// The supply column is left blank when unknown and '!' marks a low battery.
func Render(f Frame) Screen {
	s := blank()
	var num [20]byte

	s[0][0] = 'T'
	copy(s[0][1:6], readout.Format(f.Temperature).Bytes())
	s[0][6] = 'C'
	copy(s[0][9:11], "RH")
	conv.PadLeft(s[0][11:15], conv.Utoa(num[:], uint64((f.Humidity+500)/1000)), ' ')
	s[0][15] = '%'

	s[1][0] = 'R'
	conv.PadLeft(s[1][1:8], conv.Itoa(num[:], int64(f.Reference)), ' ')
	if f.SupplyMilliVolts != 0 {
		putVolts(s[1][9:13], f.SupplyMilliVolts)
		s[1][13] = 'V'
	}
	if f.LowBattery {
		s[1][15] = '!'
	}
	return s
}

// RenderStatus lays out the startup screen.
func RenderStatus(detected, lowBattery bool) Screen {
	s := blank()
	if detected {
		copy(s[0][:], "Sensor OK")
	} else {
		copy(s[0][:], "Sensor missing")
	}
	if lowBattery {
		copy(s[1][:], "Battery low")
	}
	return s
}

// putVolts writes mv as "V.VV" into a 4 byte field, saturating at 9.99.
func putVolts(dst []byte, mv uint32) {
	cv := (mv + 5) / 10
	if cv > 999 {
		cv = 999
	}
	dst[0] = '0' + byte(cv/100)
	dst[1] = '.'
	dst[2] = '0' + byte(cv/10%10)
	dst[3] = '0' + byte(cv%10)
}
