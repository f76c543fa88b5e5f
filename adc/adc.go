// Package adc describes the single-conversion ADC contract used by the
// sensor reader: two channel configurations, a start command, a completion
// signal and a data register.
package adc

import (
	"errors"

	"humitemp/x/mathx"
)

// Input selects what a single conversion samples.
type Input uint8

const (
	// InputSupplyDiv3 is the supply rail through an internal /3 divider.
	InputSupplyDiv3 Input = iota
	// InputCh4 is general-purpose input 4.
	InputCh4
	InputCh0
)

// Reference selects the conversion reference.
type Reference uint8

const (
	Ref1V25 Reference = iota
	RefVDD
	Ref3V3
)

// MilliVolts returns the nominal reference voltage.
func (r Reference) MilliVolts() uint32 {
	switch r {
	case Ref1V25:
		return 1250
	default:
		return 3300
	}
}

// Channel is one single-conversion configuration.
type Channel struct {
	Input     Input
	Reference Reference
	// Bits is the result resolution; DataSingle codes are in [0, 2^Bits).
	Bits uint8
	// AcqCycles is the acquisition time in ADC clock cycles (0: platform default).
	AcqCycles uint8
}

// FullScale is the largest code the channel produces.
func (c Channel) FullScale() uint32 {
	if c.Bits == 0 || c.Bits > 16 {
		return 0xFFFF
	}
	return 1<<c.Bits - 1
}

// Divider is the input divider ratio implied by the input selection.
func (c Channel) Divider() uint32 {
	if c.Input == InputSupplyDiv3 {
		return 3
	}
	return 1
}

// Channel indexes into Config.Channels.
const (
	ChanSupply  = 0
	ChanGeneral = 1
)

// Config carries both channel configurations.
type Config struct {
	Channels [2]Channel
}

// DefaultConfig samples supply/3 against 1.25 V on channel 0 and general
// input 4 against 1.25 V on channel 1, both at 12 bits.
func DefaultConfig() Config {
	return Config{Channels: [2]Channel{
		ChanSupply:  {Input: InputSupplyDiv3, Reference: Ref1V25, Bits: 12, AcqCycles: 16},
		ChanGeneral: {Input: InputCh4, Reference: Ref1V25, Bits: 12},
	}}
}

// WithReference returns c with every channel converted against r.
func (c Config) WithReference(r Reference) Config {
	for i := range c.Channels {
		c.Channels[i].Reference = r
	}
	return c
}

var ErrBadChannel = errors.New("adc: bad channel")

// Peripheral is a single-conversion ADC. StartSingle begins a conversion on
// channel ch; Done fires once per completed conversion (capacity-1,
// coalescing, like an interrupt flag); DataSingle returns the last result.
type Peripheral interface {
	Configure(cfg Config) error
	StartSingle(ch int) error
	Done() <-chan struct{}
	DataSingle() uint16
}

// MilliVolts converts a raw code on channel c into millivolts at the pin
// side of the input divider.
func MilliVolts(raw uint16, c Channel) uint32 {
	return mathx.MulDiv(raw, c.Reference.MilliVolts()*c.Divider(), c.FullScale())
}
