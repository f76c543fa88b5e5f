// Package platform brings up the peripherals for the board selected at
// build time and hands them to the application as one Board.
//
//	rp2040 || rp2350          TinyGo machine, uartx, hd44780i2c
//	linux                     periph.io host, I2C, GPIO and IIO ADC
//	everything else           simulation only
//
// Every platform can also run fully simulated (config.Host.Sim).
package platform

import (
	"humitemp/adc"
	"humitemp/display"
	"humitemp/serial"

	"tinygo.org/x/drivers"
)

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Pin is one GPIO line.
type Pin interface {
	Number() int
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(bool)
	Get() bool
	Toggle()
}

// Board is the set of peripherals the application drives. Optional pins are
// nil when the board has no such line.
type Board struct {
	Name    string
	I2C     drivers.I2C
	ADC     adc.Peripheral
	Serial  serial.Port
	Display display.Display

	LED          Pin
	SensorEnable Pin
	// UARTTX and UARTRX are set only where the serial pins are plain GPIO
	// that must be prepared before the port is enabled.
	UARTTX Pin
	UARTRX Pin

	closers []func() error
}

func (b *Board) onClose(fn func() error) { b.closers = append(b.closers, fn) }

// Close releases host resources in reverse order of acquisition.
func (b *Board) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}
