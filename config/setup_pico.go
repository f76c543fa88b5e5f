//go:build rp2040 || rp2350

package config

import "machine"

// Pico wiring: sensor and LCD backpack on i2c0 (GP4/GP5), readings on uart0
// (GP0/GP1), onboard LED on GP25, sensor power switch on GP22.
func setup(c *Config) {
	c.Board = "pico"
	c.CoreHz = machine.CPUFrequency()
	c.I2C = I2CPlan{ID: "i2c0", SDA: 4, SCL: 5, Hz: 400_000}
	c.UART = UARTPlan{ID: "uart0", TX: 0, RX: 1}
	c.Pins = Pins{LED: 25, SensorEnable: 22}
	c.ADC = RP2ADC()
}
