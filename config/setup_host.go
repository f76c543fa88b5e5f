//go:build !(rp2040 || rp2350)

package config

// Hosts run simulated unless told otherwise. On a Linux board the pins are
// BCM GPIO numbers and I2C.ID is the periph bus name.
func setup(c *Config) {
	c.Board = "host"
	c.CoreHz = 125_000_000
	c.I2C = I2CPlan{ID: "", Hz: 400_000}
	c.UART = UARTPlan{ID: "stdout", TX: NoPin, RX: NoPin}
	c.Pins = Pins{LED: NoPin, SensorEnable: NoPin}
	c.Display.Kind = DisplayConsole
	c.Host = Host{Sim: true, IIODevice: "/sys/bus/iio/devices/iio:device0"}
}
