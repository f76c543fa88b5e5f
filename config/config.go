// Package config holds the firmware configuration. Default returns the
// values for the board selected at build time; the host runner overrides
// fields from its command line before calling Validate.
package config

import (
	"time"

	"humitemp/adc"
	"humitemp/errcode"
	"humitemp/scheduler"
	"humitemp/sensor"
	"humitemp/serial"
)

// Display kinds.
const (
	DisplayLCD     = "lcd"
	DisplayConsole = "console"
	DisplayNone    = "none"
)

// NoPin marks an unused GPIO.
const NoPin = -1

type I2CPlan struct {
	ID  string // "i2c0", or a periph bus name on Linux ("" for the first bus)
	SDA int    // GPIO number
	SCL int    // GPIO number
	Hz  uint32 // bus frequency
}

type UARTPlan struct {
	ID string // "uart0", "uart1"
	TX int    // GPIO number
	RX int    // GPIO number
}

type SensorConfig struct {
	Model string
	// Addr 0 selects the model's fixed address.
	Addr uint16
}

type DisplayConfig struct {
	Kind string
	Addr uint16 // LCD backpack address
	Cols uint8
	Rows uint8
}

type Pins struct {
	LED int
	// SensorEnable drives the sensor power isolation switch; it is set high
	// during GPIO setup.
	SensorEnable int
}

// Host holds settings used only off the MCU.
type Host struct {
	// Sim replaces every peripheral with an in-memory simulation.
	Sim bool
	// SerialPath is the tty or file readings are written to; "" is stdout.
	SerialPath string
	// IIODevice is the sysfs directory of the ADC on Linux.
	IIODevice string
}

type Config struct {
	Board string

	// UpdatePeriod is the periodic timer that posts work to the main loop.
	UpdatePeriod time.Duration
	// TickPeriod and CoreHz configure the system tick used for delays.
	TickPeriod time.Duration
	CoreHz     uint32
	MaxTimers  int
	// StatsHz logs loop counters at this rate; 0 disables.
	StatsHz uint32

	HeartbeatTicks       uint32
	ReferenceScale       int32
	Suppress             scheduler.SuppressMode
	LegacyOffset         int32
	LowBatteryMilliVolts uint32

	Sensor  SensorConfig
	I2C     I2CPlan
	UART    UARTPlan
	Serial  serial.Config
	ADC     adc.Config
	RefChan int
	Display DisplayConfig
	Pins    Pins
	Host    Host
}

// RP2ADC is the ADC configuration of the RP2 boards. Their converter has no
// internal reference and always measures against the 3.3 V rail.
func RP2ADC() adc.Config {
	return adc.DefaultConfig().WithReference(adc.Ref3V3)
}

// Default returns the configuration for the selected board.
func Default() Config {
	sc := scheduler.DefaultConfig()
	c := Config{
		UpdatePeriod:         2000 * time.Millisecond,
		TickPeriod:           time.Millisecond,
		MaxTimers:            4,
		HeartbeatTicks:       sc.HeartbeatTicks,
		ReferenceScale:       sc.ReferenceScale,
		Suppress:             sc.Suppress,
		LegacyOffset:         sc.LegacyOffset,
		LowBatteryMilliVolts: sc.LowBatteryMilliVolts,
		Sensor:               SensorConfig{Model: sensor.ModelSi7021},
		Serial:               serial.Default(),
		ADC:                  adc.DefaultConfig(),
		RefChan:              adc.ChanSupply,
		Display:              DisplayConfig{Kind: DisplayLCD, Addr: 0x27, Cols: 16, Rows: 2},
		Pins:                 Pins{LED: NoPin, SensorEnable: NoPin},
	}
	setup(&c)
	return c
}

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "config.validate", Msg: msg}
}

// Validate checks the configuration. The tick reload is not checked here:
// a core clock that cannot produce the tick period is a startup fault.
func (c *Config) Validate() error {
	switch {
	case c.UpdatePeriod < time.Millisecond || c.UpdatePeriod%time.Millisecond != 0:
		return invalid("update period must be a whole number of milliseconds")
	case c.UpdatePeriod > time.Duration(1<<32-1)*time.Millisecond:
		return invalid("update period too long")
	case c.TickPeriod <= 0:
		return invalid("tick period must be positive")
	case c.MaxTimers < 1:
		return invalid("at least one timer is required")
	case c.StatsHz > 1000:
		return invalid("stats rate above 1000 Hz")
	case c.StatsHz > 0 && c.MaxTimers < 2:
		return invalid("stats logging needs a second timer")
	case c.Suppress > scheduler.SuppressNever:
		return invalid("unknown suppress mode")
	case c.RefChan != adc.ChanSupply && c.RefChan != adc.ChanGeneral:
		return invalid("reference channel must be 0 or 1")
	case c.Sensor.Addr > 0x7F:
		return invalid("sensor address is not a 7-bit address")
	case sensor.DefaultAddress(c.Sensor.Model) == 0:
		return invalid("unknown sensor model " + c.Sensor.Model)
	}
	switch c.Display.Kind {
	case DisplayLCD:
		if c.Display.Cols < 16 || c.Display.Rows < 2 {
			return invalid("display must be at least 16x2")
		}
	case DisplayConsole, DisplayNone:
	default:
		return invalid("unknown display kind " + c.Display.Kind)
	}
	for _, ch := range c.ADC.Channels {
		if ch.Bits == 0 || ch.Bits > 16 {
			return invalid("adc resolution out of range")
		}
	}
	return c.Serial.Validate()
}

// SchedulerConfig derives the main loop settings.
func (c *Config) SchedulerConfig() scheduler.Config {
	ref := c.ADC.Channels[c.RefChan]
	return scheduler.Config{
		HeartbeatTicks:       c.HeartbeatTicks,
		ReferenceScale:       c.ReferenceScale,
		Suppress:             c.Suppress,
		LegacyOffset:         c.LegacyOffset,
		ReportSupply:         ref.Input == adc.InputSupplyDiv3,
		ReferenceChannel:     ref,
		LowBatteryMilliVolts: c.LowBatteryMilliVolts,
	}
}
