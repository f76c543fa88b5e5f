// Package aht20 provides a driver for the AHT20 temperature/humidity sensor.
// It exposes a two-phase measurement API:
//
//	d.Trigger()              // start a measurement (fast)
//	err := d.Collect(&s)     // fetch when ready; returns ErrNotReady while busy
//
// MeasureRHAndTemp performs trigger + bounded polling and returns milli-%RH
// and milli-°C, the same units as the si7021 driver.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided, without releasing the bus.
package aht20

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x38

// Commands and status bits.
const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

// Errors returned by the driver.
var (
	ErrTimeout  = errors.New("aht20: timeout")
	ErrNotReady = errors.New("aht20: not ready")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x38 if zero.
	Address uint16
	// PollInterval is the wait between Collect attempts. Default 15 ms.
	PollInterval time.Duration
	// CollectTimeout bounds the total wait in MeasureRHAndTemp. Default 250 ms.
	CollectTimeout time.Duration
	// ConversionTime is waited once after Trigger before the first Collect.
	// Default 80 ms.
	ConversionTime time.Duration
}

func (c *Config) defaults() {
	if c.Address == 0 {
		c.Address = Address
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Millisecond
	}
	if c.CollectTimeout <= 0 {
		c.CollectTimeout = 250 * time.Millisecond
	}
	if c.ConversionTime <= 0 {
		c.ConversionTime = 80 * time.Millisecond
	}
}

// Device wraps an I2C connection to an AHT20 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cfg   Config
	buf   [7]byte // reuse buffer to avoid allocations
	sleep func(time.Duration)
}

// New creates a new AHT20 connection. The I2C bus must already be configured.
func New(bus drivers.I2C) Device {
	d := Device{bus: bus, Address: Address, sleep: time.Sleep}
	d.cfg.defaults()
	return d
}

// Configure applies cfg and initialises (calibrates) the device if needed.
func (d *Device) Configure(cfg Config) {
	if cfg.Address == 0 {
		cfg.Address = d.Address
	}
	cfg.defaults()
	d.cfg = cfg
	d.Address = cfg.Address

	st, _ := d.Status() // ignore error; will attempt init anyway
	if st&statusCalibrated != 0 {
		return
	}
	// Tolerate devices that do not ACK immediately.
	_ = d.bus.Tx(d.Address, []byte{cmdInitialize, 0x08, 0x00}, nil)
	d.sleep(10 * time.Millisecond)
}

// Reset issues a soft reset. Give the device ~20ms afterwards before using.
func (d *Device) Reset() error {
	return d.bus.Tx(d.Address, []byte{cmdSoftReset}, nil)
}

// Status reads and returns the status byte.
func (d *Device) Status() (byte, error) {
	data := d.buf[:1]
	if err := d.bus.Tx(d.Address, []byte{cmdStatus}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// Detect reports whether the device answers the status command and is
// calibrated.
func (d *Device) Detect() bool {
	st, err := d.Status()
	return err == nil && st&statusCalibrated != 0
}

// Trigger starts a measurement. It is a quick register write with no blocking.
func (d *Device) Trigger() error {
	return d.bus.Tx(d.Address, []byte{cmdTrigger, 0x33, 0x00}, nil)
}

// Collect reads one measurement. If the device is still converting,
// ErrNotReady is returned. Any bus error is returned as-is.
func (d *Device) Collect(out *Sample) error {
	data := d.buf[:]
	if err := d.bus.Tx(d.Address, nil, data); err != nil {
		return err
	}
	if (data[0]&statusCalibrated) == 0 || (data[0]&statusBusy) != 0 {
		return ErrNotReady
	}
	out.RawHumidity = (uint32(data[1]) << 12) | (uint32(data[2]) << 4) | (uint32(data[3]) >> 4)
	out.RawTemp = (uint32(data[3]&0x0F) << 16) | (uint32(data[4]) << 8) | uint32(data[5])
	return nil
}

// MeasureRHAndTemp triggers a conversion and polls Collect until a sample
// is ready or CollectTimeout elapses.
func (d *Device) MeasureRHAndTemp() (rh int32, temp int32, err error) {
	if err := d.Trigger(); err != nil {
		return 0, 0, err
	}
	d.sleep(d.cfg.ConversionTime)
	deadline := time.Now().Add(d.cfg.CollectTimeout)
	var s Sample
	for {
		err := d.Collect(&s)
		switch err {
		case nil:
			return s.MilliRelHumidity(), s.MilliCelsius(), nil
		case ErrNotReady:
			if time.Now().After(deadline) {
				return 0, 0, ErrTimeout
			}
			d.sleep(d.cfg.PollInterval)
		default:
			return 0, 0, err
		}
	}
}

// Sample holds raw 20-bit readings.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

// MilliRelHumidity returns thousandths of %RH (0..100000).
func (s Sample) MilliRelHumidity() int32 {
	return int32((uint64(s.RawHumidity) * 100000) >> 20)
}

// MilliCelsius returns thousandths of °C (-50000..150000).
func (s Sample) MilliCelsius() int32 {
	return int32((uint64(s.RawTemp)*200000)>>20) - 50000
}
