// Package si7021 provides a driver for the Si7013/Si7020/Si7021 family of
// relative humidity and temperature sensors.
//
//	d := si7021.New(bus)
//	if d.Detect() {
//		rh, t, err := d.MeasureRHAndTemp() // milli-%RH, milli-°C
//	}
//
// Measurements use the "hold master" commands, so I2C.Tx MUST perform the
// command write and the result read as one write + repeated-start read, and
// the bus must tolerate clock stretching for the conversion time.
//
// The driver avoids floating point: results are fixed-point thousandths.
package si7021

import (
	"errors"

	"tinygo.org/x/drivers"
)

// I2C address shared by the family.
const Address = 0x40

// Commands (datasheet section 5).
const (
	cmdMeasureRHHold      = 0xE5
	cmdMeasureTempHold    = 0xE3
	cmdReadTempFromPrevRH = 0xE0
	cmdReset              = 0xFE
	cmdReadUserReg1       = 0xE7
	cmdWriteUserReg1      = 0xE6
	cmdReadElectronicID2a = 0xFC
	cmdReadElectronicID2b = 0xC9
	cmdFirmwareRevisionA  = 0x84
	cmdFirmwareRevisionB  = 0xB8
)

// Device IDs reported in the first byte of electronic ID part 2.
const (
	IDSi7013 = 0x0D
	IDSi7020 = 0x14
	IDSi7021 = 0x15
)

// Errors returned by the driver.
var (
	ErrNotDetected = errors.New("si7021: device not detected")
)

// Device wraps an I2C connection to a Si70xx device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [6]byte // reuse buffer to avoid allocations
	id  byte    // last device id seen by Detect
}

// New creates a Device on an already configured bus. It does not touch the
// device.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// DeviceID reads electronic ID part 2 and returns its first byte (SNB3),
// which identifies the part.
func (d *Device) DeviceID() (byte, error) {
	data := d.buf[:6]
	if err := d.bus.Tx(d.Address, []byte{cmdReadElectronicID2a, cmdReadElectronicID2b}, data); err != nil {
		return 0, err
	}
	d.id = data[0]
	return data[0], nil
}

// Detect reports whether a supported part answers at d.Address.
func (d *Device) Detect() bool {
	id, err := d.DeviceID()
	if err != nil {
		return false
	}
	switch id {
	case IDSi7013, IDSi7020, IDSi7021:
		return true
	}
	return false
}

// Model returns the part name for the last detected id.
func (d *Device) Model() string {
	switch d.id {
	case IDSi7013:
		return "si7013"
	case IDSi7020:
		return "si7020"
	case IDSi7021:
		return "si7021"
	}
	return "unknown"
}

// MeasureRHAndTemp performs a humidity conversion and then reads the
// temperature the sensor took as part of it. Humidity is milli-%RH and
// may fall slightly outside 0..100000 as the datasheet formula allows;
// temperature is milli-°C.
func (d *Device) MeasureRHAndTemp() (rh int32, temp int32, err error) {
	raw, err := d.read16(cmdMeasureRHHold)
	if err != nil {
		return 0, 0, err
	}
	rh = RawToMilliRH(raw)
	raw, err = d.read16(cmdReadTempFromPrevRH)
	if err != nil {
		return 0, 0, err
	}
	return rh, RawToMilliCelsius(raw), nil
}

// ReadTemperature runs a standalone temperature conversion (milli-°C).
func (d *Device) ReadTemperature() (int32, error) {
	raw, err := d.read16(cmdMeasureTempHold)
	if err != nil {
		return 0, err
	}
	return RawToMilliCelsius(raw), nil
}

// Reset issues a soft reset. The part needs up to 15 ms before it answers.
func (d *Device) Reset() error {
	return d.bus.Tx(d.Address, []byte{cmdReset}, nil)
}

// UserRegister reads user register 1 (resolution and heater bits).
func (d *Device) UserRegister() (byte, error) {
	data := d.buf[:1]
	if err := d.bus.Tx(d.Address, []byte{cmdReadUserReg1}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// SetUserRegister writes user register 1.
func (d *Device) SetUserRegister(v byte) error {
	return d.bus.Tx(d.Address, []byte{cmdWriteUserReg1, v}, nil)
}

// FirmwareRevision returns 0xFF for 1.0 and 0x20 for 2.0 parts.
func (d *Device) FirmwareRevision() (byte, error) {
	data := d.buf[:1]
	if err := d.bus.Tx(d.Address, []byte{cmdFirmwareRevisionA, cmdFirmwareRevisionB}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

func (d *Device) read16(cmd byte) (uint16, error) {
	data := d.buf[:2]
	if err := d.bus.Tx(d.Address, []byte{cmd}, data); err != nil {
		return 0, err
	}
	// The two low bits are status bits, not data.
	return uint16(data[0])<<8 | uint16(data[1]&0xFC), nil
}

// RawToMilliRH converts a 16-bit RH code: ((raw*125000)>>16) - 6000.
func RawToMilliRH(raw uint16) int32 {
	return int32((uint32(raw)*15625)>>13) - 6000
}

// RawToMilliCelsius converts a 16-bit temperature code:
// ((raw*175720)>>16) - 46850.
func RawToMilliCelsius(raw uint16) int32 {
	return int32((uint32(raw)*21965)>>13) - 46850
}
