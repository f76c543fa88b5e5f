package sensor

import (
	"humitemp/drivers/aht20"
	"humitemp/drivers/si7021"
	"humitemp/errcode"
	"humitemp/x/mathx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/shtc3"
)

// Supported models.
const (
	ModelSi7021 = "si7021"
	ModelAHT20  = "aht20"
	ModelSHTC3  = "shtc3"
)

// DefaultAddress returns the fixed bus address of a model, or 0.
func DefaultAddress(model string) uint16 {
	switch model {
	case ModelSi7021:
		return si7021.Address
	case ModelAHT20:
		return aht20.Address
	case ModelSHTC3:
		return 0x70
	}
	return 0
}

// Open builds the driver for model on bus. addr 0 selects the model's
// default address. The device is not touched.
func Open(model string, bus drivers.I2C, addr uint16) (HumiTemp, error) {
	if addr == 0 {
		addr = DefaultAddress(model)
	}
	switch model {
	case ModelSi7021:
		d := si7021.New(bus)
		d.Address = addr
		return &d, nil
	case ModelAHT20:
		d := aht20.New(bus)
		d.Address = addr
		return &d, nil
	case ModelSHTC3:
		return &shtc3Sensor{dev: shtc3.New(bus)}, nil
	}
	return nil, &errcode.E{C: errcode.Unsupported, Op: "sensor.open", Msg: "model " + model}
}

// shtc3Sensor adapts the tinygo SHTC3 driver: wake, read, sleep.
type shtc3Sensor struct {
	dev shtc3.Device
}

func (s *shtc3Sensor) Detect() bool {
	if err := s.dev.WakeUp(); err != nil {
		return false
	}
	_ = s.dev.Sleep()
	return true
}

func (s *shtc3Sensor) MeasureRHAndTemp() (int32, int32, error) {
	if err := s.dev.WakeUp(); err != nil {
		return 0, 0, err
	}
	defer func() { _ = s.dev.Sleep() }()

	tmc, rhx100, err := s.dev.ReadTemperatureHumidity()
	if err != nil {
		return 0, 0, err
	}
	rh := mathx.Clamp(int32(rhx100), 0, 10000) * 10
	return rh, int32(tmc), nil
}
