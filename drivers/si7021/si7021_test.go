package si7021

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestDetect(t *testing.T) {
	for _, c := range []struct {
		id    byte
		want  bool
		model string
	}{
		{IDSi7021, true, "si7021"},
		{IDSi7013, true, "si7013"},
		{IDSi7020, true, "si7020"},
		{0x32, false, "unknown"},
	} {
		bus := i2ctest.Playback{Ops: []i2ctest.IO{
			{Addr: Address, W: []byte{0xFC, 0xC9}, R: []byte{c.id, 0x00, 0x5A, 0x11, 0x22, 0x7B}},
		}}
		d := New(&bus)
		if got := d.Detect(); got != c.want {
			t.Errorf("Detect(id=%#x) = %v, want %v", c.id, got, c.want)
		}
		if got := d.Model(); got != c.model {
			t.Errorf("Model(id=%#x) = %q, want %q", c.id, got, c.model)
		}
		if err := bus.Close(); err != nil {
			t.Errorf("playback not drained: %v", err)
		}
	}
}

func TestMeasureRHAndTemp(t *testing.T) {
	bus := i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: Address, W: []byte{0xE5}, R: []byte{0x7C, 0x82}}, // status bits set, masked off
		{Addr: Address, W: []byte{0xE0}, R: []byte{0x66, 0x40}},
	}}
	d := New(&bus)
	rh, temp, err := d.MeasureRHAndTemp()
	if err != nil {
		t.Fatalf("MeasureRHAndTemp: %v", err)
	}
	if rh != 54791 {
		t.Errorf("rh = %d, want 54791", rh)
	}
	if temp != 23335 {
		t.Errorf("temp = %d, want 23335", temp)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestConversions(t *testing.T) {
	for _, c := range []struct {
		raw      uint16
		rh, temp int32
	}{
		{0x0000, -6000, -46850},
		{0x1000, 1812, -35868},
		{0x3000, 17437, -13903},
		{0xFFFC, 118992, 128859},
	} {
		if got := RawToMilliRH(c.raw); got != c.rh {
			t.Errorf("RawToMilliRH(%#x) = %d, want %d", c.raw, got, c.rh)
		}
		if got := RawToMilliCelsius(c.raw); got != c.temp {
			t.Errorf("RawToMilliCelsius(%#x) = %d, want %d", c.raw, got, c.temp)
		}
	}
}

type failBus struct{ err error }

func (f failBus) Tx(uint16, []byte, []byte) error { return f.err }

func TestBusErrorsPropagate(t *testing.T) {
	nack := errors.New("nack")
	d := New(failBus{nack})
	if d.Detect() {
		t.Fatalf("Detect should be false on bus error")
	}
	if _, _, err := d.MeasureRHAndTemp(); !errors.Is(err, nack) {
		t.Fatalf("MeasureRHAndTemp err = %v", err)
	}
	if _, err := d.ReadTemperature(); !errors.Is(err, nack) {
		t.Fatalf("ReadTemperature err = %v", err)
	}
}

func TestResetAndRegisters(t *testing.T) {
	bus := i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: Address, W: []byte{0xFE}},
		{Addr: Address, W: []byte{0xE7}, R: []byte{0x3A}},
		{Addr: Address, W: []byte{0xE6, 0x3B}},
		{Addr: Address, W: []byte{0x84, 0xB8}, R: []byte{0x20}},
	}}
	d := New(&bus)
	if err := d.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if v, err := d.UserRegister(); err != nil || v != 0x3A {
		t.Fatalf("UserRegister = %#x, %v", v, err)
	}
	if err := d.SetUserRegister(0x3B); err != nil {
		t.Fatalf("SetUserRegister: %v", err)
	}
	if v, err := d.FirmwareRevision(); err != nil || v != 0x20 {
		t.Fatalf("FirmwareRevision = %#x, %v", v, err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}
