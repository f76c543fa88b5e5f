//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"humitemp/adc"
	"humitemp/config"
	"humitemp/display"
	"humitemp/errcode"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/hd44780"
	"periph.io/x/host/v3"
)

// ----------------------------- GPIO ------------------------------------------

type periphPin struct {
	p gpio.PinIO
	n int
}

func openPin(n int) (Pin, error) {
	if n < 0 {
		return nil, nil
	}
	p := gpioreg.ByName("GPIO" + strconv.Itoa(n))
	if p == nil {
		return nil, &errcode.E{C: errcode.NotDetected, Op: "platform.gpio", Msg: "no GPIO" + strconv.Itoa(n)}
	}
	return &periphPin{p: p, n: n}, nil
}

func (r *periphPin) Number() int { return r.n }

func (r *periphPin) ConfigureInput(pull Pull) error {
	gp := gpio.Float
	switch pull {
	case PullUp:
		gp = gpio.PullUp
	case PullDown:
		gp = gpio.PullDown
	}
	return r.p.In(gp, gpio.NoEdge)
}

func (r *periphPin) ConfigureOutput(initial bool) error { return r.p.Out(gpio.Level(initial)) }

func (r *periphPin) Set(b bool) { _ = r.p.Out(gpio.Level(b)) }
func (r *periphPin) Get() bool  { return bool(r.p.Read()) }
func (r *periphPin) Toggle()    { r.Set(!r.Get()) }

// ----------------------------- ADC -------------------------------------------

// iioADC reads an industrial I/O ADC through sysfs. A conversion is a read
// of in_voltageN_raw.
type iioADC struct {
	dir  string
	cfg  adc.Config
	done chan struct{}
	data atomic.Uint32
}

func newIIOADC(dir string) *iioADC {
	return &iioADC{dir: dir, done: make(chan struct{}, 1)}
}

func iioIndex(in adc.Input) int {
	switch in {
	case adc.InputSupplyDiv3:
		return 3
	case adc.InputCh4:
		return 4
	}
	return 0
}

func (a *iioADC) Configure(cfg adc.Config) error {
	a.cfg = cfg
	for _, ch := range cfg.Channels {
		if _, err := os.Stat(a.path(ch)); err != nil {
			return errcode.Wrap(errcode.ADCFault, "platform.adc", err)
		}
	}
	return nil
}

func (a *iioADC) path(ch adc.Channel) string {
	return filepath.Join(a.dir, "in_voltage"+strconv.Itoa(iioIndex(ch.Input))+"_raw")
}

func (a *iioADC) StartSingle(ch int) error {
	if ch < 0 || ch >= len(a.cfg.Channels) {
		return adc.ErrBadChannel
	}
	raw, err := os.ReadFile(a.path(a.cfg.Channels[ch]))
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 16)
	if err != nil {
		return err
	}
	a.data.Store(uint32(v))
	select {
	case a.done <- struct{}{}:
	default:
	}
	return nil
}

func (a *iioADC) Done() <-chan struct{} { return a.done }
func (a *iioADC) DataSingle() uint16    { return uint16(a.data.Load()) }

// ----------------------------- LCD -------------------------------------------

// periphLCD adapts the periph HD44780 driver, which addresses cells from 1.
type periphLCD struct{ d *hd44780.HD44780 }

func (l *periphLCD) Clear() error                   { return l.d.Clear() }
func (l *periphLCD) SetCursor(col, row uint8) error { return l.d.MoveTo(int(row)+1, int(col)+1) }
func (l *periphLCD) Write(p []byte) (int, error)    { return l.d.Write(p) }

// ----------------------------- Board -----------------------------------------

// Open brings up a Linux board through periph.io. Unlike the MCU, a bus or
// pin that cannot be opened is an error.
func Open(cfg config.Config) (*Board, error) {
	if cfg.Host.Sim {
		return &OpenSim(cfg, os.Stdout, os.Stderr).Board, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, errcode.Wrap(errcode.Unsupported, "platform.host_init", err)
	}

	b := &Board{Name: cfg.Board, Display: display.Nop{}}
	bus, err := i2creg.Open(cfg.I2C.ID)
	if err != nil {
		return nil, errcode.Wrap(errcode.BusFault, "platform.i2c", err)
	}
	b.onClose(bus.Close)
	b.I2C = bus

	for _, p := range []struct {
		n   int
		dst *Pin
	}{
		{cfg.Pins.LED, &b.LED},
		{cfg.Pins.SensorEnable, &b.SensorEnable},
		{cfg.UART.TX, &b.UARTTX},
		{cfg.UART.RX, &b.UARTRX},
	} {
		pin, err := openPin(p.n)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		*p.dst = pin
	}

	b.ADC = newIIOADC(cfg.Host.IIODevice)

	port, closePort, err := openSerial(cfg.Host.SerialPath, cfg.Serial)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.onClose(closePort)
	b.Serial = port

	switch cfg.Display.Kind {
	case config.DisplayLCD:
		lcd, err := hd44780.NewPCF857xBackpack(bus, cfg.Display.Addr, int(cfg.Display.Rows), int(cfg.Display.Cols))
		if err != nil {
			_ = b.Close()
			return nil, errcode.Wrap(errcode.BusFault, "platform.lcd", err)
		}
		b.onClose(lcd.Halt)
		b.Display = display.NewCharLCD(&periphLCD{d: lcd})
	case config.DisplayConsole:
		b.Display = display.NewConsole(os.Stderr)
	}
	return b, nil
}
