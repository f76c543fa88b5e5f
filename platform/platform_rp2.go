//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"sync/atomic"

	"humitemp/adc"
	"humitemp/config"
	"humitemp/display"
	"humitemp/errcode"
	"humitemp/serial"
	"humitemp/x/logx"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/hd44780i2c"
)

// ----------------------------- GPIO ------------------------------------------

type rp2Pin struct {
	p machine.Pin
	n int
}

func newRP2Pin(n int) Pin {
	if n < 0 {
		return nil
	}
	return &rp2Pin{p: machine.Pin(n), n: n}
}

func (r *rp2Pin) Number() int { return r.n }

func (r *rp2Pin) ConfigureInput(pull Pull) error {
	var mode machine.PinMode
	switch pull {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(b bool) { r.p.Set(b) }
func (r *rp2Pin) Get() bool  { return r.p.Get() }
func (r *rp2Pin) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}

// ----------------------------- ADC -------------------------------------------

// rp2ADC runs each single conversion on its own goroutine and signals Done
// when the result is latched, standing in for the conversion-complete
// interrupt. The RP2 reference is the 3.3 V rail; config.RP2ADC describes
// it that way.
type rp2ADC struct {
	cfg  adc.Config
	pins [2]machine.ADC
	done chan struct{}
	data atomic.Uint32
}

func newRP2ADC() *rp2ADC {
	machine.InitADC()
	return &rp2ADC{done: make(chan struct{}, 1)}
}

// adcPin maps an input to an RP2 analog pin. GP29 carries VSYS/3 on the
// Pico; GP28 stands in for the general-purpose input.
func adcPin(in adc.Input) machine.Pin {
	switch in {
	case adc.InputSupplyDiv3:
		return machine.ADC3
	case adc.InputCh4:
		return machine.ADC2
	default:
		return machine.ADC0
	}
}

func (a *rp2ADC) Configure(cfg adc.Config) error {
	a.cfg = cfg
	for i, ch := range cfg.Channels {
		a.pins[i] = machine.ADC{Pin: adcPin(ch.Input)}
		a.pins[i].Configure(machine.ADCConfig{
			Reference:  ch.Reference.MilliVolts(),
			Resolution: uint32(ch.Bits),
		})
	}
	return nil
}

func (a *rp2ADC) StartSingle(ch int) error {
	if ch < 0 || ch >= len(a.pins) {
		return adc.ErrBadChannel
	}
	bits := a.cfg.Channels[ch].Bits
	go func() {
		// machine.ADC.Get scales every result to 16 bits.
		v := uint32(a.pins[ch].Get()) >> (16 - uint32(bits))
		a.data.Store(v)
		select {
		case a.done <- struct{}{}:
		default:
		}
	}()
	return nil
}

func (a *rp2ADC) Done() <-chan struct{} { return a.done }
func (a *rp2ADC) DataSingle() uint16    { return uint16(a.data.Load()) }

// ----------------------------- UART ------------------------------------------

type rp2Serial struct{ u *uartx.UART }

// WriteByte blocks until the transmitter takes the byte.
func (p *rp2Serial) WriteByte(b byte) error {
	var one = [1]byte{b}
	_, err := p.u.Write(one[:])
	return err
}

func openUART(plan config.UARTPlan, sc serial.Config) serial.Port {
	var hw *uartx.UART
	switch plan.ID {
	case "uart1":
		hw = uartx.UART1
	default:
		hw = uartx.UART0
	}
	_ = hw.Configure(uartx.UARTConfig{
		BaudRate: sc.BaudRate,
		TX:       machine.Pin(plan.TX),
		RX:       machine.Pin(plan.RX),
	})
	par := uartx.ParityNone
	switch sc.Parity {
	case serial.ParityEven:
		par = uartx.ParityEven
	case serial.ParityOdd:
		par = uartx.ParityOdd
	}
	_ = hw.SetFormat(sc.DataBits, sc.StopBits, par)
	return &rp2Serial{u: hw}
}

// ----------------------------- LCD -------------------------------------------

// rp2LCD adapts hd44780i2c, whose calls report no errors.
type rp2LCD struct{ d hd44780i2c.Device }

func (l *rp2LCD) Clear() error {
	l.d.ClearDisplay()
	return nil
}

func (l *rp2LCD) SetCursor(col, row uint8) error {
	l.d.SetCursor(col, row)
	return nil
}

func (l *rp2LCD) Write(p []byte) (int, error) {
	l.d.Print(p)
	return len(p), nil
}

// ----------------------------- Board -----------------------------------------

// Open configures the RP2 peripherals. Peripheral setup failures are logged
// and otherwise ignored; the firmware runs with whatever came up.
func Open(cfg config.Config) (*Board, error) {
	if cfg.Host.Sim {
		return &OpenSim(cfg, nil, nil).Board, nil
	}

	var i2c *machine.I2C
	switch cfg.I2C.ID {
	case "i2c1":
		i2c = machine.I2C1
	default:
		i2c = machine.I2C0
	}
	sda, scl := machine.Pin(cfg.I2C.SDA), machine.Pin(cfg.I2C.SCL)
	if err := i2c.Configure(machine.I2CConfig{SDA: sda, SCL: scl, Frequency: cfg.I2C.Hz}); err != nil {
		logx.Warn("platform", "i2c configure", logx.Err(errcode.Wrap(errcode.BusFault, "platform.i2c", err)))
	}

	b := &Board{
		Name:         cfg.Board,
		I2C:          i2c,
		ADC:          newRP2ADC(),
		Serial:       openUART(cfg.UART, cfg.Serial),
		Display:      display.Nop{},
		LED:          newRP2Pin(cfg.Pins.LED),
		SensorEnable: newRP2Pin(cfg.Pins.SensorEnable),
	}

	switch cfg.Display.Kind {
	case config.DisplayLCD:
		lcd := &rp2LCD{d: hd44780i2c.New(i2c, uint8(cfg.Display.Addr))}
		lcd.d.Configure(hd44780i2c.Config{Width: cfg.Display.Cols, Height: cfg.Display.Rows})
		b.Display = display.NewCharLCD(lcd)
	case config.DisplayConsole:
		b.Display = display.NewConsole(consoleWriter{})
	}
	return b, nil
}

// consoleWriter prints to the USB CDC console.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	print(string(p))
	return len(p), nil
}
