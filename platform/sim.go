package platform

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"humitemp/adc"
	"humitemp/config"
	"humitemp/display"
	"humitemp/drivers/si7021"
	"humitemp/serial"
)

// ----------------------------- GPIO ------------------------------------------

// FakePin is an in-memory GPIO line.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	pull    Pull
	edges   int
}

func NewFakePin(n int) *FakePin { return &FakePin{number: n} }

func (p *FakePin) Number() int { return p.number }

func (p *FakePin) ConfigureInput(pull Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.pull = pull
	p.level = pull == PullUp
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	if p.level != level {
		p.edges++
	}
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

func (p *FakePin) Toggle() { p.Set(!p.Get()) }

// IsOutput reports the configured direction.
func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

// Edges counts level changes since creation.
func (p *FakePin) Edges() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.edges
}

// ----------------------------- I²C -------------------------------------------

var errNack = errors.New("sim: address not acknowledged")

// Climate supplies the conditions a simulated sensor reports, in milli-%RH
// and milli-°C.
type Climate interface {
	Conditions() (rh, temp int32)
}

// Steady is a constant Climate.
type Steady struct{ RH, Temp int32 }

func (s Steady) Conditions() (int32, int32) { return s.RH, s.Temp }

// Drift walks the temperature by Step on every reading, bouncing between Min
// and Max.
type Drift struct {
	RH       int32
	Min, Max int32
	Step     int32

	mu  sync.Mutex
	cur int32
	dir int32
}

func (d *Drift) Conditions() (int32, int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dir == 0 {
		d.cur, d.dir = d.Min, 1
	}
	t := d.cur
	d.cur += d.dir * d.Step
	if d.cur >= d.Max || d.cur <= d.Min {
		d.dir = -d.dir
	}
	return d.RH, t
}

// SimSi7021 answers the Si7021 command set on a drivers.I2C bus.
type SimSi7021 struct {
	Addr    uint16
	ID      byte
	Climate Climate
	// Missing makes the device NACK every transfer.
	Missing bool

	mu       sync.Mutex
	lastTemp uint16
	userReg  byte
	txs      int
}

func NewSimSi7021(c Climate) *SimSi7021 {
	return &SimSi7021{Addr: si7021.Address, ID: si7021.IDSi7021, Climate: c, userReg: 0x3A}
}

// RHCode is the inverse of si7021.RawToMilliRH.
func RHCode(milliRH int32) uint16 {
	return clampCode(ceilDiv((int64(milliRH)+6000)<<13, 15625))
}

// TempCode is the inverse of si7021.RawToMilliCelsius.
func TempCode(milliC int32) uint16 {
	return clampCode(ceilDiv((int64(milliC)+46850)<<13, 21965))
}

func ceilDiv(n, d int64) int64 {
	if n <= 0 {
		return n / d
	}
	return (n + d - 1) / d
}

func clampCode(v int64) uint16 {
	switch {
	case v < 0:
		return 0
	case v > 0xFFFC:
		return 0xFFFC
	}
	// Round up to the next status-bit boundary so the masked code decodes
	// to no less than the requested value.
	return uint16((v + 3) &^ 3)
}

// Transactions returns the number of transfers addressed to the device.
func (s *SimSi7021) Transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs
}

func (s *SimSi7021) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr != s.Addr || s.Missing {
		return errNack
	}
	s.txs++
	if len(w) == 0 {
		return nil
	}
	put16 := func(v uint16) {
		if len(r) >= 2 {
			r[0], r[1] = byte(v>>8), byte(v)
		}
	}
	switch w[0] {
	case 0xE5, 0xF5: // RH, also latches temperature
		rh, t := s.Climate.Conditions()
		s.lastTemp = TempCode(t)
		put16(RHCode(rh) | 0x02)
	case 0xE0:
		put16(s.lastTemp)
	case 0xE3, 0xF3:
		_, t := s.Climate.Conditions()
		put16(TempCode(t))
	case 0xE7:
		if len(r) > 0 {
			r[0] = s.userReg
		}
	case 0xE6:
		if len(w) > 1 {
			s.userReg = w[1]
		}
	case 0xFE:
		s.userReg = 0x3A
	case 0xFC:
		for i := range r {
			r[i] = 0
		}
		if len(r) > 0 {
			r[0] = s.ID
		}
	case 0x84:
		if len(r) > 0 {
			r[0] = 0x20
		}
	}
	return nil
}

// ----------------------------- ADC -------------------------------------------

// SimADC converts instantly. Codes returns the result for a channel index.
type SimADC struct {
	Codes func(ch int) uint16

	cfg    adc.Config
	done   chan struct{}
	data   atomic.Uint32
	starts atomic.Uint32
}

func NewSimADC(codes func(ch int) uint16) *SimADC {
	return &SimADC{Codes: codes, done: make(chan struct{}, 1)}
}

// SupplyCodes returns a Codes function that reports supplyMV on the supply
// channel and half scale on the other.
func SupplyCodes(cfg adc.Config, supplyMV uint32) func(int) uint16 {
	return func(ch int) uint16 {
		c := cfg.Channels[ch]
		if c.Input != adc.InputSupplyDiv3 {
			return uint16(c.FullScale() / 2)
		}
		full := c.Reference.MilliVolts() * c.Divider()
		v := (supplyMV*c.FullScale() + full - 1) / full
		if v > c.FullScale() {
			v = c.FullScale()
		}
		return uint16(v)
	}
}

func (a *SimADC) Configure(cfg adc.Config) error {
	a.cfg = cfg
	return nil
}

func (a *SimADC) StartSingle(ch int) error {
	if ch < 0 || ch >= len(a.cfg.Channels) {
		return adc.ErrBadChannel
	}
	a.starts.Add(1)
	a.data.Store(uint32(a.Codes(ch)))
	select {
	case a.done <- struct{}{}:
	default:
	}
	return nil
}

func (a *SimADC) Done() <-chan struct{} { return a.done }
func (a *SimADC) DataSingle() uint16    { return uint16(a.data.Load()) }

// Starts counts conversions.
func (a *SimADC) Starts() int { return int(a.starts.Load()) }

// ----------------------------- Board -----------------------------------------

// Sim is a fully simulated board.
type Sim struct {
	Board
	Sensor *SimSi7021
	ADCSim *SimADC
	LEDPin *FakePin
	Enable *FakePin
}

// OpenSim builds a simulated board. Readings go to out and display frames
// to screen; either may be nil.
func OpenSim(cfg config.Config, out, screen io.Writer) *Sim {
	s := &Sim{
		Sensor: NewSimSi7021(&Drift{RH: 45000, Min: 19000, Max: 26000, Step: 150}),
		ADCSim: NewSimADC(SupplyCodes(cfg.ADC, 3300)),
		LEDPin: NewFakePin(cfg.Pins.LED),
		Enable: NewFakePin(cfg.Pins.SensorEnable),
	}
	if cfg.Sensor.Addr != 0 {
		s.Sensor.Addr = cfg.Sensor.Addr
	}
	if out == nil {
		out = io.Discard
	}
	s.Board = Board{
		Name:         "sim",
		I2C:          s.Sensor,
		ADC:          s.ADCSim,
		Serial:       serial.NewWriterPort(out),
		Display:      display.Nop{},
		LED:          s.LEDPin,
		SensorEnable: s.Enable,
	}
	if screen != nil && cfg.Display.Kind != config.DisplayNone {
		s.Board.Display = display.NewConsole(screen)
	}
	return s
}
