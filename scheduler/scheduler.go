// Package scheduler is the firmware main loop: it consumes the measurement
// and display flags posted by the periodic timer, sends each reading over
// the serial line and refreshes the display with a heartbeat blink.
package scheduler

import (
	"context"
	"sync/atomic"

	"humitemp/adc"
	"humitemp/display"
	"humitemp/readout"
	"humitemp/sensor"
	"humitemp/serial"
	"humitemp/x/logx"
)

const tag = "scheduler"

// SuppressMode selects how an unchanged reading skips the redraw.
type SuppressMode uint8

const (
	// SuppressUnchanged skips the redraw when the rendered temperature text
	// equals the previous reading's. The first reading always draws.
	SuppressUnchanged SuppressMode = iota
	// SuppressLegacyOffset stores the reading unless the stored value
	// equals reading+LegacyOffset, in which case the redraw is skipped. The
	// stored value starts at zero.
	SuppressLegacyOffset
	// SuppressNever always redraws.
	SuppressNever
)

func (m SuppressMode) String() string {
	switch m {
	case SuppressUnchanged:
		return "unchanged"
	case SuppressLegacyOffset:
		return "legacy"
	case SuppressNever:
		return "never"
	}
	return "unknown"
}

// ParseSuppressMode is the inverse of SuppressMode.String.
func ParseSuppressMode(s string) (SuppressMode, bool) {
	for _, m := range []SuppressMode{SuppressUnchanged, SuppressLegacyOffset, SuppressNever} {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// Measurer takes one reading.
type Measurer interface {
	Measure(ctx context.Context) (sensor.Sample, error)
}

// Toggler flips the heartbeat indicator.
type Toggler interface {
	Toggle()
}

// Delay blocks for a number of system ticks.
type Delay interface {
	Wait(ticks uint32)
}

// Config tunes the loop.
type Config struct {
	// HeartbeatTicks is how long the indicator stays on per redraw.
	HeartbeatTicks uint32
	// ReferenceScale multiplies the raw reference code for the display.
	ReferenceScale int32
	Suppress       SuppressMode
	LegacyOffset   int32
	// ReportSupply derives the supply voltage from the reference code using
	// ReferenceChannel. Leave false when the reference channel does not
	// sample the supply rail.
	ReportSupply     bool
	ReferenceChannel adc.Channel
	// LowBatteryMilliVolts flags the frame when the supply is below it.
	LowBatteryMilliVolts uint32
}

// DefaultConfig matches the firmware defaults.
func DefaultConfig() Config {
	return Config{
		HeartbeatTicks:       25,
		ReferenceScale:       10,
		Suppress:             SuppressUnchanged,
		LegacyOffset:         2000,
		ReportSupply:         true,
		ReferenceChannel:     adc.DefaultConfig().Channels[adc.ChanSupply],
		LowBatteryMilliVolts: sensor.LowBatteryMilliVolts,
	}
}

// Stats counts loop activity.
type Stats struct {
	Measurements uint32
	Errors       uint32
	Draws        uint32
	Suppressed   uint32
}

// Deps are the peripherals the loop drives. It is their only user.
type Deps struct {
	Sensor  Measurer
	Port    serial.Port
	Display display.Display
	LED     Toggler
	Delay   Delay
}

// Scheduler is the main loop. Only one goroutine may call Step or Run.
type Scheduler struct {
	cfg   Config
	st    *State
	d     Deps
	last  sensor.Sample
	stats struct {
		measurements, errors, draws, suppressed atomic.Uint32
	}

	prevText readout.Text
	havePrev bool
	prevTemp int32
}

func New(cfg Config, st *State, d Deps) *Scheduler {
	return &Scheduler{cfg: cfg, st: st, d: d}
}

// Step runs one pass of the loop body.
func (s *Scheduler) Step(ctx context.Context) {
	if s.st.measure.Swap(false) {
		s.measure(ctx)
	}
	if s.st.display.Swap(false) {
		s.redraw()
	}
}

// Run alternates Step and the low-power wait until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	for ctx.Err() == nil {
		s.Step(ctx)
		if s.st.Sleep(ctx) != nil {
			return
		}
	}
}

// Last returns the most recent successful reading.
func (s *Scheduler) Last() sensor.Sample { return s.last }

func (s *Scheduler) Stats() Stats {
	return Stats{
		Measurements: s.stats.measurements.Load(),
		Errors:       s.stats.errors.Load(),
		Draws:        s.stats.draws.Load(),
		Suppressed:   s.stats.suppressed.Load(),
	}
}

func (s *Scheduler) measure(ctx context.Context) {
	smp, err := s.d.Sensor.Measure(ctx)
	if err != nil {
		// Nothing is sent and the display keeps the last good reading.
		s.stats.errors.Add(1)
		logx.Warn(tag, "measurement failed", logx.Err(err))
		return
	}
	s.stats.measurements.Add(1)
	s.last = smp

	text := readout.Format(smp.Temperature)
	if err := serial.Transmit(s.d.Port, text.Bytes()); err != nil {
		s.stats.errors.Add(1)
		logx.Warn(tag, "transmit failed", logx.Err(err))
	}
	logx.Debug(tag, "measured",
		logx.Str("t", text.String()),
		logx.Uint("rh", uint64(smp.Humidity)),
		logx.Uint("ref", uint64(smp.Reference)))

	if s.unchanged(text, smp.Temperature) {
		s.st.display.Store(false)
		s.stats.suppressed.Add(1)
	}
}

func (s *Scheduler) unchanged(text readout.Text, temp int32) bool {
	switch s.cfg.Suppress {
	case SuppressNever:
		return false
	case SuppressLegacyOffset:
		if int64(s.prevTemp) != int64(temp)+int64(s.cfg.LegacyOffset) {
			s.prevTemp = temp
			return false
		}
		return true
	default:
		same := s.havePrev && s.prevText == text
		s.prevText, s.havePrev = text, true
		return same
	}
}

func (s *Scheduler) frame() display.Frame {
	f := display.Frame{
		Temperature: s.last.Temperature,
		Humidity:    s.last.Humidity,
		Reference:   int32(s.last.Reference) * s.cfg.ReferenceScale,
	}
	if s.cfg.ReportSupply {
		f.SupplyMilliVolts = sensor.SupplyMilliVolts(s.last.Reference, s.cfg.ReferenceChannel)
		f.LowBattery = sensor.LowBattery(f.SupplyMilliVolts, s.cfg.LowBatteryMilliVolts)
	}
	return f
}

func (s *Scheduler) redraw() {
	if err := s.d.Display.Draw(s.frame()); err != nil {
		s.stats.errors.Add(1)
		logx.Warn(tag, "draw failed", logx.Err(err))
	} else {
		s.stats.draws.Add(1)
	}

	s.d.LED.Toggle()
	s.d.Delay.Wait(s.cfg.HeartbeatTicks)
	s.d.LED.Toggle()
}
