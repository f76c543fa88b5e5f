// Package app wires the peripherals of a Board into the measurement loop:
// it runs the start-up sequence, arms the periodic update timer and the
// system tick, shows the start-up status and then runs the scheduler.
package app

import (
	"context"
	"time"

	"humitemp/config"
	"humitemp/errcode"
	"humitemp/platform"
	"humitemp/rtc"
	"humitemp/scheduler"
	"humitemp/sensor"
	"humitemp/tick"
	"humitemp/x/logx"
)

const tag = "app"

// Runtime is a started application.
type Runtime struct {
	State    *scheduler.State
	Loop     *scheduler.Scheduler
	Ticks    *tick.Counter
	Timers   *rtc.Driver
	Detected bool

	cancel context.CancelFunc
}

// Run starts the application and runs the loop until ctx is done. A tick
// configuration the core clock cannot produce is returned as an
// errcode.Fatal error before the loop starts.
func Run(ctx context.Context, cfg config.Config, b *platform.Board) error {
	rt, err := Start(ctx, cfg, b)
	if err != nil {
		return err
	}
	defer rt.Close()
	rt.Loop.Run(ctx)
	return nil
}

// Start performs the start-up sequence and returns the loop without
// running it.
func Start(ctx context.Context, cfg config.Config, b *platform.Board) (*Runtime, error) {
	// The tick runs until Close, not until ctx is done: a heartbeat
	// started before cancellation still needs it.
	tickCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	rt := &Runtime{
		State:  scheduler.NewState(),
		Ticks:  &tick.Counter{},
		Timers: rtc.New(cfg.MaxTimers),
		cancel: cancel,
	}

	setupGPIO(b)
	warn("adc configure", b.ADC.Configure(cfg.ADC))
	warn("display init", b.Display.Init())

	chip, err := sensor.Open(cfg.Sensor.Model, b.I2C, cfg.Sensor.Addr)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Detected = chip.Detect()
	logx.Info(tag, "sensor",
		logx.Str("model", cfg.Sensor.Model),
		logx.Bool("detected", rt.Detected))

	id, err := rt.Timers.Allocate()
	if err == nil {
		err = rt.Timers.Start(id, rtc.Periodic, uint32(cfg.UpdatePeriod/time.Millisecond),
			func(rtc.TimerID, any) { rt.State.Post() }, nil)
	}
	if err != nil {
		rt.Close()
		return nil, errcode.Wrap(errcode.NoTimer, "app.update_timer", err)
	}

	if err := rt.Ticks.Start(tickCtx, cfg.CoreHz, cfg.TickPeriod); err != nil {
		rt.Close()
		return nil, &errcode.E{C: errcode.Fatal, Op: "app.systick", Err: err}
	}

	led := b.LED
	if led == nil {
		led = platform.NewFakePin(config.NoPin)
	}
	rt.Loop = scheduler.New(cfg.SchedulerConfig(), rt.State, scheduler.Deps{
		Sensor:  sensor.NewReader(b.ADC, cfg.RefChan, chip),
		Port:    b.Serial,
		Display: b.Display,
		LED:     led,
		Delay:   rt.Ticks,
	})

	if cfg.StatsHz > 0 {
		if _, err := rt.Timers.RegisterCallback(rt.logStats, nil, cfg.StatsHz); err != nil {
			warn("stats timer", err)
		}
	}

	warn("show status", b.Display.ShowStatus(rt.Detected, false))
	logx.Info(tag, "started",
		logx.Str("board", b.Name),
		logx.Int("period_ms", int64(cfg.UpdatePeriod/time.Millisecond)))
	return rt, nil
}

// Close stops the timers and the tick source.
func (rt *Runtime) Close() {
	rt.Timers.Close()
	rt.cancel()
}

func (rt *Runtime) logStats(any) {
	if rt.Loop == nil {
		return
	}
	s := rt.Loop.Stats()
	logx.Info(tag, "stats",
		logx.Uint("measurements", uint64(s.Measurements)),
		logx.Uint("draws", uint64(s.Draws)),
		logx.Uint("suppressed", uint64(s.Suppressed)),
		logx.Uint("errors", uint64(s.Errors)))
}

// setupGPIO drives the sensor power switch on and parks the UART lines: TX
// idles high before the port is enabled and RX is an input.
func setupGPIO(b *platform.Board) {
	if b.SensorEnable != nil {
		warn("sensor enable", b.SensorEnable.ConfigureOutput(true))
	}
	if b.UARTTX != nil {
		warn("uart tx", b.UARTTX.ConfigureOutput(true))
	}
	if b.UARTRX != nil {
		warn("uart rx", b.UARTRX.ConfigureInput(platform.PullNone))
	}
	if b.LED != nil {
		warn("led", b.LED.ConfigureOutput(false))
	}
}

// warn logs start-up failures; the firmware carries on regardless.
func warn(what string, err error) {
	if err != nil {
		logx.Warn(tag, what, logx.Err(err))
	}
}
