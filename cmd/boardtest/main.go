// cmd/boardtest/main.go
package main

import (
	"context"
	"time"

	"humitemp/adc"
	"humitemp/config"
	"humitemp/display"
	"humitemp/platform"
	"humitemp/readout"
	"humitemp/sensor"
	"humitemp/serial"
	"humitemp/x/conv"
	"humitemp/x/logx"
)

// ---------- Configuration ----------

const (
	bootDelay  = 2 * time.Second
	cycleDelay = 3 * time.Second
	adcTimeout = 100 * time.Millisecond

	// Cycles: 0 = loop forever
	cyclesToRun = 0
)

const tag = "boardtest"

// ---------- Output to serial + log ----------

type out struct {
	port serial.Port
}

func (o *out) line(parts ...string) {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	b := make([]byte, 0, n+2)
	for _, p := range parts {
		b = append(b, p...)
	}
	b = append(b, '\r', '\n')
	if o.port != nil {
		if err := serial.Transmit(o.port, b); err != nil {
			logx.Warn(tag, "serial", logx.Err(err))
		}
	}
	logx.Info(tag, string(b[:len(b)-2]))
}

func itoa(v int64) string {
	var buf [24]byte
	return string(conv.Itoa(buf[:], v))
}

// ---------- Checks ----------

// sampleChannel runs one conversion on ch and waits for completion.
func sampleChannel(p adc.Peripheral, ch int) (uint16, bool) {
	select {
	case <-p.Done():
	default:
	}
	if err := p.StartSingle(ch); err != nil {
		return 0, false
	}
	select {
	case <-p.Done():
		return p.DataSingle(), true
	case <-time.After(adcTimeout):
		return 0, false
	}
}

func checkADC(o *out, p adc.Peripheral, cfg adc.Config) bool {
	ok := true
	for ch := range cfg.Channels {
		raw, done := sampleChannel(p, ch)
		if !done {
			o.line("[adc] ch", itoa(int64(ch)), " no conversion")
			ok = false
			continue
		}
		mv := adc.MilliVolts(raw, cfg.Channels[ch])
		o.line("[adc] ch", itoa(int64(ch)), " raw=", itoa(int64(raw)), " mv=", itoa(int64(mv)))
	}
	return ok
}

func checkSensor(o *out, b *platform.Board, cfg config.Config) (sensor.Sample, bool) {
	chip, err := sensor.Open(cfg.Sensor.Model, b.I2C, cfg.Sensor.Addr)
	if err != nil {
		o.line("[sensor] ", err.Error())
		return sensor.Sample{}, false
	}
	if !chip.Detect() {
		o.line("[sensor] ", cfg.Sensor.Model, " not detected")
		return sensor.Sample{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := sensor.NewReader(b.ADC, cfg.RefChan, chip).Measure(ctx)
	if err != nil {
		o.line("[sensor] measure: ", err.Error())
		return s, false
	}
	o.line("[sensor] T=", readout.Format(s.Temperature).String(),
		" RH=", readout.Format(int32(s.Humidity)).String())
	return s, true
}

func checkDisplay(o *out, d display.Display, s sensor.Sample, cfg config.Config) bool {
	mv := sensor.SupplyMilliVolts(s.Reference, cfg.ADC.Channels[cfg.RefChan])
	err := d.Draw(display.Frame{
		Temperature:      s.Temperature,
		Humidity:         s.Humidity,
		Reference:        int32(s.Reference),
		SupplyMilliVolts: mv,
		LowBattery:       sensor.LowBattery(mv, cfg.LowBatteryMilliVolts),
	})
	if err != nil {
		o.line("[display] ", err.Error())
		return false
	}
	o.line("[display] frame drawn")
	return true
}

func ledFlashPassFail(led platform.Pin, pass bool) {
	if led == nil {
		return
	}
	if pass {
		// Double short
		for i := 0; i < 2; i++ {
			led.Set(true)
			time.Sleep(120 * time.Millisecond)
			led.Set(false)
			time.Sleep(200 * time.Millisecond)
		}
	} else {
		// Single long
		led.Set(true)
		time.Sleep(400 * time.Millisecond)
		led.Set(false)
		time.Sleep(200 * time.Millisecond)
	}
}

// ---------- Main ----------

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(bootDelay)

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		logx.Error(tag, "config", logx.Err(err))
		return
	}
	b, err := platform.Open(cfg)
	if err != nil {
		logx.Error(tag, "platform", logx.Err(err))
		return
	}
	defer b.Close()

	if b.SensorEnable != nil {
		_ = b.SensorEnable.ConfigureOutput(true)
	}
	if b.LED != nil {
		_ = b.LED.ConfigureOutput(false)
	}
	if err := b.ADC.Configure(cfg.ADC); err != nil {
		logx.Warn(tag, "adc configure", logx.Err(err))
	}
	if err := b.Display.Init(); err != nil {
		logx.Warn(tag, "display init", logx.Err(err))
	}

	o := &out{port: b.Serial}
	o.line("=== boardtest: ", b.Name, " ===")

	cycle := 0
	for {
		cycle++
		o.line("--- cycle ", itoa(int64(cycle)), " ---")

		adcOK := checkADC(o, b.ADC, cfg.ADC)
		s, sensorOK := checkSensor(o, b, cfg)
		dispOK := checkDisplay(o, b.Display, s, cfg)

		pass := adcOK && sensorOK && dispOK
		if pass {
			o.line("[PASS] adc, sensor and display answered")
		} else {
			o.line("[FAIL] adc=", boolStr(adcOK), " sensor=", boolStr(sensorOK), " display=", boolStr(dispOK))
		}
		ledFlashPassFail(b.LED, pass)

		if cyclesToRun > 0 && cycle >= cyclesToRun {
			o.line("completed ", itoa(int64(cycle)), " cycles; halting")
			return
		}
		time.Sleep(cycleDelay)
	}
}

func boolStr(b bool) string {
	if b {
		return "ok"
	}
	return "fail"
}
