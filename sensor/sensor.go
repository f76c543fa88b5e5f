// Package sensor combines the reference ADC sample and the bus
// humidity/temperature sample into one measurement.
package sensor

import (
	"context"

	"humitemp/adc"
	"humitemp/errcode"
	"humitemp/x/mathx"
)

// Sample is one measurement cycle.
type Sample struct {
	// Reference is the raw ADC code of the reference channel.
	Reference uint16
	// Humidity is relative humidity in milli-%RH, clamped to 0..100000.
	Humidity uint32
	// Temperature is milli-°C.
	Temperature int32
}

// HumiTemp is a bus sensor that can be detected and measured.
type HumiTemp interface {
	Detect() bool
	// MeasureRHAndTemp returns milli-%RH and milli-°C.
	MeasureRHAndTemp() (rh int32, temp int32, err error)
}

// Reader performs the two-step measurement.
type Reader struct {
	adc  adc.Peripheral
	ch   int
	chip HumiTemp
}

// NewReader samples ADC channel ch as the reference reading.
func NewReader(p adc.Peripheral, ch int, chip HumiTemp) *Reader {
	return &Reader{adc: p, ch: ch, chip: chip}
}

// Detect passes through to the bus sensor.
func (r *Reader) Detect() bool { return r.chip.Detect() }

// Measure starts one ADC conversion, waits for its completion signal, reads
// it, then runs the bus transaction. Any failure ends this cycle; there is
// no retry.
func (r *Reader) Measure(ctx context.Context) (Sample, error) {
	var s Sample

	ref, err := r.sampleReference(ctx)
	if err != nil {
		return s, err
	}
	s.Reference = ref

	rh, t, err := r.chip.MeasureRHAndTemp()
	if err != nil {
		return s, &errcode.E{C: errcode.MapDriverErr(err), Op: "sensor.measure", Err: err}
	}
	s.Humidity = uint32(mathx.Clamp(rh, 0, 100000))
	s.Temperature = t
	return s, nil
}

func (r *Reader) sampleReference(ctx context.Context) (uint16, error) {
	done := r.adc.Done()
	// Clear a stale completion before starting.
	select {
	case <-done:
	default:
	}
	if err := r.adc.StartSingle(r.ch); err != nil {
		return 0, &errcode.E{C: errcode.ADCFault, Op: "sensor.adc_start", Err: err}
	}
	select {
	case <-done:
	case <-ctx.Done():
		return 0, &errcode.E{C: errcode.Timeout, Op: "sensor.adc_wait", Err: ctx.Err()}
	}
	return r.adc.DataSingle(), nil
}
