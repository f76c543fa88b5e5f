package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"humitemp/display"
	"humitemp/sensor"
)

type scripted struct {
	samples []sensor.Sample
	errs    []error
	calls   int
}

func (s *scripted) Measure(context.Context) (sensor.Sample, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return sensor.Sample{}, s.errs[i]
	}
	if i >= len(s.samples) {
		i = len(s.samples) - 1
	}
	return s.samples[i], nil
}

type recPort struct{ sent []byte }

func (p *recPort) WriteByte(b byte) error {
	p.sent = append(p.sent, b)
	return nil
}

type recDisplay struct {
	frames []display.Frame
	err    error
}

func (d *recDisplay) Init() error                 { return nil }
func (d *recDisplay) ShowStatus(bool, bool) error { return nil }
func (d *recDisplay) Draw(f display.Frame) error {
	d.frames = append(d.frames, f)
	return d.err
}

type recLED struct {
	on      bool
	toggles int
}

func (l *recLED) Toggle() {
	l.on = !l.on
	l.toggles++
}

type recDelay struct {
	waits []uint32
	led   *recLED
	litOK bool
}

func (d *recDelay) Wait(n uint32) {
	d.waits = append(d.waits, n)
	d.litOK = d.led.on
}

type rig struct {
	st    *State
	s     *Scheduler
	src   *scripted
	port  *recPort
	disp  *recDisplay
	led   *recLED
	delay *recDelay
}

func newRig(cfg Config, samples ...sensor.Sample) *rig {
	r := &rig{
		st:   NewState(),
		src:  &scripted{samples: samples},
		port: &recPort{},
		disp: &recDisplay{},
		led:  &recLED{},
	}
	r.delay = &recDelay{led: r.led}
	r.s = New(cfg, r.st, Deps{Sensor: r.src, Port: r.port, Display: r.disp, LED: r.led, Delay: r.delay})
	return r
}

var ctx = context.Background()

func TestInitialStepMeasuresAndDrawsOnce(t *testing.T) {
	r := newRig(DefaultConfig(), sensor.Sample{Reference: 1234, Humidity: 45000, Temperature: 23335})

	r.s.Step(ctx)
	if r.src.calls != 1 || len(r.disp.frames) != 1 {
		t.Fatalf("measurements=%d draws=%d, want 1/1", r.src.calls, len(r.disp.frames))
	}
	if r.st.MeasurementDue() || r.st.DisplayDue() {
		t.Fatal("flags not cleared")
	}
	f := r.disp.frames[0]
	if f.Temperature != 23335 || f.Humidity != 45000 || f.Reference != 12340 {
		t.Fatalf("frame = %+v", f)
	}

	r.s.Step(ctx)
	if r.src.calls != 1 || len(r.disp.frames) != 1 {
		t.Fatalf("idle step did work: measurements=%d draws=%d", r.src.calls, len(r.disp.frames))
	}
}

func TestHeartbeat(t *testing.T) {
	r := newRig(DefaultConfig(), sensor.Sample{Temperature: 20000})
	r.s.Step(ctx)
	if len(r.delay.waits) != 1 || r.delay.waits[0] != 25 {
		t.Fatalf("waits = %v", r.delay.waits)
	}
	if !r.delay.litOK {
		t.Fatal("indicator was not on during the heartbeat delay")
	}
	if r.led.on || r.led.toggles != 2 {
		t.Fatalf("led on=%v toggles=%d", r.led.on, r.led.toggles)
	}
}

func TestTransmitsFormattedBytes(t *testing.T) {
	r := newRig(DefaultConfig(), sensor.Sample{Temperature: 23335}, sensor.Sample{Temperature: -5123})
	r.s.Step(ctx)
	r.port.sent = nil

	r.st.Post()
	r.s.Step(ctx)
	if string(r.port.sent) != "- 5.1" {
		t.Fatalf("sent %q, want %q", r.port.sent, "- 5.1")
	}
}

func TestSuppressUnchanged(t *testing.T) {
	// 23335 and 23399 render identically.
	r := newRig(DefaultConfig(), sensor.Sample{Temperature: 23335}, sensor.Sample{Temperature: 23399}, sensor.Sample{Temperature: 23400})
	r.s.Step(ctx)

	r.st.Post()
	r.s.Step(ctx)
	if len(r.disp.frames) != 1 || r.led.toggles != 2 {
		t.Fatalf("unchanged reading redrew: draws=%d toggles=%d", len(r.disp.frames), r.led.toggles)
	}
	if len(r.port.sent) != 10 {
		t.Fatalf("suppressed cycle must still transmit, sent %q", r.port.sent)
	}

	r.st.Post()
	r.s.Step(ctx)
	if len(r.disp.frames) != 2 {
		t.Fatalf("changed reading not drawn, draws=%d", len(r.disp.frames))
	}
	if st := r.s.Stats(); st.Suppressed != 1 || st.Draws != 2 || st.Measurements != 3 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestSuppressLegacyOffset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Suppress = SuppressLegacyOffset
	// Stored value starts at 0, so -2000 is suppressed straight away.
	r := newRig(cfg, sensor.Sample{Temperature: -2000}, sensor.Sample{Temperature: 21000}, sensor.Sample{Temperature: 19000}, sensor.Sample{Temperature: 5000})
	r.s.Step(ctx)
	if len(r.disp.frames) != 0 {
		t.Fatalf("draws = %d, want 0", len(r.disp.frames))
	}
	for i, want := range []int{1, 1, 2} {
		r.st.Post()
		r.s.Step(ctx)
		if len(r.disp.frames) != want {
			t.Fatalf("cycle %d: draws = %d, want %d", i+2, len(r.disp.frames), want)
		}
	}
}

func TestSuppressNever(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Suppress = SuppressNever
	r := newRig(cfg, sensor.Sample{Temperature: 1000})
	for i := 0; i < 3; i++ {
		r.st.Post()
		r.s.Step(ctx)
	}
	if len(r.disp.frames) != 3 {
		t.Fatalf("draws = %d", len(r.disp.frames))
	}
}

func TestMeasurementErrorKeepsLastReading(t *testing.T) {
	r := newRig(DefaultConfig(), sensor.Sample{Temperature: 21000, Humidity: 40000})
	r.s.Step(ctx)

	r.src.errs = []error{nil, errors.New("nack")}
	r.st.Post()
	r.s.Step(ctx)
	if len(r.port.sent) != 5 {
		t.Fatalf("failed measurement transmitted: %q", r.port.sent)
	}
	if len(r.disp.frames) != 2 || r.disp.frames[1].Temperature != 21000 {
		t.Fatalf("frames = %+v", r.disp.frames)
	}
	if st := r.s.Stats(); st.Errors != 1 || st.Measurements != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestLowBatteryFrame(t *testing.T) {
	r := newRig(DefaultConfig(), sensor.Sample{Reference: 3000})
	r.s.Step(ctx)
	f := r.disp.frames[0]
	if f.SupplyMilliVolts != 2747 || !f.LowBattery {
		t.Fatalf("frame = %+v", f)
	}
}

func TestPostCoalesces(t *testing.T) {
	st := NewState()
	st.Post()
	st.Post()
	st.Post()
	if err := st.Sleep(ctx); err != nil {
		t.Fatal(err)
	}
	c, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	if err := st.Sleep(c); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second Sleep = %v, want deadline", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRig(DefaultConfig(), sensor.Sample{Temperature: 1000})
	c, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		r.s.Run(c)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func TestParseSuppressMode(t *testing.T) {
	for _, m := range []SuppressMode{SuppressUnchanged, SuppressLegacyOffset, SuppressNever} {
		got, ok := ParseSuppressMode(m.String())
		if !ok || got != m {
			t.Fatalf("round trip %v -> %v %v", m, got, ok)
		}
	}
	if _, ok := ParseSuppressMode("sometimes"); ok {
		t.Fatal("accepted bad mode")
	}
}

func TestFailedDrawIsNotCounted(t *testing.T) {
	r := newRig(DefaultConfig(), sensor.Sample{Temperature: 21500})
	r.disp.err = errors.New("bus down")
	r.s.Step(ctx)

	st := r.s.Stats()
	if st.Draws != 0 || st.Errors != 1 {
		t.Fatalf("stats = %+v, want 0 draws and 1 error", st)
	}
	// The heartbeat still blinks.
	if r.led.toggles != 2 || r.led.on {
		t.Fatalf("toggles = %d on = %v", r.led.toggles, r.led.on)
	}
}
