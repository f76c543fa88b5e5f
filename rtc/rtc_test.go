package rtc

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAllocateExhaustsPool(t *testing.T) {
	d := New(2)
	defer d.Close()

	a, err := d.Allocate()
	if err != nil {
		t.Fatalf("Allocate 1: %v", err)
	}
	if _, err := d.Allocate(); err != nil {
		t.Fatalf("Allocate 2: %v", err)
	}
	if _, err := d.Allocate(); err != ErrAllTimersInUse {
		t.Fatalf("Allocate 3: got %v, want ErrAllTimersInUse", err)
	}
	if err := d.Free(a); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if id, err := d.Allocate(); err != nil || id != a {
		t.Fatalf("re-Allocate = %d, %v; want %d", id, err, a)
	}
}

func TestStartValidates(t *testing.T) {
	d := New(1)
	defer d.Close()

	if err := d.Start(5, Periodic, 10, nil, nil); err != ErrIllegalTimerID {
		t.Fatalf("illegal id: got %v", err)
	}
	if err := d.Start(0, Periodic, 10, nil, nil); err != ErrTimerNotAllocated {
		t.Fatalf("unallocated: got %v", err)
	}
	id, _ := d.Allocate()
	if err := d.Start(id, Periodic, 0, nil, nil); err != ErrInvalidPeriod {
		t.Fatalf("zero period: got %v", err)
	}
}

func TestPeriodicFiresRepeatedly(t *testing.T) {
	d := New(1)
	defer d.Close()

	id, _ := d.Allocate()
	var n atomic.Int32
	fired := make(chan any, 8)
	err := d.Start(id, Periodic, 5, func(got TimerID, user any) {
		if got != id {
			t.Errorf("callback id = %d, want %d", got, id)
		}
		n.Add(1)
		select {
		case fired <- user:
		default:
		}
	}, "periodic")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case u := <-fired:
			if u != "periodic" {
				t.Fatalf("user = %v", u)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for fire %d", i)
		}
	}
	if running, _ := d.IsRunning(id); !running {
		t.Fatalf("periodic timer should still be running")
	}

	if err := d.Stop(id); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// Let a callback already past its stop check finish.
	time.Sleep(10 * time.Millisecond)
	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	if got := n.Load(); got != after {
		t.Fatalf("callbacks after Stop: %d -> %d", after, got)
	}
}

func TestOneShotFiresOnce(t *testing.T) {
	d := New(1)
	defer d.Close()

	id, _ := d.Allocate()
	var n atomic.Int32
	if err := d.Start(id, OneShot, 5, func(TimerID, any) { n.Add(1) }, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if got := n.Load(); got != 1 {
		t.Fatalf("one-shot fired %d times", got)
	}
	if running, _ := d.IsRunning(id); running {
		t.Fatalf("one-shot should not be running after expiry")
	}
}

func TestRegisterCallback(t *testing.T) {
	d := New(2)
	defer d.Close()

	if _, err := d.RegisterCallback(func(any) {}, nil, 0); err != ErrInvalidFrequency {
		t.Fatalf("hz=0: got %v", err)
	}
	if _, err := d.RegisterCallback(func(any) {}, nil, 2000); err != ErrInvalidFrequency {
		t.Fatalf("hz=2000: got %v", err)
	}

	got := make(chan any, 1)
	id, err := d.RegisterCallback(func(arg any) {
		select {
		case got <- arg:
		default:
		}
	}, 42, 100)
	if err != nil {
		t.Fatalf("RegisterCallback: %v", err)
	}
	select {
	case v := <-got:
		if v != 42 {
			t.Fatalf("arg = %v", v)
		}
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
	if running, _ := d.IsRunning(id); !running {
		t.Fatalf("registered timer should be running")
	}
}
