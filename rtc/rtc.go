// Package rtc is a small timer driver modelled on an RTC-backed timer pool:
// callers allocate a handle, then start it as a one-shot or periodic timer
// with a callback. Callbacks run on the timer's goroutine, which plays the
// role of interrupt context: they must only set flags or post wakeups.
package rtc

import (
	"errors"
	"sync"
	"time"
)

// TimerID identifies an allocated timer.
type TimerID int

// TimerType selects one-shot or periodic operation.
type TimerType uint8

const (
	OneShot TimerType = iota
	Periodic
)

// Callback is invoked on expiry with the timer's id and the user value
// given to Start.
type Callback func(id TimerID, user any)

// DefaultMaxTimers is the pool size used when New is given n <= 0.
const DefaultMaxTimers = 4

var (
	ErrAllTimersInUse    = errors.New("rtc: all timers in use")
	ErrIllegalTimerID    = errors.New("rtc: illegal timer id")
	ErrTimerNotAllocated = errors.New("rtc: timer not allocated")
	ErrInvalidPeriod     = errors.New("rtc: invalid period")
	ErrInvalidFrequency  = errors.New("rtc: frequency does not match tick rate")
)

type timer struct {
	allocated bool
	running   bool
	stop      chan struct{}
}

// Driver owns a fixed pool of timers.
type Driver struct {
	mu     sync.Mutex
	timers []timer
}

// New returns a driver with n timers.
func New(n int) *Driver {
	if n <= 0 {
		n = DefaultMaxTimers
	}
	return &Driver{timers: make([]timer, n)}
}

// Allocate reserves a free timer.
func (d *Driver) Allocate() (TimerID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.timers {
		if !d.timers[i].allocated {
			d.timers[i] = timer{allocated: true}
			return TimerID(i), nil
		}
	}
	return -1, ErrAllTimersInUse
}

// Free stops and releases a timer.
func (d *Driver) Free(id TimerID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	d.stopLocked(t)
	t.allocated = false
	return nil
}

// Start (re)starts timer id. A running timer is stopped first.
func (d *Driver) Start(id TimerID, typ TimerType, periodMs uint32, cb Callback, user any) error {
	if periodMs == 0 {
		return ErrInvalidPeriod
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	d.stopLocked(t)

	stop := make(chan struct{})
	t.stop = stop
	t.running = true
	go d.run(id, typ, time.Duration(periodMs)*time.Millisecond, cb, user, stop)
	return nil
}

// Stop halts a timer without releasing it.
func (d *Driver) Stop(id TimerID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	d.stopLocked(t)
	return nil
}

// IsRunning reports whether the timer is armed.
func (d *Driver) IsRunning(id TimerID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.lookup(id)
	if err != nil {
		return false, err
	}
	return t.running, nil
}

// RegisterCallback allocates a periodic timer that calls fn(arg) at
// frequencyHz. The period is 1000/frequencyHz ms, so frequencies of zero or
// above 1000 Hz cannot be represented and are rejected.
func (d *Driver) RegisterCallback(fn func(arg any), arg any, frequencyHz uint32) (TimerID, error) {
	if frequencyHz == 0 || frequencyHz > 1000 {
		return -1, ErrInvalidFrequency
	}
	id, err := d.Allocate()
	if err != nil {
		return -1, err
	}
	err = d.Start(id, Periodic, 1000/frequencyHz, func(TimerID, any) { fn(arg) }, nil)
	if err != nil {
		_ = d.Free(id)
		return -1, err
	}
	return id, nil
}

// Close stops and frees every timer.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.timers {
		d.stopLocked(&d.timers[i])
		d.timers[i].allocated = false
	}
}

func (d *Driver) lookup(id TimerID) (*timer, error) {
	if id < 0 || int(id) >= len(d.timers) {
		return nil, ErrIllegalTimerID
	}
	t := &d.timers[id]
	if !t.allocated {
		return nil, ErrTimerNotAllocated
	}
	return t, nil
}

func (d *Driver) stopLocked(t *timer) {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.running = false
}

func (d *Driver) run(id TimerID, typ TimerType, period time.Duration, cb Callback, user any, stop <-chan struct{}) {
	if typ == OneShot {
		tm := time.NewTimer(period)
		defer tm.Stop()
		select {
		case <-stop:
			return
		case <-tm.C:
		}
		d.mu.Lock()
		t := &d.timers[id]
		// A Stop or restart after expiry installs a different stop chan.
		owned := t.stop == stop
		if owned {
			t.stop = nil
			t.running = false
		}
		d.mu.Unlock()
		if owned && cb != nil {
			cb(id, user)
		}
		return
	}

	tk := time.NewTicker(period)
	defer tk.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			select {
			case <-stop:
				return
			default:
			}
			if cb != nil {
				cb(id, user)
			}
		}
	}
}
