package scheduler

import (
	"context"
	"sync/atomic"
)

// State holds the two work flags shared between the periodic timer and the
// main loop. The timer only sets flags; the loop only clears them. Requests
// arriving while a flag is already set are coalesced.
type State struct {
	measure atomic.Bool
	display atomic.Bool
	wake    chan struct{}
}

// NewState returns a state with both flags due, so the first pass of the
// loop measures and draws without waiting for the timer.
func NewState() *State {
	s := &State{wake: make(chan struct{}, 1)}
	s.measure.Store(true)
	s.display.Store(true)
	return s
}

// Post marks a measurement and a redraw due and wakes the loop. It never
// blocks and is safe to call from a timer callback.
func (s *State) Post() {
	s.measure.Store(true)
	s.display.Store(true)
	s.Wake()
}

// Wake ends a pending Sleep without adding work.
func (s *State) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Sleep blocks until the next Wake or Post, or until ctx is done. A wake
// that happened since the last Sleep returns immediately.
func (s *State) Sleep(ctx context.Context) error {
	select {
	case <-s.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *State) MeasurementDue() bool { return s.measure.Load() }
func (s *State) DisplayDue() bool     { return s.display.Load() }
