// Package tick is the millisecond tick counter and its blocking delay.
//
// Tick is the interrupt side: it only increments a word. Wait is the
// thread side: it polls the counter until enough ticks have passed.
package tick

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"
)

// MaxReload is the largest SysTick-style reload value (24-bit counter).
const MaxReload = 0xFFFFFF

var ErrReloadOutOfRange = errors.New("tick: reload value out of range")

// Reload returns the number of core clock cycles per tick for the given
// period. It fails when that count is zero or does not fit the 24-bit
// reload register.
func Reload(coreHz uint32, period time.Duration) (uint32, error) {
	if coreHz == 0 || period <= 0 {
		return 0, ErrReloadOutOfRange
	}
	cycles := uint64(coreHz) * uint64(period) / uint64(time.Second)
	if cycles == 0 || cycles-1 > MaxReload {
		return 0, ErrReloadOutOfRange
	}
	return uint32(cycles), nil
}

// Counter counts ticks since start. The zero value is ready to use.
type Counter struct {
	n atomic.Uint32
}

// Tick advances the counter by one.
func (c *Counter) Tick() { c.n.Add(1) }

// Now returns the current count.
func (c *Counter) Now() uint32 { return c.n.Load() }

// Wait blocks until the counter has advanced by at least ticks since the
// call. The unsigned difference keeps it correct across wrap-around.
func (c *Counter) Wait(ticks uint32) {
	start := c.n.Load()
	for c.n.Load()-start < ticks {
		// Yield so a cooperative scheduler can run the tick source.
		runtime.Gosched()
	}
}

// Start validates the tick configuration and then drives Tick every period
// from a ticker goroutine until ctx is done.
func (c *Counter) Start(ctx context.Context, coreHz uint32, period time.Duration) error {
	if _, err := Reload(coreHz, period); err != nil {
		return err
	}
	t := time.NewTicker(period)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.Tick()
			}
		}
	}()
	return nil
}
