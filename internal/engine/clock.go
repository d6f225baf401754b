// Package engine drives the settlement economy: construction advancement,
// worker allocation, production and maintenance, and the daily ledger
// merge into the resource store.
package engine

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// SeasonsPerYear is fixed at the classic four.
const SeasonsPerYear = 4

// Clock is the external time authority driving the economy. One step is
// one sim-day; season and year hooks fire on multiples of the configured
// cadence. Speed and the running flag are read and written across
// goroutines (the API control plane, the signal handler), so they live
// behind atomics.
type Clock struct {
	Day      int           // Days elapsed (monotonic, never resets)
	Interval time.Duration // Wall-clock duration of one sim-day

	DaysPerSeason int

	speed   atomic.Uint64 // float64 bits; 0 = paused
	running atomic.Bool

	// Callbacks for each cadence — populated during setup.
	OnDay    func(day int)
	OnSeason func(day int)
	OnYear   func(day int)
}

// NewClock creates a clock with default settings.
func NewClock(daysPerSeason int) *Clock {
	if daysPerSeason <= 0 {
		daysPerSeason = 90
	}
	c := &Clock{
		Interval:      time.Second,
		DaysPerSeason: daysPerSeason,
	}
	c.SetSpeed(1.0)
	return c
}

// Speed returns the speed multiplier: 1.0 = real-time, 0 = paused.
func (c *Clock) Speed() float64 { return math.Float64frombits(c.speed.Load()) }

// SetSpeed changes the speed multiplier. Safe while Run is live.
func (c *Clock) SetSpeed(v float64) { c.speed.Store(math.Float64bits(v)) }

// Running reports whether the loop is live.
func (c *Clock) Running() bool { return c.running.Load() }

// Run starts the loop. Blocks until Stop is called.
func (c *Clock) Run() {
	c.running.Store(true)
	slog.Info("economy clock started", "day", c.Day, "speed", c.Speed())

	for c.running.Load() {
		speed := c.Speed()
		if speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		c.Step()

		elapsed := time.Since(start)
		target := time.Duration(float64(c.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("economy clock stopped", "day", c.Day)
}

// Stop halts the loop.
func (c *Clock) Stop() {
	c.running.Store(false)
}

// Step advances the clock by one sim-day, firing the cadence hooks in
// day → season → year order.
func (c *Clock) Step() {
	c.Day++

	if c.OnDay != nil {
		c.OnDay(c.Day)
	}
	if c.Day%c.DaysPerSeason == 0 && c.OnSeason != nil {
		c.OnSeason(c.Day)
	}
	if c.Day%(c.DaysPerSeason*SeasonsPerYear) == 0 && c.OnYear != nil {
		c.OnYear(c.Day)
	}
}
