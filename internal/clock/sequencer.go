// Package clock generates the device clock, sequences reset, and keeps the
// simulated time of one verification run.
package clock

import (
	"fmt"

	"chachatb/internal/common"
	"chachatb/internal/pins"
	"chachatb/internal/tb"
)

// Timeline is the simulated time of a single run. It spans every phase of
// the run and is owned by the run's control loop; runs never share one.
type Timeline struct {
	now tb.SimTime
	max tb.SimTime
}

// NewTimeline creates a timeline bounded by max half-edge steps.
// A zero max selects tb.DefaultMaxSimTime.
func NewTimeline(max tb.SimTime) *Timeline {
	if max == 0 {
		max = tb.DefaultMaxSimTime
	}
	return &Timeline{max: max}
}

// Now returns the number of steps taken so far.
func (t *Timeline) Now() tb.SimTime { return t.now }

// Max returns the step budget.
func (t *Timeline) Max() tb.SimTime { return t.max }

// Exhausted reports whether the budget has been used up.
func (t *Timeline) Exhausted() bool { return t.now >= t.max }

func (t *Timeline) step() { t.now++ }

// Sequencer toggles the device clock and applies reset.
type Sequencer struct {
	common.Component
	dev      pins.Device
	timeline *Timeline
	resets   int
}

// NewSequencer binds a sequencer to a device and a timeline.
func NewSequencer(dev pins.Device, timeline *Timeline) *Sequencer {
	s := &Sequencer{
		dev:      dev,
		timeline: timeline,
	}
	s.InitComponent("sequencer")
	return s
}

// Timeline returns the simulated time the sequencer advances.
func (s *Sequencer) Timeline() *Timeline { return s.timeline }

// Signals returns the device pins.
func (s *Sequencer) Signals() *pins.Signals { return s.dev.Signals() }

// AdvanceClock toggles the clock line, evaluates the device and advances
// simulated time by one step.
func (s *Sequencer) AdvanceClock() {
	sig := s.dev.Signals()
	sig.Clk = !sig.Clk
	s.dev.Eval()
	s.timeline.step()
}

// AssertReset holds reset low for n clock toggles, then releases it.
// Request-valid and payload-in are driven idle while reset is held.
// n < 1 uses tb.DefaultResetToggles.
func (s *Sequencer) AssertReset(n int) {
	if n < 1 {
		n = tb.DefaultResetToggles
	}
	sig := s.dev.Signals()
	sig.RstN = false
	sig.ReqValid = false
	sig.DataIn = 0
	for range n {
		s.AdvanceClock()
	}
	sig.RstN = true
	s.resets++
	s.LogMessage(tb.ErrSevInfo, fmt.Sprintf("reset %d released after %d toggles at SimTime=%d", s.resets, n, s.timeline.Now()))
}

// Resets returns how many resets have been applied.
func (s *Sequencer) Resets() int { return s.resets }
