package handshake

import (
	"fmt"

	"chachatb/internal/clock"
	"chachatb/internal/common"
	"chachatb/internal/tb"
)

// Monitor observes protocol traffic. It is off the decision path: nothing
// a monitor does changes the phase result.
type Monitor interface {
	PhaseStart(phase tb.Phase, units int)
	UnitSent(phase tb.Phase, idx int, unit tb.Unit)
	UnitReceived(phase tb.Phase, idx int, unit tb.Unit)
	PhaseEnd(phase tb.Phase, now tb.SimTime, err *common.Error)
}

// Engine runs handshake phases against the device behind a Sequencer.
// One engine serves every phase of a run; each phase gets a fresh Session.
type Engine struct {
	common.Component
	seq     *clock.Sequencer
	monitor common.AttachPt[Monitor]
}

// NewEngine creates an engine that clocks the device through seq.
func NewEngine(seq *clock.Sequencer) *Engine {
	e := &Engine{
		seq:     seq,
		monitor: *common.NewAttachPt[Monitor](),
	}
	e.InitComponent("handshake")
	return e
}

// MonitorAttachPt returns the attachment point for a traffic monitor.
func (e *Engine) MonitorAttachPt() *common.AttachPt[Monitor] {
	return &e.monitor
}

// RunPhase streams input through the device until every unit has a result
// or simulated time reaches deadline. Protocol decisions are taken on the
// high clock level only; the toggle to low is a settle step.
//
// On timeout the units captured so far are returned with a TB_ERR_TIMEOUT
// error.
func (e *Engine) RunPhase(phase tb.Phase, input []tb.Unit, deadline tb.SimTime) ([]tb.Unit, *common.Error) {
	timeline := e.seq.Timeline()
	if deadline > timeline.Max() {
		deadline = timeline.Max()
	}
	sig := e.seq.Signals()
	sess := NewSession(input)

	e.LogMessage(tb.ErrSevInfo, fmt.Sprintf("%s phase: %d units, SimTime=%d, deadline=%d", phase, len(input), timeline.Now(), deadline))
	if e.monitor.HasAttachedAndEnabled() {
		e.monitor.First().PhaseStart(phase, len(input))
	}

	done := false
	for timeline.Now() < deadline && !done {
		if sig.Clk {
			ev := sess.Step(sig)
			e.report(phase, ev)
			done = ev.Done
		}
		e.seq.AdvanceClock()
	}

	var err *common.Error
	if !done {
		err = common.NewErrorAt(tb.ErrSevError, tb.ErrTimeout, phase, timeline.Now(),
			fmt.Sprintf("%d of %d units offered, %d results captured, state %s; pins %s",
				sess.Offered(), len(input), len(sess.Output()), sess.State(), sig.Capture()))
		e.LogError(err)
	} else {
		e.LogMessage(tb.ErrSevInfo, fmt.Sprintf("%s phase complete at SimTime=%d", phase, timeline.Now()))
	}
	if e.monitor.HasAttachedAndEnabled() {
		e.monitor.First().PhaseEnd(phase, timeline.Now(), err)
	}
	return sess.Output(), err
}

func (e *Engine) report(phase tb.Phase, ev StepEvents) {
	if ev.Offered {
		e.LogMessage(tb.ErrSevDebug, fmt.Sprintf("offer unit %d: 0x%x", ev.OfferedIdx, ev.OfferedUnit))
		if e.monitor.HasAttachedAndEnabled() {
			e.monitor.First().UnitSent(phase, ev.OfferedIdx, ev.OfferedUnit)
		}
	}
	if ev.Captured {
		e.LogMessage(tb.ErrSevDebug, fmt.Sprintf("capture unit %d: 0x%x", ev.CapturedIdx, ev.CapturedOut))
		if e.monitor.HasAttachedAndEnabled() {
			e.monitor.First().UnitReceived(phase, ev.CapturedIdx, ev.CapturedOut)
		}
	}
}
