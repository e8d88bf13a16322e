// Package handshake implements the request-valid/busy flow-control protocol
// used to stream transfer units through a cipher core.
//
// Busy is the only flow-control signal the device drives: a unit is
// accepted when busy rises and its result is ready when busy falls. The
// Session state machine holds everything one phase needs to infer that from
// the pin levels seen on successive rising half-cycles.
package handshake

import (
	"chachatb/internal/pins"
	"chachatb/internal/tb"
)

// State is the offer state of the unit currently in flight.
type State uint8

const (
	// StateIdle: no unit in flight.
	StateIdle State = iota
	// StateOffering: request-valid is asserted and the device has not yet
	// reported busy.
	StateOffering
	// StateAwaitingAck: the device latched the unit (busy seen) and
	// request-valid has been dropped; waiting for busy to fall.
	StateAwaitingAck
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateOffering:
		return "Offering"
	case StateAwaitingAck:
		return "AwaitingAck"
	default:
		return "Unknown"
	}
}

// StepEvents reports what a single Step did.
type StepEvents struct {
	Offered     bool    // a unit was placed on payload-in
	OfferedIdx  int     // index of the offered unit
	OfferedUnit tb.Unit // value of the offered unit
	Captured    bool    // a unit was taken from payload-out
	CapturedIdx int
	CapturedOut tb.Unit
	Done        bool // phase completion condition holds
}

// Session is the protocol state of one phase. It is created per phase and
// discarded when the phase ends.
type Session struct {
	input   []tb.Unit
	output  []tb.Unit
	next    int
	state   State
	wasBusy bool
}

// NewSession starts a phase that will stream input through the device.
func NewSession(input []tb.Unit) *Session {
	return &Session{
		input:  input,
		output: make([]tb.Unit, 0, len(input)),
	}
}

// State returns the current offer state.
func (s *Session) State() State { return s.state }

// Offered returns the number of units placed on payload-in so far.
func (s *Session) Offered() int { return s.next }

// Output returns the units captured so far.
func (s *Session) Output() []tb.Unit { return s.output }

// WasBusy returns the busy level seen on the previous step.
func (s *Session) WasBusy() bool { return s.wasBusy }

// Step applies one rising half-cycle of protocol decisions to sig.
// It must only be called while the clock line is high.
func (s *Session) Step(sig *pins.Signals) StepEvents {
	var ev StepEvents
	busy := sig.Busy

	// busy falling edge: one result is on payload-out. Gated on units offered
	// before this step, so a fall seen before any request is never captured.
	if s.wasBusy && !busy && len(s.output) < s.next {
		ev.Captured = true
		ev.CapturedIdx = len(s.output)
		ev.CapturedOut = sig.DataOut
		s.output = append(s.output, sig.DataOut)
	}
	s.wasBusy = busy

	switch s.state {
	case StateOffering:
		if busy {
			// latched; never re-assert for this unit
			sig.ReqValid = false
			s.state = StateAwaitingAck
		}
	case StateIdle, StateAwaitingAck:
		if !busy {
			s.state = StateIdle
			if s.next < len(s.input) {
				ev.Offered = true
				ev.OfferedIdx = s.next
				ev.OfferedUnit = s.input[s.next]
				sig.DataIn = s.input[s.next]
				sig.ReqValid = true
				s.next++
				s.state = StateOffering
			}
		}
	}

	ev.Done = s.complete(busy)
	return ev
}

func (s *Session) complete(busy bool) bool {
	n := len(s.input)
	return s.next >= n && !busy && len(s.output) == n
}
