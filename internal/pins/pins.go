// Package pins holds the signal-level boundary between the harness and a
// clocked device under test.
//
// The harness drives Clk, RstN, ReqValid and DataIn; the device drives Busy
// and DataOut. A Signals value has no behaviour of its own: a Device reads
// and writes it from Eval.
package pins

import (
	"fmt"

	"chachatb/internal/tb"
)

// Signals is the pin set of a streaming cipher core.
type Signals struct {
	Clk      bool    // clock line
	RstN     bool    // active-low reset; false holds the device in reset
	ReqValid bool    // request-valid; DataIn is offered while high
	DataIn   tb.Unit // payload-in register
	Busy     bool    // high while the device is processing a unit
	DataOut  tb.Unit // payload-out register, valid after Busy falls
}

// Device is a clocked model that settles its outputs on Eval.
type Device interface {
	// Signals returns the pin set shared with the harness.
	Signals() *Signals
	// Eval evaluates the device against the current input levels.
	Eval()
}

// Snapshot is a copy of the pin levels, used for tracing and tests.
type Snapshot Signals

func (s Snapshot) String() string {
	return fmt.Sprintf("clk=%d rst_n=%d req_valid=%d data_in=0x%x busy=%d data_out=0x%x",
		bit(s.Clk), bit(s.RstN), bit(s.ReqValid), uint32(s.DataIn), bit(s.Busy), uint32(s.DataOut))
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Capture copies the current pin levels.
func (s *Signals) Capture() Snapshot {
	return Snapshot(*s)
}
