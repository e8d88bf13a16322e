package handshake

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chachatb/internal/clock"
	"chachatb/internal/common"
	"chachatb/internal/pins"
	"chachatb/internal/tb"
)

// invertDevice returns ^unit after latency rising edges. stuck keeps busy high
// forever once a unit is latched.
type invertDevice struct {
	sig       pins.Signals
	prevClk   bool
	latency   int
	countdown int
	latched   tb.Unit
	stuck     bool
	latches   int
}

func (d *invertDevice) Signals() *pins.Signals { return &d.sig }

func (d *invertDevice) Eval() {
	rising := d.sig.Clk && !d.prevClk
	d.prevClk = d.sig.Clk
	if !d.sig.RstN {
		d.sig.Busy = false
		return
	}
	if !rising {
		return
	}
	if d.sig.Busy {
		if d.stuck {
			return
		}
		if d.countdown--; d.countdown == 0 {
			d.sig.DataOut = ^d.latched & 0xFF
			d.sig.Busy = false
		}
		return
	}
	if d.sig.ReqValid {
		d.latched = d.sig.DataIn
		d.countdown = d.latency
		d.sig.Busy = true
		d.latches++
	}
}

type recordingMonitor struct {
	starts []tb.Phase
	sent   []tb.Unit
	recv   []tb.Unit
	endErr *common.Error
	ends   int
}

func (m *recordingMonitor) PhaseStart(p tb.Phase, _ int)             { m.starts = append(m.starts, p) }
func (m *recordingMonitor) UnitSent(_ tb.Phase, _ int, u tb.Unit)     { m.sent = append(m.sent, u) }
func (m *recordingMonitor) UnitReceived(_ tb.Phase, _ int, u tb.Unit) { m.recv = append(m.recv, u) }
func (m *recordingMonitor) PhaseEnd(_ tb.Phase, _ tb.SimTime, err *common.Error) {
	m.ends++
	m.endErr = err
}

func newEngine(dev pins.Device, max tb.SimTime) (*Engine, *clock.Sequencer) {
	seq := clock.NewSequencer(dev, clock.NewTimeline(max))
	return NewEngine(seq), seq
}

func TestRunPhase(t *testing.T) {
	for _, latency := range []int{1, 2, 5} {
		dev := &invertDevice{latency: latency}
		eng, seq := newEngine(dev, 2000)
		mon := &recordingMonitor{}
		eng.MonitorAttachPt().Attach(mon)

		seq.AssertReset(tb.DefaultResetToggles)
		in := []tb.Unit{0x00, 0x0F, 0xA5, 0xFF}
		out, err := eng.RunPhase(tb.PhaseEncrypt, in, seq.Timeline().Max())
		if err != nil {
			t.Fatalf("latency %d: unexpected error %v", latency, err)
		}
		want := []tb.Unit{0xFF, 0xF0, 0x5A, 0x00}
		if diff := cmp.Diff(want, out); diff != "" {
			t.Errorf("latency %d: output mismatch (-want +got):\n%s", latency, diff)
		}
		if dev.latches != len(in) {
			t.Errorf("latency %d: device latched %d units, want %d", latency, dev.latches, len(in))
		}
		if diff := cmp.Diff(in, mon.sent); diff != "" {
			t.Errorf("monitor sent mismatch:\n%s", diff)
		}
		if diff := cmp.Diff(want, mon.recv); diff != "" {
			t.Errorf("monitor recv mismatch:\n%s", diff)
		}
		if mon.ends != 1 || mon.endErr != nil || mon.starts[0] != tb.PhaseEncrypt {
			t.Errorf("unexpected monitor phase events: %+v", mon)
		}
	}
}

func TestRunPhaseEmpty(t *testing.T) {
	dev := &invertDevice{latency: 2}
	eng, seq := newEngine(dev, 100)
	seq.AssertReset(0)
	start := seq.Timeline().Now()

	out, err := eng.RunPhase(tb.PhaseEncrypt, nil, 100)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(out) != 0 || dev.latches != 0 {
		t.Errorf("expected no traffic, got out=%v latches=%d", out, dev.latches)
	}
	if used := seq.Timeline().Now() - start; used > 2 {
		t.Errorf("empty phase should finish within one cycle, used %d steps", used)
	}
}

func TestRunPhaseTimeout(t *testing.T) {
	dev := &invertDevice{latency: 1, stuck: true}
	eng, seq := newEngine(dev, 400)
	mon := &recordingMonitor{}
	eng.MonitorAttachPt().Attach(mon)
	seq.AssertReset(tb.DefaultResetToggles)

	out, err := eng.RunPhase(tb.PhaseDecrypt, []tb.Unit{1, 2, 3}, 400)
	if err == nil {
		t.Fatal("expected timeout")
	}
	if !errors.Is(err, common.NewError(tb.ErrSevError, tb.ErrTimeout)) {
		t.Errorf("expected TB_ERR_TIMEOUT, got %v", err)
	}
	if err.Phase != tb.PhaseDecrypt || err.Time != 400 {
		t.Errorf("unexpected error context: %v", err)
	}
	if !strings.Contains(err.Message, "1 of 3 units offered") || !strings.Contains(err.Message, "req_valid=0 data_in=0x1 busy=1") {
		t.Errorf("timeout message should carry progress and pin levels, got %q", err.Message)
	}
	if len(out) != 0 || dev.latches != 1 {
		t.Errorf("expected one latched unit and no outputs, got out=%v latches=%d", out, dev.latches)
	}
	if seq.Timeline().Now() != 400 {
		t.Errorf("expected run to stop at the budget, SimTime=%d", seq.Timeline().Now())
	}
	if mon.endErr != err {
		t.Errorf("monitor should see the timeout error")
	}
}

func TestRunPhaseDeadlineClampedToBudget(t *testing.T) {
	dev := &invertDevice{latency: 1, stuck: true}
	eng, seq := newEngine(dev, 50)
	_, err := eng.RunPhase(tb.PhaseEncrypt, []tb.Unit{1}, 1_000_000)
	if err == nil || seq.Timeline().Now() != 50 {
		t.Errorf("expected timeout at the timeline budget, err=%v now=%d", err, seq.Timeline().Now())
	}
}

func TestRunPhaseSharesTimelineAcrossPhases(t *testing.T) {
	dev := &invertDevice{latency: 3}
	eng, seq := newEngine(dev, 1000)

	seq.AssertReset(tb.DefaultResetToggles)
	ct, err := eng.RunPhase(tb.PhaseEncrypt, []tb.Unit{0x12, 0x34}, 500)
	if err != nil {
		t.Fatal(err)
	}
	mid := seq.Timeline().Now()

	seq.AssertReset(tb.DefaultResetToggles)
	pt, err := eng.RunPhase(tb.PhaseDecrypt, ct, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if seq.Timeline().Now() <= mid+tb.DefaultResetToggles {
		t.Errorf("decrypt phase should continue the same timeline, mid=%d end=%d", mid, seq.Timeline().Now())
	}
	if diff := cmp.Diff([]tb.Unit{0x12, 0x34}, pt); diff != "" {
		t.Errorf("round trip mismatch:\n%s", diff)
	}
}
