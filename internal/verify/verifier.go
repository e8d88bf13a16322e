// Package verify runs the encrypt-then-decrypt round trip against a device
// and scores the result.
package verify

import (
	"bytes"
	"fmt"

	"chachatb/internal/clock"
	"chachatb/internal/codec"
	"chachatb/internal/common"
	"chachatb/internal/handshake"
	"chachatb/internal/pins"
	"chachatb/internal/tb"
)

// Status is the overall result of a round trip.
type Status uint8

const (
	StatusPass Status = iota
	StatusTimeout
	StatusLengthMismatch
	StatusContentMismatch
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusTimeout:
		return "TIMEOUT"
	case StatusLengthMismatch:
		return "LENGTH_MISMATCH"
	case StatusContentMismatch:
		return "CONTENT_MISMATCH"
	case StatusInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Mismatch is one decrypted byte that differs from the original message.
// Missing is set when the decrypted data ended before Index.
type Mismatch struct {
	Index    int
	Expected byte
	Actual   byte
	Missing  bool
}

// Outcome is the scored result of one round trip. DUT non-conformance is
// reported here as data; Verify itself never fails.
type Outcome struct {
	Status     Status
	Width      tb.Width
	Message    []byte
	Input      []tb.Unit
	Cipher     []tb.Unit
	Ciphertext []byte
	Decrypted  []byte // trimmed to len(Message)
	Mismatches []Mismatch
	Err        *common.Error
	EndTime    tb.SimTime
}

// Passed reports whether the round trip reproduced the message.
func (o *Outcome) Passed() bool { return o.Status == StatusPass }

// Resetter applies reset before each phase.
type Resetter interface {
	AssertReset(n int)
}

// PhaseRunner streams units through the device for one phase.
type PhaseRunner interface {
	RunPhase(phase tb.Phase, input []tb.Unit, deadline tb.SimTime) ([]tb.Unit, *common.Error)
}

// Config holds the run parameters shared by both phases.
type Config struct {
	MaxSimTime   tb.SimTime
	ResetToggles int
}

func (c Config) withDefaults() Config {
	if c.MaxSimTime == 0 {
		c.MaxSimTime = tb.DefaultMaxSimTime
	}
	if c.ResetToggles < 1 {
		c.ResetToggles = tb.DefaultResetToggles
	}
	return c
}

// Verifier sequences reset and both handshake phases.
type Verifier struct {
	common.Component
	cfg      Config
	reset    Resetter
	runner   PhaseRunner
	now      func() tb.SimTime
	Sequence *clock.Sequencer
	Engine   *handshake.Engine
}

// New creates a verifier over explicit reset and phase collaborators.
// now reports simulated time for the outcome and may be nil.
func New(cfg Config, reset Resetter, runner PhaseRunner, now func() tb.SimTime) *Verifier {
	v := &Verifier{
		cfg:    cfg.withDefaults(),
		reset:  reset,
		runner: runner,
		now:    now,
	}
	v.InitComponent("verifier")
	return v
}

// NewForDevice wires a sequencer and engine on a fresh timeline for dev.
// Use one verifier, and one device, per run.
func NewForDevice(cfg Config, dev pins.Device) *Verifier {
	cfg = cfg.withDefaults()
	seq := clock.NewSequencer(dev, clock.NewTimeline(cfg.MaxSimTime))
	eng := handshake.NewEngine(seq)
	v := New(cfg, seq, eng, seq.Timeline().Now)
	v.Sequence = seq
	v.Engine = eng
	return v
}

// AttachLogger routes the verifier's and its components' messages to log at
// the given verbosity.
func (v *Verifier) AttachLogger(log common.ErrorLog, level tb.ErrSeverity) {
	comps := []*common.Component{&v.Component}
	if v.Sequence != nil {
		comps = append(comps, &v.Sequence.Component)
	}
	if v.Engine != nil {
		comps = append(comps, &v.Engine.Component)
	}
	for _, c := range comps {
		c.ErrorLogAttachPt().ReplaceFirst(log)
		c.SetErrorLogLevel(level)
	}
}

// Verify encrypts message at width, decrypts the result on a freshly reset
// device and compares the decrypted bytes with message.
func (v *Verifier) Verify(message []byte, width tb.Width) *Outcome {
	out := &Outcome{
		Width:   width,
		Message: bytes.Clone(message),
	}
	if out.Message == nil {
		out.Message = []byte{}
	}
	defer func() {
		if v.now != nil {
			out.EndTime = v.now()
		}
	}()

	c, err := codec.ForWidth(width)
	if err != nil {
		return v.fail(out, StatusInvalid, common.NewErrorMsg(tb.ErrSevError, tb.ErrInvalidWidth, err.Error()))
	}
	out.Input = c.Pack(out.Message)

	v.reset.AssertReset(v.cfg.ResetToggles)
	cipher, perr := v.runner.RunPhase(tb.PhaseEncrypt, out.Input, v.cfg.MaxSimTime/2)
	out.Cipher = cipher
	out.Ciphertext = c.Unpack(cipher)
	if perr != nil {
		return v.fail(out, StatusTimeout, perr)
	}
	if len(cipher) != len(out.Input) {
		return v.fail(out, StatusLengthMismatch, common.NewErrorAt(tb.ErrSevError, tb.ErrLengthMismatch, tb.PhaseEncrypt, v.time(),
			fmt.Sprintf("ciphertext length mismatch: %d units for %d input units", len(cipher), len(out.Input))))
	}

	v.reset.AssertReset(v.cfg.ResetToggles)
	plain, perr := v.runner.RunPhase(tb.PhaseDecrypt, cipher, v.cfg.MaxSimTime)
	out.Decrypted = codec.TrimToLength(c.Unpack(plain), len(out.Message))
	if perr != nil {
		return v.fail(out, StatusTimeout, perr)
	}

	out.Mismatches = Compare(out.Message, out.Decrypted)
	if len(out.Mismatches) > 0 {
		return v.fail(out, StatusContentMismatch, common.NewErrorAt(tb.ErrSevError, tb.ErrContentMismatch, tb.PhaseDecrypt, v.time(),
			fmt.Sprintf("%d of %d bytes differ", len(out.Mismatches), len(out.Message))))
	}
	out.Status = StatusPass
	v.LogMessage(tb.ErrSevInfo, fmt.Sprintf("round trip of %d bytes at width %d passed", len(out.Message), width))
	return out
}

// Compare lists every index where actual differs from expected. All bytes
// are compared; it does not stop at the first difference.
func Compare(expected, actual []byte) []Mismatch {
	var mm []Mismatch
	for i, e := range expected {
		if i >= len(actual) {
			mm = append(mm, Mismatch{Index: i, Expected: e, Missing: true})
			continue
		}
		if actual[i] != e {
			mm = append(mm, Mismatch{Index: i, Expected: e, Actual: actual[i]})
		}
	}
	return mm
}

func (v *Verifier) fail(out *Outcome, status Status, err *common.Error) *Outcome {
	out.Status = status
	out.Err = err
	v.LogError(err)
	return out
}

func (v *Verifier) time() tb.SimTime {
	if v.now == nil {
		return tb.BadSimTime
	}
	return v.now()
}
