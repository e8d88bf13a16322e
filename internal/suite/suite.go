// Package suite runs a list of round-trip vectors, each on its own device
// and timeline, with bounded concurrency.
package suite

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chachatb/common"
	tbcommon "chachatb/internal/common"
	"chachatb/internal/pins"
	"chachatb/internal/report"
	"chachatb/internal/tb"
	"chachatb/internal/verify"
)

// Vector is one message and transfer width to round trip.
type Vector struct {
	Name    string
	Message []byte
	Width   tb.Width
}

// Result is the scored outcome of one vector and its rendered report.
type Result struct {
	RunID   string
	Vector  Vector
	Outcome *verify.Outcome
	Report  []byte
}

// DeviceFactory builds a fresh device, out of reset, for one vector.
type DeviceFactory func(width tb.Width) (pins.Device, error)

// Options controls a suite run.
type Options struct {
	Verify    verify.Config
	NewDevice DeviceFactory
	// Parallel bounds the number of vectors in flight; values below 1 run
	// one at a time.
	Parallel int
	// Logger receives component messages. Nil disables component logging.
	Logger   common.Logger
	LogLevel common.Severity
	// QuietTrace drops the per-unit send/receive lines from the reports.
	QuietTrace bool
	// Mute leaves the reports empty; outcomes are still scored.
	Mute bool
}

// Run executes every vector and returns the results in vector order. The
// returned error reports infrastructure failures only; a vector that fails
// verification is a result, not an error.
func Run(ctx context.Context, vectors []Vector, opts Options) ([]Result, error) {
	if opts.NewDevice == nil {
		return nil, tbcommon.NewErrorMsg(tb.ErrSevError, tb.ErrNotInit, "suite: no device factory")
	}
	limit := opts.Parallel
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(vectors))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, vec := range vectors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := runOne(vec, opts)
			if err != nil {
				return fmt.Errorf("vector %q: %w", vec.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runOne(vec Vector, opts Options) (Result, error) {
	if !vec.Width.Valid() {
		return Result{}, tbcommon.NewErrorMsg(tb.ErrSevError, tb.ErrInvalidParamVal, fmt.Sprintf("width %d", vec.Width))
	}
	dev, err := opts.NewDevice(vec.Width)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		RunID:  uuid.NewString(),
		Vector: vec,
	}
	var buf bytes.Buffer
	p := report.NewPrinter(&buf, vec.Width)
	p.MuteTrace(opts.QuietTrace)
	p.SetMute(opts.Mute)

	v := verify.NewForDevice(opts.Verify, dev)
	if ret := v.Engine.MonitorAttachPt().Attach(p); ret != tb.OK {
		return Result{}, tbcommon.NewError(tb.ErrSevError, ret)
	}
	if opts.Logger != nil {
		adapter := common.NewErrorLogAdapter(opts.Logger)
		v.AttachLogger(adapter, common.ErrSeverityFor(opts.LogLevel))
		if opts.LogLevel == common.SeverityDebug {
			p.SetMessageLogger(adapter)
		}
	}

	p.PrintHeader(res.RunID, vec.Name, vec.Message)
	res.Outcome = v.Verify(vec.Message, vec.Width)
	p.PrintOutcome(res.Outcome)
	res.Report = buf.Bytes()
	return res, nil
}

// Count returns the number of passing and failing results.
func Count(results []Result) (passed, failed int) {
	for _, r := range results {
		if r.Outcome != nil && r.Outcome.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
