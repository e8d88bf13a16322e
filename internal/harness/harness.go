package harness

import (
	"context"
	"fmt"
	"io"
	"os"

	"chachatb/common"
	"chachatb/internal/config"
	"chachatb/internal/pins"
	"chachatb/internal/streamcore"
	"chachatb/internal/suite"
	"chachatb/internal/tb"
)

// Config mirrors the command line arguments of chacha20_tb.
type Config struct {
	Run          config.Config
	Quiet        bool // drop per-unit trace lines
	SummaryOnly  bool // print only the banner and the summary line
	Logger       common.Logger
	OutputWriter io.Writer
}

// Summary counts the vectors of a run.
type Summary struct {
	Passed  int
	Failed  int
	Results []suite.Result
}

// ExitCode is 0 when every vector passed and 1 otherwise.
func (s Summary) ExitCode() int {
	if s.Failed > 0 {
		return 1
	}
	return 0
}

// Run executes every configured vector against a fresh cipher core model
// and writes the reports, in vector order, followed by a summary line.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	w := cfg.OutputWriter
	if w == nil {
		w = os.Stdout
	}
	if err := cfg.Run.Validate(); err != nil {
		return Summary{}, err
	}
	level, err := common.ParseSeverity(cfg.Run.LogLevel)
	if err != nil {
		return Summary{}, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = common.NewNoOpLogger()
	}

	vectors := make([]suite.Vector, 0, len(cfg.Run.Vectors))
	for _, v := range cfg.Run.Vectors {
		msg, err := v.Bytes()
		if err != nil {
			return Summary{}, err
		}
		vectors = append(vectors, suite.Vector{Name: v.Name, Message: msg, Width: v.TransferWidth()})
	}

	fmt.Fprintln(w, "ChaCha20 core round-trip test bench")
	fmt.Fprintln(w, "-----------------------------------")
	fmt.Fprintf(w, "DUT model: latency=%d fault=%s\n", cfg.Run.DUT.Latency, cfg.Run.DUT.Fault)
	fmt.Fprintf(w, "Budget: max_sim_time=%d reset_toggles=%d\n\n", cfg.Run.MaxSimTime, cfg.Run.ResetToggles)

	results, err := suite.Run(ctx, vectors, suite.Options{
		Verify:     cfg.Run.VerifyConfig(),
		NewDevice:  coreFactory(cfg.Run),
		Parallel:   cfg.Run.Parallel,
		Logger:     logger,
		LogLevel:   level,
		QuietTrace: cfg.Quiet,
		Mute:       cfg.SummaryOnly,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("error running vectors: %w", err)
	}

	sum := Summary{Results: results}
	sum.Passed, sum.Failed = suite.Count(results)
	for i, r := range results {
		if len(r.Report) == 0 {
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		if _, err := w.Write(r.Report); err != nil {
			return sum, fmt.Errorf("write report: %w", err)
		}
	}
	fmt.Fprintf(w, "\nSummary: %d passed, %d failed\n", sum.Passed, sum.Failed)
	return sum, nil
}

func coreFactory(cfg config.Config) suite.DeviceFactory {
	return func(width tb.Width) (pins.Device, error) {
		cc, err := cfg.CoreConfig(width)
		if err != nil {
			return nil, err
		}
		return streamcore.New(cc)
	}
}
