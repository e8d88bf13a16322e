package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"chachatb/common"
	"chachatb/internal/config"
	"chachatb/internal/harness"
)

func main() {
	configPath := flag.String("config", "", "TOML run configuration")
	message := flag.String("message", "", "Run a single vector with this text")
	messageHex := flag.String("message_hex", "", "Run a single vector with these hex bytes")
	width := flag.Int("width", 8, "Transfer width in bits; applies to every configured vector")
	maxSimTime := flag.Int64("max_sim_time", 0, "Simulated time budget for the run")
	resetToggles := flag.Int("reset_toggles", 0, "Clock toggles held in reset before each phase")
	latency := flag.Int("latency", 0, "DUT model busy cycles per unit")
	seed := flag.String("seed", "", "DUT model key seed")
	fault := flag.String("fault", "", "DUT model fault: none, stuck-busy, stuck-bit")
	parallel := flag.Int("parallel", 0, "Vectors run concurrently")
	logLevel := flag.String("log_level", "", "Component log level: debug, info, warn, error")
	quiet := flag.Bool("quiet", false, "Do not print the per-unit handshake trace")
	summaryOnly := flag.Bool("summary_only", false, "Print only the summary line")

	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Printf("ChaCha20 TB : Error: %v\n", err)
			os.Exit(1)
		}
	}

	var o config.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "message":
			o.Message = message
		case "message_hex":
			o.MessageHex = messageHex
		case "width":
			o.Width = width
		case "max_sim_time":
			o.MaxSimTime = maxSimTime
		case "reset_toggles":
			o.ResetToggles = resetToggles
		case "latency":
			o.Latency = latency
		case "seed":
			o.Seed = seed
		case "fault":
			o.Fault = fault
		case "parallel":
			o.Parallel = parallel
		case "log_level":
			o.LogLevel = logLevel
		}
	})
	cfg.Apply(o)

	level, err := common.ParseSeverity(cfg.LogLevel)
	if err != nil {
		fmt.Printf("ChaCha20 TB : Error: %v\n", err)
		os.Exit(1)
	}

	sum, err := harness.Run(context.Background(), harness.Config{
		Run:          cfg,
		Quiet:        *quiet,
		SummaryOnly:  *summaryOnly,
		Logger:       common.NewStdLogger(level),
		OutputWriter: os.Stdout,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(sum.ExitCode())
}
