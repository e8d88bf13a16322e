// Package config loads the harness run configuration from TOML.
package config

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml"

	"chachatb/common"
	tbcommon "chachatb/internal/common"
	"chachatb/internal/streamcore"
	"chachatb/internal/tb"
	"chachatb/internal/verify"
)

// SecretMessage is the default vector: the text as a NUL terminated C string.
const SecretMessage = "Very very secret message\x00"

// DUT configures the cipher core model.
type DUT struct {
	Latency int    `toml:"latency"`
	Seed    string `toml:"seed"`
	Fault   string `toml:"fault"`
}

// Vector is one message to round trip. MessageHex, when set, is used
// instead of Message.
type Vector struct {
	Name       string `toml:"name"`
	Message    string `toml:"message"`
	MessageHex string `toml:"message_hex"`
	Width      int    `toml:"width"`
}

// Bytes returns the message under test.
func (v Vector) Bytes() ([]byte, error) {
	if v.MessageHex == "" {
		return []byte(v.Message), nil
	}
	b, err := hex.DecodeString(strings.ReplaceAll(v.MessageHex, " ", ""))
	if err != nil {
		return nil, fmt.Errorf("vector %q: message_hex: %w", v.Name, err)
	}
	return b, nil
}

// TransferWidth returns the vector width, 8 when unset. Widths that do not
// fit a Width map to 0, which is never valid.
func (v Vector) TransferWidth() tb.Width {
	if v.Width == 0 {
		return tb.Width8
	}
	if v.Width < 0 || v.Width > int(tb.MaxWidth) {
		return 0
	}
	return tb.Width(v.Width)
}

// Config is the full harness configuration.
type Config struct {
	MaxSimTime   int64    `toml:"max_sim_time"`
	ResetToggles int      `toml:"reset_toggles"`
	Parallel     int      `toml:"parallel"`
	LogLevel     string   `toml:"log_level"`
	DUT          DUT      `toml:"dut"`
	Vectors      []Vector `toml:"vector"`
}

// Default returns the configuration used when no file is given: the secret
// message at both transfer widths.
func Default() Config {
	return Config{
		MaxSimTime:   int64(tb.DefaultMaxSimTime),
		ResetToggles: tb.DefaultResetToggles,
		Parallel:     1,
		LogLevel:     "error",
		DUT: DUT{
			Latency: streamcore.DefaultLatency,
			Seed:    streamcore.DefaultSeed,
			Fault:   "none",
		},
		Vectors: []Vector{
			{Name: "secret-8", Message: SecretMessage, Width: 8},
			{Name: "secret-32", Message: SecretMessage, Width: 32},
		},
	}
}

// Parse decodes TOML data. Keys left out take their default value; unknown
// keys are an error.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := toml.NewDecoder(bytes.NewReader(data)).Strict(true).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.MaxSimTime == 0 {
		c.MaxSimTime = def.MaxSimTime
	}
	if c.ResetToggles == 0 {
		c.ResetToggles = def.ResetToggles
	}
	if c.Parallel == 0 {
		c.Parallel = def.Parallel
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.DUT.Latency == 0 {
		c.DUT.Latency = def.DUT.Latency
	}
	if c.DUT.Seed == "" {
		c.DUT.Seed = def.DUT.Seed
	}
	if c.DUT.Fault == "" {
		c.DUT.Fault = def.DUT.Fault
	}
	if len(c.Vectors) == 0 {
		c.Vectors = def.Vectors
	}
	for i := range c.Vectors {
		if c.Vectors[i].Name == "" {
			c.Vectors[i].Name = fmt.Sprintf("vector-%d", i)
		}
	}
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	var problems []string
	if c.MaxSimTime < 2 {
		problems = append(problems, fmt.Sprintf("max_sim_time %d must be at least 2", c.MaxSimTime))
	}
	if c.ResetToggles < 1 {
		problems = append(problems, fmt.Sprintf("reset_toggles %d must be at least 1", c.ResetToggles))
	}
	if c.Parallel < 1 {
		problems = append(problems, fmt.Sprintf("parallel %d must be at least 1", c.Parallel))
	}
	if _, err := common.ParseSeverity(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if c.DUT.Latency < 1 {
		problems = append(problems, fmt.Sprintf("dut.latency %d must be at least 1", c.DUT.Latency))
	}
	if _, err := streamcore.ParseFault(c.DUT.Fault); err != nil {
		problems = append(problems, "dut."+err.Error())
	}
	for _, v := range c.Vectors {
		if v.Message != "" && v.MessageHex != "" {
			problems = append(problems, fmt.Sprintf("vector %q: message and message_hex are exclusive", v.Name))
		}
		if !v.TransferWidth().Valid() {
			problems = append(problems, fmt.Sprintf("vector %q: unsupported width %d", v.Name, v.Width))
		}
		if _, err := v.Bytes(); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return tbcommon.NewErrorMsg(tb.ErrSevError, tb.ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}

// VerifyConfig returns the run parameters for the verifier.
func (c *Config) VerifyConfig() verify.Config {
	return verify.Config{
		MaxSimTime:   tb.SimTime(c.MaxSimTime),
		ResetToggles: c.ResetToggles,
	}
}

// CoreConfig returns the model configuration for one vector width.
func (c *Config) CoreConfig(width tb.Width) (streamcore.Config, error) {
	fault, err := streamcore.ParseFault(c.DUT.Fault)
	if err != nil {
		return streamcore.Config{}, err
	}
	return streamcore.Config{
		Width:   width,
		Latency: c.DUT.Latency,
		Seed:    c.DUT.Seed,
		Fault:   fault,
	}, nil
}

// Overrides holds command line values that replace configured ones. Nil
// fields leave the configuration unchanged.
type Overrides struct {
	Message      *string
	MessageHex   *string
	Width        *int
	MaxSimTime   *int64
	ResetToggles *int
	Latency      *int
	Seed         *string
	Fault        *string
	Parallel     *int
	LogLevel     *string
}

// Apply replaces configured values with the set overrides. A message
// replaces the vector list with a single "cli" vector; a width on its own
// applies to every configured vector.
func (c *Config) Apply(o Overrides) {
	if o.Message != nil || o.MessageHex != nil {
		v := Vector{Name: "cli"}
		if o.Message != nil {
			v.Message = *o.Message
		}
		if o.MessageHex != nil {
			v.MessageHex = *o.MessageHex
		}
		if o.Width != nil {
			v.Width = *o.Width
		}
		c.Vectors = []Vector{v}
	} else if o.Width != nil {
		c.Vectors = slices.Clone(c.Vectors)
		for i := range c.Vectors {
			c.Vectors[i].Width = *o.Width
		}
	}
	if o.MaxSimTime != nil {
		c.MaxSimTime = *o.MaxSimTime
	}
	if o.ResetToggles != nil {
		c.ResetToggles = *o.ResetToggles
	}
	if o.Latency != nil {
		c.DUT.Latency = *o.Latency
	}
	if o.Seed != nil {
		c.DUT.Seed = *o.Seed
	}
	if o.Fault != nil {
		c.DUT.Fault = *o.Fault
	}
	if o.Parallel != nil {
		c.Parallel = *o.Parallel
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
}
