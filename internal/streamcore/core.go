// Package streamcore is a behavioural cycle model of a streaming ChaCha20
// cipher core with a request-valid/busy handshake.
//
// The model latches payload-in on a rising clock edge while request-valid is
// high and it is not busy, holds busy for a fixed number of rising edges, then
// presents payload-in XOR keystream on payload-out and drops busy. Reset is
// asynchronous and active low; it restarts the keystream, so running the
// ciphertext through a freshly reset core decrypts it.
package streamcore

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"

	"chachatb/internal/pins"
	"chachatb/internal/tb"
)

// DefaultLatency is the number of rising edges busy stays high per unit.
const DefaultLatency = 4

// DefaultSeed keys the core when no seed is configured.
const DefaultSeed = "chachatb streamcore"

const kdfInfo = "chachatb streamcore key+nonce"

// Fault selects an injected defect for negative testing of the harness.
type Fault uint8

const (
	FaultNone Fault = iota
	// FaultStuckBusy: busy never falls once a unit is latched.
	FaultStuckBusy
	// FaultStuckBit: bit 0 of every result is forced high.
	FaultStuckBit
)

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultStuckBusy:
		return "stuck-busy"
	case FaultStuckBit:
		return "stuck-bit"
	default:
		return "unknown"
	}
}

// ParseFault converts a configuration string to a Fault.
func ParseFault(s string) (Fault, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FaultNone, nil
	case "stuck-busy":
		return FaultStuckBusy, nil
	case "stuck-bit":
		return FaultStuckBit, nil
	}
	return FaultNone, fmt.Errorf("unknown fault %q", s)
}

// Config parameterises a core instance.
type Config struct {
	Width   tb.Width
	Latency int
	Seed    string
	Fault   Fault
}

// Core is one instance of the cipher core model.
type Core struct {
	sig pins.Signals
	cfg Config

	key   [chacha20.KeySize]byte
	nonce [chacha20.NonceSize]byte

	stream    *chacha20.Cipher
	prevClk   bool
	inReset   bool
	latched   tb.Unit
	countdown int
	processed int
}

// New creates a core in its reset state.
func New(cfg Config) (*Core, error) {
	if !cfg.Width.Valid() {
		return nil, fmt.Errorf("streamcore: invalid width %d", cfg.Width)
	}
	if cfg.Latency < 1 {
		cfg.Latency = DefaultLatency
	}
	if cfg.Seed == "" {
		cfg.Seed = DefaultSeed
	}

	c := &Core{cfg: cfg}
	kdf := hkdf.New(sha256.New, []byte(cfg.Seed), nil, []byte(kdfInfo))
	if _, err := io.ReadFull(kdf, c.key[:]); err != nil {
		return nil, fmt.Errorf("streamcore: derive key: %w", err)
	}
	if _, err := io.ReadFull(kdf, c.nonce[:]); err != nil {
		return nil, fmt.Errorf("streamcore: derive nonce: %w", err)
	}
	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// Signals returns the core's pins.
func (c *Core) Signals() *pins.Signals { return &c.sig }

// Config returns the effective configuration.
func (c *Core) Config() Config { return c.cfg }

// Processed returns the number of units completed since the last reset.
func (c *Core) Processed() int { return c.processed }

// Eval settles the core against the current pin levels.
func (c *Core) Eval() {
	rising := c.sig.Clk && !c.prevClk
	c.prevClk = c.sig.Clk

	if !c.sig.RstN {
		if !c.inReset {
			// key and nonce are fixed-size, so the cipher cannot fail to build
			_ = c.reset()
			c.inReset = true
		}
		return
	}
	c.inReset = false

	if !rising {
		return
	}

	if c.sig.Busy {
		if c.cfg.Fault == FaultStuckBusy {
			return
		}
		c.countdown--
		if c.countdown > 0 {
			return
		}
		c.sig.DataOut = c.transform(c.latched)
		c.sig.Busy = false
		c.processed++
		return
	}

	if c.sig.ReqValid {
		c.latched = c.sig.DataIn & c.cfg.Width.Mask()
		c.countdown = c.cfg.Latency
		c.sig.Busy = true
	}
}

func (c *Core) reset() error {
	stream, err := chacha20.NewUnauthenticatedCipher(c.key[:], c.nonce[:])
	if err != nil {
		return fmt.Errorf("streamcore: keystream: %w", err)
	}
	c.stream = stream
	c.sig.Busy = false
	c.sig.DataOut = 0
	c.latched = 0
	c.countdown = 0
	c.processed = 0
	return nil
}

// transform XORs one unit with the next Width/8 keystream bytes.
func (c *Core) transform(u tb.Unit) tb.Unit {
	var buf [4]byte
	n := c.cfg.Width.Bytes()
	binary.LittleEndian.PutUint32(buf[:], uint32(u))
	c.stream.XORKeyStream(buf[:n], buf[:n])
	out := tb.Unit(binary.LittleEndian.Uint32(buf[:])) & c.cfg.Width.Mask()
	if c.cfg.Fault == FaultStuckBit {
		out |= 1
	}
	return out
}

// Keystream returns the first n keystream bytes of a freshly reset core.
// Tests use it to predict ciphertext.
func (c *Core) Keystream(n int) []byte {
	ks := make([]byte, n)
	stream, err := chacha20.NewUnauthenticatedCipher(c.key[:], c.nonce[:])
	if err != nil {
		return nil
	}
	stream.XORKeyStream(ks, ks)
	return ks
}
