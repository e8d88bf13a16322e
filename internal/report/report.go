// Package report renders the console report of a round-trip run: the
// message, the per-unit handshake trace of both phases, the phase results
// and the pass/fail summary.
package report

import (
	"fmt"
	"io"
	"strings"

	"chachatb/internal/common"
	"chachatb/internal/tb"
	"chachatb/internal/verify"
)

// Printer renders one run. It is also the handshake traffic monitor for
// that run.
type Printer struct {
	ItemPrinter
	width tb.Width
}

// NewPrinter creates a report printer for units of the given width.
func NewPrinter(writer io.Writer, width tb.Width) *Printer {
	return &Printer{
		ItemPrinter: *NewItemPrinter(writer),
		width:       width,
	}
}

// PrintHeader writes the run banner and the message under test.
func (p *Printer) PrintHeader(runID, name string, message []byte) {
	p.ItemPrintLine("=== ChaCha20 Round-Trip Test ===\n")
	if runID != "" {
		p.ItemPrintf("Run ID: %s\n", runID)
	}
	if name != "" {
		p.ItemPrintf("Vector: %s\n", name)
	}
	p.ItemPrintf("Transfer width: %d bits\n", p.width)
	p.ItemPrintf("Plaintext: %q\n", string(message))
	p.ItemPrintf("Hex: %s\n", HexString(message))
}

// PhaseStart implements the handshake monitor.
func (p *Printer) PhaseStart(phase tb.Phase, units int) {
	p.ItemPrintf("\n--- %s (%d units) ---\n", strings.ToUpper(phase.String()), units)
}

// UnitSent implements the handshake monitor.
func (p *Printer) UnitSent(phase tb.Phase, idx int, unit tb.Unit) {
	if p.TraceMuted() {
		return
	}
	p.ItemPrintf("Sending unit %d for %s: %s\n", idx, phase, p.formatUnit(unit))
}

// UnitReceived implements the handshake monitor.
func (p *Printer) UnitReceived(phase tb.Phase, idx int, unit tb.Unit) {
	if p.TraceMuted() {
		return
	}
	p.ItemPrintf("Received %s unit %d: %s\n", pastTense(phase), idx, p.formatUnit(unit))
}

// PhaseEnd implements the handshake monitor.
func (p *Printer) PhaseEnd(phase tb.Phase, now tb.SimTime, err *common.Error) {
	if err != nil {
		p.ItemPrintf("ERROR: %s phase did not complete by SimTime=%d\n", phase, now)
	}
}

// PrintOutcome writes the results sections and the summary.
func (p *Printer) PrintOutcome(out *verify.Outcome) {
	if out.Cipher != nil {
		p.ItemPrintLine("\n=== Encryption Results ===\n")
		p.ItemPrintf("Plaintext (%d bytes): %s\n", len(out.Message), HexString(out.Message))
		p.ItemPrintf("Ciphertext (%d bytes): %s\n", len(out.Ciphertext), HexString(out.Ciphertext))
	}

	switch out.Status {
	case verify.StatusInvalid:
		p.ItemPrintf("ERROR: %v\n", out.Err)
	case verify.StatusLengthMismatch:
		p.ItemPrintf("ERROR: Ciphertext size doesn't match plaintext size! (%d units, expected %d)\n", len(out.Cipher), len(out.Input))
	case verify.StatusTimeout:
		p.ItemPrintf("ERROR: Timeout in %s phase: %v\n", out.Err.Phase, out.Err)
	}

	if out.Decrypted != nil {
		p.ItemPrintLine("\n=== Decryption Results ===\n")
		p.ItemPrintf("Ciphertext (%d bytes): %s\n", len(out.Ciphertext), SpacedHexString(out.Ciphertext))
		p.ItemPrintf("Decrypted (%d bytes): %s\n", len(out.Decrypted), SpacedHexString(out.Decrypted))
		p.ItemPrintf("Decrypted text: %q\n", string(out.Decrypted))
	}

	for _, m := range out.Mismatches {
		if m.Missing {
			p.ItemPrintf("ERROR at byte %d: Expected 0x%02x ('%c'), Got nothing\n", m.Index, m.Expected, printable(m.Expected))
			continue
		}
		p.ItemPrintf("ERROR at byte %d: Expected 0x%02x ('%c'), Got 0x%02x ('%c')\n",
			m.Index, m.Expected, printable(m.Expected), m.Actual, printable(m.Actual))
	}

	switch out.Status {
	case verify.StatusPass:
		p.ItemPrintLine("\nSUCCESS: All bytes correctly decrypted!\n")
	case verify.StatusContentMismatch:
		p.ItemPrintf("\nERROR: Decryption failed! %d mismatching bytes\n", len(out.Mismatches))
	default:
		p.ItemPrintf("\nERROR: Run aborted (%s)\n", out.Status)
	}
	p.ItemPrintf("RESULT: %s (SimTime=%d)\n", out.Status, out.EndTime)
}

func (p *Printer) formatUnit(u tb.Unit) string {
	if p.width == tb.Width8 {
		return fmt.Sprintf("0x%02x ('%c')", byte(u), printable(byte(u)))
	}
	return fmt.Sprintf("0x%0*x", p.width.Bytes()*2, uint32(u))
}

func pastTense(phase tb.Phase) string {
	switch phase {
	case tb.PhaseEncrypt:
		return "encrypted"
	case tb.PhaseDecrypt:
		return "decrypted"
	default:
		return "output"
	}
}

// HexString renders b as contiguous lower-case hex.
func HexString(b []byte) string {
	return fmt.Sprintf("%x", b)
}

// SpacedHexString renders b as space separated hex bytes.
func SpacedHexString(b []byte) string {
	return fmt.Sprintf("% x", b)
}

func printable(b byte) rune {
	if b >= 0x20 && b < 0x7F {
		return rune(b)
	}
	return '.'
}
