// Package codec converts between message bytes and fixed-width transfer
// units. Bytes are grouped little-endian; the final unit is zero padded when
// the message does not fill it.
package codec

import (
	"fmt"

	"chachatb/internal/tb"
)

// Codec is the packing strategy for one transfer width.
type Codec interface {
	Width() tb.Width
	// Pack groups message bytes into units.
	Pack(message []byte) []tb.Unit
	// Unpack expands units to exactly len(units)*Width/8 bytes.
	Unpack(units []tb.Unit) []byte
}

// ForWidth returns the codec for w.
func ForWidth(w tb.Width) (Codec, error) {
	switch {
	case w == tb.Width8:
		return byteCodec{}, nil
	case w.Valid():
		return laneCodec{width: w}, nil
	}
	return nil, fmt.Errorf("codec: unsupported width %d", w)
}

// UnitCount returns ceil(n*8/w), the number of units for an n byte message.
func UnitCount(n int, w tb.Width) int {
	b := w.Bytes()
	if b == 0 {
		return 0
	}
	return (n + b - 1) / b
}

// PackMessageToUnits packs message into units of width bits.
func PackMessageToUnits(message []byte, width tb.Width) ([]tb.Unit, error) {
	c, err := ForWidth(width)
	if err != nil {
		return nil, err
	}
	return c.Pack(message), nil
}

// UnpackUnitsToBytes expands units of width bits back to bytes.
func UnpackUnitsToBytes(units []tb.Unit, width tb.Width) ([]byte, error) {
	c, err := ForWidth(width)
	if err != nil {
		return nil, err
	}
	return c.Unpack(units), nil
}

// TrimToLength returns the first n bytes of b. b is returned unchanged when
// it is not longer than n; a negative n trims to empty.
func TrimToLength(b []byte, n int) []byte {
	if n < 0 {
		n = 0
	}
	if n >= len(b) {
		return b
	}
	return b[:n]
}

// byteCodec is the identity mapping used at 8-bit width.
type byteCodec struct{}

func (byteCodec) Width() tb.Width { return tb.Width8 }

func (byteCodec) Pack(message []byte) []tb.Unit {
	units := make([]tb.Unit, len(message))
	for i, b := range message {
		units[i] = tb.Unit(b)
	}
	return units
}

func (byteCodec) Unpack(units []tb.Unit) []byte {
	out := make([]byte, len(units))
	for i, u := range units {
		out[i] = byte(u)
	}
	return out
}

// laneCodec packs width/8 bytes per unit, least significant byte first.
type laneCodec struct {
	width tb.Width
}

func (c laneCodec) Width() tb.Width { return c.width }

func (c laneCodec) Pack(message []byte) []tb.Unit {
	lanes := c.width.Bytes()
	units := make([]tb.Unit, UnitCount(len(message), c.width))
	for i, b := range message {
		units[i/lanes] |= tb.Unit(b) << (8 * (i % lanes))
	}
	return units
}

func (c laneCodec) Unpack(units []tb.Unit) []byte {
	lanes := c.width.Bytes()
	out := make([]byte, len(units)*lanes)
	for i, u := range units {
		for l := 0; l < lanes; l++ {
			out[i*lanes+l] = byte(u >> (8 * l))
		}
	}
	return out
}
