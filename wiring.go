package shiftseg

import (
	"errors"
	"fmt"

	"github.com/flavioheleno/shiftseg/segment"
	"periph.io/x/conn/v3/gpio"
)

// FrameOrder is the order in which the two bytes of a frame are shifted out.
// The first byte shifted ends up in the register furthest down the cascade.
type FrameOrder uint8

const (
	// SegmentsFirst shifts the segment byte, then the digit-select byte.
	SegmentsFirst FrameOrder = iota
	// SelectFirst shifts the digit-select byte, then the segment byte.
	SelectFirst
)

func (o FrameOrder) String() string {
	switch o {
	case SegmentsFirst:
		return "SegmentsFirst"
	case SelectFirst:
		return "SelectFirst"
	default:
		return fmt.Sprintf("FrameOrder(%d)", uint8(o))
	}
}

// Wiring describes how a board connects the two registers to the display.
// These are fixed facts of the PCB; a different board only needs a
// different Wiring.
type Wiring struct {
	// Segments[i] is the output bit of the segment register wired to logical
	// segment i (A, B, C, D, E, F, G, DP). Must be a permutation of 0-7.
	Segments [8]uint8
	// ActiveLow is set when a segment lights with its line low (common anode).
	ActiveLow bool
	// Select holds the digit-select register value for each digit position.
	Select [Digits]byte
	// Order is the shift order of the frame bytes.
	Order FrameOrder
	// Latch is the edge of the latch line that commits shifted data.
	Latch gpio.Edge
}

// DefaultWiring is the common-anode board with the segment register at the
// end of the chain and a one-hot, most significant first, digit select.
var DefaultWiring = Wiring{
	Segments:  [8]uint8{0, 1, 2, 3, 4, 5, 6, 7},
	ActiveLow: true,
	Select:    [Digits]byte{0x08, 0x04, 0x02, 0x01},
	Order:     SegmentsFirst,
	Latch:     gpio.RisingEdge,
}

// Validate reports whether w describes a usable board.
func (w *Wiring) Validate() error {
	var seen uint16
	for i, bit := range w.Segments {
		if bit > 7 {
			return fmt.Errorf("shiftseg: segment %d mapped to bit %d, must be 0-7", i, bit)
		}
		if seen&(1<<bit) != 0 {
			return fmt.Errorf("shiftseg: bit %d mapped to more than one segment", bit)
		}
		seen |= 1 << bit
	}
	for i := 0; i < Digits; i++ {
		for j := i + 1; j < Digits; j++ {
			if w.Select[i] == w.Select[j] {
				return fmt.Errorf("shiftseg: digits %d and %d share select value 0x%02X", i, j, w.Select[i])
			}
		}
	}
	if w.Order != SegmentsFirst && w.Order != SelectFirst {
		return fmt.Errorf("shiftseg: invalid frame order %d", uint8(w.Order))
	}
	if w.Latch != gpio.RisingEdge && w.Latch != gpio.FallingEdge {
		return errors.New("shiftseg: latch edge must be rising or falling")
	}
	return nil
}

// SegmentByte converts a logical pattern into the value of the segment register.
func (w *Wiring) SegmentByte(p segment.Pattern) byte {
	var b byte
	for i, bit := range w.Segments {
		if p&(1<<i) != 0 {
			b |= 1 << bit
		}
	}
	if w.ActiveLow {
		b = ^b
	}
	return b
}

// Frame returns the two bytes to shift out to show p on the given digit.
func (w *Wiring) Frame(digit int, p segment.Pattern) [2]byte {
	return w.frame(w.Select[digit], w.SegmentByte(p))
}

func (w *Wiring) frame(sel, seg byte) [2]byte {
	if w.Order == SelectFirst {
		return [2]byte{sel, seg}
	}
	return [2]byte{seg, sel}
}

// levels returns the latch level held while shifting and the level that
// commits the registers.
func (w *Wiring) levels() (idle, commit gpio.Level) {
	if w.Latch == gpio.FallingEdge {
		return gpio.High, gpio.Low
	}
	return gpio.Low, gpio.High
}
