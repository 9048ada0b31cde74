// Package shiftseg drives a 4-digit seven-segment display wired to two
// cascaded shift registers (74HC595 or similar).
//
// Only one digit is lit at a time. Each call to Refresh shifts out the frame
// for the next digit and latches it; calling Refresh every millisecond or so
// makes all four digits appear lit at once.
//
// See the examples for how to use this package.
package shiftseg

import (
	"errors"
	"fmt"
	"time"

	"github.com/flavioheleno/shiftseg/segment"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Digits is the number of digits on the board.
const Digits = 4

// Transport shifts bytes into the register chain.
// periph.io conn.Conn and TinyGo drivers.SPI both satisfy it.
type Transport interface {
	Tx(w, r []byte) error
}

// Latch drives the registers' storage clock (RCLK / ST_CP).
// periph.io gpio.PinOut satisfies it.
type Latch interface {
	Out(l gpio.Level) error
}

// Opts is the configuration for the display.
type Opts struct {
	// Wiring of the board (default: DefaultWiring).
	Wiring *Wiring
	// Font used by SetText and friends (default: segment.Default).
	Font segment.Font

	// SPI settings, only used by NewSPI.
	Hz   physic.Frequency // Clock frequency (default: 4MHz)
	Mode spi.Mode         // Clock polarity and phase (default: Mode0)
}

// Dev is the device handle for the display.
//
// Dev is not safe for concurrent use. SetText and Refresh must be called
// from the same goroutine or be otherwise serialized.
type Dev struct {
	// Communication
	c     Transport
	latch Latch

	wiring Wiring
	font   segment.Font

	// Current content, one pattern per digit
	buffer [Digits]segment.Pattern
	// Next digit to refresh
	cursor int
}

// NewSPI creates a new display connected via SPI.
//
// The SPI port is configured for opts.Hz (default 4MHz), opts.Mode (default
// Mode0), 8-bit transfers. MOSI goes to the data input (DS) and SCLK to the
// shift clock (SH_CP) of the first register. latch must be an output wired
// to the storage clock of both registers.
//
// opts can be nil to use defaults.
func NewSPI(p spi.Port, latch gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	hz := opts.Hz
	if hz == 0 {
		hz = 4 * physic.MegaHertz
	}
	c, err := p.Connect(hz, opts.Mode, 8)
	if err != nil {
		return nil, fmt.Errorf("shiftseg: %w", err)
	}
	return New(c, latch, opts)
}

// New creates a new display on an already configured transport.
//
// opts can be nil to use defaults. The display starts blank with the cursor
// on digit 0; nothing is sent until the first Refresh.
func New(t Transport, latch Latch, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("shiftseg: transport is required")
	}
	if latch == nil {
		return nil, errors.New("shiftseg: latch pin is required")
	}
	if opts == nil {
		opts = &Opts{}
	}

	w := DefaultWiring
	if opts.Wiring != nil {
		w = *opts.Wiring
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	font := opts.Font
	if font == nil {
		font = segment.Default
	}

	return &Dev{
		c:      t,
		latch:  latch,
		wiring: w,
		font:   font,
	}, nil
}

// SetText replaces the display content with s.
//
// Each character takes one digit, left to right. A '.' lights the decimal
// point of the previous digit and never takes a digit of its own; a leading
// '.' is dropped. Characters past the fourth digit are dropped, unused
// digits are blanked and characters missing from the font show as blank.
//
// Nothing is sent to the display; the new content shows up on the following
// Refresh calls.
func (d *Dev) SetText(s string) {
	var buf [Digits]segment.Pattern
	n := 0
	for _, r := range s {
		if r == '.' {
			if n > 0 {
				buf[n-1] = buf[n-1].WithDot()
			}
			continue
		}
		if n == Digits {
			break
		}
		buf[n] = d.font.Encode(r)
		n++
	}
	d.buffer = buf
}

// Write implements io.Writer. p is interpreted as text, see SetText.
// It never fails.
func (d *Dev) Write(p []byte) (int, error) {
	d.SetText(string(p))
	return len(p), nil
}

// WriteChars shows one character per digit. Dots are not merged.
func (d *Dev) WriteChars(c [Digits]rune) {
	for i, r := range c {
		d.buffer[i] = d.font.Encode(r)
	}
}

// WriteNumber shows n right aligned with leading zeros.
// n is clamped to the range -999 to 9999.
func (d *Dev) WriteNumber(n int) {
	switch {
	case n > 9999:
		n = 9999
	case n < -999:
		n = -999
	}
	d.SetText(fmt.Sprintf("%04d", n))
}

// SetPatterns sets the raw segment patterns of every digit.
func (d *Dev) SetPatterns(p [Digits]segment.Pattern) {
	d.buffer = p
}

// Patterns returns a copy of the current content.
func (d *Dev) Patterns() [Digits]segment.Pattern {
	return d.buffer
}

// Digit returns the index of the digit the next Refresh will light.
func (d *Dev) Digit() int {
	return d.cursor
}

// Refresh lights the next digit.
//
// It must be called periodically, typically every millisecond, otherwise the
// display flickers or only one digit stays lit. The cursor moves on even
// when the transfer fails, so a failed call only leaves that one digit
// stale until its next turn.
func (d *Dev) Refresh() error {
	return d.refresh(0)
}

// RefreshWithDelay is like Refresh but waits delay between shifting the frame
// in and latching it, for boards whose registers need settling time.
func (d *Dev) RefreshWithDelay(delay time.Duration) error {
	return d.refresh(delay)
}

func (d *Dev) refresh(delay time.Duration) error {
	digit := d.cursor
	frame := d.wiring.Frame(digit, d.buffer[digit])
	d.cursor = (d.cursor + 1) % Digits

	if err := d.shift(frame, delay); err != nil {
		return fmt.Errorf("shiftseg: digit %d: %w", digit, err)
	}
	return nil
}

// shift sends one frame: the latch is held at its idle level while both bytes
// are shifted in, then moved to its commit level to update the outputs.
func (d *Dev) shift(frame [2]byte, delay time.Duration) error {
	idle, commit := d.wiring.levels()
	if err := d.latch.Out(idle); err != nil {
		return fmt.Errorf("latch: %w", err)
	}
	if err := d.c.Tx(frame[:], nil); err != nil {
		return fmt.Errorf("shift: %w", err)
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err := d.latch.Out(commit); err != nil {
		return fmt.Errorf("latch: %w", err)
	}
	return nil
}

// Halt turns every digit off.
// The content is kept; the next Refresh resumes multiplexing.
func (d *Dev) Halt() error {
	frame := d.wiring.frame(0, d.wiring.SegmentByte(segment.Blank))
	if err := d.shift(frame, 0); err != nil {
		return fmt.Errorf("shiftseg: halt: %w", err)
	}
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("shiftseg.Dev{%d digits}", Digits)
}
