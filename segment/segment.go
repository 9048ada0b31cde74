// Package segment provides the seven-segment glyph format used by the shiftseg driver.
//
// Patterns are stored in logical order, one bit per segment, with the decimal
// point in the high bit. Unknown characters encode to Blank.
package segment

import "strings"

// Pattern is the set of lit segments of one digit.
// Bits 0-6 are segments A-G, bit 7 is the decimal point.
type Pattern uint8

// Segment bits.
const (
	SegA  Pattern = 1 << 0
	SegB  Pattern = 1 << 1
	SegC  Pattern = 1 << 2
	SegD  Pattern = 1 << 3
	SegE  Pattern = 1 << 4
	SegF  Pattern = 1 << 5
	SegG  Pattern = 1 << 6
	SegDP Pattern = 1 << 7

	// Blank has every segment off.
	Blank Pattern = 0
)

// names is indexed by bit position.
const names = "ABCDEFG."

// WithDot returns p with the decimal point lit.
func (p Pattern) WithDot() Pattern {
	return p | SegDP
}

// HasDot reports whether the decimal point is lit.
func (p Pattern) HasDot() bool {
	return p&SegDP != 0
}

// Segments returns p without the decimal point.
func (p Pattern) Segments() Pattern {
	return p &^ SegDP
}

// String lists the lit segments, e.g. "BC" for '1' or "ABDEG." for "2.".
// A blank pattern is "-".
func (p Pattern) String() string {
	if p == Blank {
		return "-"
	}
	var b strings.Builder
	for i := 0; i < 8; i++ {
		if p&(1<<i) != 0 {
			b.WriteByte(names[i])
		}
	}
	return b.String()
}

// Font maps a rune to its segment pattern.
type Font map[rune]Pattern

// Encode returns the pattern for r.
// Lowercase ASCII letters fall back to their uppercase entry when the font
// has no lowercase one. Runes the font does not know encode to Blank.
func (f Font) Encode(r rune) Pattern {
	if p, ok := f[r]; ok {
		return p
	}
	if r >= 'a' && r <= 'z' {
		if p, ok := f[r-'a'+'A']; ok {
			return p
		}
	}
	return Blank
}

// Encode returns the pattern for r in the Default font.
func Encode(r rune) Pattern {
	return Default.Encode(r)
}

// Default is the built-in font. Letters are drawn the way they fit on seven
// segments, so some come out lowercase (b, d, t) and a few share a
// shape (O and 0, S and 5, U and V, H and X).
var Default = Font{
	'0': SegA | SegB | SegC | SegD | SegE | SegF,
	'1': SegB | SegC,
	'2': SegA | SegB | SegD | SegE | SegG,
	'3': SegA | SegB | SegC | SegD | SegG,
	'4': SegB | SegC | SegF | SegG,
	'5': SegA | SegC | SegD | SegF | SegG,
	'6': SegA | SegC | SegD | SegE | SegF | SegG,
	'7': SegA | SegB | SegC,
	'8': SegA | SegB | SegC | SegD | SegE | SegF | SegG,
	'9': SegA | SegB | SegC | SegF | SegG,

	'A': SegA | SegB | SegC | SegE | SegF | SegG,
	'B': SegC | SegD | SegE | SegF | SegG,
	'C': SegA | SegD | SegE | SegF,
	'D': SegB | SegC | SegD | SegE | SegG,
	'E': SegA | SegD | SegE | SegF | SegG,
	'F': SegA | SegE | SegF | SegG,
	'G': SegA | SegC | SegD | SegE | SegF,
	'H': SegB | SegC | SegE | SegF | SegG,
	'I': SegE | SegF,
	'J': SegB | SegC | SegD | SegE,
	'K': SegA | SegC | SegE | SegF | SegG,
	'L': SegD | SegE | SegF,
	'M': SegA | SegC | SegE,
	'N': SegA | SegB | SegC | SegE | SegF,
	'O': SegA | SegB | SegC | SegD | SegE | SegF,
	'P': SegA | SegB | SegE | SegF | SegG,
	'Q': SegA | SegB | SegD | SegF | SegG,
	'R': SegA | SegB | SegE | SegF,
	'S': SegA | SegC | SegD | SegF | SegG,
	'T': SegD | SegE | SegF | SegG,
	'U': SegB | SegC | SegD | SegE | SegF,
	'V': SegB | SegC | SegD | SegE | SegF,
	'W': SegB | SegD | SegF,
	'X': SegB | SegC | SegE | SegF | SegG,
	'Y': SegB | SegC | SegD | SegF | SegG,
	'Z': SegA | SegB | SegD | SegE | SegG,

	' ': Blank,
	'-': SegG,
	'_': SegD,
}
