// Package segment provides the seven-segment glyph format used by the shiftseg driver.
//
// A Pattern is one byte describing which segments of a single digit are lit.
// The layout is logical and active-high; the driver maps it onto the board's
// physical segment lines when it builds a frame.
//
// Bit layout:
//
//	bit:      7   6   5   4   3   2   1   0
//	segment:  DP  G   F   E   D   C   B   A
//
//	     A
//	    ===
//	F ||   || B
//	    =G=
//	E ||   || C
//	    ===   . DP
//	     D
//
// This package provides:
//
// - Pattern: the segment bitmask for one digit, with the decimal point as bit 7
// - Font: a rune to Pattern lookup table
// - Default: the built-in font (digits, Latin letters, space, '-' and '_')
//
// Example usage:
//
//	p := segment.Encode('4')      // SegB | SegC | SegF | SegG
//	p = p.WithDot()               // "4."
//	fmt.Println(p.HasDot())       // true
//	fmt.Println(segment.Encode('~') == segment.Blank) // true
package segment
