// Package shiftseg drives a 4-digit seven-segment display through two
// cascaded shift registers.
//
// Boards of this kind (74HC595 pairs behind a 4-digit common-anode display)
// only light one digit at a time. One register selects the digit, the other
// holds its segments. The driver keeps the text in memory and sends one
// digit per Refresh call; called often enough, persistence of vision makes
// all four digits appear lit together.
//
// # Hardware Connection
//
// The board needs three lines from the host:
//
//	Board Pin   → System Pin
//	GND         → GND
//	VCC         → 3.3V or 5V
//	DIO / DS    → SPI Data (MOSI)
//	SCLK / SH_CP → SPI Clock (SCLK)
//	RCLK / ST_CP → GPIO (any available pin), the latch
//
// Chip select is not used; the latch pin plays that role.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"time"
//
//		"github.com/flavioheleno/shiftseg"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		spiBus, _ := spireg.Open("")
//		latch := gpioreg.ByName("GPIO8")
//
//		dev, _ := shiftseg.NewSPI(spiBus, latch, nil)
//		defer dev.Halt()
//
//		dev.SetText("12.34")
//
//		t := time.NewTicker(time.Millisecond)
//		defer t.Stop()
//		for range t.C {
//			dev.Refresh()
//		}
//	}
//
// # Multiplexing
//
// Refresh lights exactly one digit and moves on to the next one, wrapping
// after the fourth. The driver never starts a goroutine or a timer; the
// caller decides how often Refresh runs. Around 1ms between calls (250Hz per
// digit) gives a steady display. Irregular calls show up as flicker or as
// digits of uneven brightness.
//
// A failed Refresh returns the transport error and leaves the display
// usable; the next call simply lights the next digit.
//
// # Text
//
// SetText accepts any string. Each character takes a digit, a '.' lights
// the decimal point of the digit before it, text past four digits is dropped
// and characters without a glyph show as blank:
//
//	dev.SetText("1.23")  // "1." "2" "3" " "
//	dev.SetText("HELLO") // "H" "E" "L" "L"
//	dev.WriteNumber(42)  // "0" "0" "4" "2"
//	fmt.Fprintf(dev, "%4.1f", 21.5)
//
// Glyphs come from package segment; Opts.Font replaces the table.
//
// # Wiring
//
// Boards differ in which register bit drives which segment, how digits are
// selected, which register comes first in the chain and which latch edge
// commits data. Those facts live in a Wiring value:
//
//	w := shiftseg.DefaultWiring
//	w.Order = shiftseg.SelectFirst
//	w.Select = [4]byte{0x01, 0x02, 0x04, 0x08}
//	dev, _ := shiftseg.NewSPI(spiBus, latch, &shiftseg.Opts{Wiring: &w})
//
// DefaultWiring matches the common-anode boards where the segment byte is
// shifted first and digit 0 (leftmost) is selected by 0x08.
//
// # TinyGo
//
// When built with TinyGo, NewTinyGo accepts a drivers.SPI bus and a
// machine.Pin for the latch.
//
// # Compatibility with periph.io
//
// Any periph.io conn.Conn works as a Transport and any gpio.PinOut as a
// Latch, including the conntest, spitest and gpiotest fakes.
package shiftseg
