//go:build tinygo

package shiftseg

import (
	"machine"

	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"
)

// pinLatch adapts a TinyGo pin to Latch.
type pinLatch machine.Pin

func (p pinLatch) Out(l gpio.Level) error {
	machine.Pin(p).Set(bool(l))
	return nil
}

// NewTinyGo creates a new display on a TinyGo SPI bus.
//
// bus must already be configured (frequency, mode, pins). latch is configured
// as an output by NewTinyGo. opts.Hz and opts.Mode are ignored.
func NewTinyGo(bus drivers.SPI, latch machine.Pin, opts *Opts) (*Dev, error) {
	latch.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return New(bus, pinLatch(latch), opts)
}
