// Package textsource produces display text for the runner.
//
// Every source has a Run(ctx, out) method that blocks until ctx is done and
// sends text on out whenever it changes.
package textsource

import (
	"bytes"
	"context"
)

// Source feeds text to a display.
type Source interface {
	Run(ctx context.Context, out chan<- string) error
}

// Text returns the first line of b with the line ending removed.
// Leading spaces are kept since they right align the text on the display.
func Text(b []byte) string {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimRight(b, " \t\r"))
}

// send delivers s unless ctx ends first.
func send(ctx context.Context, out chan<- string, s string) bool {
	select {
	case out <- s:
		return true
	case <-ctx.Done():
		return false
	}
}
