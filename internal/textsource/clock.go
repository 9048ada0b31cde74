package textsource

import (
	"context"
	"time"
)

// Clock shows the current time formatted with Layout, e.g. "15.04" to show
// hours and minutes with the decimal point as separator.
type Clock struct {
	Layout string
	// Every is the polling period (default 1s).
	Every time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run sends the time when it starts and whenever the formatted value changes.
func (c *Clock) Run(ctx context.Context, out chan<- string) error {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	every := c.Every
	if every <= 0 {
		every = time.Second
	}

	last := now().Format(c.Layout)
	if !send(ctx, out, last) {
		return nil
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s := now().Format(c.Layout)
			if s == last {
				continue
			}
			last = s
			if !send(ctx, out, s) {
				return nil
			}
		}
	}
}
