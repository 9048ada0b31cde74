// Package runner owns the refresh timer of a display.
//
// The driver never schedules itself; Runner is the caller that ticks it and
// the single goroutine allowed to touch it, so text updates from other
// goroutines arrive through a channel and are applied between refreshes.
package runner

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Display is the part of shiftseg.Dev the runner needs.
type Display interface {
	SetText(s string)
	Refresh() error
	RefreshWithDelay(d time.Duration) error
	Halt() error
}

// Config controls the refresh loop.
type Config struct {
	// Interval between two Refresh calls.
	Interval time.Duration
	// Delay between shifting and latching; zero uses Refresh.
	Delay time.Duration
	// ReportEvery limits how often repeated failures are logged.
	ReportEvery time.Duration
}

// Stats counts refresh outcomes.
type Stats struct {
	Frames   uint64
	Failures uint64
	Updates  uint64
}

// Runner calls Refresh on a ticker.
type Runner struct {
	dev Display
	cfg Config
	log zerolog.Logger

	stats Stats

	// consecutive failures since the last success, and the last report
	failing    uint64
	lastReport time.Time
}

// DefaultInterval is used when Config.Interval is not positive.
const DefaultInterval = time.Millisecond

// New creates a Runner. A zero Interval defaults to DefaultInterval and a
// zero ReportEvery to one second.
func New(dev Display, cfg Config, log zerolog.Logger) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ReportEvery <= 0 {
		cfg.ReportEvery = time.Second
	}
	return &Runner{dev: dev, cfg: cfg, log: log}
}

// Run refreshes the display until ctx is done, applying texts received on
// texts in between. texts may be nil. The display is halted on return.
func (r *Runner) Run(ctx context.Context, texts <-chan string) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", r.cfg.Interval).Msg("refresh started")
	defer func() {
		if err := r.dev.Halt(); err != nil {
			r.log.Warn().Err(err).Msg("halt display")
		}
		r.log.Info().
			Uint64("frames", r.stats.Frames).
			Uint64("failures", r.stats.Failures).
			Msg("refresh stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-texts:
			if !ok {
				texts = nil
				continue
			}
			r.dev.SetText(s)
			r.stats.Updates++
			r.log.Debug().Str("text", s).Msg("text updated")
		case <-ticker.C:
			r.step()
		}
	}
}

// step performs one refresh and records its outcome.
func (r *Runner) step() {
	var err error
	if r.cfg.Delay > 0 {
		err = r.dev.RefreshWithDelay(r.cfg.Delay)
	} else {
		err = r.dev.Refresh()
	}
	if err == nil {
		r.stats.Frames++
		if r.failing > 0 {
			r.log.Info().Uint64("failed", r.failing).Msg("refresh recovered")
			r.failing = 0
		}
		return
	}

	r.stats.Failures++
	r.failing++
	now := time.Now()
	if r.failing == 1 || now.Sub(r.lastReport) >= r.cfg.ReportEvery {
		r.log.Error().Err(err).Uint64("consecutive", r.failing).Msg("refresh failed")
		r.lastReport = now
	}
}

// Stats returns the counters. It must not be called while Run is active.
func (r *Runner) Stats() Stats {
	return r.stats
}
