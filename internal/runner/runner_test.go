package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flavioheleno/shiftseg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

// fakeDisplay counts calls and can fail refreshes.
type fakeDisplay struct {
	mu      sync.Mutex
	texts   []string
	refresh int
	delayed int
	halted  int
	fail    bool
}

func (f *fakeDisplay) SetText(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, s)
}

func (f *fakeDisplay) Refresh() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh++
	if f.fail {
		return errors.New("bus error")
	}
	return nil
}

func (f *fakeDisplay) RefreshWithDelay(time.Duration) error {
	f.mu.Lock()
	f.delayed++
	f.mu.Unlock()
	return f.Refresh()
}

func (f *fakeDisplay) Halt() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.halted++
	return nil
}

func (f *fakeDisplay) refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func TestNewDefaultsInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		dev := &fakeDisplay{}
		r := New(dev, Config{Interval: interval}, zerolog.Nop())
		assert.Equal(t, DefaultInterval, r.cfg.Interval)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- r.Run(ctx, nil) }()
		require.Eventually(t, func() bool { return dev.refreshes() > 0 }, time.Second, time.Millisecond)
		cancel()
		require.NoError(t, <-done)
	}
}

func TestRunRefreshesUntilCancelled(t *testing.T) {
	dev := &fakeDisplay{}
	r := New(dev, Config{Interval: time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, nil) }()

	require.Eventually(t, func() bool { return dev.refreshes() >= 8 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 1, dev.halted)
	assert.Equal(t, uint64(dev.refresh), r.Stats().Frames)
	assert.Zero(t, r.Stats().Failures)
	assert.Zero(t, dev.delayed)
}

func TestRunAppliesTexts(t *testing.T) {
	dev := &fakeDisplay{}
	r := New(dev, Config{Interval: time.Hour}, zerolog.Nop())

	texts := make(chan string)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, texts) }()

	texts <- "12.34"
	texts <- "HELO"
	close(texts)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"12.34", "HELO"}, dev.texts)
	assert.Equal(t, uint64(2), r.Stats().Updates)
}

func TestRunUsesDelay(t *testing.T) {
	dev := &fakeDisplay{}
	r := New(dev, Config{Interval: time.Millisecond, Delay: time.Microsecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, nil) }()

	require.Eventually(t, func() bool { return dev.refreshes() >= 2 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, dev.refresh, dev.delayed)
}

func TestStepFailuresAreRateLimited(t *testing.T) {
	var buf bytes.Buffer
	dev := &fakeDisplay{fail: true}
	r := New(dev, Config{Interval: time.Millisecond, ReportEvery: time.Hour}, zerolog.New(&buf))

	for i := 0; i < 10; i++ {
		r.step()
	}
	assert.Equal(t, uint64(10), r.Stats().Failures)
	assert.Zero(t, r.Stats().Frames)
	assert.Equal(t, 1, strings.Count(buf.String(), "refresh failed"))

	dev.fail = false
	r.step()
	assert.Equal(t, uint64(1), r.Stats().Frames)
	assert.Contains(t, buf.String(), "refresh recovered")

	dev.fail = true
	r.step()
	assert.Equal(t, 2, strings.Count(buf.String(), "refresh failed"), "a new failure run is reported")
}

// wire records what reaches the shift registers.
type wire struct {
	frames [][2]byte
}

func (w *wire) Tx(b, _ []byte) error {
	w.frames = append(w.frames, [2]byte{b[0], b[1]})
	return nil
}

func (w *wire) Out(gpio.Level) error { return nil }

func TestRunDrivesDevice(t *testing.T) {
	w := &wire{}
	dev, err := shiftseg.New(w, w, nil)
	require.NoError(t, err)
	r := New(dev, Config{Interval: time.Millisecond}, zerolog.Nop())

	texts := make(chan string, 1)
	texts <- "8"
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx, texts))

	require.NotEmpty(t, w.frames)
	last := w.frames[len(w.frames)-1]
	assert.Equal(t, [2]byte{0xFF, 0x00}, last, "display is halted on exit")

	var lit bool
	for _, f := range w.frames {
		if f == [2]byte{0x80, 0x08} {
			lit = true
		}
	}
	assert.True(t, lit, "digit 0 should show 8")
}
