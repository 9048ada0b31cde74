package cliconfig

import (
	"testing"
	"time"

	"github.com/flavioheleno/shiftseg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	w, err := cfg.Wiring()
	require.NoError(t, err)
	assert.Equal(t, shiftseg.DefaultWiring, w)
	assert.Equal(t, time.Millisecond, cfg.Interval)
	assert.Equal(t, 4*physic.MegaHertz, cfg.Hz)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{"no latch", func(c *Config) { c.LatchPin = "" }, "latch pin is required"},
		{"zero frequency", func(c *Config) { c.Hz = 0 }, "spi frequency must be positive"},
		{"bad mode", func(c *Config) { c.Mode = 4 }, "spi mode must be 0-3"},
		{"zero interval", func(c *Config) { c.Interval = 0 }, "refresh interval must be positive"},
		{"negative delay", func(c *Config) { c.LatchDelay = -time.Millisecond }, "latch delay must not be negative"},
		{"two sources", func(c *Config) { c.TextFile = "/tmp/x"; c.ClockLayout = "15.04" }, "only one of"},
		{"mqtt without topic", func(c *Config) { c.MQTTBroker = "localhost:1883" }, "mqtt-topic is required"},
		{"password without user", func(c *Config) { c.MQTTPassword = "secret" }, "mqtt-password requires"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"bad order", func(c *Config) { c.Order = "sideways" }, "unknown frame order"},
		{"bad edge", func(c *Config) { c.LatchEdge = "both" }, "unknown latch edge"},
		{"short select", func(c *Config) { c.Select = []int{1, 2} }, "select needs 4 values"},
		{"duplicate select", func(c *Config) { c.Select = []int{1, 1, 2, 4} }, "share select value"},
		{"segment out of range", func(c *Config) { c.Segments = []int{0, 1, 2, 3, 4, 5, 6, 9} }, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWiringOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Select = []int{0x01, 0x02, 0x04, 0x08}
	cfg.Segments = []int{7, 6, 5, 4, 3, 2, 1, 0}
	cfg.ActiveLow = false
	cfg.Order = "select-first"
	cfg.LatchEdge = "FALLING"

	w, err := cfg.Wiring()
	require.NoError(t, err)
	assert.Equal(t, [shiftseg.Digits]byte{0x01, 0x02, 0x04, 0x08}, w.Select)
	assert.Equal(t, [8]uint8{7, 6, 5, 4, 3, 2, 1, 0}, w.Segments)
	assert.False(t, w.ActiveLow)
	assert.Equal(t, shiftseg.SelectFirst, w.Order)
	assert.Equal(t, gpio.FallingEdge, w.Latch)
}

func TestConfigSetterFrequency(t *testing.T) {
	s := newConfigSetter(map[string]bool{"hz": true})
	var f physic.Frequency

	require.NoError(t, s.setFrequency("hz", "1MHz", &f))
	assert.Zero(t, f, "changed flag must win")

	s = newConfigSetter(nil)
	require.NoError(t, s.setFrequency("hz", "500kHz", &f))
	assert.Equal(t, 500*physic.KiloHertz, f)

	require.Error(t, s.setFrequency("hz", "fast", &f))
}

func TestConfigSetterInts(t *testing.T) {
	s := newConfigSetter(nil)
	var v []int

	require.NoError(t, s.setIntsFromString("select", "0x08, 4,0x2,1", &v))
	assert.Equal(t, []int{8, 4, 2, 1}, v)

	require.Error(t, s.setIntsFromString("select", "8,x", &v))
	assert.Equal(t, []int{8, 4, 2, 1}, v, "failed parse keeps the old value")
}

func TestLoggerWithLevel(t *testing.T) {
	assert.Equal(t, "debug", LoggerWithLevel("debug").GetLevel().String())
	assert.Equal(t, "info", LoggerWithLevel("nonsense").GetLevel().String())
	assert.Equal(t, "info", LoggerWithLevel("").GetLevel().String())
}
