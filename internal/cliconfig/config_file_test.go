package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

const sampleConfig = `
spi_port = "/dev/spidev0.0"
latch_pin = "GPIO25"
spi_hz = "2MHz"
spi_mode = 3
refresh_interval = "2ms"
latch_delay = "100us"
text = "HELO"
log_level = "debug"

[mqtt]
broker = "localhost:1883"
topic = "display/text"

[wiring]
select = [0x01, 0x02, 0x04, 0x08]
active_low = false
order = "select-first"
latch_edge = "falling"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileConfig(t *testing.T) {
	fc, err := LoadFileConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "/dev/spidev0.0", fc.SPIPort)
	assert.Equal(t, "GPIO25", fc.LatchPin)
	assert.Equal(t, "2MHz", fc.Hz)
	require.NotNil(t, fc.Mode)
	assert.Equal(t, 3, *fc.Mode)
	assert.Equal(t, "localhost:1883", fc.MQTT.Broker)
	assert.Equal(t, []int{1, 2, 4, 8}, fc.Wiring.Select)
	require.NotNil(t, fc.Wiring.ActiveLow)
	assert.False(t, *fc.Wiring.ActiveLow)
}

func TestLoadFileConfigErrors(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadFileConfig(writeConfig(t, "spi_port = [unterminated"))
	assert.Error(t, err)
}

func TestApplyFileConfig(t *testing.T) {
	fc, err := LoadFileConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg := DefaultConfig()
	require.NoError(t, ApplyFileConfig(&cfg, fc, map[string]bool{}))

	assert.Equal(t, "/dev/spidev0.0", cfg.SPIPort)
	assert.Equal(t, "GPIO25", cfg.LatchPin)
	assert.Equal(t, 2*physic.MegaHertz, cfg.Hz)
	assert.Equal(t, 3, cfg.Mode)
	assert.Equal(t, 2*time.Millisecond, cfg.Interval)
	assert.Equal(t, 100*time.Microsecond, cfg.LatchDelay)
	assert.Equal(t, "HELO", cfg.Text)
	assert.Equal(t, "display/text", cfg.MQTTTopic)
	assert.Equal(t, "shiftseg", cfg.MQTTClientID, "unset keys keep defaults")
	assert.Equal(t, []int{1, 2, 4, 8}, cfg.Select)
	assert.False(t, cfg.ActiveLow)
	assert.Equal(t, "select-first", cfg.Order)
	assert.Equal(t, "falling", cfg.LatchEdge)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestApplyFileConfigRespectsFlags(t *testing.T) {
	fc, err := LoadFileConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.LatchPin = "GPIO8"
	cfg.Text = "FLAG"
	changed := map[string]bool{"latch": true, "text": true, "active-low": true}
	require.NoError(t, ApplyFileConfig(&cfg, fc, changed))

	assert.Equal(t, "GPIO8", cfg.LatchPin)
	assert.Equal(t, "FLAG", cfg.Text)
	assert.True(t, cfg.ActiveLow)
	assert.Equal(t, "/dev/spidev0.0", cfg.SPIPort)
}

func TestApplyFileConfigBadDuration(t *testing.T) {
	cfg := DefaultConfig()
	err := ApplyFileConfig(&cfg, FileConfig{Interval: "soon"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse interval")
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("SHIFTSEG_LATCH_PIN", "GPIO17")
	t.Setenv("SHIFTSEG_SPI_HZ", "1MHz")
	t.Setenv("SHIFTSEG_SPI_MODE", "2")
	t.Setenv("SHIFTSEG_REFRESH_INTERVAL", "500us")
	t.Setenv("SHIFTSEG_SELECT", "0x01,0x02,0x04,0x08")
	t.Setenv("SHIFTSEG_ACTIVE_LOW", "0")
	t.Setenv("SHIFTSEG_TEXT", "ENV")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnvConfig(&cfg, map[string]bool{"text": true}))

	assert.Equal(t, "GPIO17", cfg.LatchPin)
	assert.Equal(t, physic.MegaHertz, cfg.Hz)
	assert.Equal(t, 2, cfg.Mode)
	assert.Equal(t, 500*time.Microsecond, cfg.Interval)
	assert.Equal(t, []int{1, 2, 4, 8}, cfg.Select)
	assert.False(t, cfg.ActiveLow)
	assert.Empty(t, cfg.Text, "changed flag must win")
}

func TestApplyEnvConfigErrors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SHIFTSEG_SPI_HZ", "quick"},
		{"SHIFTSEG_SPI_MODE", "zero"},
		{"SHIFTSEG_REFRESH_INTERVAL", "1 ms"},
		{"SHIFTSEG_SEGMENTS", "a,b"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg := DefaultConfig()
			assert.Error(t, ApplyEnvConfig(&cfg, nil))
		})
	}
}

func TestFileExists(t *testing.T) {
	path := writeConfig(t, "")
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(path+".missing"))
}
