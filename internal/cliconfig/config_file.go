package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations and frequencies
// to make TOML friendly.
type FileConfig struct {
	SPIPort  string `toml:"spi_port"`
	LatchPin string `toml:"latch_pin"`
	Hz       string `toml:"spi_hz"`
	Mode     *int   `toml:"spi_mode"`

	Interval   string `toml:"refresh_interval"`
	LatchDelay string `toml:"latch_delay"`

	Text        string `toml:"text"`
	TextFile    string `toml:"text_file"`
	ClockLayout string `toml:"clock"`

	MQTT struct {
		Broker   string `toml:"broker"`
		Topic    string `toml:"topic"`
		ClientID string `toml:"client_id"`
		Username string `toml:"username"`
		Password string `toml:"password"`
	} `toml:"mqtt"`

	Wiring struct {
		Select    []int  `toml:"select"`
		Segments  []int  `toml:"segments"`
		ActiveLow *bool  `toml:"active_low"`
		Order     string `toml:"order"`
		LatchEdge string `toml:"latch_edge"`
	} `toml:"wiring"`

	LogLevel string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.shiftseg/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".shiftseg", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("spi", fc.SPIPort, &cfg.SPIPort)
	s.setString("latch", fc.LatchPin, &cfg.LatchPin)
	s.setInt("mode", fc.Mode, &cfg.Mode)
	if err := s.setFrequency("hz", fc.Hz, &cfg.Hz); err != nil {
		return err
	}

	if err := s.setDuration("interval", fc.Interval, &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("latch-delay", fc.LatchDelay, &cfg.LatchDelay); err != nil {
		return err
	}

	s.setString("text", fc.Text, &cfg.Text)
	s.setString("text-file", fc.TextFile, &cfg.TextFile)
	s.setString("clock", fc.ClockLayout, &cfg.ClockLayout)

	s.setString("mqtt-broker", fc.MQTT.Broker, &cfg.MQTTBroker)
	s.setString("mqtt-topic", fc.MQTT.Topic, &cfg.MQTTTopic)
	s.setString("mqtt-client-id", fc.MQTT.ClientID, &cfg.MQTTClientID)
	s.setString("mqtt-username", fc.MQTT.Username, &cfg.MQTTUsername)
	s.setString("mqtt-password", fc.MQTT.Password, &cfg.MQTTPassword)

	s.setInts("select", fc.Wiring.Select, &cfg.Select)
	s.setInts("segments", fc.Wiring.Segments, &cfg.Segments)
	s.setBool("active-low", fc.Wiring.ActiveLow, &cfg.ActiveLow)
	s.setString("order", fc.Wiring.Order, &cfg.Order)
	s.setString("latch-edge", fc.Wiring.LatchEdge, &cfg.LatchEdge)

	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
