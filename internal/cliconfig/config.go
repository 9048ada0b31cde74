package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flavioheleno/shiftseg"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Config holds CLI configuration for shiftseg.
type Config struct {
	SPIPort  string
	LatchPin string
	Hz       physic.Frequency
	Mode     int

	Interval   time.Duration
	LatchDelay time.Duration

	Text        string
	TextFile    string
	ClockLayout string

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	// Wiring overrides; empty values keep shiftseg.DefaultWiring.
	Select    []int
	Segments  []int
	ActiveLow bool
	Order     string
	LatchEdge string

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LatchPin:     "GPIO8",
		Hz:           4 * physic.MegaHertz,
		Interval:     time.Millisecond,
		MQTTClientID: "shiftseg",
		ActiveLow:    shiftseg.DefaultWiring.ActiveLow,
		Order:        "segments-first",
		LatchEdge:    "rising",
		LogLevel:     "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.LatchPin == "" {
		return fmt.Errorf("latch pin is required")
	}
	if c.Hz <= 0 {
		return fmt.Errorf("spi frequency must be positive")
	}
	if c.Mode < 0 || c.Mode > 3 {
		return fmt.Errorf("spi mode must be 0-3, got %d", c.Mode)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}
	if c.LatchDelay < 0 {
		return fmt.Errorf("latch delay must not be negative")
	}

	sources := 0
	for _, s := range []string{c.TextFile, c.MQTTBroker, c.ClockLayout} {
		if s != "" {
			sources++
		}
	}
	if sources > 1 {
		return fmt.Errorf("only one of text-file, mqtt-broker and clock can be set")
	}
	if c.MQTTBroker != "" && c.MQTTTopic == "" {
		return fmt.Errorf("mqtt-topic is required with mqtt-broker")
	}
	if c.MQTTPassword != "" && c.MQTTUsername == "" {
		return fmt.Errorf("mqtt-password requires mqtt-username")
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if _, err := c.Wiring(); err != nil {
		return err
	}
	return nil
}

// Wiring builds the board wiring from the defaults and the overrides.
func (c *Config) Wiring() (shiftseg.Wiring, error) {
	w := shiftseg.DefaultWiring
	w.ActiveLow = c.ActiveLow

	if len(c.Select) > 0 {
		if len(c.Select) != shiftseg.Digits {
			return w, fmt.Errorf("select needs %d values, got %d", shiftseg.Digits, len(c.Select))
		}
		for i, v := range c.Select {
			if v < 0 || v > 0xFF {
				return w, fmt.Errorf("select value %d out of range", v)
			}
			w.Select[i] = byte(v)
		}
	}
	if len(c.Segments) > 0 {
		if len(c.Segments) != len(w.Segments) {
			return w, fmt.Errorf("segments needs %d values, got %d", len(w.Segments), len(c.Segments))
		}
		for i, v := range c.Segments {
			if v < 0 || v > 7 {
				return w, fmt.Errorf("segment bit %d out of range", v)
			}
			w.Segments[i] = uint8(v)
		}
	}

	switch strings.ToLower(c.Order) {
	case "", "segments-first":
		w.Order = shiftseg.SegmentsFirst
	case "select-first":
		w.Order = shiftseg.SelectFirst
	default:
		return w, fmt.Errorf("unknown frame order %q", c.Order)
	}

	switch strings.ToLower(c.LatchEdge) {
	case "", "rising":
		w.Latch = gpio.RisingEdge
	case "falling":
		w.Latch = gpio.FallingEdge
	default:
		return w, fmt.Errorf("unknown latch edge %q", c.LatchEdge)
	}

	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if the source is present and flag not changed.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setInts(flag string, value []int, dst *[]int) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]int(nil), value...)
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setFrequency parses values such as "4MHz" or "500kHz".
func (s *configSetter) setFrequency(flag, value string, dst *physic.Frequency) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	var f physic.Frequency
	if err := f.Set(value); err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setIntsFromString parses a comma separated list, accepting 0x prefixed values.
func (s *configSetter) setIntsFromString(flag, value string, dst *[]int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.ParseInt(strings.TrimSpace(p), 0, 0)
		if err != nil {
			return fmt.Errorf("parse %s: %w", flag, err)
		}
		out = append(out, int(i))
	}
	*dst = out
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
