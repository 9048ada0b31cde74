package cliconfig

import "os"

// ApplyEnvConfig applies SHIFTSEG_* environment variables to cfg.
// They override file config but are overridden by flags (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("spi", os.Getenv("SHIFTSEG_SPI_PORT"), &cfg.SPIPort)
	s.setString("latch", os.Getenv("SHIFTSEG_LATCH_PIN"), &cfg.LatchPin)
	if err := s.setFrequency("hz", os.Getenv("SHIFTSEG_SPI_HZ"), &cfg.Hz); err != nil {
		return err
	}
	if err := s.setIntFromString("mode", os.Getenv("SHIFTSEG_SPI_MODE"), &cfg.Mode); err != nil {
		return err
	}
	if err := s.setDuration("interval", os.Getenv("SHIFTSEG_REFRESH_INTERVAL"), &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("latch-delay", os.Getenv("SHIFTSEG_LATCH_DELAY"), &cfg.LatchDelay); err != nil {
		return err
	}

	s.setString("text", os.Getenv("SHIFTSEG_TEXT"), &cfg.Text)
	s.setString("text-file", os.Getenv("SHIFTSEG_TEXT_FILE"), &cfg.TextFile)
	s.setString("clock", os.Getenv("SHIFTSEG_CLOCK"), &cfg.ClockLayout)

	s.setString("mqtt-broker", os.Getenv("SHIFTSEG_MQTT_BROKER"), &cfg.MQTTBroker)
	s.setString("mqtt-topic", os.Getenv("SHIFTSEG_MQTT_TOPIC"), &cfg.MQTTTopic)
	s.setString("mqtt-client-id", os.Getenv("SHIFTSEG_MQTT_CLIENT_ID"), &cfg.MQTTClientID)
	s.setString("mqtt-username", os.Getenv("SHIFTSEG_MQTT_USERNAME"), &cfg.MQTTUsername)
	s.setString("mqtt-password", os.Getenv("SHIFTSEG_MQTT_PASSWORD"), &cfg.MQTTPassword)

	if err := s.setIntsFromString("select", os.Getenv("SHIFTSEG_SELECT"), &cfg.Select); err != nil {
		return err
	}
	if err := s.setIntsFromString("segments", os.Getenv("SHIFTSEG_SEGMENTS"), &cfg.Segments); err != nil {
		return err
	}
	s.setBoolFromString("active-low", os.Getenv("SHIFTSEG_ACTIVE_LOW"), &cfg.ActiveLow)
	s.setString("order", os.Getenv("SHIFTSEG_ORDER"), &cfg.Order)
	s.setString("latch-edge", os.Getenv("SHIFTSEG_LATCH_EDGE"), &cfg.LatchEdge)

	s.setString("log-level", os.Getenv("SHIFTSEG_LOG_LEVEL"), &cfg.LogLevel)
	return nil
}
