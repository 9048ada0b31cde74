package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/flavioheleno/shiftseg"
	"github.com/flavioheleno/shiftseg/internal/cliconfig"
	"github.com/flavioheleno/shiftseg/internal/runner"
	"github.com/flavioheleno/shiftseg/internal/textsource"
)

var longHelp = strings.TrimSpace(`
Drive a 4-digit seven-segment display wired to two cascaded shift registers.

The display is multiplexed: one digit is lit per refresh, so shiftseg keeps
refreshing until it is stopped. Text comes from --text, a watched file, an
MQTT topic or the clock.
`)

var exampleUsage = strings.TrimSpace(`
  shiftseg --latch GPIO8 --text 12.34
  shiftseg --text-file /run/display.txt
  shiftseg --clock 15.04 --interval 2ms
  shiftseg --mqtt-broker localhost:1883 --mqtt-topic home/display
  shiftseg --config $HOME/.shiftseg/config.toml --dry-run
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var dryRun bool
	var hz string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:          "shiftseg",
		Short:        "Drive a multiplexed 4-digit seven-segment display",
		Long:         longHelp,
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if dryRun {
				dryRunDefaults(&cfg, changed)
			}

			if changed["hz"] {
				if err := cfg.Hz.Set(hz); err != nil {
					return fmt.Errorf("parse hz: %w", err)
				}
			}

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log = cliconfig.LoggerWithLevel(cfg.LogLevel)
			logCfg := cfg
			if logCfg.MQTTPassword != "" {
				logCfg.MQTTPassword = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, dryRun, log)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.shiftseg/config.toml)")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "log frames at debug level instead of driving hardware")

	root.Flags().StringVar(&cfg.SPIPort, "spi", cfg.SPIPort, "SPI port name (empty for the first one)")
	root.Flags().StringVar(&cfg.LatchPin, "latch", cfg.LatchPin, "GPIO wired to the registers' latch (RCLK)")
	root.Flags().StringVar(&hz, "hz", cfg.Hz.String(), "SPI clock frequency")
	root.Flags().IntVar(&cfg.Mode, "mode", cfg.Mode, "SPI mode (0-3)")

	root.Flags().DurationVar(&cfg.Interval, "interval", cfg.Interval, "time between two digit refreshes")
	root.Flags().DurationVar(&cfg.LatchDelay, "latch-delay", cfg.LatchDelay, "settling time between shifting and latching")

	root.Flags().StringVar(&cfg.Text, "text", cfg.Text, "text to show")
	root.Flags().StringVar(&cfg.TextFile, "text-file", cfg.TextFile, "show the first line of this file and follow changes")
	root.Flags().StringVar(&cfg.ClockLayout, "clock", cfg.ClockLayout, "show the time with this Go layout, e.g. 15.04")

	root.Flags().StringVar(&cfg.MQTTBroker, "mqtt-broker", cfg.MQTTBroker, "MQTT broker host:port")
	root.Flags().StringVar(&cfg.MQTTTopic, "mqtt-topic", cfg.MQTTTopic, "MQTT topic whose messages are shown")
	root.Flags().StringVar(&cfg.MQTTClientID, "mqtt-client-id", cfg.MQTTClientID, "MQTT client identifier")
	root.Flags().StringVar(&cfg.MQTTUsername, "mqtt-username", cfg.MQTTUsername, "MQTT username")
	root.Flags().StringVar(&cfg.MQTTPassword, "mqtt-password", cfg.MQTTPassword, "MQTT password")

	root.Flags().IntSliceVar(&cfg.Select, "select", cfg.Select, "digit-select byte per digit, left to right")
	root.Flags().IntSliceVar(&cfg.Segments, "segments", cfg.Segments, "register bit for segments A-G and DP")
	root.Flags().BoolVar(&cfg.ActiveLow, "active-low", cfg.ActiveLow, "segments light when their line is low")
	root.Flags().StringVar(&cfg.Order, "order", cfg.Order, "frame byte order: segments-first or select-first")
	root.Flags().StringVar(&cfg.LatchEdge, "latch-edge", cfg.LatchEdge, "latch edge committing data: rising or falling")

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error; default debug with --dry-run)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("shiftseg")
		os.Exit(1)
	}
}

// run opens the display and refreshes it until ctx is done.
func run(ctx context.Context, cfg cliconfig.Config, dryRun bool, log zerolog.Logger) error {
	wiring, err := cfg.Wiring()
	if err != nil {
		return err
	}
	opts := &shiftseg.Opts{Wiring: &wiring, Hz: cfg.Hz, Mode: spi.Mode(cfg.Mode)}

	var dev *shiftseg.Dev
	if dryRun {
		w := &frameLog{log: log}
		dev, err = shiftseg.New(w, w, opts)
		if err != nil {
			return err
		}
	} else {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("init host: %w", err)
		}
		p, err := spireg.Open(cfg.SPIPort)
		if err != nil {
			return fmt.Errorf("open spi: %w", err)
		}
		defer p.Close()

		latch := gpioreg.ByName(cfg.LatchPin)
		if latch == nil {
			return fmt.Errorf("gpio %s not found", cfg.LatchPin)
		}
		dev, err = shiftseg.NewSPI(p, latch, opts)
		if err != nil {
			return err
		}
	}
	log.Info().Stringer("device", dev).Msg("display ready")

	dev.SetText(cfg.Text)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	texts := make(chan string, 1)
	srcErr := make(chan error, 1)
	if src := source(cfg, log); src != nil {
		go func() {
			err := src.Run(ctx, texts)
			if err != nil {
				cancel()
			}
			srcErr <- err
		}()
	} else {
		srcErr <- nil
	}

	r := runner.New(dev, runner.Config{Interval: cfg.Interval, Delay: cfg.LatchDelay}, log)
	err = r.Run(ctx, texts)
	cancel()
	if serr := <-srcErr; serr != nil && err == nil {
		err = serr
	}
	return err
}

// dryRunDefaults lowers the default log level so logged frames show up.
// The config file, environment and --log-level still take precedence.
func dryRunDefaults(cfg *cliconfig.Config, changed map[string]bool) {
	if !changed["log-level"] {
		cfg.LogLevel = "debug"
	}
}

// source returns the configured text source, if any.
func source(cfg cliconfig.Config, log zerolog.Logger) textsource.Source {
	switch {
	case cfg.TextFile != "":
		return &textsource.File{Path: cfg.TextFile, Log: log.With().Str("source", "file").Logger()}
	case cfg.MQTTBroker != "":
		return &textsource.MQTT{
			Broker:   cfg.MQTTBroker,
			Topic:    cfg.MQTTTopic,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			Log:      log.With().Str("source", "mqtt").Logger(),
		}
	case cfg.ClockLayout != "":
		return &textsource.Clock{Layout: cfg.ClockLayout}
	}
	return nil
}

// frameLog stands in for the SPI port and latch pin in dry-run mode.
type frameLog struct {
	log zerolog.Logger
}

func (f *frameLog) Tx(w, r []byte) error {
	f.log.Debug().Hex("frame", w).Msg("shift")
	return nil
}

func (f *frameLog) Out(l gpio.Level) error {
	f.log.Debug().Stringer("latch", l).Msg("latch")
	return nil
}
