// Package config loads and validates the device configuration from a
// YAML file. All durations are plain integers with the unit in the
// field name; the four preset slots and two interval slots configured
// here are only the factory defaults, the live values come from
// non-volatile storage.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const CONFILE = "powertimer.yml"

type Config struct {
	RealHW     bool   `yaml:"-"`
	Configfile string `yaml:"-"`

	Timer    TimerConfig    `yaml:"Timer"`
	Input    InputConfig    `yaml:"Input"`
	Display  DisplayConfig  `yaml:"Display"`
	Hardware HardwareConfig `yaml:"Hardware"`
	Watchdog WatchdogConfig `yaml:"Watchdog"`
	Logging  LoggingConfig  `yaml:"Logging"`
}

type TimerConfig struct {
	// PresetSeconds are the factory-default countdown presets.
	PresetSeconds []int `yaml:"PresetSeconds"`
	// IntervalMinutes are the selectable plus/minus steps.
	IntervalMinutes []int `yaml:"IntervalMinutes"`
	// MaxMinutes caps the plus adjustment.
	MaxMinutes int `yaml:"MaxMinutes"`
	// SecureStartSeconds is the countdown freeze applied after boot
	// and after every preset or time adjustment.
	SecureStartSeconds int `yaml:"SecureStartSeconds"`
}

type InputConfig struct {
	DebounceMillis  int `yaml:"DebounceMillis"`
	LongPressMillis int `yaml:"LongPressMillis"`
}

type DisplayConfig struct {
	// UpdateMillis is the minimum interval between periodic repaints.
	UpdateMillis int `yaml:"UpdateMillis"`
	// MessageMillis is how long transient messages stay on screen.
	MessageMillis int `yaml:"MessageMillis"`
}

type HardwareConfig struct {
	Relay     OutputPinConfig  `yaml:"Relay"`
	Indicator OutputPinConfig  `yaml:"Indicator"`
	Buttons   ButtonPinsConfig `yaml:"Buttons"`
	Display   DisplaySPIConfig `yaml:"Display"`
	Storage   StorageConfig    `yaml:"Storage"`
}

type OutputPinConfig struct {
	Pin        int  `yaml:"Pin"`
	ActiveHigh bool `yaml:"ActiveHigh"`
}

type ButtonPinsConfig struct {
	Primary int `yaml:"Primary"`
	Plus    int `yaml:"Plus"`
	Minus   int `yaml:"Minus"`
	Mode    int `yaml:"Mode"`
}

type DisplaySPIConfig struct {
	// DCPin selects command vs data transfers, ResetPin strobes the
	// controller reset line.
	DCPin        int `yaml:"DCPin"`
	ResetPin     int `yaml:"ResetPin"`
	SPIFrequency int `yaml:"SPIFrequency"`
}

type StorageConfig struct {
	// Path of the file standing in for the EEPROM.
	Path string `yaml:"Path"`
}

type WatchdogConfig struct {
	// Mode is "device" (hardware watchdog file), "soft" (process
	// timer) or "none".
	Mode          string `yaml:"Mode"`
	Device        string `yaml:"Device"`
	TimeoutMillis int    `yaml:"TimeoutMillis"`
}

type LoggingConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

// ReadConfig reads and validates the configuration file. The realhw
// flag enables the hardware pin checks.
func ReadConfig(cfile string, realhw bool) (*Config, error) {
	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't find config file %s: %w", cfile, err)
	}
	defer f.Close()

	conf := defaultConfig()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(conf); err != nil {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}
	conf.Configfile = cfile
	conf.RealHW = realhw

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func defaultConfig() *Config {
	return &Config{
		Timer: TimerConfig{
			PresetSeconds:      []int{60, 300, 600, 1800},
			IntervalMinutes:    []int{1, 5},
			MaxMinutes:         90,
			SecureStartSeconds: 5,
		},
		Input: InputConfig{
			DebounceMillis:  30,
			LongPressMillis: 2000,
		},
		Display: DisplayConfig{
			UpdateMillis:  200,
			MessageMillis: 2000,
		},
		Watchdog: WatchdogConfig{
			Mode:          "soft",
			Device:        "/dev/watchdog",
			TimeoutMillis: 1000,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// Validate checks the configuration for values the control loop cannot
// run with.
func (c *Config) Validate() error {
	if len(c.Timer.PresetSeconds) == 0 {
		return fmt.Errorf("Timer.PresetSeconds must contain at least one preset")
	}
	for i, p := range c.Timer.PresetSeconds {
		if p <= 0 {
			return fmt.Errorf("Timer.PresetSeconds[%d] must be greater than 0, got %d", i, p)
		}
		if p > c.Timer.MaxMinutes*60 {
			return fmt.Errorf("Timer.PresetSeconds[%d] exceeds MaxMinutes (%d min)", i, c.Timer.MaxMinutes)
		}
	}
	if len(c.Timer.IntervalMinutes) == 0 {
		return fmt.Errorf("Timer.IntervalMinutes must contain at least one interval")
	}
	for i, m := range c.Timer.IntervalMinutes {
		if m <= 0 {
			return fmt.Errorf("Timer.IntervalMinutes[%d] must be greater than 0, got %d", i, m)
		}
	}
	if c.Timer.MaxMinutes <= 0 {
		return fmt.Errorf("Timer.MaxMinutes must be greater than 0, got %d", c.Timer.MaxMinutes)
	}
	if c.Timer.SecureStartSeconds < 0 {
		return fmt.Errorf("Timer.SecureStartSeconds must not be negative, got %d", c.Timer.SecureStartSeconds)
	}

	if c.Input.DebounceMillis <= 0 {
		return fmt.Errorf("Input.DebounceMillis must be greater than 0, got %d", c.Input.DebounceMillis)
	}
	if c.Input.LongPressMillis <= c.Input.DebounceMillis {
		return fmt.Errorf("Input.LongPressMillis (%d) must be greater than Input.DebounceMillis (%d)",
			c.Input.LongPressMillis, c.Input.DebounceMillis)
	}

	if c.Display.UpdateMillis <= 0 {
		return fmt.Errorf("Display.UpdateMillis must be greater than 0, got %d", c.Display.UpdateMillis)
	}
	if c.Display.MessageMillis <= 0 {
		return fmt.Errorf("Display.MessageMillis must be greater than 0, got %d", c.Display.MessageMillis)
	}

	switch c.Watchdog.Mode {
	case "device", "soft", "none":
	default:
		return fmt.Errorf("Watchdog.Mode must be one of device, soft, none; got %q", c.Watchdog.Mode)
	}
	if c.Watchdog.Mode != "none" && c.Watchdog.TimeoutMillis <= 0 {
		return fmt.Errorf("Watchdog.TimeoutMillis must be greater than 0, got %d", c.Watchdog.TimeoutMillis)
	}

	if c.RealHW {
		if c.Hardware.Relay.Pin == 0 {
			return fmt.Errorf("Hardware.Relay.Pin must be configured for real hardware")
		}
		if c.Hardware.Storage.Path == "" {
			return fmt.Errorf("Hardware.Storage.Path must be configured for real hardware")
		}
	}
	return nil
}
