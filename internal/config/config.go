// internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"juicebus/internal/codec"
	"juicebus/internal/juice"
	"juicebus/internal/transport"
)

// BusSim selects the in-process simulator instead of a real I2C bus.
const BusSim = "sim"

type Config struct {
	// Bus is a periph bus name; empty opens the first bus found.
	Bus        string `yaml:"bus"`
	Address    uint16 `yaml:"address"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	CooldownMs int    `yaml:"cooldown_ms"`
	SettleMs   int    `yaml:"settle_ms"`

	// Firmware skips version detection when set, e.g. "1.4".
	Firmware string `yaml:"firmware"`

	HTTP HTTPConfig `yaml:"http"`
	Log  LogConfig  `yaml:"log"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Address:    transport.Addr,
		TimeoutMs:  int(transport.DefaultTimeout / time.Millisecond),
		CooldownMs: int(transport.DefaultCooldown / time.Millisecond),
		SettleMs:   int(juice.DefaultSettle / time.Millisecond),
		HTTP:       HTTPConfig{Port: 3000},
		Log:        LogConfig{Level: "info", Console: true},
	}
}

// Load reads a YAML file over Default. Keys missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

func (c *Config) Timeout() time.Duration  { return time.Duration(c.TimeoutMs) * time.Millisecond }
func (c *Config) Cooldown() time.Duration { return time.Duration(c.CooldownMs) * time.Millisecond }
func (c *Config) Settle() time.Duration   { return time.Duration(c.SettleMs) * time.Millisecond }

// FirmwareVersion returns the configured override, or false if the version
// is to be read from the device.
func (c *Config) FirmwareVersion() (codec.FirmwareVersion, bool, error) {
	if c.Firmware == "" {
		return codec.FirmwareVersion{}, false, nil
	}
	fw, err := codec.ParseFirmwareVersion(c.Firmware)
	if err != nil {
		return codec.FirmwareVersion{}, false, err
	}
	return fw, true, nil
}
