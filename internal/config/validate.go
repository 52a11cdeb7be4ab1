// internal/config/validate.go
package config

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	// 7-bit addresses outside the reserved ranges
	if cfg.Address < 0x08 || cfg.Address > 0x77 {
		return errors.Errorf("address 0x%02X out of range", cfg.Address)
	}

	if cfg.TimeoutMs <= 0 {
		return errors.Errorf("timeout_ms must be positive, got %d", cfg.TimeoutMs)
	}
	if cfg.CooldownMs < 0 {
		return errors.Errorf("cooldown_ms must not be negative, got %d", cfg.CooldownMs)
	}
	if cfg.SettleMs < 0 {
		return errors.Errorf("settle_ms must not be negative, got %d", cfg.SettleMs)
	}

	if _, _, err := cfg.FirmwareVersion(); err != nil {
		return err
	}

	if cfg.HTTP.Port < 0 || cfg.HTTP.Port > 65535 {
		return errors.Errorf("http.port %d out of range", cfg.HTTP.Port)
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return errors.Wrapf(err, "log.level %q", cfg.Log.Level)
	}

	return nil
}
