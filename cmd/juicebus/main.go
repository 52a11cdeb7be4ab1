package main

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"juicebus/internal/config"
	"juicebus/internal/juice"
	"juicebus/internal/server"
	"juicebus/internal/sim"
	"juicebus/internal/transport"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatal().Err(err).Msg("config load failed")
		}
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}

	setupLogging(cfg.Log)
	log.Info().Msg("Starting juicebus...")

	bus, err := openBus(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open I2C")
	}
	defer bus.Close()

	t := transport.New(bus, cfg.Address,
		transport.WithTimeout(cfg.Timeout()),
		transport.WithCooldown(cfg.Cooldown()),
	)

	j, err := openJuice(t, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init battery manager")
	}

	log.Info().Str("bus", t.String()).Str("firmware", j.Firmware().String()).Msg("Hardware Initialized")

	if err := server.Run(cfg.HTTP.Port, j); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func setupLogging(c config.LogConfig) {
	// Validate has already rejected unknown levels.
	level, _ := zerolog.ParseLevel(c.Level)
	zerolog.SetGlobalLevel(level)
	if c.Console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func openBus(cfg *config.Config) (i2c.BusCloser, error) {
	if cfg.Bus == config.BusSim {
		log.Warn().Msg("using simulated device")
		return sim.New(sim.WithAddr(cfg.Address)), nil
	}

	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "host init")
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, errors.Wrapf(err, "open bus %q", cfg.Bus)
	}
	return bus, nil
}

func openJuice(t *transport.Transport, cfg *config.Config) (*juice.Juice, error) {
	settle := juice.WithSettle(cfg.Settle())

	fw, ok, err := cfg.FirmwareVersion()
	if err != nil {
		return nil, err
	}
	if ok {
		return juice.New(t, fw, settle), nil
	}
	j, err := juice.Open(t, settle)
	if err != nil {
		return nil, errors.Wrap(err, "read firmware version")
	}
	return j, nil
}
