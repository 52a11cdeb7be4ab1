// Package juice is the typed facade over the register protocol. Each group
// issues the transfers for one area of the peripheral and returns decoded
// values; input faults are reported before anything reaches the bus.
package juice

import (
	"time"

	"github.com/rs/zerolog/log"

	"juicebus/internal/codec"
	"juicebus/internal/errcode"
	"juicebus/internal/transport"
)

// DefaultSettle is the pause between a verified write and its read-back,
// long enough for the firmware to commit to EEPROM.
const DefaultSettle = 200 * time.Millisecond

// Transport is the register access the facade needs. *transport.Transport
// satisfies it.
type Transport interface {
	Read(reg byte, n int) ([]byte, error)
	Write(reg byte, data []byte) error
	WriteVerify(reg byte, data []byte, settle time.Duration) error
	WriteVerifyFunc(reg byte, data []byte, settle time.Duration, eq transport.Equivalence) error
}

type Juice struct {
	Status   *Status
	Config   *Config
	Power    *Power
	RtcAlarm *RtcAlarm

	fw codec.FirmwareVersion
}

type Option func(*dev)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option { return func(x *dev) { x.settle = d } }

// dev is shared by all groups of one Juice.
type dev struct {
	t      Transport
	fw     codec.FirmwareVersion
	settle time.Duration
}

// New builds a facade for firmware fw. Profile name tables and feature
// gates follow fw.
func New(t Transport, fw codec.FirmwareVersion, opts ...Option) *Juice {
	d := &dev{t: t, fw: fw, settle: DefaultSettle}
	for _, o := range opts {
		o(d)
	}
	return &Juice{
		Status:   &Status{d},
		Config:   &Config{d},
		Power:    &Power{d},
		RtcAlarm: &RtcAlarm{d},
		fw:       fw,
	}
}

// Open reads the firmware version from the device and builds the facade
// for it.
func Open(t Transport, opts ...Option) (*Juice, error) {
	b, err := t.Read(codec.RegFirmwareVersion, codec.LenFirmwareVersion)
	if err != nil {
		return nil, err
	}
	fw := codec.DecodeFirmwareVersion(b)
	log.Info().Str("firmware", fw.String()).Uint8("variant", fw.Variant).Msg("peripheral detected")
	return New(t, fw, opts...), nil
}

// Firmware returns the version the facade was built for.
func (j *Juice) Firmware() codec.FirmwareVersion { return j.fw }

func badArg(op, msg string) error {
	return &errcode.E{C: errcode.BadArgument, Op: op, Msg: msg}
}

func (d *dev) read(reg byte, n int) ([]byte, error) { return d.t.Read(reg, n) }

func (d *dev) write(reg byte, data []byte) error { return d.t.Write(reg, data) }

func (d *dev) verify(reg byte, data []byte) error {
	return d.t.WriteVerify(reg, data, d.settle)
}

func (d *dev) verifyFunc(reg byte, data []byte, eq transport.Equivalence) error {
	return d.t.WriteVerifyFunc(reg, data, d.settle, eq)
}

// readByte reads a one-byte register.
func (d *dev) readByte(reg byte) (byte, error) {
	b, err := d.read(reg, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func ledRegister(base byte, led string) (byte, error) {
	i := codec.LedIndex(led)
	if i < 0 {
		return 0, badArg("led", "unknown led "+led)
	}
	return base + byte(i), nil
}

func buttonRegister(button string) (byte, error) {
	i := codec.ButtonIndex(button)
	if i < 0 {
		return 0, badArg("button", "unknown button "+button)
	}
	return codec.RegButtonConfig + byte(i), nil
}
