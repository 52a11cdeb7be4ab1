// Package sim is an in-process stand-in for the battery-management
// peripheral. Device implements i2c.Bus with a register file that speaks the
// same checksummed framing as the firmware.
package sim

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"juicebus/internal/codec"
	"juicebus/internal/transport"
)

var ErrNack = errors.New("sim: address not acknowledged")

// widths holds the size of every register the device answers to.
var widths = map[byte]int{
	codec.RegStatus:            codec.LenStatus,
	codec.RegChargeLevel:       codec.LenChargeLevel,
	codec.RegFaultEvent:        codec.LenFaultEvent,
	codec.RegButtonEvent:       codec.LenButtonEvent,
	codec.RegBatteryTemp:       codec.LenAnalog,
	codec.RegBatteryVoltage:    codec.LenAnalog,
	codec.RegBatteryCurrent:    codec.LenAnalog,
	codec.RegIoVoltage:         codec.LenAnalog,
	codec.RegIoCurrent:         codec.LenAnalog,
	codec.RegChargingConfig:    codec.LenConfigByte,
	codec.RegBatteryProfileID:  codec.LenConfigByte,
	codec.RegBatteryProfile:    codec.LenBatteryProfile,
	codec.RegBatteryExtProfile: codec.LenBatteryExtProfile,
	codec.RegBatteryTempSense:  codec.LenConfigByte,
	codec.RegPowerInputsConfig: codec.LenConfigByte,
	codec.RegRunPinConfig:      codec.LenConfigByte,
	codec.RegPowerRegulator:    codec.LenConfigByte,
	codec.RegWatchdog:          codec.LenWatchdog,
	codec.RegPowerOff:          codec.LenConfigByte,
	codec.RegWakeupOnCharge:    codec.LenConfigByte,
	codec.RegSystemPowerSwitch: codec.LenConfigByte,
	codec.RegLedState:          codec.LenLedState,
	codec.RegLedState + 1:      codec.LenLedState,
	codec.RegLedBlink:          codec.LenLedBlink,
	codec.RegLedBlink + 1:      codec.LenLedBlink,
	codec.RegLedConfig:         codec.LenLedConfig,
	codec.RegLedConfig + 1:     codec.LenLedConfig,
	codec.RegButtonConfig:      codec.LenButtonConfig,
	codec.RegButtonConfig + 1:  codec.LenButtonConfig,
	codec.RegButtonConfig + 2:  codec.LenButtonConfig,
	codec.RegIoConfig:          codec.LenIoConfig,
	codec.RegIoConfig + 5:      codec.LenIoConfig,
	codec.RegIoAccess:          codec.LenIoAccess,
	codec.RegIoAccess + 5:      codec.LenIoAccess,
	codec.RegI2CAddress:        codec.LenConfigByte,
	codec.RegI2CAddress + 1:    codec.LenConfigByte,
	codec.RegEepromProtect:     codec.LenConfigByte,
	codec.RegEepromAddress:     codec.LenConfigByte,
	codec.RegRtcTime:           codec.LenRtcTime,
	codec.RegRtcAlarm:          codec.LenRtcAlarm,
	codec.RegRtcControlStatus:  codec.LenRtcControlStatus,
	codec.RegResetToDefault:    len(codec.ResetToDefaultPayload),
	codec.RegFirmwareVersion:   codec.LenFirmwareVersion,
}

var readOnly = map[byte]bool{
	codec.RegStatus:          true,
	codec.RegChargeLevel:     true,
	codec.RegBatteryTemp:     true,
	codec.RegBatteryVoltage:  true,
	codec.RegBatteryCurrent:  true,
	codec.RegIoVoltage:       true,
	codec.RegIoCurrent:       true,
	codec.RegFirmwareVersion: true,
}

// Defaults is the register image of a freshly reset device running
// firmware 1.4 on a healthy battery.
func Defaults() map[byte][]byte {
	rtc, _ := codec.EncodeDateTime(codec.FromTime(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)))
	alarm, _ := codec.EncodeAlarm(codec.Alarm{})
	d := map[byte][]byte{
		codec.RegStatus:            {0x00},
		codec.RegChargeLevel:       {87},
		codec.RegBatteryTemp:       {25, 0},
		codec.RegBatteryVoltage:    {0x3C, 0x0F}, // 3900 mV
		codec.RegBatteryCurrent:    {0x38, 0xFF}, // -200 mA
		codec.RegIoVoltage:         {0x88, 0x13}, // 5000 mV
		codec.RegIoCurrent:         {0x00, 0x00},
		codec.RegChargingConfig:    {0x81},
		codec.RegBatteryProfileID:  {0x00},
		codec.RegBatteryTempSense:  {0x01},
		codec.RegPowerInputsConfig: {0x20},
		codec.RegWakeupOnCharge:    {0x7F},
		codec.RegSystemPowerSwitch: {0x00},
		codec.RegLedConfig:         {0x01, 0x00, 0x3C, 0x00},
		codec.RegLedConfig + 1:     {0x02, 0x00, 0x00, 0x3C},
		codec.RegI2CAddress:        {transport.Addr},
		codec.RegI2CAddress + 1:    {0x68},
		codec.RegEepromProtect:     {0x00},
		codec.RegEepromAddress:     {0x50},
		codec.RegRtcTime:           rtc,
		codec.RegRtcAlarm:          alarm,
		codec.RegFirmwareVersion:   {0x14, 0x00},
	}
	for reg, n := range widths {
		if _, ok := d[reg]; !ok {
			d[reg] = make([]byte, n)
		}
	}
	return d
}

// Device is a simulated peripheral.
type Device struct {
	addr uint16

	mu        sync.Mutex
	regs      map[byte][]byte
	hour24    bool
	delay     time.Duration
	failNext  int
	failErr   error
	clearMSB  int
	txCount   int
	rejectsCS int
}

type Option func(*Device)

// WithAddr sets the address the device acknowledges.
func WithAddr(addr uint16) Option { return func(d *Device) { d.addr = addr } }

// WithHour24 makes the RTC store every written hour in 24-hour form, the
// way some firmware revisions report it back.
func WithHour24() Option { return func(d *Device) { d.hour24 = true } }

// WithFirmware sets the firmware version register.
func WithFirmware(major, minor uint8) Option {
	return func(d *Device) { d.regs[codec.RegFirmwareVersion] = []byte{major<<4 | minor&0x0F, 0x00} }
}

func New(opts ...Option) *Device {
	d := &Device{addr: transport.Addr, regs: Defaults()}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Device) String() string                  { return fmt.Sprintf("sim@0x%02X", d.addr) }
func (d *Device) SetSpeed(physic.Frequency) error { return nil }
func (d *Device) Close() error                    { return nil }

// Tx answers a register select followed by a read, or a register write with
// a trailing checksum. Writes with a bad checksum are dropped silently, as
// the firmware does.
func (d *Device) Tx(addr uint16, w, r []byte) error {
	d.mu.Lock()
	d.txCount++
	delay := d.delay
	var injected error
	if d.failNext > 0 {
		d.failNext--
		injected = d.failErr
	}
	d.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if injected != nil {
		return injected
	}
	if addr != d.addr {
		return ErrNack
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case len(w) == 1 && len(r) > 1:
		return d.read(w[0], r)
	case len(w) > 2 && len(r) == 0:
		return d.write(w[0], w[1:len(w)-1], w[len(w)-1])
	}
	return errors.Errorf("sim: unsupported transaction w=%d r=%d", len(w), len(r))
}

func (d *Device) read(reg byte, r []byte) error {
	v, ok := d.regs[reg]
	if !ok {
		return errors.Wrapf(ErrNack, "register 0x%02X", reg)
	}
	payload := make([]byte, len(r)-1)
	copy(payload, v)
	copy(r, transport.AppendChecksum(payload))
	if d.clearMSB > 0 && r[0]&0x80 != 0 {
		d.clearMSB--
		r[0] &^= 0x80
	}
	return nil
}

func (d *Device) write(reg byte, payload []byte, cs byte) error {
	n, ok := widths[reg]
	if !ok {
		return errors.Wrapf(ErrNack, "register 0x%02X", reg)
	}
	if transport.Checksum(payload) != cs {
		d.rejectsCS++
		log.Debug().Uint8("reg", reg).Msg("sim: write dropped on checksum mismatch")
		return nil
	}
	if readOnly[reg] {
		return nil
	}
	v := make([]byte, n)
	copy(v, payload)

	switch reg {
	case codec.RegFaultEvent, codec.RegButtonEvent:
		cur := d.regs[reg]
		for i := range v {
			v[i] &= cur[i]
		}
	case codec.RegResetToDefault:
		if bytes.Equal(v, codec.ResetToDefaultPayload) {
			fw := d.regs[codec.RegFirmwareVersion]
			d.regs = Defaults()
			d.regs[codec.RegFirmwareVersion] = fw
		}
		return nil
	case codec.RegRtcTime:
		if d.hour24 {
			v[2] = to24(v[2])
		}
	case codec.RegRtcAlarm:
		if d.hour24 && v[2]&0x80 == 0 {
			v[2] = to24(v[2])
		}
	}
	d.regs[reg] = v
	return nil
}

// to24 rewrites a 12-hour BCD hour byte in 24-hour form.
func to24(b byte) byte {
	if b&0x40 == 0 {
		return b
	}
	h := int(b>>4&0x01)*10 + int(b&0x0F)
	h %= 12
	if b&0x20 != 0 {
		h += 12
	}
	return byte(h/10)<<4 | byte(h%10)
}

// Set overwrites a register, read-only ones included.
func (d *Device) Set(reg byte, v []byte) {
	d.mu.Lock()
	d.regs[reg] = bytes.Clone(v)
	d.mu.Unlock()
}

// Get returns a copy of a register.
func (d *Device) Get(reg byte) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return bytes.Clone(d.regs[reg])
}

// FailNext makes the next n transactions return err without touching the
// register file.
func (d *Device) FailNext(n int, err error) {
	d.mu.Lock()
	d.failNext, d.failErr = n, err
	d.mu.Unlock()
}

// ClearMSBNext delivers the next n reads with bit 7 of the first payload
// byte cleared, when it was set.
func (d *Device) ClearMSBNext(n int) {
	d.mu.Lock()
	d.clearMSB = n
	d.mu.Unlock()
}

// SetDelay stalls every transaction for delay.
func (d *Device) SetDelay(delay time.Duration) {
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
}

// Transactions returns the number of Tx calls seen so far.
func (d *Device) Transactions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txCount
}

// ChecksumRejects returns the number of writes dropped on a bad checksum.
func (d *Device) ChecksumRejects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rejectsCS
}

var _ i2c.BusCloser = (*Device)(nil)
