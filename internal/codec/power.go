package codec

import "juicebus/internal/errcode"

const nonVolatileBit = 0x80

func nv(b bool) byte {
	if b {
		return nonVolatileBit
	}
	return 0
}

type ChargingConfig struct {
	Enabled     bool `json:"charging_enabled"`
	NonVolatile bool `json:"non_volatile"`
}

func DecodeChargingConfig(d []byte) ChargingConfig {
	return ChargingConfig{Enabled: d[0]&0x01 != 0, NonVolatile: d[0]&nonVolatileBit != 0}
}

func EncodeChargingConfig(c ChargingConfig) []byte {
	d := nv(c.NonVolatile)
	if c.Enabled {
		d |= 0x01
	}
	return []byte{d}
}

// TempSenseConfig values select the battery temperature source.
var TempSenseConfigs = []string{"NOT_USED", "NTC", "ON_BOARD", "AUTO_DETECT"}

func DecodeTempSenseConfig(d []byte) string {
	return lookup(TempSenseConfigs, int(d[0]&0x07), Unknown)
}

// EncodeTempSenseConfig keeps the bits of current outside the source field.
func EncodeTempSenseConfig(current []byte, cfg string) ([]byte, error) {
	i := index(TempSenseConfigs, cfg)
	if i < 0 {
		return nil, errcode.BadArgument
	}
	return []byte{current[0]&^0x07 | byte(i)}, nil
}

var (
	// USBMicroCurrentLimits are the selectable input current limits.
	USBMicroCurrentLimits = []string{"1.5A", "2.5A"}
	// USBMicroDPMs are the selectable dynamic power management thresholds.
	USBMicroDPMs = []string{"4.2V", "4.28V", "4.36V", "4.44V", "4.52V", "4.6V", "4.68V", "4.76V"}
)

const (
	PrecedenceGPIO5V = "5V_GPIO"
	PrecedenceSolar  = "SOLAR"
)

type PowerInputsConfig struct {
	Precedence           string `json:"precedence"`
	GPIOInEnabled        bool   `json:"gpio_in_enabled"`
	NoBatteryTurnOn      bool   `json:"no_battery_turn_on"`
	USBMicroCurrentLimit string `json:"usb_micro_current_limit"`
	USBMicroDPM          string `json:"usb_micro_dpm"`
	NonVolatile          bool   `json:"non_volatile"`
}

func DecodePowerInputsConfig(d []byte) PowerInputsConfig {
	b := d[0]
	c := PowerInputsConfig{
		Precedence:           PrecedenceGPIO5V,
		GPIOInEnabled:        b&0x02 != 0,
		NoBatteryTurnOn:      b&0x04 != 0,
		USBMicroCurrentLimit: USBMicroCurrentLimits[(b>>3)&0x01],
		USBMicroDPM:          USBMicroDPMs[(b>>4)&0x07],
		NonVolatile:          b&nonVolatileBit != 0,
	}
	if b&0x01 != 0 {
		c.Precedence = PrecedenceSolar
	}
	return c
}

func EncodePowerInputsConfig(c PowerInputsConfig) ([]byte, error) {
	d := nv(c.NonVolatile)
	switch c.Precedence {
	case PrecedenceSolar:
		d |= 0x01
	case PrecedenceGPIO5V:
	default:
		return nil, errcode.BadArgument
	}
	if c.GPIOInEnabled {
		d |= 0x02
	}
	if c.NoBatteryTurnOn {
		d |= 0x04
	}
	lim := index(USBMicroCurrentLimits, c.USBMicroCurrentLimit)
	dpm := index(USBMicroDPMs, c.USBMicroDPM)
	if lim < 0 || dpm < 0 {
		return nil, errcode.BadArgument
	}
	d |= byte(lim)<<3 | byte(dpm)<<4
	return []byte{d}, nil
}

var (
	RunPinConfigs         = []string{"NOT_INSTALLED", "INSTALLED"}
	PowerRegulatorConfigs = []string{"POWER_SOURCE_DETECTION", "LDO", "DCDC"}
)

// DecodeEnum decodes a single-byte enumeration register.
func DecodeEnum(d []byte, table []string) string {
	return lookup(table, int(d[0]), Unknown)
}

func EncodeEnum(v string, table []string) ([]byte, error) {
	i := index(table, v)
	if i < 0 {
		return nil, errcode.BadArgument
	}
	return []byte{byte(i)}, nil
}

// Watchdog is the host watchdog period in minutes, 0 disables it. Periods
// above 0x3FFF minutes lose two bits of resolution.
type Watchdog struct {
	Minutes     int  `json:"minutes"`
	NonVolatile bool `json:"non_volatile"`
}

func DecodeWatchdog(d []byte) Watchdog {
	cfg := le16(d[0], d[1])
	w := Watchdog{Minutes: int(cfg & 0x3FFF), NonVolatile: cfg&0x8000 != 0}
	if cfg&0x4000 != 0 {
		w.Minutes <<= 2
	}
	return w
}

func EncodeWatchdog(w Watchdog) ([]byte, error) {
	if w.Minutes < 0 || w.Minutes > 0xFFFF {
		return nil, errcode.BadArgument
	}
	cfg := uint16(w.Minutes)
	if cfg > 0x3FFF {
		cfg = cfg>>2 | 0x4000
	}
	if w.NonVolatile {
		cfg |= 0x8000
	}
	d := make([]byte, LenWatchdog)
	putLE16(d, cfg)
	return d, nil
}

// WakeUpOnCharge is the charge level in percent at which the peripheral
// powers the host back on. Disabled is encoded as 0x7F.
type WakeUpOnCharge struct {
	Disabled    bool `json:"disabled"`
	Level       int  `json:"level,omitempty"`
	NonVolatile bool `json:"non_volatile"`
}

func DecodeWakeUpOnCharge(d []byte) WakeUpOnCharge {
	w := WakeUpOnCharge{NonVolatile: d[0]&nonVolatileBit != 0}
	if lvl := d[0] & 0x7F; lvl == 0x7F {
		w.Disabled = true
	} else {
		w.Level = int(lvl)
	}
	return w
}

func EncodeWakeUpOnCharge(w WakeUpOnCharge) ([]byte, error) {
	d := nv(w.NonVolatile)
	if w.Disabled {
		return []byte{d | 0x7F}, nil
	}
	if w.Level < 0 || w.Level > 100 {
		return nil, errcode.BadArgument
	}
	return []byte{d | byte(w.Level)}, nil
}

// SystemPowerSwitchLimits are the accepted current limits in mA.
var SystemPowerSwitchLimits = []int{0, 500, 2100}

func DecodeSystemPowerSwitch(d []byte) int { return int(d[0]) * 100 }

func EncodeSystemPowerSwitch(mA int) ([]byte, error) {
	if index(SystemPowerSwitchLimits, mA) < 0 {
		return nil, errcode.BadArgument
	}
	return []byte{byte(mA / 100)}, nil
}

// EncodePowerOff encodes the delay in seconds before power is cut; 0xFF
// cancels a pending power off.
func EncodePowerOff(delay int) ([]byte, error) {
	if delay < 0 || delay > 0xFF {
		return nil, errcode.BadArgument
	}
	return []byte{byte(delay)}, nil
}

// AddressRegister maps an I2C address slot (1 or 2) to its register.
func AddressRegister(slot int) (byte, error) {
	if slot != 1 && slot != 2 {
		return 0, errcode.BadArgument
	}
	return byte(RegI2CAddress + slot - 1), nil
}

// EncodeAddress accepts a 7-bit address outside the reserved ranges.
func EncodeAddress(addr int) ([]byte, error) {
	if addr < 0x08 || addr > 0x77 {
		return nil, errcode.BadArgument
	}
	return []byte{byte(addr)}, nil
}

// IdEepromAddresses are the selectable addresses of the ID EEPROM.
var IdEepromAddresses = []int{0x50, 0x52}

func EncodeIdEepromAddress(addr int) ([]byte, error) {
	if index(IdEepromAddresses, addr) < 0 {
		return nil, errcode.BadArgument
	}
	return []byte{byte(addr)}, nil
}

func EncodeBool(v bool) []byte {
	if v {
		return []byte{0x01}
	}
	return []byte{0x00}
}

func DecodeBool(d []byte) bool { return d[0]&0x01 != 0 }
