package juice

import "juicebus/internal/codec"

// Config reads and writes persistent configuration. Every setter verifies
// its write by reading it back.
type Config struct{ d *dev }

func (c *Config) ChargingConfig() (codec.ChargingConfig, error) {
	b, err := c.d.read(codec.RegChargingConfig, codec.LenConfigByte)
	if err != nil {
		return codec.ChargingConfig{}, err
	}
	return codec.DecodeChargingConfig(b), nil
}

func (c *Config) SetChargingConfig(cfg codec.ChargingConfig) error {
	return c.d.verify(codec.RegChargingConfig, codec.EncodeChargingConfig(cfg))
}

func (c *Config) BatteryProfileStatus() (codec.ProfileStatus, error) {
	b, err := c.d.read(codec.RegBatteryProfileID, codec.LenConfigByte)
	if err != nil {
		return codec.ProfileStatus{}, err
	}
	return codec.DecodeProfileStatus(b, c.d.fw), nil
}

// BatteryProfileNames lists the predefined profiles of the running firmware.
func (c *Config) BatteryProfileNames() []string { return codec.BatteryProfileNames(c.d.fw) }

// SetBatteryProfile selects a predefined profile, CUSTOM or DEFAULT. The id
// register reads back as a status word, so the write is not verified.
func (c *Config) SetBatteryProfile(name string) error {
	b, err := codec.EncodeProfileID(name, c.d.fw)
	if err != nil {
		return err
	}
	return c.d.write(codec.RegBatteryProfileID, b)
}

// CustomBatteryProfile returns nil when the device holds no valid custom
// profile.
func (c *Config) CustomBatteryProfile() (*codec.BatteryProfile, error) {
	b, err := c.d.read(codec.RegBatteryProfile, codec.LenBatteryProfile)
	if err != nil {
		return nil, err
	}
	p, ok := codec.DecodeBatteryProfile(b)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *Config) SetCustomBatteryProfile(p codec.BatteryProfile) error {
	b, err := codec.EncodeBatteryProfile(p)
	if err != nil {
		return err
	}
	return c.d.verify(codec.RegBatteryProfile, b)
}

func (c *Config) extProfileSupported() error {
	if !codec.SupportsExtProfile(c.d.fw) {
		return badArg("battery ext profile", "requires firmware 1.4, device runs "+c.d.fw.String())
	}
	return nil
}

// CustomBatteryExtProfile returns nil when the device holds no valid
// extended profile.
func (c *Config) CustomBatteryExtProfile() (*codec.BatteryExtProfile, error) {
	if err := c.extProfileSupported(); err != nil {
		return nil, err
	}
	b, err := c.d.read(codec.RegBatteryExtProfile, codec.LenBatteryExtProfile)
	if err != nil {
		return nil, err
	}
	p, ok := codec.DecodeBatteryExtProfile(b)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *Config) SetCustomBatteryExtProfile(p codec.BatteryExtProfile) error {
	if err := c.extProfileSupported(); err != nil {
		return err
	}
	b, err := codec.EncodeBatteryExtProfile(p)
	if err != nil {
		return err
	}
	return c.d.verify(codec.RegBatteryExtProfile, b)
}

func (c *Config) BatteryTempSenseConfig() (string, error) {
	b, err := c.d.read(codec.RegBatteryTempSense, codec.LenConfigByte)
	if err != nil {
		return "", err
	}
	return codec.DecodeTempSenseConfig(b), nil
}

// SetBatteryTempSenseConfig keeps the other bits of the register intact.
func (c *Config) SetBatteryTempSenseConfig(cfg string) error {
	if _, err := codec.EncodeTempSenseConfig([]byte{0}, cfg); err != nil {
		return err
	}
	cur, err := c.d.read(codec.RegBatteryTempSense, codec.LenConfigByte)
	if err != nil {
		return err
	}
	b, _ := codec.EncodeTempSenseConfig(cur, cfg)
	return c.d.verify(codec.RegBatteryTempSense, b)
}

func (c *Config) PowerInputsConfig() (codec.PowerInputsConfig, error) {
	b, err := c.d.read(codec.RegPowerInputsConfig, codec.LenConfigByte)
	if err != nil {
		return codec.PowerInputsConfig{}, err
	}
	return codec.DecodePowerInputsConfig(b), nil
}

func (c *Config) SetPowerInputsConfig(cfg codec.PowerInputsConfig) error {
	b, err := codec.EncodePowerInputsConfig(cfg)
	if err != nil {
		return err
	}
	return c.d.verify(codec.RegPowerInputsConfig, b)
}

func (c *Config) enum(reg byte, table []string) (string, error) {
	b, err := c.d.read(reg, codec.LenConfigByte)
	if err != nil {
		return "", err
	}
	return codec.DecodeEnum(b, table), nil
}

func (c *Config) setEnum(reg byte, table []string, v string) error {
	b, err := codec.EncodeEnum(v, table)
	if err != nil {
		return err
	}
	return c.d.verify(reg, b)
}

func (c *Config) RunPinConfig() (string, error) {
	return c.enum(codec.RegRunPinConfig, codec.RunPinConfigs)
}

func (c *Config) SetRunPinConfig(v string) error {
	return c.setEnum(codec.RegRunPinConfig, codec.RunPinConfigs, v)
}

func (c *Config) PowerRegulatorConfig() (string, error) {
	return c.enum(codec.RegPowerRegulator, codec.PowerRegulatorConfigs)
}

func (c *Config) SetPowerRegulatorConfig(v string) error {
	return c.setEnum(codec.RegPowerRegulator, codec.PowerRegulatorConfigs, v)
}

func (c *Config) LedConfig(led string) (codec.LedConfig, error) {
	reg, err := ledRegister(codec.RegLedConfig, led)
	if err != nil {
		return codec.LedConfig{}, err
	}
	b, err := c.d.read(reg, codec.LenLedConfig)
	if err != nil {
		return codec.LedConfig{}, err
	}
	return codec.DecodeLedConfig(b), nil
}

func (c *Config) SetLedConfig(led string, cfg codec.LedConfig) error {
	reg, err := ledRegister(codec.RegLedConfig, led)
	if err != nil {
		return err
	}
	b, err := codec.EncodeLedConfig(cfg)
	if err != nil {
		return err
	}
	return c.d.verify(reg, b)
}

func (c *Config) ButtonConfig(button string) (codec.ButtonConfig, error) {
	reg, err := buttonRegister(button)
	if err != nil {
		return codec.ButtonConfig{}, err
	}
	b, err := c.d.read(reg, codec.LenButtonConfig)
	if err != nil {
		return codec.ButtonConfig{}, err
	}
	return codec.DecodeButtonConfig(b), nil
}

func (c *Config) SetButtonConfig(button string, cfg codec.ButtonConfig) error {
	reg, err := buttonRegister(button)
	if err != nil {
		return err
	}
	b, err := codec.EncodeButtonConfig(cfg)
	if err != nil {
		return err
	}
	return c.d.verify(reg, b)
}

func (c *Config) IoConfig(pin int) (codec.IoConfig, error) {
	reg, err := codec.IoConfigRegister(pin)
	if err != nil {
		return codec.IoConfig{}, err
	}
	b, err := c.d.read(reg, codec.LenIoConfig)
	if err != nil {
		return codec.IoConfig{}, err
	}
	return codec.DecodeIoConfig(b), nil
}

func (c *Config) SetIoConfig(pin int, cfg codec.IoConfig) error {
	reg, err := codec.IoConfigRegister(pin)
	if err != nil {
		return err
	}
	b, err := codec.EncodeIoConfig(pin, cfg)
	if err != nil {
		return err
	}
	return c.d.verify(reg, b)
}

// Address returns the I2C address of slot 1 (this protocol) or slot 2 (the
// RTC).
func (c *Config) Address(slot int) (int, error) {
	reg, err := codec.AddressRegister(slot)
	if err != nil {
		return 0, err
	}
	b, err := c.d.readByte(reg)
	return int(b), err
}

// SetAddress takes effect on the peripheral immediately; callers talking to
// slot 1 need a new Transport at the new address afterwards.
func (c *Config) SetAddress(slot, addr int) error {
	reg, err := codec.AddressRegister(slot)
	if err != nil {
		return err
	}
	b, err := codec.EncodeAddress(addr)
	if err != nil {
		return err
	}
	return c.d.verify(reg, b)
}

func (c *Config) IdEepromWriteProtect() (bool, error) {
	b, err := c.d.read(codec.RegEepromProtect, codec.LenConfigByte)
	if err != nil {
		return false, err
	}
	return codec.DecodeBool(b), nil
}

func (c *Config) SetIdEepromWriteProtect(on bool) error {
	return c.d.verify(codec.RegEepromProtect, codec.EncodeBool(on))
}

func (c *Config) IdEepromAddress() (int, error) {
	b, err := c.d.readByte(codec.RegEepromAddress)
	return int(b), err
}

func (c *Config) SetIdEepromAddress(addr int) error {
	b, err := codec.EncodeIdEepromAddress(addr)
	if err != nil {
		return err
	}
	return c.d.verify(codec.RegEepromAddress, b)
}

// FirmwareVersion reads the version register.
func (c *Config) FirmwareVersion() (codec.FirmwareVersion, error) {
	b, err := c.d.read(codec.RegFirmwareVersion, codec.LenFirmwareVersion)
	if err != nil {
		return codec.FirmwareVersion{}, err
	}
	return codec.DecodeFirmwareVersion(b), nil
}

// ResetToDefault restores the factory configuration.
func (c *Config) ResetToDefault() error {
	return c.d.write(codec.RegResetToDefault, codec.ResetToDefaultPayload)
}
