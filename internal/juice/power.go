package juice

import "juicebus/internal/codec"

// Power controls power-off, wake-up and the host watchdog.
type Power struct{ d *dev }

// PowerOff returns the pending power-off delay in seconds, 0xFF if none.
func (p *Power) PowerOff() (int, error) {
	b, err := p.d.readByte(codec.RegPowerOff)
	return int(b), err
}

// SetPowerOff cuts power after delay seconds.
func (p *Power) SetPowerOff(delay int) error {
	b, err := codec.EncodePowerOff(delay)
	if err != nil {
		return err
	}
	return p.d.write(codec.RegPowerOff, b)
}

func (p *Power) WakeUpOnCharge() (codec.WakeUpOnCharge, error) {
	b, err := p.d.read(codec.RegWakeupOnCharge, codec.LenConfigByte)
	if err != nil {
		return codec.WakeUpOnCharge{}, err
	}
	return codec.DecodeWakeUpOnCharge(b), nil
}

func (p *Power) SetWakeUpOnCharge(w codec.WakeUpOnCharge) error {
	b, err := codec.EncodeWakeUpOnCharge(w)
	if err != nil {
		return err
	}
	return p.d.verify(codec.RegWakeupOnCharge, b)
}

func (p *Power) Watchdog() (codec.Watchdog, error) {
	b, err := p.d.read(codec.RegWatchdog, codec.LenWatchdog)
	if err != nil {
		return codec.Watchdog{}, err
	}
	return codec.DecodeWatchdog(b), nil
}

func (p *Power) SetWatchdog(w codec.Watchdog) error {
	b, err := codec.EncodeWatchdog(w)
	if err != nil {
		return err
	}
	return p.d.verify(codec.RegWatchdog, b)
}

// SystemPowerSwitch returns the current limit of the system switch in mA.
func (p *Power) SystemPowerSwitch() (int, error) {
	b, err := p.d.read(codec.RegSystemPowerSwitch, codec.LenConfigByte)
	if err != nil {
		return 0, err
	}
	return codec.DecodeSystemPowerSwitch(b), nil
}

func (p *Power) SetSystemPowerSwitch(mA int) error {
	b, err := codec.EncodeSystemPowerSwitch(mA)
	if err != nil {
		return err
	}
	return p.d.write(codec.RegSystemPowerSwitch, b)
}
