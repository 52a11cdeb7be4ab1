package juice

import "juicebus/internal/codec"

// Status reads live state: flags, events, analog readings, LED and IO pin
// levels.
type Status struct{ d *dev }

func (s *Status) Status() (codec.Status, error) {
	b, err := s.d.read(codec.RegStatus, codec.LenStatus)
	if err != nil {
		return codec.Status{}, err
	}
	return codec.DecodeStatus(b), nil
}

func (s *Status) Faults() (codec.Faults, error) {
	b, err := s.d.read(codec.RegFaultEvent, codec.LenFaultEvent)
	if err != nil {
		return codec.Faults{}, err
	}
	return codec.DecodeFaults(b), nil
}

// ResetFaults acknowledges the named fault flags.
func (s *Status) ResetFaults(flags ...string) error {
	b, err := codec.EncodeFaultReset(flags)
	if err != nil {
		return err
	}
	return s.d.write(codec.RegFaultEvent, b)
}

func (s *Status) ButtonEvents() (codec.ButtonEvents, error) {
	b, err := s.d.read(codec.RegButtonEvent, codec.LenButtonEvent)
	if err != nil {
		return codec.ButtonEvents{}, err
	}
	return codec.DecodeButtonEvents(b), nil
}

// AcceptButtonEvent clears the pending event of one button.
func (s *Status) AcceptButtonEvent(button string) error {
	b, err := codec.EncodeButtonAccept(button)
	if err != nil {
		return err
	}
	return s.d.write(codec.RegButtonEvent, b)
}

// ChargeLevel returns the state of charge in percent.
func (s *Status) ChargeLevel() (int, error) {
	b, err := s.d.readByte(codec.RegChargeLevel)
	return int(b), err
}

// BatteryTemperature returns °C.
func (s *Status) BatteryTemperature() (int, error) {
	b, err := s.d.read(codec.RegBatteryTemp, codec.LenAnalog)
	if err != nil {
		return 0, err
	}
	return codec.DecodeTemperature(b), nil
}

func (s *Status) analog(reg byte, signed bool) (int, error) {
	b, err := s.d.read(reg, codec.LenAnalog)
	if err != nil {
		return 0, err
	}
	if signed {
		return codec.DecodeInt16(b), nil
	}
	return codec.DecodeUint16(b), nil
}

// BatteryVoltage returns mV.
func (s *Status) BatteryVoltage() (int, error) { return s.analog(codec.RegBatteryVoltage, false) }

// BatteryCurrent returns mA, negative while charging.
func (s *Status) BatteryCurrent() (int, error) { return s.analog(codec.RegBatteryCurrent, true) }

// IoVoltage returns mV on the 5V GPIO rail.
func (s *Status) IoVoltage() (int, error) { return s.analog(codec.RegIoVoltage, false) }

// IoCurrent returns mA on the 5V GPIO rail.
func (s *Status) IoCurrent() (int, error) { return s.analog(codec.RegIoCurrent, true) }

func (s *Status) LedState(led string) (codec.RGB, error) {
	reg, err := ledRegister(codec.RegLedState, led)
	if err != nil {
		return codec.RGB{}, err
	}
	b, err := s.d.read(reg, codec.LenLedState)
	if err != nil {
		return codec.RGB{}, err
	}
	return codec.DecodeRGB(b), nil
}

// SetLedState drives a USER_LED. The write is not verified.
func (s *Status) SetLedState(led string, c codec.RGB) error {
	reg, err := ledRegister(codec.RegLedState, led)
	if err != nil {
		return err
	}
	return s.d.write(reg, codec.EncodeRGB(c))
}

func (s *Status) LedBlink(led string) (codec.LedBlink, error) {
	reg, err := ledRegister(codec.RegLedBlink, led)
	if err != nil {
		return codec.LedBlink{}, err
	}
	b, err := s.d.read(reg, codec.LenLedBlink)
	if err != nil {
		return codec.LedBlink{}, err
	}
	return codec.DecodeLedBlink(b), nil
}

func (s *Status) SetLedBlink(led string, blink codec.LedBlink) error {
	reg, err := ledRegister(codec.RegLedBlink, led)
	if err != nil {
		return err
	}
	b, err := codec.EncodeLedBlink(blink)
	if err != nil {
		return err
	}
	return s.d.write(reg, b)
}

func (s *Status) ioAccess(pin int) ([]byte, error) {
	reg, err := codec.IoAccessRegister(pin)
	if err != nil {
		return nil, err
	}
	return s.d.read(reg, codec.LenIoAccess)
}

func (s *Status) IoDigitalInput(pin int) (int, error) {
	b, err := s.ioAccess(pin)
	if err != nil {
		return 0, err
	}
	return codec.DecodeIoDigitalInput(b), nil
}

func (s *Status) IoDigitalOutput(pin int) (int, error) {
	b, err := s.ioAccess(pin)
	if err != nil {
		return 0, err
	}
	return codec.DecodeIoDigitalOutput(b), nil
}

func (s *Status) SetIoDigitalOutput(pin, v int) error {
	reg, err := codec.IoAccessRegister(pin)
	if err != nil {
		return err
	}
	b, err := codec.EncodeIoDigitalOutput(v)
	if err != nil {
		return err
	}
	return s.d.write(reg, b)
}

// IoAnalogInput returns mV. Only pins configured as ANALOG_IN report a
// meaningful value.
func (s *Status) IoAnalogInput(pin int) (int, error) {
	if pin != 1 {
		return 0, badArg("io analog", "pin has no ADC")
	}
	b, err := s.ioAccess(pin)
	if err != nil {
		return 0, err
	}
	return codec.DecodeUint16(b), nil
}

// IoPWM returns the duty cycle in percent.
func (s *Status) IoPWM(pin int) (float64, error) {
	b, err := s.ioAccess(pin)
	if err != nil {
		return 0, err
	}
	return codec.DecodeIoPWM(b), nil
}

func (s *Status) SetIoPWM(pin int, pct float64) error {
	reg, err := codec.IoAccessRegister(pin)
	if err != nil {
		return err
	}
	b, err := codec.EncodeIoPWM(pct)
	if err != nil {
		return err
	}
	return s.d.write(reg, b)
}
