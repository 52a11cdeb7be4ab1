package codec

import (
	"math"

	"juicebus/internal/errcode"
)

type IoMode string

const (
	IoNotUsed      IoMode = "NOT_USED"
	IoAnalogIn     IoMode = "ANALOG_IN"
	IoDigitalIn    IoMode = "DIGITAL_IN"
	IoDigitalOutPP IoMode = "DIGITAL_OUT_PUSHPULL"
	IoDigitalIOOD  IoMode = "DIGITAL_IO_OPEN_DRAIN"
	IoPwmOutPP     IoMode = "PWM_OUT_PUSHPULL"
	IoPwmOutOD     IoMode = "PWM_OUT_OPEN_DRAIN"
	IoModeUnknown  IoMode = Unknown
)

var ioModes = []IoMode{IoNotUsed, IoAnalogIn, IoDigitalIn, IoDigitalOutPP, IoDigitalIOOD, IoPwmOutPP, IoPwmOutOD}

// IoPins is the number of configurable IO pins. Pin numbers start at 1.
const IoPins = 2

// IoSupportedModes returns the modes a pin accepts; only pin 1 has an ADC.
func IoSupportedModes(pin int) []IoMode {
	switch pin {
	case 1:
		return ioModes
	case 2:
		return []IoMode{IoNotUsed, IoDigitalIn, IoDigitalOutPP, IoDigitalIOOD, IoPwmOutPP, IoPwmOutOD}
	}
	return nil
}

type IoPull string

const (
	PullNone    IoPull = "NOPULL"
	PullDown    IoPull = "PULLDOWN"
	PullUp      IoPull = "PULLUP"
	PullUnknown IoPull = Unknown
)

var ioPulls = []IoPull{PullNone, PullDown, PullUp}

type IoWakeup string

const (
	WakeupNone    IoWakeup = "NO_WAKEUP"
	WakeupFalling IoWakeup = "FALLING_EDGE"
	WakeupRising  IoWakeup = "RISING_EDGE"
	WakeupUnknown IoWakeup = Unknown
)

var ioWakeups = []IoWakeup{WakeupNone, WakeupFalling, WakeupRising}

// IoConfig is a pin configuration. Which of Value, Wakeup, Period and
// DutyCycle are meaningful depends on Mode.
type IoConfig struct {
	Mode        IoMode   `json:"mode"`
	Pull        IoPull   `json:"pull"`
	Value       int      `json:"value,omitempty"`      // digital out: 0 or 1
	Wakeup      IoWakeup `json:"wakeup,omitempty"`     // digital in
	Period      int      `json:"period,omitempty"`     // PWM, µs, 2 µs resolution
	DutyCycle   float64  `json:"duty_cycle,omitempty"` // PWM, percent
	NonVolatile bool     `json:"non_volatile"`
}

func isDigitalOut(m IoMode) bool { return m == IoDigitalOutPP || m == IoDigitalIOOD }
func isPWM(m IoMode) bool        { return m == IoPwmOutPP || m == IoPwmOutOD }

func IoConfigRegister(pin int) (byte, error) {
	if pin < 1 || pin > IoPins {
		return 0, errcode.BadArgument
	}
	return byte(RegIoConfig + 5*(pin-1)), nil
}

func IoAccessRegister(pin int) (byte, error) {
	if pin < 1 || pin > IoPins {
		return 0, errcode.BadArgument
	}
	return byte(RegIoAccess + 5*(pin-1)), nil
}

func DecodeIoConfig(d []byte) IoConfig {
	c := IoConfig{
		Mode:        lookup(ioModes, int(d[0]&0x0F), IoModeUnknown),
		Pull:        lookup(ioPulls, int(d[0]>>4)&0x03, PullUnknown),
		NonVolatile: d[0]&0x80 != 0,
	}
	switch {
	case isDigitalOut(c.Mode):
		c.Value = int(d[1] & 0x01)
	case isPWM(c.Mode):
		c.Period = (int(le16(d[1], d[2])) + 1) * 2
		c.DutyCycle = decodeDuty(le16(d[3], d[4]))
	case c.Mode == IoDigitalIn:
		c.Wakeup = lookup(ioWakeups, int(d[1]&0x03), WakeupUnknown)
	}
	return c
}

func EncodeIoConfig(pin int, c IoConfig) ([]byte, error) {
	if index(IoSupportedModes(pin), c.Mode) < 0 {
		return nil, errcode.BadArgument
	}
	pull := index(ioPulls, c.Pull)
	if pull < 0 {
		return nil, errcode.BadArgument
	}
	d := make([]byte, LenIoConfig)
	d[0] = byte(index(ioModes, c.Mode)) | byte(pull)<<4
	if c.NonVolatile {
		d[0] |= 0x80
	}
	switch {
	case isDigitalOut(c.Mode):
		if c.Value != 0 && c.Value != 1 {
			return nil, errcode.BadArgument
		}
		d[1] = byte(c.Value)
	case isPWM(c.Mode):
		if c.Period < 2 || c.Period > 65536*2 || c.Period%2 != 0 {
			return nil, errcode.BadArgument
		}
		putLE16(d[1:3], uint16(c.Period/2-1))
		dc, err := encodeDuty(c.DutyCycle)
		if err != nil {
			return nil, err
		}
		putLE16(d[3:5], dc)
	case c.Mode == IoDigitalIn:
		w := index(ioWakeups, c.Wakeup)
		if w < 0 {
			return nil, errcode.BadArgument
		}
		d[1] = byte(w)
	}
	return d, nil
}

// Duty cycle is a 16-bit fraction of 65534; 0xFFFF means out of range.
const dutyFull = 65534

func encodeDuty(pct float64) (uint16, error) {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return 0, errcode.BadArgument
	}
	return uint16(math.Round(pct * dutyFull / 100)), nil
}

func decodeDuty(raw uint16) float64 {
	if raw == 0xFFFF {
		return math.NaN()
	}
	return math.Round(float64(raw)*100/dutyFull*100) / 100
}

// DecodeIoDigitalInput reads the input level from the pin access register.
func DecodeIoDigitalInput(d []byte) int { return int(d[0] & 0x01) }

// DecodeIoDigitalOutput reads the driven level from the pin access register.
func DecodeIoDigitalOutput(d []byte) int { return int(d[1] & 0x01) }

func EncodeIoDigitalOutput(v int) ([]byte, error) {
	if v != 0 && v != 1 {
		return nil, errcode.BadArgument
	}
	return []byte{0x00, byte(v)}, nil
}

// DecodeIoPWM returns the duty cycle in percent, NaN when the firmware
// reports it out of range.
func DecodeIoPWM(d []byte) float64 { return decodeDuty(le16(d[0], d[1])) }

func EncodeIoPWM(pct float64) ([]byte, error) {
	dc, err := encodeDuty(pct)
	if err != nil {
		return nil, err
	}
	d := make([]byte, LenIoAccess)
	putLE16(d, dc)
	return d, nil
}
