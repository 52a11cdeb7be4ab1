package codec

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"juicebus/internal/errcode"
)

func TestIoConfigRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pin  int
		c    IoConfig
	}{
		{"analog in", 1, IoConfig{Mode: IoAnalogIn, Pull: PullNone}},
		{"digital in with wakeup", 2, IoConfig{Mode: IoDigitalIn, Pull: PullUp, Wakeup: WakeupFalling}},
		{"digital out high", 1, IoConfig{Mode: IoDigitalOutPP, Pull: PullNone, Value: 1, NonVolatile: true}},
		{"open drain low", 2, IoConfig{Mode: IoDigitalIOOD, Pull: PullDown}},
		{"pwm", 2, IoConfig{Mode: IoPwmOutPP, Pull: PullNone, Period: 1000, DutyCycle: 50}},
		{"pwm fractional duty", 1, IoConfig{Mode: IoPwmOutOD, Pull: PullUp, Period: 2, DutyCycle: 33.33}},
		{"not used", 1, IoConfig{Mode: IoNotUsed, Pull: PullNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := EncodeIoConfig(tt.pin, tt.c)
			if err != nil {
				t.Fatalf("EncodeIoConfig: %v", err)
			}
			if got := DecodeIoConfig(d); got != tt.c {
				t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, tt.c)
			}
		})
	}
}

func TestIoConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		pin  int
		c    IoConfig
	}{
		{"analog on pin 2", 2, IoConfig{Mode: IoAnalogIn, Pull: PullNone}},
		{"no such pin", 3, IoConfig{Mode: IoNotUsed, Pull: PullNone}},
		{"unknown pull", 1, IoConfig{Mode: IoNotUsed, Pull: PullUnknown}},
		{"digital value 2", 1, IoConfig{Mode: IoDigitalOutPP, Pull: PullNone, Value: 2}},
		{"odd pwm period", 1, IoConfig{Mode: IoPwmOutPP, Pull: PullNone, Period: 1001, DutyCycle: 10}},
		{"pwm duty above 100", 1, IoConfig{Mode: IoPwmOutPP, Pull: PullNone, Period: 1000, DutyCycle: 100.5}},
		{"input without wakeup", 1, IoConfig{Mode: IoDigitalIn, Pull: PullNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeIoConfig(tt.pin, tt.c); !errors.Is(err, errcode.BadArgument) {
				t.Errorf("Expected BAD_ARGUMENT, got %v", err)
			}
		})
	}
}

func TestIoRegisters(t *testing.T) {
	if r, _ := IoConfigRegister(2); r != 0x77 {
		t.Errorf("IoConfigRegister(2): Expected 0x77, got 0x%02X", r)
	}
	if r, _ := IoAccessRegister(1); r != 0x75 {
		t.Errorf("IoAccessRegister(1): Expected 0x75, got 0x%02X", r)
	}
	if _, err := IoConfigRegister(0); !errors.Is(err, errcode.BadArgument) {
		t.Errorf("Expected BAD_ARGUMENT, got %v", err)
	}
}

func TestIoAccess(t *testing.T) {
	if got := DecodeIoDigitalInput([]byte{0x01, 0x00}); got != 1 {
		t.Errorf("DecodeIoDigitalInput: Expected 1, got %d", got)
	}
	if got := DecodeIoDigitalOutput([]byte{0x00, 0x01}); got != 1 {
		t.Errorf("DecodeIoDigitalOutput: Expected 1, got %d", got)
	}
	if _, err := EncodeIoDigitalOutput(3); !errors.Is(err, errcode.BadArgument) {
		t.Errorf("Expected BAD_ARGUMENT, got %v", err)
	}
	d, err := EncodeIoPWM(25)
	if err != nil {
		t.Fatal(err)
	}
	if got := DecodeIoPWM(d); got != 25 {
		t.Errorf("DecodeIoPWM: Expected 25, got %v", got)
	}
	if got := DecodeIoPWM([]byte{0xFF, 0xFF}); !math.IsNaN(got) {
		t.Errorf("Expected NaN for out of range duty, got %v", got)
	}
}

func TestPowerInputsConfig(t *testing.T) {
	c := PowerInputsConfig{
		Precedence:           PrecedenceSolar,
		GPIOInEnabled:        true,
		USBMicroCurrentLimit: "2.5A",
		USBMicroDPM:          "4.52V",
		NonVolatile:          true,
	}
	d, err := EncodePowerInputsConfig(c)
	if err != nil {
		t.Fatal(err)
	}
	if d[0] != 0x80|0x40|0x08|0x02|0x01 {
		t.Errorf("Expected 0xCB, got 0x%02X", d[0])
	}
	if got := DecodePowerInputsConfig(d); got != c {
		t.Errorf("round trip mismatch: %+v", got)
	}
	c.USBMicroDPM = "5V"
	if _, err := EncodePowerInputsConfig(c); !errors.Is(err, errcode.BadArgument) {
		t.Errorf("Expected BAD_ARGUMENT, got %v", err)
	}
}

func TestWatchdog(t *testing.T) {
	tests := []struct {
		name string
		w    Watchdog
		raw  []byte
		back int
	}{
		{"disabled", Watchdog{}, []byte{0x00, 0x00}, 0},
		{"short period", Watchdog{Minutes: 5, NonVolatile: true}, []byte{0x05, 0x80}, 5},
		{"max fine period", Watchdog{Minutes: 0x3FFF}, []byte{0xFF, 0x3F}, 0x3FFF},
		{"coarse period", Watchdog{Minutes: 0x4001}, []byte{0x00, 0x50}, 0x4000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := EncodeWatchdog(tt.w)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(d, tt.raw) {
				t.Errorf("Expected % X, got % X", tt.raw, d)
			}
			got := DecodeWatchdog(d)
			if got.Minutes != tt.back || got.NonVolatile != tt.w.NonVolatile {
				t.Errorf("decode: Expected %d minutes, got %+v", tt.back, got)
			}
		})
	}
	if _, err := EncodeWatchdog(Watchdog{Minutes: -1}); !errors.Is(err, errcode.BadArgument) {
		t.Errorf("Expected BAD_ARGUMENT, got %v", err)
	}
}

func TestWakeUpOnCharge(t *testing.T) {
	for _, w := range []WakeUpOnCharge{
		{Disabled: true},
		{Disabled: true, NonVolatile: true},
		{Level: 0},
		{Level: 100, NonVolatile: true},
	} {
		d, err := EncodeWakeUpOnCharge(w)
		if err != nil {
			t.Fatalf("%+v: %v", w, err)
		}
		if got := DecodeWakeUpOnCharge(d); got != w {
			t.Errorf("round trip: Expected %+v, got %+v", w, got)
		}
	}
	if _, err := EncodeWakeUpOnCharge(WakeUpOnCharge{Level: 101}); !errors.Is(err, errcode.BadArgument) {
		t.Errorf("Expected BAD_ARGUMENT, got %v", err)
	}
}

func TestPowerScalars(t *testing.T) {
	d, err := EncodeSystemPowerSwitch(2100)
	if err != nil || d[0] != 21 || DecodeSystemPowerSwitch(d) != 2100 {
		t.Errorf("EncodeSystemPowerSwitch(2100) = % X, %v", d, err)
	}
	if _, err := EncodeSystemPowerSwitch(1000); !errors.Is(err, errcode.BadArgument) {
		t.Errorf("Expected BAD_ARGUMENT for 1000 mA, got %v", err)
	}
	if _, err := EncodePowerOff(256); !errors.Is(err, errcode.BadArgument) {
		t.Errorf("Expected BAD_ARGUMENT for power off delay, got %v", err)
	}
	if r, err := AddressRegister(2); err != nil || r != 0x7D {
		t.Errorf("AddressRegister(2) = 0x%02X, %v", r, err)
	}
	if _, err := AddressRegister(0); !errors.Is(err, errcode.BadArgument) {
		t.Errorf("Expected BAD_ARGUMENT for slot 0, got %v", err)
	}
	for _, a := range []int{0x07, 0x78} {
		if _, err := EncodeAddress(a); !errors.Is(err, errcode.BadArgument) {
			t.Errorf("EncodeAddress(0x%02X): Expected BAD_ARGUMENT, got %v", a, err)
		}
	}
	if _, err := EncodeIdEepromAddress(0x51); !errors.Is(err, errcode.BadArgument) {
		t.Errorf("Expected BAD_ARGUMENT for eeprom 0x51, got %v", err)
	}
}

func TestEnumsAndTempSense(t *testing.T) {
	d, err := EncodeEnum("DCDC", PowerRegulatorConfigs)
	if err != nil || d[0] != 2 {
		t.Errorf("EncodeEnum(DCDC) = % X, %v", d, err)
	}
	if got := DecodeEnum([]byte{9}, RunPinConfigs); got != Unknown {
		t.Errorf("Expected UNKNOWN, got %s", got)
	}

	d, err = EncodeTempSenseConfig([]byte{0xF1}, "AUTO_DETECT")
	if err != nil || d[0] != 0xF3 {
		t.Errorf("EncodeTempSenseConfig = % X, %v", d, err)
	}
	if got := DecodeTempSenseConfig(d); got != "AUTO_DETECT" {
		t.Errorf("Expected AUTO_DETECT, got %s", got)
	}

	cc := ChargingConfig{Enabled: true, NonVolatile: true}
	if got := DecodeChargingConfig(EncodeChargingConfig(cc)); got != cc {
		t.Errorf("charging config round trip: %+v", got)
	}
}
