package codec

import "juicebus/internal/errcode"

// Unknown is reported for any table index the firmware may send that this
// host does not know about.
const Unknown = "UNKNOWN"

type BatteryState string

const (
	BatteryNormal         BatteryState = "NORMAL"
	BatteryChargingFromIn BatteryState = "CHARGING_FROM_IN"
	BatteryChargingFrom5V BatteryState = "CHARGING_FROM_5V_IO"
	BatteryNotPresent     BatteryState = "NOT_PRESENT"
	BatteryStateUnknown   BatteryState = Unknown
)

var batteryStates = []BatteryState{BatteryNormal, BatteryChargingFromIn, BatteryChargingFrom5V, BatteryNotPresent}

type PowerInputState string

const (
	PowerInputNotPresent PowerInputState = "NOT_PRESENT"
	PowerInputBad        PowerInputState = "BAD"
	PowerInputWeak       PowerInputState = "WEAK"
	PowerInputPresent    PowerInputState = "PRESENT"
	PowerInputUnknown    PowerInputState = Unknown
)

var powerInputStates = []PowerInputState{PowerInputNotPresent, PowerInputBad, PowerInputWeak, PowerInputPresent}

// lookup returns table[i] or fallback when i is out of range.
func lookup[T any](table []T, i int, fallback T) T {
	if i < 0 || i >= len(table) {
		return fallback
	}
	return table[i]
}

func index[T comparable](table []T, v T) int {
	for i, x := range table {
		if x == v {
			return i
		}
	}
	return -1
}

// Status is the decoded status register.
type Status struct {
	IsFault        bool            `json:"isFault"`
	IsButton       bool            `json:"isButton"`
	Battery        BatteryState    `json:"battery"`
	PowerInput     PowerInputState `json:"powerInput"`
	PowerInput5vIo PowerInputState `json:"powerInput5vIo"`
}

func DecodeStatus(d []byte) Status {
	b := d[0]
	return Status{
		IsFault:        b&0x01 != 0,
		IsButton:       b&0x02 != 0,
		Battery:        lookup(batteryStates, int(b>>2)&0x03, BatteryStateUnknown),
		PowerInput:     lookup(powerInputStates, int(b>>4)&0x03, PowerInputUnknown),
		PowerInput5vIo: lookup(powerInputStates, int(b>>6)&0x03, PowerInputUnknown),
	}
}

type ChargingTemp string

const (
	ChargingTempNormal  ChargingTemp = "NORMAL"
	ChargingTempSuspend ChargingTemp = "SUSPEND"
	ChargingTempCool    ChargingTemp = "COOL"
	ChargingTempWarm    ChargingTemp = "WARM"
)

var chargingTemps = []ChargingTemp{ChargingTempNormal, ChargingTempSuspend, ChargingTempCool, ChargingTempWarm}

// Fault flag names accepted by EncodeFaultReset.
const (
	FaultButtonPowerOff    = "button_power_off"
	FaultForcedPowerOff    = "forced_power_off"
	FaultForcedSysPowerOff = "forced_sys_power_off"
	FaultWatchdogReset     = "watchdog_reset"
)

var faultBits = map[string]byte{
	FaultButtonPowerOff:    0x01,
	FaultForcedPowerOff:    0x02,
	FaultForcedSysPowerOff: 0x04,
	FaultWatchdogReset:     0x08,
}

// Faults is the decoded fault event register.
type Faults struct {
	ButtonPowerOff        bool         `json:"button_power_off"`
	ForcedPowerOff        bool         `json:"forced_power_off"`
	ForcedSysPowerOff     bool         `json:"forced_sys_power_off"`
	WatchdogReset         bool         `json:"watchdog_reset"`
	BatteryProfileInvalid bool         `json:"battery_profile_invalid"`
	ChargingTemperature   ChargingTemp `json:"charging_temperature_fault"`
}

func DecodeFaults(d []byte) Faults {
	b := d[0]
	return Faults{
		ButtonPowerOff:        b&0x01 != 0,
		ForcedPowerOff:        b&0x02 != 0,
		ForcedSysPowerOff:     b&0x04 != 0,
		WatchdogReset:         b&0x08 != 0,
		BatteryProfileInvalid: b&0x20 != 0,
		ChargingTemperature:   lookup(chargingTemps, int(b>>6)&0x03, ChargingTempNormal),
	}
}

// EncodeFaultReset builds the mask written to the fault register: the
// firmware ANDs it into the flags, so a cleared bit acknowledges that flag.
func EncodeFaultReset(flags []string) ([]byte, error) {
	d := byte(0xFF)
	for _, f := range flags {
		bit, ok := faultBits[f]
		if !ok {
			return nil, errcode.BadArgument
		}
		d &^= bit
	}
	return []byte{d}, nil
}

type ButtonEvent string

const (
	EventNone        ButtonEvent = "NO_EVENT"
	EventPress       ButtonEvent = "PRESS"
	EventRelease     ButtonEvent = "RELEASE"
	EventSinglePress ButtonEvent = "SINGLE_PRESS"
	EventDoublePress ButtonEvent = "DOUBLE_PRESS"
	EventLongPress1  ButtonEvent = "LONG_PRESS1"
	EventLongPress2  ButtonEvent = "LONG_PRESS2"
	EventUnknown     ButtonEvent = Unknown
)

var buttonEvents = []ButtonEvent{EventNone, EventPress, EventRelease, EventSinglePress, EventDoublePress, EventLongPress1, EventLongPress2}

// Buttons in register order.
var Buttons = []string{"SW1", "SW2", "SW3"}

// ButtonIndex maps a button name to its index, or -1.
func ButtonIndex(name string) int { return index(Buttons, name) }

// ButtonEvents holds the pending event of each button.
type ButtonEvents struct {
	SW1 ButtonEvent `json:"SW1"`
	SW2 ButtonEvent `json:"SW2"`
	SW3 ButtonEvent `json:"SW3"`
}

func DecodeButtonEvents(d []byte) ButtonEvents {
	return ButtonEvents{
		SW1: lookup(buttonEvents, int(d[0]&0x0F), EventUnknown),
		SW2: lookup(buttonEvents, int(d[0]>>4), EventUnknown),
		SW3: lookup(buttonEvents, int(d[1]&0x0F), EventUnknown),
	}
}

// EncodeButtonAccept builds the AND mask that clears the event of one button.
func EncodeButtonAccept(button string) ([]byte, error) {
	switch ButtonIndex(button) {
	case 0:
		return []byte{0xF0, 0xFF}, nil
	case 1:
		return []byte{0x0F, 0xFF}, nil
	case 2:
		return []byte{0xFF, 0xF0}, nil
	}
	return nil, errcode.BadArgument
}

// DecodeUint16 decodes an unsigned little-endian reading (mV).
func DecodeUint16(d []byte) int { return int(le16(d[0], d[1])) }

// DecodeInt16 decodes a signed little-endian reading (mA).
func DecodeInt16(d []byte) int { return int(int16(le16(d[0], d[1]))) }

// DecodeTemperature decodes the battery temperature in °C from the low byte.
func DecodeTemperature(d []byte) int { return int(int8(d[0])) }
