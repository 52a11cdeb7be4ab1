package codec

import (
	"fmt"

	"juicebus/internal/errcode"
)

// Function is a button action. Its byte encoding splits into a namespace in
// the high nibble and an index in the low nibble.
type Function string

const (
	NoFunc          Function = "NO_FUNC"
	FunctionUnknown Function = Unknown
)

const (
	nsHardware = 0x00
	nsSystem   = 0x10
	nsUser     = 0x20
)

// Hardware functions, encoded 0x01..0x03.
var HardFunctions = []Function{"HARD_FUNC_POWER_ON", "HARD_FUNC_POWER_OFF", "HARD_FUNC_RESET"}

// System functions, encoded 0x11..0x14.
var SysFunctions = []Function{"SYS_FUNC_HALT", "SYS_FUNC_HALT_POW_OFF", "SYS_FUNC_SYS_OFF_HALT", "SYS_FUNC_REBOOT"}

// User functions, encoded 0x20+k: USER_EVENT for k=0, USER_FUNCk for 1..15.
var UserFunctions = userFunctions()

func userFunctions() []Function {
	fs := []Function{"USER_EVENT"}
	for i := 1; i <= 15; i++ {
		fs = append(fs, Function(fmt.Sprintf("USER_FUNC%d", i)))
	}
	return fs
}

// DecodeFunction never fails; bytes outside every namespace decode to UNKNOWN.
func DecodeFunction(b byte) Function {
	i := int(b & 0x0F)
	switch b & 0xF0 {
	case nsHardware:
		if i == 0 {
			return NoFunc
		}
		return lookup(HardFunctions, i-1, FunctionUnknown)
	case nsSystem:
		return lookup(SysFunctions, i-1, FunctionUnknown)
	case nsUser:
		return lookup(UserFunctions, i, FunctionUnknown)
	}
	return FunctionUnknown
}

func EncodeFunction(f Function) (byte, error) {
	if f == NoFunc {
		return 0x00, nil
	}
	if i := index(HardFunctions, f); i >= 0 {
		return nsHardware | byte(i+1), nil
	}
	if i := index(SysFunctions, f); i >= 0 {
		return nsSystem | byte(i+1), nil
	}
	if i := index(UserFunctions, f); i >= 0 {
		return nsUser | byte(i), nil
	}
	return 0, errcode.BadArgument
}

// ButtonConfigEvents lists the configurable events in register order.
var ButtonConfigEvents = []ButtonEvent{EventPress, EventRelease, EventSinglePress, EventDoublePress, EventLongPress1, EventLongPress2}

// ButtonAction binds a function to an event. Parameter is a duration in ms
// stored with 100 ms resolution.
type ButtonAction struct {
	Function  Function `json:"function"`
	Parameter int      `json:"parameter"`
}

// ButtonConfig is indexed like ButtonConfigEvents.
type ButtonConfig [6]ButtonAction

// Action returns the binding of ev, or false if ev is not configurable.
func (c ButtonConfig) Action(ev ButtonEvent) (ButtonAction, bool) {
	i := index(ButtonConfigEvents, ev)
	if i < 0 {
		return ButtonAction{}, false
	}
	return c[i], true
}

func DecodeButtonConfig(d []byte) ButtonConfig {
	var c ButtonConfig
	for i := range c {
		c[i] = ButtonAction{
			Function:  DecodeFunction(d[2*i]),
			Parameter: int(d[2*i+1]) * 100,
		}
	}
	return c
}

func EncodeButtonConfig(c ButtonConfig) ([]byte, error) {
	d := make([]byte, LenButtonConfig)
	for i, a := range c {
		f, err := EncodeFunction(a.Function)
		if err != nil {
			return nil, err
		}
		if a.Parameter < 0 || a.Parameter > 255*100 {
			return nil, errcode.BadArgument
		}
		d[2*i] = f
		d[2*i+1] = byte(a.Parameter / 100)
	}
	return d, nil
}
