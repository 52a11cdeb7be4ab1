package codec

import "juicebus/internal/errcode"

// Leds in register order.
var Leds = []string{"D1", "D2"}

// LedIndex maps a LED name to its index, or -1.
func LedIndex(name string) int { return index(Leds, name) }

type LedFunction string

const (
	LedNotUsed      LedFunction = "NOT_USED"
	LedChargeStatus LedFunction = "CHARGE_STATUS"
	LedUser         LedFunction = "USER_LED"
	LedUnknown      LedFunction = Unknown
)

var ledFunctions = []LedFunction{LedNotUsed, LedChargeStatus, LedUser}

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

type LedConfig struct {
	Function LedFunction `json:"function"`
	Color    RGB         `json:"parameter"`
}

func DecodeLedConfig(d []byte) LedConfig {
	return LedConfig{
		Function: lookup(ledFunctions, int(d[0]), LedUnknown),
		Color:    RGB{d[1], d[2], d[3]},
	}
}

func EncodeLedConfig(c LedConfig) ([]byte, error) {
	i := index(ledFunctions, c.Function)
	if i < 0 {
		return nil, errcode.BadArgument
	}
	return []byte{byte(i), c.Color.R, c.Color.G, c.Color.B}, nil
}

func DecodeRGB(d []byte) RGB { return RGB{d[0], d[1], d[2]} }

func EncodeRGB(c RGB) []byte { return []byte{c.R, c.G, c.B} }

// LedBlink describes a blink pattern: Count repetitions (255 = forever) of
// Color1 for Period1 then Color2 for Period2. Periods are in ms with 10 ms
// resolution.
type LedBlink struct {
	Count   int `json:"count"`
	Color1  RGB `json:"rgb1"`
	Period1 int `json:"period1"`
	Color2  RGB `json:"rgb2"`
	Period2 int `json:"period2"`
}

func DecodeLedBlink(d []byte) LedBlink {
	return LedBlink{
		Count:   int(d[0]),
		Color1:  RGB{d[1], d[2], d[3]},
		Period1: int(d[4]) * 10,
		Color2:  RGB{d[5], d[6], d[7]},
		Period2: int(d[8]) * 10,
	}
}

func EncodeLedBlink(b LedBlink) ([]byte, error) {
	if b.Count < 1 || b.Count > 255 {
		return nil, errcode.BadArgument
	}
	for _, p := range []int{b.Period1, b.Period2} {
		if p < 10 || p > 2550 {
			return nil, errcode.BadArgument
		}
	}
	return []byte{
		byte(b.Count),
		b.Color1.R, b.Color1.G, b.Color1.B, byte(b.Period1 / 10),
		b.Color2.R, b.Color2.G, b.Color2.B, byte(b.Period2 / 10),
	}, nil
}
