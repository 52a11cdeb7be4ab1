package codec

import (
	"bytes"

	"juicebus/internal/errcode"
)

// Mode selects how an alarm field is matched.
type Mode uint8

const (
	// Every ignores the field.
	Every Mode = iota
	// Fixed fires on one exact value.
	Fixed
	// Periodic fires every Period minutes (minute field only).
	Periodic
	// Set fires on any member of a set (hours and weekdays).
	Set
)

func (m Mode) String() string {
	switch m {
	case Every:
		return "EVERY"
	case Fixed:
		return "FIXED"
	case Periodic:
		return "PERIODIC"
	case Set:
		return "SET"
	}
	return Unknown
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

type MinuteRule struct {
	Mode   Mode `json:"mode"`
	Minute int  `json:"minute,omitempty"`
	Period int  `json:"period,omitempty"`
}

func EveryMinute() MinuteRule         { return MinuteRule{Mode: Every} }
func MinuteAt(m int) MinuteRule       { return MinuteRule{Mode: Fixed, Minute: m} }
func MinutePeriodic(p int) MinuteRule { return MinuteRule{Mode: Periodic, Period: p} }

type HourRule struct {
	Mode  Mode  `json:"mode"`
	Hour  Hour  `json:"hour"`
	Hours []int `json:"hours,omitempty"`
}

func EveryHour() HourRule           { return HourRule{Mode: Every} }
func HourAt(h Hour) HourRule        { return HourRule{Mode: Fixed, Hour: h} }
func HoursIn(hours ...int) HourRule { return HourRule{Mode: Set, Hours: hours} }

// DayRule matches either the day of month or the weekday, never both.
type DayRule struct {
	Weekday  bool  `json:"weekday"`
	Mode     Mode  `json:"mode"`
	Value    int   `json:"value,omitempty"`
	Weekdays []int `json:"weekdays,omitempty"`
}

func EveryDay() DayRule            { return DayRule{Mode: Every} }
func DayAt(d int) DayRule          { return DayRule{Mode: Fixed, Value: d} }
func EveryWeekday() DayRule        { return DayRule{Weekday: true, Mode: Every} }
func WeekdayAt(w int) DayRule      { return DayRule{Weekday: true, Mode: Fixed, Value: w} }
func WeekdaysIn(ws ...int) DayRule { return DayRule{Weekday: true, Mode: Set, Weekdays: ws} }

// Alarm is the RTC alarm. The zero value fires every minute at second 0.
type Alarm struct {
	Second int        `json:"second"`
	Minute MinuteRule `json:"minute"`
	Hour   HourRule   `json:"hour"`
	Day    DayRule    `json:"day"`
}

// Alarm image layout.
const (
	alarmSecond    = 0
	alarmMinute    = 1
	alarmHour      = 2
	alarmDay       = 3
	alarmHourMask  = 4 // 3 bytes, bit n = hour n
	alarmWdayMask  = 7 // bit n = weekday n
	alarmPeriod    = 8
	alarmWildcard  = 0x80
	alarmWeekdayOn = 0x40
	allHours       = 0xFFFFFF
)

func EncodeAlarm(a Alarm) ([]byte, error) {
	d := []byte{0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

	if a.Second < 0 || a.Second > 60 {
		return nil, errcode.InvalidSecond
	}
	d[alarmSecond] = toBCD(a.Second)

	switch m := a.Minute; m.Mode {
	case Every:
		d[alarmMinute] = alarmWildcard
	case Fixed:
		if m.Minute < 0 || m.Minute > 60 {
			return nil, errcode.InvalidMinute
		}
		d[alarmMinute] = toBCD(m.Minute)
	case Periodic:
		if m.Period < 1 || m.Period > 60 {
			return nil, errcode.InvalidMinutePeriod
		}
		d[alarmMinute] = alarmWildcard
		d[alarmPeriod] = byte(m.Period)
	default:
		return nil, errcode.InvalidMinute
	}

	switch h := a.Hour; h.Mode {
	case Every:
		d[alarmHour] = alarmWildcard
	case Fixed:
		if err := h.Hour.validate(); err != nil {
			return nil, err
		}
		d[alarmHour] = encodeHour(h.Hour)
	case Set:
		if len(h.Hours) == 0 {
			return nil, errcode.InvalidHour
		}
		var mask uint32
		for _, v := range h.Hours {
			if v < 0 || v > 23 {
				return nil, errcode.InvalidHour
			}
			mask |= 1 << v
		}
		d[alarmHour] = alarmWildcard
		d[alarmHourMask] = byte(mask)
		d[alarmHourMask+1] = byte(mask >> 8)
		d[alarmHourMask+2] = byte(mask >> 16)
	default:
		return nil, errcode.InvalidHour
	}

	if err := encodeDayRule(a.Day, d); err != nil {
		return nil, err
	}
	return d, nil
}

func encodeDayRule(r DayRule, d []byte) error {
	if !r.Weekday {
		switch r.Mode {
		case Every:
			d[alarmDay] = alarmWildcard
		case Fixed:
			if r.Value < 1 || r.Value > 31 {
				return errcode.InvalidDay
			}
			d[alarmDay] = toBCD(r.Value) & 0x3F
		default:
			return errcode.InvalidDay
		}
		return nil
	}
	switch r.Mode {
	case Every:
		d[alarmDay] = alarmWildcard | alarmWeekdayOn
	case Fixed:
		if r.Value < 1 || r.Value > 7 {
			return errcode.InvalidWeekday
		}
		d[alarmDay] = alarmWeekdayOn | byte(r.Value)
	case Set:
		if len(r.Weekdays) == 0 {
			return errcode.InvalidWeekday
		}
		var mask byte
		for _, w := range r.Weekdays {
			if w < 1 || w > 7 {
				return errcode.InvalidWeekday
			}
			mask |= 1 << w
		}
		d[alarmDay] = alarmWildcard | alarmWeekdayOn
		d[alarmWdayMask] = mask
	default:
		return errcode.InvalidWeekday
	}
	return nil
}

func DecodeAlarm(d []byte) Alarm {
	a := Alarm{Second: fromBCD(d[alarmSecond], 0x07)}

	switch p := int(d[alarmPeriod]); {
	case d[alarmMinute]&alarmWildcard == 0:
		a.Minute = MinuteAt(fromBCD(d[alarmMinute], 0x07))
	case p >= 1 && p <= 60:
		a.Minute = MinutePeriodic(p)
	default:
		a.Minute = EveryMinute()
	}

	if d[alarmHour]&alarmWildcard == 0 {
		a.Hour = HourAt(decodeHour(d[alarmHour]))
	} else {
		mask := uint32(d[alarmHourMask]) | uint32(d[alarmHourMask+1])<<8 | uint32(d[alarmHourMask+2])<<16
		if mask == allHours {
			a.Hour = EveryHour()
		} else {
			a.Hour = HourRule{Mode: Set, Hours: bitsSet(mask, 0, 23)}
		}
	}

	wildcard := d[alarmDay]&alarmWildcard != 0
	switch {
	case d[alarmDay]&alarmWeekdayOn == 0 && !wildcard:
		a.Day = DayAt(fromBCD(d[alarmDay], 0x03))
	case d[alarmDay]&alarmWeekdayOn == 0:
		a.Day = EveryDay()
	case !wildcard:
		a.Day = WeekdayAt(int(d[alarmDay] & 0x07))
	case d[alarmWdayMask] == 0xFF:
		a.Day = EveryWeekday()
	default:
		a.Day = DayRule{Weekday: true, Mode: Set, Weekdays: bitsSet(uint32(d[alarmWdayMask]), 1, 7)}
	}
	return a
}

func bitsSet(mask uint32, lo, hi int) []int {
	var out []int
	for i := lo; i <= hi; i++ {
		if mask&(1<<i) != 0 {
			out = append(out, i)
		}
	}
	return out
}

// EquivalentAlarm accepts a read-back that differs only in the hour
// representation of a fixed alarm hour.
func EquivalentAlarm(written, readBack []byte) bool {
	if len(written) != LenRtcAlarm || len(readBack) != LenRtcAlarm {
		return false
	}
	r := bytes.Clone(readBack)
	if hoursEquivalent(written[alarmHour], r[alarmHour]) {
		r[alarmHour] = written[alarmHour]
	}
	return bytes.Equal(written, r)
}

// ControlStatus is the RTC control/status register.
type ControlStatus struct {
	WakeupEnabled bool `json:"alarm_wakeup_enabled"`
	AlarmFlag     bool `json:"alarm_flag"`
}

const (
	ctrlAlarmWakeup = 0x01
	ctrlAlarmIE     = 0x04
	statusAlarmFlag = 0x01
)

func DecodeControlStatus(d []byte) ControlStatus {
	return ControlStatus{
		WakeupEnabled: d[0]&ctrlAlarmWakeup != 0 && d[0]&ctrlAlarmIE != 0,
		AlarmFlag:     d[1]&statusAlarmFlag != 0,
	}
}

// ClearAlarmFlag returns the image with the alarm flag cleared, and whether
// it differs from d.
func ClearAlarmFlag(d []byte) ([]byte, bool) {
	if d[1]&statusAlarmFlag == 0 {
		return d, false
	}
	out := bytes.Clone(d)
	out[1] &^= statusAlarmFlag
	return out, true
}

// SetWakeupEnabled returns the image with alarm wakeup switched on or off,
// and whether it differs from d.
func SetWakeupEnabled(d []byte, on bool) ([]byte, bool) {
	if DecodeControlStatus(d).WakeupEnabled == on {
		return d, false
	}
	out := bytes.Clone(d)
	if on {
		out[0] |= ctrlAlarmWakeup | ctrlAlarmIE
	} else {
		out[0] &^= ctrlAlarmWakeup
	}
	return out, true
}
