package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"juicebus/internal/errcode"
)

// Hour holds exactly one of the two hour representations the RTC supports:
// 24-hour (0-23) or 12-hour (1-12) with an AM/PM flag.
type Hour struct {
	Value   int
	Clock12 bool
	PM      bool
}

func H24(h int) Hour          { return Hour{Value: h} }
func H12(h int, pm bool) Hour { return Hour{Value: h, Clock12: true, PM: pm} }

// To24 returns the hour in 24-hour form.
func (h Hour) To24() int {
	if !h.Clock12 {
		return h.Value
	}
	v := h.Value % 12
	if h.PM {
		v += 12
	}
	return v
}

func (h Hour) String() string {
	if !h.Clock12 {
		return strconv.Itoa(h.Value)
	}
	if h.PM {
		return fmt.Sprintf("%d PM", h.Value)
	}
	return fmt.Sprintf("%d AM", h.Value)
}

func (h Hour) MarshalJSON() ([]byte, error) {
	if h.Clock12 {
		return json.Marshal(h.String())
	}
	return json.Marshal(h.Value)
}

// ParseHour accepts "23", "11 PM" or "11AM".
func ParseHour(s string) (Hour, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	var h Hour
	switch {
	case strings.HasSuffix(s, "PM"):
		h.Clock12, h.PM = true, true
		s = strings.TrimSpace(strings.TrimSuffix(s, "PM"))
	case strings.HasSuffix(s, "AM"):
		h.Clock12 = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "AM"))
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return Hour{}, errcode.InvalidHour
	}
	h.Value = v
	if err := h.validate(); err != nil {
		return Hour{}, err
	}
	return h, nil
}

func (h Hour) validate() error {
	if h.Clock12 {
		if h.Value < 1 || h.Value > 12 {
			return errcode.InvalidHour
		}
		return nil
	}
	if h.Value < 0 || h.Value > 23 {
		return errcode.InvalidHour
	}
	return nil
}

// Hour byte: bit 6 selects 12-hour form, bit 5 is PM in 12-hour form.
const (
	hour12Bit = 0x40
	hourPMBit = 0x20
)

func encodeHour(h Hour) byte {
	if !h.Clock12 {
		return toBCD(h.Value) & 0x3F
	}
	b := toBCD(h.Value)&0x1F | hour12Bit
	if h.PM {
		b |= hourPMBit
	}
	return b
}

func decodeHour(b byte) Hour {
	if b&hour12Bit == 0 {
		return H24(fromBCD(b, 0x03))
	}
	return H12(fromBCD(b, 0x01), b&hourPMBit != 0)
}

// DST is the daylight saving adjustment pending on the RTC.
type DST uint8

const (
	DSTNone DST = iota
	DSTSub1h
	DSTAdd1h
)

func (d DST) String() string {
	switch d {
	case DSTSub1h:
		return "SUB1H"
	case DSTAdd1h:
		return "ADD1H"
	}
	return "NONE"
}

func (d DST) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// DateTime is the RTC calendar. Weekday runs 1-7 starting on Monday and
// Subsecond counts 1/256 s.
type DateTime struct {
	Second         int  `json:"second"`
	Minute         int  `json:"minute"`
	Hour           Hour `json:"hour"`
	Weekday        int  `json:"weekday"`
	Day            int  `json:"day"`
	Month          int  `json:"month"`
	Year           int  `json:"year"`
	Subsecond      int  `json:"subsecond"`
	DaylightSaving DST  `json:"daylightSaving"`
	StoreOperation bool `json:"storeOperation"`
}

func EncodeDateTime(t DateTime) ([]byte, error) {
	switch {
	case t.Second < 0 || t.Second > 60:
		return nil, errcode.InvalidSecond
	case t.Minute < 0 || t.Minute > 60:
		return nil, errcode.InvalidMinute
	case t.Hour.validate() != nil:
		return nil, errcode.InvalidHour
	case t.Weekday < 1 || t.Weekday > 7:
		return nil, errcode.InvalidWeekday
	case t.Day < 1 || t.Day > 31:
		return nil, errcode.InvalidDay
	case t.Month < 1 || t.Month > 12:
		return nil, errcode.InvalidMonth
	case t.Year < 2000 || t.Year > 2099:
		return nil, errcode.InvalidYear
	case t.Subsecond < 0 || t.Subsecond > 255:
		return nil, errcode.InvalidSubsecond
	case t.DaylightSaving > DSTAdd1h:
		return nil, errcode.BadArgument
	}
	d := make([]byte, LenRtcTime)
	d[0] = toBCD(t.Second)
	d[1] = toBCD(t.Minute)
	d[2] = encodeHour(t.Hour)
	d[3] = byte(t.Weekday) & 0x07
	d[4] = toBCD(t.Day) & 0x3F
	d[5] = toBCD(t.Month) & 0x1F
	d[6] = toBCD(t.Year - 2000)
	d[7] = byte(t.Subsecond)
	d[8] = byte(t.DaylightSaving)
	if t.StoreOperation {
		d[8] |= 0x04
	}
	return d, nil
}

func DecodeDateTime(d []byte) DateTime {
	return DateTime{
		Second:         fromBCD(d[0], 0x07),
		Minute:         fromBCD(d[1], 0x07),
		Hour:           decodeHour(d[2]),
		Weekday:        int(d[3] & 0x07),
		Day:            fromBCD(d[4], 0x03),
		Month:          fromBCD(d[5], 0x01),
		Year:           fromBCD(d[6], 0x0F) + 2000,
		Subsecond:      int(d[7]),
		DaylightSaving: DST(d[8] & 0x03),
		StoreOperation: d[8]&0x04 != 0,
	}
}

// FromTime converts t to the RTC calendar in 24-hour form.
func FromTime(t time.Time) DateTime {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return DateTime{
		Second:    t.Second(),
		Minute:    t.Minute(),
		Hour:      H24(t.Hour()),
		Weekday:   wd,
		Day:       t.Day(),
		Month:     int(t.Month()),
		Year:      t.Year(),
		Subsecond: t.Nanosecond() / (int(time.Second) / 256),
	}
}

// Time returns the calendar as a time.Time in loc.
func (t DateTime) Time(loc *time.Location) time.Time {
	ns := t.Subsecond * int(time.Second) / 256
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour.To24(), t.Minute, t.Second, ns, loc)
}

// hoursEquivalent compares two fixed hour bytes in 24-hour form.
func hoursEquivalent(a, b byte) bool {
	if a&0x80 != 0 || b&0x80 != 0 {
		return a == b
	}
	return decodeHour(a).To24() == decodeHour(b).To24()
}

// EquivalentTime accepts an RTC read-back that differs from the written
// image only in hour representation, or by a clock tick of under two
// seconds between the write and the read.
func EquivalentTime(written, readBack []byte) bool {
	if len(written) != LenRtcTime || len(readBack) != LenRtcTime {
		return false
	}
	r := bytes.Clone(readBack)
	if hoursEquivalent(written[2], r[2]) {
		r[2] = written[2]
	}
	ws := fromBCD(written[1], 0x07)*60 + fromBCD(written[0], 0x07)
	rs := fromBCD(r[1], 0x07)*60 + fromBCD(r[0], 0x07)
	if rs-ws < 2 && ws-rs < 2 {
		r[0], r[1], r[7] = written[0], written[1], written[7]
	}
	return bytes.Equal(written, r)
}
