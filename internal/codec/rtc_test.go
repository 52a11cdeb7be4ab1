package codec

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"juicebus/internal/errcode"
)

func sampleDateTime() DateTime {
	return DateTime{
		Second:    56,
		Minute:    34,
		Hour:      H24(12),
		Weekday:   3,
		Day:       18,
		Month:     10,
		Year:      2026,
		Subsecond: 128,
	}
}

func TestDateTimeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		mod  func(dt *DateTime)
	}{
		{"24 hour", func(dt *DateTime) {}},
		{"midnight", func(dt *DateTime) { dt.Hour = H24(0) }},
		{"12 hour AM", func(dt *DateTime) { dt.Hour = H12(12, false) }},
		{"12 hour PM", func(dt *DateTime) { dt.Hour = H12(11, true) }},
		{"dst and store", func(dt *DateTime) { dt.DaylightSaving, dt.StoreOperation = DSTAdd1h, true }},
		{"year bounds", func(dt *DateTime) { dt.Year = 2099 }},
		{"leap second", func(dt *DateTime) { dt.Second = 60 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := sampleDateTime()
			tt.mod(&dt)
			d, err := EncodeDateTime(dt)
			if err != nil {
				t.Fatalf("EncodeDateTime: %v", err)
			}
			if got := DecodeDateTime(d); got != dt {
				t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, dt)
			}
		})
	}
}

func TestEncodeDateTimeLayout(t *testing.T) {
	dt := sampleDateTime()
	dt.Hour = H12(11, true)
	dt.DaylightSaving = DSTSub1h
	d, err := EncodeDateTime(dt)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x56, 0x34, 0x71, 0x03, 0x18, 0x10, 0x26, 0x80, 0x01}
	if !reflect.DeepEqual(d, want) {
		t.Errorf("Expected % X, got % X", want, d)
	}
}

func TestEncodeDateTimeInvalid(t *testing.T) {
	tests := []struct {
		name string
		mod  func(dt *DateTime)
		want errcode.Code
	}{
		{"second", func(dt *DateTime) { dt.Second = 61 }, errcode.InvalidSecond},
		{"minute", func(dt *DateTime) { dt.Minute = -1 }, errcode.InvalidMinute},
		{"hour 24", func(dt *DateTime) { dt.Hour = H24(24) }, errcode.InvalidHour},
		{"hour 0 in 12h form", func(dt *DateTime) { dt.Hour = H12(0, false) }, errcode.InvalidHour},
		{"weekday", func(dt *DateTime) { dt.Weekday = 0 }, errcode.InvalidWeekday},
		{"day", func(dt *DateTime) { dt.Day = 32 }, errcode.InvalidDay},
		{"month", func(dt *DateTime) { dt.Month = 13 }, errcode.InvalidMonth},
		{"year before", func(dt *DateTime) { dt.Year = 1999 }, errcode.InvalidYear},
		{"year after", func(dt *DateTime) { dt.Year = 2100 }, errcode.InvalidYear},
		{"subsecond", func(dt *DateTime) { dt.Subsecond = 256 }, errcode.InvalidSubsecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := sampleDateTime()
			tt.mod(&dt)
			if _, err := EncodeDateTime(dt); !errors.Is(err, tt.want) {
				t.Errorf("Expected %s, got %v", tt.want, err)
			}
		})
	}
}

func TestParseHour(t *testing.T) {
	tests := []struct {
		in   string
		want Hour
		err  bool
	}{
		{"23", H24(23), false},
		{"0", H24(0), false},
		{"11 PM", H12(11, true), false},
		{"11am", H12(11, false), false},
		{" 12 AM ", H12(12, false), false},
		{"24", Hour{}, true},
		{"13 PM", Hour{}, true},
		{"0 AM", Hour{}, true},
		{"noon", Hour{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHour(tt.in)
		if tt.err {
			if !errors.Is(err, errcode.InvalidHour) {
				t.Errorf("ParseHour(%q): Expected INVALID_HOUR, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseHour(%q) = %+v, %v", tt.in, got, err)
		}
	}
}

func TestHourTo24(t *testing.T) {
	tests := []struct {
		h    Hour
		want int
	}{
		{H24(23), 23},
		{H12(12, false), 0},
		{H12(12, true), 12},
		{H12(1, false), 1},
		{H12(11, true), 23},
	}
	for _, tt := range tests {
		if got := tt.h.To24(); got != tt.want {
			t.Errorf("%s.To24(): Expected %d, got %d", tt.h, tt.want, got)
		}
	}
}

func TestHourJSON(t *testing.T) {
	b, _ := json.Marshal(struct {
		A Hour `json:"a"`
		B Hour `json:"b"`
	}{H24(7), H12(11, true)})
	if string(b) != `{"a":7,"b":"11 PM"}` {
		t.Errorf("unexpected JSON %s", b)
	}
}

func TestEquivalentTime(t *testing.T) {
	written := sampleDateTime()
	written.Hour = H12(11, true)
	w, _ := EncodeDateTime(written)

	tests := []struct {
		name string
		mod  func(dt *DateTime)
		want bool
	}{
		{"11 PM read back as 23", func(dt *DateTime) { dt.Hour = H24(23) }, true},
		{"identical", func(dt *DateTime) {}, true},
		{"one second tick", func(dt *DateTime) { dt.Hour, dt.Second, dt.Subsecond = H24(23), 57, 3 }, true},
		{"read back a second early", func(dt *DateTime) { dt.Second = 55 }, true},
		{"two seconds", func(dt *DateTime) { dt.Second = 58 }, false},
		{"different hour", func(dt *DateTime) { dt.Hour = H24(11) }, false},
		{"different day", func(dt *DateTime) { dt.Day = 19 }, false},
		{"store flag lost", func(dt *DateTime) { dt.StoreOperation = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := written
			tt.mod(&rb)
			r, err := EncodeDateTime(rb)
			if err != nil {
				t.Fatal(err)
			}
			if got := EquivalentTime(w, r); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFromTime(t *testing.T) {
	ts := time.Date(2026, time.October, 18, 21, 5, 9, int(time.Second)/2, time.UTC)
	dt := FromTime(ts)
	want := DateTime{Second: 9, Minute: 5, Hour: H24(21), Weekday: 7, Day: 18, Month: 10, Year: 2026, Subsecond: 128}
	if dt != want {
		t.Fatalf("Expected %+v, got %+v", want, dt)
	}
	if got := dt.Time(time.UTC); !got.Equal(ts) {
		t.Errorf("Time(): Expected %s, got %s", ts, got)
	}
}
