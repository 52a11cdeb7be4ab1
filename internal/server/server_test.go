package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"juicebus/internal/codec"
	"juicebus/internal/errcode"
)

type MockStatus struct {
	St       codec.Status
	Flt      codec.Faults
	Level    int
	Voltage  int
	Err      error
	LevelErr error
}

func (m *MockStatus) Status() (codec.Status, error) { return m.St, m.Err }
func (m *MockStatus) Faults() (codec.Faults, error) { return m.Flt, m.Err }
func (m *MockStatus) ChargeLevel() (int, error)     { return m.Level, m.LevelErr }
func (m *MockStatus) BatteryVoltage() (int, error)  { return m.Voltage, m.LevelErr }

type MockRtc struct {
	DT    codec.DateTime
	Al    codec.Alarm
	State codec.ControlStatus
	Err   error
}

func (m *MockRtc) Time() (codec.DateTime, error)               { return m.DT, m.Err }
func (m *MockRtc) Alarm() (codec.Alarm, error)                 { return m.Al, m.Err }
func (m *MockRtc) ControlStatus() (codec.ControlStatus, error) { return m.State, m.Err }

func TestRootHandler(t *testing.T) {
	tests := []struct {
		name           string
		status         *MockStatus
		expectedState  string
		expectedLevel  int
		expectedVol    float64
		expectedCharge bool
	}{
		{
			name: "Charging from power input",
			status: &MockStatus{
				St:      codec.Status{Battery: codec.BatteryChargingFromIn, PowerInput: codec.PowerInputPresent},
				Level:   55,
				Voltage: 3900,
			},
			expectedState:  "Charging",
			expectedLevel:  55,
			expectedVol:    3.9,
			expectedCharge: true,
		},
		{
			name: "Charging from 5V GPIO",
			status: &MockStatus{
				St:      codec.Status{Battery: codec.BatteryChargingFrom5V, PowerInput5vIo: codec.PowerInputPresent},
				Level:   12,
				Voltage: 3600,
			},
			expectedState:  "Charging",
			expectedLevel:  12,
			expectedVol:    3.6,
			expectedCharge: true,
		},
		{
			name: "Full Charge",
			status: &MockStatus{
				St:      codec.Status{Battery: codec.BatteryChargingFromIn, PowerInput: codec.PowerInputPresent},
				Level:   100,
				Voltage: 4200,
			},
			expectedState:  "Full",
			expectedLevel:  100,
			expectedVol:    4.2,
			expectedCharge: false,
		},
		{
			name: "Discharging (Normal + Disconnected)",
			status: &MockStatus{
				St:      codec.Status{Battery: codec.BatteryNormal, PowerInput: codec.PowerInputNotPresent, PowerInput5vIo: codec.PowerInputNotPresent},
				Level:   40,
				Voltage: 3700,
			},
			expectedState:  "Discharging",
			expectedLevel:  40,
			expectedVol:    3.7,
			expectedCharge: false,
		},
		{
			name: "Not Charging (Connected)",
			status: &MockStatus{
				St:      codec.Status{Battery: codec.BatteryNormal, PowerInput: codec.PowerInputPresent},
				Level:   40,
				Voltage: 3700,
			},
			expectedState:  "Not Charging",
			expectedLevel:  40,
			expectedVol:    3.7,
			expectedCharge: false,
		},
		{
			name: "No battery",
			status: &MockStatus{
				St: codec.Status{Battery: codec.BatteryNotPresent, PowerInput: codec.PowerInputPresent},
			},
			expectedState:  "Not Present",
			expectedCharge: false,
		},
		{
			name: "Status read fails",
			status: &MockStatus{
				Err:     errcode.CommunicationError,
				Level:   30,
				Voltage: 3600,
			},
			expectedState:  "Discharging",
			expectedLevel:  30,
			expectedVol:    3.6,
			expectedCharge: false,
		},
		{
			name: "Readings fail",
			status: &MockStatus{
				St:       codec.Status{Battery: codec.BatteryChargingFromIn},
				LevelErr: errors.New("bus failure"),
			},
			expectedState:  "Charging",
			expectedCharge: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{status: tt.status, rtc: &MockRtc{}}

			req := httptest.NewRequest("GET", "/", nil)
			w := httptest.NewRecorder()

			s.rootHandler(w, req)

			resp := w.Result()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("Expected status 200, got %d", resp.StatusCode)
			}

			var br BatteryResponse
			if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if br.State != tt.expectedState {
				t.Errorf("Expected State %s, got %s", tt.expectedState, br.State)
			}
			if br.Level != tt.expectedLevel {
				t.Errorf("Expected Level %d, got %d", tt.expectedLevel, br.Level)
			}
			if br.Voltage != tt.expectedVol {
				t.Errorf("Expected Voltage %f, got %f", tt.expectedVol, br.Voltage)
			}
			if br.IsCharging != tt.expectedCharge {
				t.Errorf("Expected IsCharging %v, got %v", tt.expectedCharge, br.IsCharging)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	status := &MockStatus{
		St:  codec.Status{Battery: codec.BatteryNormal, PowerInput: codec.PowerInputWeak},
		Flt: codec.Faults{WatchdogReset: true, ChargingTemperature: codec.ChargingTempNormal},
	}
	rtc := &MockRtc{
		DT:    codec.DateTime{Second: 5, Minute: 30, Hour: codec.H12(11, true), Weekday: 7, Day: 18, Month: 10, Year: 2026},
		State: codec.ControlStatus{WakeupEnabled: true},
	}
	s := New(status, rtc, codec.FirmwareVersion{Major: 1, Minor: 4, Variant: 2})

	tests := []struct {
		path  string
		key   string
		value any
	}{
		{"/status", "battery", "NORMAL"},
		{"/status", "powerInput", "WEAK"},
		{"/faults", "watchdog_reset", true},
		{"/rtc/time", "hour", "11 PM"},
		{"/rtc/time", "year", float64(2026)},
		{"/firmware", "version", "1.4"},
		{"/firmware", "variant", float64(2)},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+tt.key, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()

			s.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var body map[string]any
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body[tt.key] != tt.value {
				t.Errorf("Expected %s=%v, got %v", tt.key, tt.value, body[tt.key])
			}
		})
	}
}

func TestAlarmRoute(t *testing.T) {
	rtc := &MockRtc{State: codec.ControlStatus{WakeupEnabled: true, AlarmFlag: true}}
	s := New(&MockStatus{}, rtc, codec.FirmwareVersion{})

	req := httptest.NewRequest("GET", "/rtc/alarm", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var body struct {
		State codec.ControlStatus `json:"state"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !body.State.WakeupEnabled || !body.State.AlarmFlag {
		t.Errorf("Expected wakeup and flag set, got %+v", body.State)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody errcode.Code
	}{
		{"bus fault", errcode.CommunicationError, http.StatusServiceUnavailable, errcode.CommunicationError},
		{"bad checksum", errcode.DataCorrupted, http.StatusBadGateway, errcode.DataCorrupted},
		{"wrapped write failure", &errcode.E{C: errcode.WriteFailed, Op: "set time"}, http.StatusInternalServerError, errcode.WriteFailed},
		{"foreign error", errors.New("boom"), http.StatusServiceUnavailable, errcode.CommunicationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&MockStatus{Err: tt.err}, &MockRtc{Err: tt.err}, codec.FirmwareVersion{})

			for _, path := range []string{"/status", "/faults", "/rtc/time", "/rtc/alarm"} {
				req := httptest.NewRequest("GET", path, nil)
				w := httptest.NewRecorder()
				s.ServeHTTP(w, req)

				if w.Code != tt.expectedCode {
					t.Errorf("%s: Expected status %d, got %d", path, tt.expectedCode, w.Code)
				}
				var body ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
					t.Fatalf("%s: Failed to decode response: %v", path, err)
				}
				if body.Error != tt.expectedBody {
					t.Errorf("%s: Expected error %s, got %s", path, tt.expectedBody, body.Error)
				}
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := New(&MockStatus{}, &MockRtc{}, codec.FirmwareVersion{})

	req := httptest.NewRequest("POST", "/status", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestStream(t *testing.T) {
	status := &MockStatus{
		St:      codec.Status{Battery: codec.BatteryChargingFromIn},
		Level:   64,
		Voltage: 3800,
	}
	srv := httptest.NewServer(New(status, &MockRtc{}, codec.FirmwareVersion{}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?poll=1s"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	var br BatteryResponse
	if err := conn.ReadJSON(&br); err != nil {
		t.Fatalf("Failed to read snapshot: %v", err)
	}
	if br.State != "Charging" || br.Level != 64 || br.Voltage != 3.8 || !br.IsCharging {
		t.Errorf("unexpected snapshot %+v", br)
	}
}
