package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"juicebus/internal/codec"
	"juicebus/internal/errcode"
	"juicebus/internal/juice"
)

const (
	DefaultStreamInterval = 5 * time.Second
	MinStreamInterval     = time.Second
)

type StatusClient interface {
	Status() (codec.Status, error)
	Faults() (codec.Faults, error)
	ChargeLevel() (int, error)
	BatteryVoltage() (int, error)
}

type RtcClient interface {
	Time() (codec.DateTime, error)
	Alarm() (codec.Alarm, error)
	ControlStatus() (codec.ControlStatus, error)
}

type BatteryResponse struct {
	Level      int     `json:"sensor.battery_level"`
	Voltage    float64 `json:"sensor.battery_voltage"`
	State      string  `json:"sensor.battery_state"`
	IsCharging bool    `json:"sensor.is_charging"`
}

type AlarmResponse struct {
	Alarm codec.Alarm         `json:"alarm"`
	State codec.ControlStatus `json:"state"`
}

type FirmwareResponse struct {
	Version string `json:"version"`
	Variant uint8  `json:"variant"`
}

type ErrorResponse struct {
	Error errcode.Code `json:"error"`
}

type Server struct {
	// mu serializes device access; the transport rejects overlapping transfers.
	mu       sync.Mutex
	status   StatusClient
	rtc      RtcClient
	fw       codec.FirmwareVersion
	router   *mux.Router
	upgrader *websocket.Upgrader
}

func New(status StatusClient, rtc RtcClient, fw codec.FirmwareVersion) *Server {
	s := &Server{
		status: status,
		rtc:    rtc,
		fw:     fw,
		router: mux.NewRouter(),
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.router.Use(logRequests)
	s.router.HandleFunc("/", s.rootHandler).Methods("GET", "HEAD")
	s.router.HandleFunc("/status", s.statusHandler).Methods("GET", "HEAD")
	s.router.HandleFunc("/faults", s.faultsHandler).Methods("GET", "HEAD")
	s.router.HandleFunc("/rtc/time", s.timeHandler).Methods("GET", "HEAD")
	s.router.HandleFunc("/rtc/alarm", s.alarmHandler).Methods("GET", "HEAD")
	s.router.HandleFunc("/firmware", s.firmwareHandler).Methods("GET", "HEAD")
	s.router.HandleFunc("/ws", s.streamHandler).Methods("GET")
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func Run(port int, j *juice.Juice) error {
	s := New(j.Status, j.RtcAlarm, j.Firmware())

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("listening")
	return srv.ListenAndServe()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError reports a protocol error with its code. Bus faults are the
// device being unavailable, not a server bug.
func writeError(w http.ResponseWriter, err error) {
	code := errcode.Of(err)
	status := http.StatusInternalServerError
	switch code {
	case errcode.CommunicationError:
		status = http.StatusServiceUnavailable
	case errcode.DataCorrupted:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, ErrorResponse{Error: code})
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

// snapshot summarizes the battery. Failed reads are logged and leave their
// fields at zero.
func (s *Server) snapshot() BatteryResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Defaults
	resp := BatteryResponse{
		State: "Discharging", // Default assumption if we can't read anything
	}

	st, statusErr := s.status.Status()
	if statusErr != nil {
		log.Error().Err(statusErr).Msg("reading status")
	}

	level, err := s.status.ChargeLevel()
	if err != nil {
		log.Error().Err(err).Msg("reading charge level")
	} else {
		resp.Level = level
	}

	mV, err := s.status.BatteryVoltage()
	if err != nil {
		log.Error().Err(err).Msg("reading battery voltage")
	} else {
		resp.Voltage = float64(mV) / 1000
	}

	// Logic for State & IsCharging
	if statusErr == nil {
		switch st.Battery {
		case codec.BatteryChargingFromIn, codec.BatteryChargingFrom5V:
			if resp.Level >= 100 {
				resp.State = "Full"
			} else {
				resp.State = "Charging"
			}
		case codec.BatteryNotPresent:
			resp.State = "Not Present"
		default:
			if st.PowerInput == codec.PowerInputPresent || st.PowerInput5vIo == codec.PowerInputPresent {
				resp.State = "Not Charging"
			} else {
				resp.State = "Discharging"
			}
		}
	}

	resp.IsCharging = (resp.State == "Charging")

	return resp
}

// streamHandler pushes a snapshot every interval until the client goes away.
// The interval can be set with ?poll=10s but never below MinStreamInterval.
func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	interval := DefaultStreamInterval
	if v := r.URL.Query().Get("poll"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			interval = max(d, MinStreamInterval)
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("error subscribing to websocket")
		return
	}
	log.Debug().Str("remote", conn.RemoteAddr().String()).Dur("poll", interval).Msg("websocket subscription")

	go func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			if err := conn.WriteJSON(s.snapshot()); err != nil {
				log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("websocket closed")
				return
			}
			<-time.After(interval)
		}
	}(conn)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.status.Status()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) faultsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.status.Faults()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) timeHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.rtc.Time()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) alarmHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.rtc.Alarm()
	if err != nil {
		writeError(w, err)
		return
	}
	cs, err := s.rtc.ControlStatus()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AlarmResponse{Alarm: a, State: cs})
}

func (s *Server) firmwareHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FirmwareResponse{Version: s.fw.String(), Variant: s.fw.Variant})
}
