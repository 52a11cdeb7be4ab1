package transport

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/i2c"

	"juicebus/internal/errcode"
)

const (
	// Addr is the factory default I2C address of the peripheral.
	Addr = 0x14

	DefaultTimeout  = 100 * time.Millisecond
	DefaultCooldown = 4 * time.Second
)

// Transport issues checksummed register transfers to one peripheral.
//
// Every transfer runs on its own goroutine and the caller waits at most
// Timeout for it. A failed transfer starts a cooldown during which further
// calls fail without touching the bus. Only one transfer may be in flight;
// a call that finds one running is rejected rather than queued.
type Transport struct {
	dev      *i2c.Dev
	timeout  time.Duration
	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	inFlight bool
	failed   bool
	lastErr  time.Time
}

type Option func(*Transport)

func WithTimeout(d time.Duration) Option  { return func(t *Transport) { t.timeout = d } }
func WithCooldown(d time.Duration) Option { return func(t *Transport) { t.cooldown = d } }

// WithClock replaces the time source used for the cooldown window.
func WithClock(now func() time.Time) Option { return func(t *Transport) { t.now = now } }

func New(bus i2c.Bus, addr uint16, opts ...Option) *Transport {
	t := &Transport{
		dev:      &i2c.Dev{Addr: addr, Bus: bus},
		timeout:  DefaultTimeout,
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Transport) String() string {
	return fmt.Sprintf("%s@0x%02X", t.dev.Bus, t.dev.Addr)
}

// Read selects reg and reads n payload bytes plus the checksum byte. The
// returned payload is checksum-verified and has the checksum stripped.
func (t *Transport) Read(reg byte, n int) ([]byte, error) {
	if n < 1 {
		return nil, errcode.BadArgument
	}
	op := fmt.Sprintf("read 0x%02X", reg)
	frame := make([]byte, n+1)
	if err := t.transfer(op, func() error {
		return t.dev.Tx([]byte{reg}, frame)
	}); err != nil {
		return nil, err
	}
	payload, err := VerifyChecksum(frame)
	if err != nil {
		log.Debug().Hex("frame", frame).Str("op", op).Msg("checksum mismatch")
		return nil, &errcode.E{C: errcode.DataCorrupted, Op: op}
	}
	return payload, nil
}

// Write sends reg followed by data and its checksum in one block.
func (t *Transport) Write(reg byte, data []byte) error {
	if len(data) == 0 {
		return errcode.BadArgument
	}
	op := fmt.Sprintf("write 0x%02X", reg)
	w := append([]byte{reg}, AppendChecksum(data)...)
	return t.transfer(op, func() error {
		return t.dev.Tx(w, nil)
	})
}

// transfer is the only writer of the health state.
func (t *Transport) transfer(op string, fn func() error) error {
	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		return &errcode.E{C: errcode.CommunicationError, Op: op, Msg: "transfer in flight"}
	}
	if t.failed && t.now().Sub(t.lastErr) < t.cooldown {
		t.mu.Unlock()
		return &errcode.E{C: errcode.CommunicationError, Op: op, Msg: "cooling down"}
	}
	t.inFlight = true
	t.mu.Unlock()

	var abandoned bool // guarded by t.mu
	done := make(chan error, 1)
	go func() {
		err := fn()
		t.mu.Lock()
		t.inFlight = false
		if !abandoned {
			t.record(op, err)
		}
		t.mu.Unlock()
		done <- err
	}()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return wrapBusErr(op, err)
	case <-timer.C:
	}

	t.mu.Lock()
	if !t.inFlight {
		// Finished between the timer firing and taking the lock.
		t.mu.Unlock()
		return wrapBusErr(op, <-done)
	}
	abandoned = true
	t.failed = true
	t.lastErr = t.now()
	t.mu.Unlock()

	log.Warn().Str("op", op).Dur("timeout", t.timeout).Msg("bus transfer timed out")
	return &errcode.E{C: errcode.CommunicationError, Op: op, Msg: "timeout"}
}

func (t *Transport) record(op string, err error) {
	if err == nil {
		t.failed = false
		return
	}
	t.failed = true
	t.lastErr = t.now()
	log.Debug().Err(err).Str("op", op).Msg("bus transfer failed")
}

func wrapBusErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &errcode.E{C: errcode.CommunicationError, Op: op, Err: err}
}
