package transport

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"juicebus/internal/errcode"
)

// Equivalence reports whether a read-back image is an acceptable rendition
// of what was written even though the bytes differ.
type Equivalence func(written, readBack []byte) bool

// WriteVerify writes data, waits settle, reads the same length back and
// compares byte for byte.
func (t *Transport) WriteVerify(reg byte, data []byte, settle time.Duration) error {
	return t.WriteVerifyFunc(reg, data, settle, nil)
}

// WriteVerifyFunc is WriteVerify with a fallback equivalence consulted only
// when the images differ.
func (t *Transport) WriteVerifyFunc(reg byte, data []byte, settle time.Duration, eq Equivalence) error {
	if err := t.Write(reg, data); err != nil {
		return err
	}
	if settle > 0 {
		time.Sleep(settle)
	}
	got, err := t.Read(reg, len(data))
	if err != nil {
		return err
	}
	if bytes.Equal(data, got) {
		return nil
	}
	if eq != nil && eq(data, got) {
		return nil
	}
	log.Debug().Hex("wrote", data).Hex("read", got).Uint8("reg", reg).Msg("verify mismatch")
	return &errcode.E{C: errcode.WriteFailed, Op: fmt.Sprintf("verify 0x%02X", reg)}
}
