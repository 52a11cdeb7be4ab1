package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	cause := errors.New("i2c: nack")
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, NoError},
		{"bare code", DataCorrupted, DataCorrupted},
		{"wrapped code", &E{C: CommunicationError, Op: "read", Err: cause}, CommunicationError},
		{"foreign error", cause, CommunicationError},
		{"code behind fmt wrap", fmt.Errorf("alarm: %w", InvalidWeekday), InvalidWeekday},
		{"E behind fmt wrap", fmt.Errorf("status: %w", &E{C: DataCorrupted}), DataCorrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Of(tt.err); got != tt.want {
				t.Errorf("Of() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestE_IsAndUnwrap(t *testing.T) {
	cause := errors.New("i2c: nack")
	err := fmt.Errorf("status: %w", &E{C: CommunicationError, Op: "read 0x40", Err: cause})

	if !errors.Is(err, CommunicationError) {
		t.Errorf("expected errors.Is to match COMMUNICATION_ERROR")
	}
	if errors.Is(err, DataCorrupted) {
		t.Errorf("did not expect DATA_CORRUPTED to match")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be reachable through Unwrap")
	}
}

func TestE_Error(t *testing.T) {
	e := &E{C: CommunicationError, Op: "write 0x61", Msg: "timeout"}
	if got, want := e.Error(), "write 0x61: COMMUNICATION_ERROR: timeout"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
