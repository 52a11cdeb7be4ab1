package errcode

import "errors"

// Code is the result vocabulary shared with every consumer of the protocol
// layer. It is a string newtype, comparable, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

const (
	NoError            Code = "NO_ERROR"
	CommunicationError Code = "COMMUNICATION_ERROR"
	DataCorrupted      Code = "DATA_CORRUPTED"
	WriteFailed        Code = "WRITE_FAILED"
	BadArgument        Code = "BAD_ARGUMENT"

	// RTC field validation.
	InvalidSecond       Code = "INVALID_SECOND"
	InvalidMinute       Code = "INVALID_MINUTE"
	InvalidHour         Code = "INVALID_HOUR"
	InvalidWeekday      Code = "INVALID_WEEKDAY"
	InvalidDay          Code = "INVALID_DAY"
	InvalidMonth        Code = "INVALID_MONTH"
	InvalidYear         Code = "INVALID_YEAR"
	InvalidSubsecond    Code = "INVALID_SUBSECOND"
	InvalidMinutePeriod Code = "INVALID_MINUTE_PERIOD"
)

// E carries a Code together with the operation and the underlying cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.CommunicationError) match a wrapped code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error. nil maps to NoError and anything outside
// the vocabulary maps to CommunicationError.
func Of(err error) Code {
	if err == nil {
		return NoError
	}
	var e *E
	if errors.As(err, &e) {
		return e.C
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return CommunicationError
}
