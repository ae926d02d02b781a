package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSetupKey    = errors.New("unknown setup token")
	ErrUnknownUpdateToken = errors.New("unknown update token")
	ErrMalformedLine      = errors.New("malformed line")
)

// LineError reports which input line failed and why. Kind is one of the
// Err* sentinels above, so callers can match with errors.Is.
type LineError struct {
	Kind  error
	Line  string
	Token string
	Err   error
}

func (e *LineError) Error() string {
	var msg string
	switch {
	case e.Token != "":
		msg = fmt.Sprintf("%v: '%s'", e.Kind, e.Token)
	case e.Kind == ErrUnknownUpdateToken:
		msg = fmt.Sprintf("unknown or invalid update token: '%s'", e.Line)
	case e.Line != "":
		msg = fmt.Sprintf("%v: '%s'", e.Kind, e.Line)
	default:
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LineError) Is(target error) bool { return target == e.Kind }

func (e *LineError) Unwrap() error { return e.Err }

func malformed(line string, err error) error {
	return &LineError{Kind: ErrMalformedLine, Line: line, Err: err}
}
