package tcp

import (
	"errors"
	"fmt"
)

// ErrorKind classifies transport failures so callers can decide whether to
// retry or report without string-matching error text.
type ErrorKind string

const (
	KindConnectTimeout  ErrorKind = "connect_timeout"
	KindConnectRefused  ErrorKind = "connect_refused"
	KindSizeExceeded    ErrorKind = "size_exceeded"
	KindReadTimeout     ErrorKind = "read_timeout"
	KindPeerClosedEarly ErrorKind = "peer_closed_early"
	KindMalformedFrame  ErrorKind = "malformed_frame"
	KindDecodeError     ErrorKind = "decode_error"
)

// Direction marks which side of the exchange tripped a size ceiling.
type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

// TransportError is the typed result of any failed transport operation.
// None of these are fatal to the process; every Send exit path maps to one.
type TransportError struct {
	Kind      ErrorKind
	Direction Direction
	Err       error
}

func (e *TransportError) Error() string {
	if e.Direction != "" {
		return fmt.Sprintf("transport %s (%s): %v", e.Kind, e.Direction, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newTransportError(kind ErrorKind, err error) *TransportError {
	return &TransportError{Kind: kind, Err: err}
}

func newSizeError(direction Direction, declared, limit int) *TransportError {
	return &TransportError{
		Kind:      KindSizeExceeded,
		Direction: direction,
		Err:       fmt.Errorf("frame of %d bytes exceeds the %d byte ceiling", declared, limit),
	}
}

// KindOf extracts the failure kind from err, or "" when err carries no
// transport classification.
func KindOf(err error) ErrorKind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
