package protocol

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// Outcome is the tagged result of one framing step.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeDisconnected
	OutcomeIOFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDisconnected:
		return "disconnected"
	default:
		return "io_failure"
	}
}

// Classify maps an error returned by the frame or session layer onto an Outcome.
// Anything that is not nil and not a disconnect is an io failure.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrDisconnected):
		return OutcomeDisconnected
	default:
		return OutcomeIOFailure
	}
}

// ReadError classifies a failed read of one frame segment ("header" or "payload").
//
// A stream that ends before or inside the segment is a disconnect, as is a read on
// a connection this process already closed. Everything else keeps the system error.
func ReadError(segment string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("read %s: %w", segment, ErrDisconnected)
	}
	return fmt.Errorf("%w: read %s: %w", ErrIOFailure, segment, err)
}

// WriteError classifies a failed write of one frame.
//
// Only a write that moves zero bytes without an error is a disconnect. Any
// write error is an io failure and keeps the system error.
func WriteError(segment string, n int, err error) error {
	if err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIOFailure, segment, err)
	}
	if n == 0 {
		return fmt.Errorf("write %s: %w", segment, ErrDisconnected)
	}
	return nil
}
