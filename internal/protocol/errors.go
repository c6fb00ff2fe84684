package protocol

import "errors"

var (
	ErrDisconnected  = errors.New("protocol: peer disconnected")
	ErrIOFailure     = errors.New("protocol: io failure")
	ErrInvalidLength = errors.New("protocol: invalid payload length")
)
