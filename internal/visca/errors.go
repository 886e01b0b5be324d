package visca

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is returned when an endpoint address or port is malformed.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrClosedConnection is returned by operations on a closed connection.
	ErrClosedConnection = errors.New("connection is closed")

	// ErrNotInitialized is returned by operations on a connection that was never brought up.
	ErrNotInitialized = errors.New("connection is not initialized")

	// ErrSendFailure matches every *SendError.
	ErrSendFailure = errors.New("send failure")

	// ErrInvalidPresetSlot is returned when a preset slot is out of range.
	ErrInvalidPresetSlot = errors.New("invalid preset slot")

	// ErrUnknownCommand is returned when a textual action is not recognized.
	ErrUnknownCommand = errors.New("unknown command")
)

// SendError is a network failure while transmitting a packet.
// The connection stays usable.
type SendError struct {
	Dest string
	Err  error
}

// Error implements the error interface.
func (e *SendError) Error() string {
	return fmt.Sprintf("unable to send to %s: %v", e.Dest, e.Err)
}

// Unwrap returns the underlying network error.
func (e *SendError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, ErrSendFailure).
func (e *SendError) Is(target error) bool {
	return target == ErrSendFailure
}
