package client

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Sentinel Errors (caller misuse, never retried internally)
// --------------------------------------------------------------------------

var (
	// ErrInvalidArgument is returned when a caller passes an unusable argument
	// (e.g. an empty host). Matched with errors.Is.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotConnected is returned when a transfer operation is attempted
	// while the client does not own a live socket.
	ErrNotConnected = errors.New("socket is not connected")

	// ErrPlatformInit is returned when the process-wide network-stack
	// initialization failed. Surfaces from Connect, not from construction.
	ErrPlatformInit = errors.New("network stack initialization failed")
)

// --------------------------------------------------------------------------
// Error Types (carry platform error detail, matched with errors.As)
// --------------------------------------------------------------------------

// ResolutionError is returned when name resolution failed or produced no
// usable candidate address.
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ConnectionError is returned after every resolved candidate address failed
// to connect. Err holds the platform error of the last attempt.
type ConnectionError struct {
	Endpoint   string
	Candidates int
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: all %d candidates failed: %v", e.Endpoint, e.Candidates, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransferError is returned when a send or receive system call reports an
// error. Transferred records how many bytes had already been moved before the
// failing call; the operation itself reports no partial result.
type TransferError struct {
	Op          string // "send" or "receive"
	Transferred int
	Err         error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s failed after %d bytes: %v", e.Op, e.Transferred, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
