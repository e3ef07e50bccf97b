package thread

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle is returned by operations on a thread that does not
	// own a handle, either because it was closed or because ownership was
	// moved to another Thread.
	ErrInvalidHandle = errors.New("thread has no handle")

	// ErrThreadExited is returned when an operation needs a running thread.
	ErrThreadExited = errors.New("thread has exited")

	// ErrInvalidArgument is returned for arguments the operation can not
	// act on, such as a misaligned breakpoint or a nil context.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrModeMismatch is returned when the requested execution mode does not
	// match the mode of the target thread.
	ErrModeMismatch = fmt.Errorf("%w: execution mode does not match thread", ErrInvalidArgument)

	// ErrNoFreeSlot is returned when all four debug address registers are
	// in use.
	ErrNoFreeSlot = errors.New("hardware breakpoints exhausted")

	// ErrBreakpointNotFound is returned by RemoveHWBPAt when no locally
	// enabled slot watches the address.
	ErrBreakpointNotFound = errors.New("no hardware breakpoint at address")

	// ErrTimeout is returned by Join when the thread did not exit in time.
	ErrTimeout = errors.New("timed out waiting for thread")
)
