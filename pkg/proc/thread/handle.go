package thread

import (
	"fmt"

	"github.com/vegetable-and-chicken/Blackbone/pkg/logflags"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"
)

// Handle returns the handle owned by t, or 0.
func (t *Thread) Handle() native.Handle {
	return t.handle
}

// Valid reports whether t owns a handle and the thread is still running.
func (t *Thread) Valid() bool {
	if t.handle == 0 {
		return false
	}
	code, err := t.ExitCode()
	return err == nil && code == native.StillActive
}

// Close releases the handle. Closing a Thread without a handle does
// nothing.
func (t *Thread) Close() error {
	if t.handle == 0 {
		return nil
	}
	h := t.handle
	t.handle = 0
	if err := t.api().CloseHandle(h); err != nil {
		return fmt.Errorf("could not close handle of thread %d: %w", t.id, err)
	}
	return nil
}

// Release gives up ownership of the handle and returns it. Afterwards t has
// no handle and the caller is responsible for closing the returned one.
func (t *Thread) Release() native.Handle {
	h := t.handle
	t.handle = 0
	return h
}

// MoveFrom makes t the owner of src's handle. The handle t owned before, if
// any, is closed; src is left without a handle. The returned error reports
// a failure closing t's previous handle, the transfer happens regardless.
func (t *Thread) MoveFrom(src *Thread) error {
	if src == nil {
		return fmt.Errorf("%w: nil source thread", ErrInvalidArgument)
	}
	if t == src {
		return nil
	}
	err := t.Close()
	t.id = src.id
	t.core = src.core
	t.handle = src.Release()
	if logflags.Thread() {
		logflags.ThreadLogger().Debugf("moved handle %#x of thread %d", uintptr(t.handle), t.id)
	}
	return err
}

// Duplicate returns a new Thread with its own handle to the same thread.
func (t *Thread) Duplicate() (*Thread, error) {
	if t.handle == 0 {
		return nil, ErrInvalidHandle
	}
	h, err := t.api().DuplicateHandle(t.handle)
	if err != nil {
		return nil, fmt.Errorf("could not duplicate handle of thread %d: %w", t.id, err)
	}
	return &Thread{id: t.id, handle: h, core: t.core}, nil
}
