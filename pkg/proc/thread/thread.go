// Package thread controls a single operating system thread of the current
// or of a foreign process: suspension, execution context access in native
// and WOW64 mode, thread environment block lookup and hardware
// breakpoints.
//
// A Thread exclusively owns its handle. Thread values must not be copied;
// ownership is transferred with MoveFrom or Release and a second owner is
// obtained with Duplicate.
//
// Operations on one Thread are not synchronized. Callers must serialize
// them, and must not suspend or resume the same thread from elsewhere while
// a context access or a breakpoint change is in progress.
package thread

import (
	"fmt"

	"github.com/vegetable-and-chicken/Blackbone/pkg/logflags"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"
)

// ProcessCore is the owning process abstraction.
type ProcessCore interface {
	// PID returns the id of the process.
	PID() uint32
	// Wow64 reports whether the process executes 32-bit code on a 64-bit
	// system.
	Wow64() bool
	// ReadMemory reads len(buf) bytes of process memory at addr.
	ReadMemory(addr uint64, buf []byte) (int, error)
	// Native returns the operating system API used to control threads.
	Native() native.API
}

// noCopy may be embedded into structs which must not be copied after the
// first use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Thread is one operating system thread.
type Thread struct {
	noCopy noCopy

	id     uint32
	handle native.Handle
	core   ProcessCore
}

// New opens thread id of core with native.DefaultThreadAccess.
func New(core ProcessCore, id uint32) (*Thread, error) {
	return NewWithAccess(core, id, native.DefaultThreadAccess)
}

// NewWithAccess opens thread id of core with the given access mask.
func NewWithAccess(core ProcessCore, id uint32, access uint32) (*Thread, error) {
	h, err := core.Native().OpenThread(access, id)
	if err != nil {
		return nil, fmt.Errorf("could not open thread %d: %w", id, err)
	}
	t := &Thread{id: id, handle: h, core: core}
	logflags.ThreadLogger().Debugf("opened thread %d of process %d, handle %#x", id, core.PID(), uintptr(h))
	return t, nil
}

// FromHandle wraps an already open handle. On success the Thread owns h; on
// failure ownership stays with the caller.
func FromHandle(core ProcessCore, h native.Handle) (*Thread, error) {
	if h == 0 {
		return nil, ErrInvalidHandle
	}
	id, err := core.Native().GetThreadId(h)
	if err != nil {
		return nil, fmt.Errorf("could not resolve thread id of handle %#x: %w", uintptr(h), err)
	}
	return &Thread{id: id, handle: h, core: core}, nil
}

// ID returns the thread id.
func (t *Thread) ID() uint32 {
	return t.id
}

// Core returns the owning process.
func (t *Thread) Core() ProcessCore {
	return t.core
}

// Equal reports whether t and other refer to the same thread id, regardless
// of the handles they own.
func (t *Thread) Equal(other *Thread) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.id == other.id
}

func (t *Thread) String() string {
	return fmt.Sprintf("thread %d (handle %#x)", t.id, uintptr(t.handle))
}

func (t *Thread) api() native.API {
	return t.core.Native()
}
