package thread

import (
	"fmt"
	"time"

	"github.com/vegetable-and-chicken/Blackbone/pkg/logflags"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"
)

// Infinite is the Join timeout that never expires.
const Infinite time.Duration = -1

// opError annotates a failed operation, reporting ErrThreadExited when the
// failure is explained by the thread being gone.
func (t *Thread) opError(op string, err error) error {
	if code, cerr := t.api().GetExitCodeThread(t.handle); cerr == nil && code != native.StillActive {
		return fmt.Errorf("could not %s thread %d: %w (exit code %d)", op, t.id, ErrThreadExited, code)
	}
	return fmt.Errorf("could not %s thread %d: %w", op, t.id, err)
}

// Suspend increments the suspend count of the thread by one.
func (t *Thread) Suspend() error {
	if t.handle == 0 {
		return ErrInvalidHandle
	}
	prev, err := t.suspendThread()
	if err != nil {
		return t.opError("suspend", err)
	}
	if logflags.Thread() {
		logflags.ThreadLogger().Debugf("suspended thread %d, previous count %d", t.id, prev)
	}
	return nil
}

// suspendThread uses the WOW64 variant for threads of WOW64 processes so
// that the 32-bit context is consistent while suspended.
func (t *Thread) suspendThread() (uint32, error) {
	if t.core.Wow64() {
		return t.api().Wow64SuspendThread(t.handle)
	}
	return t.api().SuspendThread(t.handle)
}

// Resume decrements the suspend count of the thread by one. A thread
// suspended n times needs n calls to Resume before it runs again.
func (t *Thread) Resume() error {
	if t.handle == 0 {
		return ErrInvalidHandle
	}
	prev, err := t.api().ResumeThread(t.handle)
	if err != nil {
		return t.opError("resume", err)
	}
	if logflags.Thread() {
		logflags.ThreadLogger().Debugf("resumed thread %d, previous count %d", t.id, prev)
	}
	return nil
}

// Suspended reports whether the suspend count of the thread is not zero.
// The count is read by suspending and immediately resuming the thread once,
// so it is the same before and after the call. If the resume fails the
// thread stays suspended one extra time and the error says so.
func (t *Thread) Suspended() (bool, error) {
	if t.handle == 0 {
		return false, ErrInvalidHandle
	}
	prev, err := t.suspendThread()
	if err != nil {
		return false, t.opError("suspend", err)
	}
	if _, err := t.api().ResumeThread(t.handle); err != nil {
		if logflags.Thread() {
			logflags.ThreadLogger().Errorf("thread %d left suspended: %v", t.id, err)
		}
		return false, t.opError("resume", err)
	}
	return prev > 0, nil
}

// Terminate ends the thread with the given exit code.
func (t *Thread) Terminate(code uint32) error {
	if t.handle == 0 {
		return ErrInvalidHandle
	}
	if err := t.api().TerminateThread(t.handle, code); err != nil {
		return fmt.Errorf("could not terminate thread %d: %w", t.id, err)
	}
	logflags.ThreadLogger().Debugf("terminated thread %d with exit code %d", t.id, code)
	return nil
}

// Join waits until the thread exits or timeout elapses, in which case
// ErrTimeout is returned. A negative timeout, such as Infinite, waits
// forever.
func (t *Thread) Join(timeout time.Duration) error {
	if t.handle == 0 {
		return ErrInvalidHandle
	}
	ev, err := t.api().WaitForSingleObject(t.handle, timeoutMillis(timeout))
	switch ev {
	case native.WaitObject0:
		return nil
	case native.WaitTimeout:
		return ErrTimeout
	}
	if err == nil {
		err = fmt.Errorf("unexpected wait result %#x", ev)
	}
	return fmt.Errorf("could not wait for thread %d: %w", t.id, err)
}

func timeoutMillis(timeout time.Duration) uint32 {
	if timeout < 0 {
		return native.Infinite
	}
	ms := timeout / time.Millisecond
	if timeout%time.Millisecond != 0 {
		ms++
	}
	if ms >= native.Infinite {
		return native.Infinite - 1
	}
	return uint32(ms)
}

// ExitCode returns the exit code of the thread, or native.StillActive if
// it is still running. The value is returned as reported by the system.
func (t *Thread) ExitCode() (uint32, error) {
	if t.handle == 0 {
		return 0, ErrInvalidHandle
	}
	code, err := t.api().GetExitCodeThread(t.handle)
	if err != nil {
		return 0, fmt.Errorf("could not read exit code of thread %d: %w", t.id, err)
	}
	return code, nil
}

// StartTime returns the creation time of the thread.
func (t *Thread) StartTime() (time.Time, error) {
	times, err := t.times()
	if err != nil {
		return time.Time{}, err
	}
	return native.FiletimeToTime(times.Creation), nil
}

// ExecTime returns the total time the thread spent executing in user and
// kernel mode.
func (t *Thread) ExecTime() (time.Duration, error) {
	times, err := t.times()
	if err != nil {
		return 0, err
	}
	return native.FiletimeToDuration(times.Kernel + times.User), nil
}

func (t *Thread) times() (native.ThreadTimes, error) {
	if t.handle == 0 {
		return native.ThreadTimes{}, ErrInvalidHandle
	}
	times, err := t.api().GetThreadTimes(t.handle)
	if err != nil {
		return native.ThreadTimes{}, fmt.Errorf("could not read times of thread %d: %w", t.id, err)
	}
	return times, nil
}
