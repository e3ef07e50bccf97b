// Package native is the boundary between the thread control packages and
// the operating system threading and debugging API.
package native

import (
	"errors"
	"time"

	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/winutil"
)

// Handle is an operating system thread handle. Zero means no handle.
type Handle uintptr

// Thread access rights.
const (
	THREAD_TERMINATE                 = 0x0001
	THREAD_SUSPEND_RESUME            = 0x0002
	THREAD_GET_CONTEXT               = 0x0008
	THREAD_SET_CONTEXT               = 0x0010
	THREAD_QUERY_INFORMATION         = 0x0040
	THREAD_QUERY_LIMITED_INFORMATION = 0x0800
	SYNCHRONIZE                      = 0x00100000
)

// DefaultThreadAccess is the access mask requested when a thread is opened
// by id.
const DefaultThreadAccess = THREAD_SUSPEND_RESUME |
	THREAD_GET_CONTEXT |
	THREAD_SET_CONTEXT |
	THREAD_QUERY_INFORMATION |
	THREAD_TERMINATE |
	SYNCHRONIZE

const (
	// StillActive is the exit code reported for a thread that has not
	// exited yet.
	StillActive = 259

	// Infinite is the wait timeout that never expires.
	Infinite = 0xFFFFFFFF

	WaitObject0 = 0x00000000
	WaitTimeout = 0x00000102
	WaitFailed  = 0xFFFFFFFF
)

// ErrUnsupported is returned by every API call on systems other than
// Windows.
var ErrUnsupported = errors.New("thread control is only supported on windows")

// ThreadBasicInformation is the subset of THREAD_BASIC_INFORMATION used by
// the thread package.
type ThreadBasicInformation struct {
	ExitStatus     int32
	TebBaseAddress uint64
	UniqueProcess  uint64
	UniqueThread   uint64
	AffinityMask   uint64
	Priority       int32
	BasePriority   int32
}

// ThreadTimes holds the raw FILETIME values returned by GetThreadTimes, in
// 100 nanosecond units.
type ThreadTimes struct {
	Creation uint64
	Exit     uint64
	Kernel   uint64
	User     uint64
}

// windowsToUnixEpoch is the number of 100ns intervals between 1601-01-01
// and 1970-01-01.
const windowsToUnixEpoch = 116444736000000000

// FiletimeToTime converts an absolute FILETIME value to a time.Time.
func FiletimeToTime(ft uint64) time.Time {
	return time.Unix(0, (int64(ft)-windowsToUnixEpoch)*100)
}

// FiletimeToDuration converts a FILETIME interval to a time.Duration.
func FiletimeToDuration(ft uint64) time.Duration {
	return time.Duration(ft) * 100
}

// API is the set of operating system calls needed to control a single
// thread. The Windows implementation is returned by Default; tests provide
// their own.
type API interface {
	OpenThread(access uint32, tid uint32) (Handle, error)
	CloseHandle(h Handle) error
	// DuplicateHandle duplicates h inside the current process with the same
	// access rights.
	DuplicateHandle(h Handle) (Handle, error)
	GetThreadId(h Handle) (uint32, error)

	// SuspendThread, Wow64SuspendThread and ResumeThread return the
	// previous suspend count.
	SuspendThread(h Handle) (uint32, error)
	Wow64SuspendThread(h Handle) (uint32, error)
	ResumeThread(h Handle) (uint32, error)

	GetThreadContext(h Handle, ctx *winutil.AMD64CONTEXT) error
	SetThreadContext(h Handle, ctx *winutil.AMD64CONTEXT) error
	Wow64GetThreadContext(h Handle, ctx *winutil.X86CONTEXT) error
	Wow64SetThreadContext(h Handle, ctx *winutil.X86CONTEXT) error

	TerminateThread(h Handle, code uint32) error
	// WaitForSingleObject returns WaitObject0, WaitTimeout or WaitFailed.
	WaitForSingleObject(h Handle, milliseconds uint32) (uint32, error)
	GetExitCodeThread(h Handle) (uint32, error)
	QueryThreadBasicInformation(h Handle) (ThreadBasicInformation, error)
	GetThreadTimes(h Handle) (ThreadTimes, error)
}
