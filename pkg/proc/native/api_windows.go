package native

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/vegetable-and-chicken/Blackbone/pkg/logflags"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/winutil"
)

// Default returns the Windows threading API.
func Default() API {
	return &windowsAPI{}
}

type windowsAPI struct{}

func logCall(name string, h Handle, err error) {
	if !logflags.Native() {
		return
	}
	logger := logflags.NativeLogger().WithField("handle", fmt.Sprintf("%#x", uintptr(h)))
	if err != nil {
		logger.WithError(err).Debugf("%s failed", name)
		return
	}
	logger.Debugf("%s", name)
}

func (*windowsAPI) OpenThread(access uint32, tid uint32) (Handle, error) {
	h, err := windows.OpenThread(access, false, tid)
	logCall(fmt.Sprintf("OpenThread(%d)", tid), Handle(h), err)
	if err != nil {
		return 0, err
	}
	return Handle(h), nil
}

func (*windowsAPI) CloseHandle(h Handle) error {
	err := windows.CloseHandle(windows.Handle(h))
	logCall("CloseHandle", h, err)
	return err
}

func (*windowsAPI) DuplicateHandle(h Handle) (Handle, error) {
	var dup windows.Handle
	cur := windows.CurrentProcess()
	err := windows.DuplicateHandle(cur, windows.Handle(h), cur, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS)
	logCall("DuplicateHandle", h, err)
	if err != nil {
		return 0, err
	}
	return Handle(dup), nil
}

func (*windowsAPI) GetThreadId(h Handle) (uint32, error) {
	return _GetThreadId(windows.Handle(h))
}

func (*windowsAPI) SuspendThread(h Handle) (uint32, error) {
	n, err := _SuspendThread(windows.Handle(h))
	logCall("SuspendThread", h, err)
	return n, err
}

func (*windowsAPI) Wow64SuspendThread(h Handle) (uint32, error) {
	n, err := _Wow64SuspendThread(windows.Handle(h))
	logCall("Wow64SuspendThread", h, err)
	return n, err
}

func (*windowsAPI) ResumeThread(h Handle) (uint32, error) {
	n, err := _ResumeThread(windows.Handle(h))
	logCall("ResumeThread", h, err)
	return n, err
}

func (*windowsAPI) GetThreadContext(h Handle, ctx *winutil.AMD64CONTEXT) error {
	err := _GetThreadContext(windows.Handle(h), ctx)
	logCall("GetThreadContext", h, err)
	return err
}

func (*windowsAPI) SetThreadContext(h Handle, ctx *winutil.AMD64CONTEXT) error {
	err := _SetThreadContext(windows.Handle(h), ctx)
	logCall("SetThreadContext", h, err)
	return err
}

func (*windowsAPI) Wow64GetThreadContext(h Handle, ctx *winutil.X86CONTEXT) error {
	err := _Wow64GetThreadContext(windows.Handle(h), ctx)
	logCall("Wow64GetThreadContext", h, err)
	return err
}

func (*windowsAPI) Wow64SetThreadContext(h Handle, ctx *winutil.X86CONTEXT) error {
	err := _Wow64SetThreadContext(windows.Handle(h), ctx)
	logCall("Wow64SetThreadContext", h, err)
	return err
}

func (*windowsAPI) TerminateThread(h Handle, code uint32) error {
	err := _TerminateThread(windows.Handle(h), code)
	logCall("TerminateThread", h, err)
	return err
}

func (*windowsAPI) WaitForSingleObject(h Handle, milliseconds uint32) (uint32, error) {
	return windows.WaitForSingleObject(windows.Handle(h), milliseconds)
}

func (*windowsAPI) GetExitCodeThread(h Handle) (uint32, error) {
	var code uint32
	err := _GetExitCodeThread(windows.Handle(h), &code)
	return code, err
}

func (*windowsAPI) QueryThreadBasicInformation(h Handle) (ThreadBasicInformation, error) {
	var threadInfo _THREAD_BASIC_INFORMATION
	status := _NtQueryInformationThread(windows.Handle(h), _ThreadBasicInformation, uintptr(unsafe.Pointer(&threadInfo)), uint32(unsafe.Sizeof(threadInfo)), nil)
	if !_NT_SUCCESS(status) {
		return ThreadBasicInformation{}, fmt.Errorf("NtQueryInformationThread failed: it returns 0x%x", uint32(status))
	}
	return ThreadBasicInformation{
		ExitStatus:     int32(threadInfo.ExitStatus),
		TebBaseAddress: uint64(threadInfo.TebBaseAddress),
		UniqueProcess:  uint64(threadInfo.ClientId.UniqueProcess),
		UniqueThread:   uint64(threadInfo.ClientId.UniqueThread),
		AffinityMask:   uint64(threadInfo.AffinityMask),
		Priority:       threadInfo.Priority,
		BasePriority:   threadInfo.BasePriority,
	}, nil
}

func (*windowsAPI) GetThreadTimes(h Handle) (ThreadTimes, error) {
	var creation, exit, kernel, user windows.Filetime
	err := _GetThreadTimes(windows.Handle(h), &creation, &exit, &kernel, &user)
	if err != nil {
		return ThreadTimes{}, err
	}
	return ThreadTimes{
		Creation: filetime(creation),
		Exit:     filetime(exit),
		Kernel:   filetime(kernel),
		User:     filetime(user),
	}, nil
}

func filetime(ft windows.Filetime) uint64 {
	return uint64(ft.HighDateTime)<<32 | uint64(ft.LowDateTime)
}
