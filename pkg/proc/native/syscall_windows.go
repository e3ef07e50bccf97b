//go:generate go run golang.org/x/sys/windows/mkwinsyscall -output zsyscall_windows.go syscall_windows.go

package native

import (
	"golang.org/x/sys/windows"
)

type _NTSTATUS int32

type _CLIENT_ID struct {
	UniqueProcess windows.Handle
	UniqueThread  windows.Handle
}

type _THREAD_BASIC_INFORMATION struct {
	ExitStatus     _NTSTATUS
	TebBaseAddress uintptr
	ClientId       _CLIENT_ID
	AffinityMask   uintptr
	Priority       int32
	BasePriority   int32
}

const (
	_ThreadBasicInformation = 0
)

func _NT_SUCCESS(x _NTSTATUS) bool {
	return x >= 0
}

//sys	_NtQueryInformationThread(threadHandle windows.Handle, infoclass int32, info uintptr, infolen uint32, retlen *uint32) (status _NTSTATUS) = ntdll.NtQueryInformationThread
//sys	_GetThreadContext(thread windows.Handle, context *winutil.AMD64CONTEXT) (err error) = kernel32.GetThreadContext
//sys	_SetThreadContext(thread windows.Handle, context *winutil.AMD64CONTEXT) (err error) = kernel32.SetThreadContext
//sys	_Wow64GetThreadContext(thread windows.Handle, context *winutil.X86CONTEXT) (err error) = kernel32.Wow64GetThreadContext
//sys	_Wow64SetThreadContext(thread windows.Handle, context *winutil.X86CONTEXT) (err error) = kernel32.Wow64SetThreadContext
//sys	_SuspendThread(thread windows.Handle) (prevsuspcount uint32, err error) [failretval==0xffffffff] = kernel32.SuspendThread
//sys	_Wow64SuspendThread(thread windows.Handle) (prevsuspcount uint32, err error) [failretval==0xffffffff] = kernel32.Wow64SuspendThread
//sys	_ResumeThread(thread windows.Handle) (prevsuspcount uint32, err error) [failretval==0xffffffff] = kernel32.ResumeThread
//sys	_TerminateThread(thread windows.Handle, exitcode uint32) (err error) = kernel32.TerminateThread
//sys	_GetExitCodeThread(thread windows.Handle, exitcode *uint32) (err error) = kernel32.GetExitCodeThread
//sys	_GetThreadId(thread windows.Handle) (id uint32, err error) = kernel32.GetThreadId
//sys	_GetThreadTimes(thread windows.Handle, creation *windows.Filetime, exit *windows.Filetime, kernel *windows.Filetime, user *windows.Filetime) (err error) = kernel32.GetThreadTimes
