//go:build !windows
// +build !windows

package native

import "github.com/vegetable-and-chicken/Blackbone/pkg/proc/winutil"

// Default returns the operating system API. Outside of Windows every call
// fails with ErrUnsupported.
func Default() API {
	return unsupportedAPI{}
}

type unsupportedAPI struct{}

func (unsupportedAPI) OpenThread(uint32, uint32) (Handle, error) { return 0, ErrUnsupported }
func (unsupportedAPI) CloseHandle(Handle) error                  { return ErrUnsupported }
func (unsupportedAPI) DuplicateHandle(Handle) (Handle, error)    { return 0, ErrUnsupported }
func (unsupportedAPI) GetThreadId(Handle) (uint32, error)        { return 0, ErrUnsupported }
func (unsupportedAPI) SuspendThread(Handle) (uint32, error)      { return 0, ErrUnsupported }
func (unsupportedAPI) Wow64SuspendThread(Handle) (uint32, error) { return 0, ErrUnsupported }
func (unsupportedAPI) ResumeThread(Handle) (uint32, error)       { return 0, ErrUnsupported }

func (unsupportedAPI) GetThreadContext(Handle, *winutil.AMD64CONTEXT) error {
	return ErrUnsupported
}

func (unsupportedAPI) SetThreadContext(Handle, *winutil.AMD64CONTEXT) error {
	return ErrUnsupported
}

func (unsupportedAPI) Wow64GetThreadContext(Handle, *winutil.X86CONTEXT) error {
	return ErrUnsupported
}

func (unsupportedAPI) Wow64SetThreadContext(Handle, *winutil.X86CONTEXT) error {
	return ErrUnsupported
}

func (unsupportedAPI) TerminateThread(Handle, uint32) error { return ErrUnsupported }

func (unsupportedAPI) WaitForSingleObject(Handle, uint32) (uint32, error) {
	return WaitFailed, ErrUnsupported
}

func (unsupportedAPI) GetExitCodeThread(Handle) (uint32, error) { return 0, ErrUnsupported }

func (unsupportedAPI) QueryThreadBasicInformation(Handle) (ThreadBasicInformation, error) {
	return ThreadBasicInformation{}, ErrUnsupported
}

func (unsupportedAPI) GetThreadTimes(Handle) (ThreadTimes, error) {
	return ThreadTimes{}, ErrUnsupported
}
