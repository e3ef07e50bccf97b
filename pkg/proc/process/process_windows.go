package process

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"
)

const processAccess = windows.PROCESS_QUERY_INFORMATION | windows.PROCESS_VM_READ

// Open opens process pid for memory reads and WOW64 detection.
func Open(pid uint32) (*Process, error) {
	h, err := windows.OpenProcess(processAccess, false, pid)
	if err != nil {
		return nil, fmt.Errorf("could not open process %d: %w", pid, err)
	}
	var wow64 bool
	if err := windows.IsWow64Process(h, &wow64); err != nil {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("could not query process %d: %w", pid, err)
	}
	p := &Process{pid: pid, wow64: wow64, handle: uintptr(h), api: native.Default()}
	logOpen(p)
	return p, nil
}

// Current returns the process running this program. Its handle is a
// pseudo handle and does not need to be closed.
func Current() (*Process, error) {
	h := windows.CurrentProcess()
	var wow64 bool
	if err := windows.IsWow64Process(h, &wow64); err != nil {
		return nil, fmt.Errorf("could not query current process: %w", err)
	}
	return &Process{pid: windows.GetCurrentProcessId(), wow64: wow64, handle: uintptr(h), api: native.Default()}, nil
}

// ReadMemory reads len(buf) bytes at addr.
func (p *Process) ReadMemory(addr uint64, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var n uintptr
	err := windows.ReadProcessMemory(windows.Handle(p.handle), uintptr(addr), &buf[0], uintptr(len(buf)), &n)
	if err != nil {
		return int(n), fmt.Errorf("could not read %d bytes at %#x: %w", len(buf), addr, err)
	}
	return int(n), nil
}

// Close releases the process handle.
func (p *Process) Close() error {
	if p.handle == 0 || windows.Handle(p.handle) == windows.CurrentProcess() {
		return nil
	}
	h := p.handle
	p.handle = 0
	return windows.CloseHandle(windows.Handle(h))
}
