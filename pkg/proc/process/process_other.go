//go:build !windows
// +build !windows

package process

import "github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"

// Open fails on systems other than Windows.
func Open(pid uint32) (*Process, error) {
	return nil, native.ErrUnsupported
}

// Current fails on systems other than Windows.
func Current() (*Process, error) {
	return nil, native.ErrUnsupported
}

// ReadMemory fails on systems other than Windows.
func (p *Process) ReadMemory(addr uint64, buf []byte) (int, error) {
	return 0, native.ErrUnsupported
}

// Close does nothing on systems other than Windows.
func (p *Process) Close() error {
	return nil
}
