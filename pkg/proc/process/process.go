// Package process implements thread.ProcessCore for a live process.
package process

import (
	"fmt"

	"github.com/vegetable-and-chicken/Blackbone/pkg/logflags"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/thread"
)

// Process is an open process whose threads can be controlled.
type Process struct {
	pid    uint32
	wow64  bool
	handle uintptr
	api    native.API
}

var _ thread.ProcessCore = (*Process)(nil)

// PID returns the id of the process.
func (p *Process) PID() uint32 {
	return p.pid
}

// Wow64 reports whether the process runs 32-bit code under WOW64.
func (p *Process) Wow64() bool {
	return p.wow64
}

// Native returns the operating system API.
func (p *Process) Native() native.API {
	return p.api
}

// Thread opens thread tid of the process with the given access mask.
func (p *Process) Thread(tid uint32, access uint32) (*thread.Thread, error) {
	t, err := thread.NewWithAccess(p, tid, access)
	if err != nil {
		return nil, fmt.Errorf("process %d: %w", p.pid, err)
	}
	return t, nil
}

func (p *Process) String() string {
	bitness := "64-bit"
	if p.wow64 {
		bitness = "32-bit (WOW64)"
	}
	return fmt.Sprintf("process %d, %s", p.pid, bitness)
}

func logOpen(p *Process) {
	logflags.ThreadLogger().Debugf("opened %v", p)
}
