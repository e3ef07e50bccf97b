package thread

import (
	"fmt"

	"github.com/vegetable-and-chicken/Blackbone/pkg/logflags"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/amd64util"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/winutil"
)

// HWBPType is the kind of access that triggers a hardware breakpoint.
type HWBPType = amd64util.Condition

// Breakpoint types accepted by AddHWBP.
const (
	HWBPExecute = amd64util.Execute   // instruction fetch
	HWBPWrite   = amd64util.Write     // data writes
	HWBPAccess  = amd64util.ReadWrite // data reads or writes
)

// withDebugRegisters suspends the thread, reads its debug registers, calls
// fn and writes the registers back if fn changed them. The native context
// is used for WOW64 threads too, debug registers are shared between both
// personalities.
func (t *Thread) withDebugRegisters(fn func(*amd64util.DebugRegisters) error) error {
	if t.handle == 0 {
		return ErrInvalidHandle
	}
	return t.withSuspended(false, func() error {
		ctx, err := t.GetContext(ModeNative, winutil.CONTEXT_AMD64_DEBUG_REGISTERS, true)
		if err != nil {
			return err
		}
		drs := amd64util.NewDebugRegisters(ctx.Native.DebugRegisters())

		if err := fn(drs); err != nil {
			return err
		}

		if drs.Dirty {
			ctx.Native.SetDebugRegisters(drs.Addrs, drs.DR6, drs.DR7)
			return t.SetContext(ctx, true)
		}
		return nil
	})
}

// AddHWBP sets a hardware breakpoint on the lowest free debug register and
// returns its index. Execute breakpoints always cover a single byte,
// length is ignored for them. Data breakpoints cover 1, 2, 4 or 8 bytes and
// addr must be aligned to length. On failure the returned index is -1.
func (t *Thread) AddHWBP(addr uint64, typ HWBPType, length int) (int, error) {
	if t.handle == 0 {
		return -1, ErrInvalidHandle
	}
	size, err := amd64util.CheckBreakpoint(addr, typ, length)
	if err != nil {
		return -1, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	idx := -1
	err = t.withDebugRegisters(func(drs *amd64util.DebugRegisters) error {
		idx = drs.FreeSlot()
		if idx < 0 {
			return ErrNoFreeSlot
		}
		return drs.SetBreakpoint(uint8(idx), addr, typ, size)
	})
	if err != nil {
		return -1, fmt.Errorf("could not add hardware breakpoint to thread %d: %w", t.id, err)
	}
	if logflags.HWBP() {
		logflags.HWBPLogger().Debugf("thread %d: slot %d set to %v %d bytes at %#x", t.id, idx, typ, size, addr)
	}
	return idx, nil
}

// RemoveHWBP disables the hardware breakpoint in slot idx. Removing a free
// slot does nothing.
func (t *Thread) RemoveHWBP(idx int) error {
	if idx < 0 || idx >= amd64util.NumSlots {
		return fmt.Errorf("%w: hardware breakpoint index %d", ErrInvalidArgument, idx)
	}
	err := t.withDebugRegisters(func(drs *amd64util.DebugRegisters) error {
		drs.ClearBreakpoint(uint8(idx))
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not remove hardware breakpoint %d of thread %d: %w", idx, t.id, err)
	}
	if logflags.HWBP() {
		logflags.HWBPLogger().Debugf("thread %d: slot %d cleared", t.id, idx)
	}
	return nil
}

// RemoveHWBPAt disables the hardware breakpoint watching addr. If no slot
// watches addr ErrBreakpointNotFound is returned and the debug registers
// are left untouched.
func (t *Thread) RemoveHWBPAt(addr uint64) error {
	idx := -1
	err := t.withDebugRegisters(func(drs *amd64util.DebugRegisters) error {
		idx = drs.Find(addr)
		if idx < 0 {
			return ErrBreakpointNotFound
		}
		drs.ClearBreakpoint(uint8(idx))
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not remove hardware breakpoint at %#x of thread %d: %w", addr, t.id, err)
	}
	if logflags.HWBP() {
		logflags.HWBPLogger().Debugf("thread %d: slot %d at %#x cleared", t.id, idx, addr)
	}
	return nil
}

// HWBreakpoints returns the decoded state of the four debug address
// registers, including breakpoints set by others.
func (t *Thread) HWBreakpoints() ([amd64util.NumSlots]amd64util.Slot, error) {
	var slots [amd64util.NumSlots]amd64util.Slot
	err := t.withDebugRegisters(func(drs *amd64util.DebugRegisters) error {
		slots = drs.Slots()
		return nil
	})
	return slots, err
}

// Wow64HWBreakpoints returns the debug register slots as seen through the
// 32-bit context of a WOW64 thread. Addresses are truncated to 32 bits.
func (t *Thread) Wow64HWBreakpoints() ([amd64util.NumSlots]amd64util.Slot, error) {
	ctx, err := t.GetContext(ModeWow64, winutil.WOW64_CONTEXT_DEBUG_REGISTERS, false)
	if err != nil {
		return [amd64util.NumSlots]amd64util.Slot{}, err
	}
	addrs, _, dr7 := ctx.Wow64.DebugRegisters()
	return amd64util.DecodeDR7(dr7, addrs), nil
}

// ActiveHWBP returns the slot reported as triggered in DR6 and clears the
// condition bits.
func (t *Thread) ActiveHWBP() (int, bool, error) {
	var (
		ok  bool
		idx uint8
	)
	err := t.withDebugRegisters(func(drs *amd64util.DebugRegisters) error {
		ok, idx = drs.GetActiveBreakpoint()
		return nil
	})
	if err != nil || !ok {
		return -1, false, err
	}
	return int(idx), true, nil
}
