package thread

import (
	"fmt"

	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/winutil"
)

// TEB returns the address of the thread environment block for the given
// mode. The 32-bit block of a WOW64 thread is located right after its
// native block.
func (t *Thread) TEB(mode Mode) (uint64, error) {
	if t.handle == 0 {
		return 0, ErrInvalidHandle
	}
	if err := t.checkMode(mode); err != nil {
		return 0, err
	}
	info, err := t.api().QueryThreadBasicInformation(t.handle)
	if err != nil {
		return 0, fmt.Errorf("could not query thread %d: %w", t.id, err)
	}
	teb := info.TebBaseAddress
	if teb == 0 {
		return 0, fmt.Errorf("thread %d has no TEB: %w", t.id, ErrThreadExited)
	}
	if mode == ModeWow64 {
		teb += winutil.Wow64TebOffset
	}
	return teb, nil
}

// ReadTEB64 returns the address and the header of the native thread
// environment block.
func (t *Thread) ReadTEB64() (uint64, *winutil.TEB64, error) {
	addr, err := t.TEB(ModeNative)
	if err != nil {
		return 0, nil, err
	}
	buf, err := t.readBlock(addr, winutil.TEB64Size)
	if err != nil {
		return addr, nil, err
	}
	teb, err := winutil.DecodeTEB64(buf)
	return addr, teb, err
}

// ReadTEB32 returns the address and the header of the 32-bit thread
// environment block of a WOW64 thread.
func (t *Thread) ReadTEB32() (uint64, *winutil.TEB32, error) {
	addr, err := t.TEB(ModeWow64)
	if err != nil {
		return 0, nil, err
	}
	buf, err := t.readBlock(addr, winutil.TEB32Size)
	if err != nil {
		return addr, nil, err
	}
	teb, err := winutil.DecodeTEB32(buf)
	return addr, teb, err
}

func (t *Thread) readBlock(addr uint64, size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := t.core.ReadMemory(addr, buf)
	if err != nil {
		return nil, fmt.Errorf("could not read TEB of thread %d at %#x: %w", t.id, addr, err)
	}
	if n != size {
		return nil, fmt.Errorf("short read of TEB of thread %d at %#x: %d of %d bytes", t.id, addr, n, size)
	}
	return buf, nil
}
