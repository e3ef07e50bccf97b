package amd64util

import (
	"errors"
	"fmt"
)

// NumSlots is the number of address breakpoint registers, DR0 to DR3.
const NumSlots = 4

// ErrInvalidBreakpoint is returned when a breakpoint can not be expressed
// in the debug registers.
var ErrInvalidBreakpoint = errors.New("invalid hardware breakpoint")

// Condition is the R/W field of a DR7 slot.
type Condition uint8

const (
	Execute   Condition = 0x0 // instruction execution
	Write     Condition = 0x1 // data writes
	ReadWrite Condition = 0x3 // data reads and writes
)

func (c Condition) String() string {
	switch c {
	case Execute:
		return "execute"
	case Write:
		return "write"
	case ReadWrite:
		return "access"
	}
	return fmt.Sprintf("Condition(%d)", uint8(c))
}

// Slot describes one of the four address breakpoints.
type Slot struct {
	Enabled bool // local enable bit
	Global  bool // global enable bit
	Address uint64
	Cond    Condition
	Size    int
}

// Occupied reports whether either enable bit of the slot is set.
func (s Slot) Occupied() bool {
	return s.Enabled || s.Global
}

// DR7 layout, Intel 64 and IA-32 Architectures Software Developer's Manual,
// Vol. 3B, section 17.2.4.
const dr7LocalExact = 1 << 8

func lenrwBitsOffset(idx uint8) uint8 {
	return 16 + idx*4
}

func enableBitOffset(idx uint8) uint8 {
	return idx * 2
}

func globalBitOffset(idx uint8) uint8 {
	return idx*2 + 1
}

// CheckBreakpoint validates a breakpoint request and returns the size that
// will be encoded. Execute breakpoints are always one byte long.
func CheckBreakpoint(addr uint64, cond Condition, sz int) (int, error) {
	switch cond {
	case Execute:
		return 1, nil
	case Write, ReadWrite:
	default:
		return 0, fmt.Errorf("%w: condition %d not supported", ErrInvalidBreakpoint, uint8(cond))
	}
	switch sz {
	case 1, 2, 4, 8:
	default:
		return 0, fmt.Errorf("%w: data breakpoint of size %d not supported", ErrInvalidBreakpoint, sz)
	}
	if addr%uint64(sz) != 0 {
		return 0, fmt.Errorf("%w: address %#x not aligned to %d bytes", ErrInvalidBreakpoint, addr, sz)
	}
	return sz, nil
}

func encodeLenRW(cond Condition, sz int) (uint64, error) {
	lenrw := uint64(cond) & 0x3
	if cond == Execute {
		return lenrw, nil
	}
	switch sz {
	case 1:
		// already ok
	case 2:
		lenrw |= 0x1 << 2
	case 4:
		lenrw |= 0x3 << 2
	case 8:
		lenrw |= 0x2 << 2
	default:
		return 0, fmt.Errorf("%w: data breakpoint of size %d not supported", ErrInvalidBreakpoint, sz)
	}
	return lenrw, nil
}

func decodeLen(bits uint64) int {
	switch bits & 0x3 {
	case 0x1:
		return 2
	case 0x2:
		return 8 // sic
	case 0x3:
		return 4
	}
	return 1
}

// EncodeDR7 packs the state of the four slots into dr7. Bits that do not
// belong to a slot are copied from dr7, except the local exact bit which is
// set when any slot is locally enabled.
func EncodeDR7(dr7 uint64, slots [NumSlots]Slot) (uint64, error) {
	anyLocal := false
	for i := range slots {
		idx := uint8(i)
		s := slots[i]
		dr7 &^= 1 << enableBitOffset(idx)
		dr7 &^= 1 << globalBitOffset(idx)
		dr7 &^= 0xf << lenrwBitsOffset(idx)
		if !s.Occupied() {
			continue
		}
		lenrw, err := encodeLenRW(s.Cond, s.Size)
		if err != nil {
			return 0, fmt.Errorf("slot %d: %w", idx, err)
		}
		dr7 |= lenrw << lenrwBitsOffset(idx)
		if s.Enabled {
			dr7 |= 1 << enableBitOffset(idx)
			anyLocal = true
		}
		if s.Global {
			dr7 |= 1 << globalBitOffset(idx)
		}
	}
	if anyLocal {
		dr7 |= dr7LocalExact
	}
	return dr7, nil
}

// DecodeDR7 unpacks dr7 and the four address registers into slots. Free
// slots are returned as the zero Slot.
func DecodeDR7(dr7 uint64, addrs [NumSlots]uint64) [NumSlots]Slot {
	var slots [NumSlots]Slot
	for i := range slots {
		idx := uint8(i)
		s := Slot{
			Enabled: dr7&(1<<enableBitOffset(idx)) != 0,
			Global:  dr7&(1<<globalBitOffset(idx)) != 0,
		}
		if !s.Occupied() {
			continue
		}
		lenrw := (dr7 >> lenrwBitsOffset(idx)) & 0xf
		s.Address = addrs[idx]
		s.Cond = Condition(lenrw & 0x3)
		s.Size = decodeLen(lenrw >> 2)
		slots[i] = s
	}
	return slots
}

// DebugRegisters represents x86 debug registers described in the Intel 64
// and IA-32 Architectures Software Developer's Manual, Vol. 3B, section
// 17.2
type DebugRegisters struct {
	Addrs    [NumSlots]uint64
	DR6, DR7 uint64
	Dirty    bool
}

func NewDebugRegisters(addrs [NumSlots]uint64, dr6, dr7 uint64) *DebugRegisters {
	return &DebugRegisters{
		Addrs: addrs,
		DR6:   dr6,
		DR7:   dr7,
		Dirty: false,
	}
}

// Slots returns the decoded state of the four slots.
func (drs *DebugRegisters) Slots() [NumSlots]Slot {
	return DecodeDR7(drs.DR7, drs.Addrs)
}

// FreeSlot returns the lowest slot with neither enable bit set, or -1.
func (drs *DebugRegisters) FreeSlot() int {
	for idx, s := range drs.Slots() {
		if !s.Occupied() {
			return idx
		}
	}
	return -1
}

// Find returns the index of the locally enabled slot watching addr, or -1.
func (drs *DebugRegisters) Find(addr uint64) int {
	for idx, s := range drs.Slots() {
		if s.Enabled && s.Address == addr {
			return idx
		}
	}
	return -1
}

// SetBreakpoint sets hardware breakpoint at index 'idx' to the specified
// address, condition and size.
// If the breakpoint is already in use but the parameters match it does
// nothing.
func (drs *DebugRegisters) SetBreakpoint(idx uint8, addr uint64, cond Condition, sz int) error {
	if int(idx) >= NumSlots {
		return fmt.Errorf("hardware breakpoints exhausted")
	}
	sz, err := CheckBreakpoint(addr, cond, sz)
	if err != nil {
		return err
	}
	slots := drs.Slots()
	if cur := slots[idx]; cur.Occupied() {
		if cur.Address != addr || cur.Cond != cond || cur.Size != sz {
			return fmt.Errorf("hardware breakpoint %d already in use (address %#x)", idx, cur.Address)
		}
		// hardware breakpoint already set
		return nil
	}

	lenrw, err := encodeLenRW(cond, sz)
	if err != nil {
		return err
	}
	// only the bits of idx change, other slots keep their raw encoding
	drs.DR7 &^= 0xf << lenrwBitsOffset(idx)
	drs.DR7 |= lenrw << lenrwBitsOffset(idx)
	drs.DR7 |= 1<<enableBitOffset(idx) | dr7LocalExact
	drs.Addrs[idx] = addr
	drs.Dirty = true
	return nil
}

// ClearBreakpoint disables the hardware breakpoint at index 'idx' and
// clears its address. If the breakpoint was already disabled it does
// nothing.
func (drs *DebugRegisters) ClearBreakpoint(idx uint8) {
	if int(idx) >= NumSlots || drs.DR7&(1<<enableBitOffset(idx)) == 0 {
		return
	}
	drs.DR7 &^= 1 << enableBitOffset(idx)
	if drs.DR7&(1<<globalBitOffset(idx)) == 0 {
		drs.DR7 &^= 0xf << lenrwBitsOffset(idx)
		drs.Addrs[idx] = 0
	}
	drs.Dirty = true
}

// GetActiveBreakpoint returns the active hardware breakpoint and resets the
// condition flags.
func (drs *DebugRegisters) GetActiveBreakpoint() (ok bool, idx uint8) {
	for idx := uint8(0); idx < NumSlots; idx++ {
		enable := drs.DR7 & (1 << enableBitOffset(idx))
		if enable == 0 {
			continue
		}
		if drs.DR6&(1<<idx) != 0 {
			drs.DR6 &^= 0xf // clear condition bits
			drs.Dirty = true
			return true, idx
		}
	}
	return false, 0
}
