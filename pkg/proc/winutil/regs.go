package winutil

import (
	"fmt"
	"unsafe"
)

// Context flags for AMD64CONTEXT.ContextFlags.
const (
	CONTEXT_AMD64 = 0x100000

	CONTEXT_AMD64_CONTROL         = CONTEXT_AMD64 | 0x1
	CONTEXT_AMD64_INTEGER         = CONTEXT_AMD64 | 0x2
	CONTEXT_AMD64_SEGMENTS        = CONTEXT_AMD64 | 0x4
	CONTEXT_AMD64_FLOATING_POINT  = CONTEXT_AMD64 | 0x8
	CONTEXT_AMD64_DEBUG_REGISTERS = CONTEXT_AMD64 | 0x10

	CONTEXT_AMD64_FULL = CONTEXT_AMD64_CONTROL | CONTEXT_AMD64_INTEGER | CONTEXT_AMD64_FLOATING_POINT
	CONTEXT_AMD64_ALL  = CONTEXT_AMD64_CONTROL | CONTEXT_AMD64_INTEGER | CONTEXT_AMD64_SEGMENTS | CONTEXT_AMD64_FLOATING_POINT | CONTEXT_AMD64_DEBUG_REGISTERS
)

// Register is a named register value, used to display register state.
type Register struct {
	Name  string
	Value uint64
	Bytes []byte
}

func (r Register) String() string {
	if r.Bytes != nil {
		return fmt.Sprintf("%s = %x", r.Name, r.Bytes)
	}
	return fmt.Sprintf("%s = %#016x", r.Name, r.Value)
}

// M128A tracks the _M128A windows struct.
type M128A struct {
	Low  uint64
	High int64
}

// XMM_SAVE_AREA32 tracks the _XMM_SAVE_AREA32 windows struct.
type XMM_SAVE_AREA32 struct {
	ControlWord    uint16
	StatusWord     uint16
	TagWord        byte
	Reserved1      byte
	ErrorOpcode    uint16
	ErrorOffset    uint32
	ErrorSelector  uint16
	Reserved2      uint16
	DataOffset     uint32
	DataSelector   uint16
	Reserved3      uint16
	MxCsr          uint32
	MxCsr_Mask     uint32
	FloatRegisters [8]M128A
	XmmRegisters   [256]byte
	Reserved4      [96]byte
}

// AMD64CONTEXT tracks the _CONTEXT of windows on x64.
type AMD64CONTEXT struct {
	P1Home uint64
	P2Home uint64
	P3Home uint64
	P4Home uint64
	P5Home uint64
	P6Home uint64

	ContextFlags uint32
	MxCsr        uint32

	SegCs  uint16
	SegDs  uint16
	SegEs  uint16
	SegFs  uint16
	SegGs  uint16
	SegSs  uint16
	EFlags uint32

	Dr0 uint64
	Dr1 uint64
	Dr2 uint64
	Dr3 uint64
	Dr6 uint64
	Dr7 uint64

	Rax uint64
	Rcx uint64
	Rdx uint64
	Rbx uint64
	Rsp uint64
	Rbp uint64
	Rsi uint64
	Rdi uint64
	R8  uint64
	R9  uint64
	R10 uint64
	R11 uint64
	R12 uint64
	R13 uint64
	R14 uint64
	R15 uint64

	Rip uint64

	FltSave XMM_SAVE_AREA32

	VectorRegister [26]M128A
	VectorControl  uint64

	DebugControl         uint64
	LastBranchToRip      uint64
	LastBranchFromRip    uint64
	LastExceptionToRip   uint64
	LastExceptionFromRip uint64
}

// NewAMD64CONTEXT allocates Windows CONTEXT structure aligned to 16 bytes.
func NewAMD64CONTEXT() *AMD64CONTEXT {
	var c *AMD64CONTEXT
	buf := make([]byte, unsafe.Sizeof(*c)+15)
	return (*AMD64CONTEXT)(unsafe.Pointer((uintptr(unsafe.Pointer(&buf[15]))) &^ 15))
}

func (ctx *AMD64CONTEXT) SetFlags(flags uint32) {
	ctx.ContextFlags = flags
}

func (ctx *AMD64CONTEXT) SetPC(pc uint64) {
	ctx.Rip = pc
}

// DebugRegisters returns DR0-DR3, DR6 and DR7.
func (ctx *AMD64CONTEXT) DebugRegisters() (addrs [4]uint64, dr6, dr7 uint64) {
	return [4]uint64{ctx.Dr0, ctx.Dr1, ctx.Dr2, ctx.Dr3}, ctx.Dr6, ctx.Dr7
}

// SetDebugRegisters stores DR0-DR3, DR6 and DR7.
func (ctx *AMD64CONTEXT) SetDebugRegisters(addrs [4]uint64, dr6, dr7 uint64) {
	ctx.Dr0, ctx.Dr1, ctx.Dr2, ctx.Dr3 = addrs[0], addrs[1], addrs[2], addrs[3]
	ctx.Dr6, ctx.Dr7 = dr6, dr7
}

// Slice returns the registers as a list of (name, value) pairs.
func (ctx *AMD64CONTEXT) Slice(floatingPoint bool) []Register {
	var regs = []struct {
		k string
		v uint64
	}{
		{"Rip", ctx.Rip},
		{"Rsp", ctx.Rsp},
		{"Rax", ctx.Rax},
		{"Rbx", ctx.Rbx},
		{"Rcx", ctx.Rcx},
		{"Rdx", ctx.Rdx},
		{"Rdi", ctx.Rdi},
		{"Rsi", ctx.Rsi},
		{"Rbp", ctx.Rbp},
		{"R8", ctx.R8},
		{"R9", ctx.R9},
		{"R10", ctx.R10},
		{"R11", ctx.R11},
		{"R12", ctx.R12},
		{"R13", ctx.R13},
		{"R14", ctx.R14},
		{"R15", ctx.R15},
		{"Rflags", uint64(ctx.EFlags)},
		{"Cs", uint64(ctx.SegCs)},
		{"Fs", uint64(ctx.SegFs)},
		{"Gs", uint64(ctx.SegGs)},
		{"Dr0", ctx.Dr0},
		{"Dr1", ctx.Dr1},
		{"Dr2", ctx.Dr2},
		{"Dr3", ctx.Dr3},
		{"Dr6", ctx.Dr6},
		{"Dr7", ctx.Dr7},
	}
	outlen := len(regs)
	if floatingPoint {
		outlen += 2 + 16
	}
	out := make([]Register, 0, outlen)
	for _, reg := range regs {
		out = append(out, Register{Name: reg.k, Value: reg.v})
	}
	if floatingPoint {
		out = append(out, Register{Name: "MXCSR", Value: uint64(ctx.FltSave.MxCsr)})
		out = append(out, Register{Name: "MXCSR_MASK", Value: uint64(ctx.FltSave.MxCsr_Mask)})
		for i := 0; i < len(ctx.FltSave.XmmRegisters); i += 16 {
			out = append(out, Register{Name: fmt.Sprintf("XMM%d", i/16), Bytes: ctx.FltSave.XmmRegisters[i : i+16]})
		}
	}
	return out
}
