package winutil

// Context flags for X86CONTEXT.ContextFlags.
const (
	WOW64_CONTEXT_i386 = 0x10000

	WOW64_CONTEXT_CONTROL            = WOW64_CONTEXT_i386 | 0x1
	WOW64_CONTEXT_INTEGER            = WOW64_CONTEXT_i386 | 0x2
	WOW64_CONTEXT_SEGMENTS           = WOW64_CONTEXT_i386 | 0x4
	WOW64_CONTEXT_FLOATING_POINT     = WOW64_CONTEXT_i386 | 0x8
	WOW64_CONTEXT_DEBUG_REGISTERS    = WOW64_CONTEXT_i386 | 0x10
	WOW64_CONTEXT_EXTENDED_REGISTERS = WOW64_CONTEXT_i386 | 0x20

	WOW64_CONTEXT_FULL = WOW64_CONTEXT_CONTROL | WOW64_CONTEXT_INTEGER | WOW64_CONTEXT_SEGMENTS
	WOW64_CONTEXT_ALL  = WOW64_CONTEXT_CONTROL | WOW64_CONTEXT_INTEGER | WOW64_CONTEXT_SEGMENTS | WOW64_CONTEXT_FLOATING_POINT | WOW64_CONTEXT_DEBUG_REGISTERS | WOW64_CONTEXT_EXTENDED_REGISTERS
)

const wow64MaximumSupportedExtension = 512

// FLOATING_SAVE_AREA tracks the WOW64_FLOATING_SAVE_AREA windows struct.
type FLOATING_SAVE_AREA struct {
	ControlWord   uint32
	StatusWord    uint32
	TagWord       uint32
	ErrorOffset   uint32
	ErrorSelector uint32
	DataOffset    uint32
	DataSelector  uint32
	RegisterArea  [80]byte
	Cr0NpxState   uint32
}

// X86CONTEXT tracks the WOW64_CONTEXT of windows, the register state of a
// thread executing 32-bit code on a 64-bit system.
type X86CONTEXT struct {
	ContextFlags uint32

	Dr0 uint32
	Dr1 uint32
	Dr2 uint32
	Dr3 uint32
	Dr6 uint32
	Dr7 uint32

	FloatSave FLOATING_SAVE_AREA

	SegGs uint32
	SegFs uint32
	SegEs uint32
	SegDs uint32

	Edi uint32
	Esi uint32
	Ebx uint32
	Edx uint32
	Ecx uint32
	Eax uint32

	Ebp    uint32
	Eip    uint32
	SegCs  uint32
	EFlags uint32
	Esp    uint32
	SegSs  uint32

	ExtendedRegisters [wow64MaximumSupportedExtension]byte
}

// NewX86CONTEXT allocates a zeroed WOW64_CONTEXT. Its natural alignment is
// enough for Wow64GetThreadContext.
func NewX86CONTEXT() *X86CONTEXT {
	return new(X86CONTEXT)
}

func (ctx *X86CONTEXT) SetFlags(flags uint32) {
	ctx.ContextFlags = flags
}

func (ctx *X86CONTEXT) SetPC(pc uint64) {
	ctx.Eip = uint32(pc)
}

// DebugRegisters returns DR0-DR3, DR6 and DR7 widened to 64 bits.
func (ctx *X86CONTEXT) DebugRegisters() (addrs [4]uint64, dr6, dr7 uint64) {
	return [4]uint64{uint64(ctx.Dr0), uint64(ctx.Dr1), uint64(ctx.Dr2), uint64(ctx.Dr3)}, uint64(ctx.Dr6), uint64(ctx.Dr7)
}

// Slice returns the registers as a list of (name, value) pairs.
func (ctx *X86CONTEXT) Slice() []Register {
	var regs = []struct {
		k string
		v uint32
	}{
		{"Eip", ctx.Eip},
		{"Esp", ctx.Esp},
		{"Eax", ctx.Eax},
		{"Ebx", ctx.Ebx},
		{"Ecx", ctx.Ecx},
		{"Edx", ctx.Edx},
		{"Edi", ctx.Edi},
		{"Esi", ctx.Esi},
		{"Ebp", ctx.Ebp},
		{"Eflags", ctx.EFlags},
		{"Cs", ctx.SegCs},
		{"Ds", ctx.SegDs},
		{"Es", ctx.SegEs},
		{"Fs", ctx.SegFs},
		{"Gs", ctx.SegGs},
		{"Ss", ctx.SegSs},
		{"Dr0", ctx.Dr0},
		{"Dr1", ctx.Dr1},
		{"Dr2", ctx.Dr2},
		{"Dr3", ctx.Dr3},
		{"Dr6", ctx.Dr6},
		{"Dr7", ctx.Dr7},
	}
	out := make([]Register, 0, len(regs))
	for _, reg := range regs {
		out = append(out, Register{Name: reg.k, Value: uint64(reg.v)})
	}
	return out
}
