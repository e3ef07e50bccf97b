package winutil

import (
	"encoding/binary"
	"testing"
	"unsafe"
)

func TestContextSizes(t *testing.T) {
	if sz := unsafe.Sizeof(AMD64CONTEXT{}); sz != 1232 {
		t.Fatalf("AMD64CONTEXT size %d, expected 1232", sz)
	}
	if sz := unsafe.Sizeof(X86CONTEXT{}); sz != 716 {
		t.Fatalf("X86CONTEXT size %d, expected 716", sz)
	}
	if off := unsafe.Offsetof(AMD64CONTEXT{}.Dr7); off != 0x70 {
		t.Fatalf("AMD64CONTEXT.Dr7 offset %#x, expected 0x70", off)
	}
	if off := unsafe.Offsetof(AMD64CONTEXT{}.Rip); off != 0xf8 {
		t.Fatalf("AMD64CONTEXT.Rip offset %#x, expected 0xf8", off)
	}
	if off := unsafe.Offsetof(X86CONTEXT{}.Eip); off != 0xb8 {
		t.Fatalf("X86CONTEXT.Eip offset %#x, expected 0xb8", off)
	}
}

func TestNewAMD64CONTEXTAligned(t *testing.T) {
	for i := 0; i < 16; i++ {
		ctx := NewAMD64CONTEXT()
		if uintptr(unsafe.Pointer(ctx))&15 != 0 {
			t.Fatalf("context not aligned: %p", ctx)
		}
	}
}

func TestX86DebugRegisters(t *testing.T) {
	ctx := NewX86CONTEXT()
	ctx.Dr0, ctx.Dr3 = 0x1000, 4
	ctx.Dr6, ctx.Dr7 = 0xf, 0x401
	addrs, dr6, dr7 := ctx.DebugRegisters()
	if addrs[0] != 0x1000 || addrs[3] != 4 || dr6 != 0xf || dr7 != 0x401 {
		t.Fatalf("unexpected debug registers %#x %#x %#x", addrs, dr6, dr7)
	}
}

func TestSliceNames(t *testing.T) {
	ctx := NewAMD64CONTEXT()
	ctx.Rip = 0x1234
	regs := ctx.Slice(false)
	if regs[0].Name != "Rip" || regs[0].Value != 0x1234 {
		t.Fatalf("unexpected first register %v", regs[0])
	}
	if n := len(ctx.Slice(true)) - len(regs); n != 18 {
		t.Fatalf("expected 18 floating point registers, got %d", n)
	}

	x := NewX86CONTEXT()
	x.Eip = 0x401000
	if r := x.Slice()[0]; r.Name != "Eip" || r.Value != 0x401000 {
		t.Fatalf("unexpected first register %v", r)
	}
}

func TestDecodeTEB(t *testing.T) {
	buf := make([]byte, TEB64Size)
	binary.LittleEndian.PutUint64(buf[0x30:], 0x7ff000)    // NtTib.Self
	binary.LittleEndian.PutUint64(buf[0x48:], 1234)        // ClientId.UniqueThread
	binary.LittleEndian.PutUint64(buf[0x60:], 0x7ffd_0000) // PEB
	teb, err := DecodeTEB64(buf)
	if err != nil {
		t.Fatal(err)
	}
	if teb.NtTib.Self != 0x7ff000 || teb.UniqueThread != 1234 || teb.ProcessEnvironmentBlock != 0x7ffd_0000 {
		t.Fatalf("bad TEB64 decode: %#v", teb)
	}

	buf = make([]byte, TEB32Size)
	binary.LittleEndian.PutUint32(buf[0x18:], 0x7efdd000)
	binary.LittleEndian.PutUint32(buf[0x24:], 99)
	binary.LittleEndian.PutUint32(buf[0x30:], 0x7efde000)
	teb32, err := DecodeTEB32(buf)
	if err != nil {
		t.Fatal(err)
	}
	if teb32.NtTib.Self != 0x7efdd000 || teb32.UniqueThread != 99 || teb32.ProcessEnvironmentBlock != 0x7efde000 {
		t.Fatalf("bad TEB32 decode: %#v", teb32)
	}

	if _, err := DecodeTEB32(buf[:4]); err == nil {
		t.Fatal("expected error decoding short buffer")
	}
}
