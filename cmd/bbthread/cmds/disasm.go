package cmds

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/thread"
)

// maxInstLen is the longest x86 instruction.
const maxInstLen = 15

func noSymbols(uint64) (string, uint64) {
	return "", 0
}

// disassemble decodes the instruction at the start of mem, located at pc,
// in the instruction set of mode.
func disassemble(mem []byte, pc uint64, mode thread.Mode) (string, error) {
	bits := 64
	if mode == thread.ModeWow64 {
		bits = 32
	}
	inst, err := x86asm.Decode(mem, bits)
	if err != nil {
		return "", fmt.Errorf("could not decode instruction at %#x: %v", pc, err)
	}
	return fmt.Sprintf("% x\t%s", mem[:inst.Len], x86asm.IntelSyntax(inst, pc, noSymbols)), nil
}

// instructionAt reads and decodes the instruction at pc of th's process.
func instructionAt(th *thread.Thread, pc uint64, mode thread.Mode) (string, error) {
	mem := make([]byte, maxInstLen)
	n, err := th.Core().ReadMemory(pc, mem)
	if n == 0 && err != nil {
		return "", err
	}
	return disassemble(mem[:n], pc, mode)
}
