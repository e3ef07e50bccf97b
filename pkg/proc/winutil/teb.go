package winutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Wow64TebOffset is the distance between the native TEB of a WOW64 thread
// and its 32-bit TEB: the 64-bit block rounded up to whole pages.
const Wow64TebOffset = 0x2000

// NT_TIB64 tracks the 64-bit _NT_TIB windows struct.
type NT_TIB64 struct {
	ExceptionList        uint64
	StackBase            uint64
	StackLimit           uint64
	SubSystemTib         uint64
	FiberData            uint64
	ArbitraryUserPointer uint64
	Self                 uint64
}

// NT_TIB32 tracks the 32-bit _NT_TIB windows struct.
type NT_TIB32 struct {
	ExceptionList        uint32
	StackBase            uint32
	StackLimit           uint32
	SubSystemTib         uint32
	FiberData            uint32
	ArbitraryUserPointer uint32
	Self                 uint32
}

// TEB64 is the leading, version independent part of the 64-bit thread
// environment block.
type TEB64 struct {
	NtTib                        NT_TIB64
	EnvironmentPointer           uint64
	UniqueProcess                uint64
	UniqueThread                 uint64
	ActiveRpcHandle              uint64
	ThreadLocalStoragePointer    uint64
	ProcessEnvironmentBlock      uint64
	LastErrorValue               uint32
	CountOfOwnedCriticalSections uint32
}

// TEB32 is the leading, version independent part of the 32-bit thread
// environment block.
type TEB32 struct {
	NtTib                        NT_TIB32
	EnvironmentPointer           uint32
	UniqueProcess                uint32
	UniqueThread                 uint32
	ActiveRpcHandle              uint32
	ThreadLocalStoragePointer    uint32
	ProcessEnvironmentBlock      uint32
	LastErrorValue               uint32
	CountOfOwnedCriticalSections uint32
}

// TEB64Size and TEB32Size are the number of bytes decoded by DecodeTEB64
// and DecodeTEB32.
var (
	TEB64Size = binary.Size(TEB64{})
	TEB32Size = binary.Size(TEB32{})
)

// DecodeTEB64 decodes the header of a 64-bit TEB read from target memory.
func DecodeTEB64(buf []byte) (*TEB64, error) {
	if len(buf) < TEB64Size {
		return nil, fmt.Errorf("short TEB64 buffer: %d bytes, need %d", len(buf), TEB64Size)
	}
	var teb TEB64
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &teb); err != nil {
		return nil, err
	}
	return &teb, nil
}

// DecodeTEB32 decodes the header of a 32-bit TEB read from target memory.
func DecodeTEB32(buf []byte) (*TEB32, error) {
	if len(buf) < TEB32Size {
		return nil, fmt.Errorf("short TEB32 buffer: %d bytes, need %d", len(buf), TEB32Size)
	}
	var teb TEB32
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &teb); err != nil {
		return nil, err
	}
	return &teb, nil
}
