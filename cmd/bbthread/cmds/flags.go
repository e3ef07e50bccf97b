package cmds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/thread"
)

// hwbpTypeFlag is a pflag.Value selecting the access that triggers a
// hardware breakpoint.
type hwbpTypeFlag thread.HWBPType

var _ pflag.Value = (*hwbpTypeFlag)(nil)

func (f *hwbpTypeFlag) String() string {
	return thread.HWBPType(*f).String()
}

func (f *hwbpTypeFlag) Set(s string) error {
	switch strings.ToLower(s) {
	case "x", "exec", "execute":
		*f = hwbpTypeFlag(thread.HWBPExecute)
	case "w", "write":
		*f = hwbpTypeFlag(thread.HWBPWrite)
	case "rw", "access", "readwrite":
		*f = hwbpTypeFlag(thread.HWBPAccess)
	default:
		return fmt.Errorf("unknown breakpoint type %q, must be execute, write or access", s)
	}
	return nil
}

func (f *hwbpTypeFlag) Type() string {
	return "type"
}

// hwbpLenFlag is a pflag.Value accepting the lengths a debug register can
// watch.
type hwbpLenFlag int

var _ pflag.Value = (*hwbpLenFlag)(nil)

func (f *hwbpLenFlag) String() string {
	return strconv.Itoa(int(*f))
}

func (f *hwbpLenFlag) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid breakpoint length %q", s)
	}
	switch n {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("invalid breakpoint length %d, must be 1, 2, 4 or 8", n)
	}
	*f = hwbpLenFlag(n)
	return nil
}

func (f *hwbpLenFlag) Type() string {
	return "bytes"
}

// addrFlag is a pflag.Value holding an address, hexadecimal with a 0x
// prefix or decimal.
type addrFlag uint64

var _ pflag.Value = (*addrFlag)(nil)

func (f *addrFlag) String() string {
	return fmt.Sprintf("%#x", uint64(*f))
}

func (f *addrFlag) Set(s string) error {
	n, err := parseAddr(s)
	if err != nil {
		return err
	}
	*f = addrFlag(n)
	return nil
}

func (f *addrFlag) Type() string {
	return "address"
}

func parseAddr(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.ReplaceAll(s, "`", ""), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return n, nil
}

func parseTID(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid thread id %q", s)
	}
	return uint32(n), nil
}
