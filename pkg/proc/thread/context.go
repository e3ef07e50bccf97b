package thread

import (
	"fmt"

	"github.com/vegetable-and-chicken/Blackbone/pkg/logflags"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/winutil"
)

// Mode is the register width personality of a thread.
type Mode uint8

const (
	// ModeNative is native 64-bit execution.
	ModeNative Mode = iota
	// ModeWow64 is 32-bit code running under WOW64 on a 64-bit system.
	ModeWow64
)

func (m Mode) String() string {
	switch m {
	case ModeNative:
		return "native"
	case ModeWow64:
		return "wow64"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Context is the register state of a thread in one execution mode. Native
// is set for ModeNative, Wow64 for ModeWow64.
type Context struct {
	Mode   Mode
	Native *winutil.AMD64CONTEXT
	Wow64  *winutil.X86CONTEXT
}

// NewContext allocates an empty context for mode selecting the register
// groups in flags. Zero flags select every group.
func NewContext(mode Mode, flags uint32) *Context {
	switch mode {
	case ModeWow64:
		if flags == 0 {
			flags = winutil.WOW64_CONTEXT_ALL
		}
		ctx := winutil.NewX86CONTEXT()
		ctx.SetFlags(flags)
		return &Context{Mode: mode, Wow64: ctx}
	default:
		if flags == 0 {
			flags = winutil.CONTEXT_AMD64_ALL
		}
		ctx := winutil.NewAMD64CONTEXT()
		ctx.SetFlags(flags)
		return &Context{Mode: ModeNative, Native: ctx}
	}
}

func (c *Context) validate() error {
	switch c.Mode {
	case ModeNative:
		if c.Native == nil {
			return fmt.Errorf("%w: native context missing register block", ErrInvalidArgument)
		}
		if c.Native.ContextFlags&winutil.CONTEXT_AMD64 == 0 {
			return fmt.Errorf("%w: context flags %#x are not amd64 flags", ErrInvalidArgument, c.Native.ContextFlags)
		}
	case ModeWow64:
		if c.Wow64 == nil {
			return fmt.Errorf("%w: wow64 context missing register block", ErrInvalidArgument)
		}
		if c.Wow64.ContextFlags&winutil.WOW64_CONTEXT_i386 == 0 {
			return fmt.Errorf("%w: context flags %#x are not i386 flags", ErrInvalidArgument, c.Wow64.ContextFlags)
		}
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidArgument, uint8(c.Mode))
	}
	return nil
}

// Flags returns the register groups selected by the context.
func (c *Context) Flags() uint32 {
	if c.Mode == ModeWow64 {
		return c.Wow64.ContextFlags
	}
	return c.Native.ContextFlags
}

// PC returns the instruction pointer.
func (c *Context) PC() uint64 {
	if c.Mode == ModeWow64 {
		return uint64(c.Wow64.Eip)
	}
	return c.Native.Rip
}

// SP returns the stack pointer.
func (c *Context) SP() uint64 {
	if c.Mode == ModeWow64 {
		return uint64(c.Wow64.Esp)
	}
	return c.Native.Rsp
}

// SetPC changes the instruction pointer.
func (c *Context) SetPC(pc uint64) {
	if c.Mode == ModeWow64 {
		c.Wow64.SetPC(pc)
		return
	}
	c.Native.SetPC(pc)
}

// Registers returns the register values for display.
func (c *Context) Registers(floatingPoint bool) []winutil.Register {
	if c.Mode == ModeWow64 {
		return c.Wow64.Slice()
	}
	return c.Native.Slice(floatingPoint)
}

// Mode returns the execution mode of the thread, derived from its process.
func (t *Thread) Mode() Mode {
	if t.core.Wow64() {
		return ModeWow64
	}
	return ModeNative
}

// checkMode rejects ModeWow64 for threads of native processes. Every
// thread on a 64-bit system has a native context, so ModeNative is always
// accepted.
func (t *Thread) checkMode(mode Mode) error {
	switch mode {
	case ModeNative:
		return nil
	case ModeWow64:
		if t.core.Wow64() {
			return nil
		}
		return fmt.Errorf("thread %d: %w", t.id, ErrModeMismatch)
	}
	return fmt.Errorf("%w: unknown mode %d", ErrInvalidArgument, uint8(mode))
}

// withSuspended runs fn with the thread suspended, unless dontSuspend is
// set in which case the caller is responsible for the thread state. The
// thread is resumed even if fn fails.
func (t *Thread) withSuspended(dontSuspend bool, fn func() error) error {
	if dontSuspend {
		return fn()
	}
	if err := t.Suspend(); err != nil {
		return err
	}
	err := fn()
	if rerr := t.Resume(); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

// GetContext reads the register groups selected by flags in the given
// mode. Zero flags select every group. Unless dontSuspend is set the thread
// is suspended for the duration of the read.
func (t *Thread) GetContext(mode Mode, flags uint32, dontSuspend bool) (*Context, error) {
	if t.handle == 0 {
		return nil, ErrInvalidHandle
	}
	if err := t.checkMode(mode); err != nil {
		return nil, err
	}
	ctx := NewContext(mode, flags)
	if err := ctx.validate(); err != nil {
		return nil, err
	}
	err := t.withSuspended(dontSuspend, func() error {
		if mode == ModeWow64 {
			return t.api().Wow64GetThreadContext(t.handle, ctx.Wow64)
		}
		return t.api().GetThreadContext(t.handle, ctx.Native)
	})
	if err != nil {
		return nil, fmt.Errorf("could not get %v context of thread %d: %w", mode, t.id, err)
	}
	if logflags.Thread() {
		logflags.ThreadLogger().Debugf("read %v context of thread %d, flags %#x, pc %#x", mode, t.id, ctx.Flags(), ctx.PC())
	}
	return ctx, nil
}

// SetContext writes the register groups selected by ctx's flags. Unless
// dontSuspend is set the thread is suspended for the duration of the
// write.
func (t *Thread) SetContext(ctx *Context, dontSuspend bool) error {
	if t.handle == 0 {
		return ErrInvalidHandle
	}
	if ctx == nil {
		return fmt.Errorf("%w: nil context", ErrInvalidArgument)
	}
	if err := t.checkMode(ctx.Mode); err != nil {
		return err
	}
	if err := ctx.validate(); err != nil {
		return err
	}
	err := t.withSuspended(dontSuspend, func() error {
		if ctx.Mode == ModeWow64 {
			return t.api().Wow64SetThreadContext(t.handle, ctx.Wow64)
		}
		return t.api().SetThreadContext(t.handle, ctx.Native)
	})
	if err != nil {
		return fmt.Errorf("could not set %v context of thread %d: %w", ctx.Mode, t.id, err)
	}
	if logflags.Thread() {
		logflags.ThreadLogger().Debugf("wrote %v context of thread %d, flags %#x", ctx.Mode, t.id, ctx.Flags())
	}
	return nil
}
