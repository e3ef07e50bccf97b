package cmds

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vegetable-and-chicken/Blackbone/pkg/config"
	"github.com/vegetable-and-chicken/Blackbone/pkg/logflags"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/process"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/thread"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/winutil"
	"github.com/vegetable-and-chicken/Blackbone/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// pid is the process owning the threads.
	pid int

	// regs flags
	regsWow64  bool
	regsDisasm bool
	regsFloat  bool

	tebWow64 bool

	exitCode    uint32
	joinTimeout time.Duration

	hwbpType  hwbpTypeFlag
	hwbpLen   hwbpLenFlag
	hwbpAddr  addrFlag
	hwbpWow64 bool

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf *config.Config
)

const bbthreadCommandLongDesc = `bbthread controls single threads of a running Windows process.

It suspends and resumes threads, reads and writes their register context in
native and WOW64 mode, locates their thread environment block and manages the
four hardware breakpoints of each thread.

Every command takes the id of the thread as its first argument and needs the
owning process to be selected with --pid.`

// New returns an initialized command tree.
func New() *cobra.Command {
	// Config setup and load.
	var err error
	conf, err = config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// Main bbthread root command.
	rootCommand = &cobra.Command{
		Use:           "bbthread",
		Short:         "bbthread controls threads of a running process.",
		Long:          bbthreadCommandLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logflags.Setup(log, logOutput, logDest)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logflags.Close()
		},
	}

	rootCommand.PersistentFlags().IntVarP(&pid, "pid", "p", 0, "Id of the process owning the thread.")
	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output (see 'bbthread help log')`)
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor (see 'bbthread help log').")

	// 'info' subcommand.
	infoCommand := &cobra.Command{
		Use:   "info tid",
		Short: "Print the state of a thread.",
		Args:  cobra.ExactArgs(1),
		RunE:  infoCmd,
	}
	rootCommand.AddCommand(infoCommand)

	// 'suspend' subcommand.
	suspendCommand := &cobra.Command{
		Use:   "suspend tid",
		Short: "Increment the suspend count of a thread.",
		Args:  cobra.ExactArgs(1),
		RunE:  suspendCmd,
	}
	rootCommand.AddCommand(suspendCommand)

	// 'resume' subcommand.
	resumeCommand := &cobra.Command{
		Use:   "resume tid",
		Short: "Decrement the suspend count of a thread.",
		Long: `Decrement the suspend count of a thread.

A thread suspended n times runs again after n resume commands.`,
		Args: cobra.ExactArgs(1),
		RunE: resumeCmd,
	}
	rootCommand.AddCommand(resumeCommand)

	// 'regs' subcommand.
	regsCommand := &cobra.Command{
		Use:   "regs tid",
		Short: "Print the registers of a thread.",
		Long: `Print the registers of a thread.

The thread is suspended while its context is read. With --wow64 the 32-bit
context of a WOW64 thread is printed instead of the native one.`,
		Args: cobra.ExactArgs(1),
		RunE: regsCmd,
	}
	regsCommand.Flags().BoolVar(&regsWow64, "wow64", false, "Print the 32-bit context of a WOW64 thread.")
	regsCommand.Flags().BoolVar(&regsDisasm, "disasm", conf != nil && conf.Disassemble, "Print the instruction at the program counter.")
	regsCommand.Flags().BoolVar(&regsFloat, "fp", false, "Include floating point and vector registers.")
	rootCommand.AddCommand(regsCommand)

	// 'teb' subcommand.
	tebCommand := &cobra.Command{
		Use:   "teb tid",
		Short: "Print the thread environment block of a thread.",
		Args:  cobra.ExactArgs(1),
		RunE:  tebCmd,
	}
	tebCommand.Flags().BoolVar(&tebWow64, "wow64", false, "Print the 32-bit block of a WOW64 thread.")
	rootCommand.AddCommand(tebCommand)

	// 'terminate' subcommand.
	terminateCommand := &cobra.Command{
		Use:   "terminate tid",
		Short: "Terminate a thread.",
		Args:  cobra.ExactArgs(1),
		RunE:  terminateCmd,
	}
	terminateCommand.Flags().Uint32Var(&exitCode, "code", 0, "Exit code of the thread.")
	rootCommand.AddCommand(terminateCommand)

	// 'join' subcommand.
	joinCommand := &cobra.Command{
		Use:   "join tid",
		Short: "Wait for a thread to exit.",
		Long: `Wait for a thread to exit.

Without --timeout the join-timeout configuration option is used, if that is
not set the command waits forever. A negative timeout waits forever.`,
		Args: cobra.ExactArgs(1),
		RunE: joinCmd,
	}
	joinCommand.Flags().DurationVar(&joinTimeout, "timeout", 0, "Time to wait for the thread to exit.")
	rootCommand.AddCommand(joinCommand)

	// 'hwbp' subcommand.
	hwbpCommand := &cobra.Command{
		Use:   "hwbp",
		Short: "Manage hardware breakpoints of a thread.",
	}
	hwbpAddCommand := &cobra.Command{
		Use:   "add tid addr",
		Short: "Set a hardware breakpoint on the first free debug register.",
		Long: `Set a hardware breakpoint on the first free debug register.

Execute breakpoints always watch a single byte. Write and access breakpoints
watch 1, 2, 4 or 8 bytes and the address must be aligned to the length.`,
		Args: cobra.ExactArgs(2),
		RunE: hwbpAddCmd,
	}
	hwbpType = hwbpTypeFlag(thread.HWBPExecute)
	hwbpLen = 1
	hwbpAddCommand.Flags().Var(&hwbpType, "type", "Access that triggers the breakpoint: execute, write or access.")
	hwbpAddCommand.Flags().Var(&hwbpLen, "len", "Number of bytes watched: 1, 2, 4 or 8.")
	hwbpCommand.AddCommand(hwbpAddCommand)

	hwbpRmCommand := &cobra.Command{
		Use:   "rm tid [slot]",
		Short: "Remove a hardware breakpoint by slot or by address.",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  hwbpRmCmd,
	}
	hwbpRmCommand.Flags().Var(&hwbpAddr, "addr", "Address of the breakpoint to remove.")
	hwbpCommand.AddCommand(hwbpRmCommand)

	hwbpLsCommand := &cobra.Command{
		Use:   "ls tid",
		Short: "List the debug register slots of a thread.",
		Long: `List the debug register slots of a thread.

With --wow64 the slots are read through the 32-bit context of a WOW64 thread
instead of the native one.`,
		Args: cobra.ExactArgs(1),
		RunE: hwbpLsCmd,
	}
	hwbpLsCommand.Flags().BoolVar(&hwbpWow64, "wow64", false, "Read the slots through the 32-bit context of a WOW64 thread.")
	hwbpCommand.AddCommand(hwbpLsCommand)

	hwbpHitCommand := &cobra.Command{
		Use:   "hit tid",
		Short: "Print and acknowledge the hardware breakpoint reported in DR6.",
		Args:  cobra.ExactArgs(1),
		RunE:  hwbpHitCmd,
	}
	hwbpCommand.AddCommand(hwbpHitCommand)
	rootCommand.AddCommand(hwbpCommand)

	// 'version' subcommand.
	var buildInfo bool
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bbthread\n%s\n", version.ToolVersion)
			if buildInfo {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.BuildInfo())
			}
		},
	}
	versionCommand.Flags().BoolVarP(&buildInfo, "verbose", "v", false, "print build info")
	rootCommand.AddCommand(versionCommand)

	rootCommand.AddCommand(&cobra.Command{
		Use:   "log",
		Short: "Help about logging flags.",
		Long: `Logging can be enabled by specifying the --log flag and using the
--log-output flag to select which components should produce logs.

The argument of --log-output must be a comma separated list of component
names selected from this list:

	thread	Log suspend, resume and context accesses (default)
	hwbp	Log hardware breakpoint slot allocation and release
	native	Log every operating system call
	cli	Log command invocations

Additionally --log-dest can be used to specify where the logs should be
written.
If the argument is a number it will be interpreted as a file descriptor,
otherwise as a file path.
`,
	})

	return rootCommand
}

// withThread opens thread tidArg of the selected process, calls fn and
// closes both.
func withThread(tidArg string, fn func(th *thread.Thread, out *output) error) error {
	if pid <= 0 {
		return errors.New("a process must be selected with --pid")
	}
	tid, err := parseTID(tidArg)
	if err != nil {
		return err
	}
	if logflags.CLI() {
		logflags.CLILogger().Debugf("opening thread %d of process %d", tid, pid)
	}
	p, err := process.Open(uint32(pid))
	if err != nil {
		return err
	}
	defer p.Close()
	th, err := p.Thread(tid, conf.ThreadAccess())
	if err != nil {
		return err
	}
	defer th.Close()
	return fn(th, newOutput())
}

func infoCmd(cmd *cobra.Command, args []string) error {
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		out.field("thread", th.ID())
		out.field("process", th.Core().PID())
		out.field("handle", fmt.Sprintf("%#x", uintptr(th.Handle())))
		out.field("mode", th.Mode())
		out.field("valid", th.Valid())
		suspended, err := th.Suspended()
		switch {
		case err == nil:
			out.field("suspended", suspended)
		case !errors.Is(err, thread.ErrThreadExited):
			return err
		}
		if code, err := th.ExitCode(); err == nil {
			out.field("exit code", formatExitCode(code))
		}
		if start, err := th.StartTime(); err == nil {
			out.field("started", formatTime(start))
		}
		if exec, err := th.ExecTime(); err == nil {
			out.field("cpu time", exec)
		}
		teb, err := th.TEB(thread.ModeNative)
		if err != nil {
			return err
		}
		out.field("teb", fmt.Sprintf("%#x", teb))
		if th.Mode() == thread.ModeWow64 {
			teb32, err := th.TEB(thread.ModeWow64)
			if err != nil {
				return err
			}
			out.field("teb32", fmt.Sprintf("%#x", teb32))
		}
		return nil
	})
}

func suspendCmd(cmd *cobra.Command, args []string) error {
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		return th.Suspend()
	})
}

func resumeCmd(cmd *cobra.Command, args []string) error {
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		return th.Resume()
	})
}

func regsCmd(cmd *cobra.Command, args []string) error {
	mode := thread.ModeNative
	if regsWow64 {
		mode = thread.ModeWow64
	}
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		ctx, err := th.GetContext(mode, 0, false)
		if err != nil {
			return err
		}
		out.registers(ctx.Registers(regsFloat))
		if regsDisasm {
			text, err := instructionAt(th, ctx.PC(), mode)
			if err != nil {
				return err
			}
			out.printf("%s %s\n", out.paint(ansiActive, fmt.Sprintf("%#x:", ctx.PC())), text)
		}
		return nil
	})
}

func tebCmd(cmd *cobra.Command, args []string) error {
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		if tebWow64 {
			addr, teb, err := th.ReadTEB32()
			if err != nil {
				return err
			}
			printTEB(out, addr, uint64(teb.NtTib.StackBase), uint64(teb.NtTib.StackLimit), uint64(teb.ProcessEnvironmentBlock), uint64(teb.ThreadLocalStoragePointer), teb.LastErrorValue)
			return nil
		}
		addr, teb, err := th.ReadTEB64()
		if err != nil {
			return err
		}
		printTEB(out, addr, teb.NtTib.StackBase, teb.NtTib.StackLimit, teb.ProcessEnvironmentBlock, teb.ThreadLocalStoragePointer, teb.LastErrorValue)
		return nil
	})
}

func printTEB(out *output, addr, stackBase, stackLimit, peb, tls uint64, lastError uint32) {
	out.field("teb", fmt.Sprintf("%#x", addr))
	out.field("stack", fmt.Sprintf("%#x-%#x", stackLimit, stackBase))
	out.field("peb", fmt.Sprintf("%#x", peb))
	out.field("tls", fmt.Sprintf("%#x", tls))
	out.field("last error", lastError)
}

func terminateCmd(cmd *cobra.Command, args []string) error {
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		return th.Terminate(exitCode)
	})
}

// effectiveJoinTimeout returns the timeout selected by the flag or, when
// the flag was not given, by the configuration.
func effectiveJoinTimeout(flagSet bool) time.Duration {
	if flagSet {
		if joinTimeout < 0 {
			return thread.Infinite
		}
		return joinTimeout
	}
	if conf != nil && conf.JoinTimeout > 0 {
		return conf.JoinTimeout
	}
	return thread.Infinite
}

func joinCmd(cmd *cobra.Command, args []string) error {
	timeout := effectiveJoinTimeout(cmd.Flags().Changed("timeout"))
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		if err := th.Join(timeout); err != nil {
			return err
		}
		code, err := th.ExitCode()
		if err != nil {
			return err
		}
		out.field("exit code", formatExitCode(code))
		return nil
	})
}

func hwbpAddCmd(cmd *cobra.Command, args []string) error {
	addr, err := parseAddr(args[1])
	if err != nil {
		return err
	}
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		idx, err := th.AddHWBP(addr, thread.HWBPType(hwbpType), int(hwbpLen))
		if err != nil {
			return err
		}
		out.printf("hardware breakpoint %d set at %#x\n", idx, addr)
		return nil
	})
}

func hwbpRmCmd(cmd *cobra.Command, args []string) error {
	byAddr := cmd.Flags().Changed("addr")
	if byAddr == (len(args) == 2) {
		return errors.New("either a slot or --addr must be specified")
	}
	slot := -1
	if !byAddr {
		n, err := parseTID(args[1])
		if err != nil {
			return fmt.Errorf("invalid slot %q", args[1])
		}
		slot = int(n)
	}
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		if byAddr {
			return th.RemoveHWBPAt(uint64(hwbpAddr))
		}
		return th.RemoveHWBP(slot)
	})
}

func hwbpLsCmd(cmd *cobra.Command, args []string) error {
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		if hwbpWow64 {
			slots, err := th.Wow64HWBreakpoints()
			if err != nil {
				return err
			}
			out.slots(slots)
			return nil
		}
		slots, err := th.HWBreakpoints()
		if err != nil {
			return err
		}
		out.slots(slots)
		ctx, err := th.GetContext(thread.ModeNative, winutil.CONTEXT_AMD64_DEBUG_REGISTERS, false)
		if err != nil {
			return err
		}
		out.field("dr6", fmt.Sprintf("%#x", ctx.Native.Dr6))
		out.field("dr7", fmt.Sprintf("%#x", ctx.Native.Dr7))
		return nil
	})
}

func hwbpHitCmd(cmd *cobra.Command, args []string) error {
	return withThread(args[0], func(th *thread.Thread, out *output) error {
		idx, ok, err := th.ActiveHWBP()
		if err != nil {
			return err
		}
		if !ok {
			out.printf("no hardware breakpoint hit\n")
			return nil
		}
		out.printf("hardware breakpoint %d hit\n", idx)
		return nil
	})
}
