package cmds

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/amd64util"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/winutil"
)

const (
	ansiReset  = "\x1b[0m"
	ansiName   = "\x1b[34m"
	ansiActive = "\x1b[32m"
)

// output is where command results are printed, with ANSI colors when
// enabled.
type output struct {
	w     io.Writer
	color bool
}

// newOutput returns an output writing to stdout, colored according to the
// configured color mode.
func newOutput() *output {
	tty := isatty.IsTerminal(os.Stdout.Fd())
	color := tty
	if conf != nil {
		color = conf.UseColor(tty)
	}
	if color {
		return &output{w: getColorableWriter(), color: true}
	}
	return &output{w: os.Stdout}
}

func (o *output) paint(esc, s string) string {
	if !o.color {
		return s
	}
	return esc + s + ansiReset
}

func (o *output) printf(format string, args ...interface{}) {
	fmt.Fprintf(o.w, format, args...)
}

func (o *output) field(name string, value interface{}) {
	o.printf("%s %v\n", o.paint(ansiName, fmt.Sprintf("%-10s", name+":")), value)
}

func (o *output) registers(regs []winutil.Register) {
	for _, r := range regs {
		name := o.paint(ansiName, fmt.Sprintf("%-10s", r.Name))
		if r.Bytes != nil {
			o.printf("%s %s\n", name, r)
			continue
		}
		o.printf("%s %#016x\n", name, r.Value)
	}
}

func (o *output) slots(slots [amd64util.NumSlots]amd64util.Slot) {
	tw := tabwriter.NewWriter(o.w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "slot\tstate\ttype\tlen\taddress")
	for i, s := range slots {
		state := "free"
		switch {
		case s.Enabled && s.Global:
			state = "local+global"
		case s.Enabled:
			state = "local"
		case s.Global:
			state = "global"
		}
		if !s.Occupied() {
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\n", i, state)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%v\t%d\t%#x\n", i, state, s.Cond, s.Size, s.Address)
	}
	tw.Flush()
}

func formatExitCode(code uint32) string {
	if code == native.StillActive {
		return "still active"
	}
	return fmt.Sprintf("%d (%#x)", code, code)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05.000")
}
