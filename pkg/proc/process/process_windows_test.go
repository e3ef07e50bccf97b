package process

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/thread"
)

var watched uint64

// spinThread starts an OS thread that loops without touching the runtime
// until stop is called.
func spinThread(t *testing.T) (tid uint32, stop func()) {
	var quit int32
	ready := make(chan uint32)
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		ready <- windows.GetCurrentThreadId()
		for atomic.LoadInt32(&quit) == 0 {
		}
		close(done)
	}()
	tid = <-ready
	return tid, func() {
		atomic.StoreInt32(&quit, 1)
		<-done
	}
}

func TestCurrentProcessThread(t *testing.T) {
	if runtime.GOARCH != "amd64" {
		t.Skip("native contexts need an amd64 test binary")
	}
	p, err := Current()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	tid, stop := spinThread(t)
	defer stop()

	th, err := p.Thread(tid, native.DefaultThreadAccess)
	if err != nil {
		t.Fatal(err)
	}
	defer th.Close()

	if !th.Valid() {
		t.Fatal("running thread is not valid")
	}

	if err := th.Suspend(); err != nil {
		t.Fatal(err)
	}
	if ok, err := th.Suspended(); err != nil || !ok {
		th.Resume()
		t.Fatal("thread not suspended")
	}
	ctx, err := th.GetContext(thread.ModeNative, 0, true)
	if rerr := th.Resume(); rerr != nil {
		t.Fatal(rerr)
	}
	if err != nil {
		t.Fatal(err)
	}
	if ctx.PC() == 0 || ctx.SP() == 0 {
		t.Fatalf("empty context: pc %#x sp %#x", ctx.PC(), ctx.SP())
	}

	addr, teb, err := th.ReadTEB64()
	if err != nil {
		t.Fatal(err)
	}
	if teb.NtTib.Self != addr || uint32(teb.UniqueThread) != tid {
		t.Fatalf("TEB at %#x: self %#x thread %d", addr, teb.NtTib.Self, teb.UniqueThread)
	}

	idx, err := th.AddHWBP(uint64(uintptr(unsafe.Pointer(&watched))), thread.HWBPWrite, 8)
	if err != nil {
		t.Fatal(err)
	}
	slots, err := th.HWBreakpoints()
	if err != nil {
		t.Fatal(err)
	}
	if !slots[idx].Enabled || slots[idx].Size != 8 {
		t.Fatalf("slot %d: %+v", idx, slots[idx])
	}
	if err := th.RemoveHWBP(idx); err != nil {
		t.Fatal(err)
	}

	if err := th.Join(10 * time.Millisecond); err != thread.ErrTimeout {
		t.Fatalf("Join on running thread: %v", err)
	}
}

func TestOpenInvalidProcess(t *testing.T) {
	if _, err := Open(0); err == nil {
		t.Fatal("opened the idle process")
	}
}
