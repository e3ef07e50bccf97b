package thread

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"
	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/winutil"
)

var (
	errFakeInvalidHandle = errors.New("The handle is invalid.")
	errFakeAccessDenied  = errors.New("Access is denied.")

	errFakeInvalidParameter = errors.New("The parameter is incorrect.")
)

// fakeThread is the state of one thread simulated by fakeAPI.
type fakeThread struct {
	suspend  uint32
	exitCode uint32
	exited   chan struct{}
	native   winutil.AMD64CONTEXT
	wow64    winutil.X86CONTEXT
	teb      uint64
	times    native.ThreadTimes
}

// fakeAPI implements native.API on top of an in-memory set of threads.
type fakeAPI struct {
	mu      sync.Mutex
	threads map[uint32]*fakeThread
	handles map[native.Handle]uint32
	next    native.Handle
	closed  []native.Handle

	// fail makes the named call return the given error.
	fail map[string]error

	suspendCalls      int
	wow64SuspendCalls int
	contextSets       int
	// unsuspendedAccess counts context accesses made while the target was
	// running.
	unsuspendedAccess int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		threads: map[uint32]*fakeThread{},
		handles: map[native.Handle]uint32{},
		next:    0x100,
		fail:    map[string]error{},
	}
}

func (a *fakeAPI) addThread(tid uint32) *fakeThread {
	a.mu.Lock()
	defer a.mu.Unlock()
	th := &fakeThread{
		exitCode: native.StillActive,
		exited:   make(chan struct{}),
	}
	a.threads[tid] = th
	return th
}

func (a *fakeAPI) exit(tid uint32, code uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exitLocked(a.threads[tid], code)
}

func (a *fakeAPI) exitLocked(th *fakeThread, code uint32) {
	if th.exitCode != native.StillActive {
		return
	}
	th.exitCode = code
	close(th.exited)
}

func (a *fakeAPI) thread(tid uint32) *fakeThread {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.threads[tid]
}

func (a *fakeAPI) isClosed(h native.Handle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.closed {
		if c == h {
			return true
		}
	}
	return false
}

func (a *fakeAPI) lookup(name string, h native.Handle) (*fakeThread, error) {
	if err := a.fail[name]; err != nil {
		return nil, err
	}
	tid, ok := a.handles[h]
	if !ok {
		return nil, errFakeInvalidHandle
	}
	return a.threads[tid], nil
}

func (a *fakeAPI) newHandle(tid uint32) native.Handle {
	a.next += 4
	a.handles[a.next] = tid
	return a.next
}

func (a *fakeAPI) OpenThread(access uint32, tid uint32) (native.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.fail["OpenThread"]; err != nil {
		return 0, err
	}
	if _, ok := a.threads[tid]; !ok {
		return 0, errFakeInvalidParameter
	}
	return a.newHandle(tid), nil
}

func (a *fakeAPI) CloseHandle(h native.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.lookup("CloseHandle", h); err != nil {
		return err
	}
	delete(a.handles, h)
	a.closed = append(a.closed, h)
	return nil
}

func (a *fakeAPI) DuplicateHandle(h native.Handle) (native.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.lookup("DuplicateHandle", h); err != nil {
		return 0, err
	}
	return a.newHandle(a.handles[h]), nil
}

func (a *fakeAPI) GetThreadId(h native.Handle) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.lookup("GetThreadId", h); err != nil {
		return 0, err
	}
	return a.handles[h], nil
}

func (a *fakeAPI) suspendLocked(name string, h native.Handle) (uint32, error) {
	th, err := a.lookup(name, h)
	if err != nil {
		return 0, err
	}
	if th.exitCode != native.StillActive {
		return 0, errFakeAccessDenied
	}
	prev := th.suspend
	th.suspend++
	return prev, nil
}

func (a *fakeAPI) SuspendThread(h native.Handle) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.suspendCalls++
	return a.suspendLocked("SuspendThread", h)
}

func (a *fakeAPI) Wow64SuspendThread(h native.Handle) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wow64SuspendCalls++
	return a.suspendLocked("Wow64SuspendThread", h)
}

func (a *fakeAPI) ResumeThread(h native.Handle) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	th, err := a.lookup("ResumeThread", h)
	if err != nil {
		return 0, err
	}
	prev := th.suspend
	if th.suspend > 0 {
		th.suspend--
	}
	return prev, nil
}

func (a *fakeAPI) GetThreadContext(h native.Handle, ctx *winutil.AMD64CONTEXT) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	th, err := a.lookup("GetThreadContext", h)
	if err != nil {
		return err
	}
	if th.suspend == 0 {
		a.unsuspendedAccess++
	}
	flags := ctx.ContextFlags
	*ctx = th.native
	ctx.ContextFlags = flags
	return nil
}

func (a *fakeAPI) SetThreadContext(h native.Handle, ctx *winutil.AMD64CONTEXT) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	th, err := a.lookup("SetThreadContext", h)
	if err != nil {
		return err
	}
	if th.suspend == 0 {
		a.unsuspendedAccess++
	}
	th.native = *ctx
	a.contextSets++
	return nil
}

func (a *fakeAPI) Wow64GetThreadContext(h native.Handle, ctx *winutil.X86CONTEXT) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	th, err := a.lookup("Wow64GetThreadContext", h)
	if err != nil {
		return err
	}
	if th.suspend == 0 {
		a.unsuspendedAccess++
	}
	flags := ctx.ContextFlags
	*ctx = th.wow64
	ctx.ContextFlags = flags
	return nil
}

func (a *fakeAPI) Wow64SetThreadContext(h native.Handle, ctx *winutil.X86CONTEXT) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	th, err := a.lookup("Wow64SetThreadContext", h)
	if err != nil {
		return err
	}
	if th.suspend == 0 {
		a.unsuspendedAccess++
	}
	th.wow64 = *ctx
	a.contextSets++
	return nil
}

func (a *fakeAPI) TerminateThread(h native.Handle, code uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	th, err := a.lookup("TerminateThread", h)
	if err != nil {
		return err
	}
	a.exitLocked(th, code)
	return nil
}

func (a *fakeAPI) WaitForSingleObject(h native.Handle, milliseconds uint32) (uint32, error) {
	a.mu.Lock()
	th, err := a.lookup("WaitForSingleObject", h)
	a.mu.Unlock()
	if err != nil {
		return native.WaitFailed, err
	}
	if milliseconds == native.Infinite {
		<-th.exited
		return native.WaitObject0, nil
	}
	select {
	case <-th.exited:
		return native.WaitObject0, nil
	case <-time.After(time.Duration(milliseconds) * time.Millisecond):
		return native.WaitTimeout, nil
	}
}

func (a *fakeAPI) GetExitCodeThread(h native.Handle) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	th, err := a.lookup("GetExitCodeThread", h)
	if err != nil {
		return 0, err
	}
	return th.exitCode, nil
}

func (a *fakeAPI) QueryThreadBasicInformation(h native.Handle) (native.ThreadBasicInformation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	th, err := a.lookup("QueryThreadBasicInformation", h)
	if err != nil {
		return native.ThreadBasicInformation{}, err
	}
	return native.ThreadBasicInformation{
		ExitStatus:     int32(th.exitCode),
		TebBaseAddress: th.teb,
		UniqueThread:   uint64(a.handles[h]),
	}, nil
}

func (a *fakeAPI) GetThreadTimes(h native.Handle) (native.ThreadTimes, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	th, err := a.lookup("GetThreadTimes", h)
	if err != nil {
		return native.ThreadTimes{}, err
	}
	return th.times, nil
}

// fakeCore is a ProcessCore backed by fakeAPI and a sparse memory map.
type fakeCore struct {
	pid   uint32
	wow64 bool
	api   *fakeAPI
	mem   map[uint64][]byte
}

func newFakeCore(wow64 bool) *fakeCore {
	return &fakeCore{
		pid:   1234,
		wow64: wow64,
		api:   newFakeAPI(),
		mem:   map[uint64][]byte{},
	}
}

func (c *fakeCore) PID() uint32        { return c.pid }
func (c *fakeCore) Wow64() bool        { return c.wow64 }
func (c *fakeCore) Native() native.API { return c.api }

func (c *fakeCore) ReadMemory(addr uint64, buf []byte) (int, error) {
	for base, region := range c.mem {
		if addr >= base && addr+uint64(len(buf)) <= base+uint64(len(region)) {
			return copy(buf, region[addr-base:]), nil
		}
	}
	return 0, fmt.Errorf("could not read memory at %#x", addr)
}

func assertNoError(err error, t testing.TB, s string) {
	t.Helper()
	if err != nil {
		t.Fatalf("failed assertion %s: %v", s, err)
	}
}

// openThread registers thread tid with core and opens it.
func openThread(t *testing.T, core *fakeCore, tid uint32) *Thread {
	t.Helper()
	core.api.addThread(tid)
	th, err := New(core, tid)
	assertNoError(err, t, "New()")
	return th
}
