package thread

import (
	"errors"
	"testing"
	"time"

	"github.com/vegetable-and-chicken/Blackbone/pkg/proc/native"
)

func suspended(t *testing.T, th *Thread) bool {
	t.Helper()
	ok, err := th.Suspended()
	assertNoError(err, t, "Suspended()")
	return ok
}

func TestSuspendResumeBalance(t *testing.T) {
	core := newFakeCore(false)
	th := openThread(t, core, 1)
	defer th.Close()

	if suspended(t, th) {
		t.Fatal("new thread is suspended")
	}
	const n = 3
	for i := 0; i < n; i++ {
		assertNoError(th.Suspend(), t, "Suspend()")
	}
	if got := core.api.thread(1).suspend; got != n {
		t.Fatalf("suspend count %d, expected %d", got, n)
	}
	for i := 0; i < n; i++ {
		if !suspended(t, th) {
			t.Fatalf("thread not suspended after %d resumes", i)
		}
		assertNoError(th.Resume(), t, "Resume()")
	}
	if suspended(t, th) {
		t.Fatal("thread still suspended")
	}
	if got := core.api.thread(1).suspend; got != 0 {
		t.Fatalf("suspend count %d after balanced calls", got)
	}
}

func TestSuspendWow64(t *testing.T) {
	core := newFakeCore(true)
	th := openThread(t, core, 1)
	defer th.Close()

	assertNoError(th.Suspend(), t, "Suspend()")
	assertNoError(th.Resume(), t, "Resume()")
	if core.api.wow64SuspendCalls != 1 || core.api.suspendCalls != 0 {
		t.Fatalf("wow64 suspends %d, native suspends %d", core.api.wow64SuspendCalls, core.api.suspendCalls)
	}
}

func TestSuspendExitedThread(t *testing.T) {
	core := newFakeCore(false)
	th := openThread(t, core, 1)
	defer th.Close()

	core.api.exit(1, 0)
	if err := th.Suspend(); !errors.Is(err, ErrThreadExited) {
		t.Fatalf("Suspend on exited thread: %v", err)
	}
	if ok, err := th.Suspended(); ok || !errors.Is(err, ErrThreadExited) {
		t.Fatalf("Suspended on exited thread: %v %v", ok, err)
	}
}

func TestSuspendedResumeFailure(t *testing.T) {
	core := newFakeCore(false)
	th := openThread(t, core, 1)
	defer th.Close()

	errBoom := errors.New("boom")
	core.api.fail["ResumeThread"] = errBoom
	ok, err := th.Suspended()
	if ok || !errors.Is(err, errBoom) {
		t.Fatalf("Suspended with failing resume: %v %v", ok, err)
	}
	if got := core.api.thread(1).suspend; got != 1 {
		t.Fatalf("suspend count %d", got)
	}

	delete(core.api.fail, "ResumeThread")
	assertNoError(th.Resume(), t, "Resume()")
	if suspended(t, th) {
		t.Fatal("thread still suspended after recovery")
	}
}

func TestJoinExited(t *testing.T) {
	core := newFakeCore(false)
	th := openThread(t, core, 1)
	defer th.Close()

	core.api.exit(1, 0)
	assertNoError(th.Join(0), t, "Join(0)")
	assertNoError(th.Join(Infinite), t, "Join(Infinite)")
}

func TestJoinTimeout(t *testing.T) {
	core := newFakeCore(false)
	th := openThread(t, core, 1)
	defer th.Close()

	const timeout = 50 * time.Millisecond
	start := time.Now()
	err := th.Join(timeout)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Join on running thread: %v", err)
	}
	if elapsed := time.Since(start); elapsed < timeout {
		t.Fatalf("Join returned after %v, timeout %v", elapsed, timeout)
	}
}

func TestJoinWaitsForExit(t *testing.T) {
	core := newFakeCore(false)
	th := openThread(t, core, 1)
	defer th.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		core.api.exit(1, 7)
	}()
	assertNoError(th.Join(Infinite), t, "Join(Infinite)")
	code, err := th.ExitCode()
	assertNoError(err, t, "ExitCode()")
	if code != 7 {
		t.Fatalf("exit code %d", code)
	}
}

func TestJoinInvalidHandle(t *testing.T) {
	th := &Thread{core: newFakeCore(false)}
	if err := th.Join(0); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("Join without handle: %v", err)
	}
}

func TestTimeoutMillis(t *testing.T) {
	tests := []struct {
		in  time.Duration
		out uint32
	}{
		{Infinite, native.Infinite},
		{-5 * time.Second, native.Infinite},
		{0, 0},
		{time.Microsecond, 1},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 2},
		{2 * time.Second, 2000},
		{time.Duration(1<<62) * time.Nanosecond, native.Infinite - 1},
	}
	for _, tc := range tests {
		if got := timeoutMillis(tc.in); got != tc.out {
			t.Errorf("timeoutMillis(%v) = %d, expected %d", tc.in, got, tc.out)
		}
	}
}

func TestTerminate(t *testing.T) {
	core := newFakeCore(false)
	th := openThread(t, core, 1)
	defer th.Close()

	assertNoError(th.Terminate(0xdead), t, "Terminate()")
	assertNoError(th.Join(time.Second), t, "Join()")
	code, err := th.ExitCode()
	assertNoError(err, t, "ExitCode()")
	if code != 0xdead {
		t.Fatalf("exit code %#x", code)
	}
	if th.Valid() {
		t.Fatal("terminated thread is valid")
	}
}

func TestExitCodeVerbatim(t *testing.T) {
	core := newFakeCore(false)
	th := openThread(t, core, 1)
	defer th.Close()

	code, err := th.ExitCode()
	assertNoError(err, t, "ExitCode()")
	if code != native.StillActive {
		t.Fatalf("running thread exit code %d", code)
	}
	core.api.exit(1, 0xC0000005)
	code, err = th.ExitCode()
	assertNoError(err, t, "ExitCode()")
	if code != 0xC0000005 {
		t.Fatalf("exit code %#x", code)
	}
}

func TestThreadTimes(t *testing.T) {
	core := newFakeCore(false)
	th := openThread(t, core, 1)
	defer th.Close()

	created := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	core.api.thread(1).times = native.ThreadTimes{
		Creation: uint64(created.UnixNano()/100) + 116444736000000000,
		Kernel:   10 * 10000, // 10ms
		User:     25 * 10000, // 25ms
	}

	start, err := th.StartTime()
	assertNoError(err, t, "StartTime()")
	if !start.Equal(created) {
		t.Fatalf("start time %v, expected %v", start, created)
	}
	exec, err := th.ExecTime()
	assertNoError(err, t, "ExecTime()")
	if exec != 35*time.Millisecond {
		t.Fatalf("exec time %v", exec)
	}
}
