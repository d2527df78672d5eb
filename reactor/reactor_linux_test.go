//go:build linux

package reactor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/momentics/consolebridge/api"
	"github.com/momentics/consolebridge/reactor"
	"golang.org/x/sys/unix"
)

func newPipe(t *testing.T) (r, w int) {
	t.Helper()
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe2: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func newReactor(t *testing.T) reactor.EventReactor {
	t.Helper()
	r, err := reactor.NewReactor()
	if err != nil {
		t.Fatalf("NewReactor: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestPollTimesOutWithoutReadiness(t *testing.T) {
	r := newReactor(t)
	rfd, _ := newPipe(t)
	if err := r.Register(rfd, reactor.EventRead); err != nil {
		t.Fatal(err)
	}
	ready := reactor.NewReadySet()
	start := time.Now()
	n, err := r.Poll(50*time.Millisecond, ready)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || ready.Len() != 0 {
		t.Fatalf("expected no events, got %d", n)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Error("poll returned before its timeout")
	}
}

func TestPollReportsReadAndWrite(t *testing.T) {
	r := newReactor(t)
	rfd, wfd := newPipe(t)
	if err := r.Register(rfd, reactor.EventRead); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(wfd, reactor.EventWrite); err != nil {
		t.Fatal(err)
	}
	if _, err := unix.Write(wfd, []byte("x")); err != nil {
		t.Fatal(err)
	}

	ready := reactor.NewReadySet()
	if _, err := r.Poll(time.Second, ready); err != nil {
		t.Fatal(err)
	}
	got := map[int]reactor.Interest{}
	for i := 0; i < ready.Len(); i++ {
		ev := ready.At(i)
		got[ev.Fd] |= ev.Ready
	}
	if got[rfd] != reactor.EventRead {
		t.Errorf("read end: expected %v, got %v", reactor.EventRead, got[rfd])
	}
	if got[wfd] != reactor.EventWrite {
		t.Errorf("write end: expected %v, got %v", reactor.EventWrite, got[wfd])
	}
}

func TestLevelTriggeredWriteIsReasserted(t *testing.T) {
	r := newReactor(t)
	_, wfd := newPipe(t)
	if err := r.Register(wfd, reactor.EventWrite); err != nil {
		t.Fatal(err)
	}
	ready := reactor.NewReadySet()
	for i := 0; i < 3; i++ {
		n, err := r.Poll(time.Second, ready)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("pass %d: expected 1 event, got %d", i, n)
		}
		ready.Clear()
	}
}

func TestModifyToNoneSilencesDescriptor(t *testing.T) {
	r := newReactor(t)
	rfd, wfd := newPipe(t)
	if err := r.Register(rfd, reactor.EventAccept); err != nil {
		t.Fatal(err)
	}
	unix.Write(wfd, []byte("pending"))

	ready := reactor.NewReadySet()
	if n, _ := r.Poll(time.Second, ready); n != 1 || ready.At(0).Ready != reactor.EventAccept {
		t.Fatalf("expected one accept event, got %d", n)
	}
	ready.Clear()

	if err := r.Modify(rfd, reactor.EventNone); err != nil {
		t.Fatal(err)
	}
	if n, _ := r.Poll(30*time.Millisecond, ready); n != 0 {
		t.Fatalf("expected no events after clearing interest, got %d", n)
	}
}

func TestClosedReactorRejectsPoll(t *testing.T) {
	r, err := reactor.NewReactor()
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := r.Poll(0, reactor.NewReadySet()); !errors.Is(err, api.ErrReactorClosed) {
		t.Fatalf("expected ErrReactorClosed, got %v", err)
	}
}
