//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/momentics/consolebridge/api"
	"github.com/momentics/consolebridge/attach"
	"github.com/momentics/consolebridge/control"
	"github.com/momentics/consolebridge/fake"
	"github.com/momentics/consolebridge/server"
	"github.com/rs/zerolog"
)

func newSession(t *testing.T, a attach.Attacher, pid int) *session {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	cfg := server.DefaultConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	cfg.PollTimeout = 50 * time.Millisecond
	cfg.ControlTimeout = 5 * time.Millisecond

	metrics := control.NewMetricsRegistry()
	srv, err := server.NewServer(cfg, fake.NewConsole(),
		server.WithLogger(zerolog.Nop()),
		server.WithMetrics(metrics),
	)
	if err != nil {
		t.Fatal(err)
	}
	return &session{
		srv:         srv,
		attacher:    a,
		pid:         pid,
		agent:       attach.Agent{Path: "/opt/agent.bin", EntryPoint: "main", Port: srv.Port()},
		joinTimeout: time.Second,
		logger:      zerolog.Nop(),
		metrics:     metrics,
		signals:     []os.Signal{syscall.SIGUSR2},
	}
}

func runSession(s *session) <-chan error {
	result := make(chan error, 1)
	go func() { result <- s.run() }()
	return result
}

func awaitResult(t *testing.T, result <-chan error) error {
	t.Helper()
	select {
	case err := <-result:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
		return nil
	}
}

func assertPortReleased(t *testing.T, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatalf("expected port %d to be released: %v", port, err)
	}
	ln.Close()
}

func TestSessionInterruptDuringAttach(t *testing.T) {
	a := fake.NewBlockingAttacher()
	s := newSession(t, a, 4242)
	result := runSession(s)

	select {
	case <-a.Started():
	case <-time.After(2 * time.Second):
		t.Fatal("attach never started")
	}
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatal(err)
	}

	err := awaitResult(t, result)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled attach, got %v", err)
	}
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) || coder.ExitCode() != 1 {
		t.Errorf("expected exit code 1, got %v", err)
	}
	if !s.srv.Wait(time.Second) {
		t.Fatal("server must be closed after an interrupted attach")
	}
	assertPortReleased(t, s.srv.Port())
}

func TestSessionAttachFailureClosesServer(t *testing.T) {
	boom := errors.New("no such process")
	s := newSession(t, fake.NewAttacher(boom), 4242)

	err := awaitResult(t, runSession(s))
	if !errors.Is(err, boom) {
		t.Fatalf("expected attach error, got %v", err)
	}
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) || coder.ExitCode() != 1 {
		t.Errorf("expected exit code 1, got %v", err)
	}
	assertPortReleased(t, s.srv.Port())
}

func TestSessionRunsUntilAgentDisconnects(t *testing.T) {
	a := fake.NewAttacher(nil)
	s := newSession(t, a, 4242)
	result := runSession(s)

	<-a.Started()
	var conn net.Conn
	var err error
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err = net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", s.srv.Port()))
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(2 * time.Second)
	for s.metrics.Get(api.MetricPeerAccepted) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("agent was never accepted")
		}
		time.Sleep(5 * time.Millisecond)
	}
	conn.Close()

	if err := awaitResult(t, result); err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if calls := a.Calls(); len(calls) != 1 || calls[0].PID != 4242 {
		t.Errorf("unexpected attach calls %+v", calls)
	}
}

func TestSessionInterruptWithoutAgent(t *testing.T) {
	s := newSession(t, nil, 0)
	result := runSession(s)

	deadline := time.Now().Add(2 * time.Second)
	for s.metrics.Get(api.MetricLoopIterations) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("bridge loop never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatal(err)
	}
	if err := awaitResult(t, result); err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
}
