package attach_test

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/momentics/consolebridge/api"
	"github.com/momentics/consolebridge/attach"
	"github.com/momentics/consolebridge/fake"
	"github.com/rs/zerolog"
)

func TestAgentOptions(t *testing.T) {
	tests := []struct {
		name     string
		agent    attach.Agent
		expected string
	}{
		{
			name:     "with components",
			agent:    attach.Agent{EntryPoint: "agent.Main", Port: 54321, Components: []string{"core", "shell"}},
			expected: "entry=agent.Main;port=54321;components=core,shell",
		},
		{
			name:     "without components",
			agent:    attach.Agent{EntryPoint: "agent.Main", Port: 2000},
			expected: "entry=agent.Main;port=2000;components=",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.agent.Options(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCommandAttacher(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	agent := attach.Agent{Path: "/opt/agent.bin", EntryPoint: "main", Port: 54321}

	ok := &attach.CommandAttacher{Command: sh, Args: []string{"-c", `test "$2" = 42 && test "$4" = /opt/agent.bin`, "helper"}}
	if err := ok.Attach(context.Background(), 42, agent); err != nil {
		t.Fatalf("expected helper to succeed, got %v", err)
	}

	failing := &attach.CommandAttacher{Command: sh, Args: []string{"-c", "echo no such process; exit 3", "helper"}}
	err = failing.Attach(context.Background(), 42, agent)
	if !errors.Is(err, api.ErrAttachFailed) {
		t.Fatalf("expected ErrAttachFailed, got %v", err)
	}
	if api.CodeOf(err) != api.ErrCodeAttach {
		t.Errorf("expected attach code, got %v", api.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "no such process") {
		t.Errorf("expected helper output in error, got %v", err)
	}
}

func TestTriggerLogsOutcome(t *testing.T) {
	agent := attach.Agent{Path: "/opt/agent.bin", EntryPoint: "main", Port: 54321}

	var logs bytes.Buffer
	a := fake.NewAttacher(nil)
	if err := attach.Trigger(context.Background(), a, 7, agent, zerolog.New(&logs)); err != nil {
		t.Fatal(err)
	}
	calls := a.Calls()
	if len(calls) != 1 || calls[0].PID != 7 || calls[0].Agent.Port != 54321 {
		t.Fatalf("unexpected attach calls %+v", calls)
	}
	if !strings.Contains(logs.String(), `"pid":7`) || !strings.Contains(logs.String(), "attach succeeded") {
		t.Errorf("expected success log with pid, got %s", logs.String())
	}

	logs.Reset()
	boom := errors.New("boom")
	if err := attach.Trigger(context.Background(), fake.NewAttacher(boom), 7, agent, zerolog.New(&logs)); !errors.Is(err, boom) {
		t.Fatalf("expected attacher error, got %v", err)
	}
	if !strings.Contains(logs.String(), "attach failed") {
		t.Errorf("expected failure log, got %s", logs.String())
	}

	if err := attach.Trigger(context.Background(), a, 0, agent, zerolog.Nop()); !errors.Is(err, api.ErrAttachFailed) {
		t.Fatalf("expected invalid pid to fail, got %v", err)
	}
	if len(a.Calls()) != 1 {
		t.Error("attacher must not run for an invalid pid")
	}
}
