package control_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/momentics/consolebridge/control"
	"github.com/rs/zerolog"
)

func TestExitHooksRunOnceInOrder(t *testing.T) {
	hooks := control.NewExitHooks(zerolog.Nop())
	var order []int
	hooks.Register(func() { order = append(order, 1) })
	hooks.Register(func() { order = append(order, 2) })

	if !hooks.Run() {
		t.Fatal("first Run should invoke hooks")
	}
	if hooks.Run() {
		t.Fatal("second Run must be a no-op")
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected hook order %v", order)
	}
}

func TestExitHooksSurvivePanic(t *testing.T) {
	var logs bytes.Buffer
	hooks := control.NewExitHooks(zerolog.New(&logs))
	ran := false
	hooks.Register(func() { panic("boom") })
	hooks.Register(func() { ran = true })

	hooks.Run()
	if !ran {
		t.Fatal("hook after a panicking hook was skipped")
	}
	if !strings.Contains(logs.String(), "exit hook panicked") {
		t.Errorf("expected panic to be logged, got %q", logs.String())
	}
}
