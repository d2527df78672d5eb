// File: attach/attach.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package attach triggers the one-time startup side effect of a bridge run:
// asking a target process to load the diagnostic agent that will connect
// back to the bridge's listening port. The mechanics of attaching live in
// an external helper; this package only describes the request and runs it.
package attach

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/momentics/consolebridge/api"
	"github.com/rs/zerolog"
)

// Agent describes what the target process is asked to load.
type Agent struct {
	Path       string   // binary or archive holding the agent
	EntryPoint string   // agent entry point inside Path
	Port       int      // bridge port the agent connects back to
	Components []string // additional component identifiers
}

// Options encodes the agent configuration passed to the target.
func (a Agent) Options() string {
	return fmt.Sprintf("entry=%s;port=%d;components=%s",
		a.EntryPoint, a.Port, strings.Join(a.Components, ","))
}

// Attacher locates a process by id and asks it to load an agent.
type Attacher interface {
	Attach(ctx context.Context, pid int, agent Agent) error
}

// CommandAttacher delegates to an external helper invoked as
//
//	<Command> <Args...> --pid <pid> --agent <path> --options <options>
type CommandAttacher struct {
	Command string
	Args    []string
}

// Attach runs the helper and waits for it. A non-zero exit is reported
// together with the helper's output.
func (c *CommandAttacher) Attach(ctx context.Context, pid int, agent Agent) error {
	if c.Command == "" {
		return api.Wrap(api.ErrCodeInvalidArgument, "no attach command configured", api.ErrAttachFailed)
	}
	args := append(append([]string{}, c.Args...),
		"--pid", strconv.Itoa(pid),
		"--agent", agent.Path,
		"--options", agent.Options(),
	)
	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Command, args...)
	// Helper output must never reach stdout, which carries agent bytes.
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return api.Wrap(api.ErrCodeAttach, "attach helper failed", errors.Join(api.ErrAttachFailed, err)).
			WithContext("pid", pid).
			WithContext("output", strings.TrimSpace(output.String()))
	}
	return nil
}

// Trigger validates the request, runs a, and logs the outcome with the
// process id.
func Trigger(ctx context.Context, a Attacher, pid int, agent Agent, logger zerolog.Logger) error {
	if pid <= 0 {
		err := api.Wrap(api.ErrCodeInvalidArgument, "invalid process id", api.ErrAttachFailed).WithContext("pid", pid)
		logger.Error().Err(err).Int("pid", pid).Msg("attach failed")
		return err
	}
	if err := a.Attach(ctx, pid, agent); err != nil {
		logger.Error().Err(err).Int("pid", pid).Msg("attach failed")
		return err
	}
	logger.Info().Int("pid", pid).Str("agent", agent.Path).Str("options", agent.Options()).Msg("attach succeeded")
	return nil
}
