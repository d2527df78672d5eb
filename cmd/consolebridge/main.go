// File: cmd/consolebridge/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// consolebridge relays bytes between the local console and one diagnostic
// agent connecting back over localhost TCP.
//
// On startup it binds localhost:<port>, asks the target process to load the
// agent (when --pid is given), and then runs the bridge until the agent
// disconnects. An interrupt asks the agent to quit and waits for it; a
// second interrupt terminates immediately.
//
// Usage:
//
//	consolebridge --pid 4242 --agent-entry agent.Main [--port 54321]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/momentics/consolebridge/attach"
	"github.com/momentics/consolebridge/control"
	"github.com/momentics/consolebridge/server"
	"github.com/momentics/consolebridge/transport/stdio"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := server.LoadConfigFromEnv()
	if err != nil {
		return err
	}

	var (
		pid           int
		agentEntry    string
		components    []string
		attachCommand string
		verbose       bool
		showVersion   bool
	)
	flagSet := pflag.NewFlagSet("consolebridge", pflag.ContinueOnError)
	flagSet.IntVarP(&cfg.Port, "port", "p", cfg.Port, fmt.Sprintf("localhost port the agent connects to (%d-%d)", server.MinPort, server.MaxPort))
	flagSet.IntVar(&pid, "pid", 0, "process id of the target to attach the agent to")
	flagSet.StringVar(&agentEntry, "agent-entry", "", "agent entry point loaded by the target")
	flagSet.StringArrayVar(&components, "component", nil, "additional component identifier passed to the agent (repeatable)")
	flagSet.StringVar(&attachCommand, "attach-command", "consolebridge-attach", "helper that performs the attach")
	flagSet.IntVar(&cfg.SendBufferSize, "send-buffer", cfg.SendBufferSize, "socket send buffer size for the agent connection")
	flagSet.DurationVar(&cfg.PollTimeout, "poll-timeout", cfg.PollTimeout, "bounded readiness wait per loop iteration")
	flagSet.DurationVar(&cfg.JoinTimeout, "join-timeout", cfg.JoinTimeout, "single join attempt while shutting down")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if showVersion {
		fmt.Fprintf(os.Stderr, "consolebridge %s\n", version)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	logger := newLogger(verbose)
	metrics := control.NewMetricsRegistry()

	console := stdio.Std()
	if _, err := console.Available(); err != nil || !console.Pollable() {
		logger.Warn().Err(err).Msg("console input cannot be polled and will not be forwarded")
	}

	srv, err := server.NewServer(cfg, console,
		server.WithLogger(logger),
		server.WithMetrics(metrics),
	)
	if err != nil {
		logger.Error().Err(err).Int("port", cfg.Port).Msg("bridge startup failed")
		return reported(err)
	}

	sess := &session{
		srv:         srv,
		pid:         pid,
		joinTimeout: cfg.JoinTimeout,
		logger:      logger,
		metrics:     metrics,
	}
	if pid != 0 {
		agentPath, err := os.Executable()
		if err != nil {
			_ = srv.Close()
			return fmt.Errorf("locate agent binary: %w", err)
		}
		sess.attacher = &attach.CommandAttacher{Command: attachCommand}
		sess.agent = attach.Agent{
			Path:       agentPath,
			EntryPoint: agentEntry,
			Port:       srv.Port(),
			Components: components,
		}
	}
	return sess.run()
}

// newLogger writes human-readable records to stderr; stdout carries agent
// bytes only.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `consolebridge - relay the console to a diagnostic agent

Binds localhost:<port>, asks the target process to load the agent, and
relays bytes between this terminal and the agent until it disconnects.
Press Ctrl-C once to ask the agent to quit; press it again to force
termination.

Environment variables CONSOLEBRIDGE_PORT, CONSOLEBRIDGE_POLL_TIMEOUT,
CONSOLEBRIDGE_CONTROL_TIMEOUT, CONSOLEBRIDGE_READ_BUFFER,
CONSOLEBRIDGE_SEND_BUFFER, CONSOLEBRIDGE_LINGER and
CONSOLEBRIDGE_JOIN_TIMEOUT set defaults; flags override them.

Usage:
    consolebridge [flags]

Flags:
%s`, flagSet.FlagUsages())
}
