package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/momentics/consolebridge/api"
	"github.com/momentics/consolebridge/transport/tcp"
)

// Accepted listening port range.
const (
	MinPort     = 1025
	MaxPort     = 65535
	DefaultPort = 54321
)

// Config holds all bridge configuration parameters. Every field can be
// overridden from the environment by LoadConfigFromEnv.
type Config struct {
	Port           int           `env:"CONSOLEBRIDGE_PORT,strict"`            // localhost port the agent connects to
	PollTimeout    time.Duration `env:"CONSOLEBRIDGE_POLL_TIMEOUT,strict"`    // bounded readiness wait
	ControlTimeout time.Duration `env:"CONSOLEBRIDGE_CONTROL_TIMEOUT,strict"` // bounded stop-request check per iteration
	ReadBufferSize int           `env:"CONSOLEBRIDGE_READ_BUFFER,strict"`     // chunk size when draining the agent
	SendBufferSize int           `env:"CONSOLEBRIDGE_SEND_BUFFER,strict"`     // SO_SNDBUF hint for the agent socket
	LingerSeconds  int           `env:"CONSOLEBRIDGE_LINGER,strict"`          // SO_LINGER grace period on close
	JoinTimeout    time.Duration `env:"CONSOLEBRIDGE_JOIN_TIMEOUT,strict"`    // single join attempt during shutdown
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	peer := tcp.DefaultPeerOptions()
	return &Config{
		Port:           DefaultPort,
		PollTimeout:    500 * time.Millisecond,
		ControlTimeout: 10 * time.Millisecond,
		ReadBufferSize: 1024,
		SendBufferSize: peer.SendBufferSize,
		LingerSeconds:  peer.LingerSeconds,
		JoinTimeout:    5 * time.Second,
	}
}

// LoadConfigFromEnv returns DefaultConfig overridden by CONSOLEBRIDGE_*
// environment variables.
func LoadConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, api.Wrap(api.ErrCodeInvalidArgument, "decode environment", err)
	}
	return cfg, nil
}

// ValidatePort rejects ports outside MinPort..MaxPort.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return api.Wrap(api.ErrCodeInvalidArgument,
			fmt.Sprintf("port %d outside %d-%d", port, MinPort, MaxPort),
			api.ErrInvalidPort).WithContext("port", port)
	}
	return nil
}

// Validate checks the configuration before any socket is opened.
func (c *Config) Validate() error {
	if err := ValidatePort(c.Port); err != nil {
		return err
	}
	invalid := func(field string, value any) error {
		return api.Wrap(api.ErrCodeInvalidArgument, "invalid "+field, api.ErrInvalidConfig).
			WithContext(field, value)
	}
	switch {
	case c.PollTimeout <= 0:
		return invalid("poll_timeout", c.PollTimeout)
	case c.ControlTimeout <= 0:
		return invalid("control_timeout", c.ControlTimeout)
	case c.ReadBufferSize <= 0:
		return invalid("read_buffer", c.ReadBufferSize)
	case c.SendBufferSize < 0:
		return invalid("send_buffer", c.SendBufferSize)
	case c.JoinTimeout <= 0:
		return invalid("join_timeout", c.JoinTimeout)
	}
	return nil
}

func (c *Config) peerOptions() tcp.PeerOptions {
	return tcp.PeerOptions{
		LingerSeconds:  c.LingerSeconds,
		NoDelay:        true,
		SendBufferSize: c.SendBufferSize,
	}
}
