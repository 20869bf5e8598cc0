package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/gorcon/rcon"
	"github.com/rs/zerolog"
	"github.com/thev1ndu/xp/config"
)

// rconConn is the part of *rcon.Conn used here
type rconConn interface {
	Execute(command string) (string, error)
	Close() error
}

type dialFunc func(addr, password string, timeout time.Duration) (rconConn, error)

func dialRCON(addr, password string, timeout time.Duration) (rconConn, error) {
	return rcon.Dial(addr, password, rcon.SetDialTimeout(timeout), rcon.SetDeadline(timeout))
}

// RCONProvider implements providers.CommandExecutor over the Source RCON
// protocol. Every command opens its own connection; nothing is pooled or retried.
type RCONProvider struct {
	addr     string
	password string
	timeout  time.Duration
	dial     dialFunc
	logger   zerolog.Logger
}

// NewRCONProvider creates a new RCON command executor
func NewRCONProvider(cfg config.RCONConfig, logger zerolog.Logger) *RCONProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &RCONProvider{
		addr:     cfg.Addr(),
		password: cfg.Password,
		timeout:  timeout,
		dial:     dialRCON,
		logger:   logger.With().Str("component", "rcon_provider").Logger(),
	}
}

// Execute sends command and returns the server's response. The round trip is
// bounded by the configured timeout or the context deadline, whichever is sooner.
func (p *RCONProvider) Execute(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("rcon command not sent: %w", err)
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return "", fmt.Errorf("rcon command not sent: %w", context.DeadlineExceeded)
	}

	startTime := time.Now()
	p.logger.Debug().
		Str("addr", p.addr).
		Str("command", command).
		Msg("RCON command started")

	response, err := p.roundTrip(command, timeout)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("addr", p.addr).
			Str("command", command).
			Dur("duration", time.Since(startTime)).
			Msg("RCON command failed")
		return "", err
	}

	p.logger.Debug().
		Str("addr", p.addr).
		Str("command", command).
		Int("response_size", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("RCON command completed")

	return response, nil
}

func (p *RCONProvider) roundTrip(command string, timeout time.Duration) (string, error) {
	conn, err := p.dial(p.addr, p.password, timeout)
	if err != nil {
		return "", fmt.Errorf("failed to connect to rcon %s: %w", p.addr, err)
	}
	defer func() { _ = conn.Close() }()

	response, err := conn.Execute(command)
	if err != nil {
		return "", fmt.Errorf("failed to execute rcon command: %w", err)
	}
	return response, nil
}
