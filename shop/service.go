package shop

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/thev1ndu/xp/logging"
	"github.com/thev1ndu/xp/pkg/providers"
)

const defaultRefundTimeout = 5 * time.Second

// Options holds the dependencies of a Service
type Options struct {
	Executor providers.CommandExecutor
	Store    providers.TokenStore
	Catalog  *Catalog
	Commands *Commands
	// Audit is optional; purchase events are only logged when nil
	Audit providers.AuditPublisher
	// RefundTimeout bounds the compensating deposit, which runs detached
	// from the request's cancellation
	RefundTimeout time.Duration
	Logger        zerolog.Logger
}

// Service registers players and runs XP purchases against the game server
//
// Flow: HTTP Request -> ShopHandler -> Service -> CommandExecutor (RCON)
type Service struct {
	executor      providers.CommandExecutor
	store         providers.TokenStore
	catalog       *Catalog
	commands      *Commands
	audit         providers.AuditPublisher
	refundTimeout time.Duration
	logger        zerolog.Logger
}

// NewService creates a shop service
func NewService(opts Options) *Service {
	commands := opts.Commands
	if commands == nil {
		commands = DefaultCommands()
	}
	refundTimeout := opts.RefundTimeout
	if refundTimeout <= 0 {
		refundTimeout = defaultRefundTimeout
	}

	return &Service{
		executor:      opts.Executor,
		store:         opts.Store,
		catalog:       opts.Catalog,
		commands:      commands,
		audit:         opts.Audit,
		refundTimeout: refundTimeout,
		logger:        logging.WithComponent(opts.Logger, "shop"),
	}
}

// Catalog returns the skill catalog
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Authorize reports whether token is the current token for username.
// Store failures are treated as not authorized.
func (s *Service) Authorize(ctx context.Context, username, token string) bool {
	if username == "" || token == "" {
		return false
	}

	stored, ok, err := s.store.Get(ctx, username)
	if err != nil {
		logger := s.requestLogger(ctx, username)
		logger.Warn().Err(err).Msg("Token lookup failed")
		return false
	}
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1
}

// DisplayBalance returns the player's balance for rendering only.
// Any failure yields zero; never use this to authorize a debit.
func (s *Service) DisplayBalance(ctx context.Context, username string) decimal.Decimal {
	logger := s.requestLogger(ctx, username)

	raw, err := s.executor.Execute(ctx, s.commands.Balance(username))
	if err != nil {
		logger.Warn().Err(err).Msg("Balance query failed, displaying zero")
		return decimal.Zero
	}
	balance, err := ParseBalance(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("Balance response unparseable, displaying zero")
		return decimal.Zero
	}
	return balance
}

func (s *Service) requestLogger(ctx context.Context, username string) zerolog.Logger {
	logger := s.logger
	if traceID := logging.TraceIDFromContext(ctx); traceID != "" {
		logger = logging.WithTraceID(logger, traceID)
	}
	if username != "" {
		logger = logging.WithPlayer(logger, username)
	}
	return logger
}
