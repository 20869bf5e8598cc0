package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/thev1ndu/xp/errors"
	"github.com/thev1ndu/xp/logging"
	"github.com/thev1ndu/xp/pkg/providers"
)

// PurchaseRequest is one XP purchase
type PurchaseRequest struct {
	Username string
	Token    string
	Skill    string
	Amount   decimal.Decimal
}

// PurchaseResult is returned when XP was granted
type PurchaseResult struct {
	PurchaseID string
	Skill      string
	XP         int64
	// NewBalance is the balance read before the debit minus the amount.
	// It is computed, not re-read from the server.
	NewBalance decimal.Decimal
}

// Message returns the confirmation shown to the player
func (r *PurchaseResult) Message() string {
	return fmt.Sprintf("Successfully purchased %s XP for %s", humanize.Comma(r.XP), r.Skill)
}

// purchaseSaga tracks one purchase from the debit onwards
type purchaseSaga struct {
	id       string
	username string
	skill    string
	amount   decimal.Decimal
	xp       int64
	state    providers.PurchaseState
}

func (p *purchaseSaga) event(ctx context.Context) *providers.PurchaseEvent {
	return &providers.PurchaseEvent{
		PurchaseID: p.id,
		Username:   p.username,
		Skill:      p.skill,
		Amount:     p.amount,
		XP:         p.xp,
		State:      p.state,
		TraceID:    logging.TraceIDFromContext(ctx),
		Timestamp:  time.Now().UTC(),
	}
}

// Purchase spends req.Amount of the player's currency on XP for req.Skill.
//
// Flow:
// 1. Authorize the token (no remote calls on failure)
// 2. Validate the skill and amount, xp = floor(amount * rate) (no remote calls on failure)
// 3. Query and parse the balance
// 4. Check the balance covers the amount
// 5. Withdraw the amount; stop without refund unless the server confirmed
// 6. Grant the XP (response not verified)
// 7. Refund once if the grant fails after the withdrawal
//
// The balance check and the withdrawal are separate round trips, so a
// concurrent spend on the same account can slip between them.
func (s *Service) Purchase(ctx context.Context, req *PurchaseRequest) (*PurchaseResult, error) {
	// 1. Authorize
	if !s.Authorize(ctx, req.Username, req.Token) {
		return nil, errors.New(errors.ErrUnauthorized, "Invalid session")
	}

	// 2. Validate skill and amount
	rate, ok := s.catalog.Rate(req.Skill)
	if !ok {
		return nil, errors.New(errors.ErrUnknownSkill, "Invalid skill")
	}
	if !req.Amount.IsPositive() {
		return nil, errors.New(errors.ErrInvalidAmount, "Invalid amount")
	}
	xp, ok := XPFor(req.Amount, rate)
	if !ok {
		return nil, errors.NewWithDebug(errors.ErrInvalidAmount, "Invalid amount",
			fmt.Sprintf("%s %s XP does not fit a grant", req.Amount.Mul(rate).Floor(), req.Skill))
	}

	logger := s.requestLogger(ctx, req.Username).With().
		Str("skill", req.Skill).
		Str("amount", req.Amount.String()).
		Logger()

	// 3. Fetch balance
	raw, err := s.executor.Execute(ctx, s.commands.Balance(req.Username))
	if err != nil {
		logger.Error().Err(err).Msg("Balance query failed")
		return nil, errors.Wrap(err, errors.ErrRemoteUnavailable, "Game server unavailable")
	}
	balance, err := ParseBalance(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("Balance response unparseable")
		return nil, errors.Wrap(err, errors.ErrBalanceUnavailable, "Could not fetch balance")
	}

	// 4. Sufficiency check
	if balance.LessThan(req.Amount) {
		logger.Info().Str("balance", balance.String()).Msg("Insufficient funds")
		return nil, errors.New(errors.ErrInsufficientFunds, "Insufficient funds")
	}

	saga := &purchaseSaga{
		id:       uuid.NewString(),
		username: req.Username,
		skill:    req.Skill,
		amount:   req.Amount,
		xp:       xp,
		state:    providers.PurchaseStatePending,
	}
	logger = logger.With().Str("purchase_id", saga.id).Logger()

	// 5. Debit
	response, err := s.executor.Execute(ctx, s.commands.Withdraw(req.Username, req.Amount))
	if err != nil {
		// Unconfirmed withdrawals share the payment failure category: no refund follows.
		logger.Warn().Err(err).Msg("Withdrawal failed, no confirmation received")
		return nil, errors.Wrap(err, errors.ErrPaymentFailed, "Failed to process payment")
	}
	if s.commands.Debit.Classify(response) != OutcomeApplied {
		logger.Warn().Str("response", response).Msg("Withdrawal not confirmed")
		return nil, errors.NewWithDebug(errors.ErrPaymentFailed, "Failed to process payment", response)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = s.compensate(ctx, logger, saga, fmt.Errorf("panic after withdrawal: %v", r))
			panic(r)
		}
	}()

	// 6. Grant XP
	grantResponse, err := s.executor.Execute(ctx, s.commands.GrantXP(req.Username, req.Skill, saga.xp))
	if err != nil {
		// 7. Compensate
		return nil, s.compensate(ctx, logger, saga, err)
	}
	logger.Debug().
		Stringer("outcome", s.commands.Grant.Classify(grantResponse)).
		Str("response", grantResponse).
		Msg("XP grant sent")

	saga.state = providers.PurchaseStateApplied
	s.publish(ctx, logger, saga.event(ctx))

	logger.Info().
		Int64("xp", saga.xp).
		Str("balance_before", balance.String()).
		Msg("Purchase completed")

	return &PurchaseResult{
		PurchaseID: saga.id,
		Skill:      req.Skill,
		XP:         saga.xp,
		NewBalance: balance.Sub(req.Amount),
	}, nil
}

// compensate issues a single refund for a debited purchase. The refund's
// response is not verified and a failed refund is not retried; it is logged
// and published for manual reconciliation.
func (s *Service) compensate(ctx context.Context, logger zerolog.Logger, saga *purchaseSaga, cause error) error {
	saga.state = providers.PurchaseStateCompensationAttempted

	refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refundTimeout)
	defer cancel()

	response, refundErr := s.executor.Execute(refundCtx, s.commands.Deposit(saga.username, saga.amount))
	event := saga.event(ctx)
	event.Error = cause.Error()

	if refundErr != nil {
		logger.Error().
			Err(refundErr).
			AnErr("cause", cause).
			Str("refund_amount", saga.amount.String()).
			Msg("Refund failed after withdrawal, manual reconciliation required")

		event.CompensationFailed = true
		event.ErrorCode = errors.ErrCompensationFailed
		s.publish(ctx, logger, event)

		return errors.Wrap(fmt.Errorf("%w (refund failed: %v)", cause, refundErr),
			errors.ErrCompensationFailed, "Internal server error")
	}
	logger.Warn().
		AnErr("cause", cause).
		Str("refund_amount", saga.amount.String()).
		Stringer("refund_outcome", s.commands.Refund.Classify(response)).
		Str("refund_response", response).
		Msg("XP grant failed, refund issued")

	event.ErrorCode = errors.ErrRemoteUnavailable
	s.publish(ctx, logger, event)

	return errors.Wrap(cause, errors.ErrRemoteUnavailable, "Failed to grant XP, a refund was issued")
}

func (s *Service) publish(ctx context.Context, logger zerolog.Logger, event *providers.PurchaseEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.PublishPurchase(context.WithoutCancel(ctx), event); err != nil {
		logger.Error().Err(err).Str("state", string(event.State)).Msg("Failed to publish purchase event")
	}
}
