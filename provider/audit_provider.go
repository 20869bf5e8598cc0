package provider

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/thev1ndu/xp/pkg/providers"
)

// Publisher is satisfied by *kafka.Producer
type Publisher interface {
	SendMessage(topic string, key string, value interface{}) error
}

// AuditProvider implements providers.AuditPublisher on top of Kafka.
// Events are keyed by username so a player's purchases stay ordered.
type AuditProvider struct {
	publisher Publisher
	topic     string
	logger    zerolog.Logger
}

// NewAuditProvider creates a new audit provider.
// A nil publisher yields a provider that only logs.
func NewAuditProvider(publisher Publisher, topic string, logger zerolog.Logger) *AuditProvider {
	return &AuditProvider{
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("component", "audit_provider").Logger(),
	}
}

// PublishPurchase writes the event to the audit log and, when configured, to Kafka
func (p *AuditProvider) PublishPurchase(_ context.Context, event *providers.PurchaseEvent) error {
	logEvent := p.logger.Info()
	if event.CompensationFailed {
		logEvent = p.logger.Error()
	}
	logEvent.
		Str("purchase_id", event.PurchaseID).
		Str("player", event.Username).
		Str("skill", event.Skill).
		Str("amount", event.Amount.String()).
		Int64("xp", event.XP).
		Str("state", string(event.State)).
		Bool("compensation_failed", event.CompensationFailed).
		Int("error_code", event.ErrorCode).
		Str("trace_id", event.TraceID).
		Msg("Purchase audit")

	if p.publisher == nil {
		return nil
	}

	if err := p.publisher.SendMessage(p.topic, event.Username, event); err != nil {
		return fmt.Errorf("failed to publish purchase event: %w", err)
	}
	return nil
}
