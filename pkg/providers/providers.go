package providers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CommandExecutor sends one console command to the game server and returns
// its raw textual response. Each call is a full round trip: connect, send,
// receive, close. Transport failures and timeouts are returned as errors.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (string, error)
}

// TokenStore maps a username to its current registration token.
// Updates to a single key are atomic.
type TokenStore interface {
	// Get returns the stored token and whether one exists
	Get(ctx context.Context, username string) (string, bool, error)
	// Put stores token unconditionally (last write wins)
	Put(ctx context.Context, username, token string) error
	// CompareAndSwap replaces old with new only if old is the current value.
	// An empty old means "no token stored yet".
	CompareAndSwap(ctx context.Context, username, old, new string) (bool, error)
}

// PurchaseState is the saga state of a purchase
type PurchaseState string

const (
	PurchaseStatePending               PurchaseState = "pending"
	PurchaseStateApplied               PurchaseState = "applied"
	PurchaseStateCompensationAttempted PurchaseState = "compensation_attempted"
)

// PurchaseEvent is the audit record published for every purchase that reached the debit step
type PurchaseEvent struct {
	PurchaseID         string          `json:"purchase_id"`
	Username           string          `json:"username"`
	Skill              string          `json:"skill"`
	Amount             decimal.Decimal `json:"amount"`
	XP                 int64           `json:"xp"`
	State              PurchaseState   `json:"state"`
	CompensationFailed bool            `json:"compensation_failed,omitempty"`
	ErrorCode          int             `json:"error_code,omitempty"`
	Error              string          `json:"error,omitempty"`
	TraceID            string          `json:"trace_id,omitempty"`
	Timestamp          time.Time       `json:"timestamp"`
}

// AuditPublisher records purchase events on an operator-visible channel
type AuditPublisher interface {
	PublishPurchase(ctx context.Context, event *PurchaseEvent) error
}
