package types

import "github.com/shopspring/decimal"

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	// DebugMessage is only populated outside production
	DebugMessage string `json:"debug_message,omitempty"`
}

// PurchaseResponse is the JSON body of a successful XP purchase
type PurchaseResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// RegisterRequest is the JSON body of POST /api/register
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
}

// TokenResponse carries a newly issued access token
type TokenResponse struct {
	Token string `json:"token"`
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}
