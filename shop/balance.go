package shop

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseError is returned when a balance response cannot be parsed
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse balance from %q: %s", e.Raw, e.Reason)
}

// ParseBalance extracts the balance from a "<label>: <number>" response.
// It never falls back to a default.
func ParseBalance(raw string) (decimal.Decimal, error) {
	_, rest, found := strings.Cut(raw, ":")
	if !found {
		return decimal.Zero, &ParseError{Raw: raw, Reason: "missing ':' separator"}
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return decimal.Zero, &ParseError{Raw: raw, Reason: "empty value"}
	}

	balance, err := decimal.NewFromString(rest)
	if err != nil {
		return decimal.Zero, &ParseError{Raw: raw, Reason: "value is not a number"}
	}
	return balance, nil
}
