package shop

import "strings"

// Outcome is what a command response says about the command's effect
type Outcome int

const (
	// OutcomeUnknown means the response is not inspected
	OutcomeUnknown Outcome = iota
	// OutcomeApplied means the server reported the command took effect
	OutcomeApplied
	// OutcomeRejected means the server refused the command
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Classifier maps a raw console response to an Outcome
type Classifier interface {
	Classify(response string) Outcome
}

// MarkerClassifier matches a marker case-insensitively. A match yields
// OnMatch; anything else yields the opposite outcome.
type MarkerClassifier struct {
	Marker  string
	OnMatch Outcome
}

// Classify implements Classifier
func (c MarkerClassifier) Classify(response string) Outcome {
	matched := c.Marker != "" && strings.Contains(strings.ToLower(response), strings.ToLower(c.Marker))
	if matched {
		return c.OnMatch
	}
	if c.OnMatch == OutcomeApplied {
		return OutcomeRejected
	}
	return OutcomeApplied
}

// AcceptingClassifier never inspects the response
type AcceptingClassifier struct{}

// Classify implements Classifier
func (AcceptingClassifier) Classify(string) Outcome {
	return OutcomeUnknown
}
