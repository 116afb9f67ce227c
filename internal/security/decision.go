package security

import (
	"fmt"
	"strings"
)

// Decision is the auto/approve/block verdict for one tool request.
// Decisions are ordered: Auto < Approve < Block. When aggregating
// decisions across sub-commands, the highest decision wins.
type Decision int

const (
	// DecisionAuto executes without human involvement.
	DecisionAuto Decision = iota
	// DecisionApprove surfaces the request to a human and waits.
	DecisionApprove
	// DecisionBlock never executes; a failure result is synthesized.
	DecisionBlock
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	switch d {
	case DecisionAuto:
		return "auto"
	case DecisionApprove:
		return "approve"
	case DecisionBlock:
		return "block"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// ParseDecision parses a string into a Decision.
// Accepted values: "auto", "approve", "block" (case-insensitive).
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(s) {
	case "auto":
		return DecisionAuto, nil
	case "approve":
		return DecisionApprove, nil
	case "block":
		return DecisionBlock, nil
	default:
		return DecisionApprove, fmt.Errorf("invalid decision %q: must be auto, approve, or block", s)
	}
}

// Max returns the higher (more restrictive) of two decisions.
func (d Decision) Max(other Decision) Decision {
	if other > d {
		return other
	}
	return d
}
