package rules

import "fmt"

// ConditionError reports a malformed condition field. The owning rule is
// disabled for the run; other rules proceed.
type ConditionError struct {
	// Rule is the name of the rule with the malformed condition
	Rule string
	// Field is the condition field that failed to parse
	Field string
	// Err is the underlying parse error
	Err error
}

// Error implements the error interface for ConditionError.
func (e *ConditionError) Error() string {
	return fmt.Sprintf("rule %q: invalid %s: %v", e.Rule, e.Field, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ConditionError) Unwrap() error {
	return e.Err
}
