package payroll

import (
	"errors"
	"fmt"
)

// Rule failure kinds. Match them with errors.Is.
var (
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidAge         = errors.New("invalid age")
	ErrInvalidSalary      = errors.New("invalid salary")
	ErrInvalidWorkedHours = errors.New("invalid worked hours")
)

// RuleError is the failing outcome of a single rule: which kind of rule
// broke and a reason fit for an end user.
type RuleError struct {
	Kind   error
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *RuleError) Is(target error) bool { return errors.Is(e.Kind, target) }
func (e *RuleError) Unwrap() error        { return e.Kind }

func fail(kind error, format string, args ...any) *RuleError {
	return &RuleError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// IsRuleError reports whether err is any validation or pipeline failure.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
